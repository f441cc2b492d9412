package api

import (
	"fmt"

	graphql "github.com/cli/shurcooL-graphql"
)

// GetPullRequest fetches a pull request by number.
func (c *Client) GetPullRequest(owner, repo string, number int) (*PullRequest, error) {
	if c.gql == nil {
		return nil, ErrNotAuthenticated
	}

	var query struct {
		Repository struct {
			PullRequest struct {
				ID          string
				Number      int
				Title       string
				Merged      bool
				BaseRefName string
				URL         string `graphql:"url"`
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]interface{}{
		"owner":  graphql.String(owner),
		"name":   graphql.String(repo),
		"number": graphql.Int(number),
	}

	err := WithRetry(func() error {
		return c.gql.Query("GetPullRequest", &query, variables)
	}, 3)
	if err != nil {
		return nil, WrapError("get", fmt.Sprintf("pull request %s/%s#%d", owner, repo, number), err)
	}

	pr := query.Repository.PullRequest
	return &PullRequest{
		ID:      pr.ID,
		Number:  pr.Number,
		Title:   pr.Title,
		Merged:  pr.Merged,
		BaseRef: pr.BaseRefName,
		URL:     pr.URL,
	}, nil
}

// CommentOnPullRequest posts a comment on the pull request with the given
// node ID and returns the comment URL.
func (c *Client) CommentOnPullRequest(prID, body string) (string, error) {
	if c.gql == nil {
		return "", ErrNotAuthenticated
	}

	var mutation struct {
		AddComment struct {
			CommentEdge struct {
				Node struct {
					URL string `graphql:"url"`
				}
			}
		} `graphql:"addComment(input: $input)"`
	}

	variables := map[string]interface{}{
		"input": AddCommentInput{
			SubjectID: graphql.ID(prID),
			Body:      graphql.String(body),
		},
	}

	err := WithRetry(func() error {
		return c.gql.Mutate("AddComment", &mutation, variables)
	}, 3)
	if err != nil {
		return "", WrapError("comment on", "pull request", err)
	}

	return mutation.AddComment.CommentEdge.Node.URL, nil
}
