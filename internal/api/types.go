package api

import (
	graphql "github.com/cli/shurcooL-graphql"
)

// PullRequest holds the fields of a pull request the pipeline needs.
type PullRequest struct {
	ID      string
	Number  int
	Title   string
	Merged  bool
	BaseRef string
	URL     string
}

// AddCommentInput is the GraphQL input for the addComment mutation.
type AddCommentInput struct {
	SubjectID graphql.ID     `json:"subjectId"`
	Body      graphql.String `json:"body"`
}
