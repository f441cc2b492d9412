// Package event resolves the GitHub Actions event context this run was
// triggered by. It reads GITHUB_EVENT_NAME and the JSON payload at
// GITHUB_EVENT_PATH, the same files the Actions runner hands every step.
package event

import (
	"encoding/json"
	"fmt"
	"os"
)

// Event kinds this tool reacts to.
const (
	// KindLocal means no Actions environment was detected.
	KindLocal = "local"
	// KindPullRequest is a pull_request event.
	KindPullRequest = "pull_request"
	// KindDispatch is a manual workflow_dispatch event.
	KindDispatch = "workflow_dispatch"
)

// Context describes the triggering event.
type Context struct {
	Kind string

	// BaseRef is the PR's base branch (pull_request), or the branch named by
	// the simulate_merged input (workflow_dispatch).
	BaseRef string

	// PRNumber is the pull request number, 0 when not a pull_request event.
	PRNumber int

	// Merged reports whether the event represents a merged pull request.
	// workflow_dispatch contexts are treated as merged simulations.
	Merged bool
}

// pullRequestPayload covers the fields of the pull_request event this tool
// cares about.
type pullRequestPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int  `json:"number"`
		Merged bool `json:"merged"`
		Base   struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`
}

// dispatchPayload covers the workflow_dispatch inputs.
type dispatchPayload struct {
	Inputs struct {
		SimulateMerged string `json:"simulate_merged"`
	} `json:"inputs"`
}

// FromEnvironment detects the event context from the Actions environment.
// Outside of Actions (no GITHUB_EVENT_NAME) it returns a local context.
func FromEnvironment() (*Context, error) {
	name := os.Getenv("GITHUB_EVENT_NAME")
	if name == "" {
		return &Context{Kind: KindLocal}, nil
	}

	path := os.Getenv("GITHUB_EVENT_PATH")
	if path == "" {
		return nil, fmt.Errorf("GITHUB_EVENT_NAME is %q but GITHUB_EVENT_PATH is unset", name)
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}

	return Parse(name, payload)
}

// Parse builds a Context from an event name and its JSON payload.
// Event kinds other than pull_request and workflow_dispatch are an error;
// the workflow should not have triggered this tool for them.
func Parse(eventName string, payload []byte) (*Context, error) {
	switch eventName {
	case KindPullRequest:
		var pr pullRequestPayload
		if err := json.Unmarshal(payload, &pr); err != nil {
			return nil, fmt.Errorf("failed to parse pull_request payload: %w", err)
		}
		return &Context{
			Kind:     KindPullRequest,
			BaseRef:  pr.PullRequest.Base.Ref,
			PRNumber: pr.PullRequest.Number,
			Merged:   pr.Action == "closed" && pr.PullRequest.Merged,
		}, nil

	case KindDispatch:
		var d dispatchPayload
		if err := json.Unmarshal(payload, &d); err != nil {
			return nil, fmt.Errorf("failed to parse workflow_dispatch payload: %w", err)
		}
		if d.Inputs.SimulateMerged == "" {
			return nil, fmt.Errorf("workflow_dispatch requires the simulate_merged input")
		}
		return &Context{
			Kind:    KindDispatch,
			BaseRef: d.Inputs.SimulateMerged,
			Merged:  true,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported event %q", eventName)
	}
}

// Simulated returns a merged-PR context for base, used by --simulate-merged.
func Simulated(base string) *Context {
	return &Context{Kind: KindDispatch, BaseRef: base, Merged: true}
}

// DebugEnabled reports whether Actions step debugging is on.
func DebugEnabled() bool {
	return os.Getenv("ACTIONS_STEP_DEBUG") == "true"
}
