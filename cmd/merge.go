package cmd

import (
	"fmt"
	"os"

	"github.com/cli/go-gh/v2/pkg/repository"
	"github.com/spf13/cobra"

	"github.com/oakmont-embedded/gh-fwbump/internal/api"
	"github.com/oakmont-embedded/gh-fwbump/internal/config"
	"github.com/oakmont-embedded/gh-fwbump/internal/defaults"
	"github.com/oakmont-embedded/gh-fwbump/internal/event"
	"github.com/oakmont-embedded/gh-fwbump/internal/fwver"
	"github.com/oakmont-embedded/gh-fwbump/internal/gitx"
	"github.com/oakmont-embedded/gh-fwbump/internal/header"
	"github.com/oakmont-embedded/gh-fwbump/internal/policy"
)

// mergeOptions holds the command-line options for merge
type mergeOptions struct {
	simulateMerged string
	comment        bool
	noPush         bool
	dryRun         bool
	verbose        bool
}

// mergeGit is the slice of gitx.Runner the merge pipeline uses.
// This allows mocking in tests.
type mergeGit interface {
	SetUser(name, email string) error
	Add(paths ...string) error
	Commit(message string) error
	Push(remote, refspec string) error
}

// mergeAPI is the slice of api.Client the merge pipeline uses.
type mergeAPI interface {
	GetPullRequest(owner, repo string, number int) (*api.PullRequest, error)
	CommentOnPullRequest(prID, body string) (string, error)
}

// mergeDeps bundles the collaborators runMerge needs, so tests can swap
// in fakes without touching git, the network, or the Actions environment.
type mergeDeps struct {
	loadConfig  func() (*config.Config, error)
	detectEvent func() (*event.Context, error)
	newGit      func() (mergeGit, error)
	newAPI      func() mergeAPI
	currentRepo func() (owner, name string, err error)
}

func productionMergeDeps() *mergeDeps {
	return &mergeDeps{
		loadConfig:  loadMergedConfig,
		detectEvent: event.FromEnvironment,
		newGit: func() (mergeGit, error) {
			return gitx.New("")
		},
		newAPI: func() mergeAPI {
			return api.NewClient()
		},
		currentRepo: func() (string, string, error) {
			repo, err := repository.Current()
			if err != nil {
				return "", "", fmt.Errorf("failed to detect repository: %w", err)
			}
			return repo.Owner, repo.Name, nil
		},
	}
}

// loadMergedConfig overlays the repo's .gh-fwbump.yml (if any) on the
// embedded defaults.
func loadMergedConfig() (*config.Config, error) {
	cfg := defaults.MustLoad()
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if fileCfg, err := config.LoadFromDirectory(cwd); err == nil {
		cfg = cfg.Overlay(fileCfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newMergeCommand() *cobra.Command {
	opts := &mergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Bump, commit and push the version for a merged pull request",
		Long: `Run the full version-bump pipeline for a merged pull request.

The event context is read from the GitHub Actions environment
(GITHUB_EVENT_NAME / GITHUB_EVENT_PATH): a pull_request event must be a
merged close, and a workflow_dispatch event must carry the
simulate_merged input naming the base branch to simulate. Outside of
Actions, pass --simulate-merged explicitly.

The base branch selects the bump rule from the configured policies,
the header is rewritten, and the change is committed as
'Update version to <version>' and pushed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, opts, productionMergeDeps())
		},
	}

	cmd.Flags().StringVar(&opts.simulateMerged, "simulate-merged", "", "Simulate a merge into the given base branch")
	cmd.Flags().BoolVar(&opts.comment, "comment", false, "Post the new version as a comment on the merged PR")
	cmd.Flags().BoolVar(&opts.noPush, "no-push", false, "Commit but do not push")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Bump the header but skip all git operations")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Print pipeline details to stderr")

	return cmd
}

func runMerge(cmd *cobra.Command, opts *mergeOptions, deps *mergeDeps) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	debug := opts.verbose || event.DebugEnabled()

	// Resolve the triggering event.
	var ctx *event.Context
	if opts.simulateMerged != "" {
		ctx = event.Simulated(opts.simulateMerged)
	} else {
		var err error
		ctx, err = deps.detectEvent()
		if err != nil {
			return err
		}
	}
	if ctx.Kind == event.KindLocal {
		return fmt.Errorf("no GitHub Actions event detected - use --simulate-merged <branch> to run locally")
	}
	if !ctx.Merged {
		fmt.Fprintln(out, "Pull request was closed without merging, nothing to do.")
		return nil
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		return err
	}

	decision := policy.Resolve(cfg.Policies, ctx.BaseRef)
	if debug {
		fmt.Fprintf(errOut, "fwbump: event=%s base=%s policy=%s\n", ctx.Kind, ctx.BaseRef, decision.Policy)
	}
	if decision.Skip {
		fmt.Fprintf(out, "Branch %s is excluded from version bumps, nothing to do.\n", ctx.BaseRef)
		return nil
	}

	now := nowFunc()
	next, err := header.Bump(cfg.Header, func(cur fwver.Version) fwver.Version {
		return cur.Bump(now, decision.Rule)
	})
	if err != nil {
		return err
	}

	message := "Update version to " + next.String()
	fmt.Fprintln(out, next.String())

	if opts.dryRun {
		fmt.Fprintf(errOut, "Dry run: would commit %q and push to %s\n", message, cfg.Remote)
		return nil
	}

	git, err := deps.newGit()
	if err != nil {
		return err
	}
	if err := git.SetUser(cfg.Committer.Name, cfg.Committer.Email); err != nil {
		return err
	}
	if err := git.Add(cfg.Header); err != nil {
		return err
	}
	if err := git.Commit(message); err != nil {
		return err
	}
	if opts.noPush {
		fmt.Fprintln(errOut, "Skipping push (--no-push).")
	} else if err := git.Push(cfg.Remote, ""); err != nil {
		return err
	}

	if opts.comment {
		if err := postMergeComment(cmd, deps, ctx, next); err != nil {
			// The bump is already committed; a failed comment should not
			// fail the job.
			fmt.Fprintf(errOut, "Warning: failed to comment on PR: %v\n", err)
		}
	}

	return nil
}

// postMergeComment posts the new version as a comment on the merged PR.
func postMergeComment(cmd *cobra.Command, deps *mergeDeps, ctx *event.Context, next fwver.Version) error {
	if ctx.PRNumber == 0 {
		return fmt.Errorf("no pull request number in event context")
	}

	owner, name, err := deps.currentRepo()
	if err != nil {
		return err
	}

	client := deps.newAPI()
	pr, err := client.GetPullRequest(owner, name, ctx.PRNumber)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Version bumped to `%s` by merge into `%s`.", next, ctx.BaseRef)
	url, err := client.CommentOnPullRequest(pr.ID, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Commented on PR #%d: %s\n", ctx.PRNumber, url)
	return nil
}
