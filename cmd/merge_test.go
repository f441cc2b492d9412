package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakmont-embedded/gh-fwbump/internal/api"
	"github.com/oakmont-embedded/gh-fwbump/internal/config"
	"github.com/oakmont-embedded/gh-fwbump/internal/event"
	"github.com/oakmont-embedded/gh-fwbump/internal/fwver"
	"github.com/oakmont-embedded/gh-fwbump/internal/header"
	"github.com/oakmont-embedded/gh-fwbump/internal/policy"
)

const mergeTestHeader = `    #define FW_MAJOR_VERSION (1)
    #define FW_MINOR_VERSION (7)
    #define FW_VERSION_VERSION (26100)
    #define FW_REVISION_VERSION (2)
`

// fakeGit records the git operations the pipeline performs.
type fakeGit struct {
	userName  string
	userEmail string
	added     []string
	commits   []string
	pushes    []string
	failOn    string
}

func (g *fakeGit) SetUser(name, email string) error {
	if g.failOn == "setuser" {
		return errors.New("setuser failed")
	}
	g.userName, g.userEmail = name, email
	return nil
}

func (g *fakeGit) Add(paths ...string) error {
	if g.failOn == "add" {
		return errors.New("add failed")
	}
	g.added = append(g.added, paths...)
	return nil
}

func (g *fakeGit) Commit(message string) error {
	if g.failOn == "commit" {
		return errors.New("commit failed")
	}
	g.commits = append(g.commits, message)
	return nil
}

func (g *fakeGit) Push(remote, refspec string) error {
	if g.failOn == "push" {
		return errors.New("push failed")
	}
	g.pushes = append(g.pushes, remote+" "+refspec)
	return nil
}

// fakeAPI records PR lookups and comments.
type fakeAPI struct {
	pr       *api.PullRequest
	comments []string
	prErr    error
}

func (a *fakeAPI) GetPullRequest(owner, repo string, number int) (*api.PullRequest, error) {
	if a.prErr != nil {
		return nil, a.prErr
	}
	return a.pr, nil
}

func (a *fakeAPI) CommentOnPullRequest(prID, body string) (string, error) {
	a.comments = append(a.comments, prID+": "+body)
	return "https://github.com/acme/fw/pull/42#issuecomment-1", nil
}

// mergeFixture builds a temp header, fake collaborators, and deps wired to
// them. The returned command carries capture buffers for stdout/stderr.
type mergeFixture struct {
	headerPath string
	git        *fakeGit
	api        *fakeAPI
	deps       *mergeDeps
	cmd        *cobra.Command
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
}

func newMergeFixture(t *testing.T, ctx *event.Context) *mergeFixture {
	t.Helper()

	headerPath := filepath.Join(t.TempDir(), "configtest.h")
	if err := os.WriteFile(headerPath, []byte(mergeTestHeader), 0o644); err != nil {
		t.Fatalf("Failed to write header fixture: %v", err)
	}

	f := &mergeFixture{
		headerPath: headerPath,
		git:        &fakeGit{},
		api: &fakeAPI{
			pr: &api.PullRequest{ID: "PR_node123", Number: 42, Merged: true},
		},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}

	f.deps = &mergeDeps{
		loadConfig: func() (*config.Config, error) {
			return &config.Config{
				Header: headerPath,
				Remote: "origin",
				Committer: config.Committer{
					Name:  "github-actions[bot]",
					Email: "41898282+github-actions[bot]@users.noreply.github.com",
				},
				Policies: []policy.Policy{
					{Name: "stable", Branches: []string{"master", "main"}},
					{Name: "develop", Branches: []string{"develop"}, PinMinor: fwver.Pin(0)},
				},
			}, nil
		},
		detectEvent: func() (*event.Context, error) { return ctx, nil },
		newGit:      func() (mergeGit, error) { return f.git, nil },
		newAPI:      func() mergeAPI { return f.api },
		currentRepo: func() (string, string, error) { return "acme", "fw", nil },
	}

	f.cmd = &cobra.Command{}
	f.cmd.SetOut(f.stdout)
	f.cmd.SetErr(f.stderr)

	return f
}

// pinNow fixes the clock at 2026-08-25 (datecode 26237) for the test.
func pinNow(t *testing.T) {
	t.Helper()
	orig := nowFunc
	nowFunc = func() time.Time {
		return time.Date(2026, time.August, 25, 12, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { nowFunc = orig })
}

func TestRunMerge_MasterKeepsMinor(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "master", PRNumber: 42, Merged: true,
	})

	// ACT
	err := runMerge(f.cmd, &mergeOptions{}, f.deps)

	// ASSERT: minor untouched, datecode refreshed, revision reset
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	v, err := header.Read(f.headerPath)
	if err != nil {
		t.Fatalf("Failed to read back header: %v", err)
	}
	want := fwver.Version{Major: 1, Minor: 7, Datecode: 26237, Revision: 0}
	if v != want {
		t.Errorf("Expected %v, got %v", want, v)
	}
}

func TestRunMerge_DevelopResetsMinor(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "develop", PRNumber: 42, Merged: true,
	})

	// ACT
	err := runMerge(f.cmd, &mergeOptions{}, f.deps)

	// ASSERT
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	v, _ := header.Read(f.headerPath)
	if v.Minor != 0 {
		t.Errorf("Expected minor reset to 0 for develop, got %d", v.Minor)
	}
}

func TestRunMerge_CommitMessageFormat(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "master", PRNumber: 42, Merged: true,
	})

	// ACT
	if err := runMerge(f.cmd, &mergeOptions{}, f.deps); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// ASSERT: the message literally equals "Update version to <version>"
	if len(f.git.commits) != 1 {
		t.Fatalf("Expected 1 commit, got %d", len(f.git.commits))
	}
	if f.git.commits[0] != "Update version to 1.7.26237.0" {
		t.Errorf("Unexpected commit message: %q", f.git.commits[0])
	}
}

func TestRunMerge_ConfiguresCommitterAndPushes(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "main", PRNumber: 42, Merged: true,
	})

	// ACT
	if err := runMerge(f.cmd, &mergeOptions{}, f.deps); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// ASSERT
	if f.git.userName != "github-actions[bot]" {
		t.Errorf("Expected bot committer, got %q", f.git.userName)
	}
	if len(f.git.added) != 1 || f.git.added[0] != f.headerPath {
		t.Errorf("Expected header staged, got %v", f.git.added)
	}
	if len(f.git.pushes) != 1 || !strings.HasPrefix(f.git.pushes[0], "origin") {
		t.Errorf("Expected push to origin, got %v", f.git.pushes)
	}
}

func TestRunMerge_UnmergedClose_IsNoOp(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "master", PRNumber: 42, Merged: false,
	})
	before, _ := os.ReadFile(f.headerPath)

	// ACT
	err := runMerge(f.cmd, &mergeOptions{}, f.deps)

	// ASSERT: exit 0, nothing touched
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	after, _ := os.ReadFile(f.headerPath)
	if !bytes.Equal(before, after) {
		t.Error("Expected header untouched for unmerged close")
	}
	if len(f.git.commits) != 0 {
		t.Errorf("Expected no commits, got %v", f.git.commits)
	}
}

func TestRunMerge_DryRun_SkipsGit(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindDispatch, BaseRef: "develop", Merged: true,
	})

	// ACT
	err := runMerge(f.cmd, &mergeOptions{dryRun: true}, f.deps)

	// ASSERT: header bumped, git never invoked
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	v, _ := header.Read(f.headerPath)
	if v.Datecode != 26237 {
		t.Errorf("Expected header bumped in dry run, got %v", v)
	}
	if len(f.git.commits) != 0 || len(f.git.pushes) != 0 {
		t.Error("Expected no git operations in dry run")
	}
}

func TestRunMerge_NoPush_CommitsOnly(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindDispatch, BaseRef: "master", Merged: true,
	})

	// ACT
	if err := runMerge(f.cmd, &mergeOptions{noPush: true}, f.deps); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// ASSERT
	if len(f.git.commits) != 1 {
		t.Errorf("Expected commit, got %v", f.git.commits)
	}
	if len(f.git.pushes) != 0 {
		t.Errorf("Expected no push, got %v", f.git.pushes)
	}
}

func TestRunMerge_SimulateMergedOverridesEvent(t *testing.T) {
	// ARRANGE: event detection would fail; the flag must bypass it
	pinNow(t)
	f := newMergeFixture(t, nil)
	f.deps.detectEvent = func() (*event.Context, error) {
		return nil, errors.New("detectEvent should not be called")
	}

	// ACT
	err := runMerge(f.cmd, &mergeOptions{simulateMerged: "develop", noPush: true}, f.deps)

	// ASSERT
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	v, _ := header.Read(f.headerPath)
	if v.Minor != 0 {
		t.Errorf("Expected develop rule applied, got minor %d", v.Minor)
	}
}

func TestRunMerge_LocalContext_ReturnsError(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{Kind: event.KindLocal})

	// ACT
	err := runMerge(f.cmd, &mergeOptions{}, f.deps)

	// ASSERT
	if err == nil {
		t.Fatal("Expected error outside Actions, got nil")
	}
	if !strings.Contains(err.Error(), "--simulate-merged") {
		t.Errorf("Expected hint about --simulate-merged, got: %v", err)
	}
}

func TestRunMerge_SkipPolicy_LeavesHeaderAlone(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "gh-pages", PRNumber: 9, Merged: true,
	})
	base := f.deps.loadConfig
	f.deps.loadConfig = func() (*config.Config, error) {
		cfg, _ := base()
		cfg.Policies = append(cfg.Policies, policy.Policy{
			Name: "docs", Branches: []string{"gh-pages"}, Skip: true,
		})
		return cfg, nil
	}
	before, _ := os.ReadFile(f.headerPath)

	// ACT
	err := runMerge(f.cmd, &mergeOptions{}, f.deps)

	// ASSERT
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	after, _ := os.ReadFile(f.headerPath)
	if !bytes.Equal(before, after) {
		t.Error("Expected header untouched for skipped branch")
	}
}

func TestRunMerge_CommentPostsNewVersion(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "develop", PRNumber: 42, Merged: true,
	})

	// ACT
	err := runMerge(f.cmd, &mergeOptions{comment: true, noPush: true}, f.deps)

	// ASSERT
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(f.api.comments) != 1 {
		t.Fatalf("Expected 1 comment, got %d", len(f.api.comments))
	}
	if !strings.Contains(f.api.comments[0], "PR_node123") {
		t.Errorf("Expected comment on PR node, got %q", f.api.comments[0])
	}
	if !strings.Contains(f.api.comments[0], "1.0.26237.0") {
		t.Errorf("Expected new version in comment, got %q", f.api.comments[0])
	}
}

func TestRunMerge_CommentFailure_DoesNotFailPipeline(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "master", PRNumber: 42, Merged: true,
	})
	f.api.prErr = errors.New("network down")

	// ACT
	err := runMerge(f.cmd, &mergeOptions{comment: true, noPush: true}, f.deps)

	// ASSERT: the bump already landed, comment failure is a warning
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(f.stderr.String(), "failed to comment") {
		t.Errorf("Expected warning on stderr, got: %q", f.stderr.String())
	}
}

func TestRunMerge_GitFailure_PropagatesError(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindPullRequest, BaseRef: "master", PRNumber: 42, Merged: true,
	})
	f.git.failOn = "push"

	// ACT
	err := runMerge(f.cmd, &mergeOptions{}, f.deps)

	// ASSERT
	if err == nil {
		t.Fatal("Expected push failure to propagate, got nil")
	}
}

func TestRunMerge_PrintsNewVersionOnStdout(t *testing.T) {
	// ARRANGE
	pinNow(t)
	f := newMergeFixture(t, &event.Context{
		Kind: event.KindDispatch, BaseRef: "master", Merged: true,
	})

	// ACT
	if err := runMerge(f.cmd, &mergeOptions{noPush: true}, f.deps); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// ASSERT
	if got := strings.TrimSpace(f.stdout.String()); got != "1.7.26237.0" {
		t.Errorf("Expected version on stdout, got %q", got)
	}
}
