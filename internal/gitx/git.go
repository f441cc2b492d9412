// Package gitx wraps the git subcommands the bump pipeline needs. git is
// always invoked as a subprocess; nothing here touches the repository
// directly.
package gitx

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cli/safeexec"
)

// execFunc runs git with args in dir and returns stdout and stderr.
// Swapped out in tests.
type execFunc func(gitPath, dir string, args ...string) (stdout, stderr string, err error)

// Runner executes git commands in a fixed working directory.
type Runner struct {
	gitPath string
	dir     string
	exec    execFunc
}

// New locates the git binary and returns a Runner rooted at dir.
// An empty dir means the process working directory.
func New(dir string) (*Runner, error) {
	gitPath, err := safeexec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("git not found in PATH: %w", err)
	}
	return &Runner{gitPath: gitPath, dir: dir, exec: runGit}, nil
}

// runGit is the real execFunc.
func runGit(gitPath, dir string, args ...string) (string, string, error) {
	cmd := exec.Command(gitPath, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// run executes git with args, folding stderr into the returned error.
func (r *Runner) run(args ...string) (string, error) {
	stdout, stderr, err := r.exec(r.gitPath, r.dir, args...)
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout, nil
}

// SetUser configures the commit identity for the repository.
func (r *Runner) SetUser(name, email string) error {
	if _, err := r.run("config", "user.name", name); err != nil {
		return err
	}
	_, err := r.run("config", "user.email", email)
	return err
}

// Add stages the given paths.
func (r *Runner) Add(paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	_, err := r.run(args...)
	return err
}

// Commit records a commit with the given message.
func (r *Runner) Commit(message string) error {
	_, err := r.run("commit", "-m", message)
	return err
}

// Push pushes HEAD to the given remote. refspec may be empty to use the
// upstream configuration of the current branch.
func (r *Runner) Push(remote, refspec string) error {
	args := []string{"push", remote}
	if refspec != "" {
		args = append(args, refspec)
	}
	_, err := r.run(args...)
	return err
}

// CurrentBranch returns the name of the checked-out branch.
func (r *Runner) CurrentBranch() (string, error) {
	out, err := r.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsWorkTree reports whether dir is inside a git work tree.
func (r *Runner) IsWorkTree() bool {
	out, err := r.run("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}
