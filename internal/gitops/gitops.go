// Package gitops performs the git commit and push steps between loop
// iterations. All operations shell out to the git binary; failures are
// returned for the caller to report and never stop the loop.
package gitops

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Client runs git operations inside a single repository.
type Client struct {
	dir string
}

// New returns a Client operating on the repository at dir.
func New(dir string) *Client {
	return &Client{dir: dir}
}

// IsRepo reports whether dir is inside a git work tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// CurrentBranch returns the checked-out branch name.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// EnsureBranch checks out branch, creating it from HEAD if needed.
func (c *Client) EnsureBranch(ctx context.Context, branch string) error {
	if _, err := c.run(ctx, "rev-parse", "--verify", "refs/heads/"+branch); err == nil {
		_, err = c.run(ctx, "checkout", branch)
		return err
	}
	_, err := c.run(ctx, "checkout", "-b", branch)
	return err
}

// HasChanges reports whether the work tree has uncommitted changes,
// including untracked files.
func (c *Client) HasChanges(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll stages everything and commits with message. It returns false
// without error when there is nothing to commit.
func (c *Client) CommitAll(ctx context.Context, message string) (bool, error) {
	dirty, err := c.HasChanges(ctx)
	if err != nil {
		return false, err
	}
	if !dirty {
		return false, nil
	}
	if _, err := c.run(ctx, "add", "-A"); err != nil {
		return false, err
	}
	if _, err := c.run(ctx, "commit", "-m", message); err != nil {
		return false, err
	}
	return true, nil
}

// Push pushes branch to remote, setting upstream on first push.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	_, err := c.run(ctx, "push", "-u", remote, branch)
	return err
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
