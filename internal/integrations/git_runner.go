package integrations

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// GitRunner executes read-only git commands in a source tree.
type GitRunner struct {
	workDir string
}

// NewGitRunner creates a GitRunner for the given directory.
func NewGitRunner(workDir string) *GitRunner {
	return &GitRunner{workDir: workDir}
}

// Available reports whether workDir is inside a git work tree.
func (g *GitRunner) Available(ctx context.Context) bool {
	out, err := g.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// ListFiles returns tracked and untracked-but-not-ignored files relative to
// the work directory, in git's order.
func (g *GitRunner) ListFiles(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "ls-files", "-z", "--cached", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	var files []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(out, "\x00") {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		files = append(files, p)
	}
	return files, nil
}

// Revision returns the abbreviated HEAD commit, or "" for a repository
// without commits.
func (g *GitRunner) Revision(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *GitRunner) run(ctx context.Context, args ...string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("git: no subcommand provided")
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.workDir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
