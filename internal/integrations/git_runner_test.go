package integrations

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(out))
}

func setupGitRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()

	gitCmd(t, dir, "init")
	gitCmd(t, dir, "config", "user.email", "test@test.com")
	gitCmd(t, dir, "config", "user.name", "Test")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("secret.txt\n"), 0o644))
	gitCmd(t, dir, "add", "main.go", ".gitignore")
	gitCmd(t, dir, "commit", "-m", "initial commit")

	return dir
}

func TestGitRunnerListFiles(t *testing.T) {
	dir := setupGitRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.ts"), []byte("export {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("x"), 0o644))

	runner := NewGitRunner(dir)
	require.True(t, runner.Available(context.Background()))

	files, err := runner.ListFiles(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".gitignore", "main.go", "new.ts"}, files)
}

func TestGitRunnerRevision(t *testing.T) {
	dir := setupGitRepo(t)

	rev, err := NewGitRunner(dir).Revision(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, rev)
}

func TestGitRunnerOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	runner := NewGitRunner(t.TempDir())
	assert.False(t, runner.Available(context.Background()))

	_, err := runner.ListFiles(context.Background())
	assert.Error(t, err)
}
