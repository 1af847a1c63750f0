package wiki

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianshen/docsynth/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- helpers ----------

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func initGitRepo(t *testing.T, dir string) {
	t.Helper()
	requireGit(t)
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test")
}

func gitAdd(t *testing.T, dir, file string) {
	t.Helper()
	runGit(t, dir, "add", file)
	runGit(t, dir, "commit", "-m", "add "+file, "--allow-empty")
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(out))
}

func paths(files []parser.SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

// ---------- tests ----------

func TestScanEmptyDir(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	files, err := Scan(context.Background(), dir, DefaultScanOptions())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanGitRepo(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	writeFile(t, filepath.Join(dir, "main.go"), "package main\n\nfunc main() {}\n")
	writeFile(t, filepath.Join(dir, "src", "auth.ts"), "export function login() {}\n")
	writeFile(t, filepath.Join(dir, "README.md"), "# readme\n")
	writeFile(t, filepath.Join(dir, "ignored.py"), "def x():\n    pass\n")
	writeFile(t, filepath.Join(dir, ".gitignore"), "ignored.py\n")
	gitAdd(t, dir, ".")

	// Untracked but not ignored files are still picked up.
	writeFile(t, filepath.Join(dir, "new.py"), "def y():\n    pass\n")

	files, err := Scan(context.Background(), dir, DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go", "new.py", "src/auth.ts"}, paths(files))
	assert.Equal(t, "package main\n\nfunc main() {}\n", string(files[0].Content))
}

func TestScanSkipsVendorAndNodeModules(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "function a() {}\n")
	writeFile(t, filepath.Join(dir, "vendor", "lib.go"), "package lib\n")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "index.js"), "module.exports = {}\n")
	writeFile(t, filepath.Join(dir, "coverage", "report.js"), "var x = 1\n")

	files, err := Scan(context.Background(), dir, DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js"}, paths(files))
}

func TestScanHonoursGitignoreWithoutGit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "generated/\n*.gen.ts\n")
	writeFile(t, filepath.Join(dir, "keep.ts"), "export const a = 1\n")
	writeFile(t, filepath.Join(dir, "api.gen.ts"), "export const b = 2\n")
	writeFile(t, filepath.Join(dir, "generated", "client.ts"), "export const c = 3\n")
	writeFile(t, filepath.Join(dir, ".hidden", "secret.ts"), "export const d = 4\n")

	files, err := Scan(context.Background(), dir, DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.ts"}, paths(files))
}

func TestScanUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.rs"), "fn main() {}\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "hello\n")

	files, err := Scan(context.Background(), dir, DefaultScanOptions())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestScanMaxFileBytes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.py"), "x = 1\n")
	writeFile(t, filepath.Join(dir, "big.py"), "x = '"+strings.Repeat("a", 200)+"'\n")

	files, err := Scan(context.Background(), dir, ScanOptions{MaxFileBytes: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"small.py"}, paths(files))
}

func TestScanCustomSkipDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fixtures", "a.go"), "package fixtures\n")
	writeFile(t, filepath.Join(dir, "vendor", "b.go"), "package vendor\n")

	files, err := Scan(context.Background(), dir, ScanOptions{SkipDirs: []string{"fixtures"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/b.go"}, paths(files))
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), DefaultScanOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestScanNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.go")
	writeFile(t, file, "package x\n")

	_, err := Scan(context.Background(), file, DefaultScanOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
