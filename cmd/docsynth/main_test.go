package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianshen/docsynth/internal/config"
	"github.com/julianshen/docsynth/internal/jobs"
	"github.com/julianshen/docsynth/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionString(t *testing.T) {
	s := versionString()
	assert.Contains(t, s, "docsynth")
	assert.Contains(t, s, version)
	assert.Contains(t, s, commit)
	assert.Contains(t, s, date)
}

func TestVersionStringDefaults(t *testing.T) {
	s := versionString()
	assert.Contains(t, s, "dev")
	assert.Contains(t, s, "none")
	assert.Contains(t, s, "unknown")
}

func TestVersionCommand(t *testing.T) {
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Equal(t, versionString()+"\n", out.String())
}

func TestSubcommandsRegistered(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"generate", "serve", "status", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestGenerateCmdDefaultFlags(t *testing.T) {
	cmd := generateCmd()
	assert.Equal(t, "generate [path]", cmd.Use)

	output, _ := cmd.Flags().GetString("output")
	assert.Equal(t, "", output)

	mode, _ := cmd.Flags().GetString("mode")
	assert.Equal(t, "group", mode)

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	assert.Equal(t, 5, concurrency)
}

func TestServeCmdDefaultFlags(t *testing.T) {
	cmd := serveCmd()
	addr, _ := cmd.Flags().GetString("addr")
	assert.Equal(t, ":8080", addr)
}

func TestStatusCmdDefaultFlags(t *testing.T) {
	cmd := statusCmd()
	format, _ := cmd.Flags().GetString("format")
	assert.Equal(t, "markdown", format)
}

func TestGenerationConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Generation.MaxAttempts = 5
	cfg.Generation.BaseDelay = config.Duration{Duration: time.Second}
	cfg.Generation.MinFileLength = 800

	g := generationConfig(cfg)
	assert.Equal(t, 5, g.MaxAttempts)
	assert.Equal(t, time.Second, g.BaseDelay)
	assert.Equal(t, 30*time.Second, g.MaxDelay)
	assert.Equal(t, 800, g.MinFileLength)
	assert.Equal(t, 1000, g.CacheKeyPrefix)
	assert.Equal(t, 90, g.ProgressEnd)
}

func TestScanOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scan.SkipDirs = []string{"third_party"}
	cfg.Scan.MaxFileBytes = 0

	opts := scanOptions(cfg)
	assert.Equal(t, []string{"third_party"}, opts.SkipDirs)
	assert.Equal(t, int64(1<<20), opts.MaxFileBytes)
}

func TestStoresWithoutDB(t *testing.T) {
	js, cache, closeFn, err := stores("")
	require.NoError(t, err)
	assert.IsType(t, &jobs.Tracker{}, js)
	assert.Nil(t, cache)
	assert.NoError(t, closeFn())
}

func TestStatusCommandReadsSnapshot(t *testing.T) {
	db := filepath.Join(t.TempDir(), "jobs.db")
	st, err := store.NewStore(db)
	require.NoError(t, err)
	st.Create("job-1")
	require.NoError(t, st.Append("job-1", "Scanning", jobs.WithStatus(jobs.StatusAnalyzing), jobs.WithProgress(5)))
	require.NoError(t, st.Close())

	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"status", "job-1", "--db", db, "--format", "json"})
	require.NoError(t, root.Execute())

	var j jobs.Job
	require.NoError(t, json.Unmarshal(out.Bytes(), &j))
	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, jobs.StatusAnalyzing, j.Status)
	assert.Equal(t, 5, j.Progress)
}

func TestStatusCommandListsMarkdown(t *testing.T) {
	db := filepath.Join(t.TempDir(), "jobs.db")
	st, err := store.NewStore(db)
	require.NoError(t, err)
	st.Create("job-1")
	require.NoError(t, st.Close())

	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"status", "--db", db})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "| `job-1` | INITIALIZING | 0% |")
}

func TestStatusCommandUnknownJob(t *testing.T) {
	db := filepath.Join(t.TempDir(), "jobs.db")
	st, err := store.NewStore(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	root := rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"status", "missing", "--db", db})
	err = root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
}

func TestStatusCommandMissingDB(t *testing.T) {
	root := rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"status", "--db", filepath.Join(t.TempDir(), "nope.db")})
	assert.Error(t, root.Execute())
}
