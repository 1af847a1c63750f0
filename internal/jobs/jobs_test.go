package jobs

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTracker() *Tracker {
	tr := NewTracker()
	tr.now = func() time.Time {
		return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	}
	return tr
}

func TestCreateStartsInitializing(t *testing.T) {
	tr := fixedTracker()
	j := tr.Create("job-1")

	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, StatusInitializing, j.Status)
	assert.Equal(t, 0, j.Progress)
	assert.NotNil(t, j.Log)
	assert.Empty(t, j.Log)
}

func TestAppendLogAndUpdates(t *testing.T) {
	tr := fixedTracker()
	tr.Create("job-1")

	require.NoError(t, tr.Append("job-1", "scanning", WithStatus(StatusAnalyzing), WithProgress(10), WithStep("scan")))
	require.NoError(t, tr.Append("job-1", "parsed 3 files", WithProgress(20)))

	j, err := tr.Get("job-1")
	require.NoError(t, err)
	assert.Equal(t, StatusAnalyzing, j.Status)
	assert.Equal(t, 20, j.Progress)
	assert.Equal(t, "scan", j.Step)
	assert.Equal(t, []string{
		"[2026-10-15T12:00:00Z] scanning",
		"[2026-10-15T12:00:00Z] parsed 3 files",
	}, j.Log)
}

func TestProgressIsClampedButNotMonotonic(t *testing.T) {
	tr := fixedTracker()
	tr.Create("j")

	require.NoError(t, tr.Append("j", "", WithProgress(150)))
	j, _ := tr.Get("j")
	assert.Equal(t, 100, j.Progress)

	require.NoError(t, tr.Append("j", "", WithProgress(40)))
	j, _ = tr.Get("j")
	assert.Equal(t, 40, j.Progress, "tracker does not enforce monotonic progress")

	require.NoError(t, tr.Append("j", "", WithProgress(-5)))
	j, _ = tr.Get("j")
	assert.Equal(t, 0, j.Progress)
	assert.Empty(t, j.Log, "empty messages add no log line")
}

func TestTerminalStatusFreezesState(t *testing.T) {
	tr := fixedTracker()
	tr.Create("j")
	require.NoError(t, tr.Append("j", "done", WithStatus(StatusCompleted), WithProgress(100)))
	require.NoError(t, tr.Append("j", "late line", WithStatus(StatusGenerating), WithProgress(5), WithStep("again")))

	j, err := tr.Get("j")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, j.Status)
	assert.Equal(t, 100, j.Progress)
	assert.Empty(t, j.Step)
	assert.Len(t, j.Log, 2, "log lines are still accepted after completion")
}

func TestUnknownJob(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Get("missing")
	assert.True(t, errors.Is(err, ErrJobNotFound))

	err = tr.Append("missing", "x")
	assert.True(t, errors.Is(err, ErrJobNotFound))
}

func TestGetReturnsCopy(t *testing.T) {
	tr := fixedTracker()
	tr.Create("j")
	require.NoError(t, tr.Append("j", "one"))

	j, _ := tr.Get("j")
	j.Log[0] = "mutated"

	again, _ := tr.Get("j")
	assert.Equal(t, "[2026-10-15T12:00:00Z] one", again.Log[0])
}

func TestConcurrentJobsUseDisjointKeys(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("job-%d", i)
		tr.Create(id)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				_ = tr.Append(id, "tick", WithProgress(n*2))
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		j, err := tr.Get(fmt.Sprintf("job-%d", i))
		require.NoError(t, err)
		assert.Len(t, j.Log, 50)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
