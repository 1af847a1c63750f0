package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/julianshen/docsynth/internal/generator"
	"github.com/julianshen/docsynth/internal/jobs"
	"github.com/julianshen/docsynth/internal/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStarter records start requests and registers a job for each.
type fakeStarter struct {
	mu      sync.Mutex
	tracker *jobs.Tracker
	started []wiki.Config
}

func (f *fakeStarter) Start(cfg wiki.Config) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, cfg)
	id := jobs.NewID()
	f.tracker.Create(id)
	return id
}

func newTestServer(t *testing.T, defaults wiki.Config) (*httptest.Server, *fakeStarter, *jobs.Tracker) {
	t.Helper()
	tracker := jobs.NewTracker()
	starter := &fakeStarter{tracker: tracker}
	srv := httptest.NewServer(NewHandler(starter, tracker, defaults))
	t.Cleanup(srv.Close)
	return srv, starter, tracker
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStartJob(t *testing.T) {
	srv, starter, tracker := newTestServer(t, wiki.Config{Mode: generator.ModeGroup})

	resp := post(t, srv.URL+"/jobs", `{"dir": "/src/app", "output": "/out/docs"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body StartResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.ID)

	_, err := tracker.Get(body.ID)
	require.NoError(t, err)
	require.Len(t, starter.started, 1)
	assert.Equal(t, "/src/app", starter.started[0].Dir)
	assert.Equal(t, "/out/docs", starter.started[0].OutputDir)
	assert.Equal(t, generator.ModeGroup, starter.started[0].Mode)
}

func TestStartJobDefaultsOutputUnderDir(t *testing.T) {
	srv, starter, _ := newTestServer(t, wiki.Config{OutputDir: "site"})

	resp := post(t, srv.URL+"/jobs", `{"dir": "/src/app", "mode": "file"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, filepath.Join("/src/app", "site"), starter.started[0].OutputDir)
	assert.Equal(t, generator.ModeFile, starter.started[0].Mode)
}

func TestStartJobValidation(t *testing.T) {
	srv, starter, _ := newTestServer(t, wiki.Config{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"dir":`},
		{"missing dir", `{"output": "/x"}`},
		{"unknown field", `{"dir": "/x", "colour": "red"}`},
		{"bad mode", `{"dir": "/x", "mode": "chapter"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/jobs", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
	assert.Empty(t, starter.started)
}

func TestGetJob(t *testing.T) {
	srv, _, tracker := newTestServer(t, wiki.Config{})
	tracker.Create("job-1")
	require.NoError(t, tracker.Append("job-1", "Scanning", jobs.WithStatus(jobs.StatusAnalyzing), jobs.WithProgress(5), jobs.WithStep("Scanning source files")))

	resp, err := http.Get(srv.URL + "/jobs/job-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var j jobs.Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&j))
	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, jobs.StatusAnalyzing, j.Status)
	assert.Equal(t, 5, j.Progress)
	assert.Equal(t, "Scanning source files", j.Step)
	require.Len(t, j.Log, 1)
	assert.True(t, strings.HasSuffix(j.Log[0], "] Scanning"))
}

func TestGetUnknownJob(t *testing.T) {
	srv, _, _ := newTestServer(t, wiki.Config{})

	resp, err := http.Get(srv.URL + "/jobs/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t, wiki.Config{})

	resp, err := http.Get(srv.URL + "/jobs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t, wiki.Config{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
