// Package jobs tracks the progress of documentation generation runs. Each job
// carries a status, a percentage, the current step and an append-only log.
package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// Status is the lifecycle phase of a job.
type Status string

const (
	StatusInitializing Status = "INITIALIZING"
	StatusAnalyzing    Status = "ANALYZING"
	StatusGenerating   Status = "GENERATING"
	StatusFinalizing   Status = "FINALIZING"
	StatusCompleted    Status = "COMPLETED"
	StatusFailed       Status = "FAILED"
)

// Terminal reports whether no further status changes are accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is a snapshot of one generation run.
type Job struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Step      string    `json:"step"`
	Log       []string  `json:"log"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store records job progress. Implementations must be safe for concurrent use.
type Store interface {
	Create(id string) Job
	Append(id, message string, updates ...Update) error
	Get(id string) (Job, error)
}

// Update is an optional change applied together with a log line.
type Update func(*Job)

// WithProgress sets the percentage, clamped to [0,100]. Regressions are not
// prevented; callers own monotonicity.
func WithProgress(p int) Update {
	return func(j *Job) {
		j.Progress = min(max(p, 0), 100)
	}
}

// WithStep sets the current step description.
func WithStep(step string) Update {
	return func(j *Job) {
		j.Step = step
	}
}

// WithStatus moves the job to a new phase.
func WithStatus(s Status) Update {
	return func(j *Job) {
		j.Status = s
	}
}

// NewID returns a fresh job id.
func NewID() string {
	return uuid.NewString()
}

// Tracker is the in-memory Store. Jobs live for the lifetime of the process.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Create registers a job in INITIALIZING state. Creating an existing id
// resets it.
func (t *Tracker) Create(id string) Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().UTC()
	j := &Job{
		ID:        id,
		Status:    StatusInitializing,
		Log:       []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.jobs[id] = j
	return snapshot(j)
}

// Append adds a timestamped log line and applies updates. Once a job is
// COMPLETED or FAILED only log lines are accepted.
func (t *Tracker) Append(id, message string, updates ...Update) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	j, ok := t.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	Apply(j, t.now(), message, updates...)
	return nil
}

// Get returns a copy of the job.
func (t *Tracker) Get(id string) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	j, ok := t.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return snapshot(j), nil
}

// Apply appends a log line to j and applies updates in place. Status,
// progress and step are frozen once j is terminal. Store implementations
// share it so they agree on these rules.
func Apply(j *Job, now time.Time, message string, updates ...Update) {
	now = now.UTC()
	if message != "" {
		j.Log = append(j.Log, FormatLine(now, message))
	}
	if !j.Status.Terminal() {
		for _, u := range updates {
			u(j)
		}
	}
	j.UpdatedAt = now
}

// FormatLine renders a log line as "[RFC3339] message".
func FormatLine(ts time.Time, message string) string {
	return "[" + ts.UTC().Format(time.RFC3339) + "] " + message
}

func snapshot(j *Job) Job {
	cp := *j
	cp.Log = make([]string, len(j.Log))
	copy(cp.Log, j.Log)
	return cp
}
