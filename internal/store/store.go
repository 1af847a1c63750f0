// Package store provides SQLite-backed persistence for generated documents
// and job progress, so results survive restarts and can be inspected by a
// separate process.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/julianshen/docsynth/internal/generator"
	"github.com/julianshen/docsynth/internal/jobs"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database for cache and job persistence.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex // serializes job read-modify-write
	now func() time.Time
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures
// all required tables exist. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS doc_bodies (
			key       TEXT PRIMARY KEY,
			body      TEXT NOT NULL,
			cached_at DATETIME NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS jobs (
			id         TEXT PRIMARY KEY,
			status     TEXT NOT NULL,
			progress   INTEGER NOT NULL,
			step       TEXT NOT NULL,
			log        TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// ---------- document cache ----------

// Cache is a generator.Cache that keeps hot entries in memory and writes
// every entry through to the database.
type Cache struct {
	store *Store
	mem   *generator.MemoryCache
}

// Cache returns a document cache backed by s.
func (s *Store) Cache() *Cache {
	return &Cache{store: s, mem: generator.NewMemoryCache()}
}

// Get looks in memory first, then in the database.
func (c *Cache) Get(key string) (string, bool) {
	if body, ok := c.mem.Get(key); ok {
		return body, true
	}
	body, ok, err := c.store.GetBody(key)
	if err != nil {
		log.Printf("WARNING: doc cache lookup: %v", err)
		return "", false
	}
	if ok {
		c.mem.Put(key, body)
	}
	return body, ok
}

// Put stores body in memory and in the database. A database failure is
// logged; the memory entry still serves this process.
func (c *Cache) Put(key, body string) {
	c.mem.Put(key, body)
	if err := c.store.PutBody(key, body); err != nil {
		log.Printf("WARNING: doc cache write: %v", err)
	}
}

// PutBody persists a validated document body under key, replacing any
// existing entry.
func (s *Store) PutBody(key, body string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO doc_bodies (key, body, cached_at) VALUES (?, ?, datetime('now'))`,
		key, body,
	)
	if err != nil {
		return fmt.Errorf("put document body: %w", err)
	}
	return nil
}

// GetBody retrieves a cached document body by key.
func (s *Store) GetBody(key string) (string, bool, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM doc_bodies WHERE key = ?`, key).Scan(&body)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get document body: %w", err)
	}
	return body, true, nil
}

// CountDocuments returns the number of cached bodies.
func (s *Store) CountDocuments() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM doc_bodies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// ---------- jobs ----------

// Create registers a job in INITIALIZING state, replacing any job with the
// same id. It satisfies jobs.Store, which has no error return, so a failed
// write is logged.
func (s *Store) Create(id string) jobs.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	j := jobs.Job{
		ID:        id,
		Status:    jobs.StatusInitializing,
		Log:       []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.saveJob(j); err != nil {
		log.Printf("WARNING: %v", err)
	}
	return j
}

// Append adds a log line and applies updates using the same rules as the
// in-memory tracker.
func (s *Store) Append(id, message string, updates ...jobs.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.loadJob(id)
	if err != nil {
		return err
	}
	jobs.Apply(&j, s.now(), message, updates...)
	return s.saveJob(j)
}

// Get returns the stored snapshot of a job.
func (s *Store) Get(id string) (jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadJob(id)
}

// ListJobs returns every stored job, newest first.
func (s *Store) ListJobs() ([]jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, status, progress, step, log, created_at, updated_at
		 FROM jobs ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var list []jobs.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, j)
	}
	return list, rows.Err()
}

func (s *Store) loadJob(id string) (jobs.Job, error) {
	row := s.db.QueryRow(
		`SELECT id, status, progress, step, log, created_at, updated_at
		 FROM jobs WHERE id = ?`, id,
	)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return jobs.Job{}, fmt.Errorf("%w: %s", jobs.ErrJobNotFound, id)
	}
	return j, err
}

func (s *Store) saveJob(j jobs.Job) error {
	logJSON, err := json.Marshal(j.Log)
	if err != nil {
		return fmt.Errorf("encode job log: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO jobs (id, status, progress, step, log, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, string(j.Status), j.Progress, j.Step, string(logJSON),
		formatTime(j.CreatedAt), formatTime(j.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save job %s: %w", j.ID, err)
	}
	return nil
}

// timeLayout is fixed width so that job timestamps sort chronologically as
// text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (jobs.Job, error) {
	var (
		j                jobs.Job
		status, logJSON  string
		created, updated string
	)
	if err := r.Scan(&j.ID, &status, &j.Progress, &j.Step, &logJSON, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return jobs.Job{}, err
		}
		return jobs.Job{}, fmt.Errorf("scan job: %w", err)
	}
	j.Status = jobs.Status(status)
	if err := json.Unmarshal([]byte(logJSON), &j.Log); err != nil {
		return jobs.Job{}, fmt.Errorf("decode job log: %w", err)
	}
	var err error
	if j.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return jobs.Job{}, fmt.Errorf("parse created_at: %w", err)
	}
	if j.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return jobs.Job{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return j, nil
}
