// Package generator turns feature groups (or single files) into markdown
// documents by calling a text-generation service. Calls pass through a shared
// rate gate, are retried on transient failures, cached by content, and
// validated structurally. When the service cannot produce an acceptable
// document a simplified prompt is tried, then a local template built from the
// symbol outline, so a document is always returned unless the service
// rejects the request outright.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/julianshen/docsynth/internal/jobs"
)

var (
	// ErrValidation marks a response that failed the structural checks.
	ErrValidation = errors.New("generated text failed validation")
	// ErrPermanent marks a service error that no retry or fallback can fix,
	// such as rejected credentials. It fails the enclosing job.
	ErrPermanent = errors.New("permanent service error")
)

// Completer is the text-generation service.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Document is one generated page.
type Document struct {
	ID              string
	Title           string
	Category        string
	SidebarPosition int
	Body            string
	SourceFiles     []string
	// Fallback is set when Body came from the local template.
	Fallback bool
}

// Config controls retries, prompt budgets and validation thresholds.
type Config struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	TruncateBudget int
	FallbackBudget int
	MinGroupLength int
	MinFileLength  int
	CacheKeyPrefix int
	// ProgressStart and ProgressEnd bound the job percentage GenerateAll
	// reports while working through its units.
	ProgressStart int
	ProgressEnd   int
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		BaseDelay:      2 * time.Second,
		MaxDelay:       30 * time.Second,
		TruncateBudget: 30000,
		FallbackBudget: 60000,
		MinGroupLength: 200,
		MinFileLength:  500,
		CacheKeyPrefix: 1000,
		ProgressStart:  30,
		ProgressEnd:    90,
	}
}

// Options wires an Orchestrator's collaborators. Nil fields get defaults: no
// job logging, a private MemoryCache and the process-wide gate.
type Options struct {
	Config Config
	Jobs   jobs.Store
	Cache  Cache
	Gate   *Gate
}

// Orchestrator generates documents for units of work.
type Orchestrator struct {
	llm   Completer
	cfg   Config
	jobs  jobs.Store
	cache Cache
	gate  *Gate
	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an Orchestrator over llm.
func NewOrchestrator(llm Completer, opts Options) *Orchestrator {
	cfg := opts.Config
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}
	o := &Orchestrator{
		llm:   llm,
		cfg:   cfg,
		jobs:  opts.Jobs,
		cache: opts.Cache,
		gate:  opts.Gate,
		sleep: sleepCtx,
	}
	if o.cache == nil {
		o.cache = NewMemoryCache()
	}
	if o.gate == nil {
		o.gate = SharedGate()
	}
	return o
}

// Generate produces the document for unit. The only error it returns wraps
// ErrPermanent; every other failure degrades to the next fallback tier.
func (o *Orchestrator) Generate(ctx context.Context, jobID string, unit Unit) (Document, error) {
	content := unit.Content()
	key := CacheKey(unit.ID, content, o.cfg.CacheKeyPrefix)

	if body, ok := o.cache.Get(key); ok {
		o.record(jobID, fmt.Sprintf("Cache hit for %s", unit.Title))
		return o.document(unit, body), nil
	}

	tiers := []struct {
		name   string
		system string
		prompt string
	}{
		{"primary", systemPrompt(unit.Mode), renderPrompt(unit, Truncate(content, o.cfg.TruncateBudget), false)},
		{"simplified", simplifiedSystemPrompt, renderPrompt(unit, Truncate(content, o.cfg.FallbackBudget), true)},
	}

	for i, tier := range tiers {
		text, err := o.request(ctx, jobID, unit, tier.system, tier.prompt)
		if err == nil {
			err = o.validate(unit.Mode, text)
		}
		if err == nil {
			o.cache.Put(key, text)
			doc := o.document(unit, text)
			o.record(jobID, fmt.Sprintf("Generated documentation for %s (%s prompt)", unit.Title, tier.name))
			return doc, nil
		}
		if errors.Is(err, ErrPermanent) {
			o.record(jobID, fmt.Sprintf("Generation failed for %s: %v", unit.Title, err))
			return Document{}, err
		}

		if errors.Is(err, ErrValidation) {
			o.record(jobID, fmt.Sprintf("Validation failed for %s (%s prompt): %v", unit.Title, tier.name, err))
		} else {
			o.record(jobID, fmt.Sprintf("Service error for %s (%s prompt): %v", unit.Title, tier.name, err))
		}
		if i+1 < len(tiers) {
			o.record(jobID, fmt.Sprintf("Retrying %s with simplified prompt", unit.Title))
		}
	}

	log.Printf("WARNING: using local template for %s", unit.Title)
	o.record(jobID, fmt.Sprintf("Falling back to local template for %s", unit.Title))
	return LocalTemplate(unit), nil
}

// GenerateAll processes units strictly in order. It stops at the first
// permanent error and returns the documents produced so far.
func (o *Orchestrator) GenerateAll(ctx context.Context, jobID string, units []Unit) ([]Document, error) {
	docs := make([]Document, 0, len(units))
	span := o.cfg.ProgressEnd - o.cfg.ProgressStart

	for i, unit := range units {
		o.record(jobID, fmt.Sprintf("Generating documentation for %s (%d/%d)", unit.Title, i+1, len(units)),
			jobs.WithStep("Generating "+unit.Title))

		doc, err := o.Generate(ctx, jobID, unit)
		if err != nil {
			return docs, fmt.Errorf("generating %s: %w", unit.Title, err)
		}
		docs = append(docs, doc)

		o.record(jobID, "", jobs.WithProgress(o.cfg.ProgressStart+span*(i+1)/len(units)))
	}
	return docs, nil
}

func (o *Orchestrator) validate(mode Mode, text string) error {
	threshold := o.cfg.MinGroupLength
	if mode == ModeFile {
		threshold = o.cfg.MinFileLength
	}
	return Validate(mode, text, threshold)
}

func (o *Orchestrator) document(unit Unit, text string) Document {
	return Document{
		ID:              unit.DocumentID(),
		Title:           unit.Title,
		Category:        unit.Category,
		SidebarPosition: unit.Position,
		Body:            strings.TrimSpace(text) + "\n",
		SourceFiles:     unit.Paths(),
	}
}

// record appends message to the job log and applies updates. An empty
// message only applies updates.
func (o *Orchestrator) record(jobID, message string, updates ...jobs.Update) {
	if o.jobs == nil || jobID == "" {
		return
	}
	if err := o.jobs.Append(jobID, message, updates...); err != nil {
		log.Printf("WARNING: job %s: %v", jobID, err)
	}
}
