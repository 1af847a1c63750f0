// Package wiki turns a source tree into a documentation site: it scans the
// tree, drives parsing, classification and generation, and writes the docs
// tree with its navigation files.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/julianshen/docsynth/internal/classifier"
	"github.com/julianshen/docsynth/internal/generator"
	"github.com/julianshen/docsynth/internal/integrations"
	"github.com/julianshen/docsynth/internal/jobs"
	"github.com/julianshen/docsynth/internal/parser"
)

// ErrNoSources is recorded when a run finds nothing to document.
var ErrNoSources = errors.New("no supported source files")

// Config describes one generation run.
type Config struct {
	Dir       string
	OutputDir string
	Mode      generator.Mode
	Scan      ScanOptions
}

// RunnerOptions wires a Runner's collaborators.
type RunnerOptions struct {
	Generation  generator.Config
	Cache       generator.Cache
	Gate        *generator.Gate
	Concurrency int       // parallel parses
	Stderr      io.Writer // stage lines; nil means os.Stderr
}

// Runner executes generation runs and records their progress in a job store.
type Runner struct {
	jobs   jobs.Store
	parser *parser.Parser
	orch   *generator.Orchestrator
	out    io.Writer
	wg     sync.WaitGroup
}

// NewRunner creates a Runner that generates text through llm and reports to
// store.
func NewRunner(llm generator.Completer, store jobs.Store, opts RunnerOptions) *Runner {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	out := opts.Stderr
	if out == nil {
		out = os.Stderr
	}
	return &Runner{
		jobs:   store,
		parser: parser.NewParser(concurrency),
		orch: generator.NewOrchestrator(llm, generator.Options{
			Config: opts.Generation,
			Jobs:   store,
			Cache:  opts.Cache,
			Gate:   opts.Gate,
		}),
		out: out,
	}
}

// Start creates a job and runs it in the background. The run is detached
// from any request context and cannot be cancelled; its outcome is visible
// only through the job store.
func (r *Runner) Start(cfg Config) string {
	id := jobs.NewID()
	r.jobs.Create(id)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = r.run(context.Background(), id, cfg)
	}()
	return id
}

// Wait blocks until every run started with Start has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Run creates a job and executes it synchronously.
func (r *Runner) Run(ctx context.Context, cfg Config) (string, error) {
	id := jobs.NewID()
	r.jobs.Create(id)
	return id, r.run(ctx, id, cfg)
}

// run executes scan -> parse -> classify -> generate -> materialize.
func (r *Runner) run(ctx context.Context, jobID string, cfg Config) error {
	mode := cfg.Mode
	if mode == "" {
		mode = generator.ModeGroup
	}

	// Stage 1: Scan
	fmt.Fprintf(r.out, "docsynth: scanning %s...\n", cfg.Dir)
	r.record(jobID, "Scanning "+cfg.Dir, jobs.WithStatus(jobs.StatusAnalyzing), jobs.WithStep("Scanning source files"), jobs.WithProgress(5))
	files, err := Scan(ctx, cfg.Dir, cfg.Scan)
	if err != nil {
		return r.fail(jobID, fmt.Errorf("scan: %w", err))
	}
	if len(files) == 0 {
		return r.fail(jobID, fmt.Errorf("scan %s: %w", cfg.Dir, ErrNoSources))
	}
	sources := make(map[string][]byte, len(files))
	for _, f := range files {
		sources[f.Path] = f.Content
	}

	// Stage 2: Parse
	fmt.Fprintf(r.out, "docsynth: parsing %d files...\n", len(files))
	r.record(jobID, fmt.Sprintf("Found %d source files", len(files)), jobs.WithStep("Parsing source files"), jobs.WithProgress(10))
	batch := r.parser.ParseAll(ctx, files)
	for _, f := range batch.Failures {
		r.record(jobID, fmt.Sprintf("Skipped %s: %v", f.Path, f.Err))
	}
	if len(batch.Files) == 0 {
		return r.fail(jobID, fmt.Errorf("parse: %w: none of %d files declared symbols", ErrNoSources, len(files)))
	}
	r.record(jobID, fmt.Sprintf("Parsed %d files (%d failed, %d without symbols)", len(batch.Files), len(batch.Failures), batch.Skipped), jobs.WithProgress(15))

	// Stage 3: Classify
	fmt.Fprintf(r.out, "docsynth: classifying %d files...\n", len(batch.Files))
	r.record(jobID, "", jobs.WithStep("Classifying features"))
	groups := classifier.Classify(batch.Files)
	for _, g := range groups {
		r.record(jobID, fmt.Sprintf("%s: %d file(s)", g.Label, len(g.Files)))
	}
	r.record(jobID, fmt.Sprintf("Identified %d feature groups", len(groups)), jobs.WithProgress(25))

	// Stage 4: Generate
	units := generator.UnitsFromGroups(groups, sources, mode)
	fmt.Fprintf(r.out, "docsynth: generating %d documents...\n", len(units))
	r.record(jobID, fmt.Sprintf("Generating %d documents in %s mode", len(units), mode), jobs.WithStatus(jobs.StatusGenerating), jobs.WithProgress(30))
	docs, err := r.orch.GenerateAll(ctx, jobID, units)
	if err != nil {
		return r.fail(jobID, fmt.Errorf("generate: %w", err))
	}

	// Stage 5: Materialize
	fmt.Fprintf(r.out, "docsynth: writing %d documents to %s...\n", len(docs), cfg.OutputDir)
	r.record(jobID, "Writing documentation to "+cfg.OutputDir, jobs.WithStatus(jobs.StatusFinalizing), jobs.WithStep("Writing documentation"), jobs.WithProgress(92))
	m := NewMaterializer(cfg.OutputDir, nil)
	m.Revision = revision(ctx, cfg.Dir)
	res, err := m.Materialize(docs)
	for _, id := range res.Failed {
		r.record(jobID, "Failed to write "+id)
	}
	if err != nil {
		return r.fail(jobID, fmt.Errorf("materialize: %w", err))
	}

	fallbacks := 0
	for _, d := range docs {
		if d.Fallback {
			fallbacks++
		}
	}
	fmt.Fprintf(r.out, "docsynth: done.\n")
	r.record(jobID, fmt.Sprintf("Generated %d documents (%d from local template)", len(docs)-len(res.Failed), fallbacks),
		jobs.WithStatus(jobs.StatusCompleted), jobs.WithStep("Completed"), jobs.WithProgress(100))
	return nil
}

func (r *Runner) fail(jobID string, err error) error {
	fmt.Fprintf(r.out, "docsynth: failed: %v\n", err)
	r.record(jobID, "Error: "+err.Error(), jobs.WithStatus(jobs.StatusFailed), jobs.WithStep("Failed"))
	return err
}

func (r *Runner) record(jobID, message string, updates ...jobs.Update) {
	if err := r.jobs.Append(jobID, message, updates...); err != nil {
		fmt.Fprintf(r.out, "docsynth: job %s: %v\n", jobID, err)
	}
}

// revision returns the short commit hash of dir, or "" outside git.
func revision(ctx context.Context, dir string) string {
	git := integrations.NewGitRunner(dir)
	if !git.Available(ctx) {
		return ""
	}
	rev, err := git.Revision(ctx)
	if err != nil {
		return ""
	}
	return rev
}
