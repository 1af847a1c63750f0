package parser

import (
	"context"
	"log"

	"github.com/sourcegraph/conc/pool"
)

// Failure records a file that could not be parsed.
type Failure struct {
	Path string
	Err  error
}

// BatchResult holds the outcome of parsing a set of files.
type BatchResult struct {
	Files    []ParsedFile // in input order
	Failures []Failure
	Skipped  int // unsupported extension or no named symbols
}

// ParseAll parses files concurrently. Failures are logged and reported but
// never abort the batch; files without symbols are dropped. The order of
// Files matches the order of the input.
func (p *Parser) ParseAll(ctx context.Context, files []SourceFile) BatchResult {
	parsed := make([]*ParsedFile, len(files))
	errs := make([]error, len(files))

	wp := pool.New().WithMaxGoroutines(p.concurrency)
	for i, f := range files {
		wp.Go(func() {
			parsed[i], errs[i] = p.Parse(ctx, f)
		})
	}
	wp.Wait()

	var result BatchResult
	for i, f := range files {
		switch {
		case errs[i] != nil:
			log.Printf("WARNING: skipping %s: %v", f.Path, errs[i])
			result.Failures = append(result.Failures, Failure{Path: f.Path, Err: errs[i]})
		case parsed[i] == nil:
			result.Skipped++
		default:
			result.Files = append(result.Files, *parsed[i])
		}
	}
	return result
}
