package wiki

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianshen/docsynth/internal/integrations"
	"github.com/julianshen/docsynth/internal/parser"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultMaxFileBytes is the largest source file Scan will read.
const DefaultMaxFileBytes int64 = 1 << 20

// DefaultSkipDirs are directory names never descended into.
var DefaultSkipDirs = []string{
	"node_modules", ".git", "vendor", "dist", "build", "coverage", ".next", "__pycache__",
}

// ScanOptions controls which files Scan returns.
type ScanOptions struct {
	SkipDirs     []string
	MaxFileBytes int64
}

// DefaultScanOptions returns the built-in skip list and size limit.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		SkipDirs:     append([]string(nil), DefaultSkipDirs...),
		MaxFileBytes: DefaultMaxFileBytes,
	}
}

// Scan collects the supported source files under dir. Inside a git work tree
// it asks git for tracked and untracked-but-not-ignored files; otherwise it
// walks the directory and honours a top-level .gitignore. Results are sorted
// by slash-separated relative path.
func Scan(ctx context.Context, dir string, opts ScanOptions) ([]parser.SourceFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %s: not a directory", dir)
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}

	relPaths, err := listFiles(ctx, dir, opts)
	if err != nil {
		return nil, err
	}

	skip := skipSet(opts.SkipDirs)
	var files []parser.SourceFile
	for _, rel := range relPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel = filepath.ToSlash(rel)
		if inSkippedDir(rel, skip) || !parser.Supports(rel) {
			continue
		}

		abs := filepath.Join(dir, filepath.FromSlash(rel))
		fi, err := os.Lstat(abs)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if fi.Size() > opts.MaxFileBytes {
			log.Printf("WARNING: skipping %s: %d bytes exceeds limit of %d", rel, fi.Size(), opts.MaxFileBytes)
			continue
		}

		content, err := os.ReadFile(abs)
		if err != nil {
			log.Printf("WARNING: skipping %s: %v", rel, err)
			continue
		}
		files = append(files, parser.SourceFile{Path: rel, Content: content})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// listFiles returns candidate paths relative to dir.
func listFiles(ctx context.Context, dir string, opts ScanOptions) ([]string, error) {
	git := integrations.NewGitRunner(dir)
	if git.Available(ctx) {
		paths, err := git.ListFiles(ctx)
		if err == nil {
			return paths, nil
		}
		log.Printf("WARNING: git ls-files failed, walking %s instead: %v", dir, err)
	}
	return walkFiles(dir, skipSet(opts.SkipDirs))
}

func walkFiles(dir string, skip map[string]bool) ([]string, error) {
	var gi *ignore.GitIgnore
	if compiled, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore")); err == nil {
		gi = compiled
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if skip[name] || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return paths, nil
}

func skipSet(names []string) map[string]bool {
	if names == nil {
		names = DefaultSkipDirs
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func inSkippedDir(rel string, skip map[string]bool) bool {
	parts := strings.Split(rel, "/")
	for _, p := range parts[:len(parts)-1] {
		if skip[p] {
			return true
		}
	}
	return false
}
