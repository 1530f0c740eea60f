// Package scan builds the Method Index of a Java source tree.
//
// Scanning runs in two passes. Pass 1 parses every file on a bounded worker
// pool and extracts per-file facts into index-addressed slots, so discovery
// order never changes the outcome. After the join, pass 2 runs on a single
// goroutine: it inserts methods into the builder, resolves call sites and
// test references to method ids, and freezes the index.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tdkit/tdselect/internal/exclude"
	"github.com/tdkit/tdselect/internal/extract"
	"github.com/tdkit/tdselect/internal/model"
	"github.com/tdkit/tdselect/internal/parser"
)

// Options configures a scan.
type Options struct {
	// Workers bounds the parse worker pool. Zero means runtime.NumCPU().
	Workers int
	// Exclude holds glob patterns of files and directories to skip.
	Exclude []string
	// Logger receives progress and warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// Result is the outcome of a successful scan.
type Result struct {
	Project *model.Project
	// Warnings are sorted by file, then line.
	Warnings []ParseWarning
	// AutoExcluded lists the build output directories that were skipped.
	AutoExcluded []string
	// Resolved and Unresolved count main call sites by outcome.
	Resolved   int
	Unresolved int
}

// Scan walks root and returns its frozen Method Index.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	logger := opts.Logger

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &ScanError{Root: root, Reason: "cannot resolve path", Err: err}
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ScanError{Root: root, Reason: "source root does not exist", Err: err}
		}
		return nil, &ScanError{Root: root, Reason: "cannot stat source root", Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Root: root, Reason: "source root is not a directory"}
	}

	matcher, err := exclude.NewMatcher(opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	start := time.Now()
	files, err := discover(absRoot, matcher)
	if err != nil {
		return nil, &ScanError{Root: root, Reason: "cannot walk source root", Err: err}
	}
	for _, dir := range files.autoExcluded {
		logger.Debug("auto-excluded directory", "dir", dir)
	}
	if len(files.main) == 0 {
		return nil, &ScanError{Root: root, Reason: "no Java main source files found"}
	}
	logger.Info("discovered sources", "root", absRoot, "main", len(files.main), "test", len(files.test))

	// Pass 1: parse and extract in parallel.
	mainFacts, mainWarnings, err := parseAll(ctx, absRoot, files.main, opts.Workers, extract.File)
	if err != nil {
		return nil, err
	}
	testFacts, testWarnings, err := parseAll(ctx, absRoot, files.test, opts.Workers, extract.TestFile)
	if err != nil {
		return nil, err
	}

	var parsed []*extract.FileFacts
	var parsedPaths []string
	for _, f := range mainFacts {
		if f != nil {
			parsed = append(parsed, f)
			parsedPaths = append(parsedPaths, f.Path)
		}
	}
	if len(parsed) == 0 {
		return nil, &ScanError{Root: root, Reason: "no parseable Java main source file"}
	}
	var tests []*extract.TestFacts
	var testPaths []string
	for _, f := range testFacts {
		if f != nil {
			tests = append(tests, f)
			testPaths = append(testPaths, f.Path)
		}
	}

	// Pass 2: single-threaded resolution over the joined facts.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := model.NewBuilder(absRoot)
	b.SetFiles(parsedPaths, testPaths)

	idx := newIndex(parsed)
	for _, m := range idx.methods {
		if err := b.AddMethod(m.facts.Info(m.file.Path)); err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	result := &Result{AutoExcluded: files.autoExcluded}
	for _, m := range idx.methods {
		for _, site := range m.facts.Calls {
			target := idx.resolveCall(m, site)
			if target == nil {
				result.Unresolved++
				continue
			}
			result.Resolved++
			b.AddCall(m.id, target.id)
		}
	}

	credited := 0
	for _, tf := range tests {
		for _, site := range tf.Calls {
			for _, target := range idx.resolveTestCall(tf, site) {
				b.AddTestReference(target.id, tf.Path)
				credited++
			}
		}
	}

	result.Project = b.Freeze()
	result.Warnings = append(mainWarnings, testWarnings...)
	sort.SliceStable(result.Warnings, func(i, j int) bool {
		if result.Warnings[i].File != result.Warnings[j].File {
			return result.Warnings[i].File < result.Warnings[j].File
		}
		return result.Warnings[i].Line < result.Warnings[j].Line
	})
	for _, w := range result.Warnings {
		logger.Warn("parse warning", "file", w.File, "line", w.Line, "message", w.Message)
	}

	logger.Info("scan complete",
		"methods", result.Project.Len(),
		"edges", result.Project.EdgeCount(),
		"resolved", result.Resolved,
		"unresolved", result.Unresolved,
		"testReferences", credited,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// parseAll parses files on a pool of workers, one parser per task, and
// applies fn to each tree. Slot i of the returned facts belongs to files[i]
// and is nil when the file could not be read or parsed.
func parseAll[T any](ctx context.Context, root string, files []string, workers int, fn func(*parser.ParseResult, string) *T) ([]*T, []ParseWarning, error) {
	facts := make([]*T, len(files))
	warnings := make([][]ParseWarning, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := parser.NewParser()
			if err != nil {
				return err
			}
			defer p.Close()

			result, err := p.ParseFile(gctx, filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				warnings[i] = []ParseWarning{{File: rel, Message: "skipped: " + err.Error()}}
				return nil
			}
			defer result.Close()

			for _, se := range result.SyntaxErrors() {
				warnings[i] = append(warnings[i], ParseWarning{File: rel, Line: int(se.Line), Message: se.Message})
			}
			facts[i] = fn(result, rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var flat []ParseWarning
	for _, w := range warnings {
		flat = append(flat, w...)
	}
	return facts, flat, nil
}
