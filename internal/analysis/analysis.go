// Package analysis runs the selection pipeline: scan, four concurrent
// scorers, aggregation and report assembly.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tdkit/tdselect/internal/config"
	"github.com/tdkit/tdselect/internal/graph"
	"github.com/tdkit/tdselect/internal/output"
	"github.com/tdkit/tdselect/internal/rank"
	"github.com/tdkit/tdselect/internal/report"
	"github.com/tdkit/tdselect/internal/scan"
	"github.com/tdkit/tdselect/internal/score"
	"github.com/tdkit/tdselect/internal/store"
)

// Result is everything one run produced.
type Result struct {
	Scan       *scan.Result
	Sets       rank.Sets
	Candidates []rank.Candidate
	Stats      rank.Stats
	Graph      graph.Stats
	Report     *report.Report
}

// Run validates cfg and executes the pipeline. Nothing is written to disk.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	mode, err := rank.ParseMode(cfg.Analysis.Mode)
	if err != nil {
		return nil, &config.ConfigError{Field: "analysis.mode", Value: cfg.Analysis.Mode, Reason: err.Error()}
	}

	start := time.Now()
	scanned, err := scan.Scan(ctx, cfg.Analysis.Input, scan.Options{
		Workers: cfg.Analysis.Workers,
		Exclude: cfg.Scan.Exclude,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	gs := graph.FromProject(scanned.Project).ComputeStats()
	logger.Info("call graph",
		"main_files", len(scanned.Project.MainFiles()),
		"test_files", len(scanned.Project.TestFiles()),
		"methods", gs.Nodes,
		"edges", gs.Edges,
		"cycles", gs.Cycles,
		"largest_scc", gs.LargestSCC,
		"max_fan_in", gs.MaxInDegree)

	sets, err := Score(ctx, cfg, scanned)
	if err != nil {
		return nil, err
	}

	candidates, stats, err := rank.Aggregate(scanned.Project, sets, rank.Options{
		Mode:          mode,
		Top:           cfg.Analysis.Top,
		MinStatements: cfg.Analysis.MinStatements,
		Exclude:       cfg.Analysis.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("rank %s: %w", cfg.Analysis.Input, err)
	}

	rep := report.Build(scanned.Project, candidates, report.Options{
		Input:            cfg.Analysis.Input,
		Output:           cfg.Analysis.Output,
		Mode:             mode,
		TotalCandidates:  stats.Eligible,
		FullCutThreshold: cfg.Report.FullCutThreshold,
		Warnings:         warningLines(scanned.Warnings),
	})

	logger.Info("selection complete",
		"mode", mode.String(),
		"indexed", stats.Indexed,
		"eligible", stats.Eligible,
		"selected", len(candidates),
		"duration", time.Since(start))
	for reason, n := range stats.Excluded {
		logger.Debug("excluded methods", "reason", reason, "count", n)
	}

	return &Result{
		Scan:       scanned,
		Sets:       sets,
		Candidates: candidates,
		Stats:      stats,
		Graph:      gs,
		Report:     rep,
	}, nil
}

// Scorers builds the four scorers from cfg.
func Scorers(cfg *config.Config) []score.Scorer {
	return []score.Scorer{
		score.NewHeuristicScorer(cfg.HeuristicParams()),
		score.NewComplexityScorer(cfg.ComplexityParams()),
		score.NewDependencyScorer(cfg.DependencyParams()),
		score.NewTestSignalScorer(cfg.TestSignalParams()),
	}
}

// Score runs the scorers concurrently over the frozen index and joins
// before returning.
func Score(ctx context.Context, cfg *config.Config, scanned *scan.Result) (rank.Sets, error) {
	scorers := Scorers(cfg)
	results := make([]score.Records, len(scorers))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range scorers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.Score(scanned.Project)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sets := make(rank.Sets, len(scorers))
	for i, s := range scorers {
		sets[s.Name()] = results[i]
	}
	return sets, nil
}

// WriteOutputs writes the SQLite export, when configured, and then the
// report. A failed export leaves neither file behind; a failed report write
// removes the export.
func WriteOutputs(cfg *config.Config, res *Result, version string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	format, err := output.ParseFormat(cfg.Report.Format)
	if err != nil {
		return &config.ConfigError{Field: "report.format", Value: cfg.Report.Format, Reason: err.Error()}
	}

	if cfg.Analysis.OutDB != "" {
		if err := exportRun(cfg, res, version, logger); err != nil {
			return err
		}
	}

	if err := report.WriteFile(cfg.Analysis.OutPath, res.Report, format); err != nil {
		if cfg.Analysis.OutDB != "" {
			_ = os.Remove(cfg.Analysis.OutDB)
		}
		return err
	}
	logger.Info("report written", "path", cfg.Analysis.OutPath, "format", format.String())
	return nil
}

func exportRun(cfg *config.Config, res *Result, version string, logger *slog.Logger) error {
	db, err := store.Open(cfg.Analysis.OutDB)
	if err != nil {
		return fmt.Errorf("export %s: %w", cfg.Analysis.OutDB, err)
	}

	meta := store.RunMeta{
		Input:           cfg.Analysis.Input,
		Mode:            res.Report.Mode,
		Top:             cfg.Analysis.Top,
		TotalCandidates: res.Stats.Eligible,
		Fingerprint:     res.Report.Fingerprint,
		Version:         version,
		Warnings:        res.Report.Warnings,
	}
	if err := db.SaveRun(res.Scan.Project, res.Candidates, meta); err != nil {
		_ = db.Close()
		_ = os.Remove(db.Path())
		return fmt.Errorf("export %s: %w", cfg.Analysis.OutDB, err)
	}

	counts, err := db.Counts()
	if err != nil {
		_ = db.Close()
		_ = os.Remove(db.Path())
		return fmt.Errorf("export %s: %w", cfg.Analysis.OutDB, err)
	}
	logger.Info("run exported",
		"path", db.Path(),
		"methods", counts.Methods,
		"calls", counts.Calls,
		"candidates", counts.Candidates)
	return db.Close()
}

func warningLines(ws []scan.ParseWarning) []string {
	lines := make([]string, 0, len(ws))
	for _, w := range ws {
		if w.Line > 0 {
			lines = append(lines, fmt.Sprintf("%s: line %d: %s", w.File, w.Line, w.Message))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", w.File, w.Message))
	}
	return lines
}
