package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olehluchkiv/abslens/internal/analyzer"
	"github.com/olehluchkiv/abslens/internal/diagram"
	"github.com/olehluchkiv/abslens/internal/resolver"
)

// AnalysisConfig holds parameters for the analysis pipeline.
type AnalysisConfig struct {
	Input   string
	Analyze analyzer.AnalyzeOptions
	Resolve resolver.Options
	Diagram diagram.DiagramOptions
}

// RunAnalysis executes the resolve → analyze → filter → snapshot pipeline.
func RunAnalysis(ctx context.Context, cfg AnalysisConfig, logger *slog.Logger) (*Snapshot, func(), error) {
	logger = logger.With("component", "analysis")

	logger.Info("resolving input", "input", cfg.Input)
	dir, cleanup, err := resolver.Resolve(ctx, cfg.Input, cfg.Resolve, logger)
	if err != nil {
		return nil, func() {}, fmt.Errorf("resolve: %w", err)
	}

	snap, err := analyzeDir(ctx, cfg, dir, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return snap, cleanup, nil
}

// analyzeDir runs the analysis on an already resolved module root.
func analyzeDir(ctx context.Context, cfg AnalysisConfig, dir string, logger *slog.Logger) (*Snapshot, error) {
	logger.Info("analyzing packages", "dir", dir)
	result, err := analyzer.Analyze(ctx, dir, cfg.Analyze, logger)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	result = analyzer.Filter(result, cfg.Analyze)

	logger.Info("analysis complete",
		"contracts", len(result.Contracts),
		"types", len(result.Types),
		"relations", len(result.Relations),
		"partials", len(result.Partials))

	return NewSnapshot(cfg.Input, result, cfg.Diagram), nil
}
