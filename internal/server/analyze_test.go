package server

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/abslens/internal/diagram"
)

func TestRunAnalysisWithTestdata(t *testing.T) {
	// go test sets cwd to the package directory.
	dir := filepath.Join("..", "..", "testdata", "01_abstract_contracts")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	snap, cleanup, err := RunAnalysis(context.Background(), AnalysisConfig{
		Input:   dir,
		Diagram: diagram.DefaultDiagramOptions(),
	}, logger)
	t.Cleanup(cleanup)
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, dir, snap.Input)
	assert.Len(t, snap.Result.Contracts, 3)
	assert.Len(t, snap.Result.Types, 4)
	assert.Len(t, snap.Result.Relations, 5)
	assert.NotEmpty(t, snap.Lenses)
	assert.Contains(t, snap.Mermaid, "classDiagram")

	impls, err := snap.Index.ImplementationsOf("TestInterface")
	require.NoError(t, err)
	assert.Len(t, impls, 2)
}

func TestRunAnalysisMissingDir(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_, cleanup, err := RunAnalysis(context.Background(), AnalysisConfig{
		Input: filepath.Join(t.TempDir(), "nope"),
	}, logger)
	t.Cleanup(cleanup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve")
}
