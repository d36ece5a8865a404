package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usercue/thematic-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	created, err := s.GetOrCreate(ctx, "p", seedProject)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "bg", created.ReasoningContext.ProjectBackground)
	assert.Equal(t, 4, created.Progress.Total)

	got, err := s.Get(ctx, "p")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, model.StatusProcessing, got.Status)
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)

	got, err := s.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStoreMutate(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetOrCreate(ctx, "p", seedProject)
	require.NoError(t, err)

	updated, err := s.Mutate(ctx, "p", func(p *model.ProjectContext) error {
		p.AnalysisResults = map[string]*model.ThemeRecord{
			"q1": {Question: "Question one", Participants: 3},
		}
		p.RecordError("q2", "model call failed")
		p.RecomputeProgress()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Progress.Completed)

	got, err := s.Get(ctx, "p")
	require.NoError(t, err)
	require.Contains(t, got.AnalysisResults, "q1")
	assert.Equal(t, 3, got.AnalysisResults["q1"].Participants)
	assert.Equal(t, "model call failed", got.WorkingContext.Errors["q2"])
	assert.Equal(t, 1, got.Progress.Completed)
	assert.Equal(t, 25, got.Progress.Percent)
}

func TestSQLiteStoreMutateMissing(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)

	_, err := s.Mutate(context.Background(), "nobody", func(p *model.ProjectContext) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project not found")
}

func TestSQLiteStoreReset(t *testing.T) {
	t.Parallel()
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetOrCreate(ctx, "p", seedProject)
	require.NoError(t, err)

	_, err = s.Mutate(ctx, "p", func(p *model.ProjectContext) error {
		p.AnalysisResults = map[string]*model.ThemeRecord{"q1": {}}
		p.Status = model.StatusCompleted
		p.RecomputeProgress()
		return nil
	})
	require.NoError(t, err)

	reset, err := Reset(ctx, s, "p", model.WorkingContext{Model: "m"}, 4)
	require.NoError(t, err)
	assert.Empty(t, reset.AnalysisResults)
	assert.Equal(t, model.StatusProcessing, reset.Status)
	assert.Equal(t, 0, reset.Progress.Completed)
	assert.Equal(t, 4, reset.Progress.Total)
}
