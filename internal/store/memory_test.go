package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usercue/thematic-cli/internal/model"
)

func seedProject() *model.ProjectContext {
	return NewProject("p", model.ReasoningContext{ProjectBackground: "bg"}, model.WorkingContext{Model: "m"}, 4)
}

func TestMemoryStoreGetOrCreate(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	created, err := s.GetOrCreate(ctx, "p", seedProject)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "p", created.Name)

	again, err := s.GetOrCreate(ctx, "p", func() *model.ProjectContext {
		t.Log("seed called for existing project")
		return seedProject()
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID, "existing project is reused")
}

func TestMemoryStoreGetMissing(t *testing.T) {
	t.Parallel()
	s := NewMemory()

	got, err := s.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	_, err := s.GetOrCreate(ctx, "p", seedProject)
	require.NoError(t, err)

	got, err := s.Get(ctx, "p")
	require.NoError(t, err)

	// Mutating the returned copy never leaks into the store.
	got.AnalysisResults = map[string]*model.ThemeRecord{"q": {}}
	got.Status = model.StatusFailed

	fresh, err := s.Get(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, fresh.AnalysisResults)
	assert.Equal(t, model.StatusProcessing, fresh.Status)
}

func TestMemoryStoreMutateMissing(t *testing.T) {
	t.Parallel()
	s := NewMemory()

	_, err := s.Mutate(context.Background(), "nobody", func(p *model.ProjectContext) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project not found")
}

func TestMemoryStoreMutateFnErrorDiscardsChanges(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	_, err := s.GetOrCreate(ctx, "p", seedProject)
	require.NoError(t, err)

	_, err = s.Mutate(ctx, "p", func(p *model.ProjectContext) error {
		p.Status = model.StatusFailed
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := s.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, got.Status)
}

func TestMemoryStoreConcurrentMutates(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	_, err := s.GetOrCreate(ctx, "p", seedProject)
	require.NoError(t, err)

	// Each goroutine commits one distinct result key; under the per-project
	// critical section no commit can clobber another.
	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26)) + string(rune('0'+i/26))
			_, err := s.Mutate(ctx, "p", func(p *model.ProjectContext) error {
				if p.AnalysisResults == nil {
					p.AnalysisResults = make(map[string]*model.ThemeRecord)
				}
				p.AnalysisResults[key] = &model.ThemeRecord{}
				p.RecomputeProgress()
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Get(ctx, "p")
	require.NoError(t, err)
	assert.Len(t, got.AnalysisResults, n)
	assert.Equal(t, n, got.Progress.Completed)
}
