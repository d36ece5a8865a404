// Package store persists project contexts and serializes their mutation.
//
// Concurrent question tasks target the same record's map-valued fields, so
// every mutation goes through Mutate: a read-modify-write executed inside a
// per-project critical section (row lock in Postgres, keyed mutex elsewhere).
// Callbacks merge individual keys, never overwrite whole maps, and progress
// is recomputed from the authoritative results map before commit.
package store

import (
	"context"
	"time"

	"github.com/usercue/thematic-cli/internal/model"
)

// Store defines the persistence interface for project contexts.
type Store interface {
	// GetOrCreate returns the project with the given name, creating it from
	// seed if absent. Creation is idempotent per name.
	GetOrCreate(ctx context.Context, name string, seed func() *model.ProjectContext) (*model.ProjectContext, error)

	// Get returns the project or nil if it does not exist.
	Get(ctx context.Context, name string) (*model.ProjectContext, error)

	// Mutate applies fn to the project's current authoritative state under
	// the per-project lock and writes the result back. fn runs inside the
	// critical section, so decisions derived from the post-merge state
	// (progress thresholds, trigger guards) are race-free. Returning an
	// error from fn aborts the write.
	Mutate(ctx context.Context, name string, fn func(*model.ProjectContext) error) (*model.ProjectContext, error)

	// Migrate creates the backing schema.
	Migrate(ctx context.Context) error

	Close() error
}

// NewProject builds a fresh project context record.
func NewProject(name string, rc model.ReasoningContext, wc model.WorkingContext, totalQuestions int) *model.ProjectContext {
	now := time.Now().UTC()
	return &model.ProjectContext{
		Name:             name,
		ReasoningContext: rc,
		WorkingContext:   wc,
		Progress: model.Progress{
			Total: totalQuestions,
		},
		Status:    model.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset nulls a project's mutable fields and resets progress, leaving the
// static reasoning context in place. Used by the clear/restart operations.
func Reset(ctx context.Context, s Store, name string, wc model.WorkingContext, totalQuestions int) (*model.ProjectContext, error) {
	return s.Mutate(ctx, name, func(p *model.ProjectContext) error {
		p.DraftContext = nil
		p.AnalysisResults = nil
		p.BusinessSummary = nil
		p.Metadata = nil
		p.WorkingContext = wc
		p.Progress = model.Progress{Total: totalQuestions}
		p.Status = model.StatusProcessing
		return nil
	})
}
