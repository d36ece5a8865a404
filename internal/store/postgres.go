package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/usercue/thematic-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock implements it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool. The per-project critical
// section is a transaction holding a SELECT ... FOR UPDATE row lock, so
// concurrent merge-commits for the same project serialize on the database.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, maxConns, minConns int32) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	if minConns <= 0 {
		minConns = 2
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS project_contexts (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL UNIQUE,
	reasoning_context JSONB,
	working_context   JSONB,
	draft_context     JSONB,
	analysis_results  JSONB,
	business_summary  JSONB,
	metadata          JSONB,
	progress          JSONB,
	status            TEXT NOT NULL DEFAULT 'processing',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_project_contexts_status ON project_contexts(status);
`

const projectColumns = `id, name, reasoning_context, working_context, draft_context, analysis_results, business_summary, metadata, progress, status, created_at, updated_at`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, name string, seed func() *model.ProjectContext) (*model.ProjectContext, error) {
	p := seed()
	p.ID = uuid.New().String()
	p.Name = name

	fields, err := marshalProject(p)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO project_contexts
		 (id, name, reasoning_context, working_context, draft_context, analysis_results, business_summary, metadata, progress, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (name) DO NOTHING`,
		p.ID, p.Name, fields.reasoning, fields.working, fields.draft,
		fields.results, fields.summary, fields.metadata, fields.progress,
		string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert project %s", name)
	}

	return s.Get(ctx, name)
}

func (s *PostgresStore) Get(ctx context.Context, name string) (*model.ProjectContext, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM project_contexts WHERE name = $1`, name)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get project %s", name)
	}
	return p, nil
}

func (s *PostgresStore) Mutate(ctx context.Context, name string, fn func(*model.ProjectContext) error) (*model.ProjectContext, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin mutate")
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM project_contexts WHERE name = $1 FOR UPDATE`, name)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("postgres: project not found: %s", name)
		}
		return nil, eris.Wrapf(err, "postgres: lock project %s", name)
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	fields, err := marshalProject(p)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE project_contexts
		 SET working_context = $1, draft_context = $2, analysis_results = $3,
		     business_summary = $4, metadata = $5, progress = $6, status = $7, updated_at = $8
		 WHERE name = $9`,
		fields.working, fields.draft, fields.results, fields.summary,
		fields.metadata, fields.progress, string(p.Status), p.UpdatedAt, name,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update project %s", name)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrapf(err, "postgres: commit project %s", name)
	}
	return p, nil
}

// --- row marshaling helpers ---

type projectFields struct {
	reasoning, working, draft, results, summary, metadata, progress []byte
}

func marshalProject(p *model.ProjectContext) (*projectFields, error) {
	var f projectFields
	var err error

	marshal := func(dst *[]byte, v any, what string) {
		if err != nil {
			return
		}
		*dst, err = json.Marshal(v)
		if err != nil {
			err = eris.Wrapf(err, "postgres: marshal %s", what)
		}
	}

	marshal(&f.reasoning, p.ReasoningContext, "reasoning_context")
	marshal(&f.working, p.WorkingContext, "working_context")
	marshal(&f.progress, p.Progress, "progress")
	if p.DraftContext != nil {
		marshal(&f.draft, p.DraftContext, "draft_context")
	}
	if p.AnalysisResults != nil {
		marshal(&f.results, p.AnalysisResults, "analysis_results")
	}
	if p.BusinessSummary != nil {
		marshal(&f.summary, p.BusinessSummary, "business_summary")
	}
	if p.Metadata != nil {
		marshal(&f.metadata, p.Metadata, "metadata")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func scanProject(row pgx.Row) (*model.ProjectContext, error) {
	var p model.ProjectContext
	var status string
	var reasoning, working, draft, results, summary, metadata, progress []byte

	err := row.Scan(&p.ID, &p.Name, &reasoning, &working, &draft, &results,
		&summary, &metadata, &progress, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = model.ProjectStatus(status)

	unmarshal := func(data []byte, v any, what string) {
		if err != nil || len(data) == 0 {
			return
		}
		if uerr := json.Unmarshal(data, v); uerr != nil {
			err = eris.Wrapf(uerr, "postgres: unmarshal %s", what)
		}
	}

	unmarshal(reasoning, &p.ReasoningContext, "reasoning_context")
	unmarshal(working, &p.WorkingContext, "working_context")
	unmarshal(draft, &p.DraftContext, "draft_context")
	unmarshal(results, &p.AnalysisResults, "analysis_results")
	unmarshal(summary, &p.BusinessSummary, "business_summary")
	unmarshal(metadata, &p.Metadata, "metadata")
	unmarshal(progress, &p.Progress, "progress")
	if err != nil {
		return nil, err
	}

	return &p, nil
}
