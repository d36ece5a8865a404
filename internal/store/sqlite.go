package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/usercue/thematic-cli/internal/model"
)

// SQLiteStore implements Store on a local sqlite file. SQLite has no row
// locks, so the per-project critical section is a keyed in-process mutex
// wrapped around a read-modify-write transaction. That is sufficient because
// a sqlite deployment is single-process.
type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSQLite opens (or creates) a sqlite database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}
	return &SQLiteStore{db: db, locks: make(map[string]*sync.Mutex)}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS project_contexts (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL UNIQUE,
	reasoning_context TEXT,
	working_context   TEXT,
	draft_context     TEXT,
	analysis_results  TEXT,
	business_summary  TEXT,
	metadata          TEXT,
	progress          TEXT,
	status            TEXT NOT NULL DEFAULT 'processing',
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_project_contexts_status ON project_contexts(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// lockFor returns the mutex guarding the named project, creating it on
// first use.
func (s *SQLiteStore) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *SQLiteStore) GetOrCreate(ctx context.Context, name string, seed func() *model.ProjectContext) (*model.ProjectContext, error) {
	l := s.lockFor(name)
	l.Lock()
	defer l.Unlock()

	p, err := s.get(ctx, name)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	p = seed()
	p.ID = uuid.New().String()
	p.Name = name

	fields, err := marshalProjectText(p)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO project_contexts
		 (id, name, reasoning_context, working_context, draft_context, analysis_results, business_summary, metadata, progress, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO NOTHING`,
		p.ID, p.Name, fields.reasoning, fields.working, fields.draft,
		fields.results, fields.summary, fields.metadata, fields.progress,
		string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert project %s", name)
	}
	return s.get(ctx, name)
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (*model.ProjectContext, error) {
	return s.get(ctx, name)
}

func (s *SQLiteStore) get(ctx context.Context, name string) (*model.ProjectContext, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM project_contexts WHERE name = ?`, name)

	p, err := scanProjectText(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get project %s", name)
	}
	return p, nil
}

func (s *SQLiteStore) Mutate(ctx context.Context, name string, fn func(*model.ProjectContext) error) (*model.ProjectContext, error) {
	l := s.lockFor(name)
	l.Lock()
	defer l.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin mutate")
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM project_contexts WHERE name = ?`, name)

	p, err := scanProjectText(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Errorf("sqlite: project not found: %s", name)
		}
		return nil, eris.Wrapf(err, "sqlite: read project %s", name)
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	fields, err := marshalProjectText(p)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE project_contexts
		 SET working_context = ?, draft_context = ?, analysis_results = ?,
		     business_summary = ?, metadata = ?, progress = ?, status = ?, updated_at = ?
		 WHERE name = ?`,
		fields.working, fields.draft, fields.results, fields.summary,
		fields.metadata, fields.progress, string(p.Status), p.UpdatedAt, name,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update project %s", name)
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrapf(err, "sqlite: commit project %s", name)
	}
	return p, nil
}

// --- text-column marshaling ---

type projectTextFields struct {
	reasoning, working, draft, results, summary, metadata, progress sql.NullString
}

func marshalProjectText(p *model.ProjectContext) (*projectTextFields, error) {
	var f projectTextFields
	var err error

	marshal := func(dst *sql.NullString, v any, what string) {
		if err != nil {
			return
		}
		var b []byte
		b, err = json.Marshal(v)
		if err != nil {
			err = eris.Wrapf(err, "sqlite: marshal %s", what)
			return
		}
		*dst = sql.NullString{String: string(b), Valid: true}
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProjectText(row rowScanner) (*model.ProjectContext, error) {
	var p model.ProjectContext
	var status string
	var reasoning, working, draft, results, summary, metadata, progress sql.NullString

	err := row.Scan(&p.ID, &p.Name, &reasoning, &working, &draft, &results,
		&summary, &metadata, &progress, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = model.ProjectStatus(status)

	unmarshal := func(src sql.NullString, v any, what string) {
		if err != nil || !src.Valid || src.String == "" {
			return
		}
		if uerr := json.Unmarshal([]byte(src.String), v); uerr != nil {
			err = eris.Wrapf(uerr, "sqlite: unmarshal %s", what)
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
