package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/config"
	"github.com/usercue/thematic-cli/internal/engine"
	"github.com/usercue/thematic-cli/internal/fetcher"
	"github.com/usercue/thematic-cli/internal/metadata"
	"github.com/usercue/thematic-cli/internal/model"
	"github.com/usercue/thematic-cli/internal/queue"
	"github.com/usercue/thematic-cli/internal/resilience"
	"github.com/usercue/thematic-cli/internal/store"
	"github.com/usercue/thematic-cli/internal/study"
	"github.com/usercue/thematic-cli/pkg/anthropic"
)

// analysisEnv holds the initialized store, dispatcher, and engine used by
// the run/serve/status commands.
type analysisEnv struct {
	Store      store.Store
	Dispatcher *queue.Dispatcher
	Engine     *engine.Engine
	Study      *study.Study
}

// Close drains in-flight jobs and releases the store.
func (e *analysisEnv) Close() {
	if e.Dispatcher != nil {
		e.Dispatcher.Stop()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, Anthropic client, dispatcher, and engine, and
// starts the worker pool. Callers should defer env.Close().
func initEnv(ctx context.Context) (*analysisEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	studyDef, err := loadStudy(cfg.Study)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client := anthropic.NewClient(cfg.Anthropic.Key)
	analyzer := engine.NewAnalyzer(client, cfg.Anthropic, metadata.NewCalculator(cfg.Pricing))

	dispatcher := queue.NewDispatcher(queue.Config{
		Workers:     cfg.Queue.Workers,
		MaxAttempts: cfg.Queue.MaxAttempts,
		MaxPanics:   cfg.Queue.MaxPanics,
		Backoff:     resilience.DefaultRetryConfig(),
	})

	working := model.WorkingContext{
		Model:       cfg.Anthropic.Model,
		Temperature: cfg.Anthropic.Temperature,
		MaxTokens:   cfg.Anthropic.MaxTokens,
	}

	eng := engine.New(st, analyzer, dispatcher, studyDef, working)
	dispatcher.Start(ctx)

	zap.L().Info("analysis environment ready",
		zap.String("project", studyDef.ProjectName),
		zap.String("store", cfg.Store.Driver),
		zap.Int("questions", len(studyDef.Questions)),
		zap.Int("workers", cfg.Queue.Workers),
	)

	return &analysisEnv{Store: st, Dispatcher: dispatcher, Engine: eng, Study: studyDef}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns, cfg.Store.MinConns)
	case "sqlite", "":
		path := cfg.Store.DatabaseURL
		if path == "" {
			path = "thematic.db"
		}
		return store.NewSQLite(path)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

func loadStudy(sc config.StudyConfig) (*study.Study, error) {
	if sc.Path == "" {
		zap.L().Debug("no study file configured, using built-in study")
		return study.Default(), nil
	}
	return study.Load(sc.Path)
}

// loadWorkbook reads the interview workbook, preferring an explicit flag
// path over the configured one.
func loadWorkbook(flagPath string) (*fetcher.Workbook, error) {
	path := flagPath
	if path == "" {
		path = cfg.Study.DataPath
	}
	if path == "" {
		return nil, eris.New("no workbook path: set --data or study.data_path")
	}
	return fetcher.Load(path)
}
