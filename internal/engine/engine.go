// Package engine orchestrates the analysis pipeline: it fans survey
// questions out as queue jobs, commits each result under the project's
// critical section, and fans in a business summary once the last question
// completes.
package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/extract"
	"github.com/usercue/thematic-cli/internal/metadata"
	"github.com/usercue/thematic-cli/internal/model"
	"github.com/usercue/thematic-cli/internal/queue"
	"github.com/usercue/thematic-cli/internal/store"
	"github.com/usercue/thematic-cli/internal/study"
)

// Engine is the public surface of the pipeline: trigger a run, inspect its
// progress, reprocess a single question, or clear the project entirely.
type Engine struct {
	store      store.Store
	analyzer   *Analyzer
	dispatcher *queue.Dispatcher
	study      *study.Study
	working    model.WorkingContext
}

func New(s store.Store, a *Analyzer, d *queue.Dispatcher, st *study.Study, wc model.WorkingContext) *Engine {
	e := &Engine{store: s, analyzer: a, dispatcher: d, study: st, working: wc}
	d.Register(NewQuestionTask(s, a, d))
	d.Register(NewSummaryTask(s, a))
	return e
}

// Trigger creates (or reuses) the project context and dispatches one
// analysis job per question that has at least one usable response.
// Questions with no responses are skipped and do not count toward the
// completion total.
func (e *Engine) Trigger(ctx context.Context, rows []extract.Row) (*model.ProjectContext, error) {
	keys := e.study.QuestionKeys()

	perQuestion := make(map[string][]model.Response, len(keys))
	dispatchable := make([]string, 0, len(keys))
	for _, key := range keys {
		responses := extract.Responses(rows, key)
		if len(responses) == 0 {
			zap.L().Warn("no responses for question, skipping", zap.String("question", key))
			continue
		}
		perQuestion[key] = responses
		dispatchable = append(dispatchable, key)
	}
	if len(dispatchable) == 0 {
		return nil, eris.New("engine: no questions with responses to analyze")
	}

	rc := e.study.ReasoningContext()
	project, err := e.store.GetOrCreate(ctx, e.study.ProjectName, func() *model.ProjectContext {
		return store.NewProject(e.study.ProjectName, rc, e.working, len(dispatchable))
	})
	if err != nil {
		return nil, eris.Wrap(err, "engine: create project")
	}

	for _, key := range dispatchable {
		job := queue.NewJob(JobAnalyzeQuestion, QuestionPayload{
			Project:     project.Name,
			QuestionKey: key,
			Responses:   perQuestion[key],
		})
		if err := e.dispatcher.Enqueue(job); err != nil {
			return nil, err
		}
	}

	zap.L().Info("analysis triggered",
		zap.String("project", project.Name),
		zap.Int("questions", len(dispatchable)))
	return project, nil
}

// Reprocess discards one question's committed result and dispatches a fresh
// analysis job for it. The completion flag is lowered so the summary fires
// again once the question lands.
func (e *Engine) Reprocess(ctx context.Context, questionKey string, rows []extract.Row) error {
	if _, ok := e.study.Question(questionKey); !ok {
		return eris.Errorf("engine: unknown question key: %s", questionKey)
	}

	responses := extract.Responses(rows, questionKey)
	if len(responses) == 0 {
		return eris.Errorf("engine: no responses for question %s", questionKey)
	}

	_, err := e.store.Mutate(ctx, e.study.ProjectName, func(pc *model.ProjectContext) error {
		delete(pc.AnalysisResults, questionKey)
		delete(pc.DraftContext, questionKey)
		delete(pc.Metadata, questionKey)
		delete(pc.WorkingContext.Errors, questionKey)
		pc.Progress.AnalysisComplete = false
		pc.Progress.BusinessSummaryComplete = false
		pc.Progress.CompletedAt = nil
		pc.Status = model.StatusProcessing
		pc.RecomputeProgress()
		return nil
	})
	if err != nil {
		return eris.Wrapf(err, "engine: reprocess %s", questionKey)
	}

	return e.dispatcher.Enqueue(queue.NewJob(JobAnalyzeQuestion, QuestionPayload{
		Project:     e.study.ProjectName,
		QuestionKey: questionKey,
		Responses:   responses,
	}))
}

// Clear wipes all accumulated results and resets the project to a fresh
// processing state.
func (e *Engine) Clear(ctx context.Context) error {
	_, err := store.Reset(ctx, e.store, e.study.ProjectName, e.working, len(e.study.Questions))
	return err
}

// StatusReport is the read model for a project's progress.
type StatusReport struct {
	Project            string                 `json:"project"`
	Status             model.ProjectStatus    `json:"status"`
	Progress           model.Progress         `json:"progress"`
	HasResults         bool                   `json:"has_results"`
	HasBusinessSummary bool                   `json:"has_business_summary"`
	IsComplete         bool                   `json:"is_complete"`
	Errors             map[string]string      `json:"errors,omitempty"`
	Metadata           *model.MetadataSummary `json:"metadata,omitempty"`
}

// Status derives the current progress report from the stored project.
func (e *Engine) Status(ctx context.Context) (*StatusReport, error) {
	p, err := e.store.Get(ctx, e.study.ProjectName)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, eris.Errorf("engine: project not found: %s", e.study.ProjectName)
	}

	report := &StatusReport{
		Project:            p.Name,
		Status:             p.Status,
		Progress:           p.Progress,
		HasResults:         len(p.AnalysisResults) > 0,
		HasBusinessSummary: p.BusinessSummary != nil,
		IsComplete:         p.Progress.AnalysisComplete && p.Progress.BusinessSummaryComplete,
		Errors:             p.WorkingContext.Errors,
	}
	if len(p.Metadata) > 0 {
		summary := metadata.Summarize(p.Metadata)
		report.Metadata = &summary
	}
	return report, nil
}

// Results returns the full stored project context.
func (e *Engine) Results(ctx context.Context) (*model.ProjectContext, error) {
	p, err := e.store.Get(ctx, e.study.ProjectName)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, eris.Errorf("engine: project not found: %s", e.study.ProjectName)
	}
	return p, nil
}
