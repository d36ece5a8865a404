package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/model"
	"github.com/usercue/thematic-cli/internal/parse"
	"github.com/usercue/thematic-cli/internal/queue"
	"github.com/usercue/thematic-cli/internal/store"
	"github.com/usercue/thematic-cli/internal/validate"
)

const (
	// JobAnalyzeQuestion analyzes one question's responses.
	JobAnalyzeQuestion = "analyze_question"
	// JobBusinessSummary synthesizes all question results into one summary.
	JobBusinessSummary = "generate_business_summary"
)

// QuestionPayload is the work item for one question-level analysis.
type QuestionPayload struct {
	Project     string
	QuestionKey string
	Responses   []model.Response
}

// SummaryPayload is the work item for the business-summary synthesis.
type SummaryPayload struct {
	Project string
}

// QuestionTask analyzes a single question and commits the result under the
// project's critical section. When its commit is the one that completes the
// last outstanding question, it enqueues the business-summary job; the
// completion flag flips inside the same critical section as the commit, so
// exactly one commit can observe the transition.
type QuestionTask struct {
	store      store.Store
	analyzer   *Analyzer
	dispatcher *queue.Dispatcher
}

func NewQuestionTask(s store.Store, a *Analyzer, d *queue.Dispatcher) *QuestionTask {
	return &QuestionTask{store: s, analyzer: a, dispatcher: d}
}

func (t *QuestionTask) Name() string { return JobAnalyzeQuestion }

func (t *QuestionTask) Handle(ctx context.Context, payload any) error {
	p, ok := payload.(QuestionPayload)
	if !ok {
		return eris.New("engine: question task: unexpected payload type")
	}

	project, err := t.store.Get(ctx, p.Project)
	if err != nil {
		return err
	}
	if project == nil {
		return eris.Errorf("engine: project not found: %s", p.Project)
	}

	analysis, err := t.analyzer.AnalyzeQuestion(ctx, project.ReasoningContext, p.QuestionKey, p.Responses)
	if err != nil {
		t.recordError(ctx, p.Project, p.QuestionKey, err.Error())
		return err
	}

	if !validate.ThemeOutput(analysis.Record) {
		err := eris.Errorf("engine: invalid analysis structure for question %s", p.QuestionKey)
		t.recordError(ctx, p.Project, p.QuestionKey, err.Error())
		return err
	}

	var triggerSummary bool
	_, err = t.store.Mutate(ctx, p.Project, func(pc *model.ProjectContext) error {
		if pc.DraftContext == nil {
			pc.DraftContext = make(map[string]string)
		}
		if pc.AnalysisResults == nil {
			pc.AnalysisResults = make(map[string]*model.ThemeRecord)
		}
		if pc.Metadata == nil {
			pc.Metadata = make(map[string]*model.CallMetadata)
		}

		pc.DraftContext[p.QuestionKey] = analysis.Raw
		pc.AnalysisResults[p.QuestionKey] = analysis.Record
		pc.Metadata[p.QuestionKey] = analysis.Metadata
		delete(pc.WorkingContext.Errors, p.QuestionKey)
		pc.RecomputeProgress()

		if !pc.Progress.AnalysisComplete && pc.Progress.Completed >= pc.Progress.Total {
			pc.Progress.AnalysisComplete = true
			triggerSummary = true
		}
		return nil
	})
	if err != nil {
		return eris.Wrapf(err, "engine: commit question %s", p.QuestionKey)
	}

	if triggerSummary {
		zap.L().Info("all questions completed, dispatching business summary",
			zap.String("project", p.Project))
		return t.dispatcher.Enqueue(queue.NewJob(JobBusinessSummary, SummaryPayload{Project: p.Project}))
	}
	return nil
}

func (t *QuestionTask) Failed(ctx context.Context, payload any, err error) {
	p, ok := payload.(QuestionPayload)
	if !ok {
		return
	}
	zap.L().Error("question analysis failed permanently",
		zap.String("project", p.Project),
		zap.String("question", p.QuestionKey),
		zap.Error(err))
	t.recordError(ctx, p.Project, p.QuestionKey, err.Error())
}

func (t *QuestionTask) recordError(ctx context.Context, project, questionKey, msg string) {
	_, merr := t.store.Mutate(ctx, project, func(pc *model.ProjectContext) error {
		pc.RecordError(questionKey, msg)
		return nil
	})
	if merr != nil {
		zap.L().Error("failed to record question error",
			zap.String("project", project),
			zap.String("question", questionKey),
			zap.Error(merr))
	}
}

// SummaryTask generates the business summary from the committed question
// results and finalizes the project: completed on a valid summary, failed
// once attempts are exhausted.
type SummaryTask struct {
	store    store.Store
	analyzer *Analyzer
}

func NewSummaryTask(s store.Store, a *Analyzer) *SummaryTask {
	return &SummaryTask{store: s, analyzer: a}
}

func (t *SummaryTask) Name() string { return JobBusinessSummary }

func (t *SummaryTask) Handle(ctx context.Context, payload any) error {
	p, ok := payload.(SummaryPayload)
	if !ok {
		return eris.New("engine: summary task: unexpected payload type")
	}

	project, err := t.store.Get(ctx, p.Project)
	if err != nil {
		return err
	}
	if project == nil {
		return eris.Errorf("engine: project not found: %s", p.Project)
	}
	if len(project.AnalysisResults) == 0 {
		return eris.Errorf("engine: no analysis results for project %s", p.Project)
	}

	totalParticipants := 0
	for _, rec := range project.AnalysisResults {
		if rec.Participants > totalParticipants {
			totalParticipants = rec.Participants
		}
	}

	analysis, err := t.analyzer.GenerateBusinessSummary(ctx, project.AnalysisResults, totalParticipants)
	if err != nil {
		t.recordError(ctx, p.Project, err.Error())
		return err
	}

	if parse.IsParseFailure(analysis.Record) {
		// Commit the fallback record so results stay inspectable, then fail
		// the attempt so the synthesis is retried.
		err := eris.New("engine: business summary output was not valid JSON")
		_, merr := t.store.Mutate(ctx, p.Project, func(pc *model.ProjectContext) error {
			pc.BusinessSummary = analysis.Record
			t.commitMetadata(pc, analysis)
			pc.RecordError(model.BusinessSummaryKey, err.Error())
			return nil
		})
		if merr != nil {
			zap.L().Error("failed to commit summary fallback", zap.Error(merr))
		}
		return err
	}

	if !validate.BusinessSummary(analysis.Record) {
		err := eris.New("engine: invalid business summary structure")
		t.recordError(ctx, p.Project, err.Error())
		return err
	}

	_, err = t.store.Mutate(ctx, p.Project, func(pc *model.ProjectContext) error {
		pc.BusinessSummary = analysis.Record
		t.commitMetadata(pc, analysis)
		delete(pc.WorkingContext.Errors, model.BusinessSummaryKey)

		now := time.Now().UTC()
		pc.Progress.BusinessSummaryComplete = true
		pc.Progress.CompletedAt = &now
		pc.Status = model.StatusCompleted
		return nil
	})
	if err != nil {
		return eris.Wrap(err, "engine: commit business summary")
	}

	zap.L().Info("project completed", zap.String("project", p.Project))
	return nil
}

func (t *SummaryTask) commitMetadata(pc *model.ProjectContext, analysis *SummaryAnalysis) {
	if pc.DraftContext == nil {
		pc.DraftContext = make(map[string]string)
	}
	if pc.Metadata == nil {
		pc.Metadata = make(map[string]*model.CallMetadata)
	}
	pc.DraftContext[model.BusinessSummaryKey] = analysis.Raw
	pc.Metadata[model.BusinessSummaryKey] = analysis.Metadata
}

func (t *SummaryTask) Failed(ctx context.Context, payload any, err error) {
	p, ok := payload.(SummaryPayload)
	if !ok {
		return
	}
	zap.L().Error("business summary failed permanently",
		zap.String("project", p.Project),
		zap.Error(err))

	_, merr := t.store.Mutate(ctx, p.Project, func(pc *model.ProjectContext) error {
		pc.RecordError(model.BusinessSummaryKey, err.Error())
		pc.Progress.BusinessSummaryComplete = false
		pc.Status = model.StatusFailed
		return nil
	})
	if merr != nil {
		zap.L().Error("failed to mark project failed",
			zap.String("project", p.Project),
			zap.Error(merr))
	}
}

func (t *SummaryTask) recordError(ctx context.Context, project, msg string) {
	_, merr := t.store.Mutate(ctx, project, func(pc *model.ProjectContext) error {
		pc.RecordError(model.BusinessSummaryKey, msg)
		return nil
	})
	if merr != nil {
		zap.L().Error("failed to record summary error",
			zap.String("project", project),
			zap.Error(merr))
	}
}
