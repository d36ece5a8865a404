package model

import "time"

// ProjectStatus is the lifecycle state of an analysis project.
type ProjectStatus string

const (
	StatusProcessing ProjectStatus = "processing"
	StatusCompleted  ProjectStatus = "completed"
	StatusFailed     ProjectStatus = "failed"
)

// BusinessSummaryKey is the reserved slot in the per-question maps that holds
// the cross-question synthesis. It never counts toward question progress.
const BusinessSummaryKey = "business_summary"

// QuestionInfo describes one survey question being analyzed.
type QuestionInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ReasoningContext is the static framing for a project: the study background
// and the per-question-key titles and descriptions.
type ReasoningContext struct {
	ProjectBackground string                  `json:"project_background"`
	Questions         map[string]QuestionInfo `json:"questions"`
}

// WorkingContext holds mutable run parameters plus the accumulated error map.
type WorkingContext struct {
	Model       string            `json:"model"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int64             `json:"max_tokens"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Progress tracks per-question completion for a project. Completed is always
// recomputed from the analysis results map, never incremented independently.
type Progress struct {
	Total                   int        `json:"total"`
	Completed               int        `json:"completed"`
	Percent                 int        `json:"percent"`
	AnalysisComplete        bool       `json:"analysis_complete"`
	BusinessSummaryComplete bool       `json:"business_summary_complete"`
	CompletedAt             *time.Time `json:"completed_at,omitempty"`
}

// ProjectContext is the single shared record holding all state for one
// analysis run. The three map-valued fields are mutated concurrently by
// question tasks and must only be touched via the store's merge-commit
// protocol.
type ProjectContext struct {
	ID               string                           `json:"id"`
	Name             string                           `json:"name"`
	ReasoningContext ReasoningContext                 `json:"reasoning_context"`
	WorkingContext   WorkingContext                   `json:"working_context"`
	DraftContext     map[string]string                `json:"draft_context,omitempty"`
	AnalysisResults  map[string]*ThemeRecord          `json:"analysis_results,omitempty"`
	BusinessSummary  *BusinessSummaryRecord           `json:"business_summary,omitempty"`
	Metadata         map[string]*CallMetadata         `json:"metadata,omitempty"`
	Progress         Progress                         `json:"progress"`
	Status           ProjectStatus                    `json:"status"`
	CreatedAt        time.Time                        `json:"created_at"`
	UpdatedAt        time.Time                        `json:"updated_at"`
}

// CompletedQuestions counts the committed question results, excluding the
// business summary slot.
func (p *ProjectContext) CompletedQuestions() int {
	n := 0
	for key := range p.AnalysisResults {
		if key != BusinessSummaryKey {
			n++
		}
	}
	return n
}

// RecomputeProgress derives Completed and Percent from the authoritative
// results map. Derivation (rather than accumulation) keeps the counter
// correct under task retries and duplicate commits.
func (p *ProjectContext) RecomputeProgress() {
	p.Progress.Completed = p.CompletedQuestions()
	if p.Progress.Total > 0 {
		p.Progress.Percent = int(float64(p.Progress.Completed)/float64(p.Progress.Total)*100 + 0.5)
	} else {
		p.Progress.Percent = 0
	}
}

// RecordError merges an error message for a question key into the working
// context error map.
func (p *ProjectContext) RecordError(questionKey, msg string) {
	if p.WorkingContext.Errors == nil {
		p.WorkingContext.Errors = make(map[string]string)
	}
	p.WorkingContext.Errors[questionKey] = msg
}

// Response is one participant's answer to one question, after transcript
// cleanup.
type Response struct {
	ParticipantID string `json:"participant_id"`
	Response      string `json:"response"`
}
