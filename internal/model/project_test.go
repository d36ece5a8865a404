package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletedQuestions(t *testing.T) {
	t.Parallel()

	p := &ProjectContext{
		AnalysisResults: map[string]*ThemeRecord{
			"q1":               {},
			"q2":               {},
			BusinessSummaryKey: {},
		},
	}
	assert.Equal(t, 2, p.CompletedQuestions(), "summary slot never counts toward progress")

	p.AnalysisResults = nil
	assert.Equal(t, 0, p.CompletedQuestions())
}

func TestRecomputeProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		total       int
		completed   int
		wantPercent int
	}{
		{name: "none done", total: 6, completed: 0, wantPercent: 0},
		{name: "one of six rounds to 17", total: 6, completed: 1, wantPercent: 17},
		{name: "two of six rounds to 33", total: 6, completed: 2, wantPercent: 33},
		{name: "half", total: 6, completed: 3, wantPercent: 50},
		{name: "all done", total: 6, completed: 6, wantPercent: 100},
		{name: "zero total never divides", total: 0, completed: 0, wantPercent: 0},
		{name: "over-complete clamps nothing", total: 2, completed: 3, wantPercent: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &ProjectContext{
				AnalysisResults: make(map[string]*ThemeRecord, tt.completed),
				Progress:        Progress{Total: tt.total},
			}
			for i := 0; i < tt.completed; i++ {
				p.AnalysisResults[string(rune('a'+i))] = &ThemeRecord{}
			}
			p.RecomputeProgress()
			assert.Equal(t, tt.completed, p.Progress.Completed)
			assert.Equal(t, tt.wantPercent, p.Progress.Percent)
		})
	}
}

func TestRecomputeProgressDerivedNotAccumulated(t *testing.T) {
	t.Parallel()

	p := &ProjectContext{
		AnalysisResults: map[string]*ThemeRecord{"q1": {}},
		Progress:        Progress{Total: 4},
	}

	// Duplicate commits of the same key never inflate the counter.
	p.RecomputeProgress()
	p.AnalysisResults["q1"] = &ThemeRecord{Question: "replaced"}
	p.RecomputeProgress()
	assert.Equal(t, 1, p.Progress.Completed)
	assert.Equal(t, 25, p.Progress.Percent)
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	p := &ProjectContext{}
	p.RecordError("q1", "call failed")
	p.RecordError("q1", "call failed again")
	p.RecordError("q2", "other")

	assert.Equal(t, "call failed again", p.WorkingContext.Errors["q1"])
	assert.Equal(t, "other", p.WorkingContext.Errors["q2"])
}
