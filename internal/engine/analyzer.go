package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/usercue/thematic-cli/internal/config"
	"github.com/usercue/thematic-cli/internal/metadata"
	"github.com/usercue/thematic-cli/internal/model"
	"github.com/usercue/thematic-cli/internal/parse"
	"github.com/usercue/thematic-cli/internal/prompt"
	"github.com/usercue/thematic-cli/internal/resilience"
	"github.com/usercue/thematic-cli/pkg/anthropic"
)

// ThemeAnalysis is the outcome of one question-level model call: the raw
// model output, the parsed record, and the call accounting.
type ThemeAnalysis struct {
	Raw      string
	Record   *model.ThemeRecord
	Metadata *model.CallMetadata
}

// SummaryAnalysis is the outcome of the business-summary model call.
type SummaryAnalysis struct {
	Raw      string
	Record   *model.BusinessSummaryRecord
	Metadata *model.CallMetadata
}

// Analyzer runs thematic-analysis model calls. All calls share a rate
// limiter so concurrent question tasks stay under the API budget, and
// transient API errors are retried with backoff.
type Analyzer struct {
	client  anthropic.Client
	cfg     config.AnthropicConfig
	meta    *metadata.Calculator
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

func NewAnalyzer(client anthropic.Client, cfg config.AnthropicConfig, meta *metadata.Calculator) *Analyzer {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "create_message")
	return &Analyzer{
		client:  client,
		cfg:     cfg,
		meta:    meta,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   retryCfg,
	}
}

// AnalyzeQuestion sends one question's responses through the model and
// parses the markdown output into a theme record.
func (a *Analyzer) AnalyzeQuestion(ctx context.Context, rc model.ReasoningContext, questionKey string, responses []model.Response) (*ThemeAnalysis, error) {
	userPrompt := prompt.Question(responses, rc, questionKey)

	resp, durationMS, err := a.call(ctx, anthropic.MessageRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    prompt.AnalysisSystem,
		Messages: []anthropic.Message{
			{Role: "user", Content: userPrompt},
		},
		Temperature: &a.cfg.Temperature,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "engine: analyze question %s", questionKey)
	}

	record := parse.ThemeOutput(resp.Text)
	meta := a.meta.Calculate(resp.Model, resp.Usage, durationMS, len(responses))

	zap.L().Info("question analyzed",
		zap.String("question", questionKey),
		zap.Int("participants", len(responses)),
		zap.Int("themes", len(record.Themes)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens()),
		zap.Int64("duration_ms", durationMS),
	)

	return &ThemeAnalysis{Raw: resp.Text, Record: record, Metadata: meta}, nil
}

// GenerateBusinessSummary synthesizes all per-question results into a
// business-level summary. The model is asked for JSON; parse failures
// collapse into the canonical failure record rather than an error.
func (a *Analyzer) GenerateBusinessSummary(ctx context.Context, results map[string]*model.ThemeRecord, totalParticipants int) (*SummaryAnalysis, error) {
	userPrompt := prompt.Summary(results, totalParticipants)

	temperature := a.cfg.SummaryTemperature
	maxTokens := a.cfg.SummaryMaxTokens
	if maxTokens <= 0 {
		maxTokens = a.cfg.MaxTokens
	}

	resp, durationMS, err := a.call(ctx, anthropic.MessageRequest{
		Model:     a.cfg.Model,
		MaxTokens: maxTokens,
		System:    prompt.SummarySystem,
		Messages: []anthropic.Message{
			{Role: "user", Content: userPrompt},
		},
		Temperature: &temperature,
	})
	if err != nil {
		return nil, eris.Wrap(err, "engine: generate business summary")
	}

	record := parse.BusinessSummary(resp.Text)
	meta := a.meta.Calculate(resp.Model, resp.Usage, durationMS, totalParticipants)

	zap.L().Info("business summary generated",
		zap.Int("questions", len(results)),
		zap.Bool("parse_failed", parse.IsParseFailure(record)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens()),
		zap.Int64("duration_ms", durationMS),
	)

	return &SummaryAnalysis{Raw: resp.Text, Record: record, Metadata: meta}, nil
}

func (a *Analyzer) call(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, int64, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, 0, eris.Wrap(err, "engine: rate limiter")
	}

	start := time.Now()
	resp, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return a.client.CreateMessage(ctx, req)
	})
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start).Milliseconds(), nil
}
