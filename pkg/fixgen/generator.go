package fixgen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

const maxAttemptsPerModel = 3

// attemptBackoffs is the fixed 15s-then-30s backoff schedule applied
// between rate-limited attempts for one model (spec.md §4.3).
var attemptBackoffs = []time.Duration{15 * time.Second, 30 * time.Second}

// Generator is the Fix Generator agent: classify -> enrich -> prompt the
// model with fallback -> parse.
type Generator struct {
	Model  LanguageModel
	Models []string // ordered model identifiers, most preferred first
	Logger *slog.Logger
}

// NewGenerator constructs a Generator. models must be non-empty; logger may
// be nil.
func NewGenerator(model LanguageModel, models []string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{Model: model, Models: models, Logger: logger}
}

// Generate classifies rawLog, enriches each error with source context, and
// asks the configured models in order for a JSON array of FixProposals.
// Falls back to one placeholder proposal per error if every model is
// exhausted or the response holds no parseable JSON array.
func (g *Generator) Generate(ctx context.Context, rawLog, workingTreePath string, records []runmodel.ErrorRecord) ([]runmodel.FixProposal, error) {
	if len(records) == 0 {
		return nil, nil
	}

	enriched := Enrich(workingTreePath, records)
	messages := BuildMessages(rawLog, enriched)

	text, err := g.completeWithFallback(ctx, messages)
	if err != nil {
		if IsRateLimited(err) {
			g.Logger.Warn("all models exhausted their retry budget, using placeholders", "error", err)
			return placeholderProposals(records), nil
		}
		return nil, fmt.Errorf("fixgen: model completion failed: %w", err)
	}

	raws, ok := firstJSONArray(text)
	if !ok {
		g.Logger.Warn("fix generator received no parseable JSON array, using placeholders")
		return placeholderProposals(records), nil
	}

	return toFixProposals(raws), nil
}

// completeWithFallback walks g.Models in order; within a model it retries
// on rate-limit errors per attemptBackoffs, then moves to the next model.
// A non-rate-limit error from any model propagates immediately.
func (g *Generator) completeWithFallback(ctx context.Context, messages []Message) (string, error) {
	var lastErr error
	for _, model := range g.Models {
		text, err := g.completeOneModel(ctx, model, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !IsRateLimited(err) {
			return "", err
		}
		g.Logger.Warn("model exhausted its retry budget, falling back", "model", model, "error", err)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no models configured")
	}
	return "", lastErr
}

func (g *Generator) completeOneModel(ctx context.Context, model string, messages []Message) (string, error) {
	attempt := 0
	var text string
	operation := func() error {
		var err error
		text, err = g.Model.Complete(ctx, model, messages)
		if err != nil && IsRateLimited(err) && attempt < maxAttemptsPerModel-1 {
			attempt++
			return err // retryable
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	bo := &fixedScheduleBackoff{delays: attemptBackoffs}
	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))
	return text, err
}

// fixedScheduleBackoff implements backoff.BackOff with the spec's literal
// 15s-then-30s schedule instead of an exponential curve.
type fixedScheduleBackoff struct {
	delays []time.Duration
	calls  int
}

func (f *fixedScheduleBackoff) NextBackOff() time.Duration {
	if f.calls >= len(f.delays) {
		return backoff.Stop
	}
	d := f.delays[f.calls]
	f.calls++
	return d
}

func (f *fixedScheduleBackoff) Reset() { f.calls = 0 }

func placeholderProposals(records []runmodel.ErrorRecord) []runmodel.FixProposal {
	proposals := make([]runmodel.FixProposal, 0, len(records))
	for _, r := range records {
		proposals = append(proposals, runmodel.FixProposal{
			File:          r.File,
			Line:          r.Line,
			Kind:          r.Kind,
			Description:   "automatic fix unavailable: model response degraded",
			CommitMessage: fmt.Sprintf("[AI-AGENT] placeholder for %s at %s:%d", r.Kind, r.File, r.Line),
		})
	}
	return proposals
}

func toFixProposals(raws []rawProposal) []runmodel.FixProposal {
	proposals := make([]runmodel.FixProposal, 0, len(raws))
	for _, r := range raws {
		line, _ := r.Line.Int64()
		proposals = append(proposals, runmodel.FixProposal{
			File:          r.File,
			Line:          int(line),
			Kind:          runmodel.ErrorKind(r.Kind),
			Description:   r.Description,
			OriginalCode:  r.OriginalCode,
			FixedCode:     r.FixedCode,
			CommitMessage: r.CommitMessage,
		})
	}
	return proposals
}
