// Package pipeline wires the understanding stages together: extraction,
// classification, temporal analysis and action suggestion. Batch analysis
// is sequential by default; AnalyzeAll is the one concurrent fan-out, with
// per-item error isolation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"suri/internal/extract"
	"suri/internal/intent"
	"suri/internal/logging"
	"suri/internal/observability"
	"suri/internal/suggest"
	"suri/internal/temporal"
	"suri/internal/types"
	"suri/internal/utils/id"
)

// Analysis is the full understanding result for one input.
type Analysis struct {
	Input       types.RawInput         `json:"input"`
	Entities    []types.Entity         `json:"entities"`
	Intent      types.IntentResult     `json:"intent"`
	Temporal    types.TemporalAnalysis `json:"temporal"`
	Suggestions []types.Action         `json:"suggestions"`
	// Err is set only by AnalyzeAll for items that failed in fan-out; the
	// rest of the struct is then a placeholder.
	Err string `json:"error,omitempty"`
}

// Pipeline runs the understanding stages. All collaborators are injected;
// the pipeline holds no global state.
type Pipeline struct {
	extractor  *extract.Extractor
	classifier *intent.Classifier
	reasoner   *temporal.Reasoner
	suggester  *suggest.Suggester
	metrics    *observability.MetricsCollector
	logger     logging.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics attaches the metrics collector.
func WithMetrics(metrics *observability.MetricsCollector) Option {
	return func(p *Pipeline) { p.metrics = metrics }
}

// WithLogger injects the pipeline's logger.
func WithLogger(logger logging.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a Pipeline from its stages.
func New(extractor *extract.Extractor, classifier *intent.Classifier, reasoner *temporal.Reasoner, suggester *suggest.Suggester, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:  extractor,
		classifier: classifier,
		reasoner:   reasoner,
		suggester:  suggester,
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs one input through every stage. It never returns an error;
// empty text simply produces an empty analysis with a baseline intent.
func (p *Pipeline) Analyze(ctx context.Context, input types.RawInput) Analysis {
	started := time.Now()
	if input.ID == "" {
		input.ID = id.NewInputID()
	}

	entities := p.extractor.Extract(input.Text)
	intentResult := p.classifier.Classify(ctx, input.Text)
	temporalResult := p.reasoner.Analyze(entities, input.Text)
	suggestions := p.suggester.Suggest(intentResult, entities, input.Text)

	if p.metrics != nil {
		p.metrics.RecordExtraction(ctx, entities)
		p.metrics.RecordClassification(ctx, intentResult)
		p.metrics.RecordSuggestions(ctx, suggestions)
		p.metrics.RecordPipelineLatency(ctx, time.Since(started))
	}
	p.logger.Debug("analyzed %s input: intent=%s entities=%d suggestions=%d",
		input.Source, intentResult.Intent, len(entities), len(suggestions))

	return Analysis{
		Input:       input,
		Entities:    entities,
		Intent:      intentResult,
		Temporal:    temporalResult,
		Suggestions: suggestions,
	}
}

// AnalyzeBatch analyzes inputs sequentially, one item completing before the
// next begins. Results are emitted in input order.
func (p *Pipeline) AnalyzeBatch(ctx context.Context, inputs []types.RawInput) []Analysis {
	results := make([]Analysis, 0, len(inputs))
	for _, input := range inputs {
		results = append(results, p.Analyze(ctx, input))
	}
	return results
}

// AnalyzeAll fans out over independent inputs concurrently. A failing item
// yields a placeholder failure result rather than aborting the batch;
// results keep input order.
func (p *Pipeline) AnalyzeAll(ctx context.Context, inputs []types.RawInput, maxConcurrent int) []Analysis {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	results := make([]Analysis, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, input := range inputs {
		g.Go(func() error {
			results[i] = p.analyzeIsolated(ctx, input)
			return nil // per-item errors are captured in the result
		})
	}
	_ = g.Wait()
	return results
}

// analyzeIsolated shields the batch from a panicking rule or collaborator.
func (p *Pipeline) analyzeIsolated(ctx context.Context, input types.RawInput) (analysis Analysis) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("analysis panic for %s input: %v", input.Source, r)
			analysis = Analysis{Input: input, Err: fmt.Sprintf("analysis failed: %v", r)}
		}
	}()
	return p.Analyze(ctx, input)
}
