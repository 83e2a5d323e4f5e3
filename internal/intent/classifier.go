package intent

import (
	"context"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	pipeerrors "suri/internal/errors"
	"suri/internal/logging"
	"suri/internal/types"
)

// baselineConfidence is reported when no tier produces a usable score.
const baselineConfidence = 0.3

// Classifier runs the two-tier cascade. The primary backend is optional;
// the keyword fallback is always present and fully deterministic.
type Classifier struct {
	primary   ModelBackend
	fallback  *KeywordBackend
	threshold float64
	cache     *lru.Cache[string, types.IntentResult]
	logger    logging.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithPrimary installs the learned-model tier.
func WithPrimary(backend ModelBackend) ClassifierOption {
	return func(c *Classifier) { c.primary = backend }
}

// WithThreshold sets the confidence below which the primary tier's answer is
// discarded in favor of the fallback. Default 0.6.
func WithThreshold(threshold float64) ClassifierOption {
	return func(c *Classifier) { c.threshold = threshold }
}

// WithCacheSize enables an LRU result cache keyed by input text. Size 0
// disables caching.
func WithCacheSize(size int) ClassifierOption {
	return func(c *Classifier) {
		if size > 0 {
			cache, err := lru.New[string, types.IntentResult](size)
			if err == nil {
				c.cache = cache
			}
		}
	}
}

// WithClassifierLogger injects the classifier's logger.
func WithClassifierLogger(logger logging.Logger) ClassifierOption {
	return func(c *Classifier) { c.logger = logger }
}

// NewClassifier creates a Classifier. Without WithPrimary it runs fallback
// only.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		fallback:  NewKeywordBackend(),
		threshold: 0.6,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the best-guess intent for text. It never returns an
// error: primary-tier failures degrade to the fallback tier, and texts with
// no signal yield IntentOther at baseline confidence.
func (c *Classifier) Classify(ctx context.Context, text string) types.IntentResult {
	if text == "" {
		return types.IntentResult{Intent: types.IntentOther, Confidence: baselineConfidence, UsedFallback: true}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(text); ok {
			return cached
		}
	}

	result, ok := c.classifyPrimary(ctx, text)
	if !ok {
		result = c.classifyFallback(ctx, text)
	}

	if c.cache != nil {
		c.cache.Add(text, result)
	}
	return result
}

// ClassifyAll classifies inputs sequentially, emitting results in input
// order.
func (c *Classifier) ClassifyAll(ctx context.Context, texts []string) []types.IntentResult {
	results := make([]types.IntentResult, 0, len(texts))
	for _, text := range texts {
		results = append(results, c.Classify(ctx, text))
	}
	return results
}

func (c *Classifier) classifyPrimary(ctx context.Context, text string) (types.IntentResult, bool) {
	if c.primary == nil || !c.primary.Available(ctx) {
		return types.IntentResult{}, false
	}

	scores, err := c.primary.Predict(ctx, text)
	if err != nil {
		// Degraded errors are the expected cascade path; anything else is a
		// real backend fault worth surfacing louder.
		if pipeerrors.IsDegraded(err) {
			c.logger.Debug("%s degraded, using %s tier: %v", c.primary.Name(), c.fallback.Name(), err)
		} else {
			c.logger.Warn("%s %s error, using %s tier: %v", c.primary.Name(), pipeerrors.Classify(err), c.fallback.Name(), err)
		}
		return types.IntentResult{}, false
	}

	best, bestScore := argmax(scores)
	if best == "" || bestScore < c.threshold {
		c.logger.Debug("primary tier confidence %.2f below threshold %.2f, degrading", bestScore, c.threshold)
		return types.IntentResult{}, false
	}

	return types.IntentResult{
		Intent:       best,
		Confidence:   bestScore,
		Alternatives: rankAlternatives(scores, best, 2),
	}, true
}

// classifyFallback runs the keyword tier through the same ModelBackend
// contract as the primary: Predict scores per label, argmax wins, ties break
// by the canonical label order.
func (c *Classifier) classifyFallback(ctx context.Context, text string) types.IntentResult {
	baseline := types.IntentResult{Intent: types.IntentOther, Confidence: baselineConfidence, UsedFallback: true}

	if !c.fallback.Available(ctx) {
		return baseline
	}
	scores, err := c.fallback.Predict(ctx, text)
	if err != nil || len(scores) == 0 {
		return baseline
	}

	winner, confidence := argmax(scores)
	result := types.IntentResult{
		Intent:       winner,
		Confidence:   confidence,
		UsedFallback: true,
	}

	// Alternatives use the lighter-weight secondary formula over raw hits.
	hits := c.fallback.CountHits(text)
	candidates := make([]types.Intent, 0, len(hits))
	for _, label := range types.Intents() {
		if label != winner && hits[label] > 0 {
			candidates = append(candidates, label)
		}
	}
	// Rank by hit count; canonical order already breaks ties via stable sort.
	sort.SliceStable(candidates, func(i, j int) bool {
		return hits[candidates[i]] > hits[candidates[j]]
	})
	for i, label := range candidates {
		if i == 2 {
			break
		}
		result.Alternatives = append(result.Alternatives, types.ScoredIntent{
			Intent:     label,
			Confidence: alternativeScore(hits[label]),
		})
	}
	return result
}

func argmax(scores map[types.Intent]float64) (types.Intent, float64) {
	var best types.Intent
	bestScore := -1.0
	for _, label := range types.Intents() {
		if score, ok := scores[label]; ok && score > bestScore {
			best = label
			bestScore = score
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, bestScore
}

func rankAlternatives(scores map[types.Intent]float64, winner types.Intent, max int) []types.ScoredIntent {
	var alts []types.ScoredIntent
	remaining := make(map[types.Intent]float64, len(scores))
	for k, v := range scores {
		if k != winner {
			remaining[k] = v
		}
	}
	for len(alts) < max {
		label, score := argmax(remaining)
		if label == "" || score <= 0 {
			break
		}
		alts = append(alts, types.ScoredIntent{Intent: label, Confidence: score})
		delete(remaining, label)
	}
	return alts
}
