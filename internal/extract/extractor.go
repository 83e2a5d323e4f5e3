// Package extract turns raw captured text into typed, confidence-scored
// entities. Each entity type has its own rule table and pass; passes are
// independent and order-insensitive except that time-of-day matches attach
// to the most recently extracted date.
package extract

import (
	"time"

	"suri/internal/logging"
	"suri/internal/types"
	"suri/internal/utils/id"
)

// Clock supplies the wall-clock time used to resolve relative dates.
type Clock func() time.Time

// Extractor runs the rule-table passes over raw text.
type Extractor struct {
	clock        Clock
	minAmountWon int
	logger       logging.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock injects the clock used for relative date resolution.
func WithClock(clock Clock) Option {
	return func(e *Extractor) { e.clock = clock }
}

// WithMinAmount sets the floor below which bare N원 matches are treated as
// noise and dropped.
func WithMinAmount(won int) Option {
	return func(e *Extractor) { e.minAmountWon = won }
}

// WithLogger injects the extractor's logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New creates an Extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		clock:        time.Now,
		minAmountWon: 1000,
		logger:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs every pass and returns all matched entities. Empty input
// yields an empty slice, never an error.
func (e *Extractor) Extract(text string) []types.Entity {
	if text == "" {
		return []types.Entity{}
	}

	now := e.clock()
	entities := make([]types.Entity, 0, 8)

	entities = append(entities, e.extractDates(text, now)...)
	entities = append(entities, e.extractAmounts(text)...)
	entities = append(entities, e.extractPhones(text)...)
	entities = append(entities, e.extractEmails(text)...)
	entities = append(entities, e.extractLocations(text)...)
	entities = append(entities, e.extractNames(text)...)
	entities = append(entities, e.extractRelationships(text)...)

	e.logger.Debug("extracted %d entities from %d chars", len(entities), len(text))
	return entities
}

func newEntity(t types.EntityType, raw, value string, confidence float64) types.Entity {
	return types.Entity{
		ID:         id.NewEntityID(),
		Type:       t,
		Raw:        raw,
		Value:      value,
		Confidence: confidence,
	}
}
