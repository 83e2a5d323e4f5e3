// Package temporal derives deadlines, urgency levels and reminder times
// from extracted date entities and the raw text they came from.
package temporal

import (
	"strings"
	"time"

	"suri/internal/logging"
	"suri/internal/types"
)

// urgencyRules maps keywords to urgency levels, scanned highest level
// first. The first level with any hit wins.
var urgencyRules = []struct {
	level    int
	keywords []string
}{
	{5, []string{"긴급", "급해", "당장", "즉시", "urgent", "immediately", "asap", "장례식", "응급"}},
	{4, []string{"오늘", "today", "마감", "deadline", "빨리", "서둘러"}},
	{3, []string{"내일", "tomorrow", "이번 주", "이번주", "this week", "곧"}},
}

// defaultUrgency applies when no keyword matches.
const defaultUrgency = 2

// Reasoner computes temporal analysis against an injected clock.
type Reasoner struct {
	clock  func() time.Time
	logger logging.Logger
}

// Option configures a Reasoner.
type Option func(*Reasoner)

// WithClock injects the wall clock.
func WithClock(clock func() time.Time) Option {
	return func(r *Reasoner) { r.clock = clock }
}

// WithLogger injects the reasoner's logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Reasoner) { r.logger = logger }
}

// New creates a Reasoner.
func New(opts ...Option) *Reasoner {
	r := &Reasoner{clock: time.Now, logger: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Analyze derives the deadline from the first date entity, an urgency level
// from the keyword table, and a tiered reminder time from the deadline.
func (r *Reasoner) Analyze(entities []types.Entity, rawText string) types.TemporalAnalysis {
	analysis := types.TemporalAnalysis{Urgency: urgencyFor(rawText)}

	deadline, ok := firstDeadline(entities)
	if !ok {
		return analysis
	}
	analysis.Deadline = &deadline

	reminder := r.reminderFor(deadline)
	analysis.OptimalReminder = &reminder

	r.logger.Debug("temporal: deadline=%s urgency=%d reminder=%s",
		deadline.Format(time.RFC3339), analysis.Urgency, reminder.Format(time.RFC3339))
	return analysis
}

// reminderFor tiers the reminder time by deadline distance: more than 7
// days out reminds 3 days before, 2-7 days out reminds 1 day before, and
// anything closer reminds immediately.
func (r *Reasoner) reminderFor(deadline time.Time) time.Time {
	now := r.clock()
	until := deadline.Sub(now)

	switch {
	case until > 7*24*time.Hour:
		return deadline.AddDate(0, 0, -3)
	case until > 2*24*time.Hour:
		return deadline.AddDate(0, 0, -1)
	default:
		return now
	}
}

func urgencyFor(text string) int {
	lower := strings.ToLower(text)
	for _, rule := range urgencyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.level
			}
		}
	}
	return defaultUrgency
}

// firstDeadline parses the first date entity, honoring an attached
// time-of-day when present.
func firstDeadline(entities []types.Entity) (time.Time, bool) {
	for _, e := range entities {
		if e.Type != types.EntityDate {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", e.Value, time.Local)
		if err != nil {
			continue
		}
		if tod, ok := e.Metadata[types.MetaTimeOfDay]; ok {
			if parsed, err := time.ParseInLocation("15:04", tod, time.Local); err == nil {
				t = time.Date(t.Year(), t.Month(), t.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.Local)
			}
		}
		return t, true
	}
	return time.Time{}, false
}
