package extract

import (
	"regexp"
	"strconv"
	"strings"

	"suri/internal/types"
)

// amountRule converts one numeral convention into a won value. All matches
// on a string are collected, not just the first.
type amountRule struct {
	re         *regexp.Regexp
	confidence float64
	// value parses the first capture group into won; ok=false drops the match.
	value func(group string, minWon int) (int64, bool)
}

var amountRules = []amountRule{
	{
		// N만 원 (×10,000), fractional allowed: 1.5만 원
		re:         regexp.MustCompile(`(\d+(?:\.\d+)?)\s*만\s*원`),
		confidence: 0.9,
		value: func(g string, _ int) (int64, bool) {
			f, err := strconv.ParseFloat(g, 64)
			if err != nil {
				return 0, false
			}
			return int64(f * 10000), true
		},
	},
	{
		// N천 원 (×1,000)
		re:         regexp.MustCompile(`(\d+)\s*천\s*원`),
		confidence: 0.9,
		value: func(g string, _ int) (int64, bool) {
			n, err := strconv.ParseInt(g, 10, 64)
			if err != nil {
				return 0, false
			}
			return n * 1000, true
		},
	},
	{
		// Comma-grouped: 100,000원
		re:         regexp.MustCompile(`(\d{1,3}(?:,\d{3})+)\s*원`),
		confidence: 0.95,
		value: func(g string, _ int) (int64, bool) {
			n, err := strconv.ParseInt(strings.ReplaceAll(g, ",", ""), 10, 64)
			if err != nil {
				return 0, false
			}
			return n, true
		},
	},
	{
		// Bare 4+ digit: 5000원. Floored to suppress numeric noise.
		re:         regexp.MustCompile(`(\d{4,})\s*원`),
		confidence: 0.8,
		value: func(g string, minWon int) (int64, bool) {
			n, err := strconv.ParseInt(g, 10, 64)
			if err != nil || n < int64(minWon) {
				return 0, false
			}
			return n, true
		},
	},
}

// magnitudeWords maps native magnitude words to fixed won values.
var magnitudeWords = []struct {
	word string
	won  int64
}{
	{"천만", 10000000}, // longer words first so 천만 is not matched as 만
	{"백만", 1000000},
	{"십만", 100000},
	{"일억", 100000000},
}

func (e *Extractor) extractAmounts(text string) []types.Entity {
	entities := make([]types.Entity, 0, 2)
	claimed := make([]span, 0, 2)

	for _, rule := range amountRules {
		for _, loc := range rule.re.FindAllStringSubmatchIndex(text, -1) {
			s := span{loc[0], loc[1]}
			if s.overlapsAny(claimed) {
				continue
			}
			raw := text[loc[0]:loc[1]]
			group := text[loc[2]:loc[3]]
			won, ok := rule.value(group, e.minAmountWon)
			if !ok {
				continue
			}
			claimed = append(claimed, s)
			ent := newEntity(types.EntityAmount, raw, strconv.FormatInt(won, 10), rule.confidence)
			ent.Metadata = map[string]string{types.MetaCurrency: "KRW"}
			entities = append(entities, ent)
		}
	}

	for _, mw := range magnitudeWords {
		idx := strings.Index(text, mw.word)
		if idx < 0 {
			continue
		}
		s := span{idx, idx + len(mw.word)}
		if s.overlapsAny(claimed) {
			continue
		}
		claimed = append(claimed, s)
		ent := newEntity(types.EntityAmount, mw.word, strconv.FormatInt(mw.won, 10), 0.85)
		ent.Metadata = map[string]string{types.MetaCurrency: "KRW"}
		entities = append(entities, ent)
	}

	return entities
}

type span struct{ start, end int }

func (s span) overlapsAny(spans []span) bool {
	for _, o := range spans {
		if s.start < o.end && o.start < s.end {
			return true
		}
	}
	return false
}
