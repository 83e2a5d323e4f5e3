package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"suri/internal/types"
)

// dateRule resolves one date pattern family against the current time.
type dateRule struct {
	re         *regexp.Regexp
	confidence float64
	resolve    func(match []string, now time.Time) (time.Time, bool)
}

var dateRules = []dateRule{
	{
		// ISO absolute: 2026-09-15
		re:         regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`),
		confidence: 0.95,
		resolve: func(m []string, _ time.Time) (time.Time, bool) {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			if mo < 1 || mo > 12 || d < 1 || d > 31 {
				return time.Time{}, false
			}
			return time.Date(y, time.Month(mo), d, 9, 0, 0, 0, time.Local), true
		},
	},
	{
		// Korean month-day: 9월 15일
		re:         regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`),
		confidence: 0.9,
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			mo, _ := strconv.Atoi(m[1])
			d, _ := strconv.Atoi(m[2])
			if mo < 1 || mo > 12 || d < 1 || d > 31 {
				return time.Time{}, false
			}
			t := time.Date(now.Year(), time.Month(mo), d, 9, 0, 0, 0, time.Local)
			// A month-day already past refers to next year; "past" is
			// measured against local midnight, not a UTC day boundary.
			startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
			if t.Before(startOfDay) {
				t = t.AddDate(1, 0, 0)
			}
			return t, true
		},
	},
	{
		// Next month's day: 다음 달 15일
		re:         regexp.MustCompile(`다음\s*달\s*(\d{1,2})일`),
		confidence: 0.85,
		resolve: func(m []string, now time.Time) (time.Time, bool) {
			d, _ := strconv.Atoi(m[1])
			if d < 1 || d > 31 {
				return time.Time{}, false
			}
			next := now.AddDate(0, 1, 0)
			return time.Date(next.Year(), next.Month(), d, 9, 0, 0, 0, time.Local), true
		},
	},
}

// relativeDateRule maps a relative keyword to a day offset.
type relativeDateRule struct {
	keyword string
	days    int
}

// Longer keywords first: a matched keyword is claimed so 내일모레 does not
// also count as 내일.
var relativeDateRules = []relativeDateRule{
	{"내일모레", 2},
	{"모레", 2},
	{"내일", 1},
	{"오늘", 0},
	{"다음 주", 7},
	{"다음주", 7},
	{"day after tomorrow", 2},
	{"tomorrow", 1},
	{"today", 0},
	{"next week", 7},
}

var timeOfDayRe = regexp.MustCompile(`(오전|오후|AM|PM|am|pm)\s*(\d{1,2})시?`)

func (e *Extractor) extractDates(text string, now time.Time) []types.Entity {
	entities := make([]types.Entity, 0, 2)

	for _, rule := range dateRules {
		for _, m := range rule.re.FindAllStringSubmatch(text, -1) {
			resolved, ok := rule.resolve(m, now)
			if !ok {
				continue
			}
			ent := newEntity(types.EntityDate, m[0], resolved.Format("2006-01-02"), rule.confidence)
			ent.Metadata = map[string]string{types.MetaTimeOfDay: resolved.Format("15:04")}
			entities = append(entities, ent)
		}
	}

	remaining := text
	for _, rule := range relativeDateRules {
		if strings.Contains(remaining, rule.keyword) {
			resolved := now.AddDate(0, 0, rule.days)
			ent := newEntity(types.EntityDate, rule.keyword, resolved.Format("2006-01-02"), 0.85)
			ent.Metadata = map[string]string{types.MetaTimeOfDay: "09:00"}
			entities = append(entities, ent)
			remaining = strings.ReplaceAll(remaining, rule.keyword, "")
		}
	}

	// A time-of-day match refines the most recent date instead of producing
	// its own date entity. With no date present it becomes a bare time entity.
	if m := timeOfDayRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[2])
		if hour >= 1 && hour <= 12 {
			if m[1] == "오후" || m[1] == "PM" || m[1] == "pm" {
				if hour != 12 {
					hour += 12
				}
			} else if hour == 12 {
				hour = 0
			}
			tod := fmt.Sprintf("%02d:00", hour)
			if len(entities) > 0 {
				last := &entities[len(entities)-1]
				if last.Metadata == nil {
					last.Metadata = map[string]string{}
				}
				last.Metadata[types.MetaTimeOfDay] = tod
			} else {
				entities = append(entities, newEntity(types.EntityTime, m[0], tod, 0.85))
			}
		}
	}

	return entities
}
