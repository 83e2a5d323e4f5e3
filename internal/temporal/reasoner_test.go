package temporal

import (
	"testing"
	"time"

	"suri/internal/types"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)

func testReasoner() *Reasoner {
	return New(WithClock(func() time.Time { return testNow }))
}

func dateEntity(value string) types.Entity {
	return types.Entity{ID: "entity-test", Type: types.EntityDate, Raw: value, Value: value, Confidence: 0.9}
}

func TestUrgencyLevels(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"funeral is level 5", "어머니 장례식이 내일이야", 5},
		{"urgent keyword", "긴급하게 처리해줘", 5},
		{"today is level 4", "오늘까지 보고서 제출", 4},
		{"deadline keyword", "마감이 다가온다", 4},
		{"tomorrow is level 3", "내일 회의 있어", 3},
		{"no keyword defaults to 2", "다음에 밥 먹자", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testReasoner().Analyze(nil, tt.text)
			if got.Urgency != tt.want {
				t.Errorf("urgency = %d, want %d", got.Urgency, tt.want)
			}
		})
	}
}

func TestHigherUrgencyWinsWhenBothMatch(t *testing.T) {
	// 긴급 (5) and 오늘 (4) both present; level 5 keywords are scanned first.
	got := testReasoner().Analyze(nil, "오늘 긴급 회의")
	if got.Urgency != 5 {
		t.Errorf("urgency = %d, want 5", got.Urgency)
	}
}

func TestDeadlineFromFirstDateEntity(t *testing.T) {
	entities := []types.Entity{dateEntity("2026-09-15"), dateEntity("2026-09-20")}
	got := testReasoner().Analyze(entities, "회의")

	if got.Deadline == nil {
		t.Fatal("expected a deadline")
	}
	if got.Deadline.Format("2006-01-02") != "2026-09-15" {
		t.Errorf("deadline = %s, want 2026-09-15", got.Deadline.Format("2006-01-02"))
	}
}

func TestDeadlineHonorsTimeOfDay(t *testing.T) {
	e := dateEntity("2026-09-15")
	e.Metadata = map[string]string{types.MetaTimeOfDay: "15:00"}
	got := testReasoner().Analyze([]types.Entity{e}, "회의")

	if got.Deadline == nil || got.Deadline.Hour() != 15 {
		t.Fatalf("deadline should carry 15:00, got %v", got.Deadline)
	}
}

func TestNoDateMeansNoDeadlineOrReminder(t *testing.T) {
	got := testReasoner().Analyze(nil, "회의")
	if got.Deadline != nil || got.OptimalReminder != nil {
		t.Errorf("expected no deadline/reminder, got %v / %v", got.Deadline, got.OptimalReminder)
	}
}

func TestReminderTiers(t *testing.T) {
	tests := []struct {
		name     string
		deadline string
		want     string
	}{
		{"more than 7 days out reminds 3 days before", "2026-09-20", "2026-09-17"},
		{"within a week reminds 1 day before", "2026-09-05", "2026-09-04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testReasoner().Analyze([]types.Entity{dateEntity(tt.deadline)}, "회의")
			if got.OptimalReminder == nil {
				t.Fatal("expected a reminder")
			}
			if got.OptimalReminder.Format("2006-01-02") != tt.want {
				t.Errorf("reminder = %s, want %s", got.OptimalReminder.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestImminentDeadlineRemindsNow(t *testing.T) {
	got := testReasoner().Analyze([]types.Entity{dateEntity("2026-09-02")}, "내일 마감")
	if got.OptimalReminder == nil {
		t.Fatal("expected a reminder")
	}
	if !got.OptimalReminder.Equal(testNow) {
		t.Errorf("reminder = %v, want now (%v)", got.OptimalReminder, testNow)
	}
}
