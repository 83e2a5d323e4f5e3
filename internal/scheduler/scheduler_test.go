package scheduler

import (
	"testing"
	"time"

	"suri/internal/delivery"
	"suri/internal/logging"
	"suri/internal/types"
)

func testAction() types.Action {
	return types.Action{
		ID:       "action-r",
		Category: types.CategoryNotification,
		Title:    "결혼식",
		Priority: types.PriorityMedium,
	}
}

func TestScheduleFutureReminderRegistersEntry(t *testing.T) {
	notifier := &delivery.MemoryNotifier{}
	s := New(Config{Enabled: true}, notifier, logging.Nop())

	if err := s.ScheduleReminder(testAction(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want 1", s.Pending())
	}
	if notifier.Count() != 0 {
		t.Errorf("future reminder must not deliver immediately, got %d", notifier.Count())
	}
}

func TestPastReminderDeliversImmediately(t *testing.T) {
	notifier := &delivery.MemoryNotifier{}
	s := New(Config{Enabled: true}, notifier, logging.Nop())

	if err := s.ScheduleReminder(testAction(), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if notifier.Count() != 1 {
		t.Fatalf("expected immediate delivery, got %d notifications", notifier.Count())
	}
	if s.Pending() != 0 {
		t.Errorf("immediate delivery should leave no pending entry, got %d", s.Pending())
	}
}

func TestRescheduleReplacesEntry(t *testing.T) {
	s := New(Config{Enabled: true}, &delivery.MemoryNotifier{}, logging.Nop())
	action := testAction()

	_ = s.ScheduleReminder(action, time.Now().Add(time.Hour))
	_ = s.ScheduleReminder(action, time.Now().Add(2*time.Hour))

	if s.Pending() != 1 {
		t.Errorf("reschedule should replace, pending = %d", s.Pending())
	}
}

func TestCancelReminder(t *testing.T) {
	s := New(Config{Enabled: true}, &delivery.MemoryNotifier{}, logging.Nop())
	action := testAction()
	_ = s.ScheduleReminder(action, time.Now().Add(time.Hour))

	if !s.CancelReminder(action.ID) {
		t.Fatal("expected cancel to succeed")
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d, want 0", s.Pending())
	}
	if s.CancelReminder("action-unknown") {
		t.Error("cancelling unknown reminder should report false")
	}
}

func TestDisabledSchedulerRejectsReminders(t *testing.T) {
	s := New(Config{Enabled: false}, &delivery.MemoryNotifier{}, logging.Nop())
	if err := s.ScheduleReminder(testAction(), time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error from disabled scheduler")
	}
}
