package suggest

import (
	"testing"
	"time"

	"suri/internal/temporal"
	"suri/internal/types"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)

func testSuggester() *Suggester {
	clock := func() time.Time { return testNow }
	return New(temporal.New(temporal.WithClock(clock)), WithClock(clock))
}

func intentResult(i types.Intent) types.IntentResult {
	return types.IntentResult{Intent: i, Confidence: 0.8}
}

func dateEntity(value string) types.Entity {
	return types.Entity{ID: "entity-d", Type: types.EntityDate, Raw: value, Value: value, Confidence: 0.9}
}

func amountEntity(value string) types.Entity {
	return types.Entity{
		ID: "entity-a", Type: types.EntityAmount, Raw: value + "원", Value: value,
		Confidence: 0.9, Metadata: map[string]string{types.MetaCurrency: "KRW"},
	}
}

func actionsOfCategory(actions []types.Action, c types.ActionCategory) []types.Action {
	var out []types.Action
	for _, a := range actions {
		if a.Category == c {
			out = append(out, a)
		}
	}
	return out
}

func TestCalendarIntentRequiresDate(t *testing.T) {
	s := testSuggester()

	withDate := s.Suggest(intentResult(types.IntentCalendar), []types.Entity{dateEntity("2026-09-15")}, "9월 15일 회의")
	if len(actionsOfCategory(withDate, types.CategoryCalendar)) != 1 {
		t.Fatalf("expected 1 calendar action, got %d", len(withDate))
	}

	withoutDate := s.Suggest(intentResult(types.IntentCalendar), nil, "회의 잡자")
	if len(withoutDate) != 0 {
		t.Fatalf("calendar action without date must be suppressed, got %d actions", len(withoutDate))
	}
}

func TestSuggestedActionsStartPending(t *testing.T) {
	s := testSuggester()
	actions := s.Suggest(intentResult(types.IntentCalendar), []types.Entity{dateEntity("2026-09-15")}, "회의")

	for _, a := range actions {
		if a.Status != types.StatusPending {
			t.Errorf("action %s status = %s, want pending", a.ID, a.Status)
		}
		if a.ID == "" || a.CreatedAt.IsZero() {
			t.Errorf("action missing id or creation time: %+v", a)
		}
	}
}

func TestShoppingWithAmountAddsPriceAlert(t *testing.T) {
	s := testSuggester()

	actions := s.Suggest(intentResult(types.IntentShopping), []types.Entity{amountEntity("50000")}, "5만 원 신발 사야지")
	if len(actionsOfCategory(actions, types.CategoryShopping)) != 1 {
		t.Error("expected a wishlist action")
	}
	if len(actionsOfCategory(actions, types.CategoryNotification)) != 1 {
		t.Error("expected a price-alert notification")
	}

	noAmount := s.Suggest(intentResult(types.IntentShopping), nil, "신발 사야지")
	if len(actionsOfCategory(noAmount, types.CategoryNotification)) != 0 {
		t.Error("price alert without amount must not be emitted")
	}
}

func TestTaskPriorityBoundaries(t *testing.T) {
	tests := []struct {
		name string
		date string
		want types.Priority
	}{
		{"2 days out is high", "2026-09-03", types.PriorityHigh},
		{"exactly 7 days out is medium", "2026-09-08", types.PriorityMedium},
		{"8+ days out is low", "2026-09-09", types.PriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSuggester()
			actions := s.Suggest(intentResult(types.IntentWork), []types.Entity{dateEntity(tt.date)}, "보고서 제출")
			tasks := actionsOfCategory(actions, types.CategoryTask)
			if len(tasks) != 1 {
				t.Fatalf("expected 1 task action, got %d", len(tasks))
			}
			if tasks[0].Priority != tt.want {
				t.Errorf("priority = %d, want %d", tasks[0].Priority, tt.want)
			}
		})
	}
}

func TestWorkIntentRequiresDate(t *testing.T) {
	s := testSuggester()
	actions := s.Suggest(intentResult(types.IntentWork), nil, "보고서 써야 해")
	if len(actions) != 0 {
		t.Fatalf("task action without date must be suppressed, got %d actions", len(actions))
	}
}

func TestSocialSuggestsCalendarAndPayment(t *testing.T) {
	s := testSuggester()
	entities := []types.Entity{dateEntity("2026-10-15"), amountEntity("100000")}

	actions := s.Suggest(intentResult(types.IntentSocial), entities, "다음 달 15일 결혼식, 축의금 10만 원")
	if len(actionsOfCategory(actions, types.CategoryCalendar)) != 1 {
		t.Error("expected a calendar action for the social event")
	}
	pays := actionsOfCategory(actions, types.CategoryPayment)
	if len(pays) != 1 {
		t.Fatal("expected a payment-preparation action")
	}
	if pays[0].Fields["amount"] != "100000" {
		t.Errorf("payment amount = %s, want 100000", pays[0].Fields["amount"])
	}
}

func TestPaymentIntentRequiresAmount(t *testing.T) {
	s := testSuggester()

	withAmount := s.Suggest(intentResult(types.IntentPayment), []types.Entity{amountEntity("30000")}, "3만 원 보내줘")
	if len(actionsOfCategory(withAmount, types.CategoryPayment)) != 1 {
		t.Error("expected a payment action")
	}

	withoutAmount := s.Suggest(intentResult(types.IntentPayment), nil, "돈 보내줘")
	if len(withoutAmount) != 0 {
		t.Errorf("payment action without amount must be suppressed, got %d actions", len(withoutAmount))
	}
}

func TestUrgentNotificationForced(t *testing.T) {
	s := testSuggester()

	// Funeral text: urgency 5 regardless of intent outcome.
	actions := s.Suggest(intentResult(types.IntentSocial), []types.Entity{dateEntity("2026-09-02")}, "어머니 장례식이 내일이야")
	notifs := actionsOfCategory(actions, types.CategoryNotification)
	if len(notifs) != 1 {
		t.Fatalf("expected forced urgent notification, got %d notifications", len(notifs))
	}
	if notifs[0].Priority != types.PriorityHighest {
		t.Errorf("urgent notification priority = %d, want %d", notifs[0].Priority, types.PriorityHighest)
	}
}

func TestUrgentNotificationAppendedEvenWhenIntentSuppressed(t *testing.T) {
	s := testSuggester()

	// No date entity, so the calendar action is suppressed, but urgency
	// still forces the notification.
	actions := s.Suggest(intentResult(types.IntentCalendar), nil, "당장 만나야 해")
	if len(actions) != 1 || actions[0].Category != types.CategoryNotification {
		t.Fatalf("expected only the forced notification, got %+v", actions)
	}
}

func TestNoUrgentNotificationBelowThreshold(t *testing.T) {
	s := testSuggester()
	actions := s.Suggest(intentResult(types.IntentCalendar), []types.Entity{dateEntity("2026-09-15")}, "9월 15일 회의")
	if len(actionsOfCategory(actions, types.CategoryNotification)) != 0 {
		t.Error("no urgent notification expected at default urgency")
	}
}
