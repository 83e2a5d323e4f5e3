// Package suggest maps a classified intent plus extracted entities to typed
// action proposals. Actions missing their required entity are silently
// suppressed; high urgency always forces an additional notification action.
package suggest

import (
	"fmt"
	"time"

	"suri/internal/logging"
	"suri/internal/temporal"
	"suri/internal/types"
	"suri/internal/utils/id"
)

// Suggester builds action proposals. It owns no state beyond its
// collaborators and a clock.
type Suggester struct {
	reasoner          *temporal.Reasoner
	clock             func() time.Time
	urgentNotifyLevel int
	logger            logging.Logger
}

// Option configures a Suggester.
type Option func(*Suggester)

// WithClock injects the wall clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Suggester) { s.clock = clock }
}

// WithUrgentNotifyLevel sets the urgency threshold at which a forced
// notification action is appended. Default 4.
func WithUrgentNotifyLevel(level int) Option {
	return func(s *Suggester) { s.urgentNotifyLevel = level }
}

// WithLogger injects the suggester's logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Suggester) { s.logger = logger }
}

// New creates a Suggester using the given temporal reasoner.
func New(reasoner *temporal.Reasoner, opts ...Option) *Suggester {
	s := &Suggester{
		reasoner:          reasoner,
		clock:             time.Now,
		urgentNotifyLevel: 4,
		logger:            logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest returns zero or more pending actions for the classified input.
func (s *Suggester) Suggest(intent types.IntentResult, entities []types.Entity, rawText string) []types.Action {
	analysis := s.reasoner.Analyze(entities, rawText)
	actions := make([]types.Action, 0, 2)

	switch intent.Intent {
	case types.IntentCalendar:
		if a, ok := s.calendarAction(entities, rawText); ok {
			actions = append(actions, a)
		} else {
			s.logger.Debug("suppressed calendar action: no date entity")
		}
	case types.IntentShopping:
		actions = append(actions, s.shoppingActions(entities, rawText)...)
	case types.IntentWork:
		if a, ok := s.taskAction(entities, rawText, analysis); ok {
			actions = append(actions, a)
		} else {
			s.logger.Debug("suppressed task action: no date entity")
		}
	case types.IntentSocial:
		actions = append(actions, s.socialActions(entities, rawText)...)
	case types.IntentPayment:
		if a, ok := s.paymentAction(entities, rawText); ok {
			actions = append(actions, a)
		} else {
			s.logger.Debug("suppressed payment action: no amount entity")
		}
	}

	// Forced urgent notification, independent of intent outcome.
	if analysis.Urgency >= s.urgentNotifyLevel {
		actions = append(actions, s.urgentNotification(entities, rawText, analysis))
	}

	return actions
}

func (s *Suggester) newAction(category types.ActionCategory, title string, entities []types.Entity, priority types.Priority) types.Action {
	return types.Action{
		ID:        id.NewActionID(),
		Category:  category,
		Title:     title,
		Entities:  entities,
		Status:    types.StatusPending,
		Priority:  priority,
		CreatedAt: s.clock(),
		Fields:    map[string]string{},
	}
}

func (s *Suggester) calendarAction(entities []types.Entity, rawText string) (types.Action, bool) {
	date, ok := firstEntity(entities, types.EntityDate)
	if !ok {
		return types.Action{}, false
	}

	a := s.newAction(types.CategoryCalendar, summarize(rawText, "일정"), entities, types.PriorityMedium)
	a.Fields["title"] = a.Title
	a.Fields["startTime"] = startTimeFor(date)
	a.Fields["endTime"] = endTimeFor(date)
	if loc, ok := firstEntity(entities, types.EntityLocation); ok {
		a.Fields["location"] = loc.Value
	}
	return a, true
}

func (s *Suggester) shoppingActions(entities []types.Entity, rawText string) []types.Action {
	actions := make([]types.Action, 0, 2)

	wishlist := s.newAction(types.CategoryShopping, summarize(rawText, "위시리스트"), entities, types.PriorityLow)
	wishlist.Fields["productName"] = summarize(rawText, "상품")
	wishlist.Fields["currency"] = "KRW"
	if amount, ok := firstEntity(entities, types.EntityAmount); ok {
		wishlist.Fields["price"] = amount.Value
	} else {
		wishlist.Fields["price"] = "0"
	}
	actions = append(actions, wishlist)

	// Price alert only when an amount is present to alert on.
	if amount, ok := firstEntity(entities, types.EntityAmount); ok {
		alert := s.newAction(types.CategoryNotification, "가격 알림: "+summarize(rawText, "상품"), entities, types.PriorityLow)
		alert.Fields["notificationTitle"] = alert.Title
		alert.Fields["notificationBody"] = fmt.Sprintf("%s원 이하로 떨어지면 알려드려요", amount.Value)
		actions = append(actions, alert)
	}
	return actions
}

func (s *Suggester) taskAction(entities []types.Entity, rawText string, analysis types.TemporalAnalysis) (types.Action, bool) {
	date, ok := firstEntity(entities, types.EntityDate)
	if !ok {
		return types.Action{}, false
	}

	a := s.newAction(types.CategoryTask, summarize(rawText, "업무"), entities, s.taskPriority(analysis))
	a.Fields["title"] = a.Title
	a.Fields["deadline"] = date.Value
	return a, true
}

// taskPriority derives priority from deadline distance: high within 2 days,
// medium within 7, low beyond.
func (s *Suggester) taskPriority(analysis types.TemporalAnalysis) types.Priority {
	if analysis.Deadline == nil {
		return types.PriorityLow
	}
	until := analysis.Deadline.Sub(s.clock())
	switch {
	case until <= 2*24*time.Hour:
		return types.PriorityHigh
	case until <= 7*24*time.Hour:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

func (s *Suggester) socialActions(entities []types.Entity, rawText string) []types.Action {
	actions := make([]types.Action, 0, 2)

	if a, ok := s.calendarAction(entities, rawText); ok {
		actions = append(actions, a)
	} else {
		s.logger.Debug("suppressed social calendar action: no date entity")
	}

	// A social event with money involved usually means preparing a gift or
	// congratulatory payment.
	if amount, ok := firstEntity(entities, types.EntityAmount); ok {
		pay := s.newAction(types.CategoryPayment, "송금 준비: "+summarize(rawText, "경조사"), entities, types.PriorityMedium)
		pay.Fields["amount"] = amount.Value
		pay.Fields["currency"] = currencyOf(amount)
		pay.Fields["recipient"] = recipientFor(entities)
		actions = append(actions, pay)
	}
	return actions
}

func (s *Suggester) paymentAction(entities []types.Entity, rawText string) (types.Action, bool) {
	amount, ok := firstEntity(entities, types.EntityAmount)
	if !ok {
		return types.Action{}, false
	}

	a := s.newAction(types.CategoryPayment, summarize(rawText, "송금"), entities, types.PriorityHigh)
	a.Fields["amount"] = amount.Value
	a.Fields["currency"] = currencyOf(amount)
	a.Fields["recipient"] = recipientFor(entities)
	return a, true
}

func (s *Suggester) urgentNotification(entities []types.Entity, rawText string, analysis types.TemporalAnalysis) types.Action {
	a := s.newAction(types.CategoryNotification, "긴급 알림", entities, types.PriorityHighest)
	a.Fields["notificationTitle"] = "긴급 알림"
	a.Fields["notificationBody"] = summarize(rawText, "긴급한 내용이 있어요")
	a.Fields["priority"] = fmt.Sprintf("%d", analysis.Urgency)
	if analysis.OptimalReminder != nil {
		a.Fields["scheduledTime"] = analysis.OptimalReminder.Format(time.RFC3339)
		scheduled := *analysis.OptimalReminder
		a.ScheduledAt = &scheduled
	}
	return a
}

func firstEntity(entities []types.Entity, t types.EntityType) (types.Entity, bool) {
	for _, e := range entities {
		if e.Type == t {
			return e, true
		}
	}
	return types.Entity{}, false
}

func currencyOf(amount types.Entity) string {
	if c, ok := amount.Metadata[types.MetaCurrency]; ok {
		return c
	}
	return "KRW"
}

// recipientFor prefers a person entity; relationships are the next best
// hint at who the counterparty is.
func recipientFor(entities []types.Entity) string {
	if p, ok := firstEntity(entities, types.EntityPerson); ok {
		return p.Value
	}
	if r, ok := firstEntity(entities, types.EntityRelationship); ok {
		return r.Value
	}
	return ""
}

// summarize trims raw text into a short title, falling back when empty.
func summarize(rawText, fallback string) string {
	runes := []rune(rawText)
	if len(runes) == 0 {
		return fallback
	}
	if len(runes) > 30 {
		return string(runes[:30]) + "…"
	}
	return rawText
}

// startTimeFor/endTimeFor derive a one-hour event window from the date
// entity and its attached time-of-day.
func startTimeFor(date types.Entity) string {
	tod := date.Metadata[types.MetaTimeOfDay]
	if tod == "" {
		tod = "09:00"
	}
	return date.Value + "T" + tod + ":00"
}

func endTimeFor(date types.Entity) string {
	start := startTimeFor(date)
	t, err := time.ParseInLocation("2006-01-02T15:04:05", start, time.Local)
	if err != nil {
		return start
	}
	return t.Add(time.Hour).Format("2006-01-02T15:04:05")
}
