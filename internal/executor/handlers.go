package executor

import (
	"context"
	"fmt"
	"time"

	"suri/internal/delivery"
	"suri/internal/types"
)

// dispatch resolves the category handler. Handlers resolve required
// entities from the action's entity list and fail fast with a descriptive
// error when one is absent.
func (e *Executor) dispatch(ctx context.Context, action *types.Action) (map[string]string, error) {
	switch action.Category {
	case types.CategoryCalendar:
		return e.dispatchCalendar(ctx, action)
	case types.CategoryPayment:
		return e.dispatchPayment(ctx, action)
	case types.CategoryShopping:
		return e.dispatchShopping(ctx, action)
	case types.CategoryTask:
		return e.dispatchTask(ctx, action)
	case types.CategoryNavigation:
		return e.dispatchNavigation(ctx, action)
	case types.CategoryCommunication:
		return e.dispatchCommunication(ctx, action)
	case types.CategoryNotification:
		return e.dispatchNotification(ctx, action)
	default:
		return nil, fmt.Errorf("unrecognized action category %q", action.Category)
	}
}

func (e *Executor) dispatchCalendar(ctx context.Context, action *types.Action) (map[string]string, error) {
	date, ok := action.Entity(types.EntityDate)
	if !ok {
		return nil, fmt.Errorf("calendar action %s has no date entity", action.ID)
	}

	start, err := parseEventTime(date)
	if err != nil {
		return nil, fmt.Errorf("calendar action %s date unparseable: %w", action.ID, err)
	}

	event := delivery.CalendarEvent{
		Title:    action.Title,
		Start:    start,
		End:      start.Add(time.Hour),
		Location: action.Fields["location"],
	}
	if err := e.calendar.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("calendar collaborator: %w", err)
	}
	return map[string]string{"start": event.Start.Format(time.RFC3339)}, nil
}

func (e *Executor) dispatchPayment(ctx context.Context, action *types.Action) (map[string]string, error) {
	amount, ok := action.Entity(types.EntityAmount)
	if !ok {
		return nil, fmt.Errorf("payment action %s has no amount entity", action.ID)
	}

	link := delivery.PaymentLink(action.Fields["recipient"], amount.Value, currencyField(action, amount), action.Fields["memo"])
	if err := e.launcher.Launch(ctx, link); err != nil {
		return nil, fmt.Errorf("deep-link launcher: %w", err)
	}
	return map[string]string{"deepLink": link}, nil
}

func (e *Executor) dispatchShopping(ctx context.Context, action *types.Action) (map[string]string, error) {
	product := action.Fields["productName"]
	if product == "" {
		product = action.Title
	}
	link := delivery.ShoppingLink(product, action.Fields["targetPrice"])
	if err := e.launcher.Launch(ctx, link); err != nil {
		return nil, fmt.Errorf("deep-link launcher: %w", err)
	}
	return map[string]string{"deepLink": link}, nil
}

// dispatchTask hands the deadline/priority tuple to the external task
// collaborator by way of a scheduled notification; task persistence itself
// is out of core scope.
func (e *Executor) dispatchTask(ctx context.Context, action *types.Action) (map[string]string, error) {
	deadline := action.Fields["deadline"]
	if deadline == "" {
		date, ok := action.Entity(types.EntityDate)
		if !ok {
			return nil, fmt.Errorf("task action %s has no deadline or date entity", action.ID)
		}
		deadline = date.Value
	}

	n := delivery.Notification{
		Title:    "할 일: " + action.Title,
		Body:     fmt.Sprintf("마감: %s", deadline),
		Priority: action.Priority,
	}
	if err := e.notifier.Notify(ctx, n); err != nil {
		return nil, fmt.Errorf("notification collaborator: %w", err)
	}
	return map[string]string{"deadline": deadline}, nil
}

func (e *Executor) dispatchNavigation(ctx context.Context, action *types.Action) (map[string]string, error) {
	destination := action.Fields["destination"]
	if destination == "" {
		loc, ok := action.Entity(types.EntityLocation)
		if !ok {
			return nil, fmt.Errorf("navigation action %s has no destination", action.ID)
		}
		destination = loc.Value
	}

	link := delivery.NavigationLink(destination, action.Fields["latitude"], action.Fields["longitude"], action.Fields["transportMode"])
	if err := e.launcher.Launch(ctx, link); err != nil {
		return nil, fmt.Errorf("deep-link launcher: %w", err)
	}
	return map[string]string{"deepLink": link}, nil
}

func (e *Executor) dispatchCommunication(ctx context.Context, action *types.Action) (map[string]string, error) {
	person, ok := action.Entity(types.EntityPerson)
	if !ok {
		return nil, fmt.Errorf("communication action %s has no person entity", action.ID)
	}

	commType := action.Fields["commType"]
	if !validCommType(commType) {
		return nil, fmt.Errorf("communication action %s has invalid commType %q", action.ID, commType)
	}

	link := delivery.CommunicationLink(commType, person.Value, action.Fields["messageTemplate"])
	if err := e.launcher.Launch(ctx, link); err != nil {
		return nil, fmt.Errorf("deep-link launcher: %w", err)
	}
	return map[string]string{"deepLink": link, "recipient": person.Value}, nil
}

func (e *Executor) dispatchNotification(ctx context.Context, action *types.Action) (map[string]string, error) {
	title := action.Fields["notificationTitle"]
	if title == "" {
		title = action.Title
	}
	n := delivery.Notification{
		Title:       title,
		Body:        action.Fields["notificationBody"],
		Priority:    action.Priority,
		ScheduledAt: action.ScheduledAt,
	}
	if err := e.notifier.Notify(ctx, n); err != nil {
		return nil, fmt.Errorf("notification collaborator: %w", err)
	}
	return map[string]string{"title": title}, nil
}

func validCommType(commType string) bool {
	for _, t := range types.CommTypes {
		if t == commType {
			return true
		}
	}
	return false
}

func currencyField(action *types.Action, amount types.Entity) string {
	if c := action.Fields["currency"]; c != "" {
		return c
	}
	if c, ok := amount.Metadata[types.MetaCurrency]; ok {
		return c
	}
	return "KRW"
}

// parseEventTime combines a date entity's value and attached time-of-day.
func parseEventTime(date types.Entity) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", date.Value, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if tod, ok := date.Metadata[types.MetaTimeOfDay]; ok {
		if parsed, err := time.ParseInLocation("15:04", tod, time.Local); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.Local)
		}
	}
	return t, nil
}
