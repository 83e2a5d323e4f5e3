// Package delivery defines the side-effect collaborators the executor
// dispatches into: calendar, notification and deep-link hand-off. The core
// depends only on their success or failure; in-memory implementations are
// provided for the CLI front and tests.
package delivery

import (
	"context"
	"sync"
	"time"

	"suri/internal/types"
)

// CalendarEvent is the payload handed to the calendar collaborator.
type CalendarEvent struct {
	Title    string
	Start    time.Time
	End      time.Time
	Location string
}

// CalendarSink books events.
type CalendarSink interface {
	CreateEvent(ctx context.Context, event CalendarEvent) error
}

// Notification is the payload handed to the notification collaborator.
type Notification struct {
	Title       string
	Body        string
	Priority    types.Priority
	ScheduledAt *time.Time
}

// NotificationSink delivers notifications.
type NotificationSink interface {
	Notify(ctx context.Context, n Notification) error
}

// DeepLinkLauncher hands a constructed URL off to the platform. URL
// construction is the core's job (see links.go); the launch is not.
type DeepLinkLauncher interface {
	Launch(ctx context.Context, url string) error
}

// MemoryCalendar records events in memory.
type MemoryCalendar struct {
	mu     sync.Mutex
	Events []CalendarEvent
}

// CreateEvent implements CalendarSink.
func (m *MemoryCalendar) CreateEvent(_ context.Context, event CalendarEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()
	return nil
}

// MemoryNotifier records notifications in memory.
type MemoryNotifier struct {
	mu   sync.Mutex
	Sent []Notification
}

// Notify implements NotificationSink.
func (m *MemoryNotifier) Notify(_ context.Context, n Notification) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, n)
	m.mu.Unlock()
	return nil
}

// Count returns how many notifications were delivered.
func (m *MemoryNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// MemoryLauncher records launched URLs in memory.
type MemoryLauncher struct {
	mu   sync.Mutex
	URLs []string
}

// Launch implements DeepLinkLauncher.
func (m *MemoryLauncher) Launch(_ context.Context, url string) error {
	m.mu.Lock()
	m.URLs = append(m.URLs, url)
	m.mu.Unlock()
	return nil
}
