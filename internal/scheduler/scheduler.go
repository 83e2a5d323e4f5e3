// Package scheduler fires reminder notifications at the times the temporal
// reasoner recommends. It wraps robfig/cron so recurring review triggers
// and one-shot reminders share one clock.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"suri/internal/delivery"
	"suri/internal/logging"
	"suri/internal/types"
)

// Config holds scheduler configuration.
type Config struct {
	Enabled           bool
	Timezone          string
	ConcurrencyPolicy string // "skip" (default) or "delay"
}

// Scheduler manages reminder delivery using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	notifier delivery.NotificationSink
	config   Config
	logger   logging.Logger
	mu       sync.Mutex
	entryIDs map[string]cron.EntryID // action id → cron entry
	stopOnce sync.Once
}

// New creates a Scheduler delivering through the given notification sink.
func New(cfg Config, notifier delivery.NotificationSink, logger logging.Logger) *Scheduler {
	logger = logging.OrNop(logger)
	return &Scheduler{
		cron:     newCron(cfg, logger),
		notifier: notifier,
		config:   cfg,
		logger:   logger,
		entryIDs: make(map[string]cron.EntryID),
	}
}

func newCron(cfg Config, logger logging.Logger) *cron.Cron {
	options := []cron.Option{}

	if cfg.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
			options = append(options, cron.WithLocation(loc))
		} else {
			logger.Warn("Scheduler: unknown timezone %q, using local", cfg.Timezone)
		}
	}

	policy := strings.ToLower(strings.TrimSpace(cfg.ConcurrencyPolicy))
	var wrapper cron.JobWrapper
	switch policy {
	case "delay":
		wrapper = cron.DelayIfStillRunning(cron.DefaultLogger)
	case "skip", "":
		wrapper = cron.SkipIfStillRunning(cron.DefaultLogger)
	default:
		logger.Warn("Scheduler: unknown concurrency policy %q, defaulting to skip", policy)
		wrapper = cron.SkipIfStillRunning(cron.DefaultLogger)
	}
	options = append(options, cron.WithChain(wrapper))

	return cron.New(options...)
}

// Start begins dispatching scheduled reminders.
func (s *Scheduler) Start() {
	if !s.config.Enabled {
		s.logger.Info("Scheduler disabled by config")
		return
	}
	s.cron.Start()
}

// Stop halts the scheduler, waiting for in-flight jobs.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		ctx := s.cron.Stop()
		<-ctx.Done()
	})
}

// ScheduleReminder registers a one-shot reminder for an action at the given
// time. A reminder in the past fires immediately. Re-scheduling the same
// action replaces its previous reminder.
func (s *Scheduler) ScheduleReminder(action types.Action, at time.Time) error {
	if !s.config.Enabled {
		return fmt.Errorf("scheduler disabled")
	}

	if !at.After(time.Now()) {
		s.logger.Info("reminder for %s already due, delivering now", action.ID)
		s.deliver(action)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entryIDs[action.ID]; ok {
		s.cron.Remove(prev)
	}

	// One-shot: the job removes its own entry after delivery.
	spec := fmt.Sprintf("%d %d %d %d *", at.Minute(), at.Hour(), at.Day(), int(at.Month()))
	entryID, err := s.cron.AddFunc(spec, func() {
		s.deliver(action)
		s.remove(action.ID)
	})
	if err != nil {
		return fmt.Errorf("schedule reminder for %s: %w", action.ID, err)
	}
	s.entryIDs[action.ID] = entryID
	s.logger.Info("reminder for %s scheduled at %s", action.ID, at.Format(time.RFC3339))
	return nil
}

// CancelReminder drops a pending reminder. Returns false when none exists.
func (s *Scheduler) CancelReminder(actionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entryID, ok := s.entryIDs[actionID]
	if !ok {
		return false
	}
	s.cron.Remove(entryID)
	delete(s.entryIDs, actionID)
	return true
}

// Pending returns the number of registered reminders.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entryIDs)
}

func (s *Scheduler) remove(actionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entryIDs[actionID]; ok {
		s.cron.Remove(entryID)
		delete(s.entryIDs, actionID)
	}
}

func (s *Scheduler) deliver(action types.Action) {
	n := delivery.Notification{
		Title:    "미리 알림: " + action.Title,
		Body:     action.Description,
		Priority: action.Priority,
	}
	if err := s.notifier.Notify(context.Background(), n); err != nil {
		s.logger.Error("reminder delivery for %s failed: %v", action.ID, err)
	}
}
