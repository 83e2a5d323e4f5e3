// Package executor drives approved actions through the execution state
// machine: validate, prepare, permission-check, then category dispatch.
// Every attempt yields an ActionResult; nothing escapes as a panic.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"suri/internal/delivery"
	"suri/internal/logging"
	"suri/internal/observability"
	"suri/internal/permission"
	"suri/internal/types"
)

// Executor validates, permission-gates and dispatches actions. It owns the
// in-memory status table; nothing here is persisted.
type Executor struct {
	permissions permission.Service
	calendar    delivery.CalendarSink
	notifier    delivery.NotificationSink
	launcher    delivery.DeepLinkLauncher
	status      *statusTable
	clock       func() time.Time
	metrics     *observability.MetricsCollector
	logger      logging.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock injects the wall clock.
func WithClock(clock func() time.Time) Option {
	return func(e *Executor) { e.clock = clock }
}

// WithLogger injects the executor's logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMetrics attaches the metrics collector for execution outcome counts.
func WithMetrics(metrics *observability.MetricsCollector) Option {
	return func(e *Executor) { e.metrics = metrics }
}

// New creates an Executor with its side-effect collaborators.
func New(perms permission.Service, calendar delivery.CalendarSink, notifier delivery.NotificationSink, launcher delivery.DeepLinkLauncher, opts ...Option) *Executor {
	e := &Executor{
		permissions: perms,
		calendar:    calendar,
		notifier:    notifier,
		launcher:    launcher,
		status:      newStatusTable(),
		clock:       time.Now,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status returns the last-known progress projection for an action.
func (e *Executor) Status(actionID string) (types.ExecutionStatus, bool) {
	return e.status.get(actionID)
}

// Cancel removes an action from tracking. Cancellation is cooperative: a
// dispatch already in progress is not interrupted, but its status will not
// be reported as further advanced and the next checkpoint turns it into a
// cancelled result. Cancelling a finished action only drops its status row.
// Returns false when the action was not being tracked.
func (e *Executor) Cancel(actionID string) bool {
	e.logger.Info("cancel requested for %s", actionID)
	return e.status.cancel(actionID)
}

// Execute runs one action through the full state machine and returns its
// result. The action's status field is updated in place to its terminal
// state.
func (e *Executor) Execute(ctx context.Context, action *types.Action) types.ActionResult {
	e.status.set(action.ID, types.StagePreparing, 0, "validating")

	if problems := Validate(*action); len(problems) > 0 {
		return e.fail(action, "validation failed: "+strings.Join(problems, "; "))
	}

	missing := Prepare(*action)
	if len(missing) > 0 {
		// Reported but not fatal; dispatch resolves what it can from the
		// attached entities.
		e.logger.Warn("action %s missing fields: %s", action.ID, strings.Join(missing, ", "))
	}
	e.status.set(action.ID, types.StagePreparing, 25, "prepared")

	if err := e.checkPermissions(action.Category); err != nil {
		return e.fail(action, err.Error())
	}
	action.Status = types.StatusReady

	if e.status.isCancelled(action.ID) {
		return e.cancelled(action)
	}

	action.Status = types.StatusExecuting
	e.status.set(action.ID, types.StageExecuting, 50, "dispatching")

	data, err := e.dispatch(ctx, action)
	if err != nil {
		return e.fail(action, err.Error())
	}

	e.status.set(action.ID, types.StageVerifying, 90, "verifying")

	if e.status.isCancelled(action.ID) {
		// The side effect already happened; cancellation only stops status
		// reporting from advancing.
		return e.cancelled(action)
	}

	now := e.clock()
	action.Status = types.StatusCompleted
	action.ExecutedAt = &now
	e.status.set(action.ID, types.StageCompleted, 100, "completed")
	e.status.clearCancelled(action.ID)

	if e.metrics != nil {
		e.metrics.RecordExecution(ctx, action.Category, true)
	}
	return types.ActionResult{
		ActionID:  action.ID,
		Success:   true,
		Data:      data,
		Timestamp: now,
		Metadata:  map[string]string{"category": string(action.Category)},
	}
}

// ExecuteBatch runs actions sequentially in input order. Every action is
// attempted; individual failures never abort the batch. Progress reports
// the aggregate percentage after each action when onProgress is non-nil.
func (e *Executor) ExecuteBatch(ctx context.Context, actions []*types.Action, onProgress func(done, total int)) []types.ActionResult {
	results := make([]types.ActionResult, 0, len(actions))
	for i, action := range actions {
		results = append(results, e.Execute(ctx, action))
		if onProgress != nil {
			onProgress(i+1, len(actions))
		}
	}
	return results
}

func (e *Executor) checkPermissions(category types.ActionCategory) error {
	for _, kind := range permission.Required(category) {
		if e.permissions.Check(kind) {
			continue
		}
		if !e.permissions.Request(kind, true) {
			return fmt.Errorf("permission %s denied for %s action", kind, category)
		}
	}
	return nil
}

func (e *Executor) fail(action *types.Action, message string) types.ActionResult {
	e.logger.Warn("action %s failed: %s", action.ID, message)
	action.Status = types.StatusFailed
	action.Error = message
	e.status.set(action.ID, types.StageFailed, 100, message)
	e.status.clearCancelled(action.ID)
	if e.metrics != nil {
		e.metrics.RecordExecution(context.Background(), action.Category, false)
	}
	return types.ActionResult{
		ActionID:  action.ID,
		Success:   false,
		Error:     message,
		Timestamp: e.clock(),
	}
}

func (e *Executor) cancelled(action *types.Action) types.ActionResult {
	action.Status = types.StatusCancelled
	e.status.clearCancelled(action.ID)
	return types.ActionResult{
		ActionID:  action.ID,
		Success:   false,
		Error:     "cancelled",
		Timestamp: e.clock(),
	}
}
