// Package di assembles the pipeline with explicit dependency injection:
// every stage receives its collaborators here, nothing is a package-level
// singleton.
package di

import (
	"context"
	"fmt"

	"suri/internal/config"
	"suri/internal/delivery"
	"suri/internal/executor"
	"suri/internal/extract"
	"suri/internal/intent"
	"suri/internal/logging"
	"suri/internal/observability"
	"suri/internal/permission"
	"suri/internal/pipeline"
	"suri/internal/scheduler"
	"suri/internal/suggest"
	"suri/internal/temporal"
	"suri/internal/utils/id"
)

// Container holds all application dependencies.
type Container struct {
	Config    config.Config
	Pipeline  *pipeline.Pipeline
	Executor  *executor.Executor
	Scheduler *scheduler.Scheduler
	Metrics   *observability.MetricsCollector
	Notifier  *delivery.MemoryNotifier
	Calendar  *delivery.MemoryCalendar
	Launcher  *delivery.MemoryLauncher
}

// Options overrides collaborators that would otherwise be built in-memory.
type Options struct {
	Permissions permission.Service
	Calendar    delivery.CalendarSink
	Notifier    delivery.NotificationSink
	Launcher    delivery.DeepLinkLauncher
}

// BuildContainer wires the full pipeline from configuration.
func BuildContainer(cfg config.Config, opts Options) (*Container, error) {
	logger := logging.NewComponentLogger("DI")

	if cfg.IDStrategy == "uuidv7" {
		id.SetStrategy(id.StrategyUUIDv7)
	} else {
		id.SetStrategy(id.StrategyKSUID)
	}

	metrics, err := observability.NewMetricsCollector(observability.MetricsConfig{
		Enabled:        cfg.MetricsEnabled,
		PrometheusPort: cfg.PrometheusPort,
	}, logging.NewComponentLogger("Metrics"))
	if err != nil {
		return nil, fmt.Errorf("build metrics collector: %w", err)
	}

	extractor := extract.New(
		extract.WithMinAmount(cfg.MinAmountWon),
		extract.WithLogger(logging.NewComponentLogger("Extract")),
	)

	classifierOpts := []intent.ClassifierOption{
		intent.WithThreshold(cfg.FallbackThreshold),
		intent.WithCacheSize(cfg.ClassifyCacheSize),
		intent.WithClassifierLogger(logging.NewComponentLogger("Intent")),
	}
	if cfg.ModelEnabled {
		backend := intent.NewHTTPModelBackend(intent.ModelConfig{
			BaseURL: cfg.ModelBaseURL,
			Model:   cfg.ModelName,
			Timeout: cfg.ModelTimeout,
		}, logging.NewComponentLogger("Model"))
		classifierOpts = append(classifierOpts, intent.WithPrimary(backend))
	}
	classifier := intent.NewClassifier(classifierOpts...)

	reasoner := temporal.New(temporal.WithLogger(logging.NewComponentLogger("Temporal")))
	suggester := suggest.New(reasoner,
		suggest.WithUrgentNotifyLevel(cfg.UrgentNotifyLevel),
		suggest.WithLogger(logging.NewComponentLogger("Suggest")),
	)

	c := &Container{Config: cfg}

	perms := opts.Permissions
	if perms == nil {
		perms = permission.AllowAll()
	}
	calendarSink := opts.Calendar
	if calendarSink == nil {
		c.Calendar = &delivery.MemoryCalendar{}
		calendarSink = c.Calendar
	}
	notifierSink := opts.Notifier
	if notifierSink == nil {
		c.Notifier = &delivery.MemoryNotifier{}
		notifierSink = c.Notifier
	}
	launcherSink := opts.Launcher
	if launcherSink == nil {
		c.Launcher = &delivery.MemoryLauncher{}
		launcherSink = c.Launcher
	}

	c.Metrics = metrics
	c.Pipeline = pipeline.New(extractor, classifier, reasoner, suggester,
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(logging.NewComponentLogger("Pipeline")),
	)
	c.Executor = executor.New(perms, calendarSink, notifierSink, launcherSink,
		executor.WithMetrics(metrics),
		executor.WithLogger(logging.NewComponentLogger("Executor")),
	)
	c.Scheduler = scheduler.New(scheduler.Config{
		Enabled:           cfg.SchedulerEnabled,
		Timezone:          cfg.SchedulerTimezone,
		ConcurrencyPolicy: cfg.ConcurrencyPolicy,
	}, notifierSink, logging.NewComponentLogger("Scheduler"))
	c.Scheduler.Start()

	logger.Info("container built: model=%v metrics=%v scheduler=%v",
		cfg.ModelEnabled, cfg.MetricsEnabled, cfg.SchedulerEnabled)
	return c, nil
}

// Cleanup gracefully shuts down all resources.
func (c *Container) Cleanup(ctx context.Context) error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Metrics != nil {
		return c.Metrics.Shutdown(ctx)
	}
	return nil
}
