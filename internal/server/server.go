// Package server exposes the pipeline over HTTP: analysis, execution,
// status polling and cancellation.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"suri/internal/executor"
	"suri/internal/logging"
	"suri/internal/pipeline"
	"suri/internal/scheduler"
	"suri/internal/types"
)

// Config configures the HTTP server.
type Config struct {
	Addr       string
	EnableCORS bool
	Debug      bool
}

// Server serves the pipeline API.
type Server struct {
	pipeline  *pipeline.Pipeline
	executor  *executor.Executor
	scheduler *scheduler.Scheduler
	engine    *gin.Engine
	http      *http.Server
	logger    logging.Logger
	startTime time.Time
}

// New creates the API server. The scheduler may be nil when reminders are
// disabled.
func New(cfg Config, p *pipeline.Pipeline, ex *executor.Executor, sched *scheduler.Scheduler, logger logging.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		pipeline:  p,
		executor:  ex,
		scheduler: sched,
		engine:    engine,
		logger:    logging.OrNop(logger),
		startTime: time.Now(),
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/analyze/batch", s.handleAnalyzeBatch)
	api.POST("/execute", s.handleExecute)
	api.GET("/actions/:id/status", s.handleActionStatus)
	api.POST("/actions/:id/cancel", s.handleActionCancel)
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("API server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

type analyzeRequest struct {
	Text   string            `json:"text"`
	Source types.InputSource `json:"source"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	if req.Source == "" {
		req.Source = types.SourceManual
	}

	analysis := s.pipeline.Analyze(c.Request.Context(), types.RawInput{Text: req.Text, Source: req.Source})
	s.scheduleReminders(analysis)
	c.JSON(http.StatusOK, analysis)
}

type analyzeBatchRequest struct {
	Inputs     []analyzeRequest `json:"inputs"`
	Concurrent bool             `json:"concurrent"`
}

func (s *Server) handleAnalyzeBatch(c *gin.Context) {
	var req analyzeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Inputs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inputs are required"})
		return
	}

	inputs := make([]types.RawInput, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		source := in.Source
		if source == "" {
			source = types.SourceManual
		}
		inputs = append(inputs, types.RawInput{Text: in.Text, Source: source})
	}

	var results []pipeline.Analysis
	if req.Concurrent {
		results = s.pipeline.AnalyzeAll(c.Request.Context(), inputs, 4)
	} else {
		results = s.pipeline.AnalyzeBatch(c.Request.Context(), inputs)
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type executeRequest struct {
	Actions []types.Action `json:"actions"`
}

func (s *Server) handleExecute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Actions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actions are required"})
		return
	}

	actions := make([]*types.Action, 0, len(req.Actions))
	for i := range req.Actions {
		actions = append(actions, &req.Actions[i])
	}

	var progress int
	results := s.executor.ExecuteBatch(c.Request.Context(), actions, func(done, total int) {
		progress = done * 100 / total
	})
	c.JSON(http.StatusOK, gin.H{"results": results, "progress": progress})
}

func (s *Server) handleActionStatus(c *gin.Context) {
	status, ok := s.executor.Status(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no status for action"})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleActionCancel(c *gin.Context) {
	id := c.Param("id")
	cancelled := s.executor.Cancel(id)
	if s.scheduler != nil {
		s.scheduler.CancelReminder(id)
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}

// scheduleReminders registers reminders for suggestions that carry a
// scheduled time.
func (s *Server) scheduleReminders(analysis pipeline.Analysis) {
	if s.scheduler == nil || analysis.Temporal.OptimalReminder == nil {
		return
	}
	for _, a := range analysis.Suggestions {
		if a.ScheduledAt == nil {
			continue
		}
		if err := s.scheduler.ScheduleReminder(a, *a.ScheduledAt); err != nil {
			s.logger.Warn("failed to schedule reminder for %s: %v", a.ID, err)
		}
	}
}
