// Package api exposes the HTTP/WebSocket request surface named in spec.md
// §6 over Echo v5, the way the teacher's pkg/api wires routes against its
// services layer. Handlers are thin: they parse/validate the request,
// delegate to the Store, Orchestrator, Quality Pipeline or Analyzer, and
// translate the result (or a classified *apierrors.Error) into JSON.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/dynamous-community/YokeFlow/pkg/analyzer"
	"github.com/dynamous-community/YokeFlow/pkg/broadcast"
	"github.com/dynamous-community/YokeFlow/pkg/config"
	"github.com/dynamous-community/YokeFlow/pkg/orchestrator"
	"github.com/dynamous-community/YokeFlow/pkg/quality"
	"github.com/dynamous-community/YokeFlow/pkg/store"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg     *config.Config
	store   *store.Store
	orch    *orchestrator.Orchestrator
	quality *quality.Pipeline
	an      *analyzer.Analyzer
	bus     *broadcast.Bus

	// bgCtx is the parent context for operations started by a request but
	// that must outlive it (initialize, coding-start): cancelled on
	// Shutdown so no orphaned loop survives the process.
	bgCtx    context.Context
	bgCancel context.CancelFunc

	signal *orchestrator.SignalScope // optional, set via SetSignalScope
}

// NewServer builds a Server and registers every route.
func NewServer(
	cfg *config.Config,
	st *store.Store,
	orch *orchestrator.Orchestrator,
	qp *quality.Pipeline,
	an *analyzer.Analyzer,
	bus *broadcast.Bus,
) *Server {
	bgCtx, bgCancel := context.WithCancel(context.Background())

	s := &Server{
		echo:     echo.New(),
		cfg:      cfg,
		store:    st,
		orch:     orch,
		quality:  qp,
		an:       an,
		bus:      bus,
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}

	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))
	s.echo.Use(securityHeaders())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthHandler)

	v1 := s.echo.Group("/api/v1")

	// Projects: static paths before :id, and :id paths before nested actions.
	v1.GET("/projects", s.listProjectsHandler)
	v1.POST("/projects", s.createProjectHandler)
	v1.GET("/projects/:id", s.getProjectHandler)
	v1.DELETE("/projects/:id", s.deleteProjectHandler)
	v1.PATCH("/projects/:id/rename", s.renameProjectHandler)
	v1.PATCH("/projects/:id/settings", s.updateSettingsHandler)
	v1.POST("/projects/:id/reset", s.resetProjectHandler)

	// Session-lifecycle actions.
	v1.POST("/projects/:id/initialize", s.initializeHandler)
	v1.POST("/projects/:id/coding-start", s.codingStartHandler)
	v1.POST("/projects/:id/stop-session", s.stopSessionHandler)
	v1.POST("/projects/:id/graceful-stop", s.setGracefulStopHandler)
	v1.DELETE("/projects/:id/graceful-stop", s.clearGracefulStopHandler)

	// Sessions.
	v1.GET("/projects/:id/sessions", s.listSessionsHandler)
	v1.GET("/sessions/:sessionId", s.getSessionHandler)

	// Quality.
	v1.GET("/projects/:id/quality/summary", s.qualitySummaryHandler)
	v1.GET("/sessions/:sessionId/quality", s.sessionQualityHandler)
	v1.GET("/projects/:id/quality/browser-verification", s.browserComplianceHandler)
	v1.GET("/projects/:id/quality/issues", s.qualityIssuesHandler)

	// Logs.
	v1.GET("/sessions/:sessionId/logs", s.listLogsHandler)
	v1.GET("/sessions/:sessionId/logs/human", s.humanLogHandler)
	v1.GET("/sessions/:sessionId/logs/events", s.eventsLogHandler)

	// Prompt-improvement analyses.
	v1.POST("/analyses", s.triggerAnalysisHandler)
	v1.GET("/analyses", s.listAnalysesHandler)
	v1.GET("/analyses/:analysisId", s.getAnalysisHandler)
	v1.DELETE("/analyses/:analysisId", s.deleteAnalysisHandler)
	v1.GET("/analyses/:analysisId/metrics", s.analysisMetricsHandler)

	// Proposals.
	v1.GET("/analyses/:analysisId/proposals", s.listProposalsHandler)
	v1.PATCH("/proposals/:proposalId/status", s.setProposalStatusHandler)
	v1.POST("/proposals/:proposalId/apply", s.applyProposalHandler)

	// Prompt versions.
	v1.GET("/prompt-versions", s.listPromptVersionsHandler)
	v1.POST("/prompt-versions/:versionId/activate", s.activatePromptVersionHandler)

	// Real-time event stream.
	v1.GET("/projects/:id/ws", s.wsHandler)
}

// SetSignalScope wires the process-level signal scope so the initialize and
// coding-start handlers arm it against their project for the duration of
// the run (and disarm it when the run returns), letting a
// single SIGINT/SIGTERM cancel whichever session is currently running
// (spec.md §9). Optional: a nil scope (the default) leaves signal-triggered
// cancellation out of the picture entirely.
func (s *Server) SetSignalScope(scope *orchestrator.SignalScope) {
	s.signal = scope
}

// Start serves on addr, blocking until Shutdown or a fatal listener error.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener serves on a pre-created listener, used by tests that
// need a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown stops accepting new connections, waits for in-flight requests to
// drain, and cancels every background operation this server started.
func (s *Server) Shutdown(ctx context.Context) error {
	s.bgCancel()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	health, err := s.store.Ping(reqCtx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "unhealthy",
			"database": health,
			"error":    err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"database": health,
	})
}
