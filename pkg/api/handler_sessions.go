package api

import (
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// initializeHandler handles POST /api/v1/projects/:id/initialize. The
// initializer session runs synchronously inside the orchestrator call, but
// it can take minutes, so the HTTP call itself is fired in the background
// against the server's long-lived context and acknowledged immediately;
// progress is observed via session_started/initialization_complete events.
func (s *Server) initializeHandler(c *echo.Context) error {
	id := c.Param("id")
	var req initializeRequest
	_ = c.Bind(&req) // empty body is valid; req stays zero-valued

	project, err := s.store.GetProject(c.Request().Context(), id)
	if err != nil {
		return mapErr(err)
	}
	model := s.cfg.ResolveModel(models.SessionTypeInitializer, firstNonEmpty(req.Model, project.Settings.InitModel))

	go func() {
		if s.signal != nil {
			s.signal.Arm(id)
			defer s.signal.Disarm()
		}
		if _, err := s.orch.StartInitialization(s.bgCtx, id, model); err != nil {
			slog.Error("initialization failed", "project_id", id, "error", err)
		}
	}()

	return c.JSON(http.StatusAccepted, actionResponse{ID: id, Message: "initialization started"})
}

// codingStartHandler handles POST /api/v1/projects/:id/coding-start.
func (s *Server) codingStartHandler(c *echo.Context) error {
	id := c.Param("id")
	var req codingStartRequest
	_ = c.Bind(&req)

	project, err := s.store.GetProject(c.Request().Context(), id)
	if err != nil {
		return mapErr(err)
	}
	model := s.cfg.ResolveModel(models.SessionTypeCoding, firstNonEmpty(req.Model, project.Settings.CodingModel))

	override := req.MaxIterations
	if override == nil {
		override = project.Settings.MaxIterations
	}
	maxIterations := resolveMaxIterations(override, s.cfg.Project.MaxIterations)

	go func() {
		if s.signal != nil {
			s.signal.Arm(id)
			defer s.signal.Disarm()
		}
		if _, err := s.orch.StartCodingSessions(s.bgCtx, id, model, maxIterations); err != nil {
			slog.Error("coding loop failed", "project_id", id, "error", err)
		}
	}()

	return c.JSON(http.StatusAccepted, actionResponse{ID: id, Message: "coding sessions started"})
}

// stopSessionHandler handles POST /api/v1/projects/:id/stop-session: the
// immediate stop level (spec.md §4.5).
func (s *Server) stopSessionHandler(c *echo.Context) error {
	id := c.Param("id")
	if err := s.orch.StopSession(id); err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, actionResponse{ID: id, Message: "stop requested"})
}

// setGracefulStopHandler handles POST /api/v1/projects/:id/graceful-stop:
// the running session finishes normally, then the auto-continue loop exits.
func (s *Server) setGracefulStopHandler(c *echo.Context) error {
	id := c.Param("id")
	s.orch.SetStopAfterCurrent(id)
	return c.JSON(http.StatusOK, actionResponse{ID: id, Message: "graceful stop armed"})
}

// clearGracefulStopHandler handles DELETE /api/v1/projects/:id/graceful-stop.
func (s *Server) clearGracefulStopHandler(c *echo.Context) error {
	id := c.Param("id")
	s.orch.ClearStopAfterCurrent(id)
	return c.JSON(http.StatusOK, actionResponse{ID: id, Message: "graceful stop cleared"})
}

// listSessionsHandler handles GET /api/v1/projects/:id/sessions.
func (s *Server) listSessionsHandler(c *echo.Context) error {
	sessions, err := s.store.ListSessions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, sessions)
}

// getSessionHandler handles GET /api/v1/sessions/:sessionId.
func (s *Server) getSessionHandler(c *echo.Context) error {
	session, err := s.store.GetSession(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, session)
}

// resolveMaxIterations mirrors pkg/orchestrator's unexported
// effectiveMaxIterations: nil or a pointer-to-zero override both mean
// "fall back to the global default" (Open Question Decision #3).
func resolveMaxIterations(override *int, globalDefault int) int {
	if override == nil || *override == 0 {
		return globalDefault
	}
	return *override
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
