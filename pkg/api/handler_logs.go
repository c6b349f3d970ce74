package api

import (
	"fmt"
	"net/http"
	"os"

	echo "github.com/labstack/echo/v5"

	"github.com/dynamous-community/YokeFlow/pkg/eventlog"
)

// resolveSessionLogs locates the (txt, jsonl) pair for a session's log
// files on disk via its project's workspace directory and session number.
func (s *Server) resolveSessionLogs(c *echo.Context, sessionID string) (txt, jsonl string, err error) {
	ctx := c.Request().Context()
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	project, err := s.store.GetProject(ctx, session.ProjectID)
	if err != nil {
		return "", "", err
	}
	prefix := fmt.Sprintf("session_%04d", session.Number)
	return eventlog.ResolveLogFiles(project.WorkspacePath, prefix)
}

// listLogsHandler handles GET /api/v1/sessions/:sessionId/logs: reports the
// file paths available for a session's dual-stream log.
func (s *Server) listLogsHandler(c *echo.Context) error {
	txt, jsonl, err := s.resolveSessionLogs(c, c.Param("sessionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"human": txt, "events": jsonl})
}

// humanLogHandler handles GET /api/v1/sessions/:sessionId/logs/human: the
// narrative text stream.
func (s *Server) humanLogHandler(c *echo.Context) error {
	txt, _, err := s.resolveSessionLogs(c, c.Param("sessionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	data, err := os.ReadFile(txt)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "human log not found")
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", data)
}

// eventsLogHandler handles GET /api/v1/sessions/:sessionId/logs/events: the
// parsed structured (jsonl) stream.
func (s *Server) eventsLogHandler(c *echo.Context) error {
	_, jsonl, err := s.resolveSessionLogs(c, c.Param("sessionId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	events, err := eventlog.ReadEvents(jsonl)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "events log not found")
	}
	return c.JSON(http.StatusOK, events)
}
