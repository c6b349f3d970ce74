package api

import (
	"context"

	"github.com/coder/websocket"
	echo "github.com/labstack/echo/v5"

	"github.com/dynamous-community/YokeFlow/pkg/broadcast"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// wsHandler upgrades GET /api/v1/projects/:id/ws to a WebSocket and streams
// that project's broadcast topic until the client disconnects.
func (s *Server) wsHandler(c *echo.Context) error {
	projectID := c.Param("id")
	ctx := c.Request().Context()

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return mapErr(err)
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		// Origin validation deferred to a future security pass, consistent
		// with the rest of this request surface being unauthenticated.
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}

	snapshot := s.projectSnapshot(ctx, project)
	broadcast.ServeWebSocket(ctx, s.bus, conn, projectID, snapshot)
	return nil
}

// projectSnapshot builds the initial_state payload sent to a new subscriber:
// the project record plus its active session, if any.
func (s *Server) projectSnapshot(ctx context.Context, project *models.Project) map[string]interface{} {
	snapshot := map[string]interface{}{"project": project}
	if active, err := s.store.GetActiveSession(ctx, project.ID); err == nil {
		snapshot["active_session"] = active
	}
	return snapshot
}
