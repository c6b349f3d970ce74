package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/broadcast"
	"github.com/dynamous-community/YokeFlow/pkg/models"
	"github.com/dynamous-community/YokeFlow/pkg/store"
)

// listProjectsHandler handles GET /api/v1/projects.
func (s *Server) listProjectsHandler(c *echo.Context) error {
	f := models.ProjectFilters{
		NameContains: c.QueryParam("name"),
		Limit:        50,
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}
	if v := c.QueryParam("completed"); v != "" {
		b := v == "true"
		f.Completed = &b
	}

	projects, err := s.store.ListProjects(c.Request().Context(), f)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, projects)
}

// createProjectHandler handles POST /api/v1/projects.
func (s *Server) createProjectHandler(c *echo.Context) error {
	var req models.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	project, err := s.store.CreateProject(c.Request().Context(), req)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusCreated, project)
}

// getProjectHandler handles GET /api/v1/projects/:id.
func (s *Server) getProjectHandler(c *echo.Context) error {
	project, err := s.store.GetProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, project)
}

// deleteProjectHandler handles DELETE /api/v1/projects/:id.
func (s *Server) deleteProjectHandler(c *echo.Context) error {
	id := c.Param("id")
	if err := s.store.DeleteProject(c.Request().Context(), id); err != nil {
		return mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// renameProjectHandler handles PATCH /api/v1/projects/:id/rename.
func (s *Server) renameProjectHandler(c *echo.Context) error {
	var req renameProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := store.ValidateProjectName(req.Name); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.Param("id")
	if err := s.store.RenameProject(c.Request().Context(), id, req.Name); err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, actionResponse{ID: id, Message: "project renamed"})
}

// updateSettingsHandler handles PATCH /api/v1/projects/:id/settings.
func (s *Server) updateSettingsHandler(c *echo.Context) error {
	var settings models.ProjectSettings
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	id := c.Param("id")
	if err := s.store.UpdateProjectSettings(c.Request().Context(), id, settings); err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, actionResponse{ID: id, Message: "settings updated"})
}

// resetProjectHandler handles POST /api/v1/projects/:id/reset. It clears the
// generated work breakdown and completion state so the project can be
// re-initialized, and publishes project_reset.
func (s *Server) resetProjectHandler(c *echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if _, err := s.store.GetProject(ctx, id); err != nil {
		return mapErr(err)
	}
	if s.orch != nil {
		// A running session can't survive its epics disappearing mid-flight.
		if err := s.orch.StopSession(id); err != nil && !apierrors.Is(err, apierrors.KindStateViolation) {
			return mapErr(err)
		}
	}
	if err := s.store.DeleteEpicsByProject(ctx, id); err != nil {
		return mapErr(err)
	}
	if err := s.store.ResetProject(ctx, id); err != nil {
		return mapErr(err)
	}

	s.bus.Publish(id, broadcast.NewEvent(broadcast.TypeProjectReset, nil))
	return c.JSON(http.StatusOK, actionResponse{ID: id, Message: "project reset"})
}
