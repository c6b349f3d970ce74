package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/dynamous-community/YokeFlow/pkg/models"
	"github.com/dynamous-community/YokeFlow/pkg/quality"
)

// qualitySummaryHandler handles GET /api/v1/projects/:id/quality/summary.
func (s *Server) qualitySummaryHandler(c *echo.Context) error {
	summary, err := quality.Summarize(c.Request().Context(), s.store, c.Param("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// sessionQualityHandler handles GET /api/v1/sessions/:sessionId/quality.
func (s *Server) sessionQualityHandler(c *echo.Context) error {
	sessionID := c.Param("sessionId")
	ctx := c.Request().Context()

	quick, quickErr := s.store.GetQualityCheck(ctx, sessionID, models.QualityCheckKindQuick)
	deep, deepErr := s.store.GetQualityCheck(ctx, sessionID, models.QualityCheckKindDeep)
	if quickErr != nil && deepErr != nil {
		return mapErr(quickErr)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"quick": quick,
		"deep":  deep,
	})
}

// browserComplianceHandler handles
// GET /api/v1/projects/:id/quality/browser-verification.
func (s *Server) browserComplianceHandler(c *echo.Context) error {
	compliance, err := quality.BrowserCompliance(c.Request().Context(), s.store, c.Param("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, compliance)
}

// qualityIssuesHandler handles GET /api/v1/projects/:id/quality/issues.
func (s *Server) qualityIssuesHandler(c *echo.Context) error {
	issues, err := quality.Issues(c.Request().Context(), s.store, c.Param("id"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, issues)
}
