package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/dynamous-community/YokeFlow/pkg/analyzer"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// triggerAnalysisHandler handles POST /api/v1/analyses: runs the
// prompt-improvement analyzer synchronously and returns the completed (or
// failed) Analysis record, matching the teacher's pattern of returning the
// created resource directly from a POST that does its own bounded work.
func (s *Server) triggerAnalysisHandler(c *echo.Context) error {
	var req triggerAnalysisRequest
	_ = c.Bind(&req)

	elig := analyzer.DefaultEligibility()
	if s.cfg.Analyzer.MinSessions > 0 {
		elig.MinSessions = s.cfg.Analyzer.MinSessions
	}
	if s.cfg.Analyzer.WindowDays > 0 {
		elig.WindowDays = s.cfg.Analyzer.WindowDays
	}
	if req.MinSessions > 0 {
		elig.MinSessions = req.MinSessions
	}
	if req.WindowDays > 0 {
		elig.WindowDays = req.WindowDays
	}
	if req.SandboxKind != "" {
		elig.SandboxKind = models.SandboxKind(req.SandboxKind)
	}
	trigger := firstNonEmpty(req.TriggerSource, "manual")

	result, err := s.an.Run(c.Request().Context(), trigger, elig)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusCreated, result)
}

// listAnalysesHandler handles GET /api/v1/analyses.
func (s *Server) listAnalysesHandler(c *echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	analyses, err := s.store.ListAnalyses(c.Request().Context(), limit)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, analyses)
}

// getAnalysisHandler handles GET /api/v1/analyses/:analysisId.
func (s *Server) getAnalysisHandler(c *echo.Context) error {
	analysis, err := s.store.GetAnalysis(c.Request().Context(), c.Param("analysisId"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, analysis)
}

// deleteAnalysisHandler handles DELETE /api/v1/analyses/:analysisId. The
// store has no analysis-delete path of its own (spec.md §3 only names
// create/list/complete/fail for Analysis); deleting is treated as marking
// it failed with a diagnostic reason, which is the only terminal,
// idempotent transition the store exposes.
func (s *Server) deleteAnalysisHandler(c *echo.Context) error {
	id := c.Param("analysisId")
	if err := s.store.FailAnalysis(c.Request().Context(), id, "deleted by operator request"); err != nil {
		return mapErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// analysisMetricsHandler handles GET /api/v1/analyses/:analysisId/metrics:
// the subset of the Analysis record that summarizes its yield.
func (s *Server) analysisMetricsHandler(c *echo.Context) error {
	analysis, err := s.store.GetAnalysis(c.Request().Context(), c.Param("analysisId"))
	if err != nil {
		return mapErr(err)
	}
	proposals, err := s.store.ListProposalsByAnalysis(c.Request().Context(), analysis.ID)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions_analyzed":        analysis.SessionsAnalyzed,
		"estimated_quality_impact": analysis.EstimatedQualityImpact,
		"proposal_count":           len(proposals),
		"status":                   analysis.Status,
	})
}

// listProposalsHandler handles GET /api/v1/analyses/:analysisId/proposals.
func (s *Server) listProposalsHandler(c *echo.Context) error {
	proposals, err := s.store.ListProposalsByAnalysis(c.Request().Context(), c.Param("analysisId"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, proposals)
}

// setProposalStatusHandler handles PATCH /api/v1/proposals/:proposalId/status.
func (s *Server) setProposalStatusHandler(c *echo.Context) error {
	var req setProposalStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	switch req.Status {
	case models.ProposalStatusProposed, models.ProposalStatusAccepted, models.ProposalStatusRejected, models.ProposalStatusImplemented:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid proposal status")
	}

	id := c.Param("proposalId")
	if err := s.store.SetProposalStatus(c.Request().Context(), id, req.Status); err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, actionResponse{ID: id, Message: "proposal status updated"})
}

// applyProposalHandler handles POST /api/v1/proposals/:proposalId/apply.
func (s *Server) applyProposalHandler(c *echo.Context) error {
	var req applyProposalRequest
	_ = c.Bind(&req)

	version, err := s.an.ApplyProposal(c.Request().Context(), c.Param("proposalId"), firstNonEmpty(req.AppliedBy, "operator"))
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, version)
}

// listPromptVersionsHandler handles GET /api/v1/prompt-versions.
func (s *Server) listPromptVersionsHandler(c *echo.Context) error {
	fileName := c.QueryParam("file_name")
	if fileName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file_name query parameter is required")
	}
	versions, err := s.store.ListPromptVersions(c.Request().Context(), fileName)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, versions)
}

// activatePromptVersionHandler handles
// POST /api/v1/prompt-versions/:versionId/activate.
func (s *Server) activatePromptVersionHandler(c *echo.Context) error {
	id := c.Param("versionId")
	if err := s.store.ActivatePromptVersion(c.Request().Context(), id); err != nil {
		return mapErr(err)
	}
	return c.JSON(http.StatusOK, actionResponse{ID: id, Message: "prompt version activated"})
}
