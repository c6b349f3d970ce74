package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

const analysisSelect = `
	SELECT id, project_ids, sandbox_kind, status, trigger_source, window_start,
	       window_end, sessions_analyzed, identified_patterns,
	       estimated_quality_impact, failure_reason, created_at, completed_at
	FROM analyses`

func scanAnalysis(row pgx.Row) (*models.Analysis, error) {
	var a models.Analysis
	var projectIDs, patterns []byte
	err := row.Scan(&a.ID, &projectIDs, &a.SandboxKind, &a.Status, &a.TriggerSource,
		&a.WindowStart, &a.WindowEnd, &a.SessionsAnalyzed, &patterns,
		&a.EstimatedQualityImpact, &a.FailureReason, &a.CreatedAt, &a.CompletedAt)
	if err != nil {
		return nil, classify(err, "analysis not found")
	}
	if len(projectIDs) > 0 {
		if err := json.Unmarshal(projectIDs, &a.ProjectIDs); err != nil {
			return nil, apierrors.Corrupt("decoding analysis project_ids", err)
		}
	}
	if len(patterns) > 0 {
		if err := json.Unmarshal(patterns, &a.IdentifiedPatterns); err != nil {
			return nil, apierrors.Corrupt("decoding identified patterns", err)
		}
	}
	return &a, nil
}

// CreateAnalysis inserts a new, running analysis row.
func (s *Store) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	projectIDs, err := json.Marshal(a.ProjectIDs)
	if err != nil {
		return fmt.Errorf("marshal project_ids: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO analyses (id, project_ids, sandbox_kind, status, trigger_source,
		                       window_start, window_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, projectIDs, a.SandboxKind, models.AnalysisStatusRunning, a.TriggerSource,
		a.WindowStart, a.WindowEnd)
	if err != nil {
		return classify(err, "")
	}
	return nil
}

// GetAnalysis fetches an analysis by ID.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	return scanAnalysis(s.pool.QueryRow(ctx, analysisSelect+` WHERE id = $1`, id))
}

// ListAnalyses returns analyses newest first.
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]*models.Analysis, error) {
	query := analysisSelect + ` ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	var out []*models.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CompleteAnalysis finalizes a running analysis with its results.
func (s *Store) CompleteAnalysis(ctx context.Context, id string, sessionsAnalyzed int, patterns map[string]interface{}, qualityImpact float64) error {
	data, err := json.Marshal(patterns)
	if err != nil {
		return fmt.Errorf("marshal identified patterns: %w", err)
	}
	now := time.Now()
	tag, err := s.pool.Exec(ctx, `
		UPDATE analyses
		SET status = $1, sessions_analyzed = $2, identified_patterns = $3,
		    estimated_quality_impact = $4, completed_at = $5
		WHERE id = $6
	`, models.AnalysisStatusCompleted, sessionsAnalyzed, data, qualityImpact, now, id)
	if err != nil {
		return fmt.Errorf("completing analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("analysis not found")
	}
	return nil
}

// FailAnalysis marks a running analysis as failed.
func (s *Store) FailAnalysis(ctx context.Context, id, reason string) error {
	now := time.Now()
	tag, err := s.pool.Exec(ctx, `
		UPDATE analyses SET status = $1, failure_reason = $2, completed_at = $3
		WHERE id = $4
	`, models.AnalysisStatusFailed, reason, now, id)
	if err != nil {
		return fmt.Errorf("failing analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("analysis not found")
	}
	return nil
}

// CreateProposal inserts a proposal emitted by an analysis.
func (s *Store) CreateProposal(ctx context.Context, p *models.Proposal) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	evidence, err := json.Marshal(p.Evidence)
	if err != nil {
		return fmt.Errorf("marshal evidence: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO proposals
			(id, analysis_id, target_file, section_name, change_kind, original_text,
			 proposed_text, rationale, evidence, confidence, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, p.ID, p.AnalysisID, p.TargetFile, p.SectionName, p.ChangeKind, p.OriginalText,
		p.ProposedText, p.Rationale, evidence, p.Confidence, models.ProposalStatusProposed)
	if err != nil {
		return classify(err, "")
	}
	return nil
}

const proposalSelect = `
	SELECT id, analysis_id, target_file, section_name, change_kind, original_text,
	       proposed_text, rationale, evidence, confidence, status,
	       applied_at, applied_by, applied_version
	FROM proposals`

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	var evidence []byte
	err := row.Scan(&p.ID, &p.AnalysisID, &p.TargetFile, &p.SectionName, &p.ChangeKind,
		&p.OriginalText, &p.ProposedText, &p.Rationale, &evidence, &p.Confidence,
		&p.Status, &p.AppliedAt, &p.AppliedBy, &p.AppliedVersion)
	if err != nil {
		return nil, classify(err, "proposal not found")
	}
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &p.Evidence); err != nil {
			return nil, apierrors.Corrupt("decoding proposal evidence", err)
		}
	}
	return &p, nil
}

// GetProposal fetches a proposal by ID.
func (s *Store) GetProposal(ctx context.Context, id string) (*models.Proposal, error) {
	return scanProposal(s.pool.QueryRow(ctx, proposalSelect+` WHERE id = $1`, id))
}

// ListProposalsByAnalysis returns every proposal from a single analysis run,
// ordered by confidence descending (spec.md §5 "list_prompt_proposals").
func (s *Store) ListProposalsByAnalysis(ctx context.Context, analysisID string) ([]*models.Proposal, error) {
	rows, err := s.pool.Query(ctx, proposalSelect+`
		WHERE analysis_id = $1 ORDER BY confidence DESC
	`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()
	return collectProposals(rows)
}

// ListProposals returns proposals across all analyses matching an optional
// status filter, ordered by confidence descending.
func (s *Store) ListProposals(ctx context.Context, status models.ProposalStatus) ([]*models.Proposal, error) {
	query := proposalSelect
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += ` WHERE status = $1`
	}
	query += ` ORDER BY confidence DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	defer rows.Close()
	return collectProposals(rows)
}

func collectProposals(rows pgx.Rows) ([]*models.Proposal, error) {
	var out []*models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetProposalStatus transitions a proposal between proposed/accepted/rejected.
func (s *Store) SetProposalStatus(ctx context.Context, id string, status models.ProposalStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE proposals SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating proposal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("proposal not found")
	}
	return nil
}

// MarkProposalApplied records that a proposal was implemented against a
// specific prompt version (spec.md "Open Question Decisions" — ApplyProposal).
func (s *Store) MarkProposalApplied(ctx context.Context, id, appliedBy, versionID string) error {
	now := time.Now()
	tag, err := s.pool.Exec(ctx, `
		UPDATE proposals
		SET status = $1, applied_at = $2, applied_by = $3, applied_version = $4
		WHERE id = $5 AND status = $6
	`, models.ProposalStatusImplemented, now, appliedBy, versionID, id, models.ProposalStatusAccepted)
	if err != nil {
		return fmt.Errorf("marking proposal applied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.StateViolation("proposal must be accepted before it can be applied")
	}
	return nil
}
