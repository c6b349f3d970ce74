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

const qualityCheckSelect = `
	SELECT id, session_id, kind, status, overall_rating, metrics,
	       critical_issues, warnings, review_text, recommendations
	FROM quality_checks`

func scanQualityCheck(row pgx.Row) (*models.QualityCheck, error) {
	var q models.QualityCheck
	var metrics, critical, warnings, recs []byte
	err := row.Scan(&q.ID, &q.SessionID, &q.Kind, &q.Status, &q.OverallRating,
		&metrics, &critical, &warnings, &q.ReviewText, &recs)
	if err != nil {
		return nil, classify(err, "quality check not found")
	}
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &q.Metrics); err != nil {
			return nil, apierrors.Corrupt("decoding quality metrics", err)
		}
	}
	if len(critical) > 0 {
		if err := json.Unmarshal(critical, &q.CriticalIssues); err != nil {
			return nil, apierrors.Corrupt("decoding critical issues", err)
		}
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &q.Warnings); err != nil {
			return nil, apierrors.Corrupt("decoding warnings", err)
		}
	}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &q.Recommendations); err != nil {
			return nil, apierrors.Corrupt("decoding recommendations", err)
		}
	}
	return &q, nil
}

// CreateQualityCheck inserts a quality check, failing with Conflict if this
// session already has one of the same kind (spec.md §4.6: at most one quick
// and one deep review per session).
func (s *Store) CreateQualityCheck(ctx context.Context, qc *models.QualityCheck) error {
	if qc.ID == "" {
		qc.ID = uuid.NewString()
	}
	metrics, err := json.Marshal(qc.Metrics)
	if err != nil {
		return fmt.Errorf("marshal quality metrics: %w", err)
	}
	critical, err := json.Marshal(qc.CriticalIssues)
	if err != nil {
		return fmt.Errorf("marshal critical issues: %w", err)
	}
	warnings, err := json.Marshal(qc.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	recs, err := json.Marshal(qc.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO quality_checks
			(id, session_id, kind, status, overall_rating, metrics,
			 critical_issues, warnings, review_text, recommendations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, qc.ID, qc.SessionID, qc.Kind, qc.Status, qc.OverallRating, metrics,
		critical, warnings, qc.ReviewText, recs)
	if err != nil {
		return classify(err, "")
	}
	return nil
}

// GetQualityCheck fetches the check of a given kind for a session, if any.
func (s *Store) GetQualityCheck(ctx context.Context, sessionID string, kind models.QualityCheckKind) (*models.QualityCheck, error) {
	return scanQualityCheck(s.pool.QueryRow(ctx, qualityCheckSelect+`
		WHERE session_id = $1 AND kind = $2
	`, sessionID, kind))
}

// ListQualityChecksBySession returns every check recorded for a session.
func (s *Store) ListQualityChecksBySession(ctx context.Context, sessionID string) ([]*models.QualityCheck, error) {
	rows, err := s.pool.Query(ctx, qualityCheckSelect+` WHERE session_id = $1 ORDER BY kind`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing quality checks: %w", err)
	}
	defer rows.Close()

	var out []*models.QualityCheck
	for rows.Next() {
		q, err := scanQualityCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListDeepReviewsForProjects returns every "deep" quality check recorded for
// sessions belonging to the given projects within [since, until), used by
// the Prompt-Improvement Analyzer to aggregate review findings (spec.md §5).
func (s *Store) ListDeepReviewsForProjects(ctx context.Context, projectIDs []string, since, until time.Time) ([]*models.QualityCheck, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT qc.id, qc.session_id, qc.kind, qc.status, qc.overall_rating, qc.metrics,
		       qc.critical_issues, qc.warnings, qc.review_text, qc.recommendations
		FROM quality_checks qc
		JOIN sessions se ON se.id = qc.session_id
		WHERE qc.kind = $1
		  AND se.project_id = ANY($2)
		  AND se.ended_at >= $3 AND se.ended_at < $4
		ORDER BY se.ended_at
	`, models.QualityCheckKindDeep, projectIDs, since, until)
	if err != nil {
		return nil, fmt.Errorf("listing deep reviews: %w", err)
	}
	defer rows.Close()

	var out []*models.QualityCheck
	for rows.Next() {
		q, err := scanQualityCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
