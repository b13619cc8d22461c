package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"billaudit/internal/domain"
	"billaudit/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

// Advisory documents were accepted with only low or warning violations.
const docStatsQuery = `SELECT
	COUNT(*) AS total_documents,
	COUNT(CASE WHEN file_type = 'image' THEN 1 END) AS image_documents,
	COUNT(CASE WHEN file_type = 'text' THEN 1 END) AS text_documents,
	COUNT(audit_result) AS audited_documents,
	COUNT(CASE WHEN (audit_result->>'is_compliant')::boolean THEN 1 END) AS compliant_documents,
	COUNT(CASE WHEN NOT (audit_result->>'is_compliant')::boolean THEN 1 END) AS advisory_documents,
	COUNT(CASE WHEN format_valid = FALSE THEN 1 END) AS format_rejected,
	COALESCE(ROUND(AVG((audit_result->>'compliance_score')::numeric), 2), 0)::float8 AS average_compliance_score
FROM documents`

func (r *statsRepo) GetStats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, docStatsQuery); err != nil {
		return nil, fmt.Errorf("statsRepo.GetStats docs: %w", err)
	}

	var activePolicies int
	if err := r.db.GetContext(ctx, &activePolicies,
		"SELECT COUNT(*) FROM audit_policies WHERE is_active"); err != nil {
		return nil, fmt.Errorf("statsRepo.GetStats policies: %w", err)
	}
	stats.ActivePolicies = activePolicies

	return &stats, nil
}
