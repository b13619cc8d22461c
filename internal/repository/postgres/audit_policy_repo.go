package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billaudit/internal/domain"
	"billaudit/internal/port"
)

type auditPolicyRepo struct {
	db *sqlx.DB
}

// NewAuditPolicyRepo creates a new PostgreSQL-backed AuditPolicyRepository.
func NewAuditPolicyRepo(db *sqlx.DB) port.AuditPolicyRepository {
	return &auditPolicyRepo{db: db}
}

func (r *auditPolicyRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM audit_policies"); err != nil {
		return 0, fmt.Errorf("auditPolicyRepo.Count: %w", err)
	}
	return n, nil
}

// CreateBatch inserts all policies in one transaction. Missing IDs are generated.
func (r *auditPolicyRepo) CreateBatch(ctx context.Context, policies []domain.AuditPolicy) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("auditPolicyRepo.CreateBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	query := `INSERT INTO audit_policies (
		id, rule_name, rule_type, field_name, condition,
		expected_value, severity, is_active, position, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for i := range policies {
		p := &policies[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.Severity == "" {
			p.Severity = domain.SeverityMedium
		}
		p.CreatedAt = now

		if _, err := tx.ExecContext(ctx, query,
			p.ID, p.RuleName, p.RuleType, p.FieldName, p.Condition,
			p.ExpectedValue, p.Severity, p.IsActive, p.Position, p.CreatedAt); err != nil {
			return fmt.Errorf("auditPolicyRepo.CreateBatch %q: %w", p.RuleName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("auditPolicyRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *auditPolicyRepo) ListActive(ctx context.Context) ([]domain.AuditPolicy, error) {
	var policies []domain.AuditPolicy
	err := r.db.SelectContext(ctx, &policies,
		"SELECT * FROM audit_policies WHERE is_active = TRUE ORDER BY position, created_at")
	if err != nil {
		return nil, fmt.Errorf("auditPolicyRepo.ListActive: %w", err)
	}
	return policies, nil
}

func (r *auditPolicyRepo) List(ctx context.Context) ([]domain.AuditPolicy, error) {
	var policies []domain.AuditPolicy
	err := r.db.SelectContext(ctx, &policies,
		"SELECT * FROM audit_policies ORDER BY position, created_at")
	if err != nil {
		return nil, fmt.Errorf("auditPolicyRepo.List: %w", err)
	}
	return policies, nil
}
