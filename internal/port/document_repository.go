package port

import (
	"context"

	"github.com/google/uuid"

	"billaudit/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
// Documents are unique by content hash.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	GetByHash(ctx context.Context, fileHash string) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	// UpdateAudit replaces the stored format verdict and audit result.
	UpdateAudit(ctx context.Context, doc *domain.Document) error
}

// AuditPolicyRepository defines the contract for audit policy persistence.
type AuditPolicyRepository interface {
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, policies []domain.AuditPolicy) error
	// ListActive returns a point-in-time snapshot of active policies in stored order.
	ListActive(ctx context.Context) ([]domain.AuditPolicy, error)
	List(ctx context.Context) ([]domain.AuditPolicy, error)
}

// StatsRepository defines the contract for aggregate document statistics.
type StatsRepository interface {
	GetStats(ctx context.Context) (*domain.Stats, error)
}
