package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billaudit/internal/domain"
	"billaudit/internal/port"
)

const documentsFileHashKey = "documents_file_hash_key"

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := `INSERT INTO documents (
		id, file_hash, file_type, original_filename,
		storage_key, storage_url, analysis_text,
		format_valid, format_reason, audit_result,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7,
		$8, $9, $10,
		$11, $12
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.FileHash, doc.FileType, doc.OriginalFilename,
		doc.StorageKey, doc.StorageURL, doc.AnalysisText,
		doc.FormatValid, doc.FormatReason, doc.AuditResult,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, documentsFileHashKey) {
			return domain.ErrDuplicateDocument
		}
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) GetByHash(ctx context.Context, fileHash string) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE file_hash = $1", fileHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByHash: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents"); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List count: %w", err)
	}

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.List: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) UpdateAudit(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET format_valid = $1, format_reason = $2, audit_result = $3, updated_at = $4
		 WHERE id = $5`,
		doc.FormatValid, doc.FormatReason, doc.AuditResult, doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateAudit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
