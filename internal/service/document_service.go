package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"billaudit/internal/audit"
	"billaudit/internal/config"
	"billaudit/internal/domain"
	"billaudit/internal/filetype"
	"billaudit/internal/port"
	"billaudit/internal/report"
)

const exportPageSize = 500

// UploadInput is the DTO for document upload requests.
type UploadInput struct {
	Filename string
	// Size is the size declared by the client; the body is still capped at the limit.
	Size int64
	File io.Reader
}

// UploadResult is a stored document, new or previously uploaded.
type UploadResult struct {
	Document    *domain.Document
	IsDuplicate bool
}

// DocumentAuditor audits a document's analysis text.
type DocumentAuditor interface {
	Audit(ctx context.Context, rawText string) (*audit.Report, error)
}

// DocumentService defines the document ingestion contract.
type DocumentService interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, offset, limit int) ([]domain.Document, int, error)
	DownloadURL(ctx context.Context, docID uuid.UUID) (string, error)
	Export(ctx context.Context, w io.Writer, format report.Format) error
}

type documentService struct {
	docRepo  port.DocumentRepository
	storage  port.ObjectStorage
	analyzer port.DocumentAnalyzer
	auditor  DocumentAuditor
	upload   config.UploadConfig
	persist  config.PersistConfig
	s3       config.S3Config
	allowed  map[string]bool
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	storage port.ObjectStorage,
	analyzer port.DocumentAnalyzer,
	auditor DocumentAuditor,
	cfg *config.Config,
) DocumentService {
	allowed := make(map[string]bool, len(cfg.Upload.AllowedExtensions))
	for _, ext := range cfg.Upload.AllowedExtensions {
		if _, known := domain.AllowedContentTypes[ext]; known {
			allowed[ext] = true
		}
	}
	return &documentService{
		docRepo:  docRepo,
		storage:  storage,
		analyzer: analyzer,
		auditor:  auditor,
		upload:   cfg.Upload,
		persist:  cfg.Persist,
		s3:       cfg.S3,
		allowed:  allowed,
	}
}

// Upload validates, deduplicates, stores, analyzes and audits a document.
// Images are audited and rejected with a *domain.ComplianceError when any
// medium or high violation is found; text documents are stored unaudited.
func (s *documentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	maxBytes := s.upload.MaxFileSize()
	if input.Size > maxBytes {
		uploadsTotal.WithLabelValues(outcomeTooLarge).Inc()
		return nil, domain.ErrFileTooLarge
	}

	ext := filetype.Extension(input.Filename)
	if !s.allowed[ext] {
		uploadsTotal.WithLabelValues(outcomeUnsupported).Inc()
		return nil, domain.ErrUnsupportedFileType
	}

	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		uploadsTotal.WithLabelValues(outcomeTooLarge).Inc()
		return nil, domain.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}

	fileHash := s.hash(data)
	if existing := s.findExisting(ctx, fileHash); existing != nil {
		log.Printf("documentService.Upload: %s duplicates document %s", input.Filename, existing.ID)
		uploadsTotal.WithLabelValues(outcomeDuplicate).Inc()
		return &UploadResult{Document: existing, IsDuplicate: true}, nil
	}

	detected := filetype.Detect(input.Filename, data)
	if !detected.Processable {
		uploadsTotal.WithLabelValues(outcomeUnprocessable).Inc()
		return nil, domain.ErrUnprocessableFile
	}

	doc := &domain.Document{
		ID:               uuid.New(),
		FileHash:         fileHash,
		FileType:         detected.FileType,
		OriginalFilename: input.Filename,
	}
	doc.StorageKey = s.storageKey(doc.ID, input.Filename, ext)

	log.Printf("documentService.Upload: processing %s as %s (%d bytes)", input.Filename, detected.FileType, len(data))

	stored, analysis, err := s.storeAndAnalyze(ctx, doc, detected, data)
	if err != nil {
		uploadsTotal.WithLabelValues(outcomeFailed).Inc()
		return nil, err
	}
	doc.StorageURL = stored.URL
	doc.AnalysisText = analysis.Text

	if doc.FileType == domain.FileTypeImage {
		rep, err := s.auditor.Audit(ctx, analysis.Text)
		if err != nil {
			s.discard(doc.StorageKey)
			uploadsTotal.WithLabelValues(outcomeFailed).Inc()
			return nil, fmt.Errorf("auditing document: %w", err)
		}
		doc.FormatValid = &rep.Format.Accepted
		doc.FormatReason = &rep.Format.Reason
		doc.AuditResult = &rep.Result

		if decision := audit.Decide(doc.AuditResult); !decision.Accept {
			log.Printf("documentService.Upload: rejecting %s with %d blocking violations", input.Filename, decision.Blocking)
			s.discard(doc.StorageKey)
			uploadsTotal.WithLabelValues(outcomeRejected).Inc()
			return nil, decision.Err(doc.AuditResult)
		}
	}

	if err := s.persistDocument(ctx, doc); err != nil {
		if errors.Is(err, domain.ErrDuplicateDocument) {
			s.discard(doc.StorageKey)
			if existing := s.findExisting(ctx, fileHash); existing != nil {
				uploadsTotal.WithLabelValues(outcomeDuplicate).Inc()
				return &UploadResult{Document: existing, IsDuplicate: true}, nil
			}
		}
		uploadsTotal.WithLabelValues(outcomeFailed).Inc()
		return nil, err
	}

	uploadsTotal.WithLabelValues(outcomeStored).Inc()
	return &UploadResult{Document: doc}, nil
}

// storeAndAnalyze uploads the file and obtains its analysis text concurrently.
// The stored object is removed again if analysis fails.
func (s *documentService) storeAndAnalyze(ctx context.Context, doc *domain.Document, detected filetype.Detection, data []byte) (*port.StoredObject, *port.AnalyzeOutput, error) {
	var (
		stored   *port.StoredObject
		analysis *port.AnalyzeOutput
		storeErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stored, storeErr = s.storage.Put(gctx, port.PutObjectInput{
			Key:         doc.StorageKey,
			Body:        bytes.NewReader(data),
			ContentType: detected.ContentType,
			Size:        int64(len(data)),
		})
		if storeErr != nil {
			log.Printf("documentService.Upload: storage upload failed for %s: %v", doc.ID, storeErr)
			return fmt.Errorf("%w: %w", domain.ErrUploadFailed, storeErr)
		}
		return nil
	})
	g.Go(func() error {
		out, err := s.analyzer.Analyze(gctx, port.AnalyzeInput{
			FileBytes:     data,
			FileName:      doc.OriginalFilename,
			ContentType:   detected.ContentType,
			FileType:      detected.FileType,
			ExtractedText: detected.Text,
		})
		if err != nil {
			log.Printf("documentService.Upload: analysis failed for %s: %v", doc.ID, err)
			return fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
		}
		analysis = out
		return nil
	})

	if err := g.Wait(); err != nil {
		if storeErr == nil && stored != nil {
			s.discard(doc.StorageKey)
		}
		return nil, nil, err
	}
	return stored, analysis, nil
}

// persistDocument writes the document, retrying transient failures.
// A duplicate hash is returned at once.
func (s *documentService) persistDocument(ctx context.Context, doc *domain.Document) error {
	var err error
	for attempt := 1; attempt <= s.persist.MaxRetries; attempt++ {
		err = s.docRepo.Create(ctx, doc)
		if err == nil || errors.Is(err, domain.ErrDuplicateDocument) {
			return err
		}
		log.Printf("documentService.persistDocument: attempt %d/%d failed for %s: %v",
			attempt, s.persist.MaxRetries, doc.ID, err)
		if attempt == s.persist.MaxRetries {
			break
		}
		if werr := wait(ctx, s.persist.RetryDelay); werr != nil {
			return werr
		}
	}
	return fmt.Errorf("persisting document after %d attempts: %w", s.persist.MaxRetries, err)
}

// findExisting returns the stored document with this hash. Lookup failures
// are logged and treated as "not found" so an upload is never blocked by them.
func (s *documentService) findExisting(ctx context.Context, fileHash string) *domain.Document {
	doc, err := s.docRepo.GetByHash(ctx, fileHash)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			log.Printf("documentService.findExisting: hash lookup failed: %v", err)
		}
		return nil
	}
	return doc
}

// discard deletes a stored object on a detached context; failures are only logged.
func (s *documentService) discard(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, key); err != nil {
		log.Printf("documentService.discard: failed to delete %s: %v", key, err)
	}
}

// storageKey is unique per document so a losing duplicate can delete its own object.
func (s *documentService) storageKey(docID uuid.UUID, filename, ext string) string {
	base := report.SanitizeFilename(strings.TrimSuffix(filename, path.Ext(filename)))
	if base == "" {
		base = "document"
	}
	return path.Join(s.s3.KeyPrefix, docID.String(), base+"."+ext)
}

func (s *documentService) hash(data []byte) string {
	mac := hmac.New(sha256.New, []byte(s.upload.HashSecret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *documentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *documentService) List(ctx context.Context, offset, limit int) ([]domain.Document, int, error) {
	return s.docRepo.List(ctx, offset, limit)
}

func (s *documentService) DownloadURL(ctx context.Context, docID uuid.UUID) (string, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}
	return s.storage.PresignGet(ctx, doc.StorageKey, s.s3.PresignExpiry)
}

// Export writes every stored document, newest first, in the requested format.
func (s *documentService) Export(ctx context.Context, w io.Writer, format report.Format) error {
	rw, err := report.NewWriter(w, format)
	if err != nil {
		return fmt.Errorf("starting export: %w", err)
	}

	for offset := 0; ; offset += exportPageSize {
		docs, total, err := s.docRepo.List(ctx, offset, exportPageSize)
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}
		if err := rw.WriteDocuments(docs); err != nil {
			return fmt.Errorf("writing documents: %w", err)
		}
		if len(docs) < exportPageSize || offset+len(docs) >= total {
			break
		}
	}
	return rw.Close()
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
