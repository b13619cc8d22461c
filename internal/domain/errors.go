package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDuplicateDocument   = errors.New("document with this content hash already exists")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnprocessableFile   = errors.New("file cannot be processed")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrAnalysisFailed      = errors.New("document analysis failed")
	ErrComplianceRejected  = errors.New("document rejected by audit policies")
	ErrEmptyText           = errors.New("text is required")
)

// ComplianceError reports a submission rejected because its audit produced
// blocking (medium or high severity) violations.
type ComplianceError struct {
	Blocking int
	Result   *AuditResult
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("Document rejected: %d policy violations found. Document must be compliant to upload.", e.Blocking)
}

func (e *ComplianceError) Unwrap() error {
	return ErrComplianceRejected
}
