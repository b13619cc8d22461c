package handler

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billaudit/internal/domain"
	"billaudit/internal/report"
	"billaudit/internal/service"
)

// DocumentHandler handles document upload and retrieval endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

type uploadResponse struct {
	*domain.Document
	IsDuplicate bool `json:"is_duplicate"`
}

// Upload handles POST /api/v1/documents/upload
// New documents return 201; a re-upload of stored content returns 200 with
// the existing record and is_duplicate set.
// @Summary Upload a document
// @Description Upload an image or text-bearing PDF. The file is stored and analyzed; images are audited against the active policies and rejected when any medium or high severity violation is found.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice image or PDF"
// @Success 201 {object} APIResponse{data=uploadResponse} "Document stored"
// @Success 200 {object} APIResponse{data=uploadResponse} "Content already stored, existing document returned"
// @Failure 400 {object} APIResponse "Unsupported, unprocessable or empty file"
// @Failure 400 {object} APIResponse{data=domain.AuditResult} "Rejected by audit policies"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 429 {object} APIResponse "Analysis provider rate limited"
// @Failure 502 {object} APIResponse "Analysis failed"
// @Security BearerAuth
// @Router /documents/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.documentService.Upload(c.Request.Context(), service.UploadInput{
		Filename: header.Filename,
		Size:     header.Size,
		File:     file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	resp := uploadResponse{Document: result.Document, IsDuplicate: result.IsDuplicate}
	if result.IsDuplicate {
		RespondOK(c, resp)
		return
	}
	RespondCreated(c, resp)
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get a document
// @Description Get a stored document with its analysis text and audit result
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Document} "Document details"
// @Failure 400 {object} APIResponse "Invalid document ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Description List stored documents, newest first
// @Tags documents
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Pagination limit" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Document,meta=PagMeta} "Paginated documents"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	docs, total, err := h.documentService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Download handles GET /api/v1/documents/:id/download
// @Summary Get a download URL
// @Description Get a presigned URL for the stored original file
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} APIResponse{data=map[string]string} "Presigned URL"
// @Failure 400 {object} APIResponse "Invalid document ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	url, err := h.documentService.DownloadURL(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Export handles GET /api/v1/documents/export?format=xlsx|csv
// @Summary Export documents
// @Description Download every stored document with its extracted fields and audit outcome as a spreadsheet
// @Tags documents
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param format query string false "Export format" Enums(xlsx, csv) default(xlsx)
// @Success 200 {file} file "Spreadsheet attachment"
// @Failure 400 {object} APIResponse "Invalid format"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /documents/export [get]
func (h *DocumentHandler) Export(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv")
		return
	}

	// Buffered so a failure part way through still gets an error envelope.
	var buf bytes.Buffer
	if err := h.documentService.Export(c.Request.Context(), &buf, format); err != nil {
		log.Printf("documentHandler.Export: %v", err)
		HandleError(c, err)
		return
	}

	filename := report.BuildFilename("document_audits", format, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func parseDocumentID(c *gin.Context) (uuid.UUID, bool) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return uuid.Nil, false
	}
	return docID, true
}
