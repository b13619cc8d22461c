package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"billaudit/internal/analyzer"
	"billaudit/internal/domain"
	"billaudit/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var compliance *domain.ComplianceError
	var rateLimit *analyzer.RateLimitError

	switch {
	case errors.As(err, &compliance):
		return http.StatusBadRequest, "COMPLIANCE_REJECTED", compliance.Error()
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests, "RATE_LIMITED",
			fmt.Sprintf("document analysis is rate limited; retry after %s", rateLimit.RetryAfter)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type"
	case errors.Is(err, domain.ErrUnprocessableFile):
		return http.StatusBadRequest, "UNPROCESSABLE_FILE", "file cannot be processed; upload an image or a PDF with text"
	case errors.Is(err, domain.ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE", "file is empty"
	case errors.Is(err, domain.ErrEmptyText):
		return http.StatusBadRequest, "EMPTY_TEXT", "text is required"
	case errors.Is(err, domain.ErrDuplicateDocument):
		return http.StatusConflict, "DUPLICATE_DOCUMENT", "document with this content already exists"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrAnalysisFailed):
		return http.StatusBadGateway, "ANALYSIS_FAILED", "document analysis failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Compliance rejections carry the audit result as data.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("[%s] internal error: %v", c.GetString(middleware.ContextKeyRequestID), err)
	}

	var compliance *domain.ComplianceError
	if errors.As(err, &compliance) {
		c.JSON(status, APIResponse{
			Success: false,
			Data:    compliance.Result,
			Error:   &APIError{Code: code, Message: msg},
		})
		return
	}

	var rateLimit *analyzer.RateLimitError
	if errors.As(err, &rateLimit) {
		c.Header("Retry-After", strconv.Itoa(int(rateLimit.RetryAfter.Seconds())))
	}
	RespondError(c, status, code, msg)
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
