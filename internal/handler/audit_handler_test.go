package handler_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"billaudit/internal/audit"
	"billaudit/internal/domain"
	"billaudit/internal/handler"
	"billaudit/mocks"
)

func TestAuditHandler_ListPolicies(t *testing.T) {
	mockSvc := new(mocks.MockAuditService)
	h := handler.NewAuditHandler(mockSvc)
	mockSvc.On("ListPolicies", mock.Anything).Return(audit.DefaultPolicies(), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/audit-policies", http.NoBody)

	h.ListPolicies(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]interface{})
	assert.Len(t, data, 12)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "Invoice Number Required", first["rule_name"])
	assert.Equal(t, "required_field", first["rule_type"])
}

func TestAuditHandler_Preview(t *testing.T) {
	mockSvc := new(mocks.MockAuditService)
	h := handler.NewAuditHandler(mockSvc)

	text := "Invoice #INV-1 from Acme Corp, Total: $500.00, Date: 01/15/2024"
	extractor := audit.NewExtractor()
	data := extractor.Extract(text)
	rep := &audit.Report{
		Format:    audit.CheckBillFormat(text),
		Extracted: data,
		Result:    audit.NewEngine().Evaluate(data, audit.DefaultPolicies(), text),
	}
	mockSvc.On("Preview", mock.Anything, text).Return(rep, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/audit/preview",
		bytes.NewBufferString(`{"text":"`+text+`"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)["data"].(map[string]interface{})
	assert.Contains(t, body, "format")
	extracted := body["extracted_data"].(map[string]interface{})
	assert.Equal(t, "Acme Corp", extracted["vendor_name"])
	result := body["audit_result"].(map[string]interface{})
	assert.Equal(t, true, result["is_compliant"])
	assert.Equal(t, float64(100), result["compliance_score"])
}

func TestAuditHandler_Preview_MissingText(t *testing.T) {
	mockSvc := new(mocks.MockAuditService)
	h := handler.NewAuditHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/audit/preview", bytes.NewBufferString(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Preview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything)
}

func TestAuditHandler_Preview_BlankText(t *testing.T) {
	mockSvc := new(mocks.MockAuditService)
	h := handler.NewAuditHandler(mockSvc)
	mockSvc.On("Preview", mock.Anything, "   ").Return(nil, domain.ErrEmptyText)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/audit/preview", bytes.NewBufferString(`{"text":"   "}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Preview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EMPTY_TEXT")
}

func TestStatsHandler_GetStats(t *testing.T) {
	mockSvc := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(mockSvc)
	mockSvc.On("GetStats", mock.Anything).Return(&domain.Stats{TotalDocuments: 3, ActivePolicies: 12}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total_documents"])
	assert.Equal(t, float64(12), data["active_policies"])
}

func TestStatsHandler_GetStats_Error(t *testing.T) {
	mockSvc := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(mockSvc)
	mockSvc.On("GetStats", mock.Anything).Return(nil, errors.New("db error"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)

	h.GetStats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
