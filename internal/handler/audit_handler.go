package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"billaudit/internal/service"
)

// AuditHandler handles audit policy and preview endpoints.
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// ListPolicies handles GET /api/v1/audit-policies
// @Summary List audit policies
// @Description List every audit policy, active or not, in evaluation order
// @Tags audit
// @Produce json
// @Success 200 {object} APIResponse{data=[]domain.AuditPolicy} "Audit policies"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /audit-policies [get]
func (h *AuditHandler) ListPolicies(c *gin.Context) {
	policies, err := h.auditService.ListPolicies(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, policies)
}

type previewRequest struct {
	Text string `json:"text" binding:"required"`
}

// Preview handles POST /api/v1/audit/preview
// It audits the given text against the active policies without storing anything.
// @Summary Preview an audit
// @Description Run the format check, field extraction and policy evaluation on analysis text
// @Tags audit
// @Accept json
// @Produce json
// @Param request body previewRequest true "Analysis text"
// @Success 200 {object} APIResponse{data=audit.Report} "Audit report"
// @Failure 400 {object} APIResponse "Text is required"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /audit/preview [post]
func (h *AuditHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "text is required")
		return
	}

	rep, err := h.auditService.Preview(c.Request.Context(), req.Text)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rep)
}
