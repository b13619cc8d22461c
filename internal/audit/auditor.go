package audit

import (
	"context"
	"fmt"
	"time"

	"billaudit/internal/domain"
	"billaudit/internal/port"
)

// Report is everything an audit learns about one analysis text.
type Report struct {
	Format    FormatVerdict      `json:"format"`
	Extracted InvoiceData        `json:"extracted_data"`
	Result    domain.AuditResult `json:"audit_result"`
}

// Auditor runs the full audit of a raw analysis text against the stored policies.
type Auditor struct {
	policies  port.AuditPolicyRepository
	extractor *Extractor
	engine    *Engine
}

// NewAuditor creates an Auditor. A nil extractor or engine gets the defaults.
func NewAuditor(policies port.AuditPolicyRepository, extractor *Extractor, engine *Engine) *Auditor {
	if extractor == nil {
		extractor = NewExtractor()
	}
	if engine == nil {
		engine = NewEngine()
	}
	return &Auditor{policies: policies, extractor: extractor, engine: engine}
}

// Audit loads one snapshot of the active policies, extracts invoice fields
// from rawText and evaluates them. The format verdict is advisory and does
// not affect the audit result.
func (a *Auditor) Audit(ctx context.Context, rawText string) (*Report, error) {
	start := time.Now()
	report, err := a.run(ctx, rawText)
	if err != nil {
		return nil, err
	}
	recordAudit(&report.Result, time.Since(start).Seconds())
	return report, nil
}

// Preview is Audit without recording audit metrics, for dry runs.
func (a *Auditor) Preview(ctx context.Context, rawText string) (*Report, error) {
	return a.run(ctx, rawText)
}

func (a *Auditor) run(ctx context.Context, rawText string) (*Report, error) {
	policies, err := a.policies.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit.Auditor: loading policies: %w", err)
	}
	report := BuildReport(a.extractor, a.engine, policies, rawText)
	return &report, nil
}

// BuildReport audits rawText against an already loaded policy set.
func BuildReport(extractor *Extractor, engine *Engine, policies []domain.AuditPolicy, rawText string) Report {
	data := extractor.Extract(rawText)
	return Report{
		Format:    CheckBillFormat(rawText),
		Extracted: data,
		Result:    engine.Evaluate(data, policies, rawText),
	}
}
