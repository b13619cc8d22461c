package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditPolicy is a stored, configurable compliance rule.
type AuditPolicy struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	RuleName      string        `db:"rule_name" json:"rule_name"`
	RuleType      RuleType      `db:"rule_type" json:"rule_type"`
	FieldName     string        `db:"field_name" json:"field_name"`
	Condition     RuleCondition `db:"condition" json:"condition"`
	ExpectedValue *string       `db:"expected_value" json:"expected_value"`
	Severity      Severity      `db:"severity" json:"severity"`
	IsActive      bool          `db:"is_active" json:"is_active"`
	Position      int           `db:"position" json:"position"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// Expected returns the policy's expected value, or "" when unset.
func (p *AuditPolicy) Expected() string {
	if p.ExpectedValue == nil {
		return ""
	}
	return *p.ExpectedValue
}

// EffectiveSeverity returns the policy severity, defaulting to medium.
func (p *AuditPolicy) EffectiveSeverity() Severity {
	if p.Severity == "" {
		return SeverityMedium
	}
	return p.Severity
}

// Violation is one instance of a policy failing for a document.
type Violation struct {
	RuleName      string        `json:"rule_name"`
	FieldName     string        `json:"field_name"`
	ViolationType ViolationType `json:"violation_type"`
	Severity      Severity      `json:"severity"`
	Message       string        `json:"message"`
	FlaggedItems  []string      `json:"flagged_items,omitempty"`
}

// AuditResult is the outcome of evaluating one document against the active policies.
// IsCompliant means zero violations of any severity, while ComplianceScore only
// penalizes blocking severities; a warning-only document scores 100 yet is not compliant.
type AuditResult struct {
	IsCompliant     bool        `json:"is_compliant"`
	TotalViolations int         `json:"total_violations"`
	Violations      []Violation `json:"violations"`
	ComplianceScore float64     `json:"compliance_score"`
	Summary         string      `json:"summary"`
}

// BlockingViolations returns the violations whose severity rejects a submission.
func (r *AuditResult) BlockingViolations() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity.IsBlocking() {
			out = append(out, v)
		}
	}
	return out
}

// Value implements driver.Valuer so the result is stored as JSONB.
func (r AuditResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB columns.
func (r *AuditResult) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		return nil
	default:
		return fmt.Errorf("AuditResult.Scan: unsupported type %T", src)
	}
	if len(data) == 0 {
		return errors.New("AuditResult.Scan: empty value")
	}
	return json.Unmarshal(data, r)
}

// Document is an uploaded, analyzed and (for images) audited file.
type Document struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	FileHash         string       `db:"file_hash" json:"file_hash"`
	FileType         FileType     `db:"file_type" json:"file_type"`
	OriginalFilename string       `db:"original_filename" json:"original_filename"`
	StorageKey       string       `db:"storage_key" json:"-"`
	StorageURL       string       `db:"storage_url" json:"storage_url"`
	AnalysisText     string       `db:"analysis_text" json:"analysis_text"`
	FormatValid      *bool        `db:"format_valid" json:"format_valid,omitempty"`
	FormatReason     *string      `db:"format_reason" json:"format_reason,omitempty"`
	AuditResult      *AuditResult `db:"audit_result" json:"audit_result"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}
