package domain

// Stats holds aggregate counts over stored documents.
type Stats struct {
	TotalDocuments         int     `db:"total_documents" json:"total_documents"`
	ImageDocuments         int     `db:"image_documents" json:"image_documents"`
	TextDocuments          int     `db:"text_documents" json:"text_documents"`
	AuditedDocuments       int     `db:"audited_documents" json:"audited_documents"`
	CompliantDocuments     int     `db:"compliant_documents" json:"compliant_documents"`
	AdvisoryDocuments      int     `db:"advisory_documents" json:"advisory_documents"`
	FormatRejected         int     `db:"format_rejected" json:"format_rejected"`
	AverageComplianceScore float64 `db:"average_compliance_score" json:"average_compliance_score"`
	ActivePolicies         int     `db:"-" json:"active_policies"`
}
