package domain

// FileType represents how an uploaded document is analyzed.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeText  FileType = "text"
)

// AllowedContentTypes maps file extensions (without dot) to the MIME type used for storage.
var AllowedContentTypes = map[string]string{
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// ImageExtensions lists extensions that are always treated as images.
var ImageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"tiff": true,
}

// RuleType is the kind of check an audit policy performs.
type RuleType string

const (
	RuleTypeRequiredField  RuleType = "required_field"
	RuleTypeAmountLimit    RuleType = "amount_limit"
	RuleTypeFormatCheck    RuleType = "format_check"
	RuleTypeContentWarning RuleType = "content_warning"
	RuleTypeDateRange      RuleType = "date_range"
)

// RuleCondition is the rule-type specific operator of an audit policy.
type RuleCondition string

const (
	ConditionExists           RuleCondition = "exists"
	ConditionMaxValue         RuleCondition = "max_value"
	ConditionMinValue         RuleCondition = "min_value"
	ConditionFormatMatch      RuleCondition = "format_match"
	ConditionContainsKeywords RuleCondition = "contains_keywords"
	ConditionWithinDays       RuleCondition = "within_days"
)

// Severity is the importance tier of a policy and its violations.
type Severity string

const (
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityHigh    Severity = "high"
	SeverityWarning Severity = "warning"
)

// IsBlocking reports whether a violation of this severity rejects a submission.
// Only medium and high block; warning and low are advisory.
func (s Severity) IsBlocking() bool {
	return s == SeverityMedium || s == SeverityHigh
}

// ViolationType classifies a single rule failure.
type ViolationType string

const (
	ViolationMissingField       ViolationType = "missing_field"
	ViolationAmountExceeded     ViolationType = "amount_exceeded"
	ViolationAmountBelowMinimum ViolationType = "amount_below_minimum"
	ViolationContentWarning     ViolationType = "content_warning"
	ViolationFormatMismatch     ViolationType = "format_mismatch"
	ViolationDateOutOfRange     ViolationType = "date_out_of_range"
)

// Logical field names inspected by audit policies.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldAmount        = "amount"
	FieldDate          = "date"
	FieldVendorName    = "vendor_name"
	FieldContent       = "content"
)
