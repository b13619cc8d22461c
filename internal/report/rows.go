// Package report exports audited documents as CSV or XLSX.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"billaudit/internal/audit"
	"billaudit/internal/domain"
)

// columns defines the header row shared by every export format.
var columns = []string{
	"Document ID",
	"Original Filename",
	"File Type",
	"Invoice Number",
	"Amount",
	"Invoice Date",
	"Vendor Name",
	"Format Valid",
	"Format Reason",
	"Compliant",
	"Compliance Score",
	"Total Violations",
	"Blocking Violations",
	"Flagged Items",
	"Audit Summary",
	"Created At",
}

// Columns returns a copy of the export header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// documentToRow flattens one document. Invoice columns are re-extracted from
// the stored analysis text; audit columns stay empty for unaudited documents.
func documentToRow(doc *domain.Document, extractor *audit.Extractor) []string {
	row := make([]string, len(columns))

	row[0] = doc.ID.String()
	row[1] = doc.OriginalFilename
	row[2] = string(doc.FileType)
	row[15] = doc.CreatedAt.Format(time.RFC3339)

	if doc.FormatValid != nil {
		row[7] = formatBool(*doc.FormatValid)
	}
	if doc.FormatReason != nil {
		row[8] = *doc.FormatReason
	}

	if doc.AnalysisText != "" {
		data := extractor.Extract(doc.AnalysisText)
		row[3] = data.InvoiceNumber
		if data.Amount != nil {
			row[4] = formatMoney(*data.Amount)
		}
		row[5] = data.Date
		row[6] = data.VendorName
	}

	if r := doc.AuditResult; r != nil {
		row[9] = formatBool(r.IsCompliant)
		row[10] = strconv.FormatFloat(r.ComplianceScore, 'f', 2, 64)
		row[11] = strconv.Itoa(r.TotalViolations)
		row[12] = strconv.Itoa(len(r.BlockingViolations()))
		row[13] = flaggedItems(r)
		row[14] = r.Summary
	}

	return row
}

func flaggedItems(r *domain.AuditResult) string {
	var items []string
	for _, v := range r.Violations {
		items = append(items, v.FlaggedItems...)
	}
	return strings.Join(items, "; ")
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext} for Content-Disposition.
func BuildFilename(name string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), format)
}
