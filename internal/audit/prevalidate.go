package audit

import "strings"

var (
	billKeywords        = []string{"invoice", "bill", "receipt", "statement", "charge"}
	businessIndicators  = []string{"company", "business", "corp", "inc", "ltd", "llc", "store", "shop"}
	amountIndicators    = []string{"total", "amount", "due", "balance", "$", "price", "cost", "subtotal"}
	dateIndicators      = []string{"date", "issued", "billed"}
	structureIndicators = []string{"subtotal", "tax", "total", "quantity", "qty", "item", "description"}
)

const (
	minStructureMatches = 2
	minBillWords        = 20
)

// FormatVerdict is the outcome of the bill format pre-check.
type FormatVerdict struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

// ValidateBillFormat is a fast heuristic gate over analysis text that rejects
// documents that obviously are not bills. Checks run in order and stop at the
// first failure. The verdict is advisory; it never blocks persistence.
func ValidateBillFormat(text string) (bool, string) {
	content := strings.ToLower(text)

	if !containsAny(content, billKeywords) {
		return false, "Document does not appear to be a bill or invoice"
	}
	if !containsAny(content, businessIndicators) {
		return false, "Document lacks proper business/vendor information"
	}
	if !containsAny(content, amountIndicators) {
		return false, "Document lacks pricing or amount information"
	}
	if !containsAny(content, dateIndicators) {
		return false, "Document lacks date information"
	}
	if countDistinct(content, structureIndicators) < minStructureMatches {
		return false, "Document lacks proper bill structure (items, totals, etc.)"
	}
	if len(strings.Fields(content)) < minBillWords {
		return false, "Document content is too brief to be a proper bill"
	}
	return true, "Document format validated as proper bill/invoice"
}

// CheckBillFormat is ValidateBillFormat returning a FormatVerdict.
func CheckBillFormat(text string) FormatVerdict {
	ok, reason := ValidateBillFormat(text)
	return FormatVerdict{Accepted: ok, Reason: reason}
}

func containsAny(content string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(content, n) {
			return true
		}
	}
	return false
}

func countDistinct(content string, needles []string) int {
	n := 0
	for _, s := range needles {
		if strings.Contains(content, s) {
			n++
		}
	}
	return n
}
