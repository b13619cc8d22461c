package audit

import (
	"regexp"
	"strconv"
	"strings"
)

// Strategy is one pattern for pulling a single field out of analysis text.
// Extraction tries a field's strategies in order and keeps the first accepted match.
type Strategy struct {
	Name    string
	pattern *regexp.Regexp
	// accept post-processes the captured value; returning false falls through
	// to the next strategy.
	accept func(match []string) (string, bool)
}

// NewStrategy compiles a case-insensitive strategy whose first capture group is the value.
func NewStrategy(name, pattern string) Strategy {
	return Strategy{Name: name, pattern: regexp.MustCompile(`(?i)` + pattern), accept: firstGroup}
}

// Match returns the accepted value of the first match in text.
func (s Strategy) Match(text string) (string, bool) {
	m := s.pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return s.accept(m)
}

func firstGroup(m []string) (string, bool) {
	return m[1], true
}

// Extractor turns a model's free-form description into InvoiceData.
type Extractor struct {
	InvoiceNumber []Strategy
	Amount        []Strategy
	Date          []Strategy
	VendorName    []Strategy
}

// NewExtractor returns an Extractor with the standard invoice strategies.
func NewExtractor() *Extractor {
	return &Extractor{
		InvoiceNumber: invoiceNumberStrategies(),
		Amount:        amountStrategies(),
		Date:          dateStrategies(),
		VendorName:    vendorStrategies(),
	}
}

// Extract applies every field's strategies. Fields with no accepted match are left unset.
func (e *Extractor) Extract(text string) InvoiceData {
	var data InvoiceData
	if v, ok := firstMatch(e.InvoiceNumber, text); ok {
		data.InvoiceNumber = v
	}
	if v, ok := firstMatch(e.Amount, text); ok {
		// amount strategies only accept parseable values
		f, _ := strconv.ParseFloat(v, 64)
		data.Amount = &f
	}
	if v, ok := firstMatch(e.Date, text); ok {
		data.Date = v
	}
	if v, ok := firstMatch(e.VendorName, text); ok {
		data.VendorName = v
	}
	return data
}

func firstMatch(strategies []Strategy, text string) (string, bool) {
	for _, s := range strategies {
		if v, ok := s.Match(text); ok {
			return v, true
		}
	}
	return "", false
}

func invoiceNumberStrategies() []Strategy {
	return []Strategy{
		NewStrategy("invoice_label", `invoice\s*(?:number|#|no\.?)\s*:?\s*([A-Z0-9-]+)`),
		NewStrategy("inv_label", `inv\s*(?:number|#|no\.?)\s*:?\s*([A-Z0-9-]+)`),
		NewStrategy("bill_label", `bill\s*(?:number|#|no\.?)\s*:?\s*([A-Z0-9-]+)`),
	}
}

func amountStrategies() []Strategy {
	out := []Strategy{
		NewStrategy("labeled_total", `(?:total|amount|sum)\s*:?\s*\$?([0-9,]+\.?[0-9]*)`),
		NewStrategy("dollar_prefix", `\$([0-9,]+\.?[0-9]*)`),
		NewStrategy("currency_suffix", `([0-9,]+\.?[0-9]*)\s*(?:dollars?|usd|\$)`),
	}
	for i := range out {
		out[i].accept = acceptAmount
	}
	return out
}

// acceptAmount strips thousands separators and requires a parseable float.
func acceptAmount(m []string) (string, bool) {
	s := strings.ReplaceAll(m[1], ",", "")
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", false
	}
	return s, true
}

func dateStrategies() []Strategy {
	return []Strategy{
		NewStrategy("labeled_date", `date\s*:?\s*([0-9]{1,2}[/-][0-9]{1,2}[/-][0-9]{2,4})`),
		NewStrategy("numeric_date", `([0-9]{1,2}[/-][0-9]{1,2}[/-][0-9]{2,4})`),
		NewStrategy("long_date", `([A-Za-z]+ [0-9]{1,2},? [0-9]{4})`),
	}
}

// trailingLabel matches a known field label that ran into a vendor name, as in
// "from Acme Corp, Total: $5".
var trailingLabel = regexp.MustCompile(`(?i)[\s,]*\b(?:total|subtotal|amount|sum|date|invoice|inv|bill|tax|due|balance|price|cost|qty|quantity|phone|tel)\s*$`)

const (
	minVendorNameLen = 3
	labelSeparators  = ",.;"
)

func vendorStrategies() []Strategy {
	// A name runs until a newline, end of text, a digit or a label colon.
	const name = `([A-Za-z\s&.,]+?)(\n|$|[0-9]|:)`
	out := []Strategy{
		NewStrategy("vendor_label", `(?:from|vendor|company|business)\s*:?\s*`+name),
		NewStrategy("bill_from", `bill\s+from\s+`+name),
		NewStrategy("invoice_from", `invoice\s+from\s+`+name),
	}
	for i := range out {
		out[i].accept = acceptVendor
	}
	return out
}

func acceptVendor(m []string) (string, bool) {
	v := m[1]
	if m[2] == ":" {
		v = stripLabel(v)
	}
	v = strings.TrimRight(strings.TrimSpace(v), ", ")
	if len(v) < minVendorNameLen {
		return "", false
	}
	return v, true
}

// stripLabel removes the label that precedes a colon from a captured name.
// A known field label is cut off directly; otherwise everything after the
// last separator is the label, and with no separator the whole capture is,
// as in "Vendor Name: Acme Corp".
func stripLabel(v string) string {
	if loc := trailingLabel.FindStringIndex(v); loc != nil {
		return v[:loc[0]]
	}
	if i := strings.LastIndexAny(v, labelSeparators); i >= 0 {
		return v[:i]
	}
	return ""
}
