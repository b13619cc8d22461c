package audit

import (
	"strconv"
	"strings"

	"billaudit/internal/domain"
)

// InvoiceData is the structured field set extracted from analysis text.
// Every field is optional; a nil Amount or empty string means "not found".
type InvoiceData struct {
	InvoiceNumber string   `json:"invoice_number,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	Date          string   `json:"date,omitempty"`
	VendorName    string   `json:"vendor_name,omitempty"`
}

// FieldValue is the value of one logical field as seen by a rule.
type FieldValue struct {
	text   string
	number *float64
}

// TextValue wraps a string field value.
func TextValue(s string) FieldValue { return FieldValue{text: s} }

// NumberValue wraps a numeric field value.
func NumberValue(f float64) FieldValue { return FieldValue{number: &f} }

// Present reports whether the value is set and truthy: non-empty text or a non-zero number.
func (v FieldValue) Present() bool {
	if v.number != nil {
		return *v.number != 0
	}
	return v.text != ""
}

// String returns the string form used by format and date rules.
func (v FieldValue) String() string {
	if v.number != nil {
		return formatNumber(*v.number)
	}
	return v.text
}

// formatNumber renders a float in its shortest form, always with a fractional
// part: 500 becomes "500.0" and 0.5 stays "0.5".
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Float returns the numeric form, parsing text values when needed.
func (v FieldValue) Float() (float64, bool) {
	if v.number != nil {
		return *v.number, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Field looks up a logical field by name. Unknown names are absent.
func (d *InvoiceData) Field(name string) FieldValue {
	switch name {
	case domain.FieldInvoiceNumber:
		return TextValue(d.InvoiceNumber)
	case domain.FieldAmount:
		if d.Amount == nil {
			return FieldValue{}
		}
		return NumberValue(*d.Amount)
	case domain.FieldDate:
		return TextValue(d.Date)
	case domain.FieldVendorName:
		return TextValue(d.VendorName)
	default:
		return FieldValue{}
	}
}
