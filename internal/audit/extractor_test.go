package audit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billaudit/internal/audit"
	"billaudit/internal/domain"
)

const (
	acmeText      = "Invoice #INV-2024-001 from Acme Corp, Total: $500.00, Date: 01/15/2024"
	acmeItemsText = acmeText + ", subtotal $450 tax $50 quantity 2 item Widget"
)

func TestExtract_AcmeScenario(t *testing.T) {
	data := audit.NewExtractor().Extract(acmeText)

	assert.Equal(t, "INV-2024-001", data.InvoiceNumber)
	require.NotNil(t, data.Amount)
	assert.Equal(t, 500.0, *data.Amount)
	assert.Equal(t, "01/15/2024", data.Date)
	assert.Equal(t, "Acme Corp", data.VendorName)
}

func TestExtract_AcmeWithLineItems(t *testing.T) {
	data := audit.NewExtractor().Extract(acmeItemsText)

	assert.Equal(t, "INV-2024-001", data.InvoiceNumber)
	require.NotNil(t, data.Amount)
	assert.Equal(t, 500.0, *data.Amount)
	assert.Equal(t, "01/15/2024", data.Date)
	assert.Contains(t, data.VendorName, "Acme Corp")
}

func TestExtract_InvoiceNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Invoice Number: A-100", "A-100"},
		{"inv no. 7781", "7781"},
		{"Bill No: ABC-123", "ABC-123"},
		{"Receipt for lunch", ""},
	}
	e := audit.NewExtractor()
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Extract(tt.text).InvoiceNumber, tt.text)
	}
}

func TestExtract_Amount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"labeled", "Amount 250 USD", 250},
		{"thousands separator", "Paid $1,234.56 today", 1234.56},
		{"currency suffix", "It came to 75 dollars", 75},
		{"unparseable label falls through", "Total: , then $42", 42},
	}
	e := audit.NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := e.Extract(tt.text)
			require.NotNil(t, data.Amount)
			assert.InDelta(t, tt.want, *data.Amount, 0.0001)
		})
	}
}

func TestExtract_AmountAbsent(t *testing.T) {
	data := audit.NewExtractor().Extract("No figures in here at all")
	assert.Nil(t, data.Amount)
}

func TestExtract_Date(t *testing.T) {
	e := audit.NewExtractor()

	assert.Equal(t, "3/4/24", e.Extract("Date: 3/4/24").Date)
	assert.Equal(t, "12-31-2023", e.Extract("Paid on 12-31-2023").Date)
	assert.Equal(t, "March 5, 2024", e.Extract("Issued on March 5, 2024").Date)
}

func TestExtract_VendorName(t *testing.T) {
	e := audit.NewExtractor()

	assert.Equal(t, "Blue Sky Supplies", e.Extract("Vendor: Blue Sky Supplies\nItems: paper").VendorName)
	assert.Equal(t, "Zeta Trading LLC", e.Extract("Invoice from Zeta Trading LLC").VendorName)
	// names shorter than three characters are discarded
	assert.Equal(t, "", e.Extract("from AB\n").VendorName)
}

func TestExtract_VendorLabelBeforeColon(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"vendor name label", "Vendor Name: Acme Corp\nTotal: $500.00", ""},
		{"company name label", "Company Name: Acme Corp, Total: $500.00", ""},
		{"business address label", "Business Address: Main Street\nAmount: $20", ""},
		{"label after separator", "invoice from ABC Store. Invoice Number: 12345", "ABC Store"},
		{"known label without separator", "from Acme Corp Total: $5", "Acme Corp"},
		{"known label after comma", "from Acme Corp, Date: 01/15/2024", "Acme Corp"},
	}
	e := audit.NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text).VendorName)
		})
	}
}

func TestEvaluate_VendorLabelIsNotAVendor(t *testing.T) {
	text := "Vendor Name: Acme Corp\nInvoice Number: INV-9\nTotal: $120.00\nDate: 01/15/2024"
	result := auditText(t, text)

	require.False(t, result.IsCompliant)
	assert.Equal(t, domain.FieldVendorName, result.Violations[0].FieldName)
	assert.Equal(t, domain.ViolationMissingField, result.Violations[0].ViolationType)
}

func TestExtract_NothingFound(t *testing.T) {
	data := audit.NewExtractor().Extract("hello world")

	assert.Equal(t, audit.InvoiceData{}, data)
}
