package audit

import (
	"context"
	"fmt"
	"log"

	"billaudit/internal/domain"
	"billaudit/internal/port"
)

func strPtr(s string) *string { return &s }

// DefaultPolicies returns the built-in policy set in evaluation order.
// IDs and timestamps are left for the store to assign.
func DefaultPolicies() []domain.AuditPolicy {
	policies := []domain.AuditPolicy{
		{RuleName: "Invoice Number Required", RuleType: domain.RuleTypeRequiredField, FieldName: domain.FieldInvoiceNumber, Condition: domain.ConditionExists, Severity: domain.SeverityMedium},
		{RuleName: "Amount Required", RuleType: domain.RuleTypeRequiredField, FieldName: domain.FieldAmount, Condition: domain.ConditionExists, Severity: domain.SeverityMedium},
		{RuleName: "Date Required", RuleType: domain.RuleTypeRequiredField, FieldName: domain.FieldDate, Condition: domain.ConditionExists, Severity: domain.SeverityMedium},
		{RuleName: "Vendor Name Required", RuleType: domain.RuleTypeRequiredField, FieldName: domain.FieldVendorName, Condition: domain.ConditionExists, Severity: domain.SeverityMedium},
		{RuleName: "Maximum Amount Limit", RuleType: domain.RuleTypeAmountLimit, FieldName: domain.FieldAmount, Condition: domain.ConditionMaxValue, ExpectedValue: strPtr("10000"), Severity: domain.SeverityMedium},
		{RuleName: "Minimum Amount Limit", RuleType: domain.RuleTypeAmountLimit, FieldName: domain.FieldAmount, Condition: domain.ConditionMinValue, ExpectedValue: strPtr("1"), Severity: domain.SeverityMedium},
		{RuleName: "Invoice Number Format", RuleType: domain.RuleTypeFormatCheck, FieldName: domain.FieldInvoiceNumber, Condition: domain.ConditionFormatMatch, ExpectedValue: strPtr(`^[A-Z0-9-]+$`), Severity: domain.SeverityMedium},
		{RuleName: "Date Range Check", RuleType: domain.RuleTypeDateRange, FieldName: domain.FieldDate, Condition: domain.ConditionWithinDays, ExpectedValue: strPtr("365"), Severity: domain.SeverityMedium},
		{RuleName: "Alcohol Content Warning", RuleType: domain.RuleTypeContentWarning, FieldName: domain.FieldContent, Condition: domain.ConditionContainsKeywords,
			ExpectedValue: strPtr("alcohol,beer,wine,liquor,vodka,whiskey,rum,gin,champagne,cocktail,bar,pub,brewery,distillery"), Severity: domain.SeverityWarning},
		{RuleName: "Entertainment Content Warning", RuleType: domain.RuleTypeContentWarning, FieldName: domain.FieldContent, Condition: domain.ConditionContainsKeywords,
			ExpectedValue: strPtr("party,entertainment,club,nightclub,casino,gambling,strip club,adult entertainment,massage,spa"), Severity: domain.SeverityWarning},
		{RuleName: "High-Risk Vendor Warning", RuleType: domain.RuleTypeContentWarning, FieldName: domain.FieldContent, Condition: domain.ConditionContainsKeywords,
			ExpectedValue: strPtr("cash only,no receipt,under table,off books,personal expense,gift,donation"), Severity: domain.SeverityHigh},
		{RuleName: "Luxury Items Warning", RuleType: domain.RuleTypeContentWarning, FieldName: domain.FieldContent, Condition: domain.ConditionContainsKeywords,
			ExpectedValue: strPtr("jewelry,luxury,designer,rolex,gucci,louis vuitton,expensive watch,diamond,gold"), Severity: domain.SeverityWarning},
	}
	for i := range policies {
		policies[i].IsActive = true
		policies[i].Position = i + 1
	}
	return policies
}

// SeedDefaultPolicies inserts DefaultPolicies when the store is empty.
// It reports whether anything was inserted; a non-empty store is left untouched.
func SeedDefaultPolicies(ctx context.Context, repo port.AuditPolicyRepository) (bool, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("audit.SeedDefaultPolicies: counting policies: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	policies := DefaultPolicies()
	if err := repo.CreateBatch(ctx, policies); err != nil {
		return false, fmt.Errorf("audit.SeedDefaultPolicies: inserting defaults: %w", err)
	}
	log.Printf("audit.SeedDefaultPolicies: seeded %d default policies", len(policies))
	return true, nil
}
