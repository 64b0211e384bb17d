package models

import "testing"

func TestValidationResults_TotalViolations(t *testing.T) {
	results := ValidationResults{
		ColumnValidations: []ColumnValidation{
			{
				ColumnName: "id",
				QualityChecks: []RuleValidation{
					{Results: RuleOutcome{ViolationCount: 2}},
					{Results: RuleOutcome{ViolationCount: 0}},
				},
			},
			{
				ColumnName: "status",
				QualityChecks: []RuleValidation{
					{Results: RuleOutcome{ViolationCount: 5}},
				},
			},
		},
	}
	if got := results.TotalViolations(); got != 7 {
		t.Errorf("TotalViolations() = %d, want 7", got)
	}

	var empty ValidationResults
	if got := empty.TotalViolations(); got != 0 {
		t.Errorf("empty TotalViolations() = %d, want 0", got)
	}
}
