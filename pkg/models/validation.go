package models

// Severity grades how serious a rule violation is.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// MaxSampleViolations bounds how many violating values a rule outcome
// carries; the full set lives in the warehouse, the report only needs
// enough to illustrate the problem.
const MaxSampleViolations = 5

// RuleOutcome holds the measured result of executing one validation rule.
type RuleOutcome struct {
	ViolationCount   int64    `json:"violation_count" yaml:"violation_count"`
	Severity         Severity `json:"severity" yaml:"severity"`
	SampleViolations []string `json:"sample_violations,omitempty" yaml:"sample_violations,omitempty"`
}

// RuleValidation is one validation rule and its measured outcome.
type RuleValidation struct {
	// RuleID is a sequential identifier within the column ("R001", "R002", ...).
	RuleID              string      `json:"rule_id" yaml:"rule_id"`
	OriginalRequirement string      `json:"original_requirement" yaml:"original_requirement"`
	ValidationRule      string      `json:"validation_rule" yaml:"validation_rule"`
	SQLQuery            string      `json:"sql_query" yaml:"sql_query"`
	Results             RuleOutcome `json:"validation_results" yaml:"validation_results"`
}

// ColumnValidation aggregates all validation rules applied to one column.
type ColumnValidation struct {
	ColumnName    string           `json:"column_name" yaml:"column_name"`
	ColumnType    string           `json:"column_type" yaml:"column_type"`
	QualityChecks []RuleValidation `json:"quality_checks" yaml:"quality_checks"`
}

// ValidationResults is the validity stage result for a target.
type ValidationResults struct {
	ColumnValidations []ColumnValidation `json:"column_validations" yaml:"column_validations"`
}

// TotalViolations sums violation counts across every rule of every column.
func (v *ValidationResults) TotalViolations() int64 {
	var total int64
	for _, cv := range v.ColumnValidations {
		for _, rule := range cv.QualityChecks {
			total += rule.Results.ViolationCount
		}
	}
	return total
}
