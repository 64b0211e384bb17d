package models

// CheckKind selects which type-specific accuracy check a column receives.
type CheckKind string

const (
	CheckText      CheckKind = "text"
	CheckNumerical CheckKind = "numerical"
	CheckDate      CheckKind = "date"
)

// TextAccuracy reports categorical accuracy findings for a text column.
type TextAccuracy struct {
	ColumnName string `json:"column_name" yaml:"column_name"`
	// CanCheckAccuracy is false when the column context was not enough
	// to judge values against real-world categories. That is a valid
	// outcome, not an error.
	CanCheckAccuracy bool     `json:"can_check_accuracy" yaml:"can_check_accuracy"`
	IncorrectValues  []string `json:"incorrect_values,omitempty" yaml:"incorrect_values,omitempty"`
	// InconsistentRepresentations groups values that mean the same
	// category but are spelled differently.
	InconsistentRepresentations [][]string `json:"inconsistent_representations,omitempty" yaml:"inconsistent_representations,omitempty"`
	Notes                       string     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// NumericalAccuracy reports range/outlier/format findings for a numeric column.
type NumericalAccuracy struct {
	ColumnName          string   `json:"column_name" yaml:"column_name"`
	CanCheckAccuracy    bool     `json:"can_check_accuracy" yaml:"can_check_accuracy"`
	OutOfRangeValues    []string `json:"out_of_range_values,omitempty" yaml:"out_of_range_values,omitempty"`
	StatisticalOutliers []string `json:"statistical_outliers,omitempty" yaml:"statistical_outliers,omitempty"`
	FormatIssues        []string `json:"format_issues,omitempty" yaml:"format_issues,omitempty"`
	Notes               string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DateAccuracy reports validity/range/format/temporal findings for a date column.
type DateAccuracy struct {
	ColumnName          string   `json:"column_name" yaml:"column_name"`
	CanCheckAccuracy    bool     `json:"can_check_accuracy" yaml:"can_check_accuracy"`
	InvalidDates        []string `json:"invalid_dates,omitempty" yaml:"invalid_dates,omitempty"`
	OutOfRangeDates     []string `json:"out_of_range_dates,omitempty" yaml:"out_of_range_dates,omitempty"`
	InconsistentFormats []string `json:"inconsistent_formats,omitempty" yaml:"inconsistent_formats,omitempty"`
	TemporalLogicIssues []string `json:"temporal_logic_issues,omitempty" yaml:"temporal_logic_issues,omitempty"`
	Notes               string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// AccuracyFinding is the tagged union produced by the accuracy dispatcher.
// Exactly one of Text, Numerical, Date is non-nil, matching Kind.
type AccuracyFinding struct {
	Kind      CheckKind          `json:"kind"`
	Text      *TextAccuracy      `json:"text,omitempty"`
	Numerical *NumericalAccuracy `json:"numerical,omitempty"`
	Date      *DateAccuracy      `json:"date,omitempty"`
}

// ColumnName returns the column the finding belongs to.
func (f AccuracyFinding) ColumnName() string {
	switch f.Kind {
	case CheckText:
		if f.Text != nil {
			return f.Text.ColumnName
		}
	case CheckNumerical:
		if f.Numerical != nil {
			return f.Numerical.ColumnName
		}
	case CheckDate:
		if f.Date != nil {
			return f.Date.ColumnName
		}
	}
	return ""
}

// AccuracyResults is the accuracy stage result for a target, partitioned
// by check kind.
type AccuracyResults struct {
	TextAccuracy      []TextAccuracy      `json:"text_accuracy" yaml:"text_accuracy"`
	NumericalAccuracy []NumericalAccuracy `json:"numerical_accuracy" yaml:"numerical_accuracy"`
	DateAccuracy      []DateAccuracy      `json:"date_accuracy" yaml:"date_accuracy"`
}

// PartitionFindings folds a list of dispatcher findings into per-kind
// lists, preserving the findings' order within each kind.
func PartitionFindings(findings []AccuracyFinding) AccuracyResults {
	var out AccuracyResults
	for _, f := range findings {
		switch f.Kind {
		case CheckText:
			if f.Text != nil {
				out.TextAccuracy = append(out.TextAccuracy, *f.Text)
			}
		case CheckNumerical:
			if f.Numerical != nil {
				out.NumericalAccuracy = append(out.NumericalAccuracy, *f.Numerical)
			}
		case CheckDate:
			if f.Date != nil {
				out.DateAccuracy = append(out.DateAccuracy, *f.Date)
			}
		}
	}
	return out
}
