package models

// CanonicalType is the logical type a column should hold, as distinct
// from its declared physical database type.
type CanonicalType string

const (
	CanonicalString    CanonicalType = "string"
	CanonicalInteger   CanonicalType = "integer"
	CanonicalFloat     CanonicalType = "float"
	CanonicalDate      CanonicalType = "date"
	CanonicalBoolean   CanonicalType = "boolean"
	CanonicalDecimal   CanonicalType = "decimal"
	CanonicalTimestamp CanonicalType = "timestamp"
)

// TableContext is the business-level description of a table, produced
// once per target and passed to every downstream column-level call as
// shared context.
type TableContext struct {
	TableDescription string `json:"table_description" yaml:"table_description"`
	BusinessContext  string `json:"business_context" yaml:"business_context"`
	DatasetType      string `json:"dataset_type" yaml:"dataset_type"`
}

// ColumnAnalysis holds the semantic analysis of a single column.
type ColumnAnalysis struct {
	ColumnName         string        `json:"column_name" yaml:"column_name"`
	BusinessDefinition string        `json:"business_definition" yaml:"business_definition"`
	DataType           string        `json:"data_type" yaml:"data_type"`
	CanonicalDataType  CanonicalType `json:"canonical_data_type" yaml:"canonical_data_type"`
	// TechnicalSpecification lists human-readable predicates describing
	// what makes a value of this column valid.
	TechnicalSpecification []string `json:"technical_specification" yaml:"technical_specification"`
	Sources                []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	OtherNotes             string   `json:"other_notes,omitempty" yaml:"other_notes,omitempty"`
}

// ColumnImportance is the triage tier assigned to a column.
type ColumnImportance string

const (
	ImportanceHigh   ColumnImportance = "HIGH"
	ImportanceMedium ColumnImportance = "MEDIUM"
	ImportanceLow    ColumnImportance = "LOW"
)

// ColumnClassification is the triage outcome for one column.
type ColumnClassification struct {
	ColumnName     string           `json:"column_name" yaml:"column_name"`
	ColumnType     string           `json:"column_type" yaml:"column_type"`
	Classification ColumnImportance `json:"classification" yaml:"classification"`
	Reasoning      string           `json:"reasoning" yaml:"reasoning"`
}

// TriageResult classifies every column of a target by business importance.
type TriageResult struct {
	ColumnClassifications []ColumnClassification `json:"column_classifications" yaml:"column_classifications"`
}

// ByImportance returns the names of columns at the given tier.
func (t *TriageResult) ByImportance(tier ColumnImportance) []string {
	var names []string
	for _, c := range t.ColumnClassifications {
		if c.Classification == tier {
			names = append(names, c.ColumnName)
		}
	}
	return names
}

// TableProfile is the complete profiling stage result: table context,
// one semantic analysis per surviving column, and the triage output.
type TableProfile struct {
	TableContext   TableContext     `json:"table_context" yaml:"table_context"`
	ColumnAnalyses []ColumnAnalysis `json:"column_analyses" yaml:"column_analyses"`
	ColumnTriage   TriageResult     `json:"column_triage" yaml:"column_triage"`
}

// AnalysisIndex builds the name -> analysis lookup consumed by the
// validity and accuracy stages. A column absent from this map was
// dropped during profiling (retry exhaustion) and is skipped downstream.
func (p *TableProfile) AnalysisIndex() map[string]*ColumnAnalysis {
	idx := make(map[string]*ColumnAnalysis, len(p.ColumnAnalyses))
	for i := range p.ColumnAnalyses {
		idx[p.ColumnAnalyses[i].ColumnName] = &p.ColumnAnalyses[i]
	}
	return idx
}

// HighPriorityColumns returns the columns triaged HIGH.
func (p *TableProfile) HighPriorityColumns() []string {
	return p.ColumnTriage.ByImportance(ImportanceHigh)
}
