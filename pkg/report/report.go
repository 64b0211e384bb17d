// Package report assembles the per-stage assessment results into a
// consolidated document: a YAML file for machines and a console summary
// for the person who ran the analysis.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/veridata-inc/veridata-engine/pkg/models"
	"github.com/veridata-inc/veridata-engine/pkg/pipeline"
)

// genericToPostgres maps each canonical type to the postgres physical
// types that legitimately carry it. A column whose declared type is not
// in its canonical type's list is flagged as a type mismatch.
var genericToPostgres = map[models.CanonicalType][]string{
	models.CanonicalString:    {"text", "varchar", "character varying", "character", "char"},
	models.CanonicalInteger:   {"integer", "int", "int2", "int4", "int8", "smallint", "bigint"},
	models.CanonicalFloat:     {"double precision", "float8", "real", "float4"},
	models.CanonicalDate:      {"date"},
	models.CanonicalBoolean:   {"boolean", "bool"},
	models.CanonicalDecimal:   {"numeric", "decimal"},
	models.CanonicalTimestamp: {"timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone"},
}

// TypeMismatch records a column whose physical type does not match the
// canonical type its semantics call for.
type TypeMismatch struct {
	ColumnName    string              `yaml:"column_name"`
	CanonicalType models.CanonicalType `yaml:"canonical_type"`
	PhysicalType  string              `yaml:"physical_type"`
	ExpectedTypes []string            `yaml:"expected_types"`
}

// Summary carries the headline numbers shown at the top of the report.
type Summary struct {
	ColumnsAnalyzed  int   `yaml:"columns_analyzed"`
	ColumnsValidated int   `yaml:"columns_validated"`
	TotalViolations  int64 `yaml:"total_violations"`
	TypeMismatches   int   `yaml:"type_mismatches"`
}

// Report is the consolidated assessment document for one target.
type Report struct {
	RunID                 string                      `yaml:"run_id"`
	GeneratedAt           time.Time                   `yaml:"generated_at"`
	Target                string                      `yaml:"target"`
	Summary               Summary                     `yaml:"summary"`
	TableContext          models.TableContext         `yaml:"table_context"`
	HighImportanceColumns []string                    `yaml:"high_importance_columns"`
	TypeMismatches        []TypeMismatch              `yaml:"type_mismatches,omitempty"`
	ColumnAnalyses        []models.ColumnAnalysis     `yaml:"column_analyses"`
	Validation            *models.ValidationResults   `yaml:"validation,omitempty"`
	Accuracy              *models.AccuracyResults     `yaml:"accuracy,omitempty"`
	Completeness          *models.CompletenessResults `yaml:"completeness,omitempty"`
	TableStats            *models.TableStats          `yaml:"table_statistics,omitempty"`
}

// Build folds the pipeline outputs into a report. stats is optional
// enrichment; a nil value omits the table statistics section.
func Build(results *pipeline.Results, stats *models.TableStats) *Report {
	r := &Report{
		RunID:          uuid.New().String(),
		GeneratedAt:    time.Now().UTC(),
		Target:         results.Target.String(),
		TableContext:   results.Profile.TableContext,
		ColumnAnalyses: results.Profile.ColumnAnalyses,
		Validation:     results.Validation,
		Accuracy:       results.Accuracy,
		Completeness:   results.Completeness,
		TableStats:     stats,
	}
	r.HighImportanceColumns = results.Profile.HighPriorityColumns()
	r.TypeMismatches = DetectTypeMismatches(results.Profile.ColumnAnalyses)

	r.Summary = Summary{
		ColumnsAnalyzed: len(results.Profile.ColumnAnalyses),
		TypeMismatches:  len(r.TypeMismatches),
	}
	if results.Validation != nil {
		r.Summary.ColumnsValidated = len(results.Validation.ColumnValidations)
		r.Summary.TotalViolations = results.Validation.TotalViolations()
	}
	return r
}

// DetectTypeMismatches flags columns whose declared physical type does
// not belong to their canonical type's accepted set. Analyses without a
// canonical type are skipped.
func DetectTypeMismatches(analyses []models.ColumnAnalysis) []TypeMismatch {
	var mismatches []TypeMismatch
	for _, a := range analyses {
		accepted, ok := genericToPostgres[a.CanonicalDataType]
		if !ok {
			continue
		}
		if physicalTypeMatches(a.DataType, accepted) {
			continue
		}
		mismatches = append(mismatches, TypeMismatch{
			ColumnName:    a.ColumnName,
			CanonicalType: a.CanonicalDataType,
			PhysicalType:  a.DataType,
			ExpectedTypes: accepted,
		})
	}
	return mismatches
}

func physicalTypeMatches(physical string, accepted []string) bool {
	p := strings.ToLower(strings.TrimSpace(physical))
	// Precision suffixes ("numeric(10,2)") match their base type.
	if i := strings.IndexByte(p, '('); i > 0 {
		p = strings.TrimSpace(p[:i])
	}
	for _, want := range accepted {
		if p == want {
			return true
		}
	}
	return false
}

// WriteYAML emits the full report document.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// SaveYAML writes the report document to path, creating parent
// directories as needed.
func (r *Report) SaveYAML(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := r.WriteYAML(f); err != nil {
		return err
	}
	return f.Close()
}

// RenderSummary prints the human-readable console summary.
func (r *Report) RenderSummary(w io.Writer) {
	fmt.Fprintf(w, "\nData quality assessment for %s\n", r.Target)
	fmt.Fprintf(w, "Run %s, generated %s\n", r.RunID, r.GeneratedAt.Format(time.RFC3339))
	if r.TableContext.TableDescription != "" {
		fmt.Fprintf(w, "%s\n", r.TableContext.TableDescription)
	}
	if r.TableStats != nil {
		fmt.Fprintf(w, "%d rows\n", r.TableStats.TotalRows)
	}
	fmt.Fprintln(w)

	overview := table.NewWriter()
	overview.SetOutputMirror(w)
	overview.SetStyle(table.StyleLight)
	overview.AppendHeader(table.Row{"Columns analyzed", "Columns validated", "Total violations", "Type mismatches"})
	overview.AppendRow(table.Row{
		r.Summary.ColumnsAnalyzed,
		r.Summary.ColumnsValidated,
		r.Summary.TotalViolations,
		r.Summary.TypeMismatches,
	})
	overview.Render()

	if len(r.HighImportanceColumns) > 0 {
		fmt.Fprintf(w, "\nHigh importance columns: %s\n", strings.Join(r.HighImportanceColumns, ", "))
	}

	if len(r.TypeMismatches) > 0 {
		fmt.Fprintln(w)
		mismatches := table.NewWriter()
		mismatches.SetOutputMirror(w)
		mismatches.SetStyle(table.StyleLight)
		mismatches.AppendHeader(table.Row{"Column", "Canonical type", "Physical type", "Expected"})
		for _, m := range r.TypeMismatches {
			mismatches.AppendRow(table.Row{
				m.ColumnName, m.CanonicalType, m.PhysicalType, strings.Join(m.ExpectedTypes, ", "),
			})
		}
		mismatches.Render()
	}

	if r.Validation != nil && len(r.Validation.ColumnValidations) > 0 {
		fmt.Fprintln(w)
		validity := table.NewWriter()
		validity.SetOutputMirror(w)
		validity.SetStyle(table.StyleLight)
		validity.AppendHeader(table.Row{"Column", "Rules", "Violations", "Worst severity"})
		for _, cv := range r.Validation.ColumnValidations {
			var violations int64
			worst := models.Severity("")
			for _, rule := range cv.QualityChecks {
				violations += rule.Results.ViolationCount
				if rule.Results.ViolationCount > 0 && severityRank(rule.Results.Severity) > severityRank(worst) {
					worst = rule.Results.Severity
				}
			}
			validity.AppendRow(table.Row{cv.ColumnName, len(cv.QualityChecks), violations, string(worst)})
		}
		validity.Render()
	}

	if r.Completeness != nil && len(r.Completeness.ColumnFillRates) > 0 {
		fmt.Fprintln(w)
		completeness := table.NewWriter()
		completeness.SetOutputMirror(w)
		completeness.SetStyle(table.StyleLight)
		completeness.AppendHeader(table.Row{"Column", "Null count", "Fill rate"})
		for _, fr := range r.Completeness.ColumnFillRates {
			completeness.AppendRow(table.Row{
				fr.ColumnName, fr.NullCount, fmt.Sprintf("%.1f%%", fr.FillRatePercentage),
			})
		}
		completeness.Render()
	}
}

func severityRank(s models.Severity) int {
	switch s {
	case models.SeverityCritical:
		return 4
	case models.SeverityHigh:
		return 3
	case models.SeverityMedium:
		return 2
	case models.SeverityLow:
		return 1
	default:
		return 0
	}
}
