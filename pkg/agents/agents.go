// Package agents defines the reasoning roles the pipeline delegates to
// and typed invocation helpers for each. An agent call is one prompt to
// the LLM endpoint plus structured-output parsing; transport, model, and
// parsing failures all surface as retryable or permanent llm errors for
// the retry executor to classify.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/veridata-inc/veridata-engine/pkg/llm"
	"github.com/veridata-inc/veridata-engine/pkg/models"
)

// Role identifies which agent is being invoked, for logging.
type Role string

const (
	RoleTableExplorer     Role = "table-explorer"
	RoleColumnAnalyser    Role = "column-analyser"
	RoleTriage            Role = "triage"
	RoleDataValidator     Role = "data-validator"
	RoleTextAccuracy      Role = "text-accuracy-checker"
	RoleNumericalAccuracy Role = "numerical-accuracy-checker"
	RoleDateAccuracy      Role = "date-accuracy-checker"
)

// Structured output stays deterministic at low temperature.
const temperature = 0.1

func invoke[T any](ctx context.Context, client llm.Client, systemPrompt, question string) (*T, error) {
	response, err := client.GenerateResponse(ctx, question, systemPrompt, temperature)
	if err != nil {
		return nil, err
	}
	result, err := llm.ParseJSONResponse[T](response)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func formatColumns(columns []models.Column) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s (%s)", c.Name, c.DataType)
	}
	return strings.Join(parts, ", ")
}

// AnalyzeTable asks the table-explorer agent for the business context of
// a table given its column list.
func AnalyzeTable(ctx context.Context, client llm.Client, target models.Target, columns []models.Column) (*models.TableContext, error) {
	question := fmt.Sprintf("Analyse table %s.\nColumns: %s", target, formatColumns(columns))
	return invoke[models.TableContext](ctx, client, tableExplorerPrompt, question)
}

// AnalyzeColumn asks the column-analyser agent for the semantic analysis
// of one column, with the table context as shared background.
func AnalyzeColumn(ctx context.Context, client llm.Client, target models.Target, column models.Column, tableCtx models.TableContext) (*models.ColumnAnalysis, error) {
	question := fmt.Sprintf(
		"Analyze the %s column of type %s in table %s.\nTable context: %s",
		column.Name, column.DataType, target, tableCtx.TableDescription)

	analysis, err := invoke[models.ColumnAnalysis](ctx, client, columnAnalyserPrompt, question)
	if err != nil {
		return nil, err
	}
	// Models occasionally omit echo fields; the pipeline keys on them.
	if analysis.ColumnName == "" {
		analysis.ColumnName = column.Name
	}
	if analysis.DataType == "" {
		analysis.DataType = column.DataType
	}
	return analysis, nil
}

// TriageColumns asks the triage agent to classify every column of the
// target by business importance.
func TriageColumns(ctx context.Context, client llm.Client, target models.Target, tableCtx models.TableContext, columns []models.Column) (*models.TriageResult, error) {
	question := fmt.Sprintf(
		"Triage the columns of table %s.\nTable description: %s\nColumns to classify: %s",
		target, tableCtx.TableDescription, formatColumns(columns))
	return invoke[models.TriageResult](ctx, client, triagePrompt, question)
}

// RuleProposal is one validation rule as proposed by the data-validator
// agent, before the engine has executed its query.
type RuleProposal struct {
	RuleID              string          `json:"rule_id"`
	OriginalRequirement string          `json:"original_requirement"`
	ValidationRule      string          `json:"validation_rule"`
	SQLQuery            string          `json:"sql_query"`
	Severity            models.Severity `json:"severity"`
}

// ColumnRuleProposal is the data-validator agent's full answer for one column.
type ColumnRuleProposal struct {
	ColumnName string         `json:"column_name"`
	ColumnType string         `json:"column_type"`
	Rules      []RuleProposal `json:"rules"`
}

// ProposeValidationRules asks the data-validator agent for SQL-backed
// validation rules derived from the column's technical specification.
func ProposeValidationRules(ctx context.Context, client llm.Client, target models.Target, column models.Column, analysis models.ColumnAnalysis) (*ColumnRuleProposal, error) {
	question := fmt.Sprintf(
		"Write validation rules for the '%s' column of table '%s'.\n"+
			"Column description: %s\n"+
			"Column data type: %s\n"+
			"Technical specification: %s",
		column.Name, target,
		analysis.BusinessDefinition,
		analysis.DataType,
		strings.Join(analysis.TechnicalSpecification, "; "))

	proposal, err := invoke[ColumnRuleProposal](ctx, client, dataValidatorPrompt, question)
	if err != nil {
		return nil, err
	}
	if proposal.ColumnName == "" {
		proposal.ColumnName = column.Name
	}
	if proposal.ColumnType == "" {
		proposal.ColumnType = column.DataType
	}
	return proposal, nil
}

// CheckTextAccuracy asks the text-accuracy agent to judge observed
// distinct values against the real-world categories the column holds.
func CheckTextAccuracy(ctx context.Context, client llm.Client, column, businessDefinition string, values []string) (*models.TextAccuracy, error) {
	question := fmt.Sprintf(
		"Check accuracy of %s.\nContext: %s\nAssess the accuracy of the following distinct values: %s",
		column, businessDefinition, strings.Join(values, ", "))

	result, err := invoke[models.TextAccuracy](ctx, client, textAccuracyPrompt, question)
	if err != nil {
		return nil, err
	}
	if result.ColumnName == "" {
		result.ColumnName = column
	}
	return result, nil
}

// CheckNumericalAccuracy asks the numerical-accuracy agent to judge a
// sample of values against real-world numeric constraints.
func CheckNumericalAccuracy(ctx context.Context, client llm.Client, column, businessDefinition string, values []string) (*models.NumericalAccuracy, error) {
	question := fmt.Sprintf(
		"Check numerical accuracy of %s.\nContext: %s\nValues: %s",
		column, businessDefinition, strings.Join(values, ", "))

	result, err := invoke[models.NumericalAccuracy](ctx, client, numericalAccuracyPrompt, question)
	if err != nil {
		return nil, err
	}
	if result.ColumnName == "" {
		result.ColumnName = column
	}
	return result, nil
}

// CheckDateAccuracy asks the date-accuracy agent to judge a sample of
// values against real-world temporal constraints.
func CheckDateAccuracy(ctx context.Context, client llm.Client, column, businessDefinition string, values []string) (*models.DateAccuracy, error) {
	question := fmt.Sprintf(
		"Check date accuracy of %s.\nContext: %s\nValues: %s",
		column, businessDefinition, strings.Join(values, ", "))

	result, err := invoke[models.DateAccuracy](ctx, client, dateAccuracyPrompt, question)
	if err != nil {
		return nil, err
	}
	if result.ColumnName == "" {
		result.ColumnName = column
	}
	return result, nil
}
