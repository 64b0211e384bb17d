package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/veridata-inc/veridata-engine/pkg/llm"
	"github.com/veridata-inc/veridata-engine/pkg/models"
)

var testTarget = models.Target{Schema: "public", Table: "orders"}

func TestAnalyzeTable(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		if !strings.Contains(prompt, "public.orders") {
			t.Errorf("prompt should name the target, got %q", prompt)
		}
		if !strings.Contains(prompt, "status (varchar)") {
			t.Errorf("prompt should list columns with types, got %q", prompt)
		}
		return `{"table_description":"one order per row","business_context":"sales","dataset_type":"transactional"}`, nil
	}

	got, err := AnalyzeTable(context.Background(), mock, testTarget, []models.Column{
		{Name: "id", DataType: "integer"},
		{Name: "status", DataType: "varchar"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TableDescription != "one order per row" || got.DatasetType != "transactional" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestAnalyzeColumn_FillsOmittedEchoFields(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return `{"business_definition":"order state","canonical_data_type":"string","technical_specification":["must be one of pending, shipped, delivered"]}`, nil
	}

	got, err := AnalyzeColumn(context.Background(), mock, testTarget,
		models.Column{Name: "status", DataType: "character varying"},
		models.TableContext{TableDescription: "orders"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ColumnName != "status" {
		t.Errorf("expected column name backfilled, got %q", got.ColumnName)
	}
	if got.DataType != "character varying" {
		t.Errorf("expected data type backfilled, got %q", got.DataType)
	}
	if got.CanonicalDataType != models.CanonicalString {
		t.Errorf("unexpected canonical type: %q", got.CanonicalDataType)
	}
}

func TestProposeValidationRules(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return `{
			"column_name": "status",
			"column_type": "varchar",
			"rules": [
				{
					"rule_id": "R001",
					"original_requirement": "status must not be null",
					"validation_rule": "every row has a non-null status",
					"sql_query": "SELECT status FROM public.orders WHERE status IS NULL",
					"severity": "HIGH"
				}
			]
		}`, nil
	}

	got, err := ProposeValidationRules(context.Background(), mock, testTarget,
		models.Column{Name: "status", DataType: "varchar"},
		models.ColumnAnalysis{BusinessDefinition: "order state"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(got.Rules))
	}
	if got.Rules[0].RuleID != "R001" || got.Rules[0].Severity != models.SeverityHigh {
		t.Errorf("unexpected rule: %+v", got.Rules[0])
	}
}

func TestCheckTextAccuracy_PassesEvidence(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		for _, v := range []string{"pending", "shipped", "shiped"} {
			if !strings.Contains(prompt, v) {
				t.Errorf("prompt should contain evidence value %q", v)
			}
		}
		return `{"column_name":"status","can_check_accuracy":true,"incorrect_values":["shiped"]}`, nil
	}

	got, err := CheckTextAccuracy(context.Background(), mock, "status", "order state",
		[]string{"pending", "shipped", "shiped"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.CanCheckAccuracy || len(got.IncorrectValues) != 1 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestCheckDateAccuracy_InsufficientContextIsNotAnError(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return `{"column_name":"created_at","can_check_accuracy":false,"notes":"no business constraints known"}`, nil
	}

	got, err := CheckDateAccuracy(context.Background(), mock, "created_at", "", []string{"2024-01-01"})
	if err != nil {
		t.Fatalf("insufficient context must not be an error, got %v", err)
	}
	if got.CanCheckAccuracy {
		t.Error("expected can_check_accuracy=false")
	}
}

func TestInvoke_TransportErrorPropagates(t *testing.T) {
	mock := llm.NewMockClient()
	transport := llm.NewError(llm.ErrorTypeEndpoint, "connection failed", true, errors.New("dial tcp"))
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return "", transport
	}

	_, err := CheckNumericalAccuracy(context.Background(), mock, "amount", "", []string{"1"})
	if !errors.Is(err, transport) {
		t.Errorf("expected transport error to propagate, got %v", err)
	}
}
