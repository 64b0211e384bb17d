package sql

import (
	"errors"
	"testing"
)

func TestValidateRuleQuery_ValidQueries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select without semicolon",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "trailing semicolon stripped",
			input:    "SELECT id FROM orders WHERE id <= 0;",
			expected: "SELECT id FROM orders WHERE id <= 0",
		},
		{
			name:     "trailing semicolon and whitespace",
			input:    "  SELECT 1;  ",
			expected: "SELECT 1",
		},
		{
			name:     "semicolon inside single quoted string",
			input:    "SELECT * FROM orders WHERE status = 'a;b'",
			expected: "SELECT * FROM orders WHERE status = 'a;b'",
		},
		{
			name:     "semicolon inside quoted identifier",
			input:    `SELECT * FROM "weird;table"`,
			expected: `SELECT * FROM "weird;table"`,
		},
		{
			name:     "SQL standard escaped single quote",
			input:    "SELECT * FROM users WHERE name = 'O''Brien'",
			expected: "SELECT * FROM users WHERE name = 'O''Brien'",
		},
		{
			name:     "CTE accepted",
			input:    "WITH bad AS (SELECT id FROM orders WHERE id < 0) SELECT * FROM bad",
			expected: "WITH bad AS (SELECT id FROM orders WHERE id < 0) SELECT * FROM bad",
		},
		{
			name:     "lowercase select accepted",
			input:    "select count(*) from orders",
			expected: "select count(*) from orders",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateRuleQuery(tt.input)
			if err != nil {
				t.Fatalf("ValidateRuleQuery(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("normalized = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestValidateRuleQuery_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", "", ErrEmptyQuery},
		{"whitespace only", "   \n\t", ErrEmptyQuery},
		{"two statements", "SELECT 1; SELECT 2", ErrMultipleStatements},
		{"piggybacked drop", "SELECT 1; DROP TABLE orders", ErrMultipleStatements},
		{"update statement", "UPDATE orders SET status = 'x'", ErrNotReadOnly},
		{"delete statement", "DELETE FROM orders", ErrNotReadOnly},
		{"insert statement", "INSERT INTO orders VALUES (1)", ErrNotReadOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRuleQuery(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRuleQuery(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
