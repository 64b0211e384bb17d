// Package sql validates agent-generated rule queries before they are
// executed against the warehouse.
package sql

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyQuery indicates the rule query is empty after trimming.
	ErrEmptyQuery = errors.New("rule query is empty")
	// ErrMultipleStatements indicates the query contains multiple SQL
	// statements; only single statements are permitted.
	ErrMultipleStatements = errors.New("rule query must be a single SQL statement")
	// ErrNotReadOnly indicates the query is not a SELECT statement.
	ErrNotReadOnly = errors.New("rule query must be a SELECT statement")
)

// ValidateRuleQuery normalizes and checks one agent-generated query.
//
// The validation order is:
//  1. Reject empty input
//  2. Strip a trailing semicolon and whitespace (normalize)
//  3. Reject remaining semicolons outside string literals (multiple statements)
//  4. Require a SELECT or WITH prefix (read-only)
//
// On success the normalized query is returned, ready to be wrapped in a
// counting or sampling subquery.
func ValidateRuleQuery(ruleSQL string) (string, error) {
	trimmed := strings.TrimSpace(ruleSQL)
	if trimmed == "" {
		return "", ErrEmptyQuery
	}

	normalized := stripTrailingSemicolon(trimmed)

	if hasSemicolonOutsideStrings(normalized) {
		return "", ErrMultipleStatements
	}

	lower := strings.ToLower(normalized)
	if !strings.HasPrefix(lower, "select") && !strings.HasPrefix(lower, "with") {
		return "", ErrNotReadOnly
	}

	return normalized, nil
}

// hasSemicolonOutsideStrings returns true if the SQL contains any
// semicolon outside of string literals or quoted identifiers. A
// semicolon inside 'a;b' or "a;b" does not split statements.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Both backslash escape (\') and SQL standard escape ('')
			// keep us inside the literal: the doubled quote exits here
			// and immediately re-enters on the next character.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes a trailing semicolon and surrounding
// whitespace.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimSuffix(sqlQuery, ";")
		sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	}
	return sqlQuery
}
