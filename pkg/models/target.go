package models

import "fmt"

// Target identifies one (schema, table) pair being assessed.
// It is immutable for the duration of a pipeline run and forms the
// cache key prefix for every stage result.
type Target struct {
	Schema string `json:"schema" yaml:"schema"`
	Table  string `json:"table" yaml:"table"`
}

// String returns the qualified "schema.table" form.
func (t Target) String() string {
	return fmt.Sprintf("%s.%s", t.Schema, t.Table)
}

// Column describes one column as reported by the warehouse metadata
// catalog: name plus declared physical data type.
type Column struct {
	Name     string `json:"name" yaml:"name"`
	DataType string `json:"data_type" yaml:"data_type"`
}
