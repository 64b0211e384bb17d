package pipeline

import (
	"strings"

	"github.com/veridata-inc/veridata-engine/pkg/models"
)

// Keyword sets are checked in order: date/time first, because physical
// type names like "timestamp without time zone" would otherwise never
// reach the date bucket. Text is the fallback for everything unmatched.
var (
	dateTypeKeywords      = []string{"date", "time", "timestamp"}
	numericalTypeKeywords = []string{"int", "float", "numeric", "decimal", "double"}
)

// ClassifyColumnType routes a physical data type to the accuracy check
// that fits it. Pure classification, case-insensitive substring match,
// first matching set wins.
func ClassifyColumnType(dataType string) models.CheckKind {
	lower := strings.ToLower(dataType)

	for _, kw := range dateTypeKeywords {
		if strings.Contains(lower, kw) {
			return models.CheckDate
		}
	}
	for _, kw := range numericalTypeKeywords {
		if strings.Contains(lower, kw) {
			return models.CheckNumerical
		}
	}
	return models.CheckText
}
