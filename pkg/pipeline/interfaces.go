// Package pipeline orchestrates the multi-stage data-quality assessment:
// table profiling, validity assertion, accuracy assertion, and
// completeness assertion over one (schema, table) target. Each stage is
// independently cacheable and re-runnable; per-column failures degrade
// to omission while stage-level failures abort the run.
package pipeline

import (
	"context"

	"github.com/veridata-inc/veridata-engine/pkg/database"
	"github.com/veridata-inc/veridata-engine/pkg/models"
	"github.com/veridata-inc/veridata-engine/pkg/retry"
)

// TableInspector is the warehouse capability the pipeline depends on.
// *database.Inspector implements it; tests inject fakes.
type TableInspector interface {
	ListColumns(ctx context.Context, target models.Target) ([]models.Column, error)
	ColumnType(ctx context.Context, target models.Target, column string) (string, error)
	CountDistinctValues(ctx context.Context, target models.Target, column string) (int64, error)
	DistinctValues(ctx context.Context, target models.Target, column string) ([]string, error)
	SampleDistinctValues(ctx context.Context, target models.Target, column string, limit int) ([]string, error)
	SampleValues(ctx context.Context, target models.Target, column string, limit int) ([]string, error)
	CompletenessStats(ctx context.Context, target models.Target) ([]models.ColumnFillRate, error)
	ExecuteRuleQuery(ctx context.Context, ruleSQL string, sampleLimit int) (int64, []string, error)
}

var _ TableInspector = (*database.Inspector)(nil)

// Config holds the orchestration knobs shared by all stages.
type Config struct {
	// CacheRoot is the directory stage results are persisted under.
	CacheRoot string

	// MaxConcurrentChecks bounds simultaneous per-column agent calls.
	// Each stage gets its own semaphore of this capacity.
	MaxConcurrentChecks int

	// DistinctValuesThreshold is the cardinality below which a text
	// column's full distinct-value set is used as accuracy evidence.
	DistinctValuesThreshold int

	// SampleSize bounds evidence samples for high-cardinality columns.
	SampleSize int

	// ValidateHighOnly restricts the validity and accuracy fan-outs to
	// HIGH-triage columns.
	ValidateHighOnly bool

	// Retry configures the per-agent-call retry budget.
	Retry *retry.Config
}

// DefaultConfig returns the reference knobs: concurrency 3, distinct
// threshold 50, sample size 20, validate every analysed column.
func DefaultConfig(cacheRoot string) Config {
	return Config{
		CacheRoot:               cacheRoot,
		MaxConcurrentChecks:     3,
		DistinctValuesThreshold: 50,
		SampleSize:              20,
		ValidateHighOnly:        false,
		Retry:                   retry.DefaultConfig(),
	}
}
