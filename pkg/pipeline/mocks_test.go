package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/veridata-inc/veridata-engine/pkg/models"
	"github.com/veridata-inc/veridata-engine/pkg/retry"
)

// fakeInspector is an in-memory TableInspector for stage tests.
type fakeInspector struct {
	mu sync.Mutex

	columns        []models.Column
	columnTypes    map[string]string
	distinctCounts map[string]int64
	distinctValues map[string][]string
	sampleDistinct map[string][]string
	sampleValues   map[string][]string
	fillRates      []models.ColumnFillRate

	// ruleCounts maps rule SQL to the violation count ExecuteRuleQuery
	// reports for it. ruleErrs forces a query failure instead.
	ruleCounts  map[string]int64
	ruleSamples map[string][]string
	ruleErrs    map[string]error

	listColumnsCalls        int
	distinctValuesCalls     []string
	sampleDistinctCalls     []string
	sampleValuesCalls       []string
	completenessStatsCalls  int
	executeRuleQueryCalls   int
}

func (f *fakeInspector) ListColumns(ctx context.Context, target models.Target) ([]models.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listColumnsCalls++
	return f.columns, nil
}

func (f *fakeInspector) ColumnType(ctx context.Context, target models.Target, column string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.columnTypes[column]; ok {
		return t, nil
	}
	for _, c := range f.columns {
		if c.Name == column {
			return c.DataType, nil
		}
	}
	return "", fmt.Errorf("unknown column %q", column)
}

func (f *fakeInspector) CountDistinctValues(ctx context.Context, target models.Target, column string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.distinctCounts[column], nil
}

func (f *fakeInspector) DistinctValues(ctx context.Context, target models.Target, column string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.distinctValuesCalls = append(f.distinctValuesCalls, column)
	return f.distinctValues[column], nil
}

func (f *fakeInspector) SampleDistinctValues(ctx context.Context, target models.Target, column string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampleDistinctCalls = append(f.sampleDistinctCalls, column)
	return f.sampleDistinct[column], nil
}

func (f *fakeInspector) SampleValues(ctx context.Context, target models.Target, column string, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampleValuesCalls = append(f.sampleValuesCalls, column)
	return f.sampleValues[column], nil
}

func (f *fakeInspector) CompletenessStats(ctx context.Context, target models.Target) ([]models.ColumnFillRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completenessStatsCalls++
	return f.fillRates, nil
}

func (f *fakeInspector) ExecuteRuleQuery(ctx context.Context, ruleSQL string, sampleLimit int) (int64, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executeRuleQueryCalls++
	if err, ok := f.ruleErrs[ruleSQL]; ok {
		return 0, nil, err
	}
	return f.ruleCounts[ruleSQL], f.ruleSamples[ruleSQL], nil
}

var _ TableInspector = (*fakeInspector)(nil)

// fastRetry keeps test runs quick while preserving the retry shape.
func fastRetry() *retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = 1
	cfg.InitialDelay = 0
	cfg.MaxDelay = 0
	return cfg
}

func testConfig(cacheRoot string) Config {
	cfg := DefaultConfig(cacheRoot)
	cfg.Retry = fastRetry()
	return cfg
}

// Mock clients route on these distinguishing fragments of the agent
// system prompts.
const (
	markerTableExplorer  = "profiling a relational database table"
	markerColumnAnalyser = "meaning of one database column"
	markerTriage         = "triaging database columns"
	markerDataValidator  = "writing validation rules"
	markerTextAccuracy   = "values of a text column"
	markerNumericalAcc   = "values of a numeric column"
	markerDateAccuracy   = "values of a date/time column"
)
