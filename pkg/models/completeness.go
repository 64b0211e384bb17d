package models

// ColumnFillRate holds the completeness numbers for one column, computed
// from warehouse aggregates without any agent involvement.
type ColumnFillRate struct {
	ColumnName         string  `json:"column_name" yaml:"column_name"`
	NullCount          int64   `json:"null_count" yaml:"null_count"`
	FillRatePercentage float64 `json:"fill_rate_percentage" yaml:"fill_rate_percentage"`
}

// CompletenessResults is the completeness stage result for a target.
type CompletenessResults struct {
	ColumnFillRates []ColumnFillRate `json:"column_fill_rates" yaml:"column_fill_rates"`
}

// TableStats holds row-level statistics for a table.
type TableStats struct {
	TotalRows   int64             `json:"total_rows" yaml:"total_rows"`
	ColumnStats []ColumnStatistic `json:"column_stats" yaml:"column_stats"`
}

// ColumnStatistic is one column's share of the table statistics.
type ColumnStatistic struct {
	ColumnName    string  `json:"column_name" yaml:"column_name"`
	DataType      string  `json:"data_type" yaml:"data_type"`
	NonNullCount  int64   `json:"non_null_count" yaml:"non_null_count"`
	FillRate      float64 `json:"fill_rate" yaml:"fill_rate"`
	DistinctCount int64   `json:"distinct_count" yaml:"distinct_count"`
}
