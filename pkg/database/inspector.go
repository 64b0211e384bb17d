package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/veridata-inc/veridata-engine/pkg/models"
	sqlguard "github.com/veridata-inc/veridata-engine/pkg/sql"
)

// qualifiedTableName returns a properly quoted "schema"."table" reference.
func qualifiedTableName(schemaName, tableName string) string {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	if schemaName == "" {
		return quotedTable
	}
	quotedSchema := pgx.Identifier{schemaName}.Sanitize()
	return quotedSchema + "." + quotedTable
}

// quotedColumn returns a properly quoted column identifier.
func quotedColumn(column string) string {
	return pgx.Identifier{column}.Sanitize()
}

// Inspector answers metadata and value questions about warehouse tables.
// All methods are read-only and safe for concurrent use.
type Inspector struct {
	db     *DB
	logger *zap.Logger
}

// NewInspector creates an inspector over an open connection pool.
func NewInspector(db *DB, logger *zap.Logger) *Inspector {
	return &Inspector{
		db:     db,
		logger: logger.Named("inspector"),
	}
}

// ListColumns returns the table's columns in ordinal order.
// Leading-underscore names are reserved for internal use and excluded.
func (i *Inspector) ListColumns(ctx context.Context, target models.Target) ([]models.Column, error) {
	rows, err := i.db.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`,
		target.Schema, target.Table)
	if err != nil {
		return nil, fmt.Errorf("list columns for %s: %w", target, err)
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var col models.Column
		if err := rows.Scan(&col.Name, &col.DataType); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		if strings.HasPrefix(col.Name, "_") {
			continue
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	return columns, nil
}

// ColumnType returns the declared physical data type of one column.
func (i *Inspector) ColumnType(ctx context.Context, target models.Target, column string) (string, error) {
	var dataType string
	err := i.db.QueryRow(ctx, `
		SELECT data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2 AND column_name = $3`,
		target.Schema, target.Table, column).Scan(&dataType)
	if err != nil {
		return "", fmt.Errorf("get type of %s.%s: %w", target, column, err)
	}
	return dataType, nil
}

// CountDistinctValues returns the number of distinct values in a column.
func (i *Inspector) CountDistinctValues(ctx context.Context, target models.Target, column string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s",
		quotedColumn(column), qualifiedTableName(target.Schema, target.Table))

	var count int64
	if err := i.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count distinct %s.%s: %w", target, column, err)
	}
	return count, nil
}

// DistinctValues returns every distinct non-null value of a column as text.
func (i *Inspector) DistinctValues(ctx context.Context, target models.Target, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s::text FROM %s WHERE %s IS NOT NULL",
		quotedColumn(column), qualifiedTableName(target.Schema, target.Table), quotedColumn(column))
	return i.collectStrings(ctx, query, target, column)
}

// SampleDistinctValues returns a bounded random sample of distinct values.
func (i *Inspector) SampleDistinctValues(ctx context.Context, target models.Target, column string, limit int) ([]string, error) {
	col := quotedColumn(column)
	query := fmt.Sprintf(
		"SELECT %s::text FROM (SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL) AS sub ORDER BY RANDOM() LIMIT %d",
		col, col, qualifiedTableName(target.Schema, target.Table), col, limit)
	return i.collectStrings(ctx, query, target, column)
}

// SampleValues returns a bounded random sample of raw (not necessarily
// distinct) non-null values.
func (i *Inspector) SampleValues(ctx context.Context, target models.Target, column string, limit int) ([]string, error) {
	col := quotedColumn(column)
	query := fmt.Sprintf(
		"SELECT %s::text FROM %s WHERE %s IS NOT NULL ORDER BY RANDOM() LIMIT %d",
		col, qualifiedTableName(target.Schema, target.Table), col, limit)
	return i.collectStrings(ctx, query, target, column)
}

func (i *Inspector) collectStrings(ctx context.Context, query string, target models.Target, column string) ([]string, error) {
	rows, err := i.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query values of %s.%s: %w", target, column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value of %s.%s: %w", target, column, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate values of %s.%s: %w", target, column, err)
	}
	return values, nil
}

// CompletenessStats computes null count and fill-rate percentage for
// every column of the target directly from warehouse aggregates.
func (i *Inspector) CompletenessStats(ctx context.Context, target models.Target) ([]models.ColumnFillRate, error) {
	columns, err := i.ListColumns(ctx, target)
	if err != nil {
		return nil, err
	}

	table := qualifiedTableName(target.Schema, target.Table)

	var totalRows int64
	if err := i.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&totalRows); err != nil {
		return nil, fmt.Errorf("count rows of %s: %w", target, err)
	}

	fillRates := make([]models.ColumnFillRate, 0, len(columns))
	for _, col := range columns {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL", table, quotedColumn(col.Name))
		var nullCount int64
		if err := i.db.QueryRow(ctx, query).Scan(&nullCount); err != nil {
			return nil, fmt.Errorf("count nulls of %s.%s: %w", target, col.Name, err)
		}
		fillRates = append(fillRates, models.ColumnFillRate{
			ColumnName:         col.Name,
			NullCount:          nullCount,
			FillRatePercentage: FillRate(totalRows, nullCount),
		})
	}
	return fillRates, nil
}

// TableStats returns row count plus per-column non-null and distinct
// counts for report enrichment.
func (i *Inspector) TableStats(ctx context.Context, target models.Target) (*models.TableStats, error) {
	columns, err := i.ListColumns(ctx, target)
	if err != nil {
		return nil, err
	}

	table := qualifiedTableName(target.Schema, target.Table)

	var totalRows int64
	if err := i.db.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&totalRows); err != nil {
		return nil, fmt.Errorf("count rows of %s: %w", target, err)
	}

	stats := &models.TableStats{TotalRows: totalRows}
	for _, col := range columns {
		qcol := quotedColumn(col.Name)
		var nonNull, distinct int64
		query := fmt.Sprintf("SELECT COUNT(%s), COUNT(DISTINCT %s) FROM %s", qcol, qcol, table)
		if err := i.db.QueryRow(ctx, query).Scan(&nonNull, &distinct); err != nil {
			return nil, fmt.Errorf("column stats of %s.%s: %w", target, col.Name, err)
		}
		var fillRate float64
		if totalRows > 0 {
			fillRate = float64(nonNull) / float64(totalRows) * 100
		}
		stats.ColumnStats = append(stats.ColumnStats, models.ColumnStatistic{
			ColumnName:    col.Name,
			DataType:      col.DataType,
			NonNullCount:  nonNull,
			FillRate:      fillRate,
			DistinctCount: distinct,
		})
	}
	return stats, nil
}

// ExecuteRuleQuery runs an agent-generated validation query that selects
// violating rows, returning the violation count and a bounded sample of
// first-column values. Only a single SELECT statement is accepted.
func (i *Inspector) ExecuteRuleQuery(ctx context.Context, ruleSQL string, sampleLimit int) (int64, []string, error) {
	trimmed, err := sqlguard.ValidateRuleQuery(ruleSQL)
	if err != nil {
		return 0, nil, err
	}

	var count int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS violations", trimmed)
	if err := i.db.QueryRow(ctx, countQuery).Scan(&count); err != nil {
		return 0, nil, fmt.Errorf("execute rule query: %w", err)
	}

	if count == 0 || sampleLimit <= 0 {
		return count, nil, nil
	}

	sampleQuery := fmt.Sprintf("SELECT * FROM (%s) AS violations LIMIT %d", trimmed, sampleLimit)
	rows, err := i.db.Query(ctx, sampleQuery)
	if err != nil {
		return count, nil, fmt.Errorf("sample rule violations: %w", err)
	}
	defer rows.Close()

	var samples []string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return count, nil, fmt.Errorf("scan violation row: %w", err)
		}
		if len(values) > 0 {
			samples = append(samples, fmt.Sprintf("%v", values[0]))
		}
	}
	if err := rows.Err(); err != nil {
		return count, nil, fmt.Errorf("iterate violation rows: %w", err)
	}
	return count, samples, nil
}

// FillRate converts a null count into a fill-rate percentage. An empty
// table reports 0 rather than dividing by zero.
func FillRate(totalRows, nullCount int64) float64 {
	if totalRows <= 0 {
		return 0
	}
	return float64(totalRows-nullCount) / float64(totalRows) * 100
}
