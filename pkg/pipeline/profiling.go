package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/veridata-inc/veridata-engine/pkg/agents"
	"github.com/veridata-inc/veridata-engine/pkg/cache"
	"github.com/veridata-inc/veridata-engine/pkg/llm"
	"github.com/veridata-inc/veridata-engine/pkg/models"
	"github.com/veridata-inc/veridata-engine/pkg/retry"
)

// ProfilingStage builds the complete business understanding of a table:
// table context, per-column semantic analysis, and importance triage.
// The three sub-steps are strictly sequential; only the per-column
// analysis fans out.
type ProfilingStage struct {
	db       TableInspector
	client   llm.Client
	cache    *cache.Manager[models.TableProfile]
	pool     *llm.WorkerPool
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewProfilingStage creates the profiling stage runner.
func NewProfilingStage(db TableInspector, client llm.Client, cfg Config, logger *zap.Logger) *ProfilingStage {
	return &ProfilingStage{
		db:       db,
		client:   client,
		cache:    cache.NewManager[models.TableProfile](cfg.CacheRoot, cache.KindAnalysis, logger),
		pool:     llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: cfg.MaxConcurrentChecks}, logger),
		retryCfg: cfg.Retry,
		logger:   logger.Named("profiling"),
	}
}

// Run profiles the target. A fresh cache entry short-circuits
// computation unless forceRefresh is set.
func (s *ProfilingStage) Run(ctx context.Context, target models.Target, forceRefresh bool) (*models.TableProfile, error) {
	s.logger.Info("Starting table profiling", zap.String("target", target.String()))

	if !forceRefresh {
		if cached, ok := s.cache.Load(target); ok {
			s.logger.Info("Using cached profiling results", zap.String("target", target.String()))
			return cached, nil
		}
	}

	columns, err := s.db.ListColumns(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", target, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns", target)
	}

	// Step 1: table context. Everything downstream depends on it, so a
	// failure here aborts the stage.
	tableCtx, err := retry.DoWithResult(ctx, s.retryCfg, func() (*models.TableContext, error) {
		return agents.AnalyzeTable(ctx, s.client, target, columns)
	})
	if err != nil {
		return nil, fmt.Errorf("analyze table %s: %w", target, err)
	}
	s.logger.Info("Table context complete", zap.String("dataset_type", tableCtx.DatasetType))

	// Step 2: per-column semantic analysis, bounded fan-out. Columns
	// that exhaust retries are dropped from the result, not fatal.
	analyses := s.analyzeColumns(ctx, target, columns, *tableCtx)

	// Step 3: importance triage over the full column list.
	triage, err := retry.DoWithResult(ctx, s.retryCfg, func() (*models.TriageResult, error) {
		return agents.TriageColumns(ctx, s.client, target, *tableCtx, columns)
	})
	if err != nil {
		return nil, fmt.Errorf("triage columns of %s: %w", target, err)
	}

	profile := &models.TableProfile{
		TableContext:   *tableCtx,
		ColumnAnalyses: analyses,
		ColumnTriage:   *triage,
	}
	s.cache.Save(target, profile)

	s.logger.Info("Profiling complete",
		zap.String("target", target.String()),
		zap.Int("columns_analyzed", len(analyses)),
		zap.Int("high_priority", len(profile.HighPriorityColumns())))

	return profile, nil
}

func (s *ProfilingStage) analyzeColumns(ctx context.Context, target models.Target, columns []models.Column, tableCtx models.TableContext) []models.ColumnAnalysis {
	items := make([]llm.WorkItem[*models.ColumnAnalysis], len(columns))
	for i, col := range columns {
		col := col
		items[i] = llm.WorkItem[*models.ColumnAnalysis]{
			ID: col.Name,
			Execute: func(ctx context.Context) (*models.ColumnAnalysis, error) {
				return retry.DoWithResult(ctx, s.retryCfg, func() (*models.ColumnAnalysis, error) {
					return agents.AnalyzeColumn(ctx, s.client, target, col, tableCtx)
				})
			},
		}
	}

	results := llm.Process(ctx, s.pool, items, func(completed, total int) {
		s.logger.Debug("Column analysis progress",
			zap.Int("completed", completed),
			zap.Int("total", total))
	})

	analyses := make([]models.ColumnAnalysis, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			s.logger.Warn("Column analysis failed after retries, dropping column",
				zap.String("column", r.ID),
				zap.Error(r.Err))
			continue
		}
		analyses = append(analyses, *r.Result)
	}
	return analyses
}
