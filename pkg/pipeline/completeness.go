package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/veridata-inc/veridata-engine/pkg/cache"
	"github.com/veridata-inc/veridata-engine/pkg/models"
)

// CompletenessStage measures per-column null counts and fill rates.
// It is pure SQL aggregation and needs neither the table profile nor
// an agent.
type CompletenessStage struct {
	db     TableInspector
	cache  *cache.Manager[models.CompletenessResults]
	logger *zap.Logger
}

// NewCompletenessStage creates the completeness stage runner.
func NewCompletenessStage(db TableInspector, cfg Config, logger *zap.Logger) *CompletenessStage {
	return &CompletenessStage{
		db:     db,
		cache:  cache.NewManager[models.CompletenessResults](cfg.CacheRoot, cache.KindCompleteness, logger),
		logger: logger.Named("completeness"),
	}
}

// Run computes fill rates for every column of the target.
func (s *CompletenessStage) Run(ctx context.Context, target models.Target, forceRefresh bool) (*models.CompletenessResults, error) {
	s.logger.Info("Starting completeness assessment", zap.String("target", target.String()))

	if !forceRefresh {
		if cached, ok := s.cache.Load(target); ok {
			s.logger.Info("Using cached completeness results", zap.String("target", target.String()))
			return cached, nil
		}
	}

	fillRates, err := s.db.CompletenessStats(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("completeness stats for %s: %w", target, err)
	}

	results := &models.CompletenessResults{ColumnFillRates: fillRates}
	s.cache.Save(target, results)

	s.logger.Info("Completeness assessment complete",
		zap.String("target", target.String()),
		zap.Int("columns", len(fillRates)))

	return results, nil
}
