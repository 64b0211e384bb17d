package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/veridata-inc/veridata-engine/pkg/llm"
	"github.com/veridata-inc/veridata-engine/pkg/models"
)

// Results bundles the outputs of a full pipeline run for one target.
type Results struct {
	Target       models.Target
	Profile      *models.TableProfile
	Validation   *models.ValidationResults
	Accuracy     *models.AccuracyResults
	Completeness *models.CompletenessResults
}

// Pipeline runs the full assessment for a target: profiling first, then
// validity, accuracy, and completeness concurrently. The downstream
// stages share the profile but nothing else, so a failure in one cancels
// its siblings and aborts the run.
type Pipeline struct {
	db           TableInspector
	profiling    *ProfilingStage
	validity     *ValidityStage
	accuracy     *AccuracyStage
	completeness *CompletenessStage
	logger       *zap.Logger
}

// New wires the four stages over shared warehouse and LLM connections.
func New(db TableInspector, client llm.Client, cfg Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		db:           db,
		profiling:    NewProfilingStage(db, client, cfg, logger),
		validity:     NewValidityStage(db, client, cfg, logger),
		accuracy:     NewAccuracyStage(db, client, cfg, logger),
		completeness: NewCompletenessStage(db, cfg, logger),
		logger:       logger.Named("pipeline"),
	}
}

// cancellationError returns the context's error when the run was
// cancelled, or the first cancellation recorded among the fan-out
// results. A cancelled stage must surface as an error, never as an
// empty result set that would then be cached.
func cancellationError[T any](ctx context.Context, results []llm.WorkResult[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
			return r.Err
		}
	}
	return nil
}

// Run executes the full assessment for the target.
func (p *Pipeline) Run(ctx context.Context, target models.Target, forceRefresh bool) (*Results, error) {
	p.logger.Info("Starting data quality assessment",
		zap.String("target", target.String()),
		zap.Bool("force_refresh", forceRefresh))

	profile, err := p.profiling.Run(ctx, target, forceRefresh)
	if err != nil {
		return nil, fmt.Errorf("profiling stage: %w", err)
	}

	columns, err := p.db.ListColumns(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", target, err)
	}

	results := &Results{Target: target, Profile: profile}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		validation, err := p.validity.Run(gctx, target, profile, columns, forceRefresh)
		if err != nil {
			return fmt.Errorf("validity stage: %w", err)
		}
		results.Validation = validation
		return nil
	})
	g.Go(func() error {
		accuracy, err := p.accuracy.Run(gctx, target, profile, forceRefresh)
		if err != nil {
			return fmt.Errorf("accuracy stage: %w", err)
		}
		results.Accuracy = accuracy
		return nil
	})
	g.Go(func() error {
		completeness, err := p.completeness.Run(gctx, target, forceRefresh)
		if err != nil {
			return fmt.Errorf("completeness stage: %w", err)
		}
		results.Completeness = completeness
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Info("Assessment complete", zap.String("target", target.String()))
	return results, nil
}
