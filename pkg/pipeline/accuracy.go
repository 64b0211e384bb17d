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

// AccuracyStage judges whether column values plausibly represent what
// the column claims to hold. Each column is routed to a type-specific
// check based on its physical type, with evidence sampled from the
// warehouse.
type AccuracyStage struct {
	db                TableInspector
	client            llm.Client
	cache             *cache.Manager[models.AccuracyResults]
	pool              *llm.WorkerPool
	retryCfg          *retry.Config
	distinctThreshold int
	sampleSize        int
	checkHighOnly     bool
	logger            *zap.Logger
}

// NewAccuracyStage creates the accuracy stage runner.
func NewAccuracyStage(db TableInspector, client llm.Client, cfg Config, logger *zap.Logger) *AccuracyStage {
	return &AccuracyStage{
		db:                db,
		client:            client,
		cache:             cache.NewManager[models.AccuracyResults](cfg.CacheRoot, cache.KindAccuracy, logger),
		pool:              llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: cfg.MaxConcurrentChecks}, logger),
		retryCfg:          cfg.Retry,
		distinctThreshold: cfg.DistinctValuesThreshold,
		sampleSize:        cfg.SampleSize,
		checkHighOnly:     cfg.ValidateHighOnly,
		logger:            logger.Named("accuracy"),
	}
}

// Run checks accuracy for every analysed column of the target, or only
// the HIGH-triage ones when the high-only policy is set. Columns whose
// check fails after retries are omitted from the results.
func (s *AccuracyStage) Run(ctx context.Context, target models.Target, profile *models.TableProfile, forceRefresh bool) (*models.AccuracyResults, error) {
	s.logger.Info("Starting accuracy checks", zap.String("target", target.String()))

	if !forceRefresh {
		if cached, ok := s.cache.Load(target); ok {
			s.logger.Info("Using cached accuracy results", zap.String("target", target.String()))
			return cached, nil
		}
	}

	analyses := profile.ColumnAnalyses
	if s.checkHighOnly {
		analyses = filterAnalyses(analyses, profile.HighPriorityColumns())
	}

	work := make([]llm.WorkItem[models.AccuracyFinding], 0, len(analyses))
	for _, analysis := range analyses {
		analysis := analysis
		work = append(work, llm.WorkItem[models.AccuracyFinding]{
			ID: analysis.ColumnName,
			Execute: func(ctx context.Context) (models.AccuracyFinding, error) {
				return s.checkColumn(ctx, target, analysis)
			},
		})
	}

	workResults := llm.Process(ctx, s.pool, work, nil)
	if err := cancellationError(ctx, workResults); err != nil {
		return nil, err
	}

	var findings []models.AccuracyFinding
	for _, r := range workResults {
		if r.Err != nil {
			s.logger.Warn("Accuracy check failed after retries, omitting column",
				zap.String("column", r.ID),
				zap.Error(r.Err))
			continue
		}
		findings = append(findings, r.Result)
	}

	results := models.PartitionFindings(findings)
	s.cache.Save(target, &results)

	s.logger.Info("Accuracy checks complete",
		zap.String("target", target.String()),
		zap.Int("text_columns", len(results.TextAccuracy)),
		zap.Int("numerical_columns", len(results.NumericalAccuracy)),
		zap.Int("date_columns", len(results.DateAccuracy)))

	return &results, nil
}

// checkColumn routes one column to its type-specific check. The physical
// type is re-read from the warehouse rather than trusted from the agent's
// analysis.
func (s *AccuracyStage) checkColumn(ctx context.Context, target models.Target, analysis models.ColumnAnalysis) (models.AccuracyFinding, error) {
	dataType, err := s.db.ColumnType(ctx, target, analysis.ColumnName)
	if err != nil {
		return models.AccuracyFinding{}, err
	}

	kind := ClassifyColumnType(dataType)

	values, err := s.gatherEvidence(ctx, target, analysis.ColumnName, kind)
	if err != nil {
		return models.AccuracyFinding{}, err
	}

	switch kind {
	case models.CheckText:
		result, err := retry.DoWithResult(ctx, s.retryCfg, func() (*models.TextAccuracy, error) {
			return agents.CheckTextAccuracy(ctx, s.client, analysis.ColumnName, analysis.BusinessDefinition, values)
		})
		if err != nil {
			return models.AccuracyFinding{}, err
		}
		return models.AccuracyFinding{Kind: models.CheckText, Text: result}, nil
	case models.CheckNumerical:
		result, err := retry.DoWithResult(ctx, s.retryCfg, func() (*models.NumericalAccuracy, error) {
			return agents.CheckNumericalAccuracy(ctx, s.client, analysis.ColumnName, analysis.BusinessDefinition, values)
		})
		if err != nil {
			return models.AccuracyFinding{}, err
		}
		return models.AccuracyFinding{Kind: models.CheckNumerical, Numerical: result}, nil
	case models.CheckDate:
		result, err := retry.DoWithResult(ctx, s.retryCfg, func() (*models.DateAccuracy, error) {
			return agents.CheckDateAccuracy(ctx, s.client, analysis.ColumnName, analysis.BusinessDefinition, values)
		})
		if err != nil {
			return models.AccuracyFinding{}, err
		}
		return models.AccuracyFinding{Kind: models.CheckDate, Date: result}, nil
	default:
		return models.AccuracyFinding{}, fmt.Errorf("unknown check kind %q for column %s", kind, analysis.ColumnName)
	}
}

// filterAnalyses keeps only the analyses of the named columns.
func filterAnalyses(analyses []models.ColumnAnalysis, names []string) []models.ColumnAnalysis {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}
	var out []models.ColumnAnalysis
	for _, a := range analyses {
		if keep[a.ColumnName] {
			out = append(out, a)
		}
	}
	return out
}

// gatherEvidence pulls the values the check will reason over. Text
// columns with few distinct values are fully enumerated so categorical
// checks see the complete domain; everything else gets a random sample.
func (s *AccuracyStage) gatherEvidence(ctx context.Context, target models.Target, column string, kind models.CheckKind) ([]string, error) {
	if kind != models.CheckText {
		return s.db.SampleValues(ctx, target, column, s.sampleSize)
	}

	distinct, err := s.db.CountDistinctValues(ctx, target, column)
	if err != nil {
		return nil, err
	}
	if distinct < int64(s.distinctThreshold) {
		return s.db.DistinctValues(ctx, target, column)
	}
	return s.db.SampleDistinctValues(ctx, target, column, s.sampleSize)
}
