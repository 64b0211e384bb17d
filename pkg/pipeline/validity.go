package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/veridata-inc/veridata-engine/pkg/agents"
	"github.com/veridata-inc/veridata-engine/pkg/cache"
	"github.com/veridata-inc/veridata-engine/pkg/llm"
	"github.com/veridata-inc/veridata-engine/pkg/models"
	"github.com/veridata-inc/veridata-engine/pkg/retry"
)

// ValidityStage asks the data-validator agent for SQL-backed rules per
// column, executes each rule query against the live table, and records
// the measured outcomes.
type ValidityStage struct {
	db               TableInspector
	client           llm.Client
	cache            *cache.Manager[models.ValidationResults]
	pool             *llm.WorkerPool
	retryCfg         *retry.Config
	validateHighOnly bool
	logger           *zap.Logger
}

// NewValidityStage creates the validity stage runner.
func NewValidityStage(db TableInspector, client llm.Client, cfg Config, logger *zap.Logger) *ValidityStage {
	return &ValidityStage{
		db:               db,
		client:           client,
		cache:            cache.NewManager[models.ValidationResults](cfg.CacheRoot, cache.KindValidation, logger),
		pool:             llm.NewWorkerPool(llm.WorkerPoolConfig{MaxConcurrent: cfg.MaxConcurrentChecks}, logger),
		retryCfg:         cfg.Retry,
		validateHighOnly: cfg.ValidateHighOnly,
		logger:           logger.Named("validity"),
	}
}

// Run validates the target's columns using the profiling result.
// Columns without a semantic analysis are skipped with a warning: the
// analysis step may legitimately have dropped them after exhausting
// retries.
func (s *ValidityStage) Run(ctx context.Context, target models.Target, profile *models.TableProfile, columns []models.Column, forceRefresh bool) (*models.ValidationResults, error) {
	s.logger.Info("Starting column validation", zap.String("target", target.String()))

	if !forceRefresh {
		if cached, ok := s.cache.Load(target); ok {
			s.logger.Info("Using cached validation results", zap.String("target", target.String()))
			return cached, nil
		}
	}

	analysisIdx := profile.AnalysisIndex()
	eligible := filterColumns(columns, profile, s.validateHighOnly)

	var work []llm.WorkItem[*models.ColumnValidation]
	for _, col := range eligible {
		analysis, ok := analysisIdx[col.Name]
		if !ok {
			s.logger.Warn("No analysis found for column, skipping validation",
				zap.String("column", col.Name))
			continue
		}
		col, analysis := col, analysis
		work = append(work, llm.WorkItem[*models.ColumnValidation]{
			ID: col.Name,
			Execute: func(ctx context.Context) (*models.ColumnValidation, error) {
				return s.validateColumn(ctx, target, col, *analysis)
			},
		})
	}

	workResults := llm.Process(ctx, s.pool, work, nil)
	if err := cancellationError(ctx, workResults); err != nil {
		return nil, err
	}

	results := &models.ValidationResults{}
	for _, r := range workResults {
		if r.Err != nil {
			s.logger.Warn("Column validation failed after retries, omitting column",
				zap.String("column", r.ID),
				zap.Error(r.Err))
			continue
		}
		results.ColumnValidations = append(results.ColumnValidations, *r.Result)
	}

	s.cache.Save(target, results)

	s.logger.Info("Validation complete",
		zap.String("target", target.String()),
		zap.Int("columns_validated", len(results.ColumnValidations)),
		zap.Int64("total_violations", results.TotalViolations()))

	return results, nil
}

func (s *ValidityStage) validateColumn(ctx context.Context, target models.Target, col models.Column, analysis models.ColumnAnalysis) (*models.ColumnValidation, error) {
	proposal, err := retry.DoWithResult(ctx, s.retryCfg, func() (*agents.ColumnRuleProposal, error) {
		return agents.ProposeValidationRules(ctx, s.client, target, col, analysis)
	})
	if err != nil {
		return nil, err
	}

	validation := &models.ColumnValidation{
		ColumnName: proposal.ColumnName,
		ColumnType: proposal.ColumnType,
	}

	for _, rule := range proposal.Rules {
		count, samples, err := s.db.ExecuteRuleQuery(ctx, rule.SQLQuery, models.MaxSampleViolations)
		if err != nil {
			// A broken generated query invalidates that one rule only.
			s.logger.Warn("Rule query failed, dropping rule",
				zap.String("column", col.Name),
				zap.String("rule_id", rule.RuleID),
				zap.Error(err))
			continue
		}
		if len(samples) > models.MaxSampleViolations {
			samples = samples[:models.MaxSampleViolations]
		}
		validation.QualityChecks = append(validation.QualityChecks, models.RuleValidation{
			RuleID:              rule.RuleID,
			OriginalRequirement: rule.OriginalRequirement,
			ValidationRule:      rule.ValidationRule,
			SQLQuery:            rule.SQLQuery,
			Results: models.RuleOutcome{
				ViolationCount:   count,
				Severity:         rule.Severity,
				SampleViolations: samples,
			},
		})
	}

	return validation, nil
}

// filterColumns restricts the fan-out to HIGH-triage columns when the
// policy asks for it.
func filterColumns(columns []models.Column, profile *models.TableProfile, highOnly bool) []models.Column {
	if !highOnly {
		return columns
	}
	high := make(map[string]bool)
	for _, name := range profile.HighPriorityColumns() {
		high[name] = true
	}
	var out []models.Column
	for _, col := range columns {
		if high[col.Name] {
			out = append(out, col)
		}
	}
	return out
}
