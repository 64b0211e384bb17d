// Package cli wires configuration, warehouse access, the agent client,
// and the assessment pipeline behind the veridata command line.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/veridata-inc/veridata-engine/pkg/config"
	"github.com/veridata-inc/veridata-engine/pkg/database"
	"github.com/veridata-inc/veridata-engine/pkg/llm"
	"github.com/veridata-inc/veridata-engine/pkg/logging"
	"github.com/veridata-inc/veridata-engine/pkg/models"
	"github.com/veridata-inc/veridata-engine/pkg/pipeline"
	"github.com/veridata-inc/veridata-engine/pkg/report"
	"github.com/veridata-inc/veridata-engine/pkg/retry"
)

type analyzeOptions struct {
	table        string
	schema       string
	forceRefresh bool
	output       string
	verbose      bool
}

// NewRootCommand builds the veridata command tree.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "veridata",
		Short:         "Agentic data quality assessment for PostgreSQL tables",
		Version:       cfg.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCommand(cfg))
	return root
}

func newAnalyzeCommand(cfg *config.Config) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full quality assessment for one table",
		Long: `Profiles the table with LLM agents, then assesses validity,
accuracy, and completeness. Stage results are cached on disk and reused
on subsequent runs unless --force-refresh is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.table, "table", "t", "", "table to assess (required)")
	cmd.Flags().StringVarP(&opts.schema, "schema", "s", "", "schema of the table (defaults to the configured schema)")
	cmd.Flags().BoolVar(&opts.forceRefresh, "force-refresh", false, "recompute every stage, ignoring cached results")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the YAML report to this path")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

func runAnalyze(cmd *cobra.Command, cfg *config.Config, opts *analyzeOptions) error {
	logger, err := logging.New(cfg.Env, opts.verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()

	schema := opts.schema
	if schema == "" {
		schema = cfg.Database.Schema
	}
	target := models.Target{Schema: schema, Table: opts.table}

	dsn := cfg.Database.ConnectionString()
	logger.Debug("Connecting to warehouse",
		zap.String("dsn", logging.SanitizeConnectionString(dsn)))

	db, err := database.NewConnection(ctx, &database.Config{URL: dsn})
	if err != nil {
		return fmt.Errorf("connect to warehouse: %w", err)
	}
	defer db.Close()

	client, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}

	inspector := database.NewInspector(db, logger)
	p := pipeline.New(inspector, client, pipelineConfig(cfg), logger)

	start := time.Now()
	results, err := p.Run(ctx, target, opts.forceRefresh)
	if err != nil {
		return err
	}
	logger.Info("Assessment finished",
		zap.String("target", target.String()),
		zap.Duration("elapsed", time.Since(start)))

	stats, err := inspector.TableStats(ctx, target)
	if err != nil {
		logger.Warn("Table statistics unavailable", zap.Error(err))
		stats = nil
	}

	doc := report.Build(results, stats)
	doc.RenderSummary(cmd.OutOrStdout())

	if opts.output != "" {
		if err := doc.SaveYAML(opts.output); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", opts.output)
	}
	return nil
}

// pipelineConfig translates user-facing configuration into stage knobs.
// RetryAttempts counts total attempts, the retry executor counts retries
// after the first attempt.
func pipelineConfig(cfg *config.Config) pipeline.Config {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.Pipeline.RetryAttempts - 1
	if cfg.Pipeline.RetryBaseDelay > 0 {
		retryCfg.InitialDelay = cfg.Pipeline.RetryBaseDelay
	}

	return pipeline.Config{
		CacheRoot:               cfg.Pipeline.CacheDir,
		MaxConcurrentChecks:     cfg.Pipeline.MaxConcurrentChecks,
		DistinctValuesThreshold: cfg.Pipeline.DistinctValuesThreshold,
		SampleSize:              cfg.Pipeline.SampleSize,
		ValidateHighOnly:        cfg.Pipeline.ValidateHighOnly,
		Retry:                   retryCfg,
	}
}

// Execute runs the CLI and exits non-zero on failure.
func Execute(cfg *config.Config) {
	if err := NewRootCommand(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
