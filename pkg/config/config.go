package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for veridata-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables override YAML values. Secrets only
// come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// Database is the warehouse the pipeline inspects.
	Database DatabaseConfig `yaml:"database"`

	// AI is the agent endpoint configuration.
	AI AIConfig `yaml:"ai"`

	// Pipeline holds the orchestration knobs.
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// DatabaseConfig holds PostgreSQL warehouse configuration.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"VD_DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"VD_DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"VD_DB_USER" env-default:"veridata"`
	Password string `yaml:"-" env:"VD_DB_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"VD_DB_NAME" env-default:"veridata"`
	Schema   string `yaml:"schema" env:"VD_DB_SCHEMA" env-default:"public"`
	SSLMode  string `yaml:"ssl_mode" env:"VD_DB_SSLMODE" env-default:"disable"`
}

// ConnectionString builds the pgx connection URL.
func (d *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Database,
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// AIConfig holds the agent endpoint settings.
type AIConfig struct {
	BaseURL string `yaml:"llm_base_url" env:"LLM_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string `yaml:"llm_model" env:"LLM_MODEL" env-default:"gpt-4o"`
	APIKey  string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML
}

// PipelineConfig holds the orchestration knobs.
type PipelineConfig struct {
	// MaxConcurrentChecks gates simultaneous per-column agent calls
	// within each stage. Each stage gets its own bound.
	MaxConcurrentChecks int `yaml:"max_concurrent_checks" env:"VD_MAX_CONCURRENT_CHECKS" env-default:"3"`

	// DistinctValuesThreshold is the cardinality below which a text
	// column's full distinct-value set is used as accuracy evidence.
	DistinctValuesThreshold int `yaml:"distinct_values_threshold" env:"VD_DISTINCT_VALUES_THRESHOLD" env-default:"50"`

	// SampleSize bounds evidence samples for high-cardinality columns.
	SampleSize int `yaml:"sample_size" env:"VD_SAMPLE_SIZE" env-default:"20"`

	// CacheDir is the root directory for stage result caches.
	// Defaults to ~/.veridata/cache when empty.
	CacheDir string `yaml:"cache_dir" env:"VD_CACHE_DIR" env-default:""`

	// ValidateHighOnly restricts the validity and accuracy fan-outs to HIGH-triage
	// columns. Default validates every analysed column.
	ValidateHighOnly bool `yaml:"validate_high_only" env:"VD_VALIDATE_HIGH_ONLY" env-default:"false"`

	// RetryAttempts is the total attempt budget per agent call.
	RetryAttempts int `yaml:"retry_attempts" env:"VD_RETRY_ATTEMPTS" env-default:"3"`

	// RetryBaseDelay is the first backoff delay.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" env:"VD_RETRY_BASE_DELAY" env-default:"1s"`
}

// Load reads configuration from config.yaml (if present) and the
// environment. Environment variables win.
func Load(version string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read env config: %w", err)
		}
	}

	cfg.Version = version

	if cfg.Pipeline.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir for cache: %w", err)
		}
		cfg.Pipeline.CacheDir = filepath.Join(home, ".veridata", "cache")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks constraints that cleanenv defaults cannot express.
func (c *Config) Validate() error {
	if c.Pipeline.MaxConcurrentChecks < 1 {
		return fmt.Errorf("max_concurrent_checks must be >= 1, got %d", c.Pipeline.MaxConcurrentChecks)
	}
	if c.Pipeline.SampleSize < 1 {
		return fmt.Errorf("sample_size must be >= 1, got %d", c.Pipeline.SampleSize)
	}
	if c.Pipeline.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be >= 1, got %d", c.Pipeline.RetryAttempts)
	}
	if c.AI.BaseURL == "" {
		return fmt.Errorf("llm_base_url is required")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("llm_model is required")
	}
	return nil
}
