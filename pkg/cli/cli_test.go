package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/veridata-inc/veridata-engine/pkg/config"
)

func testCfg() *config.Config {
	return &config.Config{
		Version: "test",
		Pipeline: config.PipelineConfig{
			MaxConcurrentChecks:     3,
			DistinctValuesThreshold: 50,
			SampleSize:              20,
			CacheDir:                "/tmp/veridata-cache",
			RetryAttempts:           3,
			RetryBaseDelay:          2 * time.Second,
		},
	}
}

func TestAnalyzeRequiresTable(t *testing.T) {
	root := NewRootCommand(testCfg())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"analyze"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected an error when --table is missing")
	}
	if !strings.Contains(err.Error(), "table") {
		t.Errorf("error %q should mention the table flag", err)
	}
}

func TestPipelineConfig(t *testing.T) {
	cfg := pipelineConfig(testCfg())

	if cfg.CacheRoot != "/tmp/veridata-cache" {
		t.Errorf("cache root = %q", cfg.CacheRoot)
	}
	if cfg.MaxConcurrentChecks != 3 || cfg.DistinctValuesThreshold != 50 || cfg.SampleSize != 20 {
		t.Errorf("unexpected knobs: %+v", cfg)
	}
	// 3 attempts means 2 retries after the first call.
	if cfg.Retry.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.InitialDelay != 2*time.Second {
		t.Errorf("initial delay = %v, want 2s", cfg.Retry.InitialDelay)
	}
}
