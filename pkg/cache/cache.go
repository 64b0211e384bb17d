// Package cache persists stage results as JSON documents keyed by
// (schema, table, stage kind). A cache miss, an unreadable file, and a
// failed write all degrade to recomputation rather than pipeline failure.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/veridata-inc/veridata-engine/pkg/models"
)

// Stage kinds observed on disk.
const (
	KindAnalysis     = "analysis"
	KindValidation   = "validation"
	KindAccuracy     = "accuracy"
	KindCompleteness = "completeness"
)

// Manager caches one result type under a fixed root directory. Files are
// named "{schema}.{table}.{kind}.json". There is no locking: within one
// process a given (target, kind) is only written by one stage invocation,
// and concurrent targets never share a file.
type Manager[T any] struct {
	root   string
	kind   string
	logger *zap.Logger
}

// NewManager creates a cache manager for one stage kind. The root
// directory is created on first use.
func NewManager[T any](root, kind string, logger *zap.Logger) *Manager[T] {
	return &Manager[T]{
		root:   root,
		kind:   kind,
		logger: logger.Named("cache"),
	}
}

func (m *Manager[T]) path(target models.Target) string {
	return filepath.Join(m.root, fmt.Sprintf("%s.%s.%s.json", target.Schema, target.Table, m.kind))
}

// Load returns the cached result for target, or ok=false when no usable
// cache entry exists. Corruption is logged and treated as a miss; it
// never propagates as an error.
func (m *Manager[T]) Load(target models.Target) (*T, bool) {
	data, err := os.ReadFile(m.path(target))
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("Failed to read cache file",
				zap.String("kind", m.kind),
				zap.String("target", target.String()),
				zap.Error(err))
		}
		return nil, false
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		m.logger.Warn("Failed to decode cached results, treating as miss",
			zap.String("kind", m.kind),
			zap.String("target", target.String()),
			zap.Error(err))
		return nil, false
	}
	return &result, true
}

// Save writes the result for target, overwriting any stale entry. A
// failed save is logged and swallowed: the computed result is still
// usable by the caller.
func (m *Manager[T]) Save(target models.Target, result *T) {
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		m.logger.Warn("Failed to create cache directory",
			zap.String("dir", m.root),
			zap.Error(err))
		return
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		m.logger.Warn("Failed to encode results for cache",
			zap.String("kind", m.kind),
			zap.String("target", target.String()),
			zap.Error(err))
		return
	}

	path := m.path(target)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.logger.Warn("Failed to write cache file",
			zap.String("path", path),
			zap.Error(err))
		return
	}

	m.logger.Info("Results cached",
		zap.String("kind", m.kind),
		zap.String("path", path))
}
