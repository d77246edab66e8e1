package masonry

import (
	"go.uber.org/zap"

	"github.com/quillon/masonry/internal/blockcache"
	"github.com/quillon/masonry/internal/schema"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = 100
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithSchema replaces the built-in block type set. The specs are
// validated by New; an invalid spec fails construction.
func WithSchema(specs []BlockSpec) Option {
	return func(e *Editor) {
		e.specs = specs
	}
}

// WithLogger sets the editor's logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDGenerator sets the function generating ids for blocks created
// without one. The default is uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithCacheConfig sets the identity cache's bounds.
func WithCacheConfig(config CacheConfig) Option {
	return func(e *Editor) {
		e.cacheConfig = config
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Editor) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithInitialBlocks seeds the document with the given blocks. Ignored
// when WithDocumentJSON is also supplied.
func WithInitialBlocks(partials ...PartialBlock) Option {
	return func(e *Editor) {
		e.initBlocks = partials
	}
}

// WithDocumentJSON seeds the document from engine-format JSON, as
// produced by DocJSON.
func WithDocumentJSON(data []byte) Option {
	return func(e *Editor) {
		e.initJSON = data
	}
}

// DefaultCacheConfig returns the identity cache defaults.
func DefaultCacheConfig() CacheConfig {
	return blockcache.DefaultConfig()
}

// DefaultSpecs returns the built-in block type set.
func DefaultSpecs() []BlockSpec {
	return schema.Default()
}
