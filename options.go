package recgo

import (
	"log/slog"

	"github.com/hupe1980/recgo/cache"
	"github.com/hupe1980/recgo/resource"
)

type options struct {
	autoConfig       bool
	logger           *Logger
	metricsCollector MetricsCollector
	blockCache       cache.BlockCache
	blockSize        int64
	readAhead        int
	controller       *resource.Controller
}

// Option configures reader construction behavior.
//
// The decode policy (auto-config on or off) is fixed at construction and
// immutable for the reader's lifetime; filtered views inherit it.
type Option func(*options)

// WithAutoConfig enables automatic configuration record reading: before
// any record is materialized, the latest preceding configuration record
// of its stream is decoded first. Without this option the reader decodes
// exactly the requested record and nothing else.
func WithAutoConfig() Option {
	return func(o *options) {
		o.autoConfig = true
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := recgo.NewJSONLogger(slog.LevelInfo)
//	r, _ := recgo.Open(ctx, path, recgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetrics configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &recgo.BasicMetricsCollector{}
//	r, _ := recgo.Open(ctx, path, recgo.WithMetrics(metrics))
//	// ... use r ...
//	stats := metrics.GetStats()
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithBlockCache interposes a block-granular cache between the reader
// and its blob store. Worth it for remote stores where each decode is a
// ranged network read; pointless for mmap-backed local files.
//
// blockSize <= 0 selects the blob store default.
func WithBlockCache(bc cache.BlockCache, blockSize int64) Option {
	return func(o *options) {
		o.blockCache = bc
		o.blockSize = blockSize
	}
}

// WithReadAhead warms the next n records in the background while
// iterating forward. Only effective together with WithBlockCache: the
// warm-up reads populate the block cache so the foreground decode finds
// its bytes locally. Background reads are gated by the resource
// controller when one is attached.
func WithReadAhead(n int) Option {
	return func(o *options) {
		o.readAhead = n
	}
}

// WithResourceController attaches a shared resource controller gating
// background work, managed cache memory and IO pacing. A nil controller
// leaves everything unbounded.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}
