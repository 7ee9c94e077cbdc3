package recgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    decodeCounter   prometheus.Counter
//	    decodeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordDecode(duration time.Duration, bytes int, err error) {
//	    p.decodeCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordOpen is called after a recording has been opened.
	// records is the catalog size, err is nil if successful.
	RecordOpen(duration time.Duration, records int, err error)

	// RecordDecode is called after each record decode.
	// bytes is the decoded payload size, err is nil if successful.
	RecordDecode(duration time.Duration, bytes int, err error)

	// RecordFilter is called after each filtered view derivation.
	// enabled is the derived subset size out of total records.
	RecordFilter(duration time.Duration, enabled, total int)

	// RecordSearch is called after each timestamp search.
	RecordSearch(duration time.Duration, err error)

	// RecordCacheHit and RecordCacheMiss are called per block cache
	// lookup when a block cache is configured.
	RecordCacheHit()
	RecordCacheMiss()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, int, error)   {}
func (NoopMetricsCollector) RecordDecode(time.Duration, int, error) {}
func (NoopMetricsCollector) RecordFilter(time.Duration, int, int)   {}
func (NoopMetricsCollector) RecordSearch(time.Duration, error)      {}
func (NoopMetricsCollector) RecordCacheHit()                        {}
func (NoopMetricsCollector) RecordCacheMiss()                       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount        atomic.Int64
	OpenErrors       atomic.Int64
	DecodeCount      atomic.Int64
	DecodeErrors     atomic.Int64
	DecodeBytes      atomic.Int64
	DecodeTotalNanos atomic.Int64
	FilterCount      atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, records int, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(duration time.Duration, bytes int, err error) {
	b.DecodeCount.Add(1)
	b.DecodeBytes.Add(int64(bytes))
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// RecordFilter implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFilter(duration time.Duration, enabled, total int) {
	b.FilterCount.Add(1)
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(duration time.Duration, err error) {
	b.SearchCount.Add(1)
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit() {
	b.CacheHits.Add(1)
}

// RecordCacheMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheMiss() {
	b.CacheMisses.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:      b.OpenCount.Load(),
		OpenErrors:     b.OpenErrors.Load(),
		DecodeCount:    b.DecodeCount.Load(),
		DecodeErrors:   b.DecodeErrors.Load(),
		DecodeBytes:    b.DecodeBytes.Load(),
		DecodeAvgNanos: b.getAvgDecodeNanos(),
		FilterCount:    b.FilterCount.Load(),
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		CacheHits:      b.CacheHits.Load(),
		CacheMisses:    b.CacheMisses.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgDecodeNanos() int64 {
	count := b.DecodeCount.Load()
	if count == 0 {
		return 0
	}
	return b.DecodeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount      int64
	OpenErrors     int64
	DecodeCount    int64
	DecodeErrors   int64
	DecodeBytes    int64
	DecodeAvgNanos int64
	FilterCount    int64
	SearchCount    int64
	SearchErrors   int64
	CacheHits      int64
	CacheMisses    int64
}
