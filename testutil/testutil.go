// Package testutil generates synthetic recordings for tests and
// benchmarks. It is not part of the public API surface.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/container"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/record"
	"github.com/hupe1980/recgo/store"
)

// Layout describes a synthetic recording: a set of streams that each
// carry one configuration record, a fixed number of data records at a
// constant period, and one trailing state record. Data records are
// interleaved across streams per timestep, the way concurrent producers
// land in a real capture.
type Layout struct {
	// Streams is the number of streams; ids run 100-1 .. 100-N.
	Streams int

	// DataRecords is the number of data records per stream.
	DataRecords int

	// StartTime is the timestamp of the first data timestep.
	StartTime float64

	// Period is the time between consecutive data timesteps.
	Period float64

	// Compression selects the container compression.
	Compression container.Compression

	// FileTags annotate the file; nil writes a default set.
	FileTags map[string]string
}

// DefaultLayout is the reference fixture: 19 streams, each with one
// configuration record, 500 data records at 0.04s from t=1.0, and one
// state record, 9538 records in total.
var DefaultLayout = Layout{
	Streams:     19,
	DataRecords: 500,
	StartTime:   1.0,
	Period:      0.04,
	Compression: container.CompressionZSTD,
}

// StreamID returns the id of the n-th layout stream (1-based).
func StreamID(n int) core.StreamID {
	return core.StreamID{Type: 100, Instance: uint32(n)}
}

// BuildRecording writes a recording per the layout into the blob store.
func BuildRecording(tb testing.TB, bs blobstore.BlobStore, name string, layout Layout) {
	tb.Helper()

	if err := WriteRecording(context.Background(), bs, name, layout); err != nil {
		tb.Fatalf("build recording: %v", err)
	}
}

// BuildLocalRecording writes the recording into a fresh temp dir and
// returns its path.
func BuildLocalRecording(tb testing.TB, name string, layout Layout) string {
	tb.Helper()

	dir := tb.TempDir()
	BuildRecording(tb, blobstore.NewLocalStore(dir), name, layout)
	return dir + "/" + name
}

// WriteRecording is the error-returning core of BuildRecording, usable
// outside tests.
func WriteRecording(ctx context.Context, bs blobstore.BlobStore, name string, layout Layout) error {
	blob, err := bs.Create(ctx, name)
	if err != nil {
		return err
	}

	descs := make([]store.Descriptor, layout.Streams)
	for n := 1; n <= layout.Streams; n++ {
		descs[n-1] = store.Descriptor{
			StreamID:           StreamID(n),
			Tags:               map[string]string{"device_serial": fmt.Sprintf("SN-%04d", n)},
			EstimatedFrameRate: 1 / layout.Period,
		}
	}

	tags := layout.FileTags
	if tags == nil {
		tags = map[string]string{
			"capture_version": "1.0",
			"device_type":     "synthetic",
		}
	}

	w, err := container.NewWriter(blob, func(o *container.WriterOptions) {
		o.Compression = layout.Compression
		o.FileTags = tags
		o.Descriptors = descs
	})
	if err != nil {
		return err
	}

	// Configuration records strictly before the first data timestep.
	cfgTime := layout.StartTime - layout.Period
	for n := 1; n <= layout.Streams; n++ {
		if err := w.WriteRecord(StreamID(n), core.RecordTypeConfiguration, cfgTime, configPayload(n, layout)); err != nil {
			return err
		}
	}

	// Data records, interleaved across streams per timestep.
	lastTS := cfgTime
	for step := 0; step < layout.DataRecords; step++ {
		lastTS = layout.StartTime + float64(step)*layout.Period
		for n := 1; n <= layout.Streams; n++ {
			if err := w.WriteRecord(StreamID(n), core.RecordTypeData, lastTS, DataPayload(n, step)); err != nil {
				return err
			}
		}
	}

	// State records at the final timestep.
	for n := 1; n <= layout.Streams; n++ {
		if err := w.WriteRecord(StreamID(n), core.RecordTypeState, lastTS, statePayload(n)); err != nil {
			return err
		}
	}

	return w.Close()
}

func configPayload(stream int, layout Layout) []record.Block {
	return []record.Block{{
		Kind: record.BlockMetadata,
		Entries: []record.Entry{
			{Name: "device_serial", Value: record.String(fmt.Sprintf("SN-%04d", stream))},
			{Name: "nominal_rate", Value: record.Float(1 / layout.Period)},
		},
	}}
}

// DataPayload is the deterministic payload of one data record, keyed by
// stream and step so tests can assert on decoded content.
func DataPayload(stream, step int) []record.Block {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(stream*31 + step*7 + i)
	}
	return []record.Block{
		{
			Kind: record.BlockMetadata,
			Entries: []record.Entry{
				{Name: "seq", Value: record.Int(int64(step))},
				{Name: "stream_no", Value: record.Int(int64(stream))},
			},
		},
		{
			Kind: record.BlockCustom,
			Data: raw,
		},
	}
}

func statePayload(stream int) []record.Block {
	return []record.Block{{
		Kind: record.BlockMetadata,
		Entries: []record.Entry{
			{Name: "shutdown_clean", Value: record.Bool(true)},
		},
	}}
}
