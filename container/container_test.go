package container

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/record"
	"github.com/hupe1980/recgo/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptors() []store.Descriptor {
	return []store.Descriptor{
		{
			StreamID:           core.StreamID{Type: 100, Instance: 1},
			Tags:               map[string]string{"device": "cam-front"},
			EstimatedFrameRate: 25,
			MightContainImages: true,
		},
		{
			StreamID: core.StreamID{Type: 200, Instance: 1},
			Tags:     map[string]string{"device": "imu"},
		},
	}
}

func writeRecording(t *testing.T, bs blobstore.BlobStore, name string, optFns ...func(o *WriterOptions)) {
	t.Helper()

	ctx := context.Background()

	blob, err := bs.Create(ctx, name)
	require.NoError(t, err)

	w, err := NewWriter(blob, append([]func(o *WriterOptions){func(o *WriterOptions) {
		o.FileTags = map[string]string{"capture_session": "unit"}
		o.Descriptors = testDescriptors()
	}}, optFns...)...)
	require.NoError(t, err)

	cam := core.StreamID{Type: 100, Instance: 1}
	imu := core.StreamID{Type: 200, Instance: 1}

	require.NoError(t, w.WriteRecord(cam, core.RecordTypeConfiguration, 1.0, []record.Block{{
		Kind: record.BlockMetadata,
		Entries: []record.Entry{
			{Name: "exposure_mode", Value: record.String("auto")},
		},
	}}))
	require.NoError(t, w.WriteRecord(imu, core.RecordTypeConfiguration, 1.0, []record.Block{{
		Kind: record.BlockMetadata,
		Entries: []record.Entry{
			{Name: "rate_hz", Value: record.Int(200)},
		},
	}}))
	require.NoError(t, w.WriteRecord(cam, core.RecordTypeData, 1.04, []record.Block{{
		Kind:  record.BlockImage,
		Image: &record.ImageSpec{Width: 64, Height: 48, PixelFormat: "grey8"},
		Data:  bytes.Repeat([]byte{0xAB}, 64*48),
	}}))
	require.NoError(t, w.WriteRecord(imu, core.RecordTypeData, 1.05, []record.Block{{
		Kind: record.BlockMetadata,
		Entries: []record.Entry{
			{Name: "accel_x", Value: record.Float(0.12)},
		},
	}}))
	require.NoError(t, w.WriteRecord(cam, core.RecordTypeState, 1.08, []record.Block{{
		Kind: record.BlockCustom,
		Data: []byte("stream closing"),
	}}))

	require.Equal(t, 5, w.Count())
	require.NoError(t, w.Close())
}

func TestContainerRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(comp.String(), func(t *testing.T) {
			bs := blobstore.NewMemoryStore()
			writeRecording(t, bs, "trip.recg", func(o *WriterOptions) {
				o.Compression = comp
			})

			c, err := Open(ctx, bs, "trip.recg")
			require.NoError(t, err)
			defer c.Close()

			assert.Equal(t, "trip.recg", c.Name())
			assert.Equal(t, map[string]string{"capture_session": "unit"}, c.Tags())
			require.Len(t, c.Descriptors(), 2)
			assert.Equal(t, "cam-front", c.Descriptors()[0].Tags["device"])

			entries := c.Entries()
			require.Len(t, entries, 5)
			for i := 1; i < len(entries); i++ {
				assert.LessOrEqual(t, entries[i-1].Timestamp, entries[i].Timestamp)
			}

			rec, err := c.ReadRecord(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, 2, rec.Index)
			assert.Equal(t, core.StreamID{Type: 100, Instance: 1}, rec.StreamID)
			assert.Equal(t, core.RecordTypeData, rec.Type)
			assert.InDelta(t, 1.04, rec.Timestamp, 1e-9)
			require.Len(t, rec.Blocks, 1)
			require.NotNil(t, rec.Blocks[0].Image)
			assert.Equal(t, uint32(64), rec.Blocks[0].Image.Width)
			assert.Equal(t, bytes.Repeat([]byte{0xAB}, 64*48), rec.Blocks[0].Data)

			rec, err = c.ReadRecord(ctx, 3)
			require.NoError(t, err)
			md := rec.Metadata()
			assert.Equal(t, record.Float(0.12), md["accel_x"])
		})
	}
}

func TestWriterRejectsOutOfOrder(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	blob, err := bs.Create(ctx, "ooo.recg")
	require.NoError(t, err)

	w, err := NewWriter(blob, func(o *WriterOptions) {
		o.Descriptors = testDescriptors()
	})
	require.NoError(t, err)

	cam := core.StreamID{Type: 100, Instance: 1}
	require.NoError(t, w.WriteRecord(cam, core.RecordTypeData, 2.0, nil))

	err = w.WriteRecord(cam, core.RecordTypeData, 1.5, nil)
	require.ErrorIs(t, err, ErrOutOfOrder)

	// Equal timestamps are fine.
	require.NoError(t, w.WriteRecord(cam, core.RecordTypeData, 2.0, nil))
	require.NoError(t, w.Close())
}

func TestWriterRejectsUndeclaredStream(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	blob, err := bs.Create(ctx, "undeclared.recg")
	require.NoError(t, err)

	w, err := NewWriter(blob, func(o *WriterOptions) {
		o.Descriptors = testDescriptors()
	})
	require.NoError(t, err)

	err = w.WriteRecord(core.StreamID{Type: 999, Instance: 1}, core.RecordTypeData, 1.0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no descriptor")
	require.NoError(t, w.Close())
}

func TestReadAfterClose(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	writeRecording(t, bs, "closed.recg")

	c, err := Open(ctx, bs, "closed.recg")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close()) // idempotent

	_, err = c.ReadRecord(ctx, 0)
	require.ErrorIs(t, err, ErrClosed)
}

func TestReadRecordOutOfBounds(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	writeRecording(t, bs, "bounds.recg")

	c, err := Open(ctx, bs, "bounds.recg")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ReadRecord(ctx, -1)
	require.Error(t, err)
	_, err = c.ReadRecord(ctx, 5)
	require.Error(t, err)
}

func TestOpenRejectsGarbage(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()

	blob, err := bs.Create(ctx, "garbage.bin")
	require.NoError(t, err)
	_, err = blob.Write([]byte(strings.Repeat("not a recording at all ", 20)))
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	_, err = Open(ctx, bs, "garbage.bin")
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestOpenRejectsTruncated(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()

	blob, err := bs.Create(ctx, "tiny.bin")
	require.NoError(t, err)
	_, err = blob.Write([]byte("RECG"))
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	_, err = Open(ctx, bs, "tiny.bin")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenDetectsIndexCorruption(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	writeRecording(t, bs, "orig.recg")

	orig, err := bs.Open(ctx, "orig.recg")
	require.NoError(t, err)
	raw := make([]byte, orig.Size())
	_, err = orig.ReadAt(ctx, raw, 0)
	require.NoError(t, err)
	require.NoError(t, orig.Close())

	// Flip a byte inside the trailing index section.
	raw[len(raw)-footerLen-10] ^= 0xFF

	blob, err := bs.Create(ctx, "bitrot.recg")
	require.NoError(t, err)
	_, err = blob.Write(raw)
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	_, err = Open(ctx, bs, "bitrot.recg")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenRejectsWrappingFooterSections(t *testing.T) {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	writeRecording(t, bs, "orig.recg")

	orig, err := bs.Open(ctx, "orig.recg")
	require.NoError(t, err)
	raw := make([]byte, orig.Size())
	_, err = orig.ReadAt(ctx, raw, 0)
	require.NoError(t, err)
	require.NoError(t, orig.Close())

	size := uint64(len(raw))

	reopen := func(t *testing.T, name string, f footerInfo) error {
		t.Helper()
		hostile := append(append([]byte{}, raw[:len(raw)-footerLen]...), encodeFooter(f)...)
		blob, err := bs.Create(ctx, name)
		require.NoError(t, err)
		_, err = blob.Write(hostile)
		require.NoError(t, err)
		require.NoError(t, blob.Close())
		_, err = Open(ctx, bs, name)
		return err
	}

	t.Run("descriptor section wraps past the end", func(t *testing.T) {
		err := reopen(t, "wrap-desc.recg", footerInfo{
			DescOff:  ^uint64(0) - 8,
			DescLen:  64,
			IndexOff: size - footerLen,
			Version:  formatVersion,
		})
		require.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("record count wraps the index length", func(t *testing.T) {
		// Count*indexRowLen wraps to 0, matching the zero IndexLen.
		err := reopen(t, "wrap-count.recg", footerInfo{
			DescOff:  headerLen,
			IndexOff: size - footerLen,
			Count:    1 << 63,
			Version:  formatVersion,
		})
		require.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestRawFallbackOnIncompressiblePayload(t *testing.T) {
	// Already-random-looking data should be stored raw and still round-trip.
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i*73 + 11)
	}

	frame, err := compressFrame(payload, CompressionZSTD)
	require.NoError(t, err)

	out, err := decompressFrame(frame, CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}
