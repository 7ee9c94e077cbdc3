package container

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the record payload compressor.
type Compression uint8

const (
	// CompressionNone stores payloads raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, lighter ratio).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the lower-case compressor name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "invalid"
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Frame format: [RawSize uint32][CompressedSize uint32][Data...].
// CompressedSize == 0 means the data is stored raw.
const frameHeaderLen = 8

// compressFrame compresses a record payload. When compression does not
// pay (ratio above 0.9, or the codec reports incompressible input) the
// payload is stored raw behind the same frame header, so readers never
// need to care what the writer decided.
func compressFrame(data []byte, c Compression) ([]byte, error) {
	var compressed []byte
	var err error

	switch c {
	case CompressionNone:
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		compressed, err = compressZSTD(data)
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		frame := make([]byte, frameHeaderLen+len(data))
		binary.LittleEndian.PutUint32(frame[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(frame[4:], 0)
		copy(frame[frameHeaderLen:], data)
		return frame, nil
	}

	frame := make([]byte, frameHeaderLen+len(compressed))
	binary.LittleEndian.PutUint32(frame[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(frame[4:], uint32(len(compressed)))
	copy(frame[frameHeaderLen:], compressed)
	return frame, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil), nil
}

// decompressFrame restores a record payload from its frame.
func decompressFrame(frame []byte, c Compression) ([]byte, error) {
	if len(frame) < frameHeaderLen {
		return nil, fmt.Errorf("%w: frame shorter than header", ErrCorrupt)
	}

	rawSize := binary.LittleEndian.Uint32(frame[0:])
	compressedSize := binary.LittleEndian.Uint32(frame[4:])
	body := frame[frameHeaderLen:]

	if compressedSize == 0 {
		if uint32(len(body)) < rawSize {
			return nil, fmt.Errorf("%w: raw frame truncated", ErrCorrupt)
		}
		return body[:rawSize], nil
	}
	if uint32(len(body)) < compressedSize {
		return nil, fmt.Errorf("%w: compressed frame truncated", ErrCorrupt)
	}
	body = body[:compressedSize]

	switch c {
	case CompressionLZ4:
		out := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %s", ErrCorrupt, err)
		}
		return out[:n], nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(body, make([]byte, 0, rawSize))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %s", ErrCorrupt, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: compressed frame with compression %q", ErrCorrupt, c)
	}
}
