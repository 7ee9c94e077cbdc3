package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/recgo/core"
)

var (
	// ErrBadMagic is returned when a blob does not look like a
	// recording container.
	ErrBadMagic = errors.New("invalid container magic")
	// ErrBadVersion is returned for an unsupported container version.
	ErrBadVersion = errors.New("unsupported container version")
	// ErrCorrupt is returned when a section fails its integrity check.
	ErrCorrupt = errors.New("corrupt container")
	// ErrClosed is returned for reads after Close.
	ErrClosed = errors.New("container is closed")
	// ErrOutOfOrder is returned when a record is written with a
	// timestamp below its predecessor.
	ErrOutOfOrder = errors.New("record timestamp below predecessor")
)

var containerMagic = [4]byte{'R', 'E', 'C', 'G'}

const (
	formatVersion = uint16(1)

	headerLen = 16
	footerLen = 56

	// One index row: timestamp f64, stream type u32, stream instance
	// u32, record type u8, compression u8, reserved u16, offset u64,
	// stored length u32.
	indexRowLen = 34
)

// footerInfo is the decoded trailing footer.
type footerInfo struct {
	DescOff  uint64
	DescLen  uint64
	IndexOff uint64
	IndexLen uint64
	Count    uint64
	DescCRC  uint32
	IndexCRC uint32
	Version  uint16
	Flags    uint16
}

func encodeHeader() []byte {
	buf := make([]byte, headerLen)
	copy(buf[0:4], containerMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], formatVersion)
	// buf[6:16] flags + reserved
	return buf
}

func decodeHeader(buf []byte) error {
	if len(buf) < headerLen {
		return fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if [4]byte(buf[0:4]) != containerMagic {
		return ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(buf[4:6]); v != formatVersion {
		return fmt.Errorf("%w: %d", ErrBadVersion, v)
	}
	return nil
}

func encodeFooter(f footerInfo) []byte {
	buf := make([]byte, footerLen)
	binary.LittleEndian.PutUint64(buf[0:8], f.DescOff)
	binary.LittleEndian.PutUint64(buf[8:16], f.DescLen)
	binary.LittleEndian.PutUint64(buf[16:24], f.IndexOff)
	binary.LittleEndian.PutUint64(buf[24:32], f.IndexLen)
	binary.LittleEndian.PutUint64(buf[32:40], f.Count)
	binary.LittleEndian.PutUint32(buf[40:44], f.DescCRC)
	binary.LittleEndian.PutUint32(buf[44:48], f.IndexCRC)
	binary.LittleEndian.PutUint16(buf[48:50], f.Version)
	binary.LittleEndian.PutUint16(buf[50:52], f.Flags)
	copy(buf[52:56], containerMagic[:])
	return buf
}

func decodeFooter(buf []byte) (footerInfo, error) {
	if len(buf) < footerLen {
		return footerInfo{}, fmt.Errorf("%w: short footer", ErrCorrupt)
	}
	if [4]byte(buf[52:56]) != containerMagic {
		return footerInfo{}, ErrBadMagic
	}
	f := footerInfo{
		DescOff:  binary.LittleEndian.Uint64(buf[0:8]),
		DescLen:  binary.LittleEndian.Uint64(buf[8:16]),
		IndexOff: binary.LittleEndian.Uint64(buf[16:24]),
		IndexLen: binary.LittleEndian.Uint64(buf[24:32]),
		Count:    binary.LittleEndian.Uint64(buf[32:40]),
		DescCRC:  binary.LittleEndian.Uint32(buf[40:44]),
		IndexCRC: binary.LittleEndian.Uint32(buf[44:48]),
		Version:  binary.LittleEndian.Uint16(buf[48:50]),
		Flags:    binary.LittleEndian.Uint16(buf[50:52]),
	}
	if f.Version != formatVersion {
		return footerInfo{}, fmt.Errorf("%w: %d", ErrBadVersion, f.Version)
	}
	return f, nil
}

// indexRow locates one record within the blob.
type indexRow struct {
	Timestamp   float64
	StreamID    core.StreamID
	Type        core.RecordType
	Compression Compression
	Offset      uint64
	StoredLen   uint32
}

func encodeIndexRow(buf []byte, r indexRow) {
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(r.Timestamp))
	binary.LittleEndian.PutUint32(buf[8:12], r.StreamID.Type)
	binary.LittleEndian.PutUint32(buf[12:16], r.StreamID.Instance)
	buf[16] = byte(r.Type)
	buf[17] = byte(r.Compression)
	// buf[18:20] reserved
	binary.LittleEndian.PutUint64(buf[20:28], r.Offset)
	binary.LittleEndian.PutUint32(buf[28:32], r.StoredLen)
	// buf[32:34] reserved
}

func decodeIndexRow(buf []byte) indexRow {
	return indexRow{
		Timestamp: math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8])),
		StreamID: core.StreamID{
			Type:     binary.LittleEndian.Uint32(buf[8:12]),
			Instance: binary.LittleEndian.Uint32(buf[12:16]),
		},
		Type:        core.RecordType(buf[16]),
		Compression: Compression(buf[17]),
		Offset:      binary.LittleEndian.Uint64(buf[20:28]),
		StoredLen:   binary.LittleEndian.Uint32(buf[28:32]),
	}
}
