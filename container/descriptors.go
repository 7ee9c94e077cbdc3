package container

import (
	"fmt"
	"slices"

	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/store"
	"github.com/vmihailenco/msgpack/v5"
)

// fileInfo is the msgpack-encoded descriptor section: file tags plus
// one entry per stream.
type fileInfo struct {
	Tags    map[string]string `msgpack:"t,omitempty"`
	Streams []streamInfo      `msgpack:"s"`
}

type streamInfo struct {
	StreamType     uint32            `msgpack:"st"`
	StreamInstance uint32            `msgpack:"si"`
	Tags           map[string]string `msgpack:"t,omitempty"`
	FrameRate      float64           `msgpack:"fr,omitempty"`
	Images         bool              `msgpack:"img,omitempty"`
	Audio          bool              `msgpack:"aud,omitempty"`
}

func encodeDescriptors(tags map[string]string, descs []store.Descriptor) ([]byte, error) {
	info := fileInfo{
		Tags:    tags,
		Streams: make([]streamInfo, 0, len(descs)),
	}

	sorted := slices.Clone(descs)
	slices.SortFunc(sorted, func(a, b store.Descriptor) int {
		if a.StreamID.Less(b.StreamID) {
			return -1
		}
		if b.StreamID.Less(a.StreamID) {
			return 1
		}
		return 0
	})

	for _, d := range sorted {
		info.Streams = append(info.Streams, streamInfo{
			StreamType:     d.StreamID.Type,
			StreamInstance: d.StreamID.Instance,
			Tags:           d.Tags,
			FrameRate:      d.EstimatedFrameRate,
			Images:         d.MightContainImages,
			Audio:          d.MightContainAudio,
		})
	}

	buf, err := msgpack.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode descriptors: %w", err)
	}
	return buf, nil
}

func decodeDescriptors(buf []byte) (map[string]string, []store.Descriptor, error) {
	var info fileInfo
	if err := msgpack.Unmarshal(buf, &info); err != nil {
		return nil, nil, fmt.Errorf("%w: descriptors: %s", ErrCorrupt, err)
	}

	descs := make([]store.Descriptor, 0, len(info.Streams))
	for _, s := range info.Streams {
		descs = append(descs, store.Descriptor{
			StreamID:           core.StreamID{Type: s.StreamType, Instance: s.StreamInstance},
			Tags:               s.Tags,
			EstimatedFrameRate: s.FrameRate,
			MightContainImages: s.Images,
			MightContainAudio:  s.Audio,
		})
	}

	tags := info.Tags
	if tags == nil {
		tags = map[string]string{}
	}
	return tags, descs, nil
}
