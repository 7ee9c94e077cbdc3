package recgo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/recgo/core"
)

// Summary returns a human-readable description of the recording: source,
// file tags, enabled counts, decode policy, available streams and types,
// timestamp range and a per-stream record breakdown.
func (r *Reader) Summary() string {
	var b strings.Builder

	b.WriteString(r.s.name)
	b.WriteString("\n")
	b.WriteString(tagsTable(r.s.store.Tags()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "All %d records are enabled (no filters applied)\n", r.Len())
	fmt.Fprintf(&b, "Automatic configuration record reading is %s\n", enabledWord(r.s.opts.autoConfig))
	fmt.Fprintf(&b, "Available Stream IDs: %s\n", streamSet(r.s.catalog.StreamIDs()))
	fmt.Fprintf(&b, "Available Record Types: %s", typeSet(r.s.catalog.RecordTypes()))

	if r.Len() > 0 {
		min, max := r.s.catalog.MinTimestamp(), r.s.catalog.MaxTimestamp()
		fmt.Fprintf(&b, "\n%.2fs of available records: %.2fs - %.2fs", max-min, min, max)
	}

	writeStreamBreakdown(&b, r.s, r.s.catalog.StreamIDs())
	return b.String()
}

// Summary describes the filtered view: the same shape as the reader
// summary plus the enabled subsets alongside the available ones.
func (f *FilteredReader) Summary() string {
	var b strings.Builder

	b.WriteString(f.s.name)
	b.WriteString("\n")
	b.WriteString(tagsTable(f.s.store.Tags()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d/%d records are enabled (based on filters)\n", f.Len(), f.s.catalog.Count())
	fmt.Fprintf(&b, "Automatic configuration record reading is %s\n", enabledWord(f.s.opts.autoConfig))
	fmt.Fprintf(&b, "Available Stream IDs: %s\n", streamSet(f.s.catalog.StreamIDs()))
	fmt.Fprintf(&b, "  Enabled Stream IDs: %s\n", streamSet(f.spec.StreamIDs()))
	fmt.Fprintf(&b, "Available Record Types: %s\n", typeSet(f.s.catalog.RecordTypes()))
	fmt.Fprintf(&b, "  Enabled Record Types: %s", typeSet(f.spec.RecordTypes()))

	if f.Len() > 0 {
		min, max := f.s.catalog.MinTimestamp(), f.s.catalog.MaxTimestamp()
		fmt.Fprintf(&b, "\n%.2fs of available records: %.2fs - %.2fs", max-min, min, max)
		fmt.Fprintf(&b, "\n%.2fs of enabled records: %.2fs - %.2fs", f.maxTS-f.minTS, f.minTS, f.maxTS)
	}

	writeStreamBreakdown(&b, f.s, f.spec.StreamIDs())
	return b.String()
}

// tagsTable renders file tags as a justified table under a centered
// "FILE TAGS" header.
func tagsTable(tags map[string]string) string {
	if len(tags) == 0 {
		return "File contains no file tags."
	}

	keys := make([]string, 0, len(tags))
	keyWidth := 0
	for k := range tags {
		keys = append(keys, k)
		if len(k) > keyWidth {
			keyWidth = len(k)
		}
	}
	sort.Strings(keys)

	rows := make([]string, 0, len(keys))
	tableWidth := 0
	for _, k := range keys {
		row := fmt.Sprintf("%*s| %s", keyWidth, k, tags[k])
		rows = append(rows, row)
		if len(row) > tableWidth {
			tableWidth = len(row)
		}
	}

	var b strings.Builder
	b.WriteString(center(" FILE TAGS ", tableWidth, '-'))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(row)
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", tableWidth))
	return b.String()
}

func center(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(string(pad), left) + s + strings.Repeat(string(pad), right)
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

func streamSet(ids []core.StreamID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

func typeSet(types []core.RecordType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

func writeStreamBreakdown(b *strings.Builder, s *session, ids []core.StreamID) {
	b.WriteString("\n\nAvailable Streams: \n")
	for _, id := range ids {
		fmt.Fprintf(b, "  Stream ID: %s\n      No. of records %s\n", id, countsString(s.catalog.CountsByType(id)))
	}
}

// countsString renders a per-type count map deterministically, in type
// order.
func countsString(counts map[core.RecordType]int) string {
	types := make([]core.RecordType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%s: %d", t, counts[t])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
