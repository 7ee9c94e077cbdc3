package recgo

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/container"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/index"
	"github.com/hupe1980/recgo/record"
	"github.com/hupe1980/recgo/store"
	"golang.org/x/sync/errgroup"
)

// MultiReader reads several recordings as one: their catalogs are merged
// into a single timestamp-ordered index space and the full navigation
// surface of Reader applies to it. The merge is stable, so records with
// equal timestamps keep their source order.
type MultiReader struct {
	*Reader
	multi *multiStore
}

// OpenMulti opens the named recordings from the blob store in parallel
// and merges them. The order of names is the provenance order reported
// by SourceOf.
func OpenMulti(ctx context.Context, bs blobstore.BlobStore, names []string, optFns ...Option) (*MultiReader, error) {
	stores := make([]store.Store, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			c, err := container.Open(gctx, bs, name)
			if err != nil {
				return err
			}
			stores[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, st := range stores {
			if st != nil {
				_ = st.Close()
			}
		}
		return nil, err
	}

	return NewMultiReader(stores, optFns...), nil
}

// NewMultiReader merges already-open stores. Ownership transfers; Close
// on the MultiReader closes all of them.
func NewMultiReader(stores []store.Store, optFns ...Option) *MultiReader {
	ms := newMultiStore(stores)
	return &MultiReader{
		Reader: NewReader(ms, optFns...),
		multi:  ms,
	}
}

// SourceOf reports which source recording the record at position i comes
// from: the index into the merge order, and the store's own name.
func (m *MultiReader) SourceOf(i int) (int, string, error) {
	abs, err := m.list.At(i)
	if err != nil {
		return 0, "", &IndexOutOfRangeError{Index: i, Length: m.list.Len()}
	}
	ref := m.multi.refs[abs]
	return ref.store, m.multi.stores[ref.store].Name(), nil
}

// Sources returns the names of the merged recordings in merge order.
func (m *MultiReader) Sources() []string {
	names := make([]string, len(m.multi.stores))
	for i, st := range m.multi.stores {
		names[i] = st.Name()
	}
	return names
}

// recordRef locates a merged record in its source store.
type recordRef struct {
	store int
	local int
}

// multiStore presents several stores as one. It implements store.Store
// over the merged index space; each read forwards to the source store
// holding the record.
type multiStore struct {
	stores  []store.Store
	refs    []recordRef
	entries []index.Entry
	tags    map[string]string
	descs   []store.Descriptor
	name    string
}

func newMultiStore(stores []store.Store) *multiStore {
	perStore := make([][]index.Entry, len(stores))
	total := 0
	for i, st := range stores {
		perStore[i] = st.Entries()
		total += len(perStore[i])
	}

	refs := make([]recordRef, 0, total)
	for si := range stores {
		for li := range perStore[si] {
			refs = append(refs, recordRef{store: si, local: li})
		}
	}

	// Stable sort over the concatenation: ties keep store order, and
	// within a store the local order.
	sort.SliceStable(refs, func(a, b int) bool {
		ra, rb := refs[a], refs[b]
		return perStore[ra.store][ra.local].Timestamp < perStore[rb.store][rb.local].Timestamp
	})

	merged := make([]index.Entry, total)
	for i, ref := range refs {
		merged[i] = perStore[ref.store][ref.local]
	}

	tags := make(map[string]string)
	var descs []store.Descriptor
	seen := make(map[core.StreamID]struct{})
	names := make([]string, len(stores))
	for i, st := range stores {
		names[i] = st.Name()
		for k, v := range st.Tags() {
			if _, ok := tags[k]; !ok {
				tags[k] = v
			}
		}
		for _, d := range st.Descriptors() {
			if _, ok := seen[d.StreamID]; !ok {
				seen[d.StreamID] = struct{}{}
				descs = append(descs, d)
			}
		}
	}
	sort.Slice(descs, func(a, b int) bool { return descs[a].StreamID.Less(descs[b].StreamID) })

	return &multiStore{
		stores:  stores,
		refs:    refs,
		entries: merged,
		tags:    tags,
		descs:   descs,
		name:    strings.Join(names, "+"),
	}
}

func (m *multiStore) Name() string {
	return m.name
}

func (m *multiStore) Entries() []index.Entry {
	return m.entries
}

func (m *multiStore) Tags() map[string]string {
	return m.tags
}

func (m *multiStore) Descriptors() []store.Descriptor {
	return m.descs
}

// ReadRecord forwards to the source store and rewrites the record's
// index into the merged space.
func (m *multiStore) ReadRecord(ctx context.Context, i int) (*record.Record, error) {
	if i < 0 || i >= len(m.refs) {
		return nil, &IndexOutOfRangeError{Index: i, Length: len(m.refs)}
	}
	ref := m.refs[i]
	rec, err := m.stores[ref.store].ReadRecord(ctx, ref.local)
	if err != nil {
		return nil, err
	}
	rec.Index = i
	return rec, nil
}

func (m *multiStore) Close() error {
	var errs []error
	for _, st := range m.stores {
		if err := st.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
