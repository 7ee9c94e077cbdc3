// Package recgo reads recordings: files of timestamped, typed records
// belonging to multiple interleaved streams. It provides random access,
// slicing, forward and backward iteration, one-shot filtering and
// timestamp search over a recording without rescanning the file per
// query, with exactly one decode per materialized record:
//
//   - List-like access: Len, Get with negative indexing, Python-style
//     slices (start/stop/step, clamping, reversal)
//   - One-shot filters over record types (exact), stream ids (glob
//     patterns) and an inclusive timestamp window
//   - Timestamp search: lower-bound and epsilon-tolerant nearest lookup,
//     plus prev/next neighbor queries
//   - Automatic configuration record reading (opt-in, fixed per reader)
//   - Local (mmap), in-memory, S3 and MinIO backed storage with an
//     optional block cache for remote reads
//   - A cooperative iter.Seq2 iteration mode and an async facade for
//     cross-goroutine submission
//
// # Quick Start
//
// Open a recording and iterate:
//
//	ctx := context.Background()
//	r, err := recgo.Open(ctx, "session.recg", recgo.WithAutoConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	fmt.Println(r.Summary())
//
//	for rec, err := range r.Records(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(rec.StreamID, rec.Type, rec.Timestamp)
//	}
//
// Filter to one stream's data records and search by time:
//
//	fr, err := r.Filter(func(o *filter.Options) {
//	    o.Streams = []string{"100-*"}
//	    o.RecordTypes = []core.RecordType{core.RecordTypeData}
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pos, err := fr.FindByTime(core.StreamID{Type: 100, Instance: 1}, 1.2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec, err := fr.Get(ctx, pos)
//
// Read from S3 with a block cache:
//
//	bs := s3.NewStore(client, "my-bucket", "recordings/")
//	lru := cache.NewLRUBlockCache(256<<20, nil)
//	r, err := recgo.OpenStore(ctx, bs, "session.recg",
//	    recgo.WithBlockCache(lru, 0),
//	)
//
// # Concurrency
//
// A Reader and every view derived from it share one store handle and are
// not safe for concurrent use; open independent readers for parallel
// work, or wrap one in an AsyncReader to submit reads from multiple
// goroutines. The iter.Seq2 iteration is pull-based: the store decode is
// the only suspension point, and breaking out of the loop stops all
// work.
package recgo
