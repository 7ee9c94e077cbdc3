package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/recgo"
	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/filter"
	"github.com/hupe1980/recgo/testutil"
	"github.com/hupe1980/recgo/view"
)

func main() {
	ctx := context.Background()

	bs := blobstore.NewMemoryStore()
	if err := testutil.WriteRecording(ctx, bs, "session.recg", testutil.DefaultLayout); err != nil {
		log.Fatal(err)
	}

	r, err := recgo.OpenStore(ctx, bs, "session.recg")
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	// One stream, data records only.
	fr, err := r.Filter(func(o *filter.Options) {
		o.Streams = []string{"100-1"}
		o.RecordTypes = []core.RecordType{core.RecordTypeData}
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(fr.Summary())

	// Jump to the record at or after t=1.2s.
	pos, err := fr.FindByTime(core.StreamID{Type: 100, Instance: 1}, 1.2)
	if err != nil {
		log.Fatal(err)
	}
	rec, err := fr.Get(ctx, pos)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("t>=1.2s: position %d, ts=%.2f\n", pos, rec.Timestamp)

	// Every 10th enabled record via a stepped slice.
	every10th, err := fr.Slice(view.Range{Step: view.Bound(10)})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("every 10th: %d records\n", every10th.Len())

	for rec, err := range every10th.Records(ctx) {
		if err != nil {
			log.Fatal(err)
		}
		if rec.Timestamp > 2.0 {
			break
		}
		fmt.Printf("  ts=%.2f seq=%v\n", rec.Timestamp, rec.Metadata()["seq"])
	}
}
