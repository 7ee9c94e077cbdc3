package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/recgo"
	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/testutil"
)

func main() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "recgo-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// Produce a synthetic recording to read back.
	if err := testutil.WriteRecording(ctx, blobstore.NewLocalStore(dir), "session.recg", testutil.DefaultLayout); err != nil {
		log.Fatal(err)
	}

	r, err := recgo.Open(ctx, filepath.Join(dir, "session.recg"), recgo.WithAutoConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	fmt.Println(r.Summary())

	fmt.Println("--- First 5 records ---")
	for i := 0; i < 5; i++ {
		rec, err := r.Get(ctx, i)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("#%d stream=%s type=%s ts=%.2f\n", rec.Index, rec.StreamID, rec.Type, rec.Timestamp)
	}

	fmt.Println("--- Last record ---")
	rec, err := r.Get(ctx, -1)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("#%d stream=%s type=%s ts=%.2f metadata=%v\n", rec.Index, rec.StreamID, rec.Type, rec.Timestamp, rec.Metadata())
}
