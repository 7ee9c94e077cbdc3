package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/recgo"
	"github.com/hupe1980/recgo/blobstore/s3"
	"github.com/hupe1980/recgo/cache"
	"github.com/hupe1980/recgo/core"
	"github.com/hupe1980/recgo/filter"
	"github.com/hupe1980/recgo/resource"
)

// Reads a recording straight from S3. Each record decode is one ranged
// GET; the block cache keeps hot regions local and the resource
// controller bounds how much memory and background IO the reads may use.
//
// Required environment: S3_BUCKET, and a recording at
// s3://$S3_BUCKET/recordings/session.recg.
func main() {
	ctx := context.Background()

	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		log.Fatal("S3_BUCKET is not set")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal(err)
	}
	bs := s3.NewStore(awss3.NewFromConfig(awsCfg), bucket, "recordings/")

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:     256 << 20,
		MaxBackgroundWorkers: 4,
		IOLimitBytesPerSec:   32 << 20,
	})
	lru := cache.NewLRUBlockCache(256<<20, rc)

	r, err := recgo.OpenStore(ctx, bs, "session.recg",
		recgo.WithBlockCache(lru, 256<<10),
		recgo.WithResourceController(rc),
		recgo.WithReadAhead(8),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	fmt.Println(r.Summary())

	fr, err := r.Filter(func(o *filter.Options) {
		o.RecordTypes = []core.RecordType{core.RecordTypeData}
	})
	if err != nil {
		log.Fatal(err)
	}

	n := 0
	for rec, err := range fr.Records(ctx) {
		if err != nil {
			log.Fatal(err)
		}
		n++
		if n > 100 {
			break
		}
		_ = rec
	}

	hits, misses := lru.Stats()
	fmt.Printf("read %d records, block cache: %d hits / %d misses\n", n, hits, misses)
}
