package recgo

import (
	"context"

	"github.com/hupe1980/recgo/record"
	"golang.org/x/sync/errgroup"
)

// AsyncOptions configure the async facade.
type AsyncOptions struct {
	// QueueSize bounds the number of submitted but unserved jobs.
	// Submissions beyond it block.
	QueueSize int
}

// DefaultAsyncOptions are the defaults applied by NewAsyncReader.
var DefaultAsyncOptions = AsyncOptions{
	QueueSize: 16,
}

// AsyncResult is one delivered record or its error.
type AsyncResult struct {
	Record *record.Record
	Err    error
}

type asyncJob struct {
	ctx context.Context
	i   int
	out chan AsyncResult
}

// AsyncReader serves record reads from a background worker that owns the
// underlying reader. Jobs can be submitted from any goroutine; results
// arrive on per-call channels in submission order. This trades the
// single-owner reader for a submission surface that is safe to share.
type AsyncReader struct {
	r    *Reader
	jobs chan asyncJob
	g    *errgroup.Group
}

// NewAsyncReader wraps a reader into the async facade. Ownership of the
// reader transfers: the caller must not use it directly anymore, and
// Close on the AsyncReader closes it.
func NewAsyncReader(r *Reader, optFns ...func(o *AsyncOptions)) *AsyncReader {
	opts := DefaultAsyncOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}

	a := &AsyncReader{
		r:    r,
		jobs: make(chan asyncJob, opts.QueueSize),
		g:    &errgroup.Group{},
	}
	a.g.Go(a.serve)
	return a
}

// serve is the single worker loop: exactly one goroutine touches the
// reader, preserving its single-owner contract.
func (a *AsyncReader) serve() error {
	for job := range a.jobs {
		rec, err := a.r.Get(job.ctx, job.i)
		job.out <- AsyncResult{Record: rec, Err: err}
	}
	return nil
}

// Len returns the number of records in the underlying view.
func (a *AsyncReader) Len() int {
	return a.r.Len()
}

// Get submits a read for position i and returns the channel its result
// will be delivered on. The channel is buffered; the result can be
// collected at any time. Negative positions count from the end, as with
// Reader.Get.
func (a *AsyncReader) Get(ctx context.Context, i int) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	a.jobs <- asyncJob{ctx: ctx, i: i, out: out}
	return out
}

// GetAwait submits a read and blocks for its result, respecting ctx
// while waiting.
func (a *AsyncReader) GetAwait(ctx context.Context, i int) (*record.Record, error) {
	select {
	case res := <-a.Get(ctx, i):
		return res.Record, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close drains the queue, stops the worker and closes the underlying
// reader. Submitting after Close panics.
func (a *AsyncReader) Close() error {
	close(a.jobs)
	if err := a.g.Wait(); err != nil {
		_ = a.r.Close()
		return err
	}
	return a.r.Close()
}
