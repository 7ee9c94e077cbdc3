package resource

import (
	"context"
	"io"
)

// RateLimitedReader paces an io.Reader through the controller's IO
// budget. The S3 uploader wraps its part stream with it so a recording
// upload cannot saturate a backend that readers share.
type RateLimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader wraps r with the controller's IO limit.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

func (r *RateLimitedReader) Read(p []byte) (n int, err error) {
	// The read size is unknown up front; charging the full buffer is
	// the conservative choice.
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
