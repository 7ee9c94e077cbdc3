package s3

import (
	"context"
	"encoding/base64"
	"io"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/recgo/internal/hash"
	"github.com/hupe1980/recgo/resource"
)

// UploadConfig configures the S3 uploader.
type UploadConfig struct {
	// PartSize is the minimum part size for multipart uploads.
	// Default: 8MB.
	PartSize int64

	// Concurrency is the number of concurrent part uploads.
	// Default: 5 (matches SDK default).
	Concurrency int

	// EnableChecksum enables CRC32C integrity validation.
	// Default: true.
	EnableChecksum bool

	// LeavePartsOnError controls whether failed multipart uploads are
	// automatically aborted. Default: false (abort on error).
	LeavePartsOnError bool

	// RateLimit paces the upload through a shared IO budget so a
	// recording upload cannot saturate a backend that readers share.
	// Nil means unpaced.
	RateLimit *resource.Controller
}

// DefaultUploadConfig returns the default upload settings. Recordings
// are written once and sequentially, so larger parts win over lower
// memory use.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:          8 * 1024 * 1024,
		Concurrency:       5,
		EnableChecksum:    true,
		LeavePartsOnError: false,
	}
}

// newUploader creates a configured S3 uploader.
func newUploader(client Client, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

// computeCRC32C computes the CRC32C checksum as base64 (S3 format).
func computeCRC32C(data []byte) string {
	sum := hash.CRC32C(data)
	b := []byte{byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum)}
	return base64.StdEncoding.EncodeToString(b)
}

// streamingWritableBlob implements blobstore.WritableBlob over a
// multipart upload fed through a pipe. The upload is aborted on context
// cancellation; the object only becomes visible after a clean Close.
type streamingWritableBlob struct {
	pw       *io.PipeWriter
	pr       *io.PipeReader
	uploader *manager.Uploader
	bucket   string
	key      string
	client   Client

	done     chan error
	uploadID atomic.Value // stores *string
	closed   atomic.Bool
	closeErr error
	closeMu  sync.Mutex
}

func newStreamingWritableBlob(
	ctx context.Context,
	client Client,
	uploader *manager.Uploader,
	bucket, key string,
	cfg UploadConfig,
) *streamingWritableBlob {
	pr, pw := io.Pipe()

	blob := &streamingWritableBlob{
		pw:       pw,
		pr:       pr,
		uploader: uploader,
		bucket:   bucket,
		key:      key,
		client:   client,
		done:     make(chan error, 1),
	}

	go blob.uploadLoop(ctx, cfg)

	return blob
}

func (b *streamingWritableBlob) uploadLoop(ctx context.Context, cfg UploadConfig) {
	var body io.Reader = b.pr
	if cfg.RateLimit != nil {
		body = resource.NewRateLimitedReader(ctx, b.pr, cfg.RateLimit)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Body:   body,
	}
	if cfg.EnableChecksum {
		input.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	_, err := b.uploader.Upload(ctx, input)
	_ = b.pr.CloseWithError(err)
	b.done <- err
}

func (b *streamingWritableBlob) Write(p []byte) (int, error) {
	if b.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	return b.pw.Write(p)
}

func (b *streamingWritableBlob) Close() error {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()

	if !b.closed.CompareAndSwap(false, true) {
		return b.closeErr
	}

	// Closing the write end signals EOF to the uploader; then wait for
	// the upload to finish.
	if err := b.pw.Close(); err != nil {
		b.closeErr = err
		return err
	}
	b.closeErr = <-b.done
	return b.closeErr
}

// Abort explicitly aborts an in-progress upload. Exposed for explicit
// cleanup during graceful shutdown.
func (b *streamingWritableBlob) Abort(ctx context.Context) error {
	b.closed.Store(true)
	_ = b.pw.CloseWithError(context.Canceled)

	if idPtr := b.uploadID.Load(); idPtr != nil {
		if uploadID := idPtr.(*string); uploadID != nil && *uploadID != "" {
			_, err := b.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
				Bucket:   aws.String(b.bucket),
				Key:      aws.String(b.key),
				UploadId: uploadID,
			})
			return err
		}
	}
	return nil
}

// Sync is a no-op; data is only committed on Close.
func (b *streamingWritableBlob) Sync() error {
	return nil
}
