// Package s3 provides an S3 implementation of the blobstore.BlobStore
// interface, for recordings that live in object storage.
//
// # Usage
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(s3sdk.NewFromConfig(cfg), "my-bucket", "recordings/")
//
//	r, err := recgo.OpenStore(ctx, store, "session-0042.recg")
//
// # Features
//
//   - Range reads: one GetObject per record decode, no full download
//   - Multipart uploads with CRC32C checksums for the writer path
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//
// Pair the store with blobstore.NewCachingStore to amortize request
// latency across neighboring decodes.
package s3
