// Package minio provides a BlobStore implementation using the MinIO
// client, for recordings on MinIO or any S3-compatible storage (Ceph,
// Garage, SeaweedFS).
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "recordings/")
//	r, err := recgo.OpenStore(ctx, store, "session-0042.recg")
//
// Record decodes are served as range reads; wrap the store in
// blobstore.NewCachingStore when decoding many neighboring records.
package minio
