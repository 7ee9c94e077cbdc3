// Package blobstore abstracts byte access to recording files.
//
// The container layer reads and writes recordings through the BlobStore
// and Blob interfaces, so the same recording code serves local files
// (mmap-backed via LocalStore), in-memory buffers (MemoryStore), and
// object storage (the s3 and minio subpackages). CachingStore layers a
// block-granular LRU cache over any inner store, which makes random
// record decodes practical against remote backends.
package blobstore
