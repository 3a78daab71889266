// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("palettes/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads for streaming writes
//   - CRC32C checksums on Put
//   - Automatic pagination for listing
package s3
