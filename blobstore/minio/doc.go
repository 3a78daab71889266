// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible services (Ceph, Garage,
// SeaweedFS) without pulling in AWS credentials resolution.
//
// # Basic Usage
//
//	store, err := minio.New("localhost:9000", "palettes", minio.Config{
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	})
//
// Or wrap an existing client:
//
//	store := minio.NewStore(client, "palettes", "frames/")
package minio
