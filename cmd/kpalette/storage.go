package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hupe1980/kpalette/blobstore"
	"github.com/hupe1980/kpalette/blobstore/minio"
	"github.com/hupe1980/kpalette/blobstore/s3"
)

// location is a parsed input or output argument.
//
//	photo.png                       local file
//	s3://bucket/dir/photo.png       Amazon S3
//	minio://host:9000/bucket/photo  MinIO or another S3-compatible service
type location struct {
	Scheme string
	Host   string
	Bucket string
	// Key is the object key, or the local path for local locations.
	Key string
}

func parseLocation(raw string) (location, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		if raw == "" {
			return location{}, fmt.Errorf("empty location")
		}
		return location{Scheme: "file", Key: raw}, nil
	}

	parts := strings.SplitN(rest, "/", 3)
	switch scheme {
	case "s3":
		if parts[0] == "" {
			return location{}, fmt.Errorf("location %q: missing bucket", raw)
		}
		loc := location{Scheme: scheme, Bucket: parts[0]}
		if len(parts) > 1 {
			loc.Key = strings.Join(parts[1:], "/")
		}
		return loc, nil
	case "minio":
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return location{}, fmt.Errorf("location %q: want minio://host/bucket/key", raw)
		}
		loc := location{Scheme: scheme, Host: parts[0], Bucket: parts[1]}
		if len(parts) > 2 {
			loc.Key = parts[2]
		}
		return loc, nil
	default:
		return location{}, fmt.Errorf("location %q: unsupported scheme %q", raw, scheme)
	}
}

func (l location) Remote() bool {
	return l.Scheme != "file"
}

// storeFactory opens blob stores for locations.
type storeFactory struct {
	cfg StorageConfig
}

// open returns a store and the blob name inside it for a file-like location.
func (f storeFactory) open(ctx context.Context, raw string) (blobstore.BlobStore, string, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return nil, "", err
	}

	if !loc.Remote() {
		dir, name := filepath.Split(loc.Key)
		if dir == "" {
			dir = "."
		}
		return blobstore.NewLocalStore(dir), name, nil
	}

	if loc.Key == "" {
		return nil, "", fmt.Errorf("location %q: missing object key", raw)
	}
	store, err := f.remote(ctx, loc)
	if err != nil {
		return nil, "", err
	}
	return store, loc.Key, nil
}

// openDir returns a store rooted at a directory-like location.
func (f storeFactory) openDir(ctx context.Context, raw string) (blobstore.BlobStore, string, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return nil, "", err
	}

	if !loc.Remote() {
		return blobstore.NewLocalStore(loc.Key), "", nil
	}

	store, err := f.remote(ctx, loc)
	if err != nil {
		return nil, "", err
	}
	return store, loc.Key, nil
}

func (f storeFactory) remote(ctx context.Context, loc location) (blobstore.BlobStore, error) {
	switch loc.Scheme {
	case "s3":
		var opts []s3.Option
		if f.cfg.S3.Region != "" {
			opts = append(opts, s3.WithRegion(f.cfg.S3.Region))
		}
		if f.cfg.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(f.cfg.S3.Endpoint, f.cfg.S3.PathStyle))
		}
		return s3.New(ctx, loc.Bucket, opts...)
	case "minio":
		return minio.New(loc.Host, loc.Bucket, minio.Config{
			AccessKey: f.cfg.MinIO.AccessKey,
			SecretKey: f.cfg.MinIO.SecretKey,
			Secure:    f.cfg.MinIO.Secure,
			Region:    f.cfg.MinIO.Region,
		})
	default:
		return nil, fmt.Errorf("unsupported scheme %q", loc.Scheme)
	}
}
