// Package blob uploads run artifacts to object storage.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadError wraps a blob-store failure with the destination it was
// heading for. The orchestrator does not swallow these.
type UploadError struct {
	Dest string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Dest, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Store is the consumed blob-storage collaborator.
type Store interface {
	// Put writes data at dest. With overwrite false an existing object is
	// left untouched.
	Put(ctx context.Context, data []byte, dest string, overwrite bool) error
	// PutDir uploads a directory's full contents under prefix.
	PutDir(ctx context.Context, localDir, prefix string, overwrite bool) error
}

// MinioStore implements Store against a MinIO/S3 endpoint. The container
// URL carries both the endpoint and the bucket: scheme://host[:port]/bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(containerURL, accessKey, secretKey string, useSSL bool) (*MinioStore, error) {
	u, err := url.Parse(containerURL)
	if err != nil {
		return nil, fmt.Errorf("parse container url: %w", err)
	}
	bucket := strings.Trim(u.Path, "/")
	if u.Host == "" || bucket == "" {
		return nil, fmt.Errorf("container url %q must look like scheme://host/bucket", containerURL)
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect blob store: %w", err)
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, data []byte, dest string, overwrite bool) error {
	if err := s.ensureBucket(ctx); err != nil {
		return &UploadError{Dest: dest, Err: err}
	}
	if !overwrite {
		if _, err := s.client.StatObject(ctx, s.bucket, dest, minio.StatObjectOptions{}); err == nil {
			return nil
		}
	}
	_, err := s.client.PutObject(ctx, s.bucket, dest, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType(dest)})
	if err != nil {
		return &UploadError{Dest: dest, Err: err}
	}
	return nil
}

func (s *MinioStore) PutDir(ctx context.Context, localDir, prefix string, overwrite bool) error {
	if err := s.ensureBucket(ctx); err != nil {
		return &UploadError{Dest: prefix, Err: err}
	}
	return filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return &UploadError{Dest: prefix, Err: err}
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return &UploadError{Dest: prefix, Err: err}
		}
		dest := path.Join(prefix, filepath.ToSlash(rel))
		if !overwrite {
			if _, err := s.client.StatObject(ctx, s.bucket, dest, minio.StatObjectOptions{}); err == nil {
				return nil
			}
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return &UploadError{Dest: dest, Err: err}
		}
		if _, err := s.client.PutObject(ctx, s.bucket, dest, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: contentType(dest)}); err != nil {
			return &UploadError{Dest: dest, Err: err}
		}
		return nil
	})
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func contentType(dest string) string {
	switch strings.ToLower(path.Ext(dest)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".html":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
