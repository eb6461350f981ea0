// Package storage writes sweet images to the configured disk.
//
// Two drivers are available:
//   - "local": local filesystem served under STORAGE_URL (default)
//   - "s3": S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/shashiranjanraj/sweetshop/config"
)

// Disk is the driver interface.
type Disk interface {
	// PutStream writes r to path, creating parents as needed.
	PutStream(ctx context.Context, path string, r io.Reader, contentType string) error

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// URL returns the public URL for path.
	URL(path string) string

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error
}

// New returns the disk named by STORAGE_DISK.
func New(ctx context.Context) (Disk, error) {
	switch name := config.StorageDefault(); name {
	case "local":
		return NewLocal(config.StorageLocalRoot(), config.StorageURL())
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DISK %q (supported: local, s3)", name)
	}
}
