// Package blob reads building-model files from where they are kept: a
// local directory, an S3 compatible bucket, or memory in tests.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a source backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

var ErrNotFound = errors.New("blob: not found")

// Info describes one stored model file.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Source is a read-only view of a model store. Keys use forward slashes.
type Source interface {
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}
