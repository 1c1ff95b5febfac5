package blob

import (
	"context"
	"fmt"
)

// Config selects and configures a Source.
type Config struct {
	Driver string
	Root   string
	S3     S3Config
}

// Open builds the Source named by cfg.Driver (default fs).
func Open(ctx context.Context, cfg Config) (Source, error) {
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return NewFilesystem(cfg.Root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
