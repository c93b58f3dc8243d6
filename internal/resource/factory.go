package resource

import (
	"context"
	"fmt"
	"io"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver      Driver
	Dir         string
	SQLitePath  string
	S3          S3Config
	PostgresDSN string
}

// Open constructs the loader selected by opts.Driver (default embedded).
// The returned closer releases backend connections and is never nil.
func Open(ctx context.Context, opts Options) (Loader, io.Closer, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverEmbedded
	}
	switch driver {
	case DriverEmbedded:
		return NewEmbedded(), nopCloser{}, nil
	case DriverDir:
		l, err := NewDir(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return l, nopCloser{}, nil
	case DriverSQLite:
		l, err := NewSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	case DriverS3:
		l, err := NewS3(ctx, opts.S3)
		if err != nil {
			return nil, nil, err
		}
		return l, nopCloser{}, nil
	case DriverPostgres:
		l, err := NewPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return l, l, nil
	case DriverMemory:
		return NewMemory(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown fixture driver %s", driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
