package port

import (
	"context"
	"io"
	"time"
)

// ObjectStore uploads objects and issues time-limited retrieval links.
type ObjectStore interface {
	Put(ctx context.Context, obj PutObject) error

	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type PutObject struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}
