package port

import (
	"context"
	"io"
	"time"
)

// PutObjectInput describes a document to store remotely.
type PutObjectInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// StoredObject is the location of a stored document.
type StoredObject struct {
	Key  string
	URL  string
	ETag string
}

// ObjectStorage abstracts the remote document store. The bucket is fixed by configuration.
type ObjectStorage interface {
	Put(ctx context.Context, input PutObjectInput) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
