package storage

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned when a storage ref does not resolve to an object.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore reads video objects by storage ref. OpenRange returns a reader
// over [start, end] inclusive; the caller owns the returned body and must
// close it on every exit path.
type BlobStore interface {
	// Size returns the total object size in bytes.
	Size(ctx context.Context, ref string) (int64, error)
	// OpenRange opens the byte range [start, end] of the object.
	OpenRange(ctx context.Context, ref string, start, end int64) (io.ReadCloser, error)
}
