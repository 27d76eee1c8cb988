package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Object describes an uploaded file.
type Object struct {
	// Key is the backend-specific identifier (path for disk, public ID for
	// Cloudinary). Callers persist it to delete the object later.
	Key string
	// URL is what clients fetch. For the disk backend this is a server-relative
	// path; Cloudinary returns an absolute secure URL.
	URL  string
	Size int64
}

// Store persists uploaded documents and media.
type Store interface {
	// Upload stores the content under the given folder and returns the stored
	// object. The filename is only a hint for the extension; backends pick
	// their own keys.
	Upload(ctx context.Context, folder, filename string, content io.Reader) (*Object, error)
	Delete(ctx context.Context, key string) error
}
