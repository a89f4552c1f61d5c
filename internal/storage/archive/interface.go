package archive

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no object exists at the path.
var ErrNotFound = errors.New("archive: object not found")

// Store holds published reference documents such as ticker directory
// snapshots, addressed by slash-separated paths.
type Store interface {
	// Write stores data at the given path, replacing any previous object.
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists checks if data exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}
