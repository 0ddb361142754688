package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
)

// FileBackend reads objects from the local file system.
type FileBackend struct {
	log *slog.Logger
}

func NewFileBackend(log *slog.Logger) *FileBackend {
	return &FileBackend{log: log}
}

// Fetch reads the file named by u. Both file:///abs/path and file://./rel/path
// are accepted.
func (b *FileBackend) Fetch(_ context.Context, u *url.URL) ([]byte, error) {
	path := u.Path
	if u.Host != "" {
		path = u.Host + path
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in %s", ErrUnsupportedLocation, u.String())
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	b.log.Debug("Fetched content from file",
		slog.String("path", path),
		slog.Int("size", len(data)))

	return data, nil
}
