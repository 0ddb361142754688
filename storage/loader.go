package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ruteri/aoss-provisioner/awsauth"
)

var (
	// ErrNotFound is returned when the location does not hold an object.
	ErrNotFound = errors.New("content not found")

	// ErrUnsupportedLocation is returned for location schemes no backend serves.
	ErrUnsupportedLocation = errors.New("unsupported location")
)

// Backend reads one object addressed by a parsed location.
type Backend interface {
	Fetch(ctx context.Context, u *url.URL) ([]byte, error)
}

// Loader dispatches location URIs to the backend serving their scheme.
type Loader struct {
	backends map[string]Backend
	log      *slog.Logger
}

// NewLoader returns a loader for local files and, when identity is not nil,
// for S3 objects.
func NewLoader(identity *awsauth.Identity, log *slog.Logger) *Loader {
	l := &Loader{
		backends: map[string]Backend{"file": NewFileBackend(log)},
		log:      log,
	}
	if identity != nil {
		l.backends["s3"] = NewS3Backend(identity, log)
	}
	return l
}

// WithBackend registers b for scheme, replacing any previous backend.
func (l *Loader) WithBackend(scheme string, b Backend) *Loader {
	l.backends[strings.ToLower(scheme)] = b
	return l
}

// Fetch reads the object at location. A location without a scheme is a local path.
func (l *Loader) Fetch(ctx context.Context, location string) ([]byte, error) {
	u, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	backend, ok := l.backends[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("%w: no backend for scheme %q", ErrUnsupportedLocation, u.Scheme)
	}

	l.log.Debug("Fetching content", slog.String("location", location))
	return backend.Fetch(ctx, u)
}

// ParseLocation parses location and normalizes bare paths to file URLs.
func ParseLocation(location string) (*url.URL, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnsupportedLocation)
	}
	if !strings.Contains(location, "://") {
		return &url.URL{Scheme: "file", Path: location}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLocation, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// IsRemote reports whether location needs AWS credentials to be read.
func IsRemote(location string) bool {
	u, err := ParseLocation(location)
	return err == nil && u.Scheme == "s3"
}
