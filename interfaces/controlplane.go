package interfaces

import (
	"context"
	"io"
)

// ControlPlane manages the lifecycle of policies and collections.
//
// Implementations must report "already exists" rejections as errors wrapping
// ErrConflict so callers can treat them as success-equivalent.
type ControlPlane interface {
	// CreateSecurityPolicy creates an encryption or network policy.
	CreateSecurityPolicy(ctx context.Context, req PolicyRequest) (*PolicyDetail, error)

	// CreateAccessPolicy creates a data access policy.
	CreateAccessPolicy(ctx context.Context, req PolicyRequest) (*PolicyDetail, error)

	// CreateCollection creates a collection and returns its handle.
	CreateCollection(ctx context.Context, req CollectionRequest) (*CollectionHandle, error)

	// GetCollectionStatus returns the status of every named collection the
	// control plane knows about. Unknown names are omitted from the result.
	GetCollectionStatus(ctx context.Context, names []string) ([]CollectionStatus, error)
}

// DocumentStore is the subset of a data-plane document-store client used by
// the provisioner.
type DocumentStore interface {
	// CreateIndex creates an index with default settings.
	CreateIndex(ctx context.Context, name string) error

	// IndexDocument writes one document into the index.
	IndexDocument(ctx context.Context, index string, body io.Reader) error
}

// DocumentStoreFactory builds a DocumentStore bound to a collection endpoint.
type DocumentStoreFactory func(endpoint string) (DocumentStore, error)
