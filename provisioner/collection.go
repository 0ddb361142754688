package provisioner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ruteri/aoss-provisioner/interfaces"
)

// CollectionProvisioner creates the named collection, treating an existing
// collection with the same name as success.
type CollectionProvisioner struct {
	cp  interfaces.ControlPlane
	log *slog.Logger
}

// NewCollectionProvisioner creates a collection provisioner backed by cp.
func NewCollectionProvisioner(cp interfaces.ControlPlane, log *slog.Logger) *CollectionProvisioner {
	return &CollectionProvisioner{cp: cp, log: log}
}

// CreateCollection creates the collection and returns its handle.
//
// On conflict the existing collection is looked up by name so the caller
// always gets a handle to poll. Other errors are returned unchanged.
func (c *CollectionProvisioner) CreateCollection(ctx context.Context, req interfaces.CollectionRequest) (interfaces.Outcome, *interfaces.CollectionHandle, error) {
	if strings.TrimSpace(req.Name) == "" {
		return 0, nil, errors.New("collection name is empty")
	}
	if !req.Type.Valid() {
		return 0, nil, fmt.Errorf("collection %q has unknown workload type %q", req.Name, req.Type)
	}

	log := c.log.With(slog.String("collection", req.Name), slog.String("workload", string(req.Type)))

	handle, err := c.cp.CreateCollection(ctx, req)
	if err == nil {
		log.Info("Collection created",
			slog.String("id", handle.ID),
			slog.String("arn", handle.ARN),
			slog.String("status", string(handle.Status)))
		return interfaces.OutcomeCreated, handle, nil
	}
	if !errors.Is(err, interfaces.ErrConflict) {
		log.Error("Failed to create collection", "err", err)
		return 0, nil, fmt.Errorf("create collection %q: %w", req.Name, err)
	}

	log.Info("A collection with this name already exists, resolving it", "err", err)
	status, err := lookupCollection(ctx, c.cp, req.Name)
	if err != nil {
		log.Error("Failed to resolve existing collection", "err", err)
		return 0, nil, err
	}
	return interfaces.OutcomeAlreadyExists, &interfaces.CollectionHandle{
		ID:     status.ID,
		Name:   status.Name,
		Type:   req.Type,
		Status: status.State,
	}, nil
}

// lookupCollection returns the status entry reported for name.
func lookupCollection(ctx context.Context, cp interfaces.ControlPlane, name string) (*interfaces.CollectionStatus, error) {
	statuses, err := cp.GetCollectionStatus(ctx, []string{name})
	if err != nil {
		return nil, fmt.Errorf("look up collection %q: %w", name, err)
	}
	for i := range statuses {
		if statuses[i].Name == name {
			return &statuses[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", interfaces.ErrCollectionNotFound, name)
}
