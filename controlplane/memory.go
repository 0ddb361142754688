package controlplane

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/aoss-provisioner/interfaces"
)

// MemoryControlPlane provides an in-memory implementation of the
// interfaces.ControlPlane for dry runs and tests.
//
// Policies and collections conflict on duplicate keys like the real service.
// Collection status advances through a scripted state sequence, one state
// per lookup; the last state repeats.
type MemoryControlPlane struct {
	mutex       sync.Mutex
	policies    map[string]interfaces.PolicyDetail
	collections map[string]*memoryCollection

	// StateSequence is the lifecycle scripted for new collections.
	StateSequence []interfaces.CollectionState
	// EndpointFor renders the endpoint of an ACTIVE collection.
	EndpointFor func(id string) string

	lookups int
}

type memoryCollection struct {
	handle interfaces.CollectionHandle
	step   int
}

// NewMemoryControlPlane creates an empty control plane whose collections
// report CREATING once and then ACTIVE.
func NewMemoryControlPlane() *MemoryControlPlane {
	return &MemoryControlPlane{
		policies:      make(map[string]interfaces.PolicyDetail),
		collections:   make(map[string]*memoryCollection),
		StateSequence: []interfaces.CollectionState{interfaces.CollectionCreating, interfaces.CollectionActive},
		EndpointFor: func(id string) string {
			return fmt.Sprintf("https://%s.memory.aoss.local", id)
		},
	}
}

// CreateSecurityPolicy stores an encryption or network policy.
func (m *MemoryControlPlane) CreateSecurityPolicy(_ context.Context, req interfaces.PolicyRequest) (*interfaces.PolicyDetail, error) {
	if !req.Type.IsSecurityPolicy() {
		return nil, fmt.Errorf("%w: %q is not a security policy type", interfaces.ErrInvalidPolicy, req.Type)
	}
	return m.storePolicy(req)
}

// CreateAccessPolicy stores a data access policy.
func (m *MemoryControlPlane) CreateAccessPolicy(_ context.Context, req interfaces.PolicyRequest) (*interfaces.PolicyDetail, error) {
	if req.Type != interfaces.PolicyTypeData {
		return nil, fmt.Errorf("%w: %q is not an access policy type", interfaces.ErrInvalidPolicy, req.Type)
	}
	return m.storePolicy(req)
}

func (m *MemoryControlPlane) storePolicy(req interfaces.PolicyRequest) (*interfaces.PolicyDetail, error) {
	doc, err := req.Document.JSON()
	if err != nil {
		return nil, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.policies[req.Key()]; exists {
		return nil, fmt.Errorf("%w: policy %s", interfaces.ErrConflict, req.Key())
	}
	detail := interfaces.PolicyDetail{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		Version:     uuid.NewString(),
		CreatedDate: time.Now().UnixMilli(),
		Policy:      []byte(doc),
	}
	m.policies[req.Key()] = detail
	return &detail, nil
}

// CreateCollection registers a collection at the start of StateSequence.
func (m *MemoryControlPlane) CreateCollection(_ context.Context, req interfaces.CollectionRequest) (*interfaces.CollectionHandle, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.collections[req.Name]; exists {
		return nil, fmt.Errorf("%w: collection %s", interfaces.ErrConflict, req.Name)
	}
	id := uuid.NewString()
	c := &memoryCollection{
		handle: interfaces.CollectionHandle{
			ID:     id,
			Name:   req.Name,
			ARN:    "arn:aws:aoss:memory:000000000000:collection/" + id,
			Type:   req.Type,
			Status: m.stateAt(0),
		},
	}
	m.collections[req.Name] = c
	handle := c.handle
	return &handle, nil
}

// GetCollectionStatus reports the next scripted state of each known collection.
func (m *MemoryControlPlane) GetCollectionStatus(_ context.Context, names []string) ([]interfaces.CollectionStatus, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.lookups++
	var statuses []interfaces.CollectionStatus
	for _, name := range names {
		c, ok := m.collections[name]
		if !ok {
			continue
		}
		state := m.stateAt(c.step)
		if c.step < len(m.StateSequence)-1 {
			c.step++
		}
		c.handle.Status = state

		status := interfaces.CollectionStatus{
			ID:         c.handle.ID,
			Name:       c.handle.Name,
			State:      state,
			ObservedAt: time.Now(),
		}
		if state == interfaces.CollectionActive {
			status.Endpoint = m.EndpointFor(c.handle.ID)
			status.DashboardEndpoint = status.Endpoint + "/_dashboards"
		}
		if state == interfaces.CollectionFailed {
			status.FailureCode = "INTERNAL_ERROR"
			status.FailureMessage = "scripted failure"
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Lookups returns how many status lookups have been served.
func (m *MemoryControlPlane) Lookups() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.lookups
}

// Policy returns a stored policy by type and name.
func (m *MemoryControlPlane) Policy(policyType interfaces.PolicyType, name string) (interfaces.PolicyDetail, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	p, ok := m.policies[interfaces.PolicyRequest{Name: name, Type: policyType}.Key()]
	return p, ok
}

func (m *MemoryControlPlane) stateAt(step int) interfaces.CollectionState {
	if len(m.StateSequence) == 0 {
		return interfaces.CollectionActive
	}
	if step >= len(m.StateSequence) {
		step = len(m.StateSequence) - 1
	}
	return m.StateSequence[step]
}
