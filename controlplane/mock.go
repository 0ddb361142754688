package controlplane

import (
	"context"

	"github.com/ruteri/aoss-provisioner/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockControlPlane implements interfaces.ControlPlane for testing.
// The behavior is determined by how the mock is configured in tests.
type MockControlPlane struct {
	mock.Mock
}

func (m *MockControlPlane) CreateSecurityPolicy(ctx context.Context, req interfaces.PolicyRequest) (*interfaces.PolicyDetail, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.PolicyDetail), args.Error(1)
}

func (m *MockControlPlane) CreateAccessPolicy(ctx context.Context, req interfaces.PolicyRequest) (*interfaces.PolicyDetail, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.PolicyDetail), args.Error(1)
}

func (m *MockControlPlane) CreateCollection(ctx context.Context, req interfaces.CollectionRequest) (*interfaces.CollectionHandle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.CollectionHandle), args.Error(1)
}

func (m *MockControlPlane) GetCollectionStatus(ctx context.Context, names []string) ([]interfaces.CollectionStatus, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.CollectionStatus), args.Error(1)
}
