package controlplane

import (
	"context"
	"testing"

	"github.com/ruteri/aoss-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryControlPlane_PolicyConflicts(t *testing.T) {
	cp := NewMemoryControlPlane()
	ctx := context.Background()

	req := interfaces.PolicyRequest{
		Name:     "action-policy",
		Type:     interfaces.PolicyTypeNetwork,
		Document: staticDoc{interfaces.PolicyTypeNetwork, `[]`},
	}

	_, err := cp.CreateSecurityPolicy(ctx, req)
	require.NoError(t, err)

	_, err = cp.CreateSecurityPolicy(ctx, req)
	assert.ErrorIs(t, err, interfaces.ErrConflict)

	// Same name with a different type is a different policy.
	req.Type = interfaces.PolicyTypeEncryption
	req.Document = staticDoc{interfaces.PolicyTypeEncryption, `{}`}
	_, err = cp.CreateSecurityPolicy(ctx, req)
	assert.NoError(t, err)

	stored, ok := cp.Policy(interfaces.PolicyTypeNetwork, "action-policy")
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(stored.Policy))
}

func TestMemoryControlPlane_CollectionLifecycle(t *testing.T) {
	cp := NewMemoryControlPlane()
	cp.StateSequence = []interfaces.CollectionState{
		interfaces.CollectionCreating,
		interfaces.CollectionCreating,
		interfaces.CollectionActive,
	}
	ctx := context.Background()

	handle, err := cp.CreateCollection(ctx, interfaces.CollectionRequest{Name: "action-movies", Type: interfaces.WorkloadSearch})
	require.NoError(t, err)
	assert.Equal(t, interfaces.CollectionCreating, handle.Status)

	_, err = cp.CreateCollection(ctx, interfaces.CollectionRequest{Name: "action-movies", Type: interfaces.WorkloadSearch})
	assert.ErrorIs(t, err, interfaces.ErrConflict)

	var states []interfaces.CollectionState
	var last interfaces.CollectionStatus
	for i := 0; i < 4; i++ {
		statuses, err := cp.GetCollectionStatus(ctx, []string{"action-movies", "unknown"})
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		states = append(states, statuses[0].State)
		last = statuses[0]
	}

	assert.Equal(t, []interfaces.CollectionState{
		interfaces.CollectionCreating,
		interfaces.CollectionCreating,
		interfaces.CollectionActive,
		interfaces.CollectionActive,
	}, states)
	assert.Equal(t, "https://"+handle.ID+".memory.aoss.local", last.Endpoint)
	assert.Equal(t, 4, cp.Lookups())
}
