package provisioner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ruteri/aoss-provisioner/awsauth"
	"github.com/ruteri/aoss-provisioner/controlplane"
	"github.com/ruteri/aoss-provisioner/dataplane"
	"github.com/ruteri/aoss-provisioner/dataplane/dataplanetest"
	"github.com/ruteri/aoss-provisioner/interfaces"
	"github.com/ruteri/aoss-provisioner/policy"
	"github.com/ruteri/aoss-provisioner/signer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const roadHouse = `{ "title": "Road House", "director": "Rowdy Herrington", "year": "1989" }` + "\n"

func scenarioConfig(sleeper *recordingSleeper) PipelineConfig {
	return PipelineConfig{
		Policies: policy.Requests{
			Name:            "action-policy",
			Prefix:          "action-",
			Label:           "Action Movie",
			Principals:      []string{"arn:aws:iam::654654164204:user/aoss-author"},
			AllowFromPublic: true,
		}.Build(),
		Collection: moviesRequest,
		Poll: PollOptions{
			Interval:    DefaultPollInterval,
			MaxAttempts: DefaultMaxAttempts,
			Sleep:       sleeper.Sleep,
		},
		Index:    "action-movies-eighties",
		Document: []byte(roadHouse),
	}
}

// newScenario wires a memory control plane whose collection endpoint is a
// fake signed data plane, with real signer and document-store client.
func newScenario(t *testing.T) (*controlplane.MemoryControlPlane, *dataplanetest.Server, interfaces.DocumentStoreFactory) {
	srv := dataplanetest.NewServer(testLogger(), "us-east-1")
	t.Cleanup(srv.Close)

	cp := controlplane.NewMemoryControlPlane()
	cp.StateSequence = []interfaces.CollectionState{
		interfaces.CollectionCreating,
		interfaces.CollectionCreating,
		interfaces.CollectionActive,
	}
	cp.EndpointFor = func(string) string { return srv.URL }

	identity, err := awsauth.NewStaticIdentity("us-east-1", "AKIDEXAMPLE", "secret", "")
	require.NoError(t, err)
	s, err := signer.New(identity, signer.ServiceAOSS, testLogger())
	require.NoError(t, err)

	return cp, srv, dataplane.NewFactory(signer.NewTransport(s, nil), testLogger())
}

func TestPipeline_EndToEnd(t *testing.T) {
	cp, srv, stores := newScenario(t)
	sleeper := &recordingSleeper{}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := NewPipeline(scenarioConfig(sleeper), cp, stores, testLogger()).Run(ctx)
	require.NoError(t, err)

	require.Len(t, res.Policies, 3)
	for _, r := range res.Policies {
		assert.Equal(t, interfaces.OutcomeCreated, r.Outcome)
	}
	_, ok := cp.Policy(interfaces.PolicyTypeData, "action-policy")
	assert.True(t, ok)

	assert.Equal(t, interfaces.OutcomeCreated, res.CollectionOutcome)
	assert.Equal(t, srv.URL, res.Status.Endpoint)
	assert.Equal(t, 3, cp.Lookups())
	assert.Len(t, sleeper.calls, 2)

	assert.True(t, res.IndexCreated)
	assert.True(t, res.DocumentIndexed)
	docs := srv.Documents("action-movies-eighties")
	require.Len(t, docs, 1)
	assert.JSONEq(t, roadHouse, string(docs[0]))
	assert.Equal(t, int32(0), srv.Rejected.Load())
}

func TestPipeline_RerunConflictsAreBenignUntilIndex(t *testing.T) {
	cp, srv, stores := newScenario(t)
	ctx := context.Background()

	_, err := NewPipeline(scenarioConfig(&recordingSleeper{}), cp, stores, testLogger()).Run(ctx)
	require.NoError(t, err)

	res, err := NewPipeline(scenarioConfig(&recordingSleeper{}), cp, stores, testLogger()).Run(ctx)

	for _, r := range res.Policies {
		assert.Equal(t, interfaces.OutcomeAlreadyExists, r.Outcome)
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, interfaces.OutcomeAlreadyExists, res.CollectionOutcome)
	require.NotNil(t, res.Status)

	// The existing index ends the run before the document is written again.
	assert.ErrorIs(t, err, interfaces.ErrConflict)
	assert.ErrorIs(t, err, interfaces.ErrDataPlane)
	assert.False(t, res.IndexCreated)
	assert.False(t, res.DocumentIndexed)
	assert.Len(t, srv.Documents("action-movies-eighties"), 1)
}

func TestPipeline_PolicyFailureStopsBeforeCollection(t *testing.T) {
	cp := new(controlplane.MockControlPlane)
	denied := errors.New("AccessDeniedException")
	cp.On("CreateSecurityPolicy", mock.Anything, mock.Anything).Return(&interfaces.PolicyDetail{}, nil)
	cp.On("CreateAccessPolicy", mock.Anything, mock.Anything).Return(nil, denied)

	stores := func(string) (interfaces.DocumentStore, error) {
		t.Fatal("data plane must not be reached")
		return nil, nil
	}

	res, err := NewPipeline(scenarioConfig(&recordingSleeper{}), cp, stores, testLogger()).Run(context.Background())
	assert.ErrorIs(t, err, denied)
	assert.Len(t, res.Policies, 3)
	cp.AssertNumberOfCalls(t, "CreateSecurityPolicy", 2)
	cp.AssertNotCalled(t, "CreateCollection", mock.Anything, mock.Anything)
}

func TestPipeline_FailedCollectionIsFatal(t *testing.T) {
	cp, srv, stores := newScenario(t)
	cp.StateSequence = []interfaces.CollectionState{interfaces.CollectionCreating, interfaces.CollectionFailed}

	res, err := NewPipeline(scenarioConfig(&recordingSleeper{}), cp, stores, testLogger()).Run(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrCollectionFailed)
	assert.Nil(t, res.Status)
	assert.Equal(t, int32(0), srv.CreateIndexCalls.Load())
}

func TestPipeline_DryRunStores(t *testing.T) {
	cp := controlplane.NewMemoryControlPlane()
	store := dataplane.NewMemoryStore()

	res, err := NewPipeline(scenarioConfig(&recordingSleeper{}), cp, dataplane.MemoryFactory(store), testLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.DocumentIndexed)
	assert.Len(t, store.Documents("action-movies-eighties"), 1)
}
