package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ruteri/aoss-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan()
	require.NoError(t, plan.Validate())

	reqs := plan.PolicyRequests()
	require.Len(t, reqs, 3)
	assert.Equal(t, interfaces.PolicyTypeEncryption, reqs[0].Type)
	assert.Equal(t, interfaces.PolicyTypeNetwork, reqs[1].Type)
	assert.Equal(t, interfaces.PolicyTypeData, reqs[2].Type)

	access, err := reqs[2].Document.JSON()
	require.NoError(t, err)
	assert.Contains(t, access, "arn:aws:iam::654654164204:user/aoss-author")

	assert.Equal(t, interfaces.CollectionRequest{Name: "action-movies", Type: interfaces.WorkloadSearch}, plan.CollectionRequest())
	assert.Equal(t, "action-movies-eighties", plan.Index)
	assert.JSONEq(t, `{"title":"Road House","director":"Rowdy Herrington","year":"1989"}`, plan.Document)
}

func TestLoadPlan_OverridesDefaults(t *testing.T) {
	path := writePlan(t, `
policy:
  name: drama-policy
  resourcePrefix: drama-
  principals:
    - arn:aws:iam::123456789012:role/indexer
  network:
    - description: VPC only
      rules:
        - resourceType: collection
          resource: ["collection/drama-*"]
      sourceVPCEs: ["vpce-0123456789abcdef0"]
collection:
  name: drama-movies
  type: TIMESERIES
index: drama-movies-nineties
`)

	plan, err := LoadPlan(path)
	require.NoError(t, err)

	assert.Equal(t, "drama-policy", plan.Policy.Name)
	assert.Equal(t, interfaces.WorkloadTimeSeries, plan.Collection.Type)
	assert.Equal(t, "drama-movies-nineties", plan.Index)
	// Not in the file, kept from the defaults.
	assert.Equal(t, DefaultPlan().Document, plan.Document)

	network, err := plan.PolicyRequests()[1].Document.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"Description": "VPC only",
		"Rules": [{"ResourceType": "collection", "Resource": ["collection/drama-*"]}],
		"SourceVPCEs": ["vpce-0123456789abcdef0"]
	}]`, network)

	encryption, err := plan.PolicyRequests()[0].Document.JSON()
	require.NoError(t, err)
	assert.Contains(t, encryption, "collection/drama-*")
}

func TestLoadPlan_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unparseable", "policy: [unterminated"},
		{"no principals", "policy:\n  principals: []\n"},
		{"collection outside prefix", "collection:\n  name: comedy-movies\n"},
		{"bad workload", "collection:\n  type: GRAPH\n"},
		{"bad document", "document: '{not json'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlan(writePlan(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

type mapSource map[string]string

func (m mapSource) Fetch(_ context.Context, location string) ([]byte, error) {
	data, ok := m[location]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(data), nil
}

func TestLoadPlanFrom(t *testing.T) {
	src := mapSource{"s3://plans/action.yaml": "index: action-movies-nineties\n"}

	plan, err := LoadPlanFrom(context.Background(), src, "s3://plans/action.yaml")
	require.NoError(t, err)
	assert.Equal(t, "action-movies-nineties", plan.Index)
	assert.Equal(t, "action-movies", plan.Collection.Name)

	_, err = LoadPlanFrom(context.Background(), src, "s3://plans/missing.yaml")
	assert.Error(t, err)
}
