package policy

import (
	"encoding/json"
	"testing"

	"github.com/ruteri/aoss-provisioner/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrincipal = "arn:aws:iam::654654164204:user/aoss-author"

func TestDefaultDocuments_JSON(t *testing.T) {
	encryption, err := EncryptionFor("action-").JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Rules": [{"ResourceType": "collection", "Resource": ["collection/action-*"]}],
		"AWSOwnedKey": true
	}`, encryption)

	network, err := NetworkFor("action-", "Public access for action movie collection", true).JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"Description": "Public access for action movie collection",
		"Rules": [
			{"ResourceType": "dashboard", "Resource": ["collection/action-*"]},
			{"ResourceType": "collection", "Resource": ["collection/action-*"]}
		],
		"AllowFromPublic": true
	}]`, network)

	access, err := AccessFor("action-", []string{testPrincipal}).JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"Rules": [
			{
				"Resource": ["index/action-*/*"],
				"Permission": [
					"aoss:CreateIndex", "aoss:DeleteIndex", "aoss:UpdateIndex",
					"aoss:DescribeIndex", "aoss:ReadDocument", "aoss:WriteDocument"
				],
				"ResourceType": "index"
			},
			{
				"Resource": ["collection/action-*"],
				"Permission": ["aoss:CreateCollectionItems"],
				"ResourceType": "collection"
			}
		],
		"Principal": ["arn:aws:iam::654654164204:user/aoss-author"]
	}]`, access)
}

func TestDocuments_Validate(t *testing.T) {
	public := true

	tests := []struct {
		name    string
		doc     interfaces.PolicyDocument
		wantErr bool
	}{
		{"default encryption", EncryptionFor("action-"), false},
		{"default network", NetworkFor("action-", "", true), false},
		{"default access", AccessFor("action-", []string{testPrincipal}), false},
		{
			name:    "encryption without owned key flag",
			doc:     &EncryptionPolicy{Rules: []Rule{{ResourceType: ResourceCollection, Resource: []string{"collection/a*"}}}},
			wantErr: true,
		},
		{
			name: "encryption with both key sources",
			doc: &EncryptionPolicy{
				Rules:       []Rule{{ResourceType: ResourceCollection, Resource: []string{"collection/a*"}}},
				AWSOwnedKey: true,
				KmsARN:      "arn:aws:kms:us-east-1:123456789012:key/abc",
			},
			wantErr: true,
		},
		{
			name: "encryption with customer key",
			doc: &EncryptionPolicy{
				Rules:  []Rule{{ResourceType: ResourceCollection, Resource: []string{"collection/a*"}}},
				KmsARN: "arn:aws:kms:us-east-1:123456789012:key/abc",
			},
			wantErr: false,
		},
		{
			name:    "encryption on dashboards",
			doc:     &EncryptionPolicy{Rules: []Rule{{ResourceType: ResourceDashboard, Resource: []string{"dashboard/a*"}}}, AWSOwnedKey: true},
			wantErr: true,
		},
		{"network without blocks", NetworkPolicy{}, true},
		{"network block without rules", NetworkPolicy{{AllowFromPublic: &public}}, true},
		{
			name:    "network without public flag",
			doc:     NetworkPolicy{{Rules: []Rule{{ResourceType: ResourceCollection, Resource: []string{"collection/a*"}}}}},
			wantErr: false,
		},
		{
			name: "network dashboard rule naming dashboards",
			doc: NetworkPolicy{{
				Rules:           []Rule{{ResourceType: ResourceDashboard, Resource: []string{"dashboard/action-*"}}},
				AllowFromPublic: &public,
			}},
			wantErr: true,
		},
		{
			name:    "network resource with wrong prefix",
			doc:     NetworkPolicy{{Rules: []Rule{{ResourceType: ResourceCollection, Resource: []string{"index/a*"}}}}},
			wantErr: true,
		},
		{"access without principal", AccessFor("action-", nil), true},
		{
			name: "access without permissions",
			doc: AccessPolicy{{
				Rules:     []AccessRule{{ResourceType: ResourceIndex, Resource: []string{"index/a*/*"}}},
				Principal: []string{testPrincipal},
			}},
			wantErr: true,
		},
		{
			name: "access with foreign permission",
			doc: AccessPolicy{{
				Rules:     []AccessRule{{ResourceType: ResourceIndex, Resource: []string{"index/a*/*"}, Permission: []string{"es:ESHttpGet"}}},
				Principal: []string{testPrincipal},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, interfaces.ErrInvalidPolicy)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// The service addresses dashboards by their collection name.
func TestNetworkPolicy_ServiceShape(t *testing.T) {
	raw := `[{
		"Description": "Public access for action movie collection",
		"Rules": [
			{"ResourceType": "dashboard", "Resource": ["collection/action-*"]},
			{"ResourceType": "collection", "Resource": ["collection/action-*"]}
		],
		"AllowFromPublic": true
	}]`

	var doc NetworkPolicy
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.NoError(t, doc.Validate())

	rendered, err := doc.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, raw, rendered)

	require.NoError(t, NetworkFor("action-", "Public access for action movie collection", true).Validate())
}

func TestPolicyRequest_Validate(t *testing.T) {
	valid := interfaces.PolicyRequest{Name: "action-policy", Type: interfaces.PolicyTypeEncryption, Document: EncryptionFor("action-")}
	require.NoError(t, valid.Validate())

	noName := valid
	noName.Name = " "
	assert.ErrorIs(t, noName.Validate(), interfaces.ErrInvalidPolicy)

	noType := valid
	noType.Type = ""
	assert.ErrorIs(t, noType.Validate(), interfaces.ErrInvalidPolicy)

	mismatched := valid
	mismatched.Type = interfaces.PolicyTypeNetwork
	assert.ErrorIs(t, mismatched.Validate(), interfaces.ErrInvalidPolicy)
}

func TestRequests_Build(t *testing.T) {
	reqs := Requests{
		Name:            "action-policy",
		Prefix:          "action-",
		Label:           "Action Movie",
		Principals:      []string{testPrincipal},
		AllowFromPublic: true,
	}.Build()

	require.Len(t, reqs, 3)
	assert.Equal(t, interfaces.PolicyTypeEncryption, reqs[0].Type)
	assert.Equal(t, interfaces.PolicyTypeNetwork, reqs[1].Type)
	assert.Equal(t, interfaces.PolicyTypeData, reqs[2].Type)
	for _, r := range reqs {
		assert.Equal(t, "action-policy", r.Name)
		assert.NoError(t, r.Validate())
	}
	assert.Equal(t, "Data access policy for Action Movie collections", reqs[2].Description)
}
