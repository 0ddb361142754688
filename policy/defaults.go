package policy

import (
	"fmt"

	"github.com/ruteri/aoss-provisioner/interfaces"
)

// DefaultIndexPermissions are granted on every index of the matching collections.
var DefaultIndexPermissions = []string{
	"aoss:CreateIndex",
	"aoss:DeleteIndex",
	"aoss:UpdateIndex",
	"aoss:DescribeIndex",
	"aoss:ReadDocument",
	"aoss:WriteDocument",
}

// DefaultCollectionPermissions are granted on the matching collections.
var DefaultCollectionPermissions = []string{
	"aoss:CreateCollectionItems",
}

// EncryptionFor encrypts collections matching prefix* with an AWS owned key.
func EncryptionFor(prefix string) *EncryptionPolicy {
	return &EncryptionPolicy{
		Rules: []Rule{
			{ResourceType: ResourceCollection, Resource: []string{collectionPattern(prefix)}},
		},
		AWSOwnedKey: true,
	}
}

// NetworkFor opens collections and dashboards matching prefix* to the
// public internet when public is set.
func NetworkFor(prefix, description string, public bool) NetworkPolicy {
	return NetworkPolicy{
		{
			Description: description,
			Rules: []Rule{
				{ResourceType: ResourceDashboard, Resource: []string{collectionPattern(prefix)}},
				{ResourceType: ResourceCollection, Resource: []string{collectionPattern(prefix)}},
			},
			AllowFromPublic: &public,
		},
	}
}

// AccessFor grants principals read/write access to indexes of collections
// matching prefix* and the right to create items in them.
func AccessFor(prefix string, principals []string) AccessPolicy {
	return AccessPolicy{
		{
			Rules: []AccessRule{
				{
					ResourceType: ResourceIndex,
					Resource:     []string{fmt.Sprintf("index/%s*/*", prefix)},
					Permission:   append([]string(nil), DefaultIndexPermissions...),
				},
				{
					ResourceType: ResourceCollection,
					Resource:     []string{collectionPattern(prefix)},
					Permission:   append([]string(nil), DefaultCollectionPermissions...),
				},
			},
			Principal: append([]string(nil), principals...),
		},
	}
}

func collectionPattern(prefix string) string {
	return fmt.Sprintf("collection/%s*", prefix)
}

// Requests builds the encryption, network and data access policy requests
// for one policy name. Documents left nil are derived from prefix.
type Requests struct {
	Name            string
	Prefix          string
	Label           string
	Principals      []string
	AllowFromPublic bool

	Encryption *EncryptionPolicy
	Network    NetworkPolicy
	Access     AccessPolicy
}

// Build returns the three policy requests in submission order.
func (r Requests) Build() []interfaces.PolicyRequest {
	encryption := r.Encryption
	if encryption == nil {
		encryption = EncryptionFor(r.Prefix)
	}
	network := r.Network
	if network == nil {
		network = NetworkFor(r.Prefix, fmt.Sprintf("Public access for %s collection", r.Label), r.AllowFromPublic)
	}
	access := r.Access
	if access == nil {
		access = AccessFor(r.Prefix, r.Principals)
	}

	return []interfaces.PolicyRequest{
		{
			Name:        r.Name,
			Type:        interfaces.PolicyTypeEncryption,
			Description: fmt.Sprintf("Encryption policy for %s collections", r.Label),
			Document:    encryption,
		},
		{
			Name:        r.Name,
			Type:        interfaces.PolicyTypeNetwork,
			Description: fmt.Sprintf("Network policy for %s collections", r.Label),
			Document:    network,
		},
		{
			Name:        r.Name,
			Type:        interfaces.PolicyTypeData,
			Description: fmt.Sprintf("Data access policy for %s collections", r.Label),
			Document:    access,
		},
	}
}
