package policy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ruteri/aoss-provisioner/interfaces"
)

// Resource types accepted in policy rules.
const (
	ResourceCollection = "collection"
	ResourceDashboard  = "dashboard"
	ResourceIndex      = "index"
)

// collectionPrefix starts every resource pattern of encryption and network rules.
const collectionPrefix = ResourceCollection + "/"

// Rule scopes a policy to resource name patterns of one resource type.
type Rule struct {
	ResourceType string   `json:"ResourceType" yaml:"resourceType"`
	Resource     []string `json:"Resource" yaml:"resource"`
}

// validate checks the resource type against allowed and every resource
// against prefix. An empty prefix means "<ResourceType>/". Security policies
// name collections for every resource type, dashboards included.
func (r Rule) validate(prefix string, allowed ...string) error {
	known := false
	for _, a := range allowed {
		if r.ResourceType == a {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: resource type %q not allowed here (want one of %s)",
			interfaces.ErrInvalidPolicy, r.ResourceType, strings.Join(allowed, ", "))
	}
	if len(r.Resource) == 0 {
		return fmt.Errorf("%w: %s rule has no resources", interfaces.ErrInvalidPolicy, r.ResourceType)
	}
	if prefix == "" {
		prefix = r.ResourceType + "/"
	}
	for _, res := range r.Resource {
		if !strings.HasPrefix(res, prefix) || len(res) == len(prefix) {
			return fmt.Errorf("%w: resource %q must match %s<pattern>", interfaces.ErrInvalidPolicy, res, prefix)
		}
	}
	return nil
}

// EncryptionPolicy selects the key used to encrypt matching collections.
// Exactly one of AWSOwnedKey or KmsARN must be set.
type EncryptionPolicy struct {
	Rules       []Rule `json:"Rules" yaml:"rules"`
	AWSOwnedKey bool   `json:"AWSOwnedKey" yaml:"awsOwnedKey"`
	KmsARN      string `json:"KmsARN,omitempty" yaml:"kmsArn,omitempty"`
}

// Type returns the policy type EncryptionPolicy is submitted as.
func (p *EncryptionPolicy) Type() interfaces.PolicyType { return interfaces.PolicyTypeEncryption }

// Validate checks the document before it is sent.
func (p *EncryptionPolicy) Validate() error {
	if len(p.Rules) == 0 {
		return fmt.Errorf("%w: encryption policy has no rules", interfaces.ErrInvalidPolicy)
	}
	for _, r := range p.Rules {
		if err := r.validate(collectionPrefix, ResourceCollection); err != nil {
			return err
		}
	}
	if p.AWSOwnedKey == (p.KmsARN != "") {
		return fmt.Errorf("%w: encryption policy must set exactly one of AWSOwnedKey or KmsARN", interfaces.ErrInvalidPolicy)
	}
	return nil
}

// JSON renders the document in the shape the service expects.
func (p *EncryptionPolicy) JSON() (string, error) {
	return marshal(p)
}

// NetworkRuleSet is one entry of a network policy.
type NetworkRuleSet struct {
	Description     string   `json:"Description,omitempty" yaml:"description,omitempty"`
	Rules           []Rule   `json:"Rules" yaml:"rules"`
	AllowFromPublic *bool    `json:"AllowFromPublic,omitempty" yaml:"allowFromPublic,omitempty"`
	SourceVPCEs     []string `json:"SourceVPCEs,omitempty" yaml:"sourceVPCEs,omitempty"`
}

// NetworkPolicy controls where matching collections and dashboards can be reached from.
type NetworkPolicy []NetworkRuleSet

// Type returns the policy type NetworkPolicy is submitted as.
func (p NetworkPolicy) Type() interfaces.PolicyType { return interfaces.PolicyTypeNetwork }

// Validate checks the document before it is sent.
func (p NetworkPolicy) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: network policy has no rule blocks", interfaces.ErrInvalidPolicy)
	}
	for i, set := range p {
		if len(set.Rules) == 0 {
			return fmt.Errorf("%w: network rule block %d has no rules", interfaces.ErrInvalidPolicy, i)
		}
		for _, r := range set.Rules {
			if err := r.validate(collectionPrefix, ResourceCollection, ResourceDashboard); err != nil {
				return fmt.Errorf("network rule block %d: %w", i, err)
			}
		}
	}
	return nil
}

// JSON renders the document in the shape the service expects.
func (p NetworkPolicy) JSON() (string, error) {
	return marshal(p)
}

// AccessRule grants Permission on resources of one type.
type AccessRule struct {
	ResourceType string   `json:"ResourceType" yaml:"resourceType"`
	Resource     []string `json:"Resource" yaml:"resource"`
	Permission   []string `json:"Permission" yaml:"permission"`
}

// AccessRuleSet grants its rules to every listed principal.
type AccessRuleSet struct {
	Description string       `json:"Description,omitempty" yaml:"description,omitempty"`
	Rules       []AccessRule `json:"Rules" yaml:"rules"`
	Principal   []string     `json:"Principal" yaml:"principal"`
}

// AccessPolicy is a data access policy document.
type AccessPolicy []AccessRuleSet

// Type returns the policy type AccessPolicy is submitted as.
func (p AccessPolicy) Type() interfaces.PolicyType { return interfaces.PolicyTypeData }

// Validate checks the document before it is sent.
func (p AccessPolicy) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: access policy has no rule blocks", interfaces.ErrInvalidPolicy)
	}
	for i, set := range p {
		if len(set.Rules) == 0 {
			return fmt.Errorf("%w: access rule block %d has no rules", interfaces.ErrInvalidPolicy, i)
		}
		if len(set.Principal) == 0 {
			return fmt.Errorf("%w: access rule block %d has no principal", interfaces.ErrInvalidPolicy, i)
		}
		for _, r := range set.Rules {
			if err := (Rule{ResourceType: r.ResourceType, Resource: r.Resource}).validate("", ResourceIndex, ResourceCollection); err != nil {
				return fmt.Errorf("access rule block %d: %w", i, err)
			}
			if len(r.Permission) == 0 {
				return fmt.Errorf("%w: access rule block %d grants no permissions on %s",
					interfaces.ErrInvalidPolicy, i, r.ResourceType)
			}
			for _, perm := range r.Permission {
				if !strings.HasPrefix(perm, "aoss:") {
					return fmt.Errorf("%w: permission %q is not an aoss permission", interfaces.ErrInvalidPolicy, perm)
				}
			}
		}
	}
	return nil
}

// JSON renders the document in the shape the service expects.
func (p AccessPolicy) JSON() (string, error) {
	return marshal(p)
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
