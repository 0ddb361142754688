// Package config describes what a provisioning run creates.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ruteri/aoss-provisioner/interfaces"
	"github.com/ruteri/aoss-provisioner/policy"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Plan names every resource of a run and the documents applied to them.
type Plan struct {
	Policy     PolicyPlan     `yaml:"policy"`
	Collection CollectionPlan `yaml:"collection"`
	Index      string         `yaml:"index"`
	// Document is the JSON document written into Index.
	Document string `yaml:"document"`
}

// PolicyPlan configures the encryption, network and data access policies.
// Documents left empty are derived from ResourcePrefix.
type PolicyPlan struct {
	Name            string   `yaml:"name"`
	ResourcePrefix  string   `yaml:"resourcePrefix"`
	Label           string   `yaml:"label"`
	Principals      []string `yaml:"principals"`
	AllowFromPublic bool     `yaml:"allowFromPublic"`

	Encryption *policy.EncryptionPolicy `yaml:"encryption,omitempty"`
	Network    policy.NetworkPolicy     `yaml:"network,omitempty"`
	Access     policy.AccessPolicy      `yaml:"access,omitempty"`
}

// CollectionPlan configures the collection.
type CollectionPlan struct {
	Name        string                  `yaml:"name"`
	Type        interfaces.WorkloadType `yaml:"type"`
	Description string                  `yaml:"description,omitempty"`
}

// DefaultPlan returns the action movie collection plan.
func DefaultPlan() Plan {
	return Plan{
		Policy: PolicyPlan{
			Name:            "action-policy",
			ResourcePrefix:  "action-",
			Label:           "Action Movie",
			Principals:      []string{"arn:aws:iam::654654164204:user/aoss-author"},
			AllowFromPublic: true,
		},
		Collection: CollectionPlan{
			Name: "action-movies",
			Type: interfaces.WorkloadSearch,
		},
		Index:    "action-movies-eighties",
		Document: `{ "title": "Road House", "director": "Rowdy Herrington", "year": "1989" }` + "\n",
	}
}

// Source fetches the raw bytes of a plan location.
type Source interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// LoadPlan reads a YAML plan from a local path. Fields missing from the file
// keep their DefaultPlan values.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	return ParsePlan(data, path)
}

// LoadPlanFrom reads a YAML plan from any location src can fetch.
func LoadPlanFrom(ctx context.Context, src Source, location string) (Plan, error) {
	data, err := src.Fetch(ctx, location)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to fetch plan %s: %w", location, err)
	}
	return ParsePlan(data, location)
}

// ParsePlan overlays the YAML in data on DefaultPlan and validates the result.
// name is used in error messages only.
func ParsePlan(data []byte, name string) (Plan, error) {
	plan := DefaultPlan()
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("failed to parse plan %s: %w", name, err)
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, fmt.Errorf("invalid plan %s: %w", name, err)
	}
	return plan, nil
}

// PolicyRequests returns the three policy requests of the plan.
func (p Plan) PolicyRequests() []interfaces.PolicyRequest {
	return policy.Requests{
		Name:            p.Policy.Name,
		Prefix:          p.Policy.ResourcePrefix,
		Label:           p.Policy.Label,
		Principals:      p.Policy.Principals,
		AllowFromPublic: p.Policy.AllowFromPublic,
		Encryption:      p.Policy.Encryption,
		Network:         p.Policy.Network,
		Access:          p.Policy.Access,
	}.Build()
}

// CollectionRequest returns the collection request of the plan.
func (p Plan) CollectionRequest() interfaces.CollectionRequest {
	return interfaces.CollectionRequest{
		Name:        p.Collection.Name,
		Type:        p.Collection.Type,
		Description: p.Collection.Description,
	}
}

// Validate checks names and documents, and that the collection falls under
// the policies' resource prefix.
func (p Plan) Validate() error {
	var errs []error

	for _, req := range p.PolicyRequests() {
		if err := req.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.Collection.Name == "" {
		errs = append(errs, errors.New("collection name is empty"))
	}
	if !p.Collection.Type.Valid() {
		errs = append(errs, fmt.Errorf("unknown collection type %q", p.Collection.Type))
	}
	if p.Index == "" {
		errs = append(errs, errors.New("index name is empty"))
	}
	if !json.Valid([]byte(p.Document)) {
		errs = append(errs, errors.New("document is not valid JSON"))
	}
	if prefix := p.Policy.ResourcePrefix; prefix != "" && p.Collection.Name != "" && !strings.HasPrefix(p.Collection.Name, prefix) {
		errs = append(errs, fmt.Errorf("collection %q is not covered by policy prefix %q", p.Collection.Name, prefix))
	}

	return multierr.Combine(errs...)
}
