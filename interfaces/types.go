// Package interfaces defines the core interfaces and types for the collection
// provisioner. It provides the contract between components without implementation details.
package interfaces

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PolicyType selects which kind of policy a PolicyRequest describes.
type PolicyType string

const (
	// PolicyTypeEncryption scopes the key used to encrypt matching collections.
	PolicyTypeEncryption PolicyType = "encryption"
	// PolicyTypeNetwork scopes where matching collections can be reached from.
	PolicyTypeNetwork PolicyType = "network"
	// PolicyTypeData is a data access policy granting permissions to principals.
	PolicyTypeData PolicyType = "data"
)

// IsSecurityPolicy reports whether the policy is created through the security
// policy API (encryption and network) rather than the access policy API.
func (t PolicyType) IsSecurityPolicy() bool {
	return t == PolicyTypeEncryption || t == PolicyTypeNetwork
}

// Valid reports whether t is one of the known policy types.
func (t PolicyType) Valid() bool {
	switch t {
	case PolicyTypeEncryption, PolicyTypeNetwork, PolicyTypeData:
		return true
	}
	return false
}

func (t PolicyType) String() string {
	return string(t)
}

// PolicyDocument is a structured rule document that renders to the JSON shape
// expected by the control plane.
type PolicyDocument interface {
	// Type returns the policy type this document is valid for.
	Type() PolicyType
	// Validate checks the document's structural requirements.
	Validate() error
	// JSON renders the document for submission.
	JSON() (string, error)
}

// PolicyRequest describes a named policy to create.
// The (Name, Type) pair is the idempotency key on the remote side.
type PolicyRequest struct {
	Name        string
	Type        PolicyType
	Description string
	Document    PolicyDocument
}

// Key returns the remote idempotency key of the request.
func (r PolicyRequest) Key() string {
	return fmt.Sprintf("%s/%s", r.Type, r.Name)
}

// Validate checks that the request names a policy and carries a document
// valid for the declared type.
func (r PolicyRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: policy name is empty", ErrInvalidPolicy)
	}
	if r.Type == "" {
		return fmt.Errorf("%w: policy %q has no type", ErrInvalidPolicy, r.Name)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: policy %q has unknown type %q", ErrInvalidPolicy, r.Name, r.Type)
	}
	if r.Document == nil {
		return fmt.Errorf("%w: policy %q has no document", ErrInvalidPolicy, r.Name)
	}
	if r.Document.Type() != r.Type {
		return fmt.Errorf("%w: policy %q declares type %q but carries a %q document",
			ErrInvalidPolicy, r.Name, r.Type, r.Document.Type())
	}
	if err := r.Document.Validate(); err != nil {
		return fmt.Errorf("policy %q: %w", r.Name, err)
	}
	return nil
}

// PolicyDetail is what the control plane reports about a created policy.
type PolicyDetail struct {
	Name        string          `json:"name"`
	Type        PolicyType      `json:"type"`
	Description string          `json:"description,omitempty"`
	Version     string          `json:"policyVersion,omitempty"`
	CreatedDate int64           `json:"createdDate,omitempty"`
	Policy      json.RawMessage `json:"policy,omitempty"`
}

// WorkloadType is the collection workload type.
type WorkloadType string

const (
	WorkloadSearch       WorkloadType = "SEARCH"
	WorkloadTimeSeries   WorkloadType = "TIMESERIES"
	WorkloadVectorSearch WorkloadType = "VECTORSEARCH"
)

// Valid reports whether w is a known workload type.
func (w WorkloadType) Valid() bool {
	switch w {
	case WorkloadSearch, WorkloadTimeSeries, WorkloadVectorSearch:
		return true
	}
	return false
}

// CollectionRequest describes a collection to create.
// Name is unique per account and region.
type CollectionRequest struct {
	Name        string
	Type        WorkloadType
	Description string
}

// CollectionState is the lifecycle state of a collection as reported by the
// control plane. The state is mutated remotely and only observed locally.
type CollectionState string

const (
	CollectionCreating CollectionState = "CREATING"
	CollectionActive   CollectionState = "ACTIVE"
	CollectionFailed   CollectionState = "FAILED"
	CollectionDeleting CollectionState = "DELETING"
)

// CollectionHandle identifies a created (or already existing) collection.
type CollectionHandle struct {
	ID     string
	Name   string
	ARN    string
	Type   WorkloadType
	Status CollectionState
}

// CollectionStatus is a point-in-time observation of a collection.
// Endpoint is only populated once the collection is ACTIVE.
type CollectionStatus struct {
	ID                string
	Name              string
	State             CollectionState
	Endpoint          string
	DashboardEndpoint string
	FailureCode       string
	FailureMessage    string
	ObservedAt        time.Time
}

// Outcome is the result of an idempotent-by-convention provisioning step.
// Errors are returned separately; an Outcome is only meaningful with a nil error.
type Outcome int

const (
	// OutcomeCreated means the remote resource was created by this call.
	OutcomeCreated Outcome = iota
	// OutcomeAlreadyExists means the remote rejected the call because the
	// resource already exists; it is assumed correct from a previous run.
	OutcomeAlreadyExists
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}
