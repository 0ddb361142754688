// Package interfaces defines core interfaces and types for the collection
// provisioner, separating interface definitions from implementations.
//
// # Control Plane
//
// ControlPlane creates security policies (encryption, network), data access
// policies and collections, and reports collection status. Implementations
// classify "already exists" rejections as ErrConflict.
//
// # Data Plane
//
// DocumentStore is the document-store client used against an ACTIVE collection
// endpoint. DocumentStoreFactory binds one to a discovered endpoint.
//
// # Types
//
//   - PolicyRequest / PolicyDocument: a named, typed rule document
//   - CollectionRequest / CollectionHandle: collection creation input and output
//   - CollectionStatus: an observation of the collection lifecycle
//   - Outcome: Created or AlreadyExists, the result of an idempotent step
package interfaces
