// Package dataplane provides document-store clients for an ACTIVE collection.
//
// Client wraps the OpenSearch Go client. It is transport-agnostic: request
// authentication is supplied by the http.RoundTripper it is built with,
// normally a signer.HookTransport. Non-2xx responses become errors wrapping
// interfaces.ErrDataPlane; a duplicate index additionally wraps
// interfaces.ErrConflict.
//
// MemoryStore is an in-memory stand-in used by dry runs.
package dataplane
