package interfaces

import "errors"

var (
	// ErrConflict is returned when the remote side reports that the named
	// resource already exists or its rules collide with an existing one.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidPolicy is returned when a policy request fails local validation.
	ErrInvalidPolicy = errors.New("invalid policy")

	// ErrCollectionNotFound is returned when a status lookup does not report the collection.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionFailed is returned when the collection reaches the FAILED state.
	ErrCollectionFailed = errors.New("collection creation failed")

	// ErrUnexpectedCollectionState is returned for states from which the
	// collection cannot become ACTIVE, such as DELETING.
	ErrUnexpectedCollectionState = errors.New("unexpected collection state")

	// ErrPollLimitReached is returned when the readiness poller exhausts its attempts.
	ErrPollLimitReached = errors.New("collection did not become active within the poll limit")

	// ErrMissingEndpoint is returned when an ACTIVE collection reports no endpoint.
	ErrMissingEndpoint = errors.New("active collection has no endpoint")

	// ErrDataPlane is returned when the collection endpoint rejects a request.
	ErrDataPlane = errors.New("data plane request failed")
)
