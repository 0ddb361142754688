// Package provisioner orchestrates a collection provisioning run.
//
// CollectionProvisioner creates the collection; an existing collection of the
// same name is resolved by lookup instead of failing. Poller waits for the
// collection to leave CREATING with a constant interval, returning the
// endpoint once ACTIVE and failing on FAILED, DELETING, an exhausted attempt
// budget or context cancellation. Pipeline runs policies, collection,
// readiness wait, index creation and a single document write, in that order.
package provisioner
