// Package main (cmd/aoss-provision) provisions an Amazon OpenSearch Serverless
// collection end to end.
//
// A run creates the encryption, network and data access policies for a
// resource prefix, creates the collection, polls until it is ACTIVE, then
// creates an index on the collection endpoint and writes one document into it.
// Data plane requests are signed with SigV4 for the "aoss" service using an
// unsigned payload.
//
// Policies and the collection that already exist are reported and the run
// continues. An index that already exists ends the run with an error.
//
// Example usage:
//
//     aoss-provision --region=us-east-1 --profile=aoss-author
//
//     aoss-provision --plan=./drama.yaml --poll-interval=10s --parallel-policies
//
//     aoss-provision --dry-run --log-debug
package main
