// Package storage fetches provisioning inputs, such as plan files, from a
// location URI.
//
// Supported locations:
//
//   - ./plan.yaml or /etc/aoss/plan.yaml - a local path
//   - file:///etc/aoss/plan.yaml - the same, as a URI
//   - s3://bucket/path/plan.yaml?region=us-west-2&endpoint=http://localhost:4566
//
// S3 objects are read with the resolved AWS identity. The region defaults to
// the identity's region and the endpoint to the public S3 endpoint.
package storage
