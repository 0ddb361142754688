// Package policy builds and provisions OpenSearch Serverless policies.
//
// # Documents
//
// EncryptionPolicy, NetworkPolicy and AccessPolicy are structured rule
// documents implementing interfaces.PolicyDocument. Each validates the
// requirements of its type and renders the JSON the control plane expects:
//
//   - encryption: collection rules plus an owned-key flag (AWSOwnedKey or KmsARN)
//   - network: one or more rule blocks over collection/dashboard resources,
//     optionally allowing public access
//   - data: rule blocks over index/collection resource patterns, each with
//     permissions and at least one principal
//
// Requests derives all three documents for a resource name prefix.
//
// # Provisioning
//
// Provisioner.CreatePolicy submits one request. A conflict means the policy
// exists from a previous run; it is logged and reported as
// interfaces.OutcomeAlreadyExists instead of an error.
//
// Provisioner.CreateAll submits independent requests either sequentially or
// concurrently; one failure never prevents the others from being attempted.
package policy
