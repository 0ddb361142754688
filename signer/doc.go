// Package signer authenticates data-plane requests with AWS Signature
// Version 4 for a service identity that differs from the one the
// document-store client declares for itself.
//
// Signer.Rewrite is a plain request-to-request hook:
//
//  1. the request arrives exactly as the document-store client built it
//  2. the signing identity is forced to Signer.Service / Signer.Region
//  3. the body is detached, Content-Length is dropped and
//     X-Amz-Content-Sha256 is set to UNSIGNED-PAYLOAD
//  4. the request is signed over method, path, query and headers
//  5. the original body bytes are reattached
//
// HookTransport injects the hook into any http.Client or client library that
// accepts an http.RoundTripper.
package signer
