// Package services provides domain services that implement business logic
// not owned by a single aggregate root.
//
// The package includes:
//   - WebhookVerifier: authenticates payment provider callbacks with
//     per-provider HMAC secrets before any payload parsing happens
//
// Domain services stay free of infrastructure concerns; adapters hand them
// raw values and interpret the errors they return.
package services
