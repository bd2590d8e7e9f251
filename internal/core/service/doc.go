// Package service provides domain services for NoteChain.
//
// Domain services contain the request-handling rules and orchestrate
// operations on the note table. They define interfaces for their storage
// dependencies, allowing for dependency injection and testability.
//
// This package contains:
//
//   - NoteService: validated note create, update, delete, list and fetch
//   - RateLimiterRegistry: per-client token buckets used by transports,
//     evicted after an idle period
//
// Services are thread-safe. All note state lives in the repository.
package service
