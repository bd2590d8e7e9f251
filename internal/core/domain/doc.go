// Package domain defines the core domain models for NoteChain.
//
// Domain models are pure value objects without any IO dependencies
// or framework coupling. This package contains:
//
//   - Note: the owned note record and its content limits
//   - Owner: opaque caller identity attached to every note
//   - State: a full copy of the note table plus the id allocator value
//   - Errors: coded domain errors shared by every layer
package domain
