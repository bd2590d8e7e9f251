// Package snapshot converts the note table state to and from its durable
// representation.
//
// The current format is a versioned JSON object:
//
//	{"version":1,"notes":{"<id>":{...}},"next_id":N}
//
// Releases before the version tag stored a bare two-element array:
//
//	[{"<id>":{...}},N]
//
// Restore tries the current format first, then every legacy format from
// most to least recent, and adopts the first that decodes and passes
// structural checks. When nothing matches it returns an empty state with
// the allocator at 1 together with an error describing every attempt.
//
// Save and Restore never panic. A panic raised while encoding, decoding
// or touching the medium is recovered into a *FaultError.
package snapshot
