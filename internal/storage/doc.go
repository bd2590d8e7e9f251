// Package storage provides the storage engine for NoteChain.
//
// The engine owns the note table and connects it to a durable medium
// through the snapshot codec at the restart boundary:
//
//   - OnPostRestart runs once at startup, before any request is served,
//     and replaces the table with whatever the medium holds.
//   - OnPreRestart runs once at shutdown, after request handling has
//     stopped, and writes the whole table to the medium.
//
// Neither hook returns an error or panics. Failures are logged, counted
// and folded into the returned report. A failed restore leaves an empty
// table with the allocator at 1; a failed save leaves the previously
// stored snapshot in place.
package storage
