// Package notetable holds the in-memory note table of NoteChain.
//
// The table owns every note and the identifier allocator. Reads hand out
// clones so callers can never alias stored notes.
//
// Thread Safety:
//
// A single RWMutex guards the notes, the owner index and the allocator,
// so a snapshot export always sees a consistent pair of notes and next id.
//
// The table does not validate note content. Size and emptiness checks
// belong to the service that calls it.
package notetable
