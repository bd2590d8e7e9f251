// Package domain defines the core domain models for NoteChain.
package domain

import "math"

// FirstNoteID is the allocator value of an empty table.
const FirstNoteID uint64 = 1

// State is a full copy of the note table and its id allocator.
//
// It is the unit exchanged between the table and the snapshot codec:
// the table exports one before a restart and is replaced by one after.
type State struct {
	Notes  map[uint64]*Note
	NextID uint64
}

// EmptyState returns the state of a freshly initialized table.
func EmptyState() State {
	return State{
		Notes:  make(map[uint64]*Note),
		NextID: FirstNoteID,
	}
}

// MinNextID returns the smallest allocator value that cannot hand out an
// id already present in Notes. It is at least FirstNoteID. A note with id
// math.MaxUint64 leaves no room and yields 0.
func (s State) MinNextID() uint64 {
	floor := FirstNoteID
	for id := range s.Notes {
		if id == math.MaxUint64 {
			return 0
		}
		if id >= floor {
			floor = id + 1
		}
	}
	return floor
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	notes := make(map[uint64]*Note, len(s.Notes))
	for id, n := range s.Notes {
		notes[id] = n.Clone()
	}
	return State{Notes: notes, NextID: s.NextID}
}

// Equal reports whether two states hold the same notes and allocator value.
func (s State) Equal(other State) bool {
	if s.NextID != other.NextID || len(s.Notes) != len(other.Notes) {
		return false
	}
	for id, n := range s.Notes {
		o, ok := other.Notes[id]
		if !ok || n == nil || o == nil || *n != *o {
			return false
		}
	}
	return true
}
