package notetable

import (
	"context"
	"sync"

	"github.com/yndnr/notechain-go/internal/core/domain"
)

// Table is the in-memory note table plus its identifier allocator.
type Table struct {
	mu sync.RWMutex

	// Primary index: note id -> Note
	notes map[uint64]*domain.Note

	// Secondary index: owner -> set of note ids
	owners *OwnerIndex

	// Next id handed out by AllocateID. Never decreases except on Clear.
	nextID uint64
}

// New creates an empty table with the allocator at domain.FirstNoteID.
func New() *Table {
	return &Table{
		notes:  make(map[uint64]*domain.Note),
		owners: NewOwnerIndex(),
		nextID: domain.FirstNoteID,
	}
}

// AllocateID returns the next unused id and advances the allocator.
func (t *Table) AllocateID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	return id
}

// Insert stores note under note.ID, replacing any existing entry.
func (t *Table) Insert(_ context.Context, note *domain.Note) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.putLocked(note.Clone())
}

// Get returns a copy of the note with the given id.
// No ownership check is applied.
func (t *Table) Get(_ context.Context, id uint64) (*domain.Note, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	note, ok := t.notes[id]
	if !ok {
		return nil, false
	}
	return note.Clone(), true
}

// ListByOwner returns copies of all notes created by owner, in no
// particular order.
func (t *Table) ListByOwner(_ context.Context, owner domain.Owner) []*domain.Note {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := t.owners.Get(owner)
	notes := make([]*domain.Note, 0, len(ids))
	for _, id := range ids {
		note, ok := t.notes[id]
		if !ok {
			continue
		}
		notes = append(notes, note.Clone())
	}
	return notes
}

// Update replaces title and content of note id if owner created it.
func (t *Table) Update(_ context.Context, id uint64, title, content string, owner domain.Owner) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	note, ok := t.notes[id]
	if !ok {
		return domain.ErrNoteNotFound
	}
	if note.Owner != owner {
		return domain.ErrNotOwner
	}

	note.Title = title
	note.Content = content
	return nil
}

// Remove deletes note id if owner created it.
func (t *Table) Remove(_ context.Context, id uint64, owner domain.Owner) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	note, ok := t.notes[id]
	if !ok {
		return domain.ErrNoteNotFound
	}
	if note.Owner != owner {
		return domain.ErrNotOwner
	}

	delete(t.notes, id)
	t.owners.Remove(note.Owner, id)
	return nil
}

// Clear drops every note and resets the allocator.
// Only restart recovery should call this.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetLocked()
}

// Export returns a deep copy of the notes and the allocator value.
func (t *Table) Export() domain.State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	state := domain.State{
		Notes:  make(map[uint64]*domain.Note, len(t.notes)),
		NextID: t.nextID,
	}
	for id, note := range t.notes {
		state.Notes[id] = note.Clone()
	}
	return state
}

// Replace swaps the whole table for state. Nothing is merged.
func (t *Table) Replace(state domain.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetLocked()
	for _, note := range state.Notes {
		if note == nil {
			continue
		}
		t.putLocked(note.Clone())
	}
	if state.NextID >= domain.FirstNoteID {
		t.nextID = state.NextID
	}
}

// Count returns the number of stored notes.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.notes)
}

// NextID returns the id the next AllocateID call will hand out.
func (t *Table) NextID() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.nextID
}

func (t *Table) putLocked(note *domain.Note) {
	if old, ok := t.notes[note.ID]; ok {
		t.owners.Remove(old.Owner, old.ID)
	}
	t.notes[note.ID] = note
	t.owners.Add(note.Owner, note.ID)
}

func (t *Table) resetLocked() {
	t.notes = make(map[uint64]*domain.Note)
	t.owners = NewOwnerIndex()
	t.nextID = domain.FirstNoteID
}
