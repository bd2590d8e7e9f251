package notetable

import "github.com/yndnr/notechain-go/internal/core/domain"

// IDSet is a set of note ids.
//
// Not safe for concurrent use on its own; the table's lock covers it.
type IDSet map[uint64]struct{}

// Items returns the ids in unspecified order.
func (s IDSet) Items() []uint64 {
	items := make([]uint64, 0, len(s))
	for id := range s {
		items = append(items, id)
	}
	return items
}

// OwnerIndex maps an owner to the ids of the notes it created.
type OwnerIndex struct {
	index map[domain.Owner]IDSet
}

// NewOwnerIndex creates an empty owner index.
func NewOwnerIndex() *OwnerIndex {
	return &OwnerIndex{index: make(map[domain.Owner]IDSet)}
}

// Add records that owner holds note id.
func (i *OwnerIndex) Add(owner domain.Owner, id uint64) {
	set, ok := i.index[owner]
	if !ok {
		set = make(IDSet)
		i.index[owner] = set
	}
	set[id] = struct{}{}
}

// Remove forgets note id for owner.
func (i *OwnerIndex) Remove(owner domain.Owner, id uint64) {
	set, ok := i.index[owner]
	if !ok {
		return
	}
	delete(set, id)

	// Clean up empty sets
	if len(set) == 0 {
		delete(i.index, owner)
	}
}

// Get returns all note ids for owner.
func (i *OwnerIndex) Get(owner domain.Owner) []uint64 {
	set, ok := i.index[owner]
	if !ok {
		return nil
	}
	return set.Items()
}

// Count returns the number of notes held by owner.
func (i *OwnerIndex) Count(owner domain.Owner) int {
	return len(i.index[owner])
}

// Owners returns the number of distinct owners with at least one note.
func (i *OwnerIndex) Owners() int {
	return len(i.index)
}
