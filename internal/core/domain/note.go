// Package domain defines the core domain models for NoteChain.
package domain

import "fmt"

// MaxNoteSizeBytes bounds len(title)+len(content) of a single note.
const MaxNoteSizeBytes = 1024

// Note is a single owned note.
//
// ID, Owner and CreatedAt are fixed at creation. Title and Content change
// only through an ownership-checked update.
type Note struct {
	ID        uint64 `json:"id"`
	Owner     Owner  `json:"owner"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt uint64 `json:"created_at"` // nanoseconds since Unix epoch
}

// Clone returns a copy of the note. Every field is a value type, so a
// shallow copy is a full copy.
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}

// Size returns the byte length counted against MaxNoteSizeBytes.
func (n *Note) Size() int {
	return len(n.Title) + len(n.Content)
}

// ValidateContent checks title and content against the note limits.
//
// The table never calls this; the service validates before every
// create and update.
func ValidateContent(title, content string) error {
	if title == "" {
		return ErrNoteValidation.WithDetails("title cannot be empty")
	}
	if content == "" {
		return ErrNoteValidation.WithDetails("content cannot be empty")
	}
	candidate := Note{Title: title, Content: content}
	if size := candidate.Size(); size > MaxNoteSizeBytes {
		return ErrNoteTooLarge.WithDetails(fmt.Sprintf(
			"note (title + content) exceeds %d byte limit, current size: %d",
			MaxNoteSizeBytes, size))
	}
	return nil
}
