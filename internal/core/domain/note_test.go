package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		wantErr error
	}{
		{"valid", "Groceries", "milk, eggs", nil},
		{"empty title", "", "milk", ErrNoteValidation},
		{"empty content", "Groceries", "", ErrNoteValidation},
		{"exactly at limit", "t", strings.Repeat("a", MaxNoteSizeBytes-1), nil},
		{"one byte over", "t", strings.Repeat("a", MaxNoteSizeBytes), ErrNoteTooLarge},
		{"multibyte counted in bytes", "t", strings.Repeat("é", MaxNoteSizeBytes/2), ErrNoteTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.title, tt.content)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateContent() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateContent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateContent_TooLargeReportsSize(t *testing.T) {
	err := ValidateContent("title", strings.Repeat("x", 1020))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "current size: 1025") {
		t.Errorf("error %q should report the current size", err.Error())
	}
}

func TestNote_Clone(t *testing.T) {
	n := &Note{ID: 1, Owner: "alice", Title: "a", Content: "b", CreatedAt: 42}
	c := n.Clone()
	c.Title = "changed"

	if n.Title != "a" {
		t.Error("Clone must not alias the original")
	}
	if (*Note)(nil).Clone() != nil {
		t.Error("Clone of nil must be nil")
	}
	if n.Size() != 2 {
		t.Errorf("Size() = %d, want 2", n.Size())
	}
}

func TestParseOwner(t *testing.T) {
	if o, ok := ParseOwner("  alice "); !ok || o != "alice" {
		t.Errorf("ParseOwner(alice) = %q, %v", o, ok)
	}
	o, ok := ParseOwner("")
	if ok || !o.IsAnonymous() {
		t.Errorf("ParseOwner(\"\") = %q, %v, want anonymous", o, ok)
	}
}

func TestState_CloneAndEqual(t *testing.T) {
	s := EmptyState()
	if s.NextID != FirstNoteID || len(s.Notes) != 0 {
		t.Fatalf("EmptyState() = %+v", s)
	}

	s.Notes[1] = &Note{ID: 1, Owner: "alice", Title: "a", Content: "b"}
	s.NextID = 2

	c := s.Clone()
	if !s.Equal(c) {
		t.Fatal("clone should be equal")
	}

	c.Notes[1].Title = "changed"
	if s.Notes[1].Title != "a" {
		t.Fatal("Clone must deep copy notes")
	}
	if s.Equal(c) {
		t.Fatal("states with different titles must not be equal")
	}

	c = s.Clone()
	c.NextID = 3
	if s.Equal(c) {
		t.Fatal("states with different allocators must not be equal")
	}
}

func TestState_MinNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []uint64
		want uint64
	}{
		{"empty", nil, FirstNoteID},
		{"dense", []uint64{1, 2, 3}, 4},
		{"gap", []uint64{1, 7}, 8},
		{"id zero", []uint64{0}, FirstNoteID},
		{"max id", []uint64{3, math.MaxUint64}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := EmptyState()
			for _, id := range tt.ids {
				s.Notes[id] = &Note{ID: id}
			}
			if got := s.MinNextID(); got != tt.want {
				t.Errorf("MinNextID() = %d, want %d", got, tt.want)
			}
		})
	}
}
