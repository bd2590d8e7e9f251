package notetable

import "testing"

func TestOwnerIndex(t *testing.T) {
	idx := NewOwnerIndex()

	idx.Add("alice", 1)
	idx.Add("alice", 2)
	idx.Add("bob", 3)

	if idx.Count("alice") != 2 {
		t.Fatalf("Count(alice) = %d, want 2", idx.Count("alice"))
	}
	if idx.Owners() != 2 {
		t.Fatalf("Owners() = %d, want 2", idx.Owners())
	}

	idx.Remove("bob", 3)
	if idx.Get("bob") != nil {
		t.Fatal("empty owner set should be dropped")
	}
	if idx.Owners() != 1 {
		t.Fatalf("Owners() = %d, want 1", idx.Owners())
	}

	// Removing an unknown id is a no-op.
	idx.Remove("carol", 9)
	idx.Remove("alice", 9)
	if idx.Count("alice") != 2 {
		t.Fatalf("Count(alice) = %d, want 2", idx.Count("alice"))
	}
}
