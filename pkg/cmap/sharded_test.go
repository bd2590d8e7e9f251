package cmap

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

type owner string

func TestMap_Basic(t *testing.T) {
	m := New[owner, int]()

	if _, ok := m.Get("alice"); ok {
		t.Fatal("empty map returned a value")
	}

	m.Set("alice", 1)
	m.Set("bob", 2)
	m.Set("alice", 3)

	if v, ok := m.Get("alice"); !ok || v != 3 {
		t.Errorf("Get(alice) = %d, %v; want 3, true", v, ok)
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}

	m.Delete("alice")
	if _, ok := m.Get("alice"); ok {
		t.Error("deleted key still present")
	}

	m.Delete("bob")
	if m.Count() != 0 {
		t.Errorf("Count() after deletes = %d", m.Count())
	}
}

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{1, 1},
		{8, 8},
		{64, 64},
		{0, DefaultShardCount},
		{-4, DefaultShardCount},
		{12, DefaultShardCount},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			if got := NewWithShards[owner, int](tt.in).ShardCount(); got != tt.want {
				t.Errorf("ShardCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMap_GetOrCompute(t *testing.T) {
	m := New[owner, int]()

	v, loaded := m.GetOrCompute("alice", func() int { return 7 })
	if loaded || v != 7 {
		t.Errorf("first call = %d, %v; want 7, false", v, loaded)
	}

	v, loaded = m.GetOrCompute("alice", func() int {
		t.Error("create called for an existing key")
		return 0
	})
	if !loaded || v != 7 {
		t.Errorf("second call = %d, %v; want 7, true", v, loaded)
	}
}

func TestMap_GetOrComputeConcurrent(t *testing.T) {
	m := New[owner, *int]()
	var creates atomic.Int32

	var wg sync.WaitGroup
	results := make([]*int, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = m.GetOrCompute("shared", func() *int {
				creates.Add(1)
				return new(int)
			})
		}(i)
	}
	wg.Wait()

	if creates.Load() != 1 {
		t.Errorf("create ran %d times, want 1", creates.Load())
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("goroutine %d got a different value", i)
		}
	}
}

func TestMap_DeleteFunc(t *testing.T) {
	m := NewWithShards[owner, int](4)
	for i := 0; i < 100; i++ {
		m.Set(owner(fmt.Sprintf("user-%d", i)), i)
	}

	removed := m.DeleteFunc(func(_ owner, v int) bool { return v%2 == 0 })
	if removed != 50 {
		t.Errorf("removed = %d, want 50", removed)
	}
	if m.Count() != 50 {
		t.Errorf("Count() = %d, want 50", m.Count())
	}
	if _, ok := m.Get("user-4"); ok {
		t.Error("even entry survived DeleteFunc")
	}
	if v, ok := m.Get("user-5"); !ok || v != 5 {
		t.Errorf("Get(user-5) = %d, %v", v, ok)
	}

	if n := m.DeleteFunc(func(owner, int) bool { return false }); n != 0 {
		t.Errorf("no-op DeleteFunc removed %d", n)
	}
}

func TestMap_ConcurrentAccess(t *testing.T) {
	m := New[owner, int]()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := owner(fmt.Sprintf("g%d-%d", g, i))
				m.Set(key, i)
				m.Get(key)
				if i%2 == 0 {
					m.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if m.Count() != 8*100 {
		t.Errorf("Count() = %d, want %d", m.Count(), 8*100)
	}
}
