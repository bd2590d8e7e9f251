package stable

import (
	"context"
	"errors"
	"sync"
)

// Common errors
var (
	ErrNoState          = errors.New("stable: no state written")
	ErrClosed           = errors.New("stable: medium closed")
	ErrInvalidMagic     = errors.New("stable: invalid magic bytes")
	ErrChecksumMismatch = errors.New("stable: checksum mismatch")
	ErrTruncated        = errors.New("stable: truncated frame")
)

// Medium is a durable byte area that outlives the process.
type Medium interface {
	// Write replaces the stored bytes. On error the previous bytes remain.
	Write(ctx context.Context, data []byte) error

	// Read returns the stored bytes, or ErrNoState if nothing was written.
	Read(ctx context.Context) ([]byte, error)

	// Close releases the medium.
	Close() error
}

// MemoryMedium keeps the bytes in process memory.
type MemoryMedium struct {
	mu     sync.Mutex
	data   []byte
	set    bool
	closed bool
}

// NewMemoryMedium creates an empty in-memory medium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{}
}

// NewMemoryMediumWith creates an in-memory medium preloaded with data.
func NewMemoryMediumWith(data []byte) *MemoryMedium {
	return &MemoryMedium{data: append([]byte(nil), data...), set: true}
}

// Write implements Medium.
func (m *MemoryMedium) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}

// Read implements Medium.
func (m *MemoryMedium) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if !m.set {
		return nil, ErrNoState
	}
	return append([]byte(nil), m.data...), nil
}

// Close implements Medium.
func (m *MemoryMedium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
