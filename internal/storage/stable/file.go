package stable

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Magic bytes identify framed stable files.
var magicBytes = []byte("NCSTABLE")

const (
	// FileName is the name of the stable file inside the data directory.
	FileName = "stable.bin"

	tempPrefix    = "stable-tmp-"
	checksumSize  = 32
	headerVersion = 1
)

type fileHeader struct {
	Version   int   `json:"version"`
	WrittenAt int64 `json:"written_at"`
	DataSize  int   `json:"data_size"`
}

// FileInfo describes the stable file currently on disk.
type FileInfo struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Framed    bool   `json:"framed"`
	WrittenAt int64  `json:"written_at,omitempty"` // Unix milliseconds
	DataSize  int    `json:"data_size"`
	Checksum  string `json:"checksum,omitempty"`
}

// FileMedium stores the bytes in a framed file that is replaced by rename.
type FileMedium struct {
	dir  string
	path string

	mu     sync.Mutex
	closed bool
}

// NewFileMedium creates a file medium rooted at dir, creating dir if needed.
func NewFileMedium(dir string) (*FileMedium, error) {
	if dir == "" {
		return nil, fmt.Errorf("stable: dir is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("stable: create dir: %w", err)
	}
	return &FileMedium{
		dir:  dir,
		path: filepath.Join(dir, FileName),
	}, nil
}

// Path returns the location of the stable file.
func (m *FileMedium) Path() string {
	return m.path
}

// Write implements Medium.
func (m *FileMedium) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(m.dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("stable: create temp file: %w", err)
	}
	// Clean up if we fail before rename
	defer os.Remove(tmp.Name())

	if err := writeFrame(tmp, data, time.Now()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("stable: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("stable: close: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("stable: chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("stable: rename: %w", err)
	}
	// The rename is durable only once the directory entry is.
	if err := syncDir(m.dir); err != nil {
		return fmt.Errorf("stable: sync dir: %w", err)
	}
	return nil
}

// syncDir flushes the directory entries of dir. Tests replace it.
var syncDir = func(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}

// Read implements Medium.
func (m *FileMedium) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	raw, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("stable: read: %w", err)
	}

	if !bytes.HasPrefix(raw, magicBytes) {
		return raw, nil
	}
	data, _, _, err := readFrame(raw)
	return data, err
}

// Stat reports what is on disk without returning the payload.
func (m *FileMedium) Stat() (*FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("stable: read: %w", err)
	}

	info := &FileInfo{
		Path: m.path,
		Size: int64(len(raw)),
	}
	if !bytes.HasPrefix(raw, magicBytes) {
		info.DataSize = len(raw)
		return info, nil
	}

	data, hdr, sum, err := readFrame(raw)
	if err != nil {
		return nil, err
	}
	info.Framed = true
	info.WrittenAt = hdr.WrittenAt
	info.DataSize = len(data)
	info.Checksum = hex.EncodeToString(sum)
	return info, nil
}

// Close implements Medium.
func (m *FileMedium) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func writeFrame(w io.Writer, data []byte, now time.Time) error {
	hash := sha256.New()
	mw := io.MultiWriter(w, hash)

	if _, err := mw.Write(magicBytes); err != nil {
		return fmt.Errorf("stable: write magic: %w", err)
	}

	hdrJSON, err := json.Marshal(fileHeader{
		Version:   headerVersion,
		WrittenAt: now.UnixMilli(),
		DataSize:  len(data),
	})
	if err != nil {
		return fmt.Errorf("stable: marshal header: %w", err)
	}

	var hdrLen [4]byte
	binary.BigEndian.PutUint32(hdrLen[:], uint32(len(hdrJSON)))
	if _, err := mw.Write(hdrLen[:]); err != nil {
		return fmt.Errorf("stable: write header length: %w", err)
	}
	if _, err := mw.Write(hdrJSON); err != nil {
		return fmt.Errorf("stable: write header: %w", err)
	}

	var dataLen [4]byte
	binary.BigEndian.PutUint32(dataLen[:], uint32(len(data)))
	if _, err := mw.Write(dataLen[:]); err != nil {
		return fmt.Errorf("stable: write data length: %w", err)
	}
	if _, err := mw.Write(data); err != nil {
		return fmt.Errorf("stable: write data: %w", err)
	}

	// Checksum trailer is not part of the hash.
	if _, err := w.Write(hash.Sum(nil)); err != nil {
		return fmt.Errorf("stable: write checksum: %w", err)
	}
	return nil
}

func readFrame(raw []byte) ([]byte, *fileHeader, []byte, error) {
	if len(raw) < len(magicBytes)+8+checksumSize {
		return nil, nil, nil, ErrTruncated
	}

	body, expected := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	sum := sha256.Sum256(body)
	if !bytes.Equal(sum[:], expected) {
		return nil, nil, nil, ErrChecksumMismatch
	}

	r := bytes.NewReader(body)
	magic := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(r, magic); err != nil || !bytes.Equal(magic, magicBytes) {
		return nil, nil, nil, ErrInvalidMagic
	}

	hdrJSON, err := readChunk(r)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(hdrJSON) == 0 {
		return nil, nil, nil, fmt.Errorf("stable: empty header")
	}
	var hdr fileHeader
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return nil, nil, nil, fmt.Errorf("stable: unmarshal header: %w", err)
	}

	data, err := readChunk(r)
	if err != nil {
		return nil, nil, nil, err
	}
	if r.Len() != 0 {
		return nil, nil, nil, fmt.Errorf("stable: %d trailing bytes before checksum", r.Len())
	}
	return data, &hdr, expected, nil
}

func readChunk(r *bytes.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, ErrTruncated
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if int64(n) > int64(r.Len()) {
		return nil, ErrTruncated
	}
	chunk := make([]byte, n)
	if _, err := io.ReadFull(r, chunk); err != nil {
		return nil, ErrTruncated
	}
	return chunk, nil
}
