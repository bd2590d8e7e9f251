package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/yndnr/notechain-go/internal/core/domain"
)

// CurrentVersion is the version tag written by Save.
const CurrentVersion uint32 = 1

// Format identifies the layout a snapshot was decoded from.
type Format int

const (
	// FormatEmpty means no format matched (or nothing was stored) and
	// the empty baseline was adopted.
	FormatEmpty Format = iota

	// FormatV1 is the versioned container with version == 1.
	FormatV1

	// FormatLegacyTuple is the untagged (notes, next_id) pair.
	FormatLegacyTuple
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatEmpty:
		return "empty"
	case FormatV1:
		return "v1"
	case FormatLegacyTuple:
		return "legacy-tuple"
	default:
		return "format(" + strconv.Itoa(int(f)) + ")"
	}
}

// Version returns the version tag of the format, 0 for untagged layouts.
func (f Format) Version() uint32 {
	if f == FormatV1 {
		return 1
	}
	return 0
}

// decoder tries one layout.
type decoder struct {
	format Format
	decode func(data []byte) (domain.State, error)
}

// restoreOrder lists the current format followed by legacy formats,
// most recent first. A new version is added at the front and bumps
// CurrentVersion.
var restoreOrder = []decoder{
	{format: FormatV1, decode: decodeV1},
	{format: FormatLegacyTuple, decode: decodeLegacyTuple},
}

// Formats returns the formats Restore tries, in order.
func Formats() []Format {
	out := make([]Format, 0, len(restoreOrder))
	for _, d := range restoreOrder {
		out = append(out, d.format)
	}
	return out
}

// containerV1 is the current on-disk layout.
type containerV1 struct {
	Version uint32                  `json:"version"`
	Notes   map[uint64]*domain.Note `json:"notes"`
	NextID  uint64                  `json:"next_id"`
}

// wireNote mirrors domain.Note with every field required.
type wireNote struct {
	ID        *uint64 `json:"id"`
	Owner     *string `json:"owner"`
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	CreatedAt *uint64 `json:"created_at"`
}

type wireV1 struct {
	Version *uint32              `json:"version"`
	Notes   map[uint64]*wireNote `json:"notes"`
	NextID  *uint64              `json:"next_id"`
}

func encodeV1(state domain.State) ([]byte, error) {
	c := containerV1{
		Version: CurrentVersion,
		Notes:   make(map[uint64]*domain.Note, len(state.Notes)),
		NextID:  state.NextID,
	}
	for id, n := range state.Notes {
		c.Notes[id] = n
	}
	return json.Marshal(c)
}

func decodeV1(data []byte) (domain.State, error) {
	var w wireV1
	if err := strictUnmarshal(data, &w); err != nil {
		return domain.State{}, err
	}
	if w.Version == nil {
		return domain.State{}, errors.New("missing version")
	}
	if *w.Version != CurrentVersion {
		return domain.State{}, fmt.Errorf("version %d, want %d", *w.Version, CurrentVersion)
	}
	if w.Notes == nil {
		return domain.State{}, errors.New("missing notes")
	}
	if w.NextID == nil {
		return domain.State{}, errors.New("missing next_id")
	}
	return buildState(w.Notes, *w.NextID)
}

func decodeLegacyTuple(data []byte) (domain.State, error) {
	var parts []json.RawMessage
	if err := strictUnmarshal(data, &parts); err != nil {
		return domain.State{}, err
	}
	if len(parts) != 2 {
		return domain.State{}, fmt.Errorf("tuple has %d elements, want 2", len(parts))
	}

	var notes map[uint64]*wireNote
	if err := strictUnmarshal(parts[0], &notes); err != nil {
		return domain.State{}, fmt.Errorf("notes: %w", err)
	}
	if notes == nil {
		return domain.State{}, errors.New("missing notes")
	}

	var nextID *uint64
	if err := strictUnmarshal(parts[1], &nextID); err != nil {
		return domain.State{}, fmt.Errorf("next_id: %w", err)
	}
	if nextID == nil {
		return domain.State{}, errors.New("missing next_id")
	}
	return buildState(notes, *nextID)
}

// buildState checks the decoded notes for structural consistency and
// converts them to a domain.State. The allocator is taken as stored;
// Codec.Decode reconciles it with the note ids.
func buildState(notes map[uint64]*wireNote, nextID uint64) (domain.State, error) {
	state := domain.State{
		Notes:  make(map[uint64]*domain.Note, len(notes)),
		NextID: nextID,
	}
	for key, w := range notes {
		if w == nil {
			return domain.State{}, fmt.Errorf("note %d: null", key)
		}
		if w.ID == nil || w.Owner == nil || w.Title == nil || w.Content == nil || w.CreatedAt == nil {
			return domain.State{}, fmt.Errorf("note %d: missing field", key)
		}
		if *w.ID != key {
			return domain.State{}, fmt.Errorf("note %d: stored under key %d", *w.ID, key)
		}
		if *w.ID == math.MaxUint64 {
			return domain.State{}, fmt.Errorf("note %d: leaves no id for next_id", *w.ID)
		}
		state.Notes[key] = &domain.Note{
			ID:        *w.ID,
			Owner:     domain.Owner(*w.Owner),
			Title:     *w.Title,
			Content:   *w.Content,
			CreatedAt: *w.CreatedAt,
		}
	}
	return state, nil
}

// strictUnmarshal rejects unknown fields and trailing data.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after value")
	}
	return nil
}
