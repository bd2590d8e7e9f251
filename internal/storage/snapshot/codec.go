package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yndnr/notechain-go/internal/core/domain"
	"github.com/yndnr/notechain-go/internal/storage/stable"
)

// Codec saves and restores the note table state through a stable.Medium.
type Codec struct {
	encode func(domain.State) ([]byte, error)
	logger *slog.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithEncoder replaces the serializer used by Save.
// Tests use it to inject encoder faults.
func WithEncoder(fn func(domain.State) ([]byte, error)) Option {
	return func(c *Codec) {
		c.encode = fn
	}
}

// WithLogger sets the logger that reports corrections made while decoding.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCodec creates a codec writing the current format.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{
		encode: encodeV1,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode serializes state in the current format.
func (c *Codec) Encode(state domain.State) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = domain.ErrSnapshotEncode.WithCause(newFault("save", r))
		}
	}()

	data, err = c.encode(state)
	if err != nil {
		return nil, domain.ErrSnapshotEncode.WithCause(err)
	}
	return data, nil
}

// Save encodes state and writes it to medium. The medium is not touched
// when encoding fails, so the previous snapshot stays readable.
func (c *Codec) Save(ctx context.Context, medium stable.Medium, state domain.State) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.ErrStableWrite.WithCause(newFault("save", r))
		}
	}()

	data, err := c.Encode(state)
	if err != nil {
		return err
	}
	if err := medium.Write(ctx, data); err != nil {
		return domain.ErrStableWrite.WithCause(err)
	}
	return nil
}

// Decode tries every known format in order and returns the first match.
// On failure it returns the empty state, FormatEmpty and an error that
// joins the reason each format was rejected.
//
// A matched snapshot whose next_id does not exceed every stored id is
// still adopted: next_id is raised to one past the highest id and the
// correction is logged at warn level.
func (c *Codec) Decode(data []byte) (state domain.State, format Format, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, format = domain.EmptyState(), FormatEmpty
			err = domain.ErrSnapshotDecode.WithCause(newFault("restore", r))
		}
	}()

	var errs []error
	for _, d := range restoreOrder {
		s, derr := d.decode(data)
		if derr == nil {
			if floor := s.MinNextID(); s.NextID < floor {
				c.logger.Warn("snapshot next_id raised above stored note ids",
					"format", d.format.String(),
					"stored_next_id", s.NextID,
					"next_id", floor,
					"notes", len(s.Notes))
				s.NextID = floor
			}
			return s, d.format, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", d.format, derr))
	}
	return domain.EmptyState(), FormatEmpty, domain.ErrSnapshotDecode.WithCause(errors.Join(errs...))
}

// Restore reads medium and decodes it.
//
// A medium that was never written yields the empty state with no error.
// Any other failure yields the empty state and a descriptive error; the
// caller decides whether to log it. Restore never panics.
func (c *Codec) Restore(ctx context.Context, medium stable.Medium) (state domain.State, format Format, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, format = domain.EmptyState(), FormatEmpty
			err = domain.ErrStableRead.WithCause(newFault("restore", r))
		}
	}()

	data, err := medium.Read(ctx)
	if err != nil {
		if errors.Is(err, stable.ErrNoState) {
			return domain.EmptyState(), FormatEmpty, nil
		}
		return domain.EmptyState(), FormatEmpty, domain.ErrStableRead.WithCause(err)
	}
	return c.Decode(data)
}
