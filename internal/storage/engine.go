package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/yndnr/notechain-go/internal/storage/notetable"
	"github.com/yndnr/notechain-go/internal/storage/snapshot"
	"github.com/yndnr/notechain-go/internal/storage/stable"
	"github.com/yndnr/notechain-go/internal/telemetry/metric"
)

// Config configures the storage engine.
type Config struct {
	// Medium is the durable storage the hooks read and write. Required.
	Medium stable.Medium

	// Codec overrides the snapshot codec. Default: a codec logging to Logger.
	Codec *snapshot.Codec

	// Metrics receives hook outcomes. Optional.
	Metrics *metric.Registry

	// Logger is the structured logger.
	Logger *slog.Logger
}

// SaveReport describes one OnPreRestart run.
type SaveReport struct {
	Notes   int
	NextID  uint64
	Elapsed time.Duration
	Err     error // nil on success
}

// RestoreReport describes one OnPostRestart run.
type RestoreReport struct {
	Format  snapshot.Format
	Notes   int
	NextID  uint64
	Elapsed time.Duration
	Err     error // why the empty baseline was adopted, if it was
}

// Engine is the storage engine that combines the note table, the
// snapshot codec and the durable medium.
type Engine struct {
	table   *notetable.Table
	codec   *snapshot.Codec
	medium  stable.Medium
	metrics *metric.Registry
	logger  *slog.Logger

	ready atomic.Bool
}

// New creates a new storage engine with an empty table.
//
// This does NOT restore anything. Call OnPostRestart after New.
func New(cfg Config) (*Engine, error) {
	if cfg.Medium == nil {
		return nil, fmt.Errorf("storage: medium is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Codec == nil {
		cfg.Codec = snapshot.NewCodec(snapshot.WithLogger(cfg.Logger))
	}

	e := &Engine{
		table:   notetable.New(),
		codec:   cfg.Codec,
		medium:  cfg.Medium,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	e.metrics.RegisterNoteCount(e.table.Count)
	return e, nil
}

// Table returns the note table owned by the engine.
func (e *Engine) Table() *notetable.Table {
	return e.table
}

// Ready reports whether OnPostRestart has completed.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// OnPreRestart writes the whole table to the medium.
//
// Callers must stop mutating the table first. Never panics; a failure
// is logged at warn level and the previous snapshot stays in place.
func (e *Engine) OnPreRestart(ctx context.Context) (report SaveReport) {
	start := time.Now()
	result := metric.ResultOK

	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Errorf("storage: pre-restart hook panicked: %v", r)
			result = metric.ResultFault
		}
		report.Elapsed = time.Since(start)
		e.metrics.ObserveSave(result, report.Elapsed)

		if report.Err != nil {
			e.logger.Warn("pre-restart save failed, previous snapshot kept",
				"notes", report.Notes,
				"next_id", report.NextID,
				"elapsed", report.Elapsed,
				"error", report.Err)
			return
		}
		e.logger.Info("pre-restart save completed",
			"notes", report.Notes,
			"next_id", report.NextID,
			"elapsed", report.Elapsed)
	}()

	state := e.table.Export()
	report.Notes = len(state.Notes)
	report.NextID = state.NextID

	if err := e.codec.Save(ctx, e.medium, state); err != nil {
		report.Err = err
		result = faultOrError(err)
	}
	return report
}

// OnPostRestart replaces the table with the state held by the medium.
//
// Never panics. When nothing decodes, the table is left empty with the
// allocator at 1 and the reason is logged at warn level.
func (e *Engine) OnPostRestart(ctx context.Context) (report RestoreReport) {
	start := time.Now()
	result := metric.ResultOK

	defer func() {
		if r := recover(); r != nil {
			e.table.Clear()
			report = RestoreReport{
				Format: snapshot.FormatEmpty,
				NextID: e.table.NextID(),
				Err:    fmt.Errorf("storage: post-restart hook panicked: %v", r),
			}
			result = metric.ResultFault
		}
		report.Elapsed = time.Since(start)
		e.metrics.ObserveRestore(report.Format.String(), result, report.Elapsed)
		e.ready.Store(true)

		if report.Err != nil {
			e.logger.Warn("post-restart restore failed, starting empty",
				"elapsed", report.Elapsed,
				"error", report.Err)
			return
		}
		e.logger.Info("post-restart restore completed",
			"format", report.Format.String(),
			"notes", report.Notes,
			"next_id", report.NextID,
			"elapsed", report.Elapsed)
	}()

	// Baseline first, so a failure below can never leave a partial table.
	e.table.Clear()

	state, format, err := e.codec.Restore(ctx, e.medium)
	if err != nil {
		result = faultOrError(err)
	}
	e.table.Replace(state)

	report.Format = format
	report.Notes = len(state.Notes)
	report.NextID = e.table.NextID()
	report.Err = err
	return report
}

// Close closes the medium. The table is not saved; call OnPreRestart first.
func (e *Engine) Close() error {
	e.ready.Store(false)
	if err := e.medium.Close(); err != nil {
		return fmt.Errorf("storage: close medium: %w", err)
	}
	return nil
}

func faultOrError(err error) string {
	var fault *snapshot.FaultError
	if errors.As(err, &fault) {
		return metric.ResultFault
	}
	return metric.ResultError
}
