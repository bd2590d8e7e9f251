package stable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// StateKey is the Badger key holding the stored bytes.
var StateKey = []byte("stable/state")

// BadgerConfig contains Badger tuning parameters for the stable medium.
type BadgerConfig struct {
	// Dir is the storage directory.
	Dir string

	// GCInterval is the interval between value log GC runs.
	// Each save overwrites the single key, so stale values pile up.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 64MB
	ValueLogFileSize int64

	// SyncWrites fsyncs after each write.
	// Default: true (one write per restart, durability matters more)
	SyncWrites bool
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:              dir,
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		ValueLogFileSize: 64 << 20,
		SyncWrites:       true,
	}
}

// BadgerStats contains storage statistics.
type BadgerStats struct {
	LSMSize      uint64
	ValueLogSize uint64
	TotalSize    uint64
	LastGCTime   int64 // Unix milliseconds
}

// BadgerMedium stores the bytes under StateKey in a Badger database.
type BadgerMedium struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger *slog.Logger

	lastGCTime atomic.Int64

	// Prometheus metrics
	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsLastGCTime   prometheus.Gauge

	closeOnce sync.Once
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewBadgerMedium opens (or creates) a Badger database in cfg.Dir.
func NewBadgerMedium(cfg BadgerConfig, logger *slog.Logger) (*BadgerMedium, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultBadgerConfig(cfg.Dir)
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = defaults.GCInterval
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold >= 1 {
		cfg.GCThreshold = defaults.GCThreshold
	}
	if cfg.ValueLogFileSize <= 0 {
		cfg.ValueLogFileSize = defaults.ValueLogFileSize
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: logger}
	opts.ValueLogFileSize = cfg.ValueLogFileSize
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	m := &BadgerMedium{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.gcLoop()

	logger.Info("badger medium opened",
		"dir", cfg.Dir,
		"sync_writes", cfg.SyncWrites,
		"gc_interval", cfg.GCInterval)

	return m, nil
}

// Write implements Medium. The value is replaced in a single transaction.
func (m *BadgerMedium) Write(_ context.Context, data []byte) error {
	if m.isClosed() {
		return ErrClosed
	}
	value := append([]byte(nil), data...)
	if err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(StateKey, value)
	}); err != nil {
		return fmt.Errorf("badger: set state: %w", err)
	}
	return nil
}

// Read implements Medium.
func (m *BadgerMedium) Read(_ context.Context) ([]byte, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}

	var value []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(StateKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNoState
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNoState) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("badger: get state: %w", err)
	}
	return value, nil
}

// GC runs value log garbage collection until nothing is left to rewrite.
func (m *BadgerMedium) GC() error {
	for {
		err := m.db.RunValueLogGC(m.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return fmt.Errorf("badger: gc: %w", err)
		}
	}
	m.lastGCTime.Store(time.Now().UnixMilli())
	return nil
}

// Stats returns storage statistics.
func (m *BadgerMedium) Stats() BadgerStats {
	lsm, vlog := m.db.Size()
	return BadgerStats{
		LSMSize:      uint64(lsm),
		ValueLogSize: uint64(vlog),
		TotalSize:    uint64(lsm + vlog),
		LastGCTime:   m.lastGCTime.Load(),
	}
}

// RegisterMetrics registers Badger size gauges with registerer.
// Call once, before the first Write.
func (m *BadgerMedium) RegisterMetrics(registerer prometheus.Registerer) *BadgerMedium {
	m.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "notechain",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	m.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "notechain",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	m.metricsLastGCTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "notechain",
		Subsystem: "badger",
		Name:      "last_gc_timestamp_seconds",
		Help:      "Unix timestamp of the last Badger value log GC",
	})

	registerer.MustRegister(
		m.metricsLSMSize,
		m.metricsValueLogSize,
		m.metricsLastGCTime,
	)
	m.updateMetrics()
	return m
}

// Close stops background work and closes the database. Safe to call twice.
func (m *BadgerMedium) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
		if cerr := m.db.Close(); cerr != nil {
			err = fmt.Errorf("badger: close db: %w", cerr)
		}
		m.logger.Info("badger medium closed")
	})
	return err
}

func (m *BadgerMedium) isClosed() bool {
	select {
	case <-m.stopCh:
		return true
	default:
		return false
	}
}

func (m *BadgerMedium) updateMetrics() {
	if m.metricsLSMSize == nil {
		return
	}
	stats := m.Stats()
	m.metricsLSMSize.Set(float64(stats.LSMSize))
	m.metricsValueLogSize.Set(float64(stats.ValueLogSize))
	if stats.LastGCTime > 0 {
		m.metricsLastGCTime.Set(float64(stats.LastGCTime) / 1000.0)
	}
}

// gcLoop runs periodic value log GC and refreshes the size gauges.
func (m *BadgerMedium) gcLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.GC(); err != nil {
				m.logger.Error("badger gc failed", "error", err)
			}
			m.updateMetrics()
		case <-m.stopCh:
			return
		}
	}
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
