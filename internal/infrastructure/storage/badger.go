package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

// keyPrefix namespaces puzzle keys. ISO dates sort chronologically, so the
// first key under the prefix is the earliest puzzle.
const keyPrefix = "puzzle/"

// BadgerConfig holds configuration for the embedded store.
type BadgerConfig struct {
	// Path is the directory for database files. Ignored when InMemory.
	Path     string
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	Logger     *slog.Logger
	// GCInterval is how often value log GC runs; 0 disables it.
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultBadgerConfig returns durable settings for path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Badger stores each record's canonical JSON under puzzle/<date>.
type Badger struct {
	db     *badger.DB
	stopGC chan struct{}
	gcDone chan struct{}
	logger *slog.Logger
}

// NewBadger opens the store described by cfg.
func NewBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	s := &Badger{db: db, logger: cfg.Logger}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.gcDone = make(chan struct{})
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

func (s *Badger) runGC(interval time.Duration, ratio float64) {
	defer close(s.gcDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite means nothing needed collecting.
			if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) && s.logger != nil {
				s.logger.Warn("badger value log GC error", "err", err)
			}
		}
	}
}

func (s *Badger) Close() error {
	if s.stopGC != nil {
		close(s.stopGC)
		<-s.gcDone
	}
	return s.db.Close()
}

func dateKey(d domain.Date) []byte { return []byte(keyPrefix + d.String()) }

func readRecord(txn *badger.Txn, date domain.Date) (*domain.PuzzleRecord, bool, error) {
	item, err := txn.Get(dateKey(date))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rec *domain.PuzzleRecord
	err = item.Value(func(val []byte) error {
		var derr error
		rec, derr = domain.DecodeRecord(val)
		return derr
	})
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func hasKey(txn *badger.Txn, date domain.Date) (bool, error) {
	_, err := txn.Get(dateKey(date))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Badger) Get(ctx context.Context, date domain.Date) (rec *domain.PuzzleRecord, found bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		rec, found, err = readRecord(txn, date)
		return err
	})
	return rec, found, err
}

func (s *Badger) Has(ctx context.Context, date domain.Date) (found bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		found, err = hasKey(txn, date)
		return err
	})
	return found, err
}

func (s *Badger) EarliestDate(ctx context.Context) (d domain.Date, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return domain.Date{}, false, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		it.Rewind()
		if !it.Valid() {
			return nil
		}
		key := strings.TrimPrefix(string(it.Item().Key()), keyPrefix)
		var perr error
		d, perr = domain.ParseDate(key)
		if perr != nil {
			return fmt.Errorf("%w: bad key %q: %w", domain.ErrIntegrity, key, perr)
		}
		ok = true
		return nil
	})
	return d, ok, err
}

func (s *Badger) Begin(ctx context.Context) (ports.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &badgerBatch{txn: s.db.NewTransaction(true)}, nil
}

type badgerBatch struct {
	txn *badger.Txn
}

func (b *badgerBatch) Has(ctx context.Context, date domain.Date) (bool, error) {
	return hasKey(b.txn, date)
}

func (b *badgerBatch) Add(ctx context.Context, rec *domain.PuzzleRecord) error {
	if ok, err := hasKey(b.txn, rec.Date); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s", ErrExists, rec.Date)
	}
	val, err := domain.EncodeRecord(rec)
	if err != nil {
		return err
	}
	return b.txn.Set(dateKey(rec.Date), val)
}

func (b *badgerBatch) Commit() error { return b.txn.Commit() }

// Rollback discards the transaction; badger makes Discard after Commit a no-op.
func (b *badgerBatch) Rollback() error {
	b.txn.Discard()
	return nil
}

var _ ports.PuzzleStore = (*Badger)(nil)
