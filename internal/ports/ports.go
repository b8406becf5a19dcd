package ports

import (
	"context"
	"time"

	"svw.info/tiles/internal/domain"
)

// Stats captures performance characteristics of an operation.
type Stats struct {
	Duration time.Duration
}

// WordSource exposes a word list grouped by word length.
type WordSource interface {
	Bucket(length int) []string
}

// RulesLoader reads the static rule set.
type RulesLoader interface {
	Load() (domain.RuleSet, error)
}

// Generator builds a puzzle from a seed, salt, word source and rule set.
type Generator interface {
	Generate(ctx context.Context, seed domain.Seed, salt string, words WordSource, rules domain.RuleSet) (*domain.Puzzle, Stats, error)
}

// Validator checks the structural invariants of a generated puzzle.
type Validator interface {
	Validate(ctx context.Context, p *domain.Puzzle) (ok bool, problems []string, err error)
}

// PuzzleStore is durable storage keyed by date. Records are immutable once
// committed.
type PuzzleStore interface {
	// Get returns the record for date; found is false when there is none.
	Get(ctx context.Context, date domain.Date) (rec *domain.PuzzleRecord, found bool, err error)
	Has(ctx context.Context, date domain.Date) (bool, error)
	// EarliestDate returns the minimum date over all records; ok is false
	// when the store is empty.
	EarliestDate(ctx context.Context) (date domain.Date, ok bool, err error)
	// Begin starts a batch whose inserts become visible together on Commit.
	Begin(ctx context.Context) (Batch, error)
	Close() error
}

// Batch stages inserts for a single commit. Has sees both committed
// records and those staged in the batch.
type Batch interface {
	Has(ctx context.Context, date domain.Date) (bool, error)
	Add(ctx context.Context, rec *domain.PuzzleRecord) error
	Commit() error
	// Rollback discards staged inserts. It is a no-op after Commit.
	Rollback() error
}

// Cache is an optional key-value accelerator in front of the store.
//
// Get reports found=false on a miss. A non-nil error is a cache fault
// (connection refused and so on) and callers treat it like a miss.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}
