package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

const cacheKeyPrefix = "puzzle:"

// CacheKey is the cache key for the puzzle of date, e.g. puzzle:2025-08-07.
func CacheKey(d domain.Date) string { return cacheKeyPrefix + d.String() }

// Reader serves puzzles cache-aside: cache first, then the store, filling
// the cache on a store hit. Records never change after they are written, so
// the cache only ever affects latency, never the answer.
type Reader struct {
	store  ports.PuzzleStore
	cache  ports.Cache
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewReader wires a reader. cache must be non-nil; pass the no-op variant
// to disable caching.
func NewReader(store ports.PuzzleStore, cache ports.Cache, ttl time.Duration, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{store: store, cache: cache, ttl: ttl, logger: logger}
}

type lookup struct {
	rec   *domain.PuzzleRecord
	found bool
}

// Get returns the record for date. Cache faults and undecodable cache
// entries count as misses; only store errors are returned.
func (r *Reader) Get(ctx context.Context, date domain.Date) (*domain.PuzzleRecord, bool, error) {
	ctx, span := tracer.Start(ctx, "Reader.Get", trace.WithAttributes(attribute.String("puzzle.date", date.String())))
	defer span.End()

	key := CacheKey(date)
	if rec, ok := r.fromCache(ctx, key, date); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return rec, true, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// Concurrent misses for one date share a single store read.
	v, err, _ := r.group.Do(key, func() (any, error) {
		rec, found, err := r.store.Get(ctx, date)
		switch {
		case err != nil:
			storeReads.WithLabelValues("error").Inc()
			return nil, err
		case !found:
			storeReads.WithLabelValues("absent").Inc()
			return lookup{}, nil
		}
		storeReads.WithLabelValues("found").Inc()
		r.fill(ctx, key, rec)
		return lookup{rec: rec, found: true}, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store read failed")
		return nil, false, err
	}
	l := v.(lookup)
	return l.rec, l.found, nil
}

func (r *Reader) fromCache(ctx context.Context, key string, date domain.Date) (*domain.PuzzleRecord, bool) {
	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		cacheLookups.WithLabelValues("fault").Inc()
		r.logger.Warn("cache read failed, using store", "key", key, "err", err)
		return nil, false
	}
	if !ok {
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	rec, err := domain.DecodeRecord(data)
	if err == nil && rec.Date != date {
		err = errDateMismatch{want: date, got: rec.Date}
	}
	if err != nil {
		cacheLookups.WithLabelValues("corrupt").Inc()
		r.logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		return nil, false
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return rec, true
}

// fill writes rec back to the cache. Failures are logged and dropped.
func (r *Reader) fill(ctx context.Context, key string, rec *domain.PuzzleRecord) {
	data, err := domain.EncodeRecord(rec)
	if err == nil {
		err = r.cache.Set(ctx, key, data, r.ttl)
	}
	if err != nil {
		cacheFills.WithLabelValues("error").Inc()
		r.logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	cacheFills.WithLabelValues("ok").Inc()
}

type errDateMismatch struct{ want, got domain.Date }

func (e errDateMismatch) Error() string {
	return "cached record is for " + e.got.String() + ", want " + e.want.String()
}
