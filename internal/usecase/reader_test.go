package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/infrastructure/cache"
)

var day = domain.MustParseDate("2025-08-07")

func recordWith(date domain.Date, letter string) *domain.PuzzleRecord {
	t := domain.Tile{ID: "tile-1", Letter: letter, Value: 2}
	return &domain.PuzzleRecord{
		Date: date,
		Puzzle: domain.Puzzle{
			InitialRacks:   []domain.Rack{{t}},
			TargetSolution: []domain.Rack{{t}},
		},
	}
}

func encode(t *testing.T, rec *domain.PuzzleRecord) []byte {
	t.Helper()
	b, err := domain.EncodeRecord(rec)
	require.NoError(t, err)
	return b
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "puzzle:2025-08-07", CacheKey(day))
}

func TestReaderCacheHitBypassesStore(t *testing.T) {
	store := NewMockStore(recordWith(day, "S"))
	c := NewSpyCache()
	c.Data[CacheKey(day)] = encode(t, recordWith(day, "C"))
	before := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))

	rec, found, err := NewReader(store, c, time.Hour, nil).Get(context.Background(), day)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "C", rec.InitialRacks[0][0].Letter)
	assert.Equal(t, 0, store.calls())
	assert.Equal(t, before+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))
}

func TestReaderMissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	want := recordWith(day, "S")
	store := NewMockStore(want)
	mem := cache.NewMemory()
	r := NewReader(store, mem, time.Hour, nil)

	got, found, err := r.Get(ctx, day)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)

	cached, ok, err := mem.Get(ctx, CacheKey(day))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, string(encode(t, want)), string(cached))

	// store now unreachable; the cache still answers
	store.mu.Lock()
	store.FailGet = true
	store.mu.Unlock()
	again, found, err := r.Get(ctx, day)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, again)
	assert.Equal(t, 1, store.calls())
}

func TestReaderWithoutCacheReadsStoreEveryTime(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore(recordWith(day, "A"))
	r := NewReader(store, cache.None{}, time.Hour, nil)

	rec, _, err := r.Get(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "A", rec.InitialRacks[0][0].Letter)

	store.mu.Lock()
	store.Records[day] = recordWith(day, "B")
	store.mu.Unlock()

	rec, _, err = r.Get(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "B", rec.InitialRacks[0][0].Letter)
	assert.Equal(t, 2, store.calls())
}

func TestReaderAbsentIsNotCached(t *testing.T) {
	c := NewSpyCache()
	rec, found, err := NewReader(NewMockStore(), c, time.Hour, nil).Get(context.Background(), day)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
	assert.Empty(t, c.Data)
	assert.Equal(t, []string{"puzzle:2025-08-07"}, c.Touched, "only the lookup touches the cache")
}

func TestReaderCacheFaultFallsBackToStore(t *testing.T) {
	want := recordWith(day, "S")
	c := NewSpyCache()
	c.FailGet = true
	c.FailSet = true
	before := testutil.ToFloat64(cacheLookups.WithLabelValues("fault"))

	got, found, err := NewReader(NewMockStore(want), c, time.Hour, nil).Get(context.Background(), day)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
	assert.Equal(t, before+1, testutil.ToFloat64(cacheLookups.WithLabelValues("fault")))
}

func TestReaderReplacesCorruptEntry(t *testing.T) {
	want := recordWith(day, "S")
	c := NewSpyCache()
	c.Data[CacheKey(day)] = []byte(`{"date":`)

	got, found, err := NewReader(NewMockStore(want), c, time.Hour, nil).Get(context.Background(), day)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, want, got)
	assert.JSONEq(t, string(encode(t, want)), string(c.Data[CacheKey(day)]))
}

func TestReaderIgnoresEntryForOtherDate(t *testing.T) {
	want := recordWith(day, "S")
	c := NewSpyCache()
	c.Data[CacheKey(day)] = encode(t, recordWith(day.AddDays(1), "X"))

	got, _, err := NewReader(NewMockStore(want), c, time.Hour, nil).Get(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReaderStoreErrorPropagates(t *testing.T) {
	store := NewMockStore()
	store.FailGet = true
	_, _, err := NewReader(store, cache.None{}, 0, nil).Get(context.Background(), day)
	assert.ErrorIs(t, err, ErrMockStore)
}

func TestReaderConcurrentMissesShareOneStoreRead(t *testing.T) {
	want := recordWith(day, "S")
	store := NewMockStore(want)
	store.GetDelay = 50 * time.Millisecond
	r := NewReader(store, cache.NewMemory(), time.Hour, nil)

	const n = 8
	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]*domain.PuzzleRecord, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			rec, _, err := r.Get(context.Background(), day)
			assert.NoError(t, err)
			results[i] = rec
		}(i)
	}
	close(start)
	wg.Wait()
	for _, rec := range results {
		assert.Equal(t, want, rec)
	}
	assert.Equal(t, 1, store.calls())
}
