package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

var (
	ErrMockStore = errors.New("mock store error")
	ErrMockCache = errors.New("mock cache error")
)

// MockStore is an in-memory PuzzleStore that counts calls.
type MockStore struct {
	mu       sync.Mutex
	Records  map[domain.Date]*domain.PuzzleRecord
	GetCalls int
	MinCalls int
	FailGet  bool
	GetDelay time.Duration
}

func NewMockStore(recs ...*domain.PuzzleRecord) *MockStore {
	s := &MockStore{Records: make(map[domain.Date]*domain.PuzzleRecord)}
	for _, r := range recs {
		s.Records[r.Date] = r
	}
	return s
}

func (s *MockStore) Get(ctx context.Context, date domain.Date) (*domain.PuzzleRecord, bool, error) {
	s.mu.Lock()
	s.GetCalls++
	fail, delay := s.FailGet, s.GetDelay
	rec, ok := s.Records[date]
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, false, ErrMockStore
	}
	return rec, ok, nil
}

func (s *MockStore) Has(ctx context.Context, date domain.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Records[date]
	return ok, nil
}

func (s *MockStore) EarliestDate(ctx context.Context) (domain.Date, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MinCalls++
	if len(s.Records) == 0 {
		return domain.Date{}, false, nil
	}
	var dates []domain.Date
	for d := range s.Records {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates[0], true, nil
}

func (s *MockStore) Begin(ctx context.Context) (ports.Batch, error) {
	return nil, errors.New("mock store is read-only")
}

func (s *MockStore) Close() error { return nil }

func (s *MockStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.GetCalls
}

// SpyCache wraps a map and records every key it is asked about.
type SpyCache struct {
	mu      sync.Mutex
	Data    map[string][]byte
	Touched []string
	FailGet bool
	FailSet bool
}

func NewSpyCache() *SpyCache { return &SpyCache{Data: make(map[string][]byte)} }

func (c *SpyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Touched = append(c.Touched, key)
	if c.FailGet {
		return nil, false, ErrMockCache
	}
	v, ok := c.Data[key]
	return v, ok, nil
}

func (c *SpyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Touched = append(c.Touched, key)
	if c.FailSet {
		return ErrMockCache
	}
	c.Data[key] = value
	return nil
}

func (c *SpyCache) Close() error { return nil }

// CountingRules returns a fixed rule set and counts loads.
type CountingRules struct {
	mu    sync.Mutex
	Rules domain.RuleSet
	Err   error
	Loads int
}

func (r *CountingRules) Load() (domain.RuleSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Loads++
	return r.Rules, r.Err
}
