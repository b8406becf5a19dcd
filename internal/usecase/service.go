package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"svw.info/tiles/internal/batch"
	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

// Deps lists the collaborators a Service is built from. Build one at
// startup and pass the Service to whatever needs it.
type Deps struct {
	Store     ports.PuzzleStore
	Cache     ports.Cache
	CacheTTL  time.Duration
	Generator ports.Generator
	Validator ports.Validator
	Words     ports.WordSource
	Rules     ports.RulesLoader
	Clock     domain.Clock
	Salt      string
	Logger    *slog.Logger
}

// Service is the application context: puzzle reads, game rules and batch
// generation.
type Service struct {
	deps   Deps
	reader *Reader
	config *ConfigProvider
}

func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = domain.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	s := &Service{deps: d}
	if d.Store != nil && d.Cache != nil {
		s.reader = NewReader(d.Store, d.Cache, d.CacheTTL, d.Logger)
	}
	if d.Store != nil && d.Rules != nil {
		s.config = NewConfigProvider(d.Rules, d.Store, d.Clock)
	}
	return s
}

var errNotConfigured = errors.New("usecase dependency not configured")

// Today is the service clock's current date.
func (u *Service) Today() domain.Date { return u.deps.Clock.Today() }

// Puzzle returns the puzzle for date, or domain.ErrNotFound.
func (u *Service) Puzzle(ctx context.Context, date domain.Date) (*domain.PuzzleRecord, error) {
	if u.reader == nil {
		return nil, errNotConfigured
	}
	rec, found, err := u.reader.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, date)
	}
	return rec, nil
}

// TodayPuzzle returns the puzzle for the clock's current date.
func (u *Service) TodayPuzzle(ctx context.Context) (*domain.PuzzleRecord, error) {
	return u.Puzzle(ctx, u.Today())
}

func (u *Service) StableConfig(ctx context.Context) (domain.StableConfig, error) {
	if u.config == nil {
		return domain.StableConfig{}, errNotConfigured
	}
	return u.config.StableConfig(ctx)
}

func (u *Service) GameRules(ctx context.Context) (domain.GameRulesView, error) {
	if u.config == nil {
		return domain.GameRulesView{}, errNotConfigured
	}
	return u.config.GameRules(ctx)
}

// InvalidateStableConfig forces the next StableConfig call to recompute.
func (u *Service) InvalidateStableConfig() {
	if u.config != nil {
		u.config.Invalidate()
	}
}

// Batch returns a runner over the service's store, generator, validator,
// words, rules and salt.
func (u *Service) Batch() (*batch.Runner, error) {
	d := u.deps
	if d.Store == nil || d.Generator == nil || d.Words == nil || d.Rules == nil {
		return nil, errNotConfigured
	}
	return &batch.Runner{
		Store:     d.Store,
		Generator: d.Generator,
		Validator: d.Validator,
		Words:     d.Words,
		Rules:     d.Rules,
		Salt:      d.Salt,
		Logger:    d.Logger,
	}, nil
}

// GenerateRange runs a batch over [start, end]. New puzzles can move the
// earliest date, so the stable config is dropped when anything was added.
func (u *Service) GenerateRange(ctx context.Context, start, end domain.Date) (batch.Summary, error) {
	r, err := u.Batch()
	if err != nil {
		return batch.Summary{}, err
	}
	sum, err := r.Run(ctx, start, end)
	if err != nil {
		return sum, err
	}
	if len(sum.Generated) > 0 {
		u.InvalidateStableConfig()
	}
	return sum, nil
}
