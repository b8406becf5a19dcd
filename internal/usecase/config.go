package usecase

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

// ConfigProvider memoizes the stable configuration: the rule set merged
// with the earliest puzzle date. The first successful call reads the rules
// and queries the store once; later calls return the stored value until
// Invalidate. Failures are not memoized.
type ConfigProvider struct {
	rules ports.RulesLoader
	store ports.PuzzleStore
	clock domain.Clock

	mu     sync.Mutex
	cached *domain.StableConfig
}

func NewConfigProvider(rules ports.RulesLoader, store ports.PuzzleStore, clock domain.Clock) *ConfigProvider {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &ConfigProvider{rules: rules, store: store, clock: clock}
}

// StableConfig returns the memoized configuration, computing it on first use.
func (p *ConfigProvider) StableConfig(ctx context.Context) (domain.StableConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil {
		return cloneStable(*p.cached), nil
	}

	ctx, span := tracer.Start(ctx, "ConfigProvider.StableConfig")
	defer span.End()

	sc, err := p.compute(ctx)
	if err != nil {
		stableConfigLoads.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "stable config")
		return domain.StableConfig{}, err
	}
	stableConfigLoads.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.String("earliest_date", sc.EarliestDate.String()))
	p.cached = &sc
	return cloneStable(sc), nil
}

func (p *ConfigProvider) compute(ctx context.Context) (domain.StableConfig, error) {
	rs, err := p.rules.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrConfigLoad) {
			err = fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
		}
		return domain.StableConfig{}, err
	}
	earliest, ok, err := p.store.EarliestDate(ctx)
	if err != nil {
		return domain.StableConfig{}, fmt.Errorf("earliest puzzle date: %w", err)
	}
	if !ok {
		return domain.StableConfig{}, fmt.Errorf("%w: no puzzles in the store to determine the earliest date", domain.ErrIntegrity)
	}
	return domain.StableConfig{RuleSet: rs, EarliestDate: earliest}, nil
}

// Invalidate drops the memoized value; the next call recomputes it.
func (p *ConfigProvider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

// GameRules returns the stable configuration stamped with today's date.
// The date is read on every call and never memoized.
func (p *ConfigProvider) GameRules(ctx context.Context) (domain.GameRulesView, error) {
	sc, err := p.StableConfig(ctx)
	if err != nil {
		return domain.GameRulesView{}, err
	}
	return domain.GameRulesView{StableConfig: sc, CurrentDate: p.clock.Today()}, nil
}

// cloneStable copies the maps so callers cannot mutate the memoized value.
func cloneStable(sc domain.StableConfig) domain.StableConfig {
	sc.Multipliers = maps.Clone(sc.Multipliers)
	sc.LetterValues = maps.Clone(sc.LetterValues)
	return sc
}
