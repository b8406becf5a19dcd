package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/rules"
)

var baseRules = domain.RuleSet{
	Multipliers:  map[int]int{3: 1, 4: 2, 5: 3, 6: 4},
	LetterValues: map[string]int{"A": 1},
	TimerSeconds: 300,
}

func TestStableConfigEmptyStoreIsIntegrityError(t *testing.T) {
	p := NewConfigProvider(&CountingRules{Rules: baseRules}, NewMockStore(), nil)
	_, err := p.StableConfig(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIntegrity), "got %v", err)
}

func TestStableConfigSingleRecord(t *testing.T) {
	store := NewMockStore(recordWith(domain.MustParseDate("2025-01-01"), "A"))
	sc, err := NewConfigProvider(&CountingRules{Rules: baseRules}, store, nil).StableConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", sc.EarliestDate.String())
	assert.Equal(t, baseRules, sc.RuleSet)
}

func TestStableConfigPicksMinimum(t *testing.T) {
	store := NewMockStore(
		recordWith(domain.MustParseDate("2025-03-01"), "A"),
		recordWith(domain.MustParseDate("2024-11-30"), "B"),
	)
	sc, err := NewConfigProvider(&CountingRules{Rules: baseRules}, store, nil).StableConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-11-30", sc.EarliestDate.String())
}

func TestStableConfigIsMemoized(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore(recordWith(domain.MustParseDate("2025-01-01"), "A"))
	loader := &CountingRules{Rules: baseRules}
	p := NewConfigProvider(loader, store, nil)

	first, err := p.StableConfig(ctx)
	require.NoError(t, err)
	second, err := p.StableConfig(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, loader.Loads)
	assert.Equal(t, 1, store.MinCalls)

	// callers cannot mutate the memoized value
	first.LetterValues["A"] = 99
	third, err := p.StableConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, third.LetterValues["A"])

	p.Invalidate()
	_, err = p.StableConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.Loads)
	assert.Equal(t, 2, store.MinCalls)
}

func TestStableConfigFailuresAreNotMemoized(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	p := NewConfigProvider(&CountingRules{Rules: baseRules}, store, nil)

	_, err := p.StableConfig(ctx)
	require.ErrorIs(t, err, domain.ErrIntegrity)

	store.Records[domain.MustParseDate("2025-02-02")] = recordWith(domain.MustParseDate("2025-02-02"), "A")
	sc, err := p.StableConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-02", sc.EarliestDate.String())
}

func TestStableConfigRulesErrors(t *testing.T) {
	store := NewMockStore(recordWith(domain.MustParseDate("2025-01-01"), "A"))
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("not: valid: yaml"), 0o644))

	cases := map[string]string{
		"missing":   filepath.Join(dir, "absent.yaml"),
		"malformed": bad,
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			p := NewConfigProvider(rules.NewFileLoader(path), store, nil)
			_, err := p.StableConfig(context.Background())
			assert.True(t, errors.Is(err, domain.ErrConfigLoad), "got %v", err)
		})
	}

	// loaders that do not tag their errors are still reported as config load failures
	p := NewConfigProvider(&CountingRules{Err: errors.New("disk on fire")}, store, nil)
	_, err := p.StableConfig(context.Background())
	assert.True(t, errors.Is(err, domain.ErrConfigLoad), "got %v", err)
}

func TestGameRulesStampsCurrentDate(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore(recordWith(domain.MustParseDate("2025-01-01"), "A"))
	clock := &stepClock{d: domain.MustParseDate("2025-08-07")}
	loader := &CountingRules{Rules: baseRules}
	p := NewConfigProvider(loader, store, clock)

	v1, err := p.GameRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-07", v1.CurrentDate.String())
	assert.Equal(t, "2025-01-01", v1.EarliestDate.String())
	assert.Equal(t, 300, v1.TimerSeconds)

	clock.d = clock.d.AddDays(1)
	v2, err := p.GameRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-08", v2.CurrentDate.String())
	assert.Equal(t, 1, loader.Loads, "only the date is recomputed")
}

type stepClock struct{ d domain.Date }

func (c *stepClock) Today() domain.Date { return c.d }
