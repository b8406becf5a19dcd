package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/tiles/internal/domain"
)

const sampleRules = `
multipliers:
  3: 1
  4: 2
  5: 3
  6: 4
letter_values:
  a: 1
  Q: 10
timer_seconds: 300
`

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidRules(t *testing.T) {
	rs, err := NewFileLoader(writeRules(t, sampleRules)).Load()
	require.NoError(t, err)

	assert.Equal(t, map[int]int{3: 1, 4: 2, 5: 3, 6: 4}, rs.Multipliers)
	assert.Equal(t, map[string]int{"A": 1, "Q": 10}, rs.LetterValues)
	assert.Equal(t, 300, rs.TimerSeconds)
	assert.Equal(t, 0, rs.LetterValue("Z"))
}

func TestLoadWithoutLetterValues(t *testing.T) {
	rs, err := NewFileLoader(writeRules(t, "timer_seconds: 300\n")).Load()
	require.NoError(t, err)
	assert.Nil(t, rs.LetterValues)
	assert.Equal(t, 0, rs.LetterValue("A"))
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") }},
		{"malformed yaml", func(t *testing.T) string { return writeRules(t, "not: valid: yaml") }},
		{"same letter twice", func(t *testing.T) string { return writeRules(t, "letter_values:\n  a: 1\n  A: 7\n") }},
		{"negative timer", func(t *testing.T) string { return writeRules(t, "timer_seconds: -1\n") }},
		{"multi-letter key", func(t *testing.T) string { return writeRules(t, "letter_values:\n  ab: 1\n") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFileLoader(tc.path(t)).Load()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfigLoad), "got %v", err)
		})
	}
}

func TestParseCaseCollisionAlwaysFails(t *testing.T) {
	body := []byte("letter_values:\n  a: 1\n  A: 7\n  b: 3\n")
	for i := 0; i < 50; i++ {
		_, err := Parse(body)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `letter "A" is listed more than once`)
	}
}

func TestLoadIgnoresExtraKeys(t *testing.T) {
	rs, err := NewFileLoader(writeRules(t, "theme: dark\ntimer_seconds: 60\nletter_values:\n  z: 10\n")).Load()
	require.NoError(t, err)
	assert.Equal(t, 60, rs.TimerSeconds)
	assert.Equal(t, map[string]int{"Z": 10}, rs.LetterValues)
}
