package domain

import (
	"strconv"
	"strings"
)

// RackLengths is the size of each rack, in order, for both the player-facing
// racks and the target solution.
var RackLengths = [4]int{3, 4, 5, 6}

// TileCount is the number of tiles in every puzzle (3+4+5+6).
const TileCount = 18

// DefaultSalt is mixed into every seed unless configured otherwise.
const DefaultSalt = "tiles-daily"

// tileIDPrefix precedes the numeric part of every tile id.
const tileIDPrefix = "tile-"

// Tile is a single lettered tile. ID is its identity.
type Tile struct {
	ID     string `json:"id" yaml:"id"`
	Letter string `json:"letter" yaml:"letter"`
	Value  int    `json:"value" yaml:"value"`
}

// TileID formats the id for tile number n.
func TileID(n int) string { return tileIDPrefix + strconv.Itoa(n) }

// Number returns the numeric suffix of the tile id.
func (t Tile) Number() (int, bool) {
	s, ok := strings.CutPrefix(t.ID, tileIDPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Rack is an ordered group of tiles, one word's worth.
type Rack []Tile

// Puzzle holds the player-facing racks and the solution they scramble.
type Puzzle struct {
	InitialRacks   []Rack `json:"initialRacks"`
	TargetSolution []Rack `json:"targetSolution"`
}

// Shape returns the rack lengths of InitialRacks and TargetSolution.
func (p *Puzzle) Shape() (initial, target []int) {
	for _, r := range p.InitialRacks {
		initial = append(initial, len(r))
	}
	for _, r := range p.TargetSolution {
		target = append(target, len(r))
	}
	return initial, target
}

// Flatten returns the tiles of racks in order.
func Flatten(racks []Rack) []Tile {
	var out []Tile
	for _, r := range racks {
		out = append(out, r...)
	}
	return out
}

// PuzzleRecord is a puzzle stored under its calendar date. Records are
// written once and never updated.
type PuzzleRecord struct {
	Date Date `json:"date"`
	Puzzle
}

// RuleSet is the static scoring and timer configuration.
type RuleSet struct {
	Multipliers  map[int]int    `json:"multipliers" yaml:"multipliers" validate:"dive,gte=0"`
	LetterValues map[string]int `json:"letterValues" yaml:"letter_values" validate:"dive,keys,len=1,endkeys,gte=0"`
	TimerSeconds int            `json:"timerSeconds" yaml:"timer_seconds" validate:"gte=0"`
}

// LetterValue returns the value for letter, 0 when unknown.
func (r RuleSet) LetterValue(letter string) int {
	return r.LetterValues[letter]
}

// StableConfig is the rule set plus the earliest available puzzle date.
type StableConfig struct {
	RuleSet
	EarliestDate Date `json:"earliestDate"`
}

// GameRulesView is the stable config stamped with the current date.
type GameRulesView struct {
	StableConfig
	CurrentDate Date `json:"currentDate"`
}

// Seed optionally fixes the generator's random stream. The zero value is
// an absent seed.
type Seed struct {
	value string
	set   bool
}

// SeedFromString returns a seed with the given text.
func SeedFromString(s string) Seed { return Seed{value: s, set: true} }

// SeedFromInt returns a seed with the decimal form of n.
func SeedFromInt(n int64) Seed { return Seed{value: strconv.FormatInt(n, 10), set: true} }

// Present reports whether the seed was set.
func (s Seed) Present() bool { return s.set }

// String returns the seed text, empty when absent.
func (s Seed) String() string { return s.value }
