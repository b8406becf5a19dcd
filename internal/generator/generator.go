package generator

import (
	"crypto/sha256"
	"math/rand/v2"

	"svw.info/tiles/internal/domain"
)

// TileGenerator builds word-tile puzzles. It holds no state between calls,
// so one value can serve concurrent callers.
type TileGenerator struct{}

// NewTileGenerator returns a ready generator.
func NewTileGenerator() *TileGenerator {
	return &TileGenerator{}
}

// newStream returns the random stream for seed and salt. A present seed
// yields a ChaCha8 stream keyed by SHA-256("{seed} {salt}"), identical on
// every platform; an absent seed draws from runtime entropy.
func newStream(seed domain.Seed, salt string) *rand.Rand {
	if !seed.Present() {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	key := sha256.Sum256([]byte(seed.String() + " " + salt))
	return rand.New(rand.NewChaCha8(key))
}
