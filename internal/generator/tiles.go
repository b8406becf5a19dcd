package generator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

// Generate picks one word per rack length, labels its letters with a
// shuffled pool of tile ids, and scrambles the tiles into the initial racks
// by sorting on those ids.
func (g *TileGenerator) Generate(ctx context.Context, seed domain.Seed, salt string, words ports.WordSource, rules domain.RuleSet) (*domain.Puzzle, ports.Stats, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, ports.Stats{}, err
	}
	rng := newStream(seed, salt)

	// 1) one word per bucket, always in 3,4,5,6 order
	chosen := make([]string, 0, len(domain.RackLengths))
	for _, n := range domain.RackLengths {
		bucket := words.Bucket(n)
		if len(bucket) == 0 {
			return nil, ports.Stats{}, fmt.Errorf("%w: no words of length %d", domain.ErrGeneration, n)
		}
		chosen = append(chosen, bucket[rng.IntN(len(bucket))])
	}

	// 2) id pool
	pool := make([]int, domain.TileCount)
	for i := range pool {
		pool[i] = i + 1
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	// 3) solution racks; ids are popped in traversal order
	solution := make([]domain.Rack, 0, len(chosen))
	all := make([]domain.Tile, 0, domain.TileCount)
	for _, word := range chosen {
		rack := make(domain.Rack, 0, len(word))
		for _, r := range word {
			if len(pool) == 0 {
				return nil, ports.Stats{}, fmt.Errorf("%w: word %q overflows the tile pool", domain.ErrGeneration, word)
			}
			id := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			letter := string(r)
			t := domain.Tile{ID: domain.TileID(id), Letter: letter, Value: rules.LetterValue(letter)}
			rack = append(rack, t)
			all = append(all, t)
		}
		solution = append(solution, rack)
	}

	// 4) initial racks: sort by id number, slice 3/4/5/6
	sort.Slice(all, func(i, j int) bool {
		a, _ := all[i].Number()
		b, _ := all[j].Number()
		return a < b
	})
	initial := make([]domain.Rack, 0, len(domain.RackLengths))
	off := 0
	for _, n := range domain.RackLengths {
		rack := make(domain.Rack, n)
		copy(rack, all[off:off+n])
		initial = append(initial, rack)
		off += n
	}

	p := &domain.Puzzle{InitialRacks: initial, TargetSolution: solution}
	return p, ports.Stats{Duration: time.Since(start)}, nil
}
