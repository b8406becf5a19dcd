package validator

import (
	"context"
	"fmt"
	"sort"

	"svw.info/tiles/internal/domain"
)

// PuzzleValidator checks rack shape, tile ids and tile conservation.
type PuzzleValidator struct{}

func New() *PuzzleValidator { return &PuzzleValidator{} }

func (v *PuzzleValidator) Validate(ctx context.Context, p *domain.Puzzle) (bool, []string, error) {
	if p == nil {
		return false, nil, fmt.Errorf("validate: nil puzzle")
	}
	probs := make([]string, 0, 4)
	// shape
	probs = append(probs, checkShape("initial racks", p.InitialRacks)...)
	probs = append(probs, checkShape("target solution", p.TargetSolution)...)

	// ids: exactly tile-1..tile-18, once each
	seen := make(map[int]bool, domain.TileCount)
	for _, t := range domain.Flatten(p.TargetSolution) {
		n, ok := t.Number()
		switch {
		case !ok:
			probs = append(probs, fmt.Sprintf("malformed tile id %q", t.ID))
		case n < 1 || n > domain.TileCount:
			probs = append(probs, fmt.Sprintf("tile id %q out of range", t.ID))
		case seen[n]:
			probs = append(probs, fmt.Sprintf("duplicate tile id %q", t.ID))
		}
		if t.Value < 0 {
			probs = append(probs, fmt.Sprintf("tile %s has negative value", t.ID))
		}
		seen[n] = true
	}

	// conservation
	a, b := tileKeys(p.InitialRacks), tileKeys(p.TargetSolution)
	if len(a) != len(b) {
		probs = append(probs, fmt.Sprintf("initial racks hold %d tiles, solution %d", len(a), len(b)))
	} else {
		for i := range a {
			if a[i] != b[i] {
				probs = append(probs, "initial racks and solution hold different tiles")
				break
			}
		}
	}

	// initial racks ascend by id
	prev := 0
	for _, t := range domain.Flatten(p.InitialRacks) {
		n, _ := t.Number()
		if n <= prev {
			probs = append(probs, "initial racks are not sorted by tile id")
			break
		}
		prev = n
	}
	return len(probs) == 0, probs, nil
}

func checkShape(name string, racks []domain.Rack) []string {
	if len(racks) != len(domain.RackLengths) {
		return []string{fmt.Sprintf("%s: %d racks, want %d", name, len(racks), len(domain.RackLengths))}
	}
	var out []string
	for i, want := range domain.RackLengths {
		if len(racks[i]) != want {
			out = append(out, fmt.Sprintf("%s: rack %d has %d tiles, want %d", name, i, len(racks[i]), want))
		}
	}
	return out
}

func tileKeys(racks []domain.Rack) []string {
	var keys []string
	for _, t := range domain.Flatten(racks) {
		keys = append(keys, fmt.Sprintf("%s/%s/%d", t.ID, t.Letter, t.Value))
	}
	sort.Strings(keys)
	return keys
}
