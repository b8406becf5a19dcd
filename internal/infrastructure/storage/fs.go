package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

// ErrExists is returned when inserting a date that already has a puzzle.
var ErrExists = errors.New("puzzle already exists")

// FS keeps one JSON file per date, grouped into a directory per year:
// <dir>/2025/2025-08-07.json.
type FS struct{ dir string }

func NewFS(dir string) *FS { return &FS{dir: dir} }

func (s *FS) pathFor(d domain.Date) string {
	return filepath.Join(s.dir, fmt.Sprintf("%04d", d.Year), d.String()+".json")
}

func (s *FS) Close() error { return nil }

func (s *FS) Get(ctx context.Context, date domain.Date) (*domain.PuzzleRecord, bool, error) {
	data, err := os.ReadFile(s.pathFor(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec, err := domain.DecodeRecord(data)
	if err != nil {
		return nil, false, err
	}
	if rec.Date != date {
		return nil, false, fmt.Errorf("%w: file for %s holds %s", domain.ErrIntegrity, date, rec.Date)
	}
	return rec, true, nil
}

func (s *FS) Has(ctx context.Context, date domain.Date) (bool, error) {
	_, err := os.Stat(s.pathFor(date))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// EarliestDate scans the year directories in order and returns the first
// date file found.
func (s *FS) EarliestDate(ctx context.Context) (domain.Date, bool, error) {
	years, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Date{}, false, nil
		}
		return domain.Date{}, false, err
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Name() < years[j].Name() })
	for _, y := range years {
		if !y.IsDir() {
			continue
		}
		ents, err := os.ReadDir(filepath.Join(s.dir, y.Name()))
		if err != nil {
			return domain.Date{}, false, err
		}
		var names []string
		for _, e := range ents {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			names = append(names, strings.TrimSuffix(name, ".json"))
		}
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		d, err := domain.ParseDate(names[0])
		if err != nil {
			return domain.Date{}, false, fmt.Errorf("%w: stray file %s: %w", domain.ErrIntegrity, names[0], err)
		}
		return d, true, nil
	}
	return domain.Date{}, false, nil
}

func (s *FS) Begin(ctx context.Context) (ports.Batch, error) {
	return &fsBatch{fs: s, staged: make(map[domain.Date]*domain.PuzzleRecord)}, nil
}

// fsBatch holds records in memory until Commit, which writes each file to a
// temp name and renames it into place.
type fsBatch struct {
	fs     *FS
	staged map[domain.Date]*domain.PuzzleRecord
	order  []domain.Date
}

func (b *fsBatch) Has(ctx context.Context, date domain.Date) (bool, error) {
	if _, ok := b.staged[date]; ok {
		return true, nil
	}
	return b.fs.Has(ctx, date)
}

func (b *fsBatch) Add(ctx context.Context, rec *domain.PuzzleRecord) error {
	if ok, err := b.Has(ctx, rec.Date); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s", ErrExists, rec.Date)
	}
	b.staged[rec.Date] = rec
	b.order = append(b.order, rec.Date)
	return nil
}

func (b *fsBatch) Commit() error {
	defer b.reset()
	type pending struct{ tmp, final string }
	var written []pending
	cleanup := func() {
		for _, p := range written {
			_ = os.Remove(p.tmp)
		}
	}
	for _, d := range b.order {
		target := b.fs.pathFor(d)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			cleanup()
			return err
		}
		data, err := json.MarshalIndent(b.staged[d], "", "  ")
		if err != nil {
			cleanup()
			return err
		}
		tmp := target + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			cleanup()
			return err
		}
		written = append(written, pending{tmp: tmp, final: target})
	}
	for i, p := range written {
		if err := os.Rename(p.tmp, p.final); err != nil {
			// Undo the files already moved into place so the batch
			// lands all or nothing.
			for _, done := range written[:i] {
				_ = os.Remove(done.final)
			}
			cleanup()
			return err
		}
	}
	return nil
}

func (b *fsBatch) Rollback() error {
	b.reset()
	return nil
}

func (b *fsBatch) reset() {
	b.staged = make(map[domain.Date]*domain.PuzzleRecord)
	b.order = nil
}

var _ ports.PuzzleStore = (*FS)(nil)
