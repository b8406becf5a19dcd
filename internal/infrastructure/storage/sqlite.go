package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/ports"
)

// SQLite stores one row per date with the racks as JSON text columns.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database file at path.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS puzzles (
			date TEXT PRIMARY KEY,
			initial_racks TEXT NOT NULL,
			target_solution TEXT NOT NULL
		);
	`)
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRow(ctx context.Context, q rowQuerier, date domain.Date) (*domain.PuzzleRecord, bool, error) {
	var key, initial, target string
	err := q.QueryRowContext(ctx, `
		SELECT date, initial_racks, target_solution FROM puzzles WHERE date = ?
	`, date.String()).Scan(&key, &initial, &target)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	rec, err := domain.DecodeColumns(key, []byte(initial), []byte(target))
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func hasRow(ctx context.Context, q rowQuerier, date domain.Date) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM puzzles WHERE date = ?`, date.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *SQLite) Get(ctx context.Context, date domain.Date) (*domain.PuzzleRecord, bool, error) {
	return getRow(ctx, s.db, date)
}

func (s *SQLite) Has(ctx context.Context, date domain.Date) (bool, error) {
	return hasRow(ctx, s.db, date)
}

func (s *SQLite) EarliestDate(ctx context.Context) (domain.Date, bool, error) {
	var earliest sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MIN(date) FROM puzzles`).Scan(&earliest); err != nil {
		return domain.Date{}, false, err
	}
	if !earliest.Valid {
		return domain.Date{}, false, nil
	}
	d, err := domain.ParseDate(earliest.String)
	if err != nil {
		return domain.Date{}, false, err
	}
	return d, true, nil
}

func (s *SQLite) Begin(ctx context.Context) (ports.Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteBatch{tx: tx}, nil
}

type sqliteBatch struct {
	tx   *sql.Tx
	done bool
}

func (b *sqliteBatch) Has(ctx context.Context, date domain.Date) (bool, error) {
	return hasRow(ctx, b.tx, date)
}

func (b *sqliteBatch) Add(ctx context.Context, rec *domain.PuzzleRecord) error {
	initial, err := domain.EncodeRacks(rec.InitialRacks)
	if err != nil {
		return err
	}
	target, err := domain.EncodeRacks(rec.TargetSolution)
	if err != nil {
		return err
	}
	if ok, err := b.Has(ctx, rec.Date); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %s", ErrExists, rec.Date)
	}
	_, err = b.tx.ExecContext(ctx, `
		INSERT INTO puzzles (date, initial_racks, target_solution) VALUES (?, ?, ?)
	`, rec.Date.String(), string(initial), string(target))
	return err
}

func (b *sqliteBatch) Commit() error {
	b.done = true
	return b.tx.Commit()
}

func (b *sqliteBatch) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	return b.tx.Rollback()
}

var _ ports.PuzzleStore = (*SQLite)(nil)
