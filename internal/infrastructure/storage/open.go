package storage

import (
	"fmt"
	"log/slog"
	"strings"

	"svw.info/tiles/internal/ports"
)

// Open returns the puzzle store for driver (sqlite, badger or fs) at path.
func Open(driver, path string, logger *slog.Logger) (ports.PuzzleStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return NewSQLite(path)
	case "badger":
		cfg := DefaultBadgerConfig(path)
		cfg.Logger = logger
		return NewBadger(cfg)
	case "fs", "file", "files":
		return NewFS(path), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
