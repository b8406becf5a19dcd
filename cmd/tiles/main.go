package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"svw.info/tiles/internal/domain"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr, domain.SystemClock{})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps command errors onto process exit statuses.
func exitCode(err error) int {
	if errors.Is(err, domain.ErrNotFound) {
		return 2
	}
	return 1
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
