package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"svw.info/tiles/internal/config"
	"svw.info/tiles/internal/domain"
	"svw.info/tiles/internal/generator"
	"svw.info/tiles/internal/infrastructure/cache"
	"svw.info/tiles/internal/infrastructure/storage"
	"svw.info/tiles/internal/ports"
	"svw.info/tiles/internal/rules"
	"svw.info/tiles/internal/usecase"
	"svw.info/tiles/internal/validator"
)

// cli carries state shared by the subcommands for one invocation.
type cli struct {
	out, errOut io.Writer

	configFile string
	envFile    string
	logLevel   string
	clock      domain.Clock

	settings *config.Settings
	logger   *slog.Logger
}

func newRootCmd(out, errOut io.Writer, clock domain.Clock) *cobra.Command {
	c := &cli{out: out, errOut: errOut, clock: clock}
	root := &cobra.Command{
		Use:           "tiles",
		Short:         "Daily word-tile puzzles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML settings file")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file with TILES_* variables")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "debug|info|warn|error (overrides settings)")

	root.AddCommand(c.generateCmd(), c.puzzleCmd(), c.rulesCmd())
	return root
}

func (c *cli) setup() error {
	s, err := config.Load(config.Options{ConfigFile: c.configFile, EnvFile: c.envFile})
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		s.LogLevel = c.logLevel
	}
	c.settings = s
	c.logger = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: parseLevel(s.LogLevel)}))
	return nil
}

func (c *cli) openStore() (ports.PuzzleStore, error) {
	st, err := storage.Open(c.settings.Store.Driver, c.settings.Store.Path, c.logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.settings.Store.Driver, err)
	}
	return st, nil
}

// service wires the application context over st. ws may be nil for
// commands that only read. The caller closes the returned cache.
func (c *cli) service(st ports.PuzzleStore, ws ports.WordSource) (*usecase.Service, ports.Cache, error) {
	cc, err := cache.New(cache.Config{Driver: c.settings.Cache.Driver, RedisURL: c.settings.Cache.RedisURL})
	if err != nil {
		return nil, nil, err
	}
	svc := usecase.NewService(usecase.Deps{
		Store:     st,
		Cache:     cc,
		CacheTTL:  c.settings.Cache.TTL,
		Generator: generator.NewTileGenerator(),
		Validator: validator.New(),
		Words:     ws,
		Rules:     rules.NewFileLoader(c.settings.RulesPath()),
		Clock:     c.clock,
		Salt:      c.settings.Salt,
		Logger:    c.logger,
	})
	return svc, cc, nil
}
