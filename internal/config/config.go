// Package config loads runtime settings from defaults, an optional YAML
// file, a .env file and TILES_* environment variables, in rising order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"svw.info/tiles/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. TILES_STORE_DRIVER.
const EnvPrefix = "TILES"

const (
	defaultWordsFile = "words-common.txt"
	defaultRulesFile = "game_rules.yaml"
)

type Settings struct {
	ConfigDir string        `mapstructure:"config_dir" validate:"required"`
	WordsFile string        `mapstructure:"words_file"`
	RulesFile string        `mapstructure:"rules_file"`
	Salt      string        `mapstructure:"salt" validate:"required"`
	LogLevel  string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Store     StoreSettings `mapstructure:"store"`
	Cache     CacheSettings `mapstructure:"cache"`
}

type StoreSettings struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite badger fs"`
	Path   string `mapstructure:"path" validate:"required"`
}

type CacheSettings struct {
	Driver   string        `mapstructure:"driver" validate:"omitempty,oneof=none off memory redis"`
	RedisURL string        `mapstructure:"redis_url" validate:"required_if=Driver redis"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// WordsPath is the word list location, relative to ConfigDir unless absolute.
func (s *Settings) WordsPath() string { return s.resolve(s.WordsFile, defaultWordsFile) }

// RulesPath is the rules file location, relative to ConfigDir unless absolute.
func (s *Settings) RulesPath() string { return s.resolve(s.RulesFile, defaultRulesFile) }

func (s *Settings) resolve(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.ConfigDir, name)
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("config_dir", "config")
	v.SetDefault("words_file", "")
	v.SetDefault("rules_file", "")
	v.SetDefault("salt", domain.DefaultSalt)
	v.SetDefault("log_level", "info")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", filepath.Join("data", "puzzles.db"))
	v.SetDefault("cache.driver", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "0s")
}

// Options controls where Load looks for settings. Empty paths are skipped.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load builds Settings. A missing EnvFile is ignored; a missing ConfigFile
// is an error since it was asked for explicitly. Failures wrap
// domain.ErrConfigLoad.
func Load(opts Options) (*Settings, error) {
	if opts.EnvFile != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfigLoad, opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrConfigLoad, opts.ConfigFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: decode settings: %v", domain.ErrConfigLoad, err)
	}
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.Store.Driver = strings.ToLower(strings.TrimSpace(s.Store.Driver))
	s.Cache.Driver = strings.ToLower(strings.TrimSpace(s.Cache.Driver))
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("%w: invalid settings: %v", domain.ErrConfigLoad, err)
	}
	return &s, nil
}
