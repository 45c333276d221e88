package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment key.
const EnvPrefix = "MILLWORK"

// Config holds every millwork setting.
type Config struct {
	// Store is the SQLite database holding processors and completions.
	Store StoreConfig `mapstructure:"store"`
	// Engine paces the world.
	Engine EngineConfig `mapstructure:"engine"`
	// Recipes locates and tunes the machine definitions.
	Recipes RecipesConfig `mapstructure:"recipes"`
	// Log configures the default slog logger.
	Log LogConfig `mapstructure:"log"`
	// HTTP configures the status API.
	HTTP HTTPConfig `mapstructure:"http"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" default:"millwork.db"`
}

type EngineConfig struct {
	// TickRate is the number of ticks per second while serving.
	TickRate float64 `mapstructure:"tick_rate" default:"20"`
	// AutosaveTicks saves the world every n ticks. Zero disables it.
	AutosaveTicks int64 `mapstructure:"autosave_ticks" default:"200"`
}

type RecipesConfig struct {
	Dir             string `mapstructure:"dir" default:"recipes"`
	Factor          bool   `mapstructure:"factor" default:"false"`
	SmartInput      bool   `mapstructure:"smart_input" default:"true"`
	MaxPermutations int    `mapstructure:"max_permutations" default:"5040"`
	// Export lists the machines whose recipes are exported after a build.
	// From the environment it is a comma separated list.
	Export    []string `mapstructure:"export" default:""`
	ExportDir string   `mapstructure:"export_dir" default:"export"`
}

// Integration returns Export as the per-machine toggle map the recipe
// registry expects.
func (r RecipesConfig) Integration() map[string]bool {
	m := make(map[string]bool, len(r.Export))
	for _, name := range r.Export {
		if name = strings.TrimSpace(name); name != "" {
			m[name] = true
		}
	}
	return m
}

type LogConfig struct {
	Level string `mapstructure:"level" default:"info"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" default:":8080"`
}

// Options selects the sources Load reads besides the environment.
type Options struct {
	// EnvDir holds an optional .env file. Empty skips it.
	EnvDir string
	// File is an optional YAML config file. Empty skips it.
	File string
}

// Load reads configuration from defaults, File, EnvDir/.env and the
// environment, then validates it.
func Load(opts Options) (*Config, error) {
	if opts.EnvDir != "" {
		// A missing .env is normal outside development.
		_ = godotenv.Load(filepath.Join(opts.EnvDir, ".env"))
	}

	v := viper.New()
	bindValues(v, Config{}, "")

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("engine.tick_rate must be positive, got %v", c.Engine.TickRate))
	}
	if c.Engine.AutosaveTicks < 0 {
		errs = append(errs, fmt.Errorf("engine.autosave_ticks must not be negative, got %d", c.Engine.AutosaveTicks))
	}
	if c.Recipes.MaxPermutations < 0 {
		errs = append(errs, fmt.Errorf("recipes.max_permutations must not be negative, got %d", c.Recipes.MaxPermutations))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level. "warning" is accepted for
// warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level: unknown level %q", name)
}

// bindValues walks the struct and registers every mapstructure key with its
// default tag, so AutomaticEnv can see it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set the default, even if empty, to register the key.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
