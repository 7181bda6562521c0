package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Rishikoli/chaingraph/pkg/cache"
	"github.com/Rishikoli/chaingraph/pkg/errors"
	"github.com/Rishikoli/chaingraph/pkg/pipeline"
)

// Config holds user-tunable settings loaded from a TOML file. Every field
// has a working zero value; an absent config file is not an error.
//
// Example (~/.config/chaingraph/config.toml):
//
//	[layout]
//	strategy = "force"
//	min_separation = 60.0
//	passes = 4
//
//	[render]
//	width = 800.0
//	height = 600.0
//	scale = 2.0
//
//	[cache]
//	backend = "file"        # file, redis, or none
//	redis_addr = "localhost:6379"
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig tunes the layout stage.
type LayoutConfig struct {
	Strategy      string  `toml:"strategy"`
	MinSeparation float64 `toml:"min_separation"`
	Passes        int     `toml:"passes"`
	Randomize     bool    `toml:"randomize"`
	Seed          uint64  `toml:"seed"`
	RankDir       string  `toml:"rank_dir"`
}

// RenderConfig tunes the render stage.
type RenderConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Scale  float64 `toml:"scale"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file (default), redis, none
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// ServerConfig tunes the preview server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields a zero config.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		base, err := os.UserConfigDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(base, "chaingraph", "config.toml")
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
	}
	return cfg, nil
}

// applyTo copies the config values onto pipeline options, leaving fields
// already set by flags untouched.
func (c Config) applyTo(opts *pipeline.Options) {
	if opts.Strategy == "" {
		opts.Strategy = c.Layout.Strategy
	}
	if opts.MinSeparation == 0 {
		opts.MinSeparation = c.Layout.MinSeparation
	}
	if opts.Passes == 0 {
		opts.Passes = c.Layout.Passes
	}
	if !opts.Randomize {
		opts.Randomize = c.Layout.Randomize
	}
	if opts.Seed == 0 {
		opts.Seed = c.Layout.Seed
	}
	if opts.RankDir == "" {
		opts.RankDir = c.Layout.RankDir
	}
	if opts.Width == 0 {
		opts.Width = c.Render.Width
	}
	if opts.Height == 0 {
		opts.Height = c.Render.Height
	}
	if opts.Scale == 0 {
		opts.Scale = c.Render.Scale
	}
}

// cacheDir returns the on-disk cache directory, honoring the config
// override.
func cacheDir(cfg CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "chaingraph"), nil
}

// openCache builds the configured cache backend. The default is a file
// cache under the user cache directory.
func openCache(ctx context.Context, cfg CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		addr := cfg.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		return cache.NewRedisCache(ctx, addr)
	case "", "file":
		dir, err := cacheDir(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache backend: %q (must be one of: file, redis, none)", cfg.Backend)
	}
}
