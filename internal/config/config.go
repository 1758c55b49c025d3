// Package config loads scenekit settings from a YAML file with environment
// overrides.
package config

import (
	"io"
	"os"
	"strconv"

	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/scenekit/internal/core/observability/log"
)

type Config struct {
	// AssetRoot is the directory relative asset paths resolve against.
	AssetRoot     string       `yaml:"asset_root"`
	LogLevel      string       `yaml:"log_level"`
	DefaultShader ShaderConfig `yaml:"default_shader"`
	Cache         CacheConfig  `yaml:"cache"`
}

type ShaderConfig struct {
	Name     string `yaml:"name"`
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// env holds the overrides read from the environment. Empty values are ignored.
type env struct {
	AssetRoot    string `config:"SCENEKIT_ASSET_ROOT"`
	LogLevel     string `config:"SCENEKIT_LOG_LEVEL"`
	CacheEnabled string `config:"SCENEKIT_CACHE_ENABLED"`
}

func Default() Config {
	return Config{
		AssetRoot: ".",
		LogLevel:  log.LevelInfo.String(),
		DefaultShader: ShaderConfig{
			Name:     "phong",
			Vertex:   "data/shaders/phong.vert",
			Fragment: "data/shaders/phong.frag",
		},
		Cache: CacheConfig{Enabled: true},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, eris.Wrapf(err, "open config %s", path)
		}
		defer f.Close()
		if cfg, err = Decode(f); err != nil {
			return cfg, eris.Wrapf(err, "config %s", path)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode reads YAML from r over the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return cfg, eris.Wrap(err, "decode yaml")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var e env
	if err := jlconfig.FromEnv().To(&e); err != nil {
		return eris.Wrap(err, "read environment")
	}
	if e.AssetRoot != "" {
		c.AssetRoot = e.AssetRoot
	}
	if e.LogLevel != "" {
		c.LogLevel = e.LogLevel
	}
	if e.CacheEnabled != "" {
		enabled, err := strconv.ParseBool(e.CacheEnabled)
		if err != nil {
			return eris.Wrapf(err, "SCENEKIT_CACHE_ENABLED=%q", e.CacheEnabled)
		}
		c.Cache.Enabled = enabled
	}
	return nil
}

func (c Config) Validate() error {
	if c.AssetRoot == "" {
		return eris.New("asset_root is empty")
	}
	if c.DefaultShader.Name == "" {
		return eris.New("default_shader.name is empty")
	}
	return nil
}

// Level returns the parsed log level. Unknown names mean info.
func (c Config) Level() log.Level {
	return log.ParseLevel(c.LogLevel)
}
