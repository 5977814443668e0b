package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is loaded when no config path is given and it exists.
const DefaultFile = "abslens.yaml"

// EnvPrefix selects environment overrides: ABSLENS_LOG_LEVEL -> log.level.
const EnvPrefix = "ABSLENS_"

type Config struct {
	Log     LogConfig     `koanf:"log"`
	Analyze AnalyzeConfig `koanf:"analyze"`
	Diagram DiagramConfig `koanf:"diagram"`
	Server  ServerConfig  `koanf:"server"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	File   string `koanf:"file"`
	Format string `koanf:"format"` // json, text
}

type AnalyzeConfig struct {
	Filter            string `koanf:"filter"`
	IncludeStdlib     bool   `koanf:"include_stdlib"`
	IncludeUnexported bool   `koanf:"include_unexported"`
	NoPartials        bool   `koanf:"no_partials"`
	CacheDir          string `koanf:"cache_dir"`
	Download          bool   `koanf:"download"`
}

type DiagramConfig struct {
	MaxMethods int `koanf:"max_methods"`
}

type ServerConfig struct {
	Port     int           `koanf:"port"`
	Watch    bool          `koanf:"watch"` // re-analyze when Go files change
	Debounce time.Duration `koanf:"debounce"`
}

var defaults = map[string]any{
	"log.level":                  "info",
	"log.file":                   "logs/abslens.log",
	"log.format":                 "json",
	"analyze.filter":             "",
	"analyze.include_stdlib":     false,
	"analyze.include_unexported": false,
	"analyze.no_partials":        false,
	"analyze.cache_dir":          "",
	"analyze.download":           true,
	"diagram.max_methods":        5,
	"server.port":                8080,
	"server.watch":               true,
	"server.debounce":            "300ms",
}

// Load layers defaults, the YAML file at path and ABSLENS_ environment
// variables, later layers winning. An empty path falls back to DefaultFile
// when it exists.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", DefaultFile, err)
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// envKey maps ABSLENS_ANALYZE_INCLUDE_STDLIB to analyze.include_stdlib. Only
// the first underscore separates section from key.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}
