// Package config loads the renderer settings from built-in defaults, an
// optional YAML file and environment overrides, in that order.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	ModelTriangle   = "triangle"
	ModelSierpinski = "sierpinski"

	// MaxSierpinskiDepth keeps the mesh under 200k vertices.
	MaxSierpinskiDepth = 10

	// PathEnv names the variable holding the config file path.
	PathEnv     = "TRIANGLES_CONFIG"
	DefaultPath = "triangles.yaml"
)

type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Shaders names SPIR-V files that replace the built-in shaders. An empty
// path keeps the built-in one.
type Shaders struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type Model struct {
	Kind  string `yaml:"kind"`
	Depth int    `yaml:"depth"`
}

type Stats struct {
	// Interval between frame statistics log lines. Zero disables them.
	Interval time.Duration `yaml:"interval"`
}

type Config struct {
	Window     Window  `yaml:"window"`
	Validation bool    `yaml:"validation"`
	Shaders    Shaders `yaml:"shaders"`
	Model      Model   `yaml:"model"`
	Stats      Stats   `yaml:"stats"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:  "Push Constants",
			Width:  800,
			Height: 600,
		},
		Validation: true,
		Model: Model{
			Kind:  ModelTriangle,
			Depth: 7,
		},
		Stats: Stats{
			Interval: 5 * time.Second,
		},
	}
}

// Load reads the file at path over the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, errors.Wrapf(err, "read config %s", path)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv loads the file named by TRIANGLES_CONFIG, or triangles.yaml.
func FromEnv() (Config, error) {
	return Load(GetEnv(PathEnv, DefaultPath))
}

func (c *Config) applyEnv() {
	c.Validation = GetEnvBool("TRIANGLES_VALIDATION", c.Validation)
	c.Window.Width = GetEnvInt("TRIANGLES_WIDTH", c.Window.Width)
	c.Window.Height = GetEnvInt("TRIANGLES_HEIGHT", c.Window.Height)
	c.Model.Kind = GetEnv("TRIANGLES_MODEL", c.Model.Kind)
	c.Model.Depth = GetEnvInt("TRIANGLES_DEPTH", c.Model.Depth)
	c.Stats.Interval = GetEnvDuration("TRIANGLES_STATS_INTERVAL", c.Stats.Interval)
	c.Shaders.Vertex = GetEnv("TRIANGLES_VERTEX_SHADER", c.Shaders.Vertex)
	c.Shaders.Fragment = GetEnv("TRIANGLES_FRAGMENT_SHADER", c.Shaders.Fragment)
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Newf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Model.Kind {
	case ModelTriangle:
	case ModelSierpinski:
		if c.Model.Depth < 0 || c.Model.Depth > MaxSierpinskiDepth {
			return errors.Newf("sierpinski depth %d out of range [0, %d]", c.Model.Depth, MaxSierpinskiDepth)
		}
	default:
		return errors.Newf("unknown model kind %q", c.Model.Kind)
	}
	if c.Stats.Interval < 0 {
		return errors.Newf("negative stats interval %s", c.Stats.Interval)
	}
	return nil
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvInt returns an environment variable as int or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvBool returns an environment variable as bool or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvDuration returns an environment variable as duration or a default value.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
