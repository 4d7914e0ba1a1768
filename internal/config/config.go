// Package config loads reactpug.yaml project settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// FileName is the config file searched for by Find.
const FileName = "reactpug.yaml"

// Config holds project settings. CLI flags override loaded values.
type Config struct {
	// Factory is the element factory expression.
	Factory string `yaml:"factory"`
	// RootTag wraps templates that produce several top-level elements.
	RootTag string `yaml:"root_tag"`
	// Format is "body" or "commonjs".
	Format string `yaml:"format"`
	// Globals resolve in the enclosing scope instead of through locals.
	Globals []string `yaml:"globals"`
	// EscapeAttributes HTML-escapes escaped (`=`) attribute values.
	EscapeAttributes bool `yaml:"escape_attributes"`
	// OutExt replaces the .pug/.jade extension of generated files.
	OutExt string `yaml:"out_ext"`
	// Exclude lists directory names skipped when walking ./... paths.
	Exclude []string `yaml:"exclude"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `yaml:"-"`
}

// Defaults returns the settings used when no config file exists.
func Defaults() *Config {
	return &Config{
		Factory: "React.createElement",
		RootTag: "div",
		Format:  "body",
		OutExt:  ".js",
		Exclude: []string{"node_modules", ".git"},
	}
}

// ErrNotFound is returned by Find when no config file exists.
var ErrNotFound = errors.New("no " + FileName + " found")

// Find walks up from dir looking for FileName.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads the config at path, or the nearest one above the working
// directory when path is empty. A missing implicit config yields Defaults.
func Load(path string, getenv func(string) string) (*Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		found, err := Find(wd)
		if errors.Is(err, ErrNotFound) {
			return Defaults(), nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data, getenv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse overlays YAML data onto Defaults after environment interpolation.
func Parse(data []byte, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(interpolateEnv(data, getenv), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Format {
	case "body", "commonjs", "cjs":
	default:
		return fmt.Errorf("invalid format %q (must be body or commonjs)", c.Format)
	}
	if c.Factory == "" {
		return errors.New("factory must not be empty")
	}
	if c.RootTag == "" {
		return errors.New("root_tag must not be empty")
	}
	return nil
}

// Excluded reports whether a directory name is skipped during walks.
func (c *Config) Excluded(name string) bool {
	for _, ex := range c.Exclude {
		if ex == name {
			return true
		}
	}
	return false
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		value := getenv(string(parts[1]))
		if value == "" && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}
