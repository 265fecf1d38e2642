package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up by the CLI.
const DefaultConfigFile = "sitebuilder.yaml"

// EnvVar names the environment variable that selects development or production.
const EnvVar = "SITEBUILDER_ENV"

// LoadOptions overrides values resolved from the file.
type LoadOptions struct {
	// Env from the command line. Takes precedence over SITEBUILDER_ENV and the file.
	Env string
	// SkipDotEnv disables .env loading (tests).
	SkipDotEnv bool
}

// Load reads, expands, defaults and validates the configuration at path.
// A missing file yields the default configuration.
func Load(path string, opts LoadOptions) (*Config, error) {
	if !opts.SkipDotEnv {
		if _, err := LoadEnvFiles(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Env = ResolveEnvironment(opts.Env, os.Getenv(EnvVar), string(cfg.Env))
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse expands ${VAR} references in data and decodes it into cfg.
func Parse(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	if strings.TrimSpace(expanded) == "" {
		return nil
	}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// ResolveEnvironment returns the first non-empty candidate, normalized.
func ResolveEnvironment(candidates ...string) Environment {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return NormalizeEnvironment(c)
		}
	}
	return EnvDevelopment
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	example := Example()
	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := &Config{
		Site: SiteConfig{
			Title:       "Developer Documentation",
			Description: "Guides, API references and release notes",
			BaseURL:     "https://localhost",
		},
		CSS: CSSConfig{
			Themes: []ThemeConfig{{
				Name: "tgwf",
				Colors: map[string]string{
					"primary":   "#f7f7f7",
					"secondary": "#212121",
					"accent":    "#dc2a0b",
					"neutral":   "#707070",
					"base-100":  "#ffffff",
					"info":      "#0284c7",
					"success":   "#22c55e",
					"warning":   "#fde047",
					"error":     "#f87171",
				},
			}},
		},
		FeatureImage: FeatureImageConfig{Endpoint: "https://localhost/"},
		Images:       ImagesConfig{FetchRemote: true},
	}
	ApplyDefaults(cfg)
	return cfg
}
