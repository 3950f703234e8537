// Package config loads and validates the form check run configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// DriverKind selects the browser automation backend.
type DriverKind string

const (
	// DriverPlaywright drives Chromium through the Playwright driver
	DriverPlaywright DriverKind = "playwright"
	// DriverRod drives Chrome directly over the DevTools protocol
	DriverRod DriverKind = "rod"
)

// Config represents the configuration for a form check run
type Config struct {
	// BaseURL is the origin of the app under test
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Browser settings
	Driver        DriverKind `yaml:"driver" json:"driver"`
	Headless      bool       `yaml:"headless" json:"headless"`
	InstallDriver bool       `yaml:"install_driver" json:"install_driver"`
	BrowserBin    string     `yaml:"browser_bin" json:"browser_bin"`

	// Timeouts
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ActionTimeout     time.Duration `yaml:"action_timeout" json:"action_timeout"`

	// Run is a glob over check names; only matching checks execute
	Run string `yaml:"run" json:"run"`

	// Screenshots configuration
	Screenshots ScreenshotConfig `yaml:"screenshots" json:"screenshots"`

	// Artifacts configuration
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// ConfigFilePath is where the config was loaded from, if anywhere
	ConfigFilePath string `yaml:"-" json:"-"`
}

// ScreenshotConfig holds the fixed screenshot paths. An empty path disables
// that screenshot.
type ScreenshotConfig struct {
	Debug string `yaml:"debug" json:"debug"`
	Step2 string `yaml:"step2" json:"step2"`
	Step3 string `yaml:"step3" json:"step3"`
	Final string `yaml:"final" json:"final"`
}

// Paths returns the screenshot paths keyed by the names scenarios use.
func (s ScreenshotConfig) Paths() map[string]string {
	return map[string]string{
		"debug": s.Debug,
		"step2": s.Step2,
		"step3": s.Step3,
		"final": s.Final,
	}
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// File enables the per-run debug log file
	File bool `yaml:"file" json:"file"`
}

// DefaultConfig returns the configuration that reproduces the standard
// OSA form check against a local dev server.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "http://localhost:3000",
		Driver:            DriverPlaywright,
		Headless:          true,
		InstallDriver:     true,
		NavigationTimeout: 30 * time.Second,
		ActionTimeout:     30 * time.Second,
		Run:               "*",
		Screenshots: ScreenshotConfig{
			Debug: "/tmp/osa-debug.png",
			Step2: "/tmp/osa-step2.png",
			Step3: "/tmp/osa-step3.png",
			Final: "/tmp/osa-form-test-final.png",
		},
		Artifacts: ArtifactConfig{
			Enabled:   false,
			OutputDir: ".osa-formcheck/artifacts",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
			File:      true,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url: %s (scheme must be http or https)", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base_url: %s (missing host)", c.BaseURL)
	}

	if c.Driver != DriverPlaywright && c.Driver != DriverRod {
		return fmt.Errorf("invalid driver: %s (must be 'playwright' or 'rod')", c.Driver)
	}

	if c.NavigationTimeout < 0 {
		return fmt.Errorf("navigation_timeout cannot be negative")
	}
	if c.ActionTimeout < 0 {
		return fmt.Errorf("action_timeout cannot be negative")
	}

	if c.Run != "" {
		if _, err := glob.Compile(c.Run); err != nil {
			return fmt.Errorf("invalid run pattern %q: %w", c.Run, err)
		}
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return fmt.Errorf("artifacts.output_dir is required when artifacts are enabled")
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// Load reads a YAML config file over DefaultConfig. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = path
	return cfg, nil
}

// Parse decodes YAML over DefaultConfig.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}
