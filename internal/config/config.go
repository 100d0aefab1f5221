// Package config loads the tool's configuration from
// ~/.coros-export/config.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"coros-export/internal/coros"
)

// Config represents the application configuration
type Config struct {
	Coros   CorosConfig   `json:"coros"`
	Export  ExportConfig  `json:"export"`
	Extract ExtractConfig `json:"extract"`
}

// CorosConfig holds Training Hub credentials. The password is sent to
// the vendor MD5-hashed because their protocol requires it; that hash
// is not a confidentiality mechanism, so treat the config file itself
// as the secret (it is written 0600).
type CorosConfig struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// ExportConfig holds output destinations.
type ExportConfig struct {
	Dir      string `json:"dir"`
	JSONPath string `json:"json_path"`
	FileType string `json:"file_type"`
}

// ExtractConfig narrows what gets extracted.
type ExtractConfig struct {
	// Limit caps the number of activities requested; 0 means all.
	Limit int `json:"limit"`
	// Types filters by vendor sport codes; empty means all.
	Types []int `json:"types"`
	// Force re-fetches activities already in the local cache.
	Force bool `json:"force"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Export: ExportConfig{
			Dir:      "exports",
			JSONPath: "activities.json",
			FileType: "fit",
		},
	}
}

// Load reads the configuration from ~/.coros-export/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = defaults.Export.Dir
	}
	if cfg.Export.JSONPath == "" {
		cfg.Export.JSONPath = defaults.Export.JSONPath
	}
	if cfg.Export.FileType == "" {
		cfg.Export.FileType = defaults.Export.FileType
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.coros-export/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Coros = CorosConfig{
		Account:  "YOUR_EMAIL",
		Password: "YOUR_PASSWORD",
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Coros.Account == "" || c.Coros.Account == "YOUR_EMAIL" {
		return errors.New("coros.account is required - your Training Hub email or username")
	}
	if c.Coros.Password == "" || c.Coros.Password == "YOUR_PASSWORD" {
		return errors.New("coros.password is required")
	}

	if c.Export.FileType != "" {
		if _, ok := coros.ParseFileType(c.Export.FileType); !ok {
			return fmt.Errorf("export.file_type must be one of csv, gpx, kml, tcx, fit; got %q", c.Export.FileType)
		}
	}

	if c.Extract.Limit < 0 {
		return fmt.Errorf("extract.limit must be non-negative, got %d", c.Extract.Limit)
	}
	for _, code := range c.Extract.Types {
		if !coros.SportType(code).Known() {
			return fmt.Errorf("extract.types contains unknown sport code %d", code)
		}
	}

	return nil
}

// FileType returns the configured export format.
func (c *Config) FileType() coros.FileType {
	ft, ok := coros.ParseFileType(c.Export.FileType)
	if !ok {
		return coros.FileFIT
	}
	return ft
}

// Filter returns the listing filter the config describes.
func (c *Config) Filter() coros.Filter {
	f := coros.Filter{Limit: c.Extract.Limit}
	for _, code := range c.Extract.Types {
		f.Types = append(f.Types, coros.SportType(code))
	}
	return f
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".coros-export", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".coros-export"), nil
}
