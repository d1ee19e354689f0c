// Package cliconfig loads the evaluator CLI's optional YAML preferences
// file, merging it over compiled-in defaults. Grounded on the teacher's
// pkg/driver/manifest.go LoadManifest pattern (YAML decode with known-fields
// checking, then validate), repurposed from package manifests to CLI
// preferences since this language has no package/module system.
package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config is the CLI's persisted preference set.
type Config struct {
	HistoryCap      int  `yaml:"historyCap"`
	SeedConvenience bool `yaml:"seedConvenience"`
	Verbose         bool `yaml:"verbose"`
}

// Defaults returns the compiled-in baseline every loaded config merges over.
func Defaults() Config {
	return Config{
		HistoryCap:      1000,
		SeedConvenience: false,
		Verbose:         false,
	}
}

// Dir returns $HOME/.evaluator, creating it if necessary.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cliconfig: resolve user home: %w", err)
	}
	dir := filepath.Join(home, ".evaluator")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cliconfig: create %s: %w", dir, err)
	}
	return dir, nil
}

// Path returns the config file path under Dir.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads config.yaml if present and merges it over Defaults(); a
// missing file is not an error — the caller gets pure defaults.
func Load() (Config, error) {
	cfg := Defaults()

	path, err := Path()
	if err != nil {
		return cfg, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cliconfig: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var loaded Config
	if err := decoder.Decode(&loaded); err != nil {
		return cfg, fmt.Errorf("cliconfig: parse %s: %w", path, err)
	}

	if err := mergo.Merge(&cfg, loaded, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("cliconfig: merge %s over defaults: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to config.yaml, creating the directory if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cliconfig: marshal config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("cliconfig: write %s: %w", path, err)
	}
	return nil
}
