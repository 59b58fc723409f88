// Package config holds the collection configuration for relic.
package config

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/archivekit/relic/internal/record"
)

// DefaultFileName is looked up in the working directory when no config
// path is given.
const DefaultFileName = "relic.yaml"

// Config describes one archival collection.
type Config struct {
	// Namespace is the base IRI identifiers and entity IRIs derive
	// from. It must not end with a slash.
	Namespace string `yaml:"namespace"`

	// UIDColumn names the inventory column that carries stable
	// identifiers.
	UIDColumn string `yaml:"uid_column"`

	// PathColumn names the inventory column with file paths. Empty
	// means auto-detect from the usual DROID header names.
	PathColumn string `yaml:"path_column,omitempty"`

	// StoreDir is the directory holding the persistent graph store.
	StoreDir string `yaml:"store_dir"`

	// Shapes optionally points at a YAML file overriding the
	// built-in required-property constraints.
	Shapes string `yaml:"shapes,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Namespace: "http://example.org/collection",
		UIDColumn: record.DefaultUIDColumn,
		StoreDir:  ".relic",
	}
}

// Load reads a config file and merges it over the defaults. An empty
// path loads DefaultFileName if it exists and plain defaults otherwise.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration fields.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Namespace, validation.Required, is.URL),
		validation.Field(&c.UIDColumn, validation.Required),
		validation.Field(&c.StoreDir, validation.Required),
	)
}
