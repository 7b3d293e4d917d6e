package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// LocalConfigFile is looked up in the working directory when no path is given
const LocalConfigFile = "docscrape.yaml"

// xdgConfigFile is relative to the XDG config directories
var xdgConfigFile = filepath.Join("docscrape", "config.yaml")

// Load reads the YAML file at path over the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (*Configuration, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // config path comes from the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Find returns the config file to use, or "" when there is none.
//
// An explicit path must exist. Otherwise docscrape.yaml in the working
// directory wins over $XDG_CONFIG_HOME/docscrape/config.yaml.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return explicit, nil
	}

	if _, err := os.Stat(LocalConfigFile); err == nil {
		return LocalConfigFile, nil
	}

	if p, err := xdg.SearchConfigFile(xdgConfigFile); err == nil {
		return p, nil
	}

	return "", nil
}

// Resolve finds and loads the configuration, falling back to the defaults
// when no file is present.
func Resolve(explicit string) (*Configuration, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
