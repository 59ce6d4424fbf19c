// Package config loads typed configuration files and the settings of the
// loom command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that check themselves
// after decoding.
type Validator interface {
	Validate() error
}

// Load decodes the file at path into target, choosing the format from the
// file extension: .yaml and .yml are YAML, .toml is TOML.
func Load[T any](path string, target *T) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, target)
	case ".toml":
		return LoadTOML(path, target)
	default:
		return fmt.Errorf("unsupported configuration format %q", filepath.Ext(path))
	}
}

// LoadYAML decodes a YAML file into target and validates it when target
// implements Validator.
func LoadYAML[T any](path string, target *T) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	return LoadYAMLFromString(string(data), target)
}

// LoadYAMLFromString is LoadYAML for content already in memory.
func LoadYAMLFromString[T any](yamlContent string, target *T) error {
	if err := yaml.Unmarshal([]byte(yamlContent), target); err != nil {
		return fmt.Errorf("failed to parse YAML configuration: %w", err)
	}
	return validate(target)
}

// LoadTOML decodes a TOML file into target and validates it when target
// implements Validator.
func LoadTOML[T any](path string, target *T) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	return LoadTOMLFromString(string(data), target)
}

func LoadTOMLFromString[T any](tomlContent string, target *T) error {
	if err := toml.Unmarshal([]byte(tomlContent), target); err != nil {
		return fmt.Errorf("failed to parse TOML configuration: %w", err)
	}
	return validate(target)
}

func readFile(path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", absPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", absPath, err)
	}
	return data, nil
}

func validate(target any) error {
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return nil
}
