package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	ktoml "github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes environment variables read as settings, so
// LOOM_FILES_ROOT sets files_root.
const EnvPrefix = "LOOM_"

// SettingsDir is the directory under the XDG config home searched by
// DefaultSettingsFile.
const SettingsDir = "loom"

// Settings configures a loom generate run.
type Settings struct {
	Plan      string   `koanf:"plan"`
	Archive   string   `koanf:"archive"`
	Out       string   `koanf:"out"`
	FilesRoot string   `koanf:"files_root"`
	Manifest  bool     `koanf:"manifest"`
	Atomic    bool     `koanf:"atomic"`
	GoImports bool     `koanf:"goimports"`
	GoFumpt   bool     `koanf:"gofumpt"`
	TrimSpace []string `koanf:"trim_space"`
}

func (s *Settings) Validate() error {
	if s.Plan == "" {
		return fmt.Errorf("plan is required")
	}
	if s.Archive == "" {
		return fmt.Errorf("archive is required")
	}
	if s.Out == "" {
		return fmt.Errorf("out is required")
	}
	return nil
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() map[string]any {
	return map[string]any{
		"out":        ".",
		"files_root": "files",
		"manifest":   false,
		"atomic":     false,
		"goimports":  false,
		"gofumpt":    false,
		"trim_space": []string{},
	}
}

// LoadSettings layers, lowest first: Defaults, the settings file at path
// (skipped when path is empty), LOOM_ environment variables and overrides,
// which usually holds the command-line flags that were set.
func LoadSettings(path string, overrides map[string]any) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		parser, err := settingsParser(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func settingsParser(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return kyaml.Parser(), nil
	case ".toml":
		return ktoml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported settings format %q", filepath.Ext(path))
	}
}

// DefaultSettingsFile returns the first settings.yaml, settings.yml or
// settings.toml found in $XDG_CONFIG_HOME/loom, or "" when there is none.
func DefaultSettingsFile() string {
	for _, name := range []string{"settings.yaml", "settings.yml", "settings.toml"} {
		candidate := filepath.Join(xdg.ConfigHome, SettingsDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
