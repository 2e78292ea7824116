/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the per-user config
// directory, merged over defaults, with COCF_* environment variables as read-only
// overrides. The tracked save directories are deliberately not part of it.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON []byte

// ErrInvalid is returned by Load and Validate when the config file does not match the schema.
var ErrInvalid = errors.New("invalid config")

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
	RecentLimit    int  `yaml:"recent_limit"` // rows shown by `cocfiles history`
}

// IndexConfig controls the sqlite catalog cache and dispatch history.
// An empty Path means the default location under the user cache directory.
type IndexConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Index         IndexConfig   `yaml:"index"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, RecentLimit: 20},
		Index:         IndexConfig{Enabled: true},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "COCF_CONFIG"
	EnvTelemetryOptIn = "COCF_TELEMETRY_OPT_IN"
	EnvIndexEnabled   = "COCF_INDEX"
	EnvIndexPath      = "COCF_INDEX_PATH"
	EnvLogLevel       = "COCF_LOG_LEVEL"
	EnvLogFormat      = "COCF_LOG_FORMAT"
	EnvLogSource      = "COCF_LOG_SOURCE"
	EnvLogFile        = "COCF_LOG_FILE"
)

// Path returns the config file location. COCF_CONFIG wins over the per-OS default.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultIndexPath is used when Index.Path is empty.
func DefaultIndexPath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		home, herr := homedir.Dir()
		if herr != nil {
			return "", fmt.Errorf("resolve cache dir: %w", err)
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "cocfiles", "index.sqlite"), nil
}

func userDir() (string, error) {
	if runtime.GOOS == "windows" {
		if base := os.Getenv("AppData"); base != "" {
			return filepath.Join(base, "cocfiles"), nil
		}
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "cocfiles"), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "cocfiles"), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cocfiles"), nil
	}
	return filepath.Join(home, ".config", "cocfiles"), nil
}

// Load reads the config file if present, merges it over the defaults and applies env
// overrides. The returned config is always usable; a file that fails validation is
// ignored and reported as ErrInvalid.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	var loadErr error
	if data, rerr := os.ReadFile(path); rerr == nil {
		if verr := Validate(data); verr != nil {
			loadErr = fmt.Errorf("%s: %w", path, verr)
		} else {
			var fileCfg AppConfig
			if uerr := yaml.Unmarshal(data, &fileCfg); uerr != nil {
				loadErr = fmt.Errorf("parse %s: %w", path, uerr)
			} else {
				mergeInto(&cfg, &fileCfg, data)
			}
		}
	} else if !errors.Is(rerr, os.ErrNotExist) {
		loadErr = fmt.Errorf("read config: %w", rerr)
	}
	applyEnvOverrides(&cfg)
	return cfg, loadErr
}

// Save writes cfg as YAML to Path().
func Save(cfg AppConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks a YAML document against the embedded JSON schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc == nil {
		return nil // empty file
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// mergeInto copies the fields set in the file over dst. Booleans are only taken when
// their key is present in raw, so a partial file keeps the defaults.
func mergeInto(dst, src *AppConfig, raw []byte) {
	var present struct {
		General map[string]any `yaml:"general"`
		Index   map[string]any `yaml:"index"`
		Logging map[string]any `yaml:"logging"`
	}
	_ = yaml.Unmarshal(raw, &present)
	has := func(m map[string]any, k string) bool { _, ok := m[k]; return ok }

	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if has(present.General, "telemetry_opt_in") {
		dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	}
	if src.General.RecentLimit > 0 {
		dst.General.RecentLimit = src.General.RecentLimit
	}
	if has(present.Index, "enabled") {
		dst.Index.Enabled = src.Index.Enabled
	}
	if p := strings.TrimSpace(src.Index.Path); p != "" {
		dst.Index.Path = p
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	if has(present.Logging, "source") {
		dst.Logging.Source = src.Logging.Source
	}
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v, ok := envBool(EnvTelemetryOptIn); ok {
		cfg.General.TelemetryOptIn = v
	}
	if v, ok := envBool(EnvIndexEnabled); ok {
		cfg.Index.Enabled = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIndexPath)); v != "" {
		cfg.Index.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v, ok := envBool(EnvLogSource); ok {
		cfg.Logging.Source = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func envBool(key string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return false, false
	}
	switch v {
	case "1", "true", "on", "yes":
		return true, true
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b, true
	}
	return false, true
}

// EnvOverrideFor returns the env var overriding a dotted config key, if it is set.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "general.telemetry_opt_in":
		env = EnvTelemetryOptIn
	case "index.enabled":
		env = EnvIndexEnabled
	case "index.path":
		env = EnvIndexPath
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
