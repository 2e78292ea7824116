/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// useConfigFile points Path() at a file inside a temp dir and clears env overrides.
func useConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	t.Setenv(EnvConfigPath, path)
	for _, k := range []string{EnvTelemetryOptIn, EnvIndexEnabled, EnvIndexPath, EnvLogLevel, EnvLogFormat, EnvLogSource, EnvLogFile} {
		t.Setenv(k, "")
	}
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	useConfigFile(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("Load() = %#v, want defaults", cfg)
	}
}

func TestLoadMergesPartialFile(t *testing.T) {
	useConfigFile(t, "logging:\n  level: DEBUG\nindex:\n  path: /tmp/idx.sqlite\n")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Index.Path != "/tmp/idx.sqlite" {
		t.Fatalf("Index.Path = %q", cfg.Index.Path)
	}
	if !cfg.Index.Enabled {
		t.Fatalf("Index.Enabled must keep its default when the key is absent")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("Logging.Format = %q, want default console", cfg.Logging.Format)
	}
}

func TestLoadExplicitFalseBoolean(t *testing.T) {
	useConfigFile(t, "index:\n  enabled: false\n")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Index.Enabled {
		t.Fatalf("index.enabled: false was not honoured")
	}
}

func TestLoadInvalidFileFallsBack(t *testing.T) {
	useConfigFile(t, "logging:\n  level: chatty\nunknown: 1\n")
	cfg, err := Load()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Load() error = %v, want ErrInvalid", err)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("invalid file must not leak into config: %#v", cfg.Logging)
	}
}

func TestEnvOverrides(t *testing.T) {
	useConfigFile(t, "general:\n  telemetry_opt_in: false\n")
	t.Setenv(EnvTelemetryOptIn, "on")
	t.Setenv(EnvIndexEnabled, "0")
	t.Setenv(EnvLogFormat, "JSON")
	t.Setenv(EnvLogFile, "/var/log/cocf.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn || cfg.Index.Enabled || cfg.Logging.Format != "json" || cfg.Logging.File != "/var/log/cocf.log" {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if env, ok := EnvOverrideFor("logging.format"); !ok || env != EnvLogFormat {
		t.Fatalf("EnvOverrideFor(logging.format) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("logging.level"); ok {
		t.Fatalf("logging.level is not overridden")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := useConfigFile(t, "")
	want := Defaults()
	want.General.RecentLimit = 50
	want.Logging.Source = true
	if err := Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("saved config does not validate: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %#v, want %#v", got, want)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		ok   bool
	}{
		{"empty", "", true},
		{"minimal", "config_version: 1\n", true},
		{"full", "general:\n  telemetry_opt_in: true\n  recent_limit: 5\nindex:\n  enabled: true\n  path: x\nlogging:\n  level: warn\n  format: json\n  source: false\n  file: ''\n", true},
		{"bad level", "logging:\n  level: verbose\n", false},
		{"unknown section", "slots:\n  dirs: []\n", false},
		{"wrong type", "index:\n  enabled: maybe\n", false},
		{"not yaml", "::: [", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate([]byte(tc.doc))
			if tc.ok && err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}
