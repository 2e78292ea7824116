/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"log/slog"
	"time"

	"cocfiles/internal/catalog"
	"cocfiles/internal/config"
	"cocfiles/internal/dispatch"
	applog "cocfiles/internal/log"
	"cocfiles/internal/menu"
	"cocfiles/internal/storage"
	"cocfiles/internal/telemetry"
	"cocfiles/internal/ui"
)

// historyKeep caps the dispatch history kept in the index.
const historyKeep = 500

// session holds everything one invocation works with.
type session struct {
	extraDirs []string
	noIndex   bool
	verbose   bool

	cfg     config.AppConfig
	editor  *storage.Editor
	imports *catalog.Imports
	picker  *flagPicker

	ready   bool
	index   *storage.Index
	tel     *telemetry.Client
	source  *catalog.Source
	builder menu.Builder
	router  *dispatch.Router
}

func newSession() *session {
	return &session{
		cfg:     config.Defaults(),
		editor:  storage.NewEditor(),
		imports: &catalog.Imports{},
		picker:  &flagPicker{},
	}
}

// services wires the index, telemetry, catalog source and router.
func (s *session) services() error {
	if s.ready {
		return nil
	}
	l := applog.WithComponent("cli")

	locs, err := locations(s.extraDirs)
	if err != nil {
		return err
	}
	scanner := &catalog.Scanner{Probe: catalog.FileProbe{}}
	recorders := dispatch.Recorders{}

	if s.cfg.Index.Enabled && !s.noIndex {
		path := s.cfg.Index.Path
		if path == "" {
			if path, err = config.DefaultIndexPath(); err != nil {
				return err
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		idx, rebuilt, err := storage.OpenOrRebuildIndex(ctx, path)
		cancel()
		if err != nil {
			// the index is a cache; run without it
			l.Warn("index unavailable", slog.String("path", path), slog.Any("err", err))
		} else {
			if rebuilt {
				l.Info("index rebuilt", slog.String("path", path))
			}
			if err := idx.PruneHistory(context.Background(), historyKeep); err != nil {
				l.Warn("prune history failed", slog.Any("err", err))
			}
			s.index = idx
			scanner.Cache = idx
			recorders = append(recorders, idx)
		}
	}

	tcfg := telemetry.FromEnv()
	tcfg.OptIn = s.cfg.General.TelemetryOptIn
	s.tel = telemetry.New(tcfg)
	telemetry.SetDefault(s.tel)
	recorders = append(recorders, telemetry.Recorder{Client: s.tel})

	s.source = &catalog.Source{Locations: locs, Scanner: scanner, Imports: s.imports}
	s.router = &dispatch.Router{
		Editor:    s.editor,
		Picker:    s.picker,
		Registrar: s.imports,
		Recorder:  recorders,
	}
	s.ready = true
	return nil
}

func (s *session) menus() (open, save []menu.Root, err error) {
	if err := s.services(); err != nil {
		return nil, nil, err
	}
	dirs := s.source.Directories()
	return s.builder.Open(dirs), s.builder.Save(dirs), nil
}

func (s *session) uiServices() ui.Services {
	return ui.Services{Source: s.source, Builder: s.builder, Router: s.router, Editor: s.editor}
}

func (s *session) close() {
	if s.tel != nil {
		s.tel.Flush(context.Background())
		s.tel.Close()
	}
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			applog.WithComponent("cli").Warn("close index", slog.Any("err", err))
		}
	}
}

// locations returns the standard locations with extra ones inserted before
// the external location.
func locations(extra []string) ([]catalog.Location, error) {
	var std []catalog.Location
	if layout, err := catalog.DefaultLayout(); err == nil {
		std = catalog.StandardLocations(layout)
	} else {
		applog.WithComponent("cli").Warn("standard locations unavailable", slog.Any("err", err))
		std = []catalog.Location{{Name: catalog.ExternalName, External: true, SeparatorBefore: true}}
	}
	var added []catalog.Location
	for _, e := range extra {
		loc, err := catalog.ParseLocation(e)
		if err != nil {
			return nil, err
		}
		added = append(added, loc)
	}
	out := make([]catalog.Location, 0, len(std)+len(added))
	for _, loc := range std {
		if loc.External {
			out = append(out, added...)
			added = nil
		}
		out = append(out, loc)
	}
	return append(out, added...), nil
}

// flagPicker answers the Import and Export pickers from command-line values.
type flagPicker struct {
	open   string
	save   string
	filter int
}

func (p *flagPicker) PickOpen() (string, bool) { return p.open, p.open != "" }

func (p *flagPicker) PickSave() (string, int, bool) { return p.save, p.filter, p.save != "" }
