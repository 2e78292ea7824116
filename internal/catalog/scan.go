/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "cocfiles/internal/log"
)

// Cache remembers probe results keyed by path, size and modification time.
// probeErr is the recorded Entry.Error, empty for a clean probe. Only clean
// probes and content errors such as ErrEmptyFile are stored.
type Cache interface {
	Lookup(path string, size int64, mod time.Time) (md Metadata, probeErr string, ok bool)
	Store(path string, size int64, mod time.Time, md Metadata, probeErr string)
}

// Scanner builds Directory catalogs from the file system.
type Scanner struct {
	Probe Probe // FileProbe when nil
	Cache Cache // optional
}

func (s *Scanner) probe() Probe {
	if s.Probe == nil {
		return FileProbe{}
	}
	return s.Probe
}

// ScanDir lists the *.sol files directly inside loc.Path, sorted by name.
// A missing or unreadable directory yields a catalog with no files; probe
// failures are recorded on the entry and never abort the scan.
func (s *Scanner) ScanDir(loc Location) Directory {
	dir := Directory{Name: loc.Name, Path: loc.Path, External: loc.External, SeparatorBefore: loc.SeparatorBefore}
	if loc.Path == "" {
		return dir
	}
	l := applog.WithOperation(applog.WithComponent("catalog"), "scan").With(slog.String("dir", loc.Name))
	ents, err := os.ReadDir(loc.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.Warn("read dir failed", slog.String("path", loc.Path), slog.Any("err", err))
		}
		return dir
	}
	var paths []string
	for _, de := range ents {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(loc.Path, de.Name()))
	}
	sort.Strings(paths)
	dir.Files = s.ScanFiles(paths, loc.External)
	l.Debug("scanned", slog.Int("files", len(dir.Files)))
	return dir
}

// ScanFiles probes each path in order. Duplicate paths keep their first position.
func (s *Scanner) ScanFiles(paths []string, external bool) []Entry {
	out := make([]Entry, 0, len(paths))
	for _, p := range paths {
		out = append(out, s.scanFile(p, external))
	}
	return dedupe(out)
}

func (s *Scanner) scanFile(path string, external bool) Entry {
	fi, err := os.Stat(path)
	if err != nil {
		return newEntry(path, Metadata{}, err, external)
	}
	if s.Cache != nil {
		if md, perr, ok := s.Cache.Lookup(path, fi.Size(), fi.ModTime()); ok {
			var probeErr error
			if perr != "" {
				probeErr = errors.New(perr)
			}
			return newEntry(path, md, probeErr, external)
		}
	}
	md, probeErr := s.probe().Probe(path)
	if s.Cache != nil && cacheable(probeErr) {
		perr := ""
		if probeErr != nil {
			perr = probeErr.Error()
		}
		s.Cache.Store(path, fi.Size(), fi.ModTime(), md, perr)
	}
	return newEntry(path, md, probeErr, external)
}

// cacheable reports whether a probe result depends only on the file content.
// Access errors can clear without touching size or mtime, so they are probed again.
func cacheable(err error) bool {
	return err == nil || errors.Is(err, ErrEmptyFile)
}
