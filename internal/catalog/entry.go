/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package catalog describes the save files found on disk: one Entry per file,
// grouped into Directory catalogs. Catalogs are rebuilt from scratch on every
// scan and never mutated afterwards.
package catalog

import (
	"path/filepath"
	"strings"
	"time"
)

// Format is the serialization format a file must be written back with.
// The numeric values match the 1-based filter index of the export picker.
type Format int

const (
	FormatUnknown  Format = 0
	FormatSlot     Format = 1 // in-game slot file, Coc_N.sol
	FormatExported Format = 2 // standalone export
)

func (f Format) String() string {
	switch f {
	case FormatSlot:
		return "slot"
	case FormatExported:
		return "exported"
	default:
		return "unknown"
	}
}

// ParseFormat accepts the names produced by Format.String.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slot":
		return FormatSlot, true
	case "exported", "export":
		return FormatExported, true
	}
	return FormatUnknown, false
}

// FormatFromFilterIndex maps the filter chosen in a save picker to a Format.
// Unknown indices fall back to FormatSlot, the first filter.
func FormatFromFilterIndex(i int) Format {
	if f := Format(i); f == FormatSlot || f == FormatExported {
		return f
	}
	return FormatSlot
}

// Picker filters in "label|pattern|label|pattern" form.
const (
	OpenFilter = "Flash objects (.sol)|*.sol|All files|*.*"
	SaveFilter = "CoC slot (.sol)|*.sol|CoC exported file|*.*"
	Extension  = ".sol"
)

// Entry is one discovered save file.
type Entry struct {
	Path        string
	DisplayName string
	Captured    time.Time // from the file's content, not its mtime
	Format      Format
	Error       string // non-empty when the file could not be parsed
	Short       string
	Days        string
}

// Failed reports whether the entry carries a parse error.
func (e Entry) Failed() bool { return e.Error != "" }

// BaseName is the file name without directory and extension.
func (e Entry) BaseName() string { return BaseName(e.Path) }

// BaseName strips directory and extension from path.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Directory is a named, ordered catalog of entries.
// An empty Path means the directory was not found or has no backing folder.
type Directory struct {
	Name            string
	Path            string
	External        bool
	SeparatorBefore bool
	Files           []Entry
}

// Find returns the entry whose cleaned path equals path.
func (d Directory) Find(path string) (Entry, bool) {
	path = filepath.Clean(path)
	for _, e := range d.Files {
		if filepath.Clean(e.Path) == path {
			return e, true
		}
	}
	return Entry{}, false
}

// dedupe keeps the first entry for every path. Paths differing only in case
// are distinct files on case-sensitive file systems and are both kept.
func dedupe(files []Entry) []Entry {
	seen := make(map[string]struct{}, len(files))
	out := files[:0:0]
	for _, f := range files {
		k := filepath.Clean(f.Path)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
