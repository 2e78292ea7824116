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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Metadata is what a Probe extracts from a save file.
type Metadata struct {
	Name     string
	Captured time.Time
	Format   Format
	Short    string
	Days     string
}

// Probe reads the descriptive fields of a save file. The save codec lives
// outside this module; callers plug theirs in here.
type Probe interface {
	Probe(path string) (Metadata, error)
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(path string) (Metadata, error)

func (f ProbeFunc) Probe(path string) (Metadata, error) { return f(path) }

// ErrEmptyFile is reported for zero-length save files.
var ErrEmptyFile = errors.New("empty save file")

// FileProbe is the codec-free default: the name comes from the file name, the
// capture date from the modification time, the format from the extension.
type FileProbe struct{}

func (FileProbe) Probe(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return Metadata{}, err
	}
	if fi.IsDir() {
		return Metadata{}, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() == 0 {
		return Metadata{}, ErrEmptyFile
	}
	// one byte proves the file is readable
	if _, err := f.Read(make([]byte, 1)); err != nil && !errors.Is(err, io.EOF) {
		return Metadata{}, err
	}
	return Metadata{
		Name:     BaseName(path),
		Captured: fi.ModTime(),
		Format:   FormatForPath(path),
	}, nil
}

// FormatForPath guesses the format from the extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), Extension) {
		return FormatSlot
	}
	return FormatExported
}

// newEntry turns a probe result into an Entry. Failed probes degrade to the
// raw file name; external files always show their file name.
func newEntry(path string, md Metadata, probeErr error, external bool) Entry {
	e := Entry{Path: path, Format: md.Format}
	if e.Format == FormatUnknown {
		e.Format = FormatForPath(path)
	}
	if probeErr != nil {
		e.Error = probeErr.Error()
		e.DisplayName = BaseName(path)
		return e
	}
	e.Captured = md.Captured
	e.Short = md.Short
	e.Days = md.Days
	e.DisplayName = md.Name
	if external || e.DisplayName == "" {
		e.DisplayName = BaseName(path)
	}
	return e
}
