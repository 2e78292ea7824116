/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cocfiles/internal/catalog"
	applog "cocfiles/internal/log"
)

// BackupsDirName is created next to a save file that gets overwritten.
const BackupsDirName = "backups"

// ErrNoDocument is returned by Save when nothing has been loaded.
var ErrNoDocument = errors.New("no save loaded")

// Document is the save currently held by the editor. Data is opaque.
type Document struct {
	Path     string
	Format   catalog.Format
	Data     []byte
	LoadedAt time.Time
}

// Editor is a minimal editor core: it holds one save in memory and writes it
// back byte for byte. It is safe for concurrent use.
type Editor struct {
	mu  sync.Mutex
	doc *Document
}

// NewEditor returns an editor with nothing loaded.
func NewEditor() *Editor { return &Editor{} }

// Load reads path into memory, replacing the current document.
func (e *Editor) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load save: %w", err)
	}
	doc := &Document{Path: path, Format: catalog.FormatForPath(path), Data: data, LoadedAt: time.Now()}
	e.mu.Lock()
	e.doc = doc
	e.mu.Unlock()
	applog.WithComponent("storage").Debug("save loaded", slog.String("path", path), slog.Int("bytes", len(data)))
	return nil
}

// Save writes the current document to path. An existing file at path is first
// copied to <dir>/backups/<name>.<stamp>.bak (never replacing an older backup); the write itself goes through a
// temp file and a rename. On success the document is bound to path and format.
func (e *Editor) Save(path string, format catalog.Format) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return ErrNoDocument
	}
	if path == "" {
		return errors.New("save: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save: create dir: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := backupFile(path); err != nil {
			return fmt.Errorf("backup %s: %w", filepath.Base(path), err)
		}
	}
	if err := replaceFile(path, e.doc.Data); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	e.doc.Path = path
	e.doc.Format = format
	applog.WithComponent("storage").Info("save written",
		slog.String("path", path), slog.String("format", format.String()), slog.Int("bytes", len(e.doc.Data)))
	return nil
}

// Current returns a copy of the loaded document.
func (e *Editor) Current() (Document, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return Document{}, false
	}
	d := *e.doc
	d.Data = append([]byte(nil), e.doc.Data...)
	return d, true
}

// AutosaveCrashSnapshot writes the loaded document next to its source as
// <name>.crash-<stamp>, leaving the original untouched.
func (e *Editor) AutosaveCrashSnapshot() (string, error) {
	d, ok := e.Current()
	if !ok {
		return "", ErrNoDocument
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(filepath.Dir(d.Path), fmt.Sprintf("%s.crash-%s", filepath.Base(d.Path), stamp))
	if err := writeFileSync(path, d.Data); err != nil {
		return "", err
	}
	return path, nil
}

// now is swapped in tests.
var now = time.Now

// backupStamp sorts lexically and distinguishes saves within the same second.
const backupStamp = "20060102-150405.000"

// backupFile copies path into the sibling backups directory and returns the copy's path.
// An existing backup is never overwritten; a counter suffix is added on collision.
func backupFile(path string) (string, error) {
	stamp := now().Format(backupStamp)
	base := filepath.Join(filepath.Dir(path), BackupsDirName, fmt.Sprintf("%s.%s", filepath.Base(path), stamp))
	bpath := base + ".bak"
	for n := 1; ; n++ {
		err := copyFile(path, bpath)
		if err == nil {
			return bpath, nil
		}
		if !errors.Is(err, fs.ErrExist) || n >= 1000 {
			return "", err
		}
		bpath = fmt.Sprintf("%s-%d.bak", base, n)
	}
}

// replaceFile writes data to a temp file in the target directory and renames it over path.
func replaceFile(path string, data []byte) error {
	temp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return err
	}
	// Windows will not rename over an existing file
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return err
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
