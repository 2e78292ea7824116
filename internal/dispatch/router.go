/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dispatch turns a selected menu command into a load or save call on
// the editor. It is the only place activation behavior lives; menu items are
// plain data.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"

	"cocfiles/internal/catalog"
	applog "cocfiles/internal/log"
	"cocfiles/internal/menu"
)

// Editor is the save editor core. Errors are passed back to the caller untouched.
type Editor interface {
	Load(path string) error
	Save(path string, format catalog.Format) error
}

// Picker asks the user for a path. ok is false when the picker was cancelled.
type Picker interface {
	PickOpen() (path string, ok bool)
	// PickSave returns the destination and the 1-based filter index chosen.
	PickSave() (path string, filterIndex int, ok bool)
}

// Registrar remembers files loaded from outside the managed directories.
type Registrar interface {
	Register(path string)
}

// Op is the kind of editor call a dispatch made.
type Op string

const (
	OpLoad Op = "load"
	OpSave Op = "save"
)

// Origin is the command a dispatch came from.
type Origin string

const (
	OriginFile      Origin = "file"
	OriginEmptySlot Origin = "empty-slot"
	OriginImport    Origin = "import"
	OriginExport    Origin = "export"
)

// Dispatch describes one editor call.
type Dispatch struct {
	Op     Op
	Origin Origin
	Path   string
	Format catalog.Format // FormatUnknown for loads
	Slot   int
}

// Recorder observes finished dispatches; err is the editor's result.
type Recorder interface {
	Record(d Dispatch, err error)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(d Dispatch, err error)

func (f RecorderFunc) Record(d Dispatch, err error) { f(d, err) }

// Recorders fans a dispatch out to several recorders.
type Recorders []Recorder

func (rs Recorders) Record(d Dispatch, err error) {
	for _, r := range rs {
		if r != nil {
			r.Record(d, err)
		}
	}
}

// ErrNoPicker is returned when Import or Export is activated without a Picker.
var ErrNoPicker = errors.New("no file picker configured")

// Router routes activations to the editor. Editor is required; the rest is optional.
// A Router performs one synchronous editor call per activation and never retries.
type Router struct {
	Editor    Editor
	Picker    Picker
	Registrar Registrar
	Recorder  Recorder
}

// Activate runs the action bound to a leaf.
func (r *Router) Activate(l menu.Leaf) error {
	switch {
	case l.Mode == menu.ModeOpen:
		return r.run(Dispatch{Op: OpLoad, Origin: OriginFile, Path: l.Path, Slot: l.Slot})
	case l.Kind == menu.LeafEmptySlot:
		return r.run(Dispatch{Op: OpSave, Origin: OriginEmptySlot, Path: l.Path, Format: catalog.FormatSlot, Slot: l.Slot})
	case l.Kind == menu.LeafFile:
		return r.run(Dispatch{Op: OpSave, Origin: OriginFile, Path: l.Path, Format: l.Format, Slot: l.Slot})
	default:
		return fmt.Errorf("unknown leaf kind %v", l.Kind)
	}
}

// ActivateRoot runs the picker-backed Import and Export commands. Directory
// roots only group leaves and do nothing. A cancelled picker is not an error.
func (r *Router) ActivateRoot(root menu.Root) error {
	switch root.Kind {
	case menu.RootImport:
		if r.Picker == nil {
			return ErrNoPicker
		}
		path, ok := r.Picker.PickOpen()
		if !ok || path == "" {
			return nil
		}
		return r.Import(path)
	case menu.RootExport:
		if r.Picker == nil {
			return ErrNoPicker
		}
		path, idx, ok := r.Picker.PickSave()
		if !ok || path == "" {
			return nil
		}
		return r.Export(path, catalog.FormatFromFilterIndex(idx))
	default:
		return nil
	}
}

// Import loads a file chosen outside the menus and, once it loaded, adds it to
// the session's external files.
func (r *Router) Import(path string) error {
	err := r.run(Dispatch{Op: OpLoad, Origin: OriginImport, Path: path})
	if err == nil && r.Registrar != nil {
		r.Registrar.Register(path)
	}
	return err
}

// Export saves to a destination chosen outside the menus.
func (r *Router) Export(path string, format catalog.Format) error {
	return r.run(Dispatch{Op: OpSave, Origin: OriginExport, Path: path, Format: format})
}

func (r *Router) run(d Dispatch) error {
	l := applog.WithOperation(applog.WithComponent("dispatch"), string(d.Op)).With(
		slog.String("origin", string(d.Origin)),
		slog.String("path", d.Path),
	)
	var err error
	if d.Op == OpLoad {
		err = r.Editor.Load(d.Path)
	} else {
		l = l.With(slog.String("format", d.Format.String()))
		err = r.Editor.Save(d.Path, d.Format)
	}
	if err != nil {
		l.Warn("dispatch failed", slog.Any("err", err))
	} else {
		l.Info("dispatched")
	}
	if r.Recorder != nil {
		r.Recorder.Record(d, err)
	}
	return err
}
