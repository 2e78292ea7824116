//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// These tests exercise the Fyne shell against the fyne test driver. They are
// gated behind the "fyne" build tag so headless CI does not need Fyne.
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"cocfiles/internal/catalog"
	"cocfiles/internal/dispatch"
	applog "cocfiles/internal/log"
	"cocfiles/internal/storage"
)

func newTestShell(t *testing.T, dir string) *shell {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	ed := storage.NewEditor()
	imports := &catalog.Imports{}
	svc := Services{
		Source: &catalog.Source{
			Locations: []catalog.Location{
				{Name: "Local", Path: dir},
				{Name: catalog.ExternalName, External: true, SeparatorBefore: true},
			},
			Scanner: &catalog.Scanner{},
			Imports: imports,
		},
		Router: &dispatch.Router{Editor: ed, Registrar: imports},
		Editor: ed,
	}
	return &shell{
		svc:    svc,
		w:      a.NewWindow("test"),
		l:      applog.WithComponent("ui"),
		status: widget.NewLabel(""),
		loaded: widget.NewLabel(""),
	}
}

func TestShellMenusFollowDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Coc_1.sol"), []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestShell(t, dir)
	s.rebuild()

	mm := s.w.MainMenu()
	if mm == nil || len(mm.Items) != 2 {
		t.Fatalf("expected Open and Save menus, got %+v", mm)
	}
	save := mm.Items[1]
	local := save.Items[0]
	if local.Label != "Local" || local.ChildMenu == nil || len(local.ChildMenu.Items) != 10 {
		t.Fatalf("unexpected Local save item %+v", local)
	}

	// saving into empty slot 2 needs a loaded save: load slot 1 first
	open := mm.Items[0].Items[0].ChildMenu.Items[0]
	open.Action()
	if s.svc.Loaded() == "" {
		t.Fatalf("open leaf did not load")
	}
	s.w.MainMenu().Items[1].Items[0].ChildMenu.Items[1].Action()
	if _, err := os.Stat(filepath.Join(dir, "Coc_2.sol")); err != nil {
		t.Fatalf("slot 2 not written: %v", err)
	}
}

func TestShellMarksDimmedAndFailedItems(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Coc_1.sol"), []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Coc_3.sol"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestShell(t, dir)
	s.rebuild()

	slotItems := s.w.MainMenu().Items[1].Items[0].ChildMenu.Items
	if slotItems[0].Icon != nil {
		t.Fatalf("healthy slot 1 has icon %v", slotItems[0].Icon)
	}
	if _, ok := slotItems[1].Icon.(*theme.DisabledResource); !ok {
		t.Fatalf("empty slot 2 not greyed out: %v", slotItems[1].Icon)
	}
	if slotItems[2].Icon == nil || slotItems[2].Icon.Name() != theme.ErrorIcon().Name() {
		t.Fatalf("failed slot 3 icon = %v", slotItems[2].Icon)
	}

	empty := newTestShell(t, t.TempDir())
	empty.rebuild()
	local := empty.w.MainMenu().Items[1].Items[0]
	if _, ok := local.Icon.(*theme.DisabledResource); !ok || local.Label != "Local" {
		t.Fatalf("empty save directory not greyed out: %+v", local)
	}
}
