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

package ui

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"cocfiles/internal/catalog"
	"cocfiles/internal/crash"
	applog "cocfiles/internal/log"
	"cocfiles/internal/menu"
	"cocfiles/internal/version"
)

var saveFormats = []string{"CoC slot (.sol)", "CoC exported file"}

// shell owns the window and rebuilds its menus after every action.
type shell struct {
	svc    Services
	w      fyne.Window
	l      *slog.Logger
	status *widget.Label
	loaded *widget.Label
}

// Run starts the Fyne desktop shell: an Open and a Save menu assembled from
// the scanned save directories.
func Run(svc Services) error {
	if svc.Router == nil || svc.Router.Editor == nil {
		return errors.New("ui: router with editor is required")
	}
	l := applog.WithComponent("ui")
	l.Info("starting UI")
	defer crash.Recover(svc.Editor)

	a := app.NewWithID("cocfiles")
	w := a.NewWindow("CoC save files " + version.String())
	prefs := a.Preferences()
	w.Resize(fyne.NewSize(float32(prefs.IntWithFallback("window.width", 640)), float32(prefs.IntWithFallback("window.height", 240))))

	s := &shell{
		svc:    svc,
		w:      w,
		l:      l,
		status: widget.NewLabel("Ready"),
		loaded: widget.NewLabel("Nothing loaded"),
	}
	refresh := widget.NewButtonWithIcon("Rescan", theme.ViewRefreshIcon(), s.rebuild)
	w.SetContent(container.NewVBox(s.loaded, s.status, refresh))
	s.rebuild()

	w.SetOnClosed(func() {
		size := w.Canvas().Size()
		prefs.SetInt("window.width", int(size.Width))
		prefs.SetInt("window.height", int(size.Height))
	})
	w.ShowAndRun()
	return nil
}

func (s *shell) rebuild() {
	open, save := s.svc.Menus()
	s.w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("Open", s.menuItems(open)...),
		fyne.NewMenu("Save", s.menuItems(save)...),
	))
	if cur := s.svc.Loaded(); cur != "" {
		s.loaded.SetText("Loaded: " + cur)
	}
}

func (s *shell) menuItems(roots []menu.Root) []*fyne.MenuItem {
	var out []*fyne.MenuItem
	for _, it := range Items(roots) {
		out = append(out, s.menuItem(it))
	}
	return out
}

func (s *shell) menuItem(it Item) *fyne.MenuItem {
	if it.Separator {
		return fyne.NewMenuItemSeparator()
	}
	if it.Leaf != nil {
		leaf := *it.Leaf
		mi := fyne.NewMenuItem(it.Label, func() { s.activate(leaf) })
		mi.Icon = itemIcon(it)
		return mi
	}
	root := *it.Root
	switch root.Kind {
	case menu.RootImport:
		return fyne.NewMenuItem(it.Label+"…", s.importFile)
	case menu.RootExport:
		return fyne.NewMenuItem(it.Label+"…", s.exportFile)
	}
	mi := fyne.NewMenuItem(it.Label, nil)
	mi.Icon = itemIcon(it)
	children := make([]*fyne.MenuItem, 0, len(it.Children))
	for _, c := range it.Children {
		children = append(children, s.menuItem(c))
	}
	if len(children) == 0 {
		mi.Disabled = true
	} else {
		mi.ChildMenu = fyne.NewMenu("", children...)
	}
	return mi
}

// itemIcon marks failed leaves with the error icon and greys out dimmed items.
func itemIcon(it Item) fyne.Resource {
	switch {
	case it.Failed:
		return theme.ErrorIcon()
	case it.Dimmed && it.Leaf != nil:
		return theme.NewDisabledResource(theme.FileIcon())
	case it.Dimmed:
		return theme.NewDisabledResource(theme.FolderIcon())
	}
	return nil
}

func (s *shell) activate(leaf menu.Leaf) {
	verb := "Loaded"
	if leaf.Mode == menu.ModeSave {
		verb = "Saved"
	}
	s.done(verb, leaf.Path, s.svc.Router.Activate(leaf))
}

func (s *shell) importFile() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.w)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		s.done("Imported", path, s.svc.Router.Import(path))
	}, s.w)
	fd.Show()
}

// exportFile asks for a folder, then a file name and format. The file is not
// created before the editor writes it, so an existing target is backed up.
func (s *shell) exportFile() {
	fd := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, s.w)
			return
		}
		if dir == nil {
			return
		}
		name := widget.NewEntry()
		name.SetText("export")
		format := widget.NewSelect(saveFormats, nil)
		format.SetSelectedIndex(1)
		items := []*widget.FormItem{
			widget.NewFormItem("File name", name),
			widget.NewFormItem("Format", format),
		}
		dialog.ShowForm("Export", "Export", "Cancel", items, func(ok bool) {
			n := strings.TrimSpace(name.Text)
			if !ok || n == "" {
				return
			}
			f := catalog.FormatFromFilterIndex(format.SelectedIndex() + 1)
			if f == catalog.FormatSlot && !strings.EqualFold(filepath.Ext(n), catalog.Extension) {
				n += catalog.Extension
			}
			path := filepath.Join(dir.Path(), n)
			s.done("Exported", path, s.svc.Router.Export(path, f))
		}, s.w)
	}, s.w)
	fd.Show()
}

func (s *shell) done(verb, path string, err error) {
	s.status.SetText(Status(verb, path, err))
	if err != nil {
		s.l.Warn("action failed", slog.String("action", verb), slog.Any("err", err))
		dialog.ShowError(err, s.w)
	}
	s.rebuild()
}
