/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

import (
	"time"

	"cocfiles/internal/catalog"
	"cocfiles/internal/slots"
)

// Builder assembles menus. Now defaults to time.Now and is only read for the
// elapsed-time part of leaf details.
type Builder struct {
	Now func() time.Time
}

func (b Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// Open builds the load tree: every file of every catalog, then Import.
// Catalogs without files are hidden.
func (b Builder) Open(dirs []catalog.Directory) []Root {
	now := b.now()
	roots := make([]Root, 0, len(dirs)+1)
	for i := range dirs {
		d := dirs[i]
		r := Root{
			Kind:            RootDirectory,
			Mode:            ModeOpen,
			Label:           d.Name,
			Directory:       &d,
			Visible:         len(d.Files) != 0,
			SeparatorBefore: d.SeparatorBefore,
		}
		for _, e := range d.Files {
			r.Leaves = append(r.Leaves, fileLeaf(e, ModeOpen, now))
		}
		roots = append(roots, r)
	}
	return append(roots, Root{Kind: RootImport, Mode: ModeOpen, Label: ImportLabel, Visible: true})
}

// Save builds the save tree: ten slots per managed catalog, the imported files
// of external catalogs, then Export. Files of a managed catalog that are not
// slot files do not appear here.
func (b Builder) Save(dirs []catalog.Directory) []Root {
	now := b.now()
	roots := make([]Root, 0, len(dirs)+1)
	for i := range dirs {
		d := dirs[i]
		r := Root{
			Kind:            RootDirectory,
			Mode:            ModeSave,
			Label:           d.Name,
			Directory:       &d,
			Visible:         len(d.Files) != 0 || d.Path != "",
			Dimmed:          len(d.Files) == 0,
			SeparatorBefore: d.SeparatorBefore,
		}
		switch {
		case d.External:
			for _, e := range d.Files {
				r.Leaves = append(r.Leaves, fileLeaf(e, ModeSave, now))
			}
		case d.Path == "":
			// directory not found: nothing to save into
		default:
			for _, v := range slots.Resolve(d) {
				r.Leaves = append(r.Leaves, slotLeaf(v, now))
			}
		}
		roots = append(roots, r)
	}
	return append(roots, Root{Kind: RootExport, Mode: ModeSave, Label: ExportLabel, Visible: true})
}

func slotLeaf(v slots.View, now time.Time) Leaf {
	if v.Empty() {
		return Leaf{
			Kind:   LeafEmptySlot,
			Mode:   ModeSave,
			Label:  v.Label,
			Path:   v.Path,
			Format: catalog.FormatSlot,
			Slot:   v.Slot,
			Dimmed: true,
		}
	}
	l := fileLeaf(*v.Entry, ModeSave, now)
	l.Slot = v.Slot
	return l
}

func fileLeaf(e catalog.Entry, mode Mode, now time.Time) Leaf {
	l := Leaf{
		Kind:   LeafFile,
		Mode:   mode,
		Label:  e.DisplayName,
		Path:   e.Path,
		Format: e.Format,
		Failed: e.Failed(),
	}
	if l.Label == "" {
		l.Label = e.BaseName()
	}
	if !l.Failed {
		l.Detail = Detail(e, now)
	}
	return l
}

// Detail is the secondary line of a file leaf: "short - N days - elapsed".
func Detail(e catalog.Entry, now time.Time) string {
	return e.Short + " - " + e.Days + " days - " + Elapsed(now.Sub(e.Captured))
}
