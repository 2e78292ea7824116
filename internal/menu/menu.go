/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package menu assembles the open and save command trees from scanned
// directory catalogs. Assembly is a pure function of its inputs: no I/O, no
// shared state, safe to re-run at will.
package menu

import (
	"cocfiles/internal/catalog"
)

// Mode tells whether a tree loads files or saves to them.
type Mode int

const (
	ModeOpen Mode = iota
	ModeSave
)

func (m Mode) String() string {
	if m == ModeSave {
		return "save"
	}
	return "open"
}

// RootKind is the closed set of top-level commands.
type RootKind int

const (
	RootDirectory RootKind = iota // one per catalog
	RootImport                    // open tree: load an arbitrary file
	RootExport                    // save tree: save to an arbitrary file
)

func (k RootKind) String() string {
	switch k {
	case RootImport:
		return "import"
	case RootExport:
		return "export"
	default:
		return "directory"
	}
}

// Root labels for the picker-backed commands.
const (
	ImportLabel = "Import"
	ExportLabel = "Export"
)

// Root is a top-level command. Directory is set only for RootDirectory.
type Root struct {
	Kind            RootKind
	Mode            Mode
	Label           string
	Directory       *catalog.Directory
	Leaves          []Leaf
	Visible         bool
	Dimmed          bool
	SeparatorBefore bool
}

// LeafKind is the closed set of clickable items.
type LeafKind int

const (
	LeafFile      LeafKind = iota // bound to an existing file
	LeafEmptySlot                 // bound to an unoccupied slot's future path
)

func (k LeafKind) String() string {
	if k == LeafEmptySlot {
		return "empty-slot"
	}
	return "file"
}

// Leaf is one concrete load or save action plus how to present it.
type Leaf struct {
	Kind   LeafKind
	Mode   Mode
	Label  string
	Detail string // secondary line, empty for empty slots and unparsable files
	Path   string
	Format catalog.Format
	Slot   int  // 1..10 in slot views, 0 otherwise
	Failed bool // the entry carries a parse error
	Dimmed bool
}

// Find returns the first root of the given kind.
func Find(roots []Root, kind RootKind) (Root, bool) {
	for _, r := range roots {
		if r.Kind == kind {
			return r, true
		}
	}
	return Root{}, false
}

// FindDirectory returns the directory root with the given label.
func FindDirectory(roots []Root, label string) (Root, bool) {
	for _, r := range roots {
		if r.Kind == RootDirectory && r.Label == label {
			return r, true
		}
	}
	return Root{}, false
}

// SlotLeaf returns the leaf bound to slot n, if the root has slot views.
func (r Root) SlotLeaf(n int) (Leaf, bool) {
	for _, l := range r.Leaves {
		if l.Slot == n && n > 0 {
			return l, true
		}
	}
	return Leaf{}, false
}
