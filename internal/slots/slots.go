/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package slots maps the files of a managed save directory onto the game's
// ten fixed slots, Coc_1.sol through Coc_10.sol.
package slots

import (
	"path/filepath"
	"strconv"
	"strings"

	"cocfiles/internal/catalog"
)

// Count is the number of save slots the game offers.
const Count = 10

// Label returns the slot's name without extension, e.g. "Coc_3".
func Label(n int) string { return "Coc_" + strconv.Itoa(n) }

// FileName returns the slot's canonical file name, e.g. "Coc_3.sol".
func FileName(n int) string { return Label(n) + catalog.Extension }

// View is one slot of a directory: either the entry occupying it or, when
// Entry is nil, an empty placeholder pointing at where the slot file would go.
type View struct {
	Slot  int
	Entry *catalog.Entry
	Path  string
	Label string
}

// Empty reports whether no file occupies the slot.
func (v View) Empty() bool { return v.Entry == nil }

// Resolve returns the ten slot views of dir in slot order. It returns nil for
// external directories and for directories without a path, which have no slots.
// When several files match the same slot, the first in catalog order wins.
func Resolve(dir catalog.Directory) []View {
	if dir.External || dir.Path == "" {
		return nil
	}
	views := make([]View, 0, Count)
	for n := 1; n <= Count; n++ {
		v := View{Slot: n}
		if i := match(dir.Files, FileName(n)); i >= 0 {
			e := dir.Files[i]
			v.Entry = &e
			v.Path = e.Path
			v.Label = e.DisplayName
		} else {
			v.Path = filepath.Join(dir.Path, FileName(n))
			v.Label = Label(n)
		}
		views = append(views, v)
	}
	return views
}

// match returns the index of the first file whose path ends with name, ignoring case.
func match(files []catalog.Entry, name string) int {
	name = strings.ToLower(name)
	for i, f := range files {
		if strings.HasSuffix(strings.ToLower(f.Path), name) {
			return i
		}
	}
	return -1
}

// Of returns the slot a path occupies, using the same suffix rule as Resolve.
func Of(path string) (int, bool) {
	p := strings.ToLower(path)
	for n := 1; n <= Count; n++ {
		if strings.HasSuffix(p, strings.ToLower(FileName(n))) {
			return n, true
		}
	}
	return 0, false
}
