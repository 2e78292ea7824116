/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

// Source produces the ordered Directory catalogs the menus are built from.
// Managed locations are read from disk; external locations list the files
// registered in Imports.
type Source struct {
	Locations []Location
	Scanner   *Scanner
	Imports   *Imports
}

// Directories runs one full scan pass.
func (s *Source) Directories() []Directory {
	sc := s.Scanner
	if sc == nil {
		sc = &Scanner{}
	}
	out := make([]Directory, 0, len(s.Locations))
	for _, loc := range s.Locations {
		if !loc.External {
			out = append(out, sc.ScanDir(loc))
			continue
		}
		dir := Directory{Name: loc.Name, Path: loc.Path, External: true, SeparatorBefore: loc.SeparatorBefore}
		if s.Imports != nil {
			dir.Files = sc.ScanFiles(s.Imports.Paths(), true)
		}
		out = append(out, dir)
	}
	return out
}

// Lookup finds a directory by name, case-insensitively.
func Lookup(dirs []Directory, name string) (Directory, bool) {
	for _, d := range dirs {
		if equalFoldTrim(d.Name, name) {
			return d, true
		}
	}
	return Directory{}, false
}
