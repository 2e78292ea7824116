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
	"cocfiles/internal/catalog"
	"cocfiles/internal/dispatch"
	"cocfiles/internal/menu"
	"cocfiles/internal/storage"
)

// Services are the collaborators the desktop shell drives.
type Services struct {
	Source  *catalog.Source
	Builder menu.Builder
	Router  *dispatch.Router
	Editor  *storage.Editor
}

// Menus runs one scan pass and assembles both trees from it.
func (s Services) Menus() (open, save []menu.Root) {
	var dirs []catalog.Directory
	if s.Source != nil {
		dirs = s.Source.Directories()
	}
	return s.Builder.Open(dirs), s.Builder.Save(dirs)
}

// Loaded describes the save the editor holds, or "" when nothing is loaded.
func (s Services) Loaded() string {
	if s.Editor == nil {
		return ""
	}
	doc, ok := s.Editor.Current()
	if !ok {
		return ""
	}
	return doc.Path + " (" + doc.Format.String() + ")"
}
