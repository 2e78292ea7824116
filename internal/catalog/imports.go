/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"path/filepath"
	"strings"
	"sync"
)

// Imports is the session's list of externally imported files, in import order.
// It is safe for concurrent use.
type Imports struct {
	mu    sync.Mutex
	paths []string
}

// Register adds path unless it is already known. Relative paths are made absolute.
func (im *Imports) Register(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	for _, p := range im.paths {
		if p == path {
			return
		}
	}
	im.paths = append(im.paths, path)
}

// Paths returns a copy of the registered paths.
func (im *Imports) Paths() []string {
	im.mu.Lock()
	defer im.mu.Unlock()
	return append([]string(nil), im.paths...)
}

// Len reports how many files were imported.
func (im *Imports) Len() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return len(im.paths)
}
