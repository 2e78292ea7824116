/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Location is a place save files are read from. An empty Path means the
// location could not be found on this machine.
type Location struct {
	Name            string
	Path            string
	External        bool
	SeparatorBefore bool
}

// ExternalName labels the catalog of files imported during the session.
const ExternalName = "External"

// Layout holds the per-user roots the Flash player directories hang off.
type Layout struct {
	GOOS         string
	Home         string
	AppData      string // Windows %AppData%
	LocalAppData string // Windows %LocalAppData%
}

// DefaultLayout describes the current user and OS.
func DefaultLayout() (Layout, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Layout{}, fmt.Errorf("resolve home dir: %w", err)
	}
	l := Layout{GOOS: runtime.GOOS, Home: home, AppData: os.Getenv("AppData"), LocalAppData: os.Getenv("LocalAppData")}
	if l.AppData == "" {
		l.AppData = filepath.Join(home, "AppData", "Roaming")
	}
	if l.LocalAppData == "" {
		l.LocalAppData = filepath.Join(home, "AppData", "Local")
	}
	return l, nil
}

// sharedObjectRoots returns the standalone player and Chrome (Pepper) #SharedObjects roots.
func (l Layout) sharedObjectRoots() (player, chrome string) {
	const pepper = "Pepper Data/Shockwave Flash/WritableRoot/#SharedObjects"
	switch l.GOOS {
	case "windows":
		return filepath.Join(l.AppData, "Macromedia", "Flash Player", "#SharedObjects"),
			filepath.Join(l.LocalAppData, "Google", "Chrome", "User Data", "Default", filepath.FromSlash(pepper))
	case "darwin":
		return filepath.Join(l.Home, "Library", "Preferences", "Macromedia", "Flash Player", "#SharedObjects"),
			filepath.Join(l.Home, "Library", "Application Support", "Google", "Chrome", "Default", filepath.FromSlash(pepper))
	default:
		return filepath.Join(l.Home, ".macromedia", "Flash_Player", "#SharedObjects"),
			filepath.Join(l.Home, ".config", "google-chrome", "Default", filepath.FromSlash(pepper))
	}
}

// Domains the game is served from; the player stores one folder per domain.
const (
	localDomain  = "localhost"
	onlineDomain = "www.fenoxo.com"
)

// StandardLocations lists the game's save folders in menu order, followed by
// the External location. Folders that do not exist get an empty Path.
func StandardLocations(l Layout) []Location {
	player, chrome := l.sharedObjectRoots()
	return []Location{
		{Name: "Local", Path: findDomainDir(player, localDomain)},
		{Name: "Online (fenoxo.com)", Path: findDomainDir(player, onlineDomain)},
		{Name: "Chrome: local", Path: findDomainDir(chrome, localDomain), SeparatorBefore: true},
		{Name: "Chrome: online", Path: findDomainDir(chrome, onlineDomain)},
		{Name: ExternalName, External: true, SeparatorBefore: true},
	}
}

// findDomainDir looks for <root>/<random id>/<domain>. The player names the
// middle folder randomly; the first one in lexical order wins.
func findDomainDir(root, domain string) string {
	ids, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	var names []string
	for _, id := range ids {
		if id.IsDir() {
			names = append(names, id.Name())
		}
	}
	sort.Strings(names)
	for _, n := range names {
		p := filepath.Join(root, n, domain)
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			return p
		}
	}
	return ""
}

// ParseLocation reads "Name=path". A path that is not an existing directory
// is kept empty so the location still shows up, unusable.
func ParseLocation(s string) (Location, error) {
	name, path, ok := strings.Cut(s, "=")
	name, path = strings.TrimSpace(name), strings.TrimSpace(path)
	if !ok || name == "" || path == "" {
		return Location{}, fmt.Errorf("location %q: want Name=path", s)
	}
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if fi, err := os.Stat(path); err != nil || !fi.IsDir() {
		path = ""
	}
	return Location{Name: name, Path: path}, nil
}
