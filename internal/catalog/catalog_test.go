/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func names(files []Entry) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Base(f.Path)
	}
	return out
}

func TestScanDirListsSolFilesSorted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Coc_2.sol"), "two")
	writeFile(t, filepath.Join(root, "Coc_1.SOL"), "one")
	writeFile(t, filepath.Join(root, "notes.txt"), "skip me")
	writeFile(t, filepath.Join(root, "nested", "Coc_3.sol"), "nested is ignored")

	sc := &Scanner{}
	dir := sc.ScanDir(Location{Name: "Local", Path: root, SeparatorBefore: true})

	if dir.Name != "Local" || dir.Path != root || dir.External || !dir.SeparatorBefore {
		t.Fatalf("directory metadata not carried: %+v", dir)
	}
	if diff := cmp.Diff([]string{"Coc_1.SOL", "Coc_2.sol"}, names(dir.Files)); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
	e := dir.Files[1]
	if e.DisplayName != "Coc_2" || e.Format != FormatSlot || e.Failed() || e.Captured.IsZero() {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestScanDirRecordsProbeErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Coc_4.sol"), "")
	writeFile(t, filepath.Join(root, "Coc_5.sol"), "data")

	dir := (&Scanner{}).ScanDir(Location{Name: "Local", Path: root})
	if len(dir.Files) != 2 {
		t.Fatalf("broken files must stay listed, got %d entries", len(dir.Files))
	}
	bad := dir.Files[0]
	if !bad.Failed() || bad.Error != ErrEmptyFile.Error() {
		t.Fatalf("expected empty-file error, got %+v", bad)
	}
	if bad.DisplayName != "Coc_4" || !bad.Captured.IsZero() {
		t.Fatalf("failed entry must degrade to file name only: %+v", bad)
	}
	if dir.Files[1].Failed() {
		t.Fatalf("healthy entry flagged: %+v", dir.Files[1])
	}
}

func TestScanDirMissingPath(t *testing.T) {
	dir := (&Scanner{}).ScanDir(Location{Name: "Gone", Path: filepath.Join(t.TempDir(), "nope")})
	if len(dir.Files) != 0 {
		t.Fatalf("missing dir produced files: %+v", dir.Files)
	}
	empty := (&Scanner{}).ScanDir(Location{Name: "Unset"})
	if empty.Path != "" || len(empty.Files) != 0 {
		t.Fatalf("unset location: %+v", empty)
	}
}

func TestProbeMetadataUsedForManagedEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Coc_1.sol"), "x")
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	probe := ProbeFunc(func(string) (Metadata, error) {
		return Metadata{Name: "Champion", Captured: when, Format: FormatSlot, Short: "Lvl 7", Days: "42"}, nil
	})
	sc := &Scanner{Probe: probe}

	managed := sc.ScanDir(Location{Name: "Local", Path: root}).Files[0]
	want := Entry{Path: filepath.Join(root, "Coc_1.sol"), DisplayName: "Champion", Captured: when, Format: FormatSlot, Short: "Lvl 7", Days: "42"}
	if diff := cmp.Diff(want, managed); diff != "" {
		t.Fatalf("managed entry mismatch (-want +got):\n%s", diff)
	}

	external := sc.ScanFiles([]string{filepath.Join(root, "Coc_1.sol")}, true)[0]
	if external.DisplayName != "Coc_1" {
		t.Fatalf("external entries are named after the file, got %q", external.DisplayName)
	}
}

func TestScanFilesDedupesAndKeepsOrder(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "b.sol")
	b := filepath.Join(root, "a.sol")
	writeFile(t, a, "1")
	writeFile(t, b, "2")
	got := (&Scanner{}).ScanFiles([]string{a, b, a}, true)
	if diff := cmp.Diff([]string{"b.sol", "a.sol"}, names(got)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	missing := (&Scanner{}).ScanFiles([]string{filepath.Join(root, "gone.sol")}, true)
	if len(missing) != 1 || !missing[0].Failed() {
		t.Fatalf("missing import must surface as a failed entry: %+v", missing)
	}
}

func TestScanDirKeepsCaseVariants(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Coc_5.sol"), "lower")
	writeFile(t, filepath.Join(root, "COC_5.sol"), "upper")
	ents, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(ents) != 2 {
		t.Skip("file system is case-insensitive")
	}

	dir := (&Scanner{}).ScanDir(Location{Name: "Local", Path: root})
	if diff := cmp.Diff([]string{"COC_5.sol", "Coc_5.sol"}, names(dir.Files)); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
	if e, ok := dir.Find(filepath.Join(root, "Coc_5.sol")); !ok || filepath.Base(e.Path) != "Coc_5.sol" {
		t.Fatalf("Find matched %+v, %v", e, ok)
	}
}

type memCache struct {
	hits, stores int
	data         map[string]Metadata
	errs         map[string]string
}

func (m *memCache) Lookup(path string, _ int64, _ time.Time) (Metadata, string, bool) {
	md, ok := m.data[path]
	if ok {
		m.hits++
	}
	return md, m.errs[path], ok
}

func (m *memCache) Store(path string, _ int64, _ time.Time, md Metadata, perr string) {
	m.stores++
	m.data[path] = md
	m.errs[path] = perr
}

func TestScannerUsesCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Coc_1.sol"), "x")
	writeFile(t, filepath.Join(root, "Coc_2.sol"), "")
	calls := 0
	probe := ProbeFunc(func(p string) (Metadata, error) {
		calls++
		return FileProbe{}.Probe(p)
	})
	cache := &memCache{data: map[string]Metadata{}, errs: map[string]string{}}
	sc := &Scanner{Probe: probe, Cache: cache}
	loc := Location{Name: "Local", Path: root}

	first := sc.ScanDir(loc)
	second := sc.ScanDir(loc)
	if calls != 2 || cache.stores != 2 || cache.hits != 2 {
		t.Fatalf("calls=%d stores=%d hits=%d, want 2/2/2", calls, cache.stores, cache.hits)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("cached scan differs (-first +second):\n%s", diff)
	}
	if !second.Files[1].Failed() {
		t.Fatalf("cached probe error lost: %+v", second.Files[1])
	}
}

func TestScannerRetriesAfterAccessError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Coc_1.sol"), "x")
	calls := 0
	probe := ProbeFunc(func(p string) (Metadata, error) {
		calls++
		if calls == 1 {
			return Metadata{}, &os.PathError{Op: "open", Path: p, Err: os.ErrPermission}
		}
		return FileProbe{}.Probe(p)
	})
	cache := &memCache{data: map[string]Metadata{}, errs: map[string]string{}}
	sc := &Scanner{Probe: probe, Cache: cache}
	loc := Location{Name: "Local", Path: root}

	first := sc.ScanDir(loc)
	if !first.Files[0].Failed() {
		t.Fatalf("first scan should report the access error: %+v", first.Files[0])
	}
	if cache.stores != 0 {
		t.Fatalf("access error was cached")
	}
	second := sc.ScanDir(loc)
	if calls != 2 || second.Files[0].Failed() {
		t.Fatalf("calls=%d entry=%+v, want a fresh clean probe", calls, second.Files[0])
	}
	third := sc.ScanDir(loc)
	if calls != 2 || cache.hits != 1 || third.Files[0].Failed() {
		t.Fatalf("clean probe not served from cache: calls=%d hits=%d", calls, cache.hits)
	}
}

func TestImportsRegister(t *testing.T) {
	var im Imports
	im.Register("")
	im.Register("/saves/a.sol")
	im.Register("/saves/b.sol")
	im.Register("/saves/./a.sol")
	im.Register("/saves/A.sol")
	if diff := cmp.Diff([]string{"/saves/a.sol", "/saves/b.sol", "/saves/A.sol"}, im.Paths()); diff != "" && filepath.Separator == '/' {
		t.Fatalf("imports mismatch (-want +got):\n%s", diff)
	}
	if im.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", im.Len())
	}
}

func TestSourceDirectories(t *testing.T) {
	root := t.TempDir()
	managed := filepath.Join(root, "localhost")
	writeFile(t, filepath.Join(managed, "Coc_1.sol"), "x")
	imported := filepath.Join(root, "downloads", "mysave.sol")
	writeFile(t, imported, "y")

	im := &Imports{}
	src := &Source{
		Locations: []Location{
			{Name: "Local", Path: managed},
			{Name: "Online"},
			{Name: ExternalName, External: true, SeparatorBefore: true},
		},
		Imports: im,
	}
	dirs := src.Directories()
	if len(dirs) != 3 {
		t.Fatalf("got %d directories", len(dirs))
	}
	if len(dirs[0].Files) != 1 || len(dirs[1].Files) != 0 || len(dirs[2].Files) != 0 {
		t.Fatalf("unexpected first pass: %+v", dirs)
	}

	im.Register(imported)
	dirs = src.Directories()
	ext, ok := Lookup(dirs, "external")
	if !ok || !ext.External || !ext.SeparatorBefore || ext.Path != "" {
		t.Fatalf("external directory wrong: %+v", ext)
	}
	if len(ext.Files) != 1 || ext.Files[0].DisplayName != "mysave" {
		t.Fatalf("imported file not listed: %+v", ext.Files)
	}
	if _, ok := ext.Find(imported); !ok {
		t.Fatalf("Find(%s) failed", imported)
	}
}

func TestStandardLocationsLinux(t *testing.T) {
	home := t.TempDir()
	player := filepath.Join(home, ".macromedia", "Flash_Player", "#SharedObjects")
	if err := os.MkdirAll(filepath.Join(player, "ZZZ", "localhost"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(player, "AAA", "localhost"), 0o755); err != nil {
		t.Fatal(err)
	}
	locs := StandardLocations(Layout{GOOS: "linux", Home: home})
	if len(locs) != 5 {
		t.Fatalf("got %d locations", len(locs))
	}
	if want := filepath.Join(player, "AAA", "localhost"); locs[0].Path != want {
		t.Fatalf("Local path = %q, want %q", locs[0].Path, want)
	}
	for _, l := range locs[1:4] {
		if l.Path != "" {
			t.Fatalf("%s should be unresolved, got %q", l.Name, l.Path)
		}
	}
	if !locs[2].SeparatorBefore || !locs[4].External || !locs[4].SeparatorBefore || locs[4].Name != ExternalName {
		t.Fatalf("separators/external flags wrong: %+v", locs)
	}
}

func TestParseLocation(t *testing.T) {
	dir := t.TempDir()
	loc, err := ParseLocation("Backup = " + dir)
	if err != nil {
		t.Fatalf("ParseLocation: %v", err)
	}
	if loc.Name != "Backup" || loc.Path != dir {
		t.Fatalf("got %+v", loc)
	}
	loc, err = ParseLocation("Gone=" + filepath.Join(dir, "missing"))
	if err != nil || loc.Path != "" {
		t.Fatalf("missing dir should parse with empty path: %+v, %v", loc, err)
	}
	for _, bad := range []string{"", "noequals", "=path", "name="} {
		if _, err := ParseLocation(bad); err == nil {
			t.Errorf("ParseLocation(%q) should fail", bad)
		}
	}
}

func TestFormats(t *testing.T) {
	if FormatFromFilterIndex(2) != FormatExported || FormatFromFilterIndex(1) != FormatSlot || FormatFromFilterIndex(7) != FormatSlot {
		t.Fatalf("filter index mapping wrong")
	}
	if f, ok := ParseFormat(" Exported "); !ok || f != FormatExported {
		t.Fatalf("ParseFormat(exported) = %v, %v", f, ok)
	}
	if _, ok := ParseFormat("amf"); ok {
		t.Fatalf("ParseFormat(amf) should fail")
	}
	if FormatForPath("/x/Coc_1.SOL") != FormatSlot || FormatForPath("/x/backup.coc") != FormatExported {
		t.Fatalf("FormatForPath wrong")
	}
	if FormatSlot.String() != "slot" || Format(9).String() != "unknown" {
		t.Fatalf("String() wrong")
	}
}

func TestFileProbeErrors(t *testing.T) {
	if _, err := (FileProbe{}).Probe(filepath.Join(t.TempDir(), "none.sol")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want ErrNotExist, got %v", err)
	}
	if _, err := (FileProbe{}).Probe(t.TempDir()); err == nil {
		t.Fatalf("directories must not probe cleanly")
	}
}
