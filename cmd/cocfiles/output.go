/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"cocfiles/internal/catalog"
	"cocfiles/internal/menu"
	"cocfiles/internal/slots"
	"cocfiles/internal/storage"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type entryJSON struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	Format      string    `json:"format"`
	Captured    time.Time `json:"captured,omitzero"`
	Short       string    `json:"short,omitempty"`
	Days        string    `json:"days,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type directoryJSON struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	External bool        `json:"external,omitempty"`
	Files    []entryJSON `json:"files"`
}

func directoriesJSON(dirs []catalog.Directory) []directoryJSON {
	out := make([]directoryJSON, 0, len(dirs))
	for _, d := range dirs {
		dj := directoryJSON{Name: d.Name, Path: d.Path, External: d.External, Files: []entryJSON{}}
		for _, e := range d.Files {
			dj.Files = append(dj.Files, entryJSON{
				Path: e.Path, DisplayName: e.DisplayName, Format: e.Format.String(),
				Captured: e.Captured, Short: e.Short, Days: e.Days, Error: e.Error,
			})
		}
		out = append(out, dj)
	}
	return out
}

type leafJSON struct {
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Path   string `json:"path"`
	Format string `json:"format"`
	Slot   int    `json:"slot,omitempty"`
	Failed bool   `json:"failed,omitempty"`
	Dimmed bool   `json:"dimmed,omitempty"`
}

type rootJSON struct {
	Kind      string     `json:"kind"`
	Label     string     `json:"label"`
	Visible   bool       `json:"visible"`
	Dimmed    bool       `json:"dimmed,omitempty"`
	Separator bool       `json:"separator_before,omitempty"`
	Leaves    []leafJSON `json:"leaves,omitempty"`
}

func rootsJSON(roots []menu.Root) []rootJSON {
	out := make([]rootJSON, 0, len(roots))
	for _, r := range roots {
		rj := rootJSON{Kind: r.Kind.String(), Label: r.Label, Visible: r.Visible, Dimmed: r.Dimmed, Separator: r.SeparatorBefore}
		for _, l := range r.Leaves {
			rj.Leaves = append(rj.Leaves, leafJSON{
				Kind: l.Kind.String(), Label: l.Label, Detail: l.Detail, Path: l.Path,
				Format: l.Format.String(), Slot: l.Slot, Failed: l.Failed, Dimmed: l.Dimmed,
			})
		}
		out = append(out, rj)
	}
	return out
}

func printDirectories(w io.Writer, dirs []catalog.Directory) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, d := range dirs {
		where := d.Path
		switch {
		case d.External:
			where = "(imported files)"
		case where == "":
			where = "(not found)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d files\n", d.Name, where, len(d.Files))
		for _, e := range d.Files {
			size := "?"
			if fi, err := os.Stat(e.Path); err == nil {
				size = humanize.Bytes(uint64(fi.Size()))
			}
			when := ""
			if !e.Captured.IsZero() {
				when = humanize.Time(e.Captured)
			}
			state := e.Format.String()
			if e.Failed() {
				state = "error: " + e.Error
			}
			_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", e.DisplayName, size, when, state)
		}
	}
}

func printMenu(w io.Writer, roots []menu.Root) {
	for _, r := range roots {
		if !r.Visible {
			continue
		}
		if r.SeparatorBefore {
			_, _ = fmt.Fprintln(w, "----")
		}
		label := r.Label
		if r.Dimmed {
			label += " (empty)"
		}
		_, _ = fmt.Fprintln(w, label)
		for _, l := range r.Leaves {
			mark := " "
			if l.Failed {
				mark = "!"
			}
			line := l.Label
			if l.Detail != "" {
				line += "  " + l.Detail
			}
			_, _ = fmt.Fprintf(w, "  %s %s\n", mark, line)
		}
	}
}

func printSlots(w io.Writer, views []slots.View) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, v := range views {
		name := "(empty)"
		if !v.Empty() {
			name = v.Entry.DisplayName
			if v.Entry.Failed() {
				name += " [error]"
			}
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", v.Slot, v.Label, name, v.Path)
	}
}

func printLoaded(w io.Writer, ed *storage.Editor) {
	doc, ok := ed.Current()
	if !ok {
		_, _ = fmt.Fprintln(w, "Nothing loaded")
		return
	}
	_, _ = fmt.Fprintf(w, "Loaded %s (%s, %s)\n", doc.Path, doc.Format, humanize.Bytes(uint64(len(doc.Data))))
}

func printHistory(w io.Writer, hs []storage.HistoryEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()
	for _, h := range hs {
		result := "ok"
		if !h.OK() {
			result = "failed: " + h.Error
		}
		d := h.Dispatch
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", humanize.Time(h.Time), d.Op, d.Origin, d.Path, result)
	}
}
