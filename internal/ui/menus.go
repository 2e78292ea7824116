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
	"strings"

	"cocfiles/internal/menu"
)

// Item is one rendered menu entry, independent of the toolkit. Directory and
// action items point at their root; file and slot items point at their leaf.
type Item struct {
	Label     string
	Separator bool
	Dimmed    bool
	Failed    bool
	Root      *menu.Root
	Leaf      *menu.Leaf
	Children  []Item
}

// Items flattens assembled roots into menu entries. Hidden roots are left
// out and a separator goes before every visible root that asks for one.
func Items(roots []menu.Root) []Item {
	var out []Item
	for i := range roots {
		r := &roots[i]
		if !r.Visible {
			continue
		}
		if r.SeparatorBefore && len(out) > 0 && !out[len(out)-1].Separator {
			out = append(out, Item{Separator: true})
		}
		it := Item{Label: r.Label, Dimmed: r.Dimmed, Root: r}
		for j := range r.Leaves {
			lf := &r.Leaves[j]
			it.Children = append(it.Children, Item{Label: LeafText(*lf), Dimmed: lf.Dimmed, Failed: lf.Failed, Leaf: lf})
		}
		out = append(out, it)
	}
	return out
}

// LeafText is the single-line label of a leaf: its name followed by the detail.
func LeafText(l menu.Leaf) string {
	if strings.TrimSpace(l.Detail) == "" {
		return l.Label
	}
	return l.Label + "  (" + l.Detail + ")"
}

// Status is the message shown after a dispatch.
func Status(verb, path string, err error) string {
	if err != nil {
		return verb + " failed: " + err.Error()
	}
	return verb + ": " + path
}
