/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cocfiles/internal/catalog"
	"cocfiles/internal/config"
	"cocfiles/internal/menu"
	"cocfiles/internal/slots"
	"cocfiles/internal/ui"
	"cocfiles/internal/version"
)

func addScan(topLevel *cobra.Command, s *session) {
	var asJSON, prune bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "list the save directories and their files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.services(); err != nil {
				return err
			}
			if prune && s.index != nil {
				n, err := s.index.PruneEntries(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "pruned %d cached entries\n", n)
			}
			dirs := s.source.Directories()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), directoriesJSON(dirs))
			}
			printDirectories(cmd.OutOrStdout(), dirs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&prune, "prune", false, "drop cached entries of deleted files first")
	topLevel.AddCommand(cmd)
}

func addMenu(topLevel *cobra.Command, s *session) {
	var asJSON bool
	cmd := &cobra.Command{
		Use:       "menu open|save",
		Short:     "print the assembled open or save menu",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"open", "save"},
		Example: `
cocfiles menu open
cocfiles menu save --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			open, save, err := s.menus()
			if err != nil {
				return err
			}
			roots := open
			if args[0] == "save" {
				roots = save
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), rootsJSON(roots))
			}
			printMenu(cmd.OutOrStdout(), roots)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	topLevel.AddCommand(cmd)
}

func addSlots(topLevel *cobra.Command, s *session) {
	cmd := &cobra.Command{
		Use:   "slots <directory>",
		Short: "show the ten save slots of a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.services(); err != nil {
				return err
			}
			dir, ok := catalog.Lookup(s.source.Directories(), args[0])
			if !ok {
				return fmt.Errorf("unknown directory %q", args[0])
			}
			views := slots.Resolve(dir)
			if views == nil {
				return fmt.Errorf("directory %q has no slots", dir.Name)
			}
			printSlots(cmd.OutOrStdout(), views)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

// openLeaf finds the load leaf of a directory for a slot number or a file name.
func openLeaf(roots []menu.Root, dirName, target string) (menu.Leaf, error) {
	root, err := directoryRoot(roots, dirName)
	if err != nil {
		return menu.Leaf{}, err
	}
	if n, isSlot := parseSlot(target); isSlot {
		for _, lf := range root.Leaves {
			if got, ok := slots.Of(lf.Path); ok && got == n {
				return lf, nil
			}
		}
		return menu.Leaf{}, fmt.Errorf("%s has no file %q", root.Label, target)
	}
	name := strings.TrimSuffix(target, catalog.Extension)
	// an exact name wins over a case-insensitive one
	for _, lf := range root.Leaves {
		if catalog.BaseName(lf.Path) == name {
			return lf, nil
		}
	}
	for _, lf := range root.Leaves {
		if strings.EqualFold(catalog.BaseName(lf.Path), name) {
			return lf, nil
		}
	}
	return menu.Leaf{}, fmt.Errorf("%s has no file %q", root.Label, target)
}

func directoryRoot(roots []menu.Root, name string) (menu.Root, error) {
	for _, r := range roots {
		if r.Kind == menu.RootDirectory && strings.EqualFold(strings.TrimSpace(r.Label), strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return menu.Root{}, fmt.Errorf("unknown directory %q", name)
}

func parseSlot(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, n >= 1 && n <= slots.Count
}

func addLoad(topLevel *cobra.Command, s *session) {
	cmd := &cobra.Command{
		Use:   "load <directory> <slot|file>",
		Short: "load a save from a directory, as the open menu would",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			open, _, err := s.menus()
			if err != nil {
				return err
			}
			leaf, err := openLeaf(open, args[0], args[1])
			if err != nil {
				return err
			}
			if err := s.router.Activate(leaf); err != nil {
				return err
			}
			printLoaded(cmd.OutOrStdout(), s.editor)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command, s *session) {
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "load a save file from anywhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			open, _, err := s.menus()
			if err != nil {
				return err
			}
			root, _ := menu.Find(open, menu.RootImport)
			s.picker.open = args[0]
			if err := s.router.ActivateRoot(root); err != nil {
				return err
			}
			printLoaded(cmd.OutOrStdout(), s.editor)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addSave(topLevel *cobra.Command, s *session) {
	var from, to string
	var slot int
	cmd := &cobra.Command{
		Use:   "save",
		Short: "write a save file into a slot",
		Args:  cobra.NoArgs,
		Example: `
cocfiles save --from ~/Downloads/champion.coc --to Local --slot 3
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if slot < 1 || slot > slots.Count {
				return fmt.Errorf("--slot must be between 1 and %d", slots.Count)
			}
			if err := s.services(); err != nil {
				return err
			}
			if err := s.router.Import(from); err != nil {
				return err
			}
			_, save, err := s.menus()
			if err != nil {
				return err
			}
			root, err := directoryRoot(save, to)
			if err != nil {
				return err
			}
			leaf, ok := root.SlotLeaf(slot)
			if !ok {
				return fmt.Errorf("directory %q has no slots", root.Label)
			}
			if err := s.router.Activate(leaf); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s slot %d: %s\n", catalog.BaseName(from), root.Label, slot, leaf.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "save file to load first")
	cmd.Flags().StringVar(&to, "to", "", "target directory name")
	cmd.Flags().IntVar(&slot, "slot", 0, "target slot (1-10)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("slot")
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command, s *session) {
	var from, format string
	cmd := &cobra.Command{
		Use:   "export <dest>",
		Short: "write a save file to any path in the chosen format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := catalog.ParseFormat(format)
			if !ok || f == catalog.FormatUnknown {
				return fmt.Errorf("--format must be slot or exported, got %q", format)
			}
			if err := s.services(); err != nil {
				return err
			}
			if err := s.router.Import(from); err != nil {
				return err
			}
			_, save, err := s.menus()
			if err != nil {
				return err
			}
			root, _ := menu.Find(save, menu.RootExport)
			s.picker.save, s.picker.filter = args[0], int(f)
			if err := s.router.ActivateRoot(root); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %s as %s: %s\n", catalog.BaseName(from), f, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "save file to load first")
	cmd.Flags().StringVar(&format, "format", catalog.FormatExported.String(), "slot or exported")
	_ = cmd.MarkFlagRequired("from")
	topLevel.AddCommand(cmd)
}

func addHistory(topLevel *cobra.Command, s *session) {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "show recent loads and saves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.services(); err != nil {
				return err
			}
			if s.index == nil {
				return errors.New("history needs the index; it is disabled")
			}
			if limit <= 0 {
				limit = s.cfg.General.RecentLimit
			}
			hs, err := s.index.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), hs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries (default from config)")
	topLevel.AddCommand(cmd)
}

func addConfig(topLevel *cobra.Command, s *session) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "inspect the user configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Path()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "check a config file against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ""
			if len(args) == 1 {
				p = args[0]
			} else {
				var err error
				if p, err = config.Path(); err != nil {
					return err
				}
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			if err := config.Validate(data); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", p)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(s.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	topLevel.AddCommand(cmd)
}

func addUI(topLevel *cobra.Command, s *session) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "start the desktop shell (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.services(); err != nil {
				return err
			}
			return ui.Run(s.uiServices())
		},
	}
	topLevel.AddCommand(cmd)
}

func addVersion(topLevel *cobra.Command) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cocfiles", version.String())
		},
	})
}
