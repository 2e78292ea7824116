/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command cocfiles lists, loads and saves CoC save files in the Flash
// shared-object directories and drives the desktop shell.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cocfiles/internal/config"
	"cocfiles/internal/crash"
	applog "cocfiles/internal/log"
)

func main() {
	s := newSession()
	defer crash.Recover(s.editor)
	code := run(s, os.Args[1:], os.Stdout, os.Stderr)
	s.close()
	os.Exit(code)
}

func run(s *session, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cocfiles",
		Short:         "Find, load and save CoC save files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.configure(cmd)
		},
	}
	cmd.PersistentFlags().StringArrayVar(&s.extraDirs, "dir", nil, "extra save directory as Name=path (repeatable)")
	cmd.PersistentFlags().BoolVar(&s.noIndex, "no-index", false, "do not use the sqlite cache and history")
	cmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "enable debug logging")

	addScan(cmd, s)
	addMenu(cmd, s)
	addSlots(cmd, s)
	addLoad(cmd, s)
	addImport(cmd, s)
	addSave(cmd, s)
	addExport(cmd, s)
	addHistory(cmd, s)
	addConfig(cmd, s)
	addUI(cmd, s)
	addVersion(cmd)
	return cmd
}

// configure loads the user config and sets up logging. Services that touch
// the disk are created later, on first use.
func (s *session) configure(cmd *cobra.Command) error {
	cfg, err := config.Load()
	s.cfg = cfg
	lvl := cfg.Logging.Level
	if s.verbose {
		lvl = "debug"
	}
	applog.Init(applog.Options{Level: lvl, Format: cfg.Logging.Format, AddSource: cfg.Logging.Source, File: cfg.Logging.File})
	l := applog.WithComponent("cli")
	if err != nil {
		if !errors.Is(err, config.ErrInvalid) {
			return err
		}
		l.Warn("config ignored", slog.Any("err", err))
	}
	l.Debug("start", slog.String("cmd", cmd.CommandPath()))
	return nil
}
