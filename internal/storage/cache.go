/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"cocfiles/internal/catalog"
	applog "cocfiles/internal/log"
)

// language=SQL
// dialect=SQLite
const selectEntrySQL = `SELECT name, captured, format, short, days, error FROM entries WHERE path = ? AND size = ? AND mtime_ns = ?`

// language=SQL
// dialect=SQLite
const upsertEntrySQL = `INSERT INTO entries(path, size, mtime_ns, name, captured, format, short, days, error, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
	size = excluded.size, mtime_ns = excluded.mtime_ns, name = excluded.name, captured = excluded.captured,
	format = excluded.format, short = excluded.short, days = excluded.days, error = excluded.error,
	updated_at = excluded.updated_at`

// language=SQL
// dialect=SQLite
const listEntryPathsSQL = `SELECT path FROM entries`

// language=SQL
// dialect=SQLite
const deleteEntrySQL = `DELETE FROM entries WHERE path = ?`

// Lookup returns the cached probe result for a file whose size and
// modification time are unchanged. Database errors count as a miss.
func (x *Index) Lookup(path string, size int64, mod time.Time) (catalog.Metadata, string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	var (
		md       catalog.Metadata
		captured string
		format   int
		probeErr string
	)
	err := x.db.QueryRowContext(ctx, selectEntrySQL, path, size, mod.UnixNano()).
		Scan(&md.Name, &captured, &format, &md.Short, &md.Days, &probeErr)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			applog.WithComponent("storage").Debug("cache lookup failed", slog.String("path", path), slog.Any("err", err))
		}
		return catalog.Metadata{}, "", false
	}
	md.Format = catalog.Format(format)
	if captured != "" {
		if ts, err := time.Parse(time.RFC3339Nano, captured); err == nil {
			md.Captured = ts
		}
	}
	return md, probeErr, true
}

// Store records a probe result. Failures are logged and otherwise ignored.
func (x *Index) Store(path string, size int64, mod time.Time, md catalog.Metadata, probeErr string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	captured := ""
	if !md.Captured.IsZero() {
		captured = md.Captured.UTC().Format(time.RFC3339Nano)
	}
	_, err := x.db.ExecContext(ctx, upsertEntrySQL, path, size, mod.UnixNano(), md.Name, captured, int(md.Format),
		md.Short, md.Days, probeErr, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		applog.WithComponent("storage").Warn("cache store failed", slog.String("path", path), slog.Any("err", err))
	}
}

// PruneEntries drops cached rows for files that no longer exist and returns how many went.
func (x *Index) PruneEntries(ctx context.Context) (int, error) {
	rows, err := x.db.QueryContext(ctx, listEntryPathsSQL)
	if err != nil {
		return 0, err
	}
	var gone []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			_ = rows.Close()
			return 0, err
		}
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			gone = append(gone, p)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	for _, p := range gone {
		if _, err := x.db.ExecContext(ctx, deleteEntrySQL, p); err != nil {
			return 0, err
		}
	}
	return len(gone), nil
}
