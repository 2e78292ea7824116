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
	"log/slog"
	"time"

	"cocfiles/internal/catalog"
	"cocfiles/internal/dispatch"
	applog "cocfiles/internal/log"
)

// language=SQL
// dialect=SQLite
const insertDispatchSQL = `INSERT INTO dispatches(ts, op, origin, path, format, slot, error) VALUES (?, ?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listDispatchesSQL = `SELECT ts, op, origin, path, format, slot, error FROM dispatches ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneDispatchesSQL = `DELETE FROM dispatches WHERE id NOT IN (
	SELECT id FROM dispatches ORDER BY ts DESC, id DESC LIMIT ?
)`

// tsLayout is fixed width so text ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryEntry is one recorded dispatch.
type HistoryEntry struct {
	Time     time.Time
	Dispatch dispatch.Dispatch
	Error    string
}

// OK reports whether the editor call succeeded.
func (h HistoryEntry) OK() bool { return h.Error == "" }

// Record stores a finished dispatch. It satisfies dispatch.Recorder; a
// failing insert is logged and dropped.
func (x *Index) Record(d dispatch.Dispatch, err error) {
	if rerr := x.RecordAt(context.Background(), time.Now(), d, err); rerr != nil {
		applog.WithComponent("storage").Warn("record dispatch failed", slog.Any("err", rerr))
	}
}

// RecordAt stores a dispatch with an explicit timestamp.
func (x *Index) RecordAt(ctx context.Context, ts time.Time, d dispatch.Dispatch, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	_, xerr := x.db.ExecContext(ctx, insertDispatchSQL, ts.UTC().Format(tsLayout),
		string(d.Op), string(d.Origin), d.Path, int(d.Format), d.Slot, msg)
	return xerr
}

// Recent returns up to limit dispatches, newest first.
func (x *Index) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := x.db.QueryContext(ctx, listDispatchesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []HistoryEntry
	for rows.Next() {
		var (
			h              HistoryEntry
			ts, op, origin string
			format         int
		)
		if err := rows.Scan(&ts, &op, &origin, &h.Dispatch.Path, &format, &h.Dispatch.Slot, &h.Error); err != nil {
			return nil, err
		}
		h.Dispatch.Op = dispatch.Op(op)
		h.Dispatch.Origin = dispatch.Origin(origin)
		h.Dispatch.Format = catalog.Format(format)
		if t, err := time.Parse(tsLayout, ts); err == nil {
			h.Time = t
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// PruneHistory keeps only the newest keep dispatches.
func (x *Index) PruneHistory(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := x.db.ExecContext(ctx, pruneDispatchesSQL, keep)
	return err
}
