/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package menu

import (
	"strconv"
	"time"
)

const day = 24 * time.Hour

// Elapsed renders a capture age the way the game's save screen does.
// Units are truncated and never singularized: 25h is "1 days ago".
func Elapsed(d time.Duration) string {
	switch {
	case d > day:
		return strconv.Itoa(int(d/day)) + " days ago"
	case d > time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + " hours ago"
	case d > time.Minute:
		return strconv.Itoa(int(d/time.Minute)) + " minutes ago"
	default:
		return "1 minute ago"
	}
}
