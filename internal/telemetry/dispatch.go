/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"cocfiles/internal/dispatch"
)

// DispatchEventName names the event sent after every editor call.
const DispatchEventName = "dispatch"

// DispatchProps is the anonymous view of a dispatch. Paths never leave the machine.
func DispatchProps(d dispatch.Dispatch, err error) map[string]any {
	return map[string]any{
		"op":     string(d.Op),
		"origin": string(d.Origin),
		"format": d.Format.String(),
		"slot":   d.Slot,
		"ok":     err == nil,
	}
}

// Recorder adapts a Client to dispatch.Recorder.
type Recorder struct{ Client *Client }

func (r Recorder) Record(d dispatch.Dispatch, err error) {
	r.Client.Event(DispatchEventName, DispatchProps(d, err))
}
