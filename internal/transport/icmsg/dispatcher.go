/*
 * Copyright 2026 The icmsg Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package icmsg

import (
	"context"
	"time"
)

// DefaultPollInterval bounds how long a dropped doorbell signal can delay
// delivery.
const DefaultPollInterval = time.Millisecond

// Dispatcher owns the receive side of a channel: it drains the inbound ring on
// every wake event and routes each frame into the endpoint. All routing and
// all endpoint callbacks run on the goroutine that calls Run; callbacks are
// never reentrant with respect to each other.
type Dispatcher struct {
	tr   *Transport
	ep   *Endpoint
	poll time.Duration
}

// NewDispatcher creates a dispatcher for the endpoint's transport.
// pollInterval <= 0 selects DefaultPollInterval.
func NewDispatcher(ep *Endpoint, pollInterval time.Duration) *Dispatcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Dispatcher{tr: ep.tr, ep: ep, poll: pollInterval}
}

// Run loops until ctx is done: drain the inbound ring, then block on the
// doorbell bounded by the poll interval. Waking is lossy; draining is not.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.tr.log.Debug().Dur("poll", d.poll).Msg("dispatcher running")
	for {
		d.Drain()
		if ctx.Err() != nil {
			d.tr.log.Debug().Msg("dispatcher stopped")
			return ctx.Err()
		}
		d.tr.WaitSignal(d.poll)
	}
}

// Drain dequeues inbound frames until the ring is empty, routing each one
// through the endpoint state machine. It returns the number of frames
// delivered. Exposed so tests and poll-driven callers can pump the channel
// without a goroutine.
func (d *Dispatcher) Drain() int {
	n := 0
	for {
		raw, ok := d.tr.TryDequeue()
		if !ok {
			return n
		}
		d.ep.handleFrame(raw)
		n++
	}
}
