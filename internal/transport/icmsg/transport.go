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
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

// Transport maps a MemoryConfig onto the two directional rings and carries the
// doorbell. It is the raw frame path; Endpoint and Dispatcher layer the
// handshake and delivery discipline on top.
type Transport struct {
	id   string
	tx   *Ring
	rx   *Ring
	bell Doorbell
	log  zerolog.Logger
}

// Option configures a Transport at Open time.
type Option func(*Transport)

// WithLogger attaches a structured logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Transport) { t.log = log }
}

// Open validates the region contract and binds the two rings. bell may be nil,
// in which case the peer is never signaled and must poll.
func Open(cfg MemoryConfig, bell Doorbell, opts ...Option) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if bell == nil {
		bell = NopDoorbell{}
	}

	t := &Transport{
		id:   xid.New().String(),
		tx:   NewRing(cfg.Send, cfg.align()),
		rx:   NewRing(cfg.Recv, cfg.align()),
		bell: bell,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("channel", t.id).Logger()

	t.log.Debug().
		Uint32("tx_capacity", t.tx.Capacity()).
		Uint32("rx_capacity", t.rx.Capacity()).
		Msg("channel opened")
	return t, nil
}

// ID returns the channel instance id used in log correlation.
func (t *Transport) ID() string {
	return t.id
}

// Enqueue commits one frame to the outbound ring and signals the peer. The
// signal is best-effort; the peer's poll discipline covers a lost one.
func (t *Transport) Enqueue(p []byte) error {
	if err := t.tx.Write(p); err != nil {
		return err
	}
	t.SignalPeer()
	return nil
}

// TryDequeue removes the oldest inbound frame, if any.
func (t *Transport) TryDequeue() ([]byte, bool) {
	return t.rx.Read()
}

// SignalPeer rings the peer's doorbell.
func (t *Transport) SignalPeer() {
	t.bell.Ring()
}

// WaitSignal blocks until this side's doorbell is rung or the timeout
// elapses. May return spuriously.
func (t *Transport) WaitSignal(timeout time.Duration) {
	t.bell.Wait(timeout)
}

// TxState and RxState expose cursor snapshots for diagnostics.
func (t *Transport) TxState() RingState { return t.tx.State() }
func (t *Transport) RxState() RingState { return t.rx.State() }
