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
	"errors"
	"sync"
)

// State is the endpoint handshake state.
type State int32

const (
	StateUnregistered State = iota
	StateRegistering
	StateBound
	StateError
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistering:
		return "registering"
	case StateBound:
		return "bound"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Callbacks is implemented by the application and injected at registration.
// Both callbacks run on the dispatcher goroutine: they must not block for
// long, since the drain loop is stalled for the duration of a callback.
type Callbacks interface {
	// OnBound is invoked exactly once, when the handshake completes.
	OnBound()
	// OnReceived delivers one inbound data payload. The slice does not alias
	// shared memory and may be retained.
	OnReceived(p []byte)
}

// Endpoint is the addressable channel object. Register starts the symmetric
// bind handshake; Send is valid once the endpoint is bound. Inbound frames
// are routed into the endpoint by the Dispatcher, never synchronously from
// Send.
type Endpoint struct {
	tr *Transport

	mu           sync.Mutex
	state        State
	cb           Callbacks
	peerBindSeen bool // peer's BIND arrived before our Register
	failure      error

	bound  chan struct{} // closed on entering Bound
	failed chan struct{} // closed on entering Error
}

// NewEndpoint creates an unregistered endpoint over the transport.
func NewEndpoint(tr *Transport) *Endpoint {
	return &Endpoint{
		tr:     tr,
		bound:  make(chan struct{}),
		failed: make(chan struct{}),
	}
}

// Register installs the callbacks and emits the BIND control frame. If the
// peer's BIND already arrived, the handshake completes immediately and
// OnBound fires before Register returns.
func (e *Endpoint) Register(cb Callbacks) error {
	if cb == nil {
		return errors.New("icmsg: nil callbacks")
	}

	e.mu.Lock()
	if e.state != StateUnregistered {
		e.mu.Unlock()
		return ErrAlreadyRegistered
	}
	if err := e.tr.Enqueue(encodeControl(tagBind)); err != nil {
		e.mu.Unlock()
		return err
	}
	e.cb = cb
	e.state = StateRegistering
	e.tr.log.Debug().Msg("bind sent")

	notifyBound := false
	if e.peerBindSeen {
		// Simultaneous open already half-done: the peer bound first.
		if err := e.tr.Enqueue(encodeControl(tagBindAck)); err != nil {
			e.tr.log.Warn().Err(err).Msg("bind ack not sent")
		}
		e.state = StateBound
		close(e.bound)
		notifyBound = true
	}
	e.mu.Unlock()

	if notifyBound {
		e.tr.log.Info().Msg("endpoint bound")
		cb.OnBound()
	}
	return nil
}

// State returns the current handshake state.
func (e *Endpoint) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the protocol violation that moved the endpoint to StateError,
// or nil.
func (e *Endpoint) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failure
}

// WaitBound blocks until the handshake completes, the endpoint fails, or ctx
// is done. It replaces ambient synchronization state around "wait until
// bound": the condition is owned by the endpoint itself.
func (e *Endpoint) WaitBound(ctx context.Context) error {
	select {
	case <-e.bound:
		return nil
	case <-e.failed:
		return e.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send commits one data payload to the outbound ring. ErrNoSpace is the cue
// to retry (see SendRetry); ErrTooLarge is permanent for this payload.
func (e *Endpoint) Send(p []byte) error {
	e.mu.Lock()
	st := e.state
	e.mu.Unlock()
	if st != StateBound {
		return ErrNotBound
	}
	return e.tr.Enqueue(encodeData(p))
}

// handleFrame routes one inbound frame through the handshake state machine.
// Called on the dispatcher goroutine only.
func (e *Endpoint) handleFrame(raw []byte) {
	f, err := parseFrame(raw)
	if err != nil {
		e.fail(err)
		return
	}

	switch f.tag {
	case tagBind:
		e.handleBind(f)
	case tagBindAck:
		e.handleBindAck(f)
	case tagData:
		e.handleData(f)
	}
}

func (e *Endpoint) handleBind(f frame) {
	if f.version != protocolVersion {
		e.fail(protocolErrorf("peer BIND version %d, want %d", f.version, protocolVersion))
		return
	}

	e.mu.Lock()
	switch e.state {
	case StateUnregistered:
		// Remember it; the ack goes out when we register.
		e.peerBindSeen = true
		e.mu.Unlock()

	case StateRegistering:
		if err := e.tr.Enqueue(encodeControl(tagBindAck)); err != nil {
			e.tr.log.Warn().Err(err).Msg("bind ack not sent")
		}
		e.state = StateBound
		close(e.bound)
		cb := e.cb
		e.mu.Unlock()
		e.tr.log.Info().Msg("endpoint bound")
		cb.OnBound()

	case StateBound:
		// Duplicate BIND, same version: re-ack, no state change.
		if err := e.tr.Enqueue(encodeControl(tagBindAck)); err != nil {
			e.tr.log.Warn().Err(err).Msg("bind re-ack not sent")
		}
		e.mu.Unlock()

	default:
		e.mu.Unlock()
	}
}

func (e *Endpoint) handleBindAck(f frame) {
	if f.version != protocolVersion {
		e.fail(protocolErrorf("peer BIND_ACK version %d, want %d", f.version, protocolVersion))
		return
	}

	e.mu.Lock()
	switch e.state {
	case StateRegistering:
		e.state = StateBound
		close(e.bound)
		cb := e.cb
		e.mu.Unlock()
		e.tr.log.Info().Msg("endpoint bound")
		cb.OnBound()

	case StateBound:
		// Duplicate ack after convergence; idempotent.
		e.mu.Unlock()

	case StateUnregistered:
		e.mu.Unlock()
		e.fail(protocolErrorf("BIND_ACK before registration"))

	default:
		e.mu.Unlock()
	}
}

func (e *Endpoint) handleData(f frame) {
	e.mu.Lock()
	st := e.state
	cb := e.cb
	e.mu.Unlock()

	if st != StateBound {
		e.fail(protocolErrorf("data frame in state %s", st))
		return
	}
	cb.OnReceived(f.payload)
}

// fail moves the endpoint to the terminal Error state. There is no recovery:
// the channel must be torn down and reconstructed.
func (e *Endpoint) fail(err error) {
	e.mu.Lock()
	if e.state == StateError {
		e.mu.Unlock()
		return
	}
	e.state = StateError
	e.failure = err
	close(e.failed)
	e.mu.Unlock()
	e.tr.log.Error().Err(err).Msg("endpoint failed")
}
