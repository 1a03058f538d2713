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
	"errors"
	"fmt"
)

var (
	// ErrNoSpace indicates the outbound ring has insufficient free space for
	// the frame. Transient: the caller may retry once the peer drains.
	ErrNoSpace = errors.New("icmsg: no space in ring")

	// ErrTooLarge indicates the framed payload can never fit the ring,
	// regardless of occupancy. Not retryable.
	ErrTooLarge = errors.New("icmsg: payload exceeds ring capacity")

	// ErrNotBound indicates a send was attempted before the handshake
	// completed or after the endpoint entered the error state.
	ErrNotBound = errors.New("icmsg: endpoint not bound")

	// ErrAlreadyRegistered indicates a second Register call on the same
	// endpoint.
	ErrAlreadyRegistered = errors.New("icmsg: endpoint already registered")

	// ErrDeadlineExceeded indicates a retried send abandoned its time budget
	// before ring space became available.
	ErrDeadlineExceeded = errors.New("icmsg: send deadline exceeded")

	// ErrUnsupported indicates shared-memory segments and futex doorbells are
	// not available on this platform.
	ErrUnsupported = errors.New("icmsg: not supported on this platform")
)

// ConfigError reports a malformed memory region contract. It is fatal and
// surfaced at Open time; a channel is never constructed over a bad config.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "icmsg: invalid memory config: " + e.Reason
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// ProtocolError reports a malformed or unexpected control frame. Receiving one
// moves the endpoint to the Error state; the channel must be torn down and
// reconstructed.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "icmsg: protocol violation: " + e.Reason
}

func protocolErrorf(format string, args ...any) *ProtocolError {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}
