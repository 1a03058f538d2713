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

// Package icmsg implements a point-to-point message channel between two
// independently scheduled peers that share a region of memory but no other
// state.
//
// The channel is built from a mirrored pair of single-producer/single-consumer
// byte rings: one peer's send region is the other peer's receive region. Each
// ring carries length-prefixed frames; the producer publishes its write index
// only after the payload bytes are fully copied, so the consumer never observes
// a partial frame. A lossy out-of-band doorbell wakes the peer when data is
// available; the receive loop also polls on a timeout, so a dropped doorbell
// signal delays delivery but never loses it.
//
// An Endpoint layers a symmetric bind handshake and user callbacks on top of
// the raw Transport. Both peers send a BIND control frame when they register;
// each side acknowledges the peer's BIND and becomes bound on either the
// acknowledgement or the peer's own BIND, whichever arrives first, so
// simultaneous open converges without a client/server distinction.
package icmsg
