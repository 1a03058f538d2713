//go:build linux && (amd64 || arm64)

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
	"sync/atomic"
	"time"
)

// futexDoorbell signals the peer through a pair of u32 sequence words in
// shared memory. Ring bumps the peer's word and issues a futex wake; Wait
// sleeps on this side's word until it moves. Both operations are fire-and-
// forget: syscall failures degrade to the dispatcher's poll interval.
type futexDoorbell struct {
	own      *uint32 // word the peer bumps to wake this side
	peer     *uint32 // word this side bumps to wake the peer
	lastSeen uint32
}

// NewFutexDoorbell returns a Doorbell over two shared sequence words. The
// peer's doorbell must be constructed with the words swapped.
func NewFutexDoorbell(own, peer *uint32) Doorbell {
	return &futexDoorbell{own: own, peer: peer}
}

func (d *futexDoorbell) Ring() {
	atomic.AddUint32(d.peer, 1)
	_ = futexWake(d.peer, 1)
}

func (d *futexDoorbell) Wait(timeout time.Duration) {
	seq := atomic.LoadUint32(d.own)
	if seq != d.lastSeen {
		// A signal arrived since the previous Wait; consume it without
		// entering the kernel.
		d.lastSeen = seq
		return
	}
	_ = futexWaitTimeout(d.own, seq, timeout.Nanoseconds())
	d.lastSeen = atomic.LoadUint32(d.own)
}
