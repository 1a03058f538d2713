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

import "time"

// Doorbell is the lossy out-of-band wake primitive between the two cores.
// Ring notifies the peer that data may be available; Wait blocks the calling
// core until its own bell is rung or the timeout elapses, and may also return
// spuriously. Losing a signal must never lose data: the dispatcher re-polls on
// every Wait return.
type Doorbell interface {
	Ring()
	Wait(timeout time.Duration)
}

// NopDoorbell never signals; peers relying on it run on pure polling.
type NopDoorbell struct{}

func (NopDoorbell) Ring() {}

func (NopDoorbell) Wait(timeout time.Duration) {
	time.Sleep(timeout)
}

// PairDoorbell connects two in-process peers, standing in for the
// interrupt/mailbox primitive when both ends live in one address space (tests
// and the loopback demo).
type PairDoorbell struct {
	ring chan struct{}
	wait chan struct{}
}

// NewDoorbellPair returns two connected doorbells: ringing either one wakes a
// waiter on the other.
func NewDoorbellPair() (*PairDoorbell, *PairDoorbell) {
	ab := make(chan struct{}, 1)
	ba := make(chan struct{}, 1)
	return &PairDoorbell{ring: ab, wait: ba}, &PairDoorbell{ring: ba, wait: ab}
}

func (d *PairDoorbell) Ring() {
	select {
	case d.ring <- struct{}{}:
	default: // peer already has a pending signal
	}
}

func (d *PairDoorbell) Wait(timeout time.Duration) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-d.wait:
	case <-t.C:
	}
}
