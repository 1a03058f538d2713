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
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"
)

// Futex ops without FUTEX_PRIVATE_FLAG: the bell words live in a shared
// mapping visible to both processes.
const (
	futexOpWait = 0 // FUTEX_WAIT
	futexOpWake = 1 // FUTEX_WAKE
)

// futexWaitTimeout blocks until the value at addr is no longer val or the
// timeout elapses. Spurious returns are allowed; callers must re-check their
// logical condition.
func futexWaitTimeout(addr *uint32, val uint32, timeoutNs int64) error {
	// Re-check atomically before entering the syscall to close the window
	// where the peer bumps the word and wakes us between our snapshot and the
	// futex entry.
	if atomic.LoadUint32(addr) != val {
		return nil
	}

	var tsPtr uintptr
	var ts syscall.Timespec
	if timeoutNs > 0 {
		ts.Sec = timeoutNs / 1e9
		ts.Nsec = timeoutNs % 1e9
		tsPtr = uintptr(unsafe.Pointer(&ts))
	}

	_, _, errno := syscall.Syscall6(
		syscall.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexOpWait,
		uintptr(val),
		tsPtr,
		0,
		0,
	)

	switch errno {
	case 0, syscall.EAGAIN, syscall.EINTR, syscall.ETIMEDOUT:
		return nil
	default:
		return fmt.Errorf("futex wait failed: %w", errno)
	}
}

// futexWake wakes up to n waiters on addr.
func futexWake(addr *uint32, n int) error {
	_, _, errno := syscall.Syscall6(
		syscall.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexOpWake,
		uintptr(n),
		0,
		0,
		0,
	)
	if errno != 0 {
		return fmt.Errorf("futex wake failed: %w", errno)
	}
	return nil
}
