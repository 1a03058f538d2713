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
	"fmt"
	"runtime"
	"time"
)

// RetryPolicy governs how a send is retried under transient backpressure.
// Timing policy belongs to the caller, not the channel core: the zero value
// reproduces the classic busy-retry (spin until space frees up, no backoff,
// bounded only by the caller's context).
type RetryPolicy struct {
	// MaxAttempts caps the number of Send attempts. Zero means unlimited.
	MaxAttempts int
	// Backoff returns the delay before the next attempt; attempt counts from
	// 1. Nil means retry immediately.
	Backoff func(attempt int) time.Duration
}

// SendRetry sends p on the endpoint, retrying ErrNoSpace under the policy.
// Every other error returns immediately: ErrTooLarge can never succeed and
// state errors are not the retry loop's business. When ctx expires before
// space frees up, the result wraps ErrDeadlineExceeded so callers under a
// time budget can surface it upstream.
func SendRetry(ctx context.Context, ep *Endpoint, p []byte, policy RetryPolicy) error {
	for attempt := 1; ; attempt++ {
		err := ep.Send(p)
		if err == nil || !errors.Is(err, ErrNoSpace) {
			return err
		}

		if policy.MaxAttempts > 0 && attempt >= policy.MaxAttempts {
			return fmt.Errorf("icmsg: gave up after %d attempts: %w", attempt, ErrNoSpace)
		}

		var delay time.Duration
		if policy.Backoff != nil {
			delay = policy.Backoff(attempt)
		}
		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%w: %w", ErrDeadlineExceeded, ctx.Err())
			case <-t.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrDeadlineExceeded, ctx.Err())
			default:
			}
			// Busy retry: give the peer's drain loop a chance to run when
			// both ends share a scheduler.
			runtime.Gosched()
		}
	}
}
