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

package icmsg_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreipc/icmsg/internal/transport/icmsg"
)

// TestChannelLoopback runs the whole stack in one process: two endpoints over
// mirrored heap regions, connected doorbells, and a dispatcher goroutine per
// side. One side sends a sequence of growing payloads; the other must observe
// them in order, bytes intact.
func TestChannelLoopback(t *testing.T) {
	cfgA, cfgB := mirroredConfigs(2040)
	bellA, bellB := icmsg.NewDoorbellPair()

	trA, err := icmsg.Open(cfgA, bellA)
	require.NoError(t, err)
	trB, err := icmsg.Open(cfgB, bellB)
	require.NoError(t, err)

	epA := icmsg.NewEndpoint(trA)
	epB := icmsg.NewEndpoint(trB)

	cbA := &recordingCallbacks{}
	cbB := &recordingCallbacks{}
	require.NoError(t, epA.Register(cbA))
	require.NoError(t, epB.Register(cbB))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go icmsg.NewDispatcher(epA, 0).Run(ctx)
	go icmsg.NewDispatcher(epB, 0).Run(ctx)

	bindCtx, bindCancel := context.WithTimeout(ctx, 5*time.Second)
	defer bindCancel()
	require.NoError(t, epA.WaitBound(bindCtx))
	require.NoError(t, epB.WaitBound(bindCtx))
	assert.Equal(t, 1, cbA.boundCount())
	assert.Equal(t, 1, cbB.boundCount())

	var want [][]byte
	for n := 1; n <= 9; n++ {
		p := make([]byte, n)
		for i := range p {
			p[i] = byte(i + 1)
		}
		want = append(want, p)
		require.NoError(t, icmsg.SendRetry(ctx, epB, p, icmsg.RetryPolicy{}))
	}

	require.Eventually(t, func() bool {
		return len(cbA.received()) == len(want)
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, want, cbA.received())
}

// TestChannelBackpressure verifies the full-ring behavior end to end: with the
// receive side stalled, sends block with ErrNoSpace, and draining restores the
// full send budget.
func TestChannelBackpressure(t *testing.T) {
	epA, _, _, dispB := boundPair(t, 64)

	// An 8-byte payload gains the data tag, so each frame occupies
	// 4+pad4(9) = 16 ring bytes: three fit the 55-byte capacity.
	payload := make([]byte, 8)
	sent := 0
	for {
		err := epA.Send(payload)
		if err != nil {
			require.ErrorIs(t, err, icmsg.ErrNoSpace)
			break
		}
		sent++
	}
	require.Equal(t, 3, sent)

	require.Equal(t, sent, dispB.Drain())
	for i := 0; i < sent; i++ {
		require.NoError(t, epA.Send(payload))
	}
	require.ErrorIs(t, epA.Send(payload), icmsg.ErrNoSpace)
}

func TestChannelOversizeSend(t *testing.T) {
	epA, _, _, _ := boundPair(t, 64)
	require.ErrorIs(t, epA.Send(make([]byte, 60)), icmsg.ErrTooLarge)
}
