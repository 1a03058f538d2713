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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Endpoint", func() {
	var (
		mockCtrl     *gomock.Controller
		cbA, cbB     *MockCallbacks
		trA, trB     *Transport
		epA, epB     *Endpoint
		dispA, dispB *Dispatcher
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		cbA = NewMockCallbacks(mockCtrl)
		cbB = NewMockCallbacks(mockCtrl)

		ab := make([]byte, 256)
		ba := make([]byte, 256)

		var err error
		trA, err = Open(MemoryConfig{Send: ab, Recv: ba}, nil)
		Expect(err).ToNot(HaveOccurred())
		trB, err = Open(MemoryConfig{Send: ba, Recv: ab}, nil)
		Expect(err).ToNot(HaveOccurred())

		epA = NewEndpoint(trA)
		epB = NewEndpoint(trB)
		dispA = NewDispatcher(epA, 0)
		dispB = NewDispatcher(epB, 0)
	})

	// bindBoth runs the simultaneous-open handshake to convergence by pumping
	// both dispatchers by hand.
	bindBoth := func() {
		cbA.EXPECT().OnBound()
		cbB.EXPECT().OnBound()
		Expect(epA.Register(cbA)).To(Succeed())
		Expect(epB.Register(cbB)).To(Succeed())
		dispA.Drain()
		dispB.Drain()
		dispA.Drain()
		Expect(epA.State()).To(Equal(StateBound))
		Expect(epB.State()).To(Equal(StateBound))
	}

	It("starts unregistered", func() {
		Expect(epA.State()).To(Equal(StateUnregistered))
		Expect(epA.Err()).To(BeNil())
	})

	It("rejects send before binding", func() {
		Expect(epA.Send([]byte{1})).To(MatchError(ErrNotBound))
		Expect(epA.Register(cbA)).To(Succeed())
		Expect(epA.Send([]byte{1})).To(MatchError(ErrNotBound))
	})

	It("emits a bind frame on register", func() {
		Expect(epA.Register(cbA)).To(Succeed())
		Expect(epA.State()).To(Equal(StateRegistering))

		raw, ok := trB.TryDequeue()
		Expect(ok).To(BeTrue())
		Expect(raw).To(Equal([]byte{tagBind, protocolVersion}))
	})

	It("rejects a second register", func() {
		Expect(epA.Register(cbA)).To(Succeed())
		Expect(epA.Register(cbA)).To(MatchError(ErrAlreadyRegistered))
	})

	It("converges on simultaneous open with one bound notification each", func() {
		bindBoth()
	})

	It("completes the handshake inside Register when the peer bound first", func() {
		Expect(epA.Register(cbA)).To(Succeed())
		dispB.Drain() // B sees A's BIND while still unregistered
		Expect(epB.State()).To(Equal(StateUnregistered))

		cbB.EXPECT().OnBound()
		Expect(epB.Register(cbB)).To(Succeed())
		Expect(epB.State()).To(Equal(StateBound))

		cbA.EXPECT().OnBound()
		dispA.Drain() // A sees B's BIND and ACK
		Expect(epA.State()).To(Equal(StateBound))
	})

	It("ignores a duplicate bind ack", func() {
		bindBoth()
		Expect(trB.Enqueue(encodeControl(tagBindAck))).To(Succeed())
		dispA.Drain()
		Expect(epA.State()).To(Equal(StateBound))
	})

	It("re-acks a duplicate bind", func() {
		bindBoth()
		Expect(trB.Enqueue(encodeControl(tagBind))).To(Succeed())
		dispA.Drain()
		Expect(epA.State()).To(Equal(StateBound))

		raw, ok := trB.TryDequeue()
		Expect(ok).To(BeTrue())
		Expect(raw).To(Equal([]byte{tagBindAck, protocolVersion}))
	})

	It("fails on a bind with a version mismatch", func() {
		Expect(epA.Register(cbA)).To(Succeed())
		Expect(trB.Enqueue([]byte{tagBind, protocolVersion + 1})).To(Succeed())
		dispA.Drain()

		Expect(epA.State()).To(Equal(StateError))
		var perr *ProtocolError
		Expect(epA.Err()).To(BeAssignableToTypeOf(perr))
	})

	It("fails on a bind ack before registration", func() {
		Expect(trB.Enqueue(encodeControl(tagBindAck))).To(Succeed())
		dispA.Drain()
		Expect(epA.State()).To(Equal(StateError))
	})

	It("fails on a data frame before binding", func() {
		Expect(epA.Register(cbA)).To(Succeed())
		Expect(trB.Enqueue(encodeData([]byte{7, 7}))).To(Succeed())
		dispA.Drain()

		Expect(epA.State()).To(Equal(StateError))
		Expect(epA.Send([]byte{1})).To(MatchError(ErrNotBound))
	})

	It("delivers data payloads to OnReceived in order", func() {
		bindBoth()

		Expect(epB.Send([]byte{1})).To(Succeed())
		Expect(epB.Send([]byte{2, 3})).To(Succeed())

		gomock.InOrder(
			cbA.EXPECT().OnReceived([]byte{1}),
			cbA.EXPECT().OnReceived([]byte{2, 3}),
		)
		Expect(dispA.Drain()).To(Equal(2))
	})

	It("unblocks WaitBound when the handshake completes", func() {
		bindBoth()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(epA.WaitBound(ctx)).To(Succeed())
	})

	It("returns the failure from WaitBound", func() {
		Expect(epA.Register(cbA)).To(Succeed())
		Expect(trB.Enqueue([]byte{tagBind, protocolVersion + 1})).To(Succeed())
		dispA.Drain()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		var perr *ProtocolError
		Expect(epA.WaitBound(ctx)).To(BeAssignableToTypeOf(perr))
	})

	It("honors context cancellation in WaitBound", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(epA.WaitBound(ctx)).To(MatchError(context.Canceled))
	})
})
