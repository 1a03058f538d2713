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
	"unsafe"
)

// Region layout:
//
//	[read index:  u32, padded to align]
//	[write index: u32, padded to align]
//	[data area:   len(region) - 2*align bytes]
//
// The indices are the only words shared between the two cores for a given
// direction. The read index is mutated only by the consumer, the write index
// only by the producer. Both are offsets into the data area in [0, dataLen).
//
// DefaultAlign is enough for atomic u32 access; callers on cache-incoherent
// targets configure the region alignment to the cache line size instead.
const DefaultAlign = 4

// region is a typed view over a raw shared-memory byte region. It stores no
// pointers into the region beyond the backing slice itself; index addresses
// are computed on demand.
type region struct {
	mem   []byte
	align uint32
}

func newRegion(mem []byte, align uint32) region {
	return region{mem: mem, align: align}
}

func (r *region) rdPtr() *uint32 {
	return (*uint32)(unsafe.Pointer(&r.mem[0]))
}

func (r *region) wrPtr() *uint32 {
	return (*uint32)(unsafe.Pointer(&r.mem[r.align]))
}

// dataLen returns the size of the data area in bytes.
func (r *region) dataLen() uint32 {
	return uint32(len(r.mem)) - 2*r.align
}

func (r *region) data() []byte {
	return r.mem[2*r.align:]
}

// readIndex loads the consumer cursor. The acquire ordering of the atomic load
// pairs with publishReadIndex on the consumer core, so the producer never
// reuses space before the consumer is done with it.
func (r *region) readIndex() uint32 {
	return atomic.LoadUint32(r.rdPtr())
}

// writeIndex loads the producer cursor. The acquire ordering pairs with
// publishWriteIndex on the producer core, so the consumer never reads payload
// bytes that have not been fully copied.
func (r *region) writeIndex() uint32 {
	return atomic.LoadUint32(r.wrPtr())
}

func (r *region) publishReadIndex(v uint32) {
	atomic.StoreUint32(r.rdPtr(), v)
}

func (r *region) publishWriteIndex(v uint32) {
	atomic.StoreUint32(r.wrPtr(), v)
}

// reset zeroes both cursors. Valid only during channel construction, before
// either core has produced a frame.
func (r *region) reset() {
	atomic.StoreUint32(r.rdPtr(), 0)
	atomic.StoreUint32(r.wrPtr(), 0)
}

// advance moves an index forward by n bytes, wrapping at the data length.
// n must be less than the data length.
func (r *region) advance(idx, n uint32) uint32 {
	idx += n
	if idx >= r.dataLen() {
		idx -= r.dataLen()
	}
	return idx
}
