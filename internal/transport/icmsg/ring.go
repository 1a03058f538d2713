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

import "encoding/binary"

// Frame layout within the data area, little-endian:
//
//	[length: u32][payload: length bytes, padded to a multiple of 4]
//
// Every frame advances the cursors by a multiple of 4 and the data area length
// is a multiple of 4, so the u32 length word never spans the wrap point and
// offsets stay 4-byte aligned.
const frameHeaderSize = 4

// pad4 rounds n up to the next multiple of 4.
func pad4(n uint32) uint32 {
	return (n + 3) &^ 3
}

// framedSize returns the number of ring bytes a payload of n bytes occupies.
func framedSize(n uint32) uint32 {
	return frameHeaderSize + pad4(n)
}

// RingState is a snapshot of ring cursors for diagnostics. The two cursors are
// loaded independently, so Used/Free are approximate while the peer is active.
type RingState struct {
	Capacity uint32 // maximum resident bytes (data length - 1)
	DataLen  uint32 // data area size in bytes
	ReadIdx  uint32
	WriteIdx uint32
	Used     uint32
	Free     uint32
}

// Ring is one direction of the channel: a single-producer/single-consumer
// frame ring over a shared byte region. The producer core calls Write and the
// consumer core calls Read; neither ever touches the other's cursor. Write
// commits a frame entirely or not at all, and publishes the write cursor only
// after the payload bytes are copied.
type Ring struct {
	region
}

// NewRing binds a ring to a region. The region must satisfy the MemoryConfig
// rules; Open validates them before constructing rings.
func NewRing(mem []byte, align uint32) *Ring {
	if align == 0 {
		align = DefaultAlign
	}
	return &Ring{region: newRegion(mem, align)}
}

// Capacity returns the maximum number of bytes that may be resident in the
// ring. One byte of the data area is reserved so that equal cursors always
// mean empty, never full.
func (r *Ring) Capacity() uint32 {
	return r.dataLen() - 1
}

// FreeSpace returns the bytes currently available for writing. Exact on the
// producer core; a lower bound elsewhere.
func (r *Ring) FreeSpace() uint32 {
	wr := r.writeIndex()
	rd := r.readIndex()
	if rd > wr {
		return rd - wr - 1
	}
	return rd + r.dataLen() - wr - 1
}

// UsedSpace returns the bytes currently resident. Exact on the consumer core;
// a lower bound elsewhere.
func (r *Ring) UsedSpace() uint32 {
	return r.Capacity() - r.FreeSpace()
}

// State returns a cursor snapshot for diagnostics.
func (r *Ring) State() RingState {
	wr := r.writeIndex()
	rd := r.readIndex()
	used := wr - rd
	if wr < rd {
		used = wr + r.dataLen() - rd
	}
	return RingState{
		Capacity: r.Capacity(),
		DataLen:  r.dataLen(),
		ReadIdx:  rd,
		WriteIdx: wr,
		Used:     used,
		Free:     r.Capacity() - used,
	}
}

// Write appends one length-prefixed frame. It returns ErrTooLarge if the
// framed payload exceeds the ring capacity regardless of occupancy, and
// ErrNoSpace if the frame does not fit right now. On error the ring is
// untouched: the write cursor only ever advances for a fully copied frame.
func (r *Ring) Write(p []byte) error {
	// Widen before framing so a payload near or beyond 4GiB cannot wrap the
	// u32 arithmetic in framedSize.
	if uint64(len(p))+frameHeaderSize > uint64(r.Capacity()) {
		return ErrTooLarge
	}
	framed := framedSize(uint32(len(p)))
	if framed > r.Capacity() {
		return ErrTooLarge
	}
	if framed > r.FreeSpace() {
		return ErrNoSpace
	}

	wr := r.writeIndex()
	data := r.data()

	binary.LittleEndian.PutUint32(data[wr:wr+frameHeaderSize], uint32(len(p)))
	wr = r.advance(wr, frameHeaderSize)

	if tail := r.dataLen() - wr; uint32(len(p)) > tail {
		copy(data[wr:], p[:tail])
		copy(data, p[tail:])
	} else {
		copy(data[wr:], p)
	}
	wr = r.advance(wr, pad4(uint32(len(p))))

	r.publishWriteIndex(wr)
	return nil
}

// Read removes and returns the oldest frame, or ok=false if no complete frame
// is resident. The returned slice is a copy; it does not alias shared memory.
func (r *Ring) Read() ([]byte, bool) {
	wr := r.writeIndex()
	rd := r.readIndex()
	if wr == rd {
		return nil, false
	}

	data := r.data()
	n := binary.LittleEndian.Uint32(data[rd : rd+frameHeaderSize])
	if n > r.Capacity()-frameHeaderSize || framedSize(n) > r.Capacity() {
		// A length the producer could never have written. The raw comparison
		// comes first: pad4 wraps for lengths near the u32 maximum, which
		// would slip past the framed-size check alone. The region is corrupt;
		// leave the cursors alone so the fault stays observable.
		return nil, false
	}
	rd = r.advance(rd, frameHeaderSize)

	out := make([]byte, n)
	if tail := r.dataLen() - rd; n > tail {
		copy(out, data[rd:])
		copy(out[tail:], data[:n-tail])
	} else {
		copy(out, data[rd:rd+n])
	}
	rd = r.advance(rd, pad4(n))

	r.publishReadIndex(rd)
	return out, true
}
