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

import "unsafe"

// MinDataLen is the smallest usable data area: room for both handshake frames
// plus the reserved byte.
const MinDataLen = 24

// MemoryConfig is the static region contract agreed by both cores. The two
// cores hold mirrored configs: this core's send region is the peer's receive
// region and vice versa. Regions must be zeroed before either core opens the
// channel; the channel never re-initializes them at runtime.
type MemoryConfig struct {
	// Send and Recv are views over the shared regions, index headers
	// included.
	Send []byte
	Recv []byte

	// Align is the size of each index slot in bytes. Both cores must agree on
	// it. Zero means DefaultAlign; cache-incoherent targets set it to the
	// cache line size.
	Align uint32
}

func (c *MemoryConfig) align() uint32 {
	if c.Align == 0 {
		return DefaultAlign
	}
	return c.Align
}

// Validate checks the region contract. All violations are fatal; a channel is
// never constructed over a malformed config.
func (c *MemoryConfig) Validate() error {
	align := c.align()
	if align < DefaultAlign || align&(align-1) != 0 {
		return configErrorf("align %d is not a power of two >= %d", align, DefaultAlign)
	}
	if err := validateRegion("send", c.Send, align); err != nil {
		return err
	}
	if err := validateRegion("recv", c.Recv, align); err != nil {
		return err
	}
	if regionsOverlap(c.Send, c.Recv) {
		return configErrorf("send and recv regions overlap")
	}
	return nil
}

func validateRegion(name string, mem []byte, align uint32) error {
	if len(mem) == 0 {
		return configErrorf("%s region is empty", name)
	}
	if uintptr(unsafe.Pointer(unsafe.SliceData(mem)))%uintptr(align) != 0 {
		return configErrorf("%s region base is not %d-byte aligned", name, align)
	}
	need := 2*uint64(align) + MinDataLen
	if uint64(len(mem)) < need {
		return configErrorf("%s region length %d below minimum %d", name, len(mem), need)
	}
	if (uint64(len(mem))-2*uint64(align))%4 != 0 {
		return configErrorf("%s region data area length %d is not a multiple of 4",
			name, uint64(len(mem))-2*uint64(align))
	}
	return nil
}

func regionsOverlap(a, b []byte) bool {
	aStart := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	bStart := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	aEnd := aStart + uintptr(len(a))
	bEnd := bStart + uintptr(len(b))
	return aStart < bEnd && bStart < aEnd
}
