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
	"fmt"
	"os"
	"sync/atomic"
	"time"
	"unsafe"
)

// A Segment is a file-backed shared mapping holding the two channel regions
// plus the doorbell words, so two processes can stand in for the two cores.
// The creator lays the segment out and marks itself ready; the opener
// validates the header and marks itself ready. Each side extracts a mirrored
// MemoryConfig from it.
const (
	segmentMagic   = "ICMSGSEG"
	segmentVersion = uint32(1)

	// Segment header size (aligned to 128 bytes)
	segmentHeaderSize = 128

	// DefaultRegionLen is the per-direction region length used when the
	// caller does not specify one.
	DefaultRegionLen = 2048
)

// segmentHeader is the on-disk/in-memory segment header. Fields before the
// ready flags are written once by the creator before creatorReady is set.
type segmentHeader struct {
	magic        [8]byte  // 0x00: "ICMSGSEG"
	version      uint32   // 0x08: layout version
	flags        uint32   // 0x0C: reserved
	totalSize    uint64   // 0x10: total segment size
	regionAOff   uint64   // 0x18: offset of region A (creator's send)
	regionALen   uint64   // 0x20: length of region A
	regionBOff   uint64   // 0x28: offset of region B (creator's recv)
	regionBLen   uint64   // 0x30: length of region B
	bellA        uint32   // 0x38: doorbell word waited on by the creator
	bellB        uint32   // 0x3C: doorbell word waited on by the opener
	creatorPID   uint32   // 0x40
	openerPID    uint32   // 0x44
	creatorReady uint32   // 0x48: 0 -> 1 once the layout is initialized
	openerReady  uint32   // 0x4C: 0 -> 1 once the opener has mapped
	reserved     [48]byte // 0x50-0x7F: padding to 128B
}

func (h *segmentHeader) setMagic() {
	copy(h.magic[:], segmentMagic)
}

func (h *segmentHeader) magicOK() bool {
	return string(h.magic[:]) == segmentMagic
}

func (h *segmentHeader) CreatorReady() bool {
	return atomic.LoadUint32(&h.creatorReady) != 0
}

func (h *segmentHeader) SetCreatorReady() {
	atomic.StoreUint32(&h.creatorReady, 1)
}

func (h *segmentHeader) OpenerReady() bool {
	return atomic.LoadUint32(&h.openerReady) != 0
}

func (h *segmentHeader) SetOpenerReady() {
	atomic.StoreUint32(&h.openerReady, 1)
}

// calculateSegmentLayout computes offsets for the two regions, 64-byte
// aligned, and checks each region length against the channel's region rules.
func calculateSegmentLayout(aLen, bLen uint64) (totalSize, aOff, bOff uint64, err error) {
	if err := checkRegionLen("A", aLen); err != nil {
		return 0, 0, 0, err
	}
	if err := checkRegionLen("B", bLen); err != nil {
		return 0, 0, 0, err
	}

	aOff = alignTo64(segmentHeaderSize)
	bOff = alignTo64(aOff + aLen)
	totalSize = alignTo64(bOff + bLen)
	return totalSize, aOff, bOff, nil
}

func alignTo64(n uint64) uint64 {
	return (n + 63) &^ 63
}

func checkRegionLen(name string, l uint64) error {
	if l < 2*DefaultAlign+MinDataLen {
		return fmt.Errorf("region %s length %d below minimum %d", name, l, 2*DefaultAlign+MinDataLen)
	}
	if (l-2*DefaultAlign)%4 != 0 {
		return fmt.Errorf("region %s data area length %d is not a multiple of 4", name, l-2*DefaultAlign)
	}
	return nil
}

// validateSegmentHeader checks a mapped header against the expected layout.
func validateSegmentHeader(h *segmentHeader, mappedSize uint64) error {
	if !h.magicOK() {
		return fmt.Errorf("invalid segment magic")
	}
	if h.version != segmentVersion {
		return fmt.Errorf("unsupported segment version %d, want %d", h.version, segmentVersion)
	}
	total, aOff, bOff, err := calculateSegmentLayout(h.regionALen, h.regionBLen)
	if err != nil {
		return fmt.Errorf("segment layout: %w", err)
	}
	if h.totalSize != total || h.regionAOff != aOff || h.regionBOff != bOff {
		return fmt.Errorf("segment layout mismatch")
	}
	if mappedSize < total {
		return fmt.Errorf("segment file size %d below layout size %d", mappedSize, total)
	}
	return nil
}

// Segment is a mapped shared memory segment.
type Segment struct {
	File    *os.File
	Mem     []byte
	Path    string
	creator bool
}

func (s *Segment) header() *segmentHeader {
	return (*segmentHeader)(unsafe.Pointer(&s.Mem[0]))
}

func (s *Segment) regionA() []byte {
	h := s.header()
	return s.Mem[h.regionAOff : h.regionAOff+h.regionALen]
}

func (s *Segment) regionB() []byte {
	h := s.header()
	return s.Mem[h.regionBOff : h.regionBOff+h.regionBLen]
}

// Config returns this side's mirrored MemoryConfig and its doorbell: the
// creator sends on region A and waits on bell A, the opener the reverse.
func (s *Segment) Config() (MemoryConfig, Doorbell) {
	h := s.header()
	if s.creator {
		return MemoryConfig{Send: s.regionA(), Recv: s.regionB()},
			newSegmentDoorbell(&h.bellA, &h.bellB)
	}
	return MemoryConfig{Send: s.regionB(), Recv: s.regionA()},
		newSegmentDoorbell(&h.bellB, &h.bellA)
}

// SetReady publishes this side's ready flag.
func (s *Segment) SetReady() {
	h := s.header()
	if s.creator {
		h.SetCreatorReady()
		return
	}
	atomic.StoreUint32(&h.openerPID, uint32(os.Getpid()))
	h.SetOpenerReady()
}

// WaitPeerReady polls until the other side's ready flag is set or ctx is
// done.
func (s *Segment) WaitPeerReady(ctx context.Context) error {
	h := s.header()
	ready := h.OpenerReady
	if !s.creator {
		ready = h.CreatorReady
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if ready() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close unmaps the segment and closes the backing file. The file itself is
// left in place; RemoveSegment deletes it.
func (s *Segment) Close() error {
	var firstErr error
	if s.Mem != nil {
		if err := unmapMemory(s.Mem); err != nil {
			firstErr = err
		}
		s.Mem = nil
	}
	if s.File != nil {
		if err := s.File.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.File = nil
	}
	return firstErr
}

// unmapMemory is installed by the platform mapping implementation.
var unmapMemory = func([]byte) error { return ErrUnsupported }
