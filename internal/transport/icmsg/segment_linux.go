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
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

func init() {
	unmapMemory = unix.Munmap
}

func newSegmentDoorbell(own, peer *uint32) Doorbell {
	return NewFutexDoorbell(own, peer)
}

// CreateSegment creates and maps a new segment with one region per direction.
// The backing file is created exclusively; a leftover file from a previous
// run must be removed first. regionLen of 0 selects DefaultRegionLen.
func CreateSegment(name string, regionLen uint32) (*Segment, error) {
	if regionLen == 0 {
		regionLen = DefaultRegionLen
	}
	totalSize, aOff, bOff, err := calculateSegmentLayout(uint64(regionLen), uint64(regionLen))
	if err != nil {
		return nil, fmt.Errorf("segment layout: %w", err)
	}

	path := segmentPath(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("create segment file %s: %w", path, err)
	}
	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	// Truncate gives zero pages, which is exactly the pristine region state
	// the channel requires.
	if err := file.Truncate(int64(totalSize)); err != nil {
		cleanup()
		return nil, fmt.Errorf("resize segment file: %w", err)
	}
	mem, err := mmapFile(file, int(totalSize))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("mmap segment: %w", err)
	}

	s := &Segment{File: file, Mem: mem, Path: path, creator: true}
	h := s.header()
	h.setMagic()
	h.version = segmentVersion
	h.totalSize = totalSize
	h.regionAOff = aOff
	h.regionALen = uint64(regionLen)
	h.regionBOff = bOff
	h.regionBLen = uint64(regionLen)
	h.creatorPID = uint32(os.Getpid())
	h.SetCreatorReady()

	return s, nil
}

// OpenSegment maps an existing segment created by the peer process and
// validates its layout.
func OpenSegment(name string) (*Segment, error) {
	path := segmentPath(name)
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open segment file %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat segment file: %w", err)
	}

	mem, err := mmapFile(file, int(info.Size()))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("mmap segment: %w", err)
	}

	s := &Segment{File: file, Mem: mem, Path: path}
	if !s.header().CreatorReady() {
		s.Close()
		return nil, fmt.Errorf("segment %s not yet initialized by creator", name)
	}
	if err := validateSegmentHeader(s.header(), uint64(info.Size())); err != nil {
		s.Close()
		return nil, fmt.Errorf("segment %s: %w", name, err)
	}
	return s, nil
}

// RemoveSegment deletes a segment's backing file.
func RemoveSegment(name string) error {
	return os.Remove(segmentPath(name))
}

// SegmentExists reports whether a segment's backing file is present.
func SegmentExists(name string) bool {
	_, err := os.Stat(segmentPath(name))
	return err == nil
}

// segmentPath prefers /dev/shm so the mapping never touches a disk; it falls
// back to the temp dir where /dev/shm is absent.
func segmentPath(name string) string {
	dir := "/dev/shm"
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "icmsg_"+name)
}

func mmapFile(file *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(file.Fd()), 0, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}
