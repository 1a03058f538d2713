//go:build !linux || !(amd64 || arm64)

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

// Shared-memory segments require mmap and futexes. In-process channels over
// heap-backed regions work everywhere.

func newSegmentDoorbell(own, peer *uint32) Doorbell {
	return NopDoorbell{}
}

// CreateSegment is not supported on this platform.
func CreateSegment(name string, regionLen uint32) (*Segment, error) {
	return nil, ErrUnsupported
}

// OpenSegment is not supported on this platform.
func OpenSegment(name string) (*Segment, error) {
	return nil, ErrUnsupported
}

// RemoveSegment is not supported on this platform.
func RemoveSegment(name string) error {
	return ErrUnsupported
}

// SegmentExists reports whether a segment's backing file is present.
func SegmentExists(name string) bool {
	return false
}
