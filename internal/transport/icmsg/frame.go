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

// Every frame payload starts with a one-byte tag that separates handshake
// control traffic from user data. Control frames carry the protocol version as
// their single body byte; data frames carry opaque user bytes.
const (
	tagData    = byte(0x00)
	tagBind    = byte(0x01)
	tagBindAck = byte(0x02)
)

// protocolVersion is carried in BIND/BIND_ACK frames. A peer announcing a
// different version is a protocol violation.
const protocolVersion = byte(1)

const controlFrameSize = 2 // tag + version

type frame struct {
	tag     byte
	version byte   // control frames only
	payload []byte // data frames only
}

func encodeControl(tag byte) []byte {
	return []byte{tag, protocolVersion}
}

func encodeData(p []byte) []byte {
	buf := make([]byte, len(p)+1)
	buf[0] = tagData
	copy(buf[1:], p)
	return buf
}

func parseFrame(raw []byte) (frame, error) {
	if len(raw) == 0 {
		return frame{}, protocolErrorf("empty frame")
	}
	switch raw[0] {
	case tagData:
		return frame{tag: tagData, payload: raw[1:]}, nil
	case tagBind, tagBindAck:
		if len(raw) != controlFrameSize {
			return frame{}, protocolErrorf("control frame length %d, want %d", len(raw), controlFrameSize)
		}
		return frame{tag: raw[0], version: raw[1]}, nil
	default:
		return frame{}, protocolErrorf("unknown frame tag 0x%02x", raw[0])
	}
}
