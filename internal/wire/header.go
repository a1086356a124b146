/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package wire implements the frame codec: pure encode/decode functions for
// the fixed 4-byte frame header and the typed bodies carried by each packet
// type. Nothing in this package performs I/O.
package wire

import (
	"encoding/binary"

	"github.com/nabbar/golib/errors"
)

// HeaderLen is the fixed size, in bytes, of every frame header.
const HeaderLen = 4

// ProtoVersion is the only protocol version this codec understands.
const ProtoVersion uint8 = 1

// PacketType identifies the body layout that follows a frame header.
type PacketType uint16

const (
	// PacketUnknown is never produced by Encode; DecodeHeader returns it
	// alongside ErrUnknownPacketType when the wire value matches no case.
	PacketUnknown PacketType = 0

	PacketUpgradeRequest  PacketType = 1
	PacketUpgradeResponse PacketType = 2
	PacketUpgradeStatus   PacketType = 3
	PacketProtoFailure    PacketType = 4
)

func (t PacketType) valid() bool {
	switch t {
	case PacketUpgradeRequest, PacketUpgradeResponse, PacketUpgradeStatus, PacketProtoFailure:
		return true
	default:
		return false
	}
}

func (t PacketType) String() string {
	switch t {
	case PacketUpgradeRequest:
		return "UPGRADE_REQUEST"
	case PacketUpgradeResponse:
		return "UPGRADE_RESPONSE"
	case PacketUpgradeStatus:
		return "UPGRADE_STATUS"
	case PacketProtoFailure:
		return "PROTO_FAILURE"
	default:
		return "UNKNOWN_PACKET_TYPE"
	}
}

// Header is the decoded form of the 4-byte frame header.
type Header struct {
	Version uint8
	Flags   uint16 // 12 significant bits, always zero in this protocol version
	Type    PacketType
}

// EncodeHeader writes the 4-byte header for a packet type into buf[:4].
// buf must be at least HeaderLen bytes; the header region is zeroed first so
// reserved bits are deterministically zero regardless of buf's prior
// contents, matching the original codec's memset-then-set discipline.
func EncodeHeader(buf []byte, t PacketType, flags uint16) errors.Error {
	if len(buf) < HeaderLen {
		return ErrMalformedPacket.Error()
	}

	for i := 0; i < HeaderLen; i++ {
		buf[i] = 0
	}

	buf[0] = (ProtoVersion << 4) | byte((flags>>8)&0x0F)
	buf[1] = byte(flags & 0xFF)
	binary.BigEndian.PutUint16(buf[2:4], uint16(t))

	return nil
}

// DecodeHeader parses the 4-byte header at buf[:4].
func DecodeHeader(buf []byte) (Header, errors.Error) {
	if len(buf) < HeaderLen {
		return Header{}, ErrMalformedPacket.Error()
	}

	ver := buf[0] >> 4
	if ver != ProtoVersion {
		return Header{}, ErrUnknownProtoVer.Error()
	}

	flags := (uint16(buf[0]&0x0F) << 8) | uint16(buf[1])
	if flags != 0 {
		return Header{}, ErrUnknownFlag.Error()
	}

	t := PacketType(binary.BigEndian.Uint16(buf[2:4]))
	if !t.valid() {
		return Header{}, ErrUnknownPacketType.Error()
	}

	return Header{Version: ver, Flags: flags, Type: t}, nil
}
