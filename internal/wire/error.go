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

package wire

import "github.com/nabbar/golib/errors"

// minPkgWire is this package's error-code base. New packages in this
// repository build on errors.MinAvailable rather than colliding with the
// ranges already reserved for the teacher library's own packages.
const minPkgWire = errors.MinAvailable

const (
	ErrMalformedPacket errors.CodeError = iota + minPkgWire
	ErrUnknownProtoVer
	ErrUnknownFlag
	ErrUnknownPacketType
	ErrUnknownPkgMgr
	ErrUnknownComprType
	ErrUnknownConfigSet
	ErrServerInternal
	ErrClientInternal
)

// The §7 wire-code enumeration, exported so packages upstream of wire (which
// raise validator and archive-builder errors that collapse onto one of
// these codes) can reference the numeric value without wire importing them
// back and creating an import cycle.
const (
	CodeUnknownProtoVer   uint16 = 1
	CodeUnknownFlag       uint16 = 2
	CodeUnknownPkgMgr     uint16 = 3
	CodeUnknownComprType  uint16 = 4
	CodeUnknownConfigSet  uint16 = 5
	CodeUnknownPacketType uint16 = 6
	CodeMalformedPacket   uint16 = 7
	CodeServerInternal    uint16 = 8
	CodeClientInternal    uint16 = 9
)

// wireCode is the on-the-wire uint16 sent inside a PROTO_FAILURE body for
// each error that is ever reported to the remote peer. Not every CodeError
// above is meant to cross the wire as-is; this table is the single source
// of truth for §7's error taxonomy as it applies to this package's own
// errors — validator and archive-builder errors are mapped separately by
// their own packages' callers, since they sit upstream of wire.
var wireCode = map[errors.CodeError]uint16{
	ErrUnknownProtoVer:   CodeUnknownProtoVer,
	ErrUnknownFlag:       CodeUnknownFlag,
	ErrUnknownPkgMgr:     CodeUnknownPkgMgr,
	ErrUnknownComprType:  CodeUnknownComprType,
	ErrUnknownConfigSet:  CodeUnknownConfigSet,
	ErrUnknownPacketType: CodeUnknownPacketType,
	ErrMalformedPacket:   CodeMalformedPacket,
	ErrServerInternal:    CodeServerInternal,
	ErrClientInternal:    CodeClientInternal,
}

// WireCode returns the uint16 this error is encoded as in a PROTO_FAILURE
// body, and false if the code never crosses the wire.
func WireCode(code errors.CodeError) (uint16, bool) {
	c, ok := wireCode[code]
	return c, ok
}

// FromWireCode maps a PROTO_FAILURE body value back to its typed CodeError.
// Unknown wire values map to ErrServerInternal, the closest available
// catch-all, since §7 has no "unrecognized failure code" entry of its own.
func FromWireCode(v uint16) errors.CodeError {
	for code, w := range wireCode {
		if w == v {
			return code
		}
	}
	return ErrServerInternal
}

func init() {
	errors.RegisterIdFctMessage(ErrMalformedPacket, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrMalformedPacket:
		return "frame length or field constraints violated"
	case ErrUnknownProtoVer:
		return "header protocol version is not supported"
	case ErrUnknownFlag:
		return "header carries a reserved, unsupported flag bit"
	case ErrUnknownPacketType:
		return "unexpected or unrecognized packet type"
	case ErrUnknownPkgMgr:
		return "package manager enum value is unsupported"
	case ErrUnknownComprType:
		return "compression enum value is unsupported"
	case ErrUnknownConfigSet:
		return "configuration set was not found under the configured root"
	case ErrServerInternal:
		return "server encountered an internal error processing the request"
	case ErrClientInternal:
		return "client reported an internal failure"
	}

	return ""
}
