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

import (
	"strings"

	"github.com/nabbar/golib/errors"
)

// CompressionType is the archive format requested for an UPGRADE_RESPONSE
// payload. Not every server supports every value; §ErrUnknownComprType is
// raised by the validator for values outside the server's declared subset.
type CompressionType uint8

const (
	CompressionNone   CompressionType = 0
	CompressionTarGz  CompressionType = 1
	CompressionTarBz2 CompressionType = 2
	CompressionTarXz  CompressionType = 3
	CompressionRar    CompressionType = 4
	CompressionZip    CompressionType = 5
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionTarGz:
		return "tar.gz"
	case CompressionTarBz2:
		return "tar.bz2"
	case CompressionTarXz:
		return "tar.xz"
	case CompressionRar:
		return "rar"
	case CompressionZip:
		return "zip"
	default:
		return "unknown"
	}
}

// InRange reports whether c is one of the six enumerated values, independent
// of whether any given server supports it.
func (c CompressionType) InRange() bool {
	return c <= CompressionZip
}

// PackageManager is the external tool used to resolve and download
// packages.
type PackageManager uint8

const (
	PackageManagerDpkg  PackageManager = 0
	PackageManagerTarXz PackageManager = 1
)

func (p PackageManager) String() string {
	switch p {
	case PackageManagerDpkg:
		return "dpkg"
	case PackageManagerTarXz:
		return "tar.xz"
	default:
		return "unknown"
	}
}

func (p PackageManager) InRange() bool {
	return p == PackageManagerDpkg || p == PackageManagerTarXz
}

// UpgradeRequestBodyLen is the size, in bytes, of the UPGRADE_REQUEST body
// that follows the 4-byte header.
const UpgradeRequestBodyLen = 8

// UpgradeRequest is the decoded body of an UPGRADE_REQUEST frame.
type UpgradeRequest struct {
	ConfigSet       uint16
	Compression     CompressionType
	PackageManager  PackageManager
	LastUpgradeTime uint32
}

// EncodeUpgradeRequest writes the full frame (header + 8-byte body) into buf,
// which must be at least HeaderLen+UpgradeRequestBodyLen bytes.
func EncodeUpgradeRequest(buf []byte, r UpgradeRequest) errors.Error {
	if len(buf) < HeaderLen+UpgradeRequestBodyLen {
		return ErrMalformedPacket.Error()
	}
	if err := EncodeHeader(buf, PacketUpgradeRequest, 0); err != nil {
		return err
	}

	buf[4] = byte(r.ConfigSet >> 8)
	buf[5] = byte(r.ConfigSet)
	buf[6] = byte(r.Compression)
	buf[7] = byte(r.PackageManager)
	buf[8] = byte(r.LastUpgradeTime >> 24)
	buf[9] = byte(r.LastUpgradeTime >> 16)
	buf[10] = byte(r.LastUpgradeTime >> 8)
	buf[11] = byte(r.LastUpgradeTime)

	return nil
}

// DecodeUpgradeRequestBody decodes the 8-byte body that follows a header
// already confirmed to be PacketUpgradeRequest.
func DecodeUpgradeRequestBody(body []byte) (UpgradeRequest, errors.Error) {
	if len(body) < UpgradeRequestBodyLen {
		return UpgradeRequest{}, ErrMalformedPacket.Error()
	}

	return UpgradeRequest{
		ConfigSet:       uint16(body[0])<<8 | uint16(body[1]),
		Compression:     CompressionType(body[2]),
		PackageManager:  PackageManager(body[3]),
		LastUpgradeTime: uint32(body[4])<<24 | uint32(body[5])<<16 | uint32(body[6])<<8 | uint32(body[7]),
	}, nil
}

// UpgradeResponseHeaderLen is the size of the header frame preceding the
// streamed archive payload: the 4-byte frame header plus an 8-byte length.
const UpgradeResponseHeaderLen = HeaderLen + 8

// EncodeUpgradeResponseHeader writes the header frame announcing a streamed
// payload of the given length. The payload itself is not part of this
// function's responsibility; callers stream it separately.
func EncodeUpgradeResponseHeader(buf []byte, length uint64) errors.Error {
	if len(buf) < UpgradeResponseHeaderLen {
		return ErrMalformedPacket.Error()
	}
	if err := EncodeHeader(buf, PacketUpgradeResponse, 0); err != nil {
		return err
	}

	for i := 0; i < 8; i++ {
		buf[4+i] = byte(length >> uint(8*(7-i)))
	}

	return nil
}

// DecodeUpgradeResponseLength decodes the 8-byte length that follows a
// header already confirmed to be PacketUpgradeResponse.
func DecodeUpgradeResponseLength(body []byte) (uint64, errors.Error) {
	if len(body) < 8 {
		return 0, ErrMalformedPacket.Error()
	}

	var length uint64
	for i := 0; i < 8; i++ {
		length = length<<8 | uint64(body[i])
	}

	return length, nil
}

// ProtoFailureBodyLen is the size of the PROTO_FAILURE body.
const ProtoFailureBodyLen = 2

// EncodeProtoFailure writes a full PROTO_FAILURE frame for the given wire
// error code.
func EncodeProtoFailure(buf []byte, code uint16) errors.Error {
	if len(buf) < HeaderLen+ProtoFailureBodyLen {
		return ErrMalformedPacket.Error()
	}
	if err := EncodeHeader(buf, PacketProtoFailure, 0); err != nil {
		return err
	}

	buf[4] = byte(code >> 8)
	buf[5] = byte(code)

	return nil
}

// DecodeProtoFailureBody decodes the 2-byte error code that follows a header
// already confirmed to be PacketProtoFailure.
func DecodeProtoFailureBody(body []byte) (uint16, errors.Error) {
	if len(body) < ProtoFailureBodyLen {
		return 0, ErrMalformedPacket.Error()
	}
	return uint16(body[0])<<8 | uint16(body[1]), nil
}

// UpgradeStatusBodyLen is the size of the UPGRADE_STATUS body.
const UpgradeStatusBodyLen = 2

// StatusSuccess is the status code the client driver sends after it has
// persisted the streamed archive successfully (see SPEC_FULL.md §9, the
// UPGRADE_STATUS open question).
const StatusSuccess uint16 = 0

// EncodeUpgradeStatus writes a full UPGRADE_STATUS frame.
func EncodeUpgradeStatus(buf []byte, status uint16) errors.Error {
	if len(buf) < HeaderLen+UpgradeStatusBodyLen {
		return ErrMalformedPacket.Error()
	}
	if err := EncodeHeader(buf, PacketUpgradeStatus, 0); err != nil {
		return err
	}

	buf[4] = byte(status >> 8)
	buf[5] = byte(status)

	return nil
}

// DecodeUpgradeStatusBody decodes the 2-byte status code that follows a
// header already confirmed to be PacketUpgradeStatus.
func DecodeUpgradeStatusBody(body []byte) (uint16, errors.Error) {
	if len(body) < UpgradeStatusBodyLen {
		return 0, ErrMalformedPacket.Error()
	}
	return uint16(body[0])<<8 | uint16(body[1]), nil
}

// ParseCompressionType parses a case-insensitive textual compression name,
// used by the config loader (SPEC_FULL.md §4.K) when reading
// SupportedCompression / PreferredCompression from a config file.
func ParseCompressionType(s string) (CompressionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return CompressionNone, true
	case "tar.gz", "targz", "tar_gz":
		return CompressionTarGz, true
	case "tar.bz2", "tarbz2", "tar_bz2":
		return CompressionTarBz2, true
	case "tar.xz", "tarxz", "tar_xz":
		return CompressionTarXz, true
	case "rar":
		return CompressionRar, true
	case "zip":
		return CompressionZip, true
	default:
		return 0, false
	}
}

// ParsePackageManager parses a case-insensitive textual package manager
// name.
func ParsePackageManager(s string) (PackageManager, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dpkg", "apt":
		return PackageManagerDpkg, true
	case "tar.xz", "tarxz", "tar_xz":
		return PackageManagerTarXz, true
	default:
		return 0, false
	}
}
