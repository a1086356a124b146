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

// Package client drives the protocol from the requesting side (§4.J): it
// connects, sends one UPGRADE_REQUEST, and streams the UPGRADE_RESPONSE
// payload to disk.
package client

import "github.com/nabbar/golib/errors"

const minPkgClient = errors.MinAvailable + 800

const (
	ErrUnexpectedFrame errors.CodeError = iota + minPkgClient
	ErrServerFailure
	ErrDestinationExists
	ErrDestinationWrite
	ErrShortPayload
)

func init() {
	errors.RegisterIdFctMessage(ErrUnexpectedFrame, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrUnexpectedFrame:
		return "server replied with an unexpected packet type"
	case ErrServerFailure:
		return "server reported a PROTO_FAILURE"
	case ErrDestinationExists:
		return "destination file already exists"
	case ErrDestinationWrite:
		return "error writing the destination file"
	case ErrShortPayload:
		return "connection closed before the announced payload length was received"
	}
	return ""
}
