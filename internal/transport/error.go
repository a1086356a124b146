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

// Package transport implements the secure I/O helpers: deadline-bounded
// exact-length read/write over a TLS connection, with the retry budget and
// timeout discipline described by the request-response protocol, plus
// bidirectional TLS shutdown.
package transport

import "github.com/nabbar/golib/errors"

const minPkgTransport = errors.MinAvailable + 100

const (
	ErrTransportError errors.CodeError = iota + minPkgTransport
	ErrTransportTimeout
	ErrPeerClosed
	ErrRetryExhausted
	ErrUnexpectedEof
)

func init() {
	errors.RegisterIdFctMessage(ErrTransportError, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrTransportError:
		return "transport-level I/O error"
	case ErrTransportTimeout:
		return "transport I/O timed out waiting for readiness"
	case ErrPeerClosed:
		return "peer closed the connection mid-operation"
	case ErrRetryExhausted:
		return "retry budget exhausted without completing the operation"
	case ErrUnexpectedEof:
		return "connection ended before the framed length was satisfied"
	}

	return ""
}
