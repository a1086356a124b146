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

// Package server is the acceptor and bounded worker pool (§4.F, §4.G): it
// listens for TLS connections, hands each to a worker up to the configured
// concurrency limit, and drives that worker through the UPGRADE_REQUEST /
// UPGRADE_RESPONSE exchange.
package server

import "github.com/nabbar/golib/errors"

const minPkgServer = errors.MinAvailable + 700

const (
	ErrListen errors.CodeError = iota + minPkgServer
	ErrAccept
	ErrWorkerPanic
)

func init() {
	errors.RegisterIdFctMessage(ErrListen, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrListen:
		return "cannot bind the listening socket"
	case ErrAccept:
		return "error accepting an incoming connection"
	case ErrWorkerPanic:
		return "worker goroutine recovered from a panic"
	}
	return ""
}
