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

// Package resolver is the client-side connection resolver (§4.E): it
// resolves a textual host to a list of addresses, IPv4-preferred, and
// connects to the first one that succeeds within the connect timeout.
package resolver

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	liberr "github.com/nabbar/golib/errors"
)

const minPkgResolver = liberr.MinAvailable + 400

const (
	ErrConnectTimeout liberr.CodeError = iota + minPkgResolver
	ErrConnectionRefused
	ErrConnectionFailed
)

func init() {
	liberr.RegisterIdFctMessage(ErrConnectTimeout, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrConnectTimeout:
		return "connect did not complete within the connect timeout"
	case ErrConnectionRefused:
		return "connection refused by the remote host"
	case ErrConnectionFailed:
		return "no resolved address accepted a connection"
	}
	return ""
}

// ConnectTimeout bounds the asynchronous connect-completion wait (§4.E).
const ConnectTimeout = 10 * time.Second

// Dial resolves host and connects to it on port, preferring IPv4 addresses
// and trying each resolved address in order until one succeeds.
func Dial(ctx context.Context, host string, port uint16) (net.Conn, liberr.Error) {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, ErrConnectionFailed.Error(err)
	}
	if len(addrs) == 0 {
		return nil, ErrConnectionFailed.Error()
	}

	sort.SliceStable(addrs, func(i, j int) bool {
		return addrs[i].IP.To4() != nil && addrs[j].IP.To4() == nil
	})

	dialer := net.Dialer{}

	var lastErr error
	for _, a := range addrs {
		target := net.JoinHostPort(a.IP.String(), fmt.Sprintf("%d", port))

		conn, err := dialer.DialContext(ctx, "tcp", target)
		if err == nil {
			return conn, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, ErrConnectTimeout.Error(ctx.Err())
		}

		if opErr, ok := err.(*net.OpError); ok && opErr.Op == "dial" {
			if sysErr, ok := opErr.Err.(interface{ Timeout() bool }); ok && sysErr.Timeout() {
				continue
			}
		}
	}

	if lastErr != nil {
		if ne, ok := lastErr.(net.Error); ok && ne.Timeout() {
			return nil, ErrConnectTimeout.Error(lastErr)
		}
		if isRefused(lastErr) {
			return nil, ErrConnectionRefused.Error(lastErr)
		}
	}

	return nil, ErrConnectionFailed.Error(lastErr)
}

func isRefused(err error) bool {
	opErr, ok := err.(*net.OpError)
	if !ok {
		return false
	}
	return opErr.Err != nil && strings.Contains(opErr.Err.Error(), "refused")
}
