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

// Package handshake drives the TLS handshake for both roles with the
// original's bounded retry loop, re-expressed around crypto/tls's
// synchronous Handshake() rather than a manual connect/accept state
// machine.
package handshake

import (
	"crypto/tls"
	"net"
	"time"

	liberr "github.com/nabbar/golib/errors"
	"github.com/sabouaram/syncd/internal/tlsconf"
	"github.com/sabouaram/syncd/internal/transport"
)

const minPkgHandshake = liberr.MinAvailable + 300

const (
	ErrHandshakeFailed liberr.CodeError = iota + minPkgHandshake
	ErrCertificateMissing
)

func init() {
	liberr.RegisterIdFctMessage(ErrHandshakeFailed, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrHandshakeFailed:
		return "tls handshake did not complete within its retry budget"
	case ErrCertificateMissing:
		return "peer presented no certificate"
	}
	return ""
}

// MaxConnectionRetryCount bounds client_handshake's retry loop (§4.D).
const MaxConnectionRetryCount = 3

// MaxAcceptRetries bounds server_handshake's retry loop (§4.D).
const MaxAcceptRetries = 5

// Client performs the client-side handshake over an already-connected
// net.Conn, retrying up to MaxConnectionRetryCount times on a transport
// timeout, then requires a verified peer certificate.
func Client(conn net.Conn, cfg *tls.Config) (*tls.Conn, liberr.Error) {
	tlsConn := tls.Client(conn, cfg)

	var lastErr error
	for attempt := 0; attempt <= MaxConnectionRetryCount; attempt++ {
		if err := tlsConn.SetDeadline(time.Now().Add(transport.PollTimeout)); err != nil {
			return nil, tlsconf.ErrTlsInitError.Error(err)
		}

		lastErr = tlsConn.Handshake()
		if lastErr == nil {
			break
		}

		if ne, ok := lastErr.(net.Error); !ok || !ne.Timeout() {
			return nil, ErrHandshakeFailed.Error(lastErr)
		}
	}

	if lastErr != nil {
		return nil, ErrHandshakeFailed.Error(lastErr)
	}

	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, ErrCertificateMissing.Error()
	}
	if !state.HandshakeComplete {
		return nil, tlsconf.ErrCertificateRejected.Error()
	}

	_ = tlsConn.SetDeadline(time.Time{})
	return tlsConn, nil
}

// Server performs the server-side handshake over an accepted net.Conn,
// retrying up to MaxAcceptRetries times on a transport timeout.
func Server(conn net.Conn, cfg *tls.Config) (*tls.Conn, liberr.Error) {
	tlsConn := tls.Server(conn, cfg)

	var lastErr error
	for attempt := 0; attempt <= MaxAcceptRetries; attempt++ {
		if err := tlsConn.SetDeadline(time.Now().Add(transport.PollTimeout)); err != nil {
			return nil, tlsconf.ErrTlsInitError.Error(err)
		}

		lastErr = tlsConn.Handshake()
		if lastErr == nil {
			break
		}

		if ne, ok := lastErr.(net.Error); !ok || !ne.Timeout() {
			return nil, ErrHandshakeFailed.Error(lastErr)
		}
	}

	if lastErr != nil {
		return nil, ErrHandshakeFailed.Error(lastErr)
	}

	_ = tlsConn.SetDeadline(time.Time{})
	return tlsConn, nil
}
