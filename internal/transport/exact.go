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

package transport

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"time"

	liberr "github.com/nabbar/golib/errors"
)

// MaxReadRetries and MaxWriteRetries bound the number of WANT_READ/
// WANT_WRITE-equivalent retry cycles a single ReadExact/WriteExact call will
// absorb before giving up with ErrRetryExhausted.
const (
	MaxReadRetries  = 5
	MaxWriteRetries = 5
)

// PollTimeout is the per-attempt deadline applied to each retry cycle; the
// original poll(2)-on-WANT_READ/WANT_WRITE timeout, expressed here as a
// connection deadline since crypto/tls.Conn has no notion of a non-blocking
// partial handshake state to poll on directly.
const PollTimeout = 5 * time.Second

// ReadExact reads exactly len(buf) bytes from conn, retrying up to
// MaxReadRetries times on a deadline timeout before giving up. A clean
// close from the peer before len(buf) bytes have arrived is reported as
// ErrPeerClosed; any other I/O error is ErrTransportError.
func ReadExact(conn net.Conn, buf []byte) liberr.Error {
	var (
		read    int
		retries int
	)

	for read < len(buf) {
		if err := conn.SetReadDeadline(time.Now().Add(PollTimeout)); err != nil {
			return ErrTransportError.Error(err)
		}

		n, err := conn.Read(buf[read:])
		read += n

		if err == nil {
			continue
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			retries++
			if retries > MaxReadRetries {
				return ErrRetryExhausted.Error(err)
			}
			continue
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			if read == len(buf) {
				break
			}
			return ErrPeerClosed.Error(err)
		}

		return ErrTransportError.Error(err)
	}

	return nil
}

// WriteExact writes all of buf to conn, retrying on deadline timeouts up to
// MaxWriteRetries times. The whole buffer is guaranteed written on a nil
// return, satisfying the "frame never transmitted partially" invariant.
func WriteExact(conn net.Conn, buf []byte) liberr.Error {
	var (
		written int
		retries int
	)

	for written < len(buf) {
		if err := conn.SetWriteDeadline(time.Now().Add(PollTimeout)); err != nil {
			return ErrTransportError.Error(err)
		}

		n, err := conn.Write(buf[written:])
		written += n

		if err == nil {
			continue
		}

		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			retries++
			if retries > MaxWriteRetries {
				return ErrRetryExhausted.Error(err)
			}
			continue
		}

		return ErrTransportError.Error(err)
	}

	return nil
}

// BidirectionalShutdown performs the two-step TLS close: it closes the
// connection, which drives crypto/tls's own close_notify exchange, and
// tolerates the single "connection reset"-class error that a peer's
// simultaneous close can legitimately produce, logging it via logFn instead
// of surfacing it as a failure.
func BidirectionalShutdown(conn *tls.Conn, logFn func(msg string)) liberr.Error {
	err := conn.Close()
	if err == nil {
		return nil
	}

	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		if logFn != nil {
			logFn("tls shutdown: peer already closed, treating as clean: " + err.Error())
		}
		return nil
	}

	return ErrTransportError.Error(err)
}
