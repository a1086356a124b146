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

// Package tlsconf is the TLS context factory: it builds a process-wide,
// read-only *tls.Config per role (client, server) enforcing the PFS-only
// cipher policy, from a validated configuration value.
package tlsconf

import "github.com/nabbar/golib/errors"

const minPkgTLSConf = errors.MinAvailable + 200

const (
	ErrTlsInitError errors.CodeError = iota + minPkgTLSConf
	ErrCertificateRejected
	ErrFileStat
	ErrFileRead
	ErrFileEmpty
	ErrCertAppend
	ErrKeyPairLoad
)

func init() {
	errors.RegisterIdFctMessage(ErrTlsInitError, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case ErrTlsInitError:
		return "tls context initialization failed"
	case ErrCertificateRejected:
		return "peer certificate failed verification"
	case ErrFileStat:
		return "cannot stat pem file"
	case ErrFileRead:
		return "cannot read pem file"
	case ErrFileEmpty:
		return "pem file is empty"
	case ErrCertAppend:
		return "cannot append pem content to certificate pool"
	case ErrKeyPairLoad:
		return "cannot load x509 key pair"
	}

	return ""
}
