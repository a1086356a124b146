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

package tlsconf

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"os"

	liberr "github.com/nabbar/golib/errors"

	tlsaut "github.com/nabbar/golib/certificates/auth"
	tlsca "github.com/nabbar/golib/certificates/ca"
	tlscrt "github.com/nabbar/golib/certificates/certs"
	tlscpr "github.com/nabbar/golib/certificates/cipher"
	tlscrv "github.com/nabbar/golib/certificates/curves"
	tlsvrs "github.com/nabbar/golib/certificates/tlsversion"
)

// pfsCipherSuites is the TLS 1.2 cipher suite allow-list enforcing the PFS-
// only policy described by SPEC_FULL.md §6's OpenSSL cipher string: ECDHE
// key exchange only, ordered strongest-first, drawn from the cipher
// package's own catalogue rather than a private list of tls package
// constants. TLS 1.3 suites need no filtering here since every TLS 1.3
// suite is PFS by construction.
func pfsCipherSuites() []uint16 {
	pfs := []tlscpr.Cipher{
		tlscpr.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tlscpr.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		tlscpr.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		tlscpr.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		tlscpr.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		tlscpr.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		tlscpr.TLS_AES_256_GCM_SHA384,
		tlscpr.TLS_AES_128_GCM_SHA256,
		tlscpr.TLS_CHACHA20_POLY1305_SHA256,
	}

	out := make([]uint16, 0, len(pfs))
	for _, c := range pfs {
		out = append(out, c.Uint16())
	}
	return out
}

// pfsCurves is the ECDHE curve preference order: X25519 first for
// performance, then the NIST curves in descending strength.
func pfsCurves() []tls.CurveID {
	order := []tlscrv.Curves{tlscrv.X25519, tlscrv.P256, tlscrv.P384, tlscrv.P521}
	out := make([]tls.CurveID, 0, len(order))
	for _, c := range order {
		out = append(out, tls.CurveID(c.Uint16()))
	}
	return out
}

// VerifyDepth bounds the peer certificate chain length the client will
// accept, mirroring the original context factory's SSL_CTX_set_verify_depth.
const VerifyDepth = 32

func checkPEMFile(path string) liberr.Error {
	if path == "" {
		return ErrFileEmpty.Error()
	}

	if _, err := os.Stat(path); err != nil {
		return ErrFileStat.Error(err)
	}

	/* #nosec */
	b, err := os.ReadFile(path)
	if err != nil {
		return ErrFileRead.Error(err)
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ErrFileEmpty.Error()
	}

	return nil
}

// loadCAPool reads a PEM file of trust anchors through certificates/ca,
// appending every certificate it finds to pool.
func loadCAPool(path string, pool *x509.CertPool) liberr.Error {
	if err := checkPEMFile(path); err != nil {
		return err
	}

	pem, err := os.ReadFile(path)
	if err != nil {
		return ErrFileRead.Error(err)
	}

	cert, e := tlsca.Parse(string(pem))
	if e != nil {
		return ErrCertAppend.Error(e)
	}

	cert.AppendPool(pool)
	return nil
}

// ServerParams configures the server-role TLS context (§4.C).
type ServerParams struct {
	CertificateChainFile string
	PrivateKeyFile       string
	PrivateKeyPassword   string
	ClientCAFile         string
	RequireClientCert    bool
}

// NewServerConfig builds the process-wide server *tls.Config: it loads the
// certificate chain and private key through certificates/certs (decrypting
// the key with PrivateKeyPassword first when the PEM block is encrypted),
// sets the PFS cipher and curve policy from certificates/cipher and
// certificates/curves, enables TLS 1.2 as the floor, and — when
// RequireClientCert is set — requires and verifies a client certificate
// against ClientCAFile via certificates/ca and certificates/auth.
func NewServerConfig(p ServerParams) (*tls.Config, liberr.Error) {
	if err := checkPEMFile(p.CertificateChainFile); err != nil {
		return nil, ErrTlsInitError.Error(err)
	}
	if err := checkPEMFile(p.PrivateKeyFile); err != nil {
		return nil, ErrTlsInitError.Error(err)
	}

	keyPEM, err := os.ReadFile(p.PrivateKeyFile)
	if err != nil {
		return nil, ErrFileRead.Error(err)
	}

	keyPEM, err = decryptPEMKey(keyPEM, p.PrivateKeyPassword)
	if err != nil {
		return nil, ErrKeyPairLoad.Error(err)
	}

	pair, e := tlscrt.ParsePair(string(keyPEM), p.CertificateChainFile)
	if e != nil {
		return nil, ErrKeyPairLoad.Error(e)
	}

	cfg := &tls.Config{
		Certificates:             []tls.Certificate{pair.TLS()},
		MinVersion:               tlsvrs.VersionTLS12.Uint16(),
		CipherSuites:             pfsCipherSuites(),
		CurvePreferences:         pfsCurves(),
		PreferServerCipherSuites: true,
	}

	if p.RequireClientCert {
		pool := x509.NewCertPool()
		if err := loadCAPool(p.ClientCAFile, pool); err != nil {
			return nil, err
		}

		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.ClientAuthType(tlsaut.RequireAndVerifyClientCert)
	}

	return cfg, nil
}

// ClientParams configures the client-role TLS context (§4.C).
type ClientParams struct {
	ServerName  string
	CATrustFile string
	CATrustDir  string
}

// NewClientConfig builds the process-wide client *tls.Config: it installs
// the CA trust material through certificates/ca, enables peer verification,
// enforces the PFS cipher and curve policy from certificates/cipher and
// certificates/curves, and a verify depth equivalent via
// VerifyPeerCertificate.
func NewClientConfig(p ClientParams) (*tls.Config, liberr.Error) {
	pool := x509.NewCertPool()

	if p.CATrustFile != "" {
		if err := loadCAPool(p.CATrustFile, pool); err != nil {
			return nil, err
		}
	}

	if p.CATrustDir != "" {
		entries, err := os.ReadDir(p.CATrustDir)
		if err != nil {
			return nil, ErrFileStat.Error(err)
		}

		for _, ent := range entries {
			if ent.IsDir() {
				continue
			}

			_ = loadCAPool(p.CATrustDir+"/"+ent.Name(), pool)
		}
	}

	cfg := &tls.Config{
		ServerName:       p.ServerName,
		RootCAs:          pool,
		MinVersion:       tlsvrs.VersionTLS12.Uint16(),
		CipherSuites:     pfsCipherSuites(),
		CurvePreferences: pfsCurves(),
		VerifyPeerCertificate: func(_ [][]byte, verifiedChains [][]*x509.Certificate) error {
			for _, chain := range verifiedChains {
				if len(chain) > VerifyDepth {
					return ErrCertificateRejected.Error()
				}
			}
			return nil
		},
	}

	return cfg, nil
}
