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

package client

import (
	"context"
	"io"
	"os"
	"path/filepath"

	liberr "github.com/nabbar/golib/errors"

	"github.com/sabouaram/syncd/internal/config"
	"github.com/sabouaram/syncd/internal/handshake"
	"github.com/sabouaram/syncd/internal/resolver"
	"github.com/sabouaram/syncd/internal/tlsconf"
	"github.com/sabouaram/syncd/internal/transport"
	"github.com/sabouaram/syncd/internal/wire"
)

// responseChunkSize bounds a single read while streaming the archive
// payload to disk.
const responseChunkSize = 1 << 20

// Run connects to cfg's server, performs one full upgrade exchange, and
// writes the received archive under cfg.DestinationDir. It returns the
// path written on success.
func Run(ctx context.Context, cfg *config.ClientConfig) (string, liberr.Error) {
	raw, err := resolver.Dial(ctx, cfg.ServerHost, cfg.ServerPort)
	if err != nil {
		return "", err
	}

	tlsCfg, err := tlsconf.NewClientConfig(tlsconf.ClientParams{
		ServerName:  cfg.ServerHost,
		CATrustFile: cfg.CATrustFile,
		CATrustDir:  cfg.CATrustDir,
	})
	if err != nil {
		_ = raw.Close()
		return "", err
	}

	tlsConn, err := handshake.Client(raw, tlsCfg)
	if err != nil {
		_ = raw.Close()
		return "", err
	}
	defer func() {
		_ = transport.BidirectionalShutdown(tlsConn, nil)
	}()

	compression, _ := wire.ParseCompressionType(cfg.PreferredCompression)
	pkgMgr, _ := wire.ParsePackageManager(cfg.PreferredPackageManager)

	reqBuf := make([]byte, wire.HeaderLen+wire.UpgradeRequestBodyLen)
	if err := wire.EncodeUpgradeRequest(reqBuf, wire.UpgradeRequest{
		ConfigSet:       cfg.ConfigSet,
		Compression:     compression,
		PackageManager:  pkgMgr,
		LastUpgradeTime: cfg.LastUpgradeTime,
	}); err != nil {
		return "", err
	}

	if err := transport.WriteExact(tlsConn, reqBuf); err != nil {
		return "", err
	}

	hdrBuf := make([]byte, wire.UpgradeResponseHeaderLen)
	if err := transport.ReadExact(tlsConn, hdrBuf[:wire.HeaderLen]); err != nil {
		return "", err
	}

	hdr, err := wire.DecodeHeader(hdrBuf[:wire.HeaderLen])
	if err != nil {
		return "", err
	}

	if hdr.Type == wire.PacketProtoFailure {
		if err := transport.ReadExact(tlsConn, hdrBuf[wire.HeaderLen:wire.HeaderLen+wire.ProtoFailureBodyLen]); err != nil {
			return "", err
		}
		code, _ := wire.DecodeProtoFailureBody(hdrBuf[wire.HeaderLen : wire.HeaderLen+wire.ProtoFailureBodyLen])
		return "", ErrServerFailure.Error(wire.FromWireCode(code).Error())
	}

	if hdr.Type != wire.PacketUpgradeResponse {
		return "", ErrUnexpectedFrame.Error()
	}

	if err := transport.ReadExact(tlsConn, hdrBuf[wire.HeaderLen:]); err != nil {
		return "", err
	}

	length, err := wire.DecodeUpgradeResponseLength(hdrBuf[wire.HeaderLen:])
	if err != nil {
		return "", err
	}

	dst := filepath.Join(cfg.DestinationDir, destinationName(cfg, compression))

	f, e := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if e != nil {
		return "", ErrDestinationExists.Error(e)
	}
	defer func() { _ = f.Close() }()

	if err := streamToFile(tlsConn, f, length); err != nil {
		return "", err
	}

	statusBuf := make([]byte, wire.HeaderLen+wire.UpgradeStatusBodyLen)
	if err := wire.EncodeUpgradeStatus(statusBuf, wire.StatusSuccess); err == nil {
		_ = transport.WriteExact(tlsConn, statusBuf)
	}

	return dst, nil
}

func streamToFile(r io.Reader, w io.Writer, length uint64) liberr.Error {
	var received uint64
	chunk := make([]byte, responseChunkSize)

	for received < length {
		want := uint64(len(chunk))
		if remain := length - received; remain < want {
			want = remain
		}

		n, e := io.ReadFull(r, chunk[:want])
		received += uint64(n)

		if e != nil {
			if e == io.ErrUnexpectedEOF || e == io.EOF {
				return ErrShortPayload.Error(e)
			}
			return ErrDestinationWrite.Error(e)
		}

		if _, e := w.Write(chunk[:n]); e != nil {
			return ErrDestinationWrite.Error(e)
		}
	}

	return nil
}

func destinationName(cfg *config.ClientConfig, compression wire.CompressionType) string {
	return "upgrade-" + compression.String() + ".archive"
}
