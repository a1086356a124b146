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

package server

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"

	"github.com/sabouaram/syncd/internal/archivebuild"
	"github.com/sabouaram/syncd/internal/handshake"
	"github.com/sabouaram/syncd/internal/logging"
	"github.com/sabouaram/syncd/internal/transport"
	"github.com/sabouaram/syncd/internal/validate"
	"github.com/sabouaram/syncd/internal/wire"
)

// firstByteTimeout bounds how long a worker waits for the client to send
// the first byte of an UPGRADE_REQUEST after the handshake completes.
const firstByteTimeout = 30 * time.Second

// streamChunkSize is the largest single write used to stream an archive
// payload back to the client, the Go equivalent of the original's
// bulk_pread chunking.
const streamChunkSize = 1 << 20

// handle drives one accepted connection through the full request/response
// exchange (§4.F, §4.G), always recovering from a panic so one bad
// connection cannot take the acceptor down.
func (s *Server) handle(ctx context.Context, raw net.Conn, tlsCfg *tls.Config, connID uint64) {
	addActive(s.active, 1)
	defer addActive(s.active, -1)

	log := logging.WithConn(s.log, connID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("worker panic", nil)
		}
	}()

	tlsConn, err := handshake.Server(raw, tlsCfg)
	if err != nil {
		log.Warning("handshake failed", err)
		_ = raw.Close()
		return
	}
	defer func() {
		_ = transport.BidirectionalShutdown(tlsConn, func(msg string) { log.Info(msg, nil) })
	}()

	if err := tlsConn.SetReadDeadline(time.Now().Add(firstByteTimeout)); err != nil {
		log.Warning("set deadline failed", err)
		return
	}

	if failErr := s.serveRequest(ctx, tlsConn, log); failErr != nil {
		log.Warning("request failed", failErr)
		s.sendFailure(tlsConn, failErr)
	}
}

func (s *Server) serveRequest(ctx context.Context, conn net.Conn, log liblog.Logger) liberr.Error {
	buf := make([]byte, wire.HeaderLen+wire.UpgradeRequestBodyLen)

	if err := transport.ReadExact(conn, buf[:wire.HeaderLen]); err != nil {
		return err
	}

	hdr, err := wire.DecodeHeader(buf[:wire.HeaderLen])
	if err != nil {
		return err
	}
	if hdr.Type != wire.PacketUpgradeRequest {
		return wire.ErrUnknownPacketType.Error()
	}

	if err := transport.ReadExact(conn, buf[wire.HeaderLen:]); err != nil {
		return err
	}

	body, err := wire.DecodeUpgradeRequestBody(buf[wire.HeaderLen:])
	if err != nil {
		return err
	}

	req := validate.Request{
		ConfigSet:       body.ConfigSet,
		Compression:     body.Compression,
		PackageManager:  body.PackageManager,
		LastUpgradeTime: body.LastUpgradeTime,
	}

	if err := validate.Validate(req, s.supported, time.Now()); err != nil {
		return err
	}

	fileName := archivebuild.ConfigSetFileName(req.ConfigSet)
	absPath, err := validate.ConfigSetPath(s.cfg.ConfigurationSetsDir, req.ConfigSet, fileName)
	if err != nil {
		return err
	}
	req.ConfigSetAbsPath = absPath

	tokens, err := archivebuild.ReadConfigSet(req.ConfigSetAbsPath)
	if err != nil {
		return err
	}

	if err := archivebuild.FetchPackages(ctx, req.PackageManager, s.cfg.PkgCacheDir, tokens); err != nil {
		return err
	}

	archivePath := filepath.Join(s.cfg.ArchivesDir, "archive-"+strconv.FormatUint(uint64(req.ConfigSet), 10))

	f, e := os.Create(archivePath)
	if e != nil {
		return archivebuild.ErrArchiveCreate.Error(e)
	}

	if err := archivebuild.BuildArchive(f, s.cfg.PkgCacheDir, req.Compression); err != nil {
		_ = f.Close()
		return err
	}
	_ = f.Close()

	return s.streamResponse(conn, archivePath)
}

func (s *Server) streamResponse(conn net.Conn, archivePath string) liberr.Error {
	f, e := os.Open(archivePath)
	if e != nil {
		return archivebuild.ErrArchiveCreate.Error(e)
	}
	defer func() { _ = f.Close() }()

	info, e := f.Stat()
	if e != nil {
		return archivebuild.ErrArchiveCreate.Error(e)
	}

	hdr := make([]byte, wire.UpgradeResponseHeaderLen)
	if err := wire.EncodeUpgradeResponseHeader(hdr, uint64(info.Size())); err != nil {
		return err
	}
	if err := transport.WriteExact(conn, hdr); err != nil {
		return err
	}

	chunk := make([]byte, streamChunkSize)
	for {
		n, e := f.Read(chunk)
		if n > 0 {
			if err := transport.WriteExact(conn, chunk[:n]); err != nil {
				return err
			}
		}
		if e == io.EOF {
			break
		}
		if e != nil {
			return archivebuild.ErrArchiveWrite.Error(e)
		}
	}

	s.readStatusBestEffort(conn)

	return nil
}

// readStatusBestEffort reads the client's UPGRADE_STATUS frame, per the
// SPEC_FULL.md §9 decision that the client sends one after persisting the
// archive; a slow or absent status never blocks shutdown.
func (s *Server) readStatusBestEffort(conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(transport.PollTimeout))

	buf := make([]byte, wire.HeaderLen+wire.UpgradeStatusBodyLen)
	if err := transport.ReadExact(conn, buf); err != nil {
		return
	}

	if hdr, err := wire.DecodeHeader(buf[:wire.HeaderLen]); err == nil && hdr.Type == wire.PacketUpgradeStatus {
		_, _ = wire.DecodeUpgradeStatusBody(buf[wire.HeaderLen:])
	}
}

func (s *Server) sendFailure(conn net.Conn, cause liberr.Error) {
	code := wire.CodeServerInternal // fallback when cause carries no mapped code
	if wc, ok := wireCodeOf(cause); ok {
		code = wc
	}

	buf := make([]byte, wire.HeaderLen+wire.ProtoFailureBodyLen)
	if err := wire.EncodeProtoFailure(buf, code); err != nil {
		return
	}

	_ = transport.WriteExact(conn, buf)
}

// addActive applies delta to v with a compare-and-swap retry loop: Value[T]
// exposes Load/Store/CompareAndSwap but no Add, and a bare Store(Load()+delta)
// pair races under concurrent handle/defer calls from different connections.
func addActive(v libatm.Value[int64], delta int64) {
	for {
		old := v.Load()
		if v.CompareAndSwap(old, old+delta) {
			return
		}
	}
}

// upstreamWireCode maps validator and archive-builder error codes — both
// packages sit upstream of wire and so cannot be folded into wire's own
// code table without an import cycle — onto the §7 wire code they collapse
// to on the PROTO_FAILURE path.
var upstreamWireCode = map[liberr.CodeError]uint16{
	validate.ErrUnknownConfigSet:      wire.CodeUnknownConfigSet,
	validate.ErrConfigSetNotFile:      wire.CodeUnknownConfigSet,
	validate.ErrUnknownCompression:    wire.CodeUnknownComprType,
	validate.ErrUnknownPackageManager: wire.CodeUnknownPkgMgr,
	validate.ErrFutureUpgradeTime:     wire.CodeMalformedPacket,
	archivebuild.ErrConfigSetRead:     wire.CodeServerInternal,
	archivebuild.ErrConfigSetToken:    wire.CodeServerInternal,
	archivebuild.ErrPkgMgrInvoke:      wire.CodeServerInternal,
	archivebuild.ErrPkgMgrExitStatus:  wire.CodeServerInternal,
	archivebuild.ErrArchiveCreate:     wire.CodeServerInternal,
	archivebuild.ErrArchiveWrite:      wire.CodeServerInternal,
}

func wireCodeOf(err liberr.Error) (uint16, bool) {
	if err == nil {
		return 0, false
	}
	for _, c := range err.GetParentCode() {
		if wc, ok := wire.WireCode(c); ok {
			return wc, true
		}
		if wc, ok := upstreamWireCode[c]; ok {
			return wc, true
		}
	}
	return 0, false
}
