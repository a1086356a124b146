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
	"fmt"
	"net"

	liblog "github.com/nabbar/golib/logger"

	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"

	"github.com/sabouaram/syncd/internal/config"
	"github.com/sabouaram/syncd/internal/tlsconf"
	"github.com/sabouaram/syncd/internal/wire"
)

// Server is the acceptor: one TCP listener, a bounded pool of worker
// goroutines, and the configuration every worker reads from (§4.F).
type Server struct {
	cfg        *config.ServerConfig
	log        liblog.Logger
	tlsCfg     *tlsconf.ServerParams
	supported  map[wire.CompressionType]bool
	slots      chan struct{}
	active     libatm.Value[int64]
	nextConnID libatm.Value[uint64]
}

// New builds a Server from a validated ServerConfig; it does not yet listen.
func New(cfg *config.ServerConfig, log liblog.Logger) (*Server, liberr.Error) {
	supported, err := cfg.SupportedCompressionTypes()
	if err != nil {
		return nil, err
	}

	pwd, err := cfg.Secret().Cleartext()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg: cfg,
		log: log,
		tlsCfg: &tlsconf.ServerParams{
			CertificateChainFile: cfg.CertificateChainFile,
			PrivateKeyFile:       cfg.PrivateKeyFile,
			PrivateKeyPassword:   pwd,
			ClientCAFile:         cfg.ClientCAFile,
			RequireClientCert:    cfg.RequireClientCert,
		},
		supported:  supported,
		slots:      make(chan struct{}, cfg.MaxClientThreads),
		active:     libatm.NewValue[int64](),
		nextConnID: libatm.NewValue[uint64](),
	}

	return s, nil
}

// ActiveWorkers reports how many connections are currently being serviced,
// for a health or metrics endpoint to read.
func (s *Server) ActiveWorkers() int64 {
	return s.active.Load()
}

// Serve listens on cfg.ListenAddress:ListenPort and dispatches every
// accepted connection to a bounded worker until ctx is cancelled, at which
// point the listener is closed and Serve returns once all workers have
// drained (§4.F).
func (s *Server) Serve(ctx context.Context) liberr.Error {
	tlsConfig, err := tlsconf.NewServerConfig(*s.tlsCfg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.ListenAddress, s.cfg.ListenPort)

	ln, e := net.Listen("tcp", addr)
	if e != nil {
		return ErrListen.Error(e)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s.log.Info(fmt.Sprintf("listening on %s", addr), nil)

	for {
		conn, e := ln.Accept()
		if e != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warning("accept error", e)
			continue
		}

		select {
		case s.slots <- struct{}{}:
		case <-ctx.Done():
			_ = conn.Close()
			return nil
		}

		connID := s.nextConnID.Load() + 1
		s.nextConnID.Store(connID)

		go func() {
			defer func() { <-s.slots }()
			s.handle(ctx, conn, tlsConfig, connID)
		}()
	}
}
