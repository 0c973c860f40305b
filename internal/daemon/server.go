/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package daemon

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/nabbar/sectora/internal/kind"
	"github.com/nabbar/sectora/internal/wire"
)

// continuationTimeout bounds how long the daemon waits for a client's
// "c:cont" acknowledgment between chunks of a divided reply, so a client
// that dies mid-transfer cannot wedge the single-threaded loop forever.
const continuationTimeout = 5 * time.Second

// Server owns the daemon's Unix datagram socket and drives the
// single-threaded receive/dispatch/reply loop of spec.md §4.E.
type Server struct {
	daemon          *Daemon
	log             *logrus.Logger
	socketPath      string
	clientSocketDir string

	conn *net.UnixConn
}

// NewServer builds a Server bound to the daemon and the socket paths from
// its config.
func NewServer(d *Daemon, log *logrus.Logger, socketPath, clientSocketDir string) *Server {
	return &Server{daemon: d, log: log, socketPath: socketPath, clientSocketDir: clientSocketDir}
}

// Listen creates the socket directory (0777, so unprivileged NSS clients
// can bind their own reply sockets under it) and binds the daemon socket
// (0666), per spec.md §4.E. It must be called before Run.
func (s *Server) Listen() error {
	dir := filepath.Dir(s.socketPath)

	// MkdirAll and ListenUnixgram both apply the process umask to the
	// permissions they're given; the daemon needs the exact bits spec.md
	// mandates, so umask is cleared for the duration of socket setup.
	oldMask := unix.Umask(0)
	defer unix.Umask(oldMask)

	if err := os.MkdirAll(dir, 0o777); err != nil {
		return err
	}
	if err := os.Chmod(dir, 0o777); err != nil {
		return err
	}
	if err := os.MkdirAll(s.clientSocketDir, 0o777); err != nil {
		return err
	}
	if err := os.Chmod(s.clientSocketDir, 0o777); err != nil {
		return err
	}

	_ = os.Remove(s.socketPath)

	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: s.socketPath, Net: "unixgram"})
	if err != nil {
		return err
	}
	if err := os.Chmod(s.socketPath, 0o666); err != nil {
		_ = conn.Close()
		return err
	}

	s.conn = conn
	return nil
}

// Run performs the informational initial sector fetch, then loops receiving
// and dispatching requests until ctx is cancelled or a termination signal
// arrives. On return the socket has been unlinked.
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	if _, err := s.daemon.sectors(ctx); err != nil {
		s.log.WithError(err).Warn("initial sector fetch failed; continuing to serve")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case sig := <-sigCh:
			s.log.WithField("signal", sig.String()).Info("received shutdown signal")
		case <-stop:
		}
		_ = s.conn.Close()
	}()
	defer close(stop)

	buf := make([]byte, wire.MaxFrameSize)
	for {
		n, peer, err := s.conn.ReadFromUnix(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.WithError(err).Warn("datagram read failed")
			continue
		}
		s.handle(ctx, peer, string(buf[:n]))
	}
}

func (s *Server) close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	_ = os.Remove(s.socketPath)
}

// handle parses one client frame, dispatches it, and sends the reply back
// to peer, segmenting into divided frames if the encoded reply exceeds the
// datagram budget.
func (s *Server) handle(ctx context.Context, peer *net.UnixAddr, frame string) {
	payload, ok := strings.CutPrefix(frame, "c:")
	if !ok {
		s.log.WithField("frame", frame).Debug("dropping frame without client prefix")
		return
	}

	req, err := wire.ParseRequest(payload)
	if err != nil {
		s.log.WithError(err).Debug("malformed request frame")
		// spec.md §7: parse failures of inbound client messages are
		// try-again, not protocol violations, so the NSS client retries
		// instead of treating the lookup as a hard failure.
		s.reply(peer, errorReply(kind.New(kind.TryAgain, err.Error())))
		return
	}

	s.log.WithField("request", payload).Debug("dispatching request")
	reply := s.daemon.Handle(ctx, req)
	s.reply(peer, reply)
}

func (s *Server) reply(peer *net.UnixAddr, r wire.Reply) {
	body, err := wire.EncodeReply(r)
	if err != nil {
		body, _ = wire.EncodeReply(wire.ErrorReply{Msg: err.Error()})
	}

	frames := wire.Split(body)
	for i, f := range frames {
		if _, err := s.conn.WriteToUnix([]byte(f), peer); err != nil {
			s.log.WithError(err).Warn("reply send failed")
			return
		}
		if i == len(frames)-1 {
			break
		}
		if !s.awaitContinuation(peer) {
			s.log.Warn("client did not acknowledge continuation; abandoning reply")
			return
		}
	}
}

// awaitContinuation blocks for the client's "c:cont" acknowledgment between
// chunks of a divided reply (spec.md §4.B).
func (s *Server) awaitContinuation(peer *net.UnixAddr) bool {
	_ = s.conn.SetReadDeadline(time.Now().Add(continuationTimeout))
	defer s.conn.SetReadDeadline(time.Time{})

	buf := make([]byte, wire.MaxFrameSize)
	n, from, err := s.conn.ReadFromUnix(buf)
	if err != nil {
		return false
	}
	if from.Name != peer.Name {
		return false
	}
	return wire.IsContinuationRequest(string(buf[:n]))
}
