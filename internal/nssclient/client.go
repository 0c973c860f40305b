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

// Package nssclient is the caller side of the datagram protocol in
// internal/wire: it owns the short-lived per-call socket an NSS entry point
// or the control CLI uses to talk to the resolver daemon, per spec.md §4.F.
package nssclient

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/nabbar/sectora/internal/kind"
	"github.com/nabbar/sectora/internal/wire"
)

// ReadTimeout bounds how long a call waits for the daemon's reply, per
// spec.md §4.F's "implementation budget: 5 s".
const ReadTimeout = 5 * time.Second

// Client is a single request/reply round trip's private datagram endpoint.
// Its zero value is not usable; build one with Dial and always Close it.
type Client struct {
	conn *net.UnixConn
	path string
}

// Dial creates a fresh Unix datagram endpoint under clientSocketDir, named
// after the calling process's pid, and connects it to the daemon socket at
// daemonSocketPath. The caller must Close it, even on a later error, to
// unlink the endpoint.
func Dial(clientSocketDir, daemonSocketPath string) (*Client, error) {
	path := fmt.Sprintf("%s/%d.sock", clientSocketDir, os.Getpid())
	_ = os.Remove(path)

	laddr := &net.UnixAddr{Name: path, Net: "unixgram"}
	raddr := &net.UnixAddr{Name: daemonSocketPath, Net: "unixgram"}

	conn, err := net.DialUnix("unixgram", laddr, raddr)
	if err != nil {
		return nil, kind.Wrap(kind.TryAgain, "connect to daemon socket", err)
	}
	return &Client{conn: conn, path: path}, nil
}

// Close unlinks the endpoint, even if it was never successfully used.
func (c *Client) Close() error {
	err := c.conn.Close()
	_ = os.Remove(c.path)
	return err
}

// Call sends req, waits up to ReadTimeout for the (possibly divided) reply,
// and returns the decoded wire.Reply. Every failure along the way is
// reported as a *kind.Error whose Code already reflects spec.md §4.F's
// error-mapping table: connect/serde/send/recv failures are TryAgain, and
// an ErrorReply is surfaced with the Code its message classifies as
// (TryAgain when the message carries no recognised code name).
func (c *Client) Call(req wire.Request) (wire.Reply, error) {
	payload, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, kind.Wrap(kind.TryAgain, "encode request", err)
	}

	if err := c.conn.SetDeadline(time.Now().Add(ReadTimeout)); err != nil {
		return nil, kind.Wrap(kind.TryAgain, "set deadline", err)
	}

	if _, err := c.conn.Write([]byte(payload)); err != nil {
		return nil, kind.Wrap(kind.TryAgain, "send request", err)
	}

	reply, err := c.receive()
	if err != nil {
		return nil, err
	}

	if er, ok := reply.(wire.ErrorReply); ok {
		code := kind.ClassifyMessage(er.Msg)
		if code == kind.Unknown {
			code = kind.TryAgain
		}
		return nil, kind.New(code, er.Msg)
	}
	return reply, nil
}

// receive reads and reassembles one divided reply, issuing the "c:cont"
// continuation request between chunks as the daemon's server.go expects.
func (c *Client) receive() (wire.Reply, error) {
	var asm wire.Reassembler
	buf := make([]byte, wire.MaxFrameSize)

	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			return nil, kind.Wrap(kind.TryAgain, "receive reply", err)
		}

		final, chunk, err := wire.ParseDivided(string(buf[:n]))
		if err != nil {
			return nil, kind.Wrap(kind.TryAgain, "malformed reply frame", err)
		}
		if asm.Add(final, chunk) {
			break
		}

		cont, err := wire.EncodeRequest(wire.ContinuationRequest{})
		if err != nil {
			return nil, kind.Wrap(kind.TryAgain, "encode continuation", err)
		}
		if _, err := c.conn.Write([]byte(cont)); err != nil {
			return nil, kind.Wrap(kind.TryAgain, "send continuation", err)
		}
	}

	body, ok := strings.CutPrefix(asm.Body(), "d:")
	if !ok {
		return nil, kind.New(kind.TryAgain, "reply frame missing 'd:' prefix")
	}

	reply, err := wire.ParseReply(body)
	if err != nil {
		return nil, kind.Wrap(kind.TryAgain, "decode reply", err)
	}
	return reply, nil
}
