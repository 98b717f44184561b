// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import "net"

// Listener performs the server side of the bonding handshake: grouping
// incoming TCP connections by correlation ID and yielding a BondedStream
// once exactly n members of one session have arrived.
type Listener struct {
	ln   net.Listener
	n    int
	sess *sessionTable
	opts Options
}

// Listen binds addr and returns a Listener that bonds n connections per
// client session. n must be in [1, 255]: the handshake carries it in a
// single byte. n == 1 degenerates to a single member flow, but the
// framing protocol still applies.
func Listen(addr string, n int, opts ...Option) (*Listener, error) {
	if n < 1 || n > 255 {
		return nil, ErrInvalidArgument
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return &Listener{ln: ln, n: n, sess: newSessionTable(), opts: o}, nil
}

// LocalAddr returns the listener's bound address.
func (l *Listener) LocalAddr() net.Addr {
	return l.ln.Addr()
}

// Close stops accepting new connections. Sessions already bonded into a
// BondedStream are unaffected; partially bonded sessions still in the
// table are left for the next reapStale pass to never run — callers
// shutting down a listener should not expect pending partial sessions to
// be cleaned up automatically.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Accept blocks until n member flows sharing one correlation ID have all
// arrived, then returns the bonded stream and the remote address of the
// final member accepted. It loops internally past flows that never
// complete their handshake and past members of sessions that are still
// incomplete, so one call to Accept can consume many raw net.Accept
// results before returning.
func (l *Listener) Accept() (*BondedStream, net.Addr, error) {
	for {
		l.sess.reapStale(l.opts.PartialSessionTimeout)

		conn, err := l.ln.Accept()
		if err != nil {
			return nil, nil, err
		}

		var token cid
		if handshakeRead(conn, token[:]) != nil {
			conn.Close()
			continue
		}

		if _, ok := l.sess.lookup(token); !ok {
			id := newCID()
			if err := l.greet(conn, id); err != nil {
				conn.Close()
				continue
			}
			l.sess.start(id, conn)
			continue
		}

		members, complete := l.sess.grow(token, conn, l.n)
		if !complete {
			continue
		}

		stream, err := newBondedStream(members, l.opts)
		if err != nil {
			for _, m := range members {
				m.Close()
			}
			continue
		}
		return stream, conn.RemoteAddr(), nil
	}
}

// greet replies to a session's first member flow with the bond width,
// one byte, followed by the freshly minted 16-byte correlation ID.
func (l *Listener) greet(conn net.Conn, id cid) error {
	if err := handshakeWrite(conn, []byte{byte(l.n)}); err != nil {
		return err
	}
	return handshakeWrite(conn, id[:])
}
