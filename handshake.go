// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import (
	"io"
	"net"
)

// handshakeWrite writes the whole of b to conn, short-write safe. Used only
// during the bonding handshake, before a member is registered with a
// poller and switched over to non-blocking reads and writes.
func handshakeWrite(conn net.Conn, b []byte) error {
	for len(b) > 0 {
		n, err := conn.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// handshakeRead reads exactly len(b) bytes from conn, or returns
// ErrHandshakeTruncated if conn closes first.
func handshakeRead(conn net.Conn, b []byte) error {
	if _, err := io.ReadFull(conn, b); err != nil {
		return ErrHandshakeTruncated
	}
	return nil
}
