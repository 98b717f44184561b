// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import (
	"net"
	"syscall"
)

// member is one of the N underlying connections of a bond. Its index is
// fixed at session establishment and identical on both peers: the order
// the client opened its connections in, and the order the server
// observed them arrive.
type member struct {
	conn  net.Conn
	raw   syscall.RawConn
	index int
}

// newMember wraps conn as member index, eagerly acquiring its raw
// syscall handle so the epoll-backed poller (poller_unix.go) can issue
// non-blocking reads and writes directly against the file descriptor.
// Acquiring SyscallConn() here, once, means the hot read/write paths never
// need to type-assert or re-derive it.
func newMember(conn net.Conn, index int) (*member, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, ErrInvalidArgument
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil, err
	}
	return &member{conn: conn, raw: raw, index: index}, nil
}

func (m *member) Close() error {
	return m.conn.Close()
}
