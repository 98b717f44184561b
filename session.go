// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import (
	"net"
	"time"
)

// pendingSession is a bond session that has not yet collected all N of its
// member flows.
type pendingSession struct {
	members  []net.Conn
	lastSeen time.Time
}

// sessionTable is the listener's mapping from correlation ID to the
// ordered member flows accepted so far for that session. It is touched
// only from Listener.Accept's goroutine, so it needs no locking.
type sessionTable struct {
	pending map[cid]*pendingSession
}

func newSessionTable() *sessionTable {
	return &sessionTable{pending: make(map[cid]*pendingSession)}
}

func (t *sessionTable) lookup(id cid) (*pendingSession, bool) {
	s, ok := t.pending[id]
	return s, ok
}

// start records conn as the first member of a freshly minted session id.
func (t *sessionTable) start(id cid, conn net.Conn) {
	t.pending[id] = &pendingSession{members: []net.Conn{conn}, lastSeen: time.Now()}
}

// grow appends conn to the session named id, returning its full member
// list and whether it has now reached n members. A completed session is
// removed from the table in the same step: a bonded stream is yielded to
// the application only once exactly n members are present.
func (t *sessionTable) grow(id cid, conn net.Conn, n int) (members []net.Conn, complete bool) {
	sess := t.pending[id]
	sess.members = append(sess.members, conn)
	sess.lastSeen = time.Now()
	if len(sess.members) < n {
		return nil, false
	}
	delete(t.pending, id)
	return sess.members, true
}

// reapStale discards and closes pending sessions whose last member arrived
// more than timeout ago. Without this, a client that opens fewer than n
// flows and vanishes would pin a partial session in the table forever.
// timeout <= 0 disables reaping.
func (t *sessionTable) reapStale(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	cutoff := time.Now().Add(-timeout)
	for id, sess := range t.pending {
		if sess.lastSeen.Before(cutoff) {
			for _, m := range sess.members {
				m.Close()
			}
			delete(t.pending, id)
		}
	}
}
