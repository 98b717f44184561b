// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import "time"

// A poller is a readiness registry keyed by member index: one per
// direction, each slot holding the member registered under that index.
//
// BondedStream owns exactly two: one used for read readiness, one for
// write readiness, so a writer waiting for send-buffer space can coexist
// with a reader consuming on the same member.
//
// Two implementations exist, chosen at compile time by build tag, the
// same way the teacher's internal/bo package picked a byte-order
// detection strategy per architecture:
//   - poller_unix.go: backs reads/writes with raw, non-blocking read(2)/
//     write(2) against the member's file descriptor via golang.org/x/sys/unix,
//     parking on EAGAIN through Go's runtime-integrated readiness
//     notification (the epoll/kqueue the OS and the Go scheduler already
//     share) rather than a hand-rolled event loop.
//   - poller_other.go: a portable fallback for platforms without a
//     syscall.RawConn read(2)/write(2) story (e.g. Windows, where the raw
//     socket handle is not an fd), built on short read/write deadlines and
//     cooperative retry, mirroring the teacher's own RetryDelay/
//     waitOnceOnWouldBlock fallback for non-blocking emulation.
//
// Both implementations satisfy the same unexported method set, so
// stream.go, listener.go and session.go never branch on platform.
type poller struct {
	members []*member

	// retryDelay paces the portable fallback's retry loop. Unused by the
	// unix implementation, whose waits are satisfied by the runtime poller
	// instead of a sleep/yield loop.
	retryDelay time.Duration
}

func newPoller(n int, retryDelay time.Duration) *poller {
	return &poller{members: make([]*member, n), retryDelay: retryDelay}
}

func (p *poller) register(idx int, m *member) {
	p.members[idx] = m
}
