//go:build !unix

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import (
	"net"
	"runtime"
	"time"
)

// pollInterval bounds how long one read/write attempt waits before the
// portable poller re-checks readiness. Platforms reaching this file (the
// `unix` build tag covers linux, darwin and the BSDs) generally expose
// their raw socket handle as something other than a read(2)/write(2)-able
// file descriptor, so there is no syscall.RawConn fast path; a short
// deadline plus retry is the portable substitute.
const pollInterval = 20 * time.Millisecond

// classifyTimeout maps a deadline-exceeded error from the SetReadDeadline/
// SetWriteDeadline polling loop below into ErrWouldBlock, the same sentinel
// the unix implementation produces from EAGAIN, so both poller
// implementations drive their retry loop off one identifier.
func classifyTimeout(err error) error {
	if isTimeout(err) {
		return ErrWouldBlock
	}
	return err
}

// read performs one readiness-gated read on member idx into buf, using a
// bounded deadline and retry in place of the unix implementation's
// runtime-integrated readiness wait. It never returns (0, nil). A read
// that lands fewer bytes than requested is reported as ErrMore so the
// caller knows to keep accumulating from the same member.
func (p *poller) read(idx int, buf []byte) (int, error) {
	m := p.members[idx]
	for {
		_ = m.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := m.conn.Read(buf)
		err = classifyTimeout(err)
		if n > 0 || err != ErrWouldBlock {
			if err == nil && n < len(buf) {
				return n, ErrMore
			}
			return n, err
		}
		p.retry()
	}
}

// write performs one readiness-gated write on member idx. A write that
// accepts fewer bytes than requested is reported as ErrMore, mirroring
// read's partial-progress signal.
func (p *poller) write(idx int, buf []byte) (int, error) {
	m := p.members[idx]
	for {
		_ = m.conn.SetWriteDeadline(time.Now().Add(pollInterval))
		n, err := m.conn.Write(buf)
		err = classifyTimeout(err)
		if n > 0 || err != ErrWouldBlock {
			if err == nil && n < len(buf) {
				return n, ErrMore
			}
			return n, err
		}
		p.retry()
	}
}

func (p *poller) retry() {
	if p.retryDelay <= 0 {
		runtime.Gosched()
		return
	}
	time.Sleep(p.retryDelay)
}

func (p *poller) close() error {
	return nil
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
