//go:build unix

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import (
	"io"

	"golang.org/x/sys/unix"
)

// classifyErrno maps the raw EAGAIN a non-blocking read(2)/write(2) can
// return into the same ErrWouldBlock sentinel iox uses, so the retry
// decision below reads the same way framer's own readOnce/writeOnce
// compare their transport's result against ErrWouldBlock. Any other
// error, including nil, passes through unchanged.
func classifyErrno(err error) error {
	if err == unix.EAGAIN {
		return ErrWouldBlock
	}
	return err
}

// read performs one readiness-gated read on member idx into buf, returning
// as soon as the kernel has delivered at least one byte, a clean close
// (io.EOF), or a real error. It never returns (0, nil): a zero-byte,
// nil-error read would violate the io.Reader contract and spin the caller.
//
// The non-blocking attempt and the readiness wait are one operation here:
// syscall.RawConn.Read repeatedly invokes the closure, parking the calling
// goroutine on the runtime's readiness notification for this file
// descriptor between attempts, only returning once the closure reports
// true — classifyErrno's ErrWouldBlock is exactly the signal that keeps
// it parking, without a hand-rolled epoll event loop. A read that lands
// fewer bytes than requested is reported as ErrMore rather than nil, so
// the caller knows to keep accumulating from the same member.
func (p *poller) read(idx int, buf []byte) (n int, err error) {
	m := p.members[idx]
	cerr := m.raw.Read(func(fd uintptr) bool {
		var rn int
		rn, err = unix.Read(int(fd), buf)
		err = classifyErrno(err)
		n = rn
		return err != ErrWouldBlock
	})
	if cerr != nil {
		return n, cerr
	}
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	if n < len(buf) {
		return n, ErrMore
	}
	return n, nil
}

// write performs one readiness-gated write on member idx, returning as
// soon as at least one byte has been accepted into the socket send buffer,
// or a real error. A write that accepts fewer bytes than requested is
// reported as ErrMore rather than nil, mirroring read's partial-progress
// signal.
func (p *poller) write(idx int, buf []byte) (n int, err error) {
	m := p.members[idx]
	cerr := m.raw.Write(func(fd uintptr) bool {
		var wn int
		wn, err = unix.Write(int(fd), buf)
		err = classifyErrno(err)
		n = wn
		return err != ErrWouldBlock
	})
	if cerr != nil {
		return n, cerr
	}
	if err != nil {
		return n, err
	}
	if n < len(buf) {
		return n, ErrMore
	}
	return n, nil
}

func (p *poller) close() error {
	return nil
}
