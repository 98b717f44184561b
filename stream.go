// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bond aggregates N parallel TCP connections between one client
// and one server into a single logical, ordered byte stream.
//
// Semantics and design:
//   - Handshake: the server mints a 128-bit correlation ID on the first
//     member flow of a session and echoes it, along with the bond width,
//     back to the client; the client opens the remaining N-1 flows against
//     that ID. A session is only observable once all N members have
//     arrived, in the order the client opened them.
//   - Framing: every write is split into frames of at most FragmentSize
//     bytes, each carrying an explicit 4-byte little-endian length prefix,
//     and dispatched round-robin across member flows. Both peers rotate
//     identically, so frame boundaries never need cross-member
//     disambiguation.
//   - Non-blocking first: Listener and BondedStream present a blocking
//     fill-the-buffer API, internally backed by non-blocking I/O plus
//     readiness notification (poller.go), the same façade framer's own
//     iox.ErrWouldBlock/iox.ErrMore machinery provides one layer down.
//   - Ownership: neither Listener nor BondedStream is safe for concurrent
//     use; each is owned by at most one goroutine at a time.
package bond

import (
	"io"
	"net"
)

// BondedStream is an ordered byte stream carried over N member flows
// rotated frame by frame. It satisfies io.Reader, io.Writer and
// io.Closer, with one stronger guarantee than the plain io.Reader
// contract: Read either fills buf completely or returns an error, never a
// bare short read.
//
// A BondedStream is not safe for concurrent use by multiple goroutines:
// Read and Write share the rotation cursor and the closed/poisoned state,
// so one goroutine at a time may call any of its methods.
type BondedStream struct {
	members []*member
	n       int

	rp *poller
	wp *poller

	fragmentSize int

	// nextStream is the rotation cursor: the index of the member the next
	// frame will be written to or read from.
	nextStream int

	// readable is the number of payload bytes still owed from a frame
	// whose header has already been consumed but whose body spilled past
	// the end of a previous Read's buffer.
	readable int

	closed   bool
	closeErr error
}

// newBondedStream wires n already-handshaken member connections into a
// BondedStream: one raw-fd-capable member per connection, each registered
// with both the read and the write poller under its arrival index.
func newBondedStream(conns []net.Conn, opts Options) (*BondedStream, error) {
	n := len(conns)
	members := make([]*member, n)
	for i, c := range conns {
		m, err := newMember(c, i)
		if err != nil {
			return nil, err
		}
		members[i] = m
	}

	rp := newPoller(n, opts.PollRetryDelay)
	wp := newPoller(n, opts.PollRetryDelay)
	for i, m := range members {
		rp.register(i, m)
		wp.register(i, m)
	}

	fragmentSize := opts.FragmentSize
	if fragmentSize <= 0 {
		fragmentSize = FragmentSize
	}

	return &BondedStream{
		members:      members,
		n:            n,
		rp:           rp,
		wp:           wp,
		fragmentSize: fragmentSize,
	}, nil
}

// Connect performs the client side of the bonding handshake against addr
// and returns the resulting BondedStream. The bond width is not a
// parameter: it is told to the client by the server on the first member
// flow.
func Connect(addr string, opts ...Option) (*BondedStream, error) {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}

	first, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	hint := newCID()
	if err := handshakeWrite(first, hint[:]); err != nil {
		first.Close()
		return nil, ErrHandshakeTruncated
	}

	var widthBuf [1]byte
	if err := handshakeRead(first, widthBuf[:]); err != nil {
		first.Close()
		return nil, err
	}
	n := int(widthBuf[0])
	if n < 1 {
		first.Close()
		return nil, ErrProtocol
	}

	var id cid
	if err := handshakeRead(first, id[:]); err != nil {
		first.Close()
		return nil, err
	}

	conns := make([]net.Conn, 1, n)
	conns[0] = first
	for i := 1; i < n; i++ {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			closeAll(conns)
			return nil, err
		}
		if err := handshakeWrite(conn, id[:]); err != nil {
			conn.Close()
			closeAll(conns)
			return nil, ErrHandshakeTruncated
		}
		conns = append(conns, conn)
	}

	return newBondedStream(conns, o)
}

func closeAll(conns []net.Conn) {
	for _, c := range conns {
		c.Close()
	}
}

// Read fills buf completely, rotating across member flows frame by frame,
// or returns the first error encountered, along with however many leading
// bytes of buf it managed to fill. Once Read or Write returns a non-nil
// error the BondedStream is poisoned: every subsequent call returns that
// same error immediately, until Close.
func (s *BondedStream) Read(buf []byte) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}

	n, err := s.consumeReadable(buf)
	if err != nil {
		return s.poison(n, err)
	}

	for n < len(buf) {
		var hdr [frameHeaderLen]byte
		if _, err := s.readFullCurrent(hdr[:]); err != nil {
			return s.poison(n, err)
		}
		length, err := decodeFrameHeader(hdr[:], s.fragmentSize)
		if err != nil {
			return s.poison(n, err)
		}

		remaining := len(buf) - n
		if length > remaining {
			if _, err := s.readFullCurrent(buf[n:len(buf)]); err != nil {
				return s.poison(n, err)
			}
			s.readable = length - remaining
			n = len(buf)
			continue
		}

		if _, err := s.readFullCurrent(buf[n : n+length]); err != nil {
			return s.poison(n, err)
		}
		n += length
		s.readable = 0
		s.advanceRead()
	}

	return n, nil
}

// consumeReadable drains any payload residue owed from a previous Read
// before a new frame header is read.
func (s *BondedStream) consumeReadable(buf []byte) (int, error) {
	if s.readable <= 0 {
		return 0, nil
	}
	want := s.readable
	if want > len(buf) {
		want = len(buf)
	}
	n, err := s.readFullCurrent(buf[:want])
	if err != nil {
		return n, err
	}
	s.readable -= n
	if s.readable == 0 {
		s.advanceRead()
	}
	return n, nil
}

func (s *BondedStream) advanceRead() {
	s.nextStream = (s.nextStream + 1) % s.n
}

// readFullCurrent reads exactly len(dst) bytes from the member currently
// named by nextStream, looping on partial reads the way io.ReadFull would.
// ErrMore from the poller means a read landed but didn't fill the
// remaining buffer, so the loop keeps going; any other error ends it
// immediately. A clean end-of-stream after part of dst has been filled is
// reported as io.ErrUnexpectedEOF; a clean end-of-stream before any byte
// of dst arrived is reported as io.EOF, whether dst is a frame header, a
// payload whose header was already read, or a residue.
func (s *BondedStream) readFullCurrent(dst []byte) (int, error) {
	idx := s.nextStream
	got := 0
	for got < len(dst) {
		n, err := s.rp.read(idx, dst[got:])
		got += n
		if err != nil && err != ErrMore {
			if err == io.EOF && got > 0 {
				return got, io.ErrUnexpectedEOF
			}
			return got, err
		}
	}
	return got, nil
}

// Write frames buf and sends it, rotating across member flows one frame
// per FragmentSize-sized chunk. It returns len(buf), nil on success: a
// BondedStream never partially accepts a write.
func (s *BondedStream) Write(buf []byte) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}

	if len(buf) < s.fragmentSize {
		if err := s.writeFrame(buf); err != nil {
			return s.poison(0, err)
		}
		return len(buf), nil
	}

	for _, b := range chunkBounds(len(buf), s.fragmentSize) {
		if err := s.writeFrame(buf[b[0]:b[1]]); err != nil {
			return s.poison(b[0], err)
		}
	}
	return len(buf), nil
}

// writeFrame writes one length-prefixed frame to the member currently
// named by nextStream and advances the rotation cursor. Advancing once
// per frame (rather than once per Write call) keeps the cursor in lock
// step with the receiver's Read, which likewise advances once per frame
// it fully consumes — for a single-chunk write the two coincide, and for
// a K-chunk large write both land on (r+K) mod N.
func (s *BondedStream) writeFrame(payload []byte) error {
	idx := s.nextStream
	var hdr [frameHeaderLen]byte
	encodeFrameHeader(hdr[:], len(payload))
	if _, err := s.writeFullTo(idx, hdr[:]); err != nil {
		return err
	}
	if _, err := s.writeFullTo(idx, payload); err != nil {
		return err
	}
	s.nextStream = (idx + 1) % s.n
	return nil
}

// writeFullTo writes exactly len(src) bytes to member idx, looping past
// ErrMore the same way readFullCurrent loops on a short read: ErrMore
// means a write accepted fewer bytes than asked for, not that anything
// went wrong.
func (s *BondedStream) writeFullTo(idx int, src []byte) (int, error) {
	got := 0
	for got < len(src) {
		n, err := s.wp.write(idx, src[got:])
		got += n
		if err != nil && err != ErrMore {
			return got, err
		}
	}
	return got, nil
}

// Close shuts down every member flow and poisons the BondedStream against
// further use. It is idempotent and returns the first member close error
// encountered, if any.
func (s *BondedStream) Close() error {
	if s.closed && s.closeErr == ErrStreamClosed {
		return nil
	}
	s.closed = true
	s.closeErr = ErrStreamClosed

	var firstErr error
	for _, m := range s.members {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.rp.close()
	s.wp.close()
	return firstErr
}

func (s *BondedStream) checkOpen() error {
	if !s.closed {
		return nil
	}
	if s.closeErr != nil {
		return s.closeErr
	}
	return ErrStreamClosed
}

func (s *BondedStream) poison(n int, err error) (int, error) {
	s.closed = true
	s.closeErr = err
	return n, err
}
