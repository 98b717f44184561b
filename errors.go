// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import (
	"errors"

	"code.hybscloud.com/iox"
)

var (
	// ErrInvalidArgument reports an invalid configuration: a bond width
	// outside [1, 255], or a nil connection or one that exposes no raw
	// syscall handle. Address errors are returned as net.Listen or
	// net.Dial report them.
	ErrInvalidArgument = errors.New("bond: invalid argument")

	// ErrTooLong reports that a decoded frame length exceeds the stream's
	// fragment size. Write never returns it: payloads of any length are
	// split into fragment-sized frames.
	ErrTooLong = errors.New("bond: frame too long")

	// ErrHandshakeTruncated reports that a member flow closed or errored
	// before completing the bonding handshake: the member closed before
	// delivering its 16-byte CID, or before the server's length+CID
	// response arrived in full.
	ErrHandshakeTruncated = errors.New("bond: handshake truncated")

	// ErrProtocol reports a protocol-level inconsistency that is not a
	// plain I/O error. Connect returns it when the server announces a bond
	// width of zero; residues and session-table state are not checked
	// against it.
	ErrProtocol = errors.New("bond: protocol violation")

	// ErrStreamClosed is returned by Read/Write once a BondedStream has
	// been explicitly Closed. A stream poisoned by a prior data-plane error
	// instead keeps returning that error until it is Closed.
	ErrStreamClosed = errors.New("bond: stream closed")
)

// ErrWouldBlock and ErrMore are re-exported so callers can recognize them
// without importing iox directly, the same aliasing pattern framer uses in
// its own errors.go. Both are genuinely produced and consumed inside
// bond, not just re-exported for show: poller_unix.go's classifyErrno and
// poller_other.go's classifyTimeout turn EAGAIN and a deadline-exceeded
// retry tick into ErrWouldBlock, which is the literal condition the
// read/write retry loops continue on; a read or write that lands fewer
// bytes than asked for returns ErrMore instead of nil, and
// readFullCurrent/writeFullTo in stream.go treat ErrMore as a
// continue-accumulating signal rather than an error. Neither sentinel
// escapes to a BondedStream caller: ErrWouldBlock is resolved inside the
// retry loop before poller.read/poller.write return, and ErrMore is
// resolved inside readFullCurrent/writeFullTo before BondedStream.Read
// and BondedStream.Write return. Both stay exported regardless, for the
// same reason framer exports its own — so code that drives a poller
// directly, or composes across both libraries, has one identifier to
// compare against.
var (
	ErrWouldBlock = iox.ErrWouldBlock
	ErrMore       = iox.ErrMore
)
