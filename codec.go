// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import "code.hybscloud.com/bond/internal/wire"

// FragmentSize bounds the payload of one wire frame: the largest payload
// a small write emits directly, and the chunk size large writes are split
// into. Both peers must agree on its value; it is fixed at 8192 by the
// wire format and only overridable (WithFragmentSize) in tests that want
// to exercise the small/large boundary without megabyte buffers.
const FragmentSize = 8192

// frameHeaderLen is the byte length of a frame's length prefix.
const frameHeaderLen = wire.HeaderLen

// encodeFrameHeader writes the LE32 length prefix for a payload of n bytes
// into hdr, which must be at least frameHeaderLen bytes.
func encodeFrameHeader(hdr []byte, n int) {
	wire.PutLen(hdr, n)
}

// decodeFrameHeader reads the LE32 length prefix from hdr, rejecting
// lengths the configured fragment size forbids. A frame length greater
// than fragmentSize is a protocol violation, not an I/O error, and is
// reported as such.
func decodeFrameHeader(hdr []byte, fragmentSize int) (int, error) {
	n := wire.Len(hdr)
	if n < 0 || n > fragmentSize {
		return 0, ErrTooLong
	}
	return n, nil
}

// chunkBounds splits a payload of length total into consecutive
// [offset, offset+len) windows of at most fragmentSize bytes each. It is
// the pure arithmetic core of BondedStream.Write's large-payload path,
// kept separate from the I/O so the chunking itself can be tested without
// a network — e.g. the boundary cases around FragmentSize-1/FragmentSize/
// FragmentSize+1.
func chunkBounds(total, fragmentSize int) [][2]int {
	if total == 0 {
		return nil
	}
	bounds := make([][2]int, 0, (total+fragmentSize-1)/fragmentSize)
	for off := 0; off < total; off += fragmentSize {
		end := off + fragmentSize
		if end > total {
			end = total
		}
		bounds = append(bounds, [2]int{off, end})
	}
	return bounds
}
