// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import "encoding/binary"

// HeaderLen is the size in bytes of a frame's length prefix.
const HeaderLen = 4

// MaxLen is the largest payload length the 4-byte prefix can represent.
const MaxLen = 1<<32 - 1

// PutLen writes the little-endian frame length prefix for n into b.
// b must be at least HeaderLen bytes.
func PutLen(b []byte, n int) {
	binary.LittleEndian.PutUint32(b, uint32(n))
}

// Len reads the little-endian frame length prefix from b.
// b must be at least HeaderLen bytes.
func Len(b []byte) int {
	return int(binary.LittleEndian.Uint32(b))
}
