// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire encodes and decodes the bonding protocol's 4-byte
// little-endian frame length prefix. The 1-byte bond width sent on member
// 1 of the handshake is written by the listener directly, not here.
//
// Unlike framer's byte-order-selectable design (see the predecessor
// internal/bo package this replaces), the bonding wire format fixes its
// byte order at little-endian unconditionally, so there is no
// native-byte-order detection to perform here; this package is just the
// narrow, allocation-free encode/decode surface the codec (codec.go)
// needs, kept as its own package so it is easy to test in isolation.
package wire
