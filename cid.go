// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bond

import "github.com/google/uuid"

// cidLen is the wire length of a correlation ID: 128 bits.
const cidLen = 16

// cid names one bonding session for its lifetime on a given server. It is
// minted by the server from a random 128-bit UUID and echoed to the
// client on member 1; the client-chosen token sent ahead of it is only a
// hint and is discarded once the CID is minted.
type cid [cidLen]byte

// newCID mints a fresh correlation ID.
func newCID() cid {
	return cid(uuid.New())
}

func (c cid) String() string {
	return uuid.UUID(c).String()
}
