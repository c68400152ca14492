// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// ComputeStakeEntropyBit derives the entropy bit a newly constructed header
// should carry: the least significant bit of the block hash, treated as a
// little-endian integer. Embedders call this while assembling a new
// header; the kernel itself only ever reads StakeEntropyBit back off an
// already-finalized one.
func ComputeStakeEntropyBit(hash chainhash.Hash) uint32 {
	return uint32(HashToBig(&hash).Bit(0))
}
