// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// compactTargetBytes is the number of mantissa bytes in a compact-encoded
// 256-bit target (the nBits format).
const compactTargetBytes = 3

// CompactToBig converts a compact representation of a whole number N to a
// big.Int, using the same encoding as Bitcoin's nBits: the high byte is a
// base-256 exponent, bit 23 a sign bit and the low 23 bits the mantissa.
// A set sign bit yields a negative result.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	isNegative := compact&0x00800000 != 0
	exponent := uint(compact >> 24)

	var bn *big.Int
	if exponent <= compactTargetBytes {
		mantissa >>= 8 * (compactTargetBytes - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(exponent-compactTargetBytes))
	}

	if isNegative {
		bn = bn.Neg(bn)
	}

	return bn
}

// HashToBig converts a chainhash.Hash into a big.Int treating the hash as
// a little-endian unsigned integer, the same internal byte order every
// hash in this kernel is serialized in.
func HashToBig(hash *chainhash.Hash) *big.Int {
	buf := *hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// maxUint256 is 2**256 - 1, the saturation ceiling for the stake-target
// widening multiply (spec §4.5: overflow saturates rather than wraps).
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// saturatingMul multiplies a and b, clamping the result to maxUint256
// instead of allowing it to exceed the 256-bit range. An attacker whose
// stake is large enough to overflow the target trivially passes the check
// — this matches the reference implementation's behavior exactly.
func saturatingMul(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	if product.Cmp(maxUint256) > 0 {
		return new(big.Int).Set(maxUint256)
	}
	return product
}
