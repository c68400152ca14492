// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

// Cent and Coin are the satoshi-denominated unit constants the reference
// implementation uses to express stake amounts and rewards.
const (
	Cent int64 = 10000
	Coin int64 = 100 * Cent
)
