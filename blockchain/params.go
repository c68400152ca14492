// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/btcsuite/btcd/chaincfg"

// NetworkParams carries the consensus constants the PoS kernel needs,
// explicit rather than read off process-wide state. Embeds the upstream
// chaincfg.Params for the fields the kernel borrows but does not own
// (PowLimit, GenesisHash).
type NetworkParams struct {
	*chaincfg.Params

	// ModifierInterval is the number of seconds between stake modifier
	// regenerations.
	ModifierInterval int64

	// ModifierIntervalRatio shapes the 64-section selection window
	// partition (see SelectionIntervalSection).
	ModifierIntervalRatio int64

	// MinStakeAmount is the minimum satoshi value a staking output must
	// carry to be eligible.
	MinStakeAmount int64

	// StakeMinAge is the minimum age, in seconds, from the block holding
	// a staked output to a candidate stake attempt.
	StakeMinAge int64

	// StakeTargetSpacing is the nominal spacing between blocks, in
	// seconds. Used only to size the candidate-gathering buffer.
	StakeTargetSpacing int64
}

const (
	// modifierIntervalMainNet is the mainnet modifier regeneration
	// interval: 3 hours.
	modifierIntervalMainNet int64 = 3 * 60 * 60

	// modifierIntervalTestNet is the testnet modifier regeneration
	// interval: 20 minutes.
	modifierIntervalTestNet int64 = 20 * 60

	// modifierIntervalRatio shapes the section partition; see §4.1.
	modifierIntervalRatio int64 = 3

	// minStakeAmount is the minimum satoshi value of a staking output.
	minStakeAmount int64 = Cent

	// stakeMinAge is the minimum coin age, in seconds, before a coin may
	// stake: 30 days.
	stakeMinAge int64 = 60 * 60 * 24 * 30

	// stakeTargetSpacing is the nominal block spacing: 10 minutes.
	stakeTargetSpacing int64 = 10 * 60
)

// MainNetParams are the consensus parameters for the main network.
var MainNetParams = NetworkParams{
	Params:                &chaincfg.MainNetParams,
	ModifierInterval:      modifierIntervalMainNet,
	ModifierIntervalRatio: modifierIntervalRatio,
	MinStakeAmount:        minStakeAmount,
	StakeMinAge:           stakeMinAge,
	StakeTargetSpacing:    stakeTargetSpacing,
}

// TestNetParams are the consensus parameters for the test network.
var TestNetParams = NetworkParams{
	Params:                &chaincfg.TestNet3Params,
	ModifierInterval:      modifierIntervalTestNet,
	ModifierIntervalRatio: modifierIntervalRatio,
	MinStakeAmount:        minStakeAmount,
	StakeMinAge:           stakeMinAge,
	StakeTargetSpacing:    stakeTargetSpacing,
}
