// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// GenesisStakeModifier is the modifier value for the genesis block itself.
const GenesisStakeModifier uint64 = 0

// FirstBlockStakeModifier is the hardcoded modifier for the block at
// height 1. It is a chain-historical constant, not a derived value, and
// must never be recomputed.
const FirstBlockStakeModifier uint64 = 0x1234567887654321

// blockTimeHash is a (timestamp, hash) candidate pair gathered while
// walking the chain backward for modifier selection.
type blockTimeHash struct {
	time int64
	hash chainhash.Hash
}

// blockTimeHashSorter implements the ascending (time, hash) order; callers
// apply sort.Sort and sort.Reverse in sequence to land on the required
// stable-descending-by-time, reverse-hash-tiebreak order.
type blockTimeHashSorter []blockTimeHash

func (s blockTimeHashSorter) Len() int      { return len(s) }
func (s blockTimeHashSorter) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s blockTimeHashSorter) Less(i, j int) bool {
	if s[i].time == s[j].time {
		bi, bj := s[i].hash[:], s[j].hash[:]
		for k := chainhash.HashSize - 1; k >= 0; k-- {
			if bi[k] < bj[k] {
				return true
			} else if bi[k] > bj[k] {
				return false
			}
		}
		return false
	}
	return s[i].time < s[j].time
}

// gatherCandidates walks the chain backward from prev, collecting every
// block whose timestamp falls within the current selection window, and
// returns them sorted descending by time (ties broken by reversed hash
// bytes), together with the height one past the last block the walk fell
// off of (0 if the walk reached genesis). Implements spec §4.2.
func gatherCandidates(index BlockIndex, prev *BlockHeader, params *NetworkParams) ([]blockTimeHash, int32, error) {
	selectionInterval := SelectionInterval(params)
	selectionStart := (prev.Time/params.ModifierInterval)*params.ModifierInterval - selectionInterval

	capacity := 0
	if params.StakeTargetSpacing > 0 {
		capacity = int(selectionRounds * params.ModifierInterval / params.StakeTargetSpacing)
	}
	candidates := make([]blockTimeHash, 0, capacity)

	header := prev
	for header != nil && header.Time >= selectionStart {
		candidates = append(candidates, blockTimeHash{header.Time, header.Hash})

		parent, ok := index.Parent(header)
		if !ok {
			header = nil
			break
		}
		header = parent
	}

	firstCandidateHeight := int32(0)
	if header != nil {
		firstCandidateHeight = header.Height + 1
	}

	sort.Sort(blockTimeHashSorter(candidates))
	sort.Sort(sort.Reverse(blockTimeHashSorter(candidates)))

	return candidates, firstCandidateHeight, nil
}

// selectionHashInput serializes candidateHash ∥ modifier (8-byte LE), the
// exact byte layout spec §6 names for the candidate-selection hash.
func selectionHashInput(candidateHash chainhash.Hash, modifier uint64) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, chainhash.HashSize+8))
	buf.Write(candidateHash[:])
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], modifier)
	buf.Write(scratch[:])
	return buf.Bytes()
}

// selectionDoubleHash is the hash function selectBlockFromCandidates feeds
// each candidate's selection input through. It is a package-level var,
// rather than a direct call to chainhash.DoubleHashB, purely so tests can
// substitute a fake and pin the PoS-bias arithmetic below to exact,
// chosen inputs instead of depending on live hash outputs.
var selectionDoubleHash = chainhash.DoubleHashB

// candidateSelectionValue folds the PoS bias into a candidate's raw
// selection hash: a PoS candidate's value is divided by 2**32, so it beats
// every PoW candidate in the same round whose unshifted value is not
// already below it, the bias spec §8 Invariant 4 names as the kernel's
// defining consensus rule.
func candidateSelectionValue(selectionHash *chainhash.Hash, isProofOfStake bool) *big.Int {
	value := HashToBig(selectionHash)
	if isProofOfStake {
		value = new(big.Int).Rsh(value, 32)
	}
	return value
}

// selectBlockFromCandidates picks the winning candidate for one modifier
// round. Implements spec §4.3.
func selectBlockFromCandidates(
	index BlockIndex,
	candidates []blockTimeHash,
	selected map[chainhash.Hash]bool,
	stopTime int64,
	prevModifier uint64,
) (*BlockHeader, error) {

	var best *BlockHeader
	var bestHash *chainhash.Hash
	var bestValue *big.Int
	found := false

	for _, item := range candidates {
		header, ok := index.Lookup(item.hash)
		if !ok {
			return nil, kernelError(ErrChainCorruption,
				"selectBlockFromCandidates: candidate block %s not found in index", item.hash)
		}

		if found && header.Time > stopTime {
			break
		}
		if selected[header.Hash] {
			continue
		}

		selectionHash, err := chainhash.NewHash(
			selectionDoubleHash(selectionHashInput(header.Hash, prevModifier)))
		if err != nil {
			return nil, kernelError(ErrChainCorruption, "selectBlockFromCandidates: %v", err)
		}

		value := candidateSelectionValue(selectionHash, header.IsProofOfStake)

		if !found || value.Cmp(bestValue) < 0 {
			found = true
			bestValue = value
			bestHash = selectionHash
			best = header
		}
	}

	if best == nil {
		return nil, kernelError(ErrChainCorruption,
			"selectBlockFromCandidates: no eligible candidate for this round")
	}

	log.Debugf("selectBlockFromCandidates: selection hash=%v", bestHash)
	return best, nil
}

// ComputeNextStakeModifier derives the stake modifier that the block
// descending from prev should carry. Implements spec §4.4.
func ComputeNextStakeModifier(index BlockIndex, prev *BlockHeader, params *NetworkParams) (uint64, bool, error) {
	if prev == nil {
		return GenesisStakeModifier, true, nil
	}
	if prev.Height == 0 {
		return FirstBlockStakeModifier, true, nil
	}

	ancestor := prev
	for !ancestor.IsGeneratedStakeModifier {
		parent, ok := index.Parent(ancestor)
		if !ok {
			return 0, false, kernelError(ErrChainCorruption,
				"ComputeNextStakeModifier: no generated modifier found walking to genesis")
		}
		ancestor = parent
	}

	prevModifier := ancestor.StakeModifier
	modifierTime := ancestor.Time

	if (modifierTime / params.ModifierInterval) >= (prev.Time / params.ModifierInterval) {
		log.Debugf("ComputeNextStakeModifier: same interval slot, keeping modifier for height=%d", prev.Height)
		return prevModifier, false, nil
	}

	candidates, _, err := gatherCandidates(index, prev, params)
	if err != nil {
		return 0, false, err
	}

	selectionInterval := SelectionInterval(params)
	stopTime := (prev.Time/params.ModifierInterval)*params.ModifierInterval - selectionInterval

	newModifier := uint64(0)
	selected := make(map[chainhash.Hash]bool)

	rounds := selectionRounds
	if len(candidates) < rounds {
		rounds = len(candidates)
	}

	for round := 0; round < rounds; round++ {
		stopTime += SelectionIntervalSection(params, round)

		picked, err := selectBlockFromCandidates(index, candidates, selected, stopTime, prevModifier)
		if err != nil {
			return 0, false, kernelError(ErrChainCorruption,
				"ComputeNextStakeModifier: round %d: %v", round, err)
		}

		newModifier |= uint64(picked.StakeEntropyBit&1) << uint(round)
		selected[picked.Hash] = true

		log.Debugf("ComputeNextStakeModifier: round %d stop=%d height=%d bit=%d modifier=%016x",
			round, stopTime, picked.Height, picked.StakeEntropyBit&1, newModifier)
	}

	return newModifier, true, nil
}
