// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/binary"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// KernelMode selects between the two modes CheckStakeKernelHash runs in:
// verifying an already-mined block, or searching for a winning try_time.
type KernelMode int

const (
	// KernelCheck verifies a supplied (modifier, proof_hash) pair.
	KernelCheck KernelMode = iota
	// KernelSearch iterates try_time looking for a hash under target.
	KernelSearch
)

// KernelHash computes the proof-hash input to the PoS target check: the
// double-SHA256 of modifier ∥ timeBlockFrom ∥ prevout.Index ∥ prevout.Hash
// ∥ tryTime, all multi-byte fields little-endian except the outpoint hash,
// which is hashed in its internal byte order. Implements spec §4.5.
func KernelHash(modifier uint64, timeBlockFrom int64, prevout wire.OutPoint, tryTime int64) chainhash.Hash {
	buf := new(bytes.Buffer)
	var scratch [8]byte

	binary.LittleEndian.PutUint64(scratch[:], modifier)
	buf.Write(scratch[:8])

	binary.LittleEndian.PutUint32(scratch[:4], uint32(timeBlockFrom))
	buf.Write(scratch[:4])

	binary.LittleEndian.PutUint32(scratch[:4], prevout.Index)
	buf.Write(scratch[:4])

	buf.Write(prevout.Hash[:])

	binary.LittleEndian.PutUint32(scratch[:4], uint32(tryTime))
	buf.Write(scratch[:4])

	hash, _ := chainhash.NewHash(chainhash.DoubleHashB(buf.Bytes()))
	return *hash
}

// stakeTarget computes T = (valueIn / 100) * expand_compact(bits), a
// widening multiply saturating at 2**256-1 on overflow.
func stakeTarget(bits uint32, valueIn int64) *big.Int {
	perCoinDay := CompactToBig(bits)
	scaled := big.NewInt(valueIn / 100)
	return saturatingMul(scaled, perCoinDay)
}

// CheckStakeKernelHash validates (check mode) or searches for (search
// mode) a PoS kernel solution. Implements spec §4.5's two modes.
//
// In check mode, modifier and proofHash must already hold the values the
// caller read from the block header; tryTime holds the block's own
// timestamp. On success the two are left untouched. In search mode,
// modifier is overwritten with the freshly computed required modifier and,
// on success, tryTime is overwritten with the winning timestamp and
// proofHash with the winning hash.
func CheckStakeKernelHash(
	params *NetworkParams,
	index BlockIndex,
	bits uint32,
	blockFrom *BlockHeader,
	prevout wire.OutPoint,
	valueIn int64,
	tryTime *int64,
	hashDrift uint32,
	mode KernelMode,
	proofHash *chainhash.Hash,
	modifier *uint64,
) (bool, error) {

	if valueIn < params.MinStakeAmount {
		return false, kernelError(ErrInvalidStakeAttempt,
			"CheckStakeKernelHash: stake value too small %d < %d", valueIn, params.MinStakeAmount)
	}
	if *tryTime < blockFrom.Time {
		return false, kernelError(ErrInvalidStakeAttempt,
			"CheckStakeKernelHash: tryTime %d precedes blockFrom time %d", *tryTime, blockFrom.Time)
	}
	if blockFrom.Time+params.StakeMinAge > *tryTime {
		return false, kernelError(ErrInvalidStakeAttempt,
			"CheckStakeKernelHash: min age violation blockFrom=%d minAge=%d tryTime=%d",
			blockFrom.Time, params.StakeMinAge, *tryTime)
	}

	target := stakeTarget(bits, valueIn)

	requiredModifier, _, err := ComputeNextStakeModifier(index, blockFrom, params)
	if err != nil {
		return false, kernelError(ErrChainCorruption,
			"CheckStakeKernelHash: unable to compute required modifier: %v", err)
	}

	if mode == KernelCheck {
		if *modifier != requiredModifier {
			return false, kernelError(ErrInvalidBlock,
				"CheckStakeKernelHash: modifier mismatch at height %d: %d != %d",
				blockFrom.Height, *modifier, requiredModifier)
		}

		required := KernelHash(*modifier, blockFrom.Time, prevout, *tryTime)
		if !required.IsEqual(proofHash) {
			return false, kernelError(ErrInvalidBlock,
				"CheckStakeKernelHash: proof hash mismatch at tryTime=%d: %v != %v",
				*tryTime, proofHash, required)
		}

		return HashToBig(proofHash).Cmp(target) < 0, nil
	}

	*modifier = requiredModifier

	baseTime := *tryTime
	for i := uint32(0); i < hashDrift; i++ {
		candidateTime := baseTime + int64(i)
		candidateHash := KernelHash(*modifier, blockFrom.Time, prevout, candidateTime)

		if HashToBig(&candidateHash).Cmp(target) >= 0 {
			continue
		}

		*tryTime = candidateTime
		*proofHash = candidateHash
		return true, nil
	}

	return false, nil
}

// CheckProofOfStake runs the five-step full-block PoS check from spec
// §4.5: signature presence, stake-input lookup, script solving, signature
// verification, and kernel re-check in check mode.
func CheckProofOfStake(
	params *NetworkParams,
	index BlockIndex,
	txIndex TxIndex,
	solver ScriptSolver,
	verifier SignatureVerifier,
	header *BlockHeader,
) (bool, error) {

	if len(header.PosBlockSig) == 0 {
		return false, kernelError(ErrInvalidBlock,
			"CheckProofOfStake: block %v is not signed", header.Hash)
	}

	prevout := header.StakeInput
	stored, ok := txIndex.Lookup(prevout.Hash)
	if !ok {
		return false, kernelError(ErrInvalidBlock,
			"CheckProofOfStake: stake input transaction %v not found", prevout.Hash)
	}

	blockFrom, ok := index.Lookup(stored.ContainingBlock)
	if !ok {
		return false, kernelError(ErrInvalidBlock,
			"CheckProofOfStake: containing block %v not known to index", stored.ContainingBlock)
	}

	if int(prevout.Index) >= len(stored.Tx.TxOut) {
		return false, kernelError(ErrInvalidBlock,
			"CheckProofOfStake: stake input index %d out of range", prevout.Index)
	}
	txOut := stored.Tx.TxOut[prevout.Index]

	shape, solutions, err := solver.Solve(txOut.PkScript)
	if err != nil {
		return false, kernelError(ErrInvalidBlock, "CheckProofOfStake: %v", err)
	}

	var keyID stakeKeyID
	switch shape {
	case ScriptP2PKH, ScriptP2PK:
		if len(solutions) == 0 || len(solutions[0]) != len(keyID) {
			return false, kernelError(ErrInvalidBlock,
				"CheckProofOfStake: malformed key id for stake input script")
		}
		copy(keyID[:], solutions[0])
	default:
		return false, kernelError(ErrInvalidBlock,
			"CheckProofOfStake: unsupported stake type for block %v", header.Hash)
	}

	if !verifier.Verify(keyID, header.Hash, header.PosBlockSig) {
		return false, kernelError(ErrInvalidBlock,
			"CheckProofOfStake: failed block signature: %v", header.Hash)
	}

	tryTime := header.Time
	modifier := header.StakeModifier
	proofHash := header.ProofHash

	ok, err = CheckStakeKernelHash(
		params, index, header.Bits, blockFrom, prevout, txOut.Value,
		&tryTime, 0, KernelCheck, &proofHash, &modifier)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, kernelError(ErrInvalidBlock,
			"CheckProofOfStake: kernel check failed on coinstake %v, hashProof=%v", prevout.Hash, proofHash)
	}

	return true, nil
}
