// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// stakeKeyID is the RIPEMD160(SHA256(pubkey)) identifier spec §4.5 step 3
// derives from either script shape.
type stakeKeyID = [20]byte

// BlockHeader is the header data the kernel consumes, as described in
// spec §3. The chain index owns the backing storage; the kernel only ever
// holds a borrowed, read-only pointer.
type BlockHeader struct {
	Height   int32
	Time     int64
	Bits     uint32
	Hash     chainhash.Hash
	PrevHash chainhash.Hash

	ProofHash     chainhash.Hash
	StakeModifier uint64

	IsProofOfStake          bool
	IsGeneratedStakeModifier bool
	StakeEntropyBit          uint32

	StakeInput  wire.OutPoint
	PosBlockSig []byte
}

// StoredTx is the transaction-plus-location tuple the kernel needs from
// the transaction lookup collaborator (spec §6: get_transaction).
type StoredTx struct {
	Tx              *wire.MsgTx
	ContainingBlock chainhash.Hash
	TxOffset        uint32
}

// BlockIndex is the read-only chain index collaborator (spec §6). Callers
// own the backing store and must hold whatever lock is required before
// invoking any kernel entry point; the kernel never mutates the index.
type BlockIndex interface {
	// Lookup returns the header for hash, or ok == false if unknown.
	Lookup(hash chainhash.Hash) (header *BlockHeader, ok bool)

	// Parent returns the header's immediate predecessor, or ok == false
	// at genesis.
	Parent(header *BlockHeader) (parent *BlockHeader, ok bool)
}

// TxIndex is the read-only transaction lookup collaborator (spec §6).
type TxIndex interface {
	// Lookup returns the transaction referenced by hash together with
	// the hash of the block that contains it, or ok == false if
	// unknown.
	Lookup(hash chainhash.Hash) (tx *StoredTx, ok bool)
}

// ScriptShape classifies a scriptPubKey for stake-input purposes, per
// spec §4.5 step 3.
type ScriptShape int

const (
	// ScriptUnsupported covers every script shape the kernel does not
	// know how to stake from.
	ScriptUnsupported ScriptShape = iota
	// ScriptP2PKH is a pay-to-pubkey-hash script.
	ScriptP2PKH
	// ScriptP2PK is a pay-to-pubkey script.
	ScriptP2PK
)

// ScriptSolver extracts a key identifier shape from a scriptPubKey (spec
// §6: solve_script).
type ScriptSolver interface {
	Solve(pkScript []byte) (shape ScriptShape, solutions [][]byte, err error)
}

// SignatureVerifier checks a signature over a message hash under a given
// key identifier (spec §6: verify_signature). The identifier is always a
// hash160, never a raw public key: a compact, recoverable signature lets
// the verifier derive the signing key from (sig, msgHash) alone, so a
// single code path covers both P2PKH and P2PK stake inputs.
type SignatureVerifier interface {
	Verify(keyID stakeKeyID, msgHash chainhash.Hash, sig []byte) bool
}

// DefaultScriptSolver classifies scripts using the real txscript address
// extractor, recognizing exactly the two stake-eligible shapes spec §4.5
// names: P2PKH and P2PK.
type DefaultScriptSolver struct {
	Params *chaincfg.Params
}

// Solve implements ScriptSolver.
func (s DefaultScriptSolver) Solve(pkScript []byte) (ScriptShape, [][]byte, error) {
	class, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, s.Params)
	if err != nil {
		return ScriptUnsupported, nil, kernelError(ErrInvalidBlock,
			"solve script: %v", err)
	}

	switch class {
	case txscript.PubKeyHashTy:
		if len(addrs) != 1 {
			return ScriptUnsupported, nil, kernelError(ErrInvalidBlock,
				"p2pkh script: unexpected address count %d", len(addrs))
		}
		addr, ok := addrs[0].(*btcutil.AddressPubKeyHash)
		if !ok {
			return ScriptUnsupported, nil, kernelError(ErrInvalidBlock,
				"p2pkh script: unexpected address type")
		}
		return ScriptP2PKH, [][]byte{addr.Hash160()[:]}, nil

	case txscript.PubKeyTy:
		if len(addrs) != 1 {
			return ScriptUnsupported, nil, kernelError(ErrInvalidBlock,
				"p2pk script: unexpected address count %d", len(addrs))
		}
		addr, ok := addrs[0].(*btcutil.AddressPubKey)
		if !ok {
			return ScriptUnsupported, nil, kernelError(ErrInvalidBlock,
				"p2pk script: unexpected address type")
		}
		hash160 := btcutil.Hash160(addr.PubKey().SerializeCompressed())
		return ScriptP2PK, [][]byte{hash160}, nil

	default:
		return ScriptUnsupported, nil, kernelError(ErrInvalidBlock,
			"unsupported stake type %v", class)
	}
}

// DefaultSignatureVerifier verifies a compact, recoverable secp256k1
// signature over a block hash, the scheme the teacher's CheckBlockSignature
// assumes its embedded-pubkey case already satisfies and spec §4.5 step 3
// requires for the hash-only P2PKH case: the signing key is recovered from
// (sig, msgHash) and then hash160'd for comparison against keyID, rather
// than trusted from a second, separately-supplied value.
type DefaultSignatureVerifier struct{}

// Verify implements SignatureVerifier.
func (DefaultSignatureVerifier) Verify(keyID stakeKeyID, msgHash chainhash.Hash, sig []byte) bool {
	pubKey, _, err := ecdsa.RecoverCompact(sig, msgHash[:])
	if err != nil {
		return false
	}
	recovered := btcutil.Hash160(pubKey.SerializeCompressed())
	return keyID == stakeKeyID(recovered)
}
