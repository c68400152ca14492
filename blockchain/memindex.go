// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MemBlockIndex is an in-memory BlockIndex, keyed by block hash. It is a
// reference implementation for tests and small embedders that don't carry
// a full chain database; production nodes back BlockIndex with their own
// on-disk store instead.
type MemBlockIndex struct {
	mu      sync.RWMutex
	headers map[chainhash.Hash]*BlockHeader
}

// NewMemBlockIndex returns an empty MemBlockIndex.
func NewMemBlockIndex() *MemBlockIndex {
	return &MemBlockIndex{headers: make(map[chainhash.Hash]*BlockHeader)}
}

// Add inserts or replaces header, keyed by its own Hash field.
func (idx *MemBlockIndex) Add(header *BlockHeader) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.headers[header.Hash] = header
}

// Lookup implements BlockIndex.
func (idx *MemBlockIndex) Lookup(hash chainhash.Hash) (*BlockHeader, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	header, ok := idx.headers[hash]
	return header, ok
}

// Parent implements BlockIndex.
func (idx *MemBlockIndex) Parent(header *BlockHeader) (*BlockHeader, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	parent, ok := idx.headers[header.PrevHash]
	return parent, ok
}

// MemTxIndex is an in-memory TxIndex, keyed by transaction hash.
type MemTxIndex struct {
	mu  sync.RWMutex
	txs map[chainhash.Hash]*StoredTx
}

// NewMemTxIndex returns an empty MemTxIndex.
func NewMemTxIndex() *MemTxIndex {
	return &MemTxIndex{txs: make(map[chainhash.Hash]*StoredTx)}
}

// Add inserts or replaces tx, keyed by hash.
func (idx *MemTxIndex) Add(hash chainhash.Hash, tx *StoredTx) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.txs[hash] = tx
}

// Lookup implements TxIndex.
func (idx *MemTxIndex) Lookup(hash chainhash.Hash) (*StoredTx, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	tx, ok := idx.txs[hash]
	return tx, ok
}
