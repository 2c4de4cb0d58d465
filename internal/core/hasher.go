package core

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"OogaLedger/internal/storage"
)

const GenesisHashSeed = "OogaLedger:genesis:v1"

// StateHasher chains a SHA-256 hash over the writes each call
// commits: hash[n] = SHA-256(hash[n-1] || sequence || digest). Calls
// that commit nothing (queries, failures) advance the chain with an
// empty digest, so every receipt links to its predecessor.
type StateHasher struct {
	tip [32]byte
}

func NewStateHasher() *StateHasher {
	return &StateHasher{tip: sha256.Sum256([]byte(GenesisHashSeed))}
}

// ComputeHash folds one call's digest into the chain and returns the
// new tip.
func (h *StateHasher) ComputeHash(sequence int64, digest []byte) [32]byte {
	hasher := sha256.New()
	hasher.Write(h.tip[:])

	var seqBuf [8]byte
	binary.LittleEndian.PutUint64(seqBuf[:], uint64(sequence))
	hasher.Write(seqBuf[:])

	hasher.Write(digest)

	var hash [32]byte
	copy(hash[:], hasher.Sum(nil))
	h.tip = hash

	return hash
}

// Tip returns the current chain tip.
func (h *StateHasher) Tip() [32]byte {
	return h.tip
}

// SetTip restores the chain tip when resuming from the last persisted
// receipt.
func (h *StateHasher) SetTip(tip [32]byte) {
	h.tip = tip
}

// DigestPuts builds the canonical digest of a call's committed
// writes: key/value pairs sorted by key, each length-prefixed. An
// empty batch digests to nil.
func DigestPuts(puts []storage.Put) []byte {
	if len(puts) == 0 {
		return nil
	}

	sorted := make([]storage.Put, len(puts))
	copy(sorted, puts)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	digest := make([]byte, 0, len(sorted)*48)
	var lenBuf [4]byte
	for _, p := range sorted {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p.Key)))
		digest = append(digest, lenBuf[:]...)
		digest = append(digest, p.Key...)
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p.Value)))
		digest = append(digest, lenBuf[:]...)
		digest = append(digest, p.Value...)
	}
	return digest
}
