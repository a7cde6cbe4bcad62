// Package ier (Inter-Epoch Records) defines the snapshot recorded at every
// epoch transition of the ledger. Records are chained: each one carries the
// hash of its predecessor, so a sequence of records can be checked for gaps
// or tampering after the fact.
package ier

import (
	"crypto/sha256"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rlp"
)

// EpochRecord is the ledger state right after entering an epoch.
// Amounts are scaled units; FragmentsPerUnit is the raw rate.
type EpochRecord struct {
	// Epoch is the epoch that was entered.
	Epoch idx.Epoch
	// Block is the block that crossed the epoch boundary.
	Block idx.Block
	// RebaseActive is false once the supply ceiling has been reached.
	RebaseActive bool

	TotalSupply       *big.Int
	CirculatingSupply *big.Int // TotalSupply minus the fire pit balance
	FragmentsPerUnit  *big.Int
	FirePitBalance    *big.Int

	// SlashCount and SlashedTotal accumulate over the ledger lifetime.
	SlashCount   uint64
	SlashedTotal *big.Int

	// HolderBalance is the balance of the monitored holder account.
	HolderBalance *big.Int

	// PrevHash is the hash of the previous record, zero for the first one.
	PrevHash hash.Hash
}

// bodyHash calculates the SHA256 hash of the RLP-encoded record.
func (r EpochRecord) bodyHash() hash.Hash {
	hasher := sha256.New()
	err := rlp.Encode(hasher, &r)
	if err != nil {
		panic("can't hash: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}

// Hash combines the big-endian epoch index with the record body hash.
// The next record stores it as PrevHash.
func (r EpochRecord) Hash() hash.Hash {
	return hash.Of(bigendian.Uint32ToBytes(uint32(r.Epoch)), r.bodyHash().Bytes())
}

// Copy returns a record that shares no *big.Int with r.
func (r EpochRecord) Copy() EpochRecord {
	cp := r
	cp.TotalSupply = copyBig(r.TotalSupply)
	cp.CirculatingSupply = copyBig(r.CirculatingSupply)
	cp.FragmentsPerUnit = copyBig(r.FragmentsPerUnit)
	cp.FirePitBalance = copyBig(r.FirePitBalance)
	cp.SlashedTotal = copyBig(r.SlashedTotal)
	cp.HolderBalance = copyBig(r.HolderBalance)
	return cp
}

func copyBig(b *big.Int) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).Set(b)
}
