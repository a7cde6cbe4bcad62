package ier

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	ErrEpochOrder = errors.New("ier: record epoch does not follow the last record")
	ErrBrokenLink = errors.New("ier: record does not link to its predecessor")
)

// History chains epoch records and keeps the most recent ones in memory.
// Older records are evicted; the chain link survives eviction because only
// the last hash is needed to append.
type History struct {
	records  *lru.Cache[idx.Epoch, EpochRecord]
	last     EpochRecord
	lastHash hash.Hash
	hasLast  bool
}

// NewHistory returns a history retaining up to size records.
func NewHistory(size int) (*History, error) {
	if size <= 0 {
		size = 1
	}
	records, err := lru.New[idx.Epoch, EpochRecord](size)
	if err != nil {
		return nil, err
	}
	return &History{records: records}, nil
}

// Append links r to the last record and stores it. The returned record has
// PrevHash set.
func (h *History) Append(r EpochRecord) (EpochRecord, error) {
	if h.hasLast && r.Epoch <= h.last.Epoch {
		return EpochRecord{}, fmt.Errorf("%w: %d after %d", ErrEpochOrder, r.Epoch, h.last.Epoch)
	}
	r = r.Copy()
	r.PrevHash = h.lastHash
	h.records.Add(r.Epoch, r)
	h.last = r
	h.lastHash = r.Hash()
	h.hasLast = true
	return r.Copy(), nil
}

// Get returns the record of epoch if it is still retained. Reads do not
// affect which records are evicted.
func (h *History) Get(epoch idx.Epoch) (EpochRecord, bool) {
	r, ok := h.records.Peek(epoch)
	if !ok {
		return EpochRecord{}, false
	}
	return r.Copy(), true
}

// Last returns the most recent record.
func (h *History) Last() (EpochRecord, bool) {
	if !h.hasLast {
		return EpochRecord{}, false
	}
	return h.last.Copy(), true
}

// LastHash returns the hash of the most recent record, or the zero hash.
func (h *History) LastHash() hash.Hash { return h.lastHash }

// Len returns the number of retained records.
func (h *History) Len() int { return h.records.Len() }

// Verify checks that records form an unbroken chain in increasing epoch
// order. The first record's PrevHash is not checked.
func Verify(records []EpochRecord) error {
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if cur.Epoch <= prev.Epoch {
			return fmt.Errorf("%w: %d after %d", ErrEpochOrder, cur.Epoch, prev.Epoch)
		}
		if cur.PrevHash != prev.Hash() {
			return fmt.Errorf("%w: epoch %d", ErrBrokenLink, cur.Epoch)
		}
	}
	return nil
}
