package ier

import (
	"math/big"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/stretchr/testify/require"
)

func record(epoch idx.Epoch, supply int64) EpochRecord {
	return EpochRecord{
		Epoch:             epoch,
		Block:             idx.Block(epoch) * 180,
		RebaseActive:      true,
		TotalSupply:       big.NewInt(supply),
		CirculatingSupply: big.NewInt(supply / 2),
		FragmentsPerUnit:  big.NewInt(7),
		FirePitBalance:    big.NewInt(supply / 2),
		SlashedTotal:      big.NewInt(0),
		HolderBalance:     big.NewInt(10),
	}
}

func TestRecordHash(t *testing.T) {
	require := require.New(t)

	a := record(1, 1000)
	require.Equal(a.Hash(), a.Hash())
	require.NotEqual(hash.Hash{}, a.Hash())

	b := a.Copy()
	b.TotalSupply.SetInt64(1001)
	require.NotEqual(a.Hash(), b.Hash())
	require.Equal(int64(1000), a.TotalSupply.Int64())

	c := a.Copy()
	c.Epoch = 2
	require.NotEqual(a.Hash(), c.Hash())

	d := a.Copy()
	d.PrevHash = hash.BytesToHash([]byte{1})
	require.NotEqual(a.Hash(), d.Hash())
}

func TestHistoryChains(t *testing.T) {
	require := require.New(t)
	h, err := NewHistory(8)
	require.NoError(err)

	_, ok := h.Last()
	require.False(ok)

	var chain []EpochRecord
	for e := idx.Epoch(1); e <= 5; e++ {
		r, err := h.Append(record(e, int64(e)*1000))
		require.NoError(err)
		chain = append(chain, r)
	}
	require.Equal(hash.Hash{}, chain[0].PrevHash)
	require.Equal(chain[0].Hash(), chain[1].PrevHash)
	require.NoError(Verify(chain))

	last, ok := h.Last()
	require.True(ok)
	require.Equal(idx.Epoch(5), last.Epoch)
	require.Equal(last.Hash(), h.LastHash())

	got, ok := h.Get(3)
	require.True(ok)
	require.Equal(chain[2].Hash(), got.Hash())

	_, err = h.Append(record(5, 1))
	require.ErrorIs(err, ErrEpochOrder)

	chain[3].TotalSupply = big.NewInt(1)
	require.ErrorIs(Verify(chain), ErrBrokenLink)
}

func TestHistoryEviction(t *testing.T) {
	require := require.New(t)
	h, err := NewHistory(2)
	require.NoError(err)

	for e := idx.Epoch(1); e <= 4; e++ {
		_, err := h.Append(record(e, 1))
		require.NoError(err)
	}
	require.Equal(2, h.Len())
	_, ok := h.Get(1)
	require.False(ok)
	_, ok = h.Get(4)
	require.True(ok)

	// appends keep linking after eviction
	r, err := h.Append(record(5, 1))
	require.NoError(err)
	prev, _ := h.Get(4)
	require.Equal(prev.Hash(), r.PrevHash)
}

func TestHistoryReadsDoNotRetain(t *testing.T) {
	require := require.New(t)
	h, err := NewHistory(3)
	require.NoError(err)

	for e := idx.Epoch(0); e <= 2; e++ {
		_, err := h.Append(record(e, 1))
		require.NoError(err)
	}
	_, ok := h.Get(0)
	require.True(ok)

	_, err = h.Append(record(3, 1))
	require.NoError(err)
	_, ok = h.Get(0)
	require.False(ok)
	for e := idx.Epoch(1); e <= 3; e++ {
		_, ok := h.Get(e)
		require.True(ok, "epoch %d", e)
	}
}
