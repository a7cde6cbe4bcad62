package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

const sink = vulcan.NullAddress

func scaled(x uint64) u256.Int {
	v, err := Scale(u256.New(x))
	if err != nil {
		panic(err)
	}
	return v
}

func newGenesisStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(vulcan.InitialSupply(), vulcan.MaxSupply())
	require.NoError(t, err)
	require.NoError(t, s.InitializeGenesis([]Allocation{
		{"A", u256.New(1000)},
		{"B", u256.New(2000)},
	}, sink))
	return s
}

func requireRateConsistent(t *testing.T, s *Store) {
	t.Helper()
	want, err := s.TotalFragments().Div(s.TotalSupply())
	require.NoError(t, err)
	require.True(t, want.Eq(s.FragmentsPerUnit()), "rate %s, want %s", s.FragmentsPerUnit(), want)
}

func TestScaling(t *testing.T) {
	require := require.New(t)
	rate := u256.New(7)

	s, err := Scale(u256.New(3))
	require.NoError(err)
	require.Equal("3000000000000000000", s.String())

	f, err := ToFragments(s, rate)
	require.NoError(err)
	require.Equal("21000000000000000000", f.String())

	back, err := FromFragments(f, rate)
	require.NoError(err)
	require.True(back.Eq(s))

	sv, err := ScaleAndVirtualize(u256.New(3), rate)
	require.NoError(err)
	require.True(sv.Eq(f))

	floor, err := FromFragments(u256.New(20), rate)
	require.NoError(err)
	require.Equal("2", floor.String())

	_, err = FromFragments(f, u256.Zero())
	require.ErrorIs(err, u256.ErrDivisionByZero)

	_, err = ScaleAndVirtualize(u256.Max(), rate)
	require.ErrorIs(err, u256.ErrOverflow)
}

func TestNewStore(t *testing.T) {
	require := require.New(t)

	s, err := NewStore(vulcan.InitialSupply(), vulcan.MaxSupply())
	require.NoError(err)
	require.Equal("350885118900958167950215106086933054100818135350425", s.FragmentsPerUnit().String())
	requireRateConsistent(t, s)

	rem, err := s.TotalFragments().Mod(s.TotalSupply())
	require.NoError(err)
	require.True(rem.IsZero())

	_, err = NewStore(u256.Zero(), vulcan.MaxSupply())
	require.ErrorIs(err, u256.ErrDivisionByZero)

	_, err = NewStore(vulcan.MaxSupply(), vulcan.InitialSupply())
	require.Error(err)
}

func TestInitializeGenesis(t *testing.T) {
	require := require.New(t)
	s := newGenesisStore(t)

	require.Equal(scaled(1000).String(), s.Balance("A").String())
	require.Equal(scaled(2000).String(), s.Balance("B").String())
	require.Equal(scaled(330000000-3000).String(), s.Balance(sink).String())

	// the genesis seeds the whole fragment space
	sum, err := s.SumFragments()
	require.NoError(err)
	require.True(sum.Eq(s.TotalFragments()))

	require.Equal([]string{sink, "A", "B"}, s.Accounts())
}

func TestInitializeGenesisExceedsSupply(t *testing.T) {
	s, err := NewStore(u256.New(1000), u256.New(2000))
	require.NoError(t, err)

	// 1 external unit is 10^18 scaled units, far above a supply of 1000
	err = s.InitializeGenesis([]Allocation{{"A", u256.New(1)}}, sink)
	require.ErrorIs(t, err, ErrGenesisExceedsSupply)
	require.False(t, s.Has("A"))
	require.False(t, s.Has(sink))
}

func TestInitializeGenesisRejectsBadAllocations(t *testing.T) {
	for name, allocs := range map[string][]Allocation{
		"sink":      {{"A", u256.New(1)}, {sink, u256.New(1)}},
		"duplicate": {{"A", u256.New(1)}, {"B", u256.New(1)}, {"A", u256.New(2)}},
	} {
		t.Run(name, func(t *testing.T) {
			s, err := NewStore(vulcan.InitialSupply(), vulcan.MaxSupply())
			require.NoError(t, err)
			require.Error(t, s.InitializeGenesis(allocs, sink))
			require.Empty(t, s.Accounts())
		})
	}
}

func TestBalanceReadsDoNotInsert(t *testing.T) {
	require := require.New(t)
	s := newGenesisStore(t)

	require.True(s.Balance("nobody").IsZero())
	require.True(s.Balance("nobody").IsZero())
	require.False(s.Has("nobody"))

	s.InitAccount("nobody")
	require.True(s.Has("nobody"))
	require.True(s.Balance("nobody").IsZero())

	// InitAccount never resets an existing balance
	s.InitAccount("A")
	require.Equal(scaled(1000).String(), s.Balance("A").String())
}

func TestCreditDebit(t *testing.T) {
	require := require.New(t)
	s := newGenesisStore(t)
	one, err := ToFragments(scaled(1), s.FragmentsPerUnit())
	require.NoError(err)

	require.NoError(s.Credit("C", one))
	require.Equal(scaled(1).String(), s.Balance("C").String())

	require.NoError(s.Debit("C", one))
	require.True(s.Balance("C").IsZero())

	require.ErrorIs(s.Debit("C", one), ErrInsufficientBalance)
	require.ErrorIs(s.Debit("unknown", u256.Zero()), ErrInsufficientBalance)
	require.False(s.Has("unknown"))

	require.Error(s.Credit("A", u256.Max()))
	require.Equal(scaled(1000).String(), s.Balance("A").String())
}

func TestApplyConservesFragments(t *testing.T) {
	require := require.New(t)
	s := newGenesisStore(t)
	rate := s.FragmentsPerUnit()

	before, err := s.SumFragments()
	require.NoError(err)

	amounts := []uint64{100, 250, 1, 649}
	for _, a := range amounts {
		f, err := ToFragments(scaled(a), rate)
		require.NoError(err)
		require.NoError(s.Apply(Move{From: "A", To: "C", Fragments: f}))
	}
	f, err := ToFragments(scaled(500), rate)
	require.NoError(err)
	require.NoError(s.Apply(Move{From: "C", To: "B", Fragments: f}, Move{From: "B", To: "D", Fragments: f}))

	after, err := s.SumFragments()
	require.NoError(err)
	require.True(before.Eq(after))
	require.True(s.Balance("A").IsZero())
	require.Equal(scaled(500).String(), s.Balance("C").String())
	require.Equal(scaled(500).String(), s.Balance("D").String())
	require.Equal(scaled(2000).String(), s.Balance("B").String())
}

func TestApplyIsAllOrNothing(t *testing.T) {
	require := require.New(t)
	s := newGenesisStore(t)
	rate := s.FragmentsPerUnit()

	ok, err := ToFragments(scaled(600), rate)
	require.NoError(err)

	// the second leg overdraws A after the first one succeeded
	err = s.Apply(Move{From: "A", To: "T", Fragments: ok}, Move{From: "A", To: "C", Fragments: ok})
	require.ErrorIs(err, ErrInsufficientBalance)
	require.Equal(scaled(1000).String(), s.Balance("A").String())
	require.False(s.Has("T"))
	require.False(s.Has("C"))

	err = s.Apply(Move{From: "ghost", To: "A", Fragments: u256.Zero()})
	require.ErrorIs(err, ErrInsufficientBalance)
	require.False(s.Has("ghost"))
}

func TestMint(t *testing.T) {
	require := require.New(t)
	s := newGenesisStore(t)
	rateBefore := s.FragmentsPerUnit()
	fragsBefore := s.FragmentBalance("A")

	minted, err := s.Mint(scaled(330000))
	require.NoError(err)
	require.True(minted)
	requireRateConsistent(t, s)
	require.True(s.FragmentsPerUnit().Lt(rateBefore))

	// balances grow through the rate, fragments stay untouched
	require.True(fragsBefore.Eq(s.FragmentBalance("A")))
	require.True(s.Balance("A").Gt(scaled(1000)))
	require.Equal(scaled(330330000).String(), s.TotalSupply().String())
}

func TestMintCeiling(t *testing.T) {
	require := require.New(t)
	s, err := NewStore(u256.New(100), u256.New(150))
	require.NoError(err)

	minted, err := s.Mint(u256.New(51))
	require.NoError(err)
	require.False(minted)
	require.Equal("100", s.TotalSupply().String())

	minted, err = s.Mint(u256.New(50))
	require.NoError(err)
	require.True(minted)
	require.Equal("150", s.TotalSupply().String())
	requireRateConsistent(t, s)

	minted, err = s.Mint(u256.Max())
	require.NoError(err)
	require.False(minted)
}

func TestBurnStrategies(t *testing.T) {
	newStore := func(t *testing.T) *Store {
		s, err := NewStore(u256.New(1000), u256.New(5000))
		require.NoError(t, err)
		require.NoError(t, s.InitializeGenesis(nil, sink))
		return s
	}

	t.Run("legacy", func(t *testing.T) {
		require := require.New(t)
		s := newStore(t)
		tf, rate := s.TotalFragments(), s.FragmentsPerUnit()

		frags, err := s.Burn(sink, u256.New(100))
		require.NoError(err)
		want, _ := u256.New(100).Mul(rate)
		require.True(frags.Eq(want))

		require.Equal("900", s.TotalSupply().String())
		require.True(s.TotalFragments().Eq(tf))
		requireRateConsistent(t, s)
		require.True(s.FragmentsPerUnit().Gt(rate))
	})

	t.Run("revirtualize", func(t *testing.T) {
		require := require.New(t)
		s := newStore(t)
		rate := s.FragmentsPerUnit()

		_, err := s.BurnRevirtualize(sink, u256.New(100))
		require.NoError(err)

		require.Equal("900", s.TotalSupply().String())
		wantTF, _ := u256.New(900).Mul(rate)
		require.True(s.TotalFragments().Eq(wantTF))
		require.True(s.FragmentsPerUnit().Eq(rate))
		requireRateConsistent(t, s)
		require.Equal("900", s.Balance(sink).String())
	})

	t.Run("insufficient", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Burn("A", u256.New(1))
		require.ErrorIs(t, err, ErrInsufficientBalance)
		require.Equal(t, "1000", s.TotalSupply().String())
	})

	t.Run("exhausted", func(t *testing.T) {
		s := newStore(t)
		_, err := s.BurnRevirtualize(sink, u256.New(1000))
		require.ErrorIs(t, err, ErrSupplyExhausted)
		require.Equal(t, "1000", s.Balance(sink).String())
	})
}
