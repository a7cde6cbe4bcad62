// Package ledger owns the account balances of a Vulcan ledger and the supply
// triple (totalSupply, totalFragments, fragmentsPerUnit) they are expressed in.
//
// Balances are stored in fragments. A fragment balance converts to scaled
// units by dividing by fragmentsPerUnit, so changing the rate rebases every
// balance at once without touching the map. Every mutation of the supply
// updates the affected balance first and recomputes the rate last.
//
// Store is not safe for concurrent use.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rony4d/go-vulcan/utils/u256"
)

var (
	// ErrInsufficientBalance is returned when a debit would drive a balance
	// below zero. No state is modified.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrGenesisExceedsSupply is returned when the genesis balances do not
	// fit in the initial supply.
	ErrGenesisExceedsSupply = errors.New("genesis balances exceed total supply")

	// ErrSupplyExhausted is returned when a burn would leave no supply.
	ErrSupplyExhausted = errors.New("burn would exhaust total supply")
)

// Allocation is a genesis balance in external units.
type Allocation struct {
	Account string
	Amount  u256.Int
}

// Move is a single fragment transfer between two accounts.
type Move struct {
	From      string
	To        string
	Fragments u256.Int
}

// Store holds the fragment balances and the supply state.
type Store struct {
	balances map[string]u256.Int

	totalSupply    u256.Int // scaled units
	totalFragments u256.Int
	rate           u256.Int // fragments per scaled unit
	maxSupply      u256.Int
}

// NewStore builds the fragment space for initialSupply:
// totalFragments = MAX - (MAX mod initialSupply), which divides evenly by
// initialSupply, and fragmentsPerUnit = totalFragments / initialSupply.
func NewStore(initialSupply, maxSupply u256.Int) (*Store, error) {
	if initialSupply.IsZero() {
		return nil, fmt.Errorf("initial supply: %w", u256.ErrDivisionByZero)
	}
	if initialSupply.Gt(maxSupply) {
		return nil, fmt.Errorf("initial supply %s exceeds max supply %s", initialSupply, maxSupply)
	}
	rem, err := u256.Max().Mod(initialSupply)
	if err != nil {
		return nil, err
	}
	totalFragments, err := u256.Max().Sub(rem)
	if err != nil {
		return nil, err
	}
	rate, err := totalFragments.Div(initialSupply)
	if err != nil {
		return nil, err
	}
	return &Store{
		balances:       make(map[string]u256.Int),
		totalSupply:    initialSupply,
		totalFragments: totalFragments,
		rate:           rate,
		maxSupply:      maxSupply,
	}, nil
}

// InitAccount creates an empty balance for account if it does not exist yet.
func (s *Store) InitAccount(account string) {
	if _, ok := s.balances[account]; !ok {
		s.balances[account] = u256.Zero()
	}
}

// InitializeGenesis seeds the genesis balances in the given order and
// assigns the fragments of the remaining supply to sink. Nothing is stored
// unless every allocation fits.
func (s *Store) InitializeGenesis(allocs []Allocation, sink string) error {
	seeded := make(map[string]u256.Int, len(allocs))
	sum := u256.Zero()
	for _, a := range allocs {
		if a.Account == sink {
			return fmt.Errorf("sink %s cannot hold a genesis balance", sink)
		}
		if _, dup := seeded[a.Account]; dup {
			return fmt.Errorf("duplicate genesis account %s", a.Account)
		}
		frags, err := ScaleAndVirtualize(a.Amount, s.rate)
		if err != nil {
			return fmt.Errorf("%w: account %s: %v", ErrGenesisExceedsSupply, a.Account, err)
		}
		if sum, err = sum.Add(frags); err != nil {
			return fmt.Errorf("%w: %v", ErrGenesisExceedsSupply, err)
		}
		seeded[a.Account] = frags
	}

	supplyFrags, err := ToFragments(s.totalSupply, s.rate)
	if err != nil {
		return err
	}
	remainder, err := supplyFrags.Sub(sum)
	if err != nil {
		return ErrGenesisExceedsSupply
	}

	for account, frags := range seeded {
		s.balances[account] = frags
	}
	s.balances[sink] = remainder
	return nil
}

// Has reports whether account has a balance entry.
func (s *Store) Has(account string) bool {
	_, ok := s.balances[account]
	return ok
}

// Balance returns the balance of account in scaled units, or zero for
// unknown accounts. Reads never create entries.
func (s *Store) Balance(account string) u256.Int {
	frags, ok := s.balances[account]
	if !ok {
		return u256.Zero()
	}
	// rate is positive for every reachable store state
	bal, _ := FromFragments(frags, s.rate)
	return bal
}

// FragmentBalance returns the stored fragment balance of account.
func (s *Store) FragmentBalance(account string) u256.Int {
	return s.balances[account]
}

// Credit adds fragments to account, creating it if necessary.
func (s *Store) Credit(account string, frags u256.Int) error {
	next, err := s.balances[account].Add(frags)
	if err != nil {
		return fmt.Errorf("credit %s: %w", account, err)
	}
	s.balances[account] = next
	return nil
}

// Debit removes fragments from account, or fails with
// ErrInsufficientBalance without modifying it. Unknown accounts cannot be
// debited, not even by zero.
func (s *Store) Debit(account string, frags u256.Int) error {
	current, ok := s.balances[account]
	if !ok {
		return ErrInsufficientBalance
	}
	next, err := current.Sub(frags)
	if err != nil {
		return ErrInsufficientBalance
	}
	s.balances[account] = next
	return nil
}

// Apply executes moves in order as one unit. The moves are first staged on
// a copy of the touched balances; if any leg fails, nothing is committed.
// Senders must have an entry; recipients are created on credit.
func (s *Store) Apply(moves ...Move) error {
	staged := make(map[string]u256.Int, 2*len(moves))
	get := func(account string) (u256.Int, bool) {
		if v, ok := staged[account]; ok {
			return v, true
		}
		v, ok := s.balances[account]
		return v, ok
	}
	for _, m := range moves {
		current, ok := get(m.From)
		if !ok {
			return ErrInsufficientBalance
		}
		from, err := current.Sub(m.Fragments)
		if err != nil {
			return ErrInsufficientBalance
		}
		staged[m.From] = from
		recipient, _ := get(m.To)
		to, err := recipient.Add(m.Fragments)
		if err != nil {
			return fmt.Errorf("credit %s: %w", m.To, err)
		}
		staged[m.To] = to
	}
	for account, v := range staged {
		s.balances[account] = v
	}
	return nil
}

// Mint grows the total supply by amount (scaled) and recomputes the rate.
// It returns false without modifying the store when the result would exceed
// the max supply.
func (s *Store) Mint(amount u256.Int) (bool, error) {
	next, err := s.totalSupply.Add(amount)
	if err != nil {
		return false, nil
	}
	if next.Gt(s.maxSupply) {
		return false, nil
	}
	rate, err := s.totalFragments.Div(next)
	if err != nil {
		return false, err
	}
	s.totalSupply = next
	s.rate = rate
	return true, nil
}

// Burn removes amount (scaled) from account and from the total supply,
// keeping totalFragments and recomputing fragmentsPerUnit from it. It
// returns the number of fragments removed from account.
func (s *Store) Burn(account string, amount u256.Int) (u256.Int, error) {
	frags, balance, supply, err := s.prepareBurn(account, amount)
	if err != nil {
		return u256.Int{}, err
	}
	rate, err := s.totalFragments.Div(supply)
	if err != nil {
		return u256.Int{}, err
	}
	s.balances[account] = balance
	s.totalSupply = supply
	s.rate = rate
	return frags, nil
}

// BurnRevirtualize is Burn with the fire pit accounting variant: after the
// balance and supply are reduced, totalFragments is rebuilt as the new
// supply at the pre-burn rate, and the rate is recomputed from that.
func (s *Store) BurnRevirtualize(account string, amount u256.Int) (u256.Int, error) {
	frags, balance, supply, err := s.prepareBurn(account, amount)
	if err != nil {
		return u256.Int{}, err
	}
	totalFragments, err := ToFragments(supply, s.rate)
	if err != nil {
		return u256.Int{}, err
	}
	rate, err := totalFragments.Div(supply)
	if err != nil {
		return u256.Int{}, err
	}
	s.balances[account] = balance
	s.totalSupply = supply
	s.totalFragments = totalFragments
	s.rate = rate
	return frags, nil
}

func (s *Store) prepareBurn(account string, amount u256.Int) (frags, balance, supply u256.Int, err error) {
	if frags, err = ToFragments(amount, s.rate); err != nil {
		return
	}
	if balance, err = s.balances[account].Sub(frags); err != nil {
		err = ErrInsufficientBalance
		return
	}
	if supply, err = s.totalSupply.Sub(amount); err != nil {
		return
	}
	if supply.IsZero() {
		err = ErrSupplyExhausted
	}
	return
}

// TotalSupply returns the total supply in scaled units.
func (s *Store) TotalSupply() u256.Int { return s.totalSupply }

// TotalFragments returns the size of the fragment space.
func (s *Store) TotalFragments() u256.Int { return s.totalFragments }

// FragmentsPerUnit returns the current conversion rate.
func (s *Store) FragmentsPerUnit() u256.Int { return s.rate }

// MaxSupply returns the mint ceiling.
func (s *Store) MaxSupply() u256.Int { return s.maxSupply }

// SumFragments returns the sum of all fragment balances.
func (s *Store) SumFragments() (u256.Int, error) {
	sum := u256.Zero()
	for _, v := range s.balances {
		var err error
		if sum, err = sum.Add(v); err != nil {
			return u256.Int{}, err
		}
	}
	return sum, nil
}

// Accounts returns all account identifiers with an entry, sorted.
func (s *Store) Accounts() []string {
	keys := make([]string, 0, len(s.balances))
	for k := range s.balances {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
