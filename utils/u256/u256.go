// Package u256 implements the fixed-width 256-bit unsigned integer used by the
// ledger for every balance, supply and rate value.
//
// The arithmetic lives in a ring of size 2^256 (github.com/holiman/uint256),
// but every operation exposed here is checked: results that would leave the
// [0, 2^256-1] range are reported as errors instead of silently wrapping.
// The only deliberate ring computation is MAX - (MAX mod N), which builds a
// fragment space that divides evenly by N and never wraps.
//
// Int is a value type. Operations never mutate their receiver, which makes it
// safe to keep Ints inside maps and structs without aliasing surprises.
package u256

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

// Standard arithmetic errors.
var (
	ErrOverflow       = errors.New("u256: overflow: result exceeds 256 bits")
	ErrUnderflow      = errors.New("u256: underflow: result would be negative")
	ErrDivisionByZero = errors.New("u256: division by zero")
	ErrSyntax         = errors.New("u256: invalid decimal number")
)

// Int is an unsigned 256-bit integer.
// The zero value is ready to use and equals 0.
type Int struct {
	v uint256.Int
}

// New returns an Int holding x.
func New(x uint64) Int {
	var z Int
	z.v.SetUint64(x)
	return z
}

// Zero returns 0.
func Zero() Int { return Int{} }

// Max returns 2^256 - 1, the largest representable value.
func Max() Int {
	var z Int
	z.v.SetAllOne()
	return z
}

// FromBig converts a non-negative big.Int that fits in 256 bits.
func FromBig(b *big.Int) (Int, error) {
	if b.Sign() < 0 {
		return Int{}, ErrUnderflow
	}
	var z Int
	if overflow := z.v.SetFromBig(b); overflow {
		return Int{}, ErrOverflow
	}
	return z, nil
}

// FromDecimal parses a base-10 string. Leading "+" and surrounding whitespace
// are not accepted.
func FromDecimal(s string) (Int, error) {
	if s == "" {
		return Int{}, ErrSyntax
	}
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return FromBig(b)
}

// MustFromDecimal is like FromDecimal but panics on malformed input.
// It is intended for package-level constants.
func MustFromDecimal(s string) Int {
	z, err := FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return z
}

// Add returns a + b, or ErrOverflow.
func (a Int) Add(b Int) (Int, error) {
	var z Int
	if _, overflow := z.v.AddOverflow(&a.v, &b.v); overflow {
		return Int{}, ErrOverflow
	}
	return z, nil
}

// Sub returns a - b, or ErrUnderflow when b > a.
func (a Int) Sub(b Int) (Int, error) {
	var z Int
	if _, underflow := z.v.SubOverflow(&a.v, &b.v); underflow {
		return Int{}, ErrUnderflow
	}
	return z, nil
}

// Mul returns a * b, or ErrOverflow.
func (a Int) Mul(b Int) (Int, error) {
	var z Int
	if _, overflow := z.v.MulOverflow(&a.v, &b.v); overflow {
		return Int{}, ErrOverflow
	}
	return z, nil
}

// Div returns floor(a / b), or ErrDivisionByZero.
func (a Int) Div(b Int) (Int, error) {
	if b.v.IsZero() {
		return Int{}, ErrDivisionByZero
	}
	var z Int
	z.v.Div(&a.v, &b.v)
	return z, nil
}

// Mod returns a mod b, or ErrDivisionByZero.
func (a Int) Mod(b Int) (Int, error) {
	if b.v.IsZero() {
		return Int{}, ErrDivisionByZero
	}
	var z Int
	z.v.Mod(&a.v, &b.v)
	return z, nil
}

// MulDiv returns floor(a * b / d) computed with a 512-bit intermediate
// product, so a*b itself may exceed 256 bits.
func MulDiv(a, b, d Int) (Int, error) {
	if d.v.IsZero() {
		return Int{}, ErrDivisionByZero
	}
	var z Int
	if _, overflow := z.v.MulDivOverflow(&a.v, &b.v, &d.v); overflow {
		return Int{}, ErrOverflow
	}
	return z, nil
}

// MulDivUp is MulDiv rounding the quotient up.
func MulDivUp(a, b, d Int) (Int, error) {
	q, err := MulDiv(a, b, d)
	if err != nil {
		return Int{}, err
	}
	var rem Int
	if rem.v.MulMod(&a.v, &b.v, &d.v); rem.v.IsZero() {
		return q, nil
	}
	return q.Add(New(1))
}

// Pow returns base^exp using square-and-multiply, or ErrOverflow as soon as
// any intermediate leaves the 256-bit range. Pow(x, 0) is 1, including x = 0.
func Pow(base Int, exp uint64) (Int, error) {
	result := New(1)
	sq := base
	for exp > 0 {
		var err error
		if exp&1 == 1 {
			if result, err = result.Mul(sq); err != nil {
				return Int{}, err
			}
		}
		exp >>= 1
		if exp > 0 {
			if sq, err = sq.Mul(sq); err != nil {
				return Int{}, err
			}
		}
	}
	return result, nil
}

// Cmp compares a and b and returns -1, 0 or +1.
func (a Int) Cmp(b Int) int { return a.v.Cmp(&b.v) }

// Eq reports a == b.
func (a Int) Eq(b Int) bool { return a.v.Eq(&b.v) }

// Gt reports a > b.
func (a Int) Gt(b Int) bool { return a.v.Gt(&b.v) }

// Gte reports a >= b.
func (a Int) Gte(b Int) bool { return !a.v.Lt(&b.v) }

// Lt reports a < b.
func (a Int) Lt(b Int) bool { return a.v.Lt(&b.v) }

// Lte reports a <= b.
func (a Int) Lte(b Int) bool { return !a.v.Gt(&b.v) }

// IsZero reports a == 0.
func (a Int) IsZero() bool { return a.v.IsZero() }

// Uint64 returns the value as uint64 and whether it fit.
func (a Int) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

// Big returns a freshly allocated big.Int copy.
func (a Int) Big() *big.Int { return a.v.ToBig() }

// String returns the base-10 representation.
func (a Int) String() string { return a.v.Dec() }

// Truncate returns at most the first n digits of the decimal representation.
func (a Int) Truncate(n int) string {
	s := a.String()
	if n < 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// Commify groups the decimal representation in thousands and drops the last
// six groups, i.e. the 18 fractional digits of a scaled amount.
// 1234567 * 10^18 is rendered as "1,234,567".
func (a Int) Commify() string {
	s := a.String()
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	if len(groups) > 6 {
		groups = groups[:len(groups)-6]
	}
	return strings.Join(groups, ",")
}

// MarshalText implements encoding.TextMarshaler (decimal form).
func (a Int) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (decimal form).
func (a *Int) UnmarshalText(text []byte) error {
	z, err := FromDecimal(string(text))
	if err != nil {
		return err
	}
	*a = z
	return nil
}

// MarshalJSON encodes the value as a quoted decimal string so that no
// precision is lost in transports limited to 53-bit numbers.
func (a Int) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (a *Int) UnmarshalJSON(input []byte) error {
	s := string(input)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return a.UnmarshalText([]byte(s))
}
