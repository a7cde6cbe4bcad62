package u256

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const maxDecimal = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

// TestMax verifies the upper bound of the ring.
func TestMax(t *testing.T) {
	require := require.New(t)

	require.Equal(maxDecimal, Max().String())

	_, err := Max().Add(New(1))
	require.ErrorIs(err, ErrOverflow)

	sum, err := Max().Add(Zero())
	require.NoError(err)
	require.True(sum.Eq(Max()))
}

// TestCheckedArithmetic walks every checked operation through its success
// and failure path.
func TestCheckedArithmetic(t *testing.T) {
	require := require.New(t)

	a, b := New(1000), New(7)

	sum, err := a.Add(b)
	require.NoError(err)
	require.Equal("1007", sum.String())

	diff, err := a.Sub(b)
	require.NoError(err)
	require.Equal("993", diff.String())

	_, err = b.Sub(a)
	require.ErrorIs(err, ErrUnderflow)

	prod, err := a.Mul(b)
	require.NoError(err)
	require.Equal("7000", prod.String())

	_, err = Max().Mul(New(2))
	require.ErrorIs(err, ErrOverflow)

	quo, err := a.Div(b)
	require.NoError(err)
	require.Equal("142", quo.String()) // floor(1000/7)

	_, err = a.Div(Zero())
	require.ErrorIs(err, ErrDivisionByZero)

	rem, err := a.Mod(b)
	require.NoError(err)
	require.Equal("6", rem.String())

	_, err = a.Mod(Zero())
	require.ErrorIs(err, ErrDivisionByZero)
}

// TestFragmentSpace reproduces MAX - (MAX mod N) and checks that the result
// divides evenly by N.
func TestFragmentSpace(t *testing.T) {
	require := require.New(t)

	supply := MustFromDecimal("330000000000000000000000000")
	rem, err := Max().Mod(supply)
	require.NoError(err)
	space, err := Max().Sub(rem)
	require.NoError(err)

	check, err := space.Mod(supply)
	require.NoError(err)
	require.True(check.IsZero())

	rate, err := space.Div(supply)
	require.NoError(err)
	require.Equal("350885118900958167950215106086933054100818135350425", rate.String())
}

// TestPow covers the exponent edge cases and the overflow boundary.
func TestPow(t *testing.T) {
	tests := []struct {
		name string
		base uint64
		exp  uint64
		want string
		err  error
	}{
		{"zero exponent", 12345, 0, "1", nil},
		{"zero base zero exponent", 0, 0, "1", nil},
		{"zero base", 0, 5, "0", nil},
		{"ten to eighteen", 10, 18, "1000000000000000000", nil},
		{"rate squared", 100001256, 2, "10000251201577536", nil},
		{"two to 255", 2, 255, new(big.Int).Lsh(big.NewInt(1), 255).String(), nil},
		{"two to 256", 2, 256, "", ErrOverflow},
		{"ten to 78", 10, 78, "", ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pow(New(tt.base), tt.exp)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

// TestMulDiv verifies that the 512-bit intermediate is used.
func TestMulDiv(t *testing.T) {
	require := require.New(t)

	// MAX * MAX / MAX does not fit in 256 bits halfway through.
	got, err := MulDiv(Max(), Max(), Max())
	require.NoError(err)
	require.True(got.Eq(Max()))

	_, err = MulDiv(Max(), New(2), New(1))
	require.ErrorIs(err, ErrOverflow)

	_, err = MulDiv(New(1), New(1), Zero())
	require.ErrorIs(err, ErrDivisionByZero)
}

func TestMulDivUp(t *testing.T) {
	tests := []struct {
		a, b, d Int
		want    string
	}{
		{New(10), New(3), New(5), "6"},
		{New(10), New(3), New(4), "8"},
		{New(1), New(1), New(3), "1"},
		{Zero(), New(7), New(3), "0"},
		{Max(), Max(), Max(), Max().String()},
	}
	for _, tt := range tests {
		got, err := MulDivUp(tt.a, tt.b, tt.d)
		require.NoError(t, err)
		require.Equal(t, tt.want, got.String(), "%s*%s/%s", tt.a, tt.b, tt.d)
	}

	_, err := MulDivUp(Max(), New(3), New(2))
	require.ErrorIs(t, err, ErrOverflow)
	_, err = MulDivUp(New(1), New(1), Zero())
	require.ErrorIs(t, err, ErrDivisionByZero)
}

// TestComparisons checks the comparison helpers against each other.
func TestComparisons(t *testing.T) {
	require := require.New(t)
	small, large := New(1), New(2)

	require.True(small.Lt(large))
	require.True(small.Lte(large))
	require.True(small.Lte(small))
	require.True(large.Gt(small))
	require.True(large.Gte(large))
	require.False(large.Lte(small))
	require.Equal(-1, small.Cmp(large))
	require.Equal(0, large.Cmp(New(2)))
	require.True(Zero().IsZero())
}

// TestDecimalParsing covers FromDecimal/FromBig edge cases.
func TestDecimalParsing(t *testing.T) {
	require := require.New(t)

	v, err := FromDecimal(maxDecimal)
	require.NoError(err)
	require.True(v.Eq(Max()))

	_, err = FromDecimal("115792089237316195423570985008687907853269984665640564039457584007913129639936")
	require.ErrorIs(err, ErrOverflow)

	_, err = FromDecimal("-1")
	require.ErrorIs(err, ErrUnderflow)

	_, err = FromDecimal("12a")
	require.ErrorIs(err, ErrSyntax)

	_, err = FromDecimal("")
	require.ErrorIs(err, ErrSyntax)
}

// TestDisplay verifies the grouped and truncated display forms.
func TestDisplay(t *testing.T) {
	scaled := MustFromDecimal("1234567000000000000000000")
	require.Equal(t, "1,234,567", scaled.Commify())
	require.Equal(t, "123,456", New(123456).Commify())
	require.Equal(t, "0", Zero().Commify())
	require.Equal(t, "1234", scaled.Truncate(4))
	require.Equal(t, "123456", New(123456).Truncate(10))
}

// TestJSON verifies the string form on the wire and the number fallback.
func TestJSON(t *testing.T) {
	require := require.New(t)

	out, err := json.Marshal(struct {
		Balance Int `json:"balance"`
	}{MustFromDecimal("900000000000000000000")})
	require.NoError(err)
	require.JSONEq(`{"balance":"900000000000000000000"}`, string(out))

	var in struct {
		A Int `json:"a"`
		B Int `json:"b"`
	}
	require.NoError(json.Unmarshal([]byte(`{"a":"42","b":1000}`), &in))
	require.Equal("42", in.A.String())
	require.Equal("1000", in.B.String())
}
