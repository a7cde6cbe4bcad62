package ledger

import (
	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

var decimalRange = vulcan.DecimalRange()

// Scale converts an external amount into scaled units (x * 10^18).
func Scale(x u256.Int) (u256.Int, error) {
	return x.Mul(decimalRange)
}

// ToFragments converts a scaled amount into fragments at the given rate.
func ToFragments(scaled, rate u256.Int) (u256.Int, error) {
	return scaled.Mul(rate)
}

// FromFragments converts fragments back into scaled units, rounding down.
func FromFragments(frags, rate u256.Int) (u256.Int, error) {
	return frags.Div(rate)
}

// ScaleAndVirtualize converts an external amount straight into fragments.
func ScaleAndVirtualize(x, rate u256.Int) (u256.Int, error) {
	scaled, err := Scale(x)
	if err != nil {
		return u256.Int{}, err
	}
	return ToFragments(scaled, rate)
}
