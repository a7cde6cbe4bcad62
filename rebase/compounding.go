package rebase

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

// rayDigits is the precision of the fixed-point fallback (10^27).
const rayDigits = 27

var (
	ray     = mustPow10(rayDigits)
	halfRay = mustDiv(ray, u256.New(2))
)

var (
	_ Engine = (*Linear)(nil)
	_ Engine = (*Compounding)(nil)
)

// Compounding projects stored amounts with rate^e / 10^(k*e).
//
// While rate^e and 10^(k*e) both fit in 256 bits the projection is exact.
// Past that point the growth factor is computed in 10^27 fixed point with
// half-up rounding after every multiplication, and the final scale-down uses
// a 512-bit intermediate. Factors are cached per epoch.
type Compounding struct {
	rate     u256.Int
	exponent uint64
	rayRate  u256.Int

	factors *lru.Cache[idx.Epoch, u256.Int]
}

// NewCompounding returns a compounding engine for the growth factor
// rate / 10^exponent, caching up to cacheSize per-epoch factors.
func NewCompounding(rate, exponent uint64, cacheSize int) (*Compounding, error) {
	if exponent > rayDigits {
		return nil, fmt.Errorf("compounding rebase: exponent %d exceeds fixed-point precision %d", exponent, rayDigits)
	}
	if cacheSize <= 0 {
		cacheSize = 1
	}
	factors, err := lru.New[idx.Epoch, u256.Int](cacheSize)
	if err != nil {
		return nil, err
	}
	scale, err := u256.Pow(u256.New(10), rayDigits-exponent)
	if err != nil {
		return nil, err
	}
	rayRate, err := u256.New(rate).Mul(scale)
	if err != nil {
		return nil, err
	}
	return &Compounding{
		rate:     u256.New(rate),
		exponent: exponent,
		rayRate:  rayRate,
		factors:  factors,
	}, nil
}

// Mode implements Engine.
func (c *Compounding) Mode() vulcan.RebaseMode { return vulcan.RebaseCompounding }

// SupplyIncrease implements Engine. The stored supply never grows.
func (c *Compounding) SupplyIncrease(idx.Epoch, u256.Int) (u256.Int, error) {
	return u256.Zero(), nil
}

// Project returns floor(amount * rate^epoch / 10^(exponent*epoch)).
func (c *Compounding) Project(amount u256.Int, epoch idx.Epoch) (u256.Int, error) {
	if epoch == 0 {
		return amount, nil
	}
	if interest, denom, ok := c.exact(epoch); ok {
		return u256.MulDiv(amount, interest, denom)
	}
	factor, err := c.Factor(epoch)
	if err != nil {
		return u256.Int{}, err
	}
	return u256.MulDiv(amount, factor, ray)
}

// Deproject returns ceil(amount * 10^(exponent*epoch) / rate^epoch), the
// inverse of Project rounded so that the projection of the result never
// falls short of amount.
func (c *Compounding) Deproject(amount u256.Int, epoch idx.Epoch) (u256.Int, error) {
	if epoch == 0 {
		return amount, nil
	}
	if interest, denom, ok := c.exact(epoch); ok {
		return u256.MulDivUp(amount, denom, interest)
	}
	factor, err := c.Factor(epoch)
	if err != nil {
		return u256.Int{}, err
	}
	return u256.MulDivUp(amount, ray, factor)
}

func (c *Compounding) exact(epoch idx.Epoch) (interest, denom u256.Int, ok bool) {
	var err error
	if interest, err = u256.Pow(c.rate, uint64(epoch)); err != nil {
		return
	}
	if denom, err = u256.Pow(u256.New(10), c.exponent*uint64(epoch)); err != nil {
		return
	}
	return interest, denom, true
}

// Factor returns the growth factor for epoch in 10^27 fixed point.
func (c *Compounding) Factor(epoch idx.Epoch) (u256.Int, error) {
	if f, ok := c.factors.Get(epoch); ok {
		return f, nil
	}
	f, err := rayPow(c.rayRate, uint64(epoch))
	if err != nil {
		return u256.Int{}, fmt.Errorf("compounding factor for epoch %d: %w", epoch, err)
	}
	c.factors.Add(epoch, f)
	return f, nil
}

// rayPow raises x (10^27 fixed point) to n by square-and-multiply.
func rayPow(x u256.Int, n uint64) (u256.Int, error) {
	z := ray
	for n > 0 {
		var err error
		if n&1 == 1 {
			if z, err = rayMul(z, x); err != nil {
				return u256.Int{}, err
			}
		}
		n >>= 1
		if n > 0 {
			if x, err = rayMul(x, x); err != nil {
				return u256.Int{}, err
			}
		}
	}
	return z, nil
}

// rayMul returns (a*b + ray/2) / ray.
func rayMul(a, b u256.Int) (u256.Int, error) {
	p, err := a.Mul(b)
	if err != nil {
		return u256.Int{}, err
	}
	if p, err = p.Add(halfRay); err != nil {
		return u256.Int{}, err
	}
	return p.Div(ray)
}

func mustPow10(n uint64) u256.Int {
	v, err := u256.Pow(u256.New(10), n)
	if err != nil {
		panic(err)
	}
	return v
}

func mustDiv(a, b u256.Int) u256.Int {
	v, err := a.Div(b)
	if err != nil {
		panic(err)
	}
	return v
}
