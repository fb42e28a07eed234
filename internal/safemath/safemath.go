// Package safemath holds the checked 256-bit arithmetic used by the ledger and
// the pair engine. Every operation fails closed: overflow, underflow and
// division by zero are returned as errors and never wrap.
package safemath

import (
	"github.com/holiman/uint256"
)

// Uint112Bits is the width of a pair reserve.
const Uint112Bits = 112

var maxUint112 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), Uint112Bits), uint256.NewInt(1))

// MaxUint112 returns 2^112 - 1.
func MaxUint112() *uint256.Int {
	return maxUint112.Clone()
}

// Add returns x + y.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Sub returns x - y.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrUnderflow
	}
	return z, nil
}

// Mul returns x * y.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}

// Div returns the floor of x / y.
func Div(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, ErrDivisionByZero
	}
	return new(uint256.Int).Div(x, y), nil
}

// MulDiv returns floor(x * y / d), failing if the product overflows 256 bits.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	p, err := Mul(x, y)
	if err != nil {
		return nil, err
	}
	return Div(p, d)
}

// SaturatingSub returns x - y, or zero when y > x.
func SaturatingSub(x, y *uint256.Int) *uint256.Int {
	if y.Gt(x) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(x, y)
}

// Min returns a copy of the smaller of x and y.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x.Clone()
	}
	return y.Clone()
}

// ToUint112 checks that x fits into 112 bits and returns a copy of it.
func ToUint112(x *uint256.Int) (*uint256.Int, error) {
	if x.BitLen() > Uint112Bits {
		return nil, ErrOverflow
	}
	return x.Clone(), nil
}

// Sqrt returns floor(sqrt(y)) using the Babylonian method seeded at y/2 + 1.
func Sqrt(y *uint256.Int) *uint256.Int {
	three := uint256.NewInt(3)
	if y.Gt(three) {
		z := y.Clone()
		// y/2 + 1 cannot overflow: y/2 <= 2^255 - 1.
		x := new(uint256.Int).Rsh(y, 1)
		x.AddUint64(x, 1)
		for x.Lt(z) {
			z.Set(x)
			// (y/x + x) / 2 stays below 2^256 because x < z <= y.
			q := new(uint256.Int).Div(y, x)
			x.Add(q, x)
			x.Rsh(x, 1)
		}
		return z
	}
	if !y.IsZero() {
		return uint256.NewInt(1)
	}
	return new(uint256.Int)
}
