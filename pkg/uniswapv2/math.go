// Package uniswapv2 holds the Uniswap V2 router math.
package uniswapv2

import "math/big"

// fee: 0.3% => multiplier 997/1000
var (
	feeMul = big.NewInt(997)
	feeDen = big.NewInt(1000)
	one    = big.NewInt(1)
)

// GetAmountOut returns the output of swapping amountIn against the reserves.
// dst, t1 and t2 are scratch values; the result is written to dst.
func GetAmountOut(dst, t1, t2 *big.Int, amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	// t1 = amountIn * 997
	t1.Mul(amountIn, feeMul)
	// t2 = reserveIn * 1000
	t2.Mul(reserveIn, feeDen)
	// t2 = t2 + t1  (denominator)
	t2.Add(t2, t1)
	// dst = t1 * reserveOut (numerator)
	dst.Mul(t1, reserveOut)
	// dst = dst / t2  (avoid aliasing z==y)
	return dst.Div(dst, t2)
}

// GetAmountIn returns the input needed to receive amountOut, rounded up.
// amountOut must be below reserveOut.
func GetAmountIn(dst, t1, t2 *big.Int, amountOut, reserveIn, reserveOut *big.Int) *big.Int {
	// t1 = reserveIn * amountOut * 1000 (numerator)
	t1.Mul(reserveIn, amountOut)
	t1.Mul(t1, feeDen)
	// t2 = (reserveOut - amountOut) * 997 (denominator)
	t2.Sub(reserveOut, amountOut)
	t2.Mul(t2, feeMul)
	dst.Div(t1, t2)
	return dst.Add(dst, one)
}

// Quote returns the amount of B worth amountA at the reserve ratio, without fee.
func Quote(dst *big.Int, amountA, reserveA, reserveB *big.Int) *big.Int {
	dst.Mul(amountA, reserveB)
	return dst.Div(dst, reserveA)
}
