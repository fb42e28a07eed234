package pair

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/safemath"
)

// update stores balance0/balance1 as the new reserves and, on the first
// update of a block, adds the price under the old reserves times the time
// elapsed to both cumulative prices.
func (p *Pair) update(balance0, balance1, reserve0, reserve1 *uint256.Int, now uint64) error {
	b0, err := safemath.ToUint112(balance0)
	if err != nil {
		return fmt.Errorf("balance0 %s: %w", balance0.Dec(), err)
	}
	b1, err := safemath.ToUint112(balance1)
	if err != nil {
		return fmt.Errorf("balance1 %s: %w", balance1.Dec(), err)
	}

	blockTimestamp := uint32(now) // mod 2^32
	_, _, blockTimestampLast := p.GetReserves()
	timeElapsed := blockTimestamp - blockTimestampLast // wraps
	if timeElapsed > 0 && !reserve0.IsZero() && !reserve1.IsZero() {
		p.accumulate(slotPrice0Cumulative, reserve1, reserve0, timeElapsed)
		p.accumulate(slotPrice1Cumulative, reserve0, reserve1, timeElapsed)
	}

	p.storeReserves(b0, b1, blockTimestamp)
	p.state.AddLog(bindings.SyncLog(p.address, b0, b1))
	return nil
}

// accumulate adds (numerator / denominator) in Q112.112 times elapsed to the
// accumulator at slot. Both reserves are below 2^112, so the quotient is below
// 2^224 and the product below 2^256. The sum itself wraps: consumers only
// use differences between two observations.
func (p *Pair) accumulate(slot common.Hash, numerator, denominator *uint256.Int, elapsed uint32) {
	price := uqdiv(encode(numerator), denominator)
	price.Mul(price, uint256.NewInt(uint64(elapsed)))

	cumulative := p.loadAmount(slot)
	cumulative.Add(cumulative, price)
	p.storeAmount(slot, cumulative)
}

// encode converts a 112-bit integer into Q112.112.
func encode(y *uint256.Int) *uint256.Int {
	return new(uint256.Int).Lsh(y, safemath.Uint112Bits)
}

// uqdiv divides a Q112.112 value by an integer, truncating.
func uqdiv(x, y *uint256.Int) *uint256.Int {
	return new(uint256.Int).Div(x, y)
}
