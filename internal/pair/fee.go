package pair

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/safemath"
)

// mintFee mints the protocol's share of the fees accrued since kLast: one
// sixth of the growth in sqrt(k), paid in claim tokens to feeTo. It reports
// whether the fee is on, in which case the caller refreshes kLast once the
// reserves are synced.
func (p *Pair) mintFee(reserve0, reserve1 *uint256.Int) (bool, error) {
	feeTo := p.FeeTo()
	feeOn := feeTo != (common.Address{})
	kLast := p.KLast()

	if !feeOn {
		if !kLast.IsZero() {
			p.storeAmount(slotKLast, new(uint256.Int))
		}
		return false, nil
	}
	if kLast.IsZero() {
		return true, nil
	}

	k, err := safemath.Mul(reserve0, reserve1)
	if err != nil {
		return false, fmt.Errorf("fee k: %w", err)
	}
	rootK := safemath.Sqrt(k)
	rootKLast := safemath.Sqrt(kLast)
	if !rootK.Gt(rootKLast) {
		return true, nil
	}

	numerator, err := safemath.Mul(p.token.TotalSupply(), new(uint256.Int).Sub(rootK, rootKLast))
	if err != nil {
		return false, fmt.Errorf("fee numerator: %w", err)
	}
	denominator, err := safemath.Mul(rootK, uint256.NewInt(5))
	if err != nil {
		return false, fmt.Errorf("fee denominator: %w", err)
	}
	if denominator, err = safemath.Add(denominator, rootKLast); err != nil {
		return false, fmt.Errorf("fee denominator: %w", err)
	}
	liquidity, err := safemath.Div(numerator, denominator)
	if err != nil {
		return false, fmt.Errorf("fee liquidity: %w", err)
	}
	if liquidity.IsZero() {
		return true, nil
	}
	if err := p.token.Mint(feeTo, liquidity); err != nil {
		return false, err
	}
	p.logger.Debug("protocol fee minted", "feeTo", feeTo.Hex(), "liquidity", liquidity.Dec())
	return true, nil
}

// refreshKLast records the product of the freshly synced reserves.
func (p *Pair) refreshKLast() error {
	reserve0, reserve1, _ := p.GetReserves()
	k, err := safemath.Mul(reserve0, reserve1)
	if err != nil {
		return fmt.Errorf("kLast: %w", err)
	}
	p.storeAmount(slotKLast, k)
	return nil
}
