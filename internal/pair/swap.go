package pair

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/safemath"
)

var (
	feeScale    = uint256.NewInt(1000)
	feeFactor   = uint256.NewInt(3)
	feeScaleSqr = uint256.NewInt(1000 * 1000)
)

// Swap sends amount0Out and amount1Out to to, then checks that the pair was
// paid enough to keep the fee-adjusted product of its balances at or above
// the product of the reserves. When data is not empty, it is sent to to as
// call input between the payout and the check, which lets to borrow the
// outputs and repay within the same swap.
func (p *Pair) Swap(msg Msg, amount0Out, amount1Out *uint256.Int, to common.Address, data []byte) error {
	return p.guarded(func() error {
		return p.swap(msg, amount0Out, amount1Out, to, data)
	})
}

func (p *Pair) swap(msg Msg, amount0Out, amount1Out *uint256.Int, to common.Address, data []byte) error {
	if amount0Out.IsZero() && amount1Out.IsZero() {
		return ErrInsufficientOutputAmount
	}
	reserve0, reserve1, _ := p.GetReserves()
	if !amount0Out.Lt(reserve0) || !amount1Out.Lt(reserve1) {
		return fmt.Errorf("%w: out %s/%s, reserves %s/%s", ErrInsufficientLiquidity,
			amount0Out.Dec(), amount1Out.Dec(), reserve0.Dec(), reserve1.Dec())
	}

	token0, token1 := p.Token0(), p.Token1()
	if to == token0 || to == token1 {
		return ErrInvalidTo
	}
	// optimistic payout
	if !amount0Out.IsZero() {
		if err := p.safeTransfer(token0, to, amount0Out); err != nil {
			return err
		}
	}
	if !amount1Out.IsZero() {
		if err := p.safeTransfer(token1, to, amount1Out); err != nil {
			return err
		}
	}
	if len(data) > 0 {
		if _, err := p.gateway.Call(p.address, to, data); err != nil {
			return fmt.Errorf("%w: callback %s: %w", ErrExternalCallFailed, to.Hex(), err)
		}
	}
	balance0, balance1, err := p.balances(token0, token1)
	if err != nil {
		return err
	}

	// reserveX > amountXOut was checked above
	amount0In := safemath.SaturatingSub(balance0, new(uint256.Int).Sub(reserve0, amount0Out))
	amount1In := safemath.SaturatingSub(balance1, new(uint256.Int).Sub(reserve1, amount1Out))
	if amount0In.IsZero() && amount1In.IsZero() {
		return ErrInsufficientInputAmount
	}

	adjusted0, err := adjustedBalance(balance0, amount0In)
	if err != nil {
		return fmt.Errorf("balance0 adjusted: %w", err)
	}
	adjusted1, err := adjustedBalance(balance1, amount1In)
	if err != nil {
		return fmt.Errorf("balance1 adjusted: %w", err)
	}
	if err := checkK(adjusted0, adjusted1, reserve0, reserve1); err != nil {
		return err
	}

	if err := p.update(balance0, balance1, reserve0, reserve1, msg.Time); err != nil {
		return err
	}
	p.state.AddLog(bindings.SwapLog(p.address, msg.Sender, amount0In, amount1In, amount0Out, amount1Out, to))

	p.logger.Debug("swap settled", "sender", msg.Sender.Hex(), "to", to.Hex(),
		"amount0In", amount0In.Dec(), "amount1In", amount1In.Dec(),
		"amount0Out", amount0Out.Dec(), "amount1Out", amount1Out.Dec())
	return nil
}

// adjustedBalance returns balance*1000 - amountIn*3, the balance with the
// 0.3% fee on the input taken out, scaled by 1000.
func adjustedBalance(balance, amountIn *uint256.Int) (*uint256.Int, error) {
	scaled, err := safemath.Mul(balance, feeScale)
	if err != nil {
		return nil, err
	}
	fee, err := safemath.Mul(amountIn, feeFactor)
	if err != nil {
		return nil, err
	}
	return safemath.Sub(scaled, fee)
}

func checkK(adjusted0, adjusted1, reserve0, reserve1 *uint256.Int) error {
	k, err := safemath.Mul(adjusted0, adjusted1)
	if err != nil {
		return fmt.Errorf("adjusted k: %w", err)
	}
	// reserves are below 2^112 each, so this cannot overflow
	kLast := new(uint256.Int).Mul(reserve0, reserve1)
	kLast.Mul(kLast, feeScaleSqr)
	if k.Lt(kLast) {
		return fmt.Errorf("%w: %s < %s", ErrKInvariantViolated, k.Dec(), kLast.Dec())
	}
	return nil
}

// Skim sends any balance above the reserves to to, leaving reserves untouched.
func (p *Pair) Skim(msg Msg, to common.Address) error {
	return p.guarded(func() error {
		reserve0, reserve1, _ := p.GetReserves()
		token0, token1 := p.Token0(), p.Token1()
		balance0, balance1, err := p.balances(token0, token1)
		if err != nil {
			return err
		}
		excess0, err := safemath.Sub(balance0, reserve0)
		if err != nil {
			return fmt.Errorf("skim token0: %w", err)
		}
		excess1, err := safemath.Sub(balance1, reserve1)
		if err != nil {
			return fmt.Errorf("skim token1: %w", err)
		}
		if err := p.safeTransfer(token0, to, excess0); err != nil {
			return err
		}
		if err := p.safeTransfer(token1, to, excess1); err != nil {
			return err
		}
		p.logger.Debug("excess skimmed", "sender", msg.Sender.Hex(), "to", to.Hex(), "amount0", excess0.Dec(), "amount1", excess1.Dec())
		return nil
	})
}

// Sync sets the reserves to the current balances.
func (p *Pair) Sync(msg Msg) error {
	return p.guarded(func() error {
		reserve0, reserve1, _ := p.GetReserves()
		balance0, balance1, err := p.balances(p.Token0(), p.Token1())
		if err != nil {
			return err
		}
		return p.update(balance0, balance1, reserve0, reserve1, msg.Time)
	})
}
