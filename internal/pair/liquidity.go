package pair

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/safemath"
)

// Mint issues claim tokens to to for the assets deposited into the pair
// since the last sync. The depositor transfers both tokens to the pair first.
func (p *Pair) Mint(msg Msg, to common.Address) (*uint256.Int, error) {
	var liquidity *uint256.Int
	err := p.guarded(func() (err error) {
		liquidity, err = p.mint(msg, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return liquidity, nil
}

func (p *Pair) mint(msg Msg, to common.Address) (*uint256.Int, error) {
	reserve0, reserve1, _ := p.GetReserves()
	balance0, balance1, err := p.balances(p.Token0(), p.Token1())
	if err != nil {
		return nil, err
	}
	amount0, err := safemath.Sub(balance0, reserve0)
	if err != nil {
		return nil, fmt.Errorf("amount0: balance %s below reserve %s: %w", balance0.Dec(), reserve0.Dec(), err)
	}
	amount1, err := safemath.Sub(balance1, reserve1)
	if err != nil {
		return nil, fmt.Errorf("amount1: balance %s below reserve %s: %w", balance1.Dec(), reserve1.Dec(), err)
	}

	feeOn, err := p.mintFee(reserve0, reserve1)
	if err != nil {
		return nil, err
	}
	// read after mintFee, which can change the supply
	totalSupply := p.token.TotalSupply()

	var liquidity *uint256.Int
	if totalSupply.IsZero() {
		product, err := safemath.Mul(amount0, amount1)
		if err != nil {
			return nil, fmt.Errorf("initial deposit: %w", err)
		}
		if liquidity, err = safemath.Sub(safemath.Sqrt(product), minimumLiquidity); err != nil {
			return nil, fmt.Errorf("initial deposit below minimum liquidity: %w", err)
		}
		// permanently lock the first MinimumLiquidity tokens
		if err := p.token.Mint(common.Address{}, minimumLiquidity); err != nil {
			return nil, err
		}
	} else {
		liquidity0, err := safemath.MulDiv(amount0, totalSupply, reserve0)
		if err != nil {
			return nil, fmt.Errorf("liquidity0: %w", err)
		}
		liquidity1, err := safemath.MulDiv(amount1, totalSupply, reserve1)
		if err != nil {
			return nil, fmt.Errorf("liquidity1: %w", err)
		}
		liquidity = safemath.Min(liquidity0, liquidity1)
	}
	if liquidity.IsZero() {
		return nil, ErrLiquidityIsZero
	}
	if err := p.token.Mint(to, liquidity); err != nil {
		return nil, err
	}

	if err := p.update(balance0, balance1, reserve0, reserve1, msg.Time); err != nil {
		return nil, err
	}
	if feeOn {
		if err := p.refreshKLast(); err != nil {
			return nil, err
		}
	}
	p.state.AddLog(bindings.MintLog(p.address, msg.Sender, amount0, amount1))

	p.logger.Debug("liquidity minted", "sender", msg.Sender.Hex(), "to", to.Hex(),
		"amount0", amount0.Dec(), "amount1", amount1.Dec(), "liquidity", liquidity.Dec())
	return liquidity, nil
}

// Burn redeems the claim tokens held by the pair itself for a proportional
// share of both reserves, sent to to. The holder transfers the claim tokens
// to the pair first.
func (p *Pair) Burn(msg Msg, to common.Address) (amount0, amount1 *uint256.Int, err error) {
	err = p.guarded(func() (err error) {
		amount0, amount1, err = p.burn(msg, to)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}

func (p *Pair) burn(msg Msg, to common.Address) (*uint256.Int, *uint256.Int, error) {
	reserve0, reserve1, _ := p.GetReserves()
	token0, token1 := p.Token0(), p.Token1()
	balance0, balance1, err := p.balances(token0, token1)
	if err != nil {
		return nil, nil, err
	}
	liquidity := p.token.BalanceOf(p.address)

	feeOn, err := p.mintFee(reserve0, reserve1)
	if err != nil {
		return nil, nil, err
	}
	totalSupply := p.token.TotalSupply()

	// pro-rata on balances, so donations are paid out too
	amount0, err := safemath.MulDiv(liquidity, balance0, totalSupply)
	if err != nil {
		return nil, nil, fmt.Errorf("amount0: %w", err)
	}
	amount1, err := safemath.MulDiv(liquidity, balance1, totalSupply)
	if err != nil {
		return nil, nil, fmt.Errorf("amount1: %w", err)
	}
	if amount0.IsZero() || amount1.IsZero() {
		return nil, nil, ErrInsufficientLiquidityBurned
	}

	if err := p.token.Burn(p.address, liquidity); err != nil {
		return nil, nil, err
	}
	if err := p.safeTransfer(token0, to, amount0); err != nil {
		return nil, nil, err
	}
	if err := p.safeTransfer(token1, to, amount1); err != nil {
		return nil, nil, err
	}

	if balance0, balance1, err = p.balances(token0, token1); err != nil {
		return nil, nil, err
	}
	if err := p.update(balance0, balance1, reserve0, reserve1, msg.Time); err != nil {
		return nil, nil, err
	}
	if feeOn {
		if err := p.refreshKLast(); err != nil {
			return nil, nil, err
		}
	}
	p.state.AddLog(bindings.BurnLog(p.address, msg.Sender, amount0, amount1, to))

	p.logger.Debug("liquidity burned", "sender", msg.Sender.Hex(), "to", to.Hex(),
		"liquidity", liquidity.Dec(), "amount0", amount0.Dec(), "amount1", amount1.Dec())
	return amount0, amount1, nil
}
