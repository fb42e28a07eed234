package pair

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
)

// safeTransfer sends value of token from the pair to to. Tokens that return
// nothing are accepted, as are tokens returning true; anything else fails.
func (p *Pair) safeTransfer(token, to common.Address, value *uint256.Int) error {
	ret, err := p.gateway.Call(p.address, token, bindings.PackTransfer(to, value))
	if err != nil {
		return fmt.Errorf("%w: token %s: %w", ErrTransferFailed, token.Hex(), err)
	}
	if !bindings.IsTransferSuccess(ret) {
		return fmt.Errorf("%w: token %s returned %#x", ErrTransferFailed, token.Hex(), ret)
	}
	return nil
}

// balances reads the pair's holdings of both pooled tokens.
func (p *Pair) balances(token0, token1 common.Address) (*uint256.Int, *uint256.Int, error) {
	balance0, err := p.gateway.BalanceOf(token0, p.address)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: balanceOf token0 %s: %w", ErrExternalCallFailed, token0.Hex(), err)
	}
	balance1, err := p.gateway.BalanceOf(token1, p.address)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: balanceOf token1 %s: %w", ErrExternalCallFailed, token1.Hex(), err)
	}
	return balance0, balance1, nil
}
