package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
)

// Gateway lets a contract reach other contracts on the chain. It is only
// usable while a transition runs, from inside the contract being called.
type Gateway struct {
	chain *Chain
}

// Gateway returns the chain's contract gateway.
func (c *Chain) Gateway() *Gateway {
	return &Gateway{chain: c}
}

// BalanceOf calls balanceOf(owner) on token.
func (g *Gateway) BalanceOf(token, owner common.Address) (*uint256.Int, error) {
	out, err := g.chain.call(owner, token, bindings.PackBalanceOf(owner))
	if err != nil {
		return nil, err
	}
	balance, err := bindings.UnpackAmount("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("token %s: %w", token.Hex(), err)
	}
	return balance, nil
}

// Call invokes to with input on behalf of from.
func (g *Gateway) Call(from, to common.Address, input []byte) ([]byte, error) {
	return g.chain.call(from, to, input)
}
