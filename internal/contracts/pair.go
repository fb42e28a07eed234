package contracts

import (
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/chain"
	"github.com/nulln0ne/uniswap-pair/internal/ledger"
	"github.com/nulln0ne/uniswap-pair/internal/pair"
)

// Pair exposes a pair engine through the pair ABI.
type Pair struct {
	engine *pair.Pair
}

// NewPair returns the contract for the pair stored at address on c. The pair
// reaches the pooled tokens through c's gateway.
func NewPair(address common.Address, meta ledger.Metadata, c *chain.Chain, logger *slog.Logger) *Pair {
	return &Pair{engine: pair.New(address, meta, c.State(), c.Gateway(), logger)}
}

func (p *Pair) Run(env *chain.Env, input []byte) ([]byte, error) {
	c, err := decode(bindings.PairABI, input)
	if err != nil {
		return nil, err
	}
	e := p.engine
	msg := pair.Msg{Sender: env.Caller, Time: env.Time}

	switch c.method.Name {
	case "name":
		return c.ret(e.Name())
	case "symbol":
		return c.ret(e.Symbol())
	case "decimals":
		return c.ret(e.Decimals())
	case "totalSupply":
		return c.ret(e.TotalSupply().ToBig())
	case "balanceOf":
		return c.ret(e.BalanceOf(c.address(0)).ToBig())
	case "allowance":
		return c.ret(e.Allowance(c.address(0), c.address(1)).ToBig())
	case "approve":
		value, err := c.amount(1)
		if err != nil {
			return nil, err
		}
		e.Approve(msg, c.address(0), value)
		return c.ret(true)
	case "transfer":
		value, err := c.amount(1)
		if err != nil {
			return nil, err
		}
		if err := e.Transfer(msg, c.address(0), value); err != nil {
			return nil, err
		}
		return c.ret(true)
	case "transferFrom":
		value, err := c.amount(2)
		if err != nil {
			return nil, err
		}
		if err := e.TransferFrom(msg, c.address(0), c.address(1), value); err != nil {
			return nil, err
		}
		return c.ret(true)

	case "MINIMUM_LIQUIDITY":
		return c.ret(big.NewInt(pair.MinimumLiquidity))
	case "factory":
		return c.ret(e.Factory())
	case "token0":
		return c.ret(e.Token0())
	case "token1":
		return c.ret(e.Token1())
	case "feeTo":
		return c.ret(e.FeeTo())
	case "getReserves":
		r0, r1, ts := e.GetReserves()
		return c.ret(r0.ToBig(), r1.ToBig(), ts)
	case "price0CumulativeLast":
		return c.ret(e.Price0CumulativeLast().ToBig())
	case "price1CumulativeLast":
		return c.ret(e.Price1CumulativeLast().ToBig())
	case "kLast":
		return c.ret(e.KLast().ToBig())

	case "initialize":
		return nil, e.Initialize(msg, c.address(0), c.address(1), c.address(2))
	case "mint":
		liquidity, err := e.Mint(msg, c.address(0))
		if err != nil {
			return nil, err
		}
		return c.ret(liquidity.ToBig())
	case "burn":
		amount0, amount1, err := e.Burn(msg, c.address(0))
		if err != nil {
			return nil, err
		}
		return c.ret(amount0.ToBig(), amount1.ToBig())
	case "swap":
		amount0Out, err := c.amount(0)
		if err != nil {
			return nil, err
		}
		amount1Out, err := c.amount(1)
		if err != nil {
			return nil, err
		}
		return nil, e.Swap(msg, amount0Out, amount1Out, c.address(2), c.bytes(3))
	case "skim":
		return nil, e.Skim(msg, c.address(0))
	case "sync":
		return nil, e.Sync(msg)
	}
	return nil, ErrUnknownSelector
}
