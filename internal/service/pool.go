package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/chain"
	"github.com/nulln0ne/uniswap-pair/internal/contracts"
	"github.com/nulln0ne/uniswap-pair/pkg/uniswapv2"
)

// PoolService drives the simulated pool. Every write runs as a single
// transition: either all of its token moves and pair calls land, or none.
type PoolService struct {
	BaseService
	chain *chain.Chain
	pool  *contracts.Pool
}

func NewPoolService(logger *slog.Logger, c *chain.Chain, pool *contracts.Pool) *PoolService {
	return &PoolService{
		BaseService: BaseService{logger: logger},
		chain:       c,
		pool:        pool,
	}
}

// PoolState is a read of the pair at the chain head.
type PoolState struct {
	Pair                 common.Address
	Token0               common.Address
	Token1               common.Address
	FeeTo                common.Address
	Reserve0             *big.Int
	Reserve1             *big.Int
	BlockTimestampLast   uint32
	TotalSupply          *big.Int
	Price0CumulativeLast *big.Int
	Price1CumulativeLast *big.Int
	KLast                *big.Int
	BlockNumber          uint64
}

// Balances are the holdings of one account in the pool's three tokens.
type Balances struct {
	Token0    *big.Int
	Token1    *big.Int
	Liquidity *big.Int
}

// Snapshot reads the pair's reserves, accumulators and claim supply. All
// fields come from the same block, which BlockNumber names.
func (s *PoolService) Snapshot(ctx context.Context) (*PoolState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st := &PoolState{Pair: s.pool.Pair, Token0: s.pool.Token0, Token1: s.pool.Token1}

	number, err := s.chain.Read(func(r *chain.Reader) error {
		reserves, err := s.view(r, "getReserves")
		if err != nil {
			return err
		}
		st.Reserve0, st.Reserve1 = reserves[0].(*big.Int), reserves[1].(*big.Int)
		st.BlockTimestampLast = reserves[2].(uint32)

		for method, dst := range map[string]**big.Int{
			"totalSupply":          &st.TotalSupply,
			"price0CumulativeLast": &st.Price0CumulativeLast,
			"price1CumulativeLast": &st.Price1CumulativeLast,
			"kLast":                &st.KLast,
		} {
			out, err := s.view(r, method)
			if err != nil {
				return err
			}
			*dst = out[0].(*big.Int)
		}
		feeTo, err := s.view(r, "feeTo")
		if err != nil {
			return err
		}
		st.FeeTo = feeTo[0].(common.Address)
		return nil
	})
	if err != nil {
		return nil, err
	}
	st.BlockNumber = number
	return st, nil
}

// Balances returns owner's holdings of token0, token1 and claim tokens.
func (s *PoolService) Balances(ctx context.Context, owner common.Address) (*Balances, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var b Balances
	_, err := s.chain.Read(func(r *chain.Reader) error {
		for token, dst := range map[common.Address]**big.Int{
			s.pool.Token0: &b.Token0,
			s.pool.Token1: &b.Token1,
			s.pool.Pair:   &b.Liquidity,
		} {
			out, err := r.Call(owner, token, bindings.PackBalanceOf(owner))
			if err != nil {
				return fmt.Errorf("balanceOf %s: %w", token.Hex(), err)
			}
			v, err := bindings.UnpackAmount("balanceOf", out)
			if err != nil {
				return err
			}
			*dst = v.ToBig()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Faucet mints amount of a pooled token to to.
func (s *PoolService) Faucet(ctx context.Context, token, to common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if token != s.pool.Token0 && token != s.pool.Token1 {
		return ErrUnknownToken
	}
	input, err := bindings.TokenABI.Pack("mint", to, amount)
	if err != nil {
		return err
	}
	if _, err := s.chain.Transact(to, token, input); err != nil {
		return fmt.Errorf("faucet: %w", err)
	}
	s.logger.Info("faucet minted", "token", token.Hex(), "to", to.Hex(), "amount", amount.String())
	return nil
}

// AddLiquidity moves amount0 and amount1 from provider into the pair and
// mints the claim tokens to provider.
func (s *PoolService) AddLiquidity(ctx context.Context, provider common.Address, amount0, amount1 *big.Int) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var liquidity *big.Int
	receipt, err := s.chain.Atomic(func(tx *chain.Tx) error {
		if err := s.deposit(tx, provider, s.pool.Token0, amount0); err != nil {
			return err
		}
		if err := s.deposit(tx, provider, s.pool.Token1, amount1); err != nil {
			return err
		}
		out, err := s.pairCall(tx, provider, "mint", provider)
		if err != nil {
			return err
		}
		liquidity = out[0].(*big.Int)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("liquidity added", "provider", provider.Hex(), "amount0", amount0.String(),
		"amount1", amount1.String(), "liquidity", liquidity.String(), "block", receipt.Number)
	return liquidity, nil
}

// RemoveLiquidity returns liquidity claim tokens of provider to the pair and
// pays out the underlying assets to provider.
func (s *PoolService) RemoveLiquidity(ctx context.Context, provider common.Address, liquidity *big.Int) (amount0, amount1 *big.Int, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	receipt, err := s.chain.Atomic(func(tx *chain.Tx) error {
		if _, err := s.pairCall(tx, provider, "transfer", s.pool.Pair, liquidity); err != nil {
			return err
		}
		out, err := s.pairCall(tx, provider, "burn", provider)
		if err != nil {
			return err
		}
		amount0, amount1 = out[0].(*big.Int), out[1].(*big.Int)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("liquidity removed", "provider", provider.Hex(), "liquidity", liquidity.String(),
		"amount0", amount0.String(), "amount1", amount1.String(), "block", receipt.Number)
	return amount0, amount1, nil
}

// SwapExactIn sells amountIn of tokenIn for the other pooled token, failing
// with ErrSlippage when the output would fall below minOut.
func (s *PoolService) SwapExactIn(ctx context.Context, trader, tokenIn common.Address, amountIn, minOut *big.Int) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	zeroForOne := tokenIn == s.pool.Token0
	if !zeroForOne && tokenIn != s.pool.Token1 {
		return nil, ErrUnknownToken
	}

	var amountOut *big.Int
	receipt, err := s.chain.Atomic(func(tx *chain.Tx) error {
		reserves, err := s.pairCall(tx, trader, "getReserves")
		if err != nil {
			return err
		}
		reserveIn, reserveOut := reserves[0].(*big.Int), reserves[1].(*big.Int)
		if !zeroForOne {
			reserveIn, reserveOut = reserveOut, reserveIn
		}
		if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
			return ErrEmptyReserves
		}

		var dst, t1, t2 big.Int
		amountOut = new(big.Int).Set(uniswapv2.GetAmountOut(&dst, &t1, &t2, amountIn, reserveIn, reserveOut))
		if minOut != nil && amountOut.Cmp(minOut) < 0 {
			return fmt.Errorf("%w: %s < %s", ErrSlippage, amountOut, minOut)
		}

		if err := s.deposit(tx, trader, tokenIn, amountIn); err != nil {
			return err
		}
		amount0Out, amount1Out := new(big.Int), amountOut
		if !zeroForOne {
			amount0Out, amount1Out = amountOut, new(big.Int)
		}
		_, err = s.pairCall(tx, trader, "swap", amount0Out, amount1Out, trader, []byte{})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("swap executed", "trader", trader.Hex(), "tokenIn", tokenIn.Hex(),
		"amountIn", amountIn.String(), "amountOut", amountOut.String(), "block", receipt.Number)
	return amountOut, nil
}

func (s *PoolService) deposit(tx *chain.Tx, from, token common.Address, amount *big.Int) error {
	value, overflow := uint256.FromBig(amount)
	if overflow || amount.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	ret, err := tx.Call(from, token, bindings.PackTransfer(s.pool.Pair, value))
	if err != nil {
		return fmt.Errorf("deposit %s: %w", token.Hex(), err)
	}
	if !bindings.IsTransferSuccess(ret) {
		return fmt.Errorf("%w: %s", ErrTokenTransfer, token.Hex())
	}
	return nil
}

func (s *PoolService) pairCall(tx *chain.Tx, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	input, err := bindings.PairABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := tx.Call(from, s.pool.Pair, input)
	if err != nil {
		return nil, err
	}
	return bindings.PairABI.Unpack(method, out)
}

func (s *PoolService) view(r *chain.Reader, method string) ([]interface{}, error) {
	input, err := bindings.PairABI.Pack(method)
	if err != nil {
		return nil, err
	}
	out, err := r.Call(common.Address{}, s.pool.Pair, input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return bindings.PairABI.Unpack(method, out)
}
