package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/nulln0ne/uniswap-pair/pkg/uniswapv2"
)

// Pair storage slots read by the estimator.
//
//	6: token0
//	7: token1
//	8: reserve0 (uint112) | reserve1 (uint112) | blockTimestampLast (uint32)
const (
	slotToken0   = 6
	slotToken1   = 7
	slotReserves = 8
)

// EstimateService provides Uniswap V2 amount estimations by reading pair
// storage directly, from a remote node or from the local simulator's RPC
// backend.
type EstimateService struct {
	BaseService
	ethereumClient *ethclient.Client
}

// NewEstimateService constructs an EstimateService using the provided logger
// and Ethereum client.
func NewEstimateService(logger *slog.Logger, ec *ethclient.Client) *EstimateService {
	return &EstimateService{
		BaseService:    BaseService{logger: logger},
		ethereumClient: ec,
	}
}

// pairReserves are the reserves of a pair oriented along a swap direction.
type pairReserves struct {
	blockNumber *big.Int
	reserveIn   *big.Int
	reserveOut  *big.Int
}

// Estimate computes the expected output amount for swapping amountIn of src to
// dst in the provided pool at the latest block.
func (e *EstimateService) Estimate(ctx context.Context, pool, src, dst common.Address, amountIn *big.Int) (*big.Int, error) {
	e.logger.Debug("estimating swap", "pool", pool.Hex(), "src", src.Hex(), "dst", dst.Hex(), "in", amountIn.String())

	r, err := e.loadReserves(ctx, pool, src, dst)
	if err != nil {
		return nil, err
	}

	var outAmt, tmp1, tmp2 big.Int
	out := uniswapv2.GetAmountOut(&outAmt, &tmp1, &tmp2, amountIn, r.reserveIn, r.reserveOut)
	e.logger.Debug("amount out computed", "out", out.String(), "block", r.blockNumber.String())
	return out, nil
}

// EstimateIn computes the input of src needed to receive amountOut of dst.
func (e *EstimateService) EstimateIn(ctx context.Context, pool, src, dst common.Address, amountOut *big.Int) (*big.Int, error) {
	e.logger.Debug("estimating swap input", "pool", pool.Hex(), "src", src.Hex(), "dst", dst.Hex(), "out", amountOut.String())

	r, err := e.loadReserves(ctx, pool, src, dst)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(r.reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}

	var inAmt, tmp1, tmp2 big.Int
	in := uniswapv2.GetAmountIn(&inAmt, &tmp1, &tmp2, amountOut, r.reserveIn, r.reserveOut)
	e.logger.Debug("amount in computed", "in", in.String(), "block", r.blockNumber.String())
	return in, nil
}

// loadReserves validates the token pair against the pool and returns its
// reserves ordered src -> dst, all read at the same block.
func (e *EstimateService) loadReserves(ctx context.Context, pool, src, dst common.Address) (*pairReserves, error) {
	if src == dst {
		return nil, ErrSameToken
	}

	bn, err := e.ethereumClient.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("block number: %w", err)
	}
	blockNum := new(big.Int).SetUint64(bn)

	token0, token1, err := e.loadTokens(ctx, pool, blockNum)
	if err != nil {
		return nil, err
	}

	br, err := e.readSlot(ctx, pool, blockNum, slotReserves)
	if err != nil {
		return nil, err
	}
	reserve0, reserve1 := parseReserves(br)

	r := &pairReserves{blockNumber: blockNum}
	switch {
	case src == token0 && dst == token1:
		r.reserveIn, r.reserveOut = reserve0, reserve1
	case src == token1 && dst == token0:
		r.reserveIn, r.reserveOut = reserve1, reserve0
	default:
		return nil, ErrPairMismatch
	}

	if r.reserveIn.Sign() == 0 || r.reserveOut.Sign() == 0 {
		return nil, ErrEmptyReserves
	}
	return r, nil
}

func (e *EstimateService) readSlot(ctx context.Context, pool common.Address, blockNum *big.Int, slot uint64) ([]byte, error) {
	key := common.BigToHash(new(big.Int).SetUint64(slot))
	b, err := e.ethereumClient.StorageAt(ctx, pool, key, blockNum)
	if err != nil {
		return nil, fmt.Errorf("storageAt slot %d (pool %s, block %s): %w",
			slot, pool.Hex(), blockNum.String(), err)
	}
	return b, nil
}

// loadTokens reads token0 and token1 from pair storage.
func (e *EstimateService) loadTokens(ctx context.Context, pool common.Address, blockNum *big.Int) (common.Address, common.Address, error) {
	b0, err := e.readSlot(ctx, pool, blockNum, slotToken0)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	b1, err := e.readSlot(ctx, pool, blockNum, slotToken1)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return common.BytesToAddress(b0), common.BytesToAddress(b1), nil
}

// parseReserves unpacks two uint112 reserves from the 32‑byte storage word
// used by Uniswap V2 pairs. The layout is:
//
//	[ 32 bits timestamp | 112 bits reserve1 | 112 bits reserve0 ]
//
// Values are treated as big‑endian within the 256‑bit word.
func parseReserves(b []byte) (reserve0, reserve1 *big.Int) {
	v := new(big.Int).SetBytes(b)
	one := big.NewInt(1)
	mask112 := new(big.Int).Sub(new(big.Int).Lsh(one, 112), one)

	reserve0 = new(big.Int).And(v, mask112)
	tmp := new(big.Int).Rsh(v, 112)
	reserve1 = new(big.Int).And(tmp, mask112)
	return
}
