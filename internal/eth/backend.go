package eth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/nulln0ne/uniswap-pair/internal/chain"
)

// ChainID identifies the simulated chain.
const ChainID = 1337

// ErrUnknownBlock is returned for blocks past the head and for block hashes,
// which the simulator does not keep.
var ErrUnknownBlock = errors.New("unknown block")

// ErrMissingTo is returned by Call without a target contract.
var ErrMissingTo = errors.New("missing to address")

// Backend serves the read side of the eth JSON-RPC namespace from a chain.
// Only the head state is kept, so every block at or below the head reads it.
type Backend struct {
	chain  *chain.Chain
	logger *slog.Logger
}

func NewBackend(c *chain.Chain, logger *slog.Logger) *Backend {
	return &Backend{chain: c, logger: logger}
}

// CallArgs is the call object of eth_call.
type CallArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Data  *hexutil.Bytes  `json:"data"`
	Input *hexutil.Bytes  `json:"input"`
}

func (args *CallArgs) data() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

func (b *Backend) ChainId(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(big.NewInt(ChainID)), nil
}

func (b *Backend) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	number, _ := b.chain.Head()
	return hexutil.Uint64(number), nil
}

func (b *Backend) GetStorageAt(ctx context.Context, addr common.Address, position common.Hash, blockNrOrHash rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	if err := b.checkBlock(blockNrOrHash); err != nil {
		return nil, err
	}
	w, err := b.chain.Storage(addr, position)
	if err != nil {
		return nil, fmt.Errorf("storage %s/%s: %w", addr.Hex(), position.Hex(), err)
	}
	return w.Bytes(), nil
}

func (b *Backend) Call(ctx context.Context, args CallArgs, blockNrOrHash rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	if err := b.checkBlock(blockNrOrHash); err != nil {
		return nil, err
	}
	if args.To == nil {
		return nil, ErrMissingTo
	}
	var from common.Address
	if args.From != nil {
		from = *args.From
	}
	out, err := b.chain.StaticCall(from, *args.To, args.data())
	if err != nil {
		b.logger.Debug("eth_call reverted", "to", args.To.Hex(), "err", err)
		return nil, err
	}
	return out, nil
}

func (b *Backend) checkBlock(blockNrOrHash rpc.BlockNumberOrHash) error {
	if _, ok := blockNrOrHash.Hash(); ok {
		return ErrUnknownBlock
	}
	number, ok := blockNrOrHash.Number()
	if !ok || number < 0 {
		// latest, pending, safe, finalized
		return nil
	}
	head, _ := b.chain.Head()
	if uint64(number) > head {
		return fmt.Errorf("%w: %d, head %d", ErrUnknownBlock, number, head)
	}
	return nil
}
