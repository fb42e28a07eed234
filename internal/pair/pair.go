// Package pair implements the constant-product pair: reserves, the
// x*y >= k swap invariant with a 0.3% fee, liquidity provision against an
// embedded claim-token ledger, the protocol fee and the cumulative price
// accumulators.
//
// Storage uses the canonical Uniswap V2 pair layout, so external readers that
// know slots 6, 7, 8 and 9-11 can decode a pair kept by this package.
package pair

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/ledger"
	"github.com/nulln0ne/uniswap-pair/internal/safemath"
	"github.com/nulln0ne/uniswap-pair/internal/state"
)

// MinimumLiquidity is locked at the zero address by the first mint.
const MinimumLiquidity = 1000

var minimumLiquidity = uint256.NewInt(MinimumLiquidity)

// Storage slots. 0-2 belong to the claim-token ledger.
var (
	slotFactory          = state.Slot(5)
	slotToken0           = state.Slot(6)
	slotToken1           = state.Slot(7)
	slotReserves         = state.Slot(8) // reserve0 | reserve1 << 112 | blockTimestampLast << 224
	slotPrice0Cumulative = state.Slot(9)
	slotPrice1Cumulative = state.Slot(10)
	slotKLast            = state.Slot(11)
	slotFeeTo            = state.Slot(12)
)

// StateDB is the journaled storage a pair lives in.
type StateDB interface {
	ledger.StateDB
	Snapshot() int
	RevertToSnapshot(revid int)
}

// Gateway reaches the pooled token contracts and swap callees.
type Gateway interface {
	// BalanceOf returns token's balance of owner.
	BalanceOf(token, owner common.Address) (*uint256.Int, error)
	// Call invokes contract to with input on behalf of from and returns
	// the raw return data.
	Call(from, to common.Address, input []byte) ([]byte, error)
}

// Msg carries the caller and block time of one invocation.
type Msg struct {
	Sender common.Address
	Time   uint64
}

// Pair is one pair instance. It is not safe for concurrent use: the host
// runs one transition at a time, and the reentrancy guard only rejects
// nested calls made from inside a swap callback.
type Pair struct {
	address common.Address
	state   StateDB
	gateway Gateway
	token   *ledger.Ledger
	logger  *slog.Logger

	locked bool
}

// New returns the pair stored at address, with meta describing its claim token.
func New(address common.Address, meta ledger.Metadata, db StateDB, gateway Gateway, logger *slog.Logger) *Pair {
	return &Pair{
		address: address,
		state:   db,
		gateway: gateway,
		token:   ledger.New(meta, address, db),
		logger:  logger.With("pair", address.Hex()),
	}
}

// Initialize records msg.Sender as factory together with the pooled tokens
// and the protocol fee recipient. It can only succeed once.
func (p *Pair) Initialize(msg Msg, token0, token1, feeTo common.Address) error {
	if p.initialized() {
		return ErrAlreadyInitialized
	}
	if msg.Sender == (common.Address{}) {
		return ErrZeroAddress
	}
	p.storeAddress(slotFactory, msg.Sender)
	p.storeAddress(slotToken0, token0)
	p.storeAddress(slotToken1, token1)
	p.storeAddress(slotFeeTo, feeTo)

	p.logger.Debug("pair initialized", "factory", msg.Sender.Hex(), "token0", token0.Hex(), "token1", token1.Hex(), "feeTo", feeTo.Hex())
	return nil
}

// GetReserves returns the cached reserves and the time they were last synced.
func (p *Pair) GetReserves() (reserve0, reserve1 *uint256.Int, blockTimestampLast uint32) {
	w := p.loadAmount(slotReserves)
	mask := safemath.MaxUint112()

	reserve0 = new(uint256.Int).And(w, mask)
	reserve1 = new(uint256.Int).Rsh(w, safemath.Uint112Bits)
	reserve1.And(reserve1, mask)
	blockTimestampLast = uint32(new(uint256.Int).Rsh(w, 2*safemath.Uint112Bits).Uint64())
	return reserve0, reserve1, blockTimestampLast
}

func (p *Pair) Factory() common.Address { return p.loadAddress(slotFactory) }
func (p *Pair) Token0() common.Address  { return p.loadAddress(slotToken0) }
func (p *Pair) Token1() common.Address  { return p.loadAddress(slotToken1) }
func (p *Pair) FeeTo() common.Address   { return p.loadAddress(slotFeeTo) }

// Price0CumulativeLast is the Q112.112 sum of reserve1/reserve0 over time.
func (p *Pair) Price0CumulativeLast() *uint256.Int { return p.loadAmount(slotPrice0Cumulative) }

// Price1CumulativeLast is the Q112.112 sum of reserve0/reserve1 over time.
func (p *Pair) Price1CumulativeLast() *uint256.Int { return p.loadAmount(slotPrice1Cumulative) }

// KLast is reserve0*reserve1 as of the last liquidity event while the fee was on.
func (p *Pair) KLast() *uint256.Int { return p.loadAmount(slotKLast) }

func (p *Pair) initialized() bool {
	return p.Factory() != (common.Address{})
}

// guarded runs fn as one atomic step of a trading operation: it rejects
// calls before initialization and reentrant calls, and reverts every write
// and log made by fn when it fails.
func (p *Pair) guarded(fn func() error) error {
	if p.locked {
		return ErrLocked
	}
	if !p.initialized() {
		return ErrNotInitialized
	}
	p.locked = true
	defer func() { p.locked = false }()

	return p.atomic(fn)
}

func (p *Pair) atomic(fn func() error) error {
	snap := p.state.Snapshot()
	if err := fn(); err != nil {
		p.state.RevertToSnapshot(snap)
		return err
	}
	return nil
}

func (p *Pair) storeReserves(reserve0, reserve1 *uint256.Int, blockTimestamp uint32) {
	w := uint256.NewInt(uint64(blockTimestamp))
	w.Lsh(w, safemath.Uint112Bits)
	w.Or(w, reserve1)
	w.Lsh(w, safemath.Uint112Bits)
	w.Or(w, reserve0)
	p.storeAmount(slotReserves, w)
}

func (p *Pair) loadAddress(slot common.Hash) common.Address {
	return state.WordToAddress(p.state.GetState(p.address, slot))
}

func (p *Pair) storeAddress(slot common.Hash, addr common.Address) {
	p.state.SetState(p.address, slot, state.AddressToWord(addr))
}

func (p *Pair) loadAmount(slot common.Hash) *uint256.Int {
	return state.WordToAmount(p.state.GetState(p.address, slot))
}

func (p *Pair) storeAmount(slot common.Hash, v *uint256.Int) {
	p.state.SetState(p.address, slot, state.AmountToWord(v))
}
