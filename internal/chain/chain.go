// Package chain hosts contracts on top of a journaled state database. It runs
// one transition at a time: every transition either commits all of its
// storage writes and logs or none of them.
package chain

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/state"
)

// MaxCallDepth bounds nested contract calls within one transition.
const MaxCallDepth = 64

// SystemAddress keeps the chain head in its storage.
var SystemAddress = common.HexToAddress("0x000000000000000000000000000000000000fffe")

var (
	slotHeadNumber = state.Slot(0)
	slotHeadTime   = state.Slot(1)
)

// Contract is code deployed at an address. Run executes one call to it.
type Contract interface {
	Run(env *Env, input []byte) ([]byte, error)
}

// Env describes the call being executed.
type Env struct {
	Caller common.Address
	Self   common.Address
	Number uint64
	Time   uint64
	State  *state.StateDB

	chain *Chain
}

// Call invokes to with input on behalf of the running contract.
func (e *Env) Call(to common.Address, input []byte) ([]byte, error) {
	return e.chain.call(e.Self, to, input)
}

// Receipt is the outcome of a committed transition.
type Receipt struct {
	Number uint64
	Time   uint64
	Return []byte
	Logs   []*types.Log
}

// Tx runs the calls of one transition.
type Tx struct {
	chain *Chain
}

// Call invokes to with input on behalf of from.
func (tx *Tx) Call(from, to common.Address, input []byte) ([]byte, error) {
	return tx.chain.call(from, to, input)
}

type txContext struct {
	number uint64
	time   uint64
	depth  int
}

// Chain is the contract host.
type Chain struct {
	mu        sync.Mutex
	state     *state.StateDB
	contracts map[common.Address]Contract
	clock     func() time.Time
	logger    *slog.Logger

	tx *txContext
}

// Option configures a Chain.
type Option func(*Chain)

// WithClock replaces the wall clock used to timestamp transitions.
func WithClock(clock func() time.Time) Option {
	return func(c *Chain) { c.clock = clock }
}

// New returns a chain over db, resuming from its last committed head.
func New(db *state.Database, logger *slog.Logger, opts ...Option) (*Chain, error) {
	sdb, err := state.New(db)
	if err != nil {
		return nil, err
	}
	c := &Chain{
		state:     sdb,
		contracts: make(map[common.Address]Contract),
		clock:     time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns the chain's state database. Contracts keep it to reach their
// storage; it must only be used from inside a transition.
func (c *Chain) State() *state.StateDB {
	return c.state
}

// Deploy installs contract at addr.
func (c *Chain) Deploy(addr common.Address, contract Contract) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.contracts[addr]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyDeployed, addr.Hex())
	}
	c.contracts[addr] = contract
	c.logger.Debug("contract deployed", "address", addr.Hex(), "type", fmt.Sprintf("%T", contract))
	return nil
}

// Head returns the number and timestamp of the last committed transition.
func (c *Chain) Head() (number, timestamp uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head()
}

func (c *Chain) head() (uint64, uint64) {
	number := state.WordToAmount(c.state.GetState(SystemAddress, slotHeadNumber))
	timestamp := state.WordToAmount(c.state.GetState(SystemAddress, slotHeadTime))
	return number.Uint64(), timestamp.Uint64()
}

// Storage returns the committed word at slot of addr. Between transitions
// the state holds no pending writes, so the current word is the committed one.
func (c *Chain) Storage(addr common.Address, slot common.Hash) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.state.GetState(addr, slot)
	if err := c.stateError(); err != nil {
		return common.Hash{}, err
	}
	return w, nil
}

// Transact runs a single call as its own transition.
func (c *Chain) Transact(from, to common.Address, input []byte) (*Receipt, error) {
	var ret []byte
	receipt, err := c.Atomic(func(tx *Tx) (err error) {
		ret, err = tx.Call(from, to, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	receipt.Return = ret
	return receipt, nil
}

// Atomic runs fn as one transition. When fn fails or panics, every write and
// log made by its calls is dropped.
func (c *Chain) Atomic(fn func(tx *Tx) error) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	number, last := c.head()
	number++
	now := uint64(c.clock().Unix())
	if now < last {
		now = last
	}
	c.tx = &txContext{number: number, time: now}
	defer func() { c.tx = nil }()

	snap := c.state.Snapshot()
	err := c.runRecover(func() error { return fn(&Tx{chain: c}) })
	if serr := c.stateError(); serr != nil {
		// the view was reopened at the head root, which drops the snapshot too
		c.logger.Error("transition aborted", "number", number, "err", serr)
		return nil, serr
	}
	if err != nil {
		c.state.RevertToSnapshot(snap)
		c.state.TakeLogs()
		c.logger.Warn("transition reverted", "number", number, "err", err)
		return nil, err
	}

	c.state.SetState(SystemAddress, slotHeadNumber, state.AmountToWord(uint256.NewInt(number)))
	c.state.SetState(SystemAddress, slotHeadTime, state.AmountToWord(uint256.NewInt(now)))
	logs := c.state.TakeLogs()
	if err := c.state.Commit(number); err != nil {
		if derr := c.state.Discard(); derr != nil {
			c.logger.Error("discard state", "err", derr)
		}
		return nil, err
	}
	for _, l := range logs {
		l.BlockNumber = number
	}
	c.logger.Debug("transition committed", "number", number, "time", now, "logs", len(logs))
	return &Receipt{Number: number, Time: now, Logs: logs}, nil
}

// Reader runs static calls inside Chain.Read.
type Reader struct {
	chain *Chain
}

// Call runs one call whose effects are thrown away.
func (r *Reader) Call(from, to common.Address, input []byte) ([]byte, error) {
	c := r.chain
	snap := c.state.Snapshot()
	var ret []byte
	err := c.runRecover(func() (err error) {
		ret, err = c.call(from, to, input)
		return err
	})
	c.state.RevertToSnapshot(snap)
	c.state.TakeLogs()
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Read runs fn against the head state with transitions held off, so every
// call fn makes sees the same block. It returns that block's number.
func (c *Chain) Read(fn func(r *Reader) error) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	number, now := c.head()
	c.tx = &txContext{number: number, time: now}
	defer func() { c.tx = nil }()

	err := fn(&Reader{chain: c})
	if serr := c.stateError(); serr != nil {
		return 0, serr
	}
	if err != nil {
		return 0, err
	}
	return number, nil
}

// StaticCall runs a call against the current state and throws its effects
// away.
func (c *Chain) StaticCall(from, to common.Address, input []byte) ([]byte, error) {
	var ret []byte
	_, err := c.Read(func(r *Reader) (err error) {
		ret, err = r.Call(from, to, input)
		return err
	})
	return ret, err
}

// stateError reports a storage read failure met by the running operation and
// reopens the state at the last committed root, so the failure does not
// outlive the operation that saw it. The caller holds c.mu.
func (c *Chain) stateError() error {
	err := c.state.Error()
	if err == nil {
		return nil
	}
	if derr := c.state.Discard(); derr != nil {
		c.logger.Error("discard state", "err", derr)
	}
	return fmt.Errorf("%w: %v", ErrStateRead, err)
}

func (c *Chain) runRecover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return fn()
}

// call runs one (possibly nested) call. The caller holds c.mu.
func (c *Chain) call(from, to common.Address, input []byte) ([]byte, error) {
	if c.tx == nil {
		return nil, ErrNoTransition
	}
	if c.tx.depth >= MaxCallDepth {
		return nil, ErrCallDepth
	}
	contract, ok := c.contracts[to]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoContract, to.Hex())
	}

	c.tx.depth++
	defer func() { c.tx.depth-- }()

	env := &Env{
		Caller: from,
		Self:   to,
		Number: c.tx.number,
		Time:   c.tx.time,
		State:  c.state,
		chain:  c,
	}
	snap := c.state.Snapshot()
	ret, err := contract.Run(env, input)
	if err != nil {
		c.state.RevertToSnapshot(snap)
		return nil, err
	}
	return ret, nil
}
