// Package ledger implements fungible token bookkeeping: balances, allowances
// and total supply, kept in contract storage with the standard ERC-20 slot
// layout.
package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/safemath"
	"github.com/nulln0ne/uniswap-pair/internal/state"
)

var (
	slotTotalSupply = state.Slot(0)
	slotBalances    = state.Slot(1)
	slotAllowances  = state.Slot(2)
)

// StateDB is the storage the ledger reads and writes.
type StateDB interface {
	GetState(addr common.Address, slot common.Hash) common.Hash
	SetState(addr common.Address, slot, value common.Hash)
	AddLog(log *types.Log)
}

// Metadata is the static description of a token.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// DefaultMetadata describes the pair's claim token.
var DefaultMetadata = Metadata{
	Name:     "Uniswap V2",
	Symbol:   "UNI-V2",
	Decimals: 18,
}

// Ledger is the token ledger of the contract at address.
type Ledger struct {
	meta    Metadata
	address common.Address
	state   StateDB
}

// New returns the ledger stored under address.
func New(meta Metadata, address common.Address, db StateDB) *Ledger {
	return &Ledger{meta: meta, address: address, state: db}
}

func (l *Ledger) Name() string    { return l.meta.Name }
func (l *Ledger) Symbol() string  { return l.meta.Symbol }
func (l *Ledger) Decimals() uint8 { return l.meta.Decimals }

// Address returns the contract address the ledger belongs to.
func (l *Ledger) Address() common.Address {
	return l.address
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() *uint256.Int {
	return l.load(slotTotalSupply)
}

// BalanceOf returns the balance of owner.
func (l *Ledger) BalanceOf(owner common.Address) *uint256.Int {
	return l.load(state.MappingSlot(owner, slotBalances))
}

// Allowance returns how much spender may move on behalf of owner.
func (l *Ledger) Allowance(owner, spender common.Address) *uint256.Int {
	return l.load(state.NestedMappingSlot(owner, spender, slotAllowances))
}

// Approve overwrites the allowance of spender over owner's balance.
func (l *Ledger) Approve(owner, spender common.Address, value *uint256.Int) {
	l.store(state.NestedMappingSlot(owner, spender, slotAllowances), value)
	l.state.AddLog(bindings.ApprovalLog(l.address, owner, spender, value))
}

// Transfer moves value from one account to another. It writes nothing unless
// it succeeds.
func (l *Ledger) Transfer(from, to common.Address, value *uint256.Int) error {
	fromSlot := state.MappingSlot(from, slotBalances)
	balance := l.load(fromSlot)
	if balance.Lt(value) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), balance.Dec(), value.Dec())
	}
	debited := new(uint256.Int).Sub(balance, value)

	toSlot := state.MappingSlot(to, slotBalances)
	credited := balance
	if to != from {
		var err error
		if credited, err = safemath.Add(l.load(toSlot), value); err != nil {
			return fmt.Errorf("credit %s: %w", to.Hex(), err)
		}
		l.store(fromSlot, debited)
	}
	l.store(toSlot, credited)
	l.state.AddLog(bindings.TransferLog(l.address, from, to, value))
	return nil
}

// TransferFrom spends spender's allowance over from and moves value to to.
// There is no unlimited allowance: every spend is deducted, and only once the
// transfer itself went through.
func (l *Ledger) TransferFrom(spender, from, to common.Address, value *uint256.Int) error {
	slot := state.NestedMappingSlot(from, spender, slotAllowances)
	allowance := l.load(slot)
	if allowance.Lt(value) {
		return fmt.Errorf("%w: %s may spend %s of %s, needs %s",
			ErrInsufficientAllowance, spender.Hex(), allowance.Dec(), from.Hex(), value.Dec())
	}
	if err := l.Transfer(from, to, value); err != nil {
		return err
	}
	l.store(slot, new(uint256.Int).Sub(allowance, value))
	return nil
}

// Mint creates value new tokens owned by to.
func (l *Ledger) Mint(to common.Address, value *uint256.Int) error {
	supply, err := safemath.Add(l.TotalSupply(), value)
	if err != nil {
		return fmt.Errorf("mint %s: %w", value.Dec(), err)
	}
	slot := state.MappingSlot(to, slotBalances)
	// cannot overflow: a balance never exceeds the supply
	balance := new(uint256.Int).Add(l.load(slot), value)

	l.store(slotTotalSupply, supply)
	l.store(slot, balance)
	l.state.AddLog(bindings.TransferLog(l.address, common.Address{}, to, value))
	return nil
}

// Burn destroys value tokens owned by from.
func (l *Ledger) Burn(from common.Address, value *uint256.Int) error {
	slot := state.MappingSlot(from, slotBalances)
	balance := l.load(slot)
	if balance.Lt(value) {
		return fmt.Errorf("%w: burn %s from %s holding %s", ErrInsufficientBalance, value.Dec(), from.Hex(), balance.Dec())
	}
	l.store(slot, new(uint256.Int).Sub(balance, value))
	l.store(slotTotalSupply, new(uint256.Int).Sub(l.TotalSupply(), value))
	l.state.AddLog(bindings.TransferLog(l.address, from, common.Address{}, value))
	return nil
}

func (l *Ledger) load(slot common.Hash) *uint256.Int {
	return state.WordToAmount(l.state.GetState(l.address, slot))
}

func (l *Ledger) store(slot common.Hash, v *uint256.Int) {
	l.state.SetState(l.address, slot, state.AmountToWord(v))
}
