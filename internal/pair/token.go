package pair

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// The claim token is usable before initialization and is not covered by the
// reentrancy guard: a swap callee may move claim tokens.

func (p *Pair) Name() string    { return p.token.Name() }
func (p *Pair) Symbol() string  { return p.token.Symbol() }
func (p *Pair) Decimals() uint8 { return p.token.Decimals() }

func (p *Pair) TotalSupply() *uint256.Int {
	return p.token.TotalSupply()
}

func (p *Pair) BalanceOf(owner common.Address) *uint256.Int {
	return p.token.BalanceOf(owner)
}

func (p *Pair) Allowance(owner, spender common.Address) *uint256.Int {
	return p.token.Allowance(owner, spender)
}

// Approve lets spender move up to value of msg.Sender's claim tokens.
func (p *Pair) Approve(msg Msg, spender common.Address, value *uint256.Int) {
	p.token.Approve(msg.Sender, spender, value)
}

// Transfer moves value claim tokens from msg.Sender to to.
func (p *Pair) Transfer(msg Msg, to common.Address, value *uint256.Int) error {
	return p.atomic(func() error {
		return p.token.Transfer(msg.Sender, to, value)
	})
}

// TransferFrom moves value claim tokens from from to to, spending
// msg.Sender's allowance.
func (p *Pair) TransferFrom(msg Msg, from, to common.Address, value *uint256.Int) error {
	return p.atomic(func() error {
		return p.token.TransferFrom(msg.Sender, from, to, value)
	})
}
