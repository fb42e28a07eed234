package contracts

import (
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/chain"
	"github.com/nulln0ne/uniswap-pair/internal/ledger"
)

// ReturnMode selects what a Token answers to transfer and transferFrom.
type ReturnMode int

const (
	// ReturnTrue moves the tokens and returns true.
	ReturnTrue ReturnMode = iota
	// ReturnNothing moves the tokens and returns no data.
	ReturnNothing
	// ReturnFalse leaves balances alone and returns false.
	ReturnFalse
	// ReturnGarbage moves the tokens and returns a word that is not a bool.
	ReturnGarbage
	// ReturnRevert fails the call.
	ReturnRevert
)

func (m ReturnMode) String() string {
	switch m {
	case ReturnTrue:
		return "true"
	case ReturnNothing:
		return "nothing"
	case ReturnFalse:
		return "false"
	case ReturnGarbage:
		return "garbage"
	case ReturnRevert:
		return "revert"
	default:
		return "unknown"
	}
}

// Token is a pooled ERC-20 asset with a public faucet mint.
type Token struct {
	ledger *ledger.Ledger
	mode   ReturnMode
	logger *slog.Logger
}

// NewToken returns the token stored at address.
func NewToken(address common.Address, meta ledger.Metadata, db ledger.StateDB, logger *slog.Logger) *Token {
	return &Token{
		ledger: ledger.New(meta, address, db),
		logger: logger.With("token", meta.Symbol),
	}
}

// SetReturnMode changes how the token answers transfers from now on.
func (t *Token) SetReturnMode(mode ReturnMode) {
	t.mode = mode
}

func (t *Token) Run(env *chain.Env, input []byte) ([]byte, error) {
	c, err := decode(bindings.TokenABI, input)
	if err != nil {
		return nil, err
	}
	l := t.ledger

	switch c.method.Name {
	case "name":
		return c.ret(l.Name())
	case "symbol":
		return c.ret(l.Symbol())
	case "decimals":
		return c.ret(l.Decimals())
	case "totalSupply":
		return c.ret(l.TotalSupply().ToBig())
	case "balanceOf":
		return c.ret(l.BalanceOf(c.address(0)).ToBig())
	case "allowance":
		return c.ret(l.Allowance(c.address(0), c.address(1)).ToBig())
	case "approve":
		value, err := c.amount(1)
		if err != nil {
			return nil, err
		}
		l.Approve(env.Caller, c.address(0), value)
		return c.ret(true)
	case "transfer", "transferFrom":
		return t.transfer(env, c)
	case "mint":
		value, err := c.amount(1)
		if err != nil {
			return nil, err
		}
		if err := l.Mint(c.address(0), value); err != nil {
			return nil, err
		}
		t.logger.Debug("faucet mint", "to", c.address(0).Hex(), "value", value.Dec())
		return nil, nil
	}
	return nil, ErrUnknownSelector
}

func (t *Token) transfer(env *chain.Env, c *call) ([]byte, error) {
	switch t.mode {
	case ReturnRevert:
		return nil, ErrTransferRevert
	case ReturnFalse:
		return bindings.EncodeBool(false), nil
	}

	var err error
	if c.method.Name == "transfer" {
		value, verr := c.amount(1)
		if verr != nil {
			return nil, verr
		}
		err = t.ledger.Transfer(env.Caller, c.address(0), value)
	} else {
		value, verr := c.amount(2)
		if verr != nil {
			return nil, verr
		}
		err = t.ledger.TransferFrom(env.Caller, c.address(0), c.address(1), value)
	}
	if err != nil {
		return nil, err
	}

	switch t.mode {
	case ReturnNothing:
		return nil, nil
	case ReturnGarbage:
		word := make([]byte, 32)
		word[31] = 2
		return word, nil
	}
	return bindings.EncodeBool(true), nil
}
