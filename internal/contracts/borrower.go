package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
	"github.com/nulln0ne/uniswap-pair/internal/chain"
)

// Borrower receives swap callbacks. repay(token, amount) pays amount of
// token back to the calling pair out of the borrower's own balance;
// reenter(input) calls the pair again with input.
type Borrower struct{}

func (Borrower) Run(env *chain.Env, input []byte) ([]byte, error) {
	c, err := decode(bindings.CalleeABI, input)
	if err != nil {
		return nil, err
	}
	switch c.method.Name {
	case "repay":
		amount, err := c.amount(1)
		if err != nil {
			return nil, err
		}
		ret, err := env.Call(c.address(0), bindings.PackTransfer(env.Caller, amount))
		if err != nil {
			return nil, err
		}
		if !bindings.IsTransferSuccess(ret) {
			return nil, ErrTransferRevert
		}
		return nil, nil
	case "reenter":
		_, err := env.Call(env.Caller, c.bytes(0))
		return nil, err
	}
	return nil, ErrUnknownSelector
}

// PackRepay encodes the callback data that makes a Borrower repay amount of
// token.
func PackRepay(token common.Address, amount *big.Int) []byte {
	data, err := bindings.CalleeABI.Pack("repay", token, amount)
	if err != nil {
		panic(err)
	}
	return data
}

// PackReenter encodes the callback data that makes a Borrower call the pair
// again with input.
func PackReenter(input []byte) []byte {
	data, err := bindings.CalleeABI.Pack("reenter", input)
	if err != nil {
		panic(err)
	}
	return data
}
