// Package contracts holds the contracts deployed on the simulated chain: the
// pooled ERC-20 tokens, the pair and a flash-swap borrower. Each one decodes
// its calldata against an ABI from the bindings package.
package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/uniswap-pair/internal/bindings"
)

type call struct {
	method *abi.Method
	args   []interface{}
}

func decode(contract abi.ABI, input []byte) (*call, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedInput, len(input))
	}
	method, err := contract.MethodById(input[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownSelector, input[:4])
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedInput, method.Name, err)
	}
	return &call{method: method, args: args}, nil
}

func (c *call) address(i int) common.Address {
	return c.args[i].(common.Address)
}

func (c *call) amount(i int) (*uint256.Int, error) {
	v, err := bindings.FromBig(c.args[i].(*big.Int))
	if err != nil {
		return nil, fmt.Errorf("%w: %s arg %d: %w", ErrMalformedInput, c.method.Name, i, err)
	}
	return v, nil
}

func (c *call) bytes(i int) []byte {
	return c.args[i].([]byte)
}

func (c *call) ret(values ...interface{}) ([]byte, error) {
	return c.method.Outputs.Pack(values...)
}
