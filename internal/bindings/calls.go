package bindings

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrUnexpectedOutput is returned when a call result does not decode to the
// expected shape.
var ErrUnexpectedOutput = errors.New("unexpected call output")

var trueWord = common.LeftPadBytes([]byte{1}, 32)

// PackTransfer encodes transfer(to, value).
func PackTransfer(to common.Address, value *uint256.Int) []byte {
	input, err := ERC20ABI.Pack("transfer", to, value.ToBig())
	if err != nil {
		panic(err) // argument types are fixed
	}
	return input
}

// PackBalanceOf encodes balanceOf(owner).
func PackBalanceOf(owner common.Address) []byte {
	input, err := ERC20ABI.Pack("balanceOf", owner)
	if err != nil {
		panic(err)
	}
	return input
}

// UnpackAmount decodes a single uint256 return value of method.
func UnpackAmount(method string, output []byte) (*uint256.Int, error) {
	values, err := PairABI.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", ErrUnexpectedOutput, method, len(values))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", ErrUnexpectedOutput, method, values[0])
	}
	return FromBig(v)
}

// IsTransferSuccess reports whether a token transfer return payload signals
// success: either no data, or exactly the 32-byte encoding of true.
func IsTransferSuccess(ret []byte) bool {
	if len(ret) == 0 {
		return true
	}
	return len(ret) == 32 && string(ret) == string(trueWord)
}

// EncodeBool returns the 32-byte ABI encoding of b.
func EncodeBool(b bool) []byte {
	if b {
		return common.CopyBytes(trueWord)
	}
	return make([]byte, 32)
}

// FromBig converts an ABI-decoded integer into a uint256.
func FromBig(v *big.Int) (*uint256.Int, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", ErrUnexpectedOutput, v)
	}
	x, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: amount %s exceeds 256 bits", ErrUnexpectedOutput, v)
	}
	return x, nil
}
