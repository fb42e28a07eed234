package bindings

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// ErrUnknownEvent is returned by ParseLog for logs outside the pair ABI.
var ErrUnknownEvent = errors.New("unknown event")

// TransferLog builds Transfer(from, to, value) emitted by contract.
func TransferLog(contract, from, to common.Address, value *uint256.Int) *types.Log {
	return newLog(contract, "Transfer", []common.Hash{addrTopic(from), addrTopic(to)}, value.ToBig())
}

// ApprovalLog builds Approval(owner, spender, value).
func ApprovalLog(contract, owner, spender common.Address, value *uint256.Int) *types.Log {
	return newLog(contract, "Approval", []common.Hash{addrTopic(owner), addrTopic(spender)}, value.ToBig())
}

// MintLog builds Mint(sender, amount0, amount1).
func MintLog(contract, sender common.Address, amount0, amount1 *uint256.Int) *types.Log {
	return newLog(contract, "Mint", []common.Hash{addrTopic(sender)}, amount0.ToBig(), amount1.ToBig())
}

// BurnLog builds Burn(sender, amount0, amount1, to).
func BurnLog(contract, sender common.Address, amount0, amount1 *uint256.Int, to common.Address) *types.Log {
	return newLog(contract, "Burn", []common.Hash{addrTopic(sender), addrTopic(to)}, amount0.ToBig(), amount1.ToBig())
}

// SwapLog builds Swap(sender, amount0In, amount1In, amount0Out, amount1Out, to).
func SwapLog(contract, sender common.Address, amount0In, amount1In, amount0Out, amount1Out *uint256.Int, to common.Address) *types.Log {
	return newLog(contract, "Swap", []common.Hash{addrTopic(sender), addrTopic(to)},
		amount0In.ToBig(), amount1In.ToBig(), amount0Out.ToBig(), amount1Out.ToBig())
}

// SyncLog builds Sync(reserve0, reserve1).
func SyncLog(contract common.Address, reserve0, reserve1 *uint256.Int) *types.Log {
	return newLog(contract, "Sync", nil, reserve0.ToBig(), reserve1.ToBig())
}

func newLog(contract common.Address, name string, indexed []common.Hash, args ...interface{}) *types.Log {
	ev := PairABI.Events[name]
	data, err := ev.Inputs.NonIndexed().Pack(args...)
	if err != nil {
		panic(fmt.Errorf("pack %s log: %w", name, err))
	}
	topics := append([]common.Hash{ev.ID}, indexed...)
	return &types.Log{Address: contract, Topics: topics, Data: data}
}

func addrTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// Event is a decoded pair, claim-token or pooled-token log.
type Event struct {
	Name    string
	Address common.Address
	Fields  map[string]interface{}
}

// ParseLog decodes a log emitted by the pair or a token.
func ParseLog(log *types.Log) (*Event, error) {
	if len(log.Topics) == 0 {
		return nil, ErrUnknownEvent
	}
	ev, err := PairABI.EventByID(log.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, log.Topics[0].Hex())
	}
	fields := make(map[string]interface{})
	if err := ev.Inputs.NonIndexed().UnpackIntoMap(fields, log.Data); err != nil {
		return nil, fmt.Errorf("unpack %s data: %w", ev.Name, err)
	}
	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("unpack %s topics: %w", ev.Name, err)
	}
	return &Event{Name: ev.Name, Address: log.Address, Fields: fields}, nil
}

// Amount returns the named integer field as a uint256.
func (e *Event) Amount(field string) *uint256.Int {
	v, ok := e.Fields[field].(*big.Int)
	if !ok {
		return nil
	}
	x, _ := uint256.FromBig(v)
	return x
}

// Addr returns the named address field.
func (e *Event) Addr(field string) common.Address {
	v, _ := e.Fields[field].(common.Address)
	return v
}
