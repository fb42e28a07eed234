package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Slot returns the storage key of a fixed slot number.
func Slot(n uint64) common.Hash {
	return common.Hash(uint256.NewInt(n).Bytes32())
}

// MappingSlot returns the key of m[key] for a mapping declared at slot, using
// the Solidity layout keccak256(pad32(key) . slot).
func MappingSlot(key common.Address, slot common.Hash) common.Hash {
	return crypto.Keccak256Hash(common.LeftPadBytes(key.Bytes(), 32), slot.Bytes())
}

// NestedMappingSlot returns the key of m[outer][inner] for a two-level mapping
// declared at slot.
func NestedMappingSlot(outer, inner common.Address, slot common.Hash) common.Hash {
	return MappingSlot(inner, MappingSlot(outer, slot))
}

// WordToAmount decodes a storage word as a big-endian unsigned integer.
func WordToAmount(w common.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

// AmountToWord encodes x as a big-endian storage word.
func AmountToWord(x *uint256.Int) common.Hash {
	return common.Hash(x.Bytes32())
}

// WordToAddress decodes the low 20 bytes of a storage word.
func WordToAddress(w common.Hash) common.Address {
	return common.BytesToAddress(w[common.HashLength-common.AddressLength:])
}

// AddressToWord right-aligns addr in a storage word.
func AddressToWord(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
