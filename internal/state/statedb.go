package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	gethstate "github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
)

// StateDB is the journaled view transitions run against. It wraps a
// go-ethereum StateDB opened at the head root and swaps it for a fresh one
// after every Commit or Discard, so holders of a *StateDB stay valid.
//
// StateDB is not safe for concurrent use; the host serializes transitions.
type StateDB struct {
	db    *Database
	inner *gethstate.StateDB

	// taken counts the logs already handed out by TakeLogs.
	taken int
}

// New opens a StateDB at the head root of db.
func New(db *Database) (*StateDB, error) {
	s := &StateDB{db: db}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StateDB) reset() error {
	inner, err := gethstate.New(s.db.root, s.db.state)
	if err != nil {
		return fmt.Errorf("open state at %s: %w", s.db.root.Hex(), err)
	}
	s.inner, s.taken = inner, 0
	return nil
}

// Error returns the first database error met while reading. Reads that fail
// return the zero word, so a caller must check Error before trusting them.
func (s *StateDB) Error() error {
	return s.inner.Error()
}

// GetState returns the current word at slot of addr.
func (s *StateDB) GetState(addr common.Address, slot common.Hash) common.Hash {
	return s.inner.GetState(addr, slot)
}

// SetState writes value to slot of addr.
func (s *StateDB) SetState(addr common.Address, slot, value common.Hash) {
	s.inner.SetState(addr, slot, value)
}

// AddLog records a log emitted by the running transition.
func (s *StateDB) AddLog(log *types.Log) {
	s.inner.AddLog(log)
}

// Logs returns the logs emitted since the last TakeLogs.
func (s *StateDB) Logs() []*types.Log {
	logs := s.inner.Logs()
	if s.taken > len(logs) {
		s.taken = len(logs)
	}
	return logs[s.taken:]
}

// TakeLogs returns the pending logs and marks them as handed out.
func (s *StateDB) TakeLogs() []*types.Log {
	logs := s.Logs()
	s.taken += len(logs)
	return logs
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	return s.inner.Snapshot()
}

// RevertToSnapshot reverts all state changes made since the given revision.
// It panics on an unknown or already reverted revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	s.inner.RevertToSnapshot(revid)
}

// Commit writes every change to disk as the state of block and reopens the
// view at the new root. A read error met since the last reset aborts it.
func (s *StateDB) Commit(block uint64) error {
	if err := s.inner.Error(); err != nil {
		return fmt.Errorf("commit aborted: %w", err)
	}
	if err := s.db.commit(s.inner, block); err != nil {
		return err
	}
	return s.reset()
}

// Discard drops every uncommitted write, log and read error, reopening the
// view at the last committed root.
func (s *StateDB) Discard() error {
	return s.reset()
}
