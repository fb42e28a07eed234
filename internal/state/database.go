// Package state keeps contract storage in a go-ethereum state trie and exposes
// the journaled view every transition runs against.
package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	gethstate "github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// headRootKey stores the state root of the last commit.
var headRootKey = []byte("pair-sim-head-root")

const (
	cacheMiB    = 16
	fileHandles = 64
)

// Database is the committed state of every contract: trie nodes in a key-value
// store plus the root of the last commit.
type Database struct {
	disk   ethdb.Database
	triedb *triedb.Database
	state  gethstate.Database
	root   common.Hash
}

// Open opens (or creates) the database at path. An empty path keeps the data
// in memory only.
func Open(path string) (*Database, error) {
	if path == "" {
		return newDatabase(rawdb.NewMemoryDatabase())
	}
	kv, err := leveldb.NewCustom(path, "", func(o *opt.Options) {
		o.OpenFilesCacheCapacity = fileHandles
		o.BlockCacheCapacity = cacheMiB / 2 * opt.MiB
		o.WriteBuffer = cacheMiB / 4 * opt.MiB
	})
	if err != nil {
		return nil, fmt.Errorf("open state database %q: %w", path, err)
	}
	return newDatabase(rawdb.NewDatabase(kv))
}

func newDatabase(disk ethdb.Database) (*Database, error) {
	tdb := triedb.NewDatabase(disk, triedb.HashDefaults)
	d := &Database{
		disk:   disk,
		triedb: tdb,
		state:  gethstate.NewDatabase(tdb, nil),
		root:   types.EmptyRootHash,
	}
	ok, err := disk.Has(headRootKey)
	if err != nil {
		return nil, fmt.Errorf("read head root: %w", err)
	}
	if ok {
		root, err := disk.Get(headRootKey)
		if err != nil {
			return nil, fmt.Errorf("read head root: %w", err)
		}
		d.root = common.BytesToHash(root)
	}
	return d, nil
}

// commit writes the changes of sdb to disk and makes its root the head.
func (d *Database) commit(sdb *gethstate.StateDB, block uint64) error {
	root, err := sdb.Commit(block, false, false)
	if err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	if err := d.triedb.Commit(root, false); err != nil {
		return fmt.Errorf("flush trie %s: %w", root.Hex(), err)
	}
	if err := d.disk.Put(headRootKey, root.Bytes()); err != nil {
		return fmt.Errorf("write head root: %w", err)
	}
	d.root = root
	return nil
}

// Close releases the trie database and the underlying store.
func (d *Database) Close() error {
	if err := d.triedb.Close(); err != nil {
		return err
	}
	return d.disk.Close()
}
