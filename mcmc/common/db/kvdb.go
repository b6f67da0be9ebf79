package db

import (
	"bytes"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

var errNilDB = errors.New("badger db is nil")

// KVDB is the (thin) abstraction layer of an implementation-agnostic key-value store.
type KVDB interface {
	// Get returns the value for a key, or nil if the key is absent.
	Get(key []byte) ([]byte, error)

	// Put stores the value for a key.
	Put(key []byte, value []byte) error

	// Delete removes the value for a key.
	Delete(key []byte) error

	// Iterate iterates through the key-value pairs with keyLB <= key < keyUB.
	Iterate(keyLB, keyUB []byte, done chan struct{}, callback func(key, value []byte)) error

	// Close gracefully shuts down the database.
	Close() error
}

// BadgerDB implements the KVDB interface with a thinly wrapped Badger instance.
type BadgerDB struct {
	bdb *badger.DB
}

// NewBadgerDB creates a new BadgerDB instance persisted in the given directory.
func NewBadgerDB(dbDir string) (*BadgerDB, error) {
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		return nil, err
	}
	return openBadger(badger.DefaultOptions(dbDir))
}

// NewMemoryBadgerDB creates a new in-memory BadgerDB instance (used mostly for testing).
func NewMemoryBadgerDB() (*BadgerDB, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true))
}

// NewTempDirBadgerDB creates a new BadgerDB instance (used mostly for local testing) in a local
// temporary directory.
func NewTempDirBadgerDB() (*BadgerDB, func(), error) {
	dir, err := os.MkdirTemp("", "kvdb-test-badger")
	cleanup := func() {
		rmErr := os.RemoveAll(dir)
		if rmErr != nil {
			panic(rmErr)
		}
	}
	if err != nil {
		return nil, cleanup, err
	}
	bdb, err := NewBadgerDB(dir)
	return bdb, cleanup, err
}

func openBadger(opts badger.Options) (*BadgerDB, error) {
	bdb, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, errors.Wrap(err, "opening badger db")
	}
	return &BadgerDB{bdb: bdb}, nil
}

// Get returns a copy of the value for a key.
func (db *BadgerDB) Get(key []byte) ([]byte, error) {
	if db.bdb == nil {
		return nil, errNilDB
	}
	var value []byte
	err := db.bdb.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

// Put stores the value for a key.
func (db *BadgerDB) Put(key []byte, value []byte) error {
	if db.bdb == nil {
		return errNilDB
	}
	return db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes the value for a key.
func (db *BadgerDB) Delete(key []byte) error {
	if db.bdb == nil {
		return errNilDB
	}
	return db.bdb.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Iterate calls the callback in key order for each pair with keyLB <= key < keyUB, stopping
// early if done is closed.
func (db *BadgerDB) Iterate(
	keyLB, keyUB []byte, done chan struct{}, callback func(key, value []byte),
) error {
	if db.bdb == nil {
		return errNilDB
	}
	return db.bdb.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(keyLB); iter.Valid(); iter.Next() {
			item := iter.Item()
			if bytes.Compare(item.Key(), keyUB) >= 0 {
				return nil
			}
			select {
			case <-done:
				return nil
			default:
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			callback(item.KeyCopy(nil), value)
		}
		return nil
	})
}

// Close gracefully shuts down the database.
func (db *BadgerDB) Close() error {
	if db.bdb == nil {
		return errNilDB
	}
	return db.bdb.Close()
}
