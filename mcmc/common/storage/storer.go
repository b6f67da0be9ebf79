package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/APanico12/MCMC/mcmc/common/db"
	"github.com/pkg/errors"
)

var errInvertedRange = errors.New("lower key bound must not exceed upper bound")

// Storer stores values under keys of a single namespace.
type Storer interface {
	// Store a key-value pair.
	Store(key []byte, value []byte) error

	// Iterate calls the callback for each stored pair with keyLB <= key < keyUB, in key order,
	// until done is closed. A nil keyUB iterates to the end of the namespace.
	Iterate(keyLB, keyUB []byte, done chan struct{}, callback func(key, value []byte)) error
}

// Loader loads values stored under keys of a single namespace.
type Loader interface {
	// Load the value of a key, or nil if it is absent.
	Load(key []byte) ([]byte, error)
}

// Deleter deletes values stored under keys of a single namespace.
type Deleter interface {
	// Delete the value of a key.
	Delete(key []byte) error
}

// StorerLoader can both store and load values.
type StorerLoader interface {
	Storer
	Loader
}

// StorerLoaderDeleter can store, load, and delete values.
type StorerLoaderDeleter interface {
	StorerLoader
	Deleter
}

// Namespace is the key prefix separating one set of stored values from another in a shared
// db.KVDB.
type Namespace []byte

// RunNamespace returns the namespace of one part (e.g., "records" or "meta") of a named sampler
// run. Sampler, run, and part names must be non-empty and free of slashes.
func RunNamespace(sampler, run, part string) (Namespace, error) {
	for _, name := range []string{sampler, run, part} {
		if name == "" || strings.Contains(name, "/") {
			return nil, errors.Errorf("invalid namespace component %q", name)
		}
	}
	return Namespace(fmt.Sprintf("runs/%s/%s/%s/", sampler, run, part)), nil
}

func (ns Namespace) key(key []byte) []byte {
	nsKey := make([]byte, len(ns), len(ns)+len(key))
	copy(nsKey, ns)
	return append(nsKey, key...)
}

// end returns the smallest key greater than every key in the namespace, or nil if there is none.
func (ns Namespace) end() []byte {
	end := bytes.Clone(ns)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// kvdbStore is a StorerLoaderDeleter over a namespace of a db.KVDB, checking every key and
// stored value before use.
type kvdbStore struct {
	ns     Namespace
	kvdb   db.KVDB
	keys   Checker
	values Checker
}

// NewKVDBStorerLoaderDeleter returns a new StorerLoaderDeleter over the given namespace of a
// db.KVDB, validating keys and values with the given checkers.
func NewKVDBStorerLoaderDeleter(
	ns Namespace, kvdb db.KVDB, keyChecker Checker, valueChecker Checker,
) StorerLoaderDeleter {
	return &kvdbStore{ns: ns, kvdb: kvdb, keys: keyChecker, values: valueChecker}
}

// NewKVDBStorerLoader returns a new StorerLoader over the given namespace of a db.KVDB,
// validating keys and values with the given checkers.
func NewKVDBStorerLoader(
	ns Namespace, kvdb db.KVDB, keyChecker Checker, valueChecker Checker,
) StorerLoader {
	return NewKVDBStorerLoaderDeleter(ns, kvdb, keyChecker, valueChecker)
}

func (s *kvdbStore) Store(key, value []byte) error {
	if err := s.keys.Check(key); err != nil {
		return errors.Wrap(err, "invalid key")
	}
	if err := s.values.Check(value); err != nil {
		return errors.Wrap(err, "invalid value")
	}
	return s.kvdb.Put(s.ns.key(key), value)
}

func (s *kvdbStore) Iterate(
	keyLB, keyUB []byte, done chan struct{}, callback func(key, value []byte),
) error {
	ub := s.ns.end()
	if keyUB != nil {
		if bytes.Compare(keyLB, keyUB) > 0 {
			return errInvertedRange
		}
		ub = s.ns.key(keyUB)
	}
	if ub == nil {
		// namespace of only 0xff bytes
		ub = bytes.Repeat([]byte{0xff}, len(s.ns)+len(keyLB)+1)
	}
	return s.kvdb.Iterate(s.ns.key(keyLB), ub, done, func(nsKey, value []byte) {
		callback(nsKey[len(s.ns):], value)
	})
}

func (s *kvdbStore) Load(key []byte) ([]byte, error) {
	if err := s.keys.Check(key); err != nil {
		return nil, errors.Wrap(err, "invalid key")
	}
	return s.kvdb.Get(s.ns.key(key))
}

func (s *kvdbStore) Delete(key []byte) error {
	if err := s.keys.Check(key); err != nil {
		return errors.Wrap(err, "invalid key")
	}
	return s.kvdb.Delete(s.ns.key(key))
}
