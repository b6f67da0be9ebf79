package storage

import (
	"bytes"
	"sort"
	"sync"
)

// TestSLD is an in-memory StorerLoaderDeleter for tests. The *Err fields, when set, are returned
// by the corresponding operation.
type TestSLD struct {
	Stored     map[string][]byte
	LoadErr    error
	IterateErr error
	StoreErr   error
	DeleteErr  error
	mu         sync.Mutex
}

// NewTestSLD returns a new empty *TestSLD.
func NewTestSLD() *TestSLD {
	return &TestSLD{Stored: make(map[string][]byte)}
}

func (l *TestSLD) Load(key []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.LoadErr != nil {
		return nil, l.LoadErr
	}
	return l.Stored[string(key)], nil
}

func (l *TestSLD) Iterate(
	keyLB, keyUB []byte, done chan struct{}, callback func(key, value []byte),
) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.IterateErr != nil {
		return l.IterateErr
	}
	keys := make([]string, 0, len(l.Stored))
	for key := range l.Stored {
		if bytes.Compare([]byte(key), keyLB) >= 0 &&
			(keyUB == nil || bytes.Compare([]byte(key), keyUB) < 0) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		select {
		case <-done:
			return nil
		default:
			callback([]byte(key), l.Stored[key])
		}
	}
	return nil
}

func (l *TestSLD) Store(key []byte, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.StoreErr != nil {
		return l.StoreErr
	}
	l.Stored[string(key)] = value
	return nil
}

func (l *TestSLD) Delete(key []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.DeleteErr != nil {
		return l.DeleteErr
	}
	delete(l.Stored, string(key))
	return nil
}
