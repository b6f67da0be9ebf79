package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadgerDB_NewBadgerDB(t *testing.T) {
	db, cleanup, err := NewTempDirBadgerDB()
	defer cleanup()
	assert.Nil(t, err)
	assert.NotNil(t, db.bdb)
	assert.Nil(t, db.Close())
}

func TestBadgerDB_PutGet(t *testing.T) {
	db, err := NewMemoryBadgerDB()
	assert.Nil(t, err)
	defer db.Close()
	key, value1 := []byte("key"), []byte("value1")

	assert.Nil(t, db.Put(key, value1))
	getValue1, err := db.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, value1, getValue1)
}

func TestBadgerDB_Get_missing(t *testing.T) {
	db, err := NewMemoryBadgerDB()
	assert.Nil(t, err)
	defer db.Close()

	value, err := db.Get([]byte("missing"))
	assert.Nil(t, err)
	assert.Nil(t, value)
}

func TestBadgerDB_err(t *testing.T) {
	db := &BadgerDB{}
	value, err := db.Get([]byte("key"))
	assert.Nil(t, value)
	assert.NotNil(t, err)
	assert.NotNil(t, db.Put([]byte("key"), []byte("value")))
	assert.NotNil(t, db.Delete([]byte("key")))
	assert.NotNil(t, db.Iterate(nil, nil, nil, func(key, value []byte) {}))
	assert.NotNil(t, db.Close())
}

func TestBadgerDB_PutGetPutGet(t *testing.T) {
	db, err := NewMemoryBadgerDB()
	assert.Nil(t, err)
	defer db.Close()
	key, value1, value2 := []byte("key"), []byte("value1"), []byte("value2")

	assert.Nil(t, db.Put(key, value1))
	getValue1, err := db.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, value1, getValue1)

	assert.Nil(t, db.Put(key, value2))
	getValue2, err := db.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, value2, getValue2)
}

func TestBadgerDB_PutGetDeleteGet(t *testing.T) {
	db, err := NewMemoryBadgerDB()
	assert.Nil(t, err)
	defer db.Close()
	key, value1 := []byte("key"), []byte("value1")

	assert.Nil(t, db.Put(key, value1))
	getValue1, err := db.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, value1, getValue1)

	assert.Nil(t, db.Delete(key))
	getValue2, err := db.Get(key)
	assert.Nil(t, err)
	assert.Nil(t, getValue2)
}

func TestBadgerDB_Iterate(t *testing.T) {
	db, err := NewMemoryBadgerDB()
	assert.Nil(t, err)
	defer db.Close()

	keys := [][]byte{{1, 0}, {1, 1}, {1, 2}, {2, 0}}
	for i, key := range keys {
		assert.Nil(t, db.Put(key, []byte{byte(i)}))
	}

	var got [][]byte
	err = db.Iterate([]byte{1}, []byte{2}, make(chan struct{}), func(key, value []byte) {
		got = append(got, key)
	})
	assert.Nil(t, err)
	assert.Equal(t, keys[:3], got)
}

func TestBadgerDB_Iterate_done(t *testing.T) {
	db, err := NewMemoryBadgerDB()
	assert.Nil(t, err)
	defer db.Close()
	assert.Nil(t, db.Put([]byte{1}, []byte{1}))

	done := make(chan struct{})
	close(done)
	nCalls := 0
	err = db.Iterate([]byte{0}, []byte{2}, done, func(key, value []byte) {
		nCalls++
	})
	assert.Nil(t, err)
	assert.Zero(t, nCalls)
}
