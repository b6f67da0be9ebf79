package history

import (
	"bytes"
	"encoding/binary"

	"github.com/APanico12/MCMC/mcmc/common/storage"
	"github.com/pkg/errors"
)

// KeyLength is the length of the storage key of a record.
const KeyLength = 8

var (
	keyLB = make([]byte, KeyLength)
	keyUB = bytes.Repeat([]byte{0xff}, KeyLength+1)
)

// Key returns the storage key of the i-th record, its big-endian index, so that stored records
// iterate in order.
func Key(i int) []byte {
	key := make([]byte, KeyLength)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}

// Save stores every record of the history in the given Storer, keyed by its index.
func Save[R Record[R]](h *History[R], s storage.Storer) error {
	for i, r := range h.Records() {
		value, err := r.MarshalBinary()
		if err != nil {
			return errors.Wrapf(err, "encoding record %d", i)
		}
		if err := s.Store(Key(i), value); err != nil {
			return errors.Wrapf(err, "storing record %d", i)
		}
	}
	return nil
}

// Load reads the records stored by Save back into a new *History, decoding each one with the
// given decode function. Records must be stored contiguously from index 0.
func Load[R Record[R]](s storage.Storer, decode func([]byte) (R, error)) (*History[R], error) {
	h := New[R]()
	var loadErr error
	done := make(chan struct{})
	err := s.Iterate(keyLB, keyUB, done, func(key, value []byte) {
		if loadErr != nil {
			return
		}
		if len(key) != KeyLength || binary.BigEndian.Uint64(key) != uint64(h.Len()) {
			loadErr = errors.Errorf("expected record %d, found key %x", h.Len(), key)
			close(done)
			return
		}
		r, err := decode(value)
		if err != nil {
			loadErr = errors.Wrapf(err, "decoding record %d", h.Len())
			close(done)
			return
		}
		h.Append(r)
	})
	if err != nil {
		return nil, err
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return h, nil
}

// LoadGibbs loads a Gibbs sampler history stored by Save.
func LoadGibbs(s storage.Storer) (*Gibbs, error) {
	h, err := Load(s, DecodeGibbsRecord)
	if err != nil {
		return nil, err
	}
	return &Gibbs{History: h}, nil
}

// LoadMH loads a Metropolis-Hastings sampler history stored by Save.
func LoadMH(s storage.Storer) (*MH, error) {
	h, err := Load(s, DecodeMHRecord)
	if err != nil {
		return nil, err
	}
	return &MH{History: h}, nil
}
