// Package history records the per-iteration output of a sampler run.
package history

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownParameter indicates that a series was requested for a parameter the records do not
// define.
var ErrUnknownParameter = errors.New("unknown parameter")

// Record is a snapshot of sampler output for a single iteration.
type Record[R any] interface {
	// Defines returns whether records of this kind define the named parameter.
	Defines(param string) bool

	// Lookup returns the value of the named parameter and whether this record carries it.
	Lookup(param string) (float64, bool)

	// Clone returns a deep copy of the record.
	Clone() R

	// MarshalBinary encodes the record for storage.
	MarshalBinary() ([]byte, error)
}

// History is an ordered, append-only sequence of records, one per iteration. Records are
// copied on the way in and on the way out, so they cannot change once appended. It is safe for
// concurrent use.
type History[R Record[R]] struct {
	records []R
	mu      sync.RWMutex
}

// New returns a new empty *History.
func New[R Record[R]]() *History[R] {
	return &History[R]{}
}

// Append adds a record to the end of the history.
func (h *History[R]) Append(r R) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
}

// Len returns the number of records.
func (h *History[R]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// At returns a copy of the i-th record.
func (h *History[R]) At(i int) R {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.records[i].Clone()
}

// Records returns a copy of all the records in order.
func (h *History[R]) Records() []R {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rs := make([]R, len(h.records))
	for i, r := range h.records {
		rs[i] = r.Clone()
	}
	return rs
}

// SeriesFor returns the values of the named parameter over the records, in order. Records that
// do not carry the parameter are skipped.
func (h *History[R]) SeriesFor(param string) ([]float64, error) {
	var zero R
	if !zero.Defines(param) {
		return nil, errors.Wrap(ErrUnknownParameter, param)
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	series := make([]float64, 0, len(h.records))
	for _, r := range h.records {
		if v, ok := r.Lookup(param); ok {
			series = append(series, v)
		}
	}
	return series, nil
}
