package history

import (
	"encoding/binary"
	"math"

	cerrors "github.com/APanico12/MCMC/mcmc/common/errors"
	"github.com/pkg/errors"
)

// Metropolis-Hastings sampler parameter names.
const (
	// ParamAccepted is the chain value after each accepted proposal.
	ParamAccepted = "accepted"

	// ParamRejected is the value of each rejected proposal.
	ParamRejected = "rejected"

	// ParamChain is the chain value at every iteration, repeating the previous value after a
	// rejection.
	ParamChain = "chain"

	// ParamProposed is the proposal at every iteration.
	ParamProposed = "proposed"

	// ParamAcceptanceRatio is the acceptance ratio at every iteration.
	ParamAcceptanceRatio = "acceptance_ratio"
)

const mhRecordLen = 8*4 + 1

var errMHEncoding = errors.New("malformed Metropolis-Hastings record encoding")

// MHRecord is the outcome of one Metropolis-Hastings iteration.
type MHRecord struct {
	Iteration int

	// Proposed is the proposed state.
	Proposed float64

	// AcceptanceRatio is min(1, target(proposed)/target(current)).
	AcceptanceRatio float64

	// Accepted is whether the proposal was accepted.
	Accepted bool

	// Current is the chain state at the end of the iteration.
	Current float64
}

// Defines returns whether param is one of the Metropolis-Hastings parameter names.
func (r MHRecord) Defines(param string) bool {
	switch param {
	case ParamAccepted, ParamRejected, ParamChain, ParamProposed, ParamAcceptanceRatio:
		return true
	}
	return false
}

// Lookup returns the value of the named parameter. Accepted values are only carried by
// accepted iterations and rejected values only by rejected ones.
func (r MHRecord) Lookup(param string) (float64, bool) {
	switch param {
	case ParamAccepted:
		return r.Current, r.Accepted
	case ParamRejected:
		return r.Proposed, !r.Accepted
	case ParamChain:
		return r.Current, true
	case ParamProposed:
		return r.Proposed, true
	case ParamAcceptanceRatio:
		return r.AcceptanceRatio, true
	}
	return 0, false
}

// Clone returns a copy of the record.
func (r MHRecord) Clone() MHRecord {
	return r
}

// MarshalBinary encodes the record as the big-endian iteration index, the float64 bits of the
// proposal, acceptance ratio, and current state, and a trailing accepted flag.
func (r MHRecord) MarshalBinary() ([]byte, error) {
	buf := make([]byte, mhRecordLen)
	binary.BigEndian.PutUint64(buf[0:], uint64(r.Iteration))
	binary.BigEndian.PutUint64(buf[8:], math.Float64bits(r.Proposed))
	binary.BigEndian.PutUint64(buf[16:], math.Float64bits(r.AcceptanceRatio))
	binary.BigEndian.PutUint64(buf[24:], math.Float64bits(r.Current))
	if r.Accepted {
		buf[32] = 1
	}
	return buf, nil
}

// DecodeMHRecord decodes a record encoded by MHRecord.MarshalBinary.
func DecodeMHRecord(buf []byte) (MHRecord, error) {
	if len(buf) != mhRecordLen {
		return MHRecord{}, errors.Wrapf(errMHEncoding, "length %d", len(buf))
	}
	return MHRecord{
		Iteration:       int(binary.BigEndian.Uint64(buf[0:])),
		Proposed:        math.Float64frombits(binary.BigEndian.Uint64(buf[8:])),
		AcceptanceRatio: math.Float64frombits(binary.BigEndian.Uint64(buf[16:])),
		Current:         math.Float64frombits(binary.BigEndian.Uint64(buf[24:])),
		Accepted:        buf[32] == 1,
	}, nil
}

// MH is the history of a Metropolis-Hastings sampler run.
type MH struct {
	*History[MHRecord]
}

// NewMH returns a new empty *MH history.
func NewMH() *MH {
	return &MH{History: New[MHRecord]()}
}

// Accepted returns the chain values after each accepted proposal, in order. Its length is the
// number of accepted proposals, not the number of iterations.
func (h *MH) Accepted() []float64 {
	series, err := h.SeriesFor(ParamAccepted)
	cerrors.MaybePanic(err) // should never happen
	return series
}

// Rejected returns the rejected proposals, in order.
func (h *MH) Rejected() []float64 {
	series, err := h.SeriesFor(ParamRejected)
	cerrors.MaybePanic(err) // should never happen
	return series
}

// Chain returns the canonical trace with one chain value per iteration. It is derived from the
// same records as Accepted and Rejected and does not replace them.
func (h *MH) Chain() []float64 {
	series, err := h.SeriesFor(ParamChain)
	cerrors.MaybePanic(err) // should never happen
	return series
}
