package history

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Gibbs sampler parameter names.
const (
	ParamMu          = "mu"
	ParamSigma2      = "sigma2"
	ParamSigma2Theta = "sigma2_theta"
	ParamTheta       = "theta"
)

// gibbsHeaderLen is the encoded length of the sweep index and the three scalar parameters.
const gibbsHeaderLen = 4 * 8

var errGibbsEncoding = errors.New("malformed Gibbs record encoding")

// ThetaParam returns the parameter name of the t-th group mean, e.g. "theta[2]".
func ThetaParam(t int) string {
	return fmt.Sprintf("%s[%d]", ParamTheta, t)
}

// GibbsRecord is the state of the Gibbs sampler after one sweep.
type GibbsRecord struct {
	Sweep       int
	Theta       []float64
	Mu          float64
	Sigma2      float64
	Sigma2Theta float64
}

// Defines returns whether param is mu, sigma2, sigma2_theta, or theta[t] for some t >= 0.
func (r GibbsRecord) Defines(param string) bool {
	switch param {
	case ParamMu, ParamSigma2, ParamSigma2Theta:
		return true
	}
	_, ok := parseThetaParam(param)
	return ok
}

// Lookup returns the value of the named parameter.
func (r GibbsRecord) Lookup(param string) (float64, bool) {
	switch param {
	case ParamMu:
		return r.Mu, true
	case ParamSigma2:
		return r.Sigma2, true
	case ParamSigma2Theta:
		return r.Sigma2Theta, true
	}
	if t, ok := parseThetaParam(param); ok && t < len(r.Theta) {
		return r.Theta[t], true
	}
	return 0, false
}

// Clone returns a deep copy of the record.
func (r GibbsRecord) Clone() GibbsRecord {
	cp := r
	cp.Theta = append([]float64(nil), r.Theta...)
	return cp
}

// MarshalBinary encodes the record as big-endian sweep index followed by the float64 bits of
// mu, sigma2, sigma2_theta, and theta.
func (r GibbsRecord) MarshalBinary() ([]byte, error) {
	buf := make([]byte, gibbsHeaderLen+8*len(r.Theta))
	binary.BigEndian.PutUint64(buf[0:], uint64(r.Sweep))
	binary.BigEndian.PutUint64(buf[8:], math.Float64bits(r.Mu))
	binary.BigEndian.PutUint64(buf[16:], math.Float64bits(r.Sigma2))
	binary.BigEndian.PutUint64(buf[24:], math.Float64bits(r.Sigma2Theta))
	for t, theta := range r.Theta {
		binary.BigEndian.PutUint64(buf[gibbsHeaderLen+8*t:], math.Float64bits(theta))
	}
	return buf, nil
}

// DecodeGibbsRecord decodes a record encoded by GibbsRecord.MarshalBinary.
func DecodeGibbsRecord(buf []byte) (GibbsRecord, error) {
	if len(buf) < gibbsHeaderLen || (len(buf)-gibbsHeaderLen)%8 != 0 {
		return GibbsRecord{}, errors.Wrapf(errGibbsEncoding, "length %d", len(buf))
	}
	r := GibbsRecord{
		Sweep:       int(binary.BigEndian.Uint64(buf[0:])),
		Mu:          math.Float64frombits(binary.BigEndian.Uint64(buf[8:])),
		Sigma2:      math.Float64frombits(binary.BigEndian.Uint64(buf[16:])),
		Sigma2Theta: math.Float64frombits(binary.BigEndian.Uint64(buf[24:])),
		Theta:       make([]float64, (len(buf)-gibbsHeaderLen)/8),
	}
	for t := range r.Theta {
		r.Theta[t] = math.Float64frombits(binary.BigEndian.Uint64(buf[gibbsHeaderLen+8*t:]))
	}
	return r, nil
}

func parseThetaParam(param string) (int, bool) {
	prefix := ParamTheta + "["
	if !strings.HasPrefix(param, prefix) || !strings.HasSuffix(param, "]") {
		return 0, false
	}
	t, err := strconv.Atoi(param[len(prefix) : len(param)-1])
	if err != nil || t < 0 {
		return 0, false
	}
	return t, true
}

// Gibbs is the history of a Gibbs sampler run.
type Gibbs struct {
	*History[GibbsRecord]
}

// NewGibbs returns a new empty *Gibbs history.
func NewGibbs() *Gibbs {
	return &Gibbs{History: New[GibbsRecord]()}
}

// ThetaSeries returns the group-mean vectors over the sweeps, in order.
func (g *Gibbs) ThetaSeries() [][]float64 {
	records := g.Records()
	series := make([][]float64, len(records))
	for i, r := range records {
		series[i] = r.Theta
	}
	return series
}
