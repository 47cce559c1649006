package entropy

import (
	"github.com/gojxl/jxl/internal/bitio"
	"github.com/pkg/errors"
)

// ANSPrecisionBits is the fixed total-frequency precision (4096 slots),
// matching the hybrid ANS/prefix-code histograms.
const ANSPrecisionBits = 12
const ansPrecision = 1 << ANSPrecisionBits

// ErrInvalidANSDistribution is returned when per-symbol frequencies
// don't sum to the fixed precision.
var ErrInvalidANSDistribution = errors.New("entropy: ANS frequencies do not sum to 4096")

// ANSTable is a simple (non-alias) rANS decoding table: each of the
// 4096 slots maps to the symbol whose cumulative-frequency range
// contains it, plus that symbol's base offset and frequency.
type ANSTable struct {
	slotSymbol []uint32
	slotFreq   []uint32
	slotStart  []uint32 // cumulative start of the symbol owning this slot
}

// BuildANSTable constructs a decode table from per-symbol frequencies
// (summing to ansPrecision).
func BuildANSTable(freqs []uint32) (*ANSTable, error) {
	var total uint32
	for _, f := range freqs {
		total += f
	}
	if total != ansPrecision {
		return nil, ErrInvalidANSDistribution
	}
	t := &ANSTable{
		slotSymbol: make([]uint32, ansPrecision),
		slotFreq:   make([]uint32, ansPrecision),
		slotStart:  make([]uint32, ansPrecision),
	}
	cum := uint32(0)
	for sym, f := range freqs {
		for i := uint32(0); i < f; i++ {
			t.slotSymbol[cum+i] = uint32(sym)
			t.slotFreq[cum+i] = f
			t.slotStart[cum+i] = cum
		}
		cum += f
	}
	return t, nil
}

// ANSState is one rANS decoding stream's running state. JPEG XL
// interleaves two 32-bit states read from a shared bit reader; each
// cluster's histogram is consulted independently per symbol via the
// ANS state that's due for a refill.
type ANSState struct {
	x uint32
}

// NewANSState initializes a state by reading its 32-bit seed.
func NewANSState(r *bitio.Reader) (*ANSState, error) {
	v, err := r.Read(32)
	if err != nil {
		return nil, err
	}
	return &ANSState{x: uint32(v)}, nil
}

const ansByteStateMin = 1 << 16 // (1 << 23) >> 7, matches standard 32-bit/12-bit rANS renormalization bound used at 8-bit renorm granularity

// ReadSymbol decodes the next symbol and renormalizes the state,
// refilling 8 bits at a time from r as needed (rANS renormalization).
func (s *ANSState) ReadSymbol(r *bitio.Reader, t *ANSTable) (uint32, error) {
	slot := s.x & (ansPrecision - 1)
	sym := t.slotSymbol[slot]
	freq := t.slotFreq[slot]
	start := t.slotStart[slot]

	s.x = freq*(s.x>>ANSPrecisionBits) + slot - start

	for s.x < ansByteStateMin {
		v, err := r.Read(8)
		if err != nil {
			return 0, err
		}
		s.x = (s.x << 8) | uint32(v)
	}
	return sym, nil
}
