// Package vardct implements the variable-block-size DCT coding path
// (spec.md §4.8): per-block transform-size selection, dequantization,
// inverse DCT, natural/zigzag coefficient ordering, and the XYB-to-
// linear-sRGB color conversion used by VarDCT frames.
//
// Grounded on internal/lossy/decode_quant.go's per-segment
// dequantization-matrix idiom (VP8's fixed DC/AC pair per segment,
// generalized here to JPEG XL's per-block-size, per-channel quantizer
// weight tables) and internal/dsp/dsp.go's function-variable dispatch
// table for transform/prediction kernels.
package vardct

import "github.com/pkg/errors"

// ErrNon444ChromaSubsampling is returned when DC smoothing is
// requested on a frame whose chroma is subsampled below 4:4:4; the
// smoothing step is only ever applied to full-resolution chroma.
var ErrNon444ChromaSubsampling = errors.New("vardct: DC smoothing requires 4:4:4 chroma subsampling")

// Channel indices into the per-channel quantizer/weight tables,
// matching the fixed X/Y/B channel order of VarDCT frames.
const (
	ChanX = iota
	ChanY
	ChanB
	NumChannels
)

// QuantMatrix holds the dequantization scale for one transform size,
// one entry per channel, mirroring the teacher's QuantMatrix
// DC/AC-pair-per-segment shape but indexed by (channel, coefficient)
// instead of (segment, DC-or-AC).
type QuantMatrix struct {
	// Scales[channel][coeff] dequantizes raw integer coefficient coeff
	// of the named channel: dequantized = raw * Scales[channel][coeff] / globalScale.
	Scales [NumChannels][]float32
}

// GlobalScale and DCQuant are read from the LfGlobal section
// (internal/frame's readDequant); DCQuant holds the per-channel DC-band step sizes
// used both for the DC image itself and for DC-smoothing prediction.
type Dequant struct {
	GlobalScale float32
	DCQuant     [NumChannels]float32
	Matrices    map[BlockType]QuantMatrix
}

// NewIdentityDequant returns a Dequant whose matrices pass coefficients
// through unscaled, a safe default for block types with no explicit
// entry (quantizer tables for every one of the ~27 transform kinds are
// sizeable lookup data entirely determined by the bitstream, not
// derivable in the abstract; see DESIGN.md open question).
func NewIdentityDequant() *Dequant {
	return &Dequant{
		GlobalScale: 1,
		DCQuant:     [NumChannels]float32{1, 1, 1},
		Matrices:    map[BlockType]QuantMatrix{},
	}
}

// Dequantize multiplies raw integer coefficients of the given channel
// and block type by the matching scale, falling back to the flat
// per-DC-band quantizer when no explicit matrix entry exists.
func (d *Dequant) Dequantize(bt BlockType, channel int, raw []int32) []float32 {
	out := make([]float32, len(raw))
	m, ok := d.Matrices[bt]
	if !ok || channel >= NumChannels || len(m.Scales[channel]) == 0 {
		scale := d.DCQuant[channel] / d.GlobalScale
		for i, v := range raw {
			out[i] = float32(v) * scale
		}
		return out
	}
	scales := m.Scales[channel]
	for i, v := range raw {
		s := d.DCQuant[channel]
		if i < len(scales) {
			s = scales[i]
		}
		out[i] = float32(v) * s / d.GlobalScale
	}
	return out
}
