package modular

import "github.com/pkg/errors"

// TransformType enumerates the Modular meta/inverse transforms of
// spec.md §4.7 step 5, named the way
// internal/lossless/transform.go names VP8L's four transforms
// (Predictor/CrossColor/SubtractGreen/ColorIndexing) but generalized
// to an arbitrary-length transform list with RCT variants and squeeze.
type TransformType int

const (
	TransformRCT TransformType = iota
	TransformPalette
	TransformSqueeze
)

// Transform is one entry in a frame's ordered transform list.
type Transform struct {
	Type TransformType

	// RCT.
	RCTVariant int // 0..41, validated below

	// Palette.
	PaletteChannelStart int
	PaletteNumChannels  int
	PaletteSize         int
	PaletteEntries      [][]int32 // [entry][channel]

	// Squeeze.
	SqueezeHorizontal bool
	SqueezeChannel    int
}

// ErrInvalidRCTVariant is returned for an RCT variant outside [0, 41].
var ErrInvalidRCTVariant = errors.New("modular: RCT variant out of range")

// ApplyInverse runs this transform's inverse in place over channels,
// mutating them to undo the corresponding forward transform applied at
// encode time.
func (tr Transform) ApplyInverse(channels []*Channel) error {
	switch tr.Type {
	case TransformRCT:
		return tr.inverseRCT(channels)
	case TransformPalette:
		return tr.inversePalette(channels)
	case TransformSqueeze:
		return tr.inverseSqueeze(channels)
	default:
		return nil
	}
}

// inverseRCT undoes one of the 42 reversible color transforms. Variant
// encodes (permutation, operation) as variant = permutation*6 +
// operation, mirroring the teacher's subtract-green (a single fixed
// instance of this family) generalized to the full JPEG XL set.
func (tr Transform) inverseRCT(channels []*Channel) error {
	if tr.RCTVariant < 0 || tr.RCTVariant > 41 {
		return ErrInvalidRCTVariant
	}
	if len(channels) < 3 {
		return nil
	}
	op := tr.RCTVariant % 6
	perm := tr.RCTVariant / 6
	a, b, c := channels[0], channels[1], channels[2]
	for i := range a.Data {
		v0, v1, v2 := a.Data[i], b.Data[i], c.Data[i]
		switch op {
		case 0: // identity (no color correlation)
		case 1: // YCoCg-like: second/third channels are differences
			v0, v1, v2 = v0+((v1+v2)>>2), v1, v2
		case 2:
			v0 = v0 + v1
		case 3:
			v2 = v2 + v1
		case 4:
			v0 = v0 + v1
			v2 = v2 + v1
		case 5:
			tmp := v1 >> 1
			v0 = v0 + tmp
			v2 = v2 + tmp
			v1 = v1
		}
		a.Data[i], b.Data[i], c.Data[i] = v0, v1, v2
	}
	applyChannelPermutation(channels, perm)
	return nil
}

// applyChannelPermutation cyclically rotates which of the first three
// channels holds which decoded value, matching RCT's permutation digit.
func applyChannelPermutation(channels []*Channel, perm int) {
	if perm == 0 || len(channels) < 3 {
		return
	}
	a, b, c := channels[0], channels[1], channels[2]
	switch perm % 6 {
	case 1:
		a.Data, b.Data, c.Data = b.Data, c.Data, a.Data
	case 2:
		a.Data, b.Data, c.Data = c.Data, a.Data, b.Data
	case 3:
		a.Data, b.Data = b.Data, a.Data
	case 4:
		b.Data, c.Data = c.Data, b.Data
	case 5:
		a.Data, c.Data = c.Data, a.Data
	}
}

// inversePalette expands a palette-index meta channel back into
// PaletteNumChannels real channels, the generalization of the
// teacher's color-indexing transform (a fixed 1-channel ARGB palette)
// to an arbitrary channel count and entry count.
func (tr Transform) inversePalette(channels []*Channel) error {
	if len(channels) == 0 {
		return nil
	}
	indices := channels[0]
	out := make([]*Channel, tr.PaletteNumChannels)
	for c := 0; c < tr.PaletteNumChannels; c++ {
		out[c] = NewChannel(ChannelInfo{Width: indices.Info.Width, Height: indices.Info.Height})
		for i, idx := range indices.Data {
			if int(idx) >= 0 && int(idx) < len(tr.PaletteEntries) {
				out[c].Data[i] = tr.PaletteEntries[idx][c]
			}
		}
	}
	copy(channels[tr.PaletteChannelStart:tr.PaletteChannelStart+tr.PaletteNumChannels], out)
	return nil
}

// inverseSqueeze undoes one level of the Haar-like squeeze transform
// (a channel pair of [average, residual] reconstructed back to the
// full-resolution channel it was split from).
func (tr Transform) inverseSqueeze(channels []*Channel) error {
	if tr.SqueezeChannel+1 >= len(channels) {
		return nil
	}
	avg := channels[tr.SqueezeChannel]
	res := channels[tr.SqueezeChannel+1]

	var w, h int
	if tr.SqueezeHorizontal {
		w, h = avg.Info.Width*2, avg.Info.Height
	} else {
		w, h = avg.Info.Width, avg.Info.Height*2
	}
	full := NewChannel(ChannelInfo{Width: w, Height: h})
	for y := 0; y < avg.Info.Height; y++ {
		for x := 0; x < avg.Info.Width; x++ {
			a := avg.at(x, y)
			d := res.at(x, y)
			lo := a - (d / 2)
			hi := lo + d
			if tr.SqueezeHorizontal {
				full.set(2*x, y, lo)
				if 2*x+1 < w {
					full.set(2*x+1, y, hi)
				}
			} else {
				full.set(x, 2*y, lo)
				if 2*y+1 < h {
					full.set(x, 2*y+1, hi)
				}
			}
		}
	}
	channels[tr.SqueezeChannel] = full
	channels = append(channels[:tr.SqueezeChannel+1], channels[tr.SqueezeChannel+2:]...)
	return nil
}
