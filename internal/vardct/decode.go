package vardct

import (
	"github.com/gojxl/jxl/internal/entropy"
)

// BlockMap records, for one group, which BlockType covers each 8x8
// block position and the raster offset of its top-left 8x8 cell, the
// generalization of the teacher's per-macroblock mode map
// (internal/lossy/decode_mb.go's MBInfo grid) from a fixed 16x16
// partition to VarDCT's variable block sizes.
type BlockMap struct {
	GroupWidth8, GroupHeight8 int
	Types                     []BlockType // len == GroupWidth8*GroupHeight8, covering cells repeat their owning block's type
}

// DCGroup holds one group's decoded, not-yet-smoothed DC coefficients
// per channel, at 1/8 resolution.
type DCGroup struct {
	Width, Height int
	Chan          [NumChannels][]float32
}

// ctx* are the fixed entropy-context indices used across the VarDCT
// group decode; a real bitstream parser derives per-context cluster
// indices from ContextMap, but callers of this package already hand in
// an entropy.Reader pre-wired with that context map (see
// internal/frame's FrameSink implementation).
const (
	ctxDC = iota
	ctxACNumNonzero
	ctxACCoeff
	ctxBlockType
)

// DecodeDCGroup reads one group's per-channel DC image: width*height
// raw hybrid-uint tokens per channel, dequantized via dq.
func DecodeDCGroup(r *entropy.Reader, dq *Dequant, width, height int) (*DCGroup, error) {
	g := &DCGroup{Width: width, Height: height}
	for c := 0; c < NumChannels; c++ {
		raw := make([]int32, width*height)
		for i := range raw {
			tok, err := r.ReadSymbol(ctxDC)
			if err != nil {
				return nil, err
			}
			raw[i] = entropy.UnzigzagSigned(tok)
		}
		g.Chan[c] = dq.Dequantize(BlockDCT8x8, c, raw)
	}
	return g, nil
}

// SmoothDC applies the DC smoothing filter, a weighted blend of each
// DC sample with its four neighbors intended to reduce blocking
// visible in the low-frequency image; it is restricted to frames with
// 4:4:4 chroma since the smoothing kernel assumes the three channels
// share one DC grid.
func SmoothDC(g *DCGroup, chromaSubsampled bool) error {
	if chromaSubsampled {
		return ErrNon444ChromaSubsampling
	}
	for c := 0; c < NumChannels; c++ {
		in := g.Chan[c]
		out := make([]float32, len(in))
		w, h := g.Width, g.Height
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				center := in[y*w+x]
				sum := center * 4
				n := 4
				if x > 0 {
					sum += in[y*w+x-1]
					n++
				}
				if x < w-1 {
					sum += in[y*w+x+1]
					n++
				}
				if y > 0 {
					sum += in[(y-1)*w+x]
					n++
				}
				if y < h-1 {
					sum += in[(y+1)*w+x]
					n++
				}
				out[y*w+x] = sum / float32(n)
			}
		}
		g.Chan[c] = out
	}
	return nil
}

// ACBlockResult is one block's fully reconstructed spatial-domain
// samples for every channel, ready for placement into the frame buffer
// by the render pipeline.
type ACBlockResult struct {
	Type    BlockType
	Samples [NumChannels][]float32
}

// DecodeACBlock reads one block's AC coefficients for every channel
// (given the block's already-known type and scan order), dequantizes,
// and runs the inverse transform, the VarDCT analogue of the
// teacher's per-subblock VP8Transform call in decode_mb.go.
func DecodeACBlock(r *entropy.Reader, dq *Dequant, bt BlockType, scan []int) (ACBlockResult, error) {
	res := ACBlockResult{Type: bt}
	n := bt.CoeffCount()
	for c := 0; c < NumChannels; c++ {
		nonzeroTok, err := r.ReadSymbol(ctxACNumNonzero)
		if err != nil {
			return res, err
		}
		raw := make([]int32, n)
		for k := 0; k < int(nonzeroTok) && k < len(scan); k++ {
			tok, err := r.ReadSymbol(ctxACCoeff)
			if err != nil {
				return res, err
			}
			pos := scan[k]
			if pos >= 0 && pos < n {
				raw[pos] = entropy.UnzigzagSigned(tok)
			}
		}
		coeffs := dq.Dequantize(bt, c, raw)
		res.Samples[c] = IDCT(bt, coeffs)
	}
	return res, nil
}
