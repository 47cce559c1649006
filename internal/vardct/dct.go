package vardct

import (
	"math"

	"github.com/gojxl/jxl/internal/pool"
)

// IDCTFunc transforms a w*h row-major coefficient block (DC-first,
// natural order) into w*h spatial samples, in place semantics via
// separate in/out slices the way the teacher's Transform func variable
// takes (coeffs, dst) rather than mutating in place.
type IDCTFunc func(coeffs []float32, w, h int, out []float32)

// idctDispatch mirrors internal/dsp/dsp.go's pattern of function
// variables assigned once at init and swappable for SIMD overrides;
// here every entry is the same separable pure-Go kernel since no
// architecture-specific variant exists for this decoder, but the
// indirection keeps the call site (IDCT, used by DecodeACBlock) uniform regardless
// of block shape.
var idctDispatch [numBlockTypes]IDCTFunc

func init() {
	for bt := BlockType(0); bt < numBlockTypes; bt++ {
		idctDispatch[bt] = separableIDCT
	}
}

// IDCT runs the inverse transform registered for bt.
func IDCT(bt BlockType, coeffs []float32) []float32 {
	w, h := bt.Dims()
	out := make([]float32, w*h)
	idctDispatch[bt](coeffs, w, h, out)
	return out
}

// separableIDCT performs a standard 2-D inverse type-II DCT (the
// "IDCT-III" per coefficient, i.e. the synthesis transform) via two
// 1-D passes, rows then columns. AFV blocks reuse this as an
// approximation of their true triangular-basis synthesis (see
// DESIGN.md open question on AFV).
func separableIDCT(coeffs []float32, w, h int, out []float32) {
	tmp := pool.GetFloat64(w * h)
	defer pool.PutFloat64(tmp)
	row := pool.GetFloat64(w)
	defer pool.PutFloat64(row)
	rowOut := pool.GetFloat64(w)
	defer pool.PutFloat64(rowOut)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row[x] = float64(coeffs[y*w+x])
		}
		idct1D(row, rowOut)
		for x := 0; x < w; x++ {
			tmp[y*w+x] = rowOut[x]
		}
	}
	col := pool.GetFloat64(h)
	defer pool.PutFloat64(col)
	colOut := pool.GetFloat64(h)
	defer pool.PutFloat64(colOut)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = tmp[y*w+x]
		}
		idct1D(col, colOut)
		for y := 0; y < h; y++ {
			out[y*w+x] = float32(colOut[y])
		}
	}
}

// idct1D computes the 1-D inverse DCT-II (the DCT-III synthesis
// basis) of in, writing len(in) samples to out.
func idct1D(in, out []float64) {
	n := len(in)
	if n == 0 {
		return
	}
	scale := math.Sqrt(2.0 / float64(n))
	c0 := 1.0 / math.Sqrt(2.0)
	for x := 0; x < n; x++ {
		var sum float64
		for k := 0; k < n; k++ {
			ck := 1.0
			if k == 0 {
				ck = c0
			}
			sum += ck * in[k] * math.Cos(math.Pi*(float64(x)+0.5)*float64(k)/float64(n))
		}
		out[x] = scale * sum
	}
}
