package vardct

import "github.com/gojxl/jxl/internal/permutation"

// NaturalOrder returns the coefficient scan order for a w x h block:
// a zigzag traversal from the DC corner (0,0) outward, the same shape
// as the teacher's fixed 4x4 VP8 scan table (internal/dsp/dsp.go's
// DspScan) generalized to arbitrary block dimensions.
//
// The returned slice maps scan position -> natural row-major index
// (y*w+x).
func NaturalOrder(w, h int) []int {
	type coord struct{ x, y int }
	coords := make([]coord, 0, w*h)
	for s := 0; s < w+h-1; s++ {
		var diag []coord
		for y := 0; y < h; y++ {
			x := s - y
			if x < 0 || x >= w {
				continue
			}
			diag = append(diag, coord{x, y})
		}
		if s%2 == 0 {
			for i := len(diag) - 1; i >= 0; i-- {
				coords = append(coords, diag[i])
			}
		} else {
			coords = append(coords, diag...)
		}
	}
	order := make([]int, len(coords))
	for i, c := range coords {
		order[i] = c.y*w + c.x
	}
	return order
}

// ApplyCustomScan permutes a bitstream-supplied natural order by a
// decoded Lehmer-coded permutation (spec.md §4.4 / §8's permutation
// scenarios reused here for the per-block-type custom scan feature),
// returning scan-position -> natural-index same as NaturalOrder.
func ApplyCustomScan(base []int, r permutation.SymbolReader, skip int) ([]int, error) {
	perm, err := permutation.Decode(r, len(base), skip)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(base))
	for i, p := range perm {
		out[i] = base[p]
	}
	return out, nil
}
