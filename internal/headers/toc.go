package headers

import (
	"github.com/gojxl/jxl/internal/bitio"
	"github.com/gojxl/jxl/internal/permutation"
)

// sectionSizeCoder is spec.md §4.9's TOC entry coder:
// Select(Bits(10), Bits(14)+1024, Bits(22)+17408, Bits(30)+4211712).
var sectionSizeCoder = SelectCoder(Bits(10), BitsOffset(14, 1024), BitsOffset(22, 17408), BitsOffset(30, 4211712))

// TOC is the decoded table of contents preceding a frame's section
// payloads (spec.md §3, §4.9): the byte size of each section in
// canonical order, after inverting any on-wire permutation.
type TOC struct {
	// Sizes holds one entry per canonical section index, in the order
	// LfGlobal, Lf{0..numLfGroups}, HfGlobal, Hf{group,pass}.
	Sizes []uint32
	// Permuted reports whether the wire order differed from canonical
	// order (informational; Sizes is already de-permuted).
	Permuted bool
}

// NumTOCEntries computes K = 2 + num_lf_groups + num_groups*num_passes,
// or 1 for the single-group/single-pass fast path (spec.md §4.9).
func NumTOCEntries(numGroups, numLfGroups, numPasses int) int {
	if numGroups == 1 && numPasses == 1 {
		return 1
	}
	return 2 + numLfGroups + numGroups*numPasses
}

// ReadTOC decodes a TOC for a frame with the given section count.
// permReader, if non-nil, supplies the context-coded symbols behind an
// optional leading permutation; it is unused when no permutation is
// present.
func ReadTOC(r *bitio.Reader, numSections int, permReader permutation.SymbolReader) (TOC, error) {
	var toc TOC
	permuted, err := ReadBool(r)
	if err != nil {
		return toc, err
	}
	toc.Permuted = permuted

	var perm []int
	if permuted {
		if permReader == nil {
			return toc, errPermutationReaderRequired
		}
		perm, err = permutation.Decode(permReader, numSections, 0)
		if err != nil {
			return toc, err
		}
	}

	if err := r.JumpToByteBoundary(); err != nil {
		return toc, err
	}

	wireSizes := make([]uint32, numSections)
	for i := range wireSizes {
		wireSizes[i], err = ReadU32(r, sectionSizeCoder)
		if err != nil {
			return toc, err
		}
	}

	toc.Sizes = make([]uint32, numSections)
	if perm == nil {
		copy(toc.Sizes, wireSizes)
	} else {
		// perm[wireIndex] = canonicalIndex: invert the permutation by
		// scattering each wire entry to its canonical slot.
		for wireIdx, canonicalIdx := range perm {
			toc.Sizes[canonicalIdx] = wireSizes[wireIdx]
		}
	}

	if err := r.JumpToByteBoundary(); err != nil {
		return toc, err
	}
	return toc, nil
}

var errPermutationReaderRequired = tocError("headers: TOC has permuted=true but no permutation reader was supplied")

type tocError string

func (e tocError) Error() string { return string(e) }
