package vardct

// BlockType identifies one of the ~27 transform kinds a VarDCT block
// can select, covering the square DCTs from 2x2 through 256x256, their
// rectangular (2:1) variants, the 4x4 "AFV" (asymmetric find variant)
// corner transforms, and the identity (no-transform) block used for
// 2x2 groups of flat pixels.
type BlockType int

const (
	BlockDCT2x2 BlockType = iota // "HORNUSS"
	BlockIdentity
	BlockDCT4x4
	BlockDCT8x8
	BlockDCT16x16
	BlockDCT32x32
	BlockDCT64x64
	BlockDCT128x128
	BlockDCT256x256
	BlockDCT4x8
	BlockDCT8x4
	BlockDCT8x16
	BlockDCT16x8
	BlockDCT8x32
	BlockDCT32x8
	BlockDCT16x32
	BlockDCT32x16
	BlockDCT32x64
	BlockDCT64x32
	BlockDCT64x128
	BlockDCT128x64
	BlockDCT128x256
	BlockDCT256x128
	BlockAFV0
	BlockAFV1
	BlockAFV2
	BlockAFV3
	numBlockTypes
)

// Dims returns the covered pixel footprint (width, height) in image
// samples for the given block type.
func (bt BlockType) Dims() (int, int) {
	switch bt {
	case BlockDCT2x2:
		return 2, 2
	case BlockIdentity:
		return 2, 2
	case BlockDCT4x4, BlockAFV0, BlockAFV1, BlockAFV2, BlockAFV3:
		return 4, 4
	case BlockDCT8x8:
		return 8, 8
	case BlockDCT16x16:
		return 16, 16
	case BlockDCT32x32:
		return 32, 32
	case BlockDCT64x64:
		return 64, 64
	case BlockDCT128x128:
		return 128, 128
	case BlockDCT256x256:
		return 256, 256
	case BlockDCT4x8:
		return 4, 8
	case BlockDCT8x4:
		return 8, 4
	case BlockDCT8x16:
		return 8, 16
	case BlockDCT16x8:
		return 16, 8
	case BlockDCT8x32:
		return 8, 32
	case BlockDCT32x8:
		return 32, 8
	case BlockDCT16x32:
		return 16, 32
	case BlockDCT32x16:
		return 32, 16
	case BlockDCT32x64:
		return 32, 64
	case BlockDCT64x32:
		return 64, 32
	case BlockDCT64x128:
		return 64, 128
	case BlockDCT128x64:
		return 128, 64
	case BlockDCT128x256:
		return 128, 256
	case BlockDCT256x128:
		return 256, 128
	default:
		return 8, 8
	}
}

// CoeffCount is Dims' width*height, the number of coefficients carried
// by one block of this type.
func (bt BlockType) CoeffCount() int {
	w, h := bt.Dims()
	return w * h
}

// IsAFV reports whether bt is one of the four AFV corner transforms,
// which split a 4x4 block into two triangular halves handled by
// distinct basis functions rather than a plain separable DCT.
func (bt BlockType) IsAFV() bool {
	return bt >= BlockAFV0 && bt <= BlockAFV3
}
