package headers

import "github.com/gojxl/jxl/internal/bitio"

// AspectRatio maps a enumerated ratio against the y size, used by Size
// and Preview to avoid encoding xsize explicitly for common aspects.
type AspectRatio int

const (
	RatioUnknown AspectRatio = iota
	Ratio1x1
	Ratio12x10
	Ratio4x3
	Ratio3x2
	Ratio16x9
	Ratio5x4
	Ratio2x1
)

func applyAspectRatio(ysize uint32, ratio AspectRatio, fallback func() uint32) uint32 {
	switch ratio {
	case Ratio1x1:
		return ysize
	case Ratio12x10:
		return uint32(uint64(ysize) * 12 / 10)
	case Ratio4x3:
		return uint32(uint64(ysize) * 4 / 3)
	case Ratio3x2:
		return uint32(uint64(ysize) * 3 / 2)
	case Ratio16x9:
		return uint32(uint64(ysize) * 16 / 9)
	case Ratio5x4:
		return uint32(uint64(ysize) * 5 / 4)
	case Ratio2x1:
		return ysize * 2
	default:
		return fallback()
	}
}

var bigDimCoder = SelectCoder(Bits(9), Bits(13), Bits(18), Bits(30))

// Size is the image-dimension header (spec.md §3 FileHeader.size).
type Size struct {
	Width, Height uint32
}

// ReadSize decodes a Size block.
func ReadSize(r *bitio.Reader) (Size, error) {
	small, err := ReadBool(r)
	if err != nil {
		return Size{}, err
	}
	var ysize uint32
	if small {
		v, err := r.Read(5)
		if err != nil {
			return Size{}, err
		}
		ysize = (uint32(v) + 1) * 8
	} else {
		v, err := ReadU32(r, bigDimCoder)
		if err != nil {
			return Size{}, err
		}
		ysize = v + 1
	}
	ratioBits, err := r.Read(3)
	if err != nil {
		return Size{}, err
	}
	ratio := AspectRatio(ratioBits)

	var xsize uint32
	if ratio == RatioUnknown {
		if small {
			v, err := r.Read(5)
			if err != nil {
				return Size{}, err
			}
			xsize = (uint32(v) + 1) * 8
		} else {
			v, err := ReadU32(r, bigDimCoder)
			if err != nil {
				return Size{}, err
			}
			xsize = v + 1
		}
	} else {
		xsize = applyAspectRatio(ysize, ratio, func() uint32 { return ysize })
	}
	return Size{Width: xsize, Height: ysize}, nil
}

var previewDimCoder = SelectCoder(Val(16), Val(32), BitsOffset(5, 1), BitsOffset(9, 33))
var previewBigDimCoder = SelectCoder(Bits(6), BitsOffset(8, 64), BitsOffset(10, 320), BitsOffset(12, 1344))

// Preview describes an optional low-resolution preview image's size.
type Preview struct {
	Width, Height uint32
}

// ReadPreview decodes a Preview block.
func ReadPreview(r *bitio.Reader) (Preview, error) {
	div8, err := ReadBool(r)
	if err != nil {
		return Preview{}, err
	}
	var ysize uint32
	if div8 {
		v, err := ReadU32(r, previewDimCoder)
		if err != nil {
			return Preview{}, err
		}
		ysize = v
	} else {
		v, err := ReadU32(r, previewBigDimCoder)
		if err != nil {
			return Preview{}, err
		}
		ysize = v + 1
	}
	ratioBits, err := r.Read(3)
	if err != nil {
		return Preview{}, err
	}
	ratio := AspectRatio(ratioBits)
	var xsize uint32
	if ratio == RatioUnknown {
		if div8 {
			v, err := ReadU32(r, previewDimCoder)
			if err != nil {
				return Preview{}, err
			}
			xsize = v
		} else {
			v, err := ReadU32(r, previewBigDimCoder)
			if err != nil {
				return Preview{}, err
			}
			xsize = v + 1
		}
	} else {
		xsize = applyAspectRatio(ysize, ratio, func() uint32 { return ysize })
	}
	return Preview{Width: xsize, Height: ysize}, nil
}

// writePreview serializes p, always using the big (non-div8) form.
func writePreview(w *bitio.Writer, p Preview) {
	WriteBool(w, false) // div8 = false
	WriteU32Direct(w, previewBigDimCoder, p.Height-1)
	WriteU32Direct(w, DirectCoder(Bits(3)), uint32(RatioUnknown))
	WriteU32Direct(w, previewBigDimCoder, p.Width-1)
}
