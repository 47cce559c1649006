package headers

import "github.com/gojxl/jxl/internal/bitio"

// ExtraChannelKind enumerates the ExtraChannel type tag of spec.md §3,
// grounded on original_source/jxl/src/headers/extra_channels.rs.
type ExtraChannelKind int

const (
	ExtraAlpha ExtraChannelKind = iota
	ExtraDepth
	ExtraSpotColor
	ExtraSelectionMask
	ExtraBlack
	ExtraCFA
	ExtraThermal
	ExtraReserved0
	ExtraReserved1
	ExtraReserved2
	ExtraReserved3
	ExtraReserved4
	ExtraReserved5
	ExtraReserved6
	ExtraReserved7
	ExtraUnknown
	ExtraOptional
)

var extraChannelKindCoder = DirectCoder(Bits(6))

// ExtraChannelInfo describes one non-color channel (alpha, depth, spot
// color, etc). bit depth is independent of the frame's own bit depth
// (spec.md §8 P10).
type ExtraChannelInfo struct {
	Type            ExtraChannelKind
	BitsPerSample   uint32
	ExpBitsPerSample uint32
	DimShift        uint32 // channel is subsampled by 1<<DimShift in each dimension
	Name            string
	AlphaAssociated bool       // valid when Type == ExtraAlpha
	SpotColor       [4]float32 // valid when Type == ExtraSpotColor
	CfaChannel      uint32     // valid when Type == ExtraCFA
}

var dimShiftCoder = SelectCoder(Val(0), Val(3), Val(4), BitsOffset(3, 1))
var cfaChannelCoder = SelectCoder(Val(1), Bits(2), BitsOffset(4, 3), BitsOffset(8, 19))

// ErrDimShiftTooLarge is returned when a decoded dim_shift exceeds 3,
// the maximum subsampling this decoder supports for extra channels.
var ErrDimShiftTooLarge = errDimShiftTooLarge{}

type errDimShiftTooLarge struct{}

func (errDimShiftTooLarge) Error() string { return "headers: extra channel dim_shift exceeds 3" }

// ReadBitDepth decodes the shared BitDepth structure (spec.md §3): a
// floating flag, integer bits_per_sample, and for float samples an
// exponent width.
func ReadBitDepth(r *bitio.Reader) (bitsPerSample, expBits uint32, err error) {
	floatSample, err := ReadBool(r)
	if err != nil {
		return 0, 0, err
	}
	bitsCoder := SelectCoder(Val(8), Val(10), Val(12), BitsOffset(6, 1))
	bitsPerSample, err = ReadU32(r, bitsCoder)
	if err != nil {
		return 0, 0, err
	}
	if floatSample {
		expCoder := SelectCoder(Val(5), BitsOffset(4, 1), Val(0), Val(0))
		expBits, err = ReadU32(r, expCoder)
		if err != nil {
			return 0, 0, err
		}
	}
	return bitsPerSample, expBits, nil
}

// ReadExtraChannelInfo decodes one ExtraChannelInfo entry.
func ReadExtraChannelInfo(r *bitio.Reader) (ExtraChannelInfo, error) {
	var ec ExtraChannelInfo
	allDefault, err := ReadBool(r)
	if err != nil {
		return ec, err
	}
	if allDefault {
		ec.Type = ExtraAlpha
		ec.BitsPerSample = 8
		ec.AlphaAssociated = false
		return ec, nil
	}

	kind, err := ReadU32(r, extraChannelKindCoder)
	if err != nil {
		return ec, err
	}
	ec.Type = ExtraChannelKind(kind)

	ec.BitsPerSample, ec.ExpBitsPerSample, err = ReadBitDepth(r)
	if err != nil {
		return ec, err
	}

	dimShift, err := ReadU32(r, dimShiftCoder)
	if err != nil {
		return ec, err
	}
	if dimShift > 3 {
		return ec, ErrDimShiftTooLarge
	}
	ec.DimShift = dimShift

	ec.Name, err = ReadString(r)
	if err != nil {
		return ec, err
	}

	switch ec.Type {
	case ExtraAlpha:
		ec.AlphaAssociated, err = ReadBool(r)
		if err != nil {
			return ec, err
		}
	case ExtraSpotColor:
		for i := range ec.SpotColor {
			ec.SpotColor[i], err = ReadF32(r)
			if err != nil {
				return ec, err
			}
		}
	case ExtraCFA:
		ec.CfaChannel, err = ReadU32(r, cfaChannelCoder)
		if err != nil {
			return ec, err
		}
	}

	return ec, nil
}

// WriteExtraChannelInfo serializes ec, always in non-all-default form.
func WriteExtraChannelInfo(w *bitio.Writer, ec ExtraChannelInfo) {
	WriteBool(w, false) // all_default = false
	WriteU32Direct(w, extraChannelKindCoder, uint32(ec.Type))
	writeBitDepth(w, ec.BitsPerSample, ec.ExpBitsPerSample)
	WriteU32Direct(w, dimShiftCoder, ec.DimShift)
	writeString(w, ec.Name)

	switch ec.Type {
	case ExtraAlpha:
		WriteBool(w, ec.AlphaAssociated)
	case ExtraSpotColor:
		for _, f := range ec.SpotColor {
			writeF32(w, f)
		}
	case ExtraCFA:
		WriteU32Direct(w, cfaChannelCoder, ec.CfaChannel)
	}
}

func writeBitDepth(w *bitio.Writer, bitsPerSample, expBits uint32) {
	floatSample := expBits != 0
	WriteBool(w, floatSample)
	bitsCoder := SelectCoder(Val(8), Val(10), Val(12), BitsOffset(6, 1))
	WriteU32Direct(w, bitsCoder, bitsPerSample)
	if floatSample {
		expCoder := SelectCoder(Val(5), BitsOffset(4, 1), Val(0), Val(0))
		WriteU32Direct(w, expCoder, expBits)
	}
}

// SampleScale returns the normalization factor 1/((1<<bits)-1) used to
// map an integer extra-channel sample into [0, 1], independent of any
// other channel's bit depth (spec.md §8 P10).
func (ec ExtraChannelInfo) SampleScale() float64 {
	if ec.BitsPerSample == 0 {
		return 1
	}
	return 1.0 / float64((uint64(1)<<ec.BitsPerSample)-1)
}
