package headers

import (
	"github.com/gojxl/jxl/internal/bitio"
	"github.com/pkg/errors"
)

// CodestreamSignature is the two-byte marker every bare or boxed
// codestream begins with (spec.md §2).
var CodestreamSignature = [2]byte{0xFF, 0x0A}

// ErrBadSignature is returned when the leading codestream marker bytes
// don't match CodestreamSignature.
var ErrBadSignature = errors.New("headers: bad codestream signature")

// ReadSignature consumes and validates the two-byte codestream marker.
func ReadSignature(r *bitio.Reader) error {
	v, err := r.Read(16)
	if err != nil {
		return err
	}
	if byte(v) != CodestreamSignature[0] || byte(v>>8) != CodestreamSignature[1] {
		return ErrBadSignature
	}
	return nil
}

// Orientation enumerates the EXIF-style orientation tag of spec.md §3.
type Orientation int

const (
	OrientIdentity Orientation = iota + 1
	OrientFlipHorizontal
	OrientRotate180
	OrientFlipVertical
	OrientTranspose
	OrientRotate90
	OrientAntiTranspose
	OrientRotate270
)

// IsTransposing reports whether this orientation swaps width and height.
func (o Orientation) IsTransposing() bool {
	switch o {
	case OrientTranspose, OrientRotate90, OrientAntiTranspose, OrientRotate270:
		return true
	default:
		return false
	}
}

var extraChannelCountCoder = SelectCoder(Val(0), Val(1), BitsOffset(4, 2), BitsOffset(12, 1))

// ImageMetadata is the decoded FileHeader of spec.md §3: everything
// needed before the first frame's TOC can be parsed.
type ImageMetadata struct {
	Size Size

	Orientation Orientation

	HaveIntrinsicSize bool
	IntrinsicSize     Size

	HavePreview bool
	Preview     Preview

	HaveAnimation bool
	Animation     Animation

	BitsPerSample         uint32
	ExpBitsPerSample      uint32
	Modular16BitSufficient bool

	ExtraChannels []ExtraChannelInfo

	XybEncoded bool

	ColorEncoding ColorEncoding
	ToneMapping   ToneMapping

	Extensions ExtensionsDescriptor
}

// ReadFileHeader decodes the signature and the full ImageMetadata
// structure that follows it.
func ReadFileHeader(r *bitio.Reader) (ImageMetadata, error) {
	if err := ReadSignature(r); err != nil {
		return ImageMetadata{}, err
	}
	return ReadImageMetadata(r)
}

// ReadImageMetadata decodes the ImageMetadata block (spec.md §3),
// grounded on original_source/jxl/src/headers/image_metadata.rs.
func ReadImageMetadata(r *bitio.Reader) (ImageMetadata, error) {
	var m ImageMetadata

	size, err := ReadSize(r)
	if err != nil {
		return m, err
	}
	m.Size = size

	allDefault, err := ReadBool(r)
	if err != nil {
		return m, err
	}

	extraFields := false
	if !allDefault {
		extraFields, err = ReadBool(r)
		if err != nil {
			return m, err
		}
	}

	m.Orientation = OrientIdentity
	if extraFields {
		ov, err := r.Read(3)
		if err != nil {
			return m, err
		}
		m.Orientation = Orientation(ov + 1)

		m.HaveIntrinsicSize, err = ReadBool(r)
		if err != nil {
			return m, err
		}
		if m.HaveIntrinsicSize {
			m.IntrinsicSize, err = ReadSize(r)
			if err != nil {
				return m, err
			}
		}

		m.HavePreview, err = ReadBool(r)
		if err != nil {
			return m, err
		}
		if m.HavePreview {
			m.Preview, err = ReadPreview(r)
			if err != nil {
				return m, err
			}
		}

		m.HaveAnimation, err = ReadBool(r)
		if err != nil {
			return m, err
		}
		if m.HaveAnimation {
			m.Animation, err = ReadAnimation(r)
			if err != nil {
				return m, err
			}
		}
	}

	if allDefault {
		m.BitsPerSample = 8
		m.Modular16BitSufficient = true
		m.XybEncoded = true
		m.ColorEncoding.Space = ColorSpaceRGB
		m.ColorEncoding.White = WhiteD65
		m.ColorEncoding.Prim = PrimariesSRGB
		m.ColorEncoding.TF = TransferFunction{Kind: TFSRGB}
		m.ColorEncoding.Intent = IntentRelative
		m.ToneMapping = DefaultToneMapping()
		return m, nil
	}

	m.BitsPerSample, m.ExpBitsPerSample, err = ReadBitDepth(r)
	if err != nil {
		return m, err
	}

	m.Modular16BitSufficient = true
	if !allDefault {
		m.Modular16BitSufficient, err = ReadBool(r)
		if err != nil {
			return m, err
		}
	}

	numExtra, err := ReadU32(r, extraChannelCountCoder)
	if err != nil {
		return m, err
	}
	m.ExtraChannels = make([]ExtraChannelInfo, numExtra)
	for i := range m.ExtraChannels {
		m.ExtraChannels[i], err = ReadExtraChannelInfo(r)
		if err != nil {
			return m, err
		}
	}

	m.XybEncoded, err = ReadBool(r)
	if err != nil {
		return m, err
	}

	m.ColorEncoding, err = ReadColorEncoding(r)
	if err != nil {
		return m, err
	}

	if extraFields {
		m.ToneMapping, err = ReadToneMapping(r)
		if err != nil {
			return m, err
		}
	} else {
		m.ToneMapping = DefaultToneMapping()
	}

	haveExtensions, err := ReadBool(r)
	if err != nil {
		return m, err
	}
	if haveExtensions {
		m.Extensions, err = ReadExtensions(r)
		if err != nil {
			return m, err
		}
	}

	return m, nil
}

func writeSize(w *bitio.Writer, s Size) {
	WriteBool(w, false) // small=false, always write the general form
	WriteU32Direct(w, bigDimCoder, s.Height-1)
	WriteU32Direct(w, DirectCoder(Bits(3)), uint32(RatioUnknown))
	WriteU32Direct(w, bigDimCoder, s.Width-1)
}

// WriteImageMetadata serializes m, always taking the non-all-default,
// extra_fields path so the round trip is exact.
func WriteImageMetadata(w *bitio.Writer, m ImageMetadata) {
	writeSize(w, m.Size)
	WriteBool(w, false) // all_default = false
	WriteBool(w, true)  // extra_fields = true

	w.WriteBits(uint64(m.Orientation-1), 3)
	WriteBool(w, m.HaveIntrinsicSize)
	if m.HaveIntrinsicSize {
		writeSize(w, m.IntrinsicSize)
	}
	WriteBool(w, m.HavePreview)
	if m.HavePreview {
		writePreview(w, m.Preview)
	}
	WriteBool(w, m.HaveAnimation)
	if m.HaveAnimation {
		WriteAnimation(w, m.Animation)
	}

	writeBitDepth(w, m.BitsPerSample, m.ExpBitsPerSample)

	WriteBool(w, m.Modular16BitSufficient)

	WriteU32Direct(w, extraChannelCountCoder, uint32(len(m.ExtraChannels)))
	for _, ec := range m.ExtraChannels {
		WriteExtraChannelInfo(w, ec)
	}

	WriteBool(w, m.XybEncoded)
	WriteColorEncoding(w, m.ColorEncoding)
	WriteToneMapping(w, m.ToneMapping)
	WriteBool(w, false) // no extensions
}
