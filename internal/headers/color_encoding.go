package headers

import "github.com/gojxl/jxl/internal/bitio"

// ColorSpace enumerates the ColorEncoding variant tag of spec.md §3.
type ColorSpace int

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceGray
	ColorSpaceXYB
	ColorSpaceUnknown // requires an embedded ICC profile
)

// WhitePoint enumerates the standard illuminants, or Custom for
// explicit chromaticities.
type WhitePoint int

const (
	WhiteD65 WhitePoint = 1
	WhiteCustom WhitePoint = 2
	WhiteE     WhitePoint = 10
	WhiteDCI   WhitePoint = 11
)

// Primaries enumerates the standard primary sets, or Custom.
type Primaries int

const (
	PrimariesSRGB   Primaries = 1
	PrimariesCustom Primaries = 2
	PrimariesBT2100 Primaries = 9
	PrimariesP3     Primaries = 11
)

// TransferFunction enumerates the transfer-function tag. A Gamma value
// in (0,1] is used instead when Kind == TFGamma.
type TransferFunctionKind int

const (
	TFBT709 TransferFunctionKind = iota
	TFUnknown
	TFLinear
	TFSRGB
	TFPQ
	TFDCI
	TFHLG
	TFGamma // not bit-coded directly; selected by the useGamma flag
)

// tfEnumCoder packs the seven enumerated (non-gamma) transfer functions
// into 3 raw bits, read only when the useGamma flag is false.
var tfEnumCoder = DirectCoder(Bits(3))

// TransferFunction is either an enumerated standard curve or an
// explicit gamma value.
type TransferFunction struct {
	Kind  TransferFunctionKind
	Gamma float64 // valid when Kind == TFGamma, in (0, 1]
}

// RenderingIntent mirrors the ICC rendering-intent enumeration.
type RenderingIntent int

const (
	IntentPerceptual RenderingIntent = iota
	IntentRelative
	IntentSaturation
	IntentAbsolute
)

// CustomXY is an explicit CIE xy chromaticity pair in real units; the
// codestream stores each coordinate as the integer (v+0.5)*1e6.
type CustomXY struct{ X, Y float64 }

// ColorEncoding is the full variant described in spec.md §3.
type ColorEncoding struct {
	WantICC bool // true if an embedded ICC profile follows instead of a parsed encoding
	Space   ColorSpace

	White       WhitePoint
	WhiteCustom CustomXY

	Prim       Primaries
	PrimCustom [3]CustomXY // red, green, blue

	TF     TransferFunction
	Intent RenderingIntent
}

func readCustomXY(r *bitio.Reader) (CustomXY, error) {
	c := SelectCoder(BitsOffset(19, 0), BitsOffset(19, 524288), BitsOffset(20, 1048576), BitsOffset(21, 2097152))
	xRaw, err := ReadU32(r, c)
	if err != nil {
		return CustomXY{}, err
	}
	yRaw, err := ReadU32(r, c)
	if err != nil {
		return CustomXY{}, err
	}
	const scale = 1.0 / 1000000.0
	return CustomXY{X: float64(xRaw)*scale - 0.5, Y: float64(yRaw)*scale - 0.5}, nil
}

// ReadColorEncoding decodes a ColorEncoding from r.
func ReadColorEncoding(r *bitio.Reader) (ColorEncoding, error) {
	var ce ColorEncoding
	allDefault, err := ReadBool(r)
	if err != nil {
		return ce, err
	}
	if allDefault {
		ce.Space = ColorSpaceRGB
		ce.White = WhiteD65
		ce.Prim = PrimariesSRGB
		ce.TF = TransferFunction{Kind: TFSRGB}
		ce.Intent = IntentRelative
		return ce, nil
	}

	wantICC, err := ReadBool(r)
	if err != nil {
		return ce, err
	}
	ce.WantICC = wantICC

	spaceCoder := SelectCoder(Val(uint32(ColorSpaceRGB)), Val(uint32(ColorSpaceGray)), Val(uint32(ColorSpaceXYB)), Val(uint32(ColorSpaceUnknown)))
	spaceVal, err := ReadU32(r, spaceCoder)
	if err != nil {
		return ce, err
	}
	ce.Space = ColorSpace(spaceVal)

	if !wantICC && ce.Space != ColorSpaceXYB {
		whiteCoder := SelectCoder(Val(uint32(WhiteD65)), Val(uint32(WhiteCustom)), Val(uint32(WhiteE)), Val(uint32(WhiteDCI)))
		w, err := ReadU32(r, whiteCoder)
		if err != nil {
			return ce, err
		}
		ce.White = WhitePoint(w)
		if ce.White == WhiteCustom {
			ce.WhiteCustom, err = readCustomXY(r)
			if err != nil {
				return ce, err
			}
		}

		if ce.Space != ColorSpaceGray {
			primCoder := SelectCoder(Val(uint32(PrimariesSRGB)), Val(uint32(PrimariesCustom)), Val(uint32(PrimariesBT2100)), Val(uint32(PrimariesP3)))
			p, err := ReadU32(r, primCoder)
			if err != nil {
				return ce, err
			}
			ce.Prim = Primaries(p)
			if ce.Prim == PrimariesCustom {
				for i := range ce.PrimCustom {
					ce.PrimCustom[i], err = readCustomXY(r)
					if err != nil {
						return ce, err
					}
				}
			}
		}
	}

	if !wantICC {
		useGamma, err := ReadBool(r)
		if err != nil {
			return ce, err
		}
		if useGamma {
			g, err := r.Read(24)
			if err != nil {
				return ce, err
			}
			ce.TF = TransferFunction{Kind: TFGamma, Gamma: float64(g) / 10000000.0}
		} else {
			v, err := ReadU32(r, tfEnumCoder)
			if err != nil {
				return ce, err
			}
			ce.TF = TransferFunction{Kind: TransferFunctionKind(v)}
		}

		intentCoder := SelectCoder(Val(uint32(IntentPerceptual)), Val(uint32(IntentRelative)), Val(uint32(IntentSaturation)), Val(uint32(IntentAbsolute)))
		iv, err := ReadU32(r, intentCoder)
		if err != nil {
			return ce, err
		}
		ce.Intent = RenderingIntent(iv)
	}

	return ce, nil
}
