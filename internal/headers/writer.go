package headers

import (
	"math"

	"github.com/gojxl/jxl/internal/bitio"
)

// float32ToHalf converts a finite float32 to IEEE-754 binary16 bits,
// the inverse of halfToFloat32.
func float32ToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xFF) - 127 + 15
	frac := bits & 0x7FFFFF
	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1F:
		return sign | 0x7C00
	default:
		return sign | uint16(exp)<<10 | uint16(frac>>13)
	}
}

// writeF32 packs f as a half-precision float.
func writeF32(w *bitio.Writer, f float32) {
	w.WriteBits(uint64(float32ToHalf(f)), 16)
}

// WriteBool appends a single-bit boolean.
func WriteBool(w *bitio.Writer, v bool) {
	if v {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
	}
}

// writeU32Selector writes the raw bits for one U32Selector alternative
// (the selector tag itself, if any, is written by the caller).
func writeU32Selector(w *bitio.Writer, s U32Selector, v uint32) {
	switch s.Kind {
	case U32Bits:
		w.WriteBits(uint64(v), s.Bits)
	case U32BitsOffset:
		w.WriteBits(uint64(v-s.Offset), s.Bits)
	case U32Val:
		// literal, nothing to write
	}
}

// WriteU32Direct encodes v with coder c. For Select coders it writes
// the index of the alternative chooseU32Alternative picks for v,
// followed by that alternative's raw bits.
func WriteU32Direct(w *bitio.Writer, c U32Coder, v uint32) {
	if c.Direct != nil {
		writeU32Selector(w, *c.Direct, v)
		return
	}
	idx := chooseU32Alternative(c, v)
	w.WriteBits(uint64(idx), 2)
	writeU32Selector(w, c.Selected[idx], v)
}

// chooseU32Alternative finds the lowest-indexed alternative of a
// Select coder that can exactly represent v.
func chooseU32Alternative(c U32Coder, v uint32) int {
	for i, s := range c.Selected {
		switch s.Kind {
		case U32Val:
			if s.Val == v {
				return i
			}
		case U32BitsOffset:
			if v >= s.Offset && v-s.Offset < (1<<uint(s.Bits)) {
				return i
			}
		case U32Bits:
			if v < (1 << uint(s.Bits)) {
				return i
			}
		}
	}
	return len(c.Selected) - 1
}

// WriteU64 encodes v using the three-tier escape coder of spec.md §4.4.
func WriteU64(w *bitio.Writer, v uint64) {
	switch {
	case v == 0:
		w.WriteBits(0, 2)
	case v <= 16:
		w.WriteBits(1, 2)
		w.WriteBits(v-1, 4)
	case v <= 16+255:
		w.WriteBits(2, 2)
		w.WriteBits(v-17, 8)
	default:
		w.WriteBits(3, 2)
		w.WriteBits(v&0xFFF, 12)
		v >>= 12
		shift := uint(12)
		for v != 0 && shift < 60 {
			w.WriteBits(1, 1)
			w.WriteBits(v&0xFF, 8)
			v >>= 8
			shift += 8
		}
		if v != 0 {
			w.WriteBits(1, 1)
			w.WriteBits(v&0xF, 4)
		} else {
			w.WriteBits(0, 1)
		}
	}
}

// writeString serializes a length-prefixed ASCII string.
func writeString(w *bitio.Writer, s string) {
	WriteU32Direct(w, stringLenCoder, uint32(len(s)))
	for i := 0; i < len(s); i++ {
		w.WriteBits(uint64(s[i]), 8)
	}
}

func writeCustomXY(w *bitio.Writer, xy CustomXY) {
	c := SelectCoder(BitsOffset(19, 0), BitsOffset(19, 524288), BitsOffset(20, 1048576), BitsOffset(21, 2097152))
	xRaw := uint32((xy.X + 0.5) * 1000000.0)
	yRaw := uint32((xy.Y + 0.5) * 1000000.0)
	WriteU32Direct(w, c, xRaw)
	WriteU32Direct(w, c, yRaw)
}

// WriteColorEncoding serializes a ColorEncoding with the same bit
// layout ReadColorEncoding expects, always taking the non-all-default
// path so that the round trip is exact regardless of whether ce
// happens to equal the defaults.
func WriteColorEncoding(w *bitio.Writer, ce ColorEncoding) {
	WriteBool(w, false) // all_default = false, always write full form
	WriteBool(w, ce.WantICC)

	spaceCoder := SelectCoder(Val(uint32(ColorSpaceRGB)), Val(uint32(ColorSpaceGray)), Val(uint32(ColorSpaceXYB)), Val(uint32(ColorSpaceUnknown)))
	WriteU32Direct(w, spaceCoder, uint32(ce.Space))

	if !ce.WantICC && ce.Space != ColorSpaceXYB {
		whiteCoder := SelectCoder(Val(uint32(WhiteD65)), Val(uint32(WhiteCustom)), Val(uint32(WhiteE)), Val(uint32(WhiteDCI)))
		WriteU32Direct(w, whiteCoder, uint32(ce.White))
		if ce.White == WhiteCustom {
			writeCustomXY(w, ce.WhiteCustom)
		}
		if ce.Space != ColorSpaceGray {
			primCoder := SelectCoder(Val(uint32(PrimariesSRGB)), Val(uint32(PrimariesCustom)), Val(uint32(PrimariesBT2100)), Val(uint32(PrimariesP3)))
			WriteU32Direct(w, primCoder, uint32(ce.Prim))
			if ce.Prim == PrimariesCustom {
				for _, xy := range ce.PrimCustom {
					writeCustomXY(w, xy)
				}
			}
		}
	}

	if !ce.WantICC {
		if ce.TF.Kind == TFGamma {
			WriteBool(w, true)
			w.WriteBits(uint64(ce.TF.Gamma*10000000.0), 24)
		} else {
			WriteBool(w, false)
			WriteU32Direct(w, tfEnumCoder, uint32(ce.TF.Kind))
		}
		intentCoder := SelectCoder(Val(uint32(IntentPerceptual)), Val(uint32(IntentRelative)), Val(uint32(IntentSaturation)), Val(uint32(IntentAbsolute)))
		WriteU32Direct(w, intentCoder, uint32(ce.Intent))
	}
}
