package jxl

import "math"

// packPixelFormat packs img's decoded samples into one byte buffer per
// PixelFormat.ColorType plus one per non-nil ExtraChannelFormats
// entry. This decoder has no extra-channel sample decode path (see
// DESIGN.md), so every extra-channel buffer is returned zero-filled at
// the caller's requested size and format.
func packPixelFormat(img *Image, format PixelFormat) ([][]byte, error) {
	w, h := img.Width, img.Height
	numColor := format.ColorType.NumColorChannels()
	if numColor == 0 {
		return nil, ErrUnsupportedColorType
	}
	order := channelOrder(format.ColorType)
	bps := format.ColorDataFormat.bytesPerSample()
	if bps == 0 {
		return nil, ErrUnsupportedDataFormat
	}

	stride := w * numColor * bps
	colorBuf := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		rowOff := y * stride
		for x := 0; x < w; x++ {
			i := y*w + x
			for ci, src := range order {
				v := sampleFor(img, src, i)
				writeSample(colorBuf[rowOff+(x*numColor+ci)*bps:], v, format.ColorDataFormat)
			}
		}
	}

	buffers := [][]byte{colorBuf}
	for _, ef := range format.ExtraChannelFormats {
		if ef == nil {
			continue
		}
		ebps := ef.bytesPerSample()
		if ebps == 0 {
			return nil, ErrUnsupportedDataFormat
		}
		buffers = append(buffers, make([]byte, w*ebps*h))
	}
	return buffers, nil
}

// channelOrder maps a ColorType to source sample indices: -1 selects
// the synthesized luma sample, 0/1/2 select R/G/B, and 3 selects the
// synthesized fully-opaque alpha sample (see sampleFor).
func channelOrder(ct ColorType) []int {
	switch ct {
	case ColorGrayscale:
		return []int{-1}
	case ColorGrayscaleAlpha:
		return []int{-1, 3}
	case ColorRGB:
		return []int{0, 1, 2}
	case ColorRGBA:
		return []int{0, 1, 2, 3}
	case ColorBGR:
		return []int{2, 1, 0}
	case ColorBGRA:
		return []int{2, 1, 0, 3}
	default:
		return nil
	}
}

// sampleFor reads sample src (-1=luma, 0=R, 1=G, 2=B, 3=alpha) at
// pixel i. Alpha is always synthesized as fully opaque: this decoder
// has no extra-channel (and so no alpha-channel) sample decode path
// (see DESIGN.md).
func sampleFor(img *Image, src, i int) float64 {
	switch src {
	case -1:
		return 0.2126*img.R[i] + 0.7152*img.G[i] + 0.0722*img.B[i]
	case 0:
		return img.R[i]
	case 1:
		return img.G[i]
	case 2:
		return img.B[i]
	case 3:
		return 1.0
	default:
		return 0
	}
}

func writeSample(dst []byte, v float64, df DataFormat) {
	switch df.Kind {
	case FormatU8:
		maxV := float64((uint32(1) << uint(df.bits())) - 1)
		dst[0] = byte(clamp01(v)*maxV + 0.5)
	case FormatU16:
		maxV := float64((uint32(1) << uint(df.bits())) - 1)
		putU16(dst, uint16(clamp01(v)*maxV+0.5), df.Endian)
	case FormatF16:
		putU16(dst, float32ToFloat16(float32(v)), df.Endian)
	case FormatF32:
		putU32(dst, math.Float32bits(float32(v)), df.Endian)
	}
}

func putU16(dst []byte, v uint16, e Endian) {
	if e == BigEndian {
		dst[0], dst[1] = byte(v>>8), byte(v)
	} else {
		dst[0], dst[1] = byte(v), byte(v>>8)
	}
}

func putU32(dst []byte, v uint32, e Endian) {
	if e == BigEndian {
		dst[0], dst[1], dst[2], dst[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
	} else {
		dst[0], dst[1], dst[2], dst[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	}
}

// float32ToFloat16 converts by bit manipulation, truncating the
// mantissa to 10 bits. There is no denormal/Inf/NaN special-casing:
// exponents too small for float16 flush to signed zero and exponents
// too large map to signed infinity. writeSample passes its input
// unclamped.
func float32ToFloat16(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & 0x8000)
	exp := int32((bits>>23)&0xFF) - 127 + 15
	mant := bits & 0x7FFFFF
	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1F:
		return sign | 0x7C00
	default:
		return sign | uint16(exp<<10) | uint16(mant>>13)
	}
}
