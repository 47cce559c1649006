package vardct

// XYB is the LMS-derived opponent color space VarDCT frames are
// always encoded in, analogous in role to the teacher's YUV working
// space (sharpyuv/csp.go) but with a fixed, non-configurable basis
// (JPEG XL does not negotiate an XYB "matrix type" the way WebP
// negotiates RGB<->YUV matrices).
type XYB struct {
	X, Y, B float32
}

// xybBias matches the encoder-side bias subtracted from the
// intermediate LMS values before taking cube roots; decode adds it
// back, the mirror image of sharpyuv's ConversionMatrix additive term.
const xybBias = 0.00379307325527544933

// ToLinearSRGB converts one XYB pixel to linear-light sRGB primaries,
// reversing JPEG XL's forward transform (opsin absorbance -> cube root
// -> X/Y/B channel mixing). Grounded on sharpyuv/csp.go's fixed
// 3x3-plus-offset ConversionMatrix idiom, generalized from a linear
// fixed-point matrix (YUV) to XYB's cube/cube-root nonlinearity.
func (p XYB) ToLinearSRGB() (r, g, b float32) {
	l := p.Y + p.X
	m := p.Y - p.X
	s := p.B

	lp := cubeMinusBias(l)
	mp := cubeMinusBias(m)
	sp := cubeMinusBias(s)

	r = 11.031566901960783*lp - 9.866943921568629*mp - 0.16462299647058826*sp
	g = -3.254147380392157*lp + 4.418770392156863*mp - 0.16462299647058826*sp
	b = -3.6588512862745097*lp + 2.7129230470588235*mp + 1.9459282392156863*sp
	return r, g, b
}

func cubeMinusBias(v float32) float32 {
	v = v + xybBias
	return v * v * v
}

// DecodeXYBImage converts an entire XYB-coded (X, Y, B) channel triple
// to linear sRGB, one pixel at a time via ToLinearSRGB, returning three
// newly allocated slices; the inputs are not modified.
func DecodeXYBImage(x, y, b []float32) (r, g, bl []float32) {
	n := len(y)
	r = make([]float32, n)
	g = make([]float32, n)
	bl = make([]float32, n)
	for i := 0; i < n; i++ {
		r[i], g[i], bl[i] = XYB{X: x[i], Y: y[i], B: b[i]}.ToLinearSRGB()
	}
	return r, g, bl
}
