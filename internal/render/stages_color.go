package render

import "math"

// TransferFunc identifies the electro-optical transfer function
// ToLinear/FromLinear convert against, grounded on
// sharpyuv/gamma.go's TransferFunc enum and its piecewise
// gamma<->linear formulas, generalized from sRGB-only to the five
// curves spec.md names.
type TransferFunc int

const (
	TransferBT709 TransferFunc = iota
	TransferSRGB
	TransferPQ
	TransferHLG
	TransferGamma
)

// ycbcrToRgbStage implements YcbcrToRgb: full-range BT.601 as defined
// by JFIF clause 7. Grounded on internal/dsp/yuv.go's kRCr/kGCb/
// kGCr/kBCb fixed-point BT.601 multipliers, converted to the
// equivalent float64 coefficients since this pipeline works in f64
// planes throughout rather than the teacher's 8-bit fixed-point path.
type ycbcrToRgbStage struct {
	baseStage
}

// NewYcbcrToRgb converts channels [y, cb, cr] to [r, g, b] in place
// (same three channel indices, reused for the RGB result).
func NewYcbcrToRgb(y, cb, cr int) Stage {
	return &ycbcrToRgbStage{baseStage{
		name: "YcbcrToRgb", kind: KindInPlace,
		channels: []int{y, cb, cr}, inType: TypeYCbCr, outType: TypeDisplayRGB,
	}}
}

func (s *ycbcrToRgbStage) Run(ctx *RunContext) error {
	yp, cbp, crp := ctx.Planes[s.channels[0]], ctx.Planes[s.channels[1]], ctx.Planes[s.channels[2]]
	if yp == nil || cbp == nil || crp == nil {
		return nil
	}
	for i := range yp.Data {
		y, cb, cr := yp.Data[i], cbp.Data[i]-0.5, crp.Data[i]-0.5
		r := y + 1.402*cr
		g := y - 0.344136*cb - 0.714136*cr
		b := y + 1.772*cb
		yp.Data[i], cbp.Data[i], crp.Data[i] = r, g, b
	}
	return nil
}

// xybToLinearSrgbStage implements XybToLinearSrgb: cube-of-sum with
// per-channel bias, scaled by 255/intensity_target. The per-pixel
// conversion is xybPixelToLinearSRGB, a float64 copy of
// internal/vardct.XYB.ToLinearSRGB's math (grounded on sharpyuv/csp.go's
// fixed conversion-matrix idiom); the two are separate code.
type xybToLinearSrgbStage struct {
	baseStage
}

func NewXybToLinearSrgb(x, y, b int) Stage {
	return &xybToLinearSrgbStage{baseStage{
		name: "XybToLinearSrgb", kind: KindInPlace,
		channels: []int{x, y, b}, inType: TypeXYBSample, outType: TypeLinearLight,
	}}
}

func (s *xybToLinearSrgbStage) Run(ctx *RunContext) error {
	xp, yp, bp := ctx.Planes[s.channels[0]], ctx.Planes[s.channels[1]], ctx.Planes[s.channels[2]]
	if xp == nil || yp == nil || bp == nil {
		return nil
	}
	scale := 1.0
	if ctx.IntensityTarget > 0 {
		scale = 255.0 / ctx.IntensityTarget
	}
	for i := range yp.Data {
		r, g, bl := xybPixelToLinearSRGB(xp.Data[i], yp.Data[i], bp.Data[i])
		xp.Data[i], yp.Data[i], bp.Data[i] = r*scale, g*scale, bl*scale
	}
	return nil
}

// xybPixelToLinearSRGB mirrors internal/vardct.XYB.ToLinearSRGB at
// float64 precision (the vardct type is float32-based, sized for
// per-block coefficient math rather than whole-plane render passes).
func xybPixelToLinearSRGB(x, y, b float64) (r, g, bl float64) {
	const bias = 0.00379307325527544933
	l := y + x
	m := y - x
	s := b
	lp := cubeBias(l, bias)
	mp := cubeBias(m, bias)
	sp := cubeBias(s, bias)
	r = 11.031566901960783*lp - 9.866943921568629*mp - 0.16462299647058826*sp
	g = -3.254147380392157*lp + 4.418770392156863*mp - 0.16462299647058826*sp
	bl = -3.6588512862745097*lp + 2.7129230470588235*mp + 1.9459282392156863*sp
	return r, g, bl
}

func cubeBias(v, bias float64) float64 {
	v += bias
	return v * v * v
}

// tfToLinear and tfFromLinear implement ToLinear/FromLinear per
// curve, grounded on sharpyuv/gamma.go's piecewise linear-segment +
// power-law formula shape (there applied only to sRGB via a
// precomputed LUT); this pipeline evaluates the piecewise formulas
// directly in float64 since whole-plane passes don't need the
// teacher's fixed-point table optimization.
var tfToLinear = [...]func(v, intensityTarget float64, hlgLuminance [3]float64, gamma float64) float64{
	TransferBT709: bt709ToLinear,
	TransferSRGB:  srgbToLinear,
	TransferPQ:    pqToLinear,
	TransferHLG:   hlgToLinear,
	TransferGamma: gammaToLinear,
}

var tfFromLinear = [...]func(v, intensityTarget float64, hlgLuminance [3]float64, gamma float64) float64{
	TransferBT709: bt709FromLinear,
	TransferSRGB:  srgbFromLinear,
	TransferPQ:    pqFromLinear,
	TransferHLG:   hlgFromLinear,
	TransferGamma: gammaFromLinear,
}

func bt709ToLinear(v, _ float64, _ [3]float64, _ float64) float64 {
	if v < 0.081 {
		return v / 4.5
	}
	return math.Pow((v+0.099)/1.099, 1/0.45)
}

func bt709FromLinear(v, _ float64, _ [3]float64, _ float64) float64 {
	if v < 0.018 {
		return 4.5 * v
	}
	return 1.099*math.Pow(v, 0.45) - 0.099
}

func srgbToLinear(v, _ float64, _ [3]float64, _ float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func srgbFromLinear(v, _ float64, _ [3]float64, _ float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// pqToLinear and pqFromLinear implement SMPTE ST 2084, scaled so that
// 1.0 in linear space corresponds to intensityTarget nits (falling
// back to the curve's native 10000-nit reference when unset).
func pqToLinear(v, intensityTarget float64, _ [3]float64, _ float64) float64 {
	const m1, m2 = 0.1593017578125, 78.84375
	const c1, c2, c3 = 0.8359375, 18.8515625, 18.6875
	vp := math.Pow(v, 1/m2)
	num := vp - c1
	if num < 0 {
		num = 0
	}
	denom := c2 - c3*vp
	linear10k := math.Pow(num/denom, 1/m1)
	target := intensityTarget
	if target <= 0 {
		target = 10000
	}
	return linear10k * 10000 / target
}

func pqFromLinear(v, intensityTarget float64, _ [3]float64, _ float64) float64 {
	const m1, m2 = 0.1593017578125, 78.84375
	const c1, c2, c3 = 0.8359375, 18.8515625, 18.6875
	target := intensityTarget
	if target <= 0 {
		target = 10000
	}
	y := v * target / 10000
	if y < 0 {
		y = 0
	}
	ym1 := math.Pow(y, m1)
	return math.Pow((c1+c2*ym1)/(1+c3*ym1), m2)
}

// hlgToLinear and hlgFromLinear implement the Hybrid Log-Gamma OETF.
// hlgLuminance is not used: no OOTF scene-to-display gain is applied
// here or by transferStage, which always passes zero weights.
func hlgToLinear(v, intensityTarget float64, hlgLuminance [3]float64, _ float64) float64 {
	const a, b, c = 0.17883277, 0.28466892, 0.55991073
	var scene float64
	if v <= 0.5 {
		scene = v * v / 3
	} else {
		scene = (math.Exp((v-c)/a) + b) / 12
	}
	_ = hlgLuminance // no OOTF gain is applied
	if intensityTarget > 0 {
		return scene * intensityTarget / 1000
	}
	return scene
}

func hlgFromLinear(v, intensityTarget float64, _ [3]float64, _ float64) float64 {
	const a, b, c = 0.17883277, 0.28466892, 0.55991073
	scene := v
	if intensityTarget > 0 {
		scene = v * 1000 / intensityTarget
	}
	if scene <= 1.0/12 {
		return math.Sqrt(3 * scene)
	}
	return a*math.Log(12*scene-b) + c
}

func gammaToLinear(v, _ float64, _ [3]float64, gamma float64) float64 {
	if gamma <= 0 {
		gamma = 1
	}
	return math.Pow(v, gamma)
}

func gammaFromLinear(v, _ float64, _ [3]float64, gamma float64) float64 {
	if gamma <= 0 {
		gamma = 1
	}
	return math.Pow(v, 1/gamma)
}

// transferStage implements ToLinear / FromLinear for one channel.
type transferStage struct {
	baseStage
	tf      TransferFunc
	toLin   bool
	gamma   float64
}

func newTransferStage(name string, channel int, tf TransferFunc, gamma float64, toLin bool, inType, outType SampleType) Stage {
	return &transferStage{
		tf: tf, toLin: toLin, gamma: gamma,
		baseStage: baseStage{name: name, kind: KindInPlace, channels: []int{channel}, inType: inType, outType: outType},
	}
}

// NewToLinear converts channel from its encoded transfer curve to
// linear light.
func NewToLinear(channel int, tf TransferFunc, gamma float64) Stage {
	return newTransferStage("ToLinear", channel, tf, gamma, true, TypeDisplayRGB, TypeLinearLight)
}

// NewFromLinear converts channel from linear light to the target
// transfer curve.
func NewFromLinear(channel int, tf TransferFunc, gamma float64) Stage {
	return newTransferStage("FromLinear", channel, tf, gamma, false, TypeLinearLight, TypeDisplayRGB)
}

func (s *transferStage) Run(ctx *RunContext) error {
	p := ctx.Planes[s.channels[0]]
	if p == nil {
		return nil
	}
	var hlgLuma [3]float64
	fns := tfToLinear
	if !s.toLin {
		fns = tfFromLinear
	}
	fn := fns[s.tf]
	for i, v := range p.Data {
		p.Data[i] = fn(v, ctx.IntensityTarget, hlgLuma, s.gamma)
	}
	return nil
}
