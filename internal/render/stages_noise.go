package render

// addNoiseStage implements AddNoise: per-pixel additive noise
// modulated by a per-frame lookup table and seeded deterministically
// so a given frame always reproduces the same noise field. Grounded
// on internal/dsp/alpha_proc.go's fixed-point-per-pixel row-processing
// idiom (a simple per-sample arithmetic pass over a full plane),
// generalized from alpha premultiply's single multiply to an
// LCG-driven additive term.
type addNoiseStage struct {
	baseStage
}

// NewAddNoise adds noise to channel, modulated by ctx.NoiseLUT and
// seeded from ctx.NoiseSeed plus the channel index (so multiple
// channels don't share an identical noise field).
func NewAddNoise(channel int, sampleType SampleType) Stage {
	return &addNoiseStage{baseStage{
		name: "AddNoise", kind: KindInPlace,
		channels: []int{channel}, inType: sampleType, outType: sampleType,
	}}
}

func (s *addNoiseStage) Run(ctx *RunContext) error {
	p := ctx.Planes[s.channels[0]]
	if p == nil || len(ctx.NoiseLUT) == 0 {
		return nil
	}
	rng := newNoiseRNG(ctx.NoiseSeed ^ int64(s.channels[0])*0x9E3779B97F4A7C15)
	n := len(ctx.NoiseLUT)
	for i, v := range p.Data {
		idx := int(v * float64(n-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		strength := ctx.NoiseLUT[idx]
		p.Data[i] = v + strength*rng.nextSigned()
	}
	return nil
}

// convolveNoiseStage implements ConvolveNoise: a small separable blur
// applied to a channel already carrying raw additive noise, giving
// the noise field spatial correlation instead of per-pixel white
// noise.
type convolveNoiseStage struct {
	baseStage
}

func NewConvolveNoise(channel int, sampleType SampleType) Stage {
	return &convolveNoiseStage{baseStage{
		name: "ConvolveNoise", kind: KindInOut,
		channels: []int{channel}, inType: sampleType, outType: sampleType,
		borderX: 1, borderY: 1,
	}}
}

func (s *convolveNoiseStage) Run(ctx *RunContext) error {
	c := s.channels[0]
	in := ctx.Planes[c]
	if in == nil {
		return nil
	}
	out := NewPlane(in.Width, in.Height)
	for y := 0; y < in.Height; y++ {
		for x := 0; x < in.Width; x++ {
			sum := 4*in.at(x, y) +
				2*(in.at(x-1, y)+in.at(x+1, y)+in.at(x, y-1)+in.at(x, y+1)) +
				(in.at(x-1, y-1) + in.at(x+1, y-1) + in.at(x-1, y+1) + in.at(x+1, y+1))
			out.set(x, y, sum/16)
		}
	}
	ctx.Planes[c] = out
	return nil
}

// noiseRNG is a small deterministic splitmix64-derived generator: the
// same seed always reproduces the same noise field, required for a
// decoder to be able to reconstruct a frame's noise synthesis exactly
// from its bitstream-carried seed.
type noiseRNG struct {
	state uint64
}

func newNoiseRNG(seed int64) *noiseRNG {
	return &noiseRNG{state: uint64(seed)}
}

func (r *noiseRNG) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// nextSigned returns a value uniform in [-1, 1).
func (r *noiseRNG) nextSigned() float64 {
	v := r.next() >> 11 // 53 significant bits
	return float64(v)/float64(1<<53)*2 - 1
}
