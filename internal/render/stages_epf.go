package render

import "math"

// DefaultEPFSigma is used for every block when ctx.SigmaMap is nil.
const DefaultEPFSigma = 1.0

// epfStage implements EPF0/1/2: an edge-preserving filter that runs a
// fixed number of iterations with decreasing kernel radius, weighting
// each neighbor by a SAD-derived factor against a per-block sigma.
// Grounded on internal/dsp/filter.go's needsFilter/hev SAD-threshold
// idiom (`4*|p0-q0| + |p1-q1| <= thresh`) and its "full buffer +
// base offset" approach to avoiding negative indices at image edges;
// generalized from VP8's binary filter/don't-filter edge decision to
// a continuous SAD-weighted neighbor average.
type epfStage struct {
	baseStage
	iterations int
}

func newEPF(name string, channel int, iterations, radius int, sampleType SampleType) Stage {
	return &epfStage{iterations: iterations, baseStage: baseStage{
		name: name, kind: KindInOut,
		channels: []int{channel}, inType: sampleType, outType: sampleType,
		borderX: radius, borderY: radius,
	}}
}

// NewEPF0, NewEPF1, NewEPF2 run 3, 2, and 1 filter iterations with
// decreasing per-iteration kernel radius (starting at 3, 2, and 1
// respectively), matching spec.md's "3/2/1 iterations with decreasing
// kernel radius."
func NewEPF0(channel int, sampleType SampleType) Stage { return newEPF("EPF0", channel, 3, 3, sampleType) }
func NewEPF1(channel int, sampleType SampleType) Stage { return newEPF("EPF1", channel, 2, 2, sampleType) }
func NewEPF2(channel int, sampleType SampleType) Stage { return newEPF("EPF2", channel, 1, 1, sampleType) }

func (s *epfStage) Run(ctx *RunContext) error {
	c := s.channels[0]
	cur := ctx.Planes[c]
	if cur == nil {
		return nil
	}
	for it := 0; it < s.iterations; it++ {
		radius := s.iterations - it
		cur = s.epfPass(cur, radius, ctx)
	}
	ctx.Planes[c] = cur
	return nil
}

func (s *epfStage) epfPass(in *Plane, radius int, ctx *RunContext) *Plane {
	out := NewPlane(in.Width, in.Height)
	blockDim := ctx.BlockDim
	if blockDim <= 0 {
		blockDim = 8
	}
	for y := 0; y < in.Height; y++ {
		for x := 0; x < in.Width; x++ {
			center := in.at(x, y)
			sigma := blockSigma(ctx, x, y, blockDim)
			var sum, weightSum float64
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					v := in.at(x+dx, y+dy)
					sad := math.Abs(v - center)
					w := math.Exp(-sad / sigma)
					sum += w * v
					weightSum += w
				}
			}
			if weightSum == 0 {
				out.set(x, y, center)
				continue
			}
			out.set(x, y, sum/weightSum)
		}
	}
	return out
}

func blockSigma(ctx *RunContext, x, y, blockDim int) float64 {
	if len(ctx.SigmaMap) == 0 {
		return DefaultEPFSigma
	}
	blocksPerRow := (ctx.CanvasWidth + blockDim - 1) / blockDim
	if blocksPerRow == 0 {
		blocksPerRow = 1
	}
	bx := (ctx.OriginX + x) / blockDim
	by := (ctx.OriginY + y) / blockDim
	idx := by*blocksPerRow + bx
	if idx < 0 || idx >= len(ctx.SigmaMap) {
		return DefaultEPFSigma
	}
	sigma := ctx.SigmaMap[idx]
	if sigma <= 0 {
		return DefaultEPFSigma
	}
	return sigma
}
