package render

// splatStage implements Splines and Patches: both splat a set of
// precomputed per-channel contribution grids onto a target channel.
// Decoding spline control points into arc-length-parameterized color
// contributions, and resolving patch reference-frame lookups into
// per-pixel contributions, both happen upstream of this package (see
// DESIGN.md); this stage only wires the shared "add a sparse
// precomputed grid onto the canvas" step spec.md describes for both
// features.
type splatStage struct {
	baseStage
	patches bool
}

// NewSplines adds ctx.SplineContribution[channel] onto channel.
func NewSplines(channel int, sampleType SampleType) Stage {
	return &splatStage{baseStage: baseStage{
		name: "Splines", kind: KindInPlace,
		channels: []int{channel}, inType: sampleType, outType: sampleType,
	}}
}

// NewPatches adds ctx.PatchContribution[channel] onto channel.
func NewPatches(channel int, sampleType SampleType) Stage {
	return &splatStage{patches: true, baseStage: baseStage{
		name: "Patches", kind: KindInPlace,
		channels: []int{channel}, inType: sampleType, outType: sampleType,
	}}
}

func (s *splatStage) Run(ctx *RunContext) error {
	c := s.channels[0]
	p := ctx.Planes[c]
	if p == nil {
		return nil
	}
	src := ctx.SplineContribution
	if s.patches {
		src = ctx.PatchContribution
	}
	contrib, ok := src[c]
	if !ok || contrib == nil {
		return nil
	}
	for i := range p.Data {
		if i < len(contrib.Data) {
			p.Data[i] += contrib.Data[i]
		}
	}
	return nil
}
