package render

// extendStage implements Extend<T> / ExtendToImageDimensions: marks
// the frame's origin within the canvas and fills pixels outside the
// decoded frame region from the reference frame selected by blending
// info. Grounded on internal/refstore.Crop's zero-fill-outside-bounds
// shape, generalized from "fill with zero" to "fill from a reference
// plane, or zero if none is supplied" — the behavior spec.md assigns
// to a frame with no prior reference (first frame, or an explicit
// zero-fill blend).
type extendStage struct {
	baseStage
}

// NewExtend grows channel to the full canvas size, reading
// out-of-frame pixels from ctx.ReferenceSource(channel) when set.
func NewExtend(channel int, sampleType SampleType) Stage {
	return &extendStage{baseStage{
		name: "Extend", kind: KindExtend,
		channels: []int{channel}, inType: sampleType, outType: sampleType,
	}}
}

func (s *extendStage) Run(ctx *RunContext) error {
	c := s.channels[0]
	in := ctx.Planes[c]
	if in == nil {
		return nil
	}
	out := NewPlane(ctx.CanvasWidth, ctx.CanvasHeight)
	var ref *Plane
	if ctx.ReferenceSource != nil {
		ref = ctx.ReferenceSource(c)
	}
	for y := 0; y < ctx.CanvasHeight; y++ {
		fy := y - ctx.OriginY
		for x := 0; x < ctx.CanvasWidth; x++ {
			fx := x - ctx.OriginX
			if fx >= 0 && fx < in.Width && fy >= 0 && fy < in.Height {
				out.set(x, y, in.at(fx, fy))
				continue
			}
			if ref != nil && x < ref.Width && y < ref.Height {
				out.set(x, y, ref.at(x, y))
			}
		}
	}
	ctx.Planes[c] = out
	return nil
}

// convertModularStage implements ConvertModularToF32: scales integer
// modular samples by 1/((1<<bits)-1) using each channel's own bit
// depth, never the image's global bit depth, per spec.md.
type convertModularStage struct {
	baseStage
}

// NewConvertModularToF32 rescales channel's raw modular integer
// samples (already stored as float64 in the Plane, one integer value
// per sample) into the [0, 1]-normalized range ToLinear/FromLinear
// and the color-conversion stages expect.
func NewConvertModularToF32(channel int) Stage {
	return &convertModularStage{baseStage{
		name: "ConvertModularToF32", kind: KindInPlace,
		channels: []int{channel}, inType: TypeModularInt, outType: TypeDisplayRGB,
	}}
}

func (s *convertModularStage) Run(ctx *RunContext) error {
	c := s.channels[0]
	p := ctx.Planes[c]
	if p == nil {
		return nil
	}
	bits := 8
	if ctx.ChannelBitDepth != nil {
		if b, ok := ctx.ChannelBitDepth[c]; ok && b > 0 {
			bits = b
		}
	}
	maxVal := float64((uint64(1) << uint(bits)) - 1)
	if maxVal == 0 {
		maxVal = 1
	}
	for i, v := range p.Data {
		p.Data[i] = v / maxVal
	}
	return nil
}
