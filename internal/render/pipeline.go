package render

import "github.com/pkg/errors"

// ErrTypeMismatch is returned when a stage's declared input type does
// not match the type the previous stage left a channel in — I4.
var ErrTypeMismatch = errors.New("render: stage input type does not match channel's current type")

// ErrShiftAfterExtend is returned when a BORDER or SHIFT stage is
// pushed after an Extend stage has already been added to the pipeline
// — I5.
var ErrShiftAfterExtend = errors.New("render: shift/border stage after Extend is not allowed")

// ErrChannelNotConsumed is returned at Build time when one of the
// pipeline's initial channels is not listed by any Save stage; being
// read by other stages does not count.
var ErrChannelNotConsumed = errors.New("render: channel produced but never saved or consumed")

// RunContext carries everything a Stage.Run call needs beyond its own
// declared channel list: the live plane set, frame/canvas geometry,
// and the auxiliary inputs (reference store, noise LUT, output
// buffer) individual stages reach into.
type RunContext struct {
	Planes map[int]*Plane

	CanvasWidth, CanvasHeight int
	OriginX, OriginY          int

	// ReferenceSource supplies already-decoded reference-frame samples
	// for the Extend stage, keyed by the same channel index as Planes.
	ReferenceSource func(channel int) *Plane

	// ChannelBitDepth holds each Modular channel's own bit depth for
	// ConvertModularToF32 (never the image's global bit depth).
	ChannelBitDepth map[int]int

	// IntensityTarget scales XybToLinearSrgb's output (255 / target).
	IntensityTarget float64

	// NoiseLUT and NoiseSeed parameterize AddNoise/ConvolveNoise.
	NoiseLUT  []float64
	NoiseSeed int64

	// SigmaMap gives EPF0/1/2 a per-block sigma lookup at LF
	// resolution; BlockDim is that block's pixel size. A nil map
	// falls back to DefaultEPFSigma for every block.
	SigmaMap []float64
	BlockDim int

	// SplineContribution and PatchContribution are precomputed,
	// already-rendered per-channel contribution grids the Splines and
	// Patches stages add to their target channel; decoding spline
	// control points and patch reference lookups into these grids is
	// outside this package's scope (see DESIGN.md).
	SplineContribution map[int]*Plane
	PatchContribution  map[int]*Plane

	Output      *OutputBuffer
	Orientation Orientation
	Premultiply bool
	AlphaChannel int // -1 if none
}

// Stage is one step of a render pipeline. Grounded on spec.md's
// shared four-kind stage interface (InPlace/InOut/Extend/Save);
// Go has no direct analogue to the original's compile-time
// <Tin,Tout,BORDER,SHIFT> template parameters, so every stage
// declares its own contract via the getter methods below, and
// Pipeline.Build validates those declarations against I4/I5 the
// template system would otherwise enforce statically.
type Stage interface {
	Name() string
	Kind() StageKind
	Channels() []int
	InType() SampleType
	OutType() SampleType
	BorderX() int
	BorderY() int
	ShiftX() int
	ShiftY() int
	Run(ctx *RunContext) error
}

// baseStage implements every Stage getter from fixed fields; concrete
// stages embed it and supply only Run.
type baseStage struct {
	name             string
	kind             StageKind
	channels         []int
	inType, outType  SampleType
	borderX, borderY int
	shiftX, shiftY   int
}

func (b *baseStage) Name() string      { return b.name }
func (b *baseStage) Kind() StageKind   { return b.kind }
func (b *baseStage) Channels() []int   { return b.channels }
func (b *baseStage) InType() SampleType  { return b.inType }
func (b *baseStage) OutType() SampleType { return b.outType }
func (b *baseStage) BorderX() int      { return b.borderX }
func (b *baseStage) BorderY() int      { return b.borderY }
func (b *baseStage) ShiftX() int       { return b.shiftX }
func (b *baseStage) ShiftY() int       { return b.shiftY }

// Pipeline is an ordered, validated stage list plus the derived
// per-channel type metadata spec.md's RenderPipeline invariant talks
// about.
type Pipeline struct {
	stages          []Stage
	channelTypes    map[int]SampleType
	initialChannels []int
	built           bool
}

// NewPipeline starts a pipeline whose channels begin at the given
// types (typically TypeModularInt or TypeXYBSample, the two possible
// outputs of internal/frame's per-group decode). Channel indices are
// stable for the pipeline's whole life: a multi-channel stage like
// YcbcrToRgb converts channels 0..2 in place rather than renaming
// them, matching how this decoder's channel arrays are laid out
// upstream in internal/frame.
func NewPipeline(initial map[int]SampleType) *Pipeline {
	types := make(map[int]SampleType, len(initial))
	ids := make([]int, 0, len(initial))
	for k, v := range initial {
		types[k] = v
		ids = append(ids, k)
	}
	return &Pipeline{channelTypes: types, initialChannels: ids}
}

// Push appends a stage. Validation happens in Build, matching
// spec.md's "constructed by pushing stages ... validated on build."
func (p *Pipeline) Push(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// Build validates I4 (type chaining), I5 (no shift/border after
// Extend), and that every initial channel is listed by some Save
// stage; a channel only read by other stages is rejected.
func (p *Pipeline) Build() error {
	extended := false
	saved := map[int]bool{}

	for _, s := range p.stages {
		if extended && (s.ShiftX() != 0 || s.ShiftY() != 0 || s.BorderX() != 0 || s.BorderY() != 0) {
			return errors.Wrapf(ErrShiftAfterExtend, "stage %q", s.Name())
		}
		for _, c := range s.Channels() {
			cur, ok := p.channelTypes[c]
			if !ok {
				cur = TypeUnknown
			}
			if s.InType() != TypeUnknown && cur != TypeUnknown && cur != s.InType() {
				return errors.Wrapf(ErrTypeMismatch, "stage %q channel %d: have %v want %v", s.Name(), c, cur, s.InType())
			}
			p.channelTypes[c] = s.OutType()
		}
		if s.Kind() == KindExtend {
			extended = true
		}
		if s.Kind() == KindSave {
			for _, c := range s.Channels() {
				saved[c] = true
			}
		}
	}

	for _, c := range p.initialChannels {
		if !saved[c] {
			return errors.Wrapf(ErrChannelNotConsumed, "channel %d", c)
		}
	}

	p.built = true
	return nil
}

// ChannelType returns channel c's type after the last stage that
// wrote it, the value I4 requires to equal channel_info[c].ty.
func (p *Pipeline) ChannelType(c int) SampleType {
	return p.channelTypes[c]
}
