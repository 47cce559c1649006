package render

import "github.com/pkg/errors"

// ErrNoOutputBuffer is returned by the Save stage when ctx.Output is
// nil.
var ErrNoOutputBuffer = errors.New("render: save stage has no output buffer")

// OutputBuffer is the caller-owned destination the Save stage writes
// oriented pixels into, the generalization of a plain interleaved
// RGBA byte buffer to an arbitrary channel count and float64 samples
// (final pixel-format packing is left to the caller, mirroring how
// this decoder's container/codestream layers hand off float32 planes
// rather than packed bytes throughout).
type OutputBuffer struct {
	Width, Height int
	Channels      [][]float64 // one plane per output channel, row-major
}

// NewOutputBuffer allocates a buffer of the given size and channel
// count.
func NewOutputBuffer(width, height, numChannels int) *OutputBuffer {
	chans := make([][]float64, numChannels)
	for i := range chans {
		chans[i] = make([]float64, width*height)
	}
	return &OutputBuffer{Width: width, Height: height, Channels: chans}
}

func (o *OutputBuffer) set(channel, x, y int, v float64) {
	if channel < 0 || channel >= len(o.Channels) {
		return
	}
	o.Channels[channel][y*o.Width+x] = v
}

// OrientedDims returns the output buffer dimensions a given
// orientation produces from a width x height source frame: the four
// transposing orientations swap width and height.
func OrientedDims(orientation Orientation, width, height int) (outW, outH int) {
	switch orientation {
	case OrientTranspose, OrientRotate90, OrientAntiTranspose, OrientRotate270:
		return height, width
	default:
		return width, height
	}
}

// orientPixel maps source coordinate (x, y) within a width x height
// frame to its destination coordinate under orientation, the closed
// form spec.md's Save stage describes for each of the eight EXIF
// orientations.
func orientPixel(orientation Orientation, x, y, width, height int) (xd, yd int) {
	switch orientation {
	case OrientIdentity:
		return x, y
	case OrientFlipH:
		return width - 1 - x, y
	case OrientFlipV:
		return x, height - 1 - y
	case OrientRotate180:
		return width - 1 - x, height - 1 - y
	case OrientTranspose:
		return y, x
	case OrientRotate90:
		return height - 1 - y, x
	case OrientAntiTranspose:
		return height - 1 - y, width - 1 - x
	case OrientRotate270:
		return y, width - 1 - x
	default:
		return x, y
	}
}

// saveStage implements Save: writes pixels to ctx.Output applying the
// image orientation at write time, premultiplying color channels by
// alpha first if ctx.Premultiply is set and an alpha channel is
// present among the stage's channels. Grounded on
// internal/dsp/alpha_proc.go's ApplyAlphaMultiply row-scan idiom for
// the premultiply step, generalized from a fixed 4-byte-per-pixel
// RGBA/ARGB layout to an arbitrary ordered channel list.
type saveStage struct {
	baseStage
}

// NewSave writes channels (in the given order) to the pipeline's
// output buffer.
func NewSave(channels []int, sampleType SampleType) Stage {
	return &saveStage{baseStage{
		name: "Save", kind: KindSave,
		channels: channels, inType: sampleType, outType: sampleType,
	}}
}

func (s *saveStage) Run(ctx *RunContext) error {
	if ctx.Output == nil {
		return ErrNoOutputBuffer
	}
	planes := make([]*Plane, len(s.channels))
	width, height := 0, 0
	alphaIdx := -1
	for i, c := range s.channels {
		planes[i] = ctx.Planes[c]
		if planes[i] != nil && width == 0 {
			width, height = planes[i].Width, planes[i].Height
		}
		if c == ctx.AlphaChannel {
			alphaIdx = i
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			xd, yd := orientPixel(ctx.Orientation, x, y, width, height)
			alpha := 1.0
			if ctx.Premultiply && alphaIdx >= 0 && planes[alphaIdx] != nil {
				alpha = planes[alphaIdx].at(x, y)
			}
			for i, p := range planes {
				if p == nil {
					continue
				}
				v := p.at(x, y)
				if ctx.Premultiply && alphaIdx >= 0 && i != alphaIdx {
					v *= alpha
				}
				ctx.Output.set(i, xd, yd, v)
			}
		}
	}
	return nil
}
