// Package render implements the post-decode render pipeline: an
// ordered list of per-channel processing stages that takes a frame's
// decoded sample planes (Modular integer samples or VarDCT XYB
// triples) through chroma upsampling, color-space conversion, noise
// and spline/patch synthesis, edge-preserving filtering, and the
// final canvas-extend and orientation-aware output write.
//
// Grounded on internal/dsp's stage catalog
// (upsample.go/yuv.go/filter.go/alpha_proc.go) and sharpyuv's transfer
// function tables (gamma.go), generalized from WebP's fixed
// YUV420-to-RGB pipeline (one hardcoded stage order, one color space)
// to an arbitrary, validated stage DAG over any number of channels.
package render

// SampleType tags the semantic meaning of a channel's samples at a
// given point in the pipeline, the basis for the type-chaining check
// a Pipeline performs at Build time.
type SampleType int

const (
	TypeUnknown SampleType = iota
	TypeModularInt
	TypeXYBSample
	TypeYCbCr
	TypeLinearLight
	TypeDisplayRGB
)

// StageKind classifies a Stage the way spec.md's shared pipeline
// interface distinguishes them, determining which validation rules
// apply and how a Pipeline schedules the stage.
type StageKind int

const (
	KindInPlace StageKind = iota
	KindInOut
	KindExtend
	KindSave
)

// Orientation enumerates the eight EXIF-style image orientations the
// Save stage applies when writing pixels to the caller's output
// buffer.
type Orientation int

const (
	OrientIdentity Orientation = iota
	OrientFlipH
	OrientFlipV
	OrientRotate180
	OrientTranspose
	OrientRotate90
	OrientAntiTranspose
	OrientRotate270
)

// Plane is one channel's sample grid, row-major, float64 throughout
// the pipeline regardless of the eventual output sample format —
// matching spec.md's "Simple pipeline buffers full-image planes as
// f64 internally."
type Plane struct {
	Width, Height int
	Data          []float64
}

// NewPlane allocates a zeroed Plane of the given size.
func NewPlane(width, height int) *Plane {
	return &Plane{Width: width, Height: height, Data: make([]float64, width*height)}
}

// at reads a sample with mirrored-border extension outside [0,width)
// x [0,height), matching spec.md's border policy
// (`v < 0 -> -v-1`, `v >= size -> 2*size-v-1`).
func (p *Plane) at(x, y int) float64 {
	x = mirror(x, p.Width)
	y = mirror(y, p.Height)
	return p.Data[y*p.Width+x]
}

func mirror(v, size int) int {
	if size <= 1 {
		return 0
	}
	for v < 0 || v >= size {
		if v < 0 {
			v = -v - 1
		}
		if v >= size {
			v = 2*size - v - 1
		}
	}
	return v
}

func (p *Plane) set(x, y int, v float64) {
	p.Data[y*p.Width+x] = v
}
