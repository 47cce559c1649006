// Package refstore implements the reference-frame store: saved frame
// buffers a later frame can blend against, crop from, or composite
// onto the final canvas, plus the blend/crop compositing math itself.
//
// Grounded on animation/frame.go's DisposeMethod/BlendMethod-aware
// canvas model and animation.go's compositeFrame/alphaBlendNRGBA
// logic, generalized from WebP's fixed 8-bit NRGBA canvas to
// JPEG XL's floating-point, arbitrary-channel-count frame buffers and
// from two blend modes (None/Alpha) to five (Replace/Add/Blend/MulAdd/Mul).
package refstore

import "github.com/pkg/errors"

// ErrInvalidReferenceSlot is returned for a reference index outside
// the fixed slot count.
var ErrInvalidReferenceSlot = errors.New("refstore: invalid reference frame slot")

// NumSlots is the fixed number of reference-frame slots a JPEG XL
// codestream can address (frame_header.save_as_reference is a 2-bit
// field).
const NumSlots = 4

// Buffer is one saved reference frame: per-channel float32 planes at
// a given origin and size, the generalization of animation.Frame's
// *image.NRGBA canvas to an arbitrary channel count and floating-point
// sample range.
type Buffer struct {
	Width, Height int
	OriginX, OriginY int
	Channels      [][]float32 // one plane per channel, row-major, len == Width*Height
}

// Store holds the fixed NumSlots reference-frame slots plus the
// running output canvas frames are composited onto, mirroring
// AnimDecoder's single currFrame canvas generalized to JPEG XL's
// multiple addressable save slots.
type Store struct {
	slots  [NumSlots]*Buffer
	canvas *Buffer
}

// NewStore allocates a Store with a blank canvas of the given size and
// channel count.
func NewStore(width, height, numChannels int) *Store {
	channels := make([][]float32, numChannels)
	for i := range channels {
		channels[i] = make([]float32, width*height)
	}
	return &Store{canvas: &Buffer{Width: width, Height: height, Channels: channels}}
}

// Save stores buf into slot, overwriting any previous contents.
func (s *Store) Save(slot int, buf *Buffer) error {
	if slot < 0 || slot >= NumSlots {
		return ErrInvalidReferenceSlot
	}
	s.slots[slot] = buf
	return nil
}

// Reference returns the buffer saved in slot, or nil if nothing has
// been saved there yet.
func (s *Store) Reference(slot int) (*Buffer, error) {
	if slot < 0 || slot >= NumSlots {
		return nil, ErrInvalidReferenceSlot
	}
	return s.slots[slot], nil
}

// Canvas returns the running output canvas.
func (s *Store) Canvas() *Buffer {
	return s.canvas
}

// BlendMode mirrors headers.BlendMode's five compositing operations;
// duplicated here (rather than importing headers) to keep refstore
// decodable independent of the bitstream-header package, matching the
// teacher's own animation package not importing the VP8 mux layer.
type BlendMode int

const (
	BlendReplace BlendMode = iota
	BlendAdd
	BlendBlend
	BlendMulAdd
	BlendMul
)

// Composite blends src onto the canvas at (originX, originY) using
// mode, the generalization of animation.go's compositeFrame (which
// only ever does BlendNone-overwrite or BlendAlpha-blend) to JPEG XL's
// five blend modes and float32 samples instead of 8-bit NRGBA.
func (s *Store) Composite(src *Buffer, mode BlendMode, alphaChannel int) {
	dst := s.canvas
	for y := 0; y < src.Height; y++ {
		dy := y + src.OriginY
		if dy < 0 || dy >= dst.Height {
			continue
		}
		for x := 0; x < src.Width; x++ {
			dx := x + src.OriginX
			if dx < 0 || dx >= dst.Width {
				continue
			}
			si := y*src.Width + x
			di := dy*dst.Width + dx
			var srcAlpha float32 = 1
			if alphaChannel >= 0 && alphaChannel < len(src.Channels) {
				srcAlpha = src.Channels[alphaChannel][si]
			}
			for c := range dst.Channels {
				if c >= len(src.Channels) {
					continue
				}
				sv := src.Channels[c][si]
				dv := dst.Channels[c][di]
				dst.Channels[c][di] = blendSample(mode, sv, dv, srcAlpha)
			}
		}
	}
}

func blendSample(mode BlendMode, src, dst, srcAlpha float32) float32 {
	switch mode {
	case BlendReplace:
		return src
	case BlendAdd:
		return src + dst
	case BlendBlend:
		return src*srcAlpha + dst*(1-srcAlpha)
	case BlendMulAdd:
		return dst + src*srcAlpha
	case BlendMul:
		return src * dst
	default:
		return src
	}
}

// Crop extracts a width x height region starting at (x, y) from src,
// zero-filling any part that falls outside src's bounds — the
// generalization of animation.go's extractSubImage to float32 planes.
func Crop(src *Buffer, x, y, width, height int) *Buffer {
	out := &Buffer{Width: width, Height: height, Channels: make([][]float32, len(src.Channels))}
	for c := range out.Channels {
		plane := make([]float32, width*height)
		for oy := 0; oy < height; oy++ {
			sy := y + oy
			if sy < 0 || sy >= src.Height {
				continue
			}
			for ox := 0; ox < width; ox++ {
				sx := x + ox
				if sx < 0 || sx >= src.Width {
					continue
				}
				plane[oy*width+ox] = src.Channels[c][sy*src.Width+sx]
			}
		}
		out.Channels[c] = plane
	}
	return out
}
