package headers

import "github.com/gojxl/jxl/internal/bitio"

// FrameEncoding selects which of the two coding engines a frame uses.
type FrameEncoding int

const (
	EncodingVarDCT FrameEncoding = iota
	EncodingModular
)

// FrameType distinguishes regular output frames from auxiliary ones
// that only contribute to later frames (reference, LF, or DC frames).
type FrameType int

const (
	FrameRegular FrameType = iota
	FrameLF
	FrameReferenceOnly
	FrameSkipProgressive
)

// BlendMode enumerates how a frame composites onto its reference.
type BlendMode int

const (
	BlendReplace BlendMode = iota
	BlendAdd
	BlendBlend
	BlendMulAdd
	BlendMul
)

// BlendingInfo describes how one channel (color, or one extra channel)
// composites against a reference frame.
type BlendingInfo struct {
	Mode        BlendMode
	Source      uint32 // reference-frame slot index
	AlphaSource uint32 // which extra channel supplies alpha for Blend/MulAdd
	Clamp       bool
}

// PassesDescriptor lists the progressive refinement passes and the
// shift bracket each belongs to (spec.md §4.6/§4.7).
type PassesDescriptor struct {
	NumPasses  uint32
	MinShift   []uint32
	MaxShift   []uint32
}

// FrameHeader is the decoded per-frame header of spec.md §3. Several
// fields (NumGroups, NumLfGroups, IsLast) are filled in by
// Postprocess rather than read directly from the bitstream; group
// rectangles are not stored on the header.
type FrameHeader struct {
	Encoding FrameEncoding
	Type     FrameType

	HaveNoise    bool
	HavePatches  bool
	HaveSplines  bool
	HaveCrop     bool
	IsLastFrame  bool
	SaveAsReference bool
	UseLFFrame   bool

	GroupDimShift uint32 // group side = 128 << GroupDimShift

	Passes PassesDescriptor

	ChannelShiftX []uint32
	ChannelShiftY []uint32

	Width, Height uint32
	OriginX, OriginY int32

	Blending     BlendingInfo
	ExtraBlending []BlendingInfo

	Duration uint32 // animation ticks this frame is displayed
	Name     string

	// Postprocess-derived fields.
	NumGroups   uint32
	NumLfGroups uint32
	IsLast      bool
}

var (
	frameTypeCoder     = DirectCoder(Bits(2))
	groupDimShiftCoder = DirectCoder(Bits(2))
	blendModeCoder     = DirectCoder(Bits(3))
)

func readBlendingInfo(r *bitio.Reader) (BlendingInfo, error) {
	var b BlendingInfo
	mode, err := ReadU32(r, blendModeCoder)
	if err != nil {
		return b, err
	}
	b.Mode = BlendMode(mode)
	if b.Mode != BlendReplace {
		src, err := r.Read(2)
		if err != nil {
			return b, err
		}
		b.Source = uint32(src)
		if b.Mode == BlendBlend || b.Mode == BlendMulAdd {
			as, err := r.Read(4)
			if err != nil {
				return b, err
			}
			b.AlphaSource = uint32(as)
			b.Clamp, err = ReadBool(r)
			if err != nil {
				return b, err
			}
		}
	}
	return b, nil
}

func writeBlendingInfo(w *bitio.Writer, b BlendingInfo) {
	WriteU32Direct(w, blendModeCoder, uint32(b.Mode))
	if b.Mode != BlendReplace {
		w.WriteBits(uint64(b.Source), 2)
		if b.Mode == BlendBlend || b.Mode == BlendMulAdd {
			w.WriteBits(uint64(b.AlphaSource), 4)
			WriteBool(w, b.Clamp)
		}
	}
}

// ReadFrameHeader decodes a FrameHeader given the number of extra
// channels declared by the ImageMetadata (needed to size
// ExtraBlending).
func ReadFrameHeader(r *bitio.Reader, numExtraChannels int) (FrameHeader, error) {
	var h FrameHeader
	var err error

	encVal, err := ReadU32(r, DirectCoder(Bits(1)))
	if err != nil {
		return h, err
	}
	h.Encoding = FrameEncoding(encVal)

	typeVal, err := ReadU32(r, frameTypeCoder)
	if err != nil {
		return h, err
	}
	h.Type = FrameType(typeVal)

	for _, flag := range []*bool{&h.HaveNoise, &h.HavePatches, &h.HaveSplines, &h.HaveCrop} {
		*flag, err = ReadBool(r)
		if err != nil {
			return h, err
		}
	}

	h.UseLFFrame, err = ReadBool(r)
	if err != nil {
		return h, err
	}

	gd, err := ReadU32(r, groupDimShiftCoder)
	if err != nil {
		return h, err
	}
	h.GroupDimShift = gd

	numPasses, err := ReadU32(r, SelectCoder(Val(1), Val(2), Val(3), BitsOffset(3, 4)))
	if err != nil {
		return h, err
	}
	h.Passes.NumPasses = numPasses
	h.Passes.MinShift = make([]uint32, numPasses)
	h.Passes.MaxShift = make([]uint32, numPasses)
	shiftCoder := SelectCoder(Val(0), Val(1), Val(2), BitsOffset(3, 3))
	for p := uint32(0); p < numPasses; p++ {
		h.Passes.MinShift[p], err = ReadU32(r, shiftCoder)
		if err != nil {
			return h, err
		}
		h.Passes.MaxShift[p], err = ReadU32(r, shiftCoder)
		if err != nil {
			return h, err
		}
	}

	size, err := ReadSize(r)
	if err != nil {
		return h, err
	}
	h.Width, h.Height = size.Width, size.Height

	if h.HaveCrop {
		ox, err := r.Read(16)
		if err != nil {
			return h, err
		}
		oy, err := r.Read(16)
		if err != nil {
			return h, err
		}
		h.OriginX = int32(int16(ox))
		h.OriginY = int32(int16(oy))
	}

	h.Blending, err = readBlendingInfo(r)
	if err != nil {
		return h, err
	}
	h.ExtraBlending = make([]BlendingInfo, numExtraChannels)
	for i := range h.ExtraBlending {
		h.ExtraBlending[i], err = readBlendingInfo(r)
		if err != nil {
			return h, err
		}
	}

	h.IsLastFrame, err = ReadBool(r)
	if err != nil {
		return h, err
	}
	h.SaveAsReference, err = ReadBool(r)
	if err != nil {
		return h, err
	}

	h.Duration, err = ReadU32(r, SelectCoder(Val(0), Bits(8), Bits(16), Bits(32)))
	if err != nil {
		return h, err
	}

	h.Name, err = ReadString(r)
	if err != nil {
		return h, err
	}

	return h, nil
}

// Postprocess fills the derived fields that depend on the frame's
// dimensions and group geometry: NumGroups, NumLfGroups and IsLast.
// It does not compute or store per-group rectangles.
func (h *FrameHeader) Postprocess() {
	groupDim := uint32(128) << h.GroupDimShift
	lfGroupDim := groupDim * 8

	groupsX := (h.Width + groupDim - 1) / groupDim
	groupsY := (h.Height + groupDim - 1) / groupDim
	h.NumGroups = groupsX * groupsY
	if h.NumGroups == 0 {
		h.NumGroups = 1
	}

	lfGroupsX := (h.Width + lfGroupDim - 1) / lfGroupDim
	lfGroupsY := (h.Height + lfGroupDim - 1) / lfGroupDim
	h.NumLfGroups = lfGroupsX * lfGroupsY
	if h.NumLfGroups == 0 {
		h.NumLfGroups = 1
	}

	h.IsLast = h.IsLastFrame
}

// WriteFrameHeader serializes h with the same layout ReadFrameHeader
// expects.
func WriteFrameHeader(w *bitio.Writer, h FrameHeader) {
	WriteU32Direct(w, DirectCoder(Bits(1)), uint32(h.Encoding))
	WriteU32Direct(w, frameTypeCoder, uint32(h.Type))
	for _, flag := range []bool{h.HaveNoise, h.HavePatches, h.HaveSplines, h.HaveCrop} {
		WriteBool(w, flag)
	}
	WriteBool(w, h.UseLFFrame)
	WriteU32Direct(w, groupDimShiftCoder, h.GroupDimShift)

	WriteU32Direct(w, SelectCoder(Val(1), Val(2), Val(3), BitsOffset(3, 4)), h.Passes.NumPasses)
	shiftCoder := SelectCoder(Val(0), Val(1), Val(2), BitsOffset(3, 3))
	for p := uint32(0); p < h.Passes.NumPasses; p++ {
		WriteU32Direct(w, shiftCoder, h.Passes.MinShift[p])
		WriteU32Direct(w, shiftCoder, h.Passes.MaxShift[p])
	}

	writeSize(w, Size{Width: h.Width, Height: h.Height})

	if h.HaveCrop {
		w.WriteBits(uint64(uint16(int16(h.OriginX))), 16)
		w.WriteBits(uint64(uint16(int16(h.OriginY))), 16)
	}

	writeBlendingInfo(w, h.Blending)
	for _, b := range h.ExtraBlending {
		writeBlendingInfo(w, b)
	}

	WriteBool(w, h.IsLastFrame)
	WriteBool(w, h.SaveAsReference)

	WriteU32Direct(w, SelectCoder(Val(0), Bits(8), Bits(16), Bits(32)), h.Duration)
	writeString(w, h.Name)
}
