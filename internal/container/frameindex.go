package container

import "encoding/binary"

// FrameIndexEntry is one seek-table entry of a jxli box: the absolute
// codestream byte offset of an indexed keyframe (accumulated from the
// box's delta-coded OFF values), the tick duration to the next
// indexed frame (or end of stream), and the displayed-frame count
// spanned.
type FrameIndexEntry struct {
	CodestreamOffset uint64
	DurationTicks    uint64
	FrameCount       uint64
}

// FrameIndex is the parsed contents of a jxli box.
type FrameIndex struct {
	TNum    uint32
	TDen    uint32
	Entries []FrameIndexEntry
}

// TickDurationSecs returns the duration of one tick in seconds.
func (fi FrameIndex) TickDurationSecs() float64 {
	return float64(fi.TNum) / float64(fi.TDen)
}

// EntryForOffset returns the index entry for the keyframe at or before
// the given codestream byte offset, or ok=false if offset precedes
// every indexed frame. Entries are assumed sorted by CodestreamOffset,
// which ParseFrameIndex guarantees since offsets only accumulate.
func (fi FrameIndex) EntryForOffset(offset uint64) (FrameIndexEntry, bool) {
	lo, hi := 0, len(fi.Entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if fi.Entries[mid].CodestreamOffset <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return FrameIndexEntry{}, false
	}
	return fi.Entries[lo-1], true
}

// ParseFrameIndex decodes a jxli box payload: varint NF, u32-be TNUM,
// u32-be TDEN (TDEN != 0), then NF entries each (varint OFF_delta,
// varint duration_ticks, varint frame_count), offsets accumulating.
// Fails with ErrInvalidBox on truncation, a zero TDEN, or offset
// overflow.
func ParseFrameIndex(data []byte) (FrameIndex, error) {
	c := &varintCursor{data: data}

	nf64, err := c.readVarint()
	if err != nil {
		return FrameIndex{}, err
	}
	if nf64 > 0xFFFFFFFF {
		return FrameIndex{}, ErrInvalidBox
	}
	nf := int(nf64)

	tnum, err := c.readU32BE()
	if err != nil {
		return FrameIndex{}, err
	}
	tden, err := c.readU32BE()
	if err != nil {
		return FrameIndex{}, err
	}
	if tden == 0 {
		return FrameIndex{}, ErrInvalidBox
	}

	entries := make([]FrameIndexEntry, 0, nf)
	var absolute uint64
	for i := 0; i < nf; i++ {
		offDelta, err := c.readVarint()
		if err != nil {
			return FrameIndex{}, err
		}
		duration, err := c.readVarint()
		if err != nil {
			return FrameIndex{}, err
		}
		frameCount, err := c.readVarint()
		if err != nil {
			return FrameIndex{}, err
		}
		next := absolute + offDelta
		if next < absolute {
			return FrameIndex{}, ErrInvalidBox // overflow
		}
		absolute = next
		entries = append(entries, FrameIndexEntry{
			CodestreamOffset: absolute,
			DurationTicks:    duration,
			FrameCount:       frameCount,
		})
	}

	return FrameIndex{TNum: tnum, TDen: tden, Entries: entries}, nil
}

// WriteFrameIndex serializes fi to the jxli byte layout ParseFrameIndex
// reads, re-deriving each entry's delta-coded offset from the
// accumulated CodestreamOffset values.
func WriteFrameIndex(fi FrameIndex) []byte {
	out := appendVarint(nil, uint64(len(fi.Entries)))
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], fi.TNum)
	binary.BigEndian.PutUint32(hdr[4:8], fi.TDen)
	out = append(out, hdr[:]...)

	var prev uint64
	for _, e := range fi.Entries {
		out = appendVarint(out, e.CodestreamOffset-prev)
		out = appendVarint(out, e.DurationTicks)
		out = appendVarint(out, e.FrameCount)
		prev = e.CodestreamOffset
	}
	return out
}

// varintCursor reads fixed-width and LEB128-varint fields from a byte
// slice, mirroring the teacher's RIFF chunk cursor style generalized
// from fixed 4-byte fields to LEB128.
type varintCursor struct {
	data []byte
	pos  int
}

func (c *varintCursor) readU32BE() (uint32, error) {
	if c.pos+4 > len(c.data) {
		return 0, ErrInvalidBox
	}
	v := binary.BigEndian.Uint32(c.data[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

// readVarint decodes LEB128: 7 bits per byte, high bit means "more",
// up to 63 bits total (spec.md §6).
func (c *varintCursor) readVarint() (uint64, error) {
	var value uint64
	var shift uint
	for {
		if shift > 56 {
			return 0, ErrInvalidBox
		}
		if c.pos >= len(c.data) {
			return 0, ErrInvalidBox
		}
		b := c.data[c.pos]
		c.pos++
		value |= uint64(b&0x7f) << shift
		if b <= 0x7f {
			break
		}
		shift += 7
	}
	return value, nil
}

func appendVarint(out []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}
