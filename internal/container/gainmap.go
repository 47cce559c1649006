package container

import (
	"encoding/binary"

	"github.com/gojxl/jxl/internal/bitio"
	"github.com/gojxl/jxl/internal/headers"
)

// GainMapBundle is the parsed contents of a jhgm box: ISO 21496-1
// metadata plus an optional alternate color encoding/ICC profile and
// the gain-map image itself (a nested codestream or container).
//
// Grounded on the teacher's box-payload-as-struct convention (mirrors
// BoxHeader); the field layout follows spec.md §6's jhgm table.
type GainMapBundle struct {
	Version       uint8
	Metadata      []byte
	ColorEncoding *headers.ColorEncoding // nil iff color_encoding_size == 0
	AltICC        []byte
	GainMap       []byte // inner codestream or container, to end of box
}

// ParseGainMap decodes a jhgm box payload (the bytes following the box
// header) into a GainMapBundle. It fails with ErrInvalidBox if the
// buffer is truncated or an embedded size field claims more bytes than
// remain.
func ParseGainMap(data []byte) (GainMapBundle, error) {
	var b GainMapBundle
	off := 0

	if off+1 > len(data) {
		return b, ErrInvalidBox
	}
	b.Version = data[off]
	off++
	if b.Version != 0 {
		return b, ErrInvalidBox
	}

	if off+2 > len(data) {
		return b, ErrInvalidBox
	}
	metaSize := int(binary.BigEndian.Uint16(data[off : off+2]))
	off += 2
	if off+metaSize > len(data) {
		return b, ErrInvalidBox
	}
	b.Metadata = append([]byte(nil), data[off:off+metaSize]...)
	off += metaSize

	if off+1 > len(data) {
		return b, ErrInvalidBox
	}
	ceSize := int(data[off])
	off++
	if off+ceSize > len(data) {
		return b, ErrInvalidBox
	}
	if ceSize > 0 {
		r := bitio.NewReader(data[off : off+ceSize])
		ce, err := headers.ReadColorEncoding(r)
		if err != nil {
			return b, ErrInvalidBox
		}
		b.ColorEncoding = &ce
	}
	off += ceSize

	if off+4 > len(data) {
		return b, ErrInvalidBox
	}
	iccSize := int(binary.BigEndian.Uint32(data[off : off+4]))
	off += 4
	if iccSize < 0 || off+iccSize > len(data) {
		return b, ErrInvalidBox
	}
	b.AltICC = append([]byte(nil), data[off:off+iccSize]...)
	off += iccSize

	b.GainMap = append([]byte(nil), data[off:]...)
	return b, nil
}

// WriteGainMap serializes b to the jhgm byte layout ParseGainMap
// reads, round-tripping a present ColorEncoding through the same
// bit-packing coder used for the codestream's own color metadata
// (unlike the all-default/size-0 placeholder some JPEG XL
// implementations fall back to -- see DESIGN.md Open Question
// decisions).
func WriteGainMap(b GainMapBundle) []byte {
	out := make([]byte, 0, 8+len(b.Metadata)+len(b.AltICC)+len(b.GainMap))
	out = append(out, b.Version)

	var metaSize [2]byte
	binary.BigEndian.PutUint16(metaSize[:], uint16(len(b.Metadata)))
	out = append(out, metaSize[:]...)
	out = append(out, b.Metadata...)

	var ceBytes []byte
	if b.ColorEncoding != nil {
		w := bitio.NewWriter()
		headers.WriteColorEncoding(w, *b.ColorEncoding)
		ceBytes = w.Bytes()
	}
	out = append(out, byte(len(ceBytes)))
	out = append(out, ceBytes...)

	var iccSize [4]byte
	binary.BigEndian.PutUint32(iccSize[:], uint32(len(b.AltICC)))
	out = append(out, iccSize[:]...)
	out = append(out, b.AltICC...)

	out = append(out, b.GainMap...)
	return out
}
