// Package container implements the streaming ISOBMFF-like box demuxer
// (C2) that turns a JPEG XL file -- bare codestream or boxed container --
// into a logical codestream, plus byte-format parsers for the auxiliary
// jhgm (gain map) and jxli (frame index) boxes.
//
// Grounded on internal/container/parser.go and riff.go from the teacher:
// the same FourCC-typed, tri-state incremental box iteration, generalized
// from WebP's flat RIFF chunk list to ISOBMFF's (possibly 64-bit-sized,
// possibly fragmented) box framing.
package container

import "encoding/binary"

// FourCC builds a big-endian ISOBMFF box type from four ASCII bytes.
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

// Box type identifiers relevant to the core decoder (spec.md §6).
var (
	TypeJXLC = FourCC('j', 'x', 'l', 'c')
	TypeJXLP = FourCC('j', 'x', 'l', 'p')
	TypeJBRD = FourCC('j', 'b', 'r', 'd')
	TypeJHGM = FourCC('j', 'h', 'g', 'm')
	TypeEXIF = FourCC('E', 'x', 'i', 'f')
	TypeXML  = FourCC('x', 'm', 'l', ' ')
	TypeBROB = FourCC('b', 'r', 'o', 'b')
	TypeJUMB = FourCC('j', 'u', 'm', 'b')
	TypeJXLI = FourCC('j', 'x', 'l', 'i')
	TypeJXL_ = FourCC('J', 'X', 'L', ' ') // "JXL " signature box type field
	TypeFTYP = FourCC('f', 't', 'y', 'p')
)

// BoxHeaderMinSize is the minimum box header: 4-byte size + 4-byte type.
const BoxHeaderMinSize = 8

// ExtendedSizeFieldSize is the additional 8 bytes present when the
// 32-bit size field reads exactly 1 (size==1 => 64-bit extended size
// follows the type).
const ExtendedSizeFieldSize = 8

// ContainerSignature is the 12-byte ISOBMFF "JXL " signature box.
var ContainerSignature = []byte{0x00, 0x00, 0x00, 0x0C, 'J', 'X', 'L', ' ', 0x0D, 0x0A, 0x87, 0x0A}

// CodestreamSignature is the bare-codestream two-byte signature.
var CodestreamSignature = []byte{0xFF, 0x0A}

func readBE32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func readBE64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
