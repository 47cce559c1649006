package headers

import (
	"testing"

	"github.com/gojxl/jxl/internal/bitio"
)

func TestReadU64TierZero(t *testing.T) {
	// tier 0: selector 00 -> 0
	r := bitio.NewReader([]byte{0x00})
	v, err := ReadU64(r)
	if err != nil || v != 0 {
		t.Fatalf("got %d, %v, want 0", v, err)
	}
}

func TestReadU32Select(t *testing.T) {
	// LSB-first bit layout: bits[0:2]=selector(1) picks the Bits(4)
	// alternative, bits[2:6]=1010 (value 10).
	r := bitio.NewReader([]byte{0x29})
	c := SelectCoder(Val(0), Bits(4), BitsOffset(5, 16), BitsOffset(10, 48))
	v, err := ReadU32(r, c)
	if err != nil {
		t.Fatal(err)
	}
	if v != 10 {
		t.Fatalf("got %d, want 10", v)
	}
}

// TestReadExtensionsMultipleBitsSumsSizesBeforeSkipping builds an
// Extensions block with two mask bits set. The wire layout is
// mask, size_0, size_1, then one combined skip of size_0+size_1
// payload bits (spec.md §4.4 / original_source's read_unconditional:
// every set bit's size field is read first, and only their sum is
// skipped afterward) -- not size_0, payload_0, size_1, payload_1
// interleaved. A reader that skips per-extension immediately after
// each size field would desynchronize and misread the size_1 field
// (and everything after it) as soon as 2+ bits are set.
func TestReadExtensionsMultipleBitsSumsSizesBeforeSkipping(t *testing.T) {
	w := bitio.NewWriter()
	WriteU64(w, 0b101) // mask: bits 0 and 2 set
	WriteU64(w, 3)     // size for bit 0
	WriteU64(w, 5)     // size for bit 2
	// combined payload: 3+5 = 8 bits, arbitrary content
	w.WriteBits(0b10110011, 8)
	WriteU64(w, 9) // marker immediately following the extensions block

	r := bitio.NewReader(w.Bytes())
	d, err := ReadExtensions(r)
	if err != nil {
		t.Fatalf("ReadExtensions: %v", err)
	}
	if d.Mask != 0b101 {
		t.Fatalf("Mask = %#b, want %#b", d.Mask, 0b101)
	}
	if d.Sizes[0] != 3 || d.Sizes[2] != 5 {
		t.Fatalf("Sizes = %v, want {0:3, 2:5}", d.Sizes)
	}

	marker, err := ReadU64(r)
	if err != nil {
		t.Fatalf("ReadU64(marker): %v", err)
	}
	if marker != 9 {
		t.Fatalf("marker = %d, want 9 (reader misaligned after ReadExtensions)", marker)
	}
}

func TestReadStringEmpty(t *testing.T) {
	// Build a byte stream manually: len selector=0(Val 0) encodes empty string.
	r := bitio.NewReader([]byte{0x00})
	s, err := ReadString(r)
	if err != nil {
		t.Fatal(err)
	}
	if s != "" {
		t.Fatalf("got %q, want empty", s)
	}
}
