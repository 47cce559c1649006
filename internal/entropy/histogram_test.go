package entropy

import (
	"testing"

	"github.com/gojxl/jxl/internal/bitio"
)

func TestReadHistogramsSingleContextPrefixCode(t *testing.T) {
	w := bitio.NewWriter()
	w.WriteBits(0, 1) // lz77 disabled
	// numContexts == 1, so decodeContextMap reads nothing.
	w.WriteBits(1, 1) // use_prefix_code = true
	// One histogram (since context map is always [0] for 1 context):
	// hybrid-uint config: split_exponent bounded by logAlphaSize=15,
	// ceilLog2(16)=4 bits.
	w.WriteBits(4, 4) // split_exponent = 4 (!= 15, so msb/lsb follow)
	w.WriteBits(2, ceilLog2(4+1)) // msb_in_token = 2, ceilLog2(5)=3 bits
	w.WriteBits(0, ceilLog2(4-2+1)) // lsb_in_token = 0, ceilLog2(3)=2 bits
	// Prefix code description: 1 symbol (degenerate single-symbol code).
	w.WriteBits(1, 8) // n = 1
	w.WriteBits(5, 8) // symbol = 5
	w.WriteBits(1, 4) // length = 1 (with only one symbol, BuildPrefixTable
	// treats any positive length as a zero-bit degenerate code)

	br := bitio.NewReader(w.Bytes())
	r, err := ReadHistograms(br, 1)
	if err != nil {
		t.Fatalf("ReadHistograms: %v", err)
	}
	tok, err := r.ReadRawToken(0)
	if err != nil {
		t.Fatalf("ReadRawToken: %v", err)
	}
	if tok != 5 {
		t.Fatalf("ReadRawToken = %d, want 5", tok)
	}
}

func TestReadHistogramsRejectsLZ77(t *testing.T) {
	w := bitio.NewWriter()
	w.WriteBits(1, 1) // lz77 enabled
	br := bitio.NewReader(w.Bytes())
	if _, err := ReadHistograms(br, 1); err != ErrLZ77Unsupported {
		t.Fatalf("ReadHistograms with lz77 enabled: %v, want ErrLZ77Unsupported", err)
	}
}

func TestCeilLog2(t *testing.T) {
	cases := []struct{ n, want int }{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {16, 4}, {17, 5},
	}
	for _, c := range cases {
		if got := ceilLog2(c.n); got != c.want {
			t.Fatalf("ceilLog2(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
