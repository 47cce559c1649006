package entropy

import (
	"testing"

	"github.com/gojxl/jxl/internal/bitio"
)

func TestPrefixTableRoundTrip(t *testing.T) {
	lengths := []int{1, 2, 2}
	table, err := BuildPrefixTable(lengths)
	if err != nil {
		t.Fatalf("BuildPrefixTable: %v", err)
	}

	w := bitio.NewWriter()
	w.WriteBits(0, 1) // symbol 0
	w.WriteBits(1, 2) // symbol 1 (lsb-first code "01")
	w.WriteBits(3, 2) // symbol 2 (lsb-first code "11")

	r := bitio.NewReader(w.Bytes())
	want := []uint32{0, 1, 2}
	for i, w := range want {
		got, err := table.ReadSymbol(r)
		if err != nil {
			t.Fatalf("symbol %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("symbol %d: got %d, want %d", i, got, w)
		}
	}
}

func TestPrefixTableSingleSymbol(t *testing.T) {
	table, err := BuildPrefixTable([]int{0, 0, 1})
	if err != nil {
		t.Fatalf("BuildPrefixTable: %v", err)
	}
	r := bitio.NewReader(nil)
	got, err := table.ReadSymbol(r)
	if err != nil {
		t.Fatalf("ReadSymbol: %v", err)
	}
	if got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestPrefixTableInvalidLengths(t *testing.T) {
	if _, err := BuildPrefixTable([]int{1, 1, 1}); err != ErrInvalidPrefixCode {
		t.Fatalf("got %v, want ErrInvalidPrefixCode (over-subscribed code)", err)
	}
}

func TestBuildANSTableValidatesSum(t *testing.T) {
	if _, err := BuildANSTable([]uint32{100, 200}); err != ErrInvalidANSDistribution {
		t.Fatalf("got %v, want ErrInvalidANSDistribution", err)
	}
	freqs := make([]uint32, 2)
	freqs[0] = ansPrecision / 2
	freqs[1] = ansPrecision / 2
	if _, err := BuildANSTable(freqs); err != nil {
		t.Fatalf("valid distribution rejected: %v", err)
	}
}

func TestHybridUintExpandBelowSplit(t *testing.T) {
	r := bitio.NewReader(nil)
	got, err := Expand(r, DefaultHybridUintConfig, 5)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != 5 {
		t.Fatalf("got %d, want 5 (below split, passthrough)", got)
	}
}

func TestUnzigzagSigned(t *testing.T) {
	cases := map[uint32]int32{0: 0, 1: -1, 2: 1, 3: -2, 4: 2}
	for u, want := range cases {
		if got := UnzigzagSigned(u); got != want {
			t.Errorf("UnzigzagSigned(%d) = %d, want %d", u, got, want)
		}
	}
}
