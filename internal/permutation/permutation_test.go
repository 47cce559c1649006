package permutation

import (
	"reflect"
	"testing"
)

// stubReader replays a fixed sequence of symbols regardless of context,
// matching the worked example in spec.md §8.
type stubReader struct {
	symbols []uint32
	i       int
}

func (s *stubReader) ReadSymbol(context int) (uint32, error) {
	v := s.symbols[s.i]
	s.i++
	return v, nil
}

func TestPermutationDecodeWorkedExample(t *testing.T) {
	// size=16, skip=4; end=8 read first, then the Lehmer code
	// [1, 1, 2, 3, 3, 6, 0, 1].
	r := &stubReader{symbols: []uint32{8, 1, 1, 2, 3, 3, 6, 0, 1}}
	got, err := Decode(r, 16, 4)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []int{0, 1, 2, 3, 5, 6, 8, 10, 11, 15, 4, 9, 7, 12, 13, 14}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLehmerFenwickMatchesNaive(t *testing.T) {
	cases := []struct {
		size, skip int
		lehmer     []int
	}{
		{16, 4, []int{1, 1, 2, 3, 3, 6, 0, 1}},
		{5, 0, []int{2, 0, 2, 0, 0}},
		{1, 0, nil},
		{8, 8, nil},
		{10, 3, []int{3, 2, 1, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		got, err := decodeLehmerToPermutation(c.size, c.skip, c.lehmer)
		if err != nil {
			t.Fatalf("fenwick decode: %v", err)
		}
		want, err := DecodeLehmerCodeNaive(c.size, c.skip, c.lehmer)
		if err != nil {
			t.Fatalf("naive decode: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("size=%d skip=%d lehmer=%v: fenwick %v != naive %v", c.size, c.skip, c.lehmer, got, want)
		}
		// A permutation must be a bijection on [0, size).
		seen := make([]bool, c.size)
		for _, v := range got {
			if v < 0 || v >= c.size || seen[v] {
				t.Fatalf("not a permutation: %v", got)
			}
			seen[v] = true
		}
	}
}

func TestPermutationInvalidSize(t *testing.T) {
	r := &stubReader{symbols: []uint32{100}}
	if _, err := Decode(r, 10, 5); err != ErrInvalidPermutationSize {
		t.Fatalf("got %v, want ErrInvalidPermutationSize", err)
	}
}
