// Package permutation decodes Lehmer-coded permutations (spec.md §4.10),
// used both by the TOC's optional section-order permutation and by
// VarDCT's per-(transform type, channel) coefficient-order permutations.
package permutation

import (
	"math/bits"

	"github.com/pkg/errors"
)

// ErrInvalidPermutationSize is returned when end > size-skip.
var ErrInvalidPermutationSize = errors.New("permutation: end exceeds size-skip")

// ErrInvalidPermutationLehmerCode is returned when a decoded Lehmer
// digit is out of range for its position.
var ErrInvalidPermutationLehmerCode = errors.New("permutation: lehmer digit out of range")

// SymbolReader reads a single context-coded symbol. The entropy
// package's histogram readers satisfy this interface; it is declared
// here, narrowly, so this package has no dependency on entropy coding
// details.
type SymbolReader interface {
	ReadSymbol(context int) (uint32, error)
}

// contextFor mirrors get_context(size) = min(ceil_log2(size+1), 7).
// ceil_log2(n) for n=size+1 equals bits.Len(uint(size)) (the bit width
// of size, since ceil_log2(n) = bits.Len(n-1) for n >= 1).
func contextFor(size int) int {
	ceilLog2 := bits.Len(uint(size))
	if ceilLog2 > 7 {
		return 7
	}
	return ceilLog2
}

// nextPow2 returns the smallest power of two >= n (1 for n<=1).
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << uint(bits.Len(uint(n-1)))
}

// fenwick is an implicit order-statistic tree over the multiset
// {0, ..., n-1}: Select(k) finds the k-th remaining (0-indexed) element
// and removes it, in O(log n).
type fenwick struct {
	tree []int32
	n    int
}

func newFenwick(n int) *fenwick {
	f := &fenwick{tree: make([]int32, n+1), n: n}
	for i := 1; i <= n; i++ {
		f.add(i, 1)
	}
	return f
}

func (f *fenwick) add(i int, delta int32) {
	for ; i <= f.n; i += i & (-i) {
		f.tree[i] += delta
	}
}

// selectKth returns the 1-indexed position of the (k+1)-th remaining
// element (0-indexed k) and removes it.
func (f *fenwick) selectKth(k int) int {
	pos := 0
	remaining := int32(k + 1)
	// Standard Fenwick binary lifting descent.
	logN := bits.Len(uint(f.n))
	for pw := 1 << uint(logN); pw > 0; pw >>= 1 {
		next := pos + pw
		if next <= f.n && f.tree[next] < remaining {
			pos = next
			remaining -= f.tree[next]
		}
	}
	result := pos + 1
	f.add(result, -1)
	return result
}

// Decode reads and constructs a permutation of size elements, leaving
// positions [0, skip) as the identity and decoding the remainder via
// Lehmer code against the context-coded reader r.
func Decode(r SymbolReader, size, skip int) ([]int, error) {
	endSym, err := r.ReadSymbol(contextFor(size))
	if err != nil {
		return nil, err
	}
	end := int(endSym)
	if end > size-skip {
		return nil, ErrInvalidPermutationSize
	}
	lehmer := make([]int, end)
	prev := 0
	for i := 0; i < end; i++ {
		idx := skip + i
		l, err := r.ReadSymbol(contextFor(prev))
		if err != nil {
			return nil, err
		}
		if int(l) >= size-idx {
			return nil, ErrInvalidPermutationLehmerCode
		}
		lehmer[i] = int(l)
		prev = int(l)
	}
	return decodeLehmerToPermutation(size, skip, lehmer)
}

// decodeLehmerToPermutation turns a skip-relative Lehmer code into the
// full permutation, using a Fenwick tree for O(n log n) order-statistic
// selection over the candidate values [skip, size).
func decodeLehmerToPermutation(size, skip int, lehmer []int) ([]int, error) {
	perm := make([]int, size)
	for i := 0; i < skip; i++ {
		perm[i] = i
	}
	m := size - skip
	f := newFenwick(nextPow2(m))
	candidateAt := func(rank0 int) int { return skip + rank0 }

	for i, l := range lehmer {
		if l >= size-(skip+i) {
			return nil, ErrInvalidPermutationLehmerCode
		}
		rank := f.selectKth(l)
		perm[skip+i] = candidateAt(rank - 1)
	}

	// Remaining candidates (never selected) fill the tail in ascending
	// order, identically to how decodeLehmerToPermutationNaive derives
	// them by elimination.
	chosen := make(map[int]bool, len(lehmer))
	for i := range lehmer {
		chosen[perm[skip+i]] = true
	}
	tailPos := skip + len(lehmer)
	for v := skip; v < size; v++ {
		if !chosen[v] {
			perm[tailPos] = v
			tailPos++
		}
	}
	return perm, nil
}

// DecodeLehmerCodeNaive reproduces decodeLehmerToPermutation using a
// plain slice scan instead of a Fenwick tree; kept only to give tests a
// second, independently-written implementation to compare against.
func DecodeLehmerCodeNaive(size, skip int, lehmer []int) ([]int, error) {
	perm := make([]int, size)
	for i := 0; i < skip; i++ {
		perm[i] = i
	}
	remaining := make([]int, 0, size-skip)
	for v := skip; v < size; v++ {
		remaining = append(remaining, v)
	}
	for i, l := range lehmer {
		if l < 0 || l >= len(remaining) {
			return nil, ErrInvalidPermutationLehmerCode
		}
		perm[skip+i] = remaining[l]
		remaining = append(remaining[:l], remaining[l+1:]...)
	}
	copy(perm[skip+len(lehmer):], remaining)
	return perm, nil
}
