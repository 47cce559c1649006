package entropy

import (
	"github.com/gojxl/jxl/internal/bitio"
	"github.com/pkg/errors"
)

// ErrInvalidPrefixCode is returned when a set of code lengths does not
// form a valid (complete, canonical) prefix code.
var ErrInvalidPrefixCode = errors.New("entropy: invalid prefix code lengths")

const maxPrefixCodeBits = 15

// prefixEntry is one slot of the flat lookup table: consuming Bits bits
// yields Symbol.
type prefixEntry struct {
	Bits   int
	Symbol uint32
}

// PrefixTable is a canonical-code lookup table built the way the
// teacher's BuildHuffmanTable builds its two-level WebP tables, but
// flattened to a single level since JPEX XL's per-cluster alphabets are
// bounded in practice: a table of 2^maxLen entries, each entry reached
// by the code's bits read LSB-first (matching bitio.Reader's bit
// order), replicated across the unused high bits the way a canonical
// Huffman decoder replicates short codes across a flat table.
type PrefixTable struct {
	entries []prefixEntry
	maxLen  int
}

// BuildPrefixTable constructs a canonical prefix code from per-symbol
// bit lengths (0 = symbol absent).
func BuildPrefixTable(codeLengths []int) (*PrefixTable, error) {
	maxLen := 0
	nonZero := 0
	for _, l := range codeLengths {
		if l > maxPrefixCodeBits {
			return nil, ErrInvalidPrefixCode
		}
		if l > 0 {
			nonZero++
		}
		if l > maxLen {
			maxLen = l
		}
	}
	if nonZero == 0 {
		return nil, ErrInvalidPrefixCode
	}
	if nonZero == 1 {
		// Degenerate single-symbol code: consumes zero bits.
		sym := uint32(0)
		for i, l := range codeLengths {
			if l > 0 {
				sym = uint32(i)
			}
		}
		return &PrefixTable{entries: []prefixEntry{{Bits: 0, Symbol: sym}}, maxLen: 0}, nil
	}

	// Canonical code assignment: symbols ordered by (length, symbol index).
	type kv struct {
		sym int
		len int
	}
	order := make([]kv, 0, nonZero)
	for sym, l := range codeLengths {
		if l > 0 {
			order = append(order, kv{sym, l})
		}
	}
	// Stable sort by length (insertion sort is fine; tables are small).
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j-1].len > order[j].len; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}

	code := 0
	prevLen := order[0].len
	codes := make(map[int]uint32, len(order))
	for _, e := range order {
		if e.len > prevLen {
			code <<= uint(e.len - prevLen)
			prevLen = e.len
		}
		codes[e.sym] = uint32(code)
		code++
	}
	// Completeness check: after assigning all codes at maxLen, code must
	// equal 1<<maxLen.
	if code != 1<<uint(maxLen) {
		return nil, ErrInvalidPrefixCode
	}

	table := make([]prefixEntry, 1<<uint(maxLen))
	for sym, l := range codeLengths {
		if l == 0 {
			continue
		}
		msbCode := codes[sym]
		lsbCode := reverseBits(msbCode, l)
		step := 1 << uint(l)
		for fill := uint32(lsbCode); fill < uint32(len(table)); fill += uint32(step) {
			table[fill] = prefixEntry{Bits: l, Symbol: uint32(sym)}
		}
	}
	return &PrefixTable{entries: table, maxLen: maxLen}, nil
}

func reverseBits(v uint32, n int) uint32 {
	var out uint32
	for i := 0; i < n; i++ {
		out = (out << 1) | (v & 1)
		v >>= 1
	}
	return out
}

// ReadSymbol decodes one symbol from r using this table.
func (t *PrefixTable) ReadSymbol(r *bitio.Reader) (uint32, error) {
	if t.maxLen == 0 {
		return t.entries[0].Symbol, nil
	}
	peeked, err := r.Peek(t.maxLen)
	if err != nil {
		return 0, err
	}
	e := t.entries[peeked&((1<<uint(t.maxLen))-1)]
	if e.Bits == 0 {
		return 0, ErrInvalidPrefixCode
	}
	if err := r.Consume(e.Bits); err != nil {
		return 0, err
	}
	return e.Symbol, nil
}
