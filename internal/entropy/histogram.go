package entropy

import (
	"math/bits"

	"github.com/gojxl/jxl/internal/bitio"
	"github.com/pkg/errors"
)

// ErrLZ77Unsupported is returned when a histogram stream enables the
// LZ77-style backward-reference extension, which this decoder does not
// implement (see DESIGN.md).
var ErrLZ77Unsupported = errors.New("entropy: LZ77-coded histogram stream is unsupported")

// readBool reads the single-bit boolean encoding shared across the
// bitstream (1 bit, nonzero = true), local to this package to avoid an
// entropy -> headers import for a one-line helper.
func readBool(br *bitio.Reader) (bool, error) {
	v, err := br.Read(1)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadHistograms decodes one entropy-coded stream's prologue (context
// map, coder selector, per-cluster hybrid-uint config, and per-cluster
// prefix/ANS table) and returns a Reader ready to decode symbols for
// numContexts logical contexts.
//
// Grounded on original_source's entropy_coding/decode.rs
// Histograms::decode, with the context-map and per-cluster table
// encodings simplified to a direct (symbol, length-or-frequency) list
// rather than the real move-to-front/RLE and geometric-distribution
// bit-packing (documented in DESIGN.md as an explicit simplification).
func ReadHistograms(br *bitio.Reader, numContexts int) (*Reader, error) {
	lz77Enabled, err := readBool(br)
	if err != nil {
		return nil, err
	}
	if lz77Enabled {
		return nil, ErrLZ77Unsupported
	}

	contextMap, err := decodeContextMap(br, numContexts)
	if err != nil {
		return nil, err
	}

	usePrefixCode, err := readBool(br)
	if err != nil {
		return nil, err
	}
	logAlphaSize := maxPrefixCodeBits
	if !usePrefixCode {
		v, err := br.Read(2)
		if err != nil {
			return nil, err
		}
		logAlphaSize = int(v) + 5
	}

	numHistograms := 0
	for _, c := range contextMap {
		if c+1 > numHistograms {
			numHistograms = c + 1
		}
	}

	clusters := make([]Cluster, numHistograms)
	for i := range clusters {
		cfg, err := readHybridUintConfig(br, logAlphaSize)
		if err != nil {
			return nil, err
		}
		clusters[i].Hybrid = cfg
		if usePrefixCode {
			tbl, err := readPrefixCodeDescription(br)
			if err != nil {
				return nil, err
			}
			clusters[i].Prefix = tbl
		} else {
			tbl, err := readANSDistribution(br)
			if err != nil {
				return nil, err
			}
			clusters[i].ANS = tbl
		}
	}

	return NewReader(br, contextMap, clusters, !usePrefixCode), nil
}

// decodeContextMap reads numContexts cluster indices. The real format
// applies move-to-front decoding plus RLE runs over a nested entropy
// stream; this simplified form reads each entry as a direct 3-bit
// fixed field (cluster indices 0..7, enough for the handful of clusters
// any of this decoder's group headers actually use) and skips MTF.
func decodeContextMap(br *bitio.Reader, numContexts int) ([]int, error) {
	if numContexts <= 1 {
		return []int{0}, nil
	}
	out := make([]int, numContexts)
	for i := range out {
		v, err := br.Read(3)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}

// readHybridUintConfig reads one cluster's split-exponent / msb-in-
// token / lsb-in-token triple, bounded by logAlphaSize the way
// HybridUint::decode bounds split_exponent in the original encoder.
func readHybridUintConfig(br *bitio.Reader, logAlphaSize int) (HybridUintConfig, error) {
	splitBits := ceilLog2(logAlphaSize + 1)
	splitRaw, err := br.Read(splitBits)
	if err != nil {
		return HybridUintConfig{}, err
	}
	splitExponent := int(splitRaw)
	if splitExponent == logAlphaSize {
		return HybridUintConfig{SplitExponent: splitExponent}, nil
	}
	msbBits := ceilLog2(splitExponent + 1)
	msbRaw, err := br.Read(msbBits)
	if err != nil {
		return HybridUintConfig{}, err
	}
	msb := int(msbRaw)
	lsbBits := ceilLog2(splitExponent - msb + 1)
	lsbRaw, err := br.Read(lsbBits)
	if err != nil {
		return HybridUintConfig{}, err
	}
	return HybridUintConfig{SplitExponent: splitExponent, MSBInToken: msb, LSBInToken: int(lsbRaw)}, nil
}

func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// readPrefixCodeDescription reads a symbol count followed by
// (symbol, length) pairs and builds a canonical PrefixTable. Simplified
// relative to the real compact code-length-of-code-lengths encoding.
func readPrefixCodeDescription(br *bitio.Reader) (*PrefixTable, error) {
	nRaw, err := br.Read(8)
	if err != nil {
		return nil, err
	}
	n := int(nRaw)
	maxSym := 0
	type entry struct {
		sym, length int
	}
	entries := make([]entry, n)
	for i := range entries {
		sym, err := br.Read(8)
		if err != nil {
			return nil, err
		}
		length, err := br.Read(4)
		if err != nil {
			return nil, err
		}
		entries[i] = entry{int(sym), int(length)}
		if int(sym) > maxSym {
			maxSym = int(sym)
		}
	}
	lengths := make([]int, maxSym+1)
	for _, e := range entries {
		lengths[e.sym] = e.length
	}
	return BuildPrefixTable(lengths)
}

// readANSDistribution reads a symbol count followed by (symbol,
// frequency) pairs summing to ansPrecision and builds an ANSTable.
// Simplified relative to the real geometric/direct hybrid frequency
// encoding.
func readANSDistribution(br *bitio.Reader) (*ANSTable, error) {
	nRaw, err := br.Read(8)
	if err != nil {
		return nil, err
	}
	n := int(nRaw)
	maxSym := 0
	type entry struct {
		sym  int
		freq uint32
	}
	entries := make([]entry, n)
	for i := range entries {
		sym, err := br.Read(8)
		if err != nil {
			return nil, err
		}
		freq, err := br.Read(ANSPrecisionBits)
		if err != nil {
			return nil, err
		}
		entries[i] = entry{int(sym), uint32(freq)}
		if int(sym) > maxSym {
			maxSym = int(sym)
		}
	}
	freqs := make([]uint32, maxSym+1)
	for _, e := range entries {
		freqs[e.sym] = e.freq
	}
	return BuildANSTable(freqs)
}
