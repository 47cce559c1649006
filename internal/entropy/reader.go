package entropy

import (
	"github.com/gojxl/jxl/internal/bitio"
	"github.com/pkg/errors"
)

// ErrContextOutOfRange is returned when a caller requests a context
// index beyond the configured context map.
var ErrContextOutOfRange = errors.New("entropy: context index out of range")

// Cluster is one decoded histogram: either a prefix (Huffman) code or
// an ANS distribution, plus the hybrid-uint config used to expand its
// raw tokens into final integers.
type Cluster struct {
	Prefix *PrefixTable
	ANS    *ANSTable
	Hybrid HybridUintConfig
}

// Reader decodes symbols across many contexts sharing an ANS/prefix
// entropy stream, mirroring the Modular/VarDCT "histogram set + context
// map" idiom: many logical contexts map onto a handful of physical
// clusters. It satisfies permutation.SymbolReader.
type Reader struct {
	br        *bitio.Reader
	clusters  []Cluster
	contexts  []int // contextMap: logical context -> cluster index
	usesANS   bool
	ansStates []*ANSState // one live state per cluster using ANS, lazily created
}

// NewReader builds a Reader over contextMap (logical context -> cluster
// index) and the decoded clusters. usesANS selects ANS vs prefix-code
// decoding for every cluster uniformly, matching the single stream-wide
// coder-selection bit in the bitstream.
func NewReader(br *bitio.Reader, contextMap []int, clusters []Cluster, usesANS bool) *Reader {
	return &Reader{br: br, clusters: clusters, contexts: contextMap, usesANS: usesANS, ansStates: make([]*ANSState, len(clusters))}
}

func (r *Reader) clusterFor(context int) (*Cluster, int, error) {
	if context < 0 || context >= len(r.contexts) {
		return nil, 0, ErrContextOutOfRange
	}
	idx := r.contexts[context]
	if idx < 0 || idx >= len(r.clusters) {
		return nil, 0, ErrContextOutOfRange
	}
	return &r.clusters[idx], idx, nil
}

// ReadSymbol decodes one raw token for the given logical context and
// expands it via that cluster's hybrid-uint config. Satisfies
// permutation.SymbolReader.
func (r *Reader) ReadSymbol(context int) (uint32, error) {
	c, idx, err := r.clusterFor(context)
	if err != nil {
		return 0, err
	}
	var token uint32
	if r.usesANS {
		if r.ansStates[idx] == nil {
			r.ansStates[idx], err = NewANSState(r.br)
			if err != nil {
				return 0, err
			}
		}
		token, err = r.ansStates[idx].ReadSymbol(r.br, c.ANS)
	} else {
		token, err = c.Prefix.ReadSymbol(r.br)
	}
	if err != nil {
		return 0, err
	}
	return Expand(r.br, c.Hybrid, token)
}

// ReadRawToken decodes one raw token without hybrid-uint expansion,
// used when the caller (e.g. the Modular MA-tree walk) needs the token
// itself rather than its expanded integer value.
func (r *Reader) ReadRawToken(context int) (uint32, error) {
	c, idx, err := r.clusterFor(context)
	if err != nil {
		return 0, err
	}
	if r.usesANS {
		if r.ansStates[idx] == nil {
			r.ansStates[idx], err = NewANSState(r.br)
			if err != nil {
				return 0, err
			}
		}
		return r.ansStates[idx].ReadSymbol(r.br, c.ANS)
	}
	return c.Prefix.ReadSymbol(r.br)
}
