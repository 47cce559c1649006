package modular

import (
	"math"

	"github.com/gojxl/jxl/internal/entropy"
	"github.com/pkg/errors"
)

// Tree node contexts, one per the six context-coded streams of
// spec.md §4.7 step 3: split-val, property, predictor, offset,
// mult-log, mult-bits. There is no separate leaf/split flag stream:
// the property token itself carries that signal (token 0 selects a
// leaf; any other token n selects a split on property n-1), matching
// original_source's read() loop.
const (
	ctxSplitVal = iota
	ctxProperty
	ctxPredictor
	ctxOffset
	ctxMultLog
	ctxMultBits
	numTreeContexts
)

// MaxTreeSize and MaxTreeHeight bound the decoded tree (spec.md §4.7:
// "a tree-size and -height limit apply").
const (
	MaxTreeSize   = 1 << 20
	MaxTreeHeight = 2048

	// maxTreeProperty bounds the raw property token (after the
	// leaf/split discriminator is subtracted out), matching
	// original_source's hardcoded "property > 255" rejection.
	maxTreeProperty = 255

	// maxMultiplierLog bounds mul_log so that (mul_bits+1)<<mul_log
	// cannot itself overflow before the uint32-range check below.
	maxMultiplierLog = 30
)

var (
	ErrTreeTooLarge           = errors.New("modular: MA tree exceeds the size/height limit")
	ErrTreeSplitOnEmptyRange  = errors.New("modular: MA tree splits on an already-empty property range")
	ErrInvalidTreeProperty    = errors.New("modular: MA tree split references an out-of-range property")
	ErrTreeMultiplierTooLarge = errors.New("modular: MA tree leaf multiplier exceeds the representable range")
)

// Property indexes into the per-pixel property vector computed at
// decode time: channel id, stream id, y, x, |W|, W, |N|, N, |NW|, NW,
// W+N-NW, etc.
type Property int

// TreeNode is either a Split (branches on a property threshold) or a
// Leaf (selects a predictor/offset/multiplier for entropy decoding).
type TreeNode struct {
	IsLeaf bool

	// Split fields.
	Property    Property
	Val         int32
	Left, Right int // indices into the owning Tree's Nodes slice

	// Leaf fields.
	Predictor  Predictor
	Offset     int32
	Multiplier int32
	Context    int // entropy context used to read this leaf's residual
}

// Tree is a decoded MA tree: a flat node slice rooted at index 0.
type Tree struct {
	Nodes []TreeNode
}

// propRange tracks, per property, the [lo, hi] bound implied by the
// splits taken to reach a node, to validate TreeSplitOnEmptyRange.
type propRange struct {
	lo, hi int64
}

// DecodeTree decodes an MA tree from r, using one context per entropy
// cluster as configured by the caller (six logical contexts:
// ctxSplitVal .. ctxMultBits).
func DecodeTree(r *entropy.Reader, maxProperties int) (*Tree, error) {
	t := &Tree{}
	ranges := make(map[Property]propRange, maxProperties)
	var height int
	var build func() (int, error)
	build = func() (int, error) {
		if len(t.Nodes) >= MaxTreeSize {
			return 0, ErrTreeTooLarge
		}
		height++
		if height > MaxTreeHeight {
			return 0, ErrTreeTooLarge
		}
		defer func() { height-- }()

		// The property token doubles as the leaf/split discriminator:
		// 0 means leaf, n>0 means split on property n-1.
		propTok, err := r.ReadRawToken(ctxProperty)
		if err != nil {
			return 0, err
		}

		idx := len(t.Nodes)
		t.Nodes = append(t.Nodes, TreeNode{})

		if propTok == 0 {
			predTok, err := r.ReadRawToken(ctxPredictor)
			if err != nil {
				return 0, err
			}
			offsetTok, err := r.ReadRawToken(ctxOffset)
			if err != nil {
				return 0, err
			}
			multLogTok, err := r.ReadRawToken(ctxMultLog)
			if err != nil {
				return 0, err
			}
			if multLogTok > maxMultiplierLog {
				return 0, ErrTreeMultiplierTooLarge
			}
			multBitsTok, err := r.ReadRawToken(ctxMultBits)
			if err != nil {
				return 0, err
			}
			multiplier := (uint64(multBitsTok) + 1) << multLogTok
			if multiplier > math.MaxUint32 {
				return 0, ErrTreeMultiplierTooLarge
			}
			t.Nodes[idx] = TreeNode{
				IsLeaf:     true,
				Predictor:  Predictor(predTok),
				Offset:     entropy.UnzigzagSigned(offsetTok),
				Multiplier: int32(multiplier),
				Context:    idx,
			}
			return idx, nil
		}

		propIdx := propTok - 1
		if propIdx > maxTreeProperty {
			return 0, ErrInvalidTreeProperty
		}
		prop := Property(propIdx)
		valTok, err := r.ReadRawToken(ctxSplitVal)
		if err != nil {
			return 0, err
		}
		val := entropy.UnzigzagSigned(valTok)

		rng, hasRange := ranges[prop]
		if hasRange && rng.lo >= rng.hi {
			return 0, ErrTreeSplitOnEmptyRange
		}
		if !hasRange {
			rng = propRange{lo: -(1 << 20), hi: 1 << 20}
		}

		leftRange := propRange{lo: rng.lo, hi: int64(val)}
		rightRange := propRange{lo: int64(val) + 1, hi: rng.hi}
		if leftRange.lo > leftRange.hi || rightRange.lo > rightRange.hi {
			return 0, ErrTreeSplitOnEmptyRange
		}

		ranges[prop] = leftRange
		left, err := build()
		if err != nil {
			return 0, err
		}
		ranges[prop] = rightRange
		right, err := build()
		if err != nil {
			return 0, err
		}
		ranges[prop] = rng

		t.Nodes[idx] = TreeNode{IsLeaf: false, Property: prop, Val: val, Left: left, Right: right}
		return idx, nil
	}

	if _, err := build(); err != nil {
		return nil, err
	}
	return t, nil
}

// Walk descends the tree given a property vector (indexed by
// Property), returning the leaf reached.
func (t *Tree) Walk(props []int32) TreeNode {
	idx := 0
	for !t.Nodes[idx].IsLeaf {
		n := t.Nodes[idx]
		v := int32(0)
		if int(n.Property) < len(props) {
			v = props[n.Property]
		}
		if v <= n.Val {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return t.Nodes[idx]
}
