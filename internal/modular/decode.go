package modular

import (
	"github.com/gojxl/jxl/internal/entropy"
	"github.com/pkg/errors"
)

// Property indices into the per-pixel vector handed to Tree.Walk,
// matching the fixed property ordering of spec.md §4.7 step 2.
const (
	PropChannel Property = iota
	PropStreamID
	PropY
	PropX
	PropAbsW
	PropW
	PropAbsN
	PropN
	PropAbsNW
	PropNW
	PropAbsNE
	PropNE
	PropAbsWW
	PropWW
	PropAbsNN
	PropNN
	PropWPlusNMinusNW
	PropWMinusNW
	PropNWMinusN
	PropNMinusNE
	numProperties
)

// ErrUnsupportedTransform is returned for a transform type id the
// decoder does not recognize.
var ErrUnsupportedTransform = errors.New("modular: unsupported transform type")

// GroupHeader is the per-group Modular bitstream prologue: an ordered
// transform list followed by either a reference to the frame's global
// tree or a group-local tree (spec.md §4.7 step 1).
type GroupHeader struct {
	Transforms    []Transform
	UseGlobalTree bool
}

// readTransformList reads the ordered transform list: a count, then
// per-entry type tag and parameters. Grounded on
// internal/lossless/decode_transform.go's loop of "read one transform,
// apply/record it, keep going until the terminal marker."
func readTransformList(r *entropy.Reader) ([]Transform, error) {
	countTok, err := r.ReadRawToken(ctxTransformCount)
	if err != nil {
		return nil, err
	}
	out := make([]Transform, 0, countTok)
	for i := uint32(0); i < countTok; i++ {
		typeTok, err := r.ReadRawToken(ctxTransformType)
		if err != nil {
			return nil, err
		}
		switch TransformType(typeTok) {
		case TransformRCT:
			variantTok, err := r.ReadRawToken(ctxTransformParam)
			if err != nil {
				return nil, err
			}
			out = append(out, Transform{Type: TransformRCT, RCTVariant: int(variantTok)})
		case TransformPalette:
			startTok, err := r.ReadRawToken(ctxTransformParam)
			if err != nil {
				return nil, err
			}
			numChTok, err := r.ReadRawToken(ctxTransformParam)
			if err != nil {
				return nil, err
			}
			sizeTok, err := r.ReadRawToken(ctxTransformParam)
			if err != nil {
				return nil, err
			}
			entries := make([][]int32, sizeTok)
			for e := range entries {
				entry := make([]int32, numChTok)
				for c := range entry {
					vTok, err := r.ReadRawToken(ctxPaletteEntry)
					if err != nil {
						return nil, err
					}
					entry[c] = entropy.UnzigzagSigned(vTok)
				}
				entries[e] = entry
			}
			out = append(out, Transform{
				Type:                TransformPalette,
				PaletteChannelStart: int(startTok),
				PaletteNumChannels:  int(numChTok),
				PaletteSize:         int(sizeTok),
				PaletteEntries:      entries,
			})
		case TransformSqueeze:
			horizTok, err := r.ReadRawToken(ctxTransformParam)
			if err != nil {
				return nil, err
			}
			channelTok, err := r.ReadRawToken(ctxTransformParam)
			if err != nil {
				return nil, err
			}
			out = append(out, Transform{
				Type:              TransformSqueeze,
				SqueezeHorizontal: horizTok != 0,
				SqueezeChannel:    int(channelTok),
			})
		default:
			return nil, ErrUnsupportedTransform
		}
	}
	return out, nil
}

// Context indices for the transform list and group-header bookkeeping,
// distinct from the tree-node contexts of matree.go.
const (
	ctxTransformCount = 100 + iota
	ctxTransformType
	ctxTransformParam
	ctxPaletteEntry
	ctxUseGlobalTree
)

// ReadGroupHeader decodes one group's transform list and tree
// selector.
func ReadGroupHeader(r *entropy.Reader) (GroupHeader, error) {
	transforms, err := readTransformList(r)
	if err != nil {
		return GroupHeader{}, err
	}
	useGlobalTok, err := r.ReadRawToken(ctxUseGlobalTree)
	if err != nil {
		return GroupHeader{}, err
	}
	return GroupHeader{Transforms: transforms, UseGlobalTree: useGlobalTok != 0}, nil
}

// weightedState tracks the minimal per-channel running state the
// approximated PredictorWeighted needs: nothing beyond the causal
// neighborhood already gathered, since the true self-correcting
// weighted-sum predictor is approximated by the MED predictor (see
// predictor.go).
type weightedState struct{}

// DecodeChannel fills one channel's samples by walking tree for every
// pixel in raster order, reading a residual from the entropy stream at
// the leaf's context, and reconstructing
// value = guess + multiplier*signed + offset (spec.md §4.7 step 4).
//
// channelIndex and streamID feed the PropChannel/PropStreamID
// properties so a single shared tree can specialize its splits per
// channel, the way a single Huffman/MA tree is shared across VP8L's
// per-channel residual planes in internal/lossless/decode_image.go.
func DecodeChannel(r *entropy.Reader, tree *Tree, c *Channel, channelIndex, streamID int) error {
	props := make([]int32, numProperties)
	for y := 0; y < c.Info.Height; y++ {
		for x := 0; x < c.Info.Width; x++ {
			n := gatherNeighborhood(c, x, y)
			props[PropChannel] = int32(channelIndex)
			props[PropStreamID] = int32(streamID)
			props[PropY] = int32(y)
			props[PropX] = int32(x)
			props[PropAbsW] = absInt32(n.W)
			props[PropW] = n.W
			props[PropAbsN] = absInt32(n.N)
			props[PropN] = n.N
			props[PropAbsNW] = absInt32(n.NW)
			props[PropNW] = n.NW
			props[PropAbsNE] = absInt32(n.NE)
			props[PropNE] = n.NE
			props[PropAbsWW] = absInt32(n.WW)
			props[PropWW] = n.WW
			props[PropAbsNN] = absInt32(n.NN)
			props[PropNN] = n.NN
			props[PropWPlusNMinusNW] = n.W + n.N - n.NW
			props[PropWMinusNW] = n.W - n.NW
			props[PropNWMinusN] = n.NW - n.N
			props[PropNMinusNE] = n.N - n.NE

			leaf := tree.Walk(props)
			guess := predict(leaf.Predictor, n)

			tok, err := r.ReadSymbol(leaf.Context)
			if err != nil {
				return err
			}
			signed := entropy.UnzigzagSigned(tok)

			value := guess + leaf.Multiplier*signed + leaf.Offset
			c.set(x, y, value)
		}
	}
	return nil
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// DecodeGroup decodes every channel of one group in sequence and then
// applies the group's transform list in reverse (innermost-first)
// order, undoing the forward encode-time application order.
func DecodeGroup(r *entropy.Reader, hdr GroupHeader, tree *Tree, channels []*Channel, streamID int) ([]*Channel, error) {
	for i, c := range channels {
		if err := DecodeChannel(r, tree, c, i, streamID); err != nil {
			return nil, err
		}
	}
	for i := len(hdr.Transforms) - 1; i >= 0; i-- {
		if err := hdr.Transforms[i].ApplyInverse(channels); err != nil {
			return nil, err
		}
	}
	return channels, nil
}
