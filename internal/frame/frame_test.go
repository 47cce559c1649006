package frame

import (
	"testing"

	"github.com/gojxl/jxl/internal/bitio"
	"github.com/gojxl/jxl/internal/headers"
	"github.com/gojxl/jxl/internal/limits"
	"github.com/gojxl/jxl/internal/refstore"
)

// writeHistogramSection hand-builds a full ReadHistograms bitstream
// (see internal/entropy/histogram.go) using only degenerate
// single-symbol prefix clusters: contextMap maps each logical context
// to a cluster index, and clusterTokens gives the one token each
// cluster always returns, consuming zero bits per read. split_exponent
// is written equal to logAlphaSize (15), the shortcut readHybridUintConfig
// path that skips the msb/lsb fields entirely.
func writeHistogramSection(numContexts int, contextMap []int, clusterTokens []uint32) []byte {
	w := bitio.NewWriter()
	w.WriteBits(0, 1) // lz77 disabled
	if numContexts > 1 {
		for _, c := range contextMap {
			w.WriteBits(uint64(c), 3)
		}
	}
	w.WriteBits(1, 1) // use_prefix_code
	for _, tok := range clusterTokens {
		w.WriteBits(15, 4)         // split_exponent == logAlphaSize(15)
		w.WriteBits(1, 8)          // n = 1
		w.WriteBits(uint64(tok), 8) // symbol
		w.WriteBits(1, 4)          // length = 1 (degenerate, any positive value)
	}
	return w.Bytes()
}

func contextMapAllZero(n int) []int {
	return make([]int, n)
}

func TestFrameDecodeModularPipelineEndToEnd(t *testing.T) {
	header := headers.FrameHeader{
		Encoding: headers.EncodingModular,
		Width:    4,
		Height:   4,
		Blending: headers.BlendingInfo{Mode: headers.BlendReplace},
		IsLastFrame: true,
	}
	header.Postprocess()

	store := refstore.NewStore(4, 4, 3)
	dec := NewDecoder(header, 0, limits.Default, store)

	// DecodeLfGlobal: a single-leaf tree (PredictorZero, offset 0,
	// multiplier (0+1)<<0 = 1), contexts 0..5 mapped directly to 6
	// distinct clusters (ctxProperty=0 both selects "leaf" and stops
	// build() at the first node, per original_source's convention).
	lfGlobalData := writeHistogramSection(6, []int{0, 1, 2, 3, 4, 5}, []uint32{
		0, // ctxSplitVal: unused (leaf reached immediately)
		0, // ctxProperty: 0 -> leaf
		0, // ctxPredictor: PredictorZero
		0, // ctxOffset: zigzag(0) = 0
		0, // ctxMultLog
		0, // ctxMultBits
	})
	if err := dec.DecodeLfGlobal(lfGlobalData); err != nil {
		t.Fatalf("DecodeLfGlobal: %v", err)
	}
	if dec.globalTree == nil || len(dec.globalTree.Nodes) != 1 || !dec.globalTree.Nodes[0].IsLeaf {
		t.Fatalf("globalTree = %+v, want single leaf", dec.globalTree)
	}

	// DecodeLfGroup: an empty transform list (count 0) and
	// use_global_tree = true, contexts 100 (transform count) and 104
	// (use_global_tree) routed to their own clusters, everything else
	// defaulted to cluster 0.
	groupContextMap := contextMapAllZero(numGroupContexts)
	groupContextMap[100] = 1
	groupContextMap[104] = 2
	lfGroupData := writeHistogramSection(numGroupContexts, groupContextMap, []uint32{
		0, // cluster 0 (default): never read for anything meaningful here
		0, // cluster 1: transform count = 0
		1, // cluster 2: use_global_tree = true
	})
	if err := dec.DecodeLfGroup(0, lfGroupData); err != nil {
		t.Fatalf("DecodeLfGroup: %v", err)
	}
	if len(dec.lfResults) != 1 || dec.lfResults[0] == nil {
		t.Fatalf("lfResults not populated")
	}
	if dec.lfResults[0].width != 4 || dec.lfResults[0].height != 4 {
		t.Fatalf("lfResults[0] dims = %dx%d, want 4x4", dec.lfResults[0].width, dec.lfResults[0].height)
	}
	for c := 0; c < 3; c++ {
		for i, v := range dec.lfResults[0].channels[c] {
			if v != 0 {
				t.Fatalf("channel %d sample %d = %v, want 0 (PredictorZero, zero residual)", c, i, v)
			}
		}
	}

	// DecodeHfGlobal: no custom scan.
	hfGlobalData := writeHistogramSection(2, []int{0, 0}, []uint32{0})
	if err := dec.DecodeHfGlobal(hfGlobalData); err != nil {
		t.Fatalf("DecodeHfGlobal: %v", err)
	}
	if dec.customScan != nil {
		t.Fatalf("customScan = %v, want nil (no custom scan declared)", dec.customScan)
	}

	// DecodeAndRenderHfGroups: Modular frames resolve entirely from the
	// lf-group result, so the pass payload itself is unused.
	if err := dec.DecodeAndRenderHfGroups(0, [][]byte{{}}); err != nil {
		t.Fatalf("DecodeAndRenderHfGroups: %v", err)
	}
	canvas := store.Canvas()
	if canvas.Width != 4 || canvas.Height != 4 {
		t.Fatalf("canvas dims = %dx%d, want 4x4", canvas.Width, canvas.Height)
	}
	for c := 0; c < 3; c++ {
		for i, v := range canvas.Channels[c] {
			if v != 0 {
				t.Fatalf("canvas channel %d sample %d = %v, want 0", c, i, v)
			}
		}
	}

	if err := dec.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

func TestRectForIndexClipsAtImageEdge(t *testing.T) {
	// A 10-wide image with a group dim of 8 produces two columns: the
	// first full-width (8), the second clipped to 2.
	w, h := rectForIndex(1, 8, 10, 8)
	if w != 2 || h != 8 {
		t.Fatalf("rectForIndex(1,...) = %dx%d, want 2x8", w, h)
	}
	w, h = rectForIndex(0, 8, 10, 8)
	if w != 8 || h != 8 {
		t.Fatalf("rectForIndex(0,...) = %dx%d, want 8x8", w, h)
	}
}

func TestLfGroupOriginComputesRasterPosition(t *testing.T) {
	// 3 lf-groups per row (frameW=300, lfDim=128 -> ceil(300/128)=3).
	if x := lfGroupOriginX(4, 128, 300); x != 128 {
		t.Fatalf("lfGroupOriginX(4,...) = %d, want 128", x)
	}
	if y := lfGroupOriginY(4, 128, 300); y != 128 {
		t.Fatalf("lfGroupOriginY(4,...) = %d, want 128", y)
	}
}

func TestBlendModeMapsEveryHeaderMode(t *testing.T) {
	cases := []struct {
		in   headers.BlendMode
		want refstore.BlendMode
	}{
		{headers.BlendReplace, refstore.BlendReplace},
		{headers.BlendAdd, refstore.BlendAdd},
		{headers.BlendBlend, refstore.BlendBlend},
		{headers.BlendMulAdd, refstore.BlendMulAdd},
		{headers.BlendMul, refstore.BlendMul},
	}
	for _, c := range cases {
		if got := blendMode(c.in); got != c.want {
			t.Fatalf("blendMode(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestInt32ToFloat32Converts(t *testing.T) {
	out := int32ToFloat32([]int32{-3, 0, 7})
	want := []float32{-3, 0, 7}
	for i, v := range out {
		if v != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, v, want[i])
		}
	}
}
