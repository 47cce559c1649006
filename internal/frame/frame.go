// Package frame implements the per-frame decode engine: the five
// section entry points a SectionScheduler dispatches into
// (LfGlobal/LfGroup/HfGlobal/HfGroup passes), the glue between
// internal/modular and internal/vardct, and the composite-onto-canvas
// step that hands a finished frame to internal/refstore.
//
// Grounded on internal/lossy's Decoder (internal/lossy/decode.go): a
// single stateful struct threaded through parseHeaders -> initFrame ->
// parseFrame -> reconstructRow, generalized from VP8's fixed
// header/partition/macroblock-row pipeline to JPEG XL's
// Modular-or-VarDCT, LF-then-HF, multi-pass section pipeline.
package frame

import (
	"github.com/gojxl/jxl/internal/bitio"
	"github.com/gojxl/jxl/internal/entropy"
	"github.com/gojxl/jxl/internal/headers"
	"github.com/gojxl/jxl/internal/limits"
	"github.com/gojxl/jxl/internal/modular"
	"github.com/gojxl/jxl/internal/refstore"
	"github.com/gojxl/jxl/internal/vardct"
	"github.com/pkg/errors"
)

// Fixed context counts for the simplified per-section histogram
// prologues this decoder reads (see internal/entropy/histogram.go):
// each section is self-contained rather than sharing one
// frame-wide cluster set, a deliberate simplification of the true
// bitstream's single shared entropy image documented in DESIGN.md.
const (
	numTreeContexts = 6 // matches matree.go's ctxSplitVal..ctxMultBits
	// numGroupContexts must cover the modular package's transform-list
	// context indices (ctxTransformCount..ctxUseGlobalTree, 100..104)
	// alongside the per-pixel leaf contexts a decoded tree assigns.
	numGroupContexts    = 128
	numLfGroupContexts  = 4 // vardct.ctxDC plus headroom
	numHfGlobalContexts = 2
	numHfGroupContexts  = 4 // vardct.ctxACNumNonzero/ctxACCoeff plus headroom
)

// ErrGroupOutOfRange is returned when a section names a group or
// lf-group index outside the frame's Postprocess-derived geometry.
var ErrGroupOutOfRange = errors.New("frame: group index out of range")

// lfGroupResult is one lf-group's decoded low-frequency image, either
// the VarDCT DC image or (for Modular-encoded frames) the full-
// resolution color channels decoded directly at LF time.
type lfGroupResult struct {
	width, height int
	channels      [vardct.NumChannels][]float32
}

// Decoder holds one frame's state across the scheduler's canonical
// section dispatch order: DecodeLfGlobal, then every DecodeLfGroup,
// then DecodeHfGlobal, then one or more DecodeAndRenderHfGroups calls
// per group, then Finalize.
type Decoder struct {
	Header           headers.FrameHeader
	NumExtraChannels int
	Limits           limits.Limits
	Store            *refstore.Store

	dequant    *vardct.Dequant
	globalTree *modular.Tree

	customScan []int // nil unless HfGlobal declared a non-default AC scan order

	lfResults []*lfGroupResult // len == Header.NumLfGroups, indexed by lf-group id

	lfGlobalDone bool
	hfGlobalDone bool
	smoothed     bool
}

// NewDecoder prepares a Decoder for one frame. Header must already
// have Postprocess called so NumGroups/NumLfGroups are populated.
func NewDecoder(header headers.FrameHeader, numExtraChannels int, lim limits.Limits, store *refstore.Store) *Decoder {
	return &Decoder{
		Header:           header,
		NumExtraChannels: numExtraChannels,
		Limits:           lim,
		Store:            store,
		lfResults:        make([]*lfGroupResult, header.NumLfGroups),
	}
}

// groupDim returns the pixel side length of one HF group and one LF
// group, mirroring FrameHeader.Postprocess's own geometry derivation.
func (d *Decoder) groupDim() (group, lfGroup uint32) {
	group = uint32(128) << d.Header.GroupDimShift
	return group, group * 8
}

// rectForIndex computes the clipped pixel rectangle (width, height)
// covered by lf-group or group index idx in raster order over the
// frame's full Width x Height canvas.
func rectForIndex(idx int, dim, frameW, frameH uint32) (w, h int) {
	cols := (frameW + dim - 1) / dim
	if cols == 0 {
		cols = 1
	}
	col := uint32(idx) % cols
	row := uint32(idx) / cols
	x0 := col * dim
	y0 := row * dim
	w = int(minU32(dim, subOrZero(frameW, x0)))
	h = int(minU32(dim, subOrZero(frameH, y0)))
	if w <= 0 {
		w = int(dim)
	}
	if h <= 0 {
		h = int(dim)
	}
	return w, h
}

// lfGroupOriginX and lfGroupOriginY return the pixel origin of
// lf-group index idx in the frame's lf-group raster, used to translate
// an HF group's frame-absolute rect into the lf-group-relative
// coordinates refstore.Crop expects.
func lfGroupOriginX(idx int, lfDim, frameW uint32) int {
	cols := (frameW + lfDim - 1) / lfDim
	if cols == 0 {
		cols = 1
	}
	col := uint32(idx) % cols
	return int(col * lfDim)
}

func lfGroupOriginY(idx int, lfDim, frameW uint32) int {
	cols := (frameW + lfDim - 1) / lfDim
	if cols == 0 {
		cols = 1
	}
	row := uint32(idx) / cols
	return int(row * lfDim)
}

func subOrZero(a, b uint32) uint32 {
	if b >= a {
		return 0
	}
	return a - b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

// DecodeLfGlobal reads the frame-wide Modular tree (Modular frames) or
// the global dequantization scales (VarDCT frames). Satisfies
// scheduler.FrameSink.
func (d *Decoder) DecodeLfGlobal(data []byte) error {
	br := bitio.NewReader(data)
	r, err := entropy.ReadHistograms(br, numTreeContexts)
	if err != nil {
		return errors.Wrap(err, "frame: decode_lf_global histograms")
	}

	if d.Header.Encoding == headers.EncodingModular {
		tree, err := modular.DecodeTree(r, numModularProperties)
		if err != nil {
			return errors.Wrap(err, "frame: decode_lf_global tree")
		}
		if err := d.Limits.CheckTreeSize(len(tree.Nodes)); err != nil {
			return err
		}
		d.globalTree = tree
	} else {
		d.dequant, err = readDequant(r)
		if err != nil {
			return errors.Wrap(err, "frame: decode_lf_global dequant")
		}
	}

	d.lfGlobalDone = true
	return nil
}

// numModularProperties bounds the MA-tree property-range map size,
// matching the fixed 20-entry property vector DecodeChannel builds.
const numModularProperties = 20

// readDequant reads the global scale and per-channel DC step sizes
// that HfGlobal's DequantMatrices section would otherwise carry in
// full; the per-transform-kind weight tables themselves are left at
// NewIdentityDequant's pass-through default (see vardct/quant.go's
// documented Open Question).
func readDequant(r *entropy.Reader) (*vardct.Dequant, error) {
	dq := vardct.NewIdentityDequant()
	scaleTok, err := r.ReadSymbol(0)
	if err != nil {
		return nil, err
	}
	if scaleTok > 0 {
		dq.GlobalScale = float32(scaleTok)
	}
	for c := 0; c < vardct.NumChannels; c++ {
		tok, err := r.ReadSymbol(1)
		if err != nil {
			return nil, err
		}
		if tok > 0 {
			dq.DCQuant[c] = float32(tok)
		}
	}
	return dq, nil
}

// DecodeLfGroup reads one lf-group's low-frequency image: the VarDCT
// DC plane (dequantized, not yet smoothed) or, for Modular frames, the
// full-resolution color channels decoded directly since Modular has no
// separate DC/AC split. Satisfies scheduler.FrameSink.
func (d *Decoder) DecodeLfGroup(group int, data []byte) error {
	if group < 0 || group >= len(d.lfResults) {
		return ErrGroupOutOfRange
	}
	_, lfDim := d.groupDim()
	br := bitio.NewReader(data)

	if d.Header.Encoding == headers.EncodingModular {
		// Modular has no DC/AC split: an lf-group covers a full-
		// resolution lfDim x lfDim region of the image directly, unlike
		// VarDCT's DC plane which is sized at 1/8 resolution below.
		w, h := rectForIndex(group, lfDim, d.Header.Width, d.Header.Height)
		r, err := entropy.ReadHistograms(br, numGroupContexts)
		if err != nil {
			return errors.Wrap(err, "frame: decode_lf_group histograms")
		}
		hdr, err := modular.ReadGroupHeader(r)
		if err != nil {
			return errors.Wrap(err, "frame: decode_lf_group header")
		}
		channels := make([]*modular.Channel, vardct.NumChannels)
		for c := range channels {
			channels[c] = modular.NewChannel(modular.ChannelInfo{Width: w, Height: h})
		}
		decoded, err := modular.DecodeGroup(r, hdr, d.globalTree, channels, group)
		if err != nil {
			return errors.Wrap(err, "frame: decode_lf_group decode")
		}
		res := &lfGroupResult{width: w, height: h}
		for c := 0; c < vardct.NumChannels && c < len(decoded); c++ {
			res.channels[c] = int32ToFloat32(decoded[c].Data)
		}
		d.lfResults[group] = res
		return nil
	}

	dcW, dcH := rectForIndex(group, lfDim/8, (d.Header.Width+7)/8, (d.Header.Height+7)/8)
	r, err := entropy.ReadHistograms(br, numLfGroupContexts)
	if err != nil {
		return errors.Wrap(err, "frame: decode_lf_group histograms")
	}
	dc, err := vardct.DecodeDCGroup(r, d.dequant, dcW, dcH)
	if err != nil {
		return errors.Wrap(err, "frame: decode_lf_group dc")
	}
	res := &lfGroupResult{width: dcW, height: dcH, channels: dc.Chan}
	d.lfResults[group] = res
	return nil
}

func int32ToFloat32(in []int32) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// finalizeLF smooths every lf-group's DC plane once all of them have
// arrived, the point at which SmoothDC's 4-neighbor averaging has a
// complete DC image to read from. Chroma is always treated as 4:4:4:
// this decoder's FrameHeader carries no subsampling field (see
// DESIGN.md), so SmoothDC's ErrNon444ChromaSubsampling path is never
// reachable here.
func (d *Decoder) finalizeLF() error {
	if d.smoothed || d.Header.Encoding == headers.EncodingModular {
		d.smoothed = true
		return nil
	}
	for _, res := range d.lfResults {
		if res == nil {
			continue
		}
		g := &vardct.DCGroup{Width: res.width, Height: res.height, Chan: res.channels}
		if err := vardct.SmoothDC(g, false); err != nil {
			return err
		}
		res.channels = g.Chan
	}
	d.smoothed = true
	return nil
}

// DecodeHfGlobal finalizes the LF image (DC smoothing) and reads the
// frame-wide custom AC coefficient scan order, if any. Satisfies
// scheduler.FrameSink.
func (d *Decoder) DecodeHfGlobal(data []byte) error {
	if err := d.finalizeLF(); err != nil {
		return errors.Wrap(err, "frame: finalize_lf")
	}

	br := bitio.NewReader(data)
	r, err := entropy.ReadHistograms(br, numHfGlobalContexts)
	if err != nil {
		return errors.Wrap(err, "frame: decode_hf_global histograms")
	}
	hasCustomScan, err := r.ReadSymbol(0)
	if err != nil {
		return errors.Wrap(err, "frame: decode_hf_global scan flag")
	}
	if hasCustomScan != 0 {
		base := vardct.NaturalOrder(8, 8)
		perm, err := vardct.ApplyCustomScan(base, r, 1)
		if err != nil {
			return errors.Wrap(err, "frame: decode_hf_global custom scan")
		}
		d.customScan = perm
	}

	d.hfGlobalDone = true
	return nil
}

// scanFor returns this frame's coefficient scan order for an 8x8
// block, the custom order from HfGlobal if one was declared, else the
// default zigzag.
func (d *Decoder) scanFor() []int {
	if d.customScan != nil {
		return d.customScan
	}
	return vardct.NaturalOrder(8, 8)
}

// sampleAt reads channel's lf-group DC sample at the lf-group-relative
// 1/8-resolution position (x8, y8), used to seed
// each 8x8 block's DC value before adding its AC residual.
func (res *lfGroupResult) sampleAt(channel, x8, y8 int) float32 {
	if res == nil || x8 < 0 || y8 < 0 || x8 >= res.width || y8 >= res.height {
		return 0
	}
	plane := res.channels[channel]
	if plane == nil {
		return 0
	}
	return plane[y8*res.width+x8]
}

// DecodeAndRenderHfGroups decodes every available pass of one HF
// group's 8x8 AC blocks, reconstructs each block's spatial samples
// (DC from the matching lf-group plus this group's AC residual,
// inverse-transformed and converted from XYB), and composites the
// finished region onto the reference store's canvas. Satisfies
// scheduler.FrameSink.
func (d *Decoder) DecodeAndRenderHfGroups(group int, passes [][]byte) error {
	groupDim, lfDim := d.groupDim()
	w, h := rectForIndex(group, groupDim, d.Header.Width, d.Header.Height)
	blocksX := (w + 7) / 8
	blocksY := (h + 7) / 8

	lfGroupsPerRow := (d.Header.Width + lfDim - 1) / lfDim
	if lfGroupsPerRow == 0 {
		lfGroupsPerRow = 1
	}
	groupsPerRow := (d.Header.Width + groupDim - 1) / groupDim
	if groupsPerRow == 0 {
		groupsPerRow = 1
	}
	gx := uint32(group) % groupsPerRow
	gy := uint32(group) / groupsPerRow
	lfGroupIdx := int((gy*uint32(groupDim)/lfDim)*lfGroupsPerRow + gx*uint32(groupDim)/lfDim)
	var lf *lfGroupResult
	if lfGroupIdx >= 0 && lfGroupIdx < len(d.lfResults) {
		lf = d.lfResults[lfGroupIdx]
	}

	origin8X := int(gx * groupDim / 8)
	origin8Y := int(gy * groupDim / 8)

	// Modular frames have no separate DC/AC split: DecodeLfGroup already
	// decoded this region's full-resolution channels, so the HF-group
	// section only needs to crop and composite that result. The pass
	// payloads themselves carry nothing further to read here, the
	// generalization of Modular's single-pass nature to this decoder's
	// otherwise VarDCT-shaped section pipeline.
	if d.Header.Encoding == headers.EncodingModular {
		lfOriginX := lfGroupOriginX(lfGroupIdx, lfDim, d.Header.Width)
		lfOriginY := lfGroupOriginY(lfGroupIdx, lfDim, d.Header.Width)
		cropX := int(gx*groupDim) - lfOriginX
		cropY := int(gy*groupDim) - lfOriginY
		src := &refstore.Buffer{Width: 0, Height: 0}
		if lf != nil {
			src = &refstore.Buffer{Width: lf.width, Height: lf.height, Channels: lf.channels[:]}
		}
		cropped := refstore.Crop(src, cropX, cropY, w, h)
		cropped.OriginX = int(gx * groupDim)
		cropped.OriginY = int(gy * groupDim)
		d.Store.Composite(cropped, blendMode(d.Header.Blending.Mode), -1)
		return nil
	}

	out := &refstore.Buffer{
		Width: w, Height: h,
		OriginX: int(gx * groupDim), OriginY: int(gy * groupDim),
		Channels: make([][]float32, vardct.NumChannels),
	}
	for c := range out.Channels {
		out.Channels[c] = make([]float32, w*h)
	}

	scan := d.scanFor()

	for _, payload := range passes {
		br := bitio.NewReader(payload)
		r, err := entropy.ReadHistograms(br, numHfGroupContexts)
		if err != nil {
			return errors.Wrap(err, "frame: decode_hf_group histograms")
		}
		for by := 0; by < blocksY; by++ {
			for bx := 0; bx < blocksX; bx++ {
				res, err := vardct.DecodeACBlock(r, d.dequant, vardct.BlockDCT8x8, scan)
				if err != nil {
					return errors.Wrap(err, "frame: decode_hf_group block")
				}
				placeBlock(out, res, lf, origin8X+bx, origin8Y+by, bx*8, by*8)
			}
		}
	}

	if d.Header.Encoding != headers.EncodingModular {
		rr, gg, bb := vardct.DecodeXYBImage(out.Channels[vardct.ChanX], out.Channels[vardct.ChanY], out.Channels[vardct.ChanB])
		out.Channels[vardct.ChanX], out.Channels[vardct.ChanY], out.Channels[vardct.ChanB] = rr, gg, bb
	}

	d.Store.Composite(out, blendMode(d.Header.Blending.Mode), -1)
	return nil
}

// placeBlock adds an AC block's DC-plus-residual samples into out at
// pixel offset (px, py), reading the seed DC value from the lf-group
// result at the block's 1/8-resolution coordinate (dcX, dcY).
func placeBlock(out *refstore.Buffer, res vardct.ACBlockResult, lf *lfGroupResult, dcX, dcY, px, py int) {
	w, h := res.Type.Dims()
	for c := 0; c < vardct.NumChannels; c++ {
		samples := res.Samples[c]
		if samples == nil {
			continue
		}
		dc := lf.sampleAt(c, dcX, dcY)
		for y := 0; y < h; y++ {
			oy := py + y
			if oy >= out.Height {
				continue
			}
			for x := 0; x < w; x++ {
				ox := px + x
				if ox >= out.Width {
					continue
				}
				out.Channels[c][oy*out.Width+ox] = dc + samples[y*w+x]
			}
		}
	}
}

func blendMode(m headers.BlendMode) refstore.BlendMode {
	switch m {
	case headers.BlendAdd:
		return refstore.BlendAdd
	case headers.BlendBlend:
		return refstore.BlendBlend
	case headers.BlendMulAdd:
		return refstore.BlendMulAdd
	case headers.BlendMul:
		return refstore.BlendMul
	default:
		return refstore.BlendReplace
	}
}

// Finalize runs the post-render bookkeeping the scheduler's caller
// performs once a frame's last section has been dispatched: saving the
// rendered canvas into a reference slot when the frame header asks for
// it. The bitstream has no separate "which slot" field beyond
// SaveAsReference (spec.md leaves the specific slot selection to
// Blending.Source's reuse on the next frame), so this always saves
// into slot 0, documented as a simplification in DESIGN.md.
func (d *Decoder) Finalize() error {
	if !d.Header.SaveAsReference {
		return nil
	}
	saved := *d.Store.Canvas()
	return d.Store.Save(0, &saved)
}
