package jxl

import (
	"math"

	"github.com/gojxl/jxl/internal/bitio"
	"github.com/gojxl/jxl/internal/container"
	"github.com/gojxl/jxl/internal/entropy"
	"github.com/gojxl/jxl/internal/frame"
	"github.com/gojxl/jxl/internal/headers"
	"github.com/gojxl/jxl/internal/limits"
	"github.com/gojxl/jxl/internal/permutation"
	"github.com/gojxl/jxl/internal/refstore"
	"github.com/gojxl/jxl/internal/render"
	"github.com/gojxl/jxl/internal/scheduler"
	"github.com/pkg/errors"
)

// Image is a fully decoded JPEG XL image: display-referred (or, with
// Options.XybOutputLinear, scene-linear) samples for the three color
// channels plus the file-level metadata a caller needs to interpret or
// re-encode them.
type Image struct {
	Width, Height int

	R, G, B []float64

	ColorEncoding headers.ColorEncoding
	ToneMapping   headers.ToneMapping
	Orientation   headers.Orientation

	// Linear reports whether R/G/B are scene-linear samples rather than
	// transfer-curve encoded display values. It is true for a VarDCT
	// (XYB) last frame when Options.XybOutputLinear was set or the
	// image's transfer function is linear; Modular output is never
	// marked linear.
	Linear bool

	GainMap    *container.GainMapBundle
	FrameIndex *container.FrameIndex

	Features *Features
}

// lazySymbolReader defers constructing its entropy.Reader until the
// first ReadSymbol call. headers.ReadTOC reads the permuted flag as a
// raw bit before ever touching permReader, so by the time ReadSymbol
// is (maybe) called the shared bit reader is already positioned
// correctly for entropy.ReadHistograms regardless of which way that
// flag went; constructing eagerly would require committing to a
// position before knowing whether it will ever be used.
type lazySymbolReader struct {
	r           *bitio.Reader
	numContexts int
	inner       *entropy.Reader
}

var _ permutation.SymbolReader = (*lazySymbolReader)(nil)

func (l *lazySymbolReader) ReadSymbol(ctx int) (uint32, error) {
	if l.inner == nil {
		inner, err := entropy.ReadHistograms(l.r, l.numContexts)
		if err != nil {
			return 0, err
		}
		l.inner = inner
	}
	return l.inner.ReadSymbol(ctx)
}

// tocPermutationContexts is an upper bound on the contexts
// permutation.Decode can request (get_context caps at 7, so valid
// context indices run 0..7 inclusive); generous on purpose since the
// TOC's own permutation is always small.
const tocPermutationContexts = 8

func decodeCore(data []byte, opts Options) (*Image, error) {
	log := opts.log()

	dm := container.NewDemux()
	events, err := dm.Feed(data, true)
	if err != nil {
		return nil, translateContainerErr(err)
	}

	var codestream []byte
	var gainMap *container.GainMapBundle
	var frameIndex *container.FrameIndex
	sawStream := false
	for _, ev := range events {
		switch ev.Kind {
		case container.EventBitstreamKind:
			if ev.BitstreamKind == container.KindInvalid {
				return nil, &InvalidSignatureError{}
			}
			sawStream = true
		case container.EventCodestream:
			codestream = append(codestream, ev.Bytes...)
		case container.EventAuxBox:
			switch ev.AuxBoxType {
			case container.TypeJHGM:
				gm, err := container.ParseGainMap(ev.Bytes)
				if err != nil {
					return nil, errors.Wrap(err, "jxl: gain map box")
				}
				gainMap = &gm
			case container.TypeJXLI:
				fi, err := container.ParseFrameIndex(ev.Bytes)
				if err != nil {
					return nil, errors.Wrap(err, "jxl: frame index box")
				}
				frameIndex = &fi
			}
		}
	}
	if !sawStream || len(codestream) == 0 {
		return nil, &OutOfBoundsError{N: 2}
	}

	log.Debug("codestream assembled", "bytes", len(codestream))

	br := bitio.NewReader(codestream)
	meta, err := headers.ReadFileHeader(br)
	if err != nil {
		return nil, translateBitioErr(err)
	}
	if meta.ColorEncoding.WantICC {
		return nil, ErrInvalidIccStream
	}
	if err := opts.Limits.CheckPixels(meta.Size.Width, meta.Size.Height); err != nil {
		return nil, err
	}
	if err := opts.Limits.CheckExtraChannels(len(meta.ExtraChannels)); err != nil {
		return nil, err
	}

	store := refstore.NewStore(int(meta.Size.Width), int(meta.Size.Height), 3)

	var lastEncoding headers.FrameEncoding
	for {
		if err := limits.Checkpoint(opts.context()); err != nil {
			return nil, err
		}

		fh, err := headers.ReadFrameHeader(br, len(meta.ExtraChannels))
		if err != nil {
			return nil, translateBitioErr(err)
		}
		fh.Postprocess()
		lastEncoding = fh.Encoding

		// spec.md's TOC fast path (a single section when num_groups ==
		// num_passes == 1) assumes the whole frame arrives as one
		// section blob; internal/frame.Decoder always expects its
		// LfGlobal/LfGroup/HfGlobal/HfGroupPass calls separately, so
		// this decoder always uses the general section count and
		// leaves the fast path unimplemented (see DESIGN.md).
		numSections := 2 + int(fh.NumLfGroups) + int(fh.NumGroups)*int(fh.Passes.NumPasses)

		permReader := &lazySymbolReader{r: br, numContexts: tocPermutationContexts}
		toc, err := headers.ReadTOC(br, numSections, permReader)
		if err != nil {
			return nil, translateBitioErr(err)
		}

		byteOffset := int(br.TotalBitsRead() / 8)
		total := 0
		for _, sz := range toc.Sizes {
			total += int(sz)
		}
		if byteOffset+total > len(codestream) {
			return nil, &OutOfBoundsError{N: byteOffset + total - len(codestream)}
		}
		sections := make([][]byte, numSections)
		off := byteOffset
		for i, sz := range toc.Sizes {
			n := int(sz)
			sections[i] = codestream[off : off+n]
			off += n
		}
		// Advance br past every section payload in one shot: Consume
		// (and so SkipBits) only tops its accumulator up to ~64 bits
		// per refill, so it can't skip a multi-kilobyte span; SplitAt
		// walks the buffer by byte index instead and is built for
		// exactly this.
		if total > 0 {
			if _, err := br.SplitAt(total); err != nil {
				return nil, translateBitioErr(err)
			}
		}

		dec := frame.NewDecoder(fh, len(meta.ExtraChannels), opts.Limits, store)
		sched := scheduler.New(int(fh.NumGroups), int(fh.NumLfGroups), int(fh.Passes.NumPasses), dec)

		idx := 0
		next := func() []byte {
			b := sections[idx]
			idx++
			return b
		}

		if err := sched.Feed(scheduler.SectionID{Kind: scheduler.SectionLfGlobal}, next()); err != nil {
			return nil, err
		}
		for g := 0; g < int(fh.NumLfGroups); g++ {
			if err := sched.Feed(scheduler.SectionID{Kind: scheduler.SectionLfGroup, Group: g}, next()); err != nil {
				return nil, err
			}
		}
		if err := sched.Feed(scheduler.SectionID{Kind: scheduler.SectionHfGlobal}, next()); err != nil {
			return nil, err
		}
		for g := 0; g < int(fh.NumGroups); g++ {
			for p := 0; p < int(fh.Passes.NumPasses); p++ {
				if err := sched.Feed(scheduler.SectionID{Kind: scheduler.SectionHfGroupPass, Group: g, Pass: p}, next()); err != nil {
					return nil, err
				}
			}
		}

		if err := dec.Finalize(); err != nil {
			return nil, err
		}

		log.Debug("frame decoded", "width", fh.Width, "height", fh.Height, "last", fh.IsLast)

		if fh.IsLast {
			break
		}
	}

	img := &Image{
		Width:         int(meta.Size.Width),
		Height:        int(meta.Size.Height),
		ColorEncoding: meta.ColorEncoding,
		ToneMapping:   meta.ToneMapping,
		Orientation:   meta.Orientation,
		GainMap:       gainMap,
		FrameIndex:    frameIndex,
		Features:      featuresFromMetadata(meta),
	}
	if err := renderCanvas(store, meta, lastEncoding, opts, img); err != nil {
		return nil, err
	}
	return img, nil
}

// renderCanvas builds and runs the final color/orientation pipeline
// over the composited canvas, filling img.{Width,Height,R,G,B}.
//
// Only the last frame's encoding governs the pipeline shape: a file
// whose frames mix VarDCT and Modular encodings onto the same visible
// canvas is not something internal/frame reconciles mid-decode either,
// so this mirrors that existing simplification rather than adding a
// new one.
func renderCanvas(store *refstore.Store, meta headers.ImageMetadata, lastEncoding headers.FrameEncoding, opts Options, img *Image) error {
	canvas := store.Canvas()
	w, h := canvas.Width, canvas.Height

	planes := map[int]*render.Plane{
		0: floatsToPlane(canvas.Channels[0], w, h),
		1: floatsToPlane(canvas.Channels[1], w, h),
		2: floatsToPlane(canvas.Channels[2], w, h),
	}

	modular := lastEncoding == headers.EncodingModular
	initial := render.TypeXYBSample
	if modular {
		initial = render.TypeModularInt
	}
	pipeline := render.NewPipeline(map[int]render.SampleType{0: initial, 1: initial, 2: initial})

	linearOutput := opts.XybOutputLinear
	skipTransfer := meta.ColorEncoding.TF.Kind == headers.TFLinear

	finalType := render.TypeDisplayRGB
	switch {
	case modular:
		for c := 0; c < 3; c++ {
			pipeline.Push(render.NewConvertModularToF32(c))
		}
		finalType = render.TypeDisplayRGB
	case linearOutput || skipTransfer:
		pipeline.Push(render.NewXybToLinearSrgb(0, 1, 2))
		finalType = render.TypeLinearLight
	default:
		pipeline.Push(render.NewXybToLinearSrgb(0, 1, 2))
		tf, gamma := transferFuncFor(meta.ColorEncoding.TF)
		for c := 0; c < 3; c++ {
			pipeline.Push(render.NewFromLinear(c, tf, gamma))
		}
		finalType = render.TypeDisplayRGB
	}
	pipeline.Push(render.NewSave([]int{0, 1, 2}, finalType))

	if err := pipeline.Build(); err != nil {
		return err
	}

	bits := int(meta.BitsPerSample)
	if bits <= 0 {
		bits = 8
	}

	out := render.NewOutputBuffer(w, h, 3)
	ctx := &render.RunContext{
		Planes:          planes,
		CanvasWidth:     w,
		CanvasHeight:    h,
		ChannelBitDepth: map[int]int{0: bits, 1: bits, 2: bits},
		IntensityTarget: float64(meta.ToneMapping.IntensityTarget),
		Output:          out,
		Orientation:     orientationFor(meta.Orientation),
		Premultiply:     opts.PremultiplyOutput,
		AlphaChannel:    -1,
	}

	sp := render.NewSimplePipeline(pipeline)
	if err := sp.Run(ctx); err != nil {
		return err
	}

	outW, outH := render.OrientedDims(ctx.Orientation, w, h)
	img.Width, img.Height = outW, outH
	img.R, img.G, img.B = out.Channels[0], out.Channels[1], out.Channels[2]
	img.Linear = finalType == render.TypeLinearLight
	return nil
}

func floatsToPlane(data []float32, w, h int) *render.Plane {
	p := render.NewPlane(w, h)
	for i := 0; i < len(data) && i < len(p.Data); i++ {
		p.Data[i] = float64(data[i])
	}
	return p
}

func transferFuncFor(tf headers.TransferFunction) (render.TransferFunc, float64) {
	switch tf.Kind {
	case headers.TFBT709:
		return render.TransferBT709, 0
	case headers.TFPQ:
		return render.TransferPQ, 0
	case headers.TFHLG:
		return render.TransferHLG, 0
	case headers.TFGamma:
		return render.TransferGamma, tf.Gamma
	default:
		return render.TransferSRGB, 0
	}
}

func orientationFor(o headers.Orientation) render.Orientation {
	switch o {
	case headers.OrientFlipHorizontal:
		return render.OrientFlipH
	case headers.OrientRotate180:
		return render.OrientRotate180
	case headers.OrientFlipVertical:
		return render.OrientFlipV
	case headers.OrientTranspose:
		return render.OrientTranspose
	case headers.OrientRotate90:
		return render.OrientRotate90
	case headers.OrientAntiTranspose:
		return render.OrientAntiTranspose
	case headers.OrientRotate270:
		return render.OrientRotate270
	default:
		return render.OrientIdentity
	}
}

// readHeaderOnly parses just far enough to recover ImageMetadata,
// shared by GetFeatures and DecodeConfig so neither has to run the
// frame/scheduler machinery just to answer "how big is this image".
func readHeaderOnly(data []byte) (headers.ImageMetadata, error) {
	dm := container.NewDemux()
	events, err := dm.Feed(data, true)
	if err != nil {
		return headers.ImageMetadata{}, translateContainerErr(err)
	}
	var codestream []byte
	sawStream := false
	for _, ev := range events {
		switch ev.Kind {
		case container.EventBitstreamKind:
			if ev.BitstreamKind == container.KindInvalid {
				return headers.ImageMetadata{}, &InvalidSignatureError{}
			}
			sawStream = true
		case container.EventCodestream:
			codestream = append(codestream, ev.Bytes...)
		}
	}
	if !sawStream || len(codestream) == 0 {
		return headers.ImageMetadata{}, &OutOfBoundsError{N: 2}
	}
	br := bitio.NewReader(codestream)
	return headers.ReadFileHeader(br)
}

func translateBitioErr(err error) error {
	if err == nil {
		return nil
	}
	var oob *bitio.OutOfBoundsError
	if errors.As(err, &oob) {
		return &OutOfBoundsError{N: oob.N}
	}
	if errors.Is(err, headers.ErrBadSignature) {
		return &InvalidSignatureError{}
	}
	return err
}

func translateContainerErr(err error) error {
	if err == nil {
		return nil
	}
	var need *container.NeedMoreDataError
	if errors.As(err, &need) {
		return &OutOfBoundsError{N: need.Needed()}
	}
	if errors.Is(err, container.ErrFileTruncated) {
		return ErrFileTruncated
	}
	if errors.Is(err, container.ErrInvalidBox) {
		return ErrInvalidBox
	}
	return err
}

// clamp01 restricts v to [0, 1], the range every Save-stage output
// sample is expected to already be close to.
func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
