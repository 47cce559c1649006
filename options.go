package jxl

import (
	"context"
	"log/slog"

	"github.com/gojxl/jxl/internal/limits"
)

// Limits bounds the resources one decode is allowed to consume; an
// alias of internal/limits.Limits so callers never need to import the
// internal package directly.
type Limits = limits.Limits

// Preset limit bundles, re-exported from internal/limits.
var (
	DefaultLimits     = limits.Default
	SafeLimits        = limits.Safe
	RestrictiveLimits = limits.Restrictive
)

// ColorManagementFunc maps a color triple from one space to another,
// the hook spec.md §6 reserves for callers that want to route
// rendering-intent-aware color management through their own engine
// instead of this decoder's built-in transfer-function math.
type ColorManagementFunc func(triple [3]float64) [3]float64

// Options configures one Decode/Process call (spec.md §6 "Decoder
// options").
type Options struct {
	// XybOutputLinear outputs XYB frames in linear light instead of
	// applying the image's transfer function.
	XybOutputLinear bool
	// RenderSpotColors is not read by the decoder: spot-color extra
	// channels are never composited into the color channels, whatever
	// its value.
	RenderSpotColors bool
	// SkipPreview is not read by the decoder; setting it has no effect.
	// Preview frames get no separate handling.
	SkipPreview bool
	// PremultiplyOutput premultiplies color channels by alpha in the
	// Save stage.
	PremultiplyOutput bool

	Limits Limits

	// Context carries cancellation/deadline; checked at the cooperative
	// checkpoints internal/limits.Checkpoint documents. A nil Context
	// behaves as context.Background (never canceled).
	Context context.Context

	// ColorManagement is not read by the decoder: the built-in
	// transfer-function step always runs, and this callback is never
	// called.
	ColorManagement ColorManagementFunc

	// Logger receives structured diagnostic events (box boundaries,
	// frame decode milestones, limit checks). A nil Logger makes
	// logging a no-op; the decode path itself never logs by default.
	Logger *slog.Logger
}

// DefaultOptions returns the zero-configuration option set: Default
// limits, no cancellation, no logging, sRGB-encoded output.
func DefaultOptions() Options {
	return Options{Limits: limits.Default}
}

func (o Options) context() context.Context {
	if o.Context != nil {
		return o.Context
	}
	return context.Background()
}

func (o Options) log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that drops every record, used as
// Options.Logger's zero-overhead default.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// ColorType enumerates the output channel layout (spec.md §6).
type ColorType int

const (
	ColorGrayscale ColorType = iota
	ColorGrayscaleAlpha
	ColorRGB
	ColorRGBA
	ColorBGR
	ColorBGRA
)

// NumColorChannels returns how many interleaved-or-planar color
// channels (not counting extra channels) this ColorType emits.
func (c ColorType) NumColorChannels() int {
	switch c {
	case ColorGrayscale:
		return 1
	case ColorGrayscaleAlpha:
		return 2
	case ColorRGB, ColorBGR:
		return 3
	case ColorRGBA, ColorBGRA:
		return 4
	default:
		return 0
	}
}

// Endian selects byte order for multi-byte DataFormat kinds.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

// DataFormatKind enumerates the sample encodings spec.md §6 names.
type DataFormatKind int

const (
	FormatU8 DataFormatKind = iota
	FormatU16
	FormatF16
	FormatF32
)

// DataFormat is one output channel's on-the-wire sample encoding.
type DataFormat struct {
	Kind DataFormatKind
	// Bits overrides the natural bit depth for U8/U16 (e.g. a 10-bit
	// sample packed into a 16-bit word); 0 means the kind's natural
	// depth (8 for U8, 16 for U16).
	Bits int
	// Endian selects byte order for U16/F16/F32; ignored for U8.
	Endian Endian
}

func (f DataFormat) bits() int {
	if f.Bits > 0 {
		return f.Bits
	}
	switch f.Kind {
	case FormatU8:
		return 8
	case FormatU16:
		return 16
	default:
		return 0
	}
}

func (f DataFormat) bytesPerSample() int {
	switch f.Kind {
	case FormatU8:
		return 1
	case FormatU16, FormatF16:
		return 2
	case FormatF32:
		return 4
	default:
		return 0
	}
}

// PixelFormat describes the caller's desired output buffer layout
// (spec.md §6). A nil entry in ExtraChannelFormats means "ignore that
// extra channel on output".
type PixelFormat struct {
	ColorType       ColorType
	ColorDataFormat DataFormat
	ExtraChannelFormats []*DataFormat
}
