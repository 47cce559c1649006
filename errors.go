package jxl

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors surfaced at the package boundary (spec.md §6/§7).
var (
	ErrFileTruncated         = errors.New("jxl: file truncated")
	ErrInvalidBox            = errors.New("jxl: invalid box")
	ErrIccTooLarge           = errors.New("jxl: ICC profile exceeds the configured limit")
	ErrInvalidIccStream      = errors.New("jxl: embedded ICC profiles are not supported by this decoder")
	ErrNoFrames              = errors.New("jxl: no image frames found")
	ErrUnsupportedColorType  = errors.New("jxl: unsupported pixel format color type")
	ErrUnsupportedDataFormat = errors.New("jxl: unsupported pixel format data format")
	ErrBufferTooSmall        = errors.New("jxl: output buffer smaller than required")

	// ErrPartialFlushUnsupported is returned by Decoder.FlushPixels:
	// this decoder's Process re-parses the full accumulated buffer on
	// every call (see DESIGN.md) rather than tracking a resumable
	// mid-frame render state, so there is nothing partial to flush.
	ErrPartialFlushUnsupported = errors.New("jxl: partial-frame flush is not supported by this decoder")
)

// InvalidSignatureError reports that neither the bare-codestream nor
// the ISOBMFF container signature matched the first bytes of input.
type InvalidSignatureError struct{ B0, B1 byte }

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("jxl: invalid signature bytes %#02x %#02x", e.B0, e.B1)
}

// OutOfBoundsError reports that the decoder needs at least N more
// bytes before it can make further progress; it is the package-level
// analog of bitio.OutOfBoundsError/container.NeedMoreDataError, the
// form Process converts any such error into at the public boundary.
type OutOfBoundsError struct{ N int }

func (e *OutOfBoundsError) Error() string { return "jxl: need more input" }

// Needed returns the minimum additional byte count a caller should
// append before calling Process again.
func (e *OutOfBoundsError) Needed() int { return e.N }

// WrongBufferCountError is returned by DecodeInto when the supplied
// output buffer slice doesn't have exactly Want entries.
type WrongBufferCountError struct{ Got, Want int }

func (e *WrongBufferCountError) Error() string {
	return fmt.Sprintf("jxl: wrong output buffer count: got %d, want %d", e.Got, e.Want)
}
