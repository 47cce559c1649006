package jxl

import "github.com/pkg/errors"

// Result is the successful outcome of Decoder.Process.
type Result struct {
	Image *Image
}

// NeedsMoreInput is returned by Decoder.Process when decoding cannot
// proceed without more bytes. SizeHint is the decoder's best estimate
// of how many additional bytes to append before calling Process again;
// a caller unable to estimate more precisely can always just append
// and retry.
type NeedsMoreInput struct {
	SizeHint int
}

// Status is one Decoder.Process outcome: exactly one of Complete or
// NeedsMoreInput is set.
type Status struct {
	Complete       *Result
	NeedsMoreInput *NeedsMoreInput
}

// Decoder is the incremental counterpart to Decode: feed it bytes as
// they arrive and call Process to advance.
//
// Grounded on internal/container.Demux's own documented contract
// ("Feed is called with the FULL accumulated input seen so far"):
// Process re-parses everything fed so far on every call rather than
// resuming from a saved bit position, trading re-scan cost for a much
// simpler suspension model, consistent with that existing tradeoff
// rather than inventing a second one.
type Decoder struct {
	buf  []byte
	opts Options
}

// NewDecoder creates a Decoder configured with opts.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// Feed appends data to the decoder's accumulated input. It never
// blocks and never decodes; call Process to attempt progress.
func (d *Decoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Process attempts to decode everything fed so far. eof must be true
// once the caller knows no further bytes will ever arrive (so a
// dangling open-ended box or codestream is treated as complete rather
// than as needing more data).
func (d *Decoder) Process(eof bool) (Status, error) {
	img, err := decodeCore(d.buf, d.opts)
	if err == nil {
		return Status{Complete: &Result{Image: img}}, nil
	}
	var oob *OutOfBoundsError
	if errors.As(err, &oob) && !eof {
		return Status{NeedsMoreInput: &NeedsMoreInput{SizeHint: oob.Needed()}}, nil
	}
	return Status{}, err
}

// FlushPixels always fails; see ErrPartialFlushUnsupported.
func (d *Decoder) FlushPixels() (*Image, error) {
	return nil, ErrPartialFlushUnsupported
}
