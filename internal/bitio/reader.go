// Package bitio provides the bit-level and small-buffer I/O primitives
// that every higher layer of the decoder reads through: a little-endian
// bit reader (C1) and a fixed-capacity slide-and-refill byte buffer (C3).
//
// The accumulator/refill split is a direct descendant of the VP8 boolean
// reader's 64-bit look-ahead cache, generalized from an 8-bit-aligned
// arithmetic coder to JPEG XL's arbitrary-width little-endian peek/consume.
package bitio

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Sentinel errors matching the taxonomy of spec.md §7 "Structural"/"Truncation".
var (
	// ErrPeekTooLarge is returned by Peek when n > 56.
	ErrPeekTooLarge = errors.New("bitio: peek width exceeds 56 bits")
	// ErrNonZeroPadding is returned by JumpToByteBoundary when a skipped
	// padding bit was set.
	ErrNonZeroPadding = errors.New("bitio: non-zero byte-alignment padding")
)

// OutOfBoundsError reports that the reader needs at least N more bytes
// to satisfy the requested operation. It is the bit-level analog of
// spec.md §6's OutOfBounds(n) interface error and is what propagates up
// to a NeedsMoreInput at the public API boundary.
type OutOfBoundsError struct{ N int }

func (e *OutOfBoundsError) Error() string {
	return "bitio: out of bounds, need more input"
}

// Needed returns the minimum additional byte count the caller should
// supply before retrying.
func (e *OutOfBoundsError) Needed() int { return e.N }

// Reader is a little-endian bit extractor over a byte slice.
//
// Bits are consumed LSB-first within each byte, and bytes are consumed
// in stream order -- i.e. bit i of the stream is bit (i%8) of byte i/8.
// This matches JPEG XL's codestream bit order (unlike VP8's MSB-first
// boolean coder, which the accumulator design is otherwise borrowed
// from).
type Reader struct {
	buf           []byte
	pos           int    // index of the next byte not yet loaded into acc
	acc           uint64 // low nbits bits are valid, LSB-aligned
	nbits         uint   // number of valid bits in acc
	totalBitsRead uint64
}

// NewReader constructs a Reader over buf. buf is not copied; the caller
// must not mutate it while the Reader (or any sub-reader produced by
// SplitAt) is in use.
func NewReader(buf []byte) *Reader {
	r := &Reader{buf: buf}
	r.refill()
	return r
}

// refill tops up the accumulator to at least 56 bits (or until the
// source is exhausted), per spec.md §4.1: bulk 8-byte little-endian
// loads when enough bytes remain, otherwise byte-at-a-time.
func (r *Reader) refill() {
	for r.nbits <= 56 && r.pos < len(r.buf) {
		if r.nbits == 0 && r.pos+8 <= len(r.buf) {
			r.acc = binary.LittleEndian.Uint64(r.buf[r.pos:])
			r.pos += 8
			r.nbits = 64
			return
		}
		r.acc |= uint64(r.buf[r.pos]) << r.nbits
		r.pos++
		r.nbits += 8
	}
}

// Peek returns the low n bits of the accumulator without consuming them.
// n must be <= 56.
func (r *Reader) Peek(n int) (uint64, error) {
	if n < 0 || n > 56 {
		return 0, ErrPeekTooLarge
	}
	if n == 0 {
		return 0, nil
	}
	r.refill()
	if int(r.nbits) < n {
		return 0, &OutOfBoundsError{N: (n - int(r.nbits) + 7) / 8}
	}
	return r.acc & ((uint64(1) << uint(n)) - 1), nil
}

// Consume advances the reader by n bits without returning a value.
func (r *Reader) Consume(n int) error {
	if n == 0 {
		return nil
	}
	r.refill()
	if int(r.nbits) < n {
		return &OutOfBoundsError{N: (n - int(r.nbits) + 7) / 8}
	}
	r.acc >>= uint(n)
	r.nbits -= uint(n)
	r.totalBitsRead += uint64(n)
	return nil
}

// Read returns the next n bits (n <= 56) and advances the reader.
func (r *Reader) Read(n int) (uint64, error) {
	v, err := r.Peek(n)
	if err != nil {
		return 0, err
	}
	if err := r.Consume(n); err != nil {
		return 0, err
	}
	return v, nil
}

// SkipBits is an alias for Consume, kept to mirror the contract name in
// spec.md §4.1.
func (r *Reader) SkipBits(n int) error { return r.Consume(n) }

// TotalBitsRead returns the number of bits consumed so far. It is
// monotonically non-decreasing for the lifetime of the reader (I6).
func (r *Reader) TotalBitsRead() uint64 { return r.totalBitsRead }

// JumpToByteBoundary consumes the padding bits needed to reach the next
// byte boundary and fails with ErrNonZeroPadding if any of them are set.
func (r *Reader) JumpToByteBoundary() error {
	pad := int((8 - r.totalBitsRead%8) % 8)
	if pad == 0 {
		return nil
	}
	v, err := r.Peek(pad)
	if err != nil {
		return err
	}
	if v != 0 {
		return ErrNonZeroPadding
	}
	return r.Consume(pad)
}

// SplitAt byte-aligns the reader, then returns a new Reader covering the
// next nBytes full bytes of the stream, advancing the receiver past
// them. It is used to confine a sub-decoder to a TOC-sized section.
func (r *Reader) SplitAt(nBytes int) (*Reader, error) {
	if err := r.JumpToByteBoundary(); err != nil {
		return nil, err
	}
	// After byte-alignment nbits is a multiple of 8; the logical current
	// byte offset in buf is r.pos - nbits/8.
	curByte := r.pos - int(r.nbits/8)
	if curByte+nBytes > len(r.buf) {
		return nil, &OutOfBoundsError{N: curByte + nBytes - len(r.buf)}
	}
	sub := NewReader(r.buf[curByte : curByte+nBytes])

	r.acc = 0
	r.nbits = 0
	r.pos = curByte + nBytes
	r.totalBitsRead += uint64(nBytes) * 8
	return sub, nil
}

// Remaining reports how many whole bytes are still available to the
// reader (an upper bound; the accumulator may hold a partial final
// byte beyond a byte boundary).
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos + int(r.nbits/8)
}
