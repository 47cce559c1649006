// Package entropy implements the shared ANS/prefix-code symbol readers
// and the hybrid-uint integer expansion used throughout the Modular and
// VarDCT engines (histogram object -> symbol reader), grounded on the
// teacher's internal/lossless/huffman.go table-building idiom and
// internal/lossy/decode_tree.go's bit-by-bit tree walk.
package entropy

import "github.com/gojxl/jxl/internal/bitio"

// HybridUintConfig describes how a raw token (the symbol read from the
// prefix/ANS table) is split into a fixed "direct" low range and a
// split-exponent range whose high/low bits are partly embedded in the
// token and partly read as extra raw bits.
type HybridUintConfig struct {
	SplitExponent  int
	MSBInToken     int
	LSBInToken     int
}

// DefaultHybridUintConfig matches the common (4, 2, 0) configuration
// used for most Modular property/predictor streams.
var DefaultHybridUintConfig = HybridUintConfig{SplitExponent: 4, MSBInToken: 2, LSBInToken: 0}

// Expand converts a raw token value into the final unsigned integer,
// reading any extra bits the token's exponent range requires from r.
func Expand(r *bitio.Reader, cfg HybridUintConfig, token uint32) (uint32, error) {
	split := uint32(1) << uint(cfg.SplitExponent)
	if token < split {
		return token, nil
	}
	nExtra := cfg.SplitExponent - cfg.MSBInToken - cfg.LSBInToken
	bucket := (token - split) >> uint(cfg.MSBInToken+cfg.LSBInToken)
	exp := nExtra + int(bucket)
	if exp > 63 {
		exp = 63
	}
	extraBits := exp
	halfToken := uint32(1) << uint(cfg.MSBInToken)
	msb := (token >> uint(cfg.LSBInToken)) & (halfToken - 1)
	lsb := token & ((uint32(1) << uint(cfg.LSBInToken)) - 1)

	var extra uint64
	if extraBits > 0 {
		v, err := r.Read(extraBits)
		if err != nil {
			return 0, err
		}
		extra = v
	}
	// Reconstructed value: an implicit leading 1 above the msb bits, then
	// the extra bits in the middle and the lsb bits at the bottom, matching
	// the canonical hybrid-uint layout: [1][msb][extra][lsb].
	value := (uint64(halfToken|msb)<<uint(extraBits) | extra) << uint(cfg.LSBInToken)
	value |= uint64(lsb)
	return uint32(value), nil
}

// UnzigzagSigned maps an unsigned token back to a signed value using
// the standard zigzag scheme (even -> +n/2, odd -> -(n+1)/2), used by
// Modular property and residual streams.
func UnzigzagSigned(u uint32) int32 {
	if u&1 == 0 {
		return int32(u >> 1)
	}
	return -int32((u + 1) >> 1)
}
