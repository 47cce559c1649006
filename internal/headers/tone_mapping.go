package headers

import (
	"github.com/gojxl/jxl/internal/bitio"
	"github.com/pkg/errors"
)

// ToneMapping carries the HDR display-referred parameters of spec.md §3,
// grounded on original_source/jxl/src/headers/image_metadata.rs.
type ToneMapping struct {
	IntensityTarget      float32 // nits, > 0
	MinNits              float32 // nits, >= 0 and <= IntensityTarget
	RelativeToMaxDisplay bool
	LinearBelow          float32 // >= 0; if RelativeToMaxDisplay, a fraction in [0, 1]
}

// DefaultToneMapping matches the all_default values.
func DefaultToneMapping() ToneMapping {
	return ToneMapping{IntensityTarget: 255.0, MinNits: 0.0, RelativeToMaxDisplay: false, LinearBelow: 0.0}
}

var (
	ErrInvalidIntensityTarget = errors.New("headers: intensity_target must be > 0")
	ErrInvalidMinNits         = errors.New("headers: min_nits must be in [0, intensity_target]")
	ErrInvalidLinearBelow     = errors.New("headers: linear_below out of range")
)

// ReadToneMapping decodes a ToneMapping and validates its fields.
func ReadToneMapping(r *bitio.Reader) (ToneMapping, error) {
	allDefault, err := ReadBool(r)
	if err != nil {
		return ToneMapping{}, err
	}
	if allDefault {
		return DefaultToneMapping(), nil
	}
	var tm ToneMapping
	tm.IntensityTarget, err = ReadF32(r)
	if err != nil {
		return tm, err
	}
	if tm.IntensityTarget <= 0 {
		return tm, ErrInvalidIntensityTarget
	}
	tm.MinNits, err = ReadF32(r)
	if err != nil {
		return tm, err
	}
	if tm.MinNits < 0 || tm.MinNits > tm.IntensityTarget {
		return tm, ErrInvalidMinNits
	}
	tm.RelativeToMaxDisplay, err = ReadBool(r)
	if err != nil {
		return tm, err
	}
	tm.LinearBelow, err = ReadF32(r)
	if err != nil {
		return tm, err
	}
	if tm.LinearBelow < 0 || (tm.RelativeToMaxDisplay && tm.LinearBelow > 1.0) {
		return tm, ErrInvalidLinearBelow
	}
	return tm, nil
}

// WriteToneMapping serializes a ToneMapping, always in non-default form.
func WriteToneMapping(w *bitio.Writer, tm ToneMapping) {
	WriteBool(w, false)
	writeF32(w, tm.IntensityTarget)
	writeF32(w, tm.MinNits)
	WriteBool(w, tm.RelativeToMaxDisplay)
	writeF32(w, tm.LinearBelow)
}
