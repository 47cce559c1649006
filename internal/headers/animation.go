package headers

import "github.com/gojxl/jxl/internal/bitio"

// Animation carries the ticks-per-second ratio and loop count that
// govern frame duration interpretation, grounded on
// original_source/jxl/src/headers/image_metadata.rs.
type Animation struct {
	TpsNumerator   uint32
	TpsDenominator uint32
	NumLoops       uint32 // 0 means loop forever
	HaveTimecodes  bool
}

var (
	tpsNumCoder  = SelectCoder(Val(100), Val(1000), BitsOffset(10, 1), BitsOffset(30, 1))
	tpsDenCoder  = SelectCoder(Val(1), Val(1001), BitsOffset(8, 1), BitsOffset(10, 1))
	numLoopCoder = SelectCoder(Val(0), Bits(3), Bits(16), Bits(32))
)

// ReadAnimation decodes an Animation block.
func ReadAnimation(r *bitio.Reader) (Animation, error) {
	var a Animation
	var err error
	a.TpsNumerator, err = ReadU32(r, tpsNumCoder)
	if err != nil {
		return a, err
	}
	a.TpsDenominator, err = ReadU32(r, tpsDenCoder)
	if err != nil {
		return a, err
	}
	a.NumLoops, err = ReadU32(r, numLoopCoder)
	if err != nil {
		return a, err
	}
	a.HaveTimecodes, err = ReadBool(r)
	if err != nil {
		return a, err
	}
	return a, nil
}

// WriteAnimation serializes an Animation block.
func WriteAnimation(w *bitio.Writer, a Animation) {
	WriteU32Direct(w, tpsNumCoder, a.TpsNumerator)
	WriteU32Direct(w, tpsDenCoder, a.TpsDenominator)
	WriteU32Direct(w, numLoopCoder, a.NumLoops)
	WriteBool(w, a.HaveTimecodes)
}
