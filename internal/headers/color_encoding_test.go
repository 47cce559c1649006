package headers

import (
	"reflect"
	"testing"

	"github.com/gojxl/jxl/internal/bitio"
)

func TestColorEncodingRoundTrip(t *testing.T) {
	cases := []ColorEncoding{
		{Space: ColorSpaceRGB, White: WhiteD65, Prim: PrimariesSRGB, TF: TransferFunction{Kind: TFSRGB}, Intent: IntentRelative},
		{Space: ColorSpaceGray, White: WhiteE, TF: TransferFunction{Kind: TFLinear}, Intent: IntentPerceptual},
		{Space: ColorSpaceRGB, White: WhiteCustom, WhiteCustom: CustomXY{X: 0.31, Y: 0.33}, Prim: PrimariesCustom,
			PrimCustom: [3]CustomXY{{X: 0.64, Y: 0.33}, {X: 0.3, Y: 0.6}, {X: 0.15, Y: 0.06}},
			TF:         TransferFunction{Kind: TFGamma, Gamma: 0.45}, Intent: IntentAbsolute},
		{WantICC: true, Space: ColorSpaceUnknown},
	}
	for i, ce := range cases {
		w := bitio.NewWriter()
		WriteColorEncoding(w, ce)
		r := bitio.NewReader(w.Bytes())
		got, err := ReadColorEncoding(r)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if !approxEqualCE(got, ce) {
			t.Fatalf("case %d: round trip mismatch\n got  %#v\n want %#v", i, got, ce)
		}
	}
}

func approxEqualCE(a, b ColorEncoding) bool {
	a.WhiteCustom.X, b.WhiteCustom.X = round6(a.WhiteCustom.X), round6(b.WhiteCustom.X)
	a.WhiteCustom.Y, b.WhiteCustom.Y = round6(a.WhiteCustom.Y), round6(b.WhiteCustom.Y)
	for i := range a.PrimCustom {
		a.PrimCustom[i].X, b.PrimCustom[i].X = round6(a.PrimCustom[i].X), round6(b.PrimCustom[i].X)
		a.PrimCustom[i].Y, b.PrimCustom[i].Y = round6(a.PrimCustom[i].Y), round6(b.PrimCustom[i].Y)
	}
	a.TF.Gamma, b.TF.Gamma = round6(a.TF.Gamma), round6(b.TF.Gamma)
	return reflect.DeepEqual(a, b)
}

func round6(f float64) float64 {
	const scale = 1e6
	return float64(int64(f*scale+0.5)) / scale
}
