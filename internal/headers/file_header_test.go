package headers

import (
	"reflect"
	"testing"

	"github.com/gojxl/jxl/internal/bitio"
)

func TestImageMetadataRoundTrip(t *testing.T) {
	m := ImageMetadata{
		Size:                   Size{Width: 1920, Height: 1080},
		Orientation:            OrientRotate90,
		HaveIntrinsicSize:      true,
		IntrinsicSize:          Size{Width: 1920, Height: 1080},
		HavePreview:            true,
		Preview:                Preview{Width: 160, Height: 90},
		HaveAnimation:          true,
		Animation:              Animation{TpsNumerator: 30, TpsDenominator: 1, NumLoops: 0, HaveTimecodes: false},
		BitsPerSample:          16,
		Modular16BitSufficient: true,
		ExtraChannels: []ExtraChannelInfo{
			{Type: ExtraAlpha, BitsPerSample: 8, AlphaAssociated: true, Name: "alpha"},
		},
		XybEncoded:    true,
		ColorEncoding: ColorEncoding{Space: ColorSpaceRGB, White: WhiteD65, Prim: PrimariesSRGB, TF: TransferFunction{Kind: TFSRGB}, Intent: IntentRelative},
		ToneMapping:   DefaultToneMapping(),
	}

	w := bitio.NewWriter()
	WriteImageMetadata(w, m)
	r := bitio.NewReader(w.Bytes())
	got, err := ReadImageMetadata(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Size != m.Size {
		t.Fatalf("size mismatch: got %+v want %+v", got.Size, m.Size)
	}
	if got.Orientation != m.Orientation {
		t.Fatalf("orientation mismatch: got %v want %v", got.Orientation, m.Orientation)
	}
	if got.HaveIntrinsicSize != m.HaveIntrinsicSize || got.IntrinsicSize != m.IntrinsicSize {
		t.Fatalf("intrinsic size mismatch")
	}
	if got.HavePreview != m.HavePreview || got.Preview != m.Preview {
		t.Fatalf("preview mismatch: got %+v want %+v", got.Preview, m.Preview)
	}
	if got.HaveAnimation != m.HaveAnimation || got.Animation != m.Animation {
		t.Fatalf("animation mismatch: got %+v want %+v", got.Animation, m.Animation)
	}
	if got.BitsPerSample != m.BitsPerSample {
		t.Fatalf("bits per sample mismatch")
	}
	if !reflect.DeepEqual(got.ExtraChannels, m.ExtraChannels) {
		t.Fatalf("extra channels mismatch: got %+v want %+v", got.ExtraChannels, m.ExtraChannels)
	}
	if got.XybEncoded != m.XybEncoded {
		t.Fatalf("xyb_encoded mismatch")
	}
}

func TestOrientationIsTransposing(t *testing.T) {
	cases := map[Orientation]bool{
		OrientIdentity:       false,
		OrientFlipHorizontal: false,
		OrientRotate180:      false,
		OrientFlipVertical:   false,
		OrientTranspose:      true,
		OrientRotate90:       true,
		OrientAntiTranspose:  true,
		OrientRotate270:      true,
	}
	for o, want := range cases {
		if got := o.IsTransposing(); got != want {
			t.Errorf("Orientation(%d).IsTransposing() = %v, want %v", o, got, want)
		}
	}
}

func TestExtraChannelInfoDimShiftTooLarge(t *testing.T) {
	w := bitio.NewWriter()
	WriteBool(w, false) // all_default = false
	WriteU32Direct(w, extraChannelKindCoder, uint32(ExtraDepth))
	writeBitDepth(w, 8, 0)
	// dim_shift coder: Select(Val(0), Val(3), Val(4), BitsOffset(3,1));
	// pick alternative 3 (selector=3) with raw bits = 4 -> dim_shift = 5.
	w.WriteBits(3, 2)
	w.WriteBits(4, 3)
	writeString(w, "")

	r := bitio.NewReader(w.Bytes())
	_, err := ReadExtraChannelInfo(r)
	if err != ErrDimShiftTooLarge {
		t.Fatalf("got err %v, want ErrDimShiftTooLarge", err)
	}
}
