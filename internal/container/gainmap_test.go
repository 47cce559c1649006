package container

import (
	"bytes"
	"testing"

	"github.com/gojxl/jxl/internal/headers"
)

func TestWriteGainMapMatchesKnownBytes(t *testing.T) {
	b := GainMapBundle{
		Version:  0,
		Metadata: []byte{1, 2, 3, 4},
		AltICC:   nil,
		GainMap:  []byte{0xFF, 0x0A},
	}
	got := WriteGainMap(b)
	want := []byte{0x00, 0x00, 0x04, 0x01, 0x02, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF, 0x0A}
	if !bytes.Equal(got, want) {
		t.Fatalf("WriteGainMap = %#v, want %#v", got, want)
	}
}

func TestGainMapRoundTripWithoutColorEncoding(t *testing.T) {
	b := GainMapBundle{
		Version:  0,
		Metadata: []byte("test metadata"),
		AltICC:   []byte("fake ICC profile"),
		GainMap:  []byte{0xFF, 0x0A, 0x00, 0x01},
	}
	got, err := ParseGainMap(WriteGainMap(b))
	if err != nil {
		t.Fatalf("ParseGainMap: %v", err)
	}
	if got.Version != b.Version || !bytes.Equal(got.Metadata, b.Metadata) ||
		!bytes.Equal(got.AltICC, b.AltICC) || !bytes.Equal(got.GainMap, b.GainMap) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, b)
	}
	if got.ColorEncoding != nil {
		t.Fatalf("ColorEncoding = %+v, want nil", got.ColorEncoding)
	}
}

func TestGainMapRoundTripWithColorEncoding(t *testing.T) {
	ce := headers.ColorEncoding{
		Space:  headers.ColorSpaceRGB,
		White:  headers.WhiteD65,
		Prim:   headers.PrimariesSRGB,
		TF:     headers.TransferFunction{Kind: headers.TFSRGB},
		Intent: headers.IntentRelative,
	}
	b := GainMapBundle{
		Version:       0,
		Metadata:      []byte{1, 2, 3, 4},
		ColorEncoding: &ce,
		GainMap:       []byte{0xFF, 0x0A},
	}
	got, err := ParseGainMap(WriteGainMap(b))
	if err != nil {
		t.Fatalf("ParseGainMap: %v", err)
	}
	if got.ColorEncoding == nil {
		t.Fatal("ColorEncoding = nil, want present")
	}
	if got.ColorEncoding.Space != ce.Space || got.ColorEncoding.TF.Kind != ce.TF.Kind {
		t.Fatalf("ColorEncoding = %+v, want %+v", *got.ColorEncoding, ce)
	}
}

func TestParseGainMapRejectsTruncation(t *testing.T) {
	b := GainMapBundle{Version: 0, Metadata: []byte{1, 2, 3}, GainMap: []byte{0xFF, 0x0A}}
	full := WriteGainMap(b)

	cases := []int{0, 1, 3}
	for _, n := range cases {
		if _, err := ParseGainMap(full[:n]); err == nil {
			t.Fatalf("ParseGainMap(%d bytes): want error, got nil", n)
		}
	}
	if _, err := ParseGainMap(full); err != nil {
		t.Fatalf("ParseGainMap(full): %v", err)
	}
}

func TestParseGainMapRejectsNonZeroVersion(t *testing.T) {
	data := []byte{1, 0, 0, 0, 0, 0, 0, 0}
	if _, err := ParseGainMap(data); err == nil {
		t.Fatal("ParseGainMap: want error for non-zero version, got nil")
	}
}
