package jxl

import "testing"

func TestColorTypeNumColorChannels(t *testing.T) {
	cases := []struct {
		ct   ColorType
		want int
	}{
		{ColorGrayscale, 1},
		{ColorGrayscaleAlpha, 2},
		{ColorRGB, 3},
		{ColorBGR, 3},
		{ColorRGBA, 4},
		{ColorBGRA, 4},
	}
	for _, c := range cases {
		if got := c.ct.NumColorChannels(); got != c.want {
			t.Errorf("ColorType(%d).NumColorChannels() = %d, want %d", c.ct, got, c.want)
		}
	}
}

func TestChannelOrder(t *testing.T) {
	cases := []struct {
		ct   ColorType
		want []int
	}{
		{ColorGrayscale, []int{-1}},
		{ColorGrayscaleAlpha, []int{-1, 3}},
		{ColorRGB, []int{0, 1, 2}},
		{ColorRGBA, []int{0, 1, 2, 3}},
		{ColorBGR, []int{2, 1, 0}},
		{ColorBGRA, []int{2, 1, 0, 3}},
	}
	for _, c := range cases {
		got := channelOrder(c.ct)
		if len(got) != len(c.want) {
			t.Fatalf("channelOrder(%d) = %v, want %v", c.ct, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("channelOrder(%d) = %v, want %v", c.ct, got, c.want)
			}
		}
	}
}

func TestSampleForRGBAndAlpha(t *testing.T) {
	img := &Image{R: []float64{0.25}, G: []float64{0.5}, B: []float64{0.75}}
	if v := sampleFor(img, 0, 0); v != 0.25 {
		t.Errorf("sampleFor(R) = %v, want 0.25", v)
	}
	if v := sampleFor(img, 1, 0); v != 0.5 {
		t.Errorf("sampleFor(G) = %v, want 0.5", v)
	}
	if v := sampleFor(img, 2, 0); v != 0.75 {
		t.Errorf("sampleFor(B) = %v, want 0.75", v)
	}
	if v := sampleFor(img, 3, 0); v != 1.0 {
		t.Errorf("sampleFor(alpha) = %v, want 1.0 (no alpha decode path)", v)
	}
}

func TestDataFormatBitsAndBytes(t *testing.T) {
	cases := []struct {
		df        DataFormat
		wantBits  int
		wantBytes int
	}{
		{DataFormat{Kind: FormatU8}, 8, 1},
		{DataFormat{Kind: FormatU8, Bits: 10}, 10, 1},
		{DataFormat{Kind: FormatU16}, 16, 2},
		{DataFormat{Kind: FormatU16, Bits: 12}, 12, 2},
		{DataFormat{Kind: FormatF16}, 0, 2},
		{DataFormat{Kind: FormatF32}, 0, 4},
	}
	for _, c := range cases {
		if got := c.df.bits(); got != c.wantBits {
			t.Errorf("DataFormat(%+v).bits() = %d, want %d", c.df, got, c.wantBits)
		}
		if got := c.df.bytesPerSample(); got != c.wantBytes {
			t.Errorf("DataFormat(%+v).bytesPerSample() = %d, want %d", c.df, got, c.wantBytes)
		}
	}
}

func TestWriteSampleU8Roundtrip(t *testing.T) {
	dst := make([]byte, 1)
	writeSample(dst, 1.0, DataFormat{Kind: FormatU8})
	if dst[0] != 255 {
		t.Errorf("writeSample(1.0, U8) = %d, want 255", dst[0])
	}
	writeSample(dst, 0.0, DataFormat{Kind: FormatU8})
	if dst[0] != 0 {
		t.Errorf("writeSample(0.0, U8) = %d, want 0", dst[0])
	}
	writeSample(dst, 2.0, DataFormat{Kind: FormatU8})
	if dst[0] != 255 {
		t.Errorf("writeSample(2.0, U8) = %d, want 255 (clamped)", dst[0])
	}
}

func TestPutU16Endian(t *testing.T) {
	dst := make([]byte, 2)
	putU16(dst, 0x1234, LittleEndian)
	if dst[0] != 0x34 || dst[1] != 0x12 {
		t.Fatalf("putU16 little endian = %x %x, want 34 12", dst[0], dst[1])
	}
	putU16(dst, 0x1234, BigEndian)
	if dst[0] != 0x12 || dst[1] != 0x34 {
		t.Fatalf("putU16 big endian = %x %x, want 12 34", dst[0], dst[1])
	}
}

func TestPutU32Endian(t *testing.T) {
	dst := make([]byte, 4)
	putU32(dst, 0x11223344, LittleEndian)
	want := []byte{0x44, 0x33, 0x22, 0x11}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("putU32 little endian = % x, want % x", dst, want)
		}
	}
	putU32(dst, 0x11223344, BigEndian)
	want = []byte{0x11, 0x22, 0x33, 0x44}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("putU32 big endian = % x, want % x", dst, want)
		}
	}
}

func TestFloat32ToFloat16(t *testing.T) {
	cases := []struct {
		in   float32
		want uint16
	}{
		{0.0, 0x0000},
		{1.0, 0x3C00},
		{0.5, 0x3800},
		{2.0, 0x4000},
	}
	for _, c := range cases {
		if got := float32ToFloat16(c.in); got != c.want {
			t.Errorf("float32ToFloat16(%v) = %#04x, want %#04x", c.in, got, c.want)
		}
	}
}

func TestPackPixelFormatGrayscale(t *testing.T) {
	img := &Image{Width: 2, Height: 1, R: []float64{1, 0}, G: []float64{1, 0}, B: []float64{1, 0}}
	buffers, err := packPixelFormat(img, PixelFormat{ColorType: ColorGrayscale, ColorDataFormat: DataFormat{Kind: FormatU8}})
	if err != nil {
		t.Fatalf("packPixelFormat: %v", err)
	}
	if len(buffers) != 1 || len(buffers[0]) != 2 {
		t.Fatalf("buffers = %v, want one 2-byte buffer", buffers)
	}
	if buffers[0][0] != 255 || buffers[0][1] != 0 {
		t.Fatalf("buffers[0] = %v, want [255 0]", buffers[0])
	}
}

func TestPackPixelFormatRejectsUnsupportedColorType(t *testing.T) {
	img := &Image{Width: 1, Height: 1, R: []float64{0}, G: []float64{0}, B: []float64{0}}
	_, err := packPixelFormat(img, PixelFormat{ColorType: ColorType(99), ColorDataFormat: DataFormat{Kind: FormatU8}})
	if err != ErrUnsupportedColorType {
		t.Fatalf("packPixelFormat error = %v, want %v", err, ErrUnsupportedColorType)
	}
}
