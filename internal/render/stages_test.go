package render

import "testing"

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

func TestHorizontalChromaUpsampleDoublesWidth(t *testing.T) {
	in := &Plane{Width: 3, Height: 1, Data: []float64{2, 4, 6}}
	ctx := &RunContext{Planes: map[int]*Plane{0: in}}
	s := NewHorizontalChromaUpsample(0, TypeYCbCr)
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := ctx.Planes[0]
	if out.Width != 6 || out.Height != 1 {
		t.Fatalf("dims = %dx%d, want 6x1", out.Width, out.Height)
	}
	want := []float64{2.0, 2.5, 3.5, 4.5, 5.5, 6.0}
	for i, v := range want {
		if !almostEqual(out.Data[i], v) {
			t.Fatalf("out[%d] = %v, want %v", i, out.Data[i], v)
		}
	}
}

func TestVerticalChromaUpsampleDoublesHeight(t *testing.T) {
	in := &Plane{Width: 1, Height: 3, Data: []float64{2, 4, 6}}
	ctx := &RunContext{Planes: map[int]*Plane{0: in}}
	s := NewVerticalChromaUpsample(0, TypeYCbCr)
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := ctx.Planes[0]
	if out.Width != 1 || out.Height != 6 {
		t.Fatalf("dims = %dx%d, want 1x6", out.Width, out.Height)
	}
	want := []float64{2.0, 2.5, 3.5, 4.5, 5.5, 6.0}
	for i, v := range want {
		if !almostEqual(out.Data[i], v) {
			t.Fatalf("out[%d] = %v, want %v", i, out.Data[i], v)
		}
	}
}

func TestYcbcrToRgbNeutralChromaIsIdentity(t *testing.T) {
	y := &Plane{Width: 1, Height: 1, Data: []float64{0.5}}
	cb := &Plane{Width: 1, Height: 1, Data: []float64{0.5}}
	cr := &Plane{Width: 1, Height: 1, Data: []float64{0.5}}
	ctx := &RunContext{Planes: map[int]*Plane{0: y, 1: cb, 2: cr}}
	s := NewYcbcrToRgb(0, 1, 2)
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !almostEqual(y.Data[0], 0.5) || !almostEqual(cb.Data[0], 0.5) || !almostEqual(cr.Data[0], 0.5) {
		t.Fatalf("r,g,b = %v,%v,%v, want 0.5,0.5,0.5", y.Data[0], cb.Data[0], cr.Data[0])
	}
}

func TestYcbcrToRgbKnownPixel(t *testing.T) {
	y := &Plane{Width: 1, Height: 1, Data: []float64{0.5}}
	cb := &Plane{Width: 1, Height: 1, Data: []float64{0.5}}
	cr := &Plane{Width: 1, Height: 1, Data: []float64{0.75}}
	ctx := &RunContext{Planes: map[int]*Plane{0: y, 1: cb, 2: cr}}
	s := NewYcbcrToRgb(0, 1, 2)
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	wantR := 0.5 + 1.402*0.25
	wantG := 0.5 - 0.714136*0.25
	wantB := 0.5
	if !almostEqual(y.Data[0], wantR) {
		t.Fatalf("r = %v, want %v", y.Data[0], wantR)
	}
	if !almostEqual(cb.Data[0], wantG) {
		t.Fatalf("g = %v, want %v", cb.Data[0], wantG)
	}
	if !almostEqual(cr.Data[0], wantB) {
		t.Fatalf("b = %v, want %v", cr.Data[0], wantB)
	}
}

func TestConvertModularToF32UsesPerChannelBitDepth(t *testing.T) {
	p := &Plane{Width: 2, Height: 1, Data: []float64{0, 3}} // 2-bit channel, max 3
	ctx := &RunContext{Planes: map[int]*Plane{0: p}, ChannelBitDepth: map[int]int{0: 2}}
	s := NewConvertModularToF32(0)
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !almostEqual(p.Data[0], 0) || !almostEqual(p.Data[1], 1) {
		t.Fatalf("data = %v, want [0, 1]", p.Data)
	}
}

func TestOrientPixelMapsEveryOrientation(t *testing.T) {
	const w, h = 3, 2
	cases := []struct {
		o              Orientation
		xd, yd         int
	}{
		{OrientIdentity, 0, 0},
		{OrientFlipH, 2, 0},
		{OrientFlipV, 0, 1},
		{OrientRotate180, 2, 1},
		{OrientTranspose, 0, 0},
		{OrientRotate90, 1, 0},
		{OrientAntiTranspose, 1, 2},
		{OrientRotate270, 0, 2},
	}
	for _, c := range cases {
		xd, yd := orientPixel(c.o, 0, 0, w, h)
		if xd != c.xd || yd != c.yd {
			t.Fatalf("orientPixel(%v,0,0,%d,%d) = (%d,%d), want (%d,%d)", c.o, w, h, xd, yd, c.xd, c.yd)
		}
	}
}

func TestOrientedDimsSwapsForTransposingOrientations(t *testing.T) {
	w, h := OrientedDims(OrientIdentity, 3, 2)
	if w != 3 || h != 2 {
		t.Fatalf("Identity dims = %dx%d, want 3x2", w, h)
	}
	w, h = OrientedDims(OrientRotate90, 3, 2)
	if w != 2 || h != 3 {
		t.Fatalf("Rotate90 dims = %dx%d, want 2x3", w, h)
	}
}

func TestMirrorReflectsAtBorders(t *testing.T) {
	cases := []struct{ v, size, want int }{
		{-1, 4, 0}, {-2, 4, 1}, {4, 4, 3}, {5, 4, 2}, {2, 4, 2},
	}
	for _, c := range cases {
		if got := mirror(c.v, c.size); got != c.want {
			t.Fatalf("mirror(%d,%d) = %d, want %d", c.v, c.size, got, c.want)
		}
	}
}
