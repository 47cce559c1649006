package refstore

import "testing"

func TestSaveAndReferenceRoundTrip(t *testing.T) {
	s := NewStore(4, 4, 1)
	buf := &Buffer{Width: 2, Height: 2, Channels: [][]float32{{1, 2, 3, 4}}}
	if err := s.Save(1, buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Reference(1)
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if got != buf {
		t.Fatalf("Reference(1) did not return the saved buffer")
	}
}

func TestSaveRejectsOutOfRangeSlot(t *testing.T) {
	s := NewStore(1, 1, 1)
	if err := s.Save(NumSlots, &Buffer{}); err != ErrInvalidReferenceSlot {
		t.Fatalf("Save(NumSlots,...): %v, want ErrInvalidReferenceSlot", err)
	}
}

func TestCompositeReplaceOverwritesCanvas(t *testing.T) {
	s := NewStore(2, 2, 1)
	s.canvas.Channels[0] = []float32{9, 9, 9, 9}
	src := &Buffer{Width: 2, Height: 2, Channels: [][]float32{{1, 2, 3, 4}}}
	s.Composite(src, BlendReplace, -1)
	want := []float32{1, 2, 3, 4}
	for i, v := range s.canvas.Channels[0] {
		if v != want[i] {
			t.Fatalf("canvas[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestCompositeAddAccumulates(t *testing.T) {
	s := NewStore(1, 1, 1)
	s.canvas.Channels[0][0] = 3
	src := &Buffer{Width: 1, Height: 1, Channels: [][]float32{{4}}}
	s.Composite(src, BlendAdd, -1)
	if s.canvas.Channels[0][0] != 7 {
		t.Fatalf("canvas[0] = %v, want 7", s.canvas.Channels[0][0])
	}
}

func TestCompositeBlendUsesAlpha(t *testing.T) {
	s := NewStore(1, 1, 2)
	s.canvas.Channels[0][0] = 0 // dst color
	src := &Buffer{Width: 1, Height: 1, Channels: [][]float32{{1}, {0.5}}} // color=1, alpha=0.5
	s.Composite(src, BlendBlend, 1)
	want := float32(0.5) // 1*0.5 + 0*0.5
	if got := s.canvas.Channels[0][0]; got != want {
		t.Fatalf("canvas[0] = %v, want %v", got, want)
	}
}

func TestCompositeOutOfBoundsOriginIsClipped(t *testing.T) {
	s := NewStore(2, 2, 1)
	src := &Buffer{Width: 2, Height: 2, OriginX: 1, OriginY: 1, Channels: [][]float32{{5, 5, 5, 5}}}
	s.Composite(src, BlendReplace, -1)
	// Only the bottom-right destination cell (1,1), which receives src's
	// top-left sample, should have been written.
	if s.canvas.Channels[0][1*2+1] != 5 {
		t.Fatalf("canvas[1][1] = %v, want 5", s.canvas.Channels[0][1*2+1])
	}
	if s.canvas.Channels[0][0] != 0 {
		t.Fatalf("canvas[0][0] = %v, want 0 (outside src after clipping)", s.canvas.Channels[0][0])
	}
}

func TestCropZeroFillsOutOfBounds(t *testing.T) {
	src := &Buffer{Width: 2, Height: 2, Channels: [][]float32{{1, 2, 3, 4}}}
	out := Crop(src, 1, 1, 2, 2)
	// Only (0,0) of the crop maps to src's (1,1) = 4; the rest is out of bounds.
	if out.Channels[0][0] != 4 {
		t.Fatalf("crop[0][0] = %v, want 4", out.Channels[0][0])
	}
	if out.Channels[0][1] != 0 || out.Channels[0][2] != 0 || out.Channels[0][3] != 0 {
		t.Fatalf("out-of-bounds crop cells should be zero: %v", out.Channels[0])
	}
}
