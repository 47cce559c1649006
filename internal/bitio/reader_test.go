package bitio

import "testing"

func TestReaderReadSplitsMatchCombined(t *testing.T) {
	// P4: read(a) then read(b) == read(a+b) interpreted LE, for a+b <= 56.
	data := []byte{0xAB, 0xCD, 0xEF, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC}
	for a := 0; a <= 28; a++ {
		for b := 0; a+b <= 56 && b <= 28; b++ {
			r1 := NewReader(data)
			lo, err := r1.Read(a)
			if err != nil {
				t.Fatalf("a=%d b=%d: %v", a, b, err)
			}
			hi, err := r1.Read(b)
			if err != nil {
				t.Fatalf("a=%d b=%d: %v", a, b, err)
			}
			combined := lo | (hi << uint(a))

			r2 := NewReader(data)
			want, err := r2.Read(a + b)
			if err != nil {
				t.Fatalf("a=%d b=%d: %v", a, b, err)
			}
			if combined != want {
				t.Fatalf("a=%d b=%d: got %#x, want %#x", a, b, combined, want)
			}
		}
	}
}

func TestReaderPeekTooLarge(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	if _, err := r.Peek(57); err != ErrPeekTooLarge {
		t.Fatalf("expected ErrPeekTooLarge, got %v", err)
	}
}

func TestReaderOutOfBounds(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.Read(9); err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
}

func TestReaderJumpToByteBoundary(t *testing.T) {
	r := NewReader([]byte{0x00, 0xFF})
	if _, err := r.Read(4); err != nil {
		t.Fatal(err)
	}
	if err := r.JumpToByteBoundary(); err != nil {
		t.Fatalf("unexpected padding error: %v", err)
	}
	if r.TotalBitsRead() != 8 {
		t.Fatalf("total bits read = %d, want 8", r.TotalBitsRead())
	}
}

func TestReaderJumpToByteBoundaryNonZero(t *testing.T) {
	r := NewReader([]byte{0x0F})
	if _, err := r.Read(2); err != nil {
		t.Fatal(err)
	}
	if err := r.JumpToByteBoundary(); err != ErrNonZeroPadding {
		t.Fatalf("expected ErrNonZeroPadding, got %v", err)
	}
}

func TestReaderSplitAt(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	r := NewReader(data)
	sub, err := r.SplitAt(3)
	if err != nil {
		t.Fatal(err)
	}
	v, err := sub.Read(8)
	if err != nil || v != 0x01 {
		t.Fatalf("sub read = %d, %v", v, err)
	}
	v2, err := r.Read(8)
	if err != nil || v2 != 0x04 {
		t.Fatalf("parent read = %d, %v, want 0x04", v2, err)
	}
}

func TestSmallBufferSlideAndRefill(t *testing.T) {
	src := []byte("0123456789abcdef")
	pos := 0
	read := func(dst []byte) int {
		n := copy(dst, src[pos:])
		pos += n
		return n
	}
	b := NewSmallBuffer(MinSmallBufferCapacity)
	b.Refill(read)
	if b.Len() != len(src) {
		t.Fatalf("buffered %d bytes, want %d", b.Len(), len(src))
	}
	out := make([]byte, 4)
	if n := b.Take(out); n != 4 || string(out) != "0123" {
		t.Fatalf("Take = %q (%d)", out, n)
	}
}
