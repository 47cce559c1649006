package jxl

import (
	"bytes"
	"testing"

	"github.com/gojxl/jxl/internal/container"
	"github.com/gojxl/jxl/internal/headers"
)

func TestDecodeInvalidSignature(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03}))
	if err == nil {
		t.Fatal("Decode: want error for non-JXL data, got nil")
	}
	var sigErr *InvalidSignatureError
	if !asInvalidSignature(err, &sigErr) {
		t.Fatalf("Decode error = %v (%T), want *InvalidSignatureError", err, err)
	}
}

func asInvalidSignature(err error, target **InvalidSignatureError) bool {
	if e, ok := err.(*InvalidSignatureError); ok {
		*target = e
		return true
	}
	return false
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(bytes.NewReader(nil)); err == nil {
		t.Fatal("Decode: want error for empty input, got nil")
	}
}

func TestGetFeaturesInvalidData(t *testing.T) {
	if _, err := GetFeatures(bytes.NewReader([]byte("not a jxl file"))); err == nil {
		t.Fatal("GetFeatures: want error for non-JXL data, got nil")
	}
}

func TestDecoderProcessNeedsMoreInput(t *testing.T) {
	d := NewDecoder(DefaultOptions())
	d.Feed(container.ContainerSignature) // signature only, no box header yet

	status, err := d.Process(false)
	if err != nil {
		t.Fatalf("Process: unexpected error %v", err)
	}
	if status.Complete != nil {
		t.Fatal("Process: want NeedsMoreInput, got Complete")
	}
	if status.NeedsMoreInput == nil {
		t.Fatal("Process: want NeedsMoreInput, got neither")
	}
}

func TestDecoderFlushPixelsUnsupported(t *testing.T) {
	d := NewDecoder(DefaultOptions())
	if _, err := d.FlushPixels(); err != ErrPartialFlushUnsupported {
		t.Fatalf("FlushPixels error = %v, want %v", err, ErrPartialFlushUnsupported)
	}
}

func TestFeaturesFromMetadata(t *testing.T) {
	m := headers.ImageMetadata{
		Size:          headers.Size{Width: 640, Height: 480},
		BitsPerSample: 8,
		XybEncoded:    true,
		HaveAnimation: true,
		Animation:     headers.Animation{NumLoops: 3},
		ExtraChannels: []headers.ExtraChannelInfo{
			{Type: headers.ExtraAlpha},
		},
	}
	f := featuresFromMetadata(m)
	if f.Width != 640 || f.Height != 480 {
		t.Fatalf("Width/Height = %d/%d, want 640/480", f.Width, f.Height)
	}
	if !f.HasAlpha {
		t.Fatal("HasAlpha = false, want true")
	}
	if f.NumExtraChannels != 1 {
		t.Fatalf("NumExtraChannels = %d, want 1", f.NumExtraChannels)
	}
	if f.Lossless {
		t.Fatal("Lossless = true, want false (XybEncoded implies lossy)")
	}
	if !f.HasAnimation || f.LoopCount != 3 {
		t.Fatalf("HasAnimation/LoopCount = %v/%d, want true/3", f.HasAnimation, f.LoopCount)
	}
}

func TestFeaturesFromMetadataLossless(t *testing.T) {
	m := headers.ImageMetadata{Size: headers.Size{Width: 1, Height: 1}, XybEncoded: false}
	f := featuresFromMetadata(m)
	if !f.Lossless {
		t.Fatal("Lossless = false, want true when XybEncoded is false")
	}
	if f.HasAlpha {
		t.Fatal("HasAlpha = true, want false with no extra channels")
	}
}
