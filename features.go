package jxl

import "github.com/gojxl/jxl/internal/headers"

// Features describes a JPEG XL file's properties, as returned by
// [GetFeatures]: everything recoverable from the file header alone,
// without decoding any frame's pixel data.
type Features struct {
	Width  int
	Height int

	HasAlpha     bool
	NumExtraChannels int

	HasAnimation bool
	LoopCount    int // 0 means loop forever

	BitsPerSample int

	// Lossless reports whether the codestream never routes color
	// samples through the XYB opponent-color transform (xyb_encoded
	// false), the JPEG XL analog of the teacher's VP8-vs-VP8L split.
	Lossless bool
}

func featuresFromMetadata(m headers.ImageMetadata) *Features {
	f := &Features{
		Width:         int(m.Size.Width),
		Height:        int(m.Size.Height),
		NumExtraChannels: len(m.ExtraChannels),
		BitsPerSample: int(m.BitsPerSample),
		HasAnimation:  m.HaveAnimation,
		Lossless:      !m.XybEncoded,
	}
	if m.HaveAnimation {
		f.LoopCount = int(m.Animation.NumLoops)
	}
	for _, ec := range m.ExtraChannels {
		if ec.Type == headers.ExtraAlpha {
			f.HasAlpha = true
			break
		}
	}
	return f
}
