// Package jxl implements a decoder for the JPEG XL image format's
// core codestream: the ISOBMFF container, VarDCT and Modular coding
// paths, progressive multi-pass frames, and the post-decode render
// pipeline (chroma upsampling, XYB-to-sRGB, transfer functions,
// orientation).
//
// This package registers itself with the standard library's image
// package so that image.Decode can transparently read JPEG XL files,
// bare codestream or boxed container alike.
package jxl

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

func init() {
	image.RegisterFormat("jxl", "\xff\x0a", Decode, DecodeConfig)
	image.RegisterFormat("jxl", "\x00\x00\x00\x0cJXL \x0d\x0a\x87\x0a", Decode, DecodeConfig)
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a JPEG XL image from r and returns it as an
// *image.NRGBA, sRGB-encoded (or another transfer curve re-encoded to
// sRGB primaries is out of scope; see DESIGN.md).
func Decode(r io.Reader) (image.Image, error) {
	return DecodeWithOptions(r, DefaultOptions())
}

// DecodeWithOptions is Decode with caller-supplied Options, e.g. to
// request scene-linear output or a custom Limits/Logger.
func DecodeWithOptions(r io.Reader, opts Options) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("jxl: reading data: %w", err)
	}
	return decodeBytes(data, opts)
}

func decodeBytes(data []byte, opts Options) (image.Image, error) {
	img, err := decodeCore(data, opts)
	if err != nil {
		return nil, err
	}
	return img.toNRGBA(), nil
}

// DecodeConfig returns the color model and dimensions of a JPEG XL
// image without decoding any frame's pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("jxl: reading data: %w", err)
	}
	meta, err := readHeaderOnly(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(meta.Size.Width),
		Height:     int(meta.Size.Height),
	}, nil
}

// GetFeatures reads a JPEG XL file's dimensions, bit depth, alpha and
// animation presence without decoding any frame's pixel data: it
// parses only the file header, making it much cheaper than a full
// [Decode].
func GetFeatures(r io.Reader) (*Features, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("jxl: reading data: %w", err)
	}
	meta, err := readHeaderOnly(data)
	if err != nil {
		return nil, err
	}
	return featuresFromMetadata(meta), nil
}

// DecodeInto decodes r directly into caller-owned buffers packed to
// format, skipping the standard library image.Image conversion. It
// returns the source file's Features alongside any error. len(buffers)
// must equal 1 (color) plus the number of non-nil entries in
// format.ExtraChannelFormats; extra channels this decoder cannot yet
// produce (see DESIGN.md) are written as fully-transparent/zero
// placeholders sized per their requested format.
func DecodeInto(r io.Reader, opts Options, format PixelFormat, buffers [][]byte) (*Features, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("jxl: reading data: %w", err)
	}
	img, err := decodeCore(data, opts)
	if err != nil {
		return nil, err
	}
	packed, err := packPixelFormat(img, format)
	if err != nil {
		return nil, err
	}
	if len(buffers) != len(packed) {
		return nil, &WrongBufferCountError{Got: len(buffers), Want: len(packed)}
	}
	for i := range packed {
		if len(buffers[i]) < len(packed[i]) {
			return nil, ErrBufferTooSmall
		}
		copy(buffers[i], packed[i])
	}
	return img.Features, nil
}

// toNRGBA packs an Image into the standard library's *image.NRGBA,
// clamping samples to [0, 1] and quantizing to 8 bits per channel.
func (img *Image) toNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	n := img.Width * img.Height
	for i := 0; i < n && i < len(img.R); i++ {
		x, y := i%img.Width, i/img.Width
		o := out.PixOffset(x, y)
		out.Pix[o] = byte(clamp01(img.R[i])*255 + 0.5)
		out.Pix[o+1] = byte(clamp01(img.G[i])*255 + 0.5)
		out.Pix[o+2] = byte(clamp01(img.B[i])*255 + 0.5)
		out.Pix[o+3] = 255
	}
	return out
}
