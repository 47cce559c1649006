// Package modular implements the predictive, tree-coded lossless engine
// (spec.md §4.7): channel buffers, the MA-tree predictor walk, and the
// RCT/palette/squeeze inverse transforms.
//
// Grounded on internal/lossless/decode_image.go's tiled per-channel
// buffer management and internal/lossless/transform.go's
// Type+params Transform struct idiom, generalized from VP8L's fixed
// four-transform pipeline to an arbitrary ordered transform list over
// an arbitrary channel count.
package modular

// ChannelInfo describes one decoded plane: its pixel dimensions and,
// for tiled (non-meta) channels, the shift applied relative to the
// frame's full resolution.
type ChannelInfo struct {
	Width, Height int
	ShiftX, ShiftY int
	Meta           bool // meta channels (e.g. palette index tables) carry no shift and are not tiled
}

// Channel holds one fully decoded (or in-progress) plane of i32
// samples, row-major.
type Channel struct {
	Info ChannelInfo
	Data []int32 // len == Info.Width * Info.Height
}

// NewChannel allocates a zeroed channel of the given size.
func NewChannel(info ChannelInfo) *Channel {
	return &Channel{Info: info, Data: make([]int32, info.Width*info.Height)}
}

func (c *Channel) at(x, y int) int32 {
	if x < 0 || y < 0 || x >= c.Info.Width || y >= c.Info.Height {
		return 0
	}
	return c.Data[y*c.Info.Width+x]
}

func (c *Channel) set(x, y int, v int32) {
	c.Data[y*c.Info.Width+x] = v
}
