// Package limits bounds decoder resource consumption and provides
// cooperative cancellation checkpoints, the generalization of the
// teacher's fixed compile-time dimension ceilings
// (internal/lossy and internal/lossless reject images above a hard
// byte/pixel cap) into a caller-configurable policy plus context.Context
// support for long-running decodes.
package limits

import (
	"context"

	"github.com/pkg/errors"
)

// Limits bounds the resources one decode is allowed to consume.
// Zero value fields mean "unbounded" except where noted.
type Limits struct {
	MaxPixels           uint64
	MaxExtraChannels    int
	MaxICCSize          uint64
	MaxTreeSize         int
	MaxPatches          int
	MaxSplinePoints     int
	MaxReferenceFrames  int
	MaxMemoryBytes      uint64
}

// Default matches typical desktop/server decode budgets: generous but
// not unbounded, intended for trusted local files.
var Default = Limits{
	MaxPixels:          1 << 30, // ~1 billion pixels
	MaxExtraChannels:   256,
	MaxICCSize:         16 << 20,
	MaxTreeSize:        1 << 20,
	MaxPatches:         1 << 20,
	MaxSplinePoints:    1 << 24,
	MaxReferenceFrames: 4,
	MaxMemoryBytes:     4 << 30,
}

// Safe tightens Default for decoding untrusted input: a malicious
// header claiming a 1-pixel image needs gigabytes of extra channels
// should fail fast rather than allocate.
var Safe = Limits{
	MaxPixels:          1 << 26, // ~64 megapixels
	MaxExtraChannels:   16,
	MaxICCSize:         1 << 20,
	MaxTreeSize:        1 << 16,
	MaxPatches:         1 << 12,
	MaxSplinePoints:    1 << 16,
	MaxReferenceFrames: 4,
	MaxMemoryBytes:     512 << 20,
}

// Restrictive is the tightest preset, suitable for thumbnail/preview
// pipelines processing fully untrusted third-party files.
var Restrictive = Limits{
	MaxPixels:          1 << 22, // ~4 megapixels
	MaxExtraChannels:   4,
	MaxICCSize:         1 << 16,
	MaxTreeSize:        1 << 12,
	MaxPatches:         1 << 8,
	MaxSplinePoints:    1 << 10,
	MaxReferenceFrames: 2,
	MaxMemoryBytes:     64 << 20,
}

var (
	ErrPixelLimitExceeded          = errors.New("limits: image exceeds the configured pixel limit")
	ErrExtraChannelLimitExceeded   = errors.New("limits: too many extra channels")
	ErrICCSizeLimitExceeded        = errors.New("limits: ICC profile exceeds the configured size limit")
	ErrTreeSizeLimitExceeded       = errors.New("limits: MA tree exceeds the configured size limit")
	ErrPatchLimitExceeded          = errors.New("limits: too many patches")
	ErrSplinePointLimitExceeded    = errors.New("limits: too many spline control points")
	ErrReferenceFrameLimitExceeded = errors.New("limits: too many stored reference frames")
	ErrMemoryLimitExceeded         = errors.New("limits: decode would exceed the configured memory budget")
	ErrCanceled                    = errors.New("limits: decode canceled")
)

// CheckPixels validates a width*height product (as uint64 to avoid
// overflow on 32-bit platforms) against l.MaxPixels.
func (l Limits) CheckPixels(width, height uint32) error {
	if l.MaxPixels == 0 {
		return nil
	}
	if uint64(width)*uint64(height) > l.MaxPixels {
		return ErrPixelLimitExceeded
	}
	return nil
}

func (l Limits) CheckExtraChannels(n int) error {
	if l.MaxExtraChannels != 0 && n > l.MaxExtraChannels {
		return ErrExtraChannelLimitExceeded
	}
	return nil
}

func (l Limits) CheckICCSize(n uint64) error {
	if l.MaxICCSize != 0 && n > l.MaxICCSize {
		return ErrICCSizeLimitExceeded
	}
	return nil
}

func (l Limits) CheckTreeSize(n int) error {
	if l.MaxTreeSize != 0 && n > l.MaxTreeSize {
		return ErrTreeSizeLimitExceeded
	}
	return nil
}

func (l Limits) CheckPatches(n int) error {
	if l.MaxPatches != 0 && n > l.MaxPatches {
		return ErrPatchLimitExceeded
	}
	return nil
}

func (l Limits) CheckSplinePoints(n int) error {
	if l.MaxSplinePoints != 0 && n > l.MaxSplinePoints {
		return ErrSplinePointLimitExceeded
	}
	return nil
}

func (l Limits) CheckReferenceFrames(n int) error {
	if l.MaxReferenceFrames != 0 && n > l.MaxReferenceFrames {
		return ErrReferenceFrameLimitExceeded
	}
	return nil
}

func (l Limits) CheckMemory(n uint64) error {
	if l.MaxMemoryBytes != 0 && n > l.MaxMemoryBytes {
		return ErrMemoryLimitExceeded
	}
	return nil
}

// Checkpoint polls ctx for cancellation/deadline expiry, intended to be
// called between sections/groups during a decode so a canceled context
// stops work promptly instead of running to completion.
func Checkpoint(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ErrCanceled, ctx.Err().Error())
	default:
		return nil
	}
}
