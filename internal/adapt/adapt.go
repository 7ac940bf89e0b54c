// Package adapt brings image tensors to the spatial size an encoder-decoder
// network requires and back to the size the caller asked for.
//
// Sizes are adjusted with a symmetric zero pad followed by a centered crop.
// For a total pad p the leading edge receives ceil(p/2) and the trailing
// edge floor(p/2); a crop of c removes ceil(c/2) from the leading edge and
// floor(c/2) from the trailing edge, so cropping undoes padding exactly.
package adapt

import (
	"fmt"

	"github.com/born-ml/holoprop/internal/tensor"
)

// ReshapeSize rounds dim up to the nearest multiple of multiple.
// Panics if multiple < 1 or dim < 0.
func ReshapeSize(dim, multiple int) int {
	if multiple < 1 {
		panic(fmt.Sprintf("adapt: multiple must be >= 1, got %d", multiple))
	}
	if dim < 0 {
		panic(fmt.Sprintf("adapt: negative dimension %d", dim))
	}
	return (dim + multiple - 1) / multiple * multiple
}

// WorkingSize applies ReshapeSize to both spatial dimensions.
func WorkingSize(hw [2]int, multiple int) [2]int {
	return [2]int{ReshapeSize(hw[0], multiple), ReshapeSize(hw[1], multiple)}
}

// Adapt returns x resized to the spatial size target: padded with zeros
// where target is larger, then center-cropped where it is smaller.
//
// The result is always a fresh tensor. Adapt fails with a *tensor.ShapeError
// when x is not a non-empty rank-4 image or target is not positive.
func Adapt(x *tensor.Tensor, target [2]int) (*tensor.Tensor, error) {
	if err := tensor.CheckImage("adapt", x, 0); err != nil {
		return nil, err
	}
	if target[0] <= 0 || target[1] <= 0 {
		return nil, &tensor.ShapeError{
			Op:     "adapt",
			Got:    x.Shape(),
			Detail: fmt.Sprintf("invalid target size %dx%d", target[0], target[1]),
		}
	}
	return Crop(Pad(x, target), target), nil
}

// Pad zero-pads each spatial dimension of x that is smaller than target.
// Dimensions already at least as large are left alone.
func Pad(x *tensor.Tensor, target [2]int) *tensor.Tensor {
	hw := x.Shape().Spatial()
	out := [2]int{max(hw[0], target[0]), max(hw[1], target[1])}
	dst := tensor.Zeros(x.Shape().WithSpatial(out))

	// Destination offsets are the leading pads.
	off := [2]int{lead(out[0] - hw[0]), lead(out[1] - hw[1])}
	copyWindow(dst, x, off, [2]int{}, hw)
	return dst
}

// Crop center-crops each spatial dimension of x that is larger than target.
// Dimensions already at most as large are left alone.
func Crop(x *tensor.Tensor, target [2]int) *tensor.Tensor {
	hw := x.Shape().Spatial()
	out := [2]int{min(hw[0], target[0]), min(hw[1], target[1])}
	dst := tensor.Zeros(x.Shape().WithSpatial(out))

	off := [2]int{lead(hw[0] - out[0]), lead(hw[1] - out[1])}
	copyWindow(dst, x, [2]int{}, off, out)
	return dst
}

// lead returns the share of an adjustment of n applied to the leading edge.
func lead(n int) int {
	return n - n/2
}

// copyWindow copies a size window of every plane of src starting at srcOff
// into dst starting at dstOff. Both tensors share batch and channel dims.
func copyWindow(dst, src *tensor.Tensor, dstOff, srcOff, size [2]int) {
	s := src.Shape()
	planes := s[tensor.AxisBatch] * s[tensor.AxisChannel]
	srcHW := s.Spatial()
	dstHW := dst.Shape().Spatial()

	sd, dd := src.Data(), dst.Data()
	for p := 0; p < planes; p++ {
		sp := sd[p*srcHW[0]*srcHW[1]:]
		dp := dd[p*dstHW[0]*dstHW[1]:]
		for y := 0; y < size[0]; y++ {
			si := (srcOff[0]+y)*srcHW[1] + srcOff[1]
			di := (dstOff[0]+y)*dstHW[1] + dstOff[1]
			copy(dp[di:di+size[1]], sp[si:si+size[1]])
		}
	}
}
