package tensor

import (
	"fmt"
	"slices"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// Image tensor axes.
const (
	AxisBatch   = 0
	AxisChannel = 1
	AxisHeight  = 2
	AxisWidth   = 3
)

// NumElements returns the product of the dimensions; 1 for a scalar.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Validate reports the first non-positive dimension.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d <= 0 }); i >= 0 {
		return fmt.Errorf("tensor: dimension %d is %d, want > 0", i, s[i])
	}
	return nil
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of s.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// ComputeStrides returns row-major element strides: the last axis is
// contiguous and each earlier axis steps over all later ones.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// Spatial returns the (height, width) pair of a rank-4 image shape.
// Panics for any other rank.
func (s Shape) Spatial() [2]int {
	if len(s) != 4 {
		panic(fmt.Sprintf("spatial: expected 4D shape [N,C,H,W], got %dD", len(s)))
	}
	return [2]int{s[AxisHeight], s[AxisWidth]}
}

// WithSpatial returns a copy of a rank-4 shape with its spatial dimensions replaced.
func (s Shape) WithSpatial(hw [2]int) Shape {
	out := s.Clone()
	out[AxisHeight], out[AxisWidth] = hw[0], hw[1]
	return out
}

// WithChannels returns a copy of a rank-4 shape with its channel dimension replaced.
func (s Shape) WithChannels(c int) Shape {
	out := s.Clone()
	out[AxisChannel] = c
	return out
}
