// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/holoprop/internal/tensor"
)

// Tensor is a dense float32 tensor.
type Tensor = tensor.Tensor

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4, 5} is a batch of 2 images with 3 channels of 4x5 pixels.
type Shape = tensor.Shape

// ShapeError reports a tensor whose layout does not match an operation.
type ShapeError = tensor.ShapeError

// ErrShape is matched by every *ShapeError.
var ErrShape = tensor.ErrShape

// Image tensor axes.
const (
	AxisBatch   = tensor.AxisBatch
	AxisChannel = tensor.AxisChannel
	AxisHeight  = tensor.AxisHeight
	AxisWidth   = tensor.AxisWidth
)

// Zeros creates a zero-filled tensor. Panics on an invalid shape.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// FromSlice creates a tensor holding a copy of data.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Cat concatenates tensors along dim.
func Cat(tensors []*Tensor, dim int) *Tensor {
	return tensor.Cat(tensors, dim)
}

// CheckImage validates a rank-4 image tensor and, when channels > 0,
// its channel count.
func CheckImage(op string, t *Tensor, channels int) error {
	return tensor.CheckImage(op, t, channels)
}
