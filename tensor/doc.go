// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the image tensors exchanged with holoprop.
//
// # Overview
//
// A Tensor is a dense, row-major float32 array. Images are rank 4,
// [batch, channels, height, width]; the channel meaning (intensity,
// amplitude, phase) depends on the pipeline stage and is always declared
// by the component that consumes it.
//
// # Basic Usage
//
//	import "github.com/born-ml/holoprop/tensor"
//
//	func main() {
//	    x := tensor.Zeros(tensor.Shape{1, 3, 1080, 1920})
//	    x.Set(0.5, 0, 0, 540, 960)
//
//	    amp := x.Channel(0)                              // [1, 1, 1080, 1920]
//	    pair := tensor.Cat([]*tensor.Tensor{amp, amp}, tensor.AxisChannel)
//	}
//
// # Errors
//
// Layout problems are reported as *ShapeError, which matches ErrShape
// under errors.Is.
package tensor
