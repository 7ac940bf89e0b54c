// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/holoprop/tensor"
)

func TestPublicAPI(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	require.NoError(t, err)

	y := tensor.Cat([]*tensor.Tensor{x, tensor.Full(tensor.Shape{1, 1, 2, 2}, 5)}, tensor.AxisChannel)
	assert.Equal(t, tensor.Shape{1, 2, 2, 2}, y.Shape())
	assert.Equal(t, float32(5), y.At(0, 1, 1, 1))
	assert.NoError(t, tensor.CheckImage("test", y, 2))

	err = tensor.CheckImage("test", tensor.Zeros(tensor.Shape{2, 2}), 0)
	var se *tensor.ShapeError
	assert.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, tensor.ErrShape)
}
