package tensor

import "fmt"

// Narrow returns a copy of length entries of dimension dim starting at start.
//
// Example:
//
//	ampPhase := tensor.Zeros(tensor.Shape{4, 2, 64, 64})
//	amp := ampPhase.Narrow(tensor.AxisChannel, 0, 1)   // [4, 1, 64, 64]
//	phase := ampPhase.Narrow(tensor.AxisChannel, 1, 1) // [4, 1, 64, 64]
func (t *Tensor) Narrow(dim, start, length int) *Tensor {
	ndim := len(t.shape)
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("narrow: dimension %d out of range for %dD tensor", dim, ndim))
	}
	if start < 0 || length <= 0 || start+length > t.shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, t.shape[dim]))
	}

	outShape := t.shape.Clone()
	outShape[dim] = length
	out := Zeros(outShape)

	// outer: product of dims before dim; inner: stride of dim.
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= t.shape[d]
	}
	inner := t.stride[dim]
	srcBlock := t.shape[dim] * inner
	dstBlock := length * inner

	for o := 0; o < outer; o++ {
		src := t.data[o*srcBlock+start*inner : o*srcBlock+(start+length)*inner]
		copy(out.data[o*dstBlock:(o+1)*dstBlock], src)
	}
	return out
}

// Channel returns a copy of channel c of an image tensor as a 1-channel tensor.
func (t *Tensor) Channel(c int) *Tensor {
	return t.Narrow(AxisChannel, c, 1)
}

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation dimension.
// Supports negative dim indexing (-1 = last dimension).
func Cat(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for %dD tensor", dim, ndim))
	}

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim
	out := Zeros(outShape)

	outer := 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	inner := out.stride[dim]
	dstBlock := totalDim * inner

	offset := 0
	for _, t := range tensors {
		block := t.shape[dim] * inner
		for o := 0; o < outer; o++ {
			copy(out.data[o*dstBlock+offset:o*dstBlock+offset+block], t.data[o*block:(o+1)*block])
		}
		offset += block
	}
	return out
}
