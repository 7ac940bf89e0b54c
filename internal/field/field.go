// Package field holds complex optical fields and converts them to and from
// amplitude/phase image tensors.
package field

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/born-ml/holoprop/internal/tensor"
)

// Field is a complex wavefront sampled on a [batch, 1, height, width] grid.
// Data is stored row-major in complex128.
type Field struct {
	shape tensor.Shape
	data  []complex128
}

// New returns a zero field of the given [batch, 1, height, width] shape.
// Panics if the shape is not a valid single-channel image shape.
func New(shape tensor.Shape) *Field {
	if len(shape) != 4 || shape[tensor.AxisChannel] != 1 {
		panic(fmt.Sprintf("field: expected shape [N,1,H,W], got %v", shape))
	}
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("field: %v", err))
	}
	return &Field{shape: shape.Clone(), data: make([]complex128, shape.NumElements())}
}

// Build returns amp * exp(i*phase) elementwise.
//
// Both tensors must be [batch, 1, height, width] with identical shapes;
// otherwise Build fails with a *tensor.ShapeError.
func Build(amp, phase *tensor.Tensor) (*Field, error) {
	if err := tensor.CheckImage("field.build", amp, 1); err != nil {
		return nil, err
	}
	if err := tensor.CheckImage("field.build", phase, 1); err != nil {
		return nil, err
	}
	if !amp.Shape().Equal(phase.Shape()) {
		return nil, &tensor.ShapeError{
			Op:     "field.build",
			Got:    phase.Shape(),
			Want:   amp.Shape(),
			Detail: "amplitude and phase shapes differ",
		}
	}

	f := New(amp.Shape())
	a, p := amp.Data(), phase.Data()
	for i := range f.data {
		sin, cos := math.Sincos(float64(p[i]))
		f.data[i] = complex(float64(a[i])*cos, float64(a[i])*sin)
	}
	return f, nil
}

// Decompose returns the magnitude and the argument of f as two
// [batch, 1, height, width] tensors. Phases lie in (-π, π].
func Decompose(f *Field) (amp, phase *tensor.Tensor) {
	amp = tensor.Zeros(f.shape)
	phase = tensor.Zeros(f.shape)

	a, p := amp.Data(), phase.Data()
	for i, v := range f.data {
		a[i] = float32(cmplx.Abs(v))
		p[i] = float32(Wrap(cmplx.Phase(v)))
	}
	return amp, phase
}

// Wrap maps an angle into (-π, π].
func Wrap(theta float64) float64 {
	w := math.Remainder(theta, 2*math.Pi)
	if w <= -math.Pi {
		w += 2 * math.Pi
	}
	return w
}

// Shape returns a copy of the field shape.
func (f *Field) Shape() tensor.Shape {
	return f.shape.Clone()
}

// Data returns the underlying samples. Modifying them modifies the field.
func (f *Field) Data() []complex128 {
	return f.data
}

// Planes returns the number of 2-D planes (the batch size).
func (f *Field) Planes() int {
	return f.shape[tensor.AxisBatch]
}

// Plane returns the samples of plane b, shared with the field.
func (f *Field) Plane(b int) []complex128 {
	n := f.shape[tensor.AxisHeight] * f.shape[tensor.AxisWidth]
	return f.data[b*n : (b+1)*n]
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	out := &Field{shape: f.shape.Clone(), data: make([]complex128, len(f.data))}
	copy(out.data, f.data)
	return out
}

// String returns a short description of the field.
func (f *Field) String() string {
	return fmt.Sprintf("Field%v", []int(f.shape))
}
