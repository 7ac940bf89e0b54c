package optics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/holoprop/internal/field"
	"github.com/born-ml/holoprop/internal/tensor"
)

// DPACOptions configures double phase amplitude coding.
type DPACOptions struct {
	ThreePi    bool // Wrap into [-3π/2, 3π/2) instead of [-π, π)
	MeanAdjust bool // Subtract the mean phase of each plane before wrapping
}

// DPAC encodes a complex field into a phase-only SLM pattern.
//
// Each amplitude plane is normalized by its maximum, then every pixel gets
// one of the two phases φ - acos(a) and φ + acos(a) on a checkerboard:
// φ + acos(a) where row + column is odd, φ - acos(a) elsewhere.
// Optionally the field is first propagated back to the SLM plane.
type DPAC struct {
	prop Propagator // nil encodes in place
	opts DPACOptions
}

// NewDPAC creates an encoder. A non-nil prop is applied to the target field
// before encoding, typically an ASM with a negative distance.
func NewDPAC(prop Propagator, opts DPACOptions) *DPAC {
	return &DPAC{prop: prop, opts: opts}
}

// MaxPhase returns the width of the output phase range.
func (d *DPAC) MaxPhase() float64 {
	if d.opts.ThreePi {
		return 3 * math.Pi
	}
	return 2 * math.Pi
}

// Encode returns the normalized amplitude and the double phase pattern for
// the field amp * exp(i*phase). Both inputs must be [batch, 1, H, W].
func (d *DPAC) Encode(amp, phase *tensor.Tensor) (encAmp, slmPhase *tensor.Tensor, err error) {
	f, err := field.Build(amp, phase)
	if err != nil {
		return nil, nil, err
	}
	if d.prop != nil {
		if f, err = d.prop.Propagate(f); err != nil {
			return nil, nil, err
		}
	}
	// Negative amplitudes fold into |a| with phase φ+π.
	amp, phase = field.Decompose(f)

	shape := amp.Shape()
	hw := shape.Spatial()
	n := hw[0] * hw[1]
	encAmp = tensor.Zeros(shape)
	slmPhase = tensor.Zeros(shape)
	maxPhase := d.MaxPhase()

	a := make([]float64, n)
	p := make([]float64, n)
	for b := 0; b < shape[tensor.AxisBatch]; b++ {
		toFloat64(a, amp.Data()[b*n:(b+1)*n])
		toFloat64(p, phase.Data()[b*n:(b+1)*n])

		if m := floats.Max(a); m > 0 {
			floats.Scale(1/m, a)
		}

		for y := 0; y < hw[0]; y++ {
			for x := 0; x < hw[1]; x++ {
				i := y*hw[1] + x
				offset := math.Acos(math.Max(-1, math.Min(1, a[i])))
				if (y+x)%2 == 1 {
					p[i] += offset
				} else {
					p[i] -= offset
				}
			}
		}

		if d.opts.MeanAdjust {
			floats.AddConst(-floats.Sum(p)/float64(n), p)
		}
		for i := range p {
			p[i] = wrapPhase(p[i], maxPhase)
		}

		toFloat32(encAmp.Data()[b*n:(b+1)*n], a)
		toFloat32(slmPhase.Data()[b*n:(b+1)*n], p)
	}
	return encAmp, slmPhase, nil
}

// wrapPhase maps x into [-maxPhase/2, maxPhase/2).
func wrapPhase(x, maxPhase float64) float64 {
	w := math.Mod(x+maxPhase/2, maxPhase)
	if w < 0 {
		w += maxPhase
	}
	if w >= maxPhase {
		w -= maxPhase
	}
	return w - maxPhase/2
}

func toFloat64(dst []float64, src []float32) {
	for i, v := range src {
		dst[i] = float64(v)
	}
}

func toFloat32(dst []float32, src []float64) {
	for i, v := range src {
		dst[i] = float32(v)
	}
}
