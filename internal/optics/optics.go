// Package optics implements the physical operators of the holography
// pipeline: band-limited angular spectrum propagation (ASM) and double phase
// amplitude coding (DPAC).
//
// All lengths are in meters. Fields are sampled on a square pixel grid with
// pitch PixelPitch; a positive Distance propagates away from the source plane,
// a negative one propagates back toward it.
package optics

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/holoprop/internal/field"
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid optical parameters")

// Params describes a free-space propagation.
type Params struct {
	Wavelength float64 // Illumination wavelength
	PixelPitch float64 // Sampling interval of the field
	Distance   float64 // Propagation distance; negative propagates backwards
	LinearConv bool    // Zero-pad to twice the size to avoid circular wrap-around
	BandLimit  bool    // Apply the Matsushima-Shimobaba band limit
}

// Validate checks that the parameters describe a physical propagation.
func (p Params) Validate() error {
	switch {
	case !(p.Wavelength > 0) || math.IsInf(p.Wavelength, 0):
		return fmt.Errorf("%w: wavelength %g", ErrInvalidParams, p.Wavelength)
	case !(p.PixelPitch > 0) || math.IsInf(p.PixelPitch, 0):
		return fmt.Errorf("%w: pixel pitch %g", ErrInvalidParams, p.PixelPitch)
	case math.IsNaN(p.Distance) || math.IsInf(p.Distance, 0):
		return fmt.Errorf("%w: distance %g", ErrInvalidParams, p.Distance)
	}
	return nil
}

// Reversed returns a copy of p propagating over the same distance in the
// opposite direction.
func (p Params) Reversed() Params {
	p.Distance = -p.Distance
	return p
}

// Propagator maps a complex field to another plane.
type Propagator interface {
	Propagate(f *field.Field) (*field.Field, error)
}
