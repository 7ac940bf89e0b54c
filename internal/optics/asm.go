package optics

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/born-ml/holoprop/internal/field"
	"github.com/born-ml/holoprop/internal/parallel"
	"github.com/born-ml/holoprop/internal/tensor"
)

// ASM propagates fields with the angular spectrum method:
//
//	U(z) = IFFT2( FFT2(U(0)) * H ),  H = exp(i 2π z sqrt(1/λ² - fx² - fy²))
//
// Evanescent components are dropped. With BandLimit, frequencies beyond
// 1/(λ sqrt((2 Δf z)² + 1)) per axis are dropped as well, where Δf is the
// frequency step of the (possibly padded) grid.
//
// Transfer functions are cached per grid size. ASM is safe for concurrent use.
type ASM struct {
	params Params
	par    parallel.Config

	mu      sync.Mutex
	kernels map[[2]int][]complex128
}

// NewASM creates an ASM operator with the default parallel configuration.
func NewASM(params Params) (*ASM, error) {
	return NewASMWithConfig(params, parallel.DefaultConfig())
}

// NewASMWithConfig creates an ASM operator with a custom parallel configuration.
func NewASMWithConfig(params Params, par parallel.Config) (*ASM, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &ASM{
		params:  params,
		par:     par,
		kernels: make(map[[2]int][]complex128),
	}, nil
}

// Params returns the propagation parameters.
func (a *ASM) Params() Params {
	return a.params
}

// Propagate returns f propagated over the configured distance.
// Each batch plane is propagated independently; f is not modified.
func (a *ASM) Propagate(f *field.Field) (*field.Field, error) {
	if f == nil {
		return nil, &tensor.ShapeError{Op: "asm", Detail: "nil field"}
	}

	out := f.Clone()
	if a.params.Distance == 0 {
		return out, nil
	}

	hw := f.Shape().Spatial()
	size := hw
	if a.params.LinearConv {
		size = [2]int{2 * hw[0], 2 * hw[1]}
	}
	off := [2]int{lead(size[0] - hw[0]), lead(size[1] - hw[1])}
	kernel := a.transfer(size)

	parallel.For(f.Planes(), func(b int) {
		t := newFFT2(size[0], size[1])
		buf := make([]complex128, size[0]*size[1])
		dst := out.Plane(b)

		embed(buf, size, dst, hw, off)
		t.forward(buf)
		for i, h := range kernel {
			buf[i] *= h
		}
		t.inverse(buf)
		extract(dst, hw, buf, size, off)
	}, a.par)

	return out, nil
}

// transfer returns the cached transfer function for a grid size.
func (a *ASM) transfer(size [2]int) []complex128 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if k, ok := a.kernels[size]; ok {
		return k
	}
	k := transferFunction(a.params, size)
	a.kernels[size] = k
	return k
}

// transferFunction samples H on the FFT-ordered frequency grid of size.
func transferFunction(p Params, size [2]int) []complex128 {
	ny, nx := size[0], size[1]
	fy := fourier.NewCmplxFFT(ny)
	fx := fourier.NewCmplxFFT(nx)

	invLambda2 := 1 / (p.Wavelength * p.Wavelength)
	limitY := bandLimit(p, ny)
	limitX := bandLimit(p, nx)

	h := make([]complex128, ny*nx)
	for iy := 0; iy < ny; iy++ {
		v := fy.Freq(iy) / p.PixelPitch
		for ix := 0; ix < nx; ix++ {
			u := fx.Freq(ix) / p.PixelPitch

			arg := invLambda2 - u*u - v*v
			if arg <= 0 {
				continue
			}
			if p.BandLimit && (math.Abs(u) > limitX || math.Abs(v) > limitY) {
				continue
			}
			sin, cos := math.Sincos(2 * math.Pi * p.Distance * math.Sqrt(arg))
			h[iy*nx+ix] = complex(cos, sin)
		}
	}
	return h
}

// bandLimit returns the highest frequency along an axis of n samples that
// the sampled transfer function can represent without aliasing.
func bandLimit(p Params, n int) float64 {
	df := 1 / (float64(n) * p.PixelPitch)
	return 1 / (p.Wavelength * math.Sqrt(math.Pow(2*df*p.Distance, 2)+1))
}

// lead returns the share of a size change of n taken by the leading edge.
func lead(n int) int {
	return n - n/2
}

// embed writes the h x w plane src into the zeroed size plane dst at off.
func embed(dst []complex128, size [2]int, src []complex128, hw, off [2]int) {
	for y := 0; y < hw[0]; y++ {
		di := (off[0]+y)*size[1] + off[1]
		copy(dst[di:di+hw[1]], src[y*hw[1]:(y+1)*hw[1]])
	}
}

// extract reads the hw window at off of the size plane src into dst.
func extract(dst []complex128, hw [2]int, src []complex128, size, off [2]int) {
	for y := 0; y < hw[0]; y++ {
		si := (off[0]+y)*size[1] + off[1]
		copy(dst[y*hw[1]:(y+1)*hw[1]], src[si:si+hw[1]])
	}
}
