package optics

import "gonum.org/v1/gonum/dsp/fourier"

// fft2 computes in-place 2-D DFTs of row-major h x w planes as row
// transforms followed by column transforms.
//
// An fft2 holds scratch buffers and is not safe for concurrent use.
type fft2 struct {
	h, w int
	rows *fourier.CmplxFFT
	cols *fourier.CmplxFFT
	col  []complex128
}

func newFFT2(h, w int) *fft2 {
	return &fft2{
		h:    h,
		w:    w,
		rows: fourier.NewCmplxFFT(w),
		cols: fourier.NewCmplxFFT(h),
		col:  make([]complex128, h),
	}
}

// forward replaces plane by its unnormalized spectrum.
func (t *fft2) forward(plane []complex128) {
	t.apply(plane, false)
}

// inverse replaces a spectrum by its plane, including the 1/(h*w) factor.
func (t *fft2) inverse(plane []complex128) {
	t.apply(plane, true)
	scale := complex(1/float64(t.h*t.w), 0)
	for i := range plane {
		plane[i] *= scale
	}
}

func (t *fft2) apply(plane []complex128, inverse bool) {
	for y := 0; y < t.h; y++ {
		row := plane[y*t.w : (y+1)*t.w]
		if inverse {
			t.rows.Sequence(row, row)
		} else {
			t.rows.Coefficients(row, row)
		}
	}

	for x := 0; x < t.w; x++ {
		for y := 0; y < t.h; y++ {
			t.col[y] = plane[y*t.w+x]
		}
		if inverse {
			t.cols.Sequence(t.col, t.col)
		} else {
			t.cols.Coefficients(t.col, t.col)
		}
		for y := 0; y < t.h; y++ {
			plane[y*t.w+x] = t.col[y]
		}
	}
}
