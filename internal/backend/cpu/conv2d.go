package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/holoprop/internal/parallel"
	"github.com/born-ml/holoprop/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// Per batch element:
//  1. Im2col: [C_in, H, W] -> col [C_in*K_h*K_w, H_out*W_out]
//  2. SGEMM:  kernel [C_out, C_in*K_h*K_w] @ col -> [C_out, H_out*W_out]
//
// The SGEMM result is already in [C_out, H_out, W_out] order, so it is
// written straight into the output plane.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.Tensor, stride, padding int) *tensor.Tensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	COut, CInK, KH, KW := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]

	if CIn != CInK {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", CIn, CInK))
	}

	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	output := tensor.Zeros(tensor.Shape{N, COut, HOut, WOut})

	colRows := CIn * KH * KW
	colCols := HOut * WOut
	in := input.Data()
	out := output.Data()
	k := blas32.General{Rows: COut, Cols: colRows, Stride: colRows, Data: kernel.Data()}

	parallel.ForChunks(N, func(start, end int) {
		col := make([]float32, colRows*colCols)
		for n := start; n < end; n++ {
			im2col(col, in[n*CIn*H*W:(n+1)*CIn*H*W], CIn, H, W, KH, KW, HOut, WOut, stride, padding)
			blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
				k,
				blas32.General{Rows: colRows, Cols: colCols, Stride: colCols, Data: col},
				0,
				blas32.General{Rows: COut, Cols: colCols, Stride: colCols, Data: out[n*COut*colCols : (n+1)*COut*colCols]},
			)
		}
	}, cpu.par)

	return output
}

// im2col lays one image [C, H, W] out as columns [C*K_h*K_w, H_out*W_out].
//
// Row r = (c, kh, kw) holds, for every output position, the input pixel the
// kernel tap (kh, kw) of channel c lands on (zero outside the padded border).
func im2col(col, img []float32, C, H, W, KH, KW, HOut, WOut, stride, padding int) {
	P := HOut * WOut
	row := 0
	for c := 0; c < C; c++ {
		plane := img[c*H*W : (c+1)*H*W]
		for kh := 0; kh < KH; kh++ {
			for kw := 0; kw < KW; kw++ {
				dst := col[row*P : (row+1)*P]
				for oh := 0; oh < HOut; oh++ {
					h := oh*stride - padding + kh
					if h < 0 || h >= H {
						for ow := 0; ow < WOut; ow++ {
							dst[oh*WOut+ow] = 0
						}
						continue
					}
					for ow := 0; ow < WOut; ow++ {
						w := ow*stride - padding + kw
						if w >= 0 && w < W {
							dst[oh*WOut+ow] = plane[h*W+w]
						} else {
							dst[oh*WOut+ow] = 0
						}
					}
				}
				row++
			}
		}
	}
}
