package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/holoprop/internal/parallel"
	"github.com/born-ml/holoprop/internal/tensor"
)

// ConvTranspose2D performs a 2D transposed convolution (fractionally strided
// convolution), the upsampling step of an encoder-decoder.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [in_channels, out_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
//	out_h = (height - 1)*stride - 2*padding + kernel_h
//	out_w = (width - 1)*stride - 2*padding + kernel_w
//
// Per batch element:
//  1. SGEMM:  kernel^T [C_out*K_h*K_w, C_in] @ input [C_in, H*W] -> cols
//  2. Col2im: scatter-add cols into the [C_out, H_out, W_out] plane
func (cpu *CPUBackend) ConvTranspose2D(input, kernel *tensor.Tensor, stride, padding int) *tensor.Tensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv_transpose2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv_transpose2d: kernel must be 4D [C_in,C_out,K_h,K_w], got %dD", len(kernelShape)))
	}

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	CInK, COut, KH, KW := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]

	if CIn != CInK {
		panic(fmt.Sprintf("conv_transpose2d: input channels %d != kernel channels %d", CIn, CInK))
	}

	HOut := (H-1)*stride - 2*padding + KH
	WOut := (W-1)*stride - 2*padding + KW
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv_transpose2d: invalid output dimensions: out_h=%d, out_w=%d", HOut, WOut))
	}

	output := tensor.Zeros(tensor.Shape{N, COut, HOut, WOut})

	colRows := COut * KH * KW
	P := H * W
	in := input.Data()
	out := output.Data()
	k := blas32.General{Rows: CIn, Cols: colRows, Stride: colRows, Data: kernel.Data()}

	parallel.ForChunks(N, func(start, end int) {
		cols := make([]float32, colRows*P)
		for n := start; n < end; n++ {
			blas32.Gemm(blas.Trans, blas.NoTrans, 1,
				k,
				blas32.General{Rows: CIn, Cols: P, Stride: P, Data: in[n*CIn*P : (n+1)*CIn*P]},
				0,
				blas32.General{Rows: colRows, Cols: P, Stride: P, Data: cols},
			)
			col2im(out[n*COut*HOut*WOut:(n+1)*COut*HOut*WOut], cols, COut, H, W, KH, KW, HOut, WOut, stride, padding)
		}
	}, cpu.par)

	return output
}

// col2im scatter-adds columns [C*K_h*K_w, H*W] into an image [C, H_out, W_out].
func col2im(img, cols []float32, C, H, W, KH, KW, HOut, WOut, stride, padding int) {
	P := H * W
	row := 0
	for c := 0; c < C; c++ {
		plane := img[c*HOut*WOut : (c+1)*HOut*WOut]
		for kh := 0; kh < KH; kh++ {
			for kw := 0; kw < KW; kw++ {
				src := cols[row*P : (row+1)*P]
				for h := 0; h < H; h++ {
					oh := h*stride - padding + kh
					if oh < 0 || oh >= HOut {
						continue
					}
					for w := 0; w < W; w++ {
						ow := w*stride - padding + kw
						if ow >= 0 && ow < WOut {
							plane[oh*WOut+ow] += src[h*W+w]
						}
					}
				}
				row++
			}
		}
	}
}
