package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/holoprop/internal/parallel"
	"github.com/born-ml/holoprop/internal/tensor"
)

// AddChannelBias adds bias[c] to every pixel of channel c.
//
// Input shape: [batch, channels, height, width]
// Bias shape:  [channels]
func (cpu *CPUBackend) AddChannelBias(x, bias *tensor.Tensor) *tensor.Tensor {
	N, C, H, W := dims4("add_channel_bias", x)
	if bias.NumElements() != C {
		panic(fmt.Sprintf("add_channel_bias: bias has %d elements, expected %d", bias.NumElements(), C))
	}

	out := x.Clone()
	dst := out.Data()
	b := bias.Data()
	plane := H * W
	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			off := (n*C + c) * plane
			for i := off; i < off+plane; i++ {
				dst[i] += b[c]
			}
		}
	}
	return out
}

// InstanceNorm2D normalizes every (batch, channel) plane to zero mean and
// unit variance (biased estimator), then applies the optional per-channel
// affine weight and bias.
func (cpu *CPUBackend) InstanceNorm2D(x, weight, bias *tensor.Tensor, eps float64) *tensor.Tensor {
	N, C, H, W := dims4("instance_norm2d", x)
	plane := H * W

	out := tensor.Zeros(x.Shape())
	src := x.Data()
	dst := out.Data()

	parallel.ForBatch(N, C, func(n, c int) {
		off := (n*C + c) * plane
		p := src[off : off+plane]

		var mean float64
		for _, v := range p {
			mean += float64(v)
		}
		mean /= float64(plane)

		var variance float64
		for _, v := range p {
			d := float64(v) - mean
			variance += d * d
		}
		variance /= float64(plane)

		scale, shift := 1.0, 0.0
		if weight != nil {
			scale = float64(weight.Data()[c])
		}
		if bias != nil {
			shift = float64(bias.Data()[c])
		}

		inv := 1 / math.Sqrt(variance+eps)
		for i, v := range p {
			dst[off+i] = float32((float64(v)-mean)*inv*scale + shift)
		}
	}, cpu.par)

	return out
}

// BatchNorm2D applies inference-mode batch normalization with the stored
// running statistics: y = (x - mean[c]) / sqrt(var[c] + eps) * weight[c] + bias[c].
func (cpu *CPUBackend) BatchNorm2D(x, runningMean, runningVar, weight, bias *tensor.Tensor, eps float64) *tensor.Tensor {
	N, C, H, W := dims4("batch_norm2d", x)
	for name, p := range map[string]*tensor.Tensor{
		"running_mean": runningMean, "running_var": runningVar, "weight": weight, "bias": bias,
	} {
		if p.NumElements() != C {
			panic(fmt.Sprintf("batch_norm2d: %s has %d elements, expected %d", name, p.NumElements(), C))
		}
	}

	plane := H * W
	scale := make([]float32, C)
	shift := make([]float32, C)
	for c := 0; c < C; c++ {
		inv := 1 / math.Sqrt(float64(runningVar.Data()[c])+eps)
		s := float64(weight.Data()[c]) * inv
		scale[c] = float32(s)
		shift[c] = float32(float64(bias.Data()[c]) - float64(runningMean.Data()[c])*s)
	}

	out := tensor.Zeros(x.Shape())
	src := x.Data()
	dst := out.Data()
	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			off := (n*C + c) * plane
			for i := off; i < off+plane; i++ {
				dst[i] = src[i]*scale[c] + shift[c]
			}
		}
	}
	return out
}

func dims4(op string, x *tensor.Tensor) (n, c, h, w int) {
	s := x.Shape()
	if len(s) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input [N,C,H,W], got %dD", op, len(s)))
	}
	return s[0], s[1], s[2], s[3]
}
