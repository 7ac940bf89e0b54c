// Package imageio converts between PNG files and image tensors: target
// images in, SLM phase maps out.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/born-ml/holoprop/internal/field"
	"github.com/born-ml/holoprop/internal/tensor"
)

// DecodePNG reads a PNG as a [1, channels, H, W] tensor with values in [0, 1].
// channels is 1 (luminance) or 3 (RGB).
func DecodePNG(r io.Reader, channels int) (*tensor.Tensor, error) {
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("imageio: unsupported channel count %d", channels)
	}
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("imageio: %w", err)
	}

	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	out := tensor.Zeros(tensor.Shape{1, channels, h, w})
	data := out.Data()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			i := y*w + x
			if channels == 1 {
				g := color.Gray16Model.Convert(c).(color.Gray16)
				data[i] = float32(g.Y) / math.MaxUint16
				continue
			}
			rv, gv, bv, _ := c.RGBA()
			data[i] = float32(rv) / math.MaxUint16
			data[h*w+i] = float32(gv) / math.MaxUint16
			data[2*h*w+i] = float32(bv) / math.MaxUint16
		}
	}
	return out, nil
}

// LoadPNG reads a PNG file. See DecodePNG.
func LoadPNG(path string, channels int) (*tensor.Tensor, error) {
	//nolint:gosec // G304: input paths come from the command line.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: %w", err)
	}
	defer func() {
		_ = f.Close() // Read-only file
	}()
	return DecodePNG(f, channels)
}

// PhaseImage maps batch element b of a [batch, 1, H, W] phase map to an
// 8-bit grayscale image. Phases are wrapped into (-π, π] and mapped
// linearly so that π is white.
func PhaseImage(phase *tensor.Tensor, b int) (*image.Gray, error) {
	if err := tensor.CheckImage("imageio", phase, 1); err != nil {
		return nil, err
	}
	s := phase.Shape()
	if b < 0 || b >= s[tensor.AxisBatch] {
		return nil, fmt.Errorf("imageio: batch index %d out of range [0, %d)", b, s[tensor.AxisBatch])
	}

	hw := s.Spatial()
	img := image.NewGray(image.Rect(0, 0, hw[1], hw[0]))
	plane := phase.Data()[b*hw[0]*hw[1] : (b+1)*hw[0]*hw[1]]
	for i, p := range plane {
		v := (field.Wrap(float64(p)) + math.Pi) / (2 * math.Pi)
		img.Pix[i] = uint8(math.Round(v * math.MaxUint8))
	}
	return img, nil
}

// SavePhasePNG writes batch element b of a phase map as a grayscale PNG.
func SavePhasePNG(path string, phase *tensor.Tensor, b int) (err error) {
	img, err := PhaseImage(phase, b)
	if err != nil {
		return err
	}

	//nolint:gosec // G304: output paths come from the command line.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("imageio: %w", cerr)
		}
	}()
	return png.Encode(f, img)
}
