package nn

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/holoprop/internal/backend/cpu"
	"github.com/born-ml/holoprop/internal/tensor"
)

func smallUNet(in, out int) UNetConfig {
	return UNetConfig{
		InChannels:  in,
		OutChannels: out,
		NumDowns:    3,
		MinFeatures: 4,
		MaxFeatures: 8,
		Norm:        NormInstance,
		OuterSkip:   true,
	}
}

func randInput(seed int64, shape tensor.Shape) *tensor.Tensor {
	return Normal(shape, 0, 1, rand.New(rand.NewSource(seed)))
}

func TestUNet_ForwardShape(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name string
		cfg  UNetConfig
	}{
		{"outer skip", smallUNet(3, 1)},
		{"no outer skip", func() UNetConfig { c := smallUNet(3, 2); c.OuterSkip = false; return c }()},
		{"batch norm", func() UNetConfig { c := smallUNet(2, 1); c.Norm = NormBatch; return c }()},
		{"no norm", func() UNetConfig { c := smallUNet(1, 1); c.Norm = NormNone; return c }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUNet(tt.cfg, backend, rand.New(rand.NewSource(1)))
			x := randInput(2, tensor.Shape{2, tt.cfg.InChannels, 16, 24})
			y := u.Forward(x)
			assert.Equal(t, tensor.Shape{2, tt.cfg.OutChannels, 16, 24}, y.Shape())
		})
	}
}

func TestUNet_Multiple(t *testing.T) {
	assert.Equal(t, 8, smallUNet(1, 1).Multiple())
	assert.Equal(t, 256, DefaultUNetConfig(3, 1).Multiple())
}

func TestUNetConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultUNetConfig(3, 1).Validate())

	bad := []UNetConfig{
		func() UNetConfig { c := smallUNet(0, 1); return c }(),
		func() UNetConfig { c := smallUNet(1, 1); c.NumDowns = 1; return c }(),
		func() UNetConfig { c := smallUNet(1, 1); c.MaxFeatures = 2; return c }(),
		func() UNetConfig { c := smallUNet(1, 1); c.Norm = "group"; return c }(),
	}
	for i, c := range bad {
		assert.Error(t, c.Validate(), "case %d", i)
	}
	assert.Panics(t, func() { NewUNet(bad[0], cpu.New(), rand.New(rand.NewSource(1))) })
}

func TestUNet_ParameterNamesUnique(t *testing.T) {
	u := NewUNet(smallUNet(3, 1), cpu.New(), rand.New(rand.NewSource(1)))

	seen := map[string]bool{}
	for _, p := range u.Parameters() {
		assert.False(t, seen[p.Name()], "duplicate parameter %s", p.Name())
		seen[p.Name()] = true
	}
	assert.True(t, seen["levels.0.down.0.weight"])
	assert.True(t, seen["final.weight"])
}

func TestResNet_ForwardShape(t *testing.T) {
	r := NewResNet(ResNetConfig{InChannels: 3, OutChannels: 2, Features: 6, Blocks: 2}, cpu.New(), rand.New(rand.NewSource(1)))
	y := r.Forward(randInput(3, tensor.Shape{2, 3, 7, 5}))
	assert.Equal(t, tensor.Shape{2, 2, 7, 5}, y.Shape())

	// Final ReLU
	for _, v := range y.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
	}
}

func TestResNet_BlockCountIsConfigured(t *testing.T) {
	for _, blocks := range []int{0, 1, 5} {
		r := NewResNet(ResNetConfig{InChannels: 1, OutChannels: 1, Features: 2, Blocks: blocks}, cpu.New(), rand.New(rand.NewSource(1)))

		n := 0
		for _, p := range r.Parameters() {
			if strings.HasPrefix(p.Name(), "blocks.") && strings.HasSuffix(p.Name(), ".conv1.weight") {
				n++
			}
		}
		assert.Equal(t, blocks, n)
	}
}

func TestResidualBlock_ZeroWeightsIsIdentity(t *testing.T) {
	backend := cpu.New()
	b := NewResidualBlock(2, backend, rand.New(rand.NewSource(1)))
	for _, p := range b.Parameters() {
		if strings.HasSuffix(p.Name(), "conv1.weight") || strings.HasSuffix(p.Name(), "conv2.weight") {
			clear(p.Tensor().Data())
		}
	}
	// With zero convolutions the BN bias is 0 and the mean is 0, so the
	// residual branch is relu(0) = 0 and the block returns its input.
	x := randInput(4, tensor.Shape{1, 2, 3, 3})
	assert.True(t, x.Equal(b.Forward(x)))
}

func TestNet_Validation(t *testing.T) {
	u := NewUNet(smallUNet(3, 1), cpu.New(), rand.New(rand.NewSource(1)))
	net := NewUNetNet("inverse_cnn", u)

	assert.Equal(t, 8, net.StrideMultiple())
	assert.Equal(t, 3, net.InChannels())
	assert.Equal(t, 1, net.OutChannels())

	y, err := net.Forward(randInput(1, tensor.Shape{1, 3, 8, 16}))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 1, 8, 16}, y.Shape())

	_, err = net.Forward(tensor.Zeros(tensor.Shape{1, 3, 9, 16}))
	assert.True(t, errors.Is(err, tensor.ErrShape), "non-multiple size")

	_, err = net.Forward(tensor.Zeros(tensor.Shape{1, 2, 8, 8}))
	assert.True(t, errors.Is(err, tensor.ErrShape), "wrong channels")

	_, err = net.Forward(tensor.Zeros(tensor.Shape{3, 8, 8}))
	assert.True(t, errors.Is(err, tensor.ErrShape), "wrong rank")
}

func TestNet_Deterministic(t *testing.T) {
	build := func() *Net {
		return NewResNetNet("target_cnn", NewResNet(ResNetConfig{InChannels: 3, OutChannels: 2, Features: 4, Blocks: 1}, cpu.New(), rand.New(rand.NewSource(9))))
	}
	x := randInput(5, tensor.Shape{2, 3, 6, 6})

	a, err := build().Forward(x)
	require.NoError(t, err)
	b, err := build().Forward(x)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestStateDict_RoundTrip(t *testing.T) {
	backend := cpu.New()
	src := NewUNet(smallUNet(2, 1), backend, rand.New(rand.NewSource(1)))
	dst := NewUNet(smallUNet(2, 1), backend, rand.New(rand.NewSource(2)))

	x := randInput(3, tensor.Shape{1, 2, 8, 8})
	require.False(t, src.Forward(x).Equal(dst.Forward(x)))

	require.NoError(t, LoadStateDict(dst, StateDict(src), true))
	assert.True(t, src.Forward(x).Equal(dst.Forward(x)))
}

func TestLoadStateDict_Errors(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(1, 2, 3, 1, 1, true, backend, rand.New(rand.NewSource(1)))

	err := LoadStateDict(conv, map[string]*tensor.Tensor{"weight": tensor.Zeros(tensor.Shape{2, 1, 3, 3})}, false)
	assert.True(t, errors.Is(err, ErrMissingParameter))

	err = LoadStateDict(conv, map[string]*tensor.Tensor{
		"weight": tensor.Zeros(tensor.Shape{2, 1, 5, 5}),
		"bias":   tensor.Zeros(tensor.Shape{2}),
	}, false)
	assert.True(t, errors.Is(err, ErrParameterShape))

	err = LoadStateDict(conv, map[string]*tensor.Tensor{
		"weight": tensor.Zeros(tensor.Shape{2, 1, 3, 3}),
		"bias":   tensor.Zeros(tensor.Shape{2}),
		"extra":  tensor.Zeros(tensor.Shape{1}),
	}, true)
	assert.True(t, errors.Is(err, ErrUnexpectedParameter))
}

func TestSubDictAndWithPrefix(t *testing.T) {
	sd := map[string]*tensor.Tensor{"weight": tensor.Zeros(tensor.Shape{1}), "bias": tensor.Zeros(tensor.Shape{1})}
	prefixed := WithPrefix(sd, "slm_cnn")
	assert.Contains(t, prefixed, "slm_cnn.weight")

	prefixed["target_cnn.weight"] = tensor.Zeros(tensor.Shape{2})
	back := SubDict(prefixed, "slm_cnn")
	assert.Len(t, back, 2)
	assert.Contains(t, back, "bias")
}

func TestSequential_SkipsNil(t *testing.T) {
	backend := cpu.New()
	s := NewSequential(NewReLU(backend), newNorm(NormNone, 3, backend, nil), NewLeakyReLU(0.2, backend))
	assert.Equal(t, 2, s.Len())
}
