package pipeline

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/holoprop/internal/config"
	"github.com/born-ml/holoprop/internal/inverse"
	"github.com/born-ml/holoprop/internal/loader"
	"github.com/born-ml/holoprop/internal/nn"
	"github.com/born-ml/holoprop/internal/tensor"
)

// smallConfig shrinks every network so tests run in milliseconds.
func smallConfig(tag inverse.Tag) *config.Config {
	cfg := config.Default()
	cfg.Pipeline = string(tag)
	unet := config.UNetParams{NumDowns: 2, MinFeatures: 4, MaxFeatures: 8, Norm: "instance", OuterSkip: true}
	cfg.Networks = map[string]config.NetworkConfig{
		"inverse_cnn": {Arch: config.ArchUNet, InChannels: 3, OutChannels: 1, UNet: unet},
		"target_cnn":  {Arch: config.ArchResNet, InChannels: 3, OutChannels: 2, ResNet: config.ResNetParams{Features: 4, Blocks: 2}},
		"slm_cnn":     {Arch: config.ArchUNet, InChannels: 2, OutChannels: 1, UNet: unet},
	}
	cfg.Optics.PixelPitch = 8e-6
	return cfg
}

func target(shape tensor.Shape) *tensor.Tensor {
	return nn.Normal(shape, 0.5, 0.1, rand.New(rand.NewSource(3)))
}

func TestBuild_AllPipelines(t *testing.T) {
	for _, tag := range inverse.Tags() {
		t.Run(string(tag), func(t *testing.T) {
			p, err := Build(smallConfig(tag))
			require.NoError(t, err)
			assert.Equal(t, tag, p.Dispatcher.Tag())
			networks := map[inverse.Tag]int{inverse.CNNOnly: 1, inverse.CNNASMDPAC: 1, inverse.CNNASMCNN: 2}
			assert.Len(t, p.Networks, networks[tag])

			y, err := p.Dispatcher.ComputePhase(target(tensor.Shape{2, 3, 10, 6}))
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{2, 1, 10, 6}, y.Shape())
		})
	}
}

func TestBuild_SameSeedSameNetworks(t *testing.T) {
	a, err := Build(smallConfig(inverse.CNNASMCNN))
	require.NoError(t, err)
	b, err := Build(smallConfig(inverse.CNNASMCNN))
	require.NoError(t, err)

	x := target(tensor.Shape{1, 3, 8, 8})
	ya, err := a.Dispatcher.ComputePhase(x)
	require.NoError(t, err)
	yb, err := b.Dispatcher.ComputePhase(x)
	require.NoError(t, err)
	assert.True(t, ya.Equal(yb))
}

func TestBuild_LoadsWeights(t *testing.T) {
	src, err := Build(smallConfig(inverse.CNNASMCNN))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pipeline.safetensors")
	sd := src.StateDict()
	require.Contains(t, sd, "target_cnn.stem.0.weight")
	require.Contains(t, sd, "slm_cnn.final.weight")
	require.NoError(t, loader.WriteFile(path, sd, nil))

	cfg := smallConfig(inverse.CNNASMCNN)
	cfg.Seed = 99
	cfg.Weights = path
	dst, err := Build(cfg)
	require.NoError(t, err)

	x := target(tensor.Shape{1, 3, 8, 8})
	want, err := src.Dispatcher.ComputePhase(x)
	require.NoError(t, err)
	got, err := dst.Dispatcher.ComputePhase(x)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
}

func TestBuild_WeightErrors(t *testing.T) {
	src, err := Build(smallConfig(inverse.CNNOnly))
	require.NoError(t, err)
	sd := src.StateDict()
	sd["inverse_cnn.extra"] = tensor.Zeros(tensor.Shape{1})

	path := filepath.Join(t.TempDir(), "extra.safetensors")
	require.NoError(t, loader.WriteFile(path, sd, nil))

	cfg := smallConfig(inverse.CNNOnly)
	cfg.Weights = path
	_, err = Build(cfg)
	assert.ErrorIs(t, err, nn.ErrUnexpectedParameter)

	cfg.StrictWeights = false
	_, err = Build(cfg)
	assert.NoError(t, err)

	// Weights for another pipeline leave inverse_cnn without parameters.
	cfg = smallConfig(inverse.CNNOnly)
	other, err := Build(smallConfig(inverse.CNNASMDPAC))
	require.NoError(t, err)
	path = filepath.Join(t.TempDir(), "other.safetensors")
	require.NoError(t, loader.WriteFile(path, other.StateDict(), nil))
	cfg.Weights = path
	_, err = Build(cfg)
	assert.ErrorIs(t, err, nn.ErrMissingParameter)

	cfg.Weights = filepath.Join(t.TempDir(), "missing.safetensors")
	_, err = Build(cfg)
	assert.Error(t, err)
}

func TestBuild_InvalidConfig(t *testing.T) {
	cfg := smallConfig(inverse.CNNOnly)
	cfg.Pipeline = "cnn_gan"
	_, err := Build(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestParallelConfig(t *testing.T) {
	assert.False(t, ParallelConfig(config.ParallelConfig{}).Enabled)

	c := ParallelConfig(config.ParallelConfig{Enabled: true, Workers: 3})
	assert.True(t, c.Enabled)
	assert.Equal(t, 3, c.NumWorkers)

	c = ParallelConfig(config.ParallelConfig{Enabled: true, Workers: 1})
	assert.False(t, c.Enabled)
}
