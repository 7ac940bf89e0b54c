package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/holoprop/internal/inverse"
	"github.com/born-ml/holoprop/internal/nn"
)

func TestDefault_IsValid(t *testing.T) {
	for _, tag := range inverse.Tags() {
		cfg := Default()
		cfg.Pipeline = string(tag)
		assert.NoError(t, cfg.Validate(), "%s", tag)
	}
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
pipeline: cnn_asm_cnn
seed: 42
networks:
  slm_cnn:
    arch: resnet
    in_channels: 2
    out_channels: 1
    resnet: {features: 8, blocks: 3}
optics:
  wavelength: 638e-9
  distance: -0.05
`))
	require.NoError(t, err)

	assert.Equal(t, "cnn_asm_cnn", cfg.Pipeline)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 638e-9, cfg.Optics.Wavelength)
	assert.Equal(t, 6.4e-6, cfg.Optics.PixelPitch, "unset keys keep defaults")
	assert.Equal(t, -0.05, cfg.Optics.Distance)

	slm := cfg.Networks[string(inverse.RoleSLMCNN)]
	assert.Equal(t, nn.ResNetConfig{InChannels: 2, OutChannels: 1, Features: 8, Blocks: 3}, slm.ResNetConfig())

	target := cfg.Networks[string(inverse.RoleTargetCNN)]
	assert.Equal(t, ArchResNet, target.Arch, "other roles keep defaults")
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse(strings.NewReader("pipline: cnn_only\n"))
	assert.Error(t, err)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Pipeline = string(inverse.CNNASMCNN)
	cfg.Parallel.Workers = -1
	cfg.Networks[string(inverse.RoleSLMCNN)] = NetworkConfig{Arch: ArchUNet, InChannels: 3, OutChannels: 2, UNet: UNetParams{NumDowns: 1}}
	delete(cfg.Networks, string(inverse.RoleTargetCNN))
	cfg.Optics.Wavelength = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	for _, field := range []string{
		"parallel.workers",
		"networks.target_cnn",
		"networks.slm_cnn.in_channels",
		"networks.slm_cnn.out_channels",
		"networks.slm_cnn.unet",
		"optics",
	} {
		assert.Contains(t, err.Error(), field+":")
	}
}

func TestValidate_OnlyChecksUsedRoles(t *testing.T) {
	cfg := Default()
	cfg.Pipeline = string(inverse.CNNOnly)
	cfg.Networks[string(inverse.RoleSLMCNN)] = NetworkConfig{Arch: "gan"}
	cfg.Optics = OpticsConfig{}
	assert.NoError(t, cfg.Validate())

	cfg.Pipeline = string(inverse.CNNASMDPAC)
	cfg.DPAC.BackPropagate = false
	assert.NoError(t, cfg.Validate(), "dpac without back-propagation needs no optics")

	cfg.DPAC.BackPropagate = true
	assert.Error(t, cfg.Validate())
}

func TestValidate_Pipeline(t *testing.T) {
	cfg := Default()
	cfg.Pipeline = "cnn_gan"

	err := cfg.Validate()
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "pipeline", fe.Field)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "holoprop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: cnn_only\nweights: w.safetensors\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "w.safetensors", cfg.Weights)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("pipeline: nope\n"), 0o600))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Pipeline = string(inverse.CNNASMCNN)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	back, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
