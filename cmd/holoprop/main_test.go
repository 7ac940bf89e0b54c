package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/holoprop/internal/config"
	"github.com/born-ml/holoprop/internal/loader"
	"github.com/born-ml/holoprop/internal/tensor"
)

const smallConfig = `
pipeline: cnn_asm_cnn
seed: 7
networks:
  target_cnn:
    arch: resnet
    in_channels: 1
    out_channels: 2
    resnet: {features: 4, blocks: 1}
  slm_cnn:
    arch: unet
    in_channels: 2
    out_channels: 1
    unet: {num_downs: 2, min_features: 4, max_features: 8, norm: instance, outer_skip: true}
optics:
  pixel_pitch: 8e-6
`

func writeFixtures(t *testing.T) (dir, cfgPath, imgPath string) {
	t.Helper()
	dir = t.TempDir()

	cfgPath = filepath.Join(dir, "holoprop.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(smallConfig), 0o600))

	img := image.NewGray(image.Rect(0, 0, 6, 5))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 8)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	imgPath = filepath.Join(dir, "target.png")
	require.NoError(t, os.WriteFile(imgPath, buf.Bytes(), 0o600))
	return dir, cfgPath, imgPath
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "holoprop "+version+"\n", out.String())

	out.Reset()
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "compute")

	assert.Error(t, run([]string{"train"}, &out))
}

func TestRun_Defaults(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"defaults"}, &out))

	cfg, err := config.Parse(&out)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestRun_InitThenCompute(t *testing.T) {
	dir, cfgPath, imgPath := writeFixtures(t)

	weights := filepath.Join(dir, "weights.safetensors")
	require.NoError(t, run([]string{"init", "-config", cfgPath, "-out", weights}, nil))

	tensors, meta, err := loader.Load(weights)
	require.NoError(t, err)
	assert.Contains(t, tensors, "target_cnn.stem.0.weight")
	assert.Equal(t, "cnn_asm_cnn", meta["pipeline"])
	_, err = uuid.Parse(meta["run_id"])
	assert.NoError(t, err)

	phasePNG := filepath.Join(dir, "phase.png")
	phaseST := filepath.Join(dir, "phase.safetensors")
	require.NoError(t, run([]string{
		"compute", "-config", cfgPath, "-in", imgPath, "-out", phasePNG, "-tensor", phaseST,
	}, nil))

	f, err := os.Open(phasePNG)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 5), img.Bounds())

	out, meta, err := loader.Load(phaseST)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 1, 5, 6}, out["phase"].Shape())
	assert.Equal(t, imgPath, meta["source"])
}

func TestRun_ComputeErrors(t *testing.T) {
	_, cfgPath, _ := writeFixtures(t)

	assert.Error(t, run([]string{"compute", "-config", cfgPath}, nil), "missing -in")
	assert.Error(t, run([]string{"compute", "-config", cfgPath, "-in", "missing.png"}, nil))
	assert.Error(t, run([]string{"compute", "-bogus"}, nil))
}
