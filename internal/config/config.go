// Package config loads the YAML configuration of a holoprop pipeline.
//
// Example:
//
//	pipeline: cnn_asm_dpac
//	seed: 1
//	weights: weights/pipeline.safetensors
//	networks:
//	  target_cnn:
//	    arch: resnet
//	    in_channels: 3
//	    out_channels: 2
//	    resnet: {features: 24, blocks: 15}
//	optics:
//	  wavelength: 520e-9
//	  pixel_pitch: 6.4e-6
//	  distance: 0.02
//	  band_limit: true
//	dpac:
//	  three_pi: true
//	  back_propagate: true
//
// Fields left out keep their Default values. Unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/holoprop/internal/inverse"
	"github.com/born-ml/holoprop/internal/nn"
)

// Network architectures.
const (
	ArchUNet   = "unet"
	ArchResNet = "resnet"
)

// Config is the full pipeline configuration.
type Config struct {
	Pipeline      string                   `yaml:"pipeline"`
	Seed          int64                    `yaml:"seed"`
	Weights       string                   `yaml:"weights"`        // SafeTensors file with role-prefixed weights; empty keeps random init
	StrictWeights bool                     `yaml:"strict_weights"` // Reject unexpected tensors under a role prefix
	Parallel      ParallelConfig           `yaml:"parallel"`
	Networks      map[string]NetworkConfig `yaml:"networks"`
	Optics        OpticsConfig             `yaml:"optics"`
	DPAC          DPACConfig               `yaml:"dpac"`
}

// ParallelConfig controls the CPU worker pool.
type ParallelConfig struct {
	Enabled bool `yaml:"enabled"`
	Workers int  `yaml:"workers"` // 0 means GOMAXPROCS
}

// NetworkConfig describes the learned transform bound to a role.
type NetworkConfig struct {
	Arch        string       `yaml:"arch"`
	InChannels  int          `yaml:"in_channels"`
	OutChannels int          `yaml:"out_channels"`
	UNet        UNetParams   `yaml:"unet"`
	ResNet      ResNetParams `yaml:"resnet"`
}

// UNetParams holds encoder-decoder hyperparameters.
type UNetParams struct {
	NumDowns    int    `yaml:"num_downs"`
	MinFeatures int    `yaml:"min_features"`
	MaxFeatures int    `yaml:"max_features"`
	Norm        string `yaml:"norm"`
	OuterSkip   bool   `yaml:"outer_skip"`
}

// ResNetParams holds residual-network hyperparameters.
type ResNetParams struct {
	Features int `yaml:"features"`
	Blocks   int `yaml:"blocks"`
}

// OpticsConfig describes the propagation between SLM and target planes.
// Distance is measured from the SLM to the target; inverse operators
// propagate over -Distance.
type OpticsConfig struct {
	Wavelength float64 `yaml:"wavelength"`
	PixelPitch float64 `yaml:"pixel_pitch"`
	Distance   float64 `yaml:"distance"`
	LinearConv bool    `yaml:"linear_conv"`
	BandLimit  bool    `yaml:"band_limit"`
}

// DPACConfig configures the double phase encoder.
type DPACConfig struct {
	ThreePi       bool `yaml:"three_pi"`
	MeanAdjust    bool `yaml:"mean_adjust"`
	BackPropagate bool `yaml:"back_propagate"` // Propagate the target back to the SLM plane before encoding
}

// Default returns a configuration for every role with the reference
// architectures: depth-8 UNets and a 24-feature, 15-block ResNet.
func Default() *Config {
	unet := UNetParams{NumDowns: 8, MinFeatures: 32, MaxFeatures: 512, Norm: string(nn.NormInstance), OuterSkip: true}
	return &Config{
		Pipeline:      string(inverse.CNNASMDPAC),
		Seed:          1,
		StrictWeights: true,
		Parallel:      ParallelConfig{Enabled: true},
		Networks: map[string]NetworkConfig{
			string(inverse.RoleInverseCNN): {Arch: ArchUNet, InChannels: 3, OutChannels: 1, UNet: unet},
			string(inverse.RoleTargetCNN):  {Arch: ArchResNet, InChannels: 3, OutChannels: 2, ResNet: ResNetParams{Features: 24, Blocks: 15}},
			string(inverse.RoleSLMCNN):     {Arch: ArchUNet, InChannels: 2, OutChannels: 1, UNet: unet},
		},
		Optics: OpticsConfig{
			Wavelength: 520e-9,
			PixelPitch: 6.4e-6,
			Distance:   0.02,
			LinearConv: true,
			BandLimit:  true,
		},
		DPAC: DPACConfig{ThreePi: true, MeanAdjust: true, BackPropagate: true},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: configuration path comes from the command line.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
// A network entry replaces the default entry of its role entirely.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
