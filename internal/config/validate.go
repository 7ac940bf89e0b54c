package config

import (
	"errors"
	"fmt"

	"github.com/born-ml/holoprop/internal/inverse"
	"github.com/born-ml/holoprop/internal/nn"
	"github.com/born-ml/holoprop/internal/optics"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// FieldError reports an invalid configuration value.
type FieldError struct {
	Field  string // Dotted YAML path (e.g., "networks.slm_cnn.in_channels")
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalid) hold for any *FieldError.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalid
}

// channel contracts per transform role: input channels (0 = any) and output channels.
var contracts = map[inverse.Role][2]int{
	inverse.RoleInverseCNN: {0, 1},
	inverse.RoleTargetCNN:  {0, 2},
	inverse.RoleSLMCNN:     {2, 1},
}

// Validate checks the configuration and reports all problems together.
// Only the networks the selected pipeline uses are checked.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	tag, err := inverse.ParseTag(c.Pipeline)
	if err != nil {
		add("pipeline", "unknown pipeline %q", c.Pipeline)
	}
	if c.Parallel.Workers < 0 {
		add("parallel.workers", "must be >= 0, got %d", c.Parallel.Workers)
	}

	for _, role := range inverse.Roles(tag) {
		contract, ok := contracts[role]
		if !ok {
			continue
		}
		field := "networks." + string(role)
		n, ok := c.Networks[string(role)]
		if !ok {
			add(field, "required by pipeline %s", tag)
			continue
		}
		if n.InChannels <= 0 {
			add(field+".in_channels", "must be > 0, got %d", n.InChannels)
		} else if contract[0] > 0 && n.InChannels != contract[0] {
			add(field+".in_channels", "must be %d, got %d", contract[0], n.InChannels)
		}
		if n.OutChannels != contract[1] {
			add(field+".out_channels", "must be %d, got %d", contract[1], n.OutChannels)
		}
		switch n.Arch {
		case ArchUNet:
			if err := n.UNetConfig().Validate(); err != nil {
				add(field+".unet", "%v", err)
			}
		case ArchResNet:
			if err := n.ResNetConfig().Validate(); err != nil {
				add(field+".resnet", "%v", err)
			}
		default:
			add(field+".arch", "unknown architecture %q", n.Arch)
		}
	}

	if c.usesOptics(tag) {
		if err := c.Optics.Params().Validate(); err != nil {
			add("optics", "%v", err)
		}
	}
	return errors.Join(errs...)
}

func (c *Config) usesOptics(tag inverse.Tag) bool {
	return tag == inverse.CNNASMCNN || (tag == inverse.CNNASMDPAC && c.DPAC.BackPropagate)
}

// UNetConfig converts the entry to an nn.UNetConfig.
func (n NetworkConfig) UNetConfig() nn.UNetConfig {
	return nn.UNetConfig{
		InChannels:  n.InChannels,
		OutChannels: n.OutChannels,
		NumDowns:    n.UNet.NumDowns,
		MinFeatures: n.UNet.MinFeatures,
		MaxFeatures: n.UNet.MaxFeatures,
		Norm:        nn.NormKind(n.UNet.Norm),
		OuterSkip:   n.UNet.OuterSkip,
	}
}

// ResNetConfig converts the entry to an nn.ResNetConfig.
func (n NetworkConfig) ResNetConfig() nn.ResNetConfig {
	return nn.ResNetConfig{
		InChannels:  n.InChannels,
		OutChannels: n.OutChannels,
		Features:    n.ResNet.Features,
		Blocks:      n.ResNet.Blocks,
	}
}

// Params returns the forward (SLM to target) propagation parameters.
func (o OpticsConfig) Params() optics.Params {
	return optics.Params{
		Wavelength: o.Wavelength,
		PixelPitch: o.PixelPitch,
		Distance:   o.Distance,
		LinearConv: o.LinearConv,
		BandLimit:  o.BandLimit,
	}
}
