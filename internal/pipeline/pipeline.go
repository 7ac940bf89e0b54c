// Package pipeline assembles a ready-to-run inverse-propagation dispatcher
// from a configuration: it builds the networks each role needs, loads their
// weights, and creates the optical operators.
package pipeline

import (
	"fmt"
	"maps"
	"math/rand"
	"runtime"
	"slices"

	"github.com/born-ml/holoprop/internal/backend/cpu"
	"github.com/born-ml/holoprop/internal/config"
	"github.com/born-ml/holoprop/internal/inverse"
	"github.com/born-ml/holoprop/internal/loader"
	"github.com/born-ml/holoprop/internal/nn"
	"github.com/born-ml/holoprop/internal/optics"
	"github.com/born-ml/holoprop/internal/parallel"
	"github.com/born-ml/holoprop/internal/tensor"
)

// Pipeline is a configured dispatcher together with the networks it runs.
type Pipeline struct {
	Dispatcher *inverse.Dispatcher
	Networks   map[inverse.Role]*nn.Net
}

// Build validates cfg and assembles its pipeline.
//
// Networks are initialized from cfg.Seed, then overwritten from cfg.Weights
// when set. Weight tensors are looked up under "<role>.<parameter>".
func Build(cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tag, err := inverse.ParseTag(cfg.Pipeline)
	if err != nil {
		return nil, err
	}

	par := ParallelConfig(cfg.Parallel)
	backend := cpu.NewWithConfig(par)
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // G404: weight init needs reproducibility, not secrecy.

	p := &Pipeline{Networks: make(map[inverse.Role]*nn.Net)}
	roles := make(map[inverse.Role]any)

	for _, role := range inverse.Roles(tag) {
		switch role {
		case inverse.RoleInverseCNN, inverse.RoleTargetCNN, inverse.RoleSLMCNN:
			net, err := NewNetwork(role, cfg.Networks[string(role)], backend, rng)
			if err != nil {
				return nil, err
			}
			p.Networks[role] = net
			roles[role] = net

		case inverse.RoleInverseASM:
			asm, err := optics.NewASMWithConfig(cfg.Optics.Params().Reversed(), par)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", role, err)
			}
			roles[role] = asm

		case inverse.RoleASMDPAC:
			var prop optics.Propagator
			if cfg.DPAC.BackPropagate {
				asm, err := optics.NewASMWithConfig(cfg.Optics.Params().Reversed(), par)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", role, err)
				}
				prop = asm
			}
			roles[role] = optics.NewDPAC(prop, optics.DPACOptions{
				ThreePi:    cfg.DPAC.ThreePi,
				MeanAdjust: cfg.DPAC.MeanAdjust,
			})
		}
	}

	if cfg.Weights != "" {
		weights, _, err := loader.Load(cfg.Weights)
		if err != nil {
			return nil, fmt.Errorf("failed to load weights: %w", err)
		}
		if err := p.LoadWeights(weights, cfg.StrictWeights); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Weights, err)
		}
	}

	d, err := inverse.New(tag, roles)
	if err != nil {
		return nil, err
	}
	p.Dispatcher = d
	return p, nil
}

// NewNetwork builds the learned transform described by n for role.
func NewNetwork(role inverse.Role, n config.NetworkConfig, backend nn.Backend, rng *rand.Rand) (*nn.Net, error) {
	switch n.Arch {
	case config.ArchUNet:
		c := n.UNetConfig()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", role, err)
		}
		return nn.NewUNetNet(string(role), nn.NewUNet(c, backend, rng)), nil
	case config.ArchResNet:
		c := n.ResNetConfig()
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", role, err)
		}
		return nn.NewResNetNet(string(role), nn.NewResNet(c, backend, rng)), nil
	}
	return nil, fmt.Errorf("%s: unknown architecture %q", role, n.Arch)
}

// LoadWeights copies role-prefixed tensors into every network.
// With strict set, tensors under a role prefix that name no parameter are an error.
func (p *Pipeline) LoadWeights(weights map[string]*tensor.Tensor, strict bool) error {
	for _, role := range p.roles() {
		net := p.Networks[role]
		if err := nn.LoadStateDict(net.Module(), nn.SubDict(weights, string(role)), strict); err != nil {
			return fmt.Errorf("%s: %w", role, err)
		}
	}
	return nil
}

// StateDict returns the parameters of every network under "<role>.".
func (p *Pipeline) StateDict() map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	for _, role := range p.roles() {
		maps.Copy(sd, nn.WithPrefix(nn.StateDict(p.Networks[role].Module()), string(role)))
	}
	return sd
}

func (p *Pipeline) roles() []inverse.Role {
	return slices.Sorted(maps.Keys(p.Networks))
}

// ParallelConfig converts the configured worker pool settings.
func ParallelConfig(c config.ParallelConfig) parallel.Config {
	if !c.Enabled {
		return parallel.Sequential()
	}
	cfg := parallel.DefaultConfig()
	if c.Workers > 0 {
		cfg.NumWorkers = c.Workers
	} else {
		cfg.NumWorkers = runtime.GOMAXPROCS(0)
	}
	cfg.Enabled = cfg.NumWorkers > 1
	return cfg
}
