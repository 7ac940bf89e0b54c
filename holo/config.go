// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package holo

import (
	"github.com/born-ml/holoprop/internal/config"
	"github.com/born-ml/holoprop/internal/pipeline"
)

// Config is a YAML pipeline configuration.
type Config = config.Config

// NetworkConfig configures one network role.
type NetworkConfig = config.NetworkConfig

// FieldError reports an invalid configuration field.
type FieldError = config.FieldError

// ErrInvalidConfig is matched by every *FieldError.
var ErrInvalidConfig = config.ErrInvalid

// Pipeline is a built dispatcher together with its networks.
type Pipeline = pipeline.Pipeline

// DefaultConfig returns a valid cnn_asm_dpac configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Build validates cfg and assembles its pipeline, loading weights if set.
func Build(cfg *Config) (*Pipeline, error) {
	return pipeline.Build(cfg)
}
