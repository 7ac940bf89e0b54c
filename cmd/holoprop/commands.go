package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/holoprop/internal/config"
	"github.com/born-ml/holoprop/internal/imageio"
	"github.com/born-ml/holoprop/internal/inverse"
	"github.com/born-ml/holoprop/internal/loader"
	"github.com/born-ml/holoprop/internal/pipeline"
	"github.com/born-ml/holoprop/internal/tensor"
)

func runDefaults(stdout io.Writer) error {
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func runCompute(args []string) error {
	fs := flag.NewFlagSet("compute", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML configuration (defaults when empty)")
	in := fs.String("in", "", "Target image (PNG)")
	out := fs.String("out", "phase.png", "Output phase map (PNG)")
	tensorOut := fs.String("tensor", "", "Also write the raw phase map as SafeTensors")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("compute: -in is required")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	p, err := pipeline.Build(cfg)
	if err != nil {
		return err
	}

	channels, err := imageChannels(cfg)
	if err != nil {
		return err
	}
	target, err := imageio.LoadPNG(*in, channels)
	if err != nil {
		return err
	}
	log.Printf("target %s: %v", *in, target.Shape())

	start := time.Now()
	phase, err := p.Dispatcher.ComputePhase(target)
	if err != nil {
		return err
	}
	log.Printf("%s: phase %v in %v", cfg.Pipeline, phase.Shape(), time.Since(start).Round(time.Millisecond))

	if err := imageio.SavePhasePNG(*out, phase, 0); err != nil {
		return err
	}
	log.Printf("wrote %s", *out)

	if *tensorOut != "" {
		meta := runMetadata(cfg)
		meta["source"] = *in
		if err := loader.WriteFile(*tensorOut, map[string]*tensor.Tensor{"phase": phase}, meta); err != nil {
			return err
		}
		log.Printf("wrote %s (run %s)", *tensorOut, meta["run_id"])
	}
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML configuration (defaults when empty)")
	out := fs.String("out", "weights.safetensors", "Output weights (SafeTensors)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	// Start from the seed, not from a previous checkpoint.
	cfg.Weights = ""
	p, err := pipeline.Build(cfg)
	if err != nil {
		return err
	}

	sd := p.StateDict()
	meta := runMetadata(cfg)
	if err := loader.WriteFile(*out, sd, meta); err != nil {
		return err
	}
	log.Printf("wrote %d tensors to %s (run %s)", len(sd), *out, meta["run_id"])
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// imageChannels returns the input channel count of the pipeline's first network.
func imageChannels(cfg *config.Config) (int, error) {
	tag, err := inverse.ParseTag(cfg.Pipeline)
	if err != nil {
		return 0, err
	}
	first := inverse.Roles(tag)[0]
	return cfg.Networks[string(first)].InChannels, nil
}

func runMetadata(cfg *config.Config) map[string]string {
	return map[string]string{
		"run_id":   uuid.NewString(),
		"pipeline": cfg.Pipeline,
		"seed":     strconv.FormatInt(cfg.Seed, 10),
		"created":  time.Now().UTC().Format(time.RFC3339),
	}
}
