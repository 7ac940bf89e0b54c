// Package main provides the holoprop CLI.
//
// Usage:
//
//	holoprop version
//	holoprop defaults
//	holoprop compute -config holoprop.yaml -in target.png -out phase.png [-tensor phase.safetensors]
//	holoprop init -config holoprop.yaml -out weights.safetensors
package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("holoprop: ")

	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "holoprop %s\n", version)
		return nil
	case "defaults":
		return runDefaults(stdout)
	case "compute":
		return runCompute(args[1:])
	case "init":
		return runInit(args[1:])
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	}
	return fmt.Errorf("unknown command %q (run 'holoprop help')", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "holoprop %s - SLM phase computation by inverse propagation\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  defaults   Print the default configuration as YAML")
	fmt.Fprintln(w, "  compute    Compute the SLM phase for a target image")
	fmt.Fprintln(w, "  init       Write freshly initialized pipeline weights")
}
