// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loader reads and writes network weights in the SafeTensors format.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/holoprop/loader"
//	    "github.com/born-ml/holoprop/nn"
//	)
//
//	weights, meta, err := loader.Load("holoprop.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(meta["pipeline"])
//
//	if err := nn.LoadStateDict(net.Module(), weights, true); err != nil {
//	    log.Fatal(err)
//	}
package loader

import (
	"io"

	"github.com/born-ml/holoprop/internal/loader"
	"github.com/born-ml/holoprop/tensor"
)

// Reader provides random access to the tensors of a SafeTensors file.
type Reader = loader.Reader

// TensorInfo describes one tensor entry of a SafeTensors header.
type TensorInfo = loader.TensorInfo

// DType is a SafeTensors element type.
type DType = loader.DType

// Supported element types.
const (
	F32 = loader.F32
	F64 = loader.F64
)

// ValidationError reports a malformed SafeTensors header.
type ValidationError = loader.ValidationError

// Sentinel errors.
var (
	ErrTensorNotFound   = loader.ErrTensorNotFound
	ErrUnsupportedDType = loader.ErrUnsupportedDType
	ErrChecksumMismatch = loader.ErrChecksumMismatch
	ErrHeaderTooLarge   = loader.ErrHeaderTooLarge
)

// MetadataChecksum is the metadata key holding the SHA-256 of the tensor data.
const MetadataChecksum = loader.MetadataChecksum

// Open opens a SafeTensors file for reading.
func Open(path string) (*Reader, error) {
	return loader.Open(path)
}

// Load reads every tensor and the metadata of a SafeTensors file.
func Load(path string) (map[string]*tensor.Tensor, map[string]string, error) {
	return loader.Load(path)
}

// Write encodes tensors as SafeTensors to w.
func Write(w io.Writer, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	return loader.Write(w, tensors, metadata)
}

// WriteFile writes tensors to a SafeTensors file at path.
func WriteFile(path string, tensors map[string]*tensor.Tensor, metadata map[string]string) error {
	return loader.WriteFile(path, tensors, metadata)
}
