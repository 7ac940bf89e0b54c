// Package loader reads and writes network weights in the SafeTensors format.
//
// A SafeTensors file is laid out as
//
//	[8 bytes: header size, uint64 little-endian]
//	[header: JSON object, tensor name -> {dtype, shape, data_offsets}]
//	[data: raw little-endian tensor bytes]
//
// plus an optional "__metadata__" string map in the header. Weights for a
// whole pipeline live in one file with role-prefixed names, for example
// "target_cnn.stem.0.weight" or "slm_cnn.head.1.running_var".
//
// F32 tensors load directly into the float32 engine; F64 tensors are
// narrowed on load. Files written here carry a SHA-256 checksum of the data
// section in their metadata, which Load verifies when present.
//
// Example:
//
//	weights, meta, err := loader.Load("pipeline.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = nn.LoadStateDict(net, nn.SubDict(weights, "target_cnn"), true)
package loader
