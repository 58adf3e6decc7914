// Package serialization reads and writes model weights in the SafeTensors
// format.
//
//	File layout:
//	  [8 bytes: header size N (uint64 LE)]
//	  [N bytes: JSON header]
//	  [tensor data: raw little-endian bytes]
//
// The JSON header maps each tensor name to its dtype, shape and byte range
// inside the data section. The optional "__metadata__" entry is a flat
// string map; the writer records the SHA-256 of the data section there
// under "sha256", and the reader verifies it when present.
//
// Every file is validated before any tensor is materialized: header size,
// tensor count, tensor names, dtype and shape against the byte range, and
// overlapping or out-of-bounds ranges.
//
// Example usage:
//
//	// Save
//	err := serialization.WriteSafeTensors("model.safetensors", net.StateDict(), map[string]string{
//	    "format": "pt",
//	})
//
//	// Load
//	stateDict, metadata, err := serialization.ReadSafeTensors("model.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = net.LoadStateDict(stateDict)
package serialization
