// Package serialization saves and loads state dicts in the SafeTensors layout.
//
//	File structure:
//	  [8 bytes: header size N (uint64 LE)]
//	  [N bytes: JSON header]
//	  [tensor data: raw little-endian float32, in name order]
//
// The JSON header maps every tensor name to {"dtype": "F32", "shape": [...],
// "data_offsets": [begin, end]}, with offsets relative to the start of the data
// section. The optional "__metadata__" entry holds string key/value pairs; the
// writer adds a SHA-256 checksum of the data section under MetadataChecksum,
// which the reader verifies when present.
//
// Example usage:
//
//	// Save a model
//	if err := serialization.Save("model.safetensors", model.StateDict(), map[string]string{"epochs": "10"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	stateDict, metadata, err := serialization.Load("model.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = model.LoadStateDict(stateDict)
package serialization
