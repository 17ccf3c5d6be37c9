package serialization

import (
	"crypto/sha256"
	"encoding/hex"
)

// Format constants.
const (
	DTypeF32         = "F32"          // The only dtype this package reads and writes
	MetadataKey      = "__metadata__" // Header entry holding string metadata
	MetadataChecksum = "sha256"       // Metadata key of the data section checksum
	headerSizeBytes  = 8
	float32Bytes     = 4
)

// TensorHeader describes one tensor in the JSON header.
type TensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta is a TensorHeader flattened with its name, in the form validation
// works on.
type TensorMeta struct {
	Name   string
	Shape  []int64
	Offset int64 // Offset in the data section
	Size   int64 // Size in bytes
}

// meta converts a header entry to TensorMeta.
func (h TensorHeader) meta(name string) TensorMeta {
	return TensorMeta{
		Name:   name,
		Shape:  h.Shape,
		Offset: h.DataOffsets[0],
		Size:   h.DataOffsets[1] - h.DataOffsets[0],
	}
}

// ComputeChecksum returns the hex SHA-256 of data.
func ComputeChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
