package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/minigrad/internal/tensor"
)

// Save writes stateDict and metadata to path, replacing any existing file.
//
// The file is written to a temporary sibling first and renamed into place, so
// a failed save never leaves a truncated checkpoint behind.
func Save(path string, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	tmp := path + ".tmp"
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}

	buffered := bufio.NewWriter(file)
	err = Encode(buffered, stateDict, metadata)
	if err == nil {
		err = buffered.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp) // Best effort cleanup
		return errors.WithMessagef(err, "saving %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, "failed to move checkpoint into %s", path)
	}

	klog.V(1).Infof("Saved %d tensors to %s", len(stateDict), path)
	return nil
}

// Encode writes stateDict in SafeTensors layout to w.
//
// Tensors are written in alphabetical order by name. The data section checksum
// is added to the metadata under MetadataChecksum; a caller-provided value for
// that key is overwritten.
func Encode(w io.Writer, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var currentOffset int64
	header := make(map[string]any, len(names)+1)
	for _, name := range names {
		raw := stateDict[name]
		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}
		size := int64(raw.NumElements() * float32Bytes)
		header[name] = TensorHeader{
			DType:       DTypeF32,
			Shape:       shape,
			DataOffsets: [2]int64{currentOffset, currentOffset + size},
		}
		currentOffset += size
	}

	data := make([]byte, 0, currentOffset)
	for _, name := range names {
		for _, v := range stateDict[name].Data() {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[MetadataChecksum] = ComputeChecksum(data)
	header[MetadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return errors.Wrap(err, "failed to write header size")
	}
	if _, err := w.Write(headerJSON); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write tensor data")
	}
	return nil
}
