package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/minigrad/internal/tensor"
)

// Load reads a state dict and its metadata from path.
func Load(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open file")
	}
	defer func() {
		_ = file.Close()
	}()

	stateDict, metadata, err := Decode(bufio.NewReader(file))
	if err != nil {
		return nil, nil, errors.WithMessagef(err, "loading %s", path)
	}
	klog.V(1).Infof("Loaded %d tensors from %s", len(stateDict), path)
	return stateDict, metadata, nil
}

// Decode reads a SafeTensors stream written by Encode (or any F32-only
// SafeTensors file) and validates it before allocating tensors.
func Decode(r io.Reader) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read header size")
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, errors.Wrapf(ErrHeaderTooLarge, "%d bytes", headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, errors.Wrap(err, "failed to read header")
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidHeader, "%v", err)
	}

	var metadata map[string]string
	if raw, ok := entries[MetadataKey]; ok {
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidHeader, "metadata: %v", err)
		}
		delete(entries, MetadataKey)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read tensor data")
	}

	metas := make([]TensorMeta, 0, len(entries))
	for name, raw := range entries {
		var h TensorHeader
		if err := json.Unmarshal(raw, &h); err != nil {
			return nil, nil, errors.Wrapf(ErrInvalidHeader, "tensor %q: %v", name, err)
		}
		m := h.meta(name)
		if err := validateEntry(m, h.DType); err != nil {
			return nil, nil, err
		}
		metas = append(metas, m)
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, nil, err
	}

	if want, ok := metadata[MetadataChecksum]; ok {
		if got := ComputeChecksum(data); got != want {
			return nil, nil, errors.Wrapf(ErrChecksumMismatch, "computed %s, stored %s", got, want)
		}
	}

	stateDict := make(map[string]*tensor.RawTensor, len(metas))
	for _, m := range metas {
		values := make([]float32, m.Size/float32Bytes)
		for i := range values {
			offset := m.Offset + int64(i)*float32Bytes
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		}
		shape := make(tensor.Shape, len(m.Shape))
		for i, dim := range m.Shape {
			shape[i] = int(dim)
		}
		raw, err := tensor.FromSlice(values, shape)
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "tensor %q", m.Name)
		}
		stateDict[m.Name] = raw
	}
	return stateDict, metadata, nil
}
