package loader

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/born-ml/holoprop/internal/tensor"
)

// Header limits.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
)

// MetadataChecksum is the metadata key holding the hex SHA-256 of the data section.
const MetadataChecksum = "sha256"

// DType is a SafeTensors element type.
type DType string

// Element types understood by the loader.
const (
	F32 DType = "F32"
	F64 DType = "F64"
)

// Size returns the size of one element in bytes, or 0 for unsupported types.
func (d DType) Size() int {
	switch d {
	case F32:
		return 4
	case F64:
		return 8
	}
	return 0
}

// TensorInfo describes one tensor in the header.
type TensorInfo struct {
	DType       DType    `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end) relative to the data section
}

// header is the parsed JSON header.
type header struct {
	metadata map[string]string
	tensors  map[string]TensorInfo
}

func (h *header) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if m, ok := raw["__metadata__"]; ok {
		if err := json.Unmarshal(m, &h.metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.tensors = make(map[string]TensorInfo, len(raw))
	for name, value := range raw {
		if name == "__metadata__" {
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", name, err)
		}
		h.tensors[name] = info
	}
	return nil
}

// Reader reads tensors from a SafeTensors file on demand.
type Reader struct {
	file       *os.File
	header     header
	dataOffset int64
	dataSize   int64
}

// Open opens a SafeTensors file and validates its header.
func Open(path string) (*Reader, error) {
	//nolint:gosec // G304: weight paths come from the user's configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r, err := newReader(file)
	if err != nil {
		_ = file.Close() // Best effort close on error
		return nil, err
	}
	return r, nil
}

func newReader(file *os.File) (*Reader, error) {
	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	raw := make([]byte, headerSize)
	if _, err := io.ReadFull(file, raw); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	dataOffset := int64(8 + headerSize) //nolint:gosec // G115: bounded by MaxHeaderSize.
	dataSize := stat.Size() - dataOffset

	if err := validate(h.tensors, dataSize); err != nil {
		return nil, err
	}

	return &Reader{file: file, header: h, dataOffset: dataOffset, dataSize: dataSize}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Metadata returns the header metadata map (nil when absent).
func (r *Reader) Metadata() map[string]string {
	return r.header.metadata
}

// TensorNames returns all tensor names in sorted order.
func (r *Reader) TensorNames() []string {
	names := make([]string, 0, len(r.header.tensors))
	for name := range r.header.tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns the header entry of a tensor.
func (r *Reader) TensorInfo(name string) (TensorInfo, error) {
	info, ok := r.header.tensors[name]
	if !ok {
		return TensorInfo{}, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	return info, nil
}

// ReadTensor reads and decodes one tensor.
func (r *Reader) ReadTensor(name string) (*tensor.Tensor, error) {
	info, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, info.DataOffsets[1]-info.DataOffsets[0])
	if _, err := r.file.ReadAt(raw, r.dataOffset+info.DataOffsets[0]); err != nil {
		return nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}

	data := make([]float32, len(raw)/info.DType.Size())
	switch info.DType {
	case F32:
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	case F64:
		for i := range data {
			data[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:])))
		}
	}

	t, err := tensor.FromSlice(data, tensor.Shape(info.Shape))
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}
	return t, nil
}

// ReadAll reads every tensor in the file.
func (r *Reader) ReadAll() (map[string]*tensor.Tensor, error) {
	out := make(map[string]*tensor.Tensor, len(r.header.tensors))
	for _, name := range r.TensorNames() {
		t, err := r.ReadTensor(name)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

// VerifyChecksum checks the data section against the checksum stored in the
// metadata. Files without a checksum pass.
func (r *Reader) VerifyChecksum() error {
	want, ok := r.header.metadata[MetadataChecksum]
	if !ok {
		return nil
	}
	got, err := computeChecksumReader(io.NewSectionReader(r.file, r.dataOffset, r.dataSize))
	if err != nil {
		return fmt.Errorf("failed to checksum data: %w", err)
	}
	if hex.EncodeToString(got[:]) != want {
		return ErrChecksumMismatch
	}
	return nil
}

// Load reads all tensors and the metadata of a file, verifying its checksum.
func Load(path string) (map[string]*tensor.Tensor, map[string]string, error) {
	r, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = r.Close() // Read-only file
	}()

	if err := r.VerifyChecksum(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	tensors, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return tensors, r.Metadata(), nil
}

type extent struct {
	name       string
	start, end int64
}

// validate checks dtypes, shapes, names and data offsets of every tensor.
func validate(tensors map[string]TensorInfo, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	extents := make([]extent, 0, len(tensors))
	for name, info := range tensors {
		if err := validateName(name); err != nil {
			return err
		}
		if info.DType.Size() == 0 {
			return fmt.Errorf("%w: tensor %s has dtype %s", ErrUnsupportedDType, name, info.DType)
		}
		if err := tensor.Shape(info.Shape).Validate(); err != nil {
			return &ValidationError{Type: "invalid_shape", Tensor: name, Details: err.Error()}
		}

		start, end := info.DataOffsets[0], info.DataOffsets[1]
		if start < 0 || end < start {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  name,
				Details: fmt.Sprintf("offsets [%d, %d]", start, end),
			}
		}
		if want := int64(tensor.Shape(info.Shape).NumElements() * info.DType.Size()); end-start != want {
			return &ValidationError{
				Type:    "size_mismatch",
				Tensor:  name,
				Details: fmt.Sprintf("%d bytes for shape %v of %s, want %d", end-start, info.Shape, info.DType, want),
			}
		}
		if end > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  name,
				Details: fmt.Sprintf("end %d > data_size %d", end, dataSize),
			}
		}
		extents = append(extents, extent{name: name, start: start, end: end})
	}

	sort.Slice(extents, func(i, j int) bool { return extents[i].start < extents[j].start })
	for i := 1; i < len(extents); i++ {
		prev, next := extents[i-1], extents[i]
		if prev.end > next.start {
			return &ValidationError{
				Type:    "offset_overlap",
				Tensor:  prev.name,
				Tensor2: next.name,
				Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap", prev.start, prev.end, next.start, next.end),
			}
		}
	}
	return nil
}

// validateName rejects names that are empty, too long or contain path
// separators or null bytes.
func validateName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty tensor name"}
	case len(name) > MaxTensorNameLen:
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	case strings.Contains(name, ".."), strings.ContainsAny(name, "/\\\x00"):
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: "contains a path element or null byte"}
	}
	return nil
}
