package serialization

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/resnet/internal/tensor"
)

// SafeTensorsReader reads tensors from a SafeTensors file.
//
// The header is parsed and validated when the reader is opened; tensor data
// is read on demand.
type SafeTensorsReader struct {
	file       *os.File
	header     Header
	index      map[string]int // tensor name -> position in header.Tensors
	dataOffset int64          // Offset where tensor data starts
	dataSize   int64          // Size of the data section
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures the behavior of SafeTensorsReader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// NewSafeTensorsReader opens path with strict validation.
func NewSafeTensorsReader(path string) (*SafeTensorsReader, error) {
	return NewSafeTensorsReaderWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// NewSafeTensorsReaderWithOptions opens path with custom options.
func NewSafeTensorsReaderWithOptions(path string, opts ReaderOptions) (*SafeTensorsReader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	header, headerLen, err := DecodeSafeTensorsHeader(file, fileInfo.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	r := &SafeTensorsReader{
		file:       file,
		header:     *header,
		index:      make(map[string]int, len(header.Tensors)),
		dataOffset: 8 + headerLen,
		opts:       opts,
	}
	r.dataSize = fileInfo.Size() - r.dataOffset
	for i, t := range header.Tensors {
		r.index[t.Name] = i
	}

	if err := ValidateHeader(&r.header, r.dataSize, opts.ValidationLevel); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return r, nil
}

// DecodeSafeTensorsHeader reads the size prefix and JSON header from in.
// fileSize bounds the header length; pass a negative value when unknown.
// Returns the parsed header and the length of the JSON part.
func DecodeSafeTensorsHeader(in io.Reader, fileSize int64) (*Header, int64, error) {
	var headerSize uint64
	if err := binary.Read(in, binary.LittleEndian, &headerSize); err != nil {
		return nil, 0, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}
	if fileSize >= 0 && int64(headerSize) > fileSize-8 {
		return nil, 0, fmt.Errorf("header size %d exceeds file size %d", headerSize, fileSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &entries); err != nil {
		return nil, 0, fmt.Errorf("failed to parse header JSON: %w", err)
	}

	header := &Header{Metadata: map[string]string{}}
	for name, msg := range entries {
		if name == MetadataKey {
			if len(msg) > MaxMetadataSize {
				return nil, 0, fmt.Errorf("metadata is %d bytes, max %d", len(msg), MaxMetadataSize)
			}
			if err := json.Unmarshal(msg, &header.Metadata); err != nil {
				return nil, 0, fmt.Errorf("failed to parse %s: %w", MetadataKey, err)
			}
			continue
		}

		var entry SafeTensorHeader
		if err := json.Unmarshal(msg, &entry); err != nil {
			return nil, 0, fmt.Errorf("failed to parse entry %q: %w", name, err)
		}
		dtype, err := dtypeFromSafeTensors(entry.DType)
		if err != nil {
			return nil, 0, fmt.Errorf("tensor %s: %w", name, err)
		}
		shape := make(tensor.Shape, len(entry.Shape))
		for i, dim := range entry.Shape {
			shape[i] = int(dim)
		}
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtype,
			Shape:  shape,
			Offset: entry.DataOffsets[0],
			Size:   entry.DataOffsets[1] - entry.DataOffsets[0],
		})
	}

	sort.Slice(header.Tensors, func(i, j int) bool {
		return header.Tensors[i].Name < header.Tensors[j].Name
	})

	return header, int64(headerSize), nil
}

// Header returns the parsed header.
func (r *SafeTensorsReader) Header() *Header {
	return &r.header
}

// Metadata returns the __metadata__ map.
func (r *SafeTensorsReader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns all tensor names in alphabetical order.
func (r *SafeTensorsReader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// ReadTensor reads one tensor by name.
func (r *SafeTensorsReader) ReadTensor(name string) (*tensor.RawTensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}
	i, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTensorNotFound, name)
	}
	meta := r.header.Tensors[i]

	raw, err := tensor.NewRaw(meta.Shape, meta.DType, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}
	if int64(raw.ByteSize()) != meta.Size {
		return nil, &ValidationError{
			Type:    "size_mismatch",
			Tensor:  name,
			Details: fmt.Sprintf("expected %d bytes, range holds %d", raw.ByteSize(), meta.Size),
		}
	}
	if _, err := r.file.ReadAt(raw.Data(), r.dataOffset+meta.Offset); err != nil {
		return nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}
	return raw, nil
}

// VerifyChecksum hashes the data section and compares it with the "sha256"
// metadata entry. Files without the entry pass.
func (r *SafeTensorsReader) VerifyChecksum() error {
	stored, ok := r.header.Metadata[MetadataChecksumKey]
	if !ok {
		return nil
	}
	want, err := ParseChecksum(stored)
	if err != nil {
		return err
	}
	got, err := ComputeChecksumReader(io.NewSectionReader(r.file, r.dataOffset, r.dataSize))
	if err != nil {
		return fmt.Errorf("failed to hash data section: %w", err)
	}
	return ValidateChecksum(got, want)
}

// ReadStateDict reads every tensor, verifying the checksum first unless
// the reader was opened with SkipChecksumValidation.
func (r *SafeTensorsReader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	if !r.opts.SkipChecksumValidation {
		if err := r.VerifyChecksum(); err != nil {
			return nil, err
		}
	}

	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, t := range r.header.Tensors {
		raw, err := r.ReadTensor(t.Name)
		if err != nil {
			return nil, err
		}
		stateDict[t.Name] = raw
	}
	return stateDict, nil
}

// Close closes the underlying file.
func (r *SafeTensorsReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// ReadSafeTensors reads all tensors and the metadata of a SafeTensors file
// with strict validation.
func ReadSafeTensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	r, err := NewSafeTensorsReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	stateDict, err := r.ReadStateDict()
	if err != nil {
		return nil, nil, err
	}
	return stateDict, r.Metadata(), nil
}

// IsChecksumError reports whether err is a checksum mismatch.
func IsChecksumError(err error) bool {
	return errors.Is(err, ErrChecksumMismatch)
}
