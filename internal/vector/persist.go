package vector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hyperjump/textintel/pkg/utils"
)

// ErrFormatMismatch marks an index artifact that cannot be read under the configured metric or dimension.
var ErrFormatMismatch = errors.New("index format mismatch")

// FormatMismatchError describes an artifact built for a different scoring family (or dimension)
// than the one configured. It is never recovered automatically: the artifact must be deleted and
// the index rebuilt from the document log.
type FormatMismatchError struct {
	Path     string
	Expected string
	Found    string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("index artifact %s was built for %s but %s is configured; delete %s and rebuild the index from documents",
		e.Path, e.Found, e.Expected, e.Path)
}

// Unwrap lets errors.Is match ErrFormatMismatch.
func (e *FormatMismatchError) Unwrap() error {
	return ErrFormatMismatch
}

// Flat artifact layout (little endian):
// magic (4) "TXVI", version (2), metric (1), reserved (1), dimensions (4), count (4),
// then count*dimensions float32 values in position order.
var flatMagic = [4]byte{'T', 'X', 'V', 'I'}

const flatVersion uint16 = 1

// FAISS writes a fourcc at the start of every serialized index.
var faissFourCCs = map[string]string{
	"IxFI": "faiss IndexFlatIP",
	"IxF2": "faiss IndexFlatL2",
}

type flatHeader struct {
	Magic      [4]byte
	Version    uint16
	Metric     uint8
	Reserved   uint8
	Dimensions uint32
	Count      uint32
}

func metricCode(m Metric) uint8 {
	if m == MetricL2 {
		return 2
	}
	return 1
}

func metricFromCode(c uint8) (Metric, bool) {
	switch c {
	case 1:
		return MetricInnerProduct, true
	case 2:
		return MetricL2, true
	default:
		return "", false
	}
}

// MarshalBinary serializes the index in the flat artifact layout.
func (f *FlatIndex) MarshalBinary() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var buf bytes.Buffer
	buf.Grow(16 + len(f.vectors)*f.dimensions*4)
	hdr := flatHeader{
		Magic:      flatMagic,
		Version:    flatVersion,
		Metric:     metricCode(f.metric),
		Dimensions: uint32(f.dimensions),
		Count:      uint32(len(f.vectors)),
	}
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	b := make([]byte, 4)
	for _, vec := range f.vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(b, math.Float32bits(v))
			buf.Write(b)
		}
	}
	return buf.Bytes(), nil
}

// Save persists the index to path atomically. The directory is created if needed.
func (f *FlatIndex) Save(path string) error {
	if path == "" {
		return nil
	}
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}
	return nil
}

// loadFlat reads a flat artifact from path and checks it against metric and dimensions.
// The caller handles the missing-file case.
func loadFlat(path string, metric Metric, dimensions int) (*FlatIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read index file: %w", err)
	}
	idx, err := decodeFlat(data, metric, dimensions)
	if err != nil {
		var fm *FormatMismatchError
		if errors.As(err, &fm) {
			fm.Path = path
		}
		return nil, err
	}
	return idx, nil
}

func decodeFlat(data []byte, metric Metric, dimensions int) (*FlatIndex, error) {
	if len(data) >= 4 {
		if name, ok := faissFourCCs[string(data[:4])]; ok {
			return nil, &FormatMismatchError{Expected: "flat " + string(metric), Found: name}
		}
	}
	r := bytes.NewReader(data)
	var hdr flatHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &FormatMismatchError{Expected: string(metric), Found: "an unrecognized format"}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if hdr.Magic != flatMagic || hdr.Version != flatVersion {
		return nil, &FormatMismatchError{Expected: string(metric), Found: "an unrecognized format"}
	}
	found, ok := metricFromCode(hdr.Metric)
	if !ok {
		return nil, &FormatMismatchError{Expected: string(metric), Found: fmt.Sprintf("unknown metric code %d", hdr.Metric)}
	}
	if found != metric {
		return nil, &FormatMismatchError{Expected: string(metric), Found: string(found)}
	}
	if int(hdr.Dimensions) != dimensions {
		return nil, &FormatMismatchError{
			Expected: fmt.Sprintf("%s with %d dimensions", metric, dimensions),
			Found:    fmt.Sprintf("%s with %d dimensions", found, hdr.Dimensions),
		}
	}
	want := int64(hdr.Count) * int64(hdr.Dimensions) * 4
	if int64(r.Len()) != want {
		return nil, fmt.Errorf("index file truncated: have %d vector bytes, want %d", r.Len(), want)
	}
	idx, err := newFlatIndex(metric, dimensions)
	if err != nil {
		return nil, err
	}
	idx.vectors = make([][]float32, hdr.Count)
	raw := data[len(data)-r.Len():]
	stride := dimensions * 4
	for i := range idx.vectors {
		idx.vectors[i] = bytesToFloat32Slice(raw[i*stride : (i+1)*stride])
	}
	return idx, nil
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
