// Package nifti reads and writes single-file NIfTI-1 volumes (.nii),
// little endian. It covers the scalar and complex sample types this tool
// moves around; exotic encodings (RGB, long double) are rejected with an
// explicit error instead of a guess.
package nifti

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/kspace-tools/kspace/internal/dims"
)

// ReadReal loads a volume as real float32 data. Complex volumes contribute
// only their real part; callers can tell from the returned header's
// Datatype whether that happened.
func ReadReal(path string) ([]float32, dims.Dim, *Header, error) {
	h, payload, err := readFile(path)
	if err != nil {
		return nil, dims.Dim{}, nil, err
	}
	d := dims.FromShape(h.Shape())
	data, err := decodeReal(payload, h.Datatype, d.Numel())
	if err != nil {
		return nil, d, nil, fmt.Errorf("nifti: %s: %w", path, err)
	}
	return data, d, h, nil
}

// ReadComplex loads a volume as complex64 data. Real volumes get a zero
// imaginary part.
func ReadComplex(path string) ([]complex64, dims.Dim, *Header, error) {
	h, payload, err := readFile(path)
	if err != nil {
		return nil, dims.Dim{}, nil, err
	}
	d := dims.FromShape(h.Shape())
	data, err := decodeComplex(payload, h.Datatype, d.Numel())
	if err != nil {
		return nil, d, nil, fmt.Errorf("nifti: %s: %w", path, err)
	}
	return data, d, h, nil
}

// WriteReal stores float32 data. Axes above the third collapse into the
// fourth, matching what downstream volumetric tools accept. A non-nil ref
// header contributes its geometry and annotation fields.
func WriteReal(path string, data []float32, d dims.Dim, ref *Header) error {
	shape, err := collapsedShape(d, len(data))
	if err != nil {
		return err
	}
	payload := make([]byte, 4*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(v))
	}
	return writeFile(path, shape, DTFloat32, 32, payload, ref)
}

// WriteComplex stores complex64 data with the same axis collapsing rules as
// WriteReal.
func WriteComplex(path string, data []complex64, d dims.Dim, ref *Header) error {
	shape, err := collapsedShape(d, len(data))
	if err != nil {
		return err
	}
	payload := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint32(payload[8*i:], math.Float32bits(real(v)))
		binary.LittleEndian.PutUint32(payload[8*i+4:], math.Float32bits(imag(v)))
	}
	return writeFile(path, shape, DTComplex64, 64, payload, ref)
}

func collapsedShape(d dims.Dim, n int) ([]int, error) {
	if d.Numel() != n {
		return nil, fmt.Errorf("nifti: buffer has %d samples but dimensions describe %d", n, d.Numel())
	}
	shape := d.ShapeTrimmed()
	if len(shape) <= 4 {
		return shape, nil
	}
	dim4 := 1
	for _, size := range shape[3:] {
		dim4 *= size
	}
	return []int{shape[0], shape[1], shape[2], dim4}, nil
}

func readFile(path string) (*Header, []byte, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the CLI
	if err != nil {
		return nil, nil, fmt.Errorf("nifti: %w", err)
	}
	if len(raw) < headerSize {
		return nil, nil, fmt.Errorf("nifti: %s: file shorter than the %d-byte header", path, headerSize)
	}
	var h Header
	if err := binary.Read(bytes.NewReader(raw[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, nil, fmt.Errorf("nifti: %s: %w", path, err)
	}
	if h.SizeofHdr != headerSize {
		return nil, nil, fmt.Errorf("nifti: %s: bad sizeof_hdr %d (big-endian files are not supported)", path, h.SizeofHdr)
	}
	if h.Magic != [4]byte{'n', '+', '1', 0} && h.Magic != [4]byte{'n', 'i', '1', 0} {
		return nil, nil, fmt.Errorf("nifti: %s: bad magic %q", path, h.Magic[:])
	}
	offset := int(h.VoxOffset)
	if offset < headerSize || offset > len(raw) {
		return nil, nil, fmt.Errorf("nifti: %s: vox_offset %d out of range", path, offset)
	}
	return &h, raw[offset:], nil
}

func writeFile(path string, shape []int, datatype, bitpix int16, payload []byte, ref *Header) error {
	var h Header
	if ref != nil {
		h = cloneForShape(ref, shape, datatype, bitpix)
	} else {
		h = newHeader(shape, datatype, bitpix)
	}

	var buf bytes.Buffer
	buf.Grow(dataOffset + len(payload))
	if err := binary.Write(&buf, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("nifti: %w", err)
	}
	buf.Write([]byte{0, 0, 0, 0}) // no extensions
	buf.Write(payload)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("nifti: %w", err)
	}
	return nil
}

func sampleBytes(datatype int16) (int, error) {
	switch datatype {
	case DTUint8, DTInt8:
		return 1, nil
	case DTInt16, DTUint16:
		return 2, nil
	case DTInt32, DTUint32, DTFloat32:
		return 4, nil
	case DTInt64, DTUint64, DTFloat64, DTComplex64:
		return 8, nil
	case DTComplex128:
		return 16, nil
	default:
		return 0, fmt.Errorf("unsupported data type code %d", datatype)
	}
}

func checkPayload(payload []byte, datatype int16, numel int) (int, error) {
	size, err := sampleBytes(datatype)
	if err != nil {
		return 0, err
	}
	if len(payload) < size*numel {
		return 0, fmt.Errorf("payload holds %d bytes, need %d for %d samples", len(payload), size*numel, numel)
	}
	return size, nil
}

func realSample(payload []byte, datatype int16, size, i int) float32 {
	off := size * i
	switch datatype {
	case DTUint8:
		return float32(payload[off])
	case DTInt8:
		return float32(int8(payload[off]))
	case DTInt16:
		return float32(int16(binary.LittleEndian.Uint16(payload[off:])))
	case DTUint16:
		return float32(binary.LittleEndian.Uint16(payload[off:]))
	case DTInt32:
		return float32(int32(binary.LittleEndian.Uint32(payload[off:])))
	case DTUint32:
		return float32(binary.LittleEndian.Uint32(payload[off:]))
	case DTInt64:
		return float32(int64(binary.LittleEndian.Uint64(payload[off:])))
	case DTUint64:
		return float32(binary.LittleEndian.Uint64(payload[off:]))
	case DTFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(payload[off:]))
	case DTFloat64:
		return float32(math.Float64frombits(binary.LittleEndian.Uint64(payload[off:])))
	}
	return 0
}

func decodeReal(payload []byte, datatype int16, numel int) ([]float32, error) {
	size, err := checkPayload(payload, datatype, numel)
	if err != nil {
		return nil, err
	}
	out := make([]float32, numel)
	switch datatype {
	case DTComplex64:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[8*i:]))
		}
	case DTComplex128:
		for i := range out {
			out[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(payload[16*i:])))
		}
	default:
		for i := range out {
			out[i] = realSample(payload, datatype, size, i)
		}
	}
	return out, nil
}

func decodeComplex(payload []byte, datatype int16, numel int) ([]complex64, error) {
	size, err := checkPayload(payload, datatype, numel)
	if err != nil {
		return nil, err
	}
	out := make([]complex64, numel)
	switch datatype {
	case DTComplex64:
		for i := range out {
			re := math.Float32frombits(binary.LittleEndian.Uint32(payload[8*i:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(payload[8*i+4:]))
			out[i] = complex(re, im)
		}
	case DTComplex128:
		for i := range out {
			re := math.Float64frombits(binary.LittleEndian.Uint64(payload[16*i:]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(payload[16*i+8:]))
			out[i] = complex(float32(re), float32(im))
		}
	default:
		for i := range out {
			out[i] = complex(realSample(payload, datatype, size, i), 0)
		}
	}
	return out, nil
}
