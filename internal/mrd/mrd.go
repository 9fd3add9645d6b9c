// Package mrd reads MR Solutions .mrd scan archives. The container is a
// 512-byte binary header carrying the loop counts and a data-type word,
// followed by the sample payload and a trailing PPR parameter text block
// (which this reader ignores — the counts in the binary header are
// authoritative for the array shape).
package mrd

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/kspace-tools/kspace/internal/dims"
)

// headerSize is the fixed binary header length; the payload starts right
// after it.
const headerSize = 512

// Header field offsets within the binary header.
const (
	offSamples     = 0   // int32: samples per readout
	offViews       = 4   // int32: views (phase encodes)
	offViews2      = 8   // int32: second phase axis
	offSlices      = 12  // int32: slices
	offDataType    = 18  // uint16: element type, bit 4 set = complex
	offEchoes      = 152 // int32: echoes
	offExperiments = 156 // int32: experiments (repetitions)
)

// Element type codes in the low nibble of the data-type word.
const (
	typeUint8    = 0
	typeInt8     = 1
	typeInt16    = 2
	typeInt16Alt = 3
	typeInt32    = 4
	typeFloat32  = 5
	typeFloat64  = 6

	complexFlag = 0x10
)

// Header is the decoded binary header of an .mrd file.
type Header struct {
	Samples     int
	Views       int
	Views2      int
	Slices      int
	Echoes      int
	Experiments int
	DataType    uint16
}

// Complex reports whether the payload stores (real, imag) pairs.
func (h *Header) Complex() bool {
	return h.DataType&complexFlag != 0
}

// Shape returns the logical array shape,
// [samples, views, views2, slices, echoes, experiments].
func (h *Header) Shape() []int {
	return []int{h.Samples, h.Views, h.Views2, h.Slices, h.Echoes, h.Experiments}
}

func (h *Header) elementBytes() (int, error) {
	switch h.DataType & 0x0f {
	case typeUint8, typeInt8:
		return 1, nil
	case typeInt16, typeInt16Alt:
		return 2, nil
	case typeInt32, typeFloat32:
		return 4, nil
	case typeFloat64:
		return 8, nil
	default:
		return 0, fmt.Errorf("mrd: unsupported element type 0x%02x", h.DataType)
	}
}

// Read loads an .mrd file and yields its sample buffer and shape directly.
// Real payloads get a zero imaginary part; integer samples are widened
// without scaling.
func Read(path string) ([]complex64, dims.Dim, *Header, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from the CLI
	if err != nil {
		return nil, dims.Dim{}, nil, fmt.Errorf("mrd: %w", err)
	}
	if len(raw) < headerSize {
		return nil, dims.Dim{}, nil, fmt.Errorf("mrd: %s: file shorter than the %d-byte header", path, headerSize)
	}

	h := &Header{
		Samples:     int(int32(binary.LittleEndian.Uint32(raw[offSamples:]))),
		Views:       int(int32(binary.LittleEndian.Uint32(raw[offViews:]))),
		Views2:      int(int32(binary.LittleEndian.Uint32(raw[offViews2:]))),
		Slices:      int(int32(binary.LittleEndian.Uint32(raw[offSlices:]))),
		Echoes:      int(int32(binary.LittleEndian.Uint32(raw[offEchoes:]))),
		Experiments: int(int32(binary.LittleEndian.Uint32(raw[offExperiments:]))),
		DataType:    binary.LittleEndian.Uint16(raw[offDataType:]),
	}
	for _, count := range h.Shape() {
		if count <= 0 {
			return nil, dims.Dim{}, nil, fmt.Errorf("mrd: %s: non-positive loop count in header (%v)", path, h.Shape())
		}
	}

	elemBytes, err := h.elementBytes()
	if err != nil {
		return nil, dims.Dim{}, nil, err
	}

	d := dims.FromShape(h.Shape())
	numel := d.Numel()
	values := numel
	if h.Complex() {
		values *= 2
	}
	need := headerSize + values*elemBytes
	if len(raw) < need {
		return nil, dims.Dim{}, nil, fmt.Errorf("mrd: %s: expected at least %d bytes for %d samples, got %d", path, need, numel, len(raw))
	}
	payload := raw[headerSize:need]

	out := make([]complex64, numel)
	if h.Complex() {
		for i := range out {
			re := readElement(payload, h.DataType, elemBytes, 2*i)
			im := readElement(payload, h.DataType, elemBytes, 2*i+1)
			out[i] = complex(re, im)
		}
	} else {
		for i := range out {
			out[i] = complex(readElement(payload, h.DataType, elemBytes, i), 0)
		}
	}
	return out, d, h, nil
}

func readElement(payload []byte, dataType uint16, size, i int) float32 {
	off := size * i
	switch dataType & 0x0f {
	case typeUint8:
		return float32(payload[off])
	case typeInt8:
		return float32(int8(payload[off]))
	case typeInt16, typeInt16Alt:
		return float32(int16(binary.LittleEndian.Uint16(payload[off:])))
	case typeInt32:
		return float32(int32(binary.LittleEndian.Uint32(payload[off:])))
	case typeFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(payload[off:]))
	case typeFloat64:
		return float32(math.Float64frombits(binary.LittleEndian.Uint64(payload[off:])))
	}
	return 0
}
