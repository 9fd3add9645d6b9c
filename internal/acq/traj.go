package acq

import (
	"encoding/binary"
	"math"

	"github.com/kspace-tools/kspace/internal/dims"
)

// DecodeTrajectory reinterprets a raw buffer of little-endian float64
// values as k-space trajectory coordinates: triples of spatial components
// per readout sample. The values land in the real part of the output with
// the imaginary part fixed at zero, shaped [3, readout, points].
//
// A sample count that does not divide evenly into triples of readout-sized
// groups is rejected, never truncated.
func DecodeTrajectory(raw []byte, readout int) ([]complex64, dims.Dim, error) {
	var d dims.Dim
	if readout <= 0 {
		return nil, d, &SizeMismatchError{Actual: readout, Multiple: 1, Unit: "readout samples"}
	}
	if len(raw)%8 != 0 {
		return nil, d, &SizeMismatchError{Actual: len(raw), Multiple: 8, Unit: "bytes"}
	}
	total := len(raw) / 8
	if total%(3*readout) != 0 {
		return nil, d, &SizeMismatchError{Actual: total, Multiple: 3 * readout, Unit: "samples"}
	}
	points := total / (3 * readout)

	out := make([]complex64, total)
	for i := range out {
		v := math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		out[i] = complex(float32(v), 0)
	}
	d = dims.FromShape([]int{3, readout, points})
	return out, d, nil
}
