package acq

import (
	"encoding/binary"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Decode reconstructs the complex sample stream from a raw fid byte buffer.
// The buffer length must match the geometry exactly; a mismatch means the
// derived chunking model does not describe this file and nothing is decoded.
//
// Each chunk occupies BlocksPerChunk*BlockSize bytes in the input; only the
// first ChunkSamples*BytesPerSample of those are meaningful, the rest is
// block-alignment padding. Samples are little-endian int32 (real, imag)
// pairs, widened to float32 without scaling.
//
// Chunks read and write disjoint regions, so they are decoded concurrently;
// workers caps the fan-out, and workers <= 0 means one per CPU. The result
// is identical for any worker count.
func Decode(raw []byte, g Geometry, workers int) ([]complex64, error) {
	if len(raw) != g.ExpectedBytes {
		return nil, &SizeMismatchError{Expected: g.ExpectedBytes, Actual: len(raw), Unit: "bytes"}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]complex64, g.TotalSamples)
	chunkBytes := g.BlocksPerChunk * g.BlockSize
	payloadBytes := g.ChunkSamples * g.BytesPerSample

	p := pool.New().WithMaxGoroutines(workers)
	for c := 0; c < g.NChunks; c++ {
		src := raw[c*chunkBytes : c*chunkBytes+payloadBytes]
		dst := out[c*g.ChunkSamples : (c+1)*g.ChunkSamples]
		p.Go(func() {
			decodeChunk(src, dst)
		})
	}
	p.Wait()
	return out, nil
}

func decodeChunk(src []byte, dst []complex64) {
	for i := range dst {
		re := int32(binary.LittleEndian.Uint32(src[8*i:]))
		im := int32(binary.LittleEndian.Uint32(src[8*i+4:]))
		dst[i] = complex(float32(re), float32(im))
	}
}
