package cmd

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspace-tools/kspace/internal/cfl"
	"github.com/kspace-tools/kspace/internal/dims"
	"github.com/kspace-tools/kspace/internal/nifti"
	"github.com/kspace-tools/kspace/internal/nrrd"
)

const testAcqp = `##TITLE=Parameter List
##$ACQ_size=( 2 )
64 32
##$ACQ_ReceiverSelect=( 4 )
Yes Yes No No
##$NECHOES=1
##$NR=1
##$ACQ_word_size=_32_BIT
##END=
`

// writeTestFid lays out 32 chunks of 128 complex samples, one 1024-byte
// block per chunk, sample n of chunk c being (1000c+n, -(1000c+n)).
func writeTestFid(t *testing.T, path string) {
	t.Helper()
	const (
		nChunks      = 32
		chunkSamples = 128
		chunkBytes   = 1024
	)
	raw := make([]byte, nChunks*chunkBytes)
	for c := 0; c < nChunks; c++ {
		for n := 0; n < chunkSamples; n++ {
			v := int32(1000*c + n)
			off := c*chunkBytes + 8*n
			binary.LittleEndian.PutUint32(raw[off:], uint32(v))
			binary.LittleEndian.PutUint32(raw[off+4:], uint32(-v))
		}
	}
	require.NoError(t, os.WriteFile(path, raw, 0o600))
}

func TestFidToCflEndToEnd(t *testing.T) {
	dir := t.TempDir()
	fidPath := filepath.Join(dir, "fid")
	acqpPath := filepath.Join(dir, "acqp")
	outBase := filepath.Join(dir, "out")

	writeTestFid(t, fidPath)
	require.NoError(t, os.WriteFile(acqpPath, []byte(testAcqp), 0o600))

	_, err := execute(t, "fid", fidPath, acqpPath, outBase)
	require.NoError(t, err)

	data, d, err := cfl.Read(outBase)
	require.NoError(t, err)
	assert.Equal(t, []int{64, 2, 1, 32}, d.ShapeTrimmed())
	require.Len(t, data, 4096)
	assert.Equal(t, complex64(complex(0, 0)), data[0])
	assert.Equal(t, complex64(complex(1, -1)), data[1])
	assert.Equal(t, complex64(complex(1000, -1000)), data[128])
}

func TestFidSizeMismatchFails(t *testing.T) {
	dir := t.TempDir()
	fidPath := filepath.Join(dir, "fid")
	acqpPath := filepath.Join(dir, "acqp")

	require.NoError(t, os.WriteFile(fidPath, make([]byte, 1000), 0o600))
	require.NoError(t, os.WriteFile(acqpPath, []byte(testAcqp), 0o600))

	_, err := execute(t, "fid", fidPath, acqpPath, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size mismatch")
}

func TestTrajToCflEndToEnd(t *testing.T) {
	dir := t.TempDir()
	trajPath := filepath.Join(dir, "traj")
	outBase := filepath.Join(dir, "traj-out")

	readout, points := 4, 2
	total := 3 * readout * points
	raw := make([]byte, 8*total)
	for i := 0; i < total; i++ {
		binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(float64(i)))
	}
	require.NoError(t, os.WriteFile(trajPath, raw, 0o600))

	_, err := execute(t, "traj", trajPath, outBase, "--readout", "4")
	require.NoError(t, err)

	data, d, err := cfl.Read(outBase)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 2}, d.ShapeTrimmed())
	assert.Equal(t, complex64(complex(5, 0)), data[5])
}

func TestExportNiftiEndToEnd(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "arr")
	d := dims.FromShape([]int{4, 3, 2})
	data := make([]complex64, d.Numel())
	for i := range data {
		data[i] = complex(float32(i), 1)
	}
	require.NoError(t, cfl.Write(base, data, d))

	out := filepath.Join(dir, "vol.nii")
	_, err := execute(t, "export", base, out)
	require.NoError(t, err)

	got, gotDims, _, err := nifti.ReadComplex(out)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 2}, gotDims.ShapeTrimmed())
	assert.Equal(t, data, got)
}

func TestExportNrrdRequiresMagnitude(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "arr")
	d := dims.FromShape([]int{2, 2})
	require.NoError(t, cfl.Write(base, make([]complex64, 4), d))

	_, err := execute(t, "export", base, filepath.Join(dir, "vol.nrrd"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--magnitude")
}

func TestExportNrrdMagnitude(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "arr")
	d := dims.FromShape([]int{2, 2})
	data := []complex64{complex(3, 4), 0, 0, complex(-3, -4)}
	require.NoError(t, cfl.Write(base, data, d))

	out := filepath.Join(dir, "vol.nrrd")
	_, err := execute(t, "export", base, out, "--magnitude")
	require.NoError(t, err)

	got, _, _, err := nrrd.Read(out)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 0, 0, 5}, got)
}

func TestMrdToCflEndToEnd(t *testing.T) {
	dir := t.TempDir()
	mrdPath := filepath.Join(dir, "scan.mrd")
	outBase := filepath.Join(dir, "out")

	// 512-byte MR Solutions header: 2x3 complex float32 samples.
	raw := make([]byte, 512+8*6)
	binary.LittleEndian.PutUint32(raw[0:], 2)  // samples
	binary.LittleEndian.PutUint32(raw[4:], 3)  // views
	binary.LittleEndian.PutUint32(raw[8:], 1)  // views2
	binary.LittleEndian.PutUint32(raw[12:], 1) // slices
	binary.LittleEndian.PutUint16(raw[18:], 0x15)
	binary.LittleEndian.PutUint32(raw[152:], 1) // echoes
	binary.LittleEndian.PutUint32(raw[156:], 1) // experiments
	for i := 0; i < 6; i++ {
		binary.LittleEndian.PutUint32(raw[512+8*i:], math.Float32bits(float32(i)))
		binary.LittleEndian.PutUint32(raw[512+8*i+4:], math.Float32bits(float32(i)+0.5))
	}
	require.NoError(t, os.WriteFile(mrdPath, raw, 0o600))

	_, err := execute(t, "mrd", mrdPath, outBase)
	require.NoError(t, err)

	data, d, err := cfl.Read(outBase)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, d.ShapeTrimmed())
	assert.Equal(t, complex64(complex(4, 4.5)), data[4])
}

func TestInfoCfl(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "arr")
	d := dims.FromShape([]int{8, 4})
	require.NoError(t, cfl.Write(base, make([]complex64, 32), d))

	out, err := execute(t, "info", base)
	require.NoError(t, err)
	assert.Contains(t, out, "shape:")
	assert.Contains(t, out, "numel: 32")
}

func TestInfoFidGeometry(t *testing.T) {
	dir := t.TempDir()
	fidPath := filepath.Join(dir, "fid")
	acqpPath := filepath.Join(dir, "acqp")
	writeTestFid(t, fidPath)
	require.NoError(t, os.WriteFile(acqpPath, []byte(testAcqp), 0o600))

	out, err := execute(t, "info", fidPath, acqpPath)
	require.NoError(t, err)
	assert.Contains(t, out, "expected_bytes: 32768")
	assert.Contains(t, out, "chunk_samples: 128")
}

func TestPreviewEndToEnd(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "arr")
	d := dims.FromShape([]int{8, 8})
	data := make([]complex64, d.Numel())
	for i := range data {
		data[i] = complex(float32(i%13), float32(i%7))
	}
	require.NoError(t, cfl.Write(base, data, d))

	out := filepath.Join(dir, "look.png")
	_, err := execute(t, "preview", base, out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
