package nrrd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspace-tools/kspace/internal/dims"
)

func sampleData(d dims.Dim) []float32 {
	data := make([]float32, d.Numel())
	for i := range data {
		data[i] = float32(i) * 0.25
	}
	return data
}

func TestAttachedRawRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nrrd")
	d := dims.FromShape([]int{4, 3, 2})
	data := sampleData(d)

	require.NoError(t, Write(path, data, d, WriteOptions{}))

	got, gotDims, h, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 2}, gotDims.ShapeTrimmed())
	assert.Equal(t, EncodingRaw, h.Encoding)
	assert.Equal(t, data, got)
}

func TestAttachedGzipRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nrrd")
	d := dims.FromShape([]int{8, 8})
	data := sampleData(d)

	require.NoError(t, Write(path, data, d, WriteOptions{Encoding: EncodingGzip}))

	got, _, h, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, EncodingGzip, h.Encoding)
	assert.Equal(t, data, got)
}

func TestDetachedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vol.nhdr")
	d := dims.FromShape([]int{5, 2})
	data := sampleData(d)

	require.NoError(t, Write(path, data, d, WriteOptions{}))

	_, err := os.Stat(filepath.Join(dir, "vol.raw"))
	require.NoError(t, err, "detached write must produce a sibling data file")

	got, gotDims, h, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "vol.raw", h.DataFile)
	assert.Equal(t, []int{5, 2}, gotDims.ShapeTrimmed())
	assert.Equal(t, data, got)
}

func TestReferenceHeaderFieldsSurvive(t *testing.T) {
	dir := t.TempDir()
	d := dims.FromShape([]int{4, 4})
	data := sampleData(d)

	ref := &Header{
		Sizes: []int{4, 4},
		Extra: [][2]string{
			{"space", "left-posterior-superior"},
			{"space directions", "(0.5,0,0) (0,0.5,0)"},
		},
	}
	path := filepath.Join(dir, "vol.nrrd")
	require.NoError(t, Write(path, data, d, WriteOptions{Reference: ref}))

	_, _, h, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, ref.Extra, h.Extra)
}

func TestReferenceHeaderDimensionAgreement(t *testing.T) {
	d := dims.FromShape([]int{4, 4})
	ref := &Header{Sizes: []int{8, 8}}
	err := Write(filepath.Join(t.TempDir(), "vol.nrrd"), sampleData(d), d, WriteOptions{Reference: ref})
	assert.Error(t, err)
}

func TestReadWidensIntegerTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vol.nrrd")
	hdr := "NRRD0004\ntype: short\ndimension: 1\nsizes: 3\nendian: little\nencoding: raw\n\n"
	payload := []byte{0xFF, 0xFF, 0x00, 0x00, 0x2A, 0x00} // -1, 0, 42
	require.NoError(t, os.WriteFile(path, append([]byte(hdr), payload...), 0o600))

	got, _, _, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 0, 42}, got)
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("bad magic", func(t *testing.T) {
		path := filepath.Join(dir, "bad.nrrd")
		require.NoError(t, os.WriteFile(path, []byte("JUNK\n"), 0o600))
		_, _, _, err := Read(path)
		assert.Error(t, err)
	})

	t.Run("unsupported type", func(t *testing.T) {
		path := filepath.Join(dir, "block.nrrd")
		hdr := "NRRD0004\ntype: block\ndimension: 1\nsizes: 1\nencoding: raw\n\nx"
		require.NoError(t, os.WriteFile(path, []byte(hdr), 0o600))
		_, _, _, err := Read(path)
		assert.Error(t, err)
	})

	t.Run("truncated payload", func(t *testing.T) {
		path := filepath.Join(dir, "trunc.nrrd")
		hdr := "NRRD0004\ntype: float\ndimension: 1\nsizes: 4\nencoding: raw\n\n\x00\x00"
		require.NoError(t, os.WriteFile(path, []byte(hdr), 0o600))
		_, _, _, err := Read(path)
		assert.Error(t, err)
	})

	t.Run("big endian rejected", func(t *testing.T) {
		path := filepath.Join(dir, "big.nrrd")
		hdr := "NRRD0004\ntype: float\ndimension: 1\nsizes: 1\nendian: big\nencoding: raw\n\n\x00\x00\x00\x00"
		require.NoError(t, os.WriteFile(path, []byte(hdr), 0o600))
		_, _, _, err := Read(path)
		assert.Error(t, err)
	})
}
