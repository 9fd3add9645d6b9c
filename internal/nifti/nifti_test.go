package nifti

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspace-tools/kspace/internal/dims"
)

func TestRealRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nii")
	d := dims.FromShape([]int{10, 5, 4})
	data := make([]float32, d.Numel())
	for i := range data {
		data[i] = float32(i) * 0.5
	}

	require.NoError(t, WriteReal(path, data, d, nil))

	got, gotDims, h, err := ReadReal(path)
	require.NoError(t, err)
	assert.Equal(t, int16(DTFloat32), h.Datatype)
	assert.Equal(t, []int{10, 5, 4}, gotDims.ShapeTrimmed())
	assert.Equal(t, data, got)
}

func TestComplexRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nii")
	d := dims.FromShape([]int{6, 4})
	data := make([]complex64, d.Numel())
	for i := range data {
		data[i] = complex(float32(i), float32(-i))
	}

	require.NoError(t, WriteComplex(path, data, d, nil))

	got, gotDims, h, err := ReadComplex(path)
	require.NoError(t, err)
	assert.Equal(t, int16(DTComplex64), h.Datatype)
	assert.Equal(t, []int{6, 4}, gotDims.ShapeTrimmed())
	assert.Equal(t, data, got)
}

func TestRealFromComplexTakesRealPart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nii")
	d := dims.FromShape([]int{3, 3})
	data := make([]complex64, d.Numel())
	for i := range data {
		data[i] = complex(float32(i), 7)
	}
	require.NoError(t, WriteComplex(path, data, d, nil))

	got, _, _, err := ReadReal(path)
	require.NoError(t, err)
	for i, v := range got {
		assert.Equal(t, float32(i), v)
	}
}

func TestComplexFromRealZeroFillsImaginary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nii")
	d := dims.FromShape([]int{4})
	require.NoError(t, WriteReal(path, []float32{1, 2, 3, 4}, d, nil))

	got, _, _, err := ReadComplex(path)
	require.NoError(t, err)
	assert.Equal(t, []complex64{1, 2, 3, 4}, got)
}

func TestHighAxesCollapseIntoFourth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nii")
	d := dims.FromShape([]int{10, 5, 4, 3, 3})
	data := make([]float32, d.Numel())
	require.NoError(t, WriteReal(path, data, d, nil))

	_, gotDims, h, err := ReadReal(path)
	require.NoError(t, err)
	assert.Equal(t, 4, h.NDim())
	assert.Equal(t, []int{10, 5, 4, 9}, gotDims.ShapeTrimmed())
}

func TestReferenceHeaderCloning(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.nii")
	d := dims.FromShape([]int{4, 4, 2})
	require.NoError(t, WriteReal(first, make([]float32, d.Numel()), d, nil))

	_, _, ref, err := ReadReal(first)
	require.NoError(t, err)
	ref.Pixdim[1] = 0.25
	ref.SformCode = 1
	ref.SrowX = [4]float32{0.25, 0, 0, -10}

	second := filepath.Join(dir, "second.nii")
	require.NoError(t, WriteReal(second, make([]float32, d.Numel()), d, ref))

	_, _, h, err := ReadReal(second)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, h.Pixdim[1], 1e-6)
	assert.Equal(t, int16(1), h.SformCode)
	assert.InDelta(t, -10, h.SrowX[3], 1e-6)
}

func TestWriteRejectsInconsistentBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nii")
	err := WriteReal(path, make([]float32, 5), dims.FromShape([]int{4, 4}), nil)
	assert.Error(t, err)
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.nii")
	raw := make([]byte, 400)
	for i := range raw {
		raw[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	_, _, _, err := ReadReal(path)
	assert.Error(t, err)
}
