package jcamp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAcqp = `##TITLE=Parameter List, ParaVision 6.0.1
##JCAMPDX=4.24
$$ Mon Aug 24 10:11:12 2026 CEST (UT+2h)
##$ACQ_size=( 2 )
128 64
##$ACQ_ReceiverSelect=( 4 )
Yes Yes No No
##$NECHOES=1
##$NR=3
##$ACQ_word_size=_32_BIT
##$ACQ_method=<Bruker:FLASH>
##$ACQ_dim_desc=( 2 )
Spatial Spatial
##END=
`

func TestParseScalarsAndArrays(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleAcqp))
	require.NoError(t, err)

	v, ok := p.Get("ACQ_size")
	require.True(t, ok)
	sizes, ok := v.Ints()
	require.True(t, ok)
	assert.Equal(t, []int{128, 64}, sizes)

	v, ok = p.Get("ACQ_ReceiverSelect")
	require.True(t, ok)
	recv, ok := v.Bools()
	require.True(t, ok)
	assert.Equal(t, []bool{true, true, false, false}, recv)

	v, ok = p.Get("NECHOES")
	require.True(t, ok)
	n, ok := v.Int()
	require.True(t, ok)
	assert.Equal(t, 1, n)

	v, ok = p.Get("NR")
	require.True(t, ok)
	n, ok = v.Int()
	require.True(t, ok)
	assert.Equal(t, 3, n)

	v, ok = p.Get("ACQ_word_size")
	require.True(t, ok)
	assert.Equal(t, "_32_BIT", v.String())

	v, ok = p.Get("ACQ_method")
	require.True(t, ok)
	assert.Equal(t, "Bruker:FLASH", v.Text())
}

func TestParseMissingParameter(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleAcqp))
	require.NoError(t, err)
	_, ok := p.Get("NO_SUCH_PARAM")
	assert.False(t, ok)
}

func TestParseSkipsCommentsAndTitle(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleAcqp))
	require.NoError(t, err)
	// Standard labels are retained under their bare name.
	v, ok := p.Get("TITLE")
	require.True(t, ok)
	assert.Contains(t, v.String(), "ParaVision")
}

func TestParseMultiLinePayload(t *testing.T) {
	src := "##$ACQ_size=( 3 )\n64\n64\n32\n##END=\n"
	p, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	v, ok := p.Get("ACQ_size")
	require.True(t, ok)
	sizes, ok := v.Ints()
	require.True(t, ok)
	assert.Equal(t, []int{64, 64, 32}, sizes)
}

func TestValueConversionFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"ints on words", "##$ACQ_size=( 2 )\nSpatial Spatial\n"},
		{"bools on ints", "##$ACQ_ReceiverSelect=( 2 )\n1 0\n"},
		{"int on string", "##$NECHOES=_32_BIT\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(strings.NewReader(tt.src))
			require.NoError(t, err)
			switch tt.name {
			case "ints on words":
				v, _ := p.Get("ACQ_size")
				_, ok := v.Ints()
				assert.False(t, ok)
			case "bools on ints":
				v, _ := p.Get("ACQ_ReceiverSelect")
				_, ok := v.Bools()
				assert.False(t, ok)
			case "int on string":
				v, _ := p.Get("NECHOES")
				_, ok := v.Int()
				assert.False(t, ok)
			}
		})
	}
}

func TestParseMalformedEntry(t *testing.T) {
	_, err := Parse(strings.NewReader("##$BROKEN\n"))
	assert.Error(t, err)
}

func TestParseUnterminatedSizeDecl(t *testing.T) {
	_, err := Parse(strings.NewReader("##$ACQ_size=( 2\n128 64\n"))
	assert.Error(t, err)
}
