package acq

import (
	"fmt"

	"github.com/kspace-tools/kspace/internal/dims"
	"github.com/kspace-tools/kspace/internal/jcamp"
)

// Parameter names in the Bruker acqp file that determine the fid layout.
const (
	// ParamAcqSize is the acquisition matrix size per axis. The first entry
	// is the readout sample count (possibly oversampled).
	ParamAcqSize = "ACQ_size"
	// ParamReceivers is the receiver-enable mask; the active-channel count
	// is the number of Yes entries.
	ParamReceivers = "ACQ_ReceiverSelect"
	// ParamEchoes is the number of echoes in one TR, usually an inner loop
	// of the pulse program.
	ParamEchoes = "NECHOES"
	// ParamRepeats is the number of repeated scans, used for time series.
	ParamRepeats = "NR"
	// ParamWordSize is the sample word encoding.
	ParamWordSize = "ACQ_word_size"
)

// BlockSize is the device write granularity of the standard Bruker KBlock
// format, in bytes. Chunks are padded up to a whole number of blocks.
const BlockSize = 1024

// wordSize32 is the only recognized sample encoding: 32-bit integer words,
// 8 bytes per complex sample.
const wordSize32 = "_32_BIT"

// Options tune geometry derivation.
type Options struct {
	// Oversample divides the first acquisition axis when the physical
	// sample count exceeds the logical readout size (2 for typical radial
	// scans). Zero means 1.
	Oversample int
	// Layout overrides the axis-order convention. The zero value means
	// DefaultLayout.
	Layout Layout
	// BlockSize overrides the device block granularity in bytes. Zero
	// means BlockSize.
	BlockSize int
}

// Geometry is the physical chunking model of one fid file, derived from
// scan metadata. All counts are in complex samples unless named otherwise.
type Geometry struct {
	MatrixSize []int `yaml:"matrix_size"`
	Receivers  int   `yaml:"receivers"`
	Echoes     int   `yaml:"echoes"`
	Repeats    int   `yaml:"repeats"`
	Oversample int   `yaml:"oversample"`

	BytesPerSample  int `yaml:"bytes_per_sample"`
	BlockSize       int `yaml:"block_size"`
	ChunkSamples    int `yaml:"chunk_samples"`
	SamplesPerBlock int `yaml:"samples_per_block"`
	BlocksPerChunk  int `yaml:"blocks_per_chunk"`
	NChunks         int `yaml:"n_chunks"`
	TotalSamples    int `yaml:"total_samples"`
	ExpectedBytes   int `yaml:"expected_bytes"`

	// Dims is the logical shape of the decoded array, ordered by the
	// layout's chunk axes then outer axes.
	Dims dims.Dim `yaml:"-"`
}

// Shape returns the decoded array's shape with trailing singletons removed,
// for display.
func (g Geometry) Shape() []int {
	return g.Dims.ShapeTrimmed()
}

// Plan derives the chunking geometry from parsed scan metadata. It touches
// exactly five parameters and fails fast on anything absent, malformed, or
// encoded in a word size the decoder does not implement.
func Plan(p *jcamp.Params, opts Options) (Geometry, error) {
	var g Geometry

	acqSizeVal, ok := p.Get(ParamAcqSize)
	if !ok {
		return g, &MissingFieldError{Field: ParamAcqSize}
	}
	recvVal, ok := p.Get(ParamReceivers)
	if !ok {
		return g, &MissingFieldError{Field: ParamReceivers}
	}
	echoVal, ok := p.Get(ParamEchoes)
	if !ok {
		return g, &MissingFieldError{Field: ParamEchoes}
	}
	repVal, ok := p.Get(ParamRepeats)
	if !ok {
		return g, &MissingFieldError{Field: ParamRepeats}
	}
	wordVal, ok := p.Get(ParamWordSize)
	if !ok {
		return g, &MissingFieldError{Field: ParamWordSize}
	}

	acqSize, ok := acqSizeVal.Ints()
	if !ok || len(acqSize) == 0 {
		return g, &MalformedFieldError{Field: ParamAcqSize, Reason: "expected an integer sequence"}
	}
	for _, size := range acqSize {
		if size <= 0 {
			return g, &MalformedFieldError{Field: ParamAcqSize, Reason: fmt.Sprintf("non-positive axis size %d", size)}
		}
	}
	recvMask, ok := recvVal.Bools()
	if !ok {
		return g, &MalformedFieldError{Field: ParamReceivers, Reason: "expected a Yes/No sequence"}
	}
	receivers := 0
	for _, on := range recvMask {
		if on {
			receivers++
		}
	}
	if receivers == 0 {
		return g, &MalformedFieldError{Field: ParamReceivers, Reason: "no active receivers"}
	}
	echoes, ok := echoVal.Int()
	if !ok || echoes <= 0 {
		return g, &MalformedFieldError{Field: ParamEchoes, Reason: "expected a positive integer"}
	}
	repeats, ok := repVal.Int()
	if !ok || repeats <= 0 {
		return g, &MalformedFieldError{Field: ParamRepeats, Reason: "expected a positive integer"}
	}

	// Word size gates everything else: reject unknown encodings before any
	// sizing arithmetic, and long before any payload byte is read.
	var bytesPerSample int
	switch wordVal.String() {
	case wordSize32:
		bytesPerSample = 8 // 8 bytes per complex sample
	default:
		return g, &UnsupportedWordSizeError{WordSize: wordVal.String()}
	}

	oversample := opts.Oversample
	if oversample == 0 {
		oversample = 1
	}
	if oversample < 1 {
		return g, &MalformedFieldError{Field: "oversample", Reason: fmt.Sprintf("factor %d must be >= 1", oversample)}
	}
	readout := acqSize[0] / oversample
	if readout == 0 {
		return g, &MalformedFieldError{Field: ParamAcqSize, Reason: fmt.Sprintf("readout %d smaller than oversampling factor %d", acqSize[0], oversample)}
	}

	layout := opts.Layout
	if layout.isZero() {
		layout = DefaultLayout()
	}
	if err := layout.validate(); err != nil {
		return g, err
	}

	blockSize := opts.BlockSize
	if blockSize == 0 {
		blockSize = BlockSize
	}

	g.MatrixSize = acqSize
	g.Receivers = receivers
	g.Echoes = echoes
	g.Repeats = repeats
	g.Oversample = oversample
	g.BytesPerSample = bytesPerSample
	g.BlockSize = blockSize

	axisSizes := func(a Axis) []int {
		switch a {
		case AxisReadout:
			return []int{readout}
		case AxisReceiver:
			return []int{receivers}
		case AxisEcho:
			return []int{echoes}
		case AxisPhase:
			return acqSize[1:]
		case AxisRepeat:
			return []int{repeats}
		}
		return nil
	}

	g.ChunkSamples = 1
	var shape []int
	for _, a := range layout.Chunk {
		for _, size := range axisSizes(a) {
			g.ChunkSamples *= size
			shape = append(shape, size)
		}
	}
	g.NChunks = 1
	for _, a := range layout.Outer {
		for _, size := range axisSizes(a) {
			g.NChunks *= size
			shape = append(shape, size)
		}
	}

	g.SamplesPerBlock = blockSize / bytesPerSample
	g.BlocksPerChunk = (g.ChunkSamples*bytesPerSample + blockSize - 1) / blockSize
	g.TotalSamples = g.ChunkSamples * g.NChunks
	g.ExpectedBytes = g.NChunks * g.BlocksPerChunk * blockSize
	g.Dims = dims.FromShape(shape)

	if g.Dims.Numel() != g.TotalSamples {
		// Can only happen if the layout arithmetic above is broken.
		return g, fmt.Errorf("acq: derived shape %v disagrees with sample count %d", shape, g.TotalSamples)
	}
	return g, nil
}
