package nifti

// NIfTI-1 data type codes (the dt field of the header).
const (
	DTUint8      = 2
	DTInt16      = 4
	DTInt32      = 8
	DTFloat32    = 16
	DTComplex64  = 32
	DTFloat64    = 64
	DTInt8       = 256
	DTUint16     = 512
	DTUint32     = 768
	DTInt64      = 1024
	DTUint64     = 1280
	DTComplex128 = 1792
)

const (
	headerSize = 348
	// dataOffset is the usual single-file payload offset: the 348-byte
	// header plus the 4-byte extension flag.
	dataOffset = headerSize + 4
)

// Header is the binary-exact NIfTI-1 header. Field order and widths match
// the on-disk layout so the whole struct round-trips through
// encoding/binary in one call.
type Header struct {
	SizeofHdr    int32
	DataTypeName [10]byte
	DBName       [18]byte
	Extents      int32
	SessionError int16
	Regular      byte
	DimInfo      byte

	Dim        [8]int16
	IntentP1   float32
	IntentP2   float32
	IntentP3   float32
	Intent     int16
	Datatype   int16
	Bitpix     int16
	SliceStart int16
	Pixdim     [8]float32
	VoxOffset  float32
	SclSlope   float32
	SclInter   float32
	SliceEnd   int16
	SliceCode  byte
	XyztUnits  byte
	CalMax     float32
	CalMin     float32
	SliceDur   float32
	Toffset    float32
	Glmax      int32
	Glmin      int32

	Descrip [80]byte
	AuxFile [24]byte

	QformCode int16
	SformCode int16
	QuaternB  float32
	QuaternC  float32
	QuaternD  float32
	QoffsetX  float32
	QoffsetY  float32
	QoffsetZ  float32
	SrowX     [4]float32
	SrowY     [4]float32
	SrowZ     [4]float32

	IntentName [16]byte
	Magic      [4]byte
}

// NDim returns the declared rank.
func (h *Header) NDim() int {
	return int(h.Dim[0])
}

// Shape returns the declared axis sizes.
func (h *Header) Shape() []int {
	n := h.NDim()
	if n < 1 {
		n = 1
	}
	if n > 7 {
		n = 7
	}
	shape := make([]int, n)
	for i := 0; i < n; i++ {
		shape[i] = int(h.Dim[i+1])
	}
	return shape
}

func newHeader(shape []int, datatype, bitpix int16) Header {
	var h Header
	h.SizeofHdr = headerSize
	h.Regular = 'r'
	h.Dim = [8]int16{1, 1, 1, 1, 1, 1, 1, 1}
	h.Dim[0] = int16(len(shape))
	for i, size := range shape {
		h.Dim[i+1] = int16(size)
	}
	h.Pixdim = [8]float32{1, 1, 1, 1, 1, 1, 1, 1}
	h.Datatype = datatype
	h.Bitpix = bitpix
	h.VoxOffset = dataOffset
	h.SclSlope = 1
	h.Magic = [4]byte{'n', '+', '1', 0}
	return h
}

// cloneForShape keeps a reference header's geometry and annotation fields
// but replaces the shape and sample encoding.
func cloneForShape(ref *Header, shape []int, datatype, bitpix int16) Header {
	h := *ref
	h.SizeofHdr = headerSize
	h.Dim = [8]int16{1, 1, 1, 1, 1, 1, 1, 1}
	h.Dim[0] = int16(len(shape))
	for i, size := range shape {
		h.Dim[i+1] = int16(size)
	}
	h.Datatype = datatype
	h.Bitpix = bitpix
	h.VoxOffset = dataOffset
	h.Magic = [4]byte{'n', '+', '1', 0}
	return h
}
