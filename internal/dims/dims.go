package dims

import "fmt"

// MaxAxes is the fixed number of axes a descriptor carries. Axes the caller
// never sets are singletons, so a descriptor of any logical rank up to 16
// addresses the same flat buffer.
const MaxAxes = 16

// Dim describes the shape and strides of a dense column-major array.
// The first axis is the fastest-varying one; strides are derived from the
// shape and never set directly. Dim is a small value type — copy it freely,
// no two descriptors share storage.
type Dim struct {
	shape   [MaxAxes]int
	strides [MaxAxes]int
}

// New returns a descriptor with every axis set to 1.
func New() Dim {
	var d Dim
	for i := range d.shape {
		d.shape[i] = 1
		d.strides[i] = 1
	}
	return d
}

// FromShape builds a descriptor from an explicit shape. Axes omitted from
// the input default to size 1; entries beyond MaxAxes are ignored, callers
// must supply at most 16 sizes.
func FromShape(shape []int) Dim {
	d := New()
	for ax, size := range shape {
		if ax >= MaxAxes {
			break
		}
		d.shape[ax] = size
	}
	d.updateStrides()
	return d
}

// WithDim returns a copy of the descriptor with one axis resized.
// The axis must be below MaxAxes.
func (d Dim) WithDim(axis, size int) Dim {
	if axis < 0 || axis >= MaxAxes {
		panic(fmt.Sprintf("dims: axis %d out of range, only %d axes are supported", axis, MaxAxes))
	}
	d.shape[axis] = size
	d.updateStrides()
	return d
}

func (d *Dim) updateStrides() {
	stride := 1
	for i, size := range d.shape {
		d.strides[i] = stride
		stride *= size
	}
}

// Shape returns the full 16-axis shape, singleton axes included.
func (d Dim) Shape() []int {
	out := make([]int, MaxAxes)
	copy(out, d.shape[:])
	return out
}

// ShapeTrimmed returns the shape with trailing singleton axes removed.
// An all-singleton shape trims to [1], never to an empty slice.
func (d Dim) ShapeTrimmed() []int {
	n := MaxAxes
	for n > 1 && d.shape[n-1] == 1 {
		n--
	}
	out := make([]int, n)
	copy(out, d.shape[:n])
	return out
}

// Size returns the extent of one axis.
func (d Dim) Size(axis int) int {
	if axis < 0 || axis >= MaxAxes {
		panic(fmt.Sprintf("dims: axis %d out of range", axis))
	}
	return d.shape[axis]
}

// Stride returns the element stride of one axis.
func (d Dim) Stride(axis int) int {
	if axis < 0 || axis >= MaxAxes {
		panic(fmt.Sprintf("dims: axis %d out of range", axis))
	}
	return d.strides[axis]
}

// Numel returns the total number of elements, the product of all axis sizes.
func (d Dim) Numel() int {
	n := 1
	for _, size := range d.shape {
		n *= size
	}
	return n
}

// Addr maps per-axis subscripts to a flat buffer offset. Subscripts beyond
// MaxAxes are ignored; missing trailing subscripts are treated as zero.
// Subscripts are not bounds-checked here — this sits on hot loops and the
// caller owns the bounds.
func (d Dim) Addr(idx []int) int {
	n := len(idx)
	if n > MaxAxes {
		n = MaxAxes
	}
	offset := 0
	for i := 0; i < n; i++ {
		offset += idx[i] * d.strides[i]
	}
	return offset
}

// Unravel recovers the per-axis subscripts of a flat offset. It is the
// inverse of Addr for offsets in [0, Numel()): Addr(Unravel(o)[:]) == o.
func (d Dim) Unravel(offset int) [MaxAxes]int {
	var idx [MaxAxes]int
	for i, size := range d.shape {
		idx[i] = offset % size
		offset /= size
	}
	return idx
}

// FFTShift maps coordinates of a zero-frequency-origin array onto the
// centered-spectrum layout: out[k] = (in[k] + shape[k]/2) mod shape[k].
// len(out) must equal len(in), both at most MaxAxes.
func (d Dim) FFTShift(in, out []int) {
	for i, v := range in {
		out[i] = (v + d.shape[i]/2) % d.shape[i]
	}
}

// IFFTShift is the exact left inverse of FFTShift for every coordinate
// within the shape: out[k] = (in[k] + (shape[k]+1)/2) mod shape[k].
func (d Dim) IFFTShift(in, out []int) {
	for i, v := range in {
		out[i] = (v + (d.shape[i]+1)/2) % d.shape[i]
	}
}

// Alloc returns a buffer of Numel elements, each set to fill.
func Alloc[T any](d Dim, fill T) []T {
	out := make([]T, d.Numel())
	for i := range out {
		out[i] = fill
	}
	return out
}
