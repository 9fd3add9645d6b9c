package acq

import "fmt"

// Axis names one role in the acquisition loop structure.
type Axis int

const (
	// AxisReadout is the fastest-varying sampling axis within a chunk.
	AxisReadout Axis = iota
	// AxisReceiver enumerates active receive channels.
	AxisReceiver
	// AxisEcho enumerates echoes within one repetition time.
	AxisEcho
	// AxisPhase stands for all remaining acquisition matrix axes
	// (phase/slice encodes), in matrix order.
	AxisPhase
	// AxisRepeat enumerates repeated scans (time series).
	AxisRepeat
)

func (a Axis) String() string {
	switch a {
	case AxisReadout:
		return "readout"
	case AxisReceiver:
		return "receiver"
	case AxisEcho:
		return "echo"
	case AxisPhase:
		return "phase"
	case AxisRepeat:
		return "repeat"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Layout fixes how acquisition loop axes map onto the decoded array.
// Chunk lists the axes that are contiguous within one device chunk,
// fastest first; Outer lists the chunk-loop axes, fastest first. The
// decoded array's shape is Chunk followed by Outer. Each role must appear
// exactly once across the two lists.
type Layout struct {
	Chunk []Axis
	Outer []Axis
}

// DefaultLayout is the ordering streamed by the scanner: readout samples,
// then receivers, then echoes inside a chunk; phase encodes and repeats
// outside.
func DefaultLayout() Layout {
	return Layout{
		Chunk: []Axis{AxisReadout, AxisReceiver, AxisEcho},
		Outer: []Axis{AxisPhase, AxisRepeat},
	}
}

func (l Layout) validate() error {
	seen := make(map[Axis]bool, 5)
	for _, a := range append(append([]Axis{}, l.Chunk...), l.Outer...) {
		if a < AxisReadout || a > AxisRepeat {
			return fmt.Errorf("acq: unknown layout axis %d", int(a))
		}
		if seen[a] {
			return fmt.Errorf("acq: layout lists %s axis twice", a)
		}
		seen[a] = true
	}
	for a := AxisReadout; a <= AxisRepeat; a++ {
		if !seen[a] {
			return fmt.Errorf("acq: layout is missing the %s axis", a)
		}
	}
	if len(l.Chunk) == 0 || l.Chunk[0] != AxisReadout {
		return fmt.Errorf("acq: readout must be the fastest chunk axis")
	}
	return nil
}

func (l Layout) isZero() bool {
	return len(l.Chunk) == 0 && len(l.Outer) == 0
}
