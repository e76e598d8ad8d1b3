package fileio

import "fmt"

// Direction records which operation last touched a handle's buffer.
//
// Transitions:
//
//	Neutral/Writing -> Reading: flush pending writes, discard the buffer
//	Neutral/Reading -> Writing: seek the descriptor back to the logical
//	                            position, discard read-ahead
type Direction int

const (
	// Neutral is the state of a freshly opened handle.
	Neutral Direction = iota

	// Reading means the buffer holds read-ahead data from the descriptor.
	Reading

	// Writing means the buffer holds bytes not yet written to the descriptor.
	Writing
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case Neutral:
		return "neutral"
	case Reading:
		return "reading"
	case Writing:
		return "writing"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}
