package bins

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInterval is returned by Insert when a record's bounds
	// are malformed (negative start, or start greater than end).
	ErrInvalidInterval = errors.New("bins: invalid interval")

	// ErrInvalidRange is returned by Query when the requested range is
	// malformed (negative start, or start greater than stop).
	ErrInvalidRange = errors.New("bins: invalid query range")

	// ErrMaxGeometry is returned when a resize would push the coarsest
	// bin past the 2^41 coordinate cap. The collection is unchanged.
	ErrMaxGeometry = errors.New("bins: geometry already at the 2^41 maximum")
)

// RangeError reports a coordinate beyond the collection's representable
// maximum: an insert past a fixed-mode length, an insert past the 2^41
// cap, or a query stop past the current coarsest bin.
type RangeError struct {
	Coord int64 // offending coordinate
	Max   int64 // largest representable coordinate at the time of the call
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("bins: coordinate %d out of range: must be <= %d", e.Coord, e.Max)
}
