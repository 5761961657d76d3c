package bins

// ceilDiv returns ceil(a/b) for non-negative a and positive b.
func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// levelOf returns the level that bin identifier k belongs to.
// Equivalent to floor(log8(7k+1)) without the float round-trip.
func levelOf(k int64) int {
	for l := levelCount - 1; l >= 1; l-- {
		if k >= levelOffsets[l] {
			return l
		}
	}
	return 0
}

// binFor maps the half-open interval [start, start+span) to the
// finest-level bin that fully contains it. When no level fits under
// the current geometry the collection resizes and the scan restarts;
// the bounds checks in Insert guarantee the loop terminates before the
// 2^41 cap.
//
// Bin identifiers are invalidated by a resize and must never be cached
// across one.
func (c *Collection[T]) binFor(start, span int64) (int64, error) {
	if span == 0 {
		// A zero-length record is localized like a length-1 record
		// starting at the same coordinate.
		span = 1
	}

	for {
		// An interval past the coarsest bin cannot fit at any level,
		// even when the per-level arithmetic happens to land inside a
		// valid block, so the scan is gated on the geometry bound.
		if start+span <= c.MaxCoord() {
			for l := levelCount - 1; l >= 0; l-- {
				oL := levelOffsets[l]
				width := int64(1) << (c.maxBinPower - 3*l)

				// k1 is the bin holding start, k2 the bin holding the
				// last covered coordinate. The interval fits at this
				// level only when they coincide and stay inside the
				// level's block.
				k1 := oL + start/width
				k2 := oL - 1 + ceilDiv(start+span, width)
				if k1 == k2 && k1 < levelOffsets[l+1] {
					return k1, nil
				}
			}
		}
		if err := c.grow(); err != nil {
			return 0, err
		}
	}
}
