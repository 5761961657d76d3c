package bins

// grow widens the geometry by one level factor: the coarsest bin
// becomes 8x wider and every stored record is re-homed to the bin the
// new geometry assigns it. No record is lost or duplicated. Growing
// past the 2^41 cap fails with the collection unchanged.
//
// The two phases must run in this order. Phase one empties the finest
// level into level-4 slots; phase two then shifts levels 0..4 one
// level down, walking from the highest identifier so every slot is
// read before anything is written over it.
func (c *Collection[T]) grow() error {
	if c.maxBinPower+3 > maxPower {
		return ErrMaxGeometry
	}
	oldPower := c.maxBinPower
	c.maxBinPower += 3

	// Phase one: merge each old finest-level bin into the level-4 slot
	// that phase two will shift into the finest-level bin containing its
	// start coordinate, so rank by the new finest-level width. Merged
	// bins can interleave, so contents are appended, never replaced.
	oldWidth := int64(1) << (oldPower - 3*(levelCount-1))
	newWidth := int64(1) << (oldPower - 3*(levelCount-2))
	for k := levelOffsets[levelCount-1]; k < binCount; k++ {
		if len(c.bins[k]) == 0 {
			continue
		}
		binStart := (k - levelOffsets[levelCount-1]) * oldWidth
		kNew := levelOffsets[levelCount-2] + binStart/newWidth
		c.bins[kNew] = append(c.bins[kNew], c.bins[k]...)
		c.bins[k] = nil
	}

	// Phase two: an old level-l bin covers exactly the span a level-
	// (l+1) bin covers in the new geometry, at the same rank within
	// its block.
	for k := levelOffsets[levelCount-1] - 1; k >= 0; k-- {
		if len(c.bins[k]) == 0 {
			continue
		}
		l := levelOf(k)
		c.bins[k-levelOffsets[l]+levelOffsets[l+1]] = c.bins[k]
		c.bins[k] = nil
	}

	// Merged bins may no longer be ordered by start.
	c.sorted = false
	c.rebuildOccupied()
	return nil
}

func (c *Collection[T]) rebuildOccupied() {
	c.occupied.Clear()
	for k := range c.bins {
		if len(c.bins[k]) > 0 {
			c.occupied.Add(uint32(k))
		}
	}
}
