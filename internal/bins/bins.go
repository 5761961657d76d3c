// Package bins implements a hierarchical bin index over half-open
// integer intervals, after the binning scheme described by Li in the
// Tabix paper (Bioinformatics 27(5), 2011).
//
// Records are assigned to the smallest bin of a six-level geometric
// partition that fully contains them, so an overlap query only has to
// visit the bins that can intersect the query range instead of every
// stored record. Unlike Tabix the partition is not static: it starts
// with an 8 Mb coarsest bin and widens itself 8x whenever a record
// does not fit, up to a 2^41 coordinate cap.
//
// A Collection is not safe for concurrent use. A resize moves bin
// contents in multiple steps and a query may lazily sort bins, so
// callers that share a Collection across goroutines must serialize
// all calls, reads included.
package bins

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

const (
	levelCount = 6
	binCount   = 37449 // (8^6 - 1) / 7

	// basePower is the coarsest-bin exponent a dynamic collection
	// starts with: 2^23 (~8.4M) coordinates.
	basePower = 23

	// maxPower caps geometry growth at 2^41 (~2.2T) coordinates.
	maxPower = 41
)

// levelOffsets[l] is the identifier of the first bin at level l, with
// one extra entry so levelOffsets[l+1] is always one past the last.
// Level 0 is the single coarsest bin, level 5 the 32768 finest.
var levelOffsets = [levelCount + 1]int64{0, 1, 9, 73, 585, 4681, binCount}

// BoundsFunc extracts the half-open [start, end) range from a stored
// record. It must be pure: a record's bounds may not change while the
// record is stored.
type BoundsFunc[T any] func(v T) (start, end int64)

// Collection is a bin index over records of type T. The zero value is
// not usable; construct with New.
type Collection[T any] struct {
	bounds BoundsFunc[T]

	bins     [binCount][]T
	occupied *roaring.Bitmap // identifiers of non-empty bins

	// maxBinPower is the exponent of the coarsest bin width. It only
	// ever moves up, in steps of 3, and never past maxPower.
	maxBinPower int
	dynamic     bool

	count  int
	sorted bool // every bin ordered by record start
}

type options struct {
	length    int64
	hasLength bool
}

// Option configures a Collection at construction time.
type Option func(*options)

// WithLength locks the collection to the smallest geometry that covers
// coordinates [0, n). Inserts and queries past that bound are rejected
// instead of triggering a resize.
func WithLength(n int64) Option {
	return func(o *options) {
		o.length = n
		o.hasLength = true
	}
}

// New creates an empty collection using bounds to locate records.
// Without options the geometry starts at 2^23 coordinates and grows on
// demand; WithLength selects the fixed-size mode instead.
func New[T any](bounds BoundsFunc[T], opts ...Option) (*Collection[T], error) {
	if bounds == nil {
		return nil, fmt.Errorf("bins: nil bounds func")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Collection[T]{
		bounds:      bounds,
		occupied:    roaring.New(),
		maxBinPower: basePower,
		dynamic:     true,
		sorted:      true,
	}

	if o.hasLength {
		if o.length <= 0 || o.length > 1<<maxPower {
			return nil, &RangeError{Coord: o.length, Max: 1 << maxPower}
		}
		c.dynamic = false
		for p := basePower; p <= maxPower; p += 3 {
			if o.length <= 1<<p {
				c.maxBinPower = p
				break
			}
		}
	}

	return c, nil
}

// Len returns the number of stored records.
func (c *Collection[T]) Len() int { return c.count }

// MaxCoord returns one past the largest coordinate the current
// geometry can represent. It increases when the collection resizes.
func (c *Collection[T]) MaxCoord() int64 { return 1 << c.maxBinPower }

// Dynamic reports whether the collection grows on demand.
func (c *Collection[T]) Dynamic() bool { return c.dynamic }

// Insert adds a record to the collection. The record lands in exactly
// one bin; a record wider than the current coarsest bin first widens
// the geometry. On any error the collection is unchanged.
func (c *Collection[T]) Insert(v T) error {
	start, end := c.bounds(v)
	if start < 0 || start > end {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidInterval, start, end)
	}

	// A zero-length record localizes as a length-1 record, so the
	// bounds checks must see its effective end.
	locEnd := end
	if locEnd == start {
		locEnd++
	}

	// Resizing cannot help past the cap, and fixed collections never
	// resize at all, so both bounds are checked up front; binFor can
	// then never fail.
	if c.dynamic {
		if locEnd > 1<<maxPower {
			return &RangeError{Coord: locEnd, Max: 1 << maxPower}
		}
	} else if locEnd > c.MaxCoord() {
		return &RangeError{Coord: locEnd, Max: c.MaxCoord()}
	}

	k, err := c.binFor(start, end-start)
	if err != nil {
		return err
	}

	c.bins[k] = append(c.bins[k], v)
	c.occupied.Add(uint32(k))
	c.count++
	c.sorted = false
	return nil
}

// Query returns every record whose interval overlaps the half-open
// range [start, stop): records starting inside it, ending inside it,
// containing it, or contained by it. Each match appears once; order is
// unspecified. stop must not exceed MaxCoord.
func (c *Collection[T]) Query(start, stop int64) ([]T, error) {
	if start < 0 || start > stop {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, start, stop)
	}
	if stop > c.MaxCoord() {
		return nil, &RangeError{Coord: stop, Max: c.MaxCoord()}
	}

	c.ensureSorted()

	var out []T
	for l := levelCount - 1; l >= 0; l-- {
		oL := levelOffsets[l]
		width := int64(1) << (c.maxBinPower - 3*l)
		k1 := oL + start/width
		k2 := oL + ceilDiv(stop, width)
		if k1 >= k2 {
			continue
		}

		it := c.occupied.Iterator()
		it.AdvanceIfNeeded(uint32(k1))
		for it.HasNext() {
			k := int64(it.Next())
			if k >= k2 {
				break
			}
			// Every record in a bin is fully contained by that bin's
			// span, so interior bins of the candidate range overlap
			// the query wholesale; only the two boundary bins need
			// per-record filtering.
			if k == k1 || k == k2-1 {
				out = c.appendOverlapping(out, c.bins[k], start, stop)
			} else {
				out = append(out, c.bins[k]...)
			}
		}
	}
	return out, nil
}

// At returns every record overlapping the single coordinate pos,
// i.e. Query(pos, pos+1).
func (c *Collection[T]) At(pos int64) ([]T, error) {
	return c.Query(pos, pos+1)
}

// appendOverlapping filters one bin against the query range. The bin
// is ordered by record start, so scanning stops at the first record
// starting past the query stop.
func (c *Collection[T]) appendOverlapping(dst, bin []T, start, stop int64) []T {
	for _, v := range bin {
		fs, fe := c.bounds(v)
		if fs > stop {
			break
		}
		switch {
		case start <= fs && fs < stop: // record starts inside the query
		case start < fe && fe <= stop: // record ends inside the query
		case fs <= start && fe >= stop: // record contains the query
		case fs >= start && fe <= stop: // query contains the record
		default:
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

// ensureSorted re-establishes per-bin start ordering. Sortedness is
// cached and invalidated by every insert and resize.
func (c *Collection[T]) ensureSorted() {
	if c.sorted {
		return
	}
	it := c.occupied.Iterator()
	for it.HasNext() {
		bin := c.bins[it.Next()]
		sort.Slice(bin, func(i, j int) bool {
			si, _ := c.bounds(bin[i])
			sj, _ := c.bounds(bin[j])
			return si < sj
		})
	}
	c.sorted = true
}
