package feature

import (
	"fmt"
	"sort"

	"github.com/eparker05/featurebin/internal/bins"
)

// Set holds one bin index per sequence, keyed by sequence ID. Indexes
// are created lazily in dynamic mode unless a sequence length was
// declared first. Like the underlying indexes, a Set is not safe for
// concurrent use.
type Set struct {
	seqs map[string]*bins.Collection[*Feature]
}

// NewSet creates an empty feature set.
func NewSet() *Set {
	return &Set{
		seqs: make(map[string]*bins.Collection[*Feature]),
	}
}

// DeclareSeq creates the index for a sequence locked to the given
// length. It must be called before any feature is added for that
// sequence; features past the length are then rejected instead of
// growing the index.
func (s *Set) DeclareSeq(seqID string, length int64) error {
	if _, ok := s.seqs[seqID]; ok {
		return fmt.Errorf("sequence %s already has features", seqID)
	}
	col, err := bins.New(Bounds, bins.WithLength(length))
	if err != nil {
		return fmt.Errorf("declare %s: %w", seqID, err)
	}
	s.seqs[seqID] = col
	return nil
}

func (s *Set) collection(seqID string) *bins.Collection[*Feature] {
	col, ok := s.seqs[seqID]
	if !ok {
		col, _ = bins.New(Bounds)
		s.seqs[seqID] = col
	}
	return col
}

// Add inserts a feature into its sequence's index.
func (s *Set) Add(f *Feature) error {
	if err := s.collection(f.SeqID).Insert(f); err != nil {
		return fmt.Errorf("add %s: %w", f, err)
	}
	return nil
}

// Query returns all features on seqID overlapping the half-open range
// [start, stop). An unknown sequence yields no results.
func (s *Set) Query(seqID string, start, stop int64) ([]*Feature, error) {
	col, ok := s.seqs[seqID]
	if !ok {
		return nil, nil
	}
	if max := col.MaxCoord(); stop > max {
		// The index never saw coordinates that far out, so nothing
		// past its bound can match; clamp rather than reject.
		stop = max
		if start > stop {
			return nil, nil
		}
	}
	return col.Query(start, stop)
}

// At returns all features on seqID overlapping a single coordinate.
func (s *Set) At(seqID string, pos int64) ([]*Feature, error) {
	return s.Query(seqID, pos, pos+1)
}

// All returns every feature stored for a sequence, in unspecified
// order.
func (s *Set) All(seqID string) ([]*Feature, error) {
	col, ok := s.seqs[seqID]
	if !ok {
		return nil, nil
	}
	return col.Query(0, col.MaxCoord())
}

// Count returns the total number of stored features.
func (s *Set) Count() int {
	n := 0
	for _, col := range s.seqs {
		n += col.Len()
	}
	return n
}

// CountSeq returns the number of features stored for one sequence.
func (s *Set) CountSeq(seqID string) int {
	col, ok := s.seqs[seqID]
	if !ok {
		return 0
	}
	return col.Len()
}

// SeqIDs returns a sorted list of sequences with an index.
func (s *Set) SeqIDs() []string {
	ids := make([]string, 0, len(s.seqs))
	for id := range s.seqs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
