// Package feature provides sequence feature records and per-sequence
// bin indexes over them.
package feature

import "fmt"

// Feature is a located annotation on a named sequence. Coordinates are
// zero-based and half-open: a feature covers [Start, End). Start may
// equal End for point features such as insertion sites.
type Feature struct {
	SeqID      string
	Source     string
	Type       string
	Start      int64
	End        int64
	Score      string
	Strand     string
	Attributes map[string]string
}

// Bounds returns the feature's half-open range. It satisfies
// bins.BoundsFunc.
func Bounds(f *Feature) (int64, int64) {
	return f.Start, f.End
}

// Span returns the feature's width in coordinates.
func (f *Feature) Span() int64 {
	return f.End - f.Start
}

// ID returns the feature's ID attribute, or "" if it has none.
func (f *Feature) ID() string {
	return f.Attributes["ID"]
}

// Name returns the feature's Name attribute, falling back to ID.
func (f *Feature) Name() string {
	if name, ok := f.Attributes["Name"]; ok {
		return name
	}
	return f.ID()
}

// String formats the feature as seqid:start-end/type.
func (f *Feature) String() string {
	return fmt.Sprintf("%s:%d-%d/%s", f.SeqID, f.Start, f.End, f.Type)
}
