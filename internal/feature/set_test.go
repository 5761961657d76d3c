package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eparker05/featurebin/internal/bins"
)

func mkFeature(seqID string, start, end int64, typ string) *Feature {
	return &Feature{SeqID: seqID, Source: "test", Type: typ, Start: start, End: end, Strand: "+"}
}

func TestSetAddAndQuery(t *testing.T) {
	s := NewSet()

	gene := mkFeature("chr1", 5000, 20000, "gene")
	exon := mkFeature("chr1", 5000, 5500, "exon")
	other := mkFeature("chr2", 5000, 20000, "gene")
	require.NoError(t, s.Add(gene))
	require.NoError(t, s.Add(exon))
	require.NoError(t, s.Add(other))

	hits, err := s.Query("chr1", 5400, 6000)
	require.NoError(t, err)
	assert.ElementsMatch(t, []*Feature{gene, exon}, hits)

	hits, err = s.At("chr2", 10000)
	require.NoError(t, err)
	assert.Equal(t, []*Feature{other}, hits)

	// Sequences are independent indexes.
	hits, err = s.Query("chr2", 0, 4000)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = s.Query("chrX", 0, 4000)
	require.NoError(t, err)
	assert.Empty(t, hits, "unknown sequence")

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 2, s.CountSeq("chr1"))
	assert.Equal(t, 0, s.CountSeq("chrX"))
	assert.Equal(t, []string{"chr1", "chr2"}, s.SeqIDs())
}

func TestSetQueryClampsStop(t *testing.T) {
	s := NewSet()
	gene := mkFeature("chr1", 100, 5000, "gene")
	require.NoError(t, s.Add(gene))

	// Way past the index's current geometry: clamped, not rejected.
	hits, err := s.Query("chr1", 0, 1<<40)
	require.NoError(t, err)
	assert.Equal(t, []*Feature{gene}, hits)

	hits, err = s.Query("chr1", 1<<39, 1<<40)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSetDeclareSeq(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.DeclareSeq("chr1", 1000000))

	require.NoError(t, s.Add(mkFeature("chr1", 0, 999999, "region")))

	// Past the declared length: rejected instead of resized.
	err := s.Add(mkFeature("chr1", 0, 9000000, "region"))
	var re *bins.RangeError
	assert.ErrorAs(t, err, &re)
	assert.Equal(t, 1, s.CountSeq("chr1"))

	// Declaring after features exist is an error.
	assert.Error(t, s.DeclareSeq("chr1", 2000000))

	// Invalid lengths are rejected up front.
	assert.Error(t, s.DeclareSeq("chr2", 0))
	assert.Error(t, s.DeclareSeq("chr3", 1<<41+1))
}

func TestSetAddRejectsMalformed(t *testing.T) {
	s := NewSet()
	err := s.Add(mkFeature("chr1", 500, 100, "gene"))
	assert.ErrorIs(t, err, bins.ErrInvalidInterval)
	assert.Equal(t, 0, s.Count())
}
