package fragment

import (
	"testing"

	"github.com/ChrisMcGann/pepfrag/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLadder(t *testing.T) {
	table := core.MonoisotopicResidues
	ladder, index := BuildLadder("PEPTIDEK", table, NewTrackedResidues("KP"))

	require.Equal(t, 8, ladder.Len())
	for i := 1; i < ladder.Len(); i++ {
		assert.GreaterOrEqual(t, ladder.Masses[i], ladder.Masses[i-1])
	}

	total := 0.0
	for _, c := range []byte("PEPTIDEK") {
		total += table[c]
	}
	assert.InDelta(t, total, ladder.Total(), 1e-9)
	assert.InDelta(t, table['T'], ladder.Residue(3), 1e-9)
	assert.InDelta(t, table['P'], ladder.Residue(0), 1e-9)

	assert.Equal(t, []int{0, 2}, index['P'])
	assert.Equal(t, []int{7}, index['K'])
	_, tracked := index['E']
	assert.False(t, tracked)
}

func TestBuildLadderWhitespace(t *testing.T) {
	ladder, _ := BuildLadder("AC D", core.MonoisotopicResidues, TrackedResidues{})
	require.Equal(t, 4, ladder.Len())
	assert.Equal(t, ladder.Masses[1], ladder.Masses[2])
}

func TestBuildLadderEmpty(t *testing.T) {
	ladder, index := BuildLadder("", core.MonoisotopicResidues, NewTrackedResidues("K"))
	assert.Equal(t, 0, ladder.Len())
	assert.Equal(t, 0.0, ladder.Total())
	assert.Empty(t, index)
}

func TestBuildLadderMassSource(t *testing.T) {
	mono, _ := BuildLadder("GG", core.NewResidueTable(core.Monoisotopic), TrackedResidues{})
	avg, _ := BuildLadder("GG", core.NewResidueTable(core.Average), TrackedResidues{})
	assert.InDelta(t, 114.0429, mono.Total(), 1e-4)
	assert.InDelta(t, 114.1026, avg.Total(), 1e-3)
}

func TestTrackedResidues(t *testing.T) {
	tr := NewTrackedResidues("KR")
	assert.True(t, tr.Has('K'))
	assert.True(t, tr.Has('R'))
	assert.False(t, tr.Has('P'))
	assert.False(t, TrackedResidues{}.Has('K'))
}
