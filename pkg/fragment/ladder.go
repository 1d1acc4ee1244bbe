// Package fragment computes cumulative residue-mass ladders and theoretical
// fragment ion series for peptides.
package fragment

import (
	"github.com/ChrisMcGann/pepfrag/pkg/core"
)

// TrackedResidues is an immutable set of residue letters whose positions
// are recorded while a ladder is built.
type TrackedResidues struct {
	set [256]bool
}

// NewTrackedResidues tracks every byte of letters.
func NewTrackedResidues(letters string) TrackedResidues {
	var t TrackedResidues
	for i := 0; i < len(letters); i++ {
		t.set[letters[i]] = true
	}
	return t
}

// Has reports whether c is tracked.
func (t TrackedResidues) Has(c byte) bool { return t.set[c] }

// LocationIndex maps a tracked residue to the ladder indices where it occurs.
type LocationIndex map[byte][]int

// Ladder holds cumulative residue masses: Masses[i] is the summed mass of
// Sequence[0..i].
type Ladder struct {
	Sequence string
	Masses   []float64
}

// Len returns the number of ladder rungs.
func (l *Ladder) Len() int { return len(l.Masses) }

// Total returns the summed residue mass, or 0 for an empty ladder.
func (l *Ladder) Total() float64 {
	if len(l.Masses) == 0 {
		return 0
	}
	return l.Masses[len(l.Masses)-1]
}

// Residue returns the mass contributed by position i alone.
func (l *Ladder) Residue(i int) float64 {
	if i == 0 {
		return l.Masses[0]
	}
	return l.Masses[i] - l.Masses[i-1]
}

// BuildLadder makes one pass over seq, accumulating masses from table and
// recording positions of tracked residues.
func BuildLadder(seq string, table *core.ResidueTable, tracked TrackedResidues) (*Ladder, LocationIndex) {
	ladder := &Ladder{
		Sequence: seq,
		Masses:   make([]float64, len(seq)),
	}
	index := LocationIndex{}

	total := 0.0
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		total += table[c]
		ladder.Masses[i] = total
		if tracked.Has(c) {
			index[c] = append(index[c], i)
		}
	}
	return ladder, index
}
