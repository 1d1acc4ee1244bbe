// Package core provides chemistry calculations for peptide mass calculations
package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Atomic masses (monoisotopic)
const (
	MassH  = 1.0078250321
	MassC  = 12.0000000000
	MassN  = 14.0030740052
	MassO  = 15.9949146221
	MassS  = 31.9720706900
	MassP  = 30.9737615100
	MassSe = 79.9165218

	MassElectron = 0.00054857990946

	// Proton mass for charge calculations
	ProtonMass = MassH - MassElectron
)

// ErrUnknownElement is returned when a formula names an element the mass
// source has no value for.
var ErrUnknownElement = errors.New("unknown element")

// MassSource returns the mass of a single atom of the named element.
type MassSource func(symbol string) (float64, bool)

var monoisotopicMasses = map[string]float64{
	"H":  MassH,
	"C":  MassC,
	"N":  MassN,
	"O":  MassO,
	"S":  MassS,
	"P":  MassP,
	"Se": MassSe,
}

var averageMasses = map[string]float64{
	"H":  1.00794,
	"C":  12.0107,
	"N":  14.0067,
	"O":  15.9994,
	"S":  32.065,
	"P":  30.973762,
	"Se": 78.96,
}

// Monoisotopic uses the most abundant isotope of each element.
func Monoisotopic(symbol string) (float64, bool) {
	m, ok := monoisotopicMasses[symbol]
	return m, ok
}

// Average uses standard atomic weights.
func Average(symbol string) (float64, bool) {
	m, ok := averageMasses[symbol]
	return m, ok
}

// Labeled returns a mass source that prefers overrides (for example a
// heavy-nitrogen N) and falls back to base for everything else.
func Labeled(base MassSource, overrides map[string]float64) MassSource {
	table := make(map[string]float64, len(overrides))
	for k, v := range overrides {
		table[k] = v
	}
	return func(symbol string) (float64, bool) {
		if m, ok := table[symbol]; ok {
			return m, true
		}
		return base(symbol)
	}
}

// MassSourceByName maps a configuration value to a mass source.
func MassSourceByName(name string) (MassSource, error) {
	switch name {
	case "", "mono", "monoisotopic":
		return Monoisotopic, nil
	case "avg", "average":
		return Average, nil
	default:
		return nil, fmt.Errorf("unknown mass source %q, expected monoisotopic or average", name)
	}
}

// Proton returns the proton mass under src: hydrogen minus one electron.
func Proton(src MassSource) float64 {
	h, _ := src("H")
	return h - MassElectron
}

// Formula is an elemental composition. Counts may be negative when a
// formula removes atoms (e.g. "-CHO").
type Formula map[string]int

// ParseFormula parses formulas such as "H2O", "NH2", "-CHO" or "CO-H".
// A '+' or '-' applies to every element group that follows it until the
// next sign.
func ParseFormula(s string) (Formula, error) {
	f := Formula{}
	sign := 1
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '+':
			sign = 1
			i++
			continue
		case c == '-':
			sign = -1
			i++
			continue
		case c < 'A' || c > 'Z':
			return nil, fmt.Errorf("invalid formula %q: unexpected %q at %d", s, c, i)
		}

		j := i + 1
		for j < len(s) && s[j] >= 'a' && s[j] <= 'z' {
			j++
		}
		symbol := s[i:j]

		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		count := 1
		if k > j {
			n, err := strconv.Atoi(s[j:k])
			if err != nil {
				return nil, fmt.Errorf("invalid formula %q: %w", s, err)
			}
			count = n
		}

		f[symbol] += sign * count
		i = k
	}
	if len(f) == 0 {
		return nil, fmt.Errorf("invalid formula %q: no elements", s)
	}
	return f, nil
}

// Mass sums the composition under src.
func (f Formula) Mass(src MassSource) (float64, error) {
	symbols := make([]string, 0, len(f))
	for symbol := range f {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	total := 0.0
	for _, symbol := range symbols {
		m, ok := src(symbol)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownElement, symbol)
		}
		total += float64(f[symbol]) * m
	}
	return total, nil
}

// FormulaMass parses s and returns its mass under src.
func FormulaMass(s string, src MassSource) (float64, error) {
	f, err := ParseFormula(s)
	if err != nil {
		return 0, err
	}
	return f.Mass(src)
}

// AminoAcidComposition stores elemental composition
type AminoAcidComposition struct {
	C, H, N, O, S, Se int
}

// Mass returns the residue mass under src.
func (a AminoAcidComposition) Mass(src MassSource) float64 {
	c, _ := src("C")
	h, _ := src("H")
	n, _ := src("N")
	o, _ := src("O")
	mass := float64(a.C)*c + float64(a.H)*h + float64(a.N)*n + float64(a.O)*o
	if a.S != 0 {
		s, _ := src("S")
		mass += float64(a.S) * s
	}
	if a.Se != 0 {
		se, _ := src("Se")
		mass += float64(a.Se) * se
	}
	return mass
}

// AminoAcidCompositions maps amino acid one-letter codes to residue composition
var AminoAcidCompositions = map[byte]AminoAcidComposition{
	'A': {C: 3, H: 5, N: 1, O: 1},
	'R': {C: 6, H: 12, N: 4, O: 1},
	'N': {C: 4, H: 6, N: 2, O: 2},
	'D': {C: 4, H: 5, N: 1, O: 3},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3},
	'Q': {C: 5, H: 8, N: 2, O: 2},
	'G': {C: 2, H: 3, N: 1, O: 1},
	'H': {C: 6, H: 7, N: 3, O: 1},
	'I': {C: 6, H: 11, N: 1, O: 1},
	'L': {C: 6, H: 11, N: 1, O: 1},
	'K': {C: 6, H: 12, N: 2, O: 1},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1},
	'P': {C: 5, H: 7, N: 1, O: 1},
	'S': {C: 3, H: 5, N: 1, O: 2},
	'T': {C: 4, H: 7, N: 1, O: 2},
	'W': {C: 11, H: 10, N: 2, O: 1},
	'Y': {C: 9, H: 9, N: 1, O: 2},
	'V': {C: 5, H: 9, N: 1, O: 1},
	'U': {C: 3, H: 5, N: 1, O: 1, Se: 1},
	'O': {C: 12, H: 19, N: 3, O: 2},
}

// ResidueTable holds the mass of every residue byte. Bytes without a
// composition (whitespace, unknown letters) weigh 0.
type ResidueTable [256]float64

// NewResidueTable computes residue masses under src.
func NewResidueTable(src MassSource) *ResidueTable {
	var t ResidueTable
	for code, comp := range AminoAcidCompositions {
		t[code] = comp.Mass(src)
	}
	return &t
}

// MonoisotopicResidues is the default residue table.
var MonoisotopicResidues = NewResidueTable(Monoisotopic)

// NeutralMass computes the neutral mass of an unmodified peptide with H/OH
// termini.
func NeutralMass(sequence string, table *ResidueTable, src MassSource) float64 {
	h, _ := src("H")
	o, _ := src("O")
	mass := 2*h + o // Add water

	for i := 0; i < len(sequence); i++ {
		mass += table[sequence[i]]
	}

	return mass
}

// MZ converts a neutral mass to m/z for a charge state.
func MZ(neutral float64, charge int, src MassSource) float64 {
	return (neutral + float64(charge)*Proton(src)) / float64(charge)
}
