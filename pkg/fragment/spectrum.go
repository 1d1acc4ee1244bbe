package fragment

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ChrisMcGann/pepfrag/pkg/core"
)

// ErrEmptyLadder is returned when a series is requested for an empty peptide.
var ErrEmptyLadder = errors.New("empty peptide has no ion series")

type direction int

const (
	prefix direction = iota
	suffix
	perResidue
)

type terminus int

const (
	noTerminus terminus = iota
	nTerminus
	cTerminus
)

// ionFormula describes a series as a ladder walk plus a fixed offset. The
// neutral mass of each entry is residues + terminus + constant.
type ionFormula struct {
	dir      direction
	term     terminus
	constant string
}

var ionFormulas = [numIonTypes]ionFormula{
	IonA:         {prefix, nTerminus, "-CHO"},
	IonB:         {prefix, nTerminus, "-H"},
	IonC:         {prefix, nTerminus, "NH2"},
	IonNLadder:   {prefix, noTerminus, "H2O"},
	IonX:         {suffix, cTerminus, "CO-H"},
	IonY:         {suffix, cTerminus, "H"},
	IonYInternal: {suffix, cTerminus, "-H"},
	IonZ:         {suffix, cTerminus, "-NH2"},
	IonCLadder:   {suffix, noTerminus, "H2O"},
	IonImmonium:  {perResidue, noTerminus, "-CO"},
}

func init() {
	for i, f := range ionFormulas {
		if f.constant == "" {
			panic(fmt.Sprintf("fragment: no formula for ion type %s", IonType(i)))
		}
	}
}

type maskKey struct {
	ion IonType
	mod string
}

// Option configures a Spectrum.
type Option func(*options)

type options struct {
	nterm, cterm string
	src          core.MassSource
	table        *core.ResidueTable
	tracked      TrackedResidues
	mods         *core.ModDatabase
	masks        []maskEntry
}

type maskEntry struct {
	key     maskKey
	indices []int
}

// WithTermini sets the N- and C-terminal group formulas (default "H", "OH").
func WithTermini(nterm, cterm string) Option {
	return func(o *options) {
		o.nterm = nterm
		o.cterm = cterm
	}
}

// WithMassSource replaces the monoisotopic element masses, e.g. with
// core.Average or a core.Labeled source. Residue masses follow the source
// unless WithResidueTable is also given.
func WithMassSource(src core.MassSource) Option {
	return func(o *options) { o.src = src }
}

// WithResidueTable supplies precomputed residue masses.
func WithResidueTable(table *core.ResidueTable) Option {
	return func(o *options) { o.table = table }
}

// WithTrackedResidues records the positions of the given residues.
func WithTrackedResidues(tracked TrackedResidues) Option {
	return func(o *options) { o.tracked = tracked }
}

// WithModDatabase sets the named modifications used to resolve
// modification tokens (default core.DefaultModDatabase).
func WithModDatabase(db *core.ModDatabase) Option {
	return func(o *options) { o.mods = db }
}

// WithMask registers masked ladder indices at construction.
func WithMask(ion IonType, modification string, indices ...int) Option {
	return func(o *options) {
		o.masks = append(o.masks, maskEntry{maskKey{ion, modification}, indices})
	}
}

// Spectrum computes ion series for one peptide. Computed series are cached
// for the life of the value, so a Spectrum must not be shared between
// goroutines without external locking.
type Spectrum struct {
	ladder    *Ladder
	locations LocationIndex

	nterm, cterm           string
	ntermMass, ctermMass   float64
	ntermShift, ctermShift float64 // relative to H and OH

	src       core.MassSource
	proton    float64
	mods      *core.ModDatabase
	constants [numIonTypes]float64

	masks map[maskKey]map[int]struct{}
	cache map[SeriesSpec][]float64
}

// NewSpectrum builds the mass ladder for seq and resolves terminal groups.
func NewSpectrum(seq string, opts ...Option) (*Spectrum, error) {
	o := options{
		nterm: "H",
		cterm: "OH",
		src:   core.Monoisotopic,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.table == nil {
		o.table = core.NewResidueTable(o.src)
	}
	if o.mods == nil {
		o.mods = core.DefaultModDatabase()
	}

	s := &Spectrum{
		nterm:  o.nterm,
		cterm:  o.cterm,
		src:    o.src,
		proton: core.Proton(o.src),
		mods:   o.mods,
		masks:  make(map[maskKey]map[int]struct{}),
		cache:  make(map[SeriesSpec][]float64),
	}

	var err error
	if s.ntermMass, err = o.mods.Resolve(o.nterm, o.src); err != nil {
		return nil, fmt.Errorf("n-terminal group: %w", err)
	}
	if s.ctermMass, err = o.mods.Resolve(o.cterm, o.src); err != nil {
		return nil, fmt.Errorf("c-terminal group: %w", err)
	}
	h, _ := o.src("H")
	oxygen, _ := o.src("O")
	s.ntermShift = s.ntermMass - h
	s.ctermShift = s.ctermMass - (oxygen + h)
	for i, f := range ionFormulas {
		if s.constants[i], err = core.FormulaMass(f.constant, o.src); err != nil {
			return nil, fmt.Errorf("%s series: %w", IonType(i), err)
		}
	}

	s.ladder, s.locations = BuildLadder(seq, o.table, o.tracked)

	for _, m := range o.masks {
		s.RegisterMask(m.key.ion, m.key.mod, m.indices...)
	}
	return s, nil
}

// Sequence returns the peptide sequence.
func (s *Spectrum) Sequence() string { return s.ladder.Sequence }

// Ladder returns the cumulative residue masses.
func (s *Spectrum) Ladder() *Ladder { return s.ladder }

// Termini returns the terminal group formulas.
func (s *Spectrum) Termini() (nterm, cterm string) { return s.nterm, s.cterm }

// Locations returns the ladder indices of a tracked residue.
func (s *Spectrum) Locations(residue byte) []int {
	return slices.Clone(s.locations[residue])
}

// ProtonMass returns the proton mass under the spectrum's mass source.
func (s *Spectrum) ProtonMass() float64 { return s.proton }

// ParentIonMass returns the m/z of the intact peptide at charge.
func (s *Spectrum) ParentIonMass(charge int) (float64, error) {
	if charge == 0 {
		return 0, ErrZeroCharge
	}
	return core.MZ(s.ntermMass+s.ladder.Total()+s.ctermMass, charge, s.src), nil
}

// RegisterMask marks ladder indices of a series as diagnostic. Masks
// registered with a modification apply in addition to the unmodified ones
// when that modification is requested. Indices outside the ladder are
// ignored when series are computed.
func (s *Spectrum) RegisterMask(ion IonType, modification string, indices ...int) {
	key := maskKey{ion, modification}
	set, ok := s.masks[key]
	if !ok {
		set = make(map[int]struct{}, len(indices))
		s.masks[key] = set
	}
	for _, i := range indices {
		set[i] = struct{}{}
	}
	clear(s.cache)
}

// Masked reports whether index i of the requested series is masked.
func (s *Spectrum) Masked(spec SeriesSpec, i int) bool {
	if _, ok := s.masks[maskKey{spec.Ion, ""}][i]; ok {
		return true
	}
	if spec.Modification == "" {
		return false
	}
	_, ok := s.masks[maskKey{spec.Ion, spec.Modification}][i]
	return ok
}

// Series parses a request such as "y++" and returns its masses.
func (s *Spectrum) Series(spec string) ([]float64, error) {
	parsed, err := ParseSeriesSpec(spec)
	if err != nil {
		return nil, err
	}
	return s.SeriesOf(parsed)
}

// SeriesOf returns the m/z values of one series. Prefix series entry i
// covers residues [0, i]; suffix series entry i covers residues [i, n);
// immonium entry i is residue i alone. Masked entries are negated. The
// returned slice is a copy of the cached result.
func (s *Spectrum) SeriesOf(spec SeriesSpec) ([]float64, error) {
	if spec.Charge == 0 {
		return nil, ErrZeroCharge
	}
	if spec.Ion < 0 || spec.Ion >= numIonTypes {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeries, spec.Ion)
	}
	if s.ladder.Len() == 0 {
		return nil, ErrEmptyLadder
	}

	if cached, ok := s.cache[spec]; ok {
		return slices.Clone(cached), nil
	}

	modMass, err := s.mods.Resolve(spec.Modification, s.src)
	if err != nil {
		return nil, err
	}

	values := s.compute(spec.Ion, spec.Charge, modMass)
	s.applyMasks(spec, values)

	s.cache[spec] = values
	return slices.Clone(values), nil
}

func (s *Spectrum) compute(ion IonType, charge int, modMass float64) []float64 {
	f := ionFormulas[ion]

	delta := modMass
	switch f.term {
	case nTerminus:
		delta += s.ntermMass
	case cTerminus:
		delta += s.ctermMass
	}
	delta += s.constants[ion]

	masses := s.ladder.Masses
	out := make([]float64, len(masses))

	switch f.dir {
	case prefix:
		for i, m := range masses {
			out[i] = core.MZ(m+delta, charge, s.src)
		}
	case suffix:
		total := s.ladder.Total()
		out[0] = core.MZ(total+delta, charge, s.src)
		for i := 1; i < len(masses); i++ {
			out[i] = core.MZ(total-masses[i-1]+delta, charge, s.src)
		}
	case perResidue:
		for i := range masses {
			out[i] = core.MZ(s.ladder.Residue(i)+delta, charge, s.src)
		}
	}
	return out
}

func (s *Spectrum) applyMasks(spec SeriesSpec, values []float64) {
	masked := make(map[int]struct{})
	for i := range s.masks[maskKey{spec.Ion, ""}] {
		masked[i] = struct{}{}
	}
	if spec.Modification != "" {
		for i := range s.masks[maskKey{spec.Ion, spec.Modification}] {
			masked[i] = struct{}{}
		}
	}
	for i := range masked {
		if i >= 0 && i < len(values) {
			values[i] = -values[i]
		}
	}
}

// FragmentNumber returns the conventional ion number for entry i of a
// series: fragment length for prefix and suffix series, residue number for
// immonium ions.
func FragmentNumber(ion IonType, i, length int) int {
	if ionFormulas[ion].dir == suffix {
		return length - i
	}
	return i + 1
}

// Theoretical assembles the requested series into a core.Spectrum with
// peaks sorted by m/z. Masked entries are kept with Diagnostic set and
// their unmasked m/z. Termini other than H and OH are recorded as
// modifications at positions -1 and len(seq).
func (s *Spectrum) Theoretical(charge int, specs []SeriesSpec) (*core.Spectrum, error) {
	precursor, err := s.ParentIonMass(charge)
	if err != nil {
		return nil, err
	}

	out := &core.Spectrum{
		Sequence:    s.ladder.Sequence,
		Charge:      charge,
		PrecursorMZ: precursor,
		NTerm:       s.nterm,
		CTerm:       s.cterm,
	}
	if s.nterm != "H" {
		out.Modifications = append(out.Modifications, core.Modification{
			Mass:     s.ntermShift,
			Position: -1,
			Name:     s.nterm,
		})
	}
	if s.cterm != "OH" {
		out.Modifications = append(out.Modifications, core.Modification{
			Mass:     s.ctermShift,
			Position: s.ladder.Len(),
			Name:     s.cterm,
		})
	}

	n := s.ladder.Len()
	for _, spec := range specs {
		values, err := s.SeriesOf(spec)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", spec, err)
		}
		for i, v := range values {
			masked := s.Masked(spec, i)
			if masked {
				v = -v
			}
			num := FragmentNumber(spec.Ion, i, n)
			out.Peaks = append(out.Peaks, core.Peak{
				MZ:         v,
				Annotation: core.Annotate(spec.Ion.String(), num, spec.Charge),
				Ion:        spec.Ion.String(),
				Position:   num,
				Charge:     spec.Charge,
				Diagnostic: masked,
			})
		}
	}

	out.SortPeaks()
	return out, nil
}
