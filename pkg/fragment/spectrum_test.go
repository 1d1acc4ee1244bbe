package fragment

import (
	"testing"

	"github.com/ChrisMcGann/pepfrag/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func newTestSpectrum(t *testing.T, seq string, opts ...Option) *Spectrum {
	t.Helper()
	s, err := NewSpectrum(seq, opts...)
	require.NoError(t, err)
	return s
}

func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "index %d", i)
	}
}

func TestParentIonMass(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL")

	mz, err := s.ParentIonMass(1)
	require.NoError(t, err)
	assert.InDelta(t, 717.377745628191, mz, tol)

	mz2, err := s.ParentIonMass(2)
	require.NoError(t, err)
	assert.InDelta(t, 359.19251104019054, mz2, tol)

	_, err = s.ParentIonMass(0)
	assert.ErrorIs(t, err, ErrZeroCharge)
}

func TestParentIonMassChargeInvariant(t *testing.T) {
	s := newTestSpectrum(t, "SIVHPYITNEYEPFAAEK")
	p := s.ProtonMass()

	base, err := s.ParentIonMass(1)
	require.NoError(t, err)
	neutral := base - p

	for _, z := range []int{-3, -2, -1, 2, 3, 4} {
		mz, err := s.ParentIonMass(z)
		require.NoError(t, err)
		zf := float64(z)
		assert.InDelta(t, neutral, mz*zf-zf*p, 1e-8, "charge %d", z)
	}
}

func TestSeriesB(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL")
	got, err := s.Series("b")
	require.NoError(t, err)
	assertSeries(t, []float64{
		102.054954926291, 201.123368842491, 329.181946353891,
		457.240523865291, 586.283116961491, 699.367180941891,
	}, got)
}

func TestSeriesFormulas(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL")

	tests := []struct {
		spec string
		want []float64
	}{
		{"y", []float64{717.377745628, 616.330067154, 517.261653238, 389.203075726, 261.144498215, 132.101905119}},
		{"a", []float64{74.060040304, 173.12845422, 301.187031732, 429.245609243, 558.288202339, 671.37226632}},
		{"immonium", []float64{74.060040304, 72.080775746, 101.070939341, 101.070939341, 102.054954926, 86.09642581}},
		{"b++", []float64{51.531115689, 101.065322647, 165.094611403, 229.123900159, 293.645196707, 350.187228697}},
		{"nladder", []float64{120.065519613, 219.133933529, 347.19251104, 475.251088552, 604.293681648, 717.377745628}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := s.Series(tt.spec)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-8, "index %d", i)
			}
		})
	}
}

func TestSeriesRelations(t *testing.T) {
	s := newTestSpectrum(t, "PEPTIDEK")
	h, o, n, c := core.MassH, core.MassO, core.MassN, core.MassC

	series := func(spec string) []float64 {
		v, err := s.Series(spec)
		require.NoError(t, err)
		return v
	}
	b, a, cIon := series("b"), series("a"), series("c")
	y, yInt, x, z := series("y"), series("Y"), series("x"), series("z")
	cl := series("cladder")

	for i := range b {
		assert.InDelta(t, b[i]-(c+o), a[i], tol)
		assert.InDelta(t, b[i]+n+3*h, cIon[i], tol)
		assert.InDelta(t, y[i]-2*h, yInt[i], tol)
		assert.InDelta(t, y[i]+c+o-2*h, x[i], tol)
		assert.InDelta(t, y[i]-n-3*h, z[i], tol)
		assert.InDelta(t, y[i], cl[i], tol, "default termini make cladder equal y")
	}

	parent, err := s.ParentIonMass(1)
	require.NoError(t, err)
	p := s.ProtonMass()
	assert.InDelta(t, parent, y[0], tol)
	for i := 1; i < len(y); i++ {
		// b(i-1) and y(i) are complementary fragments.
		assert.InDelta(t, parent+p, b[i-1]+y[i], tol)
	}
}

func TestSeriesChargeNotation(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL")

	yPlus2, err := s.Series("y++")
	require.NoError(t, err)
	direct, err := s.SeriesOf(SeriesSpec{Ion: IonY, Charge: 2})
	require.NoError(t, err)
	assert.Equal(t, direct, yPlus2)

	yMinus2, err := s.Series("y--")
	require.NoError(t, err)
	directNeg, err := s.SeriesOf(SeriesSpec{Ion: IonY, Charge: -2})
	require.NoError(t, err)
	assert.Equal(t, directNeg, yMinus2)

	_, err = s.Series("y+-")
	assert.ErrorIs(t, err, ErrZeroCharge)

	_, err = s.SeriesOf(SeriesSpec{Ion: IonY})
	assert.ErrorIs(t, err, ErrZeroCharge)

	_, err = s.Series("w")
	assert.ErrorIs(t, err, ErrUnknownSeries)

	_, err = s.SeriesOf(SeriesSpec{Ion: numIonTypes, Charge: 1})
	assert.ErrorIs(t, err, ErrUnknownSeries)
}

func TestSeriesModification(t *testing.T) {
	s := newTestSpectrum(t, "PEPTIDEK")
	water := 2*core.MassH + core.MassO

	plain, err := s.Series("b+")
	require.NoError(t, err)

	for _, tok := range []string{"H2O", "18.0105646863"} {
		modified, err := s.Series("b+ " + tok)
		require.NoError(t, err)
		for i := range plain {
			assert.InDelta(t, plain[i]+water, modified[i], 1e-8)
		}
	}

	oxidized, err := s.Series("y++ Oxidation")
	require.NoError(t, err)
	y2, err := s.Series("y++")
	require.NoError(t, err)
	assert.InDelta(t, y2[0]+15.994915/2, oxidized[0], 1e-8)

	_, err = s.Series("b NotAModification")
	assert.Error(t, err)
}

func TestSeriesMasking(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL", WithMask(IonB, "", 5))

	b, err := s.Series("b")
	require.NoError(t, err)
	assert.InDelta(t, -699.367180941891, b[5], tol)
	assert.Greater(t, b[4], 0.0)

	s.RegisterMask(IonB, "H2O", 0, 5, 42)
	s.RegisterMask(IonB, "H2O", 0)

	mod, err := s.Series("b H2O")
	require.NoError(t, err)
	assert.Less(t, mod[0], 0.0)
	assert.Less(t, mod[5], 0.0, "index in both masks is flipped once")
	assert.Greater(t, mod[1], 0.0)

	unmod, err := s.Series("b")
	require.NoError(t, err)
	assert.Greater(t, unmod[0], 0.0, "modification masks do not apply to plain series")

	assert.True(t, s.Masked(SeriesSpec{Ion: IonB, Charge: 1, Modification: "H2O"}, 0))
	assert.False(t, s.Masked(SeriesSpec{Ion: IonB, Charge: 1}, 0))
}

func TestSeriesMaskRegistrationInvalidatesCache(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL")

	before, err := s.Series("y")
	require.NoError(t, err)
	require.Greater(t, before[0], 0.0)

	s.RegisterMask(IonY, "", 0)
	after, err := s.Series("y")
	require.NoError(t, err)
	assert.InDelta(t, -before[0], after[0], tol)
}

func TestSeriesCache(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL")

	first, err := s.Series("b")
	require.NoError(t, err)
	first[0] = 0

	second, err := s.Series("b")
	require.NoError(t, err)
	assert.InDelta(t, 102.054954926291, second[0], tol, "callers get copies of the cached list")
	assert.Len(t, s.cache, 1)

	_, err = s.Series("b+")
	require.NoError(t, err)
	assert.Len(t, s.cache, 1, "b and b+ share a cache entry")
}

func TestEmptySpectrum(t *testing.T) {
	s := newTestSpectrum(t, "")

	_, err := s.Series("b")
	assert.ErrorIs(t, err, ErrEmptyLadder)

	mz, err := s.ParentIonMass(1)
	require.NoError(t, err)
	assert.InDelta(t, 2*core.MassH+core.MassO+core.ProtonMass, mz, tol)
}

func TestTermini(t *testing.T) {
	acetyl := newTestSpectrum(t, "TVQQEL", WithTermini("C2H3O", "NH2"))
	plain := newTestSpectrum(t, "TVQQEL")

	nt, ct := acetyl.Termini()
	assert.Equal(t, "C2H3O", nt)
	assert.Equal(t, "NH2", ct)

	pb, err := plain.Series("b")
	require.NoError(t, err)
	ab, err := acetyl.Series("b")
	require.NoError(t, err)
	acetylShift := 2*core.MassC + 2*core.MassH + core.MassO
	assert.InDelta(t, pb[0]+acetylShift, ab[0], tol)

	_, err = NewSpectrum("TVQQEL", WithTermini("h", "OH"))
	assert.Error(t, err)
}

func TestMassSourceOption(t *testing.T) {
	avg := newTestSpectrum(t, "TVQQEL", WithMassSource(core.Average))
	mono := newTestSpectrum(t, "TVQQEL")

	a, err := avg.ParentIonMass(1)
	require.NoError(t, err)
	m, err := mono.ParentIonMass(1)
	require.NoError(t, err)
	assert.InDelta(t, 717.8, a, 0.1)
	assert.Greater(t, a, m)

	heavy := newTestSpectrum(t, "K", WithMassSource(core.Labeled(core.Monoisotopic, map[string]float64{"N": 15.0001088982})))
	light := newTestSpectrum(t, "K")
	hy, err := heavy.Series("y")
	require.NoError(t, err)
	ly, err := light.Series("y")
	require.NoError(t, err)
	assert.InDelta(t, 2*(15.0001088982-core.MassN), hy[0]-ly[0], 1e-9)

	_, err = NewSpectrum("K", WithMassSource(func(string) (float64, bool) { return 0, false }))
	assert.ErrorIs(t, err, core.ErrUnknownElement)
}

func TestLocations(t *testing.T) {
	s := newTestSpectrum(t, "PEPTIDEKR", WithTrackedResidues(NewTrackedResidues("KRP")))
	assert.Equal(t, []int{0, 2}, s.Locations('P'))
	assert.Equal(t, []int{7}, s.Locations('K'))
	assert.Nil(t, s.Locations('E'))
}

func TestTheoretical(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL", WithMask(IonY, "", 0))

	spec, err := s.Theoretical(2, []SeriesSpec{{Ion: IonB, Charge: 1}, {Ion: IonY, Charge: 1}})
	require.NoError(t, err)
	require.NoError(t, spec.Validate())

	assert.Equal(t, "TVQQEL/2", spec.Name())
	assert.InDelta(t, 359.19251104019054, spec.PrecursorMZ, tol)
	require.Len(t, spec.Peaks, 12)

	assert.Equal(t, "b1", spec.Peaks[0].Annotation)
	last := spec.Peaks[len(spec.Peaks)-1]
	assert.Equal(t, "y6", last.Annotation)
	assert.True(t, last.Diagnostic)
	assert.InDelta(t, 717.377745628191, last.MZ, tol)

	assert.Empty(t, spec.Modifications)
	assert.Equal(t, "", spec.ModString())

	_, err = s.Theoretical(0, nil)
	assert.ErrorIs(t, err, ErrZeroCharge)
}

func TestTheoreticalTerminalModifications(t *testing.T) {
	s := newTestSpectrum(t, "TVQQEL", WithTermini("C2H3O", "NH2"))

	spec, err := s.Theoretical(1, []SeriesSpec{{Ion: IonB, Charge: 1}})
	require.NoError(t, err)
	require.Len(t, spec.Modifications, 2)

	acetyl := 2*core.MassC + 2*core.MassH + core.MassO
	amide := core.MassN + core.MassH - core.MassO

	assert.Equal(t, "C2H3O", spec.Modifications[0].Name)
	assert.Equal(t, -1, spec.Modifications[0].Position)
	assert.InDelta(t, acetyl, spec.Modifications[0].Mass, tol)

	assert.Equal(t, "NH2", spec.Modifications[1].Name)
	assert.Equal(t, 6, spec.Modifications[1].Position)
	assert.InDelta(t, amide, spec.Modifications[1].Mass, tol)

	assert.InDelta(t, acetyl+amide, spec.TotalModMass(), tol)
	assert.Equal(t, "42.010565@-1;-0.984016@6", spec.ModString())

	// Precursor shifts by the same amount as the modifications
	plain := newTestSpectrum(t, "TVQQEL")
	base, err := plain.ParentIonMass(1)
	require.NoError(t, err)
	assert.InDelta(t, base+spec.TotalModMass(), spec.PrecursorMZ, tol)

	// Only a changed terminus is recorded
	cOnly := newTestSpectrum(t, "TVQQEL", WithTermini("H", "NH2"))
	spec, err = cOnly.Theoretical(1, nil)
	require.NoError(t, err)
	require.Len(t, spec.Modifications, 1)
	assert.Equal(t, 6, spec.Modifications[0].Position)
}

func TestFragmentNumber(t *testing.T) {
	assert.Equal(t, 1, FragmentNumber(IonB, 0, 6))
	assert.Equal(t, 6, FragmentNumber(IonY, 0, 6))
	assert.Equal(t, 1, FragmentNumber(IonY, 5, 6))
	assert.Equal(t, 3, FragmentNumber(IonImmonium, 2, 6))
}
