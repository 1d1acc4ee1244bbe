// Package core provides the intermediate representation (IR) models and validation logic
// for theoretical peptide spectra used by pepfrag.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Spectrum is a theoretical fragment spectrum for one peptide and precursor charge.
type Spectrum struct {
	Sequence      string
	Charge        int     // Precursor charge state, may be negative
	PrecursorMZ   float64 // Parent ion m/z
	NTerm         string  // N-terminal group formula
	CTerm         string  // C-terminal group formula
	Peaks         []Peak
	Modifications []Modification
}

// Peak is one theoretical fragment ion.
type Peak struct {
	MZ         float64
	Annotation string // Ion annotation (e.g., "y3", "b2^2")
	Ion        string // Ion series tag (e.g., "b", "immonium")
	Position   int    // 1-based fragment length, or residue number for immonium ions
	Charge     int    // Fragment charge
	Diagnostic bool   // Position was masked in the series
}

// Modification represents a peptide modification with position and mass shift.
type Modification struct {
	Mass     float64
	Position int    // 0-based position; -1 for N-term, len(seq) for C-term
	Name     string // Modification name or formula (e.g., "Oxidation", "H2O")
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a spectrum can be written out.
func (s *Spectrum) Validate() error {
	var errs []string

	if s.Sequence == "" {
		errs = append(errs, "sequence is required")
	}
	if s.Charge == 0 {
		errs = append(errs, "charge must be non-zero")
	}
	if math.IsNaN(s.PrecursorMZ) || math.IsInf(s.PrecursorMZ, 0) || s.PrecursorMZ == 0 {
		errs = append(errs, "precursor m/z must be finite and non-zero")
	}

	for i, peak := range s.Peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if peak.Charge == 0 {
			errs = append(errs, fmt.Sprintf("peak %d has zero charge", i))
		}
	}

	if !s.ArePeaksSorted() {
		errs = append(errs, "peaks must be sorted by m/z")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func (s *Spectrum) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ < s.Peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by m/z in ascending order. Ties keep series order.
func (s *Spectrum) SortPeaks() {
	sort.SliceStable(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// TotalModMass returns the sum of all modification masses.
func (s *Spectrum) TotalModMass() float64 {
	total := 0.0
	for _, mod := range s.Modifications {
		total += mod.Mass
	}
	return total
}

// ModString returns a string representation of modifications in format "mass@pos;mass@pos;..."
func (s *Spectrum) ModString() string {
	if len(s.Modifications) == 0 {
		return ""
	}

	parts := make([]string, 0, len(s.Modifications))
	for _, mod := range s.Modifications {
		parts = append(parts, fmt.Sprintf("%.6f@%d", mod.Mass, mod.Position))
	}
	return strings.Join(parts, ";")
}

// Name returns the spectrum name in format "Sequence/Charge"
func (s *Spectrum) Name() string {
	return fmt.Sprintf("%s/%d", s.Sequence, s.Charge)
}

// Annotate formats an ion label such as "y3" or "b2^2". Charges other than
// 1 are appended after a caret; negative charges keep their sign.
func Annotate(ion string, position, charge int) string {
	if charge == 1 {
		return fmt.Sprintf("%s%d", ion, position)
	}
	return fmt.Sprintf("%s%d^%d", ion, position, charge)
}
