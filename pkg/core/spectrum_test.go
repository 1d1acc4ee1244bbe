package core

import (
	"math"
	"strings"
	"testing"
)

func TestSpectrumValidation(t *testing.T) {
	tests := []struct {
		name    string
		spec    *Spectrum
		wantErr bool
	}{
		{
			name: "valid spectrum",
			spec: &Spectrum{
				Sequence:    "PEPTIDE",
				Charge:      2,
				PrecursorMZ: 400.5,
				Peaks: []Peak{
					{MZ: 98.06, Charge: 1},
					{MZ: 227.10, Charge: 1},
				},
			},
			wantErr: false,
		},
		{
			name: "negative charge is allowed",
			spec: &Spectrum{
				Sequence:    "PEPTIDE",
				Charge:      -1,
				PrecursorMZ: -798.3,
			},
			wantErr: false,
		},
		{
			name: "missing sequence",
			spec: &Spectrum{
				Charge:      2,
				PrecursorMZ: 400.5,
			},
			wantErr: true,
		},
		{
			name: "zero charge",
			spec: &Spectrum{
				Sequence:    "PEPTIDE",
				PrecursorMZ: 400.5,
			},
			wantErr: true,
		},
		{
			name: "unsorted peaks",
			spec: &Spectrum{
				Sequence:    "PEPTIDE",
				Charge:      2,
				PrecursorMZ: 400.5,
				Peaks: []Peak{
					{MZ: 200.0, Charge: 1},
					{MZ: 100.0, Charge: 1},
				},
			},
			wantErr: true,
		},
		{
			name: "NaN m/z",
			spec: &Spectrum{
				Sequence:    "PEPTIDE",
				Charge:      2,
				PrecursorMZ: 400.5,
				Peaks: []Peak{
					{MZ: math.NaN(), Charge: 1},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := (&Spectrum{}).Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "sequence is required") || !strings.Contains(err.Error(), "charge must be non-zero") {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestSortPeaks(t *testing.T) {
	spec := &Spectrum{
		Peaks: []Peak{
			{MZ: 300.0, Annotation: "y3"},
			{MZ: 100.0, Annotation: "b1"},
			{MZ: 200.0, Annotation: "b2"},
			{MZ: 100.0, Annotation: "a2"},
		},
	}

	spec.SortPeaks()

	expected := []string{"b1", "a2", "b2", "y3"}
	for i, peak := range spec.Peaks {
		if peak.Annotation != expected[i] {
			t.Errorf("Peak %d: expected %s, got %s", i, expected[i], peak.Annotation)
		}
	}
}

func TestTotalModMass(t *testing.T) {
	spec := &Spectrum{
		Modifications: []Modification{
			{Mass: 57.021464, Position: 3},
			{Mass: 15.994915, Position: 7},
		},
	}

	total := spec.TotalModMass()
	expected := 57.021464 + 15.994915

	if math.Abs(total-expected) > 0.000001 {
		t.Errorf("Expected total mod mass %.6f, got %.6f", expected, total)
	}
}

func TestModString(t *testing.T) {
	spec := &Spectrum{
		Modifications: []Modification{
			{Mass: 57.021464, Position: 3},
			{Mass: 15.994915, Position: 7},
		},
	}

	if got, want := spec.ModString(), "57.021464@3;15.994915@7"; got != want {
		t.Errorf("ModString() = %q, want %q", got, want)
	}
	if (&Spectrum{}).ModString() != "" {
		t.Error("expected empty mod string")
	}
}

func TestSpectrumName(t *testing.T) {
	spec := &Spectrum{
		Sequence: "PEPTIDE",
		Charge:   2,
	}

	if name := spec.Name(); name != "PEPTIDE/2" {
		t.Errorf("Expected name PEPTIDE/2, got %s", name)
	}
}

func TestAnnotate(t *testing.T) {
	tests := []struct {
		ion      string
		position int
		charge   int
		want     string
	}{
		{"y", 3, 1, "y3"},
		{"b", 2, 2, "b2^2"},
		{"y", 4, -2, "y4^-2"},
	}
	for _, tt := range tests {
		if got := Annotate(tt.ion, tt.position, tt.charge); got != tt.want {
			t.Errorf("Annotate(%s, %d, %d) = %s, want %s", tt.ion, tt.position, tt.charge, got, tt.want)
		}
	}
}
