package filter

import (
	"testing"

	"github.com/ChrisMcGann/pepfrag/pkg/enzyme"
)

func TestApply(t *testing.T) {
	peptides := []enzyme.Peptide{
		{Sequence: "MIVIGR"},
		{Sequence: "SIVHPYITNEYEPFAAEK"},
		{Sequence: "QQILSIMAG"},
		{Sequence: "AK"},
	}

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"no limits", Config{}, []string{"MIVIGR", "SIVHPYITNEYEPFAAEK", "QQILSIMAG", "AK"}},
		{"minimum", Config{MinLength: 6}, []string{"MIVIGR", "SIVHPYITNEYEPFAAEK", "QQILSIMAG"}},
		{"maximum", Config{MaxLength: 9}, []string{"MIVIGR", "QQILSIMAG", "AK"}},
		{"both", Config{MinLength: 7, MaxLength: 9}, []string{"QQILSIMAG"}},
		{"nothing passes", Config{MinLength: 50}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Apply(peptides)
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() kept %d peptides, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Sequence != tt.want[i] {
					t.Errorf("peptide %d = %s, want %s", i, got[i].Sequence, tt.want[i])
				}
			}
		})
	}
}

func TestKeepWhitespace(t *testing.T) {
	cfg := Config{MaxLength: 6}
	if !cfg.Keep("ELVISK ") {
		t.Error("trailing whitespace should not count by default")
	}

	cfg.CountWhitespace = true
	if cfg.Keep("ELVISK ") {
		t.Error("whitespace should count when CountWhitespace is set")
	}
}

func TestStripFastaHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"with header", ">sp|P12345|TEST some protein\nMIVIGR\nSIVHK\n", "MIVIGR\nSIVHK\n"},
		{"no header", "MIVIGR", "MIVIGR"},
		{"header only", ">only a header", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFastaHeader(tt.in); got != tt.want {
				t.Errorf("StripFastaHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripWhitespace(t *testing.T) {
	if got := StripWhitespace(" MIV IGR\n\tSIV\r\n"); got != "MIVIGRSIV" {
		t.Errorf("StripWhitespace() = %q", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("miv igr", false); got != "MIV IGR" {
		t.Errorf("Normalize(keep) = %q", got)
	}
	if got := Normalize("miv igr", true); got != "MIVIGR" {
		t.Errorf("Normalize(strip) = %q", got)
	}
}
