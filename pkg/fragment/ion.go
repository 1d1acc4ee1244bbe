package fragment

import (
	"errors"
	"fmt"
	"strings"
)

// IonType identifies a fragment ion series.
type IonType int

// Ion series. numIonTypes must stay last.
const (
	IonA IonType = iota
	IonB
	IonC
	IonX
	IonY
	IonZ
	IonYInternal // "Y": y minus two hydrogens
	IonImmonium
	IonNLadder
	IonCLadder
	numIonTypes
)

var ionNames = [numIonTypes]string{
	IonA:         "a",
	IonB:         "b",
	IonC:         "c",
	IonX:         "x",
	IonY:         "y",
	IonZ:         "z",
	IonYInternal: "Y",
	IonImmonium:  "immonium",
	IonNLadder:   "nladder",
	IonCLadder:   "cladder",
}

func (t IonType) String() string {
	if t < 0 || t >= numIonTypes {
		return fmt.Sprintf("IonType(%d)", int(t))
	}
	return ionNames[t]
}

// IonTypes returns every ion type in declaration order.
func IonTypes() []IonType {
	types := make([]IonType, numIonTypes)
	for i := range types {
		types[i] = IonType(i)
	}
	return types
}

var (
	// ErrUnknownSeries is returned for an unrecognised ion type token.
	ErrUnknownSeries = errors.New("unknown ion series")
	// ErrZeroCharge is returned when '+' and '-' counts cancel out.
	ErrZeroCharge = errors.New("series charge is zero")
	// ErrSeriesSeparator is returned when a modification follows the
	// charge signs without whitespace, as in "y++H2O".
	ErrSeriesSeparator = errors.New("modification must be whitespace-separated from the ion series")
)

// ParseIonType maps a token such as "b" or "immonium" to its ion type.
// Matching is case-sensitive: "y" and "Y" are different series.
func ParseIonType(token string) (IonType, error) {
	for i, name := range ionNames {
		if name == token {
			return IonType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSeries, token)
}

// SeriesSpec names one ion series at one charge, optionally modified.
type SeriesSpec struct {
	Ion          IonType
	Charge       int
	Modification string
}

func (s SeriesSpec) String() string {
	var sb strings.Builder
	sb.WriteString(s.Ion.String())
	sign := "+"
	n := s.Charge
	if n < 0 {
		sign = "-"
		n = -n
	}
	sb.WriteString(strings.Repeat(sign, n))
	if s.Modification != "" {
		sb.WriteByte(' ')
		sb.WriteString(s.Modification)
	}
	return sb.String()
}

// ParseSeriesSpec parses requests such as "b", "y++", "y---" or
// "nladder- H2O". The ion token is the leading run of letters; the charge
// is the count of '+' minus the count of '-' that follow it (1 when there
// are none); anything after is the modification token with surrounding
// whitespace removed.
func ParseSeriesSpec(s string) (SeriesSpec, error) {
	s = strings.TrimSpace(s)

	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	ion, err := ParseIonType(s[:i])
	if err != nil {
		return SeriesSpec{}, err
	}

	plus, minus := 0, 0
	for i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '+' {
			plus++
		} else {
			minus++
		}
		i++
	}

	charge := 1
	if plus+minus > 0 {
		charge = plus - minus
		if charge == 0 {
			return SeriesSpec{}, fmt.Errorf("%w: %q", ErrZeroCharge, s)
		}
	}

	rest := s[i:]
	if rest != "" && !isSpace(rest[0]) {
		return SeriesSpec{}, fmt.Errorf("%w: %q", ErrSeriesSeparator, s)
	}

	return SeriesSpec{
		Ion:          ion,
		Charge:       charge,
		Modification: strings.Join(strings.Fields(rest), ""),
	}, nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
