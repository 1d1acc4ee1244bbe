// Package enzyme provides protease cleavage rules and in-silico digestion.
package enzyme

import (
	"errors"
	"fmt"
	"strings"
)

// Sense says on which side of a matched residue a rule cuts.
type Sense int

const (
	// CleavesAfter cuts on the C-terminal side of the residue ("C-Term").
	CleavesAfter Sense = iota
	// CleavesBefore cuts on the N-terminal side of the residue ("N-Term").
	CleavesBefore
)

func (s Sense) String() string {
	switch s {
	case CleavesAfter:
		return "C-Term"
	case CleavesBefore:
		return "N-Term"
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// ParseSense parses the sense token of a rule definition.
func ParseSense(token string) (Sense, error) {
	switch token {
	case "C-Term":
		return CleavesAfter, nil
	case "N-Term":
		return CleavesBefore, nil
	default:
		return 0, fmt.Errorf("unknown sense %q, expected C-Term or N-Term", token)
	}
}

var (
	// ErrUnknownEnzyme is returned when a library has no rule with the requested name.
	ErrUnknownEnzyme = errors.New("unknown enzyme")
	// ErrRegion is returned when an offset/length pair falls outside the sequence.
	ErrRegion = errors.New("region out of range")
)

// ConfigError reports a malformed rule definition.
type ConfigError struct {
	Rule    string
	Line    int // 0 when not read from a file
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("enzyme config error at line %d (%s): %s", e.Line, e.Rule, e.Message)
	}
	return fmt.Sprintf("enzyme config error (%s): %s", e.Rule, e.Message)
}

// Rule is an immutable cleavage rule. It holds no scanning state and is
// safe for concurrent use.
type Rule struct {
	name      string
	residues  string
	cleaves   [256]bool
	exception byte
	hasExc    bool
	sense     Sense
}

// NewRule builds a rule. exception may be empty; otherwise it must be a
// single residue.
func NewRule(name string, sense Sense, residues, exception string) (*Rule, error) {
	if residues == "" {
		return nil, &ConfigError{Rule: name, Message: "cleavage residues must not be empty"}
	}
	if len(exception) > 1 {
		return nil, &ConfigError{Rule: name, Message: fmt.Sprintf("exception %q must be a single residue", exception)}
	}
	if sense != CleavesAfter && sense != CleavesBefore {
		return nil, &ConfigError{Rule: name, Message: fmt.Sprintf("invalid sense %d", int(sense))}
	}

	r := &Rule{
		name:     name,
		residues: residues,
		sense:    sense,
	}
	for i := 0; i < len(residues); i++ {
		r.cleaves[residues[i]] = true
	}
	if exception != "" {
		r.exception = exception[0]
		r.hasExc = true
	}
	return r, nil
}

// ParseRule builds a rule from one definition line:
//
//	name  sense  residues  exception  flag  flag
//
// Tab-separated lines keep empty fields, so an empty exception column
// means none. Space-separated lines use "-" for no exception. The two
// trailing flags are accepted and ignored.
func ParseRule(line string) (*Rule, error) {
	var fields []string
	if strings.Contains(line, "\t") {
		fields = strings.Split(strings.TrimRight(line, "\r\n"), "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
	} else {
		fields = strings.Fields(line)
	}

	if len(fields) < 3 {
		return nil, &ConfigError{Rule: strings.TrimSpace(line), Message: "expected at least name, sense and residues"}
	}
	if len(fields) > 6 {
		return nil, &ConfigError{Rule: fields[0], Message: fmt.Sprintf("expected at most 6 fields, got %d", len(fields))}
	}

	sense, err := ParseSense(fields[1])
	if err != nil {
		return nil, &ConfigError{Rule: fields[0], Message: err.Error()}
	}

	exception := ""
	if len(fields) > 3 && fields[3] != "-" {
		exception = fields[3]
	}

	return NewRule(fields[0], sense, fields[2], exception)
}

// Name returns the rule name.
func (r *Rule) Name() string { return r.name }

// Residues returns the cleavage residues in definition order.
func (r *Rule) Residues() string { return r.residues }

// Sense returns the cleavage side.
func (r *Rule) Sense() Sense { return r.sense }

// Exception returns the residue that suppresses cleavage when it follows a
// cleavage residue.
func (r *Rule) Exception() (byte, bool) { return r.exception, r.hasExc }

// Cleaves reports whether c is a cleavage residue.
func (r *Rule) Cleaves(c byte) bool { return r.cleaves[c] }

func (r *Rule) String() string {
	exc := "-"
	if r.hasExc {
		exc = string(r.exception)
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s", r.name, r.sense, r.residues, exc)
}
