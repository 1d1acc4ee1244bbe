// Package filter provides sequence clean-up and peptide filtering applied
// around digestion
package filter

import (
	"strings"
	"unicode"

	"github.com/ChrisMcGann/pepfrag/pkg/enzyme"
)

// Config holds filtering configuration
type Config struct {
	MinLength int // Drop peptides shorter than this (0 = no minimum)
	MaxLength int // Drop peptides longer than this (0 = no maximum)
	// CountWhitespace includes whitespace in peptide length. Off by default
	// so unstripped sequences filter the same as stripped ones.
	CountWhitespace bool
}

// Apply keeps the peptides that pass the length limits, preserving order
func (c *Config) Apply(peptides []enzyme.Peptide) []enzyme.Peptide {
	if c.MinLength <= 0 && c.MaxLength <= 0 {
		return peptides
	}

	filtered := make([]enzyme.Peptide, 0, len(peptides))
	for _, p := range peptides {
		if c.Keep(p.Sequence) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Keep reports whether a single peptide passes the length limits
func (c *Config) Keep(peptide string) bool {
	n := len(peptide)
	if !c.CountWhitespace {
		n = residueCount(peptide)
	}

	if c.MinLength > 0 && n < c.MinLength {
		return false
	}
	if c.MaxLength > 0 && n > c.MaxLength {
		return false
	}
	return true
}

func residueCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// StripFastaHeader removes a leading FASTA header line (from '>' through
// the first newline). Text without a header is returned unchanged.
func StripFastaHeader(text string) string {
	if !strings.HasPrefix(text, ">") {
		return text
	}
	idx := strings.IndexByte(text, '\n')
	if idx < 0 {
		return ""
	}
	return text[idx+1:]
}

// StripWhitespace removes every whitespace character from a sequence
func StripWhitespace(seq string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, seq)
}

// Normalize uppercases a sequence and optionally strips whitespace
func Normalize(seq string, stripWhitespace bool) string {
	seq = strings.ToUpper(seq)
	if stripWhitespace {
		seq = StripWhitespace(seq)
	}
	return seq
}
