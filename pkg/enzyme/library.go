package enzyme

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// builtinRules follows the Mascot enzyme table. Columns: name, sense,
// cleavage residues, exception ("-" for none), independent, semispecific.
const builtinRules = `
Arg-C          C-Term  R       P  no  no
Asp-N          N-Term  BD      -  no  no
Asp-N_ambic    N-Term  DE      -  no  no
Chymotrypsin   C-Term  FLWY    P  no  no
CNBr           C-Term  M       -  no  no
Lys-C          C-Term  K       P  no  no
Lys-C/P        C-Term  K       -  no  no
PepsinA        C-Term  FL      -  no  no
Tryp-CNBr      C-Term  KMR     P  no  no
TrypChymo      C-Term  FKLRWY  P  no  no
Trypsin/P      C-Term  KR      -  no  no
V8-DE          C-Term  BDEZ    P  no  no
V8-E           C-Term  EZ      P  no  no
Trypsin        C-Term  KR      P  no  no
V8-E+Trypsin   C-Term  EKRZ    P  no  no
V8-DE+Trypsin  C-Term  BDEKRZ  P  no  no
`

// Library is a read-only set of named rules.
type Library struct {
	rules map[string]*Rule
	order []string
}

// NewLibrary builds a library. Later rules replace earlier ones with the
// same name but keep the original position.
func NewLibrary(rules ...*Rule) *Library {
	lib := &Library{rules: make(map[string]*Rule, len(rules))}
	for _, r := range rules {
		if _, ok := lib.rules[r.Name()]; !ok {
			lib.order = append(lib.order, r.Name())
		}
		lib.rules[r.Name()] = r
	}
	return lib
}

// ParseRules reads rule definitions, one per line. Blank lines and lines
// starting with '#' are skipped.
func ParseRules(r io.Reader) ([]*Rule, error) {
	var rules []*Rule
	scanner := bufio.NewScanner(r)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		rule, err := ParseRule(line)
		if err != nil {
			var cfgErr *ConfigError
			if errors.As(err, &cfgErr) {
				cfgErr.Line = lineNum
			}
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading enzyme definitions: %w", err)
	}

	return rules, nil
}

// LoadLibrary reads a definition file into a new library.
func LoadLibrary(r io.Reader) (*Library, error) {
	rules, err := ParseRules(r)
	if err != nil {
		return nil, err
	}
	return NewLibrary(rules...), nil
}

var (
	defaultOnce    sync.Once
	defaultLibrary *Library
)

// DefaultLibrary returns the built-in rules. The table is parsed once; a
// malformed built-in definition panics.
func DefaultLibrary() *Library {
	defaultOnce.Do(func() {
		lib, err := LoadLibrary(strings.NewReader(builtinRules))
		if err != nil {
			panic(fmt.Sprintf("enzyme: built-in rules: %v", err))
		}
		defaultLibrary = lib
	})
	return defaultLibrary
}

// Lookup finds a rule by exact, case-sensitive name.
func (l *Library) Lookup(name string) (*Rule, error) {
	r, ok := l.rules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnzyme, name)
	}
	return r, nil
}

// Names returns rule names in definition order.
func (l *Library) Names() []string {
	names := make([]string, len(l.order))
	copy(names, l.order)
	return names
}

// Rules returns the rules in definition order.
func (l *Library) Rules() []*Rule {
	rules := make([]*Rule, 0, len(l.order))
	for _, name := range l.order {
		rules = append(rules, l.rules[name])
	}
	return rules
}

// Len returns the number of rules.
func (l *Library) Len() int { return len(l.order) }

// With returns a new library holding l's rules plus extra ones. l is not
// modified.
func (l *Library) With(extra ...*Rule) *Library {
	return NewLibrary(append(l.Rules(), extra...)...)
}

// Suggest returns names that match name ignoring case, for error messages.
func (l *Library) Suggest(name string) []string {
	var out []string
	for _, n := range l.order {
		if strings.EqualFold(n, name) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
