package device

import (
	"fmt"
	"regexp"
	"strings"
)

// Classifier decides the device class of a variable. declaredType is empty for
// variables that were never declared; hint says where such a variable was
// first referenced.
type Classifier interface {
	Classify(name, declaredType string, hint Context) Class
}

// Default keyword lists of the name heuristic.
var (
	InputKeywords  = []string{"input", "sensor", "button", "start", "stop", "emergency"}
	OutputKeywords = []string{"motor", "lamp", "valve", "output", "alarm", "buzzer"}
)

// Rule is one entry of an ordered classification list. A rule matches when
// the declared type is one of Types (any type if Types is empty) and the name
// matches one of Keywords or Patterns (any name if both are empty).
type Rule struct {
	Name     string
	Class    Class
	Types    []string
	Keywords []string
	Patterns []*regexp.Regexp
}

// NewRule builds a rule from its textual form, as found in configuration.
func NewRule(name, class string, types, keywords, patterns []string) (Rule, error) {
	c, err := ParseClass(class)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	r := Rule{Name: name, Class: c}
	for _, t := range types {
		r.Types = append(r.Types, NormalizeType(t))
	}
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			r.Keywords = append(r.Keywords, strings.ToLower(k))
		}
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %q: invalid pattern %q: %w", name, p, err)
		}
		r.Patterns = append(r.Patterns, re)
	}
	return r, nil
}

// nameBased reports whether the rule looks at the variable name at all.
func (r Rule) nameBased() bool {
	return len(r.Keywords) > 0 || len(r.Patterns) > 0
}

func (r Rule) matchesType(typ string) bool {
	if len(r.Types) == 0 {
		return true
	}
	for _, t := range r.Types {
		if t == typ {
			return true
		}
	}
	return false
}

func (r Rule) matchesName(name string) bool {
	if !r.nameBased() {
		return true
	}
	lower := strings.ToLower(name)
	for _, k := range r.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	for _, p := range r.Patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// Rules is an ordered rule list; the first matching rule wins.
type Rules []Rule

// Classify implements Classifier.
//
// Declared variables are matched against every rule; an unmatched type falls
// back to Internal. An undeclared variable first seen in a condition is an
// Input. One first seen as a target is treated as BOOL and only the
// name-based Output rules apply, so a coil never lands on an input; without a
// match it is Internal.
func (rs Rules) Classify(name, declaredType string, hint Context) Class {
	if declaredType != "" {
		typ := NormalizeType(declaredType)
		for _, r := range rs {
			if r.matchesType(typ) && r.matchesName(name) {
				return r.Class
			}
		}
		return Internal
	}

	if hint == InCondition {
		return Input
	}
	for _, r := range rs {
		if r.Class == Output && r.nameBased() && r.matchesType("BOOL") && r.matchesName(name) {
			return Output
		}
	}
	return Internal
}

// DefaultRules returns the built-in classification list.
func DefaultRules() Rules {
	return Rules{
		{
			Name:     "bool_input",
			Class:    Input,
			Types:    []string{"BOOL"},
			Keywords: InputKeywords,
			Patterns: []*regexp.Regexp{regexp.MustCompile(`^X[0-9]+$`)},
		},
		{
			Name:     "bool_output",
			Class:    Output,
			Types:    []string{"BOOL"},
			Keywords: OutputKeywords,
			Patterns: []*regexp.Regexp{regexp.MustCompile(`^Y[0-9]+$`)},
		},
		{Name: "bool_internal", Class: Internal, Types: []string{"BOOL"}},
		{
			Name:  "data",
			Class: DataRegister,
			Types: []string{
				"DINT", "REAL", "INT", "SINT", "LINT", "UINT", "UDINT", "USINT", "ULINT", "LREAL",
				"BYTE", "WORD", "DWORD", "LWORD", "STRING", "WSTRING",
			},
		},
		{Name: "timer", Class: Timer, Types: []string{"TIME", "TON", "TOF", "TP"}},
		{Name: "counter", Class: Counter, Types: []string{"CTU", "CTD", "CTUD"}},
	}
}

// NormalizeType upper-cases a declared type and drops length or range
// suffixes, so "string(20)" and "STRING" compare equal.
func NormalizeType(typ string) string {
	typ = strings.ToUpper(strings.TrimSpace(typ))
	if i := strings.IndexAny(typ, "([ "); i > 0 {
		typ = typ[:i]
	}
	return typ
}
