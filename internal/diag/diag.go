// Package diag collects per-line errors and warnings produced while
// translating a Structured Text source. Nothing in here aborts a translation:
// stages report into a Collector and carry on with the next line.
package diag

import (
	"fmt"
	"strings"
)

// Severity distinguishes skippable findings from lines that were dropped.
type Severity int

const (
	// Warning marks an unsupported, skipped or lowered construct.
	Warning Severity = iota
	// Error marks a line that could not be interpreted and was omitted.
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a single finding tied to a source line. EndLine is set only
// when the finding covers a span (for example a skipped FUNCTION_BLOCK).
type Diagnostic struct {
	Severity Severity
	Line     int
	EndLine  int
	Message  string
}

// String renders the diagnostic the way it is shown to API clients.
func (d Diagnostic) String() string {
	if d.Line <= 0 {
		return d.Message
	}
	if d.EndLine > d.Line {
		return fmt.Sprintf("lines %d-%d: %s", d.Line, d.EndLine, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Collector accumulates diagnostics in the order they were reported.
// The zero value is ready to use. A Collector belongs to one translation.
type Collector struct {
	entries []Diagnostic
}

// Errorf records an error for the given line.
func (c *Collector) Errorf(line int, format string, args ...any) {
	c.add(Diagnostic{Severity: Error, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning for the given line.
func (c *Collector) Warnf(line int, format string, args ...any) {
	c.add(Diagnostic{Severity: Warning, Line: line, Message: fmt.Sprintf(format, args...)})
}

// WarnSpan records a warning covering lines [from, to].
func (c *Collector) WarnSpan(from, to int, format string, args ...any) {
	c.add(Diagnostic{Severity: Warning, Line: from, EndLine: to, Message: fmt.Sprintf(format, args...)})
}

func (c *Collector) add(d Diagnostic) {
	c.entries = append(c.entries, d)
}

// All returns every diagnostic in report order.
func (c *Collector) All() []Diagnostic {
	out := make([]Diagnostic, len(c.entries))
	copy(out, c.entries)
	return out
}

// Errors returns only the error diagnostics, in report order.
func (c *Collector) Errors() []Diagnostic {
	return c.filter(Error)
}

// Warnings returns only the warning diagnostics, in report order.
func (c *Collector) Warnings() []Diagnostic {
	return c.filter(Warning)
}

// HasErrors reports whether at least one error was recorded.
func (c *Collector) HasErrors() bool {
	for _, d := range c.entries {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Report freezes the collected diagnostics into plain data.
func (c *Collector) Report() Report {
	return Report{Errors: c.Errors(), Warnings: c.Warnings()}
}

func (c *Collector) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.entries {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Report is the immutable result of a translation's diagnostics.
type Report struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// ErrorStrings renders the errors as display strings.
func (r Report) ErrorStrings() []string {
	return toStrings(r.Errors)
}

// WarningStrings renders the warnings as display strings.
func (r Report) WarningStrings() []string {
	return toStrings(r.Warnings)
}

// Summary returns a one-line human readable count, e.g. "2 errors, 1 warning".
func (r Report) Summary() string {
	return fmt.Sprintf("%s, %s", plural(len(r.Errors), "error"), plural(len(r.Warnings), "warning"))
}

func toStrings(ds []Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.String())
	}
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %s", n, strings.TrimSpace(word)+"s")
}
