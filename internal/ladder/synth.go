package ladder

import (
	"github.com/vk/stladder/internal/device"
	"github.com/vk/stladder/internal/diag"
	"github.com/vk/stladder/internal/parser"
)

// Synthesizer converts statements into rungs, resolving every referenced
// variable through the device table. One rung is produced per assignment;
// its contacts are the guard accumulated from every enclosing conditional.
type Synthesizer struct {
	table  *device.Table
	diags  *diag.Collector
	layout Layout
	rungs  []Rung
}

// NewSynthesizer returns a synthesizer writing addresses to table and
// findings to diags.
func NewSynthesizer(table *device.Table, diags *diag.Collector, layout Layout) *Synthesizer {
	return &Synthesizer{table: table, diags: diags, layout: layout}
}

// Synthesize appends the rungs for stmts and returns all rungs so far.
func (s *Synthesizer) Synthesize(stmts []parser.Statement) []Rung {
	s.walk(stmts, parser.Condition{})
	return s.rungs
}

func (s *Synthesizer) walk(stmts []parser.Statement, guard parser.Condition) {
	for _, st := range stmts {
		switch st := st.(type) {
		case *parser.Assignment:
			s.emit(st, guard)
		case *parser.Conditional:
			s.conditional(st, guard)
		}
	}
}

// conditional emits the THEN and ELSIF branches under their own guards and
// the ELSE branch under the negation of every preceding guard.
func (s *Synthesizer) conditional(c *parser.Conditional, guard parser.Condition) {
	s.walk(c.Then, guard.And(c.Condition))

	prior := []parser.Condition{c.Condition}
	for _, ei := range c.ElseIfs {
		s.walk(ei.Body, guard.And(ei.Condition))
		prior = append(prior, ei.Condition)
	}

	if !c.HasElse || !hasAssignments(c.Else) {
		return
	}
	elseGuard := guard
	for _, p := range prior {
		if p.Empty() {
			s.diags.Warnf(c.ElseLine, "ELSE of IF at line %d can never run; branch skipped", c.Line)
			return
		}
		neg, ok := p.Negate()
		if !ok {
			s.diags.Warnf(c.ElseLine, "ELSE of IF at line %d skipped: NOT (%s) cannot be drawn as series and parallel contacts", c.Line, p)
			return
		}
		elseGuard = elseGuard.And(neg)
	}
	s.walk(c.Else, elseGuard)
}

// emit builds one rung: a column per guard group, a row per operand of the
// group, then the coil one column past the last contact.
func (s *Synthesizer) emit(a *parser.Assignment, guard parser.Condition) {
	elems := make([]Element, 0, len(guard.Operands())+1)
	for col, group := range guard.Groups {
		for row, op := range group {
			addr := s.table.Resolve(op.Variable, device.InCondition, a.Line)
			if op.Compare != nil && op.Compare.RightIsVariable {
				s.table.Resolve(op.Compare.Right, device.InCondition, a.Line)
			}
			elems = append(elems, Element{
				Kind:           Contact,
				Address:        addr,
				SourceVariable: op.Variable,
				Description:    op.Expr(),
				NormallyOpen:   !op.Negated,
				Position:       s.layout.Place(col, row),
			})
		}
	}

	elems = append(elems, Element{
		Kind:           Coil,
		Address:        s.table.Resolve(a.Target, device.AsTarget, a.Line),
		SourceVariable: a.Target,
		Description:    a.Description(),
		Position:       s.layout.Place(len(guard.Groups), 0),
	})

	s.rungs = append(s.rungs, Rung{Number: len(s.rungs) + 1, Line: a.Line, Elements: elems})
}

func hasAssignments(stmts []parser.Statement) bool {
	for _, st := range stmts {
		switch st := st.(type) {
		case *parser.Assignment:
			return true
		case *parser.Conditional:
			if hasAssignments(st.Then) || hasAssignments(st.Else) {
				return true
			}
			for _, ei := range st.ElseIfs {
				if hasAssignments(ei.Body) {
					return true
				}
			}
		}
	}
	return false
}
