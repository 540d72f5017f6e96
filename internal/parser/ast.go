package parser

import "strings"

// Statement is either an *Assignment or a *Conditional.
type Statement interface {
	// StartLine is the source line the statement begins on.
	StartLine() int
	stmt()
}

// Assignment is `Target := Value`. Value is kept verbatim; right-hand sides
// are never evaluated, they only label the generated coil.
type Assignment struct {
	Target string
	Value  string
	Line   int
}

func (a *Assignment) StartLine() int { return a.Line }
func (*Assignment) stmt()            {}

// Description is the coil label, e.g. "Y1 := TRUE".
func (a *Assignment) Description() string {
	return a.Target + " := " + a.Value
}

// Conditional is an IF/ELSIF/ELSE chain. CASE statements are lowered into one
// Conditional per label.
type Conditional struct {
	Condition Condition
	Then      []Statement
	ElseIfs   []ElseIf
	Else      []Statement
	HasElse   bool
	Line      int
	ElseLine  int
}

func (c *Conditional) StartLine() int { return c.Line }
func (*Conditional) stmt()            {}

// ElseIf is one ELSIF branch.
type ElseIf struct {
	Condition Condition
	Body      []Statement
	Line      int
}

// Comparison is the right-hand half of a comparing operand, e.g. "= 0".
type Comparison struct {
	Op    string
	Right string
	// RightIsVariable is set when Right names a variable rather than a literal.
	RightIsVariable bool
}

// Operand is one signed reference in a guard.
type Operand struct {
	Variable string
	Negated  bool
	Compare  *Comparison
}

// Expr renders the operand without its sign, e.g. "Mode = 0".
func (o Operand) Expr() string {
	if o.Compare == nil {
		return o.Variable
	}
	return o.Variable + " " + o.Compare.Op + " " + o.Compare.Right
}

func (o Operand) String() string {
	if o.Negated {
		if o.Compare != nil {
			return "NOT (" + o.Expr() + ")"
		}
		return "NOT " + o.Expr()
	}
	return o.Expr()
}

// negate returns the operand with its sign flipped.
func (o Operand) negate() Operand {
	o.Negated = !o.Negated
	return o
}

// Condition is a guard in AND-of-OR form: every group must hold, and a group
// holds when any of its operands holds. In ladder terms groups are wired in
// series and the operands of one group are parallel branches.
type Condition struct {
	Groups [][]Operand
}

// Operands flattens the condition left to right.
func (c Condition) Operands() []Operand {
	var out []Operand
	for _, g := range c.Groups {
		out = append(out, g...)
	}
	return out
}

// Empty reports whether the condition always holds.
func (c Condition) Empty() bool {
	return len(c.Groups) == 0
}

func (c Condition) String() string {
	parts := make([]string, 0, len(c.Groups))
	for _, g := range c.Groups {
		ops := make([]string, 0, len(g))
		for _, o := range g {
			ops = append(ops, o.String())
		}
		s := strings.Join(ops, " OR ")
		if len(g) > 1 && len(c.Groups) > 1 {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " AND ")
}

// And conjoins two conditions. The result is still in AND-of-OR form.
func (c Condition) And(other Condition) Condition {
	groups := make([][]Operand, 0, len(c.Groups)+len(other.Groups))
	groups = append(groups, c.Groups...)
	groups = append(groups, other.Groups...)
	return Condition{Groups: groups}
}

// Negate returns NOT c when it can be written in AND-of-OR form, which is the
// case for a single OR group (De Morgan gives a series of negated contacts)
// and for a pure conjunction of single operands (one parallel group of negated
// contacts). Anything else, and the always-true empty condition, reports false.
func (c Condition) Negate() (Condition, bool) {
	switch {
	case len(c.Groups) == 0:
		return Condition{}, false
	case len(c.Groups) == 1:
		groups := make([][]Operand, 0, len(c.Groups[0]))
		for _, o := range c.Groups[0] {
			groups = append(groups, []Operand{o.negate()})
		}
		return Condition{Groups: groups}, true
	}

	group := make([]Operand, 0, len(c.Groups))
	for _, g := range c.Groups {
		if len(g) != 1 {
			return Condition{}, false
		}
		group = append(group, g[0].negate())
	}
	return Condition{Groups: [][]Operand{group}}, true
}
