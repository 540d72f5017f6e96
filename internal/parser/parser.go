// Package parser turns normalized Structured Text lines into a statement
// tree of assignments and conditionals. Declarations are registered in the
// device table as they are met. Parsing never aborts: a line that cannot be
// read is reported to the diagnostics collector and the parser moves on.
package parser

import (
	"fmt"
	"strings"

	"github.com/vk/stladder/internal/device"
	"github.com/vk/stladder/internal/diag"
	"github.com/vk/stladder/internal/source"
)

// Options tune parsing.
type Options struct {
	// UnwrapPrograms parses the body of PROGRAM ... END_PROGRAM instead of
	// skipping it as an unsupported construct.
	UnwrapPrograms bool
}

// Parser is a recursive descent parser over the tokens of one source.
type Parser struct {
	toks  []Token
	pos   int
	src   map[int]string
	table *device.Table
	diags *diag.Collector
	opts  Options

	open     []openBlock
	programs int
}

type openBlock struct {
	kind string
	line int
}

// syntaxError drops the statement it belongs to. When skipLine is set the
// remaining tokens of that line are discarded as well.
type syntaxError struct {
	line     int
	msg      string
	skipLine bool
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

func errorAt(line int, format string, args ...any) *syntaxError {
	return &syntaxError{line: line, msg: fmt.Sprintf(format, args...)}
}

func lineErrorAt(line int, format string, args ...any) *syntaxError {
	e := errorAt(line, format, args...)
	e.skipLine = true
	return e
}

// New prepares a parser. table receives declarations; diags receives findings.
func New(lines []source.Line, table *device.Table, diags *diag.Collector, opts Options) *Parser {
	src := make(map[int]string, len(lines))
	for _, l := range lines {
		src[l.Number] = l.Text
	}
	return &Parser{
		toks:  Tokenize(lines),
		src:   src,
		table: table,
		diags: diags,
		opts:  opts,
	}
}

// Parse is shorthand for New(...).Parse().
func Parse(lines []source.Line, table *device.Table, diags *diag.Collector, opts Options) []Statement {
	return New(lines, table, diags, opts).Parse()
}

// Parse consumes the whole input and returns the top-level statements.
func (p *Parser) Parse() []Statement {
	return p.parseBlock(func() bool { return false })
}

// parseBlock parses statements until stop reports true or input ends.
func (p *Parser) parseBlock(stop func() bool) []Statement {
	var out []Statement
	for !p.eof() && !stop() {
		before := p.pos
		stmts, err := p.parseStatement()
		if err != nil {
			p.report(err)
		}
		out = append(out, stmts...)
		if p.pos == before {
			p.pos++
		}
	}
	return out
}

func (p *Parser) parseStatement() ([]Statement, error) {
	t := p.peek()
	switch {
	case t.IsPunct(";"):
		p.pos++
		return nil, nil
	case t.IsAny(constructs...):
		p.skipConstruct()
		return nil, nil
	case t.IsAny(varSections...):
		p.parseVarSection()
		return nil, nil
	case p.atDeclaration():
		return nil, p.parseDeclaration()
	case t.Is("IF"):
		return p.parseIf()
	case t.Is("CASE"):
		return p.parseCase()
	case t.Kind == Ident && !isReserved(t) && p.peekAt(1).IsPunct("("):
		toks := p.takeStatement()
		p.diags.Warnf(t.Line, "call %s skipped: function and function block calls are not supported", joinTokens(toks))
		return nil, nil
	case p.statementHas(":="):
		return p.parseAssignment()
	case t.Kind == Ident && strings.HasPrefix(strings.ToUpper(t.Text), "END_") ||
		t.IsAny("ELSIF", "ELSE", "THEN", "OF"):
		p.stray()
		return nil, nil
	default:
		p.takeStatement()
		return nil, nil
	}
}

// parseAssignment reads `target := value`. The value keeps its source
// spelling and is never evaluated.
func (p *Parser) parseAssignment() ([]Statement, error) {
	line := p.peek().Line
	toks := p.takeStatement()

	idx := 0
	for idx < len(toks) && !toks[idx].IsPunct(":=") {
		idx++
	}
	target, value := toks[:idx], toks[idx+1:]
	if len(target) != 1 || target[0].Kind != Ident || isReserved(target[0]) {
		return nil, errorAt(line, "invalid assignment target %q", joinTokens(target))
	}
	if len(value) == 0 {
		return nil, errorAt(line, "assignment to %s has no value", target[0].Text)
	}
	return []Statement{&Assignment{Target: target[0].Text, Value: p.text(value), Line: line}}, nil
}

// parseIf reads IF ... [ELSIF ...] [ELSE ...] END_IF with arbitrary nesting.
// When the header is malformed the whole block is still consumed and
// dropped, so its body never runs unguarded.
func (p *Parser) parseIf() ([]Statement, error) {
	head := p.next()
	cond, err := p.parseGuard(head)
	discard := err != nil
	if discard {
		if p.lineHas(head.Line, "END_IF") {
			return nil, err
		}
		p.report(err)
		// Drop the half-read statement the guard ran into.
		if p.peek().IsPunct(":=") {
			p.takeStatement()
		}
	}

	p.push("IF", head.Line)
	defer p.pop()

	branchEnd := func() bool { return p.peek().IsAny("ELSIF", "ELSE", "END_IF") }
	st := &Conditional{Condition: cond, Line: head.Line}
	st.Then = p.parseBlock(branchEnd)

	for {
		if p.eof() {
			return nil, errorAt(head.Line, "IF has no matching END_IF")
		}
		t := p.next()
		switch {
		case t.Is("ELSIF"):
			c, err := p.parseGuard(t)
			if err != nil {
				p.report(err)
				p.parseBlock(branchEnd)
				continue
			}
			st.ElseIfs = append(st.ElseIfs, ElseIf{Condition: c, Body: p.parseBlock(branchEnd), Line: t.Line})
		case t.Is("ELSE"):
			if st.HasElse {
				p.diags.Errorf(t.Line, "second ELSE in IF opened at line %d ignored", head.Line)
				p.parseBlock(branchEnd)
				continue
			}
			st.HasElse = true
			st.ElseLine = t.Line
			st.Else = p.parseBlock(branchEnd)
		default: // END_IF
			p.skipSemicolon()
			if discard {
				return nil, nil
			}
			return []Statement{st}, nil
		}
	}
}

// parseGuard reads the condition between an IF or ELSIF keyword and THEN.
func (p *Parser) parseGuard(head Token) (Condition, error) {
	kw := strings.ToUpper(head.Text)
	var toks []Token
	for {
		if p.eof() {
			return Condition{}, lineErrorAt(head.Line, "%s without THEN", kw)
		}
		t := p.peek()
		if t.Is("THEN") {
			p.pos++
			break
		}
		if t.IsPunct(";") || t.IsPunct(":=") || t.IsAny("IF", "ELSIF", "ELSE", "END_IF", "CASE", "END_CASE") {
			return Condition{}, lineErrorAt(head.Line, "%s without THEN", kw)
		}
		toks = append(toks, t)
		p.pos++
	}
	if len(toks) == 0 {
		return Condition{}, lineErrorAt(head.Line, "%s without condition", kw)
	}

	cond, warnings, err := decompose(toks)
	if err != nil {
		return Condition{}, lineErrorAt(head.Line, "malformed %s condition: %v", kw, err)
	}
	for _, w := range warnings {
		p.diags.Warnf(head.Line, "%s", w)
	}
	return cond, nil
}

type caseArm struct {
	labels []string
	body   []Statement
	line   int
}

// parseCase reads CASE sel OF ... END_CASE and lowers every label into an
// independent Conditional guarded by `sel = label`. CASE ELSE becomes a
// Conditional guarded by every label comparison negated.
func (p *Parser) parseCase() ([]Statement, error) {
	head := p.next()
	var sel []Token
	for !p.eof() && p.peek().Line == head.Line && !p.peek().Is("OF") {
		sel = append(sel, p.next())
	}

	var headErr error
	switch {
	case p.eof() || !p.peek().Is("OF"):
		headErr = lineErrorAt(head.Line, "CASE without OF")
	case len(sel) != 1 || sel[0].Kind != Ident || isReserved(sel[0]):
		p.pos++
		headErr = lineErrorAt(head.Line, "CASE selector must be a single variable, got %q", joinTokens(sel))
	default:
		p.pos++
	}
	discard := headErr != nil
	if discard {
		if p.lineHas(head.Line, "END_CASE") {
			return nil, headErr
		}
		p.report(headErr)
	}
	selector := ""
	if !discard {
		selector = sel[0].Text
	}

	p.push("CASE", head.Line)
	defer p.pop()

	var (
		arms     []caseArm
		cur      = -1
		inElse   bool
		hasElse  bool
		elseLine int
		elseBody []Statement
		dropping = discard
	)
	armEnd := func() bool {
		return p.peek().IsAny("END_CASE", "ELSE") || p.atCaseLabel() || p.atOtherLabel()
	}

	for {
		if p.eof() {
			return nil, errorAt(head.Line, "CASE has no matching END_CASE")
		}
		t := p.peek()
		switch {
		case t.Is("END_CASE"):
			p.pos++
			p.skipSemicolon()
			if discard {
				return nil, nil
			}
			return lowerCase(selector, arms, hasElse, elseLine, elseBody), nil
		case t.Is("ELSE"):
			p.pos++
			inElse, hasElse, elseLine = true, true, t.Line
			dropping = false
		case p.atCaseLabel():
			arms = append(arms, caseArm{labels: p.takeCaseLabels(), line: t.Line})
			cur = len(arms) - 1
			inElse, dropping = false, false
		case p.atOtherLabel():
			label := p.takeOtherLabel()
			p.diags.Errorf(t.Line, "unsupported CASE label %q; branch dropped", label)
			cur, inElse, dropping = -1, false, true
		default:
			body := p.parseBlock(armEnd)
			switch {
			case inElse:
				elseBody = append(elseBody, body...)
			case cur >= 0:
				arms[cur].body = append(arms[cur].body, body...)
			case !dropping && len(body) > 0:
				p.diags.Warnf(t.Line, "statement before the first CASE label ignored")
			}
		}
	}
}

func lowerCase(selector string, arms []caseArm, hasElse bool, elseLine int, elseBody []Statement) []Statement {
	out := make([]Statement, 0, len(arms)+1)
	var others Condition
	for _, a := range arms {
		group := make([]Operand, 0, len(a.labels))
		for _, l := range a.labels {
			op := Operand{Variable: selector, Compare: &Comparison{Op: "=", Right: l}}
			group = append(group, op)
			others.Groups = append(others.Groups, []Operand{op.negate()})
		}
		out = append(out, &Conditional{Condition: Condition{Groups: [][]Operand{group}}, Then: a.body, Line: a.line})
	}
	if hasElse {
		out = append(out, &Conditional{Condition: others, Then: elseBody, Line: elseLine})
	}
	return out
}

// atCaseLabel reports whether the cursor is at `[-]int {, [-]int} :`.
func (p *Parser) atCaseLabel() bool {
	i := p.pos
	for {
		if i < len(p.toks) && p.toks[i].IsPunct("-") {
			i++
		}
		if i >= len(p.toks) || p.toks[i].Kind != Number || strings.Contains(p.toks[i].Text, ".") {
			return false
		}
		i++
		if i >= len(p.toks) {
			return false
		}
		switch {
		case p.toks[i].IsPunct(","):
			i++
		case p.toks[i].IsPunct(":"):
			return true
		default:
			return false
		}
	}
}

func (p *Parser) takeCaseLabels() []string {
	var labels []string
	neg := ""
	for {
		t := p.next()
		switch {
		case t.IsPunct("-"):
			neg = "-"
		case t.Kind == Number:
			labels = append(labels, neg+strings.ReplaceAll(t.Text, "_", ""))
			neg = ""
		case t.IsPunct(":"):
			return labels
		}
	}
}

// atOtherLabel reports whether the line at the cursor starts with some
// label that is not a plain integer list, such as a range or an enum value.
func (p *Parser) atOtherLabel() bool {
	t := p.peek()
	if t.Kind != Ident && t.Kind != Number && !t.IsPunct("-") {
		return false
	}
	if t.Kind == Ident && isReserved(t) {
		return false
	}
	for i := p.pos; i < len(p.toks) && p.toks[i].Line == t.Line; i++ {
		switch {
		case p.toks[i].IsPunct(":"):
			return true
		case p.toks[i].IsPunct(":=") || p.toks[i].IsPunct(";") || p.toks[i].IsPunct("("):
			return false
		}
	}
	return false
}

func (p *Parser) takeOtherLabel() string {
	var toks []Token
	for !p.eof() {
		t := p.next()
		if t.IsPunct(":") {
			break
		}
		toks = append(toks, t)
	}
	return joinTokens(toks)
}

// stray reports a block keyword that closes or continues nothing.
func (p *Parser) stray() {
	t := p.next()
	if t.Is("END_PROGRAM") && p.programs > 0 {
		p.programs--
		p.skipSemicolon()
		return
	}
	if n := len(p.open); n > 0 {
		in := p.open[n-1]
		p.diags.Warnf(t.Line, "unexpected %s inside %s opened at line %d ignored", strings.ToUpper(t.Text), in.kind, in.line)
	} else {
		p.diags.Warnf(t.Line, "unexpected %s ignored", strings.ToUpper(t.Text))
	}
	p.skipSemicolon()
}

// report records a syntax error and applies its recovery.
func (p *Parser) report(err error) {
	se, ok := err.(*syntaxError)
	if !ok {
		p.diags.Errorf(0, "%v", err)
		return
	}
	p.diags.Errorf(se.line, "%s", se.msg)
	if se.skipLine {
		for !p.eof() && p.peek().Line <= se.line {
			p.pos++
		}
	}
}

// blockEnds terminate a statement even without a semicolon.
var blockEnds = []string{"END_IF", "ELSIF", "ELSE", "END_CASE", "END_VAR"}

// statementEnd returns the index just past the statement at the cursor: its
// semicolon, the end of its line or the next block keyword, whichever comes
// first.
func (p *Parser) statementEnd() int {
	start := p.pos
	line := p.toks[start].Line
	for i := start; i < len(p.toks); i++ {
		t := p.toks[i]
		if t.Line != line {
			return i
		}
		if t.IsPunct(";") {
			return i + 1
		}
		if i > start && t.IsAny(blockEnds...) {
			return i
		}
	}
	return len(p.toks)
}

// takeStatement consumes the statement at the cursor and returns its tokens
// without the terminating semicolon.
func (p *Parser) takeStatement() []Token {
	if p.eof() {
		return nil
	}
	end := p.statementEnd()
	toks := p.toks[p.pos:end]
	p.pos = end
	if n := len(toks); n > 0 && toks[n-1].IsPunct(";") {
		toks = toks[:n-1]
	}
	return toks
}

func (p *Parser) statementHas(punct string) bool {
	if p.eof() {
		return false
	}
	end := p.statementEnd()
	for i := p.pos; i < end; i++ {
		if p.toks[i].IsPunct(punct) {
			return true
		}
	}
	return false
}

// text recovers the source spelling of a run of tokens on one line.
func (p *Parser) text(toks []Token) string {
	if len(toks) == 0 {
		return ""
	}
	first, last := toks[0], toks[len(toks)-1]
	line, ok := p.src[first.Line]
	if !ok || first.Line != last.Line || last.End > len(line) {
		return joinTokens(toks)
	}
	return line[first.Col:last.End]
}

// lineHas reports whether keyword kw appears at or after the cursor on line.
func (p *Parser) lineHas(line int, kw string) bool {
	for i := p.pos; i < len(p.toks) && p.toks[i].Line <= line; i++ {
		if p.toks[i].Line == line && p.toks[i].Is(kw) {
			return true
		}
	}
	return false
}

func (p *Parser) skipSemicolon() {
	if !p.eof() && p.peek().IsPunct(";") {
		p.pos++
	}
}

func (p *Parser) push(kind string, line int) {
	p.open = append(p.open, openBlock{kind: kind, line: line})
}

func (p *Parser) pop() {
	if n := len(p.open); n > 0 {
		p.open = p.open[:n-1]
	}
}

func (p *Parser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return Token{Kind: Punct}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) next() Token {
	t := p.peek()
	p.pos++
	return t
}

// OpenBlocks counts the IF, CASE and VAR blocks left unclosed at the end of
// text. Interactive front ends use it to decide whether to read more lines.
func OpenBlocks(text string) int {
	depth := 0
	for _, t := range Tokenize(source.Normalize(text)) {
		switch {
		case t.IsAny("IF", "CASE") || t.IsAny(varSections...):
			depth++
		case t.IsAny("END_IF", "END_CASE", "END_VAR"):
			depth--
		}
	}
	if depth < 0 {
		return 0
	}
	return depth
}
