package parser

import (
	"strings"
)

// varSections open a declaration section closed by END_VAR.
var varSections = []string{"VAR", "VAR_INPUT", "VAR_OUTPUT", "VAR_IN_OUT", "VAR_GLOBAL", "VAR_TEMP"}

// varQualifiers may follow a section keyword on its line.
var varQualifiers = []string{"CONSTANT", "RETAIN", "NON_RETAIN", "PERSISTENT"}

// constructs are skipped as a whole, from header to the matching END_ keyword.
var constructs = []string{"TYPE", "STRUCT", "FUNCTION_BLOCK", "FUNCTION", "PROGRAM", "FOR", "WHILE", "REPEAT"}

// atDeclaration reports whether the tokens at the cursor read
// `name {, name} [AT location] :` with a plain colon, not `:=`.
func (p *Parser) atDeclaration() bool {
	i := p.pos
	line := p.peek().Line
	for {
		if i >= len(p.toks) || p.toks[i].Line != line {
			return false
		}
		t := p.toks[i]
		if t.Kind != Ident || isReserved(t) {
			return false
		}
		i++
		if i < len(p.toks) && p.toks[i].Is("AT") {
			for i < len(p.toks) && p.toks[i].Line == line && !p.toks[i].IsPunct(":") {
				i++
			}
		}
		if i >= len(p.toks) || p.toks[i].Line != line {
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

// parseDeclaration registers every name of one declaration in the symbol
// table. Re-declaring a name keeps its address.
func (p *Parser) parseDeclaration() error {
	line := p.peek().Line
	toks := p.takeStatement()

	var names []string
	i := 0
	for ; i < len(toks) && !toks[i].IsPunct(":"); i++ {
		t := toks[i]
		switch {
		case t.Is("AT"):
			// Located variables (AT %IX0.0) keep their symbolic address only.
			for i+1 < len(toks) && !toks[i+1].IsPunct(":") {
				i++
			}
		case t.Kind == Ident:
			names = append(names, t.Text)
		}
	}

	var typeToks []Token
	for i++; i < len(toks) && !toks[i].IsPunct(":="); i++ {
		typeToks = append(typeToks, toks[i])
	}
	if len(typeToks) == 0 {
		return errorAt(line, "declaration of %s has no type", strings.Join(names, ", "))
	}
	if typeToks[0].Is("ARRAY") {
		p.diags.Warnf(line, "array variable %s skipped: arrays are not supported", strings.Join(names, ", "))
		return nil
	}

	typ := p.text(typeToks)
	for _, name := range names {
		sym, added := p.table.Declare(name, typ, line)
		if !added && sym.Type != "" && !strings.EqualFold(sym.Type, typ) {
			p.diags.Warnf(line, "%s already declared as %s; keeping %s", name, sym.Type, sym.Address)
		}
	}
	return nil
}

// parseVarSection consumes VAR ... END_VAR. Problems inside the section are
// reported per line; the section itself never fails.
func (p *Parser) parseVarSection() {
	head := p.next()
	kw := strings.ToUpper(head.Text)
	for !p.eof() && p.peek().Line == head.Line && p.peek().IsAny(varQualifiers...) {
		p.pos++
	}

	p.push(kw, head.Line)
	defer p.pop()

	for {
		if p.eof() {
			p.diags.Warnf(head.Line, "%s section has no END_VAR", kw)
			return
		}
		t := p.peek()
		switch {
		case t.Is("END_VAR"):
			p.pos++
			p.skipSemicolon()
			return
		case t.IsPunct(";"):
			p.pos++
		case p.atDeclaration():
			if err := p.parseDeclaration(); err != nil {
				p.report(err)
			}
		case t.IsAny("IF", "CASE") || t.IsAny(varSections...) || t.IsAny(constructs...):
			// The section was never closed; hand the rest back to the caller.
			p.diags.Warnf(head.Line, "%s section has no END_VAR", kw)
			return
		default:
			toks := p.takeStatement()
			p.diags.Errorf(t.Line, "invalid declaration %q", joinTokens(toks))
		}
	}
}

// skipConstruct skips an unsupported construct up to its matching END_
// keyword, counting nested constructs of the same kind, and records one
// warning covering the skipped span.
func (p *Parser) skipConstruct() {
	head := p.next()
	kw := strings.ToUpper(head.Text)

	if kw == "PROGRAM" && p.opts.UnwrapPrograms {
		if !p.eof() && p.peek().Line == head.Line && p.peek().Kind == Ident {
			p.pos++
		}
		p.programs++
		return
	}

	label := kw
	if kw != "FOR" && kw != "WHILE" && kw != "REPEAT" &&
		!p.eof() && p.peek().Line == head.Line && p.peek().Kind == Ident && !isReserved(p.peek()) {
		label += " " + p.peek().Text
	}

	end := "END_" + kw
	depth := 1
	for i := p.pos; i < len(p.toks); i++ {
		switch {
		case p.toks[i].Is(kw):
			depth++
		case p.toks[i].Is(end):
			depth--
			if depth == 0 {
				p.pos = i + 1
				p.skipSemicolon()
				p.diags.WarnSpan(head.Line, p.toks[i].Line, "unsupported %s skipped", label)
				return
			}
		}
	}

	last := head.Line
	if n := len(p.toks); n > 0 {
		last = p.toks[n-1].Line
	}
	p.pos = len(p.toks)
	p.diags.WarnSpan(head.Line, last, "unsupported %s has no %s; skipped to end of input", label, end)
}
