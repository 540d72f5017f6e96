package parser

import (
	"strings"

	"github.com/vk/stladder/internal/source"
)

// Kind classifies a token.
type Kind int

const (
	Ident Kind = iota
	Number
	String
	Punct
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "punctuation"
	}
}

// Token is one lexeme of a normalized line. Col and End are byte offsets into
// the line text, so the original spelling of a span can be recovered.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
	End  int
}

// Is reports whether the token is the keyword kw, compared case-insensitively.
func (t Token) Is(kw string) bool {
	return t.Kind == Ident && strings.EqualFold(t.Text, kw)
}

// IsAny reports whether the token is one of the keywords.
func (t Token) IsAny(kws ...string) bool {
	for _, kw := range kws {
		if t.Is(kw) {
			return true
		}
	}
	return false
}

// IsPunct reports whether the token is exactly the punctuation p.
func (t Token) IsPunct(p string) bool {
	return t.Kind == Punct && t.Text == p
}

// twoCharOps are matched before single characters.
var twoCharOps = []string{":=", "<>", "<=", ">=", "..", "=>", "**"}

// Tokenize splits normalized lines into tokens. Dotted member access ("T1.Q")
// stays one identifier token. Tokenize never fails: anything unexpected
// becomes a single punctuation token and is left for the parser to reject.
func Tokenize(lines []source.Line) []Token {
	var toks []Token
	for _, l := range lines {
		toks = append(toks, tokenizeLine(l)...)
	}
	return toks
}

func tokenizeLine(l source.Line) []Token {
	var toks []Token
	s := l.Text
	pos := 0
	emit := func(kind Kind, start int) {
		toks = append(toks, Token{Kind: kind, Text: s[start:pos], Line: l.Number, Col: start, End: pos})
	}

	for pos < len(s) {
		ch := s[pos]
		start := pos
		switch {
		case ch == ' ' || ch == '\t':
			pos++
		case isIdentStart(ch):
			pos = scanIdent(s, pos)
			emit(Ident, start)
		case isDigit(ch):
			for pos < len(s) && (isDigit(s[pos]) || s[pos] == '_') {
				pos++
			}
			// A single dot followed by a digit continues a real literal; ".."
			// is the range operator.
			if pos+1 < len(s) && s[pos] == '.' && isDigit(s[pos+1]) {
				pos++
				for pos < len(s) && isDigit(s[pos]) {
					pos++
				}
			}
			emit(Number, start)
		case ch == '\'' || ch == '"':
			pos++
			for pos < len(s) && s[pos] != ch {
				pos++
			}
			if pos < len(s) {
				pos++
			}
			emit(String, start)
		default:
			pos++
			for _, op := range twoCharOps {
				if strings.HasPrefix(s[start:], op) {
					pos = start + len(op)
					break
				}
			}
			emit(Punct, start)
		}
	}
	return toks
}

// scanIdent consumes an identifier including dotted member access.
func scanIdent(s string, pos int) int {
	for {
		for pos < len(s) && isIdentPart(s[pos]) {
			pos++
		}
		if pos+1 < len(s) && s[pos] == '.' && isIdentStart(s[pos+1]) {
			pos++
			continue
		}
		return pos
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
