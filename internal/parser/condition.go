package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/stladder/internal/source"
)

var compareOps = map[string]bool{"=": true, "<>": true, "<": true, ">": true, "<=": true, ">=": true}

// reserved words can never name an operand or an assignment target.
var reserved = map[string]bool{
	"IF": true, "THEN": true, "ELSIF": true, "ELSE": true, "END_IF": true,
	"CASE": true, "OF": true, "END_CASE": true,
	"VAR": true, "VAR_INPUT": true, "VAR_OUTPUT": true, "VAR_IN_OUT": true, "VAR_GLOBAL": true,
	"VAR_TEMP": true, "END_VAR": true,
	"AND": true, "OR": true, "XOR": true, "NOT": true, "MOD": true,
	"FOR": true, "TO": true, "BY": true, "DO": true, "END_FOR": true,
	"WHILE": true, "END_WHILE": true, "REPEAT": true, "UNTIL": true, "END_REPEAT": true,
	"RETURN": true, "EXIT": true,
}

func isReserved(t Token) bool {
	return t.Kind == Ident && reserved[strings.ToUpper(t.Text)]
}

// ParseCondition decomposes a guard expression written on one line, such as
// "Start AND NOT Stop". It returns the condition plus warnings for constant
// operands that were folded away.
func ParseCondition(expr string) (Condition, []string, error) {
	return decompose(tokenizeLine(source.Line{Number: 1, Text: expr}))
}

// decompose splits the guard at the AND keyword into series groups, then each
// group at OR into parallel operands. Keywords are matched as written
// (upper case). Parentheses are dropped and a leading NOT flips the operand.
// A parenthesized group that an AND or OR split would cut in half, as in
// "NOT (A AND B)" or "(A AND B) OR C", is rejected: dropping its parentheses
// would draw different logic.
func decompose(toks []Token) (Condition, []string, error) {
	if len(toks) == 0 {
		return Condition{}, nil, errors.New("empty condition")
	}
	for _, t := range toks {
		if t.Kind == Ident && t.Text == "XOR" {
			return Condition{}, nil, errors.New("XOR is not supported in conditions")
		}
	}
	if !balanced(toks) {
		return Condition{}, nil, fmt.Errorf("unbalanced parentheses in condition %q", joinTokens(toks))
	}

	var (
		cond     Condition
		warnings []string
	)
	for _, groupToks := range splitOn(toks, "AND") {
		var group []Operand
		alwaysTrue := false
		for _, opToks := range splitOn(unwrap(groupToks), "OR") {
			if !balanced(opToks) {
				return Condition{}, nil, fmt.Errorf("condition %q groups AND/OR inside parentheses; only AND of OR groups can be drawn", joinTokens(toks))
			}
			op, constant, err := parseOperand(opToks)
			if err != nil {
				return Condition{}, nil, err
			}
			if constant != nil {
				warnings = append(warnings, fmt.Sprintf("constant operand %s ignored", joinTokens(opToks)))
				if *constant {
					alwaysTrue = true
				}
				continue
			}
			group = append(group, op)
		}
		if alwaysTrue {
			continue
		}
		if len(group) == 0 {
			return Condition{}, nil, fmt.Errorf("condition %q can never be true", joinTokens(toks))
		}
		cond.Groups = append(cond.Groups, group)
	}
	return cond, warnings, nil
}

// parseOperand turns the tokens of one operand into an Operand. A constant
// operand (TRUE, NOT FALSE, ...) returns its value instead.
func parseOperand(toks []Token) (Operand, *bool, error) {
	var clean []Token
	for _, t := range toks {
		if t.IsPunct("(") || t.IsPunct(")") {
			continue
		}
		clean = append(clean, t)
	}

	negated := false
	for len(clean) > 0 && clean[0].Kind == Ident && clean[0].Text == "NOT" {
		negated = !negated
		clean = clean[1:]
	}

	if len(clean) == 0 {
		return Operand{}, nil, errors.New("missing operand in condition")
	}

	left := clean[0]
	if left.Kind != Ident || isReserved(left) {
		return Operand{}, nil, fmt.Errorf("unsupported operand %q in condition", joinTokens(toks))
	}

	if len(clean) == 1 {
		switch {
		case left.Is("TRUE"):
			v := !negated
			return Operand{}, &v, nil
		case left.Is("FALSE"):
			v := negated
			return Operand{}, &v, nil
		}
		return Operand{Variable: left.Text, Negated: negated}, nil, nil
	}

	if len(clean) < 3 || clean[1].Kind != Punct || !compareOps[clean[1].Text] {
		return Operand{}, nil, fmt.Errorf("unsupported operand %q in condition", joinTokens(toks))
	}

	rest := clean[2:]
	cmp := &Comparison{Op: clean[1].Text}
	switch {
	case len(rest) == 1 && rest[0].Kind == Ident && !isReserved(rest[0]):
		cmp.Right = rest[0].Text
		cmp.RightIsVariable = !rest[0].IsAny("TRUE", "FALSE")
	case len(rest) == 1 && (rest[0].Kind == Number || rest[0].Kind == String):
		cmp.Right = rest[0].Text
	case len(rest) == 2 && rest[0].IsPunct("-") && rest[1].Kind == Number:
		cmp.Right = "-" + rest[1].Text
	default:
		return Operand{}, nil, fmt.Errorf("unsupported operand %q in condition", joinTokens(toks))
	}
	return Operand{Variable: left.Text, Negated: negated, Compare: cmp}, nil, nil
}

// balanced reports whether every "(" in toks is closed, in order, within toks.
func balanced(toks []Token) bool {
	depth := 0
	for _, t := range toks {
		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// unwrap strips parentheses that enclose all of toks, as in "((A OR B))".
func unwrap(toks []Token) []Token {
	for len(toks) >= 2 && toks[0].IsPunct("(") && toks[len(toks)-1].IsPunct(")") {
		depth := 0
		for i, t := range toks {
			switch {
			case t.IsPunct("("):
				depth++
			case t.IsPunct(")"):
				depth--
			}
			if depth == 0 && i < len(toks)-1 {
				return toks
			}
		}
		toks = toks[1 : len(toks)-1]
	}
	return toks
}

// splitOn splits toks at every identifier spelled exactly as word.
func splitOn(toks []Token, word string) [][]Token {
	var (
		parts [][]Token
		cur   []Token
	)
	for _, t := range toks {
		if t.Kind == Ident && t.Text == word {
			parts = append(parts, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	return append(parts, cur)
}

func joinTokens(toks []Token) string {
	texts := make([]string, len(toks))
	for i, t := range toks {
		texts[i] = t.Text
	}
	return strings.Join(texts, " ")
}
