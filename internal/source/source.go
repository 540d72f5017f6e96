// Package source normalizes raw Structured Text into trimmed, comment-free
// lines. The output keeps one entry per physical line so diagnostics raised by
// later stages point at the line the user wrote.
package source

import "strings"

// Line is one normalized physical source line. Number is 1-based.
type Line struct {
	Number int
	Text   string
}

// Empty reports whether nothing survived normalization on this line.
func (l Line) Empty() bool {
	return l.Text == ""
}

// punctuation lists the non-identifier characters the grammar uses.
const punctuation = `()[]{}:;=.+-*/%<>&|!'",`

// Normalize strips block comments `(* ... *)`, line comments `//` and every
// character outside the allow-list, then trims each line. Block comments may
// span lines; the line count is preserved. Normalize never fails.
func Normalize(text string) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")

	lines := make([]Line, 0, len(raw))
	inBlock := false
	for i, r := range raw {
		var stripped string
		stripped, inBlock = stripComments(r, inBlock)
		lines = append(lines, Line{Number: i + 1, Text: strings.TrimSpace(filter(stripped))})
	}
	return lines
}

// stripComments removes comments from one line. inBlock tells whether the line
// starts inside an unterminated block comment; the returned flag carries that
// state to the next line. Comment markers inside quoted literals are kept.
func stripComments(line string, inBlock bool) (string, bool) {
	var sb strings.Builder
	var quote byte
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if inBlock {
			if ch == '*' && i+1 < len(line) && line[i+1] == ')' {
				inBlock = false
				i++
				// Keep tokens on either side of the comment apart.
				sb.WriteByte(' ')
			}
			continue
		}
		if quote != 0 {
			sb.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch {
		case ch == '\'' || ch == '"':
			quote = ch
			sb.WriteByte(ch)
		case ch == '(' && i+1 < len(line) && line[i+1] == '*':
			inBlock = true
			i++
		case ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return sb.String(), false
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String(), inBlock
}

// filter drops every byte outside the allow-list. Non-ASCII runes are removed
// whole, which takes care of localized comments that were not delimited.
func filter(s string) string {
	return strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return -1
	}, s)
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case r == ' ', r == '\t':
		return true
	}
	return r < 0x80 && strings.ContainsRune(punctuation, r)
}
