package adapter

import (
	"strings"
	"unicode/utf8"
)

// tokenize splits statement text into identifiers, numbers, string literals,
// operator runs, punctuation and whitespace runs. Joining the tokens yields
// the original text.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, len(s)/3+1)
	i := 0

	for i < len(s) {
		start := i
		c := s[i]

		switch {
		case isIdentifierStart(c):
			i++
			for i < len(s) && isIdentifierChar(s[i]) {
				i++
			}

		case isDigit(c):
			i++
			for i < len(s) && (isDigit(s[i]) || s[i] == '.' || s[i] == 'x' || s[i] == '_') {
				i++
			}

		case c == '"' || c == '\'' || c == '`':
			i = skipQuoted(s, i, c)

		case isOperatorChar(c):
			i++
			for i < len(s) && isOperatorChar(s[i]) {
				i++
			}

		case isWhitespace(c):
			i++
			for i < len(s) && isWhitespace(s[i]) {
				i++
			}

		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
		}

		tokens = append(tokens, s[start:i])
	}

	return tokens
}

func skipQuoted(s string, i int, quote byte) int {
	i++
	for i < len(s) {
		if s[i] == '\\' && quote != '`' && i+1 < len(s) {
			i += 2
			continue
		}

		if s[i] == quote {
			return i + 1
		}

		i++
	}

	return i
}

// significantTokens drops whitespace tokens.
func significantTokens(s string) []string {
	all := tokenize(s)
	out := all[:0:0]

	for _, t := range all {
		if !isWhitespace(t[0]) {
			out = append(out, t)
		}
	}

	return out
}

// normalizeText collapses whitespace and drops a trailing semicolon.
func normalizeText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSuffix(s, ";")
}

// compact removes every whitespace character.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// substitute replaces identifier tokens bound in binding, leaving member
// selections (x.name) untouched.
func substitute(s string, binding map[string]string) string {
	if len(binding) == 0 {
		return s
	}

	tokens := tokenize(s)

	var sb strings.Builder

	prev := ""

	for _, t := range tokens {
		if arg, ok := binding[t]; ok && isIdentifierStart(t[0]) && prev != "." {
			sb.WriteString(arg)
		} else {
			sb.WriteString(t)
		}

		if !isWhitespace(t[0]) {
			prev = t
		}
	}

	return sb.String()
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentifierStart(s[0]) {
		return false
	}

	for i := 1; i < len(s); i++ {
		if !isIdentifierChar(s[i]) {
			return false
		}
	}

	return true
}

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isOperatorChar(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '=', '<', '>', '!', '&', '|', '^', '%', ':', '?':
		return true
	}

	return false
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
