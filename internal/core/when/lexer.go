package when

import (
	"fmt"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokAnd
	tokOr
	tokNot
	tokEq
	tokNeq
	tokLParen
	tokRParen
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

func lex(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", offset: i})
			i++

		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", offset: i})
			i++

		case r == '&':
			if i+1 >= len(runes) || runes[i+1] != '&' {
				return nil, fmt.Errorf("expected && at offset %d", i)
			}
			toks = append(toks, token{kind: tokAnd, text: "&&", offset: i})
			i += 2

		case r == '|':
			if i+1 >= len(runes) || runes[i+1] != '|' {
				return nil, fmt.Errorf("expected || at offset %d", i)
			}
			toks = append(toks, token{kind: tokOr, text: "||", offset: i})
			i += 2

		case r == '=':
			if i+1 >= len(runes) || runes[i+1] != '=' {
				return nil, fmt.Errorf("expected == at offset %d", i)
			}
			toks = append(toks, token{kind: tokEq, text: "==", offset: i})
			i += 2

		case r == '!':
			if i+1 < len(runes) && runes[i+1] == '=' {
				toks = append(toks, token{kind: tokNeq, text: "!=", offset: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokNot, text: "!", offset: i})
				i++
			}

		case r == '\'':
			start := i + 1
			j := start
			for j < len(runes) && runes[j] != '\'' {
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated string at offset %d", i)
			}
			toks = append(toks, token{kind: tokString, text: string(runes[start:j]), offset: i})
			i = j + 1

		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(runes[start:i]), offset: start})

		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", r, i)
		}
	}

	return toks, nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-'
}
