package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenKind is a lexical token.
type tokenKind int

const (
	tokenInvalid  tokenKind = iota
	tokenEOF                // end of input
	tokenLparen             // (
	tokenRparen             // )
	tokenSemi               // ;
	tokenComma              // ,
	tokenOperator           // ==, !=, =gt=, <, ...
	tokenText               // unquoted selector, argument or keyword
	tokenString             // quoted argument
)

var tokenKindStrings = [...]string{
	tokenInvalid:  "invalid",
	tokenEOF:      "end of input",
	tokenLparen:   "(",
	tokenRparen:   ")",
	tokenSemi:     ";",
	tokenComma:    ",",
	tokenOperator: "operator",
	tokenText:     "text",
	tokenString:   "string",
}

// String returns the string representation of a tokenKind.
func (tk tokenKind) String() string {
	return tokenKindStrings[tk]
}

// token is a lexical token read from the filter string.
type token struct {
	kind tokenKind
	pos  int    // byte offset in the input
	text string // unquoted text for tokenString
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r)
}

// lex splits a filter into tokens. Whitespace separates tokens and is
// otherwise ignored.
func lex(input string) ([]token, error) {
	var toks []token
	pos := 0
	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])
		switch {
		case isSpace(r):
			pos += size
		case r == '(':
			toks = append(toks, token{kind: tokenLparen, pos: pos, text: "("})
			pos++
		case r == ')':
			toks = append(toks, token{kind: tokenRparen, pos: pos, text: ")"})
			pos++
		case r == ';':
			toks = append(toks, token{kind: tokenSemi, pos: pos, text: ";"})
			pos++
		case r == ',':
			toks = append(toks, token{kind: tokenComma, pos: pos, text: ","})
			pos++
		case r == '"' || r == '\'':
			tok, next, err := lexString(input, pos)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			pos = next
		case r == '=' || r == '!' || r == '<' || r == '>':
			tok, next, err := lexOperator(input, pos)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			pos = next
		case r == utf8.RuneError && size == 1:
			return nil, &ParseError{Pos: pos, Msg: "invalid UTF-8"}
		case isReserved(r):
			return nil, &ParseError{Pos: pos, Msg: "unexpected " + string(r)}
		default:
			end := pos + strings.IndexFunc(input[pos:], func(r rune) bool {
				return isReserved(r) || isSpace(r)
			})
			if end < pos {
				end = len(input)
			}
			toks = append(toks, token{kind: tokenText, pos: pos, text: input[pos:end]})
			pos = end
		}
	}
	toks = append(toks, token{kind: tokenEOF, pos: len(input)})
	return toks, nil
}

// lexString reads a quoted argument starting at pos. A backslash escapes
// the next character.
func lexString(input string, pos int) (token, int, error) {
	quote := input[pos]
	var sb strings.Builder
	for i := pos + 1; i < len(input); i++ {
		c := input[i]
		switch {
		case c == '\\':
			if i+1 >= len(input) {
				return token{}, 0, &ParseError{Pos: i, Msg: "unterminated escape"}
			}
			i++
			sb.WriteByte(input[i])
		case c == quote:
			return token{kind: tokenString, pos: pos, text: sb.String()}, i + 1, nil
		default:
			sb.WriteByte(c)
		}
	}
	return token{}, 0, &ParseError{Pos: pos, Msg: "unterminated string"}
}

// lexOperator reads a comparison operator starting at pos: one of
// == != < <= > >= or =name= where name is made of letters.
func lexOperator(input string, pos int) (token, int, error) {
	rest := input[pos:]
	for _, sym := range []string{"==", "!=", "<=", ">="} {
		if strings.HasPrefix(rest, sym) {
			return token{kind: tokenOperator, pos: pos, text: sym}, pos + len(sym), nil
		}
	}
	switch rest[0] {
	case '<', '>':
		return token{kind: tokenOperator, pos: pos, text: rest[:1]}, pos + 1, nil
	case '=':
		i := 1
		for i < len(rest) && isLetter(rest[i]) {
			i++
		}
		if i > 1 && i < len(rest) && rest[i] == '=' {
			return token{kind: tokenOperator, pos: pos, text: rest[:i+1]}, pos + i + 1, nil
		}
	}
	return token{}, 0, &ParseError{Pos: pos, Msg: "invalid comparison operator"}
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
