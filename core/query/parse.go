package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-rsql/core/schema"
)

// ParseError describes a syntax error in a filter.
type ParseError struct {
	Pos int    // byte offset of the error
	Msg string // description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query: parse error at offset %d: %s", e.Pos, e.Msg)
}

// Parse parses an RSQL filter into a tree.
//
//	filter     = or
//	or         = and { ("," | "or") and }
//	and        = constraint { (";" | "and") constraint }
//	constraint = "(" or ")" | selector operator arguments
//	arguments  = "(" value { "," value } ")" | value
//
// AND binds tighter than OR. A sequence of one constraint is returned
// without a logical wrapper.
func Parse(filter string) (Node, error) {
	toks, err := lex(filter)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokenEOF {
		return nil, &ParseError{Pos: 0, Msg: "empty filter"}
	}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokenEOF {
		return nil, p.unexpected(t)
	}
	return n, nil
}

// parser is a recursive descent parser over a token slice.
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected(t token) error {
	if t.kind == tokenEOF {
		return &ParseError{Pos: t.pos, Msg: "unexpected end of input"}
	}
	return &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

// isKeyword reports whether t is the unquoted keyword kw.
func isKeyword(t token, kw string) bool {
	return t.kind == tokenText && strings.EqualFold(t.text, kw)
}

func (p *parser) or() (Node, error) {
	return p.sequence(schema.LogicalOr, tokenComma, "or", p.and)
}

func (p *parser) and() (Node, error) {
	return p.sequence(schema.LogicalAnd, tokenSemi, "and", p.constraint)
}

// sequence parses operands separated by sep or the keyword kw.
func (p *parser) sequence(op schema.LogicalOperator, sep tokenKind, kw string, operand func() (Node, error)) (Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	nodes := []Node{first}
	for {
		t := p.peek()
		if t.kind != sep && !isKeyword(t, kw) {
			break
		}
		p.next()
		n, err := operand()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return &LogicalNode{Operator: op, Children: nodes}, nil
}

func (p *parser) constraint() (Node, error) {
	if p.peek().kind == tokenLparen {
		p.next()
		n, err := p.or()
		if err != nil {
			return nil, err
		}
		if t := p.next(); t.kind != tokenRparen {
			return nil, p.unexpected(t)
		}
		return n, nil
	}
	return p.comparison()
}

func (p *parser) comparison() (Node, error) {
	sel := p.next()
	if sel.kind != tokenText {
		return nil, p.unexpected(sel)
	}
	opTok := p.next()
	if opTok.kind != tokenOperator {
		return nil, p.unexpected(opTok)
	}
	op := LookupOperator(opTok.text)

	var args []string
	if p.peek().kind == tokenLparen {
		p.next()
		for {
			v, err := p.value()
			if err != nil {
				return nil, err
			}
			args = append(args, v)
			t := p.next()
			if t.kind == tokenRparen {
				break
			}
			if t.kind != tokenComma {
				return nil, p.unexpected(t)
			}
		}
	} else {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		args = []string{v}
	}

	if op.IsStandard() && !op.IsMultiValue() && len(args) > 1 {
		return nil, &ParseError{Pos: opTok.pos, Msg: fmt.Sprintf("operator %s takes a single argument, got %d", op, len(args))}
	}

	return &ComparisonNode{
		Selector:  StringPtr(sel.text),
		Operator:  op,
		Arguments: args,
	}, nil
}

func (p *parser) value() (string, error) {
	t := p.next()
	if t.kind != tokenText && t.kind != tokenString {
		return "", p.unexpected(t)
	}
	return t.text, nil
}
