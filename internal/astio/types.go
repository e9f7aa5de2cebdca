package astio

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ntwalibas/avalon-sub000/internal/config"
	"github.com/ntwalibas/avalon-sub000/internal/token"
	"github.com/ntwalibas/avalon-sub000/internal/typesystem"
)

// typeParser reads a type instance written as a string:
//
//	type  := '*' | '(' types ')' | '[' type ']' | '{' type ':' type '}'
//	       | [ns '.'] name [ '(' types ')' ]
//	types := type { ',' type }
//
// Bare names listed in constraints become abstract instances.
type typeParser struct {
	src         string
	pos         int
	line        int
	column      int
	constraints map[string]bool
}

// parseTypeString parses src, whose first character sits at line:column.
func parseTypeString(src string, line, column int, constraints map[string]bool) (*typesystem.Instance, error) {
	p := &typeParser{src: src, line: line, column: column, constraints: constraints}
	inst, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q after type", p.src[p.pos:])
	}
	return inst, nil
}

func (p *typeParser) errorf(format string, args ...interface{}) error {
	return &positionError{line: p.line, column: p.column + p.pos, msg: fmt.Sprintf(format, args...)}
}

func (p *typeParser) tok(lexeme string, at int) token.Token {
	return token.New(token.IDENT, lexeme, p.line, p.column+at)
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q, found end of type", c)
		}
		return p.errorf("expected %q, found %q", c, p.src[p.pos])
	}
	p.pos++
	return nil
}

func (p *typeParser) parseType() (*typesystem.Instance, error) {
	start := p.pos
	switch p.peek() {
	case '*':
		p.pos++
		return typesystem.Star(p.tok(config.StarName, start)), nil
	case '(':
		p.pos++
		elems, err := p.parseList(')')
		if err != nil {
			return nil, err
		}
		return typesystem.NewTuple(p.tok("(", start), elems...), nil
	case '[':
		p.pos++
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return typesystem.NewList(p.tok("[", start), elem), nil
	case '{':
		p.pos++
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return typesystem.NewMap(p.tok("{", start), key, value), nil
	}
	return p.parseNamed()
}

func (p *typeParser) parseNamed() (*typesystem.Instance, error) {
	p.skipSpace()
	start := p.pos
	name := p.ident()
	if name == "" {
		if p.pos >= len(p.src) {
			return nil, p.errorf("expected a type, found end of type")
		}
		return nil, p.errorf("expected a type, found %q", p.src[p.pos])
	}
	ns := ""
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		start = p.pos
		ns, name = name, p.ident()
		if name == "" {
			return nil, p.errorf("expected a type name after namespace %q", ns)
		}
	}
	var params []*typesystem.Instance
	if p.peek() == '(' {
		p.pos++
		var err error
		if params, err = p.parseList(')'); err != nil {
			return nil, err
		}
	}
	tok := p.tok(name, start)
	if ns == "" && len(params) == 0 && p.constraints[name] {
		return typesystem.NewAbstract(tok), nil
	}
	return typesystem.NewInstance(tok, ns, params...), nil
}

func (p *typeParser) parseList(closing byte) ([]*typesystem.Instance, error) {
	var out []*typesystem.Instance
	if p.peek() == closing {
		p.pos++
		return out, nil
	}
	for {
		inst, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		if err := p.expect(closing); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// isIdentifier reports whether s is a single identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) < 0
}
