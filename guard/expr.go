// Package guard evaluates named boolean predicates over the bindings of a
// match. A rule's guard is a boolean combination of calls such as
// `$x instanceof int32 && !isStatic($x)`; evaluation short-circuits left
// to right and fails closed on any unresolved name.
package guard

import (
	"fmt"
	"strings"
)

// Expr is a parsed guard expression.
type Expr interface {
	String() string
	eval(r *Registry, ctx *Context) bool
}

var (
	_ Expr = (*Call)(nil)
	_ Expr = (*And)(nil)
	_ Expr = (*Or)(nil)
	_ Expr = (*Not)(nil)
)

// Call invokes a registered guard function. The `$x instanceof T` form is
// modeled as instanceof($x, T); a bare `$x` as matchesAny($x).
type Call struct {
	Name string
	Args []string
}

func (c *Call) String() string { return fmt.Sprintf("%s(%s)", c.Name, strings.Join(c.Args, ", ")) }

func (c *Call) eval(r *Registry, ctx *Context) bool {
	fn, ok := r.lookup(c.Name)
	if !ok {
		r.failOnce("unregistered guard %q", c.Name)
		return false
	}
	return fn(ctx, c.Args)
}

// And is the short-circuiting conjunction of two guard expressions.
type And struct{ Left, Right Expr }

func (a *And) String() string { return fmt.Sprintf("(%s && %s)", a.Left, a.Right) }

func (a *And) eval(r *Registry, ctx *Context) bool {
	return a.Left.eval(r, ctx) && a.Right.eval(r, ctx)
}

// Or is the short-circuiting disjunction of two guard expressions.
type Or struct{ Left, Right Expr }

func (o *Or) String() string { return fmt.Sprintf("(%s || %s)", o.Left, o.Right) }

func (o *Or) eval(r *Registry, ctx *Context) bool {
	return o.Left.eval(r, ctx) || o.Right.eval(r, ctx)
}

// Not negates a guard expression.
type Not struct{ X Expr }

func (n *Not) String() string { return "!" + n.X.String() }

func (n *Not) eval(r *Registry, ctx *Context) bool { return !n.X.eval(r, ctx) }

// ParseError reports an unparsable guard expression.
type ParseError struct {
	Text   string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("guard expression error at offset %d: %s", e.Offset, e.Reason)
}

// ParseExpr parses a guard expression.
//
//	expr    = and ('||' and)*
//	and     = unary ('&&' unary)*
//	unary   = '!' unary | primary
//	primary = '(' expr ')' | PLACEHOLDER 'instanceof' TYPE | PLACEHOLDER
//	        | IDENT '(' args ')' | IDENT
func ParseExpr(text string) (Expr, error) {
	p := &exprParser{input: strings.TrimSpace(text)}
	if p.input == "" {
		return nil, &ParseError{Text: text, Reason: "empty guard expression"}
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected character %q", p.input[p.pos])
	}
	return e, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) errorf(format string, args ...any) error {
	return &ParseError{Text: p.input, Offset: p.pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *exprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.matchToken("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.matchToken("&&") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (Expr, error) {
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == '!' {
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (Expr, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, p.errorf("unexpected end of expression")
	}

	if p.input[p.pos] == '(' {
		p.pos++
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.pos++
		return e, nil
	}

	// placeholder: instanceof sugar or bare existence check
	if p.input[p.pos] == '$' {
		ph := p.readToken()
		p.skipSpace()
		if p.matchKeyword("instanceof") {
			p.skipSpace()
			typeName := p.readToken()
			if typeName == "" {
				return nil, p.errorf("expected type name after instanceof")
			}
			p.skipSpace()
			if strings.HasPrefix(p.input[p.pos:], "[]") {
				typeName += "[]"
				p.pos += 2
			}
			return &Call{Name: "instanceof", Args: []string{ph, typeName}}, nil
		}
		return &Call{Name: "matchesAny", Args: []string{ph}}, nil
	}

	name := p.readToken()
	if name == "" {
		return nil, p.errorf("expected identifier")
	}
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		p.pos++
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.pos++
		return &Call{Name: name, Args: args}, nil
	}
	// bare identifier is a zero-argument guard call
	return &Call{Name: name}, nil
}

func (p *exprParser) parseArgs() ([]string, error) {
	var args []string
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == ')' {
		return args, nil
	}
	for {
		arg, err := p.readArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ',' {
			return args, nil
		}
		p.pos++
	}
}

// readArg reads a placeholder, identifier, number or quoted string.
func (p *exprParser) readArg() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return "", p.errorf("unexpected end of argument list")
	}
	if c := p.input[p.pos]; c == '"' || c == '\'' {
		quote := c
		start := p.pos
		p.pos++
		for p.pos < len(p.input) && p.input[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.input) {
			return "", p.errorf("unterminated string literal")
		}
		p.pos++
		return p.input[start:p.pos], nil
	}
	tok := p.readToken()
	if tok == "" {
		return "", p.errorf("expected argument")
	}
	// version arguments like 1.21 keep their dot
	for p.pos < len(p.input) && p.input[p.pos] == '.' {
		p.pos++
		tok += "." + p.readToken()
	}
	return tok, nil
}

func (p *exprParser) readToken() string {
	start := p.pos
	if p.pos < len(p.input) && p.input[p.pos] == '$' {
		p.pos++
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '_' || c == '$' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

func (p *exprParser) matchToken(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *exprParser) matchKeyword(kw string) bool {
	p.skipSpace()
	rest := p.input[p.pos:]
	if !strings.HasPrefix(rest, kw) {
		return false
	}
	if len(rest) > len(kw) && isWordChar(rest[len(kw)]) {
		return false
	}
	p.pos += len(kw)
	return true
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
