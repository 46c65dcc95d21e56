package partition

import (
	"strconv"
	"strings"

	"github.com/go-rondo/rondo/errors"
)

// The partition-count grammar is intentionally minimal and explicit:
//
//	expr    := term { ("+" | "-") term }
//	term    := unary { ("*" | "/") unary }
//	unary   := "-" unary | primary
//	primary := NUMBER | IDENT | IDENT "(" expr { "," expr } ")" | "(" expr ")"
//
// The only functions are min and max. Identifiers resolve through
// caller-supplied zero-argument resolvers; referencing an identifier
// without a resolver is an evaluation error.

type exprToken struct {
	kind  byte // 'n' number, 'i' ident, 's' symbol, 'e' end
	text  string
	value float64
	pos   int
}

type exprParser struct {
	expr      string
	tokens    []exprToken
	pos       int
	resolvers map[string]func() int
}

func evalExpression(expr string, resolvers map[string]func() int) (float64, error) {
	tokens, err := tokenizeExpression(expr)
	if err != nil {
		return 0, err
	}
	p := &exprParser{expr: expr, tokens: tokens, resolvers: resolvers}
	value, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.peek().kind != 'e' {
		return 0, errors.ExpressionSyntaxError{Expr: expr, Pos: p.peek().pos}
	}
	return value, nil
}

func tokenizeExpression(expr string) ([]exprToken, error) {
	var tokens []exprToken
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c >= '0' && c <= '9':
			start := i
			for i < len(expr) && (expr[i] >= '0' && expr[i] <= '9' || expr[i] == '.') {
				i++
			}
			value, err := strconv.ParseFloat(expr[start:i], 64)
			if err != nil {
				return nil, errors.ExpressionSyntaxError{Expr: expr, Pos: start}
			}
			tokens = append(tokens, exprToken{kind: 'n', text: expr[start:i], value: value, pos: start})
		case isIdentByte(c):
			start := i
			for i < len(expr) && (isIdentByte(expr[i]) || expr[i] >= '0' && expr[i] <= '9') {
				i++
			}
			tokens = append(tokens, exprToken{kind: 'i', text: expr[start:i], pos: start})
		case strings.ContainsRune("+-*/(),", rune(c)):
			tokens = append(tokens, exprToken{kind: 's', text: string(c), pos: i})
			i++
		default:
			return nil, errors.ExpressionSyntaxError{Expr: expr, Pos: i}
		}
	}
	tokens = append(tokens, exprToken{kind: 'e', pos: len(expr)})
	return tokens, nil
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func (p *exprParser) peek() exprToken {
	return p.tokens[p.pos]
}

func (p *exprParser) next() exprToken {
	t := p.tokens[p.pos]
	if t.kind != 'e' {
		p.pos++
	}
	return t
}

func (p *exprParser) expectSymbol(sym string) error {
	t := p.next()
	if t.kind != 's' || t.text != sym {
		return errors.ExpressionSyntaxError{Expr: p.expr, Pos: t.pos}
	}
	return nil
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		t := p.peek()
		if t.kind != 's' || t.text != "+" && t.text != "-" {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if t.text == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		t := p.peek()
		if t.kind != 's' || t.text != "*" && t.text != "/" {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if t.text == "*" {
			left *= right
		} else {
			if right == 0 {
				return 0, errors.ExpressionEvalError{Reason: "division by zero"}
			}
			left /= right
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	t := p.peek()
	if t.kind == 's' && t.text == "-" {
		p.next()
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (float64, error) {
	t := p.next()
	switch t.kind {
	case 'n':
		return t.value, nil
	case 'i':
		if p.peek().kind == 's' && p.peek().text == "(" {
			return p.parseCall(t)
		}
		resolver, ok := p.resolvers[t.text]
		if !ok {
			return 0, errors.KeywordResolutionError{Keyword: t.text}
		}
		return float64(resolver()), nil
	case 's':
		if t.text == "(" {
			value, err := p.parseExpr()
			if err != nil {
				return 0, err
			}
			if err := p.expectSymbol(")"); err != nil {
				return 0, err
			}
			return value, nil
		}
	}
	return 0, errors.ExpressionSyntaxError{Expr: p.expr, Pos: t.pos}
}

func (p *exprParser) parseCall(fn exprToken) (float64, error) {
	name := strings.ToLower(fn.text)
	if name != "min" && name != "max" {
		return 0, errors.ExpressionSyntaxError{Expr: p.expr, Pos: fn.pos}
	}
	if err := p.expectSymbol("("); err != nil {
		return 0, err
	}
	result, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	for p.peek().kind == 's' && p.peek().text == "," {
		p.next()
		arg, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if name == "min" && arg < result || name == "max" && arg > result {
			result = arg
		}
	}
	if err := p.expectSymbol(")"); err != nil {
		return 0, err
	}
	return result, nil
}
