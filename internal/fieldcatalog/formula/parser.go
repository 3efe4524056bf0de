package formula

import (
	"strconv"
	"strings"
)

const maxNestingDepth = 64

// Parser is a recursive-descent parser over the token stream.
type Parser struct {
	tokens []Token
	pos    int
	depth  int
}

// Parse tokenizes and parses a formula.
func Parse(source string) (*Expression, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, withSource(err, source)
	}

	p := &Parser{tokens: tokens}
	if p.peek().Type == TokenEOF {
		return nil, withSource(syntaxErrorf(0, "formula is empty"), source)
	}

	root, err := p.parseExpression()
	if err != nil {
		return nil, withSource(err, source)
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, withSource(syntaxErrorf(tok.Pos, "unexpected %s after end of expression", tok.describe()), source)
	}

	return &Expression{Source: source, Root: root}, nil
}

func withSource(err error, source string) error {
	if ferr, ok := err.(*Error); ok {
		ferr.Formula = source
		return ferr
	}
	return err
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) match(types ...TokenType) (Token, bool) {
	tok := p.peek()
	for _, t := range types {
		if tok.Type == t {
			p.advance()
			return tok, true
		}
	}
	return tok, false
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return tok, syntaxErrorf(tok.Pos, "expected %s, found %s", t, tok.describe())
	}
	return p.advance(), nil
}

func (p *Parser) parseExpression() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNestingDepth {
		return nil, syntaxErrorf(p.peek().Pos, "formula nests deeper than %d levels", maxNestingDepth)
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if op, ok := p.match(TokenEQ, TokenNEQ, TokenLT, TokenLTE, TokenGT, TokenGTE); ok {
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Offset: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseConcat() (Node, error) {
	return p.parseLeftAssoc(p.parseAdditive, TokenAmp)
}

func (p *Parser) parseAdditive() (Node, error) {
	return p.parseLeftAssoc(p.parseTerm, TokenPlus, TokenMinus)
}

func (p *Parser) parseTerm() (Node, error) {
	return p.parseLeftAssoc(p.parseUnary, TokenStar, TokenSlash)
}

func (p *Parser) parseLeftAssoc(operand func() (Node, error), ops ...TokenType) (Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.match(ops...)
		if !ok {
			return left, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Offset: op.Pos}
	}
}

func (p *Parser) parseUnary() (Node, error) {
	if op, ok := p.match(TokenMinus, TokenPlus); ok {
		p.depth++
		defer func() { p.depth-- }()
		if p.depth > maxNestingDepth {
			return nil, syntaxErrorf(op.Pos, "formula nests deeper than %d levels", maxNestingDepth)
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Type, Operand: operand, Offset: op.Pos}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.advance()
	switch tok.Type {
	case TokenNumber:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.Pos, "invalid number %q", tok.Literal)
		}
		return &NumberLiteral{Value: value, Offset: tok.Pos}, nil
	case TokenString:
		return &StringLiteral{Value: tok.Literal, Offset: tok.Pos}, nil
	case TokenPlaceholder:
		return &FieldRef{Name: tok.Literal, Offset: tok.Pos}, nil
	case TokenLParen:
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenIdent:
		return p.parseIdent(tok)
	case TokenEOF:
		return nil, syntaxErrorf(tok.Pos, "unexpected end of formula")
	default:
		return nil, syntaxErrorf(tok.Pos, "unexpected %s", tok.describe())
	}
}

func (p *Parser) parseIdent(tok Token) (Node, error) {
	name := strings.ToUpper(tok.Literal)
	if p.peek().Type != TokenLParen {
		switch name {
		case "TRUE":
			return &BoolLiteral{Value: true, Offset: tok.Pos}, nil
		case "FALSE":
			return &BoolLiteral{Value: false, Offset: tok.Pos}, nil
		}
		return nil, &Error{
			Kind:       KindSyntax,
			Pos:        tok.Pos,
			Message:    "bare identifier " + strconv.Quote(tok.Literal) + ", field references are written {{" + tok.Literal + "}}",
			Suggestion: suggestFrom(name, functionNames(), 2),
		}
	}

	fn, ok := lookupFunction(name)
	if !ok {
		return nil, &Error{
			Kind:       KindSyntax,
			Pos:        tok.Pos,
			Message:    "unknown function " + strconv.Quote(tok.Literal),
			Suggestion: suggestFrom(name, functionNames(), 2),
		}
	}

	p.advance()
	args := make([]Node, 0)
	if _, closed := p.match(TokenRParen); !closed {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if _, more := p.match(TokenComma); more {
				continue
			}
			if _, err := p.expect(TokenRParen); err != nil {
				return nil, err
			}
			break
		}
	}

	if len(args) < fn.minArgs || (fn.maxArgs >= 0 && len(args) > fn.maxArgs) {
		return nil, syntaxErrorf(tok.Pos, "%s expects %s, got %d", name, fn.arity(), len(args))
	}

	return &CallExpr{Name: name, Args: args, Offset: tok.Pos}, nil
}
