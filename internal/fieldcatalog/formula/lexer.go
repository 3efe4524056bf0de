package formula

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer turns formula source into tokens. It stops at the first error.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			return l.tokens, nil
		}
	}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *Lexer) peekAt(offset int) rune {
	p := l.pos + offset
	if p >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[p:])
	return r
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

func (l *Lexer) next() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	r := l.peek()
	switch {
	case r == '{' && l.peekAt(1) == '{':
		return l.scanPlaceholder()
	case r == '"' || r == '\'':
		return l.scanString()
	case isDigit(r) || (r == '.' && isDigit(l.peekAt(1))):
		return l.scanNumber(), nil
	case r == '_' || unicode.IsLetter(r):
		return l.scanIdent(), nil
	}

	l.advance()
	single := func(t TokenType) (Token, error) {
		return Token{Type: t, Literal: l.input[start:l.pos], Pos: start}, nil
	}

	switch r {
	case '+':
		return single(TokenPlus)
	case '-':
		return single(TokenMinus)
	case '*':
		return single(TokenStar)
	case '/':
		return single(TokenSlash)
	case '&':
		return single(TokenAmp)
	case '(':
		return single(TokenLParen)
	case ')':
		return single(TokenRParen)
	case ',':
		return single(TokenComma)
	case '=':
		if l.peek() == '=' {
			l.advance()
		}
		return single(TokenEQ)
	case '!':
		if l.peek() == '=' {
			l.advance()
			return single(TokenNEQ)
		}
	case '<':
		switch l.peek() {
		case '=':
			l.advance()
			return single(TokenLTE)
		case '>':
			l.advance()
			return single(TokenNEQ)
		}
		return single(TokenLT)
	case '>':
		if l.peek() == '=' {
			l.advance()
			return single(TokenGTE)
		}
		return single(TokenGT)
	}

	return Token{}, syntaxErrorf(start, "unexpected character %q", r)
}

func (l *Lexer) scanPlaceholder() (Token, error) {
	start := l.pos
	l.pos += 2
	end := strings.Index(l.input[l.pos:], "}}")
	if end < 0 {
		return Token{}, syntaxErrorf(start, "unterminated placeholder, missing '}}'")
	}
	name := strings.TrimSpace(l.input[l.pos : l.pos+end])
	l.pos += end + 2
	if name == "" {
		return Token{}, syntaxErrorf(start, "empty placeholder")
	}
	if strings.ContainsAny(name, "{}") {
		return Token{}, syntaxErrorf(start, "malformed placeholder %q", name)
	}
	return Token{Type: TokenPlaceholder, Literal: name, Pos: start}, nil
}

func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	quote := l.advance()
	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return Token{}, syntaxErrorf(start, "unterminated string")
		}
		r := l.advance()
		if r == '\\' && (l.peek() == quote || l.peek() == '\\') {
			sb.WriteRune(l.advance())
			continue
		}
		if r == quote {
			// spreadsheet style doubled quote
			if l.peek() == quote {
				l.advance()
				sb.WriteRune(quote)
				continue
			}
			break
		}
		sb.WriteRune(r)
	}
	return Token{Type: TokenString, Literal: sb.String(), Pos: start}, nil
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) scanIdent() Token {
	start := l.pos
	for {
		r := l.peek()
		if r == '_' || r == '.' || unicode.IsLetter(r) || isDigit(r) {
			l.advance()
			continue
		}
		break
	}
	return Token{Type: TokenIdent, Literal: l.input[start:l.pos], Pos: start}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
