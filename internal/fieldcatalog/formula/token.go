// Package formula implements the expression language of computed fields:
// a tokenizer, a recursive-descent parser and a tree-walking evaluator over
// typed record values. Formulas are data; nothing in them is executed as
// host code.
//
// Grammar, lowest precedence first, every binary level left associative:
//
//	expression := comparison
//	comparison := concat ( ( "=" | "==" | "!=" | "<>" | "<" | "<=" | ">" | ">=" ) concat )?
//	concat     := additive ( "&" additive )*
//	additive   := term ( ( "+" | "-" ) term )*
//	term       := unary ( ( "*" | "/" ) unary )*
//	unary      := ( "-" | "+" ) unary | primary
//	primary    := NUMBER | STRING | TRUE | FALSE | PLACEHOLDER
//	            | IDENT "(" [ expression ( "," expression )* ] ")"
//	            | "(" expression ")"
//
// PLACEHOLDER is {{field_name}}. Function names are case-insensitive.
package formula

import "fmt"

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenIdent
	TokenPlaceholder

	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenAmp

	TokenEQ
	TokenNEQ
	TokenLT
	TokenLTE
	TokenGT
	TokenGTE

	TokenLParen
	TokenRParen
	TokenComma
)

var tokenNames = map[TokenType]string{
	TokenEOF:         "end of formula",
	TokenNumber:      "number",
	TokenString:      "string",
	TokenIdent:       "identifier",
	TokenPlaceholder: "placeholder",
	TokenPlus:        "'+'",
	TokenMinus:       "'-'",
	TokenStar:        "'*'",
	TokenSlash:       "'/'",
	TokenAmp:         "'&'",
	TokenEQ:          "'='",
	TokenNEQ:         "'!='",
	TokenLT:          "'<'",
	TokenLTE:         "'<='",
	TokenGT:          "'>'",
	TokenGTE:         "'>='",
	TokenLParen:      "'('",
	TokenRParen:      "')'",
	TokenComma:       "','",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

func (t Token) describe() string {
	switch t.Type {
	case TokenEOF:
		return t.Type.String()
	case TokenPlaceholder:
		return "{{" + t.Literal + "}}"
	case TokenString:
		return fmt.Sprintf("%q", t.Literal)
	default:
		return "'" + t.Literal + "'"
	}
}
