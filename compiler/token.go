package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the se lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Structural keywords
	TokenDefine     // $define
	TokenVersion    // version
	TokenSchemes    // schemes
	TokenState      // $state
	TokenConsts     // $consts
	TokenProcedures // $procedures
	TokenInclude    // $include "file" (literal carries the filename)

	// Type keywords
	TokenAddress // address
	TokenU128    // u128
	TokenU8      // u8
	TokenBool    // bool
	TokenTable   // table

	// Function modifiers and control
	TokenPub    // pub
	TokenMut    // mut
	TokenReturn // return

	// Variable-payload kinds
	TokenNumber     // 42, 1e5 (literal is the expanded decimal text)
	TokenIdentifier // creator, total_supply
	TokenOperator   // single symbol character: + - * / % ^ =
	TokenComment    // // to end of line
	TokenString     // "hello" (literal is the unescaped interior)

	// Delimiters
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenLParen    // (
	TokenRParen    // )
	TokenComma     // ,
	TokenSemicolon // ;
	TokenPeriod    // .
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenDefine:     "$define",
	TokenVersion:    "version",
	TokenSchemes:    "schemes",
	TokenState:      "$state",
	TokenConsts:     "$consts",
	TokenProcedures: "$procedures",
	TokenInclude:    "$include",
	TokenAddress:    "address",
	TokenU128:       "u128",
	TokenU8:         "u8",
	TokenBool:       "bool",
	TokenTable:      "table",
	TokenPub:        "pub",
	TokenMut:        "mut",
	TokenReturn:     "return",
	TokenNumber:     "NUMBER",
	TokenIdentifier: "IDENTIFIER",
	TokenOperator:   "OPERATOR",
	TokenComment:    "COMMENT",
	TokenString:     "STRING",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenComma:      ",",
	TokenSemicolon:  ";",
	TokenPeriod:     ".",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // payload text; empty for fixed keywords and delimiters
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if t.Literal == "" {
		return t.Type.String()
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Keywords mapped to their token types. Built once, never mutated.
// $include is intercepted by the lexer before this table is consulted.
var keywords = map[string]TokenType{
	"$define":     TokenDefine,
	"version":     TokenVersion,
	"schemes":     TokenSchemes,
	"$state":      TokenState,
	"$consts":     TokenConsts,
	"$procedures": TokenProcedures,
	"address":     TokenAddress,
	"table":       TokenTable,
	"u128":        TokenU128,
	"u8":          TokenU8,
	"bool":        TokenBool,
	"pub":         TokenPub,
	"mut":         TokenMut,
	"return":      TokenReturn,
}
