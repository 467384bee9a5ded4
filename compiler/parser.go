package compiler

import (
	"fmt"
	"math/big"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for se syntax
// ---------------------------------------------------------------------------

// ParseError is a fatal parse failure with its source position. The parser
// either returns a complete Root or a ParseError; it never returns a
// partially built tree.
type ParseError struct {
	Msg string
	Pos Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Msg)
}

// maxUint128 is the largest value the constant folder may produce.
var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Parser parses se source code into an AST. It is single-pass with one
// token of lookahead; any structural mismatch aborts the whole parse.
type Parser struct {
	lexer  *Lexer
	cur    Token
	lexErr *ParseError // first Error token seen, if any
}

// NewParser creates a new parser consuming the given lexer.
func NewParser(l *Lexer) *Parser {
	p := &Parser{lexer: l}
	p.next()
	return p
}

// ParseSource is a convenience wrapper: lex and parse input in one call.
// Include directives resolve relative to workingDir.
func ParseSource(input, workingDir string) (*Root, error) {
	return NewParser(NewLexer(input, workingDir)).Parse()
}

// next advances the current token.
func (p *Parser) next() {
	p.cur = p.lexer.NextToken()
	if p.cur.Type == TokenError && p.lexErr == nil {
		p.lexErr = &ParseError{Msg: p.cur.Literal, Pos: p.cur.Pos}
	}
}

// errorf builds a ParseError at the current token's position.
func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Pos: p.cur.Pos}
}

// Parse consumes the token stream to exhaustion and returns the Root node.
// Top-level tokens other than the four block keywords are skipped.
func (p *Parser) Parse() (*Root, error) {
	root := &Root{}
	for p.cur.Type != TokenEOF {
		if p.lexErr != nil {
			return nil, p.lexErr
		}
		var (
			block Node
			err   error
		)
		switch p.cur.Type {
		case TokenDefine:
			block, err = p.parseDefine()
		case TokenState:
			block, err = p.parseStateBlock()
		case TokenConsts:
			block, err = p.parseConstsBlock()
		case TokenProcedures:
			block, err = p.parseProcedures()
		default:
			p.next()
			continue
		}
		if err != nil {
			return nil, err
		}
		root.Blocks = append(root.Blocks, block)
	}
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	return root, nil
}

// parseDefine parses a $define block. version and schemes may appear in any
// order; unknown tokens inside the block are skipped.
func (p *Parser) parseDefine() (*Define, error) {
	p.next() // move past $define
	if err := p.expectToken(TokenLBrace, "expected '{' to start define block"); err != nil {
		return nil, err
	}

	def := &Define{Schemes: &Schemes{}}

loop:
	for {
		if p.lexErr != nil {
			return nil, p.lexErr
		}
		switch p.cur.Type {
		case TokenVersion:
			v, err := p.parseVersion()
			if err != nil {
				return nil, err
			}
			def.Version = v
		case TokenSchemes:
			s, err := p.parseSchemes()
			if err != nil {
				return nil, err
			}
			def.Schemes = s
		case TokenRBrace:
			break loop
		case TokenEOF:
			return nil, p.errorf("unexpected end of input in define block")
		default:
			p.next()
		}
	}

	p.next() // move past '}'
	return def, nil
}

// parseVersion parses version = "<string>".
func (p *Parser) parseVersion() (string, error) {
	p.next() // move past 'version'
	if err := p.expectOperator("="); err != nil {
		return "", err
	}
	return p.expectString("expected string value for version")
}

// parseSchemes parses schemes = [ { ... } ... ].
func (p *Parser) parseSchemes() (*Schemes, error) {
	p.next() // move past 'schemes'
	if err := p.expectOperator("="); err != nil {
		return nil, err
	}
	if err := p.expectToken(TokenLBracket, "expected '[' to start schemes"); err != nil {
		return nil, err
	}

	schemes := &Schemes{}
	for p.cur.Type != TokenRBracket && p.cur.Type != TokenEOF {
		if p.lexErr != nil {
			return nil, p.lexErr
		}
		if p.cur.Type == TokenLBrace {
			p.next() // move past '{'
			scheme, err := p.parseScheme()
			if err != nil {
				return nil, err
			}
			schemes.Items = append(schemes.Items, scheme)

			if p.cur.Type != TokenRBrace {
				return nil, p.errorf("expected '}' to end scheme")
			}
		}
		p.next()
	}

	if err := p.expectToken(TokenRBracket, "expected ']' to end schemes"); err != nil {
		return nil, err
	}
	return schemes, nil
}

// parseScheme parses one preset/params pair.
func (p *Parser) parseScheme() (*Scheme, error) {
	preset, err := p.parsePreset()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	return &Scheme{Preset: preset, Params: params}, nil
}

// parsePreset parses preset = "<string>".
func (p *Parser) parsePreset() (string, error) {
	if p.cur.Type != TokenIdentifier || p.cur.Literal != "preset" {
		return "", p.errorf("expected 'preset' to start scheme")
	}
	p.next()
	if err := p.expectOperator("="); err != nil {
		return "", err
	}
	return p.expectString("expected string value for preset")
}

// parseParams parses params = { identifier = value ... }. No separators are
// required between pairs. The closing '}' is left for the caller.
func (p *Parser) parseParams() ([]Param, error) {
	if p.cur.Type != TokenIdentifier || p.cur.Literal != "params" {
		return nil, p.errorf("expected 'params' to start scheme")
	}
	p.next()
	if err := p.expectOperator("="); err != nil {
		return nil, err
	}
	if err := p.expectToken(TokenLBrace, "expected '{' to start params"); err != nil {
		return nil, err
	}

	var params []Param
	for p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		id, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expectOperator("="); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: id, Value: value})
	}

	return params, nil
}

// parseStateBlock parses $state { (<type> <identifier>;)* }.
func (p *Parser) parseStateBlock() (*State, error) {
	p.next() // move past $state
	if err := p.expectToken(TokenLBrace, "expected '{' after '$state'"); err != nil {
		return nil, err
	}

	state := &State{}
	for p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		varType, err := p.expectVarType()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		state.Vars = append(state.Vars, &StateVariableDeclaration{
			Name: name,
			Type: varType,
		})
		if err := p.expectToken(TokenSemicolon, "expected ';' at the end of the state variable declaration"); err != nil {
			return nil, err
		}
	}

	if err := p.expectToken(TokenRBrace, "expected '}' at the end of the state block"); err != nil {
		return nil, err
	}
	return state, nil
}

// parseConstsBlock parses $consts { (<type> <identifier> = <value>;)* }.
func (p *Parser) parseConstsBlock() (*Consts, error) {
	p.next() // move past $consts
	if err := p.expectToken(TokenLBrace, "expected '{' after '$consts'"); err != nil {
		return nil, err
	}

	consts := &Consts{}
	for p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		varType, err := p.expectVarType()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.expectOperator("="); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		consts.Decls = append(consts.Decls, &ConstDeclaration{
			Name:  name,
			Type:  varType,
			Value: value,
		})
		if err := p.expectToken(TokenSemicolon, "expected ';' at the end of the const declaration"); err != nil {
			return nil, err
		}
	}

	if err := p.expectToken(TokenRBrace, "expected '}' at the end of the consts block"); err != nil {
		return nil, err
	}
	return consts, nil
}

// parseProcedures recognizes a $procedures block without descending into
// it. The body tokens fall through to the top level's skip-unknown rule;
// lowering procedure bodies is the job of a later stage.
func (p *Parser) parseProcedures() (*Procedures, error) {
	p.next() // move past $procedures
	return &Procedures{}, nil
}

// ---------------------------------------------------------------------------
// Value expressions
// ---------------------------------------------------------------------------

// parseValue parses a value position: an array literal, a string, or a
// numeric expression folded at parse time.
func (p *Parser) parseValue() (Node, error) {
	switch p.cur.Type {
	case TokenLBracket:
		p.next() // move past '['
		arr := &Array{}
		for p.cur.Type != TokenRBracket {
			if p.cur.Type == TokenEOF {
				return nil, p.errorf("unterminated array")
			}
			if p.lexErr != nil {
				return nil, p.lexErr
			}
			// Only string elements are collected; anything else inside the
			// brackets is skipped.
			if p.cur.Type == TokenString {
				arr.Elements = append(arr.Elements, &StringLiteral{Value: p.cur.Literal})
			}
			p.next()
		}
		p.next() // move past ']'
		return arr, nil

	case TokenNumber:
		return p.foldNumber()

	case TokenString:
		s := &StringLiteral{Value: p.cur.Literal}
		p.next()
		return s, nil

	default:
		return nil, p.errorf("unexpected token %s in value position", p.cur.Type)
	}
}

// foldNumber folds a number followed by repeated operator+number pairs,
// strictly left to right with no operator precedence, in unsigned 128-bit
// arithmetic. Division or modulo by zero, subtraction below zero and any
// result past 2^128-1 abort the parse.
func (p *Parser) foldNumber() (Node, error) {
	acc, err := p.parseUint128(p.cur.Literal)
	if err != nil {
		return nil, err
	}
	p.next()

	for p.cur.Type == TokenOperator {
		op := p.cur.Literal
		p.next()
		if p.cur.Type != TokenNumber {
			return nil, p.errorf("expected number after operator %q", op)
		}
		rhs, err := p.parseUint128(p.cur.Literal)
		if err != nil {
			return nil, err
		}

		switch op {
		case "+":
			acc.Add(acc, rhs)
		case "-":
			if acc.Cmp(rhs) < 0 {
				return nil, p.errorf("arithmetic underflow: %s - %s", acc, rhs)
			}
			acc.Sub(acc, rhs)
		case "*":
			acc.Mul(acc, rhs)
		case "/":
			if rhs.Sign() == 0 {
				return nil, p.errorf("division by zero")
			}
			acc.Div(acc, rhs)
		case "%":
			if rhs.Sign() == 0 {
				return nil, p.errorf("modulo by zero")
			}
			acc.Mod(acc, rhs)
		case "^":
			// Any base above 1 overflows u128 past exponent 127, so bound
			// the exponent before handing it to Exp.
			if acc.Cmp(big.NewInt(1)) > 0 && rhs.Cmp(big.NewInt(128)) > 0 {
				return nil, p.errorf("arithmetic overflow: %s ^ %s", acc, rhs)
			}
			acc.Exp(acc, rhs, nil)
		default:
			return nil, p.errorf("unknown operator %q", op)
		}

		if acc.Cmp(maxUint128) > 0 {
			return nil, p.errorf("arithmetic overflow in constant expression")
		}
		p.next()
	}

	return &Number{Value: acc.String()}, nil
}

// parseUint128 parses a decimal literal into the u128 range.
func (p *Parser) parseUint128(text string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(text, 10)
	if !ok || n.Sign() < 0 {
		return nil, p.errorf("invalid numeric literal %q", text)
	}
	if n.Cmp(maxUint128) > 0 {
		return nil, p.errorf("numeric literal %q exceeds u128 range", text)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Expectation helpers
// ---------------------------------------------------------------------------

// expectToken consumes the current token if it matches, otherwise fails
// with the given message.
func (p *Parser) expectToken(t TokenType, msg string) error {
	if p.lexErr != nil {
		return p.lexErr
	}
	if p.cur.Type != t {
		return p.errorf("%s, found %s", msg, p.cur)
	}
	p.next()
	return nil
}

// expectOperator consumes an operator token with the given text.
func (p *Parser) expectOperator(op string) error {
	if p.lexErr != nil {
		return p.lexErr
	}
	if p.cur.Type != TokenOperator || p.cur.Literal != op {
		return p.errorf("expected %q operator, found %s", op, p.cur)
	}
	p.next()
	return nil
}

// expectString consumes a string token and returns its literal.
func (p *Parser) expectString(msg string) (string, error) {
	if p.lexErr != nil {
		return "", p.lexErr
	}
	if p.cur.Type != TokenString {
		return "", p.errorf("%s, found %s", msg, p.cur)
	}
	s := p.cur.Literal
	p.next()
	return s, nil
}

// expectIdentifier consumes an identifier token and returns its name.
func (p *Parser) expectIdentifier() (string, error) {
	if p.lexErr != nil {
		return "", p.lexErr
	}
	if p.cur.Type != TokenIdentifier {
		return "", p.errorf("expected an identifier, found %s", p.cur)
	}
	id := p.cur.Literal
	p.next()
	return id, nil
}

// expectVarType consumes a type keyword. Only the scalar types are
// reachable from the grammar; table and array types are declared in the
// type model but have no declaration syntax yet.
func (p *Parser) expectVarType() (VarType, error) {
	if p.lexErr != nil {
		return VarType{}, p.lexErr
	}
	var t VarType
	switch p.cur.Type {
	case TokenAddress:
		t = VarType{Kind: VarAddress}
	case TokenU128:
		t = VarType{Kind: VarU128}
	case TokenU8:
		t = VarType{Kind: VarU8}
	case TokenBool:
		t = VarType{Kind: VarBool}
	default:
		return VarType{}, p.errorf("expected a type identifier, found %s", p.cur)
	}
	p.next()
	return t, nil
}
