package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for se syntax with $include expansion
// ---------------------------------------------------------------------------

// frame is one source buffer on the include stack. The root buffer sits at
// the bottom; every $include pushes a new frame, and a frame is popped when
// it runs out of input. Tokens slice the frame's input string, so the buffer
// stays alive for as long as any token borrowed from it is reachable.
type frame struct {
	path     string // resolved file path; empty for the root buffer
	input    string
	pos      int  // current position in input
	readPos  int  // reading position (after current char)
	ch       rune // current character
	line     int  // line of the current character (1-based)
	col      int  // column of the current character (1-based)
	nextLine int
	nextCol  int
}

func newFrame(path, input string) *frame {
	f := &frame{
		path:     path,
		input:    input,
		nextLine: 1,
		nextCol:  1,
	}
	f.readChar()
	return f
}

// readChar reads the next character.
func (f *frame) readChar() {
	f.line = f.nextLine
	f.col = f.nextCol
	if f.readPos >= len(f.input) {
		f.ch = 0 // EOF
		f.pos = f.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(f.input[f.readPos:])
	f.ch = r
	f.pos = f.readPos
	f.readPos += size

	if r == '\n' {
		f.nextLine++
		f.nextCol = 1
	} else {
		f.nextCol++
	}
}

// peekChar returns the next character without consuming it.
func (f *frame) peekChar() rune {
	if f.readPos >= len(f.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(f.input[f.readPos:])
	return r
}

// position returns the current position.
func (f *frame) position() Position {
	return Position{
		File:   f.path,
		Offset: f.pos,
		Line:   f.line,
		Column: f.col,
	}
}

// Lexer tokenizes se source code. $include directives push the included
// file's content onto an internal stack of frames; exhausting an included
// frame pops it and resumes the parent transparently, so the caller never
// sees the end-of-input of a popped frame.
type Lexer struct {
	frames     []*frame
	workingDir string
	included   []string // resolved paths of every included file, in order
}

// NewLexer creates a new lexer for the given input. Include directives are
// resolved relative to workingDir.
func NewLexer(input, workingDir string) *Lexer {
	return &Lexer{
		frames:     []*frame{newFrame("", input)},
		workingDir: workingDir,
	}
}

// IncludedFiles returns the resolved paths of every file loaded through
// $include so far, in encounter order.
func (l *Lexer) IncludedFiles() []string {
	return l.included
}

func (l *Lexer) cur() *frame {
	return l.frames[len(l.frames)-1]
}

// NextToken returns the next token. The synthetic EOF of an exhausted
// included frame is never returned: the frame is popped and scanning
// resumes in the parent.
func (l *Lexer) NextToken() Token {
	tok := l.scan()
	for tok.Type == TokenEOF && len(l.frames) > 1 {
		l.frames = l.frames[:len(l.frames)-1]
		tok = l.scan()
	}
	return tok
}

// scan produces the next token from the current frame.
func (l *Lexer) scan() Token {
	f := l.cur()

	for f.ch != 0 && unicode.IsSpace(f.ch) {
		f.readChar()
	}

	pos := f.position()

	switch {
	case f.ch == 0:
		return Token{Type: TokenEOF, Pos: pos}

	case f.ch == '/' && f.peekChar() == '/':
		start := f.pos
		for f.ch != 0 && f.ch != '\n' {
			f.readChar()
		}
		return Token{Type: TokenComment, Literal: f.input[start:f.pos], Pos: pos}

	case f.ch == '$' || unicode.IsLetter(f.ch):
		return l.readIdentifierOrKeyword(f, pos)

	case f.ch == '"':
		f.readChar() // consume opening "
		start := f.pos
		for f.ch != 0 && f.ch != '"' {
			f.readChar()
		}
		end := f.pos
		f.readChar() // consume closing "
		return Token{Type: TokenString, Literal: f.input[start:end], Pos: pos}

	case isDigit(f.ch) || f.ch == '.':
		return l.readNumber(f, pos)
	}

	ch := f.ch
	f.readChar()
	switch ch {
	case '{':
		return Token{Type: TokenLBrace, Pos: pos}
	case '}':
		return Token{Type: TokenRBrace, Pos: pos}
	case '[':
		return Token{Type: TokenLBracket, Pos: pos}
	case ']':
		return Token{Type: TokenRBracket, Pos: pos}
	case '(':
		return Token{Type: TokenLParen, Pos: pos}
	case ')':
		return Token{Type: TokenRParen, Pos: pos}
	case ',':
		return Token{Type: TokenComma, Pos: pos}
	case ';':
		return Token{Type: TokenSemicolon, Pos: pos}
	case '.':
		return Token{Type: TokenPeriod, Pos: pos}
	}
	// Anything else is a one-character operator. Multi-character operators
	// come out as consecutive one-character tokens; the parser reassembles
	// arithmetic by consuming operator+number pairs.
	return Token{Type: TokenOperator, Literal: string(ch), Pos: pos}
}

// readIdentifierOrKeyword reads an identifier run and classifies it against
// the keyword table. $include is intercepted before the table lookup.
func (l *Lexer) readIdentifierOrKeyword(f *frame, pos Position) Token {
	start := f.pos
	for f.ch != 0 && (unicode.IsLetter(f.ch) || unicode.IsDigit(f.ch) || f.ch == '_' || f.ch == '$') {
		f.readChar()
	}
	ident := f.input[start:f.pos]

	if ident == "$include" {
		return l.readInclude(f, pos)
	}

	if typ, ok := keywords[ident]; ok {
		return Token{Type: typ, Pos: pos}
	}
	return Token{Type: TokenIdentifier, Literal: ident, Pos: pos}
}

// readInclude consumes the quoted filename after $include, loads the file
// and pushes it as a new frame. The Include token itself is still surfaced
// to the caller; subsequent tokens come from the included content.
func (l *Lexer) readInclude(f *frame, pos Position) Token {
	for f.ch != 0 && unicode.IsSpace(f.ch) {
		f.readChar()
	}
	if f.ch == '"' {
		f.readChar()
	}
	start := f.pos
	for f.ch != 0 && f.ch != '"' {
		f.readChar()
	}
	name := f.input[start:f.pos]
	f.readChar() // consume closing "

	path := filepath.Clean(filepath.Join(l.workingDir, name))

	// A file that is still being lexed somewhere on the stack would recurse
	// without bound; flag the cycle instead.
	for _, fr := range l.frames {
		if fr.path != "" && fr.path == path {
			return Token{
				Type:    TokenError,
				Literal: fmt.Sprintf("include cycle detected: %s", path),
				Pos:     pos,
			}
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Token{
			Type:    TokenError,
			Literal: fmt.Sprintf("cannot read included file %s: %v", path, err),
			Pos:     pos,
		}
	}

	l.included = append(l.included, path)
	l.frames = append(l.frames, newFrame(path, string(content)))

	return Token{Type: TokenInclude, Literal: name, Pos: pos}
}

// readNumber reads a numeric literal. Digits, dots and exponent markers are
// consumed greedily into one run; a parseable non-negative integer exponent
// is expanded by appending zeros to the base digits. Anything the expansion
// cannot handle (negative or fractional exponents never parse because the
// sign is not part of the run) falls through to the raw literal text. A
// lone "." is the Period token, not a number.
func (l *Lexer) readNumber(f *frame, pos Position) Token {
	start := f.pos
	hasExponent := false

	for f.ch != 0 && (isDigit(f.ch) || f.ch == '.' || f.ch == 'e' || f.ch == 'E') {
		if f.ch == 'e' || f.ch == 'E' {
			hasExponent = true
		}
		f.readChar()
	}

	number := f.input[start:f.pos]

	if hasExponent {
		if idx := strings.IndexAny(number, "eE"); idx >= 0 {
			if exp, err := strconv.Atoi(number[idx+1:]); err == nil && exp >= 0 {
				expanded := number[:idx] + strings.Repeat("0", exp)
				return Token{Type: TokenNumber, Literal: expanded, Pos: pos}
			}
		}
	}

	if number == "." {
		return Token{Type: TokenPeriod, Pos: pos}
	}

	return Token{Type: TokenNumber, Literal: number, Pos: pos}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Tokenize returns all tokens from the input. Scanning stops after the
// first EOF or Error token.
func Tokenize(input, workingDir string) []Token {
	l := NewLexer(input, workingDir)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}
