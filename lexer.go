package rlisp

import (
	"fmt"
	"strings"
)

// TokenKind classifies a lexeme.
type TokenKind int

const (
	EOF TokenKind = iota
	Whitespace
	Comment
	Open
	Close
	String
	Symbol // identifiers, numbers and operator names alike
	Colon
	DoubleColon
	Invalid
)

var tokenKindStr = [...]string{
	"EOF", "Whitespace", "Comment", "Open", "Close", "String", "Symbol",
	"Colon", "DoubleColon", "Invalid",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindStr) {
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
	return tokenKindStr[k]
}

// Token is a classified lexeme with the line and column of its first
// character.
type Token struct {
	Kind TokenKind
	Text string
	Line int
	Col  int
}

const symbolChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789!#$%&'*+,-./<=>?@[]^_|~"

// classify returns the kind of t, or false if t is not a whole token.
func classify(t string) (TokenKind, bool) {
	switch t {
	case " ", "\r", "\n", "\t", "\v":
		return Whitespace, true
	case "(":
		return Open, true
	case ")":
		return Close, true
	case ":":
		return Colon, true
	case "::":
		return DoubleColon, true
	case "":
		return EOF, false
	}
	n := len(t)
	if t[0] == '"' && t[n-1] == '"' && n > 1 {
		if !strings.Contains(strings.ReplaceAll(t[1:n-1], `\"`, ""), `"`) {
			return String, true
		}
	}
	if t[0] == ';' && t[n-1] == '\n' {
		return Comment, true
	}
	if t[0] == '{' && t[n-1] == '}' {
		return Comment, true
	}
	for i := 0; i < n; i++ {
		if strings.IndexByte(symbolChars, t[i]) < 0 {
			return EOF, false
		}
	}
	return Symbol, true
}

// Lexer splits a source text into tokens by maximal munch: a candidate
// is emitted only when no extension by one to three more characters
// would also be a token.
type Lexer struct {
	src       string
	pos       int
	line, col int
	done      bool
}

// NewLexer returns a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Next returns the next token. After the input is exhausted it returns
// an EOF token forever.
func (lx *Lexer) Next() Token {
	if lx.done {
		return Token{Kind: EOF, Line: lx.line, Col: lx.col}
	}
	start, line, col := lx.pos, lx.line, lx.col
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		lx.pos++
		if c == '\n' {
			lx.line, lx.col = lx.line+1, 1
		} else {
			lx.col++
		}
		buf := lx.src[start:lx.pos]
		kind, ok := classify(buf)
		if !ok {
			continue
		}
		longer := false
		for i := 1; i <= 3 && lx.pos+i <= len(lx.src); i++ {
			if _, ok := classify(lx.src[start : lx.pos+i]); ok {
				longer = true
				break
			}
		}
		if !longer {
			return Token{Kind: kind, Text: buf, Line: line, Col: col}
		}
	}
	lx.done = true
	if start < len(lx.src) {
		rest := lx.src[start:]
		if rest[0] == ';' {
			return Token{Kind: Comment, Text: rest, Line: line, Col: col}
		}
		return Token{Kind: Invalid, Text: rest, Line: line, Col: col}
	}
	return Token{Kind: EOF, Line: lx.line, Col: lx.col}
}

// Tokenize returns every token of src, ending with the EOF marker.
func Tokenize(src string) []Token {
	lx := NewLexer(src)
	tokens := make([]Token, 0, len(src)/2+1)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens
		}
	}
}

// Depth returns the number of parentheses left open by tokens.
// A negative result means there are more closing than opening ones.
func Depth(tokens []Token) int {
	n := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case Open:
			n++
		case Close:
			n--
		}
	}
	return n
}
