package expression

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes math expressions.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // current reading position (after current char)
	ch      byte // current char under examination
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character and advances the position.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL signifies EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

// peekChar returns the character after the current one without advancing.
func (l *Lexer) peekChar() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) byte {
	if l.readPos+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+n]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() (PositionedToken, error) {
	l.skipWhitespace()

	start := l.pos
	if l.atEnd() {
		return PositionedToken{
			Token: Token{Type: TokenEOF},
			Pos:   SourcePosition{Offset: len(l.input)},
		}, nil
	}

	if op, ok := operatorSymbols[l.ch]; ok {
		tok := single(Token{Type: TokenOperator, Literal: string(l.ch), Operator: op}, start)
		l.readChar()
		return tok, nil
	}

	switch l.ch {
	case '(':
		l.readChar()
		return single(Token{Type: TokenLParen, Literal: "("}, start), nil
	case ')':
		l.readChar()
		return single(Token{Type: TokenRParen, Literal: ")"}, start), nil
	case ',':
		l.readChar()
		return single(Token{Type: TokenComma, Literal: ","}, start), nil
	}

	if isDigit(l.ch) {
		return l.readNumber()
	}
	if isLetter(l.ch) {
		return l.readIdentifier(), nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[start:])
	return PositionedToken{}, newInvalidCharacterError(start, string(r))
}

func single(tok Token, offset int) PositionedToken {
	return PositionedToken{Token: tok, Pos: SourcePosition{Offset: offset, Length: 1}}
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readNumber reads a decimal literal with at most one '.' and one exponent.
// A second '.' or an exponent marker without digits ends the literal there.
func (l *Lexer) readNumber() (PositionedToken, error) {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(1))) {
			l.readChar() // consume marker
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	literal := l.input[start:l.pos]
	val, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return PositionedToken{}, newInvalidNumberError(start, literal)
	}

	return PositionedToken{
		Token: Token{Type: TokenNumber, Literal: literal, Value: val},
		Pos:   SourcePosition{Offset: start, Length: l.pos - start},
	}, nil
}

// readIdentifier reads a function, constant or variable name.
func (l *Lexer) readIdentifier() PositionedToken {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.pos]
	return PositionedToken{
		Token: lookupIdent(literal),
		Pos:   SourcePosition{Offset: start, Length: l.pos - start},
	}
}

// lookupIdent classifies an identifier.
func lookupIdent(ident string) Token {
	if f, ok := LookupFunction(ident); ok {
		return Token{Type: TokenFunction, Literal: ident, Function: f}
	}
	if IsSymbolicFunction(ident) {
		return Token{Type: TokenSymbolicFunction, Literal: strings.ToLower(ident)}
	}
	if c, ok := LookupConstant(ident); ok {
		return Token{Type: TokenConstant, Literal: ident, Constant: c, Value: c.Value()}
	}
	return Token{Type: TokenVariable, Literal: ident}
}

func isLetter(ch byte) bool {
	return ch < utf8.RuneSelf && (unicode.IsLetter(rune(ch)) || ch == '_')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize scans the whole input. The returned stream always ends with one EOF token.
func Tokenize(input string) ([]PositionedToken, error) {
	l := NewLexer(input)
	var tokens []PositionedToken
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}
