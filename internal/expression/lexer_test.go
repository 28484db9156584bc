package expression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_BasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []PositionedToken
	}{
		{
			input: "1 + 2",
			expected: []PositionedToken{
				{Token: Token{Type: TokenNumber, Literal: "1", Value: 1}, Pos: SourcePosition{Offset: 0, Length: 1}},
				{Token: Token{Type: TokenOperator, Literal: "+", Operator: OpAdd}, Pos: SourcePosition{Offset: 2, Length: 1}},
				{Token: Token{Type: TokenNumber, Literal: "2", Value: 2}, Pos: SourcePosition{Offset: 4, Length: 1}},
				{Token: Token{Type: TokenEOF}, Pos: SourcePosition{Offset: 5}},
			},
		},
		{
			input: "( )",
			expected: []PositionedToken{
				{Token: Token{Type: TokenLParen, Literal: "("}, Pos: SourcePosition{Offset: 0, Length: 1}},
				{Token: Token{Type: TokenRParen, Literal: ")"}, Pos: SourcePosition{Offset: 2, Length: 1}},
				{Token: Token{Type: TokenEOF}, Pos: SourcePosition{Offset: 3}},
			},
		},
		{
			input: "x^2=4",
			expected: []PositionedToken{
				{Token: Token{Type: TokenVariable, Literal: "x"}, Pos: SourcePosition{Offset: 0, Length: 1}},
				{Token: Token{Type: TokenOperator, Literal: "^", Operator: OpPower}, Pos: SourcePosition{Offset: 1, Length: 1}},
				{Token: Token{Type: TokenNumber, Literal: "2", Value: 2}, Pos: SourcePosition{Offset: 2, Length: 1}},
				{Token: Token{Type: TokenOperator, Literal: "=", Operator: OpEquals}, Pos: SourcePosition{Offset: 3, Length: 1}},
				{Token: Token{Type: TokenNumber, Literal: "4", Value: 4}, Pos: SourcePosition{Offset: 4, Length: 1}},
				{Token: Token{Type: TokenEOF}, Pos: SourcePosition{Offset: 5}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		input    string
		value    float64
		consumed int
	}{
		{input: "42", value: 42, consumed: 2},
		{input: "3.14", value: 3.14, consumed: 4},
		{input: "5.", value: 5, consumed: 2},
		{input: "2e3", value: 2000, consumed: 3},
		{input: "2E-2", value: 0.02, consumed: 4},
		{input: "1.5e+2", value: 150, consumed: 6},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			assert.Equal(t, TokenNumber, tokens[0].Type)
			assert.InDelta(t, tt.value, tokens[0].Value, 1e-12)
			assert.Equal(t, tt.consumed, tokens[0].Pos.Length)
		})
	}
}

func TestLexer_MalformedExponentStopsNumber(t *testing.T) {
	tokens, err := Tokenize("2e")
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, TokenNumber, tokens[0].Type)
	assert.Equal(t, 2.0, tokens[0].Value)
	assert.Equal(t, TokenConstant, tokens[1].Type)
	assert.Equal(t, ConstE, tokens[1].Constant)
}

func TestLexer_LeadingDecimalPoint(t *testing.T) {
	_, err := Tokenize(".5")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrInvalidCharacter, pe.Kind)
	assert.Equal(t, 0, pe.Position)

	tokens, err := Tokenize("0.5")
	require.NoError(t, err)
	assert.Equal(t, 0.5, tokens[0].Value)
}

func TestLexer_SecondDecimalPoint(t *testing.T) {
	_, err := Tokenize("1.2.3")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrInvalidCharacter, pe.Kind)
	assert.Equal(t, 3, pe.Position)
	assert.Equal(t, ".", pe.Text)
}

func TestLexer_InvalidNumber(t *testing.T) {
	_, err := Tokenize("1e999")
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrInvalidNumber, pe.Kind)
	assert.Equal(t, "1e999", pe.Text)
}

func TestLexer_Identifiers(t *testing.T) {
	tests := []struct {
		input    string
		tokType  TokenType
		function MathFunction
		constant MathConstant
	}{
		{input: "sin", tokType: TokenFunction, function: FuncSin},
		{input: "SQRT", tokType: TokenFunction, function: FuncSqrt},
		{input: "Ln", tokType: TokenFunction, function: FuncLn},
		{input: "log", tokType: TokenFunction, function: FuncLog},
		{input: "PI", tokType: TokenConstant, constant: ConstPi},
		{input: "e", tokType: TokenConstant, constant: ConstE},
		{input: "diff", tokType: TokenSymbolicFunction},
		{input: "Factor", tokType: TokenSymbolicFunction},
		{input: "x", tokType: TokenVariable},
		{input: "rate2", tokType: TokenVariable},
		{input: "sine", tokType: TokenVariable},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			tok := tokens[0]
			assert.Equal(t, tt.tokType, tok.Type)
			assert.Equal(t, len(tt.input), tok.Pos.Length)
			switch tt.tokType {
			case TokenFunction:
				assert.Equal(t, tt.function, tok.Function)
			case TokenConstant:
				assert.Equal(t, tt.constant, tok.Constant)
			}
		})
	}
}

func TestLexer_InvalidCharacter(t *testing.T) {
	tests := []struct {
		input string
		pos   int
		text  string
	}{
		{input: "1 # 2", pos: 2, text: "#"},
		{input: "5 % 3", pos: 2, text: "%"},
		{input: "2 × 3", pos: 2, text: "×"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, ErrInvalidCharacter, pe.Kind)
			assert.Equal(t, tt.pos, pe.Position)
			assert.Equal(t, tt.text, pe.Text)
		})
	}
}

func TestLexer_EmptyInputYieldsOnlyEOF(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		tokens, err := Tokenize(input)
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		assert.Equal(t, TokenEOF, tokens[0].Type)
		assert.Equal(t, len(input), tokens[0].Pos.Offset)
	}
}

func TestLexer_NextTokenAfterEOF(t *testing.T) {
	lexer := NewLexer("7")
	tok, err := lexer.NextToken()
	require.NoError(t, err)
	assert.Equal(t, TokenNumber, tok.Type)

	for i := 0; i < 3; i++ {
		tok, err = lexer.NextToken()
		require.NoError(t, err)
		assert.Equal(t, TokenEOF, tok.Type)
	}
}
