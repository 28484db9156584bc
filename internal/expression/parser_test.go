package expression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Precedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "2 + 3 * 4", expected: "(2 + (3 * 4))"},
		{input: "2 * 3 + 4", expected: "((2 * 3) + 4)"},
		{input: "2 ^ 3 ^ 4", expected: "(2 ^ (3 ^ 4))"},
		{input: "2 * 3 ^ 4", expected: "(2 * (3 ^ 4))"},
		{input: "10 - 4 - 3", expected: "((10 - 4) - 3)"},
		{input: "8 / 4 / 2", expected: "((8 / 4) / 2)"},
		{input: "(2 + 3) * 4", expected: "((2 + 3) * 4)"},
		{input: "-2 ^ 2", expected: "(-(2 ^ 2))"},
		{input: "2 ^ -1", expected: "(2 ^ (-1))"},
		{input: "5 * -2", expected: "(5 * (-2))"},
		{input: "+3", expected: "(+3)"},
		{input: "--3", expected: "(-(-3))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.String())
		})
	}
}

func TestParser_AddMultiplyShape(t *testing.T) {
	node, err := Parse("2 + 3 * 4")
	require.NoError(t, err)

	add, ok := node.(*BinaryNode)
	require.True(t, ok, "expected BinaryNode")
	assert.Equal(t, OpAdd, add.Operator)

	left, ok := add.Left.(*NumberNode)
	require.True(t, ok)
	assert.Equal(t, 2.0, left.Value)

	mul, ok := add.Right.(*BinaryNode)
	require.True(t, ok)
	assert.Equal(t, OpMultiply, mul.Operator)
	assert.False(t, mul.Implicit)

	assert.Equal(t, 5, NodeCount(node))
	assert.Equal(t, SourcePosition{Offset: 0, Length: 9}, node.Position())
	assert.Equal(t, SourcePosition{Offset: 4, Length: 5}, mul.Position())
}

func TestParser_RightAssociativePower(t *testing.T) {
	node, err := Parse("2 ^ 3 ^ 4")
	require.NoError(t, err)

	outer, ok := node.(*BinaryNode)
	require.True(t, ok)
	assert.Equal(t, OpPower, outer.Operator)
	_, ok = outer.Left.(*NumberNode)
	assert.True(t, ok)

	inner, ok := outer.Right.(*BinaryNode)
	require.True(t, ok)
	assert.Equal(t, OpPower, inner.Operator)
}

func TestParser_ImplicitMultiplication(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "2x", expected: "(2 * x)"},
		{input: "2(3)", expected: "(2 * 3)"},
		{input: "(2)(3)", expected: "(2 * 3)"},
		{input: "2pi", expected: "(2 * pi)"},
		{input: "3sin(x)", expected: "(3 * sin(x))"},
		{input: "2x^2", expected: "(2 * (x ^ 2))"},
		{input: "2 x y", expected: "((2 * x) * y)"},
		{input: "-2x", expected: "((-2) * x)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.String())
		})
	}

	for _, input := range []string{"2x", "2(3)", "(2)(3)"} {
		t.Run(input+" is implicit", func(t *testing.T) {
			node, err := Parse(input)
			require.NoError(t, err)
			mul, ok := node.(*BinaryNode)
			require.True(t, ok)
			assert.Equal(t, OpMultiply, mul.Operator)
			assert.True(t, mul.Implicit)
		})
	}
}

func TestParser_Functions(t *testing.T) {
	node, err := Parse("sqrt(16) + LOG(100)")
	require.NoError(t, err)

	add, ok := node.(*BinaryNode)
	require.True(t, ok)

	sqrt, ok := add.Left.(*FunctionNode)
	require.True(t, ok)
	assert.Equal(t, FuncSqrt, sqrt.Function)
	assert.Equal(t, SourcePosition{Offset: 0, Length: 8}, sqrt.Position())

	log, ok := add.Right.(*FunctionNode)
	require.True(t, ok)
	assert.Equal(t, FuncLog, log.Function)
}

func TestParser_SymbolicFunctions(t *testing.T) {
	node, err := Parse("diff(x^3, x)")
	require.NoError(t, err)

	call, ok := node.(*SymbolicFunctionNode)
	require.True(t, ok)
	assert.Equal(t, "diff", call.Name)
	require.Len(t, call.Arguments, 2)
	assert.Equal(t, "diff((x ^ 3), x)", node.String())
}

func TestParser_Equation(t *testing.T) {
	node, err := Parse("3*x - 5 = 16")
	require.NoError(t, err)
	assert.True(t, IsEquation(node))
	assert.Equal(t, []string{"x"}, Variables(node))
	assert.Equal(t, "((3 * x) - 5) = 16", node.String())
}

func TestParser_EquationMustBeTopLevel(t *testing.T) {
	for _, input := range []string{"(x = 1) + 2", "a = b = c", "sin(x = 1)"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, ErrUnexpectedToken, pe.Kind)
			assert.Equal(t, "'='", pe.Got)
		})
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		input string
		kind  ParseErrorKind
		pos   int
	}{
		{input: "", kind: ErrEmptyExpression, pos: 0},
		{input: "   ", kind: ErrEmptyExpression, pos: 0},
		{input: "1 +", kind: ErrUnexpectedEndOfInput, pos: 3},
		{input: "(1 + 2", kind: ErrUnmatchedParenthesis, pos: 0},
		{input: "1 + 2)", kind: ErrUnmatchedParenthesis, pos: 5},
		{input: "sqrt(4", kind: ErrUnmatchedParenthesis, pos: 4},
		{input: "sqrt 4", kind: ErrUnexpectedToken, pos: 5},
		{input: "sin", kind: ErrUnexpectedEndOfInput, pos: 3},
		{input: "* 3", kind: ErrUnexpectedToken, pos: 0},
		{input: "()", kind: ErrUnexpectedToken, pos: 1},
		{input: "1, 2", kind: ErrUnexpectedToken, pos: 1},
		{input: "2 $ 3", kind: ErrInvalidCharacter, pos: 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, node)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.kind, pe.Kind, pe.Error())
			assert.Equal(t, tt.pos, pe.Position)
		})
	}
}

func TestParser_ParseTokensEmptyStream(t *testing.T) {
	_, err := ParseTokens(nil)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrEmptyExpression, pe.Kind)
}

func TestParseError_Caret(t *testing.T) {
	_, err := Parse("1 + * 2")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "1 + * 2\n    ^", pe.Caret("1 + * 2"))
}

func TestNodeCount(t *testing.T) {
	tests := []struct {
		input string
		count int
	}{
		{input: "2 + 3 * 4", count: 5},
		{input: "x", count: 1},
		{input: "-x", count: 2},
		{input: "sin(pi / 2)", count: 4},
		{input: "2x", count: 3},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.count, NodeCount(node))
		})
	}
}

func TestVariables_FirstAppearanceOrder(t *testing.T) {
	node, err := Parse("y * x + y - z")
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x", "z"}, Variables(node))
}
