// Package expression provides math expression tokenizing, parsing, validation and numeric evaluation.
package expression

import (
	"fmt"
	"math"
	"strings"
)

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota

	// Literals
	TokenNumber   // 3.14, 2e10
	TokenVariable // x, y, foo

	// Named entities
	TokenFunction         // sin, cos, sqrt ...
	TokenSymbolicFunction // diff, integrate, factor ...
	TokenConstant         // pi, e

	// Operators
	TokenOperator // + - * / ^ =

	// Delimiters
	TokenLParen // (
	TokenRParen // )
	TokenComma  // ,
)

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNumber:
		return "NUMBER"
	case TokenVariable:
		return "VARIABLE"
	case TokenFunction:
		return "FUNCTION"
	case TokenSymbolicFunction:
		return "SYMBOLIC_FUNCTION"
	case TokenConstant:
		return "CONSTANT"
	case TokenOperator:
		return "OPERATOR"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenComma:
		return ","
	default:
		return "UNKNOWN"
	}
}

// BinaryOperator is an infix arithmetic operator.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpPower
	OpEquals
)

// Binding powers. Prefix operators sit between multiplication and power so
// that -2^2 parses as -(2^2).
const (
	precedenceLowest  = 0
	precedencePrefix  = 3
	precedenceHighest = 4
)

// Precedence returns the binding power of the operator.
func (op BinaryOperator) Precedence() int {
	switch op {
	case OpEquals:
		return 0
	case OpAdd, OpSubtract:
		return 1
	case OpMultiply, OpDivide:
		return 2
	case OpPower:
		return 4
	default:
		return precedenceLowest
	}
}

// RightAssociative reports whether the operator groups right to left.
func (op BinaryOperator) RightAssociative() bool {
	return op == OpPower
}

// Symbol returns the source symbol of the operator.
func (op BinaryOperator) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpPower:
		return "^"
	case OpEquals:
		return "="
	default:
		return "?"
	}
}

func (op BinaryOperator) String() string { return op.Symbol() }

var operatorSymbols = map[byte]BinaryOperator{
	'+': OpAdd,
	'-': OpSubtract,
	'*': OpMultiply,
	'/': OpDivide,
	'^': OpPower,
	'=': OpEquals,
}

// UnaryOperator is a prefix operator.
type UnaryOperator int

const (
	OpNegate UnaryOperator = iota
	OpPositive
)

// Symbol returns the source symbol of the operator.
func (op UnaryOperator) Symbol() string {
	if op == OpNegate {
		return "-"
	}
	return "+"
}

func (op UnaryOperator) String() string { return op.Symbol() }

// MathFunction is a built-in function of one argument.
type MathFunction int

const (
	FuncSin MathFunction = iota
	FuncCos
	FuncTan
	FuncLog // base 10
	FuncLn
	FuncSqrt
	FuncAsin
	FuncAcos
	FuncAtan
	FuncCbrt
	FuncAbs
	FuncExp
	FuncFactorial
)

var functionNames = map[MathFunction]string{
	FuncSin:       "sin",
	FuncCos:       "cos",
	FuncTan:       "tan",
	FuncLog:       "log",
	FuncLn:        "ln",
	FuncSqrt:      "sqrt",
	FuncAsin:      "asin",
	FuncAcos:      "acos",
	FuncAtan:      "atan",
	FuncCbrt:      "cbrt",
	FuncAbs:       "abs",
	FuncExp:       "exp",
	FuncFactorial: "factorial",
}

var functionTable = func() map[string]MathFunction {
	m := make(map[string]MathFunction, len(functionNames))
	for f, name := range functionNames {
		m[name] = f
	}
	return m
}()

func (f MathFunction) String() string {
	if name, ok := functionNames[f]; ok {
		return name
	}
	return fmt.Sprintf("func(%d)", int(f))
}

// LookupFunction resolves a function name case-insensitively.
func LookupFunction(name string) (MathFunction, bool) {
	f, ok := functionTable[strings.ToLower(name)]
	return f, ok
}

// MathConstant is a named constant.
type MathConstant int

const (
	ConstPi MathConstant = iota
	ConstE
)

// Value returns the double value of the constant.
func (c MathConstant) Value() float64 {
	if c == ConstE {
		return math.E
	}
	return math.Pi
}

func (c MathConstant) String() string {
	if c == ConstE {
		return "e"
	}
	return "pi"
}

// LookupConstant resolves a constant name case-insensitively.
func LookupConstant(name string) (MathConstant, bool) {
	switch strings.ToLower(name) {
	case "pi":
		return ConstPi, true
	case "e":
		return ConstE, true
	default:
		return 0, false
	}
}

// symbolicFunctions can only be computed by the symbolic collaborator.
var symbolicFunctions = map[string]bool{
	"diff":      true,
	"integrate": true,
	"limit":     true,
	"factor":    true,
	"expand":    true,
	"simplify":  true,
	"solve":     true,
	"mean":      true,
	"median":    true,
	"mode":      true,
	"variance":  true,
	"stddev":    true,
	"det":       true,
	"inverse":   true,
	"transpose": true,
}

// IsSymbolicFunction reports whether name is only understood by the symbolic collaborator.
func IsSymbolicFunction(name string) bool {
	return symbolicFunctions[strings.ToLower(name)]
}

// SourcePosition is a byte range in the source text.
type SourcePosition struct {
	Offset int
	Length int
}

// End returns the offset just past the range.
func (p SourcePosition) End() int { return p.Offset + p.Length }

// Span returns the smallest range covering p and other.
func (p SourcePosition) Span(other SourcePosition) SourcePosition {
	start := min(p.Offset, other.Offset)
	end := max(p.End(), other.End())
	return SourcePosition{Offset: start, Length: end - start}
}

// Token represents a lexical token. Which payload field is meaningful depends on Type.
type Token struct {
	Type     TokenType
	Literal  string
	Value    float64        // TokenNumber
	Operator BinaryOperator // TokenOperator
	Function MathFunction   // TokenFunction
	Constant MathConstant   // TokenConstant
}

// PositionedToken is a token together with where it came from.
type PositionedToken struct {
	Token
	Pos SourcePosition
}

// String returns a short description used in diagnostics.
func (t Token) String() string {
	if t.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", t.Literal)
}

// startsPrefix reports whether the token can begin a term.
func (t Token) startsPrefix() bool {
	switch t.Type {
	case TokenNumber, TokenLParen, TokenFunction, TokenSymbolicFunction, TokenConstant, TokenVariable:
		return true
	case TokenOperator:
		return t.Operator == OpAdd || t.Operator == OpSubtract
	default:
		return false
	}
}
