package expression

import (
	"fmt"
	"strings"
)

// ParseErrorKind classifies lexical and syntactic failures.
type ParseErrorKind int

const (
	ErrEmptyExpression ParseErrorKind = iota
	ErrInvalidCharacter
	ErrInvalidNumber
	// ErrUnknownIdentifier is never produced: unknown identifiers become variables.
	ErrUnknownIdentifier
	ErrUnexpectedToken
	ErrUnexpectedEndOfInput
	ErrUnmatchedParenthesis
)

// String returns the string representation of the error kind.
func (k ParseErrorKind) String() string {
	switch k {
	case ErrEmptyExpression:
		return "EmptyExpression"
	case ErrInvalidCharacter:
		return "InvalidCharacter"
	case ErrInvalidNumber:
		return "InvalidNumber"
	case ErrUnknownIdentifier:
		return "UnknownIdentifier"
	case ErrUnexpectedToken:
		return "UnexpectedToken"
	case ErrUnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case ErrUnmatchedParenthesis:
		return "UnmatchedParenthesis"
	default:
		return "Unknown"
	}
}

// ParseError represents a tokenizing or parsing error.
type ParseError struct {
	Kind     ParseErrorKind
	Position int    // byte offset in the expression
	Length   int    // length of the offending text, at least 1 except for empty input
	Expected string // what the parser wanted, if known
	Got      string // what it found
	Text     string // offending literal for InvalidNumber, InvalidCharacter and UnknownIdentifier
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrEmptyExpression:
		return "parse error: empty expression"
	case ErrInvalidCharacter:
		return fmt.Sprintf("parse error at position %d: invalid character '%s'", e.Position, e.Text)
	case ErrInvalidNumber:
		return fmt.Sprintf("parse error at position %d: invalid number '%s'", e.Position, e.Text)
	case ErrUnknownIdentifier:
		return fmt.Sprintf("parse error at position %d: unknown identifier '%s'", e.Position, e.Text)
	case ErrUnexpectedEndOfInput:
		return fmt.Sprintf("parse error at position %d: expected %s, got end of input", e.Position, e.Expected)
	case ErrUnmatchedParenthesis:
		return fmt.Sprintf("parse error at position %d: unmatched parenthesis", e.Position)
	default:
		return fmt.Sprintf("parse error at position %d: expected %s, got %s", e.Position, e.Expected, e.Got)
	}
}

// Caret renders the expression with a caret line under the error position.
func (e *ParseError) Caret(input string) string {
	width := max(e.Length, 1)
	return input + "\n" + strings.Repeat(" ", e.Position) + strings.Repeat("^", width)
}

// NewParseError creates an UnexpectedToken error.
func NewParseError(pos SourcePosition, expected, got string) *ParseError {
	return &ParseError{
		Kind:     ErrUnexpectedToken,
		Position: pos.Offset,
		Length:   pos.Length,
		Expected: expected,
		Got:      got,
	}
}

func newEmptyExpressionError() *ParseError {
	return &ParseError{Kind: ErrEmptyExpression}
}

func newInvalidCharacterError(pos int, ch string) *ParseError {
	return &ParseError{Kind: ErrInvalidCharacter, Position: pos, Length: len(ch), Text: ch}
}

func newInvalidNumberError(pos int, text string) *ParseError {
	return &ParseError{Kind: ErrInvalidNumber, Position: pos, Length: len(text), Text: text}
}

func newUnexpectedEndError(pos int, expected string) *ParseError {
	return &ParseError{Kind: ErrUnexpectedEndOfInput, Position: pos, Length: 1, Expected: expected, Got: "end of input"}
}

func newUnmatchedParenError(pos int) *ParseError {
	return &ParseError{Kind: ErrUnmatchedParenthesis, Position: pos, Length: 1, Expected: ")", Got: "("}
}

// EvaluationIssue is the stable tag of a numeric evaluation failure.
type EvaluationIssue int

const (
	IssueDivisionByZero EvaluationIssue = iota
	IssueOverflow
	IssueDomainError
	IssueCannotEvaluateEquality
	IssueUndefinedVariable
	IssueSymbolicComputationRequired
)

// String returns the string representation of the issue.
func (i EvaluationIssue) String() string {
	switch i {
	case IssueDivisionByZero:
		return "DivisionByZero"
	case IssueOverflow:
		return "Overflow"
	case IssueDomainError:
		return "DomainError"
	case IssueCannotEvaluateEquality:
		return "CannotEvaluateEquality"
	case IssueUndefinedVariable:
		return "UndefinedVariable"
	case IssueSymbolicComputationRequired:
		return "SymbolicComputationRequired"
	default:
		return "Unknown"
	}
}

// NeedsSymbolic reports whether the symbolic collaborator can take over.
func (i EvaluationIssue) NeedsSymbolic() bool {
	switch i {
	case IssueCannotEvaluateEquality, IssueUndefinedVariable, IssueSymbolicComputationRequired:
		return true
	default:
		return false
	}
}

// EvaluationError represents an error during numeric evaluation.
type EvaluationError struct {
	Issue    EvaluationIssue
	Message  string
	Name     string // variable or function involved, if any
	Position SourcePosition
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error: %s", e.Message)
}

// NewEvaluationError creates a new EvaluationError.
func NewEvaluationError(issue EvaluationIssue, pos SourcePosition, message string) *EvaluationError {
	return &EvaluationError{Issue: issue, Message: message, Position: pos}
}

func newDivisionByZeroError(pos SourcePosition) *EvaluationError {
	return NewEvaluationError(IssueDivisionByZero, pos, "division by zero")
}

func newOverflowError(pos SourcePosition) *EvaluationError {
	return NewEvaluationError(IssueOverflow, pos, "result is too large or not a finite number")
}

func newDomainError(pos SourcePosition, fn MathFunction, reason string) *EvaluationError {
	err := NewEvaluationError(IssueDomainError, pos, fmt.Sprintf("%s: %s", fn, reason))
	err.Name = fn.String()
	return err
}

// NewVariableNotFoundError creates an UndefinedVariable error.
func NewVariableNotFoundError(name string, pos SourcePosition) *EvaluationError {
	err := NewEvaluationError(IssueUndefinedVariable, pos, fmt.Sprintf("undefined variable: %s", name))
	err.Name = name
	return err
}
