package expression

import (
	"errors"
	"fmt"
)

// SyntaxError is an advisory diagnostic for live feedback.
type SyntaxError struct {
	Message  string
	Position int
	Length   int
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Message, e.Position)
}

// Diagnostic messages.
const (
	MsgMissingClosingParen   = "missing closing parenthesis"
	MsgUnmatchedClosingParen = "unmatched closing parenthesis"
	MsgOperatorsInARow       = "two operators in a row"
)

// Validate reports syntax problems in expr. It never blocks evaluation;
// an empty result means the expression parses.
func Validate(expr string) []SyntaxError {
	tokens, err := Tokenize(expr)
	if err != nil {
		return []SyntaxError{fromParseError(err)}
	}

	diags := checkParentheses(tokens)
	diags = append(diags, checkAdjacentOperators(tokens)...)

	if _, err := ParseTokens(tokens); err != nil && !alreadyReported(err, diags) {
		diags = append(diags, fromParseError(err))
	}

	return diags
}

// alreadyReported reports whether a parse failure repeats a diagnostic from
// the bracket or operator pass. A missing ')' also makes the parser run out
// of input, so that end-of-input failure counts as reported too.
func alreadyReported(err error, diags []SyntaxError) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	if pe.Kind == ErrEmptyExpression {
		return true
	}
	for _, d := range diags {
		if d.Position == pe.Position {
			return true
		}
		if d.Message == MsgMissingClosingParen &&
			(pe.Kind == ErrUnmatchedParenthesis || pe.Kind == ErrUnexpectedEndOfInput) {
			return true
		}
	}
	return false
}

// checkParentheses reports every unmatched '(' and ')'.
func checkParentheses(tokens []PositionedToken) []SyntaxError {
	var diags []SyntaxError
	var stack []PositionedToken

	for _, tok := range tokens {
		switch tok.Type {
		case TokenLParen:
			stack = append(stack, tok)
		case TokenRParen:
			if len(stack) == 0 {
				diags = append(diags, SyntaxError{Message: MsgUnmatchedClosingParen, Position: tok.Pos.Offset, Length: 1})
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}

	for _, open := range stack {
		diags = append(diags, SyntaxError{Message: MsgMissingClosingParen, Position: open.Pos.Offset, Length: 1})
	}
	return diags
}

// checkAdjacentOperators reports an operator directly following another,
// except a sign after *, /, ^ or = (5*-2 is fine).
func checkAdjacentOperators(tokens []PositionedToken) []SyntaxError {
	var diags []SyntaxError
	for i := 1; i < len(tokens); i++ {
		prev, tok := tokens[i-1], tokens[i]
		if prev.Type != TokenOperator || tok.Type != TokenOperator {
			continue
		}
		if isSign(tok.Operator) && !isSign(prev.Operator) {
			continue
		}
		diags = append(diags, SyntaxError{Message: MsgOperatorsInARow, Position: tok.Pos.Offset, Length: tok.Pos.Length})
	}
	return diags
}

func isSign(op BinaryOperator) bool {
	return op == OpAdd || op == OpSubtract
}

func fromParseError(err error) SyntaxError {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return SyntaxError{Message: err.Error()}
	}

	var msg string
	switch pe.Kind {
	case ErrInvalidCharacter:
		msg = fmt.Sprintf("invalid character '%s'", pe.Text)
	case ErrInvalidNumber:
		msg = fmt.Sprintf("invalid number '%s'", pe.Text)
	case ErrUnknownIdentifier:
		msg = fmt.Sprintf("unknown identifier '%s'", pe.Text)
	case ErrUnmatchedParenthesis:
		msg = MsgMissingClosingParen
	case ErrUnexpectedEndOfInput:
		msg = fmt.Sprintf("expression is incomplete: expected %s", pe.Expected)
	case ErrEmptyExpression:
		msg = "expression is empty"
	default:
		msg = fmt.Sprintf("unexpected %s, expected %s", pe.Got, pe.Expected)
	}
	return SyntaxError{Message: msg, Position: pe.Position, Length: max(pe.Length, 1)}
}
