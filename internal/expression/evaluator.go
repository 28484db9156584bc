package expression

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"time"
)

// EvaluationContext holds the variable bindings for evaluation. It is not
// modified after construction.
type EvaluationContext struct {
	variables map[string]float64
}

// NewEvaluationContext creates a context holding a copy of vars.
func NewEvaluationContext(vars map[string]float64) *EvaluationContext {
	return &EvaluationContext{variables: maps.Clone(vars)}
}

// Lookup returns the value bound to name.
func (c *EvaluationContext) Lookup(name string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c.variables[name]
	return v, ok
}

// Len returns the number of bindings.
func (c *EvaluationContext) Len() int {
	if c == nil {
		return 0
	}
	return len(c.variables)
}

// ResultKind distinguishes the variants of EvaluationResult.
type ResultKind int

const (
	ResultNumber ResultKind = iota
	ResultSymbolic
	ResultError
	ResultNotImplemented
)

// String returns the string representation of the result kind.
func (k ResultKind) String() string {
	switch k {
	case ResultNumber:
		return "number"
	case ResultSymbolic:
		return "symbolic"
	case ResultError:
		return "error"
	case ResultNotImplemented:
		return "not_implemented"
	default:
		return "unknown"
	}
}

// EvaluationResult is the outcome of evaluating an expression.
type EvaluationResult struct {
	Kind    ResultKind
	Value   float64          // ResultNumber
	Text    string           // ResultSymbolic
	LaTeX   string           // ResultSymbolic
	Timing  *time.Duration   // ResultSymbolic, collaborator-reported execution time
	Message string           // ResultError, ResultNotImplemented
	Issue   *EvaluationIssue // ResultError from the numeric engine
}

// NumberResult creates a numeric result.
func NumberResult(v float64) EvaluationResult {
	return EvaluationResult{Kind: ResultNumber, Value: v}
}

// SymbolicResult creates a symbolic result.
func SymbolicResult(text, latex string, timing *time.Duration) EvaluationResult {
	return EvaluationResult{Kind: ResultSymbolic, Text: text, LaTeX: latex, Timing: timing}
}

// ErrorResult creates an error result. When err is an *EvaluationError its issue is kept.
func ErrorResult(err error) EvaluationResult {
	res := EvaluationResult{Kind: ResultError, Message: err.Error()}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		issue := evalErr.Issue
		res.Issue = &issue
		res.Message = evalErr.Message
	}
	return res
}

// NotImplementedResult creates a not-implemented result.
func NotImplementedResult(message string) EvaluationResult {
	return EvaluationResult{Kind: ResultNotImplemented, Message: message}
}

// Succeeded reports whether the result is a number or a symbolic answer.
func (r EvaluationResult) Succeeded() bool {
	return r.Kind == ResultNumber || r.Kind == ResultSymbolic
}

// HasIssue reports whether the result is an error tagged with issue.
func (r EvaluationResult) HasIssue(issue EvaluationIssue) bool {
	return r.Kind == ResultError && r.Issue != nil && *r.Issue == issue
}

// String renders the result for display.
func (r EvaluationResult) String() string {
	switch r.Kind {
	case ResultNumber:
		return FormatNumber(r.Value)
	case ResultSymbolic:
		return r.Text
	default:
		return r.Message
	}
}

// FormatNumber renders a double without trailing noise.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.10g", v)
}

// ExpressionEvaluator evaluates math expressions.
type ExpressionEvaluator interface {
	// Parse parses an expression string into an AST.
	Parse(expr string) (Node, error)

	// Evaluate evaluates an AST with the given context.
	Evaluate(node Node, ctx *EvaluationContext) EvaluationResult

	// EvaluateString parses and evaluates an expression string.
	EvaluateString(expr string, ctx *EvaluationContext) EvaluationResult
}

// DefaultEvaluator is the numeric, double-precision implementation of ExpressionEvaluator.
// It holds no state and is safe for concurrent use.
type DefaultEvaluator struct{}

// NewEvaluator creates a new DefaultEvaluator.
func NewEvaluator() *DefaultEvaluator {
	return &DefaultEvaluator{}
}

// Parse parses an expression string into an AST.
func (e *DefaultEvaluator) Parse(expr string) (Node, error) {
	return Parse(expr)
}

// Evaluate evaluates an AST with the given context.
func (e *DefaultEvaluator) Evaluate(node Node, ctx *EvaluationContext) EvaluationResult {
	if node == nil {
		return NotImplementedResult("nil AST")
	}
	v, err := e.evaluateNode(node, ctx)
	if err != nil {
		return ErrorResult(err)
	}
	return NumberResult(v)
}

// EvaluateString parses and evaluates an expression string.
func (e *DefaultEvaluator) EvaluateString(expr string, ctx *EvaluationContext) EvaluationResult {
	node, err := e.Parse(expr)
	if err != nil {
		return ErrorResult(err)
	}
	return e.Evaluate(node, ctx)
}

// evaluateNode evaluates a single AST node.
func (e *DefaultEvaluator) evaluateNode(node Node, ctx *EvaluationContext) (float64, error) {
	switch n := node.(type) {
	case *NumberNode:
		return n.Value, nil

	case *ConstantNode:
		return n.Constant.Value(), nil

	case *VariableNode:
		v, ok := ctx.Lookup(n.Name)
		if !ok {
			return 0, NewVariableNotFoundError(n.Name, n.Pos)
		}
		return v, nil

	case *UnaryNode:
		v, err := e.evaluateNode(n.Operand, ctx)
		if err != nil {
			return 0, err
		}
		if n.Operator == OpNegate {
			return -v, nil
		}
		return v, nil

	case *BinaryNode:
		return e.evaluateBinary(n, ctx)

	case *FunctionNode:
		return e.evaluateFunction(n, ctx)

	case *SymbolicFunctionNode:
		err := NewEvaluationError(IssueSymbolicComputationRequired, n.Pos,
			fmt.Sprintf("%s requires symbolic computation", n.Name))
		err.Name = n.Name
		return 0, err

	default:
		return 0, fmt.Errorf("unknown node type: %T", node)
	}
}

// evaluateBinary evaluates an infix operation.
func (e *DefaultEvaluator) evaluateBinary(n *BinaryNode, ctx *EvaluationContext) (float64, error) {
	if n.Operator == OpEquals {
		return 0, NewEvaluationError(IssueCannotEvaluateEquality, n.Pos, "cannot numerically evaluate an equation")
	}

	left, err := e.evaluateNode(n.Left, ctx)
	if err != nil {
		return 0, err
	}
	right, err := e.evaluateNode(n.Right, ctx)
	if err != nil {
		return 0, err
	}

	var v float64
	switch n.Operator {
	case OpAdd:
		v = left + right
	case OpSubtract:
		v = left - right
	case OpMultiply:
		v = left * right
	case OpDivide:
		if right == 0 {
			return 0, newDivisionByZeroError(n.Pos)
		}
		v = left / right
	case OpPower:
		v = math.Pow(left, right)
	default:
		return 0, fmt.Errorf("unknown binary operator: %s", n.Operator)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, newOverflowError(n.Pos)
	}
	return v, nil
}

// evaluateFunction evaluates a built-in function call.
func (e *DefaultEvaluator) evaluateFunction(n *FunctionNode, ctx *EvaluationContext) (float64, error) {
	x, err := e.evaluateNode(n.Argument, ctx)
	if err != nil {
		return 0, err
	}

	var v float64
	switch n.Function {
	case FuncSin:
		v = math.Sin(x)
	case FuncCos:
		v = math.Cos(x)
	case FuncTan:
		v = math.Tan(x)
	case FuncLog, FuncLn:
		if x <= 0 {
			return 0, newDomainError(n.Pos, n.Function, "argument must be positive")
		}
		if n.Function == FuncLog {
			v = math.Log10(x)
		} else {
			v = math.Log(x)
		}
	case FuncSqrt:
		if x < 0 {
			return 0, newDomainError(n.Pos, n.Function, "argument must not be negative")
		}
		v = math.Sqrt(x)
	case FuncAsin, FuncAcos:
		if x < -1 || x > 1 {
			return 0, newDomainError(n.Pos, n.Function, "argument must be within [-1, 1]")
		}
		if n.Function == FuncAsin {
			v = math.Asin(x)
		} else {
			v = math.Acos(x)
		}
	case FuncAtan:
		v = math.Atan(x)
	case FuncCbrt:
		v = math.Cbrt(x)
	case FuncAbs:
		v = math.Abs(x)
	case FuncExp:
		v = math.Exp(x)
	case FuncFactorial:
		if x < 0 || x != math.Trunc(x) {
			return 0, newDomainError(n.Pos, n.Function, "argument must be a non-negative integer")
		}
		v = math.Gamma(x + 1)
	default:
		return 0, fmt.Errorf("unknown function: %s", n.Function)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, newOverflowError(n.Pos)
	}
	return v, nil
}

// Evaluate is a convenience function to evaluate an expression string.
func Evaluate(expr string, ctx *EvaluationContext) EvaluationResult {
	return NewEvaluator().EvaluateString(expr, ctx)
}
