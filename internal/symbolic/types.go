// Package symbolic implements the client side of the symbolic-computation
// collaborator contract: send an expression, a variable and an operation,
// receive a result string, its LaTeX form and the collaborator's timing.
package symbolic

import (
	"context"
	"time"
)

// Operation selects the collaborator endpoint.
type Operation string

const (
	OpEvaluate      Operation = "evaluate"
	OpSolve         Operation = "solve"
	OpDifferentiate Operation = "differentiate"
	OpIntegrate     Operation = "integrate"
	OpSimplify      Operation = "simplify"
)

// Valid reports whether op names a known endpoint.
func (op Operation) Valid() bool {
	switch op {
	case OpEvaluate, OpSolve, OpDifferentiate, OpIntegrate, OpSimplify:
		return true
	default:
		return false
	}
}

// TakesVariable reports whether the endpoint reads the variable field.
func (op Operation) TakesVariable() bool {
	return op == OpSolve || op == OpDifferentiate || op == OpIntegrate
}

// String returns the endpoint name.
func (op Operation) String() string { return string(op) }

// DefaultVariable is used when a request needs a variable and names none.
const DefaultVariable = "x"

// Request is sent to the collaborator.
type Request struct {
	Expression string    `json:"expression"`
	Operation  Operation `json:"-"`
	Variable   string    `json:"variable,omitempty"`
}

// Response is a successful collaborator answer.
type Response struct {
	Result          string  `json:"result"`
	LaTeX           string  `json:"latex"`
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	Verified        *bool   `json:"verified,omitempty"`
}

// ExecutionTime converts the reported milliseconds to a duration.
func (r *Response) ExecutionTime() time.Duration {
	return time.Duration(r.ExecutionTimeMs * float64(time.Millisecond))
}

// errorResponse is the collaborator's failure payload.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Solver performs symbolic computations.
type Solver interface {
	Compute(ctx context.Context, req Request) (*Response, error)
}
