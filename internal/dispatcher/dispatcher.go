// Package dispatcher routes a formal expression to the numeric or the
// symbolic engine and records timings for every call.
//
// In numeric mode an error tagged CannotEvaluateEquality, UndefinedVariable
// or SymbolicComputationRequired is retried once on the symbolic engine.
package dispatcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yqhp/math-engine/internal/expression"
	"yqhp/math-engine/internal/symbolic"
	"yqhp/math-engine/pkg/logger"
)

// Mode selects the engine used for evaluate requests.
type Mode int

const (
	ModeNumeric Mode = iota
	ModeSymbolic
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNumeric:
		return "numeric"
	case ModeSymbolic:
		return "symbolic"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name, ignoring case. Unknown names return false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "numeric":
		return ModeNumeric, true
	case "symbolic":
		return ModeSymbolic, true
	default:
		return ModeNumeric, false
	}
}

// ErrNoSolver is reported when a request needs the symbolic engine and none is configured.
var ErrNoSolver = errors.New("symbolic engine not configured")

// Request is a single dispatch.
type Request struct {
	Expression string
	// Operation defaults to evaluate.
	Operation symbolic.Operation
	// Variable is the variable for solve, differentiate and integrate.
	Variable string
	// Variables binds names for the numeric engine.
	Variables map[string]float64
}

// Outcome is the result of a dispatch together with its timings.
type Outcome struct {
	RequestID  string
	Expression string
	AST        expression.Node
	Result     expression.EvaluationResult
	// Err is the parse error, if parsing failed.
	Err error

	ParseTime      time.Duration
	EvaluationTime time.Duration
	TotalTime      time.Duration
	NodeCount      int

	// Engine is the engine that produced Result.
	Engine    Mode
	Evaluated bool
	FellBack  bool
}

// Dispatcher evaluates expressions with one of two engines.
// The mode is owned by a single caller; Dispatch itself keeps no per-call state.
type Dispatcher struct {
	mode      Mode
	fallback  bool
	evaluator expression.ExpressionEvaluator
	solver    symbolic.Solver
	stats     *Stats
	log       *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMode sets the initial mode.
func WithMode(mode Mode) Option {
	return func(d *Dispatcher) { d.mode = mode }
}

// WithFallback enables or disables the symbolic retry in numeric mode.
func WithFallback(enabled bool) Option {
	return func(d *Dispatcher) { d.fallback = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithStats records every dispatch into s.
func WithStats(s *Stats) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.stats = s
		}
	}
}

// WithEvaluator replaces the numeric engine.
func WithEvaluator(e expression.ExpressionEvaluator) Option {
	return func(d *Dispatcher) {
		if e != nil {
			d.evaluator = e
		}
	}
}

// New creates a Dispatcher. solver may be nil, in which case symbolic
// requests produce an Error result.
func New(solver symbolic.Solver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		mode:      ModeNumeric,
		fallback:  true,
		evaluator: expression.NewEvaluator(),
		solver:    solver,
		stats:     NewStats(),
		log:       logger.L(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.Named("dispatcher")
	return d
}

// Mode returns the current mode.
func (d *Dispatcher) Mode() Mode { return d.mode }

// SetMode changes the mode used by subsequent calls.
func (d *Dispatcher) SetMode(mode Mode) { d.mode = mode }

// Stats returns the statistics collector.
func (d *Dispatcher) Stats() *Stats { return d.stats }

// Dispatch parses req.Expression and evaluates it.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) *Outcome {
	start := time.Now()
	if req.Operation == "" {
		req.Operation = symbolic.OpEvaluate
	}

	out := &Outcome{
		RequestID:  uuid.NewString(),
		Expression: req.Expression,
	}
	defer func() {
		out.TotalTime = time.Since(start)
		d.stats.Record(out)
		d.logOutcome(req, out)
	}()

	parseStart := time.Now()
	ast, err := d.evaluator.Parse(req.Expression)
	out.ParseTime = time.Since(parseStart)
	if err != nil {
		out.Err = err
		out.Result = expression.ErrorResult(err)
		return out
	}
	out.AST = ast
	out.NodeCount = expression.NodeCount(ast)

	evalStart := time.Now()
	out.Result, out.Engine, out.FellBack = d.evaluate(ctx, req, ast)
	out.EvaluationTime = time.Since(evalStart)
	out.Evaluated = true
	return out
}

// evaluate picks the engine, and in numeric mode retries once on the symbolic engine.
func (d *Dispatcher) evaluate(ctx context.Context, req Request, ast expression.Node) (expression.EvaluationResult, Mode, bool) {
	mode := d.mode
	if req.Operation != symbolic.OpEvaluate {
		mode = ModeSymbolic
	}

	switch mode {
	case ModeSymbolic:
		op := req.Operation
		if op == symbolic.OpEvaluate && expression.IsEquation(ast) {
			op = symbolic.OpSolve
		}
		return d.symbolic(ctx, req, ast, op), ModeSymbolic, false

	default:
		result := d.evaluator.Evaluate(ast, expression.NewEvaluationContext(req.Variables))
		if !d.fallback || !needsFallback(result) {
			return result, ModeNumeric, false
		}

		op := symbolic.OpSimplify
		if expression.IsEquation(ast) {
			op = symbolic.OpSolve
		}
		d.log.Debug("falling back to symbolic engine",
			zap.String("expression", req.Expression),
			zap.String("issue", result.Issue.String()),
			zap.String("operation", op.String()))
		return d.symbolic(ctx, req, ast, op), ModeSymbolic, true
	}
}

func needsFallback(result expression.EvaluationResult) bool {
	return result.Kind == expression.ResultError && result.Issue != nil && result.Issue.NeedsSymbolic()
}

func (d *Dispatcher) symbolic(ctx context.Context, req Request, ast expression.Node, op symbolic.Operation) expression.EvaluationResult {
	if d.solver == nil {
		return expression.ErrorResult(ErrNoSolver)
	}

	resp, err := d.solver.Compute(ctx, symbolic.Request{
		Expression: req.Expression,
		Operation:  op,
		Variable:   variableFor(req, ast, op),
	})
	if err != nil {
		return expression.ErrorResult(err)
	}

	timing := resp.ExecutionTime()
	return expression.SymbolicResult(resp.Result, resp.LaTeX, &timing)
}

// variableFor returns the request variable, else the first variable in the
// expression, else the default.
func variableFor(req Request, ast expression.Node, op symbolic.Operation) string {
	if !op.TakesVariable() {
		return ""
	}
	if req.Variable != "" {
		return req.Variable
	}
	if vars := expression.Variables(ast); len(vars) > 0 {
		return vars[0]
	}
	return symbolic.DefaultVariable
}

func (d *Dispatcher) logOutcome(req Request, out *Outcome) {
	fields := []zap.Field{
		zap.String("request_id", out.RequestID),
		zap.String("expression", req.Expression),
		zap.String("operation", req.Operation.String()),
		zap.String("engine", out.Engine.String()),
		zap.String("result", out.Result.Kind.String()),
		zap.Bool("fell_back", out.FellBack),
		zap.Int("nodes", out.NodeCount),
		zap.Duration("parse_time", out.ParseTime),
		zap.Duration("eval_time", out.EvaluationTime),
		zap.Duration("total_time", out.TotalTime),
	}
	if out.Result.Kind == expression.ResultError {
		fields = append(fields, zap.String("error", out.Result.Message))
		d.log.Info("dispatch failed", fields...)
		return
	}
	d.log.Debug("dispatch", fields...)
}
