package expression

import (
	"math"
	"strconv"
	"testing"

	"github.com/dop251/goja"
	"pgregory.net/rapid"
)

// mirrored is one expression in both our syntax and JavaScript.
type mirrored struct {
	src string
	js  string
}

var mirroredFunctions = []string{"sqrt", "sin", "cos", "atan", "abs", "exp"}

func drawMirrored(t *rapid.T, depth int) mirrored {
	if depth == 0 || rapid.Bool().Draw(t, "leaf") {
		s := strconv.Itoa(rapid.IntRange(0, 9).Draw(t, "digit"))
		return mirrored{s, s}
	}

	switch rapid.IntRange(0, 3).Draw(t, "kind") {
	case 0:
		op := rapid.SampledFrom([]string{"+", "-", "*", "/"}).Draw(t, "op")
		l, r := drawMirrored(t, depth-1), drawMirrored(t, depth-1)
		return mirrored{
			src: "(" + l.src + " " + op + " " + r.src + ")",
			js:  "(" + l.js + " " + op + " " + r.js + ")",
		}
	case 1:
		base := drawMirrored(t, depth-1)
		exp := strconv.Itoa(rapid.IntRange(0, 3).Draw(t, "exponent"))
		return mirrored{
			src: "(" + base.src + ")^" + exp,
			js:  "Math.pow(" + base.js + ", " + exp + ")",
		}
	case 2:
		name := rapid.SampledFrom(mirroredFunctions).Draw(t, "function")
		arg := drawMirrored(t, depth-1)
		return mirrored{
			src: name + "(" + arg.src + ")",
			js:  "Math." + name + "(" + arg.js + ")",
		}
	default:
		arg := drawMirrored(t, depth-1)
		return mirrored{"-(" + arg.src + ")", "-(" + arg.js + ")"}
	}
}

// TestEvaluatorAgreesWithJavaScript compares numeric results against goja.
// Expressions we reject (division by zero, domain errors) are skipped since
// JavaScript keeps going with Infinity or NaN.
func TestEvaluatorAgreesWithJavaScript(t *testing.T) {
	vm := goja.New()

	rapid.Check(t, func(t *rapid.T) {
		expr := drawMirrored(t, 4)

		result := Evaluate(expr.src, nil)
		if result.Kind == ResultError {
			return
		}
		if result.Kind != ResultNumber {
			t.Fatalf("%q: unexpected result kind %s", expr.src, result.Kind)
		}

		value, err := vm.RunString(expr.js)
		if err != nil {
			t.Fatalf("goja %q: %v", expr.js, err)
		}
		want := value.ToFloat()

		if math.Abs(result.Value-want) > 1e-9*math.Max(1, math.Abs(want)) {
			t.Fatalf("%q = %v, JavaScript %q = %v", expr.src, result.Value, expr.js, want)
		}
	})
}
