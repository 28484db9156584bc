package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"yqhp/math-engine/internal/symbolic"
)

func TestPipeline_Process(t *testing.T) {
	pipeline := NewPipeline(zap.NewNop())

	tests := []struct {
		input     string
		expr      string
		operation symbolic.Operation
		variable  string
		translate bool
	}{
		{input: "square root of 144", expr: "sqrt(144)", operation: symbolic.OpEvaluate, translate: true},
		{input: "Derivitive of x^3", expr: "x^3", operation: symbolic.OpDifferentiate, variable: "x", translate: true},
		{input: "15 percent of 200", expr: "200 * 15 / 100", operation: symbolic.OpEvaluate, translate: true},
		{input: "what is 5 plus 3?", expr: "5 + 3", operation: symbolic.OpEvaluate, translate: true},
		{input: "x + 2 = 5", expr: "x + 2 = 5", operation: symbolic.OpSolve, variable: "x", translate: true},
		{input: "2 + 3 * 4", expr: "2 + 3 * 4", operation: symbolic.OpEvaluate, translate: false},
		{input: "3x - 5 = 16", expr: "3x - 5 = 16", operation: symbolic.OpEvaluate, translate: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := pipeline.Process(tt.input)
			assert.Equal(t, tt.input, res.Original)
			assert.Equal(t, tt.expr, res.Expression)
			assert.Equal(t, tt.operation, res.Operation)
			assert.Equal(t, tt.variable, res.Variable)
			assert.Equal(t, tt.translate, res.DidTranslate)
		})
	}
}

func TestPipeline_Stages(t *testing.T) {
	res := NewPipeline(zap.NewNop()).Process("sqaure root of 144")

	assert.Equal(t, "square root of 144", res.Corrected)
	assert.Equal(t, "sqrt 144", res.Standardized)
	assert.Equal(t, "root", res.Matcher)
}
