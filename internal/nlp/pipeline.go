package nlp

import (
	"strings"

	"go.uber.org/zap"

	"yqhp/math-engine/pkg/logger"
)

// Result records every stage of processing one question.
type Result struct {
	Original     string
	Corrected    string
	Standardized string
	Translation
}

// Pipeline chains the Analyzer and the Translator.
type Pipeline struct {
	analyzer   *Analyzer
	translator *Translator
	log        *zap.Logger
}

// NewPipeline creates a pipeline with the default analyzer and translator.
// A nil logger uses the process logger.
func NewPipeline(log *zap.Logger) *Pipeline {
	if log == nil {
		log = logger.L()
	}
	return &Pipeline{
		analyzer:   NewAnalyzer(),
		translator: NewTranslator(),
		log:        log.Named("nlp"),
	}
}

// Process corrects, standardizes and translates text. DidTranslate is also
// set when only the analyzer rewrote the text.
func (p *Pipeline) Process(text string) Result {
	res := Result{Original: text}

	trimmed := strings.TrimSpace(text)
	if IsFormal(trimmed) {
		res.Corrected, res.Standardized = trimmed, trimmed
		res.Translation = p.translator.Translate(trimmed)
		return res
	}

	res.Corrected = p.analyzer.Correct(trimmed)
	res.Standardized = p.analyzer.Standardize(res.Corrected)
	res.Translation = p.translator.Translate(res.Standardized)
	if res.Translation.Expression != trimmed {
		res.DidTranslate = true
	}

	p.log.Debug("translated question",
		zap.String("input", text),
		zap.String("corrected", res.Corrected),
		zap.String("standardized", res.Standardized),
		zap.String("matcher", res.Matcher),
		zap.String("expression", res.Expression),
		zap.String("operation", res.Operation.String()))
	return res
}
