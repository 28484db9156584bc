package nlp

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/duke-git/lancet/v2/strutil"

	"yqhp/math-engine/internal/expression"
	"yqhp/math-engine/internal/symbolic"
)

// Translation is the formal form of a natural-language question.
type Translation struct {
	Expression string
	Operation  symbolic.Operation
	// Variable is empty when the operation does not need one.
	Variable     string
	DidTranslate bool
	// Matcher names the rule that produced the translation.
	Matcher string
}

// matcher returns a translation when it recognizes text.
type matcher struct {
	name  string
	match func(text string) (Translation, bool)
}

// Translator rewrites natural language into formal expressions.
// The first matcher that recognizes the text wins.
type Translator struct {
	matchers []matcher
}

// NewTranslator creates a Translator with the default cascade.
func NewTranslator() *Translator {
	return &Translator{matchers: []matcher{
		{"calculus", matchDerivative},
		{"integral", matchIntegral},
		{"limit", matchLimit},
		{"algebra", matchAlgebra},
		{"statistics", matchStatistics},
		{"linear_algebra", matchLinearAlgebra},
		{"percentage", matchPercentage},
		{"root", matchRoot},
		{"power", matchPower},
		{"logarithm", matchLogarithm},
		{"trigonometry", matchTrigonometry},
		{"arithmetic", matchArithmetic},
		{"constant", matchConstant},
		{"factorial", matchFactorial},
		{"absolute_value", matchAbsoluteValue},
	}}
}

// Translate never fails. Input that is already a formal expression is
// returned unchanged with DidTranslate false.
func (t *Translator) Translate(text string) Translation {
	trimmed := strings.TrimSpace(text)
	if IsFormal(trimmed) {
		return Translation{Expression: trimmed, Operation: symbolic.OpEvaluate, Matcher: "passthrough"}
	}

	normalized := normalize(trimmed)
	for _, m := range t.matchers {
		if tr, ok := m.match(normalized); ok {
			tr.DidTranslate = true
			tr.Matcher = m.name
			return tr
		}
	}
	return fallback(trimmed)
}

// IsFormal reports whether text already looks like a formal expression: it
// starts with a digit or a known function name, contains an operator and
// has nothing but digits, letters, operators, brackets and whitespace.
func IsFormal(text string) bool {
	if text == "" || !strings.ContainsAny(text, "+-*/^=") {
		return false
	}

	first := rune(text[0])
	if !unicode.IsDigit(first) && !startsWithFunction(text) {
		return false
	}

	for _, r := range text {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r)):
		case strings.ContainsRune("+-*/^=().,", r):
		default:
			return false
		}
	}
	return true
}

// startsWithFunction reports whether text opens with a function call such as
// "sin(" or "sin (x)".
func startsWithFunction(text string) bool {
	end := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	if end <= 0 || !strings.HasPrefix(strings.TrimLeft(text[end:], " \t"), "(") {
		return false
	}
	name := text[:end]
	if _, ok := expression.LookupFunction(name); ok {
		return true
	}
	return expression.IsSymbolicFunction(name)
}

var trailingPunct = regexp.MustCompile(`[?.]+$`)

// normalize lowercases, drops trailing punctuation and collapses spaces.
func normalize(text string) string {
	text = strings.ToLower(text)
	text = trailingPunct.ReplaceAllString(text, "")
	return strings.TrimSpace(multiSpaces.ReplaceAllString(text, " "))
}

// prefix matches the filler that commonly opens a question.
const prefix = `^(?:(?:what is|what's|whats|find|calculate|compute|evaluate|determine|give me) )?(?:the )?`

var (
	derivativeRe = regexp.MustCompile(prefix + `(?:derivative of|differentiate|diff) (.+?)(?: with respect to ([a-z]\w*))?$`)
	integralRe   = regexp.MustCompile(prefix + `(?:integral of|integrate|antiderivative of) (.+?)(?: d([a-z]))?(?: with respect to ([a-z]\w*))?$`)
	limitRe      = regexp.MustCompile(prefix + `limit of (.+?) as ([a-z]\w*) (?:approaches|goes to|tends to|->) (.+)$`)
	factorRe     = regexp.MustCompile(prefix + `(factor|expand) (.+)$`)
	simplifyRe   = regexp.MustCompile(prefix + `simplify (.+)$`)
	solveRe      = regexp.MustCompile(prefix + `solve (.+?)(?: for ([a-z]\w*))?$`)
	statisticsRe = regexp.MustCompile(prefix + `(mean|average|median|mode|variance|standard deviation|std dev|stddev) of (.+)$`)
	linearRe     = regexp.MustCompile(prefix + `(determinant|inverse|transpose) of (.+)$`)
	percentRe    = regexp.MustCompile(prefix + `(-?\d+(?:\.\d+)?) ?(?:percent|%) of (-?\d+(?:\.\d+)?)$`)
	sqrtRe       = regexp.MustCompile(prefix + `(?:square root of|sqrt) (.+)$`)
	cbrtRe       = regexp.MustCompile(prefix + `(?:cube root of|cbrt) (.+)$`)
	nthRootRe    = regexp.MustCompile(prefix + `(\d+)(?:st|nd|rd|th) root of (.+)$`)
	powerRe      = regexp.MustCompile(prefix + `(.+?) (?:to the power of|raised to the power of|raised to|\^) (.+)$`)
	squaredRe    = regexp.MustCompile(prefix + `(.+?) (squared|cubed)$`)
	logBaseRe    = regexp.MustCompile(prefix + `(?:log|logarithm) base (\S+) of (.+)$`)
	lnRe         = regexp.MustCompile(prefix + `(?:natural log(?:arithm)?|ln) (?:of )?(.+)$`)
	logRe        = regexp.MustCompile(prefix + `(?:log|logarithm) (?:of )?(.+)$`)
	trigRe       = regexp.MustCompile(prefix + `(arcsine|arccosine|arctangent|arcsin|arccos|arctan|asin|acos|atan|sine|cosine|tangent|sin|cos|tan) (?:of )?(.+)$`)
	arithmeticRe = regexp.MustCompile(`^(?:(?:what is|what's|whats|calculate|compute) )?(.+? (?:plus|minus|times|multiplied by|divided by|over) .+)$`)
	constantRe   = regexp.MustCompile(prefix + `(pi|euler's number|eulers number|euler number|e)$`)
	factorialRe  = regexp.MustCompile(prefix + `(?:factorial of (.+)|(.+?) factorial|(\d+)!)$`)
	absoluteRe   = regexp.MustCompile(prefix + `absolute value of (.+)$`)
)

var wordOperators = []replacement{
	phrase("to the power of", "^"),
	phrase("multiplied by", "*"),
	phrase("divided by", "/"),
	phrase("times", "*"),
	phrase("plus", "+"),
	phrase("minus", "-"),
	phrase("over", "/"),
	phrase("squared", "^2"),
	phrase("cubed", "^3"),
	phrase("equals", "="),
}

// mathText rewrites word operators inside a captured fragment.
func mathText(s string) string {
	for _, r := range wordOperators {
		s = r.pattern.ReplaceAllString(s, r.with)
	}
	return strings.TrimSpace(multiSpaces.ReplaceAllString(s, " "))
}

// group parenthesizes s unless it is a single atom or already enclosed.
func group(s string) string {
	atom := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	}) < 0
	if atom || enclosed(s) {
		return s
	}
	return "(" + s + ")"
}

// enclosed reports whether the opening parenthesis of s closes at its last byte.
func enclosed(s string) bool {
	if !strings.HasPrefix(s, "(") {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

func call(fn, arg string) string {
	return fn + "(" + mathText(arg) + ")"
}

func evaluate(expr string) Translation {
	return Translation{Expression: expr, Operation: symbolic.OpEvaluate}
}

func matchDerivative(text string) (Translation, bool) {
	m := derivativeRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	return Translation{
		Expression: mathText(m[1]),
		Operation:  symbolic.OpDifferentiate,
		Variable:   orDefault(m[2]),
	}, true
}

func matchIntegral(text string) (Translation, bool) {
	m := integralRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	variable := m[3]
	if variable == "" {
		variable = m[2]
	}
	return Translation{
		Expression: mathText(m[1]),
		Operation:  symbolic.OpIntegrate,
		Variable:   orDefault(variable),
	}, true
}

func matchLimit(text string) (Translation, bool) {
	m := limitRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	point := mathText(m[3])
	switch point {
	case "infinity", "inf":
		point = "oo"
	case "-infinity", "negative infinity", "-inf":
		point = "-oo"
	}
	return evaluate(fmt.Sprintf("limit(%s, %s, %s)", mathText(m[1]), m[2], point)), true
}

func matchAlgebra(text string) (Translation, bool) {
	if m := factorRe.FindStringSubmatch(text); m != nil {
		return Translation{Expression: call(m[1], m[2]), Operation: symbolic.OpSimplify}, true
	}
	if m := simplifyRe.FindStringSubmatch(text); m != nil {
		return Translation{Expression: mathText(m[1]), Operation: symbolic.OpSimplify}, true
	}
	if m := solveRe.FindStringSubmatch(text); m != nil {
		expr := mathText(m[1])
		variable := m[2]
		if variable == "" {
			variable = firstVariable(expr)
		}
		return Translation{Expression: expr, Operation: symbolic.OpSolve, Variable: orDefault(variable)}, true
	}
	return Translation{}, false
}

var statisticsNames = map[string]string{
	"mean":               "mean",
	"average":            "mean",
	"median":             "median",
	"mode":               "mode",
	"variance":           "variance",
	"standard deviation": "stddev",
	"std dev":            "stddev",
	"stddev":             "stddev",
}

var listSeparator = regexp.MustCompile(`\s*(?:,|\band\b)\s*|\s+`)

func matchStatistics(text string) (Translation, bool) {
	m := statisticsRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	values := slice.Filter(listSeparator.Split(m[2], -1), func(_ int, v string) bool {
		return !strutil.IsBlank(v)
	})
	if len(values) == 0 {
		return Translation{}, false
	}
	return evaluate(statisticsNames[m[1]] + "(" + strings.Join(values, ", ") + ")"), true
}

var linearNames = map[string]string{
	"determinant": "det",
	"inverse":     "inverse",
	"transpose":   "transpose",
}

func matchLinearAlgebra(text string) (Translation, bool) {
	m := linearRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	return evaluate(linearNames[m[1]] + "(" + strings.TrimSpace(m[2]) + ")"), true
}

func matchPercentage(text string) (Translation, bool) {
	m := percentRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	return evaluate(fmt.Sprintf("%s * %s / 100", m[2], m[1])), true
}

func matchRoot(text string) (Translation, bool) {
	if m := sqrtRe.FindStringSubmatch(text); m != nil {
		return evaluate(call("sqrt", m[1])), true
	}
	if m := cbrtRe.FindStringSubmatch(text); m != nil {
		return evaluate(call("cbrt", m[1])), true
	}
	if m := nthRootRe.FindStringSubmatch(text); m != nil {
		return evaluate(fmt.Sprintf("%s^(1/%s)", group(mathText(m[2])), m[1])), true
	}
	return Translation{}, false
}

// matchPower raises only the last operand of the base, the way "^" binds
// after standardization, so "2 plus 3 squared" is 2 + 3^2 on both paths.
func matchPower(text string) (Translation, bool) {
	if m := powerRe.FindStringSubmatch(text); m != nil {
		return evaluate(mathText(m[1]) + "^" + group(mathText(m[2]))), true
	}
	if m := squaredRe.FindStringSubmatch(text); m != nil {
		exp := "2"
		if m[2] == "cubed" {
			exp = "3"
		}
		return evaluate(mathText(m[1]) + "^" + exp), true
	}
	return Translation{}, false
}

func matchLogarithm(text string) (Translation, bool) {
	if m := logBaseRe.FindStringSubmatch(text); m != nil {
		return evaluate(fmt.Sprintf("log(%s) / log(%s)", mathText(m[2]), m[1])), true
	}
	if m := lnRe.FindStringSubmatch(text); m != nil {
		return evaluate(call("ln", m[1])), true
	}
	if m := logRe.FindStringSubmatch(text); m != nil {
		return evaluate(call("log", m[1])), true
	}
	return Translation{}, false
}

var trigNames = map[string]string{
	"sine":       "sin",
	"cosine":     "cos",
	"tangent":    "tan",
	"arcsine":    "asin",
	"arccosine":  "acos",
	"arctangent": "atan",
	"arcsin":     "asin",
	"arccos":     "acos",
	"arctan":     "atan",
}

func matchTrigonometry(text string) (Translation, bool) {
	m := trigRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	fn := m[1]
	if name, ok := trigNames[fn]; ok {
		fn = name
	}
	return evaluate(call(fn, m[2])), true
}

func matchArithmetic(text string) (Translation, bool) {
	m := arithmeticRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	return evaluate(mathText(m[1])), true
}

func matchConstant(text string) (Translation, bool) {
	m := constantRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	if m[1] == "pi" {
		return evaluate("pi"), true
	}
	return evaluate("e"), true
}

func matchFactorial(text string) (Translation, bool) {
	m := factorialRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	arg := m[1]
	if arg == "" {
		arg = m[2]
	}
	if arg == "" {
		arg = m[3]
	}
	return evaluate(call("factorial", arg)), true
}

func matchAbsoluteValue(text string) (Translation, bool) {
	m := absoluteRe.FindStringSubmatch(text)
	if m == nil {
		return Translation{}, false
	}
	return evaluate(call("abs", m[1])), true
}

var questionPrefix = regexp.MustCompile(`^(?:what is|what's|whats)(?:\s+|$)`)

// fallback rewrites word operators and returns whatever remains.
func fallback(text string) Translation {
	cleaned := normalize(text)
	cleaned = questionPrefix.ReplaceAllString(cleaned, "")
	cleaned = mathText(cleaned)
	if cleaned == "" {
		return Translation{Expression: text, Operation: symbolic.OpEvaluate, Matcher: "fallback"}
	}
	return Translation{Expression: cleaned, Operation: symbolic.OpEvaluate, DidTranslate: true, Matcher: "fallback"}
}

// firstVariable returns the first variable of expr, or "" if there is none.
func firstVariable(expr string) string {
	tokens, err := expression.Tokenize(expr)
	if err != nil {
		return ""
	}
	for _, tok := range tokens {
		if tok.Type == expression.TokenVariable {
			return tok.Literal
		}
	}
	return ""
}

func orDefault(variable string) string {
	if variable == "" {
		return symbolic.DefaultVariable
	}
	return variable
}
