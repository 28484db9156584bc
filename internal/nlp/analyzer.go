// Package nlp turns natural-language math questions into formal expressions.
//
// Text goes through the Analyzer (spell correction, then standardization)
// and then the Translator, an ordered cascade of pattern matchers.
package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/duke-git/lancet/v2/slice"
	"github.com/duke-git/lancet/v2/strutil"
)

// Vocabulary is the fixed set of words the spell corrector knows.
// Ties between equally distant words resolve to the earlier entry.
var Vocabulary = []string{
	// operations
	"derivative", "differentiate", "diff", "integral", "integrate", "limit",
	"approaches", "goes", "tends", "infinity",
	"factor", "expand", "simplify", "solve", "evaluate", "calculate", "compute",
	// statistics
	"mean", "average", "median", "mode", "variance", "standard", "deviation",
	// linear algebra
	"determinant", "inverse", "transpose", "matrix",
	// functions
	"square", "cube", "root", "power", "squared", "cubed", "logarithm", "log",
	"natural", "base", "sine", "cosine", "tangent", "sin", "cos", "tan",
	"arcsin", "arccos", "arctan", "sqrt", "cbrt", "ln", "exp", "abs",
	"factorial", "absolute", "value",
	"percent",
	// arithmetic
	"plus", "minus", "times", "multiplied", "divided", "over", "equals",
	// constants
	"pi", "euler",
	// connectives
	"what", "is", "of", "the", "with", "respect", "to", "for", "as", "by",
	"and", "raised", "find", "at", "in", "an",
}

// replacement is a literal phrase rewrite applied on word boundaries.
type replacement struct {
	pattern *regexp.Regexp
	with    string
}

func phrase(from, to string) replacement {
	return replacement{
		pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(from) + `\b`),
		with:    to,
	}
}

// standardizations run in order; longer phrases come before their prefixes.
var standardizations = []replacement{
	phrase("square root of", "sqrt"),
	phrase("cube root of", "cbrt"),
	phrase("the derivative of", "diff"),
	phrase("derivative of", "diff"),
	phrase("natural logarithm of", "ln"),
	phrase("natural log of", "ln"),
	phrase("to the power of", "^"),
	phrase("raised to", "^"),
	phrase("multiplied by", "*"),
	phrase("divided by", "/"),
	phrase("is equal to", "="),
	phrase("equals", "="),
	phrase("times", "*"),
	phrase("plus", "+"),
	phrase("minus", "-"),
	phrase("squared", "^2"),
	phrase("cubed", "^3"),
}

var (
	solveWord   = regexp.MustCompile(`\bsolve\b`)
	multiSpaces = regexp.MustCompile(`\s+`)
)

// Analyzer corrects and standardizes natural-language input.
type Analyzer struct {
	vocabulary []string
}

// NewAnalyzer creates an Analyzer with the default vocabulary.
func NewAnalyzer() *Analyzer {
	return &Analyzer{vocabulary: Vocabulary}
}

// Analyze runs Correct and then Standardize.
func (a *Analyzer) Analyze(text string) string {
	return a.Standardize(a.Correct(text))
}

// Correct replaces misspelled words with their nearest vocabulary entry.
// Words are split on whitespace and rejoined with single spaces.
func (a *Analyzer) Correct(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		words[i] = a.correctWord(word)
	}
	return strings.Join(words, " ")
}

func (a *Analyzer) correctWord(word string) string {
	start, end := coreBounds(word)
	core := strings.ToLower(word[start:end])

	if !a.correctable(core) {
		return word
	}
	best, ok := a.nearest(core)
	if !ok {
		return word
	}
	return word[:start] + best + word[end:]
}

// correctable reports whether core is a plain word the corrector may touch.
// Numbers, single characters, known words and anything with symbols are left alone.
func (a *Analyzer) correctable(core string) bool {
	if len(core) <= 1 || isNumber(core) {
		return false
	}
	if slice.Contain(a.vocabulary, core) {
		return false
	}
	for _, r := range core {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// nearest returns the closest vocabulary word within the allowed distance.
func (a *Analyzer) nearest(core string) (string, bool) {
	best, bestDist := "", -1
	for _, candidate := range a.vocabulary {
		d := levenshtein.ComputeDistance(core, candidate)
		if bestDist < 0 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist < 0 || bestDist > 2 {
		return "", false
	}
	if len(core) < 3 && bestDist > 1 {
		return "", false
	}
	return best, true
}

// coreBounds trims surrounding punctuation, keeping apostrophes inside words.
func coreBounds(word string) (int, int) {
	isCore := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
	}
	start := strings.IndexFunc(word, isCore)
	if start < 0 {
		return 0, 0
	}
	end := strings.LastIndexFunc(word, isCore) + 1
	return start, end
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// Standardize lowercases text and rewrites common phrases into symbols.
// Text containing "=" without the word "solve" is prefixed with "solve ".
func (a *Analyzer) Standardize(text string) string {
	if strutil.IsBlank(text) {
		return ""
	}

	out := strings.ToLower(text)
	for _, r := range standardizations {
		out = r.pattern.ReplaceAllString(out, r.with)
	}
	out = strings.TrimSpace(multiSpaces.ReplaceAllString(out, " "))

	if strings.Contains(out, "=") && !solveWord.MatchString(out) {
		out = "solve " + out
	}
	return out
}
