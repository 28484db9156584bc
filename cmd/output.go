package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/ohler55/ojg/jp"

	"yqhp/math-engine/internal/dispatcher"
	"yqhp/math-engine/internal/expression"
	"yqhp/math-engine/internal/nlp"
)

// errFailed 表示结果已输出但命令应以非零状态退出
var errFailed = errors.New("evaluation failed")

// outcomeJSON 是 --json 模式下的求值结果
type outcomeJSON struct {
	RequestID   string   `json:"request_id"`
	Expression  string   `json:"expression"`
	Kind        string   `json:"kind"`
	Value       *float64 `json:"value,omitempty"`
	Text        string   `json:"text,omitempty"`
	LaTeX       string   `json:"latex,omitempty"`
	Message     string   `json:"message,omitempty"`
	Issue       string   `json:"issue,omitempty"`
	Engine      string   `json:"engine"`
	FellBack    bool     `json:"fell_back"`
	NodeCount   int      `json:"node_count"`
	ParseTimeUs int64    `json:"parse_time_us"`
	EvalTimeUs  int64    `json:"eval_time_us"`
	TotalTimeUs int64    `json:"total_time_us"`

	Translation *translationJSON `json:"translation,omitempty"`
}

type translationJSON struct {
	Input        string `json:"input"`
	Standardized string `json:"standardized,omitempty"`
	Expression   string `json:"expression"`
	Operation    string `json:"operation"`
	Variable     string `json:"variable,omitempty"`
	DidTranslate bool   `json:"did_translate"`
	Matcher      string `json:"matcher"`
}

func newTranslationJSON(res nlp.Result) *translationJSON {
	return &translationJSON{
		Input:        res.Original,
		Standardized: res.Standardized,
		Expression:   res.Expression,
		Operation:    res.Operation.String(),
		Variable:     res.Variable,
		DidTranslate: res.DidTranslate,
		Matcher:      res.Matcher,
	}
}

func newOutcomeJSON(out *dispatcher.Outcome) *outcomeJSON {
	o := &outcomeJSON{
		RequestID:   out.RequestID,
		Expression:  out.Expression,
		Kind:        out.Result.Kind.String(),
		Text:        out.Result.Text,
		LaTeX:       out.Result.LaTeX,
		Message:     out.Result.Message,
		Engine:      out.Engine.String(),
		FellBack:    out.FellBack,
		NodeCount:   out.NodeCount,
		ParseTimeUs: out.ParseTime.Microseconds(),
		EvalTimeUs:  out.EvaluationTime.Microseconds(),
		TotalTimeUs: out.TotalTime.Microseconds(),
	}
	if out.Result.Kind == expression.ResultNumber {
		v := out.Result.Value
		o.Value = &v
	}
	if out.Result.Issue != nil {
		o.Issue = out.Result.Issue.String()
	}
	return o
}

func writeJSON(w io.Writer, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化结果失败: %w", err)
	}
	if queryFlag != "" {
		return writeQuery(w, data, queryFlag)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeQuery 输出 JSONPath 匹配到的值，字符串不加引号，每个值一行
func writeQuery(w io.Writer, data []byte, query string) error {
	path, err := jp.ParseString(query)
	if err != nil {
		return fmt.Errorf("无效的 JSONPath 表达式 '%s': %w", query, err)
	}

	var doc any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("解析 JSON 失败: %w", err)
	}

	results := path.Get(doc)
	if len(results) == 0 {
		return fmt.Errorf("JSONPath '%s' 没有匹配结果", query)
	}
	for _, r := range results {
		if s, ok := r.(string); ok {
			fmt.Fprintln(w, s)
			continue
		}
		b, err := sonic.Marshal(r)
		if err != nil {
			return fmt.Errorf("序列化结果失败: %w", err)
		}
		fmt.Fprintln(w, string(b))
	}
	return nil
}

// writeOutcome 输出求值结果，失败时返回 errFailed
func writeOutcome(w io.Writer, out *dispatcher.Outcome) error {
	var parseErr *expression.ParseError
	switch {
	case errors.As(out.Err, &parseErr):
		fmt.Fprintln(w, parseErr.Error())
		if parseErr.Kind != expression.ErrEmptyExpression {
			fmt.Fprintln(w, parseErr.Caret(out.Expression))
		}
	case out.Result.Succeeded():
		fmt.Fprintln(w, out.Result.String())
		if out.Result.LaTeX != "" && out.Result.LaTeX != out.Result.Text {
			fmt.Fprintf(w, "latex: %s\n", out.Result.LaTeX)
		}
	default:
		fmt.Fprintf(w, "error: %s\n", out.Result.Message)
	}

	if debug {
		fmt.Fprintf(w, "engine=%s fell_back=%t nodes=%d parse=%s eval=%s total=%s\n",
			out.Engine, out.FellBack, out.NodeCount, out.ParseTime, out.EvaluationTime, out.TotalTime)
	}

	if !out.Result.Succeeded() {
		return errFailed
	}
	return nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
