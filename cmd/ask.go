package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"yqhp/math-engine/internal/dispatcher"
)

// askCmd 是 ask 子命令
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "回答自然语言数学问题",
	Long:  `纠正拼写、标准化并翻译自然语言问题，然后计算翻译得到的表达式。`,
	Example: `  mathengine ask "square root of 144"
  mathengine ask "derivative of x^3"
  mathengine ask "what is 15 percent of 200?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// translateCmd 是 translate 子命令
var translateCmd = &cobra.Command{
	Use:   "translate <question>",
	Short: "把自然语言问题翻译为表达式（不计算）",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTranslate,
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(translateCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	res := app.pipeline.Process(joinArgs(args))

	out := app.dispatcher.Dispatch(cmd.Context(), dispatcher.Request{
		Expression: res.Expression,
		Operation:  res.Operation,
		Variable:   res.Variable,
	})

	w := cmd.OutOrStdout()
	if jsonOutput {
		o := newOutcomeJSON(out)
		o.Translation = newTranslationJSON(res)
		if err := writeJSON(w, o); err != nil {
			return err
		}
		if !out.Result.Succeeded() {
			return errFailed
		}
		return nil
	}

	if res.DidTranslate {
		fmt.Fprintf(w, "%s: %s\n", res.Operation, res.Expression)
	}
	return writeOutcome(w, out)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	res := app.pipeline.Process(joinArgs(args))

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, newTranslationJSON(res))
	}

	fmt.Fprintf(w, "expression: %s\n", res.Expression)
	fmt.Fprintf(w, "operation:  %s\n", res.Operation)
	if res.Variable != "" {
		fmt.Fprintf(w, "variable:   %s\n", res.Variable)
	}
	fmt.Fprintf(w, "translated: %t (%s)\n", res.DidTranslate, res.Matcher)
	return nil
}
