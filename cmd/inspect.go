package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"yqhp/math-engine/internal/expression"
)

// validateCmd 是 validate 子命令
var validateCmd = &cobra.Command{
	Use:   "validate <expression>",
	Short: "检查表达式语法",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

// tokensCmd 是 tokens 子命令
var tokensCmd = &cobra.Command{
	Use:   "tokens <expression>",
	Short: "输出表达式的词法单元和语法树",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(tokensCmd)
}

type diagnosticJSON struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
	Length   int    `json:"length"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	input := joinArgs(args)
	diagnostics := expression.Validate(input)

	w := cmd.OutOrStdout()
	if jsonOutput {
		items := make([]diagnosticJSON, 0, len(diagnostics))
		for _, d := range diagnostics {
			items = append(items, diagnosticJSON{Message: d.Message, Position: d.Position, Length: d.Length})
		}
		if err := writeJSON(w, items); err != nil {
			return err
		}
	} else if len(diagnostics) == 0 {
		fmt.Fprintln(w, "ok")
	} else {
		for _, d := range diagnostics {
			fmt.Fprintln(w, d.Error())
			fmt.Fprintln(w, input)
			fmt.Fprintln(w, strings.Repeat(" ", d.Position)+strings.Repeat("^", max(d.Length, 1)))
		}
	}

	if len(diagnostics) > 0 {
		return errFailed
	}
	return nil
}

func runTokens(cmd *cobra.Command, args []string) error {
	input := joinArgs(args)
	tokens, err := expression.Tokenize(input)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, tok := range tokens {
		fmt.Fprintf(w, "%-4d %-16s %s\n", tok.Pos.Offset, tok.Type, tok.Literal)
	}

	node, err := expression.ParseTokens(tokens)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "ast: %s\n", node)
	fmt.Fprintf(w, "nodes: %d\n", expression.NodeCount(node))
	if vars := expression.Variables(node); len(vars) > 0 {
		fmt.Fprintf(w, "variables: %s\n", strings.Join(vars, ", "))
	}
	return nil
}
