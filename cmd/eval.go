package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"yqhp/math-engine/internal/dispatcher"
	"yqhp/math-engine/internal/symbolic"
)

var (
	// eval 命令的 flags
	evalVars      []string
	evalOperation string
	evalVariable  string
)

// evalCmd 是 eval 子命令
var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "解析并计算表达式",
	Long: `解析并计算一个公式表达式。

数值模式下，方程、未定义变量和符号函数会回退到符号计算服务。
指定 --op 时（solve, differentiate, integrate, simplify）总是使用符号计算服务。`,
	Example: `  mathengine eval "2 + 3 * 4"
  mathengine eval "2x + 1" --var x=4
  mathengine eval "3*x - 5 = 16"
  mathengine eval "x^3" --op differentiate`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringArrayVar(&evalVars, "var", nil, "变量赋值 name=value (可多次指定)")
	evalCmd.Flags().StringVar(&evalOperation, "op", "evaluate", "操作 (evaluate, solve, differentiate, integrate, simplify)")
	evalCmd.Flags().StringVar(&evalVariable, "variable", "", "solve/differentiate/integrate 的变量")
}

// parseVars 解析 name=value 形式的变量赋值
func parseVars(pairs []string) (map[string]float64, error) {
	vars := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("无效的变量赋值 %q，格式应为 name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("变量 %s 的值无效: %w", name, err)
		}
		vars[name] = v
	}
	return vars, nil
}

func runEval(cmd *cobra.Command, args []string) error {
	vars, err := parseVars(evalVars)
	if err != nil {
		return err
	}
	op := symbolic.Operation(evalOperation)
	if !op.Valid() {
		return fmt.Errorf("%w: %q", symbolic.ErrInvalidOperation, evalOperation)
	}

	out := app.dispatcher.Dispatch(cmd.Context(), dispatcher.Request{
		Expression: joinArgs(args),
		Operation:  op,
		Variable:   evalVariable,
		Variables:  vars,
	})

	if jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), newOutcomeJSON(out)); err != nil {
			return err
		}
		if !out.Result.Succeeded() {
			return errFailed
		}
		return nil
	}
	return writeOutcome(cmd.OutOrStdout(), out)
}
