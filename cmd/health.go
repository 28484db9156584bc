package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// healthCmd 是 health 子命令
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "检查符号计算服务状态",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	if app.client == nil {
		return errors.New("符号计算服务未启用")
	}

	resp, err := app.client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("符号计算服务不可用: %w", err)
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "%s: %s (%s)\n", resp.Service, resp.Status, app.cfg.Symbolic.BaseURL)
	return nil
}
