// Package cmd 提供 mathengine CLI 的命令实现
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yqhp/math-engine/internal/config"
	"yqhp/math-engine/internal/dispatcher"
	"yqhp/math-engine/internal/nlp"
	"yqhp/math-engine/internal/symbolic"
	"yqhp/math-engine/pkg/logger"
)

// Version 是当前版本号
const Version = "0.1.0"

var (
	// 全局配置
	cfgFile     string
	debug       bool
	jsonOutput  bool
	queryFlag   string
	modeFlag    string
	symbolicURL string
	timeoutFlag time.Duration
	noFallback  bool

	// 由 PersistentPreRunE 初始化
	app *application
)

// application 持有一次命令执行所需的组件
type application struct {
	cfg        *config.Config
	client     *symbolic.Client
	dispatcher *dispatcher.Dispatcher
	pipeline   *nlp.Pipeline
	log        *zap.Logger
}

// rootCmd 是根命令
var rootCmd = &cobra.Command{
	Use:   "mathengine",
	Short: "数学表达式解析与求值引擎",
	Long: `mathengine 把公式或自然语言数学问题转换为表达式树并求值。
数值引擎无法处理的请求（方程、未定义变量、符号函数）会交给符号计算服务。`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute 执行根命令
func Execute() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		// errFailed 对应的结果已经输出
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "启用调试日志")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "以 JSON 输出结果")
	rootCmd.PersistentFlags().StringVar(&queryFlag, "query", "", "用 JSONPath 过滤 JSON 输出 (隐含 --json)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "求值模式 (numeric, symbolic)")
	rootCmd.PersistentFlags().StringVar(&symbolicURL, "symbolic-url", "", "符号计算服务地址")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "符号计算请求超时")
	rootCmd.PersistentFlags().BoolVar(&noFallback, "no-fallback", false, "禁用数值模式下的符号回退")

	// 禁用默认的 completion 命令
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("mathengine version {{.Version}}\n")
}

// cmdOverrides 把命令行参数转换为配置覆盖项
func cmdOverrides() map[string]string {
	overrides := make(map[string]string)
	if debug {
		overrides["logging.level"] = "debug"
	}
	if modeFlag != "" {
		overrides["engine.mode"] = modeFlag
	}
	if symbolicURL != "" {
		overrides["symbolic.base_url"] = symbolicURL
	}
	if timeoutFlag > 0 {
		overrides["symbolic.timeout"] = timeoutFlag.String()
	}
	if noFallback {
		overrides["engine.fallback"] = "false"
	}
	return overrides
}

func setup(cmd *cobra.Command, args []string) error {
	if queryFlag != "" {
		jsonOutput = true
	}

	cfg, err := config.NewLoader().
		WithConfigPath(cfgFile).
		WithCmdArgs(cmdOverrides()).
		Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.SetLogger(logger.New(cfg.Logging.LoggerConfig()))
	log := logger.L()

	mode, _ := dispatcher.ParseMode(cfg.Engine.Mode)
	opts := []dispatcher.Option{
		dispatcher.WithMode(mode),
		dispatcher.WithFallback(cfg.Engine.Fallback),
		dispatcher.WithLogger(log),
	}

	a := &application{
		cfg:      cfg,
		pipeline: nlp.NewPipeline(log),
		log:      log,
	}

	// 未启用符号服务时不传 Solver，符号请求会得到 Error 结果
	var solver symbolic.Solver
	if cfg.Symbolic.Enabled {
		clientCfg := cfg.Symbolic.ClientConfig()
		clientCfg.Logger = log
		a.client = symbolic.NewClient(clientCfg)
		solver = a.client
	}
	a.dispatcher = dispatcher.New(solver, opts...)

	app = a
	return nil
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}
