package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/John-Robertt/segdecode/internal/logging"
)

// 由 -ldflags "-X main.version=..." 注入。
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app 持有一次 CLI 调用的 I/O 与全局 flag。
//
// 子命令自己处理运行期失败（输出 report、设置 exitCode）并返回 nil；
// 返回给 cobra 的 error 只可能是参数错误，统一映射为退出码 2。
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	verbosity int
	configDir string

	exitCode int
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n", err)
		fmt.Fprintln(stderr, `使用 "segdecode --help" 查看用法。`)
		return 2
	}
	return a.exitCode
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "segdecode",
		Short: "七段数码管乱序信号解码器",
		Long: `segdecode 读取七段数码管的乱序信号记录（每行 "10 个参考组合 | 4 个输出组合"），
逐行推导段线映射，解码输出值并汇总。

输入可以是本地文件、stdin，或按 year/day 从题目站点抓取（带本地缓存）。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(a.verbosity, a.stderr)
			log.Debug().Str("command", cmd.Name()).Msg("命令开始")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "日志详细程度（-v INFO，-vv DEBUG，-vvv TRACE）")
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "配置文件所在目录（必须包含 segdecode.toml 或 segdecode.yaml）")

	root.AddCommand(newRunCmd(a), newCountCmd(a), newExplainCmd(a), newVersionCmd(a))
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "打印版本信息",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "segdecode version %s\n", version)
			fmt.Fprintf(a.stdout, "  commit: %s\n", commit)
			fmt.Fprintf(a.stdout, "  built:  %s\n", date)
		},
	}
}
