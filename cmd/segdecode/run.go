package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/segdecode/internal/app/run"
	"github.com/John-Robertt/segdecode/internal/config"
	"github.com/John-Robertt/segdecode/internal/domain"
	"github.com/John-Robertt/segdecode/internal/provider"
	"github.com/John-Robertt/segdecode/internal/provider/example"
	"github.com/John-Robertt/segdecode/internal/provider/puzzle"
)

// inputFlags 是 run/count 共用的输入相关 flag。
type inputFlags struct {
	source      string
	day         string
	concurrency int
	onError     string
	report      string
}

func (f *inputFlags) bind(cmd *cobra.Command, withReport bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.source, "source", config.DefaultSource, "输入来源：file|input|example")
	fl.StringVar(&f.day, "day", "", `远程题目引用，例如 "2021/8"`)
	fl.IntVarP(&f.concurrency, "concurrency", "j", config.DefaultConcurrency, "并发 worker 数（截断到 [1, 32]）")
	fl.StringVar(&f.onError, "on-error", config.OnErrorFail, "单元失败时的退出策略：fail|skip")
	if withReport {
		fl.StringVar(&f.report, "report", "", "把 RunReport JSON 原子写入该路径")
	}
}

// cliArgs 只把用户显式指定的 flag 标记为 *Set，保证配置文件/环境变量不会被 flag 默认值覆盖。
func (f *inputFlags) cliArgs(a *app, cmd *cobra.Command, args []string) config.CLIArgs {
	fl := cmd.Flags()
	cli := config.CLIArgs{
		ConfigDir:      a.configDir,
		Source:         f.source,
		SourceSet:      fl.Changed("source"),
		Ref:            f.day,
		RefSet:         fl.Changed("day"),
		Concurrency:    f.concurrency,
		ConcurrencySet: fl.Changed("concurrency"),
		OnError:        f.onError,
		OnErrorSet:     fl.Changed("on-error"),
		Report:         f.report,
	}
	if len(args) > 0 {
		cli.Input = args[0]
	}
	return cli
}

func (a *app) loadConfig(cli config.CLIArgs) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, &config.Error{Code: config.ErrCodeInvalid, Err: fmt.Errorf("读取当前目录失败：%w", err)}
	}
	return config.LoadEffective(cwd, cli)
}

func newRegistry(eff config.EffectiveConfig) (provider.Registry, error) {
	return provider.NewRegistry(
		puzzle.Provider{BaseURL: eff.BaseURL},
		example.Provider{BaseURL: eff.BaseURL},
	)
}

func newRunCmd(a *app) *cobra.Command {
	var f inputFlags
	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "批量解码并汇总输出值",
		Long: `逐行推导并解码所有显示单元，输出 RunReport。

stdout 为终端时输出人类可读摘要；否则 stdout 只输出一个 RunReport JSON（日志与进度走 stderr）。
input 省略或为 "-" 时读取 stdin。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := f.cliArgs(a, cmd, args)
			eff, err := a.loadConfig(cli)
			if err != nil {
				a.emitReport(reportForConfigError(cli, err))
				a.exitCode = 1
				return nil
			}

			reg, err := newRegistry(eff)
			if err != nil {
				fmt.Fprintf(a.stderr, "初始化 provider registry 失败：%v\n", err)
				a.exitCode = 1
				return nil
			}

			progressW, interactive := a.pickProgressWriter()
			var obs run.Observer
			if interactive {
				obs = newProgressUI(progressW)
			}

			rr := run.ExecuteWithObserver(cmd.Context(), eff, reg, a.stdin, obs)

			if eff.Report != "" {
				if err := writeReportFile(eff.Report, rr); err != nil {
					fmt.Fprintf(a.stderr, "写入 report 失败：%v\n", err)
					a.emitReport(rr)
					a.exitCode = 1
					return nil
				}
			}

			a.emitReport(rr)
			if interactive && eff.Report != "" {
				fmt.Fprintf(progressW, "report: %s\n", eff.Report)
			}
			if run.ShouldFail(rr, eff.OnError) {
				a.exitCode = 1
			}
			return nil
		},
	}
	f.bind(cmd, true)
	return cmd
}

func reportForConfigError(cli config.CLIArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Input:      cli.Input,
		Source:     cli.Source,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.UnitResult{{
			Status:    domain.StatusFailed,
			Digits:    []int{},
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
		}},
	}
	if rr.Items[0].ErrorCode == "" {
		rr.Items[0].ErrorCode = domain.ErrCodeConfigInvalid
	}
	rr.Finalize()
	return rr
}
