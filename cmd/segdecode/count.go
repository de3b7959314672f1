package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/segdecode/internal/app/run"
	"github.com/John-Robertt/segdecode/internal/config"
	"github.com/John-Robertt/segdecode/internal/decode"
	"github.com/John-Robertt/segdecode/internal/notes"
	"github.com/John-Robertt/segdecode/internal/segment"
)

// newCountCmd 只统计输出中段数唯一的数字（1/4/7/8），不做推导。
func newCountCmd(a *app) *cobra.Command {
	var f inputFlags
	cmd := &cobra.Command{
		Use:   "count [input]",
		Short: "统计输出中 1/4/7/8 的出现次数",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := a.loadConfig(f.cliArgs(a, cmd, args))
			if err != nil {
				fmt.Fprintf(a.stderr, "%v\n", err)
				a.exitCode = 1
				return nil
			}
			reg, err := newRegistry(eff)
			if err != nil {
				fmt.Fprintf(a.stderr, "初始化 provider registry 失败：%v\n", err)
				a.exitCode = 1
				return nil
			}

			in, err := run.LoadInput(cmd.Context(), eff, reg, a.stdin)
			if err != nil {
				fmt.Fprintf(a.stderr, "读取输入失败：%v\n", err)
				a.exitCode = 1
				return nil
			}
			units, bad, err := notes.Parse(bytes.NewReader(in.Text), eff.Width)
			if err != nil {
				fmt.Fprintf(a.stderr, "读取输入失败：%v\n", err)
				a.exitCode = 1
				return nil
			}

			failed := len(bad)
			for _, re := range bad {
				fmt.Fprintf(a.stderr, "line %d %s: %s\n", re.Line, decode.ErrorCode(re), re.Reason)
			}
			easy := 0
			for _, u := range units {
				outputs, _, err := segment.ParseAll(u.Outputs)
				if err != nil {
					failed++
					fmt.Fprintf(a.stderr, "line %d %s: %v\n", u.Line, decode.ErrorCode(err), err)
					continue
				}
				easy += decode.CountEasy(outputs)
			}

			if isTTY(a.stdout) {
				st := newStyles(true)
				fmt.Fprintf(a.stdout, "%s %s\n", st.label.Render("easy digits"), st.value.Render(formatInt(easy)))
			} else {
				fmt.Fprintln(a.stdout, easy)
			}
			if failed > 0 && eff.OnError != config.OnErrorSkip {
				a.exitCode = 1
			}
			return nil
		},
	}
	f.bind(cmd, false)
	return cmd
}
