package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/segdecode/internal/decode"
	"github.com/John-Robertt/segdecode/internal/deduce"
	"github.com/John-Robertt/segdecode/internal/notes"
	"github.com/John-Robertt/segdecode/internal/segment"
)

func newExplainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   `explain "<10 个参考> | <输出>"`,
		Short: "打印单条记录的逐步推导过程",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := explain(a, args[0]); err != nil {
				fmt.Fprintf(a.stderr, "%s: %v\n", decode.ErrorCode(err), err)
				a.exitCode = 1
			}
			return nil
		},
	}
}

func explain(a *app, record string) error {
	// 输出宽度以记录本身为准，explain 不读配置。
	width := notes.DefaultWidth
	if _, rhs, ok := strings.Cut(record, "|"); ok {
		if n := len(strings.Fields(rhs)); n > 0 {
			width = n
		}
	}
	u, rerr := notes.ParseLine(1, strings.TrimSpace(record), width)
	if rerr != nil {
		return rerr
	}
	signals, _, err := segment.ParseAll(u.Signals)
	if err != nil {
		return err
	}

	st := newStyles(isTTY(a.stdout))
	m, trace, err := deduce.ResolveTrace(signals)
	fmt.Fprintln(a.stdout, st.title.Render(fmt.Sprintf("%-14s %-5s %s", "step", "digit", "pattern")))
	for _, s := range trace {
		digit := fmt.Sprint(s.Digit)
		if s.Digit < 0 {
			digit = "e"
		}
		fmt.Fprintf(a.stdout, "%-14s %-5s %s\n", s.Step, digit, st.value.Render(s.Pattern.String()))
	}
	if err != nil {
		return err
	}

	outputs, _, err := segment.ParseAll(u.Outputs)
	if err != nil {
		return err
	}
	digits, err := decode.Digits(outputs, m)
	if err != nil {
		return err
	}
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = fmt.Sprint(d)
	}
	fmt.Fprintf(a.stdout, "%s %s => %s => %s\n",
		st.label.Render("output"),
		strings.Join(u.Outputs, " "),
		strings.Join(parts, " "),
		st.ok.Render(fmt.Sprint(decode.PlaceValue(digits))),
	)
	return nil
}
