package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/John-Robertt/segdecode/internal/domain"
	"github.com/John-Robertt/segdecode/internal/infra/fsx"
)

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
}

// newStyles 在 enabled=false（输出不是终端）时返回只保留宽度的纯文本样式。
func newStyles(enabled bool) styles {
	if !enabled {
		plain := lipgloss.NewStyle()
		return styles{title: plain, label: plain.Width(12), value: plain, ok: plain, fail: plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true),
		label: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}).Width(12),
		value: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}),
		ok:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}),
		fail:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}),
	}
}

func formatInt(n int) string { return humanize.Comma(int64(n)) }

// emitReport 按 stdout 是否为终端选择输出形态。
//
// 非 TTY：stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
func (a *app) emitReport(rr domain.RunReport) {
	if isTTY(a.stdout) {
		a.emitSummary(rr)
		return
	}
	enc := json.NewEncoder(a.stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(a.stderr, "完成：units=%d decoded=%d failed=%d total=%d\n",
		rr.Summary.Units, rr.Summary.Decoded, rr.Summary.Failed, rr.Summary.Total,
	)
}

func (a *app) emitSummary(rr domain.RunReport) {
	st := newStyles(true)
	s := rr.Summary

	status := st.ok.Render("完成")
	if s.Failed > 0 {
		status = st.fail.Render("完成（有失败）")
	}
	fmt.Fprintln(a.stdout, status)
	fmt.Fprintf(a.stdout, "%s%s\n", st.label.Render("units"), formatInt(s.Units))
	fmt.Fprintf(a.stdout, "%s%s\n", st.label.Render("decoded"), formatInt(s.Decoded))
	fmt.Fprintf(a.stdout, "%s%s\n", st.label.Render("failed"), formatInt(s.Failed))
	fmt.Fprintf(a.stdout, "%s%s\n", st.label.Render("easy digits"), formatInt(s.EasyDigits))
	fmt.Fprintf(a.stdout, "%s%s\n", st.label.Render("total"), st.value.Render(formatInt(s.Total)))

	for _, it := range rr.Items {
		if it.Status != domain.StatusFailed {
			continue
		}
		key := "<input>"
		if it.Line > 0 {
			key = fmt.Sprintf("line %d", it.Line)
		}
		step := ""
		if it.Step != "" {
			step = " step=" + it.Step
		}
		fmt.Fprintf(a.stderr, "%s %s%s: %s\n", key, it.ErrorCode, step, it.ErrorMsg)
	}
}

func writeReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(filepath.Dir(path), filepath.Base(path), b)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(a.stderr) {
		return a.stderr, true
	}
	// 仅重定向 stderr 时 stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(a.stdout) {
		return a.stdout, true
	}
	return nil, false
}
