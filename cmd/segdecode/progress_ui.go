package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/segdecode/internal/app/run"
	"github.com/John-Robertt/segdecode/internal/config"
	"github.com/John-Robertt/segdecode/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的进度输出。
//
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - 成功单元只计数；失败单元逐条打印
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	workers int
	total   int
	done    int
	ok      int
	fail    int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 3 * time.Second,
		tickerInterval:     time.Second,
	}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] segdecode run\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	if eff.ConfigFile != "" {
		fmt.Fprintf(p.w, "  config: %s\n", eff.ConfigFile)
	}
	fmt.Fprintf(p.w, "  source: %s\n", eff.Source)
	if eff.Source == config.SourceFile {
		fmt.Fprintf(p.w, "  input: %s\n", formatInput(eff.Input))
	} else {
		fmt.Fprintf(p.w, "  day: %s (%s)\n", eff.Ref.String(), truncate(eff.BaseURL, 120))
		fmt.Fprintf(p.w, "  session: %s\n", onOff(eff.Session != ""))
		fmt.Fprintf(p.w, "  cache: %s\n", eff.CacheDir)
		fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	}
	fmt.Fprintf(p.w, "  width: %d\n", eff.Width)
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	fmt.Fprintf(p.w, "  on_error: %s\n", eff.OnError)
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "read":
		cache := ""
		if b, _ := fields["cache_hit"].(bool); b {
			cache = " cache=hit"
		}
		fmt.Fprintf(p.w, "读取: units=%d malformed=%d%s (%s)\n",
			intField(fields, "units"), intField(fields, "malformed"), cache, formatShortDuration(dur),
		)
	case "exec":
		p.workers = intField(fields, "workers")
		p.total = intField(fields, "total_units")
		fmt.Fprintf(p.w, "执行: workers=%d total_units=%d\n", p.workers, p.total)
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, res domain.UnitResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch res.Status {
	case domain.StatusDecoded:
		p.ok++
	case domain.StatusFailed:
		p.fail++
		step := ""
		if res.Step != "" {
			step = " step=" + res.Step
		}
		fmt.Fprintf(p.w, "[%d/%d] line %d FAIL %s%s: %s\n",
			idx, total, res.Line, res.ErrorCode, step, truncate(res.ErrorMsg, 160),
		)
		p.lastPrinted = time.Now()
	}

	if p.done >= p.total {
		fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d elapsed=%s\n",
			p.done, p.total, p.ok, p.fail, formatElapsed(time.Since(p.startedAt)),
		)
		p.lastPrinted = time.Now()
		// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
		if p.tickerStarted {
			close(p.stopCh)
			p.tickerStarted = false
		}
	}
}

func (p *progressUI) OnProgress(done, total, ok, fail int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d elapsed=%s\n",
		done, total, ok, fail, formatElapsed(elapsed),
	)
	p.lastPrinted = time.Now()
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 3 * time.Second
	}
	stop := p.stopCh

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.fail, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatInput(p string) string {
	if p == "" || p == config.StdinInput {
		return "<stdin>"
	}
	return p
}

// formatProxy 不回显代理凭据。
func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
