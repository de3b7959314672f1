package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/John-Robertt/segdecode/internal/domain"
	"github.com/John-Robertt/segdecode/internal/logging"
)

// Error 是 provider 阶段的可追溯错误。
// 上层据此把失败归类为 fetch_failed / parse_failed。
type Error struct {
	Provider string // provider name（小写）
	Stage    string // "fetch" 或 "parse"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FetchParse 用名为 name 的 provider 抓取并解析 ref 对应的记录文本。
//
// 返回值：
// - text：逐行记录文本（交给 notes.Parse）
// - pageURL：实际抓取的 URL（写入 report 追溯来源）
// - raw：原始响应（用于 cache）
func FetchParse(ctx context.Context, reg Registry, name string, ref domain.PuzzleRef, c *http.Client) (text []byte, pageURL string, raw []byte, err error) {
	name = strings.ToLower(strings.TrimSpace(name))
	p, ok := reg.Get(name)
	if !ok {
		return nil, "", nil, fmt.Errorf("provider 未注册：%q", name)
	}
	if !ref.Valid() {
		return nil, "", nil, fmt.Errorf("无效的题目引用：%d/%d", ref.Year, ref.Day)
	}

	log := logging.Component("provider")
	done := logging.OperationStart(log, "fetch "+name+" "+ref.String())
	defer done()

	body, pageURL, err := p.Fetch(ctx, ref, c)
	if err != nil {
		return nil, "", nil, &Error{Provider: name, Stage: "fetch", Err: err}
	}
	text, err = p.Parse(ref, body, pageURL)
	if err != nil {
		return nil, pageURL, body, &Error{Provider: name, Stage: "parse", Err: err}
	}
	log.Info().Str("provider", name).Str("url", pageURL).Int("bytes", len(text)).Msg("输入已获取")
	return text, pageURL, body, nil
}
