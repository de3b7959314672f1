package puzzle

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/John-Robertt/segdecode/internal/domain"
	providerx "github.com/John-Robertt/segdecode/internal/provider"
)

// Provider 抓取个人题目输入（纯文本）。
//
// session cookie 由 httpx.Transport 注入；未登录时站点返回 400/500 或 HTML 提示页。
type Provider struct {
	BaseURL string
}

func (Provider) Name() string { return "puzzle" }

// Fetch 读取 <base>/<year>/day/<day>/input。
func (p Provider) Fetch(ctx context.Context, ref domain.PuzzleRef, c *http.Client) ([]byte, string, error) {
	if !ref.Valid() {
		return nil, "", errors.New("无效的题目引用")
	}
	pageURL := providerx.DayURL(p.BaseURL, ref) + "/input"
	b, err := providerx.FetchURL(ctx, c, pageURL)
	return b, pageURL, err
}

// Parse 规范化换行并去掉行尾空白；拒绝明显不是记录文本的响应（例如登录提示页）。
func (Provider) Parse(_ domain.PuzzleRef, body []byte, _ string) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("输入为空")
	}
	s := strings.ReplaceAll(string(body), "\r\n", "\n")
	if strings.HasPrefix(strings.TrimSpace(s), "<") {
		return nil, errors.New("返回了 HTML 页面（session 可能已失效）")
	}

	var out strings.Builder
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if !strings.Contains(out.String(), "|") {
		return nil, errors.New("未找到 \"|\" 分隔的记录")
	}
	return []byte(out.String()), nil
}
